package domain

import "time"

// LiveView is one anonymous visitor's in-progress reading session of a
// shared document. It exists only in process memory, between a start
// event and either an explicit end or sweep-driven expiry.
type LiveView struct {
	ViewID         string
	DocumentID     string
	DocumentTitle  string
	OwnerID        string
	ViewerEmail    string
	ViewerIP       string
	CurrentPage    int
	TotalPages     int
	StartedAt      time.Time
	LastActivityAt time.Time
	VisitedPages   map[int]struct{}
}

// PagesVisited returns the number of distinct pages seen this session.
func (v *LiveView) PagesVisited() int {
	return len(v.VisitedPages)
}

// ElapsedSeconds returns whole seconds since the view started.
func (v *LiveView) ElapsedSeconds(now time.Time) int {
	return int(now.Sub(v.StartedAt).Seconds())
}

// ActiveView is the read-only projection of a LiveView returned by
// "who's viewing now" queries.
type ActiveView struct {
	ViewID         string    `json:"viewId"`
	DocumentID     string    `json:"documentId"`
	DocumentTitle  string    `json:"documentTitle"`
	ViewerEmail    string    `json:"viewerEmail,omitempty"`
	ViewerIP       string    `json:"viewerIp,omitempty"`
	CurrentPage    int       `json:"currentPage"`
	TotalPages     int       `json:"totalPages"`
	PagesVisited   int       `json:"pagesVisited"`
	ElapsedSeconds int       `json:"elapsedSeconds"`
	StartedAt      time.Time `json:"startedAt"`
}

// Snapshot converts the view to its read-only projection.
func (v *LiveView) Snapshot(now time.Time) ActiveView {
	return ActiveView{
		ViewID:         v.ViewID,
		DocumentID:     v.DocumentID,
		DocumentTitle:  v.DocumentTitle,
		ViewerEmail:    v.ViewerEmail,
		ViewerIP:       v.ViewerIP,
		CurrentPage:    v.CurrentPage,
		TotalPages:     v.TotalPages,
		PagesVisited:   v.PagesVisited(),
		ElapsedSeconds: v.ElapsedSeconds(now),
		StartedAt:      v.StartedAt,
	}
}

// ViewSessionRecord is the analytics export emitted when a view session
// ends, either explicitly or through expiry.
type ViewSessionRecord struct {
	ViewID          string    `json:"view_id"`
	DocumentID      string    `json:"document_id"`
	OwnerID         string    `json:"owner_id"`
	ViewerEmail     string    `json:"viewer_email,omitempty"`
	ViewerIP        string    `json:"viewer_ip,omitempty"`
	DurationSeconds int       `json:"duration_seconds"`
	PagesVisited    int       `json:"pages_visited"`
	TotalPages      int       `json:"total_pages"`
	EndedAt         time.Time `json:"ended_at"`
	Expired         bool      `json:"expired"`
}
