package presence

import (
	"context"
	"sync"
	"time"

	pkglog "github.com/ArinjayBhola/DocuSend-sub001/pkg/log"

	"github.com/ArinjayBhola/DocuSend-sub001/internal/analytics"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/domain"
	"github.com/ArinjayBhola/DocuSend-sub001/internal/hub"
)

// Broadcaster pushes a serialized event to every stream subscribed
// under a key. Satisfied by *hub.Hub.
type Broadcaster interface {
	Broadcast(key string, event interface{}, excludeUserID string)
}

// Config holds registry tuning.
type Config struct {
	// SweepInterval is how often the expiry sweep runs.
	SweepInterval time.Duration
	// ViewTTL is how long a view may stay idle before the sweep
	// evicts it. Viewers who close a tab never send an explicit end,
	// so the sweep is the only guaranteed cleanup path.
	ViewTTL time.Duration
}

// StartParams describes a new view session.
type StartParams struct {
	ViewID        string
	DocumentID    string
	DocumentTitle string
	OwnerID       string
	ViewerEmail   string
	ViewerIP      string
	TotalPages    int
}

// Registry tracks every active anonymous view of a shared document and
// notifies the owning user's dashboard streams of changes. All state is
// process memory; nothing survives a restart.
type Registry struct {
	mu    sync.RWMutex
	views map[string]*domain.LiveView

	broadcaster Broadcaster
	producer    analytics.Producer
	cfg         Config
}

// NewRegistry creates a view presence registry.
func NewRegistry(b Broadcaster, producer analytics.Producer, cfg Config) *Registry {
	return &Registry{
		views:       make(map[string]*domain.LiveView),
		broadcaster: b,
		producer:    producer,
		cfg:         cfg,
	}
}

// StartView begins tracking a view and broadcasts session_started to
// the document owner. A duplicate view id silently overwrites the
// previous entry (last write wins).
func (r *Registry) StartView(p StartParams) {
	now := time.Now()
	view := &domain.LiveView{
		ViewID:         p.ViewID,
		DocumentID:     p.DocumentID,
		DocumentTitle:  p.DocumentTitle,
		OwnerID:        p.OwnerID,
		ViewerEmail:    p.ViewerEmail,
		ViewerIP:       p.ViewerIP,
		CurrentPage:    1,
		TotalPages:     p.TotalPages,
		StartedAt:      now,
		LastActivityAt: now,
		VisitedPages:   map[int]struct{}{1: {}},
	}

	r.mu.Lock()
	r.views[p.ViewID] = view
	r.mu.Unlock()

	pkglog.L().Debug().
		Str(pkglog.FieldViewID, p.ViewID).
		Str(pkglog.FieldDocumentID, p.DocumentID).
		Msg("view started")

	r.broadcaster.Broadcast(hub.OwnerKey(p.OwnerID), domain.SessionStartedEvent{
		Type:          domain.EventSessionStarted,
		ViewID:        view.ViewID,
		DocumentID:    view.DocumentID,
		DocumentTitle: view.DocumentTitle,
		ViewerEmail:   view.ViewerEmail,
		ViewerIP:      view.ViewerIP,
		CurrentPage:   view.CurrentPage,
		TotalPages:    view.TotalPages,
		StartedAt:     view.StartedAt,
	}, "")
}

// UpdatePage records a page turn, refreshes the activity timestamp, and
// broadcasts page_changed. Unknown view ids are silently ignored — the
// view may already have been evicted.
func (r *Registry) UpdatePage(viewID string, page int) {
	now := time.Now()

	r.mu.Lock()
	view, ok := r.views[viewID]
	if !ok {
		r.mu.Unlock()
		return
	}
	view.CurrentPage = page
	view.VisitedPages[page] = struct{}{}
	view.LastActivityAt = now
	event := domain.PageChangedEvent{
		Type:           domain.EventPageChanged,
		ViewID:         view.ViewID,
		DocumentID:     view.DocumentID,
		DocumentTitle:  view.DocumentTitle,
		ViewerEmail:    view.ViewerEmail,
		CurrentPage:    view.CurrentPage,
		TotalPages:     view.TotalPages,
		PagesVisited:   view.PagesVisited(),
		ElapsedSeconds: view.ElapsedSeconds(now),
	}
	ownerID := view.OwnerID
	r.mu.Unlock()

	r.broadcaster.Broadcast(hub.OwnerKey(ownerID), event, "")
}

// EndView stops tracking a view and broadcasts session_ended. Unknown
// view ids are a no-op.
func (r *Registry) EndView(viewID string) {
	r.endView(viewID, time.Now(), false)
}

func (r *Registry) endView(viewID string, now time.Time, expired bool) {
	r.mu.Lock()
	view, ok := r.views[viewID]
	if !ok {
		r.mu.Unlock()
		return
	}
	delete(r.views, viewID)
	r.mu.Unlock()

	r.finishView(view, now, expired)
}

// finishView broadcasts session_ended for an already-removed view and
// exports the session to analytics.
func (r *Registry) finishView(view *domain.LiveView, now time.Time, expired bool) {
	duration := view.ElapsedSeconds(now)

	r.broadcaster.Broadcast(hub.OwnerKey(view.OwnerID), domain.SessionEndedEvent{
		Type:          domain.EventSessionEnded,
		ViewID:        view.ViewID,
		DocumentID:    view.DocumentID,
		DocumentTitle: view.DocumentTitle,
		ViewerEmail:   view.ViewerEmail,
		Duration:      duration,
		PagesVisited:  view.PagesVisited(),
	}, "")

	if err := r.producer.PublishViewSession(context.Background(), &domain.ViewSessionRecord{
		ViewID:          view.ViewID,
		DocumentID:      view.DocumentID,
		OwnerID:         view.OwnerID,
		ViewerEmail:     view.ViewerEmail,
		ViewerIP:        view.ViewerIP,
		DurationSeconds: duration,
		PagesVisited:    view.PagesVisited(),
		TotalPages:      view.TotalPages,
		EndedAt:         now,
		Expired:         expired,
	}); err != nil {
		pkglog.L().Warn().Err(err).Str(pkglog.FieldViewID, view.ViewID).Msg("failed to export view session")
	}
}

// ListActive returns a snapshot of every live view of the owner's
// documents, annotated with elapsed seconds. Read-only; never mutates
// registry state.
func (r *Registry) ListActive(ownerID string) []domain.ActiveView {
	now := time.Now()

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []domain.ActiveView
	for _, view := range r.views {
		if view.OwnerID == ownerID {
			out = append(out, view.Snapshot(now))
		}
	}
	return out
}

// CountActive returns the number of live views of the owner's documents.
func (r *Registry) CountActive(ownerID string) int {
	r.mu.RLock()
	defer r.mu.RUnlock()

	count := 0
	for _, view := range r.views {
		if view.OwnerID == ownerID {
			count++
		}
	}
	return count
}

// Run drives the periodic expiry sweep until the context is cancelled.
func (r *Registry) Run(ctx context.Context) error {
	ticker := time.NewTicker(r.cfg.SweepInterval)
	defer ticker.Stop()

	pkglog.L().Info().
		Dur("sweep_interval", r.cfg.SweepInterval).
		Dur("view_ttl", r.cfg.ViewTTL).
		Msg("view presence sweep started")

	for {
		select {
		case <-ticker.C:
			r.sweepExpired(time.Now())
		case <-ctx.Done():
			pkglog.L().Info().Msg("view presence sweep stopped")
			return nil
		}
	}
}

// sweepExpired evicts every view idle longer than ViewTTL and emits
// session_ended for each, exactly as EndView would. The expiry decision
// is re-derived from current state under the registry lock, so a page
// update racing the sweep either refreshes the view in time or loses it.
func (r *Registry) sweepExpired(now time.Time) {
	r.mu.Lock()
	var expired []*domain.LiveView
	for id, view := range r.views {
		if now.Sub(view.LastActivityAt) >= r.cfg.ViewTTL {
			delete(r.views, id)
			expired = append(expired, view)
		}
	}
	r.mu.Unlock()

	for _, view := range expired {
		pkglog.L().Debug().
			Str(pkglog.FieldViewID, view.ViewID).
			Str(pkglog.FieldDocumentID, view.DocumentID).
			Msg("view expired")
		r.finishView(view, now, true)
	}
}
