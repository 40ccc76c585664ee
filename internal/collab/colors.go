package collab

import "math/rand"

// palette is the fixed set of participant colors. Assignment preserves
// palette order so repeated joins in the same room produce a stable
// sequence.
var palette = [...]string{
	"#4F46E5", // indigo
	"#059669", // emerald
	"#DC2626", // red
	"#D97706", // amber
	"#7C3AED", // violet
	"#DB2777", // pink
	"#0891B2", // cyan
	"#65A30D", // lime
}

// assignColor picks the first palette color not used by another
// participant in the room. Past eight concurrent participants every
// color is taken and a random palette pick is returned; the collision
// is an accepted trade-off, not a defect. Callers must hold the
// registry lock.
func (rm *room) assignColor(userID string) string {
	inUse := make(map[string]struct{}, len(rm.participants))
	for id, p := range rm.participants {
		if id != userID {
			inUse[p.color] = struct{}{}
		}
	}

	for _, c := range palette {
		if _, taken := inUse[c]; !taken {
			return c
		}
	}
	return palette[rand.Intn(len(palette))]
}
