// Package playlist provides the autoplay Playlist domain entity.
package playlist

// Playlist is the ordered, validated list of scene names eligible for
// autoplay rotation. It is built once at startup and read-only afterwards.
type Playlist struct {
	Names []string // Scene names in rotation order
}

// Build filters the configured names against the loaded scene set.
// Names for which exists returns false are dropped and returned so the
// caller can warn about them; dropping is not fatal.
func Build(configured []string, exists func(name string) bool) (Playlist, []string) {
	names := make([]string, 0, len(configured))
	var dropped []string
	for _, name := range configured {
		if exists(name) {
			names = append(names, name)
		} else {
			dropped = append(dropped, name)
		}
	}
	return Playlist{Names: names}, dropped
}

// Len returns the number of entries in the playlist.
func (p Playlist) Len() int {
	return len(p.Names)
}

// IsEmpty reports whether the playlist has no entries.
func (p Playlist) IsEmpty() bool {
	return len(p.Names) == 0
}

// At returns the scene name at index i. The caller keeps i in range.
func (p Playlist) At(i int) string {
	return p.Names[i]
}
