// Package track provides the track domain entities.
package track

// Ref identifies a track in the queue. It is the raw display name used as
// the lookup key, not a stable catalog ID: a queue may contain the same Ref
// twice, and playback identity is the queue position, never the name.
type Ref string

// StreamCandidate is one playable rendition of a resolved track.
type StreamCandidate struct {
	Quality string // e.g. "96kbps", "160kbps", "320kbps"
	URL     string
}

// Resolved is the metadata and stream candidates for one looked-up track.
// At most one Resolved is active at a time, referenced by the queue index.
type Resolved struct {
	Name       string
	Artists    []string
	Album      string
	ArtworkURL string
	Streams    []StreamCandidate
}

// DefaultQuality is the stream tier preferred when none is configured.
const DefaultQuality = "320kbps"

// StreamURL returns the URL of the candidate matching quality.
// Returns "" when no candidate matches; the player then enters a silent
// no-audio state rather than degrading to another tier.
func (r *Resolved) StreamURL(quality string) string {
	if quality == "" {
		quality = DefaultQuality
	}
	for _, s := range r.Streams {
		if s.Quality == quality {
			return s.URL
		}
	}
	return ""
}

// PrimaryArtist returns the first artist, or "" when unknown.
func (r *Resolved) PrimaryArtist() string {
	if len(r.Artists) == 0 {
		return ""
	}
	return r.Artists[0]
}

// Refs converts a slice of raw names to track references.
func Refs(names []string) []Ref {
	refs := make([]Ref, len(names))
	for i, n := range names {
		refs[i] = Ref(n)
	}
	return refs
}
