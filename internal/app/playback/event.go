package playback

import "github.com/mgrn/tonearm/internal/domain/track"

// EventType represents a playback event type.
type EventType int

const (
	EventStatusChanged   EventType = iota // Playback status changed
	EventTrackChanged                     // A different track became active
	EventTrackEnded                       // The device reached the end of the current track
	EventProgressChanged                  // Playback progress moved
	EventError                            // Resolve or device error surfaced to the user
)

// String returns the string representation of the event type.
func (e EventType) String() string {
	switch e {
	case EventStatusChanged:
		return "status_changed"
	case EventTrackChanged:
		return "track_changed"
	case EventTrackEnded:
		return "track_ended"
	case EventProgressChanged:
		return "progress_changed"
	case EventError:
		return "error"
	default:
		return "unknown"
	}
}

// Event represents a playback event.
type Event struct {
	Type     EventType
	Status   Status
	Track    *track.Resolved // Active track (nil for some events)
	Index    int             // Queue index of the active track
	Progress float64         // Progress percent, EventProgressChanged only
	Err      string          // User-visible message, EventError only
}
