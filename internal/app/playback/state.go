// Package playback provides the playback state machine driving the audio device.
package playback

// Status represents the playback status.
type Status int

const (
	StatusIdle    Status = iota // No track loaded, or stopped after the queue ran out
	StatusLoading               // Resolving a track or starting the device
	StatusPlaying               // Device is playing
	StatusPaused                // Device is paused
	StatusError                 // Resolve or device failure; further commands accepted
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusLoading:
		return "loading"
	case StatusPlaying:
		return "playing"
	case StatusPaused:
		return "paused"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}
