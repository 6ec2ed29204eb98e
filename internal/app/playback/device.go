package playback

import (
	"context"
	"time"
)

// Device abstracts the single audio output the controller commands.
// Only the controller may call it; every other component reads derived
// session state instead.
type Device interface {
	// Load replaces the current source with url, paused.
	Load(ctx context.Context, url string) error
	// Play starts or resumes playback of the loaded source.
	Play() error
	// Pause pauses playback.
	Pause() error
	// Seek jumps to an absolute position.
	Seek(position time.Duration) error
	// SetVolume sets the output volume (0-100).
	SetVolume(percent int) error
	// Position reports the current playback position.
	Position() time.Duration
	// Duration reports the duration of the loaded source (0 when unknown).
	Duration() time.Duration
	// SetHandlers registers event callbacks. Callbacks arrive on device
	// goroutines and may call back into the controller.
	SetHandlers(h Handlers)
	// Close releases the device.
	Close() error
}

// Handlers are the device event callbacks. Nil entries are skipped.
type Handlers struct {
	OnPlay       func()
	OnPause      func()
	OnEnded      func()
	OnTimeUpdate func(position, duration time.Duration)
}
