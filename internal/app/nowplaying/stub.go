//go:build !linux

package nowplaying

import (
	"github.com/mgrn/tonearm/internal/app/playback"
	"github.com/mgrn/tonearm/internal/app/queue"
)

// Adapter is a no-op on platforms without a session bus.
type Adapter struct{}

// New returns a no-op adapter on platforms without a session bus.
func New(_ playback.Commands, _ *playback.Session, _ *queue.Store, _ playback.Device) (*Adapter, error) {
	return &Adapter{}, nil
}

// Close is a no-op on platforms without a session bus.
func (a *Adapter) Close() error {
	return nil
}
