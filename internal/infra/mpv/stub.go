//go:build !libmpv

// Package mpv drives audio output through libmpv.
package mpv

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/mgrn/tonearm/internal/app/playback"
)

var errNotEnabled = errors.New("libmpv output is not enabled; build with -tags libmpv")

// Device requires libmpv; this build has none.
type Device struct{}

// Config holds device configuration.
type Config struct {
	Volume int // Initial volume, 0..100
}

// New fails when the libmpv output has not been built in.
func New(_ Config) (*Device, error) {
	return nil, errNotEnabled
}

func (d *Device) SetHandlers(_ playback.Handlers) {}

func (d *Device) Load(_ context.Context, _ string) error { return errNotEnabled }

func (d *Device) Play() error { return errNotEnabled }

func (d *Device) Pause() error { return errNotEnabled }

func (d *Device) Seek(_ time.Duration) error { return errNotEnabled }

func (d *Device) SetVolume(_ int) error { return errNotEnabled }

func (d *Device) Position() time.Duration { return 0 }

func (d *Device) Duration() time.Duration { return 0 }

func (d *Device) Close() error { return nil }

var _ playback.Device = (*Device)(nil)
