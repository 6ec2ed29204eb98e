//go:build libmpv

// Package mpv drives audio output through libmpv.
package mpv

import (
	"context"
	"math"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	mpv "github.com/gen2brain/go-mpv"
	zlog "github.com/rs/zerolog/log"

	"github.com/mgrn/tonearm/internal/app/playback"
)

const (
	pauseProperty    = "pause"
	volumeProperty   = "volume"
	positionProperty = "time-pos"
	durationProperty = "duration"

	progressInterval = 500 * time.Millisecond
)

// Device is a playback.Device backed by a headless libmpv instance.
type Device struct {
	mu       sync.Mutex
	client   *mpv.Mpv
	handlers playback.Handlers

	closeOnce sync.Once
	done      chan struct{}
	loopWG    sync.WaitGroup
}

// Config holds device configuration.
type Config struct {
	Volume int // Initial volume, 0..100
}

// New creates and initializes the audio device.
func New(cfg Config) (*Device, error) {
	client := mpv.New()
	if client == nil {
		return nil, errors.New("create libmpv instance")
	}

	for name, value := range map[string]string{
		"terminal":      "no",
		"video":         "no",
		"audio-display": "no",
		"keep-open":     "no",
	} {
		_ = client.SetOptionString(name, value)
	}

	if err := client.Initialize(); err != nil {
		client.TerminateDestroy()
		return nil, errors.Wrap(err, "initialize libmpv")
	}

	d := &Device{
		client: client,
		done:   make(chan struct{}),
	}

	_ = client.RequestEvent(mpv.EventEnd, true)
	_ = client.ObserveProperty(0, pauseProperty, mpv.FormatFlag)
	_ = client.SetProperty(volumeProperty, mpv.FormatDouble, float64(cfg.Volume))

	d.loopWG.Add(1)
	go d.eventLoop()
	d.loopWG.Add(1)
	go d.progressLoop()

	return d, nil
}

// SetHandlers implements playback.Device.
func (d *Device) SetHandlers(h playback.Handlers) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = h
}

// Load replaces the current source with url, paused. A following Play starts
// audible output.
func (d *Device) Load(ctx context.Context, url string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if url == "" {
		return errors.New("no stream URL")
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if err := d.client.SetPropertyString(pauseProperty, "yes"); err != nil {
		return errors.Wrap(err, "pause before load")
	}
	if err := d.client.Command([]string{"loadfile", url, "replace"}); err != nil {
		return errors.Wrapf(err, "load %q", url)
	}
	return nil
}

// Play resumes output.
func (d *Device) Play() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return errors.Wrap(d.client.SetPropertyString(pauseProperty, "no"), "resume")
}

// Pause suspends output.
func (d *Device) Pause() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return errors.Wrap(d.client.SetPropertyString(pauseProperty, "yes"), "pause")
}

// Seek jumps to an absolute position in the current source.
func (d *Device) Seek(position time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return errors.Wrap(
		d.client.SetProperty(positionProperty, mpv.FormatDouble, position.Seconds()),
		"seek")
}

// SetVolume applies a 0..100 volume.
func (d *Device) SetVolume(percent int) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return errors.Wrap(
		d.client.SetProperty(volumeProperty, mpv.FormatDouble, float64(percent)),
		"set volume")
}

// Position returns the playback position, zero when no source is loaded.
func (d *Device) Position() time.Duration {
	return d.readDuration(positionProperty)
}

// Duration returns the source duration, zero while still unknown.
func (d *Device) Duration() time.Duration {
	return d.readDuration(durationProperty)
}

// Close shuts the instance down and waits for the event loops.
func (d *Device) Close() error {
	d.closeOnce.Do(func() {
		close(d.done)
		d.client.Wakeup()
		d.loopWG.Wait()
		d.client.TerminateDestroy()
	})
	return nil
}

func (d *Device) eventLoop() {
	defer d.loopWG.Done()

	for {
		select {
		case <-d.done:
			return
		default:
		}

		event := d.client.WaitEvent(0.5)
		if event == nil {
			continue
		}

		switch event.EventID {
		case mpv.EventShutdown:
			return
		case mpv.EventEnd:
			if event.EndFile().Reason != mpv.EndFileEOF {
				continue
			}
			if h := d.snapshotHandlers(); h.OnEnded != nil {
				h.OnEnded()
			}
		case mpv.EventPropertyChange:
			prop := event.Property()
			if prop.Name != pauseProperty {
				continue
			}
			paused, ok := prop.Data.(bool)
			if !ok {
				continue
			}
			h := d.snapshotHandlers()
			if paused && h.OnPause != nil {
				h.OnPause()
			} else if !paused && h.OnPlay != nil {
				h.OnPlay()
			}
		}
	}
}

// progressLoop polls the position so the controller receives periodic
// progress reports the way an output element would emit timeupdate events.
func (d *Device) progressLoop() {
	defer d.loopWG.Done()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.done:
			return
		case <-ticker.C:
			pos := d.Position()
			if pos <= 0 {
				continue
			}
			if h := d.snapshotHandlers(); h.OnTimeUpdate != nil {
				h.OnTimeUpdate(pos, d.Duration())
			}
		}
	}
}

func (d *Device) snapshotHandlers() playback.Handlers {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.handlers
}

func (d *Device) readDuration(property string) time.Duration {
	d.mu.Lock()
	defer d.mu.Unlock()

	value, err := d.client.GetProperty(property, mpv.FormatDouble)
	if err != nil {
		if !errors.Is(err, mpv.ErrPropertyUnavailable) && !errors.Is(err, mpv.ErrPropertyNotFound) {
			zlog.Debug().Err(err).Msgf("mpv: read %s failed", property)
		}
		return 0
	}
	seconds, ok := value.(float64)
	if !ok || math.IsNaN(seconds) || seconds < 0 {
		return 0
	}
	return time.Duration(seconds * float64(time.Second))
}

var _ playback.Device = (*Device)(nil)
