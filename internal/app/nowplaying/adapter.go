//go:build linux

// Package nowplaying exposes the active track and transport controls on the
// desktop media session over MPRIS.
package nowplaying

import (
	"fmt"
	"hash/fnv"
	"time"

	"github.com/godbus/dbus/v5"
	"github.com/quarckster/go-mpris-server/pkg/events"
	"github.com/quarckster/go-mpris-server/pkg/server"
	"github.com/quarckster/go-mpris-server/pkg/types"
	zlog "github.com/rs/zerolog/log"

	"github.com/mgrn/tonearm/internal/app/playback"
	"github.com/mgrn/tonearm/internal/app/queue"
)

// Adapter registers the player on the session bus and mirrors playback state
// to it. Media-key commands coming back from the bus are forwarded to the
// playback command surface.
type Adapter struct {
	server *server.Server
	events *events.EventHandler
	sub    <-chan playback.Event
	done   chan struct{}
}

// New creates and starts a now-playing adapter.
func New(cmds playback.Commands, session *playback.Session, store *queue.Store, device playback.Device) (*Adapter, error) {
	root := &rootAdapter{}
	player := &playerAdapter{
		cmds:    cmds,
		session: session,
		store:   store,
		device:  device,
	}

	a := &Adapter{
		server: server.NewServer("tonearm", root, player),
		sub:    session.Subscribe(),
		done:   make(chan struct{}),
	}
	a.events = events.NewEventHandler(a.server)

	go func() {
		if err := a.server.Listen(); err != nil {
			zlog.Warn().Err(err).Msg("nowplaying: media session unavailable")
		}
	}()
	go a.pump()

	return a, nil
}

// Close stops the adapter and releases the bus name.
func (a *Adapter) Close() error {
	close(a.done)
	return a.server.Stop()
}

// pump translates session events into property-change signals so desktop
// widgets update without polling.
func (a *Adapter) pump() {
	for {
		select {
		case <-a.done:
			return
		case e, ok := <-a.sub:
			if !ok {
				return
			}
			switch e.Type {
			case playback.EventTrackChanged:
				_ = a.events.Player.OnTitle()
			case playback.EventStatusChanged:
				_ = a.events.Player.OnPlayPause()
			case playback.EventTrackEnded:
				_ = a.events.Player.OnEnded()
			case playback.EventProgressChanged, playback.EventError:
				// Not surfaced on the media session.
			}
		}
	}
}

type rootAdapter struct{}

func (r *rootAdapter) Raise() error { return nil }

func (r *rootAdapter) Quit() error { return nil }

func (r *rootAdapter) CanQuit() (bool, error) { return false, nil }

func (r *rootAdapter) CanRaise() (bool, error) { return false, nil }

func (r *rootAdapter) HasTrackList() (bool, error) { return false, nil }

func (r *rootAdapter) Identity() (string, error) { return "Tonearm", nil }

//nolint:revive // Method name required by interface.
func (r *rootAdapter) SupportedUriSchemes() ([]string, error) {
	return []string{"https"}, nil
}

func (r *rootAdapter) SupportedMimeTypes() ([]string, error) {
	return []string{"audio/mpeg", "audio/mp4"}, nil
}

type playerAdapter struct {
	cmds    playback.Commands
	session *playback.Session
	store   *queue.Store
	device  playback.Device
}

func (p *playerAdapter) Next() error {
	p.cmds.Next()
	return nil
}

func (p *playerAdapter) Previous() error {
	p.cmds.Previous()
	return nil
}

func (p *playerAdapter) Pause() error {
	if p.session.Snapshot().Status == playback.StatusPlaying {
		p.cmds.TogglePlayPause()
	}
	return nil
}

func (p *playerAdapter) PlayPause() error {
	p.cmds.TogglePlayPause()
	return nil
}

func (p *playerAdapter) Stop() error { return nil }

func (p *playerAdapter) Play() error {
	if p.session.Snapshot().Status != playback.StatusPlaying {
		p.cmds.TogglePlayPause()
	}
	return nil
}

func (p *playerAdapter) Seek(offset types.Microseconds) error {
	dur := p.device.Duration()
	if dur <= 0 {
		return nil
	}
	target := p.device.Position() + time.Duration(offset)*time.Microsecond
	p.cmds.SeekPercent(float64(target) / float64(dur) * 100)
	return nil
}

func (p *playerAdapter) SetPosition(_ string, position types.Microseconds) error {
	dur := p.device.Duration()
	if dur <= 0 {
		return nil
	}
	p.cmds.SeekPercent(float64(time.Duration(position)*time.Microsecond) / float64(dur) * 100)
	return nil
}

//nolint:revive // Method name required by interface.
func (p *playerAdapter) OpenUri(_ string) error { return nil }

func (p *playerAdapter) PlaybackStatus() (types.PlaybackStatus, error) {
	switch p.session.Snapshot().Status {
	case playback.StatusPlaying, playback.StatusLoading:
		return types.PlaybackStatusPlaying, nil
	case playback.StatusPaused:
		return types.PlaybackStatusPaused, nil
	case playback.StatusIdle, playback.StatusError:
		return types.PlaybackStatusStopped, nil
	}
	return types.PlaybackStatusStopped, nil
}

func (p *playerAdapter) Rate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) SetRate(_ float64) error { return nil }

func (p *playerAdapter) Metadata() (types.Metadata, error) {
	snap := p.session.Snapshot()
	if snap.Track == nil {
		return types.Metadata{}, nil
	}

	meta := types.Metadata{
		TrackId: dbus.ObjectPath(formatTrackID(snap.Track.Name)),
		Length:  types.Microseconds(p.device.Duration().Microseconds()),
		Title:   snap.Track.Name,
		Artist:  snap.Track.Artists,
		Album:   snap.Track.Album,
	}
	if snap.Track.ArtworkURL != "" {
		meta.ArtUrl = snap.Track.ArtworkURL
	}
	return meta, nil
}

func (p *playerAdapter) Volume() (float64, error) {
	return float64(p.session.Snapshot().VolumePercent) / 100, nil
}

func (p *playerAdapter) SetVolume(volume float64) error {
	p.cmds.SetVolume(int(volume * 100))
	return nil
}

func (p *playerAdapter) Position() (int64, error) {
	return p.device.Position().Microseconds(), nil
}

func (p *playerAdapter) MinimumRate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) MaximumRate() (float64, error) { return 1.0, nil }

func (p *playerAdapter) CanGoNext() (bool, error) {
	return p.store.CurrentIndex() < p.store.Len()-1, nil
}

func (p *playerAdapter) CanGoPrevious() (bool, error) {
	return p.store.CurrentIndex() > 0, nil
}

func (p *playerAdapter) CanPlay() (bool, error) {
	return !p.store.IsEmpty(), nil
}

func (p *playerAdapter) CanPause() (bool, error) { return true, nil }

func (p *playerAdapter) CanSeek() (bool, error) { return true, nil }

func (p *playerAdapter) CanControl() (bool, error) { return true, nil }

func formatTrackID(name string) string {
	h := fnv.New64a()
	h.Write([]byte(name))
	return fmt.Sprintf("/org/mpris/MediaPlayer2/Track/%x", h.Sum64())
}
