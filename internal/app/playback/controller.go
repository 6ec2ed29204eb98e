package playback

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/mgrn/tonearm/internal/app/queue"
	"github.com/mgrn/tonearm/internal/domain/track"
)

// Resolver turns a track name into playable stream metadata.
type Resolver interface {
	Resolve(ctx context.Context, name string) (*track.Resolved, error)
}

// Commands is the transport-control surface held by front ends and the
// now-playing adapter. Everything that can start or steer playback goes
// through this one injected interface.
type Commands interface {
	// PlayNow replaces the queue with names and starts playing the first.
	PlayNow(names []string)
	// QueueTracks appends names to the queue without disturbing playback.
	QueueTracks(names []string)
	TogglePlayPause()
	Next()
	Previous()
	// SeekPercent jumps to a position expressed as 0..100 of the duration.
	SeekPercent(percent float64)
	// SetVolume sets the output volume (0..100). Never changes status.
	SetVolume(percent int)
}

// Config holds controller configuration.
type Config struct {
	Quality string // Stream quality tier to select, e.g. "320kbps"
}

// Controller drives the audio device: it resolves queue entries to streams,
// commands the device, reacts to its events and keeps the session consistent.
//
// Commands serialize on the controller mutex; the resolve network call runs
// outside it. Each load carries a monotonically increasing sequence number
// and a completing resolve is discarded unless its number is still the
// latest issued, so the last load wins even when responses arrive out of
// order.
type Controller struct {
	mu       sync.Mutex
	resolver Resolver
	device   Device
	store    *queue.Store
	session  *Session
	quality  string

	loadSeq    uint64 // sequence of the most recently issued load
	armedEnded bool   // the current source has made progress, ended is accepted
}

// NewController creates a controller, wires itself as the store's loader and
// registers the device event handlers.
func NewController(resolver Resolver, device Device, store *queue.Store, session *Session, cfg Config) *Controller {
	quality := cfg.Quality
	if quality == "" {
		quality = track.DefaultQuality
	}
	c := &Controller{
		resolver: resolver,
		device:   device,
		store:    store,
		session:  session,
		quality:  quality,
	}
	store.SetLoader(c)
	device.SetHandlers(Handlers{
		OnPlay:       c.handleDevicePlay,
		OnPause:      c.handleDevicePause,
		OnEnded:      c.handleEnded,
		OnTimeUpdate: c.handleTimeUpdate,
	})
	return c
}

// Session returns the shared playback state.
func (c *Controller) Session() *Session {
	return c.session
}

// Load implements queue.Loader.
func (c *Controller) Load(index int, q []track.Ref) {
	c.LoadContext(context.Background(), index, q)
}

// LoadContext resolves the track at index against q and starts playback.
// A load superseded by a newer one is discarded when its resolve completes.
func (c *Controller) LoadContext(ctx context.Context, index int, q []track.Ref) {
	if index < 0 || index >= len(q) {
		zlog.Warn().Msgf("playback: load index out of range: index=%d len=%d", index, len(q))
		return
	}
	name := string(q[index])

	c.mu.Lock()
	c.loadSeq++
	seq := c.loadSeq
	c.mu.Unlock()

	c.session.setStatus(StatusLoading)
	zlog.Debug().Msgf("playback: resolving: index=%d name=%s", index, name)

	resolved, err := c.resolver.Resolve(ctx, name)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.loadSeq {
		zlog.Debug().Msgf("playback: discarding superseded resolve: name=%s", name)
		return
	}

	if err != nil {
		zlog.Warn().Err(err).Msgf("playback: resolve failed: name=%s", name)
		c.session.clearTrack()
		c.session.setStatus(StatusError)
		c.session.setError("cannot play " + name + ": " + err.Error())
		return
	}

	c.session.setTrack(resolved, index)
	c.store.SetIndex(index)
	c.armedEnded = false

	url := resolved.StreamURL(c.quality)
	if url == "" {
		zlog.Warn().Msgf("playback: no %s stream available: name=%s", c.quality, name)
	}
	if err := c.startDeviceLocked(ctx, url); err != nil {
		// Non-fatal: queue position is kept so the user can retry or skip.
		zlog.Warn().Err(err).Msgf("playback: device refused to start: name=%s", name)
		c.session.setStatus(StatusError)
		c.session.setError("playback device error: " + err.Error())
		return
	}
	c.session.setStatus(StatusPlaying)
}

func (c *Controller) startDeviceLocked(ctx context.Context, url string) error {
	if err := c.device.Load(ctx, url); err != nil {
		return errors.Wrap(err, "load source")
	}
	if err := c.device.Play(); err != nil {
		return errors.Wrap(err, "start playback")
	}
	return nil
}

// PlayNow implements the "play this track now" command: replace plus
// implicit play of position 0.
func (c *Controller) PlayNow(names []string) {
	c.store.Replace(track.Refs(names))
}

// QueueTracks appends names onto the queue.
func (c *Controller) QueueTracks(names []string) {
	c.store.Append(track.Refs(names))
}

// TogglePlayPause pauses a playing device or attempts to start a paused one.
func (c *Controller) TogglePlayPause() {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap := c.session.Snapshot()
	if snap.Track == nil {
		return
	}

	if snap.Status == StatusPlaying {
		if err := c.device.Pause(); err != nil {
			zlog.Warn().Err(err).Msg("playback: pause failed")
		}
		c.session.setStatus(StatusPaused)
		return
	}

	if err := c.device.Play(); err != nil {
		zlog.Warn().Err(err).Msg("playback: resume failed")
		c.session.setStatus(StatusError)
		c.session.setError("playback device error: " + err.Error())
		return
	}
	c.session.setStatus(StatusPlaying)
}

// Next advances to the following queue entry; a no-op at the last index.
func (c *Controller) Next() {
	c.store.Advance(queue.DirectionNext)
}

// Previous steps back to the preceding queue entry; a no-op at index 0.
func (c *Controller) Previous() {
	c.store.Advance(queue.DirectionPrevious)
}

// SeekPercent commands the device to jump to percent of the duration and
// updates local progress optimistically.
func (c *Controller) SeekPercent(percent float64) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	c.mu.Lock()
	if dur := c.device.Duration(); dur > 0 {
		if err := c.device.Seek(time.Duration(percent / 100 * float64(dur))); err != nil {
			zlog.Warn().Err(err).Msg("playback: seek failed")
		}
	}
	c.mu.Unlock()

	c.session.setProgress(percent)
}

// SetVolume applies the volume to the device and mirrors it in the session.
func (c *Controller) SetVolume(percent int) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}

	c.mu.Lock()
	if err := c.device.SetVolume(percent); err != nil {
		zlog.Warn().Err(err).Msg("playback: set volume failed")
	}
	c.mu.Unlock()

	c.session.setVolume(percent)
}

// handleEnded reacts to the device reaching end of track. Level-triggered:
// ended is honored once per armed source, and a source only arms once the
// device has reported forward progress on it, so a duplicate ended for the
// same track cannot advance twice and skip a track.
func (c *Controller) handleEnded() {
	c.mu.Lock()
	if !c.armedEnded {
		c.mu.Unlock()
		return
	}
	c.armedEnded = false
	c.mu.Unlock()

	snap := c.session.Snapshot()
	c.session.publish(Event{Type: EventTrackEnded, Status: snap.Status, Track: snap.Track, Index: snap.Index})

	if !c.store.Advance(queue.DirectionNext) {
		// Queue exhausted: stop, keep the last track loaded.
		c.session.setStatus(StatusIdle)
	}
}

func (c *Controller) handleDevicePlay() {
	snap := c.session.Snapshot()
	if snap.Track != nil && (snap.Status == StatusPaused || snap.Status == StatusIdle) {
		c.session.setStatus(StatusPlaying)
	}
}

func (c *Controller) handleDevicePause() {
	if c.session.Snapshot().Status == StatusPlaying {
		c.session.setStatus(StatusPaused)
	}
}

func (c *Controller) handleTimeUpdate(position, duration time.Duration) {
	if position > 0 {
		c.mu.Lock()
		c.armedEnded = true
		c.mu.Unlock()
	}
	if duration <= 0 {
		return
	}
	c.session.setProgress(float64(position) / float64(duration) * 100)
}

var (
	_ Commands     = (*Controller)(nil)
	_ queue.Loader = (*Controller)(nil)
)
