package playback

import (
	"sync"

	"github.com/mgrn/tonearm/internal/domain/track"
)

const eventBufferSize = 16

// Snapshot is a point-in-time copy of the shared playback state.
type Snapshot struct {
	Status          Status
	Track           *track.Resolved // Active resolved track (nil when none)
	Index           int             // Queue index of the active track
	ProgressPercent float64         // 0..100
	VolumePercent   int             // 0..100
	LastError       string          // User-visible error text ("" when none)
}

// Session is the single owned playback-state object shared between the
// controller, the now-playing surface and any front end. Mutation goes
// through the controller; readers take snapshots or subscribe to events.
type Session struct {
	mu   sync.RWMutex
	snap Snapshot
	subs []chan Event
}

// NewSession creates a session in the Idle state.
func NewSession(volumePercent int) *Session {
	return &Session{snap: Snapshot{Status: StatusIdle, VolumePercent: volumePercent}}
}

// Snapshot returns a copy of the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// Subscribe returns a buffered event channel. Events are dropped rather than
// blocking when a subscriber falls behind.
func (s *Session) Subscribe() <-chan Event {
	ch := make(chan Event, eventBufferSize)
	s.mu.Lock()
	s.subs = append(s.subs, ch)
	s.mu.Unlock()
	return ch
}

// Reset tears the session down to empty/Idle on sign-out.
func (s *Session) Reset() {
	s.mu.Lock()
	volume := s.snap.VolumePercent
	s.snap = Snapshot{Status: StatusIdle, VolumePercent: volume}
	s.mu.Unlock()
	s.publish(Event{Type: EventStatusChanged, Status: StatusIdle})
}

func (s *Session) publish(e Event) {
	s.mu.RLock()
	subs := s.subs
	s.mu.RUnlock()
	for _, ch := range subs {
		select {
		case ch <- e:
		default:
			// Drop if buffer full
		}
	}
}

func (s *Session) setStatus(st Status) {
	s.mu.Lock()
	if s.snap.Status == st {
		s.mu.Unlock()
		return
	}
	s.snap.Status = st
	snap := s.snap
	s.mu.Unlock()
	s.publish(Event{Type: EventStatusChanged, Status: st, Track: snap.Track, Index: snap.Index})
}

func (s *Session) setTrack(t *track.Resolved, index int) {
	s.mu.Lock()
	s.snap.Track = t
	s.snap.Index = index
	s.snap.ProgressPercent = 0
	s.snap.LastError = ""
	st := s.snap.Status
	s.mu.Unlock()
	s.publish(Event{Type: EventTrackChanged, Status: st, Track: t, Index: index})
}

func (s *Session) clearTrack() {
	s.mu.Lock()
	s.snap.Track = nil
	s.snap.ProgressPercent = 0
	s.mu.Unlock()
}

func (s *Session) setProgress(percent float64) {
	if percent < 0 {
		percent = 0
	}
	if percent > 100 {
		percent = 100
	}
	s.mu.Lock()
	s.snap.ProgressPercent = percent
	st := s.snap.Status
	s.mu.Unlock()
	s.publish(Event{Type: EventProgressChanged, Status: st, Progress: percent})
}

func (s *Session) setVolume(percent int) {
	s.mu.Lock()
	s.snap.VolumePercent = percent
	s.mu.Unlock()
}

func (s *Session) setError(msg string) {
	s.mu.Lock()
	s.snap.LastError = msg
	st := s.snap.Status
	s.mu.Unlock()
	s.publish(Event{Type: EventError, Status: st, Err: msg})
}
