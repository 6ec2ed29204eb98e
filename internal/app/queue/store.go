// Package queue provides the playback queue store and reorder logic.
package queue

import (
	"slices"
	"sync"

	"github.com/mgrn/tonearm/internal/domain/track"
)

// Direction indicates which neighbor of the current index to advance to.
type Direction int

const (
	DirectionNext Direction = iota
	DirectionPrevious
)

// String returns the string representation of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionNext:
		return "next"
	case DirectionPrevious:
		return "previous"
	default:
		return "unknown"
	}
}

// Loader is asked to load (resolve and start) the track at index.
// The queue slice passed is the state the request was made against, so the
// loader never depends on store reads racing with the mutation that
// triggered it.
type Loader interface {
	Load(index int, queue []track.Ref)
}

// ChangeListener observes committed queue/index state.
type ChangeListener func(queue []track.Ref, index int)

// Store owns the ordered play queue and the current position.
//
// All mutations are applied atomically under the store lock; loader calls and
// listener notifications happen after the lock is released so that the loader
// may call back into the store (SetIndex) without deadlocking.
type Store struct {
	mu      sync.Mutex
	tracks  []track.Ref
	current int

	// Staged incoming batch, applied exactly once.
	pending       []track.Ref
	pendingAppend bool
	hasPending    bool

	loader    Loader
	listeners []ChangeListener
}

// NewStore creates an empty queue store.
func NewStore() *Store {
	return &Store{tracks: make([]track.Ref, 0)}
}

// SetLoader injects the loader. Must be called before any mutation that can
// trigger a load.
func (s *Store) SetLoader(l Loader) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loader = l
}

// OnChange registers a listener invoked after every committed mutation.
func (s *Store) OnChange(l ChangeListener) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.listeners = append(s.listeners, l)
}

// Tracks returns a copy of the queue.
func (s *Store) Tracks() []track.Ref {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Clone(s.tracks)
}

// CurrentIndex returns the current playback position. Meaningless when the
// queue is empty.
func (s *Store) CurrentIndex() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}

// Len returns the number of queued tracks.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.tracks)
}

// IsEmpty returns true if the queue has no tracks.
func (s *Store) IsEmpty() bool {
	return s.Len() == 0
}

// Stage buffers an incoming batch together with its mutation mode.
// The batch is applied exactly once: by the next Commit, or by whichever
// mutation drains it first.
func (s *Store) Stage(tracks []track.Ref, appendMode bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.pending = slices.Clone(tracks)
	s.pendingAppend = appendMode
	s.hasPending = true
}

// Commit applies the staged batch, if any.
func (s *Store) Commit() {
	s.drainPending()
}

// Replace discards the queue, sets it to tracks, resets the index to 0 and
// synchronously asks the loader to load position 0 against the new queue.
func (s *Store) Replace(tracks []track.Ref) {
	s.drainPending()
	s.replace(tracks)
}

// Append merges tracks onto the end without disturbing the current index.
// When the queue was empty beforehand, position 0 is loaded.
func (s *Store) Append(tracks []track.Ref) {
	s.drainPending()
	s.append(tracks)
}

// Advance asks the loader to load the neighboring index. The current index
// itself is only committed (via SetIndex) once the load succeeds.
// Out-of-range targets are a no-op; returns whether a load was requested.
func (s *Store) Advance(dir Direction) bool {
	s.drainPending()

	s.mu.Lock()
	target := s.current + 1
	if dir == DirectionPrevious {
		target = s.current - 1
	}
	if target < 0 || target >= len(s.tracks) {
		s.mu.Unlock()
		return false
	}
	loader := s.loader
	snapshot := slices.Clone(s.tracks)
	s.mu.Unlock()

	if loader != nil {
		loader.Load(target, snapshot)
	}
	return true
}

// MoveItem moves the element at oldIndex to newIndex and remaps the current
// index so the playing track stays attached to its element.
func (s *Store) MoveItem(oldIndex, newIndex int) {
	s.drainPending()

	s.mu.Lock()
	s.tracks, s.current = Move(s.tracks, s.current, oldIndex, newIndex)
	snapshot, index := slices.Clone(s.tracks), s.current
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	notify(listeners, snapshot, index)
}

// Restore installs a previously persisted queue and position, then issues
// exactly one load of the restored index. Listeners are not notified: the
// restored state came from storage, so writing it straight back is pointless.
func (s *Store) Restore(tracks []track.Ref, index int) {
	s.mu.Lock()
	s.tracks = slices.Clone(tracks)
	if index < 0 {
		index = 0
	}
	if index >= len(s.tracks) {
		index = len(s.tracks) - 1
	}
	s.current = index
	loader := s.loader
	snapshot := slices.Clone(s.tracks)
	s.mu.Unlock()

	if len(snapshot) > 0 && loader != nil {
		loader.Load(index, snapshot)
	}
}

// SetIndex commits a new current position. Called by the loader once a load
// has succeeded. A no-op when the index is unchanged or out of range.
func (s *Store) SetIndex(index int) {
	s.mu.Lock()
	if index == s.current || index < 0 || index >= len(s.tracks) {
		s.mu.Unlock()
		return
	}
	s.current = index
	snapshot, listeners := slices.Clone(s.tracks), slices.Clone(s.listeners)
	s.mu.Unlock()

	notify(listeners, snapshot, index)
}

// Reset tears the queue down to empty on sign-out. Listeners are not
// notified: the in-memory teardown must not clobber the persisted queue.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tracks = make([]track.Ref, 0)
	s.current = 0
	s.pending = nil
	s.hasPending = false
}

func (s *Store) replace(tracks []track.Ref) {
	s.mu.Lock()
	s.tracks = slices.Clone(tracks)
	s.current = 0
	loader := s.loader
	snapshot := slices.Clone(s.tracks)
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	notify(listeners, snapshot, 0)
	if loader != nil {
		loader.Load(0, snapshot)
	}
}

func (s *Store) append(tracks []track.Ref) {
	if len(tracks) == 0 {
		return
	}

	s.mu.Lock()
	wasEmpty := len(s.tracks) == 0
	s.tracks = append(s.tracks, tracks...)
	index := s.current
	loader := s.loader
	snapshot := slices.Clone(s.tracks)
	listeners := slices.Clone(s.listeners)
	s.mu.Unlock()

	notify(listeners, snapshot, index)
	if wasEmpty && loader != nil {
		loader.Load(0, snapshot)
	}
}

// drainPending applies the staged batch at most once, before the mutation
// that triggered the drain produces a new state.
func (s *Store) drainPending() {
	s.mu.Lock()
	if !s.hasPending {
		s.mu.Unlock()
		return
	}
	batch, appendMode := s.pending, s.pendingAppend
	s.pending = nil
	s.hasPending = false
	s.mu.Unlock()

	if appendMode {
		s.append(batch)
	} else {
		s.replace(batch)
	}
}

func notify(listeners []ChangeListener, queue []track.Ref, index int) {
	for _, l := range listeners {
		l(slices.Clone(queue), index)
	}
}
