// Package persist mirrors the queue store to the remote per-user document
// store: one hydration read at sign-in, best-effort write-back afterwards.
package persist

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	zlog "github.com/rs/zerolog/log"

	"github.com/mgrn/tonearm/internal/app/queue"
	"github.com/mgrn/tonearm/internal/domain/track"
	"github.com/mgrn/tonearm/internal/infra/docstore"
)

const writeTimeout = 10 * time.Second

// DocumentStore is the remote store surface the syncer needs.
type DocumentStore interface {
	Get(ctx context.Context, userID string) (*docstore.QueueDocument, error)
	Set(ctx context.Context, userID string, doc docstore.QueueDocument, merge bool) error
}

// Sync observes queue mutations and mirrors them to the document store.
//
// Writes are suppressed until hydration has completed, so a freshly started
// session can never overwrite a previously saved queue with its own empty
// one. Writes are fire-and-forget: failures are logged, never surfaced and
// never retried.
type Sync struct {
	mu       sync.Mutex
	docs     DocumentStore
	store    *queue.Store
	userID   string
	hydrated bool

	wg sync.WaitGroup
}

// New creates a syncer and registers it as a queue change listener.
func New(docs DocumentStore, store *queue.Store) *Sync {
	s := &Sync{docs: docs, store: store}
	store.OnChange(s.onQueueChange)
	return s
}

// Hydrate performs the one-time load of the user's saved queue after
// authentication. A present, non-empty document is restored into the queue
// store, which issues exactly one load of the resumed index. Hydration
// marks the syncer live either way: even when the read fails, later user
// mutations must still be persisted.
func (s *Sync) Hydrate(ctx context.Context, userID string) error {
	s.mu.Lock()
	s.userID = userID
	s.mu.Unlock()

	doc, err := s.docs.Get(ctx, userID)

	s.mu.Lock()
	s.hydrated = true
	s.mu.Unlock()

	if err != nil {
		zlog.Warn().Err(err).Msgf("persist: hydration read failed: user=%s", userID)
		return errors.Wrap(err, "queue hydration failed")
	}
	if doc.Empty() {
		zlog.Debug().Msgf("persist: no saved queue: user=%s", userID)
		return nil
	}

	zlog.Info().Msgf("persist: restoring saved queue: user=%s tracks=%d index=%d",
		userID, len(doc.Queue), doc.Index)
	s.store.Restore(doc.Queue, doc.Index)
	return nil
}

// Hydrated reports whether the one-time hydration has completed.
func (s *Sync) Hydrated() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.hydrated
}

// Reset tears the syncer down on sign-out; subsequent mutations are no
// longer persisted until the next Hydrate.
func (s *Sync) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.hydrated = false
	s.userID = ""
}

// Flush waits for in-flight writes. Used on shutdown.
func (s *Sync) Flush() {
	s.wg.Wait()
}

func (s *Sync) onQueueChange(q []track.Ref, index int) {
	s.mu.Lock()
	if !s.hydrated || s.userID == "" {
		s.mu.Unlock()
		return
	}
	userID := s.userID
	s.mu.Unlock()

	doc := docstore.QueueDocument{Queue: q, Index: index}
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := s.docs.Set(ctx, userID, doc, true); err != nil {
			zlog.Warn().Err(err).Msgf("persist: queue write failed: user=%s", userID)
		}
	}()
}
