package persist

import (
	"context"
	"slices"
	"sync"
	"testing"

	"github.com/cockroachdb/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mgrn/tonearm/internal/app/queue"
	"github.com/mgrn/tonearm/internal/domain/track"
	"github.com/mgrn/tonearm/internal/infra/docstore"
)

type write struct {
	userID string
	doc    docstore.QueueDocument
	merge  bool
}

type fakeDocStore struct {
	mu     sync.Mutex
	doc    *docstore.QueueDocument
	getErr error
	setErr error
	writes []write
}

func (f *fakeDocStore) Get(_ context.Context, _ string) (*docstore.QueueDocument, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.doc, nil
}

func (f *fakeDocStore) Set(_ context.Context, userID string, doc docstore.QueueDocument, merge bool) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.setErr != nil {
		return f.setErr
	}
	f.writes = append(f.writes, write{userID: userID, doc: doc, merge: merge})
	return nil
}

func (f *fakeDocStore) recorded() []write {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.writes)
}

type recordingLoader struct {
	store *queue.Store
	calls []int
}

func (l *recordingLoader) Load(index int, _ []track.Ref) {
	l.calls = append(l.calls, index)
	l.store.SetIndex(index)
}

func newSyncUnderTest(docs *fakeDocStore) (*Sync, *queue.Store, *recordingLoader) {
	store := queue.NewStore()
	loader := &recordingLoader{store: store}
	store.SetLoader(loader)
	return New(docs, store), store, loader
}

func TestSync_NoWriteBeforeHydration(t *testing.T) {
	docs := &fakeDocStore{}
	s, store, _ := newSyncUnderTest(docs)

	store.Replace([]track.Ref{"A", "B"})
	store.MoveItem(0, 1)
	s.Flush()

	assert.Empty(t, docs.recorded(), "startup mutations must not reach the store before hydration")
	assert.False(t, s.Hydrated())
}

func TestSync_HydrateRestoresSavedQueue(t *testing.T) {
	docs := &fakeDocStore{doc: &docstore.QueueDocument{Queue: []track.Ref{"A", "B", "C"}, Index: 1}}
	s, store, loader := newSyncUnderTest(docs)

	require.NoError(t, s.Hydrate(context.Background(), "user-1"))

	assert.Equal(t, []track.Ref{"A", "B", "C"}, store.Tracks())
	assert.Equal(t, 1, store.CurrentIndex())
	assert.Equal(t, []int{1}, loader.calls, "exactly one load of the resumed index")
	assert.True(t, s.Hydrated())

	s.Flush()
	assert.Empty(t, docs.recorded(), "restoring saved state must not write it back")
}

func TestSync_HydrateWithoutDocument(t *testing.T) {
	docs := &fakeDocStore{}
	s, store, loader := newSyncUnderTest(docs)

	require.NoError(t, s.Hydrate(context.Background(), "user-1"))

	assert.True(t, store.IsEmpty())
	assert.Empty(t, loader.calls)
	assert.True(t, s.Hydrated(), "a missing document still arms write-back")
}

func TestSync_HydrateReadFailure(t *testing.T) {
	docs := &fakeDocStore{getErr: errors.New("store unavailable")}
	s, store, _ := newSyncUnderTest(docs)

	err := s.Hydrate(context.Background(), "user-1")
	assert.ErrorContains(t, err, "hydration")
	assert.True(t, s.Hydrated(), "later user mutations must still be persisted")

	docs.mu.Lock()
	docs.getErr = nil
	docs.mu.Unlock()

	store.Replace([]track.Ref{"A"})
	s.Flush()
	assert.Len(t, docs.recorded(), 1)
}

func TestSync_WritesAfterHydration(t *testing.T) {
	docs := &fakeDocStore{}
	s, store, _ := newSyncUnderTest(docs)
	require.NoError(t, s.Hydrate(context.Background(), "user-1"))

	store.Replace([]track.Ref{"A", "B", "C"})
	store.MoveItem(0, 2)
	s.Flush()

	writes := docs.recorded()
	require.Len(t, writes, 2)
	for _, w := range writes {
		assert.Equal(t, "user-1", w.userID)
		assert.True(t, w.merge, "queue writes merge into the user document")
	}
	last := writes[len(writes)-1]
	assert.Equal(t, []track.Ref{"B", "C", "A"}, last.doc.Queue)
	assert.Equal(t, 2, last.doc.Index)
}

func TestSync_WriteFailureIsSwallowed(t *testing.T) {
	docs := &fakeDocStore{setErr: errors.New("permission denied")}
	s, store, _ := newSyncUnderTest(docs)
	require.NoError(t, s.Hydrate(context.Background(), "user-1"))

	store.Replace([]track.Ref{"A"})
	s.Flush()

	assert.Empty(t, docs.recorded(), "failed write is dropped, not retried")
}

func TestSync_ResetStopsWrites(t *testing.T) {
	docs := &fakeDocStore{}
	s, store, _ := newSyncUnderTest(docs)
	require.NoError(t, s.Hydrate(context.Background(), "user-1"))

	s.Reset()
	store.Replace([]track.Ref{"A"})
	s.Flush()

	assert.Empty(t, docs.recorded())
	assert.False(t, s.Hydrated())
}
