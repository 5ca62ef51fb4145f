package service

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryPersistence counts saves so the debounce behavior is observable.
type memoryPersistence struct {
	mu    sync.Mutex
	data  map[string][]byte
	saves int
}

func newMemoryPersistence() *memoryPersistence {
	return &memoryPersistence{data: map[string][]byte{}}
}

func (p *memoryPersistence) Save(key string, data []byte) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.data[key] = data
	p.saves++
	return nil
}

func (p *memoryPersistence) Load(key string) ([]byte, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	data, ok := p.data[key]
	if !ok {
		return nil, ErrNoDraft
	}
	return data, nil
}

func (p *memoryPersistence) Clear(key string) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.data, key)
	return nil
}

func (p *memoryPersistence) saveCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.saves
}

func TestDraftStoreDebouncesBurstsIntoOneSave(t *testing.T) {
	persist := newMemoryPersistence()
	store := NewDraftStore(persist, "course-1", 30*time.Millisecond, nil)

	store.Update(&CourseExport{Title: "v1"})
	store.Update(&CourseExport{Title: "v2"})
	store.Update(&CourseExport{Title: "v3"})

	assert.Equal(t, 0, persist.saveCount(), "nothing written inside the window")

	require.Eventually(t, func() bool {
		return persist.saveCount() == 1
	}, time.Second, 10*time.Millisecond)

	draft, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "v3", draft.Title, "only the latest draft lands")

	// A quiet period must not produce further writes.
	time.Sleep(60 * time.Millisecond)
	assert.Equal(t, 1, persist.saveCount())
}

func TestDraftStoreFlushWritesImmediately(t *testing.T) {
	persist := newMemoryPersistence()
	store := NewDraftStore(persist, "course-1", time.Hour, nil)

	store.Update(&CourseExport{Title: "in flight"})
	store.Flush()

	assert.Equal(t, 1, persist.saveCount())
	draft, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "in flight", draft.Title)
}

func TestDraftStoreLoadWithoutDraft(t *testing.T) {
	store := NewDraftStore(newMemoryPersistence(), "course-1", time.Hour, nil)
	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoDraft)
}

func TestDraftStoreClear(t *testing.T) {
	persist := newMemoryPersistence()
	store := NewDraftStore(persist, "course-1", time.Hour, nil)

	store.Update(&CourseExport{Title: "draft"})
	store.Flush()
	require.NoError(t, store.Clear())

	_, err := store.Load()
	assert.ErrorIs(t, err, ErrNoDraft)
}

func TestFileDraftPersistenceRoundTrip(t *testing.T) {
	persist := &FileDraftPersistence{Dir: t.TempDir()}
	store := NewDraftStore(persist, "course-1", time.Hour, nil)

	store.Update(&CourseExport{Title: "on disk"})
	store.Flush()

	draft, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, "on disk", draft.Title)

	require.NoError(t, store.Clear())
	_, err = store.Load()
	assert.ErrorIs(t, err, ErrNoDraft)
}
