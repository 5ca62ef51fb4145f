package service

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// ErrNoDraft is returned when no draft has been persisted yet.
var ErrNoDraft = errors.New("no draft saved")

// DraftPersistence is the storage port behind the authoring draft cache.
// Implementations may write to disk, a database, or stay in memory for
// tests.
type DraftPersistence interface {
	Save(key string, data []byte) error
	Load(key string) ([]byte, error)
	Clear(key string) error
}

// FileDraftPersistence keeps one JSON file per draft key under dir.
type FileDraftPersistence struct {
	Dir string
}

func (p *FileDraftPersistence) path(key string) string {
	return filepath.Join(p.Dir, key+".json")
}

func (p *FileDraftPersistence) Save(key string, data []byte) error {
	if err := os.MkdirAll(p.Dir, 0755); err != nil {
		return err
	}
	return os.WriteFile(p.path(key), data, 0644)
}

func (p *FileDraftPersistence) Load(key string) ([]byte, error) {
	data, err := os.ReadFile(p.path(key))
	if os.IsNotExist(err) {
		return nil, ErrNoDraft
	}
	return data, err
}

func (p *FileDraftPersistence) Clear(key string) error {
	err := os.Remove(p.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// DraftStore mirrors an in-progress course draft to its persistence port
// on a debounced timer, so an authoring session survives a restart without
// writing on every keystroke.
type DraftStore struct {
	mu      sync.Mutex
	persist DraftPersistence
	key     string
	delay   time.Duration
	timer   *time.Timer
	draft   *CourseExport
	saveErr func(error)
}

// NewDraftStore builds a store keyed by key. delay is the debounce window;
// the course authoring flow uses 2 seconds.
func NewDraftStore(persist DraftPersistence, key string, delay time.Duration, onSaveError func(error)) *DraftStore {
	if onSaveError == nil {
		onSaveError = func(error) {}
	}
	return &DraftStore{
		persist: persist,
		key:     key,
		delay:   delay,
		saveErr: onSaveError,
	}
}

// Update replaces the in-memory draft and (re)arms the debounce timer.
func (s *DraftStore) Update(draft *CourseExport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.draft = draft
	if s.timer != nil {
		s.timer.Stop()
	}
	s.timer = time.AfterFunc(s.delay, s.flushLocked)
}

func (s *DraftStore) flushLocked() {
	s.mu.Lock()
	draft := s.draft
	s.mu.Unlock()
	if draft == nil {
		return
	}
	data, err := json.Marshal(draft)
	if err != nil {
		s.saveErr(err)
		return
	}
	if err := s.persist.Save(s.key, data); err != nil {
		s.saveErr(err)
	}
}

// Flush persists the current draft immediately, cancelling any pending
// debounce.
func (s *DraftStore) Flush() {
	s.mu.Lock()
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	s.flushLocked()
}

// Load returns the persisted draft, or ErrNoDraft.
func (s *DraftStore) Load() (*CourseExport, error) {
	data, err := s.persist.Load(s.key)
	if err != nil {
		return nil, err
	}
	var draft CourseExport
	if err := json.Unmarshal(data, &draft); err != nil {
		return nil, err
	}
	return &draft, nil
}

// Clear drops the in-memory draft and removes the persisted copy.
func (s *DraftStore) Clear() error {
	s.mu.Lock()
	s.draft = nil
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	s.mu.Unlock()
	return s.persist.Clear(s.key)
}
