// Package store owns the in-memory expense collection and is the single
// path to the persistence backend: load, mutate, persist, reload.
package store

import (
	"context"
	"sync"

	"outlay/internal/blob"
	"outlay/internal/core"
	"outlay/internal/log"
)

// PersistHook is called after every successful write to the backend, with
// the backend's new version. Wired to the change-notification bus so other
// instances can reload; nil disables notification.
type PersistHook func(ctx context.Context, version int64)

// Store is the single source of truth for the expense collection. All
// mutations re-sort, persist and leave the collection satisfying the
// invariants: unique ids, date-descending order with unparseable dates
// last, every record shape-validated.
//
// The mutex replaces the browser's single-threaded event loop: within one
// locked mutation the sequence mutate -> persist runs to completion, so no
// caller ever observes an intermediate state.
type Store struct {
	mu        sync.Mutex
	storage   blob.Storage
	key       string
	logger    *log.Logger
	items     []core.Expense
	version   int64
	onPersist PersistHook
}

func New(storage blob.Storage, key string, logger *log.Logger) *Store {
	if logger == nil {
		logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentStore)
	}
	return &Store{
		storage: storage,
		key:     key,
		logger:  logger,
	}
}

// OnPersist installs the post-persist hook. Call before the store is
// shared between goroutines.
func (s *Store) OnPersist(hook PersistHook) {
	s.onPersist = hook
}

// Load reads the persisted blob and replaces the in-memory collection.
// An absent key, an unreadable backend, or a malformed blob all yield an
// empty collection: stored data is advisory, never fatal.
func (s *Store) Load(ctx context.Context) []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
	return s.snapshotLocked()
}

func (s *Store) loadLocked(ctx context.Context) {
	raw, ok, err := s.storage.Get(ctx, s.key)
	if err != nil {
		s.logger.WarnContext(ctx, "Could not load expenses from storage",
			log.FieldStorageKey, s.key, log.FieldError, err)
		s.items = nil
		return
	}
	if !ok {
		s.items = nil
		return
	}
	s.items = core.DecodeCollection([]byte(raw))
	if v, err := s.storage.Version(ctx, s.key); err == nil {
		s.version = v
	}
}

// Add prepends a new record, re-sorts and persists. The caller is
// responsible for generating a fresh id and validating the fields.
func (s *Store) Add(ctx context.Context, rec core.Expense) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]core.Expense{rec}, s.items...)
	core.SortByDateDesc(s.items)
	s.persistLocked(ctx)
}

// Update merges the patch onto the record with the given id. Unknown ids
// leave the collection unchanged; the blob is still rewritten with the
// same content, matching Delete's behavior.
func (s *Store) Update(ctx context.Context, id string, patch core.Patch) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.items {
		if s.items[i].ID == id {
			s.items[i] = s.items[i].Apply(patch)
			break
		}
	}
	core.SortByDateDesc(s.items)
	s.persistLocked(ctx)
}

// Delete removes the record with the given id if present; a no-op
// otherwise. Deletion is destructive and immediate, there is no
// soft-delete.
func (s *Store) Delete(ctx context.Context, id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	kept := s.items[:0]
	for _, e := range s.items {
		if e.ID != id {
			kept = append(kept, e)
		}
	}
	s.items = kept
	s.persistLocked(ctx)
}

// Persist writes the whole collection to the backend. A write failure is
// reported to the log and swallowed: the in-memory collection is kept
// as-is and is allowed to diverge from durable storage.
func (s *Store) Persist(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.persistLocked(ctx)
}

func (s *Store) persistLocked(ctx context.Context) {
	raw, err := core.EncodeCollection(s.items)
	if err != nil {
		s.logger.ErrorContext(ctx, "Could not serialize expenses",
			log.FieldStorageKey, s.key, log.FieldError, err)
		return
	}
	if err := s.storage.Set(ctx, s.key, string(raw)); err != nil {
		s.logger.ErrorContext(ctx, "Could not save expenses",
			log.FieldStorageKey, s.key, log.FieldError, err)
		return
	}
	if v, err := s.storage.Version(ctx, s.key); err == nil {
		s.version = v
	}
	if s.onPersist != nil {
		s.onPersist(ctx, s.version)
	}
}

// Reload discards the in-memory collection and re-reads storage. Used
// when another instance reports a change: last writer wins, no merge.
func (s *Store) Reload(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loadLocked(ctx)
	s.logger.InfoContext(ctx, "Reloaded expenses from storage",
		log.FieldStorageKey, s.key, "count", len(s.items), log.FieldVersion, s.version)
}

// Items returns a copy of the collection in display order.
func (s *Store) Items() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() []core.Expense {
	out := make([]core.Expense, len(s.items))
	copy(out, s.items)
	return out
}

// Get returns the record with the given id.
func (s *Store) Get(id string) (core.Expense, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.items {
		if e.ID == id {
			return e, true
		}
	}
	return core.Expense{}, false
}

// Len reports the collection size.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Version reports the backend version the in-memory collection was last
// synchronized with (loaded from or persisted to).
func (s *Store) Version() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}
