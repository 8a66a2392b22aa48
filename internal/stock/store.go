package stock

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Store owns the live snapshot and the staging area for pending uploads.
// Reads never block: the current snapshot sits behind an atomic pointer and
// is replaced wholesale. Writes (staging, apply) are serialised by a mutex.
type Store struct {
	current atomic.Pointer[Snapshot]
	version atomic.Int64

	mu         sync.Mutex
	staged     map[uuid.UUID]*stagedTables
	stagingTTL time.Duration
	now        func() time.Time
}

type stagedTables struct {
	inventory []InventoryRecord
	outbound  []OutboundRecord
	hasInv    bool
	hasOut    bool
	createdAt time.Time
}

const defaultStagingTTL = 30 * time.Minute

// NewStore returns a store holding an empty snapshot at version zero.
func NewStore() *Store {
	s := &Store{
		staged:     make(map[uuid.UUID]*stagedTables),
		stagingTTL: defaultStagingTTL,
		now:        time.Now,
	}
	s.current.Store(&Snapshot{})
	return s
}

// Snapshot returns the live snapshot. Callers must not mutate it.
func (s *Store) Snapshot() *Snapshot {
	return s.current.Load()
}

// Replace swaps both tables at once and returns the new version. Used for
// the boot-time load; uploads go through Stage and Commit.
func (s *Store) Replace(inventory []InventoryRecord, outbound []OutboundRecord) int64 {
	version := s.version.Add(1)
	s.current.Store(&Snapshot{Version: version, Inventory: inventory, Outbound: outbound})
	return version
}

// StageInventory parks a validated inventory table under the given staging
// id, allocating a fresh id when zero-valued.
func (s *Store) StageInventory(id uuid.UUID, records []InventoryRecord) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, entry := s.stagedEntry(id)
	entry.inventory = records
	entry.hasInv = true
	return id
}

// StageOutbound parks a validated outbound table.
func (s *Store) StageOutbound(id uuid.UUID, records []OutboundRecord) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	id, entry := s.stagedEntry(id)
	entry.outbound = records
	entry.hasOut = true
	return id
}

// Commit atomically replaces the live snapshot with the staged pair. The
// staging entry is consumed on success. When either table is missing the
// live data stays untouched.
func (s *Store) Commit(id uuid.UUID) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	entry, ok := s.staged[id]
	if !ok {
		return 0, ErrStagingNotFound
	}
	if !entry.hasInv || !entry.hasOut {
		return 0, ErrStagingIncomplete
	}
	delete(s.staged, id)
	return s.Replace(entry.inventory, entry.outbound), nil
}

// StagedState reports which tables are present for a staging id.
func (s *Store) StagedState(id uuid.UUID) (hasInventory, hasOutbound bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.expireLocked()
	entry, ok := s.staged[id]
	if !ok {
		return false, false, ErrStagingNotFound
	}
	return entry.hasInv, entry.hasOut, nil
}

func (s *Store) stagedEntry(id uuid.UUID) (uuid.UUID, *stagedTables) {
	s.expireLocked()
	if id == uuid.Nil {
		id = uuid.New()
	}
	entry, ok := s.staged[id]
	if !ok {
		entry = &stagedTables{createdAt: s.now()}
		s.staged[id] = entry
	}
	return id, entry
}

func (s *Store) expireLocked() {
	cutoff := s.now().Add(-s.stagingTTL)
	for id, entry := range s.staged {
		if entry.createdAt.Before(cutoff) {
			delete(s.staged, id)
		}
	}
}
