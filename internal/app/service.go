package app

import (
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"jacks/internal/domain"
)

var (
	ErrTableExists      = errors.New("channel already has a table")
	ErrNoTable          = errors.New("no table for channel")
	ErrNotMaster        = errors.New("actor is not table master")
	ErrAlreadyJoined    = errors.New("player already joined")
	ErrNotJoined        = errors.New("player not joined")
	ErrTableFull        = errors.New("table is full")
	ErrCannotKickSelf   = errors.New("master cannot kick themselves")
	ErrMasterMustCancel = errors.New("master must cancel the table instead of leaving")
	ErrBadPlayerCount   = errors.New("table needs 3 or 4 players to start")
	ErrGameInProgress   = errors.New("game in progress")
	ErrNoGame           = errors.New("no game in progress")
)

// Registry tracks the active table of every channel. At most one table exists
// per channel at a time.
type Registry struct {
	mu     sync.Mutex
	tables map[string]*Table
	trump  domain.Suit
	rng    *rand.Rand
}

// NewRegistry constructs a Registry whose tables deal with the given trump.
// A time-seeded rng is used when rng is nil.
func NewRegistry(trump domain.Suit, rng *rand.Rand) *Registry {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Registry{
		tables: make(map[string]*Table),
		trump:  trump,
		rng:    rng,
	}
}

// Create opens a table for channelID with master as its owner.
func (r *Registry) Create(channelID, master string) (*Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[channelID]; ok {
		return nil, fmt.Errorf("%w: %s", ErrTableExists, channelID)
	}
	// Each table owns its own source; rand.Rand is not safe for concurrent use.
	t := newTable(channelID, master, r.trump, rand.New(rand.NewSource(r.rng.Int63())))
	r.tables[channelID] = t
	return t, nil
}

// Get returns the table for channelID.
func (r *Registry) Get(channelID string) (*Table, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.tables[channelID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNoTable, channelID)
	}
	return t, nil
}

// Close forgets the table for channelID. It reports whether one existed.
func (r *Registry) Close(channelID string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.tables[channelID]; !ok {
		return false
	}
	delete(r.tables, channelID)
	return true
}

// Len returns the number of open tables.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.tables)
}
