// Package game owns the persistent realm: it applies session rewards,
// resource spends and target pins to storage in single transactions and
// keeps the committed state in memory.
package game

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"realmlog/internal/realm"
	"realmlog/internal/store"
)

type InvestMode string

const (
	// InvestPool credits session minutes to the resource pools; tiles are
	// only grown by explicit spends.
	InvestPool InvestMode = "pool"
	// InvestDirect sends core session minutes straight into a tile.
	InvestDirect InvestMode = "direct"
)

func (m InvestMode) Valid() bool {
	return m == InvestPool || m == InvestDirect
}

var ErrNotInitialized = errors.New("game store not initialized")

type Options struct {
	Layout     *realm.Layout
	InvestMode InvestMode
	Logger     *slog.Logger
	Now        func() time.Time
	NewID      func() (string, error)
}

// State is a snapshot of the committed world. Callers own the returned
// slices.
type State struct {
	Player realm.Player `json:"player"`
	Tiles  []realm.Tile `json:"tiles"`
}

func (s State) Index() *realm.Index {
	return realm.NewIndex(s.Tiles)
}

func (s State) Tile(id string) (realm.Tile, bool) {
	for _, t := range s.Tiles {
		if t.ID == id {
			return t, true
		}
	}
	return realm.Tile{}, false
}

func (s State) clone() State {
	tiles := make([]realm.Tile, len(s.Tiles))
	copy(tiles, s.Tiles)
	return State{Player: s.Player, Tiles: tiles}
}

type Store struct {
	mu     sync.Mutex
	db     store.Store
	layout *realm.Layout
	mode   InvestMode
	log    *slog.Logger
	now    func() time.Time
	newID  func() (string, error)

	state State
	ready bool
}

func New(db store.Store, opts Options) *Store {
	s := &Store{
		db:     db,
		layout: opts.Layout,
		mode:   opts.InvestMode,
		log:    opts.Logger,
		now:    opts.Now,
		newID:  opts.NewID,
	}
	if s.layout == nil {
		s.layout = realm.MustDefaultLayout()
	}
	if !s.mode.Valid() {
		s.mode = InvestPool
	}
	if s.log == nil {
		s.log = slog.Default()
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.newID == nil {
		s.newID = newUUIDv7
	}
	return s
}

func newUUIDv7() (string, error) {
	id, err := uuid.NewV7()
	if err != nil {
		return "", fmt.Errorf("generating id: %w", err)
	}
	return id.String(), nil
}

func (s *Store) InvestMode() InvestMode {
	return s.mode
}

func (s *Store) Layout() *realm.Layout {
	return s.layout
}

// State returns a copy of the committed state.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// Reload replaces the in-memory state with what storage holds, without
// running repairs.
func (s *Store) Reload(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	player, err := s.db.GetPlayer(ctx)
	if err != nil {
		return err
	}
	tiles, err := s.db.ListTiles(ctx)
	if err != nil {
		return err
	}
	s.state = State{Player: player, Tiles: realm.SortTiles(tiles)}
	s.ready = true
	return nil
}

func (s *Store) Sessions(ctx context.Context, filter store.SessionFilter) ([]realm.Session, error) {
	return s.db.ListSessions(ctx, filter)
}

func (s *Store) SearchSessions(ctx context.Context, query string, limit int) ([]realm.Session, error) {
	return s.db.SearchSessions(ctx, query, limit)
}

// replaceTiles returns tiles with every tile in changed swapped in by id.
func replaceTiles(tiles []realm.Tile, changed ...realm.Tile) []realm.Tile {
	byID := make(map[string]realm.Tile, len(changed))
	for _, t := range changed {
		byID[t.ID] = t
	}
	out := make([]realm.Tile, len(tiles))
	for i, t := range tiles {
		if c, ok := byID[t.ID]; ok {
			t = c
		}
		out[i] = t
	}
	return out
}
