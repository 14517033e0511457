package store

import (
	"context"
	"fmt"
	"slices"
	"sync"

	"gamelib/internal/game/models"
	id "gamelib/pkg/domain"
	"gamelib/pkg/platform/sentinel"
)

type externalKey struct {
	console  id.ConsoleID
	external int
}

// InMemory is a process local game store for development and tests.
// It does not know about consoles; callers check console existence.
type InMemory struct {
	mu         sync.RWMutex
	seq        int64
	games      map[id.GameID]*models.Game
	byExternal map[externalKey]id.GameID
}

func NewInMemory() *InMemory {
	return &InMemory{
		games:      make(map[id.GameID]*models.Game),
		byExternal: make(map[externalKey]id.GameID),
	}
}

// Create stores g and assigns its insertion sequence.
func (s *InMemory) Create(_ context.Context, g *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if key, ok := keyOf(g); ok {
		if _, taken := s.byExternal[key]; taken {
			return fmt.Errorf("external id %d on console: %w", key.external, sentinel.ErrAlreadyUsed)
		}
	}

	s.seq++
	g.Seq = s.seq
	s.games[g.ID] = g.Clone()
	if key, ok := keyOf(g); ok {
		s.byExternal[key] = g.ID
	}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, gameID id.GameID) (*models.Game, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	g, ok := s.games[gameID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return g.Clone(), nil
}

// List returns the games matching filter in the requested order.
func (s *InMemory) List(_ context.Context, filter models.ListFilter) ([]*models.Game, error) {
	s.mu.RLock()
	out := make([]*models.Game, 0, len(s.games))
	for _, g := range s.games {
		if filter.Matches(g) {
			out = append(out, g.Clone())
		}
	}
	s.mu.RUnlock()

	slices.SortStableFunc(out, func(a, b *models.Game) int {
		return models.Compare(a, b, filter.Sort, filter.Desc)
	})
	return out, nil
}

// Update replaces a stored game, keeping the per-console external index in step.
func (s *InMemory) Update(_ context.Context, g *models.Game) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.games[g.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if key, ok := keyOf(g); ok {
		if owner, taken := s.byExternal[key]; taken && owner != g.ID {
			return fmt.Errorf("external id %d on console: %w", key.external, sentinel.ErrAlreadyUsed)
		}
	}

	if key, ok := keyOf(current); ok {
		delete(s.byExternal, key)
	}
	stored := g.Clone()
	stored.Seq = current.Seq
	stored.CreatedAt = current.CreatedAt
	s.games[g.ID] = stored
	if key, ok := keyOf(stored); ok {
		s.byExternal[key] = g.ID
	}
	return nil
}

func (s *InMemory) Delete(_ context.Context, gameID id.GameID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	g, ok := s.games[gameID]
	if !ok {
		return sentinel.ErrNotFound
	}
	s.remove(g)
	return nil
}

func (s *InMemory) CountByConsole(_ context.Context, consoleID id.ConsoleID) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, g := range s.games {
		if g.ConsoleID == consoleID {
			n++
		}
	}
	return n, nil
}

// DeleteByConsole removes every game on the console and returns how many were removed.
func (s *InMemory) DeleteByConsole(_ context.Context, consoleID id.ConsoleID) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, g := range s.games {
		if g.ConsoleID == consoleID {
			s.remove(g)
			n++
		}
	}
	return n, nil
}

// remove must be called with mu held.
func (s *InMemory) remove(g *models.Game) {
	delete(s.games, g.ID)
	if key, ok := keyOf(g); ok {
		delete(s.byExternal, key)
	}
}

func keyOf(g *models.Game) (externalKey, bool) {
	if g.ExternalID == nil {
		return externalKey{}, false
	}
	return externalKey{console: g.ConsoleID, external: *g.ExternalID}, true
}
