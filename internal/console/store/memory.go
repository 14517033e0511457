package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"gamelib/internal/console/models"
	id "gamelib/pkg/domain"
	"gamelib/pkg/platform/sentinel"
)

// InMemory is a process local console store for development and tests.
type InMemory struct {
	mu         sync.RWMutex
	consoles   map[id.ConsoleID]*models.Console
	byName     map[string]id.ConsoleID
	byPlatform map[int]id.ConsoleID
}

func NewInMemory() *InMemory {
	return &InMemory{
		consoles:   make(map[id.ConsoleID]*models.Console),
		byName:     make(map[string]id.ConsoleID),
		byPlatform: make(map[int]id.ConsoleID),
	}
}

// CreateIfAvailable inserts the console unless its name or platform id is taken.
func (s *InMemory) CreateIfAvailable(_ context.Context, c *models.Console) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, taken := s.byName[c.NameKey()]; taken {
		return fmt.Errorf("console name %q: %w", c.Name, sentinel.ErrAlreadyUsed)
	}
	if c.ExternalPlatformID != nil {
		if _, taken := s.byPlatform[*c.ExternalPlatformID]; taken {
			return fmt.Errorf("platform %d: %w", *c.ExternalPlatformID, sentinel.ErrAlreadyUsed)
		}
	}

	stored := c.Clone()
	s.consoles[c.ID] = stored
	s.byName[c.NameKey()] = c.ID
	if c.ExternalPlatformID != nil {
		s.byPlatform[*c.ExternalPlatformID] = c.ID
	}
	return nil
}

func (s *InMemory) FindByID(_ context.Context, consoleID id.ConsoleID) (*models.Console, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	c, ok := s.consoles[consoleID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return c.Clone(), nil
}

// FindByIDs returns the consoles that exist among ids. Missing IDs are skipped.
func (s *InMemory) FindByIDs(_ context.Context, ids []id.ConsoleID) (map[id.ConsoleID]*models.Console, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[id.ConsoleID]*models.Console, len(ids))
	for _, consoleID := range ids {
		if c, ok := s.consoles[consoleID]; ok {
			out[consoleID] = c.Clone()
		}
	}
	return out, nil
}

// List returns all consoles ordered by name, case-insensitively.
func (s *InMemory) List(_ context.Context) ([]*models.Console, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Console, 0, len(s.consoles))
	for _, c := range s.consoles {
		out = append(out, c.Clone())
	}
	sort.Slice(out, func(i, j int) bool {
		ki, kj := out[i].NameKey(), out[j].NameKey()
		if ki != kj {
			return ki < kj
		}
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

// Update persists name and platform changes, keeping the unique indexes in step.
func (s *InMemory) Update(_ context.Context, c *models.Console) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.consoles[c.ID]
	if !ok {
		return sentinel.ErrNotFound
	}
	if owner, taken := s.byName[c.NameKey()]; taken && owner != c.ID {
		return fmt.Errorf("console name %q: %w", c.Name, sentinel.ErrAlreadyUsed)
	}
	if c.ExternalPlatformID != nil {
		if owner, taken := s.byPlatform[*c.ExternalPlatformID]; taken && owner != c.ID {
			return fmt.Errorf("platform %d: %w", *c.ExternalPlatformID, sentinel.ErrAlreadyUsed)
		}
	}

	delete(s.byName, current.NameKey())
	if current.ExternalPlatformID != nil {
		delete(s.byPlatform, *current.ExternalPlatformID)
	}
	stored := c.Clone()
	stored.CreatedAt = current.CreatedAt
	s.consoles[c.ID] = stored
	s.byName[stored.NameKey()] = c.ID
	if stored.ExternalPlatformID != nil {
		s.byPlatform[*stored.ExternalPlatformID] = c.ID
	}
	return nil
}

// Delete removes a console. Callers check for attached games first.
func (s *InMemory) Delete(_ context.Context, consoleID id.ConsoleID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	c, ok := s.consoles[consoleID]
	if !ok {
		return sentinel.ErrNotFound
	}
	delete(s.consoles, consoleID)
	delete(s.byName, c.NameKey())
	if c.ExternalPlatformID != nil {
		delete(s.byPlatform, *c.ExternalPlatformID)
	}
	return nil
}

// Ping satisfies the health check contract.
func (s *InMemory) Ping(context.Context) error { return nil }
