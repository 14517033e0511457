package adapters

import (
	"context"

	consolemodels "gamelib/internal/console/models"
	"gamelib/internal/game/models"
	id "gamelib/pkg/domain"
)

// ConsoleStore is the read side of the console store.
type ConsoleStore interface {
	FindByID(ctx context.Context, consoleID id.ConsoleID) (*consolemodels.Console, error)
	FindByIDs(ctx context.Context, ids []id.ConsoleID) (map[id.ConsoleID]*consolemodels.Console, error)
}

// ConsoleDirectory adapts a console store to the game service's lookups.
type ConsoleDirectory struct {
	store ConsoleStore
}

func NewConsoleDirectory(store ConsoleStore) *ConsoleDirectory {
	return &ConsoleDirectory{store: store}
}

// Find returns the console reference or the store's ErrNotFound.
func (d *ConsoleDirectory) Find(ctx context.Context, consoleID id.ConsoleID) (*models.ConsoleRef, error) {
	c, err := d.store.FindByID(ctx, consoleID)
	if err != nil {
		return nil, err
	}
	return mapConsole(c), nil
}

// FindMany resolves a batch of console IDs. Unknown IDs are absent from the result.
func (d *ConsoleDirectory) FindMany(ctx context.Context, ids []id.ConsoleID) (map[id.ConsoleID]*models.ConsoleRef, error) {
	consoles, err := d.store.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make(map[id.ConsoleID]*models.ConsoleRef, len(consoles))
	for k, c := range consoles {
		out[k] = mapConsole(c)
	}
	return out, nil
}

func mapConsole(c *consolemodels.Console) *models.ConsoleRef {
	return &models.ConsoleRef{
		ID:                 c.ID,
		Name:               c.Name,
		ExternalPlatformID: c.ExternalPlatformID,
	}
}
