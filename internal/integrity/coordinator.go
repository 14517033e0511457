// Package integrity enforces the rules that span consoles and games: a console
// cannot be deleted while games reference it, and a console's games can be
// removed in bulk.
package integrity

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	consolemodels "gamelib/internal/console/models"
	id "gamelib/pkg/domain"
	dErrors "gamelib/pkg/domain-errors"
	"gamelib/pkg/platform/sentinel"
)

type ConsoleStore interface {
	FindByID(ctx context.Context, consoleID id.ConsoleID) (*consolemodels.Console, error)
	Delete(ctx context.Context, consoleID id.ConsoleID) error
}

type GameStore interface {
	CountByConsole(ctx context.Context, consoleID id.ConsoleID) (int, error)
	DeleteByConsole(ctx context.Context, consoleID id.ConsoleID) (int, error)
}

// ConsoleInUseError reports that a console still has games attached.
type ConsoleInUseError struct {
	ConsoleID id.ConsoleID
	Count     int
}

func (e *ConsoleInUseError) Error() string {
	return fmt.Sprintf("console %s has %d associated games", e.ConsoleID, e.Count)
}

// Unwrap exposes the conflict code to dErrors.As.
func (e *ConsoleInUseError) Unwrap() error {
	return dErrors.New(dErrors.CodeConflict,
		"cannot delete console with associated games; delete or reassign the games first")
}

// Details adds the attached game count to the error envelope.
func (e *ConsoleInUseError) Details() map[string]any {
	return map[string]any{"associatedGames": e.Count}
}

// Coordinator runs cross-entity checks and mutations in one transaction.
type Coordinator struct {
	consoles ConsoleStore
	games    GameStore
	tx       StoreTx
	logger   *slog.Logger
}

type Option func(*Coordinator)

// WithStoreTx sets the transaction boundary. Defaults to NewInMemoryTx.
func WithStoreTx(tx StoreTx) Option {
	return func(c *Coordinator) {
		c.tx = tx
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *Coordinator) {
		c.logger = logger
	}
}

func New(consoles ConsoleStore, games GameStore, opts ...Option) *Coordinator {
	c := &Coordinator{consoles: consoles, games: games}
	for _, opt := range opts {
		opt(c)
	}
	if c.tx == nil {
		c.tx = NewInMemoryTx()
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// DeleteConsole removes a console that has no games.
func (c *Coordinator) DeleteConsole(ctx context.Context, consoleID id.ConsoleID) error {
	return c.tx.RunInTx(ctx, consoleID, func(txCtx context.Context) error {
		if _, err := c.consoles.FindByID(txCtx, consoleID); err != nil {
			return wrapConsoleErr(err)
		}

		count, err := c.games.CountByConsole(txCtx, consoleID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to count console games")
		}
		if count > 0 {
			return &ConsoleInUseError{ConsoleID: consoleID, Count: count}
		}

		if err := c.consoles.Delete(txCtx, consoleID); err != nil {
			if errors.Is(err, sentinel.ErrConflict) {
				// a game was attached between the count and the delete
				c.logger.WarnContext(txCtx, "console delete refused by foreign key",
					"console_id", consoleID.String(),
				)
				return dErrors.New(dErrors.CodeConflict, "console gained games while being deleted")
			}
			return wrapConsoleErr(err)
		}
		return nil
	})
}

// ClearConsoleGames deletes every game on the console and returns how many were removed.
func (c *Coordinator) ClearConsoleGames(ctx context.Context, consoleID id.ConsoleID) (int, error) {
	var removed int
	err := c.tx.RunInTx(ctx, consoleID, func(txCtx context.Context) error {
		if _, err := c.consoles.FindByID(txCtx, consoleID); err != nil {
			return wrapConsoleErr(err)
		}
		n, err := c.games.DeleteByConsole(txCtx, consoleID)
		if err != nil {
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to clear console games")
		}
		removed = n
		return nil
	})
	if err != nil {
		return 0, err
	}
	return removed, nil
}

func wrapConsoleErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "console not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load console")
}
