package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"gamelib/internal/console/metrics"
	"gamelib/internal/console/models"
	id "gamelib/pkg/domain"
	dErrors "gamelib/pkg/domain-errors"
	"gamelib/pkg/platform/audit"
	"gamelib/pkg/platform/sentinel"
	"gamelib/pkg/requestcontext"
)

// Store persists consoles. Implementations return sentinel errors.
type Store interface {
	CreateIfAvailable(ctx context.Context, c *models.Console) error
	FindByID(ctx context.Context, consoleID id.ConsoleID) (*models.Console, error)
	List(ctx context.Context) ([]*models.Console, error)
	Update(ctx context.Context, c *models.Console) error
}

// Integrity performs the deletes that depend on attached games.
type Integrity interface {
	DeleteConsole(ctx context.Context, consoleID id.ConsoleID) error
	ClearConsoleGames(ctx context.Context, consoleID id.ConsoleID) (int, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages the console registry.
type Service struct {
	consoles       Store
	integrity      Integrity
	logger         *slog.Logger
	auditPublisher AuditPublisher
	metrics        *metrics.Metrics
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher AuditPublisher) Option {
	return func(s *Service) {
		s.auditPublisher = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

func New(consoles Store, integrity Integrity, opts ...Option) *Service {
	s := &Service{consoles: consoles, integrity: integrity}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// Register adds a console, optionally linked to a catalog platform.
func (s *Service) Register(ctx context.Context, name string, externalPlatformID *int) (*models.Console, error) {
	c, err := models.NewConsole(id.NewConsoleID(), name, externalPlatformID, requestcontext.Now(ctx))
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, messageOf(err))
		}
		return nil, err
	}

	if err := s.consoles.CreateIfAvailable(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "a console with this name or platform already exists")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create console")
	}

	details := map[string]string{"name": c.Name}
	if c.ExternalPlatformID != nil {
		details["external_platform_id"] = strconv.Itoa(*c.ExternalPlatformID)
	}
	s.emit(ctx, audit.ActionConsoleRegistered, c.ID, details)
	if s.metrics != nil {
		s.metrics.IncrementRegistered()
	}
	return c, nil
}

// List returns every console ordered by name.
func (s *Service) List(ctx context.Context) ([]*models.Console, error) {
	consoles, err := s.consoles.List(ctx)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list consoles")
	}
	return consoles, nil
}

func (s *Service) Get(ctx context.Context, consoleID id.ConsoleID) (*models.Console, error) {
	c, err := s.consoles.FindByID(ctx, consoleID)
	if err != nil {
		return nil, wrapConsoleErr(err)
	}
	return c, nil
}

// Rename changes the name of a manually added console.
func (s *Service) Rename(ctx context.Context, consoleID id.ConsoleID, name string) (*models.Console, error) {
	c, err := s.consoles.FindByID(ctx, consoleID)
	if err != nil {
		return nil, wrapConsoleErr(err)
	}

	newName, err := c.CanRename(name)
	if err != nil {
		if dErrors.HasCode(err, dErrors.CodeInvariantViolation) {
			return nil, dErrors.New(dErrors.CodeValidation, messageOf(err))
		}
		return nil, err
	}
	previous := c.Name
	c.ApplyRename(newName, requestcontext.Now(ctx))

	if err := s.consoles.Update(ctx, c); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "a console with this name already exists")
		}
		return nil, wrapConsoleErr(err)
	}

	s.emit(ctx, audit.ActionConsoleRenamed, c.ID, map[string]string{
		"previous_name": previous,
		"name":          c.Name,
	})
	return c, nil
}

// Delete removes a console that has no games attached.
func (s *Service) Delete(ctx context.Context, consoleID id.ConsoleID) error {
	start := time.Now()
	defer s.observeDelete(start)

	if err := s.integrity.DeleteConsole(ctx, consoleID); err != nil {
		if dErrors.HasCode(err, dErrors.CodeConflict) && s.metrics != nil {
			s.metrics.IncrementDeleteRefused()
		}
		return err
	}

	s.emit(ctx, audit.ActionConsoleDeleted, consoleID, nil)
	if s.metrics != nil {
		s.metrics.IncrementDeleted()
	}
	return nil
}

// ClearGames removes every game from the console and returns the count.
func (s *Service) ClearGames(ctx context.Context, consoleID id.ConsoleID) (int, error) {
	start := time.Now()
	defer s.observeDelete(start)

	n, err := s.integrity.ClearConsoleGames(ctx, consoleID)
	if err != nil {
		return 0, err
	}

	s.emit(ctx, audit.ActionConsoleGamesCleared, consoleID, map[string]string{
		"deleted_count": strconv.Itoa(n),
	})
	if s.metrics != nil {
		s.metrics.AddGamesCleared(n)
	}
	return n, nil
}

func (s *Service) observeDelete(start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveDelete(start)
	}
}

// emit publishes an audit event. Failures are logged and never fail the request.
func (s *Service) emit(ctx context.Context, action audit.Action, consoleID id.ConsoleID, details map[string]string) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:  action,
		Subject: consoleID.String(),
		Details: details,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"request_id", requestcontext.RequestID(ctx),
			"action", string(action),
			"console_id", consoleID.String(),
			"error", err,
		)
	}
}

func wrapConsoleErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "console not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load console")
}

func messageOf(err error) string {
	if de, ok := dErrors.As(err); ok {
		return de.Message
	}
	return err.Error()
}
