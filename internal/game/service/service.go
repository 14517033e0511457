package service

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"time"

	"gamelib/internal/game/metrics"
	"gamelib/internal/game/models"
	id "gamelib/pkg/domain"
	dErrors "gamelib/pkg/domain-errors"
	"gamelib/pkg/platform/audit"
	"gamelib/pkg/platform/sentinel"
	"gamelib/pkg/requestcontext"
)

// Store persists games. Implementations return sentinel errors.
type Store interface {
	Create(ctx context.Context, g *models.Game) error
	FindByID(ctx context.Context, gameID id.GameID) (*models.Game, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.Game, error)
	Update(ctx context.Context, g *models.Game) error
	Delete(ctx context.Context, gameID id.GameID) error
}

// ConsoleDirectory resolves console references for games.
type ConsoleDirectory interface {
	Find(ctx context.Context, consoleID id.ConsoleID) (*models.ConsoleRef, error)
	FindMany(ctx context.Context, ids []id.ConsoleID) (map[id.ConsoleID]*models.ConsoleRef, error)
}

type AuditPublisher interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service manages the game catalog.
type Service struct {
	games          Store
	consoles       ConsoleDirectory
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

func New(games Store, consoles ConsoleDirectory, opts ...Option) *Service {
	s := &Service{games: games, consoles: consoles}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	return s
}

// AddFromExternalSource adds a catalog game. The same external ID may exist
// once per console.
func (s *Service) AddFromExternalSource(ctx context.Context, f models.Fields) (*models.View, error) {
	if f.ExternalID == nil {
		return nil, dErrors.New(dErrors.CodeValidation, "externalId is required")
	}
	return s.add(ctx, f, "external")
}

// AddManually adds a game typed in by the user, without an external ID.
func (s *Service) AddManually(ctx context.Context, f models.Fields) (*models.View, error) {
	f.ExternalID = nil
	return s.add(ctx, f, "manual")
}

func (s *Service) add(ctx context.Context, f models.Fields, source string) (*models.View, error) {
	g, err := models.NewGame(id.NewGameID(), f, requestcontext.Now(ctx))
	if err != nil {
		return nil, toValidation(err)
	}

	console, err := s.consoles.Find(ctx, g.ConsoleID)
	if err != nil {
		return nil, wrapConsoleErr(err)
	}

	if err := s.games.Create(ctx, g); err != nil {
		switch {
		case errors.Is(err, sentinel.ErrAlreadyUsed):
			return nil, dErrors.New(dErrors.CodeConflict, "this game is already in the console's collection")
		case errors.Is(err, sentinel.ErrNotFound):
			return nil, dErrors.New(dErrors.CodeNotFound, "console not found")
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create game")
	}

	details := map[string]string{
		"console_id": g.ConsoleID.String(),
		"source":     source,
	}
	if g.ExternalID != nil {
		details["external_id"] = strconv.Itoa(*g.ExternalID)
	}
	s.emit(ctx, audit.ActionGameAdded, g.ID, details)
	if s.metrics != nil {
		s.metrics.IncrementAdded(source)
	}
	return &models.View{Game: g, Console: console}, nil
}

// List returns the filtered games joined with their consoles.
func (s *Service) List(ctx context.Context, filter models.ListFilter) ([]*models.View, error) {
	start := time.Now()
	defer func() {
		if s.metrics != nil {
			s.metrics.ObserveList(start)
		}
	}()

	games, err := s.games.List(ctx, filter)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to list games")
	}

	seen := make(map[id.ConsoleID]struct{})
	var consoleIDs []id.ConsoleID
	for _, g := range games {
		if _, ok := seen[g.ConsoleID]; !ok {
			seen[g.ConsoleID] = struct{}{}
			consoleIDs = append(consoleIDs, g.ConsoleID)
		}
	}
	consoles, err := s.consoles.FindMany(ctx, consoleIDs)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load consoles")
	}

	views := make([]*models.View, 0, len(games))
	for _, g := range games {
		views = append(views, &models.View{Game: g, Console: consoles[g.ConsoleID]})
	}
	return views, nil
}

func (s *Service) Get(ctx context.Context, gameID id.GameID) (*models.View, error) {
	g, err := s.games.FindByID(ctx, gameID)
	if err != nil {
		return nil, wrapGameErr(err)
	}
	return s.view(ctx, g)
}

// Update applies a partial change. A new console must exist.
func (s *Service) Update(ctx context.Context, gameID id.GameID, patch models.Patch) (*models.View, error) {
	g, err := s.games.FindByID(ctx, gameID)
	if err != nil {
		return nil, wrapGameErr(err)
	}

	next, err := g.Apply(patch, requestcontext.Now(ctx))
	if err != nil {
		return nil, toValidation(err)
	}

	var console *models.ConsoleRef
	if patch.ConsoleID.IsSet() {
		console, err = s.consoles.Find(ctx, next.ConsoleID)
		if err != nil {
			return nil, wrapConsoleErr(err)
		}
	}

	if err := s.games.Update(ctx, next); err != nil {
		if errors.Is(err, sentinel.ErrAlreadyUsed) {
			return nil, dErrors.New(dErrors.CodeConflict, "this game is already in the target console's collection")
		}
		return nil, wrapGameErr(err)
	}

	s.emit(ctx, audit.ActionGameUpdated, next.ID, map[string]string{"console_id": next.ConsoleID.String()})
	if patch.Status.IsSet() && next.Status != g.Status {
		s.emitStatus(ctx, g.Status, next)
	}

	if console == nil {
		return s.view(ctx, next)
	}
	return &models.View{Game: next, Console: console}, nil
}

func (s *Service) Delete(ctx context.Context, gameID id.GameID) error {
	if err := s.games.Delete(ctx, gameID); err != nil {
		return wrapGameErr(err)
	}
	s.emit(ctx, audit.ActionGameDeleted, gameID, nil)
	if s.metrics != nil {
		s.metrics.IncrementDeleted()
	}
	return nil
}

// SetStatus moves a game to any status.
func (s *Service) SetStatus(ctx context.Context, gameID id.GameID, status models.Status) (*models.View, error) {
	if !status.IsValid() {
		return nil, dErrors.New(dErrors.CodeValidation, "status must be one of Backlog, Played, WantToPlay, Wishlist")
	}

	g, err := s.games.FindByID(ctx, gameID)
	if err != nil {
		return nil, wrapGameErr(err)
	}
	previous := g.Status
	if err := g.ApplyStatus(status, requestcontext.Now(ctx)); err != nil {
		return nil, toValidation(err)
	}
	if err := s.games.Update(ctx, g); err != nil {
		return nil, wrapGameErr(err)
	}

	if previous != status {
		s.emitStatus(ctx, previous, g)
	}
	return s.view(ctx, g)
}

func (s *Service) MoveToWishlist(ctx context.Context, gameID id.GameID) (*models.View, error) {
	return s.SetStatus(ctx, gameID, models.StatusWishlist)
}

// Acquire moves a wishlisted game into the backlog.
func (s *Service) Acquire(ctx context.Context, gameID id.GameID) (*models.View, error) {
	return s.SetStatus(ctx, gameID, models.StatusBacklog)
}

func (s *Service) view(ctx context.Context, g *models.Game) (*models.View, error) {
	console, err := s.consoles.Find(ctx, g.ConsoleID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return &models.View{Game: g}, nil
		}
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load console")
	}
	return &models.View{Game: g, Console: console}, nil
}

func (s *Service) emitStatus(ctx context.Context, from models.Status, g *models.Game) {
	s.emit(ctx, audit.ActionGameStatusChanged, g.ID, map[string]string{
		"from": string(from),
		"to":   string(g.Status),
	})
	if s.metrics != nil {
		s.metrics.IncrementStatus(string(g.Status))
	}
}

// emit publishes an audit event. Failures are logged and never fail the request.
func (s *Service) emit(ctx context.Context, action audit.Action, gameID id.GameID, details map[string]string) {
	if s.auditPublisher == nil {
		return
	}
	err := s.auditPublisher.Emit(ctx, audit.Event{
		Action:  action,
		Subject: gameID.String(),
		Details: details,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"request_id", requestcontext.RequestID(ctx),
			"action", string(action),
			"game_id", gameID.String(),
			"error", err,
		)
	}
}

func toValidation(err error) error {
	if de, ok := dErrors.As(err); ok && de.Code == dErrors.CodeInvariantViolation {
		return dErrors.New(dErrors.CodeValidation, de.Message)
	}
	return err
}

func wrapGameErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "game not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "game store failure")
}

func wrapConsoleErr(err error) error {
	if errors.Is(err, sentinel.ErrNotFound) {
		return dErrors.New(dErrors.CodeNotFound, "console not found")
	}
	return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load console")
}
