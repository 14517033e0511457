package service

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	"gamelib/internal/catalog/metrics"
	"gamelib/internal/catalog/models"
	"gamelib/internal/catalog/rawg"
	consolemodels "gamelib/internal/console/models"
	id "gamelib/pkg/domain"
	dErrors "gamelib/pkg/domain-errors"
	"gamelib/pkg/platform/sentinel"
	"gamelib/pkg/requestcontext"
)

// Provider is the external game metadata source.
type Provider interface {
	SearchGames(ctx context.Context, q models.SearchQuery) ([]models.SearchResult, error)
	ListPlatforms(ctx context.Context) ([]models.Platform, error)
	GameDetails(ctx context.Context, externalID int) (*models.GameDetails, error)
}

// PlatformCache keeps the platform list between provider calls.
type PlatformCache interface {
	GetPlatforms(ctx context.Context) ([]models.Platform, bool, error)
	SetPlatforms(ctx context.Context, platforms []models.Platform) error
}

// ConsoleLookup resolves the console a search is scoped to.
type ConsoleLookup interface {
	FindByID(ctx context.Context, consoleID id.ConsoleID) (*consolemodels.Console, error)
}

// Service is the catalog lookup gateway.
type Service struct {
	provider Provider
	cache    PlatformCache
	consoles ConsoleLookup
	logger   *slog.Logger
	metrics  *metrics.Metrics
	group    singleflight.Group
}

type Option func(*Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// WithPlatformCache replaces the default no-op cache.
func WithPlatformCache(c PlatformCache) Option {
	return func(s *Service) {
		s.cache = c
	}
}

func New(provider Provider, consoles ConsoleLookup, opts ...Option) *Service {
	s := &Service{provider: provider, consoles: consoles}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.cache == nil {
		s.cache = noCache{}
	}
	return s
}

// SearchByTitle searches the provider. Results keep provider order.
func (s *Service) SearchByTitle(ctx context.Context, q models.SearchQuery) ([]models.SearchResult, error) {
	q.Query = strings.TrimSpace(q.Query)
	if q.Query == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "query is required")
	}
	if q.Page < 1 {
		q.Page = 1
	}

	start := time.Now()
	results, err := s.provider.SearchGames(ctx, q)
	s.observe("search_games", err, start)
	if err != nil {
		s.logger.WarnContext(ctx, "catalog search failed",
			"request_id", requestcontext.RequestID(ctx),
			"query", q.Query,
			"error", err,
		)
		return nil, toDomainErr(err)
	}
	if results == nil {
		results = []models.SearchResult{}
	}
	return results, nil
}

// SearchForConsole scopes a search to a console's platform. A console without
// a platform link is searched unfiltered.
func (s *Service) SearchForConsole(ctx context.Context, query string, consoleID *id.ConsoleID, page int) ([]models.SearchResult, error) {
	q := models.SearchQuery{Query: query, Page: page}
	if strings.TrimSpace(query) == "" {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "query is required")
	}
	if consoleID != nil {
		c, err := s.consoles.FindByID(ctx, *consoleID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return nil, dErrors.New(dErrors.CodeNotFound, "console not found")
			}
			return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load console")
		}
		if c.ExternalPlatformID == nil {
			s.logger.WarnContext(ctx, "console has no catalog platform, searching without filter",
				"request_id", requestcontext.RequestID(ctx),
				"console_id", c.ID.String(),
			)
		} else {
			platformID := *c.ExternalPlatformID
			q.PlatformID = &platformID
		}
	}
	return s.SearchByTitle(ctx, q)
}

// ListPlatforms returns the provider platforms sorted by name. It never
// fails: provider errors degrade to an empty list and are not cached.
// Concurrent cache misses share one provider fetch.
func (s *Service) ListPlatforms(ctx context.Context) []models.Platform {
	cached, ok, err := s.cache.GetPlatforms(ctx)
	if err != nil {
		s.logger.WarnContext(ctx, "platform cache read failed",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
	}
	if ok {
		s.countCache("hit")
		return cached
	}
	s.countCache("miss")

	v, err, _ := s.group.Do("platforms", func() (any, error) {
		// detached so one caller's cancellation does not fail the others
		fetchCtx := context.WithoutCancel(ctx)
		start := time.Now()
		platforms, err := s.provider.ListPlatforms(fetchCtx)
		s.observe("list_platforms", err, start)
		if err != nil {
			return nil, err
		}
		slices.SortStableFunc(platforms, func(a, b models.Platform) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
		if err := s.cache.SetPlatforms(fetchCtx, platforms); err != nil {
			s.logger.WarnContext(ctx, "platform cache write failed", "error", err)
		}
		return platforms, nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to fetch catalog platforms",
			"request_id", requestcontext.RequestID(ctx),
			"error", err,
		)
		return []models.Platform{}
	}
	platforms := v.([]models.Platform)
	out := make([]models.Platform, len(platforms))
	copy(out, platforms)
	return out
}

// GameDetails fetches the provider record of one game.
func (s *Service) GameDetails(ctx context.Context, externalID int) (*models.GameDetails, error) {
	if externalID <= 0 {
		return nil, dErrors.New(dErrors.CodeInvalidInput, "externalId must be a positive integer")
	}
	start := time.Now()
	details, err := s.provider.GameDetails(ctx, externalID)
	s.observe("game_details", err, start)
	if err != nil {
		if rawg.IsNotFound(err) {
			return nil, dErrors.New(dErrors.CodeNotFound, "game not found in catalog")
		}
		s.logger.WarnContext(ctx, "catalog details lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"external_id", externalID,
			"error", err,
		)
		return nil, toDomainErr(err)
	}
	return details, nil
}

func (s *Service) observe(op string, err error, start time.Time) {
	if s.metrics == nil {
		return
	}
	outcome := "ok"
	if err != nil {
		outcome = string(rawg.Category(err))
		if outcome == "" {
			outcome = "error"
		}
	}
	s.metrics.ObserveCall(op, outcome, start)
}

func (s *Service) countCache(result string) {
	if s.metrics != nil {
		s.metrics.IncrementCache(result)
	}
}

func toDomainErr(err error) error {
	if rawg.Category(err) == rawg.ErrorAuthentication {
		return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "game catalog is not configured or rejected the API key")
	}
	return dErrors.Wrap(err, dErrors.CodeUpstreamUnavailable, "game catalog is unavailable")
}

type noCache struct{}

func (noCache) GetPlatforms(context.Context) ([]models.Platform, bool, error) { return nil, false, nil }
func (noCache) SetPlatforms(context.Context, []models.Platform) error         { return nil }
