package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"
	"go.uber.org/mock/gomock"

	"gamelib/internal/catalog/cache"
	catalogmetrics "gamelib/internal/catalog/metrics"
	"gamelib/internal/catalog/models"
	"gamelib/internal/catalog/rawg"
	"gamelib/internal/catalog/service/mocks"
	consolemodels "gamelib/internal/console/models"
	consolestore "gamelib/internal/console/store"
	id "gamelib/pkg/domain"
	dErrors "gamelib/pkg/domain-errors"
)

//go:generate mockgen -source=service.go -destination=mocks/mocks.go -package=mocks Provider
type CatalogServiceSuite struct {
	suite.Suite
	ctx      context.Context
	provider *mocks.MockProvider
	consoles *consolestore.InMemory
	metrics  *catalogmetrics.Metrics
	service  *Service
}

func TestCatalogServiceSuite(t *testing.T) {
	suite.Run(t, new(CatalogServiceSuite))
}

func (s *CatalogServiceSuite) SetupTest() {
	s.ctx = context.Background()
	ctrl := gomock.NewController(s.T())
	s.provider = mocks.NewMockProvider(ctrl)
	s.consoles = consolestore.NewInMemory()
	s.metrics = catalogmetrics.NewWithRegisterer(prometheus.NewRegistry())
	s.service = New(s.provider, s.consoles,
		WithPlatformCache(cache.NewMemory(time.Hour)),
		WithMetrics(s.metrics),
	)
}

func (s *CatalogServiceSuite) console(name string, platformID *int) *consolemodels.Console {
	c, err := consolemodels.NewConsole(id.NewConsoleID(), name, platformID, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.consoles.CreateIfAvailable(s.ctx, c))
	return c
}

func (s *CatalogServiceSuite) TestSearchForConsole() {
	platform := 187
	ps5 := s.console("PlayStation 5", &platform)
	manual := s.console("Homebrew Box", nil)
	hit := []models.SearchResult{{ExternalID: 3498, Title: "Returnal"}}

	s.Run("linked console filters by platform", func() {
		s.provider.EXPECT().SearchGames(gomock.Any(), models.SearchQuery{Query: "Returnal", PlatformID: &platform, Page: 1}).
			Return(hit, nil)
		results, err := s.service.SearchForConsole(s.ctx, " Returnal ", &ps5.ID, 0)
		s.Require().NoError(err)
		s.Equal(hit, results)
	})

	s.Run("unlinked console searches unfiltered", func() {
		s.provider.EXPECT().SearchGames(gomock.Any(), models.SearchQuery{Query: "Returnal", Page: 2}).
			Return(nil, nil)
		results, err := s.service.SearchForConsole(s.ctx, "Returnal", &manual.ID, 2)
		s.Require().NoError(err)
		s.Empty(results)
		s.NotNil(results)
	})

	s.Run("unknown console", func() {
		missing := id.NewConsoleID()
		_, err := s.service.SearchForConsole(s.ctx, "Returnal", &missing, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("empty query never reaches the provider", func() {
		_, err := s.service.SearchForConsole(s.ctx, "   ", &ps5.ID, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})

	s.Run("provider failure is upstream unavailable", func() {
		s.provider.EXPECT().SearchGames(gomock.Any(), gomock.Any()).
			Return(nil, &rawg.ProviderError{Category: rawg.ErrorProviderOutage, Operation: "search_games"})
		_, err := s.service.SearchForConsole(s.ctx, "Returnal", nil, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeUpstreamUnavailable))
	})

	s.Run("missing API key is upstream unavailable", func() {
		s.provider.EXPECT().SearchGames(gomock.Any(), gomock.Any()).
			Return(nil, &rawg.ProviderError{Category: rawg.ErrorAuthentication, Operation: "search_games"})
		_, err := s.service.SearchByTitle(s.ctx, models.SearchQuery{Query: "Returnal"})
		s.True(dErrors.HasCode(err, dErrors.CodeUpstreamUnavailable))
	})

	s.Equal(float64(2), testutil.ToFloat64(s.metrics.ProviderCalls.WithLabelValues("search_games", "ok")))
}

func (s *CatalogServiceSuite) TestListPlatforms() {
	s.Run("sorted by name and cached", func() {
		s.provider.EXPECT().ListPlatforms(gomock.Any()).Return([]models.Platform{
			{ID: 187, Name: "PlayStation 5"},
			{ID: 4, Name: "PC"},
			{ID: 7, Name: "nintendo Switch"},
		}, nil).Times(1)

		first := s.service.ListPlatforms(s.ctx)
		s.Equal([]string{"nintendo Switch", "PC", "PlayStation 5"}, names(first))

		second := s.service.ListPlatforms(s.ctx)
		s.Equal(first, second)
		s.Equal(float64(1), testutil.ToFloat64(s.metrics.PlatformCache.WithLabelValues("hit")))
	})
}

func (s *CatalogServiceSuite) TestListPlatformsNeverFails() {
	s.provider.EXPECT().ListPlatforms(gomock.Any()).Return(nil, errors.New("connection refused")).Times(2)

	s.Equal([]models.Platform{}, s.service.ListPlatforms(s.ctx))
	// failures are not cached
	s.Equal([]models.Platform{}, s.service.ListPlatforms(s.ctx))
}

func (s *CatalogServiceSuite) TestConcurrentMissesShareOneFetch() {
	release := make(chan struct{})
	s.provider.EXPECT().ListPlatforms(gomock.Any()).DoAndReturn(func(context.Context) ([]models.Platform, error) {
		<-release
		return []models.Platform{{ID: 1, Name: "Atari 2600"}}, nil
	}).Times(1)

	var wg sync.WaitGroup
	results := make([][]models.Platform, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = s.service.ListPlatforms(s.ctx)
		}()
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	for _, r := range results {
		s.Equal([]string{"Atari 2600"}, names(r))
	}
}

func (s *CatalogServiceSuite) TestGameDetails() {
	s.Run("found", func() {
		s.provider.EXPECT().GameDetails(gomock.Any(), 3498).Return(&models.GameDetails{ExternalID: 3498, Title: "Returnal"}, nil)
		d, err := s.service.GameDetails(s.ctx, 3498)
		s.Require().NoError(err)
		s.Equal("Returnal", d.Title)
	})

	s.Run("provider 404", func() {
		s.provider.EXPECT().GameDetails(gomock.Any(), 1).Return(nil, &rawg.ProviderError{Category: rawg.ErrorNotFound})
		_, err := s.service.GameDetails(s.ctx, 1)
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("provider outage", func() {
		s.provider.EXPECT().GameDetails(gomock.Any(), 2).Return(nil, &rawg.ProviderError{Category: rawg.ErrorTimeout})
		_, err := s.service.GameDetails(s.ctx, 2)
		s.True(dErrors.HasCode(err, dErrors.CodeUpstreamUnavailable))
	})

	s.Run("invalid id", func() {
		_, err := s.service.GameDetails(s.ctx, 0)
		s.True(dErrors.HasCode(err, dErrors.CodeInvalidInput))
	})
}

func names(platforms []models.Platform) []string {
	out := make([]string, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, p.Name)
	}
	return out
}
