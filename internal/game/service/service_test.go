package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	consolemodels "gamelib/internal/console/models"
	consolestore "gamelib/internal/console/store"
	"gamelib/internal/game/adapters"
	gamemetrics "gamelib/internal/game/metrics"
	"gamelib/internal/game/models"
	gamestore "gamelib/internal/game/store"
	id "gamelib/pkg/domain"
	dErrors "gamelib/pkg/domain-errors"
	"gamelib/pkg/optional"
	"gamelib/pkg/platform/audit"
	auditmemory "gamelib/pkg/platform/audit/store/memory"
	"gamelib/pkg/platform/audit/publisher"
	"gamelib/pkg/requestcontext"
)

type GameServiceSuite struct {
	suite.Suite
	ctx      context.Context
	consoles *consolestore.InMemory
	games    *gamestore.InMemory
	audit    *auditmemory.InMemoryStore
	metrics  *gamemetrics.Metrics
	service  *Service
	ps5      *consolemodels.Console
}

func TestGameServiceSuite(t *testing.T) {
	suite.Run(t, new(GameServiceSuite))
}

func (s *GameServiceSuite) SetupTest() {
	s.ctx = requestcontext.WithRequestID(context.Background(), "req-1")
	s.consoles = consolestore.NewInMemory()
	s.games = gamestore.NewInMemory()
	s.audit = auditmemory.NewInMemoryStore()
	s.metrics = gamemetrics.NewWithRegisterer(prometheus.NewRegistry())
	s.service = New(s.games, adapters.NewConsoleDirectory(s.consoles),
		WithAuditPublisher(publisher.NewPublisher(s.audit)),
		WithMetrics(s.metrics),
	)
	s.ps5 = s.registerConsole("PlayStation 5", ptr(187))
}

func ptr[T any](v T) *T { return &v }

func (s *GameServiceSuite) registerConsole(name string, platform *int) *consolemodels.Console {
	c, err := consolemodels.NewConsole(id.NewConsoleID(), name, platform, time.Now())
	s.Require().NoError(err)
	s.Require().NoError(s.consoles.CreateIfAvailable(s.ctx, c))
	return c
}

func (s *GameServiceSuite) addExternal(title string, externalID int) *models.View {
	v, err := s.service.AddFromExternalSource(s.ctx, models.Fields{
		Title:      title,
		ConsoleID:  s.ps5.ID,
		ExternalID: ptr(externalID),
	})
	s.Require().NoError(err)
	return v
}

func (s *GameServiceSuite) TestAddFromExternalSource() {
	s.Run("defaults to Backlog and embeds the console", func() {
		v := s.addExternal("Returnal", 3498)
		s.Equal(models.StatusBacklog, v.Status)
		s.Require().NotNil(v.Console)
		s.Equal("PlayStation 5", v.Console.Name)
		s.Equal(187, *v.Console.ExternalPlatformID)
	})

	s.Run("duplicate external id on the same console conflicts", func() {
		_, err := s.service.AddFromExternalSource(s.ctx, models.Fields{
			Title: "Returnal", ConsoleID: s.ps5.ID, ExternalID: ptr(3498),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("same external id on another console is fine", func() {
		pc := s.registerConsole("PC", nil)
		_, err := s.service.AddFromExternalSource(s.ctx, models.Fields{
			Title: "Returnal", ConsoleID: pc.ID, ExternalID: ptr(3498),
		})
		s.NoError(err)
	})

	s.Run("unknown console", func() {
		_, err := s.service.AddFromExternalSource(s.ctx, models.Fields{
			Title: "Returnal", ConsoleID: id.NewConsoleID(), ExternalID: ptr(1),
		})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("requires an external id", func() {
		_, err := s.service.AddFromExternalSource(s.ctx, models.Fields{Title: "Returnal", ConsoleID: s.ps5.ID})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Equal(float64(2), testutil.ToFloat64(s.metrics.GamesAdded.WithLabelValues("external")))
}

func (s *GameServiceSuite) TestAddManually() {
	s.Run("blank title is a validation error", func() {
		_, err := s.service.AddManually(s.ctx, models.Fields{Title: "  ", ConsoleID: s.ps5.ID})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("manual duplicates are allowed", func() {
		for range 2 {
			_, err := s.service.AddManually(s.ctx, models.Fields{Title: "Homebrew", ConsoleID: s.ps5.ID})
			s.Require().NoError(err)
		}
	})

	s.Run("unknown console", func() {
		_, err := s.service.AddManually(s.ctx, models.Fields{Title: "Homebrew", ConsoleID: id.NewConsoleID()})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("half-star rating is kept", func() {
		v, err := s.service.AddManually(s.ctx, models.Fields{Title: "Astro Bot", ConsoleID: s.ps5.ID, PersonalRating: ptr(4.5)})
		s.Require().NoError(err)
		s.Require().NotNil(v.PersonalRating)
		s.Equal(4.5, *v.PersonalRating)
	})

	for _, rating := range []float64{5.5, 4.3, -0.5} {
		s.Run(fmt.Sprintf("rating %v is a validation error", rating), func() {
			_, err := s.service.AddManually(s.ctx, models.Fields{Title: "Astro Bot", ConsoleID: s.ps5.ID, PersonalRating: ptr(rating)})
			s.True(dErrors.HasCode(err, dErrors.CodeValidation))
		})
	}
}

func (s *GameServiceSuite) TestListJoinsConsoles() {
	switchConsole := s.registerConsole("Switch", nil)
	s.addExternal("Returnal", 1)
	_, err := s.service.AddManually(s.ctx, models.Fields{
		Title: "Zelda", ConsoleID: switchConsole.ID, Status: models.StatusWishlist,
	})
	s.Require().NoError(err)

	views, err := s.service.List(s.ctx, models.ListFilter{})
	s.Require().NoError(err)
	s.Require().Len(views, 2)
	s.Equal("PlayStation 5", views[0].Console.Name)
	s.Equal("Switch", views[1].Console.Name)

	wishlist := models.StatusWishlist
	views, err = s.service.List(s.ctx, models.ListFilter{Status: &wishlist})
	s.Require().NoError(err)
	s.Require().Len(views, 1)
	s.Equal("Zelda", views[0].Title)
}

func (s *GameServiceSuite) TestUpdate() {
	v := s.addExternal("Returnal", 1)

	s.Run("partial update with null clears", func() {
		_, err := s.service.Update(s.ctx, v.ID, models.Patch{CriticScore: optional.Of(86)})
		s.Require().NoError(err)

		updated, err := s.service.Update(s.ctx, v.ID, models.Patch{
			CriticScore:    optional.Null[int](),
			PersonalRating: optional.Of(4.5),
		})
		s.Require().NoError(err)
		s.Nil(updated.CriticScore)
		s.Equal(4.5, *updated.PersonalRating)
		s.Equal("Returnal", updated.Title)
	})

	s.Run("rating above 5 is rejected", func() {
		_, err := s.service.Update(s.ctx, v.ID, models.Patch{PersonalRating: optional.Of(5.5)})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("null title is rejected", func() {
		_, err := s.service.Update(s.ctx, v.ID, models.Patch{Title: optional.Null[string]()})
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("moving to an unknown console", func() {
		_, err := s.service.Update(s.ctx, v.ID, models.Patch{ConsoleID: optional.Of(id.NewConsoleID())})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	s.Run("moving onto a console that already has the external id", func() {
		pc := s.registerConsole("PC", nil)
		_, err := s.service.AddFromExternalSource(s.ctx, models.Fields{Title: "Returnal", ConsoleID: pc.ID, ExternalID: ptr(1)})
		s.Require().NoError(err)

		_, err = s.service.Update(s.ctx, v.ID, models.Patch{ConsoleID: optional.Of(pc.ID)})
		s.True(dErrors.HasCode(err, dErrors.CodeConflict))
	})

	s.Run("moving to another console embeds it", func() {
		sw := s.registerConsole("Switch", nil)
		moved, err := s.service.Update(s.ctx, v.ID, models.Patch{ConsoleID: optional.Of(sw.ID)})
		s.Require().NoError(err)
		s.Equal("Switch", moved.Console.Name)
	})

	s.Run("unknown game", func() {
		_, err := s.service.Update(s.ctx, id.NewGameID(), models.Patch{Title: optional.Of("x")})
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func (s *GameServiceSuite) TestStatusLifecycle() {
	v := s.addExternal("Returnal", 1)

	s.Run("every status round-trips", func() {
		for _, status := range models.Statuses {
			updated, err := s.service.SetStatus(s.ctx, v.ID, status)
			s.Require().NoError(err)
			s.Equal(status, updated.Status)

			got, err := s.service.Get(s.ctx, v.ID)
			s.Require().NoError(err)
			s.Equal(status, got.Status)
		}
	})

	s.Run("wishlist and acquire", func() {
		w, err := s.service.MoveToWishlist(s.ctx, v.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusWishlist, w.Status)

		a, err := s.service.Acquire(s.ctx, v.ID)
		s.Require().NoError(err)
		s.Equal(models.StatusBacklog, a.Status)
	})

	s.Run("unknown status", func() {
		_, err := s.service.SetStatus(s.ctx, v.ID, models.Status("Finished"))
		s.True(dErrors.HasCode(err, dErrors.CodeValidation))
	})

	s.Run("unknown game", func() {
		_, err := s.service.Acquire(s.ctx, id.NewGameID())
		s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	events, err := s.audit.ListBySubject(s.ctx, v.ID.String())
	s.Require().NoError(err)
	var statusEvents int
	for _, e := range events {
		if e.Action == audit.ActionGameStatusChanged {
			statusEvents++
			s.Equal("req-1", e.RequestID)
		}
	}
	s.Positive(statusEvents)
}

func (s *GameServiceSuite) TestDelete() {
	v := s.addExternal("Returnal", 1)
	s.Require().NoError(s.service.Delete(s.ctx, v.ID))

	_, err := s.service.Get(s.ctx, v.ID)
	s.True(dErrors.HasCode(err, dErrors.CodeNotFound))
	s.True(dErrors.HasCode(s.service.Delete(s.ctx, v.ID), dErrors.CodeNotFound))
}
