package models

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "gamelib/pkg/domain"
	dErrors "gamelib/pkg/domain-errors"
	"gamelib/pkg/optional"
)

func ptr[T any](v T) *T { return &v }

func validFields() Fields {
	return Fields{Title: "Returnal", ConsoleID: id.NewConsoleID(), ExternalID: ptr(3498)}
}

func TestNewGame(t *testing.T) {
	now := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	t.Run("defaults status to Backlog", func(t *testing.T) {
		g, err := NewGame(id.NewGameID(), validFields(), now)
		require.NoError(t, err)
		assert.Equal(t, StatusBacklog, g.Status)
		assert.Equal(t, now, g.CreatedAt)
	})

	t.Run("drops the time of day from release dates", func(t *testing.T) {
		f := validFields()
		f.ReleaseDate = ptr(time.Date(2021, 4, 30, 18, 0, 0, 0, time.UTC))
		g, err := NewGame(id.NewGameID(), f, now)
		require.NoError(t, err)
		assert.Equal(t, "2021-04-30", g.ReleaseDateString())
	})

	t.Run("blank cover is absent", func(t *testing.T) {
		f := validFields()
		f.Cover = ptr("  ")
		g, err := NewGame(id.NewGameID(), f, now)
		require.NoError(t, err)
		assert.Nil(t, g.Cover)
	})

	invalid := []struct {
		name   string
		mutate func(*Fields)
	}{
		{"blank title", func(f *Fields) { f.Title = "  " }},
		{"overlong title", func(f *Fields) { f.Title = strings.Repeat("a", MaxTitleLength+1) }},
		{"nil console", func(f *Fields) { f.ConsoleID = id.ConsoleID{} }},
		{"zero external id", func(f *Fields) { f.ExternalID = ptr(0) }},
		{"critic score above 100", func(f *Fields) { f.CriticScore = ptr(101) }},
		{"negative critic score", func(f *Fields) { f.CriticScore = ptr(-1) }},
		{"rating above 5", func(f *Fields) { f.PersonalRating = ptr(5.5) }},
		{"negative rating", func(f *Fields) { f.PersonalRating = ptr(-0.5) }},
		{"rating off the half step", func(f *Fields) { f.PersonalRating = ptr(4.3) }},
		{"unknown status", func(f *Fields) { f.Status = "Finished" }},
	}
	for _, tt := range invalid {
		t.Run("rejects "+tt.name, func(t *testing.T) {
			f := validFields()
			tt.mutate(&f)
			_, err := NewGame(id.NewGameID(), f, now)
			require.Error(t, err)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		})
	}
}

func TestApplyPatch(t *testing.T) {
	now := time.Now()
	base := func(t *testing.T) *Game {
		f := validFields()
		f.Cover = ptr("https://img/returnal.jpg")
		f.CriticScore = ptr(86)
		g, err := NewGame(id.NewGameID(), f, now)
		require.NoError(t, err)
		return g
	}

	t.Run("absent fields are untouched", func(t *testing.T) {
		g := base(t)
		next, err := g.Apply(Patch{PersonalRating: optional.Of(4.5)}, now.Add(time.Second))
		require.NoError(t, err)
		assert.Equal(t, 4.5, *next.PersonalRating)
		assert.Equal(t, "https://img/returnal.jpg", *next.Cover)
		assert.Equal(t, 86, *next.CriticScore)
		assert.True(t, next.UpdatedAt.After(g.UpdatedAt))
	})

	t.Run("null clears optional fields", func(t *testing.T) {
		g := base(t)
		next, err := g.Apply(Patch{
			Cover:       optional.Null[string](),
			CriticScore: optional.Null[int](),
			ExternalID:  optional.Null[int](),
		}, now)
		require.NoError(t, err)
		assert.Nil(t, next.Cover)
		assert.Nil(t, next.CriticScore)
		assert.Nil(t, next.ExternalID)
	})

	t.Run("original is not modified", func(t *testing.T) {
		g := base(t)
		_, err := g.Apply(Patch{Title: optional.Of("Returnal (PS5)")}, now)
		require.NoError(t, err)
		assert.Equal(t, "Returnal", g.Title)
	})

	t.Run("required fields cannot be null", func(t *testing.T) {
		g := base(t)
		for _, p := range []Patch{
			{Title: optional.Null[string]()},
			{ConsoleID: optional.Null[id.ConsoleID]()},
			{Status: optional.Null[Status]()},
		} {
			_, err := g.Apply(p, now)
			assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
		}
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		g := base(t)
		_, err := g.Apply(Patch{PersonalRating: optional.Of(9.0)}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("empty patch", func(t *testing.T) {
		assert.True(t, Patch{}.IsEmpty())
		assert.False(t, Patch{Cover: optional.Null[string]()}.IsEmpty())
	})
}

func TestParseStatus(t *testing.T) {
	for _, s := range Statuses {
		parsed, err := ParseStatus(string(s))
		require.NoError(t, err)
		assert.Equal(t, s, parsed)
	}

	for _, raw := range []string{"backlog", "I Wanna Play!", ""} {
		_, err := ParseStatus(raw)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeValidation), raw)
	}
}

func TestHalfStarRatings(t *testing.T) {
	for _, r := range []float64{0, 0.5, 1, 2.5, 4.5, 5} {
		f := validFields()
		f.PersonalRating = ptr(r)
		_, err := NewGame(id.NewGameID(), f, time.Now())
		assert.NoError(t, err, r)
	}
}

func TestListFilterMatches(t *testing.T) {
	consoleID := id.NewConsoleID()
	g := &Game{Title: "Super Mario World", ConsoleID: consoleID, Status: StatusPlayed}
	wishlist := StatusWishlist
	other := id.NewConsoleID()

	assert.True(t, ListFilter{}.Matches(g))
	assert.True(t, ListFilter{Search: "mario"}.Matches(g))
	assert.True(t, ListFilter{ConsoleID: &consoleID}.Matches(g))
	assert.False(t, ListFilter{ConsoleID: &other}.Matches(g))
	assert.False(t, ListFilter{Status: &wishlist}.Matches(g))
	assert.False(t, ListFilter{Search: "zelda"}.Matches(g))
}

func TestParseSortAndOrder(t *testing.T) {
	k, err := ParseSortKey("")
	require.NoError(t, err)
	assert.Equal(t, SortTitle, k)

	_, err = ParseSortKey("price")
	assert.Error(t, err)

	desc, err := ParseOrder("DESC")
	require.NoError(t, err)
	assert.True(t, desc)

	_, err = ParseOrder("sideways")
	assert.Error(t, err)
}
