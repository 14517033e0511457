package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	consolemodels "gamelib/internal/console/models"
	consolestore "gamelib/internal/console/store"
	"gamelib/internal/game/adapters"
	"gamelib/internal/game/service"
	gamestore "gamelib/internal/game/store"
	id "gamelib/pkg/domain"
)

type fixture struct {
	router   http.Handler
	consoles *consolestore.InMemory
}

func newGameRouter(t *testing.T) fixture {
	t.Helper()
	consoles := consolestore.NewInMemory()
	games := gamestore.NewInMemory()
	svc := service.New(games, adapters.NewConsoleDirectory(consoles))
	logger := slog.New(slog.NewTextHandler(&bytes.Buffer{}, nil))

	r := chi.NewRouter()
	New(svc, logger).Register(r)
	return fixture{router: r, consoles: consoles}
}

func (f fixture) console(t *testing.T, name string, platformID *int) string {
	t.Helper()
	c, err := consolemodels.NewConsole(id.NewConsoleID(), name, platformID, time.Now())
	require.NoError(t, err)
	require.NoError(t, f.consoles.CreateIfAvailable(context.Background(), c))
	return c.ID.String()
}

func (f fixture) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)
	return rec
}

func (f fixture) create(t *testing.T, body map[string]any) GameResponse {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	rec := f.do(t, http.MethodPost, "/games", string(raw))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	var resp GameResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

func decodeList(t *testing.T, rec *httptest.ResponseRecorder) []GameResponse {
	t.Helper()
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var list []GameResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&list))
	return list
}

func titles(list []GameResponse) []string {
	out := make([]string, 0, len(list))
	for _, g := range list {
		out = append(out, g.Title)
	}
	return out
}

func TestCreateGame(t *testing.T) {
	f := newGameRouter(t)
	platform := 187
	ps5 := f.console(t, "PlayStation 5", &platform)

	t.Run("catalog game embeds the console", func(t *testing.T) {
		g := f.create(t, map[string]any{
			"title": "Returnal", "consoleId": ps5, "externalId": 3498,
			"releaseDate": "2021-04-30", "criticScore": 86,
		})
		assert.Equal(t, "Backlog", g.Status)
		require.NotNil(t, g.Console)
		assert.Equal(t, "PlayStation 5", g.Console.Name)
		assert.Equal(t, 187, *g.Console.ExternalPlatformID)
		require.NotNil(t, g.ReleaseDate)
		assert.Equal(t, "2021-04-30", *g.ReleaseDate)
	})

	t.Run("duplicate external id conflicts", func(t *testing.T) {
		rec := f.do(t, http.MethodPost, "/games",
			`{"title":"Returnal","consoleId":"`+ps5+`","externalId":3498}`)
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("half-star rating", func(t *testing.T) {
		g := f.create(t, map[string]any{"title": "Astro Bot", "consoleId": ps5, "status": "WantToPlay", "personalRating": 4.5})
		assert.Equal(t, "WantToPlay", g.Status)
		require.NotNil(t, g.PersonalRating)
		assert.Equal(t, 4.5, *g.PersonalRating)
		assert.Nil(t, g.ExternalID)
	})

	cases := []struct {
		name   string
		body   string
		status int
	}{
		{"missing title", `{"consoleId":"` + ps5 + `"}`, http.StatusBadRequest},
		{"missing console", `{"title":"Returnal"}`, http.StatusBadRequest},
		{"malformed console id", `{"title":"Returnal","consoleId":"abc"}`, http.StatusBadRequest},
		{"unknown console", `{"title":"Returnal","consoleId":"` + id.NewConsoleID().String() + `"}`, http.StatusNotFound},
		{"bad status", `{"title":"Returnal","consoleId":"` + ps5 + `","status":"Finished"}`, http.StatusBadRequest},
		{"bad date", `{"title":"Returnal","consoleId":"` + ps5 + `","releaseDate":"April 2021"}`, http.StatusBadRequest},
		{"rating out of range", `{"title":"Returnal","consoleId":"` + ps5 + `","personalRating":5.5}`, http.StatusBadRequest},
		{"rating off the half step", `{"title":"Returnal","consoleId":"` + ps5 + `","personalRating":4.3}`, http.StatusBadRequest},
		{"legacy status label", `{"title":"Returnal","consoleId":"` + ps5 + `","status":"I Wanna Play!"}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := f.do(t, http.MethodPost, "/games", tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestListGames(t *testing.T) {
	f := newGameRouter(t)
	ps5 := f.console(t, "PlayStation 5", nil)
	sw := f.console(t, "Switch", nil)

	f.create(t, map[string]any{"title": "Returnal", "consoleId": ps5, "personalRating": 4.5})
	f.create(t, map[string]any{"title": "Zelda", "consoleId": sw, "status": "Wishlist", "personalRating": 5.0})
	f.create(t, map[string]any{"title": "Bloodborne", "consoleId": ps5})

	assert.Equal(t, []string{"Bloodborne", "Returnal", "Zelda"}, titles(decodeList(t, f.do(t, http.MethodGet, "/games", ""))))
	assert.Equal(t, []string{"Zelda"}, titles(decodeList(t, f.do(t, http.MethodGet, "/games?status=Wishlist", ""))))
	assert.Equal(t, []string{"Bloodborne", "Returnal"}, titles(decodeList(t, f.do(t, http.MethodGet, "/games?consoleId="+ps5, ""))))
	assert.Equal(t, []string{"Returnal"}, titles(decodeList(t, f.do(t, http.MethodGet, "/games?search=TURN", ""))))
	assert.Equal(t, []string{"Zelda", "Returnal", "Bloodborne"},
		titles(decodeList(t, f.do(t, http.MethodGet, "/games?sort=rating&order=desc", ""))))

	for _, q := range []string{"?sort=price", "?order=sideways", "?status=Finished", "?consoleId=nope"} {
		rec := f.do(t, http.MethodGet, "/games"+q, "")
		assert.Equal(t, http.StatusBadRequest, rec.Code, q)
	}
}

func TestUpdateGame(t *testing.T) {
	f := newGameRouter(t)
	ps5 := f.console(t, "PlayStation 5", nil)
	g := f.create(t, map[string]any{"title": "Returnal", "consoleId": ps5, "cover": "https://img/returnal.jpg", "criticScore": 86})

	rec := f.do(t, http.MethodPut, "/games/"+g.ID, `{"personalRating":4.5,"cover":null}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	var updated GameResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&updated))
	assert.Nil(t, updated.Cover)
	assert.Equal(t, 4.5, *updated.PersonalRating)
	assert.Equal(t, 86, *updated.CriticScore, "absent keys are untouched")

	rec = f.do(t, http.MethodPut, "/games/"+g.ID, `{"title":null}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPut, "/games/"+g.ID, `{"consoleId":"`+id.NewConsoleID().String()+`"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodPut, "/games/"+id.NewGameID().String(), `{"title":"x"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestStatusRoutes(t *testing.T) {
	f := newGameRouter(t)
	ps5 := f.console(t, "PlayStation 5", nil)
	g := f.create(t, map[string]any{"title": "Returnal", "consoleId": ps5})

	statusOf := func(rec *httptest.ResponseRecorder) string {
		t.Helper()
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var resp GameResponse
		require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
		return resp.Status
	}

	assert.Equal(t, "Played", statusOf(f.do(t, http.MethodPatch, "/games/"+g.ID+"/status", `{"status":"Played"}`)))
	assert.Equal(t, "Wishlist", statusOf(f.do(t, http.MethodPatch, "/games/"+g.ID+"/wishlist", "")))
	assert.Equal(t, "Backlog", statusOf(f.do(t, http.MethodPatch, "/games/"+g.ID+"/acquire", "")))

	rec := f.do(t, http.MethodPatch, "/games/"+g.ID+"/status", `{"status":"Finished"}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(t, http.MethodPatch, "/games/"+id.NewGameID().String()+"/wishlist", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteGame(t *testing.T) {
	f := newGameRouter(t)
	ps5 := f.console(t, "PlayStation 5", nil)
	g := f.create(t, map[string]any{"title": "Returnal", "consoleId": ps5})

	rec := f.do(t, http.MethodDelete, "/games/"+g.ID, "")
	require.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(t, http.MethodGet, "/games/"+g.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = f.do(t, http.MethodDelete, "/games/"+g.ID, "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
