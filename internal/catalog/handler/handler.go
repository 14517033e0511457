package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"gamelib/internal/catalog/models"
	id "gamelib/pkg/domain"
	dErrors "gamelib/pkg/domain-errors"
	"gamelib/pkg/platform/httputil"
	"gamelib/pkg/requestcontext"
)

// Service defines the catalog lookups the handler needs.
type Service interface {
	SearchForConsole(ctx context.Context, query string, consoleID *id.ConsoleID, page int) ([]models.SearchResult, error)
	ListPlatforms(ctx context.Context) []models.Platform
	GameDetails(ctx context.Context, externalID int) (*models.GameDetails, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/consoles/platforms", h.HandleListPlatforms)
	r.Get("/games/search", h.HandleSearch)
	r.Get("/games/external/{externalId}", h.HandleGameDetails)
}

// HandleListPlatforms handles GET /consoles/platforms. It always answers 200.
func (h *Handler) HandleListPlatforms(w http.ResponseWriter, r *http.Request) {
	platforms := h.service.ListPlatforms(r.Context())
	out := make([]PlatformResponse, 0, len(platforms))
	for _, p := range platforms {
		out = append(out, PlatformResponse(p))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleSearch handles GET /games/search?query=&consoleId=&page=.
func (h *Handler) HandleSearch(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	q := r.URL.Query()

	query := strings.TrimSpace(q.Get("query"))
	if query == "" {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "query is required"))
		return
	}

	var consoleID *id.ConsoleID
	if raw := strings.TrimSpace(q.Get("consoleId")); raw != "" {
		parsed, err := id.ParseConsoleID(raw)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		consoleID = &parsed
	}

	page := 1
	if raw := strings.TrimSpace(q.Get("page")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "page must be a positive integer"))
			return
		}
		page = n
	}

	results, err := h.service.SearchForConsole(ctx, query, consoleID, page)
	if err != nil {
		h.logger.WarnContext(ctx, "catalog search failed",
			"request_id", requestID,
			"query", query,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	out := make([]SearchResultResponse, 0, len(results))
	for _, res := range results {
		out = append(out, SearchResultResponse(res))
	}
	httputil.WriteJSON(w, http.StatusOK, out)
}

// HandleGameDetails handles GET /games/external/{externalId}.
func (h *Handler) HandleGameDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	externalID, err := strconv.Atoi(chi.URLParam(r, "externalId"))
	if err != nil || externalID < 1 {
		httputil.WriteError(w, dErrors.New(dErrors.CodeInvalidInput, "externalId must be a positive integer"))
		return
	}

	details, err := h.service.GameDetails(ctx, externalID)
	if err != nil {
		h.logger.WarnContext(ctx, "catalog details lookup failed",
			"request_id", requestcontext.RequestID(ctx),
			"external_id", externalID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toDetailsResponse(details))
}
