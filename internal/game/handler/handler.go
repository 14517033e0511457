package handler

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"gamelib/internal/game/models"
	id "gamelib/pkg/domain"
	"gamelib/pkg/platform/httputil"
	"gamelib/pkg/requestcontext"
)

// Service defines the game operations the handler needs.
type Service interface {
	AddFromExternalSource(ctx context.Context, f models.Fields) (*models.View, error)
	AddManually(ctx context.Context, f models.Fields) (*models.View, error)
	List(ctx context.Context, filter models.ListFilter) ([]*models.View, error)
	Get(ctx context.Context, gameID id.GameID) (*models.View, error)
	Update(ctx context.Context, gameID id.GameID, patch models.Patch) (*models.View, error)
	Delete(ctx context.Context, gameID id.GameID) error
	SetStatus(ctx context.Context, gameID id.GameID, status models.Status) (*models.View, error)
	MoveToWishlist(ctx context.Context, gameID id.GameID) (*models.View, error)
	Acquire(ctx context.Context, gameID id.GameID) (*models.View, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts game endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/games", h.HandleList)
	r.Post("/games", h.HandleCreate)
	r.Get("/games/{id}", h.HandleGet)
	r.Put("/games/{id}", h.HandleUpdate)
	r.Delete("/games/{id}", h.HandleDelete)
	r.Patch("/games/{id}/status", h.HandleSetStatus)
	r.Patch("/games/{id}/wishlist", h.HandleWishlist)
	r.Patch("/games/{id}/acquire", h.HandleAcquire)
}

// HandleList handles GET /games?consoleId=&status=&search=&sort=&order=.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	filter, err := parseListFilter(r)
	if err != nil {
		h.logger.WarnContext(ctx, "invalid game list query",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	views, err := h.service.List(ctx, filter)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list games",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toGameResponses(views))
}

// HandleCreate handles POST /games.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateGameRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	var (
		v   *models.View
		err error
	)
	if req.FromExternalSource() {
		v, err = h.service.AddFromExternalSource(ctx, req.Fields())
	} else {
		v, err = h.service.AddManually(ctx, req.Fields())
	}
	if err != nil {
		h.logger.WarnContext(ctx, "failed to add game",
			"request_id", requestID,
			"title", req.Title,
			"console_id", req.ConsoleID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "game added",
		"request_id", requestID,
		"game_id", v.ID.String(),
		"console_id", v.ConsoleID.String(),
	)
	httputil.WriteJSON(w, http.StatusCreated, toGameResponse(v))
}

// HandleGet handles GET /games/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}
	v, err := h.service.Get(r.Context(), gameID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toGameResponse(v))
}

// HandleUpdate handles PUT /games/{id}.
func (h *Handler) HandleUpdate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[UpdateGameRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	v, err := h.service.Update(ctx, gameID, req.Patch())
	if err != nil {
		h.logger.WarnContext(ctx, "failed to update game",
			"request_id", requestID,
			"game_id", gameID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toGameResponse(v))
}

// HandleDelete handles DELETE /games/{id}.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, gameID); err != nil {
		h.logger.WarnContext(ctx, "failed to delete game",
			"request_id", requestID,
			"game_id", gameID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "game deleted",
		"request_id", requestID,
		"game_id", gameID.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Game deleted successfully"})
}

// HandleSetStatus handles PATCH /games/{id}/status.
func (h *Handler) HandleSetStatus(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[StatusRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	h.writeStatusResult(w, r, gameID, func(ctx context.Context) (*models.View, error) {
		return h.service.SetStatus(ctx, gameID, req.status)
	})
}

// HandleWishlist handles PATCH /games/{id}/wishlist.
func (h *Handler) HandleWishlist(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}
	h.writeStatusResult(w, r, gameID, func(ctx context.Context) (*models.View, error) {
		return h.service.MoveToWishlist(ctx, gameID)
	})
}

// HandleAcquire handles PATCH /games/{id}/acquire.
func (h *Handler) HandleAcquire(w http.ResponseWriter, r *http.Request) {
	gameID, ok := h.gameID(w, r)
	if !ok {
		return
	}
	h.writeStatusResult(w, r, gameID, func(ctx context.Context) (*models.View, error) {
		return h.service.Acquire(ctx, gameID)
	})
}

func (h *Handler) writeStatusResult(w http.ResponseWriter, r *http.Request, gameID id.GameID, change func(context.Context) (*models.View, error)) {
	ctx := r.Context()
	v, err := change(ctx)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to change game status",
			"request_id", requestcontext.RequestID(ctx),
			"game_id", gameID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	h.logger.InfoContext(ctx, "game status changed",
		"request_id", requestcontext.RequestID(ctx),
		"game_id", gameID.String(),
		"status", string(v.Status),
	)
	httputil.WriteJSON(w, http.StatusOK, toGameResponse(v))
}

func (h *Handler) gameID(w http.ResponseWriter, r *http.Request) (id.GameID, bool) {
	gameID, err := id.ParseGameID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.GameID{}, false
	}
	return gameID, true
}

func parseListFilter(r *http.Request) (models.ListFilter, error) {
	q := r.URL.Query()
	var filter models.ListFilter

	if raw := strings.TrimSpace(q.Get("consoleId")); raw != "" {
		consoleID, err := id.ParseConsoleID(raw)
		if err != nil {
			return filter, err
		}
		filter.ConsoleID = &consoleID
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		status, err := models.ParseStatus(raw)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}
	filter.Search = strings.TrimSpace(q.Get("search"))

	sort, err := models.ParseSortKey(q.Get("sort"))
	if err != nil {
		return filter, err
	}
	filter.Sort = sort
	if filter.Desc, err = models.ParseOrder(q.Get("order")); err != nil {
		return filter, err
	}
	return filter, nil
}
