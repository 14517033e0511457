package handler

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"gamelib/internal/console/models"
	"gamelib/internal/integrity"
	id "gamelib/pkg/domain"
	"gamelib/pkg/platform/httputil"
	"gamelib/pkg/requestcontext"
)

// Service defines the console operations the handler needs.
type Service interface {
	Register(ctx context.Context, name string, externalPlatformID *int) (*models.Console, error)
	List(ctx context.Context) ([]*models.Console, error)
	Get(ctx context.Context, consoleID id.ConsoleID) (*models.Console, error)
	Rename(ctx context.Context, consoleID id.ConsoleID, name string) (*models.Console, error)
	Delete(ctx context.Context, consoleID id.ConsoleID) error
	ClearGames(ctx context.Context, consoleID id.ConsoleID) (int, error)
}

// Handler serves the console registry endpoints.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts console endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/consoles", h.HandleList)
	r.Post("/consoles", h.HandleCreate)
	r.Get("/consoles/{id}", h.HandleGet)
	r.Put("/consoles/{id}", h.HandleRename)
	r.Delete("/consoles/{id}", h.HandleDelete)
	r.Delete("/consoles/{id}/games", h.HandleClearGames)
	r.Post("/consoles/{id}/clear-games", h.HandleClearGames)
}

// HandleList handles GET /consoles.
func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	consoles, err := h.service.List(ctx)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to list consoles",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toConsoleResponses(consoles))
}

// HandleCreate handles POST /consoles.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[CreateConsoleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	c, err := h.service.Register(ctx, req.Name, req.ExternalPlatformID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to register console",
			"request_id", requestID,
			"name", req.Name,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "console registered",
		"request_id", requestID,
		"console_id", c.ID.String(),
		"name", c.Name,
	)
	httputil.WriteJSON(w, http.StatusCreated, toConsoleResponse(c))
}

// HandleGet handles GET /consoles/{id}.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	consoleID, ok := h.consoleID(w, r)
	if !ok {
		return
	}

	c, err := h.service.Get(ctx, consoleID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toConsoleResponse(c))
}

// HandleRename handles PUT /consoles/{id}.
func (h *Handler) HandleRename(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	consoleID, ok := h.consoleID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[RenameConsoleRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	c, err := h.service.Rename(ctx, consoleID, req.Name)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to rename console",
			"request_id", requestID,
			"console_id", consoleID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, toConsoleResponse(c))
}

// HandleDelete handles DELETE /consoles/{id}. A console with games is
// refused with 400 and the number of attached games.
func (h *Handler) HandleDelete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	consoleID, ok := h.consoleID(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(ctx, consoleID); err != nil {
		var inUse *integrity.ConsoleInUseError
		if errors.As(err, &inUse) {
			h.logger.InfoContext(ctx, "console delete refused",
				"request_id", requestID,
				"console_id", consoleID.String(),
				"associated_games", inUse.Count,
			)
			httputil.WriteErrorWithStatus(w, http.StatusBadRequest, err)
			return
		}
		h.logger.WarnContext(ctx, "failed to delete console",
			"request_id", requestID,
			"console_id", consoleID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "console deleted",
		"request_id", requestID,
		"console_id", consoleID.String(),
	)
	httputil.WriteJSON(w, http.StatusOK, MessageResponse{Message: "Console deleted successfully"})
}

// HandleClearGames handles DELETE /consoles/{id}/games and POST /consoles/{id}/clear-games.
func (h *Handler) HandleClearGames(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	consoleID, ok := h.consoleID(w, r)
	if !ok {
		return
	}

	n, err := h.service.ClearGames(ctx, consoleID)
	if err != nil {
		h.logger.WarnContext(ctx, "failed to clear console games",
			"request_id", requestID,
			"console_id", consoleID.String(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "console games cleared",
		"request_id", requestID,
		"console_id", consoleID.String(),
		"deleted_count", n,
	)
	httputil.WriteJSON(w, http.StatusOK, ClearGamesResponse{
		Message:      fmt.Sprintf("Removed %d games from console", n),
		DeletedCount: n,
	})
}

func (h *Handler) consoleID(w http.ResponseWriter, r *http.Request) (id.ConsoleID, bool) {
	consoleID, err := id.ParseConsoleID(chi.URLParam(r, "id"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.ConsoleID{}, false
	}
	return consoleID, true
}
