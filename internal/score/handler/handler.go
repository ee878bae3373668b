package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"healthcred/internal/score"
	id "healthcred/pkg/domain"
	"healthcred/pkg/platform/httputil"
	"healthcred/pkg/requestcontext"
)

// Service defines the score operations the handler needs.
type Service interface {
	Current(ctx context.Context, userID id.UserID) (*score.Snapshot, error)
}

// Handler wires score endpoints to the score service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a score handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts score endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/score", h.HandleCurrent)
}

// HandleCurrent handles GET /score requests.
func (h *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	snapshot, err := h.service.Current(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "failed to load score",
			"request_id", requestcontext.RequestID(ctx),
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromSnapshot(snapshot))
}
