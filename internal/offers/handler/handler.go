package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"healthcred/internal/offers"
	id "healthcred/pkg/domain"
	"healthcred/pkg/platform/httputil"
	"healthcred/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/offers-mocks.go -package=mocks Service

// Service defines the offer operations the handler needs.
type Service interface {
	MatchOffers(ctx context.Context, userID id.UserID) (*offers.MatchResult, error)
}

// Handler wires offer endpoints to the offers service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs an offers handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts offer endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/offers/matches", h.HandleMatches)
}

// HandleMatches handles GET /offers/matches requests.
func (h *Handler) HandleMatches(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	start := time.Now()

	userID := requestcontext.UserID(ctx)

	result, err := h.service.MatchOffers(ctx, userID)
	if err != nil {
		h.logger.ErrorContext(ctx, "offer matching failed",
			"request_id", requestID,
			"user_id", userID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "offer matches served",
		"request_id", requestID,
		"user_id", userID,
		"score", result.Score,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	httputil.WriteJSON(w, http.StatusOK, FromResult(result))
}
