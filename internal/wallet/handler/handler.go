package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"healthcred/internal/wallet"
	id "healthcred/pkg/domain"
	"healthcred/pkg/platform/httputil"
	"healthcred/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/wallet-mocks.go -package=mocks Service

// Service defines the wallet operations the handler needs.
type Service interface {
	Connect(ctx context.Context, provider string) (*wallet.ConnectResult, error)
	Disconnect(ctx context.Context, sessionID id.SessionID) error
	Current(ctx context.Context, sessionID id.SessionID) (*wallet.Session, error)
}

// Handler wires wallet endpoints to the wallet service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

// New constructs a wallet handler with its dependencies.
func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// RegisterPublic mounts the endpoints reachable without a session.
func (h *Handler) RegisterPublic(r chi.Router) {
	r.Post("/wallet/connect", h.HandleConnect)
}

// Register mounts the endpoints behind the wallet gate.
func (h *Handler) Register(r chi.Router) {
	r.Get("/wallet", h.HandleCurrent)
	r.Post("/wallet/disconnect", h.HandleDisconnect)
}

// HandleConnect handles POST /wallet/connect requests.
func (h *Handler) HandleConnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[ConnectRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	result, err := h.service.Connect(ctx, req.Provider)
	if err != nil {
		h.logger.WarnContext(ctx, "wallet connect failed",
			"request_id", requestID,
			"provider", req.Provider,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromConnectResult(result))
}

// HandleDisconnect handles POST /wallet/disconnect requests.
func (h *Handler) HandleDisconnect(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := requestcontext.SessionID(ctx)

	if err := h.service.Disconnect(ctx, sessionID); err != nil {
		h.logger.ErrorContext(ctx, "wallet disconnect failed",
			"request_id", requestcontext.RequestID(ctx),
			"session_id", sessionID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// HandleCurrent handles GET /wallet requests.
func (h *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	sessionID := requestcontext.SessionID(ctx)

	session, err := h.service.Current(ctx, sessionID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusOK, FromSession(session))
}
