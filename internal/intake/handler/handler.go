package handler

import (
	"context"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"healthcred/internal/intake"
	id "healthcred/pkg/domain"
	dErrors "healthcred/pkg/domain-errors"
	"healthcred/pkg/platform/httputil"
	"healthcred/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/intake-mocks.go -package=mocks Service

// Service defines the intake operations the handler needs.
type Service interface {
	Start(ctx context.Context, userID id.UserID, fileName string, data []byte) (*intake.Record, error)
	CaptureDetails(ctx context.Context, userID id.UserID, workflowID id.WorkflowID, details intake.Details) (*intake.Record, error)
	Submit(ctx context.Context, userID id.UserID, workflowID id.WorkflowID) (*intake.Record, error)
	Cancel(ctx context.Context, userID id.UserID, workflowID id.WorkflowID) (*intake.Record, error)
	Get(ctx context.Context, userID id.UserID, workflowID id.WorkflowID) (*intake.Record, error)
}

// Handler wires intake endpoints to the intake service.
type Handler struct {
	service        Service
	logger         *slog.Logger
	maxUploadBytes int64
}

// New constructs an intake handler with its dependencies.
func New(service Service, logger *slog.Logger, maxUploadBytes int64) *Handler {
	return &Handler{service: service, logger: logger, maxUploadBytes: maxUploadBytes}
}

// Register mounts intake endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/intake", h.HandleStart)
	r.Route("/intake/{workflowID}", func(r chi.Router) {
		r.Get("/", h.HandleGet)
		r.Post("/details", h.HandleDetails)
		r.Post("/submit", h.HandleSubmit)
		r.Post("/cancel", h.HandleCancel)
	})
}

// HandleStart handles POST /intake multipart uploads. The file goes in the
// "file" form field.
func (h *Handler) HandleStart(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID := requestcontext.UserID(ctx)

	// Leave headroom over the file limit for multipart framing so oversized
	// files surface as a validation error rather than a truncated read.
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadBytes+1<<20)
	file, header, err := formFile(r)
	if err != nil {
		h.logger.WarnContext(ctx, "rejected intake upload",
			"request_id", requestID,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		httputil.WriteError(w, dErrors.Wrap(err, dErrors.CodeValidation, "failed to read uploaded file"))
		return
	}

	rec, err := h.service.Start(ctx, userID, header.Filename, data)
	if err != nil {
		h.logger.WarnContext(ctx, "intake start rejected",
			"request_id", requestID,
			"user_id", userID,
			"file_name", header.Filename,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, FromRecord(rec))
}

// HandleDetails handles POST /intake/{workflowID}/details requests.
func (h *Handler) HandleDetails(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID := requestcontext.UserID(ctx)

	workflowID, ok := h.workflowID(w, r)
	if !ok {
		return
	}

	req, ok := httputil.DecodeAndPrepare[CaptureDetailsRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	rec, err := h.service.CaptureDetails(ctx, userID, workflowID, req.Details())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(rec))
}

// HandleSubmit handles POST /intake/{workflowID}/submit requests. The call
// blocks until the workflow reaches a terminal state or is cancelled.
func (h *Handler) HandleSubmit(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)
	userID := requestcontext.UserID(ctx)
	start := time.Now()

	workflowID, ok := h.workflowID(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Submit(ctx, userID, workflowID)
	if err != nil {
		h.logger.WarnContext(ctx, "intake submission did not complete",
			"request_id", requestID,
			"user_id", userID,
			"workflow_id", workflowID,
			"duration_ms", time.Since(start).Milliseconds(),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}

	h.logger.InfoContext(ctx, "intake submission complete",
		"request_id", requestID,
		"user_id", userID,
		"workflow_id", workflowID,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	httputil.WriteJSON(w, http.StatusOK, FromRecord(rec))
}

// HandleCancel handles POST /intake/{workflowID}/cancel requests.
func (h *Handler) HandleCancel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	workflowID, ok := h.workflowID(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Cancel(ctx, userID, workflowID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusAccepted, FromRecord(rec))
}

// HandleGet handles GET /intake/{workflowID} requests.
func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := requestcontext.UserID(ctx)

	workflowID, ok := h.workflowID(w, r)
	if !ok {
		return
	}

	rec, err := h.service.Get(ctx, userID, workflowID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, FromRecord(rec))
}

func (h *Handler) workflowID(w http.ResponseWriter, r *http.Request) (id.WorkflowID, bool) {
	workflowID, err := id.ParseWorkflowID(chi.URLParam(r, "workflowID"))
	if err != nil {
		httputil.WriteError(w, dErrors.New(dErrors.CodeBadRequest, "invalid workflow id"))
		return id.WorkflowID{}, false
	}
	return workflowID, true
}

func formFile(r *http.Request) (multipart.File, *multipart.FileHeader, error) {
	file, header, err := r.FormFile("file")
	if err != nil {
		return nil, nil, dErrors.Wrap(err, dErrors.CodeBadRequest, "multipart field 'file' is required")
	}
	return file, header, nil
}
