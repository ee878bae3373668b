package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"healthcred/internal/intake"
	"healthcred/internal/intake/handler/mocks"
	id "healthcred/pkg/domain"
	dErrors "healthcred/pkg/domain-errors"
	"healthcred/pkg/requestcontext"
)

func newTestHandler(t *testing.T) (*Handler, *mocks.MockService) {
	t.Helper()
	ctrl := gomock.NewController(t)
	mockService := mocks.NewMockService(ctrl)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return New(mockService, logger, 10<<20), mockService
}

func newRouter(h *Handler) chi.Router {
	r := chi.NewRouter()
	h.Register(r)
	return r
}

func multipartUpload(t *testing.T, fileName string, data []byte) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestHandleStart(t *testing.T) {
	t.Run("creates a workflow from the uploaded file", func(t *testing.T) {
		handler, mockService := newTestHandler(t)
		userID := id.NewUserID()
		workflowID := id.NewWorkflowID()

		mockService.EXPECT().Start(gomock.Any(), userID, "receipt.pdf", []byte("%PDF-1.4 x")).
			Return(&intake.Record{
				ID:       workflowID,
				UserID:   userID,
				State:    intake.StateAwaitingFile,
				FileName: "receipt.pdf",
				FileType: intake.FileTypePDF,
				FileSize: 10,
			}, nil)

		body, contentType := multipartUpload(t, "receipt.pdf", []byte("%PDF-1.4 x"))
		req := httptest.NewRequest(http.MethodPost, "/intake", body)
		req.Header.Set("Content-Type", contentType)
		req = req.WithContext(requestcontext.WithUserID(req.Context(), userID))
		w := httptest.NewRecorder()

		newRouter(handler).ServeHTTP(w, req)

		require.Equal(t, http.StatusCreated, w.Code)
		var resp WorkflowResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, workflowID.String(), resp.ID)
		assert.Equal(t, "awaiting_file", resp.State)
		assert.Equal(t, "receipt.pdf", resp.FileName)
	})

	t.Run("maps unsupported files to 422", func(t *testing.T) {
		handler, mockService := newTestHandler(t)

		mockService.EXPECT().Start(gomock.Any(), gomock.Any(), "notes.docx", gomock.Any()).
			Return(nil, dErrors.New(dErrors.CodeUnsupportedFile, "unsupported file type"))

		body, contentType := multipartUpload(t, "notes.docx", []byte("hello"))
		req := httptest.NewRequest(http.MethodPost, "/intake", body)
		req.Header.Set("Content-Type", contentType)
		w := httptest.NewRecorder()

		newRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("requires the file form field", func(t *testing.T) {
		handler, _ := newTestHandler(t)

		var buf bytes.Buffer
		writer := multipart.NewWriter(&buf)
		require.NoError(t, writer.Close())
		req := httptest.NewRequest(http.MethodPost, "/intake", &buf)
		req.Header.Set("Content-Type", writer.FormDataContentType())
		w := httptest.NewRecorder()

		newRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleDetails(t *testing.T) {
	t.Run("captures validated details", func(t *testing.T) {
		handler, mockService := newTestHandler(t)
		userID := id.NewUserID()
		workflowID := id.NewWorkflowID()
		amount := int64(24500)

		mockService.EXPECT().
			CaptureDetails(gomock.Any(), userID, workflowID, intake.Details{
				RecordType:  intake.RecordTypeReceipt,
				AmountCents: &amount,
				Provider:    "City Pharmacy",
			}).
			Return(&intake.Record{ID: workflowID, State: intake.StateDetailsCaptured}, nil)

		payload := `{"record_type":"receipt","amount_cents":24500,"provider":"City Pharmacy"}`
		req := httptest.NewRequest(http.MethodPost, "/intake/"+workflowID.String()+"/details", strings.NewReader(payload))
		req = req.WithContext(requestcontext.WithUserID(req.Context(), userID))
		w := httptest.NewRecorder()

		newRouter(handler).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp WorkflowResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "details_captured", resp.State)
	})

	t.Run("rejects unknown record types before the service", func(t *testing.T) {
		handler, _ := newTestHandler(t)
		workflowID := id.NewWorkflowID()

		payload := `{"record_type":"napkin"}`
		req := httptest.NewRequest(http.MethodPost, "/intake/"+workflowID.String()+"/details", strings.NewReader(payload))
		w := httptest.NewRecorder()

		newRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	})

	t.Run("rejects malformed workflow ids", func(t *testing.T) {
		handler, _ := newTestHandler(t)

		req := httptest.NewRequest(http.MethodPost, "/intake/not-a-uuid/details", strings.NewReader(`{}`))
		w := httptest.NewRecorder()

		newRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHandleSubmit(t *testing.T) {
	t.Run("returns the terminal snapshot", func(t *testing.T) {
		handler, mockService := newTestHandler(t)
		userID := id.NewUserID()
		workflowID := id.NewWorkflowID()

		mockService.EXPECT().Submit(gomock.Any(), userID, workflowID).
			Return(&intake.Record{
				ID:    workflowID,
				State: intake.StateComplete,
				Result: &intake.VerificationResult{
					DocumentType:        intake.RecordTypeReceipt,
					VerifiedAmountCents: 24500,
					ScoreDelta:          8,
					ContentHash:         "0xabc",
				},
				UpdatedAt: time.Now(),
			}, nil)

		req := httptest.NewRequest(http.MethodPost, "/intake/"+workflowID.String()+"/submit", nil)
		req = req.WithContext(requestcontext.WithUserID(req.Context(), userID))
		w := httptest.NewRecorder()

		newRouter(handler).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp WorkflowResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "complete", resp.State)
		require.NotNil(t, resp.Result)
		assert.Equal(t, 8, resp.Result.ScoreDelta)
		assert.Equal(t, "0xabc", resp.Result.ContentHash)
	})

	t.Run("maps invalid state to 409", func(t *testing.T) {
		handler, mockService := newTestHandler(t)
		workflowID := id.NewWorkflowID()

		mockService.EXPECT().Submit(gomock.Any(), gomock.Any(), workflowID).
			Return(nil, dErrors.New(dErrors.CodeInvalidState, "cannot submit in state complete"))

		req := httptest.NewRequest(http.MethodPost, "/intake/"+workflowID.String()+"/submit", nil)
		w := httptest.NewRecorder()

		newRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

func TestHandleCancel(t *testing.T) {
	handler, mockService := newTestHandler(t)
	userID := id.NewUserID()
	workflowID := id.NewWorkflowID()

	mockService.EXPECT().Cancel(gomock.Any(), userID, workflowID).
		Return(&intake.Record{ID: workflowID, State: intake.StateVerifying}, nil)

	req := httptest.NewRequest(http.MethodPost, "/intake/"+workflowID.String()+"/cancel", nil)
	req = req.WithContext(requestcontext.WithUserID(req.Context(), userID))
	w := httptest.NewRecorder()

	newRouter(handler).ServeHTTP(w, req)

	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestHandleGet(t *testing.T) {
	t.Run("serves the snapshot", func(t *testing.T) {
		handler, mockService := newTestHandler(t)
		userID := id.NewUserID()
		workflowID := id.NewWorkflowID()

		mockService.EXPECT().Get(gomock.Any(), userID, workflowID).
			Return(&intake.Record{ID: workflowID, State: intake.StateFailed, FailureCode: dErrors.CodeVerificationFailed}, nil)

		req := httptest.NewRequest(http.MethodGet, "/intake/"+workflowID.String(), nil)
		req = req.WithContext(requestcontext.WithUserID(req.Context(), userID))
		w := httptest.NewRecorder()

		newRouter(handler).ServeHTTP(w, req)

		require.Equal(t, http.StatusOK, w.Code)
		var resp WorkflowResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
		assert.Equal(t, "failed", resp.State)
		assert.Equal(t, "verification_failed", resp.FailureCode)
	})

	t.Run("maps missing workflows to 404", func(t *testing.T) {
		handler, mockService := newTestHandler(t)
		workflowID := id.NewWorkflowID()

		mockService.EXPECT().Get(gomock.Any(), gomock.Any(), workflowID).
			Return(nil, dErrors.New(dErrors.CodeNotFound, "workflow not found"))

		req := httptest.NewRequest(http.MethodGet, "/intake/"+workflowID.String(), nil)
		w := httptest.NewRecorder()

		newRouter(handler).ServeHTTP(w, req)

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
