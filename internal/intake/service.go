package intake

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"healthcred/internal/intake/blob"
	"healthcred/internal/intake/metrics"
	"healthcred/internal/platform/tracing"
	"healthcred/internal/score"
	id "healthcred/pkg/domain"
	dErrors "healthcred/pkg/domain-errors"
	audit "healthcred/pkg/platform/audit"
	"healthcred/pkg/platform/sentinel"
	"healthcred/pkg/requestcontext"
)

// ScoreUpdater applies the verified score delta. Satisfied by the score
// service.
type ScoreUpdater interface {
	ApplyDelta(ctx context.Context, userID id.UserID, delta int, factor score.Factor) (*score.Snapshot, error)
}

// factorFor maps a verified record type to the score factor it nudges.
func factorFor(recordType RecordType) score.Factor {
	switch recordType {
	case RecordTypeReceipt:
		return score.FactorMedicalExpenseTracking
	case RecordTypePrescription:
		return score.FactorPrescriptionAdherence
	case RecordTypeInsurance:
		return score.FactorConsistency
	default:
		return score.FactorTrust
	}
}

// Config bounds intake uploads and stage timeouts.
type Config struct {
	MaxUploadBytes int64
	UploadTimeout  time.Duration
	VerifyTimeout  time.Duration
}

// Service owns workflow instances and runs submissions. Live workflows are
// held in process; the store carries snapshots for read access and restarts.
type Service struct {
	cfg      Config
	store    Store
	blobs    blob.Store
	analyzer Analyzer
	scores   ScoreUpdater
	logger   *slog.Logger
	audit    audit.Publisher
	metrics  *metrics.Metrics

	mu      sync.Mutex
	live    map[id.WorkflowID]*Workflow
	submits map[id.WorkflowID]context.CancelFunc
}

type Option func(s *Service)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

func WithAuditPublisher(publisher audit.Publisher) Option {
	return func(s *Service) {
		s.audit = publisher
	}
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(s *Service) {
		s.metrics = m
	}
}

// New constructs a Service.
func New(cfg Config, store Store, blobs blob.Store, an Analyzer, scores ScoreUpdater, opts ...Option) *Service {
	s := &Service{
		cfg:      cfg,
		store:    store,
		blobs:    blobs,
		analyzer: an,
		scores:   scores,
		logger:   slog.Default(),
		live:     make(map[id.WorkflowID]*Workflow),
		submits:  make(map[id.WorkflowID]context.CancelFunc),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start opens a workflow with the selected file attached.
func (s *Service) Start(ctx context.Context, userID id.UserID, fileName string, data []byte) (*Record, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "wallet connection required")
	}

	wf := NewWorkflow(userID, requestcontext.Now(ctx))
	if err := wf.SelectFile(fileName, data, s.cfg.MaxUploadBytes, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	if s.metrics != nil {
		s.metrics.ObserveUploadSize(int64(len(data)))
	}

	s.mu.Lock()
	s.live[wf.ID()] = wf
	s.mu.Unlock()

	rec := wf.Record()
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist workflow")
	}
	s.logger.InfoContext(ctx, "intake workflow started",
		"workflow_id", wf.ID(),
		"user_id", userID,
		"file_name", fileName,
		"file_size", len(data),
	)
	return rec, nil
}

// CaptureDetails records the declared document attributes.
func (s *Service) CaptureDetails(ctx context.Context, userID id.UserID, workflowID id.WorkflowID, details Details) (*Record, error) {
	wf, err := s.liveWorkflow(ctx, userID, workflowID)
	if err != nil {
		return nil, err
	}
	if err := wf.CaptureDetails(details, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	rec := wf.Record()
	if err := s.store.Save(ctx, rec); err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to persist workflow")
	}
	return rec, nil
}

// Submit runs the upload and verify stages to completion. The call blocks
// until the workflow reaches a terminal state or is cancelled; cancellation
// returns the workflow to the awaiting state with the file discarded.
func (s *Service) Submit(ctx context.Context, userID id.UserID, workflowID id.WorkflowID) (*Record, error) {
	wf, err := s.liveWorkflow(ctx, userID, workflowID)
	if err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	doc, details, err := wf.beginUpload(now)
	if err != nil {
		return nil, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	s.mu.Lock()
	s.submits[workflowID] = cancel
	s.mu.Unlock()
	defer func() {
		cancel()
		s.mu.Lock()
		delete(s.submits, workflowID)
		s.mu.Unlock()
	}()
	s.saveSnapshot(ctx, wf)

	contentHash, err := s.upload(runCtx, wf, doc)
	if err != nil {
		return s.abort(ctx, wf, err)
	}

	result, err := s.verify(runCtx, wf, contentHash, doc, details)
	if err != nil {
		return s.abort(ctx, wf, err)
	}

	// The delta lands before the terminal transition so a completed
	// workflow always implies an updated score.
	factor := factorFor(result.DocumentType)
	if _, err := s.scores.ApplyDelta(ctx, userID, result.ScoreDelta, factor); err != nil {
		return s.abort(ctx, wf, dErrors.Wrap(err, dErrors.CodeInternal, "failed to apply score delta"))
	}

	if err := wf.complete(*result, requestcontext.Now(ctx)); err != nil {
		return nil, err
	}
	s.saveSnapshot(ctx, wf)
	s.evict(wf.ID())
	s.recordSubmission("complete")
	s.emitAudit(ctx, wf, audit.EventDocumentVerified, "verified", result.ContentHash, "")
	s.logger.InfoContext(ctx, "intake workflow complete",
		"workflow_id", wf.ID(),
		"user_id", userID,
		"document_type", result.DocumentType,
		"score_delta", result.ScoreDelta,
	)
	return wf.Record(), nil
}

// Cancel aborts an in-flight submission. Only the uploading and verifying
// stages can be cancelled.
func (s *Service) Cancel(ctx context.Context, userID id.UserID, workflowID id.WorkflowID) (*Record, error) {
	wf, err := s.liveWorkflow(ctx, userID, workflowID)
	if err != nil {
		return nil, err
	}

	state := wf.State()
	if state != StateUploading && state != StateVerifying {
		return nil, dErrors.Newf(dErrors.CodeInvalidState, "cannot cancel in state %s", state)
	}

	s.mu.Lock()
	cancel, ok := s.submits[workflowID]
	s.mu.Unlock()
	if ok {
		cancel()
	}
	return wf.Record(), nil
}

// Get returns the current workflow snapshot.
func (s *Service) Get(ctx context.Context, userID id.UserID, workflowID id.WorkflowID) (*Record, error) {
	wf, err := s.workflow(userID, workflowID)
	if err == nil {
		return wf.Record(), nil
	}
	if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil, err
	}

	// Not live in this process; fall back to the persisted snapshot.
	rec, findErr := s.store.Find(ctx, workflowID)
	if errors.Is(findErr, sentinel.ErrNotFound) {
		return nil, dErrors.New(dErrors.CodeNotFound, "workflow not found")
	}
	if findErr != nil {
		return nil, dErrors.Wrap(findErr, dErrors.CodeInternal, "failed to load workflow")
	}
	if rec.UserID != userID {
		return nil, dErrors.New(dErrors.CodeNotFound, "workflow not found")
	}
	return rec, nil
}

func (s *Service) upload(ctx context.Context, wf *Workflow, doc *Document) (string, error) {
	uploadCtx := ctx
	if s.cfg.UploadTimeout > 0 {
		var cancel context.CancelFunc
		uploadCtx, cancel = context.WithTimeout(ctx, s.cfg.UploadTimeout)
		defer cancel()
	}

	spanCtx, span := tracing.StartStage(uploadCtx, "upload", wf.ID().String())
	defer span.End()

	started := time.Now()
	contentHash, err := s.blobs.Put(spanCtx, doc.RawBytes)
	s.observeStage("upload", time.Since(started))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return "", err
		}
		return "", dErrors.Wrap(err, dErrors.CodeUploadFailed, "failed to store document")
	}

	if err := wf.beginVerify(time.Now()); err != nil {
		return "", err
	}
	s.saveSnapshot(ctx, wf)
	s.emitAudit(ctx, wf, audit.EventDocumentUploaded, "stored", contentHash, "")
	return contentHash, nil
}

func (s *Service) verify(ctx context.Context, wf *Workflow, contentHash string, doc *Document, details *Details) (*VerificationResult, error) {
	verifyCtx := ctx
	if s.cfg.VerifyTimeout > 0 {
		var cancel context.CancelFunc
		verifyCtx, cancel = context.WithTimeout(ctx, s.cfg.VerifyTimeout)
		defer cancel()
	}

	spanCtx, span := tracing.StartStage(verifyCtx, "verify", wf.ID().String())
	defer span.End()

	started := time.Now()
	result, err := s.analyzer.Analyze(spanCtx, AnalysisRequest{
		ContentHash: contentHash,
		FileType:    doc.FileType,
		FileSize:    int64(len(doc.RawBytes)),
		Details:     *details,
	})
	s.observeStage("verify", time.Since(started))
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil, err
		}
		if dErrors.HasCode(err, dErrors.CodeVerificationFailed) {
			return nil, err
		}
		return nil, dErrors.Wrap(err, dErrors.CodeVerificationFailed, "document verification failed")
	}
	return result, nil
}

// abort resolves a failed or cancelled stage. Cancellation resets the
// workflow; stage timeouts and everything else are terminal.
func (s *Service) abort(ctx context.Context, wf *Workflow, err error) (*Record, error) {
	now := time.Now()
	if errors.Is(err, context.Canceled) {
		if resetErr := wf.reset(now); resetErr != nil {
			return nil, resetErr
		}
		s.saveSnapshot(ctx, wf)
		s.recordSubmission("cancelled")
		s.emitAudit(ctx, wf, audit.EventIntakeCancelled, "cancelled", "", err.Error())
		s.logger.InfoContext(ctx, "intake submission cancelled", "workflow_id", wf.ID())
		return wf.Record(), dErrors.Wrap(err, dErrors.CodeInvalidState, "submission cancelled")
	}

	code := dErrors.CodeOf(err)
	if code == "" {
		code = dErrors.CodeInternal
	}
	if failErr := wf.fail(code, now); failErr != nil {
		return nil, failErr
	}
	s.saveSnapshot(ctx, wf)
	s.evict(wf.ID())
	s.recordSubmission("failed")
	s.emitAudit(ctx, wf, audit.EventIntakeFailed, "failed", "", err.Error())
	s.logger.WarnContext(ctx, "intake submission failed",
		"workflow_id", wf.ID(),
		"failure_code", code,
		"error", err,
	)
	return wf.Record(), err
}

// evict drops a terminal workflow from the live map; reads after this point
// are served from the persisted snapshot.
func (s *Service) evict(workflowID id.WorkflowID) {
	s.mu.Lock()
	delete(s.live, workflowID)
	s.mu.Unlock()
}

// liveWorkflow resolves a workflow that can still accept transitions. A
// workflow evicted after reaching a terminal state reports invalid_state
// rather than not_found so callers see why the transition is refused.
func (s *Service) liveWorkflow(ctx context.Context, userID id.UserID, workflowID id.WorkflowID) (*Workflow, error) {
	wf, err := s.workflow(userID, workflowID)
	if err == nil {
		return wf, nil
	}
	if !dErrors.HasCode(err, dErrors.CodeNotFound) {
		return nil, err
	}
	rec, findErr := s.store.Find(ctx, workflowID)
	if findErr == nil && rec.UserID == userID && rec.State.Terminal() {
		return nil, dErrors.Newf(dErrors.CodeInvalidState, "workflow is already %s", rec.State)
	}
	return nil, err
}

func (s *Service) workflow(userID id.UserID, workflowID id.WorkflowID) (*Workflow, error) {
	if userID.IsNil() {
		return nil, dErrors.New(dErrors.CodeUnauthorized, "wallet connection required")
	}
	s.mu.Lock()
	wf, ok := s.live[workflowID]
	s.mu.Unlock()
	if !ok || wf.UserID() != userID {
		return nil, dErrors.New(dErrors.CodeNotFound, "workflow not found")
	}
	return wf, nil
}

func (s *Service) saveSnapshot(ctx context.Context, wf *Workflow) {
	if err := s.store.Save(context.WithoutCancel(ctx), wf.Record()); err != nil {
		s.logger.WarnContext(ctx, "failed to persist workflow snapshot",
			"workflow_id", wf.ID(),
			"error", err,
		)
	}
}

func (s *Service) emitAudit(ctx context.Context, wf *Workflow, action audit.AuditEvent, decision, contentHash, reason string) {
	if s.audit == nil {
		return
	}
	event := audit.Event{
		Category:    action.Category(),
		Timestamp:   time.Now(),
		UserID:      wf.UserID(),
		Subject:     wf.ID().String(),
		Action:      string(action),
		Decision:    decision,
		Reason:      reason,
		RequestID:   requestcontext.RequestID(ctx),
		ContentHash: contentHash,
	}
	if err := s.audit.Emit(context.WithoutCancel(ctx), event); err != nil {
		s.logger.WarnContext(ctx, "failed to emit audit event",
			"action", event.Action,
			"error", err,
		)
	}
}

func (s *Service) recordSubmission(outcome string) {
	if s.metrics != nil {
		s.metrics.RecordSubmission(outcome)
	}
}

func (s *Service) observeStage(stage string, d time.Duration) {
	if s.metrics != nil {
		s.metrics.ObserveStage(stage, d)
	}
}
