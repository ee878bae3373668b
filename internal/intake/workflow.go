package intake

import (
	"sync"
	"time"

	id "healthcred/pkg/domain"
	dErrors "healthcred/pkg/domain-errors"
)

// Workflow is the per-document state machine. All transition methods are
// safe for concurrent use; exactly one transition wins when callers race.
type Workflow struct {
	mu sync.Mutex

	id        id.WorkflowID
	userID    id.UserID
	state     State
	doc       *Document
	details   *Details
	result    *VerificationResult
	failure   dErrors.Code
	createdAt time.Time
	updatedAt time.Time
}

// NewWorkflow starts an empty workflow in StateAwaitingFile.
func NewWorkflow(userID id.UserID, now time.Time) *Workflow {
	return &Workflow{
		id:        id.NewWorkflowID(),
		userID:    userID,
		state:     StateAwaitingFile,
		createdAt: now,
		updatedAt: now,
	}
}

func (w *Workflow) ID() id.WorkflowID { return w.id }

func (w *Workflow) UserID() id.UserID { return w.userID }

// State returns the current position.
func (w *Workflow) State() State {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.state
}

// SelectFile attaches the document and moves to StateDetailsCaptured once
// details arrive. A workflow accepts exactly one file; selecting a second
// file is rejected, including on terminal workflows.
func (w *Workflow) SelectFile(fileName string, data []byte, maxBytes int64, now time.Time) error {
	fileType, err := ParseFileType(fileName)
	if err != nil {
		return err
	}
	if len(data) == 0 {
		return dErrors.New(dErrors.CodeUnsupportedFile, "file is empty")
	}
	if int64(len(data)) > maxBytes {
		return dErrors.Newf(dErrors.CodeUnsupportedFile, "file exceeds %d byte limit", maxBytes)
	}
	if !sniffFileType(data, fileType) {
		return dErrors.Newf(dErrors.CodeUnsupportedFile, "file content does not match declared type %s", fileType)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateAwaitingFile {
		return dErrors.Newf(dErrors.CodeInvalidState, "cannot select file in state %s", w.state)
	}
	if w.doc != nil {
		return dErrors.New(dErrors.CodeInvalidState, "file already selected")
	}
	w.doc = &Document{
		ID:       id.NewDocumentID(),
		FileName: fileName,
		FileType: fileType,
		RawBytes: data,
	}
	w.touch(now)
	return nil
}

// CaptureDetails records the declared attributes. Allowed once a file is
// selected and repeatable until submission; the latest capture wins.
func (w *Workflow) CaptureDetails(details Details, now time.Time) error {
	if _, err := ParseRecordType(string(details.RecordType)); err != nil {
		return err
	}
	if details.AmountCents != nil && *details.AmountCents < 0 {
		return dErrors.New(dErrors.CodeInvalidField, "declared amount cannot be negative")
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateAwaitingFile && w.state != StateDetailsCaptured {
		return dErrors.Newf(dErrors.CodeInvalidState, "cannot capture details in state %s", w.state)
	}
	if w.doc == nil {
		return dErrors.New(dErrors.CodeInvalidState, "no file selected")
	}
	d := details
	w.details = &d
	w.state = StateDetailsCaptured
	w.touch(now)
	return nil
}

// beginUpload moves details_captured to uploading. It returns the document
// so the caller can persist the bytes without holding the lock.
func (w *Workflow) beginUpload(now time.Time) (*Document, *Details, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateDetailsCaptured {
		return nil, nil, dErrors.Newf(dErrors.CodeInvalidState, "cannot submit in state %s", w.state)
	}
	w.state = StateUploading
	w.touch(now)
	return w.doc, w.details, nil
}

func (w *Workflow) beginVerify(now time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateUploading {
		return dErrors.Newf(dErrors.CodeInvalidState, "cannot verify in state %s", w.state)
	}
	w.state = StateVerifying
	w.touch(now)
	return nil
}

// complete records the verification result and discards the raw bytes.
func (w *Workflow) complete(result VerificationResult, now time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateVerifying {
		return dErrors.Newf(dErrors.CodeInvalidState, "cannot complete in state %s", w.state)
	}
	r := result
	w.result = &r
	w.state = StateComplete
	w.doc.RawBytes = nil
	w.touch(now)
	return nil
}

// fail moves any in-flight workflow to the terminal failed state.
func (w *Workflow) fail(code dErrors.Code, now time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state.Terminal() {
		return dErrors.Newf(dErrors.CodeInvalidState, "cannot fail in state %s", w.state)
	}
	w.state = StateFailed
	w.failure = code
	if w.doc != nil {
		w.doc.RawBytes = nil
	}
	w.touch(now)
	return nil
}

// reset returns a cancelled submission to StateAwaitingFile. The selected
// file and details are discarded, matching a user abandoning the upload.
func (w *Workflow) reset(now time.Time) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.state != StateUploading && w.state != StateVerifying {
		return dErrors.Newf(dErrors.CodeInvalidState, "cannot cancel in state %s", w.state)
	}
	w.state = StateAwaitingFile
	w.doc = nil
	w.details = nil
	w.touch(now)
	return nil
}

func (w *Workflow) touch(now time.Time) {
	if !now.IsZero() {
		w.updatedAt = now
	}
}

// Record is the persisted snapshot of a workflow. Raw file bytes are never
// part of the record.
type Record struct {
	ID          id.WorkflowID
	UserID      id.UserID
	State       State
	FileName    string
	FileType    FileType
	FileSize    int64
	Details     *Details
	Result      *VerificationResult
	FailureCode dErrors.Code
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Record snapshots the workflow for persistence and read access.
func (w *Workflow) Record() *Record {
	w.mu.Lock()
	defer w.mu.Unlock()

	rec := &Record{
		ID:          w.id,
		UserID:      w.userID,
		State:       w.state,
		FailureCode: w.failure,
		CreatedAt:   w.createdAt,
		UpdatedAt:   w.updatedAt,
	}
	if w.doc != nil {
		rec.FileName = w.doc.FileName
		rec.FileType = w.doc.FileType
		rec.FileSize = int64(len(w.doc.RawBytes))
	}
	if w.details != nil {
		d := *w.details
		rec.Details = &d
	}
	if w.result != nil {
		r := *w.result
		rec.Result = &r
	}
	return rec
}
