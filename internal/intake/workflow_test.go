package intake

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "healthcred/pkg/domain"
	dErrors "healthcred/pkg/domain-errors"
)

const maxBytes = 10 << 20

var pdfBytes = []byte("%PDF-1.4 sample document")

func newTestWorkflow(t *testing.T) *Workflow {
	t.Helper()
	return NewWorkflow(id.NewUserID(), time.Now().UTC())
}

func TestSelectFile(t *testing.T) {
	now := time.Now().UTC()

	t.Run("accepts a pdf", func(t *testing.T) {
		wf := newTestWorkflow(t)
		require.NoError(t, wf.SelectFile("receipt.pdf", pdfBytes, maxBytes, now))
		rec := wf.Record()
		assert.Equal(t, FileTypePDF, rec.FileType)
		assert.Equal(t, StateAwaitingFile, rec.State)
	})

	t.Run("accepts jpg and png by magic bytes", func(t *testing.T) {
		wf := newTestWorkflow(t)
		require.NoError(t, wf.SelectFile("scan.jpg", []byte{0xFF, 0xD8, 0xFF, 0xE0}, maxBytes, now))

		wf = newTestWorkflow(t)
		require.NoError(t, wf.SelectFile("scan.png", []byte{0x89, 'P', 'N', 'G', 0x0D}, maxBytes, now))
	})

	t.Run("rejects unsupported extensions", func(t *testing.T) {
		wf := newTestWorkflow(t)
		err := wf.SelectFile("notes.docx", pdfBytes, maxBytes, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnsupportedFile))
	})

	t.Run("rejects content that does not match the extension", func(t *testing.T) {
		wf := newTestWorkflow(t)
		err := wf.SelectFile("receipt.pdf", []byte{0xFF, 0xD8, 0xFF}, maxBytes, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnsupportedFile))
	})

	t.Run("rejects empty files", func(t *testing.T) {
		wf := newTestWorkflow(t)
		err := wf.SelectFile("receipt.pdf", nil, maxBytes, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnsupportedFile))
	})

	t.Run("rejects files over the byte limit", func(t *testing.T) {
		wf := newTestWorkflow(t)
		big := make([]byte, 11<<20)
		copy(big, "%PDF-")
		err := wf.SelectFile("receipt.pdf", big, maxBytes, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnsupportedFile))
	})

	t.Run("rejects a second file", func(t *testing.T) {
		wf := newTestWorkflow(t)
		require.NoError(t, wf.SelectFile("receipt.pdf", pdfBytes, maxBytes, now))
		err := wf.SelectFile("other.pdf", pdfBytes, maxBytes, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})
}

func TestCaptureDetails(t *testing.T) {
	now := time.Now().UTC()

	t.Run("moves to details captured", func(t *testing.T) {
		wf := newTestWorkflow(t)
		require.NoError(t, wf.SelectFile("receipt.pdf", pdfBytes, maxBytes, now))
		require.NoError(t, wf.CaptureDetails(Details{RecordType: RecordTypeReceipt}, now))
		assert.Equal(t, StateDetailsCaptured, wf.State())
	})

	t.Run("latest capture wins before submission", func(t *testing.T) {
		wf := newTestWorkflow(t)
		require.NoError(t, wf.SelectFile("receipt.pdf", pdfBytes, maxBytes, now))
		require.NoError(t, wf.CaptureDetails(Details{RecordType: RecordTypeReceipt}, now))
		require.NoError(t, wf.CaptureDetails(Details{RecordType: RecordTypeLabReport}, now))
		assert.Equal(t, RecordTypeLabReport, wf.Record().Details.RecordType)
	})

	t.Run("requires a selected file", func(t *testing.T) {
		wf := newTestWorkflow(t)
		err := wf.CaptureDetails(Details{RecordType: RecordTypeReceipt}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("rejects unknown record types", func(t *testing.T) {
		wf := newTestWorkflow(t)
		require.NoError(t, wf.SelectFile("receipt.pdf", pdfBytes, maxBytes, now))
		err := wf.CaptureDetails(Details{RecordType: "napkin"}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidField))
	})

	t.Run("rejects negative amounts", func(t *testing.T) {
		wf := newTestWorkflow(t)
		require.NoError(t, wf.SelectFile("receipt.pdf", pdfBytes, maxBytes, now))
		amount := int64(-1)
		err := wf.CaptureDetails(Details{RecordType: RecordTypeReceipt, AmountCents: &amount}, now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidField))
	})
}

func TestTransitions(t *testing.T) {
	now := time.Now().UTC()

	prepared := func(t *testing.T) *Workflow {
		wf := newTestWorkflow(t)
		require.NoError(t, wf.SelectFile("receipt.pdf", pdfBytes, maxBytes, now))
		require.NoError(t, wf.CaptureDetails(Details{RecordType: RecordTypeReceipt}, now))
		return wf
	}

	t.Run("full run reaches complete", func(t *testing.T) {
		wf := prepared(t)
		_, _, err := wf.beginUpload(now)
		require.NoError(t, err)
		require.NoError(t, wf.beginVerify(now))
		require.NoError(t, wf.complete(VerificationResult{DocumentType: RecordTypeReceipt, ScoreDelta: 8, ContentHash: "0xabc"}, now))
		rec := wf.Record()
		assert.Equal(t, StateComplete, rec.State)
		assert.Equal(t, 8, rec.Result.ScoreDelta)
		assert.Zero(t, rec.FileSize)
	})

	t.Run("submit requires captured details", func(t *testing.T) {
		wf := newTestWorkflow(t)
		require.NoError(t, wf.SelectFile("receipt.pdf", pdfBytes, maxBytes, now))
		_, _, err := wf.beginUpload(now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
	})

	t.Run("terminal states are immutable", func(t *testing.T) {
		wf := prepared(t)
		_, _, err := wf.beginUpload(now)
		require.NoError(t, err)
		require.NoError(t, wf.beginVerify(now))
		require.NoError(t, wf.complete(VerificationResult{DocumentType: RecordTypeReceipt}, now))

		assert.True(t, dErrors.HasCode(wf.CaptureDetails(Details{RecordType: RecordTypeReceipt}, now), dErrors.CodeInvalidState))
		_, _, err = wf.beginUpload(now)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvalidState))
		assert.True(t, dErrors.HasCode(wf.fail(dErrors.CodeUploadFailed, now), dErrors.CodeInvalidState))
	})

	t.Run("failure is terminal and keeps the code", func(t *testing.T) {
		wf := prepared(t)
		_, _, err := wf.beginUpload(now)
		require.NoError(t, err)
		require.NoError(t, wf.fail(dErrors.CodeUploadFailed, now))
		rec := wf.Record()
		assert.Equal(t, StateFailed, rec.State)
		assert.Equal(t, dErrors.CodeUploadFailed, rec.FailureCode)
		assert.True(t, dErrors.HasCode(wf.reset(now), dErrors.CodeInvalidState))
	})

	t.Run("reset returns an in-flight run to awaiting file", func(t *testing.T) {
		wf := prepared(t)
		_, _, err := wf.beginUpload(now)
		require.NoError(t, err)
		require.NoError(t, wf.reset(now))
		rec := wf.Record()
		assert.Equal(t, StateAwaitingFile, rec.State)
		assert.Empty(t, rec.FileName)
		assert.Nil(t, rec.Details)

		// A fresh file can be selected after a cancel.
		require.NoError(t, wf.SelectFile("retry.pdf", pdfBytes, maxBytes, now))
	})
}
