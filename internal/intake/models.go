// Package intake drives one medical document from file selection through
// verification to a score update. Each workflow instance owns exactly one
// document; terminal workflows are immutable and a new document requires a
// new instance.
package intake

import (
	"strings"
	"time"

	id "healthcred/pkg/domain"
	dErrors "healthcred/pkg/domain-errors"
)

// State is the workflow position. Transitions only move forward except for
// cancellation, which returns to StateAwaitingFile, and failure, which is
// terminal.
type State string

const (
	StateAwaitingFile    State = "awaiting_file"
	StateDetailsCaptured State = "details_captured"
	StateUploading       State = "uploading"
	StateVerifying       State = "verifying"
	StateComplete        State = "complete"
	StateFailed          State = "failed"
)

// Terminal reports whether no further transitions are allowed.
func (s State) Terminal() bool {
	return s == StateComplete || s == StateFailed
}

// FileType is the declared file format of an uploaded document.
type FileType string

const (
	FileTypePDF  FileType = "pdf"
	FileTypeJPG  FileType = "jpg"
	FileTypeJPEG FileType = "jpeg"
	FileTypePNG  FileType = "png"
)

// ParseFileType resolves a file name's extension to a supported type.
func ParseFileType(fileName string) (FileType, error) {
	dot := strings.LastIndex(fileName, ".")
	if dot < 0 || dot == len(fileName)-1 {
		return "", dErrors.New(dErrors.CodeUnsupportedFile, "file name has no extension")
	}
	switch FileType(strings.ToLower(fileName[dot+1:])) {
	case FileTypePDF:
		return FileTypePDF, nil
	case FileTypeJPG:
		return FileTypeJPG, nil
	case FileTypeJPEG:
		return FileTypeJPEG, nil
	case FileTypePNG:
		return FileTypePNG, nil
	default:
		return "", dErrors.Newf(dErrors.CodeUnsupportedFile, "unsupported file type %q", fileName[dot+1:])
	}
}

// sniffFileType checks the magic bytes against the declared type. A file
// whose content does not match its extension is rejected at selection time.
func sniffFileType(data []byte, declared FileType) bool {
	switch declared {
	case FileTypePDF:
		return len(data) >= 5 && string(data[:5]) == "%PDF-"
	case FileTypeJPG, FileTypeJPEG:
		return len(data) >= 3 && data[0] == 0xFF && data[1] == 0xD8 && data[2] == 0xFF
	case FileTypePNG:
		return len(data) >= 4 && data[0] == 0x89 && data[1] == 'P' && data[2] == 'N' && data[3] == 'G'
	default:
		return false
	}
}

// RecordType is the declared medical record category.
type RecordType string

const (
	RecordTypePrescription RecordType = "prescription"
	RecordTypeLabReport    RecordType = "lab-report"
	RecordTypeReceipt      RecordType = "receipt"
	RecordTypeDiagnosis    RecordType = "diagnosis"
	RecordTypeInsurance    RecordType = "insurance-document"
)

// ParseRecordType validates a declared record type.
func ParseRecordType(raw string) (RecordType, error) {
	switch RecordType(strings.TrimSpace(raw)) {
	case RecordTypePrescription:
		return RecordTypePrescription, nil
	case RecordTypeLabReport:
		return RecordTypeLabReport, nil
	case RecordTypeReceipt:
		return RecordTypeReceipt, nil
	case RecordTypeDiagnosis:
		return RecordTypeDiagnosis, nil
	case RecordTypeInsurance:
		return RecordTypeInsurance, nil
	default:
		return "", dErrors.Newf(dErrors.CodeInvalidField, "unknown record type %q", raw)
	}
}

// Document is the in-flight upload. The workflow owns it exclusively and
// discards the raw bytes once a terminal state is reached.
type Document struct {
	ID       id.DocumentID
	FileName string
	FileType FileType
	RawBytes []byte
}

// Details are the user-declared attributes of a document. All fields except
// the record type are optional.
type Details struct {
	RecordType  RecordType `json:"record_type"`
	AmountCents *int64     `json:"amount_cents,omitempty"`
	ServiceDate *time.Time `json:"service_date,omitempty"`
	Provider    string     `json:"provider,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// VerificationResult is produced once per successful workflow run and is
// immutable thereafter. ContentHash references the stored blob, standing in
// for a ledger reference.
type VerificationResult struct {
	DocumentType        RecordType `json:"document_type"`
	VerifiedAmountCents int64      `json:"verified_amount_cents"`
	ScoreDelta          int        `json:"score_delta"`
	ContentHash         string     `json:"content_hash"`
}
