package domain

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// MaxUploadSize is the largest file the upload endpoint accepts (10 MiB).
const MaxUploadSize int64 = 10 << 20

// AllowedUploadExtensions lists the file types the notes service indexes.
var AllowedUploadExtensions = []string{".txt", ".pdf", ".md", ".doc", ".docx"}

// IsAllowedUploadExtension reports whether path has an accepted extension.
func IsAllowedUploadExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, allowed := range AllowedUploadExtensions {
		if ext == allowed {
			return true
		}
	}
	return false
}

// ValidateUpload checks a file's name and size before it is sent.
func ValidateUpload(name string, size int64) error {
	if !IsAllowedUploadExtension(name) {
		return &ValidationError{
			File:   name,
			Reason: fmt.Sprintf("unsupported file type (allowed: %s)", strings.Join(AllowedUploadExtensions, ", ")),
		}
	}
	if size > MaxUploadSize {
		return &ValidationError{
			File:   name,
			Reason: fmt.Sprintf("file too large (%d bytes, max %d)", size, MaxUploadSize),
		}
	}
	return nil
}

// UploadStatus is the state of the single upload progress slot.
type UploadStatus string

const (
	UploadIdle       UploadStatus = "idle"
	UploadUploading  UploadStatus = "uploading"
	UploadProcessing UploadStatus = "processing"
	UploadComplete   UploadStatus = "complete"
	UploadError      UploadStatus = "error"
)

// UploadProgress is the ephemeral progress of an upload batch.
type UploadProgress struct {
	CurrentFile      string
	CurrentFileIndex int
	TotalFiles       int
	Status           UploadStatus
}

// IdleUploadProgress is the reset state of the progress slot.
func IdleUploadProgress() UploadProgress {
	return UploadProgress{Status: UploadIdle}
}

// EmbeddingStatus is the server-reported outcome of indexing a file.
type EmbeddingStatus string

// Canonical embedding statuses.
const (
	EmbeddingCompleted        EmbeddingStatus = "completed"
	EmbeddingSkippedDuplicate EmbeddingStatus = "skipped_duplicate"
	EmbeddingSkippedEmpty     EmbeddingStatus = "skipped_empty"
	EmbeddingErrorDateFormat  EmbeddingStatus = "error_date_format"
	EmbeddingErrorDecode      EmbeddingStatus = "error_decode"

	// EmbeddingErrorLegacy is the older generic indexing failure.
	// It is read as degraded indexing with an unknown reason.
	EmbeddingErrorLegacy EmbeddingStatus = "error"
)

// FileUploadResult is the server response for one uploaded file.
type FileUploadResult struct {
	Status          string          `json:"status"`
	EmbeddingStatus EmbeddingStatus `json:"embedding_status,omitempty"`
	FileID          string          `json:"file_id,omitempty"`
	Filename        string          `json:"filename,omitempty"`
	UploadTime      string          `json:"upload_time,omitempty"`
}

// UploadOutcome is the user-facing classification of one file.
type UploadOutcome string

const (
	OutcomeUploaded         UploadOutcome = "uploaded"
	OutcomeSkippedDuplicate UploadOutcome = "skipped_duplicate"
	OutcomeSavedEmpty       UploadOutcome = "saved_empty"
	OutcomeIndexed          UploadOutcome = "indexed"
	OutcomeIndexedDegraded  UploadOutcome = "indexed_with_degraded_search"
	OutcomeFailed           UploadOutcome = "failed"
)

// DegradedReason explains why indexing was degraded.
type DegradedReason string

const (
	DegradedNone       DegradedReason = ""
	DegradedDateFormat DegradedReason = "date_format"
	DegradedDecode     DegradedReason = "decode"
	DegradedUnknown    DegradedReason = "unknown"
)

// ClassifyUpload maps a server result onto a user-facing outcome.
func ClassifyUpload(res FileUploadResult) (UploadOutcome, DegradedReason) {
	switch res.EmbeddingStatus {
	case EmbeddingSkippedDuplicate:
		return OutcomeSkippedDuplicate, DegradedNone
	case EmbeddingSkippedEmpty:
		return OutcomeSavedEmpty, DegradedNone
	case EmbeddingCompleted:
		return OutcomeIndexed, DegradedNone
	case EmbeddingErrorDateFormat:
		return OutcomeIndexedDegraded, DegradedDateFormat
	case EmbeddingErrorDecode:
		return OutcomeIndexedDegraded, DegradedDecode
	case EmbeddingErrorLegacy:
		return OutcomeIndexedDegraded, DegradedUnknown
	}
	if strings.EqualFold(res.Status, "skipped") {
		return OutcomeSkippedDuplicate, DegradedNone
	}
	return OutcomeUploaded, DegradedNone
}

// FileOutcome is the classified result of one file in a batch.
type FileOutcome struct {
	Path     string
	Outcome  UploadOutcome
	Reason   DegradedReason
	Result   *FileUploadResult
	Attempts int
	Err      error
}

// Message returns a one-line description for display.
func (o FileOutcome) Message() string {
	name := filepath.Base(o.Path)
	switch o.Outcome {
	case OutcomeSkippedDuplicate:
		return fmt.Sprintf("%s skipped (already uploaded)", name)
	case OutcomeSavedEmpty:
		return fmt.Sprintf("%s saved, but no text could be extracted", name)
	case OutcomeIndexed:
		return fmt.Sprintf("%s uploaded and indexed", name)
	case OutcomeIndexedDegraded:
		switch o.Reason {
		case DegradedDateFormat:
			return fmt.Sprintf("%s uploaded, search may be limited (date format issue)", name)
		case DegradedDecode:
			return fmt.Sprintf("%s uploaded, search may be limited (could not decode content)", name)
		default:
			return fmt.Sprintf("%s uploaded, search may be limited", name)
		}
	case OutcomeFailed:
		if o.Err != nil {
			return fmt.Sprintf("%s failed: %v", name, o.Err)
		}
		return fmt.Sprintf("%s failed", name)
	default:
		return fmt.Sprintf("%s uploaded", name)
	}
}

// BatchSummary counts the outcomes of an upload batch.
type BatchSummary struct {
	Uploaded int
	Skipped  int
	Failed   int
	Files    []FileOutcome
}

// Add records a file outcome.
func (b *BatchSummary) Add(o FileOutcome) {
	b.Files = append(b.Files, o)
	switch o.Outcome {
	case OutcomeSkippedDuplicate:
		b.Skipped++
	case OutcomeFailed:
		b.Failed++
	default:
		b.Uploaded++
	}
}

// Total returns the number of files recorded.
func (b *BatchSummary) Total() int {
	return len(b.Files)
}

// String returns the one-line summary, e.g. "2 uploaded, 1 skipped, 0 failed".
func (b *BatchSummary) String() string {
	return fmt.Sprintf("%d uploaded, %d skipped, %d failed", b.Uploaded, b.Skipped, b.Failed)
}

// FileRecord is a stored file as listed by the notes service.
type FileRecord struct {
	ID        string    `json:"id"`
	Filename  string    `json:"filename"`
	Title     string    `json:"title,omitempty"`
	Status    string    `json:"status,omitempty"`
	CreatedAt Timestamp `json:"created_at"`
	UpdatedAt Timestamp `json:"updated_at"`
}

// UploadRecord is a persisted entry in the local upload history.
type UploadRecord struct {
	ID         int64
	BatchID    string
	Path       string
	Outcome    UploadOutcome
	Reason     DegradedReason
	Message    string
	FileID     string
	Attempts   int
	RecordedAt time.Time
}
