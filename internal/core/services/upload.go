package services

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driven"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
	"github.com/custodia-labs/notely-cli/internal/logger"
)

// Ensure UploadService implements the interface.
var _ driving.UploadService = (*UploadService)(nil)

const (
	// DefaultUploadRetries is the number of retries after a transient failure.
	DefaultUploadRetries = 3

	// DefaultRetryBackoff is multiplied by the attempt number between retries.
	DefaultRetryBackoff = time.Second

	// DefaultUploadPacing separates consecutive files in a batch.
	DefaultUploadPacing = 300 * time.Millisecond
)

// UploadService uploads files one at a time with bounded retries.
type UploadService struct {
	api     driven.NotesAPI
	history driven.UploadHistoryStore

	retries int
	backoff time.Duration
	pacing  time.Duration

	// Replaced in tests.
	stat     func(string) (os.FileInfo, error)
	readFile func(string) ([]byte, error)
	sleep    func(context.Context, time.Duration) error

	mu        sync.Mutex
	progress  domain.UploadProgress
	fileCount int
}

// NewUploadService creates an upload service. history may be nil.
func NewUploadService(api driven.NotesAPI, history driven.UploadHistoryStore) *UploadService {
	return &UploadService{
		api:      api,
		history:  history,
		retries:  DefaultUploadRetries,
		backoff:  DefaultRetryBackoff,
		pacing:   DefaultUploadPacing,
		stat:     os.Stat,
		readFile: os.ReadFile,
		sleep:    sleepContext,
		progress: domain.IdleUploadProgress(),
	}
}

// Progress returns the current progress slot.
func (s *UploadService) Progress() domain.UploadProgress {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.progress
}

// FileCount returns the file count last reported by the notes service.
func (s *UploadService) FileCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.fileCount
}

// UploadBatch uploads paths in order. Per-file failures are recorded in
// the summary and the batch continues; an authentication failure or
// cancellation stops it and is returned with the summary so far.
func (s *UploadService) UploadBatch(
	ctx context.Context, paths []string, onProgress driving.ProgressFunc,
) (*domain.BatchSummary, error) {
	summary := &domain.BatchSummary{}
	if len(paths) == 0 {
		return summary, nil
	}
	if onProgress == nil {
		onProgress = func(domain.UploadProgress) {}
	}

	batchID := uuid.NewString()
	logger.Section("Upload")
	logger.Debug("Batch %s: %d files", batchID, len(paths))

	report := func(p domain.UploadProgress) {
		s.mu.Lock()
		s.progress = p
		s.mu.Unlock()
		onProgress(p)
	}
	defer report(domain.IdleUploadProgress())

	report(domain.UploadProgress{TotalFiles: len(paths), Status: domain.UploadUploading})

	for i, path := range paths {
		progress := domain.UploadProgress{
			CurrentFile:      filepath.Base(path),
			CurrentFileIndex: i,
			TotalFiles:       len(paths),
			Status:           domain.UploadUploading,
		}
		report(progress)

		outcome, err := s.uploadFile(ctx, path, func(status domain.UploadStatus) {
			progress.Status = status
			report(progress)
		})
		summary.Add(outcome)
		s.record(ctx, batchID, outcome)
		logger.Debug("%s", outcome.Message())

		if outcome.Outcome == domain.OutcomeFailed {
			progress.Status = domain.UploadError
		} else {
			progress.Status = domain.UploadComplete
		}
		report(progress)

		if err != nil {
			logger.Warn("upload: batch %s stopped after %d of %d files: %v", batchID, i+1, len(paths), err)
			return summary, err
		}

		s.refreshFileCount(ctx)

		if i < len(paths)-1 {
			if err := s.sleep(ctx, s.pacing); err != nil {
				return summary, err
			}
		}
	}

	logger.Debug("Batch %s: %s", batchID, summary)
	return summary, nil
}

// uploadFile validates, reads and uploads one file. The returned error is
// non-nil only when the whole batch must stop.
func (s *UploadService) uploadFile(
	ctx context.Context, path string, setStatus func(domain.UploadStatus),
) (domain.FileOutcome, error) {
	outcome := domain.FileOutcome{Path: path, Outcome: domain.OutcomeFailed}
	name := filepath.Base(path)

	info, err := s.stat(path)
	if err != nil {
		outcome.Err = fmt.Errorf("reading %s: %w", name, err)
		return outcome, nil
	}
	if info.IsDir() {
		outcome.Err = &domain.ValidationError{File: name, Reason: "is a directory"}
		return outcome, nil
	}
	if err := domain.ValidateUpload(name, info.Size()); err != nil {
		outcome.Err = err
		return outcome, nil
	}

	data, err := s.readFile(path)
	if err != nil {
		outcome.Err = fmt.Errorf("reading %s: %w", name, err)
		return outcome, nil
	}

	for attempt := 1; ; attempt++ {
		outcome.Attempts = attempt

		res, err := s.api.UploadFile(ctx, name, data)
		if err == nil {
			setStatus(domain.UploadProcessing)
			outcome.Err = nil
			outcome.Result = res
			outcome.Outcome, outcome.Reason = domain.ClassifyUpload(*res)
			return outcome, nil
		}

		outcome.Err = err
		if abortsBatch(err) {
			return outcome, err
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			return outcome, ctxErr
		}
		if !domain.IsTransientUpload(err) || attempt > s.retries {
			logger.Warn("upload: %s failed after %d attempt(s): %v", name, attempt, err)
			return outcome, nil
		}

		wait := time.Duration(attempt) * s.backoff
		logger.Debug("upload: %s attempt %d failed (%v), retrying in %s", name, attempt, err, wait)
		if err := s.sleep(ctx, wait); err != nil {
			return outcome, err
		}
	}
}

// abortsBatch reports whether err ends the whole batch.
func abortsBatch(err error) bool {
	return errors.Is(err, domain.ErrUnauthenticated) || errors.Is(err, domain.ErrSessionExpired)
}

func (s *UploadService) refreshFileCount(ctx context.Context) {
	count, err := s.api.FileCount(ctx)
	if err != nil {
		logger.Debug("upload: file count refresh failed: %v", err)
		return
	}
	s.mu.Lock()
	s.fileCount = count
	s.mu.Unlock()
}

func (s *UploadService) record(ctx context.Context, batchID string, o domain.FileOutcome) {
	if s.history == nil {
		return
	}
	rec := domain.UploadRecord{
		BatchID:  batchID,
		Path:     o.Path,
		Outcome:  o.Outcome,
		Reason:   o.Reason,
		Message:  o.Message(),
		Attempts: o.Attempts,
	}
	if o.Result != nil {
		rec.FileID = o.Result.FileID
	}
	// Record even when ctx was cancelled mid-batch.
	if err := s.history.Record(context.WithoutCancel(ctx), rec); err != nil {
		logger.Warn("upload: failed to record history for %s: %v", o.Path, err)
	}
}

// sleepContext waits for d or until ctx is done.
func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
