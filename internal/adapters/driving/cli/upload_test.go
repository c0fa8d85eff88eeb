package cli

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
	"github.com/custodia-labs/notely-cli/internal/core/ports/driving"
)

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("note"), 0o644))
}

func TestUpload_ReportsEachFile(t *testing.T) {
	mocks, cleanup := installMocks()
	defer cleanup()
	mocks.upload.UploadBatchFunc = func(_ context.Context, paths []string, _ driving.ProgressFunc) (*domain.BatchSummary, error) {
		summary := &domain.BatchSummary{}
		summary.Add(domain.FileOutcome{Path: paths[0], Outcome: domain.OutcomeIndexed})
		summary.Add(domain.FileOutcome{Path: paths[1], Outcome: domain.OutcomeSkippedDuplicate})
		summary.Add(domain.FileOutcome{Path: paths[2], Outcome: domain.OutcomeFailed, Err: errors.New("server error")})
		return summary, nil
	}

	out, err := executeCommand("upload", "a.md", "b.md", "c.md")

	require.NoError(t, err)
	assert.Equal(t, [][]string{{"a.md", "b.md", "c.md"}}, mocks.upload.batches)
	assert.Contains(t, out, "a.md uploaded and indexed")
	assert.Contains(t, out, "b.md skipped (already uploaded)")
	assert.Contains(t, out, "c.md failed: server error")
	assert.Contains(t, out, "1 uploaded, 1 skipped, 1 failed")
}

func TestUpload_StoppedBatchStillReports(t *testing.T) {
	mocks, cleanup := installMocks()
	defer cleanup()
	mocks.upload.UploadBatchFunc = func(_ context.Context, paths []string, _ driving.ProgressFunc) (*domain.BatchSummary, error) {
		summary := &domain.BatchSummary{}
		summary.Add(domain.FileOutcome{Path: paths[0], Outcome: domain.OutcomeIndexed})
		summary.Add(domain.FileOutcome{Path: paths[1], Outcome: domain.OutcomeIndexed})
		return summary, domain.ErrSessionExpired
	}

	out, err := executeCommand("upload", "a.md", "b.md")

	assert.ErrorIs(t, err, domain.ErrSessionExpired)
	assert.Contains(t, err.Error(), "upload stopped")
	assert.Contains(t, out, "2 uploaded, 0 skipped, 0 failed")
}

func TestUpload_SingleFileHasNoSummary(t *testing.T) {
	mocks, cleanup := installMocks()
	defer cleanup()
	mocks.upload.UploadBatchFunc = func(_ context.Context, paths []string, _ driving.ProgressFunc) (*domain.BatchSummary, error) {
		summary := &domain.BatchSummary{}
		summary.Add(domain.FileOutcome{Path: paths[0], Outcome: domain.OutcomeIndexed})
		return summary, nil
	}

	out, err := executeCommand("upload", "a.md")

	require.NoError(t, err)
	assert.Contains(t, out, "a.md uploaded and indexed")
	assert.NotContains(t, out, "1 uploaded, 0 skipped, 0 failed")
}

func TestUpload_RequiresPath(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	_, err := executeCommand("upload")

	assert.Error(t, err)
}

func TestUpload_RecursiveExpandsDirectories(t *testing.T) {
	mocks, cleanup := installMocks()
	defer cleanup()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "a.md"))
	writeFile(t, filepath.Join(dir, "sub", "b.txt"))
	writeFile(t, filepath.Join(dir, "image.png"))
	writeFile(t, filepath.Join(dir, ".hidden", "c.md"))

	_, err := executeCommand("upload", "-r", dir)

	require.NoError(t, err)
	require.Len(t, mocks.upload.batches, 1)
	assert.Equal(t, []string{
		filepath.Join(dir, "a.md"),
		filepath.Join(dir, "sub", "b.txt"),
	}, mocks.upload.batches[0])
}

func TestUpload_RecursiveNothingFound(t *testing.T) {
	mocks, cleanup := installMocks()
	defer cleanup()

	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "image.png"))

	out, err := executeCommand("upload", "--recursive", dir)

	require.NoError(t, err)
	assert.Empty(t, mocks.upload.batches)
	assert.Contains(t, out, "No supported files found.")
}

func TestExpandPaths_PassesThroughWithoutRecursive(t *testing.T) {
	dir := t.TempDir()

	paths, err := expandPaths([]string{dir, "missing.md"}, false)

	require.NoError(t, err)
	assert.Equal(t, []string{dir, "missing.md"}, paths)
}

func TestWatch_UploadsChangedFiles(t *testing.T) {
	mocks, cleanup := installMocks()
	defer cleanup()
	mocks.watcher.paths = []string{"/notes/a.md", "/notes/b.md"}

	out, err := executeCommand("watch", "/notes")

	require.NoError(t, err)
	assert.Equal(t, "/notes", mocks.watcher.root)
	assert.True(t, mocks.watcher.closed)
	assert.Equal(t, [][]string{{"/notes/a.md"}, {"/notes/b.md"}}, mocks.upload.batches)
	assert.Contains(t, out, "Watching /notes")
	assert.Contains(t, out, "a.md uploaded and indexed")
	assert.NotContains(t, out, "uploaded, 0 skipped")
	assert.Contains(t, out, "Stopped watching.")
}

func TestWatch_StopsOnAuthFailure(t *testing.T) {
	mocks, cleanup := installMocks()
	defer cleanup()
	mocks.watcher.paths = []string{"/notes/a.md", "/notes/b.md"}
	mocks.upload.UploadBatchFunc = func(context.Context, []string, driving.ProgressFunc) (*domain.BatchSummary, error) {
		return &domain.BatchSummary{}, domain.ErrUnauthenticated
	}

	_, err := executeCommand("watch", "/notes")

	assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Len(t, mocks.upload.batches, 1)
}
