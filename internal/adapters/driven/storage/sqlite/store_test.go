package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/notely-cli/internal/core/domain"
)

// setupTestStore creates a temporary SQLite store for testing.
func setupTestStore(t *testing.T) (*Store, func()) {
	t.Helper()

	tempDir, err := os.MkdirTemp("", "notely-test-*")
	require.NoError(t, err)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NotNil(t, store)

	cleanup := func() {
		assert.NoError(t, store.Close())
		assert.NoError(t, os.RemoveAll(tempDir))
	}

	return store, cleanup
}

// ==================== Store Creation and Initialization Tests ====================

func TestNewStore_ErrorHandling(t *testing.T) {
	_, err := NewStore("/invalid\x00path")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "creating data directory")
}

func TestNewStore_Success(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "notely-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	store, err := NewStore(tempDir)
	require.NoError(t, err)
	defer store.Close()

	dbPath := filepath.Join(tempDir, "history.db")
	assert.Equal(t, dbPath, store.Path())
	assert.FileExists(t, dbPath)
	assert.NoError(t, store.db.Ping())
}

func TestNewStore_RecordsMigrationVersion(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	version, err := store.SchemaVersion()
	require.NoError(t, err)
	assert.Equal(t, 1, version)
}

func TestNewStore_ReopenIsIdempotent(t *testing.T) {
	tempDir, err := os.MkdirTemp("", "notely-test-*")
	require.NoError(t, err)
	defer os.RemoveAll(tempDir)

	first, err := NewStore(tempDir)
	require.NoError(t, err)
	require.NoError(t, first.UploadHistoryStore().Record(context.Background(), domain.UploadRecord{
		BatchID: "b1", Path: "/notes/a.md", Outcome: domain.OutcomeIndexed, Attempts: 1,
	}))
	require.NoError(t, first.Close())

	second, err := NewStore(tempDir)
	require.NoError(t, err)
	defer second.Close()

	records, err := second.UploadHistoryStore().List(context.Background(), 0)
	require.NoError(t, err)
	assert.Len(t, records, 1)
}

// ==================== Upload History Tests ====================

func TestUploadHistoryStore_RecordAndList(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	history := store.UploadHistoryStore()
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, history.Record(ctx, domain.UploadRecord{
		BatchID: "b1", Path: "/notes/a.md", Outcome: domain.OutcomeIndexed,
		FileID: "f1", Attempts: 1, RecordedAt: base,
	}))
	require.NoError(t, history.Record(ctx, domain.UploadRecord{
		BatchID: "b1", Path: "/notes/b.pdf", Outcome: domain.OutcomeIndexedDegraded,
		Reason: domain.DegradedDateFormat, Message: "b.pdf uploaded, search may be limited",
		Attempts: 2, RecordedAt: base.Add(time.Second),
	}))

	records, err := history.List(ctx, 0)
	require.NoError(t, err)
	require.Len(t, records, 2)

	newest := records[0]
	assert.Equal(t, "/notes/b.pdf", newest.Path)
	assert.Equal(t, domain.OutcomeIndexedDegraded, newest.Outcome)
	assert.Equal(t, domain.DegradedDateFormat, newest.Reason)
	assert.Equal(t, 2, newest.Attempts)
	assert.Empty(t, newest.FileID)
	assert.True(t, newest.RecordedAt.Equal(base.Add(time.Second)))
	assert.NotZero(t, newest.ID)

	assert.Equal(t, "f1", records[1].FileID)
	assert.Equal(t, domain.DegradedNone, records[1].Reason)
}

func TestUploadHistoryStore_ListLimit(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	history := store.UploadHistoryStore()
	ctx := context.Background()

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, history.Record(ctx, domain.UploadRecord{
			BatchID: "b1", Path: filepath.Join("/notes", string(rune('a'+i))+".md"),
			Outcome: domain.OutcomeUploaded, Attempts: 1, RecordedAt: base.Add(time.Duration(i) * time.Minute),
		}))
	}

	records, err := history.List(ctx, 2)
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "/notes/e.md", records[0].Path)
	assert.Equal(t, "/notes/d.md", records[1].Path)

	_, err = history.List(ctx, -1)
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUploadHistoryStore_RecordDefaultsTime(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	history := store.UploadHistoryStore()
	ctx := context.Background()

	before := time.Now().Add(-time.Second)
	require.NoError(t, history.Record(ctx, domain.UploadRecord{
		BatchID: "b1", Path: "/notes/a.md", Outcome: domain.OutcomeFailed, Attempts: 3,
	}))

	records, err := history.List(ctx, 1)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.True(t, records[0].RecordedAt.After(before))
}

func TestUploadHistoryStore_RecordRejectsIncomplete(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	history := store.UploadHistoryStore()

	err := history.Record(context.Background(), domain.UploadRecord{Path: "/notes/a.md"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	err = history.Record(context.Background(), domain.UploadRecord{Outcome: domain.OutcomeIndexed})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUploadHistoryStore_Clear(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()
	history := store.UploadHistoryStore()
	ctx := context.Background()

	require.NoError(t, history.Record(ctx, domain.UploadRecord{
		BatchID: "b1", Path: "/notes/a.md", Outcome: domain.OutcomeIndexed, Attempts: 1,
	}))
	require.NoError(t, history.Clear(ctx))

	records, err := history.List(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestUploadHistoryStore_CanceledContext(t *testing.T) {
	store, cleanup := setupTestStore(t)
	defer cleanup()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := store.UploadHistoryStore().List(ctx, 0)
	assert.Error(t, err)
}
