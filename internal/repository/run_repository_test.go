package repository

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testDB(t *testing.T) *RunRepository {
	t.Helper()
	db, err := InitDB(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewRunRepository(db)
}

func TestRunLifecycle(t *testing.T) {
	repo := testDB(t)

	err := repo.Create(&Run{
		ID:         "run-1",
		Kind:       RunKindExport,
		SourceItem: "item-src",
		Directory:  "/tmp/archive",
		Status:     "running",
	})
	require.NoError(t, err)

	run, err := repo.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, RunKindExport, run.Kind)
	assert.Equal(t, "running", run.Status)
	assert.Nil(t, run.CompletedAt)
	assert.False(t, run.StartedAt.IsZero())

	require.NoError(t, repo.Complete("run-1", "completed", 5, 1, 0))

	run, err = repo.GetRun("run-1")
	require.NoError(t, err)
	assert.Equal(t, "completed", run.Status)
	assert.Equal(t, 5, run.SucceededItems)
	assert.Equal(t, 1, run.SkippedItems)
	assert.Equal(t, 0, run.FailedItems)
	require.NotNil(t, run.CompletedAt)
}

func TestGetRunsListsEveryRun(t *testing.T) {
	repo := testDB(t)

	require.NoError(t, repo.Create(&Run{ID: "run-1", Kind: RunKindExport, Status: "running"}))
	require.NoError(t, repo.Create(&Run{ID: "run-2", Kind: RunKindImport, Status: "running"}))

	runs, err := repo.GetRuns()
	require.NoError(t, err)
	assert.Len(t, runs, 2)
}

func TestGetRunUnknownID(t *testing.T) {
	repo := testDB(t)
	_, err := repo.GetRun("nope")
	assert.Error(t, err)
}
