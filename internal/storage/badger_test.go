package storage

import (
	"context"
	"os"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xvidbot/internal/domain"
)

// setupTestDB creates a BadgerDB repository for testing.
// An empty path gives an in-memory instance.
func setupTestDB(t *testing.T, path string) *BadgerRepository {
	t.Helper()

	testLogger := logrus.New()
	testLogger.SetOutput(os.Stderr)
	testLogger.SetLevel(logrus.ErrorLevel)

	repo, err := NewBadgerRepository(path, testLogger)
	require.NoError(t, err, "Failed to create test BadgerDB repository")
	return repo
}

func TestBadgerRepository_DefaultQuality(t *testing.T) {
	repo := setupTestDB(t, "")
	defer func() { assert.NoError(t, repo.Close()) }()

	q, err := repo.GetQuality(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, domain.QualityBest, q, "unset preference should read as best")
}

func TestBadgerRepository_SetAndGetQuality(t *testing.T) {
	repo := setupTestDB(t, "")
	defer func() { assert.NoError(t, repo.Close()) }()

	ctx := context.Background()
	require.NoError(t, repo.SetQuality(ctx, 1, domain.QualityLow))
	require.NoError(t, repo.SetQuality(ctx, 2, domain.QualityMedium))

	q1, err := repo.GetQuality(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.QualityLow, q1)

	q2, err := repo.GetQuality(ctx, 2)
	require.NoError(t, err)
	assert.Equal(t, domain.QualityMedium, q2)

	// Overwrite.
	require.NoError(t, repo.SetQuality(ctx, 1, domain.QualityBest))
	q1, err = repo.GetQuality(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, domain.QualityBest, q1)
}

func TestBadgerRepository_RejectsInvalidQuality(t *testing.T) {
	repo := setupTestDB(t, "")
	defer func() { assert.NoError(t, repo.Close()) }()

	err := repo.SetQuality(context.Background(), 1, domain.Quality("ultra"))
	assert.Error(t, err)
}

func TestBadgerRepository_OnDiskSurvivesReopen(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	repo := setupTestDB(t, dir)
	require.NoError(t, repo.SetQuality(ctx, 7, domain.QualityMedium))
	require.NoError(t, repo.Close())

	reopened := setupTestDB(t, dir)
	defer func() { assert.NoError(t, reopened.Close()) }()

	q, err := reopened.GetQuality(ctx, 7)
	require.NoError(t, err)
	assert.Equal(t, domain.QualityMedium, q)
}
