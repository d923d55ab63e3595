package cache

import (
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanupJobName(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())
	assert.Equal(t, "cache_cleanup", job.Name())
}

func TestCleanupJobRun(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())

	now := time.Now()
	insertExpiredAndFresh(t, db, "forecast:1", now.Add(-time.Hour).Unix(), now.Add(time.Hour).Unix())
	insertExpiredAndFresh(t, db, "forecast:2", now.Add(-time.Hour).Unix(), now.Add(time.Hour).Unix())
	insertExpiredAndFresh(t, db, "actions:1", now.Add(-time.Hour).Unix(), now.Add(time.Hour).Unix())

	var countBefore int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM cache_entries").Scan(&countBefore))
	assert.Equal(t, 6, countBefore)

	require.NoError(t, job.Run())

	var countAfter int
	require.NoError(t, db.QueryRow("SELECT COUNT(*) FROM cache_entries").Scan(&countAfter))
	assert.Equal(t, 3, countAfter)
}

func TestCleanupJobRunEmpty(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	job := NewCleanupJob(NewRepository(db), zerolog.Nop())
	require.NoError(t, job.Run())
}

func TestCleanupJobRunClosedDB(t *testing.T) {
	db := setupTestDB(t)
	job := NewCleanupJob(NewRepository(db), zerolog.Nop())
	require.NoError(t, db.Close())

	assert.Error(t, job.Run())
}
