package upload

import (
	"testing"
	"time"

	"github.com/eventsphere/api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func enqueueJob(t *testing.T, q *Queue, assetID string) *models.UploadJob {
	job := &models.UploadJob{
		AssetID:     assetID,
		MaxAttempts: 3,
		ContentType: "image/png",
		Data:        []byte("data"),
	}
	require.NoError(t, q.Enqueue(q.db, job))
	return job
}

func TestQueueClaimOrder(t *testing.T) {
	db := newTestDB(t)
	q := NewQueue(db, 5*time.Second)

	first := enqueueJob(t, q, "aaaaaaaa-0000-0000-0000-000000000001")
	second := enqueueJob(t, q, "aaaaaaaa-0000-0000-0000-000000000002")

	claimed, err := q.ClaimNext()
	require.NoError(t, err)
	require.NotNil(t, claimed)
	assert.Equal(t, first.ID, claimed.ID)
	assert.Equal(t, models.JobStateRunning, claimed.State)
	assert.Equal(t, 1, claimed.Attempts)
	assert.NotNil(t, claimed.LeaseExpiresAt)

	claimed2, err := q.ClaimNext()
	require.NoError(t, err)
	require.NotNil(t, claimed2)
	assert.Equal(t, second.ID, claimed2.ID)

	// both running under live leases, nothing left to claim
	claimed3, err := q.ClaimNext()
	require.NoError(t, err)
	assert.Nil(t, claimed3)
}

func TestQueueRequeueAndFinish(t *testing.T) {
	db := newTestDB(t)
	q := NewQueue(db, 5*time.Second)

	enqueueJob(t, q, "aaaaaaaa-0000-0000-0000-000000000001")

	claimed, err := q.ClaimNext()
	require.NoError(t, err)
	require.NotNil(t, claimed)

	require.NoError(t, q.Requeue(claimed, 0))

	var row models.UploadJob
	require.NoError(t, db.First(&row, claimed.ID).Error)
	assert.Equal(t, models.JobStateQueued, row.State)
	assert.Nil(t, row.LeaseExpiresAt)
	assert.Equal(t, 1, row.Attempts)

	reclaimed, err := q.ClaimNext()
	require.NoError(t, err)
	require.NotNil(t, reclaimed)
	assert.Equal(t, claimed.ID, reclaimed.ID)
	assert.Equal(t, 2, reclaimed.Attempts)

	require.NoError(t, q.Finish(reclaimed))

	var count int64
	db.Model(&models.UploadJob{}).Count(&count)
	assert.Equal(t, int64(0), count)
}

func TestQueueRequeueDelayHoldsJobBack(t *testing.T) {
	db := newTestDB(t)
	q := NewQueue(db, 5*time.Second)

	enqueueJob(t, q, "aaaaaaaa-0000-0000-0000-000000000001")

	claimed, err := q.ClaimNext()
	require.NoError(t, err)
	require.NotNil(t, claimed)

	require.NoError(t, q.Requeue(claimed, time.Hour))

	got, err := q.ClaimNext()
	require.NoError(t, err)
	assert.Nil(t, got, "job with a future next_retry_at must not be claimable")
}

func TestQueueExpiredLeaseIsClaimable(t *testing.T) {
	db := newTestDB(t)
	q := NewQueue(db, time.Millisecond)

	enqueueJob(t, q, "aaaaaaaa-0000-0000-0000-000000000001")

	claimed, err := q.ClaimNext()
	require.NoError(t, err)
	require.NotNil(t, claimed)

	time.Sleep(5 * time.Millisecond)

	// the lease ran out, another worker may take over
	reclaimed, err := q.ClaimNext()
	require.NoError(t, err)
	require.NotNil(t, reclaimed)
	assert.Equal(t, claimed.ID, reclaimed.ID)
	assert.Equal(t, 2, reclaimed.Attempts)
}

func TestSweepExpiredLeases(t *testing.T) {
	db := newTestDB(t)
	q := NewQueue(db, time.Millisecond)

	enqueueJob(t, q, "aaaaaaaa-0000-0000-0000-000000000001")

	claimed, err := q.ClaimNext()
	require.NoError(t, err)
	require.NotNil(t, claimed)

	time.Sleep(5 * time.Millisecond)

	swept, err := q.SweepExpiredLeases()
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	var row models.UploadJob
	require.NoError(t, db.First(&row, claimed.ID).Error)
	assert.Equal(t, models.JobStateQueued, row.State)
	assert.Nil(t, row.LeaseExpiresAt)

	// nothing left to sweep
	swept, err = q.SweepExpiredLeases()
	require.NoError(t, err)
	assert.Equal(t, int64(0), swept)
}

func TestQueueDepth(t *testing.T) {
	db := newTestDB(t)
	q := NewQueue(db, 5*time.Second)

	depth, err := q.Depth()
	require.NoError(t, err)
	assert.Equal(t, int64(0), depth)

	enqueueJob(t, q, "aaaaaaaa-0000-0000-0000-000000000001")
	enqueueJob(t, q, "aaaaaaaa-0000-0000-0000-000000000002")

	claimed, err := q.ClaimNext()
	require.NoError(t, err)
	require.NotNil(t, claimed)

	// running jobs still count until finished
	depth, err = q.Depth()
	require.NoError(t, err)
	assert.Equal(t, int64(2), depth)

	require.NoError(t, q.Finish(claimed))

	depth, err = q.Depth()
	require.NoError(t, err)
	assert.Equal(t, int64(1), depth)
}
