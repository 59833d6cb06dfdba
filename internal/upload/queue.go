package upload

import (
	"errors"
	"time"

	"github.com/eventsphere/api/internal/models"
	"gorm.io/gorm"
)

// Queue is the durable upload job queue, backed by the upload_jobs table.
// Claims are guarded updates: whoever flips the row to running under a fresh
// lease owns the job. A job whose lease expired counts as runnable again, so
// a crashed worker's job is reclaimed by the next claimer or the sweeper.
type Queue struct {
	db    *gorm.DB
	lease time.Duration
}

func NewQueue(db *gorm.DB, lease time.Duration) *Queue {
	return &Queue{db: db, lease: lease}
}

func (q *Queue) Enqueue(tx *gorm.DB, job *models.UploadJob) error {
	job.State = models.JobStateQueued
	if job.NextRetryAt.IsZero() {
		job.NextRetryAt = time.Now()
	}
	return tx.Create(job).Error
}

// ClaimNext picks the oldest runnable job and marks it running. Returns nil
// when nothing is runnable or another worker won the claim.
func (q *Queue) ClaimNext() (*models.UploadJob, error) {
	now := time.Now()

	var job models.UploadJob
	err := q.db.
		Where("(state = ? AND next_retry_at <= ?) OR (state = ? AND lease_expires_at < ?)",
			models.JobStateQueued, now, models.JobStateRunning, now).
		Order("id").
		First(&job).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}

	expires := now.Add(q.lease)
	res := q.db.Model(&models.UploadJob{}).
		Where("id = ? AND state = ? AND attempts = ?", job.ID, job.State, job.Attempts).
		Updates(map[string]interface{}{
			"state":            models.JobStateRunning,
			"attempts":         job.Attempts + 1,
			"lease_expires_at": expires,
		})
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		// lost the race to another worker
		return nil, nil
	}

	job.State = models.JobStateRunning
	job.Attempts++
	job.LeaseExpiresAt = &expires
	return &job, nil
}

// Requeue returns a job to the queue after a transient failure.
func (q *Queue) Requeue(job *models.UploadJob, delay time.Duration) error {
	return q.db.Model(&models.UploadJob{}).
		Where("id = ? AND state = ?", job.ID, models.JobStateRunning).
		Updates(map[string]interface{}{
			"state":            models.JobStateQueued,
			"next_retry_at":    time.Now().Add(delay),
			"lease_expires_at": nil,
		}).Error
}

// Finish destroys a done job. The MediaAsset carries the terminal state.
func (q *Queue) Finish(job *models.UploadJob) error {
	return q.db.Delete(&models.UploadJob{}, job.ID).Error
}

// SweepExpiredLeases requeues jobs abandoned by crashed workers. The claim
// path would pick them up eventually; the sweeper keeps next_retry_at honest
// and makes the recovery visible in one place.
func (q *Queue) SweepExpiredLeases() (int64, error) {
	res := q.db.Model(&models.UploadJob{}).
		Where("state = ? AND lease_expires_at < ?", models.JobStateRunning, time.Now()).
		Updates(map[string]interface{}{
			"state":            models.JobStateQueued,
			"next_retry_at":    time.Now(),
			"lease_expires_at": nil,
		})
	return res.RowsAffected, res.Error
}

// Depth reports how many jobs are waiting or running, for the health endpoint.
func (q *Queue) Depth() (int64, error) {
	var n int64
	err := q.db.Model(&models.UploadJob{}).
		Where("state IN ?", []models.JobState{models.JobStateQueued, models.JobStateRunning}).
		Count(&n).Error
	return n, err
}
