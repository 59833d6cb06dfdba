package upload

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/eventsphere/api/internal/cdn"
	"github.com/eventsphere/api/internal/models"
	"gorm.io/gorm"
)

// Pool runs a fixed number of workers draining the upload queue. Pool size is
// a configuration constant; throughput is bounded by the CDN, not by us.
type Pool struct {
	db        *gorm.DB
	queue     *Queue
	cdn       cdn.Client
	rec       *Reconciler
	size      int
	poll      time.Duration
	retryBase time.Duration
}

func NewPool(db *gorm.DB, queue *Queue, client cdn.Client, rec *Reconciler, size int) *Pool {
	if size < 1 {
		size = 1
	}
	return &Pool{
		db:        db,
		queue:     queue,
		cdn:       client,
		rec:       rec,
		size:      size,
		poll:      250 * time.Millisecond,
		retryBase: 2 * time.Second,
	}
}

func (p *Pool) Start(ctx context.Context) {
	for i := 0; i < p.size; i++ {
		go p.run(ctx)
	}
}

func (p *Pool) run(ctx context.Context) {
	ticker := time.NewTicker(p.poll)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			for {
				job, err := p.queue.ClaimNext()
				if err != nil {
					log.Printf("upload worker: claim failed: %v", err)
					break
				}
				if job == nil {
					break
				}
				p.execute(ctx, job)
			}
		}
	}
}

func (p *Pool) execute(ctx context.Context, job *models.UploadJob) {
	defer func() {
		if r := recover(); r != nil {
			log.Printf("upload worker: panic on job %d: %v", job.ID, r)
			p.fail(job, "internal error")
		}
	}()

	var asset models.MediaAsset
	if err := p.db.First(&asset, "id = ?", job.AssetID).Error; err != nil {
		// asset was deleted while the job waited; nothing left to upload
		if err := p.queue.Finish(job); err != nil {
			log.Printf("upload worker: finish orphan job %d: %v", job.ID, err)
		}
		return
	}
	if asset.Status == models.MediaStatusCompleted || asset.Status == models.MediaStatusFailed {
		// reclaimed lease raced a finished run; the terminal state wins
		if err := p.queue.Finish(job); err != nil {
			log.Printf("upload worker: finish job %d: %v", job.ID, err)
		}
		return
	}

	if err := p.db.Model(&models.MediaAsset{}).
		Where("id = ? AND status = ?", asset.ID, models.MediaStatusPending).
		Update("status", models.MediaStatusUploading).Error; err != nil {
		log.Printf("upload worker: mark uploading %s: %v", asset.ID, err)
		p.keepAlive(job)
		return
	}

	key := cdnKey(&asset)
	result, err := p.cdn.Upload(ctx, job.Data, job.ContentType, key)
	if err != nil {
		if cdn.IsPermanent(err) || job.Attempts >= job.MaxAttempts {
			p.fail(job, err.Error())
			return
		}
		delay := p.retryBase << (job.Attempts - 1)
		if rErr := p.queue.Requeue(job, delay); rErr != nil {
			log.Printf("upload worker: requeue job %d: %v", job.ID, rErr)
		}
		return
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":       models.MediaStatusCompleted,
		"url":          result.URL,
		"completed_at": now,
	}
	if result.ThumbnailURL != "" {
		updates["thumbnail_url"] = result.ThumbnailURL
	}
	if result.Width > 0 && result.Height > 0 {
		updates["width"] = result.Width
		updates["height"] = result.Height
	}
	if err := p.db.Model(&models.MediaAsset{}).
		Where("id = ? AND status IN ?", asset.ID,
			[]models.MediaStatus{models.MediaStatusPending, models.MediaStatusUploading}).
		Updates(updates).Error; err != nil {
		// the job is the only handle left on this work; keep it so a later
		// run can record the state (the rerun overwrites the same CDN key)
		log.Printf("upload worker: record completion %s: %v", asset.ID, err)
		p.keepAlive(job)
		return
	}

	if err := p.queue.Finish(job); err != nil {
		log.Printf("upload worker: finish job %d: %v", job.ID, err)
	}
	if err := p.rec.Reconcile(asset.ID); err != nil {
		log.Printf("upload worker: reconcile asset %s: %v", asset.ID, err)
	}
}

func (p *Pool) fail(job *models.UploadJob, reason string) {
	now := time.Now()
	if err := p.db.Model(&models.MediaAsset{}).
		Where("id = ? AND status IN ?", job.AssetID,
			[]models.MediaStatus{models.MediaStatusPending, models.MediaStatusUploading}).
		Updates(map[string]interface{}{
			"status":       models.MediaStatusFailed,
			"error":        reason,
			"completed_at": now,
		}).Error; err != nil {
		log.Printf("upload worker: record failure %s: %v", job.AssetID, err)
		p.keepAlive(job)
		return
	}

	if err := p.queue.Finish(job); err != nil {
		log.Printf("upload worker: finish failed job %d: %v", job.ID, err)
	}
	if err := p.rec.Reconcile(job.AssetID); err != nil {
		log.Printf("upload worker: reconcile asset %s: %v", job.AssetID, err)
	}
}

// keepAlive requeues a job whose asset write did not land. Finishing it here
// would delete the only remaining handle on the work and strand the asset in
// a non-terminal status.
func (p *Pool) keepAlive(job *models.UploadJob) {
	if err := p.queue.Requeue(job, p.retryBase); err != nil {
		log.Printf("upload worker: requeue job %d: %v", job.ID, err)
	}
}

// cdnKey derives the storage key from the asset id, so a retried upload
// overwrites the same object instead of leaking duplicates.
func cdnKey(asset *models.MediaAsset) string {
	return asset.ID + filepath.Ext(asset.FileName)
}
