package upload

import (
	"fmt"
	"time"

	"github.com/eventsphere/api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// allowedMimeTypes maps accepted content types to the coarse file_type
// recorded on the asset. Everything else is rejected at submit time.
var allowedMimeTypes = map[string]string{
	"image/jpeg":      "image",
	"image/png":       "image",
	"image/gif":       "image",
	"image/webp":      "image",
	"application/pdf": "document",
}

type FileInput struct {
	FileName    string
	Role        models.MediaRole
	Data        []byte
	ContentType string
}

type AcceptedFile struct {
	Token    string           `json:"token"`
	Role     models.MediaRole `json:"role"`
	FileName string           `json:"file_name"`
}

type RejectedFile struct {
	FileName string `json:"file_name"`
	Reason   string `json:"reason"`
}

type BatchResult struct {
	Accepted []AcceptedFile `json:"accepted"`
	Rejected []RejectedFile `json:"rejected"`
}

// Orchestrator accepts an upload batch, persists placeholders, and enqueues
// background jobs. It never touches the CDN; the response goes out before
// any upload starts.
type Orchestrator struct {
	db          *gorm.DB
	queue       *Queue
	rec         *Reconciler
	maxFileSize int64
	maxAttempts int
}

var ErrOwnerNotFound = fmt.Errorf("owner not found")

// Submit validates each file synchronously and creates a MediaAsset
// placeholder plus an UploadJob for every accepted one, atomically per file.
// One file's rejection or persistence failure never affects its siblings.
func (o *Orchestrator) Submit(owner OwnerRef, files []FileInput, uploadedBy uint) (*BatchResult, error) {
	exists, err := ownerExists(o.db, owner)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrOwnerNotFound
	}

	result := &BatchResult{
		Accepted: []AcceptedFile{},
		Rejected: []RejectedFile{},
	}

	// Gallery ordinals are read-then-inserted, so reservation holds the
	// owner lock: concurrent batches for the same owner serialize here and
	// never claim the same slot.
	mu := o.rec.lockFor(owner)
	mu.Lock()
	defer mu.Unlock()

	nextIndex, err := o.nextGalleryIndex(owner)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	for _, f := range files {
		fileType, reason := o.validate(f)
		if reason != "" {
			result.Rejected = append(result.Rejected, RejectedFile{
				FileName: f.FileName,
				Reason:   reason,
			})
			continue
		}

		asset := &models.MediaAsset{
			ID:         uuid.NewString(),
			OwnerType:  owner.Type,
			OwnerID:    owner.ID,
			Role:       f.Role,
			Status:     models.MediaStatusPending,
			FileName:   f.FileName,
			MimeType:   f.ContentType,
			FileType:   fileType,
			FileSize:   int64(len(f.Data)),
			UploadedBy: uploadedBy,
		}
		if f.Role == models.MediaRoleGallery {
			idx := nextIndex
			asset.GalleryIndex = &idx
			nextIndex++
		}

		job := &models.UploadJob{
			AssetID:     asset.ID,
			MaxAttempts: o.maxAttempts,
			NextRetryAt: now,
			ContentType: f.ContentType,
			Data:        f.Data,
		}

		err := o.db.Transaction(func(tx *gorm.DB) error {
			if err := tx.Create(asset).Error; err != nil {
				return err
			}
			return o.queue.Enqueue(tx, job)
		})
		if err != nil {
			result.Rejected = append(result.Rejected, RejectedFile{
				FileName: f.FileName,
				Reason:   "failed to persist upload",
			})
			if f.Role == models.MediaRoleGallery {
				nextIndex-- // slot was never taken
			}
			continue
		}

		result.Accepted = append(result.Accepted, AcceptedFile{
			Token:    asset.ID,
			Role:     f.Role,
			FileName: f.FileName,
		})
	}

	return result, nil
}

func (o *Orchestrator) validate(f FileInput) (fileType, reason string) {
	if f.FileName == "" {
		return "", "file name is required"
	}
	if len(f.Data) == 0 {
		return "", "empty file"
	}
	if int64(len(f.Data)) > o.maxFileSize {
		return "", fmt.Sprintf("file too large (max %dMB)", o.maxFileSize/(1024*1024))
	}
	fileType, ok := allowedMimeTypes[f.ContentType]
	if !ok {
		return "", "unsupported file type: " + f.ContentType
	}
	return fileType, ""
}

// nextGalleryIndex reserves ordinals in request order so the final gallery
// ordering never depends on which upload finishes first.
func (o *Orchestrator) nextGalleryIndex(owner OwnerRef) (int, error) {
	var max *int
	err := o.db.Model(&models.MediaAsset{}).
		Select("MAX(gallery_index)").
		Where("owner_type = ? AND owner_id = ?", owner.Type, owner.ID).
		Scan(&max).Error
	if err != nil {
		return 0, err
	}
	if max == nil {
		return 0, nil
	}
	return *max + 1, nil
}
