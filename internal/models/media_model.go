package models

import (
	"time"
)

type MediaRole string

const (
	MediaRoleFeatured MediaRole = "featured"
	MediaRoleGallery  MediaRole = "gallery"
)

type MediaStatus string

const (
	MediaStatusPending   MediaStatus = "pending"
	MediaStatusUploading MediaStatus = "uploading"
	MediaStatusCompleted MediaStatus = "completed"
	MediaStatusFailed    MediaStatus = "failed"
)

// MediaAsset is the durable record of one uploaded file. Its ID doubles as
// the placeholder token returned to the client at submit time. Status only
// moves forward: pending -> uploading -> completed|failed.
type MediaAsset struct {
	ID           string      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerType    string      `gorm:"size:20;index:idx_media_owner" json:"owner_type"`
	OwnerID      uint        `gorm:"index:idx_media_owner" json:"owner_id"`
	Role         MediaRole   `gorm:"size:20" json:"role"`
	GalleryIndex *int        `json:"gallery_index,omitempty"`
	Status       MediaStatus `gorm:"size:20;index" json:"status"`
	FileName     string      `gorm:"size:255" json:"file_name"`
	MimeType     string      `gorm:"size:100" json:"mime_type"`
	FileType     string      `gorm:"size:50;index" json:"file_type"` // image, document
	FileSize     int64       `json:"file_size"`
	URL          *string     `gorm:"size:500" json:"url,omitempty"`
	ThumbnailURL *string     `gorm:"size:500" json:"thumbnail_url,omitempty"`
	Width        *int        `json:"width,omitempty"`
	Height       *int        `json:"height,omitempty"`
	Alt          string      `gorm:"size:255" json:"alt"`
	Caption      string      `gorm:"type:text" json:"caption"`
	Error        *string     `gorm:"size:500" json:"error,omitempty"`
	UploadedBy   uint        `gorm:"index" json:"uploaded_by"`
	CreatedAt    time.Time   `json:"created_at"`
	CompletedAt  *time.Time  `json:"completed_at,omitempty"`
}

type JobState string

const (
	JobStateQueued  JobState = "queued"
	JobStateRunning JobState = "running"
	JobStateDone    JobState = "done"
)

// UploadJob is one pending unit of CDN upload work, created atomically with
// its MediaAsset. The row carries the file bytes so a reclaimed lease can
// re-run the upload without the original request. Done jobs are deleted; the
// MediaAsset stays as the durable record.
type UploadJob struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	AssetID        string     `gorm:"type:uuid;uniqueIndex" json:"asset_id"`
	State          JobState   `gorm:"size:20;index" json:"state"`
	Attempts       int        `json:"attempts"`
	MaxAttempts    int        `json:"max_attempts"`
	NextRetryAt    time.Time  `gorm:"index" json:"next_retry_at"`
	LeaseExpiresAt *time.Time `json:"lease_expires_at,omitempty"`
	ContentType    string     `gorm:"size:100" json:"content_type"`
	Data           []byte     `json:"-"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
