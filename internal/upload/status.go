package upload

import (
	"errors"

	"github.com/eventsphere/api/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ErrUnknownToken distinguishes a token that was never issued from a
// legitimately pending upload.
var ErrUnknownToken = errors.New("unknown upload token")

type UploadStatus struct {
	Token  string             `json:"token"`
	Status models.MediaStatus `json:"status"`
	Error  *string            `json:"error,omitempty"`
	Asset  *models.MediaAsset `json:"asset,omitempty"`
}

// GetStatus resolves a placeholder token to its current state. Read-only,
// derived straight from the asset record, so it can never go stale.
func GetStatus(db *gorm.DB, token string) (*UploadStatus, error) {
	if _, err := uuid.Parse(token); err != nil {
		return nil, ErrUnknownToken
	}

	var asset models.MediaAsset
	if err := db.First(&asset, "id = ?", token).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUnknownToken
		}
		return nil, err
	}

	status := &UploadStatus{
		Token:  asset.ID,
		Status: asset.Status,
		Error:  asset.Error,
	}
	if asset.Status == models.MediaStatusCompleted {
		status.Asset = &asset
	}
	return status, nil
}
