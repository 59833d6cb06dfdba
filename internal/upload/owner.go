package upload

import (
	"fmt"

	"github.com/eventsphere/api/internal/models"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// OwnerRef identifies the parent entity a media asset belongs to.
type OwnerRef struct {
	Type string `json:"type"`
	ID   uint   `json:"id"`
}

func (r OwnerRef) key() string {
	return fmt.Sprintf("%s:%d", r.Type, r.ID)
}

func ownerTable(ownerType string) (string, error) {
	switch ownerType {
	case models.OwnerTypeEvent:
		return "events", nil
	case models.OwnerTypeFolio:
		return "folio_works", nil
	default:
		return "", fmt.Errorf("unknown owner type: %s", ownerType)
	}
}

func ownerExists(db *gorm.DB, ref OwnerRef) (bool, error) {
	table, err := ownerTable(ref.Type)
	if err != nil {
		return false, err
	}
	var n int64
	err = db.Table(table).
		Where("id = ? AND deleted_at IS NULL", ref.ID).
		Count(&n).Error
	return n > 0, err
}

type ownerMediaRefs struct {
	FeaturedAssetID *string
	GalleryRefs     datatypes.JSON
}

func loadOwnerRefs(db *gorm.DB, ref OwnerRef) (*ownerMediaRefs, error) {
	table, err := ownerTable(ref.Type)
	if err != nil {
		return nil, err
	}
	var refs ownerMediaRefs
	err = db.Table(table).
		Select("featured_asset_id, gallery_refs").
		Where("id = ? AND deleted_at IS NULL", ref.ID).
		Take(&refs).Error
	if err != nil {
		return nil, err
	}
	return &refs, nil
}

func setFeaturedRef(db *gorm.DB, ref OwnerRef, assetID *string) error {
	table, err := ownerTable(ref.Type)
	if err != nil {
		return err
	}
	return db.Table(table).
		Where("id = ?", ref.ID).
		Update("featured_asset_id", assetID).Error
}

func saveGalleryRefs(db *gorm.DB, ref OwnerRef, refs []models.GalleryRef) error {
	table, err := ownerTable(ref.Type)
	if err != nil {
		return err
	}
	return db.Table(table).
		Where("id = ?", ref.ID).
		Update("gallery_refs", models.EncodeGalleryRefs(refs)).Error
}
