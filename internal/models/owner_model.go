package models

import (
	"encoding/json"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	OwnerTypeEvent = "event"
	OwnerTypeFolio = "folio"
)

// GalleryRef is one entry in an owner's ordered gallery reference list.
// Index is the enqueue-time ordinal; positions may be sparse when a sibling
// upload failed, presentation just skips the gaps.
type GalleryRef struct {
	Index int    `json:"index"`
	ID    string `json:"id"`
}

func DecodeGalleryRefs(raw datatypes.JSON) []GalleryRef {
	if len(raw) == 0 {
		return nil
	}
	var refs []GalleryRef
	if err := json.Unmarshal(raw, &refs); err != nil {
		return nil
	}
	return refs
}

func EncodeGalleryRefs(refs []GalleryRef) datatypes.JSON {
	b, _ := json.Marshal(refs)
	return datatypes.JSON(b)
}

// Event owns media by weak reference only: FeaturedAssetID and GalleryRefs
// hold MediaAsset ids, so deleting an event never touches in-flight uploads.
type Event struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"size:255" json:"title"`
	Description     string         `gorm:"type:text" json:"description"`
	Location        string         `gorm:"size:255" json:"location"`
	StartsAt        *time.Time     `json:"starts_at,omitempty"`
	EndsAt          *time.Time     `json:"ends_at,omitempty"`
	FeaturedAssetID *string        `gorm:"type:uuid" json:"featured_asset_id,omitempty"`
	GalleryRefs     datatypes.JSON `json:"gallery_refs,omitempty"`
	CreatedBy       uint           `gorm:"index" json:"created_by"`
	Creator         *User          `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

type FolioWork struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Title           string         `gorm:"size:255" json:"title"`
	Summary         string         `gorm:"type:text" json:"summary"`
	Handle          string         `gorm:"size:100;uniqueIndex" json:"handle"`
	FeaturedAssetID *string        `gorm:"type:uuid" json:"featured_asset_id,omitempty"`
	GalleryRefs     datatypes.JSON `json:"gallery_refs,omitempty"`
	CreatedBy       uint           `gorm:"index" json:"created_by"`
	Creator         *User          `gorm:"foreignKey:CreatedBy" json:"creator,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}
