package upload

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/eventsphere/api/internal/models"
	"gorm.io/gorm"
)

type FailedDeletion struct {
	ID     string `json:"id"`
	Reason string `json:"reason"`
}

type BulkDeleteResult struct {
	DeletedCount    int              `json:"deleted_count"`
	FailedDeletions []FailedDeletion `json:"failed_deletions"`
}

// BulkDelete removes each asset independently: CDN object (best-effort),
// owner reference if attached, then the record. One bad id never fails the
// batch.
func (p *Pipeline) BulkDelete(ids []string) *BulkDeleteResult {
	result := &BulkDeleteResult{FailedDeletions: []FailedDeletion{}}

	for _, id := range ids {
		var asset models.MediaAsset
		if err := p.db.First(&asset, "id = ?", id).Error; err != nil {
			reason := "not found"
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				reason = err.Error()
			}
			result.FailedDeletions = append(result.FailedDeletions, FailedDeletion{ID: id, Reason: reason})
			continue
		}

		if err := p.deleteAsset(&asset); err != nil {
			result.FailedDeletions = append(result.FailedDeletions, FailedDeletion{ID: id, Reason: err.Error()})
			continue
		}
		result.DeletedCount++
	}

	return result
}

func (p *Pipeline) deleteAsset(asset *models.MediaAsset) error {
	owner := OwnerRef{Type: asset.OwnerType, ID: asset.OwnerID}

	mu := p.rec.lockFor(owner)
	mu.Lock()
	err := p.detachAndDelete(asset, owner)
	mu.Unlock()
	if err != nil {
		return err
	}

	if dErr := p.cdn.Delete(context.Background(), cdnKey(asset)); dErr != nil {
		log.Printf("bulk delete: cdn delete %s: %v", cdnKey(asset), dErr)
	}
	return nil
}

func (p *Pipeline) detachAndDelete(asset *models.MediaAsset, owner OwnerRef) error {
	if exists, err := ownerExists(p.db, owner); err == nil && exists {
		refs, err := loadOwnerRefs(p.db, owner)
		if err != nil {
			return err
		}
		if refs.FeaturedAssetID != nil && *refs.FeaturedAssetID == asset.ID {
			if err := setFeaturedRef(p.db, owner, nil); err != nil {
				return err
			}
		}
		gallery := models.DecodeGalleryRefs(refs.GalleryRefs)
		if galleryRefsContain(gallery, asset.ID) {
			kept := make([]models.GalleryRef, 0, len(gallery))
			for _, ref := range gallery {
				if ref.ID != asset.ID {
					kept = append(kept, ref)
				}
			}
			if err := saveGalleryRefs(p.db, owner, kept); err != nil {
				return err
			}
		}
	}

	if err := p.db.Delete(&models.UploadJob{}, "asset_id = ?", asset.ID).Error; err != nil {
		return err
	}
	return p.db.Delete(&models.MediaAsset{}, "id = ?", asset.ID).Error
}

type StatsEntry struct {
	FileType  string `json:"file_type"`
	Count     int64  `json:"count"`
	TotalSize int64  `json:"total_size"`
}

type StatsResult struct {
	TotalFiles int64        `json:"total_files"`
	TotalSize  int64        `json:"total_size_bytes"`
	ByType     []StatsEntry `json:"by_type"`
}

// Stats aggregates completed assets only; pending and failed uploads never
// count toward storage totals.
func (p *Pipeline) Stats(owner OwnerRef, from, to time.Time) (*StatsResult, error) {
	query := p.db.Model(&models.MediaAsset{}).
		Where("owner_type = ? AND owner_id = ? AND status = ?",
			owner.Type, owner.ID, models.MediaStatusCompleted)
	if !from.IsZero() {
		query = query.Where("created_at >= ?", from)
	}
	if !to.IsZero() {
		query = query.Where("created_at <= ?", to)
	}

	var entries []StatsEntry
	err := query.
		Select("file_type, COUNT(*) as count, COALESCE(SUM(file_size), 0) as total_size").
		Group("file_type").
		Scan(&entries).Error
	if err != nil {
		return nil, err
	}

	result := &StatsResult{ByType: entries}
	if result.ByType == nil {
		result.ByType = []StatsEntry{}
	}
	for _, e := range entries {
		result.TotalFiles += e.Count
		result.TotalSize += e.TotalSize
	}
	return result, nil
}

type AttachedMedia struct {
	Featured *models.MediaAsset  `json:"featured,omitempty"`
	Gallery  []models.MediaAsset `json:"gallery"`
}

// AttachedMedia is the presentation view of an owner's media: the completed
// featured asset plus completed gallery assets in reference order, failed
// slots omitted.
func (p *Pipeline) AttachedMedia(owner OwnerRef) (*AttachedMedia, error) {
	refs, err := loadOwnerRefs(p.db, owner)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOwnerNotFound
		}
		return nil, err
	}

	view := &AttachedMedia{Gallery: []models.MediaAsset{}}

	if refs.FeaturedAssetID != nil {
		var featured models.MediaAsset
		err := p.db.First(&featured, "id = ? AND status = ?",
			*refs.FeaturedAssetID, models.MediaStatusCompleted).Error
		switch {
		case err == nil:
			view.Featured = &featured
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return nil, err
		}
	}

	gallery := models.DecodeGalleryRefs(refs.GalleryRefs)
	if len(gallery) == 0 {
		return view, nil
	}

	ids := make([]string, 0, len(gallery))
	for _, ref := range gallery {
		ids = append(ids, ref.ID)
	}

	var assets []models.MediaAsset
	if err := p.db.Where("id IN ? AND status = ?", ids, models.MediaStatusCompleted).
		Find(&assets).Error; err != nil {
		return nil, err
	}

	byID := make(map[string]models.MediaAsset, len(assets))
	for _, a := range assets {
		byID[a.ID] = a
	}
	for _, ref := range gallery {
		if a, ok := byID[ref.ID]; ok {
			view.Gallery = append(view.Gallery, a)
		}
	}

	return view, nil
}
