package upload

import (
	"context"
	"errors"
	"hash/fnv"
	"log"
	"sort"
	"sync"

	"github.com/eventsphere/api/internal/cdn"
	"github.com/eventsphere/api/internal/models"
	"gorm.io/gorm"
)

const lockShards = 64

// Reconciler attaches terminal assets to their owner's media references.
// Updates for the same owner are serialized through a sharded lock table;
// different owners proceed in parallel. CDN deletes collected during the
// critical section run after the lock is released.
type Reconciler struct {
	db    *gorm.DB
	cdn   cdn.Client
	locks [lockShards]sync.Mutex
}

func NewReconciler(db *gorm.DB, client cdn.Client) *Reconciler {
	return &Reconciler{db: db, cdn: client}
}

func (r *Reconciler) lockFor(ref OwnerRef) *sync.Mutex {
	h := fnv.New32a()
	h.Write([]byte(ref.key()))
	return &r.locks[h.Sum32()%lockShards]
}

// Reconcile is idempotent: calling it again for an already attached asset is
// a no-op, and an unknown asset id is not an error.
func (r *Reconciler) Reconcile(assetID string) error {
	var asset models.MediaAsset
	if err := r.db.First(&asset, "id = ?", assetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	owner := OwnerRef{Type: asset.OwnerType, ID: asset.OwnerID}
	var cdnDeletes []string

	mu := r.lockFor(owner)
	mu.Lock()
	err := r.reconcileLocked(&asset, owner, &cdnDeletes)
	mu.Unlock()

	for _, key := range cdnDeletes {
		if dErr := r.cdn.Delete(context.Background(), key); dErr != nil {
			log.Printf("reconciler: cdn delete %s: %v", key, dErr)
		}
	}

	return err
}

func (r *Reconciler) reconcileLocked(asset *models.MediaAsset, owner OwnerRef, cdnDeletes *[]string) error {
	exists, err := ownerExists(r.db, owner)
	if err != nil {
		return err
	}
	if !exists {
		return r.collectOrphan(asset, cdnDeletes)
	}

	if asset.Status != models.MediaStatusCompleted {
		// failed assets attach nothing but stay around for status polling
		return nil
	}

	switch asset.Role {
	case models.MediaRoleFeatured:
		return r.attachFeatured(asset, owner, cdnDeletes)
	case models.MediaRoleGallery:
		return r.attachGallery(asset, owner)
	}
	return nil
}

// collectOrphan is the garbage-collection path: the owner vanished while the
// upload was in flight, so the asset and its job row are discarded and the
// uploaded object is scheduled for a best-effort CDN delete.
func (r *Reconciler) collectOrphan(asset *models.MediaAsset, cdnDeletes *[]string) error {
	*cdnDeletes = append(*cdnDeletes, cdnKey(asset))
	if err := r.db.Delete(&models.UploadJob{}, "asset_id = ?", asset.ID).Error; err != nil {
		return err
	}
	return r.db.Delete(&models.MediaAsset{}, "id = ?", asset.ID).Error
}

// attachFeatured swaps the owner's featured reference to this asset. The
// previous featured asset is superseded: unless it still appears in the
// gallery refs, its record goes away and its CDN object is scheduled for
// deletion.
func (r *Reconciler) attachFeatured(asset *models.MediaAsset, owner OwnerRef, cdnDeletes *[]string) error {
	refs, err := loadOwnerRefs(r.db, owner)
	if err != nil {
		return err
	}

	prevID := ""
	if refs.FeaturedAssetID != nil {
		prevID = *refs.FeaturedAssetID
	}
	if prevID == asset.ID {
		return nil
	}

	if err := setFeaturedRef(r.db, owner, &asset.ID); err != nil {
		return err
	}

	if prevID != "" && !galleryRefsContain(models.DecodeGalleryRefs(refs.GalleryRefs), prevID) {
		var prev models.MediaAsset
		if err := r.db.First(&prev, "id = ?", prevID).Error; err == nil {
			*cdnDeletes = append(*cdnDeletes, cdnKey(&prev))
			if err := r.db.Delete(&models.MediaAsset{}, "id = ?", prev.ID).Error; err != nil {
				return err
			}
		}
	}

	return nil
}

// attachGallery inserts the asset into the owner's gallery reference list at
// its enqueue-time index. Positions stay sparse; nothing is renumbered.
func (r *Reconciler) attachGallery(asset *models.MediaAsset, owner OwnerRef) error {
	if asset.GalleryIndex == nil {
		return nil
	}

	refs, err := loadOwnerRefs(r.db, owner)
	if err != nil {
		return err
	}

	gallery := models.DecodeGalleryRefs(refs.GalleryRefs)
	if galleryRefsContain(gallery, asset.ID) {
		return nil
	}

	gallery = append(gallery, models.GalleryRef{
		Index: *asset.GalleryIndex,
		ID:    asset.ID,
	})
	sort.Slice(gallery, func(i, j int) bool {
		return gallery[i].Index < gallery[j].Index
	})

	return saveGalleryRefs(r.db, owner, gallery)
}

func galleryRefsContain(refs []models.GalleryRef, assetID string) bool {
	for _, ref := range refs {
		if ref.ID == assetID {
			return true
		}
	}
	return false
}
