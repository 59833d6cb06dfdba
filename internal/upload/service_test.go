package upload

import (
	"testing"
	"time"

	"github.com/eventsphere/api/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBulkDeleteMixedBatch(t *testing.T) {
	db := newTestDB(t)
	fake := &fakeCDN{}
	p := newTestPipeline(t, db, fake)

	ev := newTestEvent(t, db)
	owner := OwnerRef{Type: models.OwnerTypeEvent, ID: ev.ID}

	keep := submitOne(t, p, owner, pngInput("keep.png", models.MediaRoleGallery))
	doomed := submitOne(t, p, owner, pngInput("doomed.png", models.MediaRoleGallery))
	drain(t, p)

	result := p.BulkDelete([]string{doomed, "deadbeef-0000-0000-0000-000000000000"})

	assert.Equal(t, 1, result.DeletedCount)
	require.Len(t, result.FailedDeletions, 1)
	assert.Equal(t, "deadbeef-0000-0000-0000-000000000000", result.FailedDeletions[0].ID)
	assert.Equal(t, "not found", result.FailedDeletions[0].Reason)

	var count int64
	db.Model(&models.MediaAsset{}).Where("id = ?", doomed).Count(&count)
	assert.Equal(t, int64(0), count)
	assert.Contains(t, fake.deletedKeys(), doomed+".png")

	// the sibling and its reference survive
	var reloaded models.Event
	require.NoError(t, db.First(&reloaded, ev.ID).Error)
	refs := models.DecodeGalleryRefs(reloaded.GalleryRefs)
	require.Len(t, refs, 1)
	assert.Equal(t, keep, refs[0].ID)
}

func TestBulkDeleteClearsFeaturedRef(t *testing.T) {
	db := newTestDB(t)
	p := newTestPipeline(t, db, &fakeCDN{})

	ev := newTestEvent(t, db)
	owner := OwnerRef{Type: models.OwnerTypeEvent, ID: ev.ID}

	token := submitOne(t, p, owner, pngInput("cover.png", models.MediaRoleFeatured))
	drain(t, p)

	result := p.BulkDelete([]string{token})
	assert.Equal(t, 1, result.DeletedCount)

	var reloaded models.Event
	require.NoError(t, db.First(&reloaded, ev.ID).Error)
	assert.Nil(t, reloaded.FeaturedAssetID)
}

func TestBulkDeletePendingAssetCancelsJob(t *testing.T) {
	db := newTestDB(t)
	fake := &fakeCDN{}
	p := newTestPipeline(t, db, fake)

	ev := newTestEvent(t, db)
	owner := OwnerRef{Type: models.OwnerTypeEvent, ID: ev.ID}

	token := submitOne(t, p, owner, pngInput("photo.png", models.MediaRoleGallery))

	result := p.BulkDelete([]string{token})
	assert.Equal(t, 1, result.DeletedCount)

	var jobs int64
	db.Model(&models.UploadJob{}).Count(&jobs)
	assert.Equal(t, int64(0), jobs)

	// nothing ever reached the CDN
	assert.Equal(t, 0, fake.uploadCount())
}

func TestStatsCountsCompletedOnly(t *testing.T) {
	db := newTestDB(t)
	p := newTestPipeline(t, db, &fakeCDN{})

	ev := newTestEvent(t, db)
	owner := OwnerRef{Type: models.OwnerTypeEvent, ID: ev.ID}

	submitOne(t, p, owner, FileInput{
		FileName: "img.png", Role: models.MediaRoleGallery,
		Data: make([]byte, 100), ContentType: "image/png",
	})
	submitOne(t, p, owner, FileInput{
		FileName: "doc.pdf", Role: models.MediaRoleGallery,
		Data: make([]byte, 300), ContentType: "application/pdf",
	})
	pending := submitOne(t, p, owner, FileInput{
		FileName: "late.png", Role: models.MediaRoleGallery,
		Data: make([]byte, 900), ContentType: "image/png",
	})

	// complete everything except the last one
	var jobs []models.UploadJob
	require.NoError(t, db.Where("asset_id != ?", pending).Find(&jobs).Error)
	for i := range jobs {
		completeInOrder(t, p, jobs[i].AssetID)
	}

	stats, err := p.Stats(owner, time.Time{}, time.Time{})
	require.NoError(t, err)

	assert.Equal(t, int64(2), stats.TotalFiles)
	assert.Equal(t, int64(400), stats.TotalSize)

	byType := map[string]StatsEntry{}
	for _, e := range stats.ByType {
		byType[e.FileType] = e
	}
	assert.Equal(t, int64(1), byType["image"].Count)
	assert.Equal(t, int64(100), byType["image"].TotalSize)
	assert.Equal(t, int64(1), byType["document"].Count)
	assert.Equal(t, int64(300), byType["document"].TotalSize)
}

func TestStatsTimeWindow(t *testing.T) {
	db := newTestDB(t)
	p := newTestPipeline(t, db, &fakeCDN{})

	ev := newTestEvent(t, db)
	owner := OwnerRef{Type: models.OwnerTypeEvent, ID: ev.ID}

	submitOne(t, p, owner, pngInput("photo.png", models.MediaRoleGallery))
	drain(t, p)

	// a window ending before the asset existed sees nothing
	stats, err := p.Stats(owner, time.Time{}, time.Now().Add(-time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(0), stats.TotalFiles)
	assert.Empty(t, stats.ByType)

	// a window that covers now sees the asset
	stats, err = p.Stats(owner, time.Now().Add(-time.Hour), time.Now().Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.TotalFiles)
}

func TestAttachedMediaOmitsUnfinished(t *testing.T) {
	db := newTestDB(t)
	p := newTestPipeline(t, db, &fakeCDN{})

	ev := newTestEvent(t, db)
	owner := OwnerRef{Type: models.OwnerTypeEvent, ID: ev.ID}

	cover := submitOne(t, p, owner, pngInput("cover.png", models.MediaRoleFeatured))
	a := submitOne(t, p, owner, pngInput("a.png", models.MediaRoleGallery))
	b := submitOne(t, p, owner, pngInput("b.png", models.MediaRoleGallery))
	drain(t, p)

	// one gallery asset later fails out of band
	require.NoError(t, db.Model(&models.MediaAsset{}).
		Where("id = ?", a).
		Update("status", models.MediaStatusFailed).Error)

	view, err := p.AttachedMedia(owner)
	require.NoError(t, err)

	require.NotNil(t, view.Featured)
	assert.Equal(t, cover, view.Featured.ID)

	require.Len(t, view.Gallery, 1)
	assert.Equal(t, b, view.Gallery[0].ID)
}

func TestAttachedMediaPropagatesStoreError(t *testing.T) {
	db := newTestDB(t)
	p := newTestPipeline(t, db, &fakeCDN{})
	broken := breakQueries(t, db, "media_assets")

	ev := newTestEvent(t, db)
	owner := OwnerRef{Type: models.OwnerTypeEvent, ID: ev.ID}

	submitOne(t, p, owner, pngInput("cover.png", models.MediaRoleFeatured))
	drain(t, p)

	// a failing asset lookup is an error, not an empty view
	broken.on = true
	_, err := p.AttachedMedia(owner)
	assert.ErrorIs(t, err, errStoreOffline)
}

func TestAttachedMediaUnknownOwner(t *testing.T) {
	db := newTestDB(t)
	p := newTestPipeline(t, db, &fakeCDN{})

	_, err := p.AttachedMedia(OwnerRef{Type: models.OwnerTypeEvent, ID: 42})
	assert.ErrorIs(t, err, ErrOwnerNotFound)
}

func TestGetStatusLifecycle(t *testing.T) {
	db := newTestDB(t)
	p := newTestPipeline(t, db, &fakeCDN{})

	ev := newTestEvent(t, db)
	owner := OwnerRef{Type: models.OwnerTypeEvent, ID: ev.ID}

	token := submitOne(t, p, owner, pngInput("photo.png", models.MediaRoleGallery))

	status, err := p.GetStatus(token)
	require.NoError(t, err)
	assert.Equal(t, models.MediaStatusPending, status.Status)
	assert.Nil(t, status.Asset, "asset details only appear once completed")

	drain(t, p)

	status, err = p.GetStatus(token)
	require.NoError(t, err)
	assert.Equal(t, models.MediaStatusCompleted, status.Status)
	require.NotNil(t, status.Asset)
	assert.NotNil(t, status.Asset.URL)
}

func TestGetStatusUnknownToken(t *testing.T) {
	db := newTestDB(t)
	p := newTestPipeline(t, db, &fakeCDN{})

	_, err := p.GetStatus("deadbeef-0000-0000-0000-000000000000")
	assert.ErrorIs(t, err, ErrUnknownToken)

	_, err = p.GetStatus("not-a-uuid")
	assert.ErrorIs(t, err, ErrUnknownToken)
}
