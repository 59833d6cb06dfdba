package upload

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/eventsphere/api/internal/cdn"
	"github.com/eventsphere/api/internal/models"
	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(
		&models.User{},
		&models.Role{},
		&models.Permission{},
		&models.Event{},
		&models.FolioWork{},
		&models.MediaAsset{},
		&models.UploadJob{},
	)
	require.NoError(t, err)

	return db
}

func newTestEvent(t *testing.T, db *gorm.DB) *models.Event {
	ev := &models.Event{Title: "Summer Gala", CreatedBy: 1}
	require.NoError(t, db.Create(ev).Error)
	return ev
}

// fakeCDN records upload and delete calls and fails uploads with the queued
// errors first, one per call.
type fakeCDN struct {
	mu      sync.Mutex
	errs    []error
	uploads []string
	deletes []string
}

func (f *fakeCDN) Upload(ctx context.Context, data []byte, contentType, key string) (*cdn.UploadResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.errs) > 0 {
		err := f.errs[0]
		f.errs = f.errs[1:]
		return nil, err
	}

	f.uploads = append(f.uploads, key)
	return &cdn.UploadResult{
		URL:          "https://cdn.test/" + key,
		ThumbnailURL: "https://cdn.test/" + key + "?width=300",
		Width:        800,
		Height:       600,
	}, nil
}

func (f *fakeCDN) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, key)
	return nil
}

func (f *fakeCDN) uploadCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.uploads)
}

func (f *fakeCDN) deletedKeys() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

func newTestPipeline(t *testing.T, db *gorm.DB, client cdn.Client) *Pipeline {
	p := NewPipeline(db, client, Config{
		Workers:     2,
		MaxFileSize: 1024 * 1024,
		MaxAttempts: 3,
		Lease:       5 * time.Second,
	})
	// retries must not stall the test clock
	p.pool.retryBase = time.Millisecond
	return p
}

// drain claims and executes jobs until the queue is empty. Retried jobs
// become runnable within a few milliseconds, so a couple of passes settle
// everything.
func drain(t *testing.T, p *Pipeline) {
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		job, err := p.queue.ClaimNext()
		require.NoError(t, err)
		if job == nil {
			depth, err := p.queue.Depth()
			require.NoError(t, err)
			if depth == 0 {
				return
			}
			time.Sleep(2 * time.Millisecond)
			continue
		}
		p.pool.execute(context.Background(), job)
	}
	t.Fatal("queue did not drain")
}

func pngInput(name string, role models.MediaRole) FileInput {
	return FileInput{
		FileName:    name,
		Role:        role,
		Data:        []byte("fake png bytes"),
		ContentType: "image/png",
	}
}

var errStoreOffline = errors.New("store offline")

// brokenStore turns statements against one table into errors while enabled,
// standing in for a database outage mid-flight. skip lets the first N
// statements through before the outage starts.
type brokenStore struct {
	on   bool
	skip int
}

func (b *brokenStore) hook(table string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		if !b.on || tx.Statement.Table != table {
			return
		}
		if b.skip > 0 {
			b.skip--
			return
		}
		tx.AddError(errStoreOffline)
	}
}

func breakUpdates(t *testing.T, db *gorm.DB, table string) *brokenStore {
	b := &brokenStore{}
	require.NoError(t, db.Callback().Update().Before("gorm:update").
		Register("test_broken_updates", b.hook(table)))
	return b
}

func breakQueries(t *testing.T, db *gorm.DB, table string) *brokenStore {
	b := &brokenStore{}
	require.NoError(t, db.Callback().Query().Before("gorm:query").
		Register("test_broken_queries", b.hook(table)))
	return b
}

func submitOne(t *testing.T, p *Pipeline, owner OwnerRef, f FileInput) string {
	result, err := p.Submit(owner, []FileInput{f}, 1)
	require.NoError(t, err)
	require.Len(t, result.Accepted, 1, fmt.Sprintf("expected %s to be accepted", f.FileName))
	return result.Accepted[0].Token
}
