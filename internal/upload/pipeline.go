package upload

import (
	"context"
	"time"

	"github.com/eventsphere/api/internal/cdn"
	"gorm.io/gorm"
)

type Config struct {
	Workers     int
	MaxFileSize int64
	MaxAttempts int
	Lease       time.Duration
}

func DefaultConfig() Config {
	return Config{
		Workers:     4,
		MaxFileSize: 10 * 1024 * 1024,
		MaxAttempts: 3,
		Lease:       60 * time.Second,
	}
}

// Pipeline wires the async upload subsystem together: orchestrator in front,
// queue in the middle, worker pool and reconciler behind.
type Pipeline struct {
	db    *gorm.DB
	cdn   cdn.Client
	queue *Queue
	orch  *Orchestrator
	pool  *Pool
	rec   *Reconciler
}

func NewPipeline(db *gorm.DB, client cdn.Client, cfg Config) *Pipeline {
	if cfg.Workers < 1 {
		cfg.Workers = 1
	}
	if cfg.MaxFileSize <= 0 {
		cfg.MaxFileSize = 10 * 1024 * 1024
	}
	if cfg.MaxAttempts < 1 {
		cfg.MaxAttempts = 3
	}
	if cfg.Lease <= 0 {
		cfg.Lease = 60 * time.Second
	}

	queue := NewQueue(db, cfg.Lease)
	rec := NewReconciler(db, client)
	return &Pipeline{
		db:    db,
		cdn:   client,
		queue: queue,
		orch: &Orchestrator{
			db:          db,
			queue:       queue,
			rec:         rec,
			maxFileSize: cfg.MaxFileSize,
			maxAttempts: cfg.MaxAttempts,
		},
		pool: NewPool(db, queue, client, rec, cfg.Workers),
		rec:  rec,
	}
}

// Start launches the worker pool. Workers stop when ctx is cancelled; queued
// jobs survive in the database and are picked up on the next start.
func (p *Pipeline) Start(ctx context.Context) {
	p.pool.Start(ctx)
}

func (p *Pipeline) Submit(owner OwnerRef, files []FileInput, uploadedBy uint) (*BatchResult, error) {
	return p.orch.Submit(owner, files, uploadedBy)
}

func (p *Pipeline) GetStatus(token string) (*UploadStatus, error) {
	return GetStatus(p.db, token)
}

func (p *Pipeline) SweepExpiredLeases() (int64, error) {
	return p.queue.SweepExpiredLeases()
}

func (p *Pipeline) QueueDepth() (int64, error) {
	return p.queue.Depth()
}
