package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/eventsphere/api/internal/cdn"
	"github.com/eventsphere/api/internal/config"
	"github.com/eventsphere/api/internal/database"
	"github.com/eventsphere/api/internal/models"
	"github.com/eventsphere/api/internal/role"
	"github.com/eventsphere/api/internal/server"
	"github.com/eventsphere/api/internal/upload"
	"github.com/eventsphere/api/internal/utils"

	"github.com/robfig/cron/v3"
)

func main() {
	cfg := config.Load()

	if err := utils.ValidateJWTSecret(); err != nil {
		log.Fatal("❌ JWT Configuration Error: ", err)
	}
	log.Println("✅ JWT secret validated")

	requiredEnvVars := map[string]string{
		"DB_HOST":     os.Getenv("DB_HOST"),
		"DB_NAME":     os.Getenv("DB_NAME"),
		"DB_USER":     os.Getenv("DB_USER"),
		"DB_PASSWORD": os.Getenv("DB_PASSWORD"),
	}

	for key, value := range requiredEnvVars {
		if value == "" {
			log.Fatalf("❌ Required environment variable %s is not set", key)
		}
	}
	log.Println("✅ Required environment variables validated")

	// ========== DATABASE SETUP ==========
	db, err := database.Connect(cfg)
	if err != nil {
		log.Fatal("❌ Database connection failed:", err)
	}
	database.DB = db

	if err := database.Migrate(db); err != nil {
		log.Fatal("❌ Migration failed: ", err)
	}
	log.Println("✅ Database migrated successfully")

	if err := database.RunMigrations(db); err != nil {
		log.Printf("⚠️  SQL migrations failed: %v", err)
		log.Println("💡 Run migrations manually: psql -U user -d dbname -f migrations/001_add_media_indexes.sql")
	} else {
		log.Println("✅ SQL migrations completed successfully")
	}

	// ========== CDN SETUP ==========
	var client cdn.Client
	if cfg.UseS3 && cfg.S3Bucket != "" && cfg.S3Region != "" {
		s3Client, err := cdn.NewS3Client(cfg.S3Bucket, cfg.S3Region, cfg.CloudFrontURL)
		if err != nil {
			log.Fatal("❌ S3 initialization failed:", err)
		}
		client = s3Client
		log.Printf("☁️  Using S3: %s (region: %s)", cfg.S3Bucket, cfg.S3Region)
	} else {
		localClient, err := cdn.NewLocalClient()
		if err != nil {
			log.Fatal("❌ Failed to initialize local storage:", err)
		}
		client = localClient
		log.Println("💾 Using LOCAL storage mode (./uploads/)")
	}

	// ========== UPLOAD PIPELINE ==========
	pipeline := upload.NewPipeline(db, client, upload.Config{
		Workers:     cfg.UploadWorkers,
		MaxFileSize: cfg.UploadMaxSizeMB * 1024 * 1024,
		MaxAttempts: cfg.UploadMaxAttempts,
		Lease:       cfg.UploadLease,
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	pipeline.Start(ctx)
	log.Printf("⚙️  Upload pipeline started (%d workers)", cfg.UploadWorkers)

	// ========== SEED DEFAULT DATA ==========
	if err := role.SeedDefaultRoles(); err != nil {
		log.Println("⚠️  Failed to seed roles (may already exist):", err)
	} else {
		log.Println("✅ Default roles seeded")
	}

	// ========== BACKGROUND JOBS ==========
	scheduler := cron.New()

	scheduler.AddFunc("@every 30s", func() {
		reclaimed, err := pipeline.SweepExpiredLeases()
		if err != nil {
			log.Printf("⚠️  Lease sweep failed: %v", err)
			return
		}
		if reclaimed > 0 {
			log.Printf("🧹 Reclaimed %d stuck upload jobs", reclaimed)
		}
	})

	scheduler.AddFunc("@hourly", func() {
		result := database.DB.Where("expires_at < ?", time.Now()).Delete(&models.RefreshToken{})
		if result.RowsAffected > 0 {
			log.Printf("🧹 Cleaned up %d expired refresh tokens", result.RowsAffected)
		}
	})

	scheduler.Start()
	defer scheduler.Stop()

	// ========== START SERVER ==========
	app := server.New(pipeline)

	log.Printf("🚀 EventSphere API starting on %s", cfg.ServerAddr)
	log.Printf("🔐 JWT Authentication: Enabled")

	if err := app.Listen(cfg.ServerAddr); err != nil {
		log.Fatal("❌ Failed to start server:", err)
	}
}
