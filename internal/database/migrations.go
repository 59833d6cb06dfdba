package database

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"gorm.io/gorm"
)

type Migration struct {
	ID        uint   `gorm:"primaryKey"`
	Version   string `gorm:"uniqueIndex;size:255"`
	AppliedAt string
}

// RunMigrations applies the versioned SQL files under ./migrations. These
// cover what AutoMigrate cannot express: the partial indexes on
// media_assets and the claim index on upload_jobs (state, next_retry_at).
func RunMigrations(db *gorm.DB) error {
	if err := db.AutoMigrate(&Migration{}); err != nil {
		return fmt.Errorf("failed to create migrations table: %v", err)
	}

	migrationsPath := "./migrations"
	files, err := filepath.Glob(filepath.Join(migrationsPath, "*.sql"))
	if err != nil {
		return fmt.Errorf("failed to read migrations directory: %v", err)
	}

	for _, file := range files {
		filename := filepath.Base(file)

		var existingMigration Migration
		result := db.Where("version = ?", filename).First(&existingMigration)

		if result.Error == nil {
			log.Printf("⏭️  Skipping migration: %s (already applied)", filename)
			continue
		}

		sqlContent, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("failed to read migration file %s: %v", filename, err)
		}

		log.Printf("▶️  Applying migration: %s", filename)
		if err := db.Exec(string(sqlContent)).Error; err != nil {
			return fmt.Errorf("failed to execute migration %s: %v", filename, err)
		}

		migration := Migration{
			Version:   filename,
			AppliedAt: fmt.Sprintf("%v", db.NowFunc()),
		}
		if err := db.Create(&migration).Error; err != nil {
			return fmt.Errorf("failed to record migration %s: %v", filename, err)
		}

		log.Printf("✅ Applied migration: %s", filename)
	}

	log.Println("🎉 All migrations completed successfully")
	return nil
}
