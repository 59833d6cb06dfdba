package folio

import (
	"regexp"
	"strings"

	"github.com/eventsphere/api/internal/database"
	"github.com/eventsphere/api/internal/models"
)

var handleCleaner = regexp.MustCompile(`[^a-z0-9]+`)

// MakeHandle turns a title into a URL-safe handle.
func MakeHandle(title string) string {
	h := strings.ToLower(title)
	h = handleCleaner.ReplaceAllString(h, "-")
	return strings.Trim(h, "-")
}

func GetFolio(id uint) (*models.FolioWork, error) {
	var fw models.FolioWork
	if err := database.DB.Preload("Creator").First(&fw, id).Error; err != nil {
		return nil, err
	}
	return &fw, nil
}

func ListFolios(page, limit int) ([]models.FolioWork, int64, error) {
	var works []models.FolioWork
	var total int64

	if err := database.DB.Model(&models.FolioWork{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := database.DB.Preload("Creator").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&works).Error; err != nil {
		return nil, 0, err
	}

	return works, total, nil
}
