package event

import (
	"github.com/eventsphere/api/internal/database"
	"github.com/eventsphere/api/internal/models"
)

func GetEvent(id uint) (*models.Event, error) {
	var ev models.Event
	if err := database.DB.Preload("Creator").First(&ev, id).Error; err != nil {
		return nil, err
	}
	return &ev, nil
}

func ListEvents(page, limit int) ([]models.Event, int64, error) {
	var events []models.Event
	var total int64

	if err := database.DB.Model(&models.Event{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	offset := (page - 1) * limit
	if err := database.DB.Preload("Creator").
		Order("created_at DESC").
		Offset(offset).Limit(limit).
		Find(&events).Error; err != nil {
		return nil, 0, err
	}

	return events, total, nil
}
