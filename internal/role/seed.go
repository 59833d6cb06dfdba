package role

import (
	"github.com/eventsphere/api/internal/database"
	"github.com/eventsphere/api/internal/models"
)

// SeedDefaultRoles creates the built-in roles if they don't exist yet.
// Safe to call on every startup.
func SeedDefaultRoles() error {
	seeds := []struct {
		name        string
		description string
		perms       []models.Permission
	}{
		{
			name:        "admin",
			description: "Full access to all resources",
			perms: []models.Permission{
				{Module: "Media", Action: "create"},
				{Module: "Media", Action: "read"},
				{Module: "Media", Action: "update"},
				{Module: "Media", Action: "delete"},
				{Module: "Event", Action: "create"},
				{Module: "Event", Action: "read"},
				{Module: "Event", Action: "update"},
				{Module: "Event", Action: "delete"},
				{Module: "Folio", Action: "create"},
				{Module: "Folio", Action: "read"},
				{Module: "Folio", Action: "update"},
				{Module: "Folio", Action: "delete"},
			},
		},
		{
			name:        "organizer",
			description: "Can manage own events, folios, and their media",
			perms: []models.Permission{
				{Module: "Media", Action: "create"},
				{Module: "Media", Action: "read"},
				{Module: "Media", Action: "update"},
				{Module: "Media", Action: "delete"},
				{Module: "Event", Action: "create"},
				{Module: "Event", Action: "read"},
				{Module: "Event", Action: "update"},
				{Module: "Folio", Action: "create"},
				{Module: "Folio", Action: "read"},
				{Module: "Folio", Action: "update"},
			},
		},
		{
			name:        "viewer",
			description: "Read only access",
			perms: []models.Permission{
				{Module: "Media", Action: "read"},
				{Module: "Event", Action: "read"},
				{Module: "Folio", Action: "read"},
			},
		},
	}

	for _, s := range seeds {
		var existing models.Role
		if err := database.DB.Where("name = ?", s.name).First(&existing).Error; err == nil {
			continue
		}
		if _, err := CreateRole(database.DB, s.name, s.description, s.perms); err != nil {
			return err
		}
	}

	return nil
}
