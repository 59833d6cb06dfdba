package middleware

import (
	"github.com/eventsphere/api/internal/database"
	"github.com/eventsphere/api/internal/models"
	"github.com/eventsphere/api/internal/response"
	"github.com/gofiber/fiber/v2"
)

func PermissionProtected(module string, action string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID := c.Locals("user_id").(uint)

		var user models.User
		if err := database.DB.Preload("Role.Permissions").First(&user, userID).Error; err != nil {
			return response.Unauthorized(c, "Unauthorized")
		}

		if user.Role == nil {
			return response.Forbidden(c, "User has no role assigned")
		}

		hasPermission := false
		for _, perm := range user.Role.Permissions {
			if perm.Module == module && perm.Action == action {
				hasPermission = true
				break
			}
		}

		if !hasPermission {
			return response.Forbidden(c, "You don't have permission to perform this action")
		}

		return c.Next()
	}
}

func HasPermission(userID uint, module, action string) bool {
	var user models.User
	if err := database.DB.Preload("Role.Permissions").First(&user, userID).Error; err != nil {
		return false
	}

	if user.Role == nil {
		return false
	}

	for _, perm := range user.Role.Permissions {
		if perm.Module == module && perm.Action == action {
			return true
		}
	}
	return false
}

type Module string
type Action string

const (
	MediaModule  Module = "Media"
	EventModule  Module = "Event"
	FolioModule  Module = "Folio"
	CreateAction Action = "create"
	ReadAction   Action = "read"
	UpdateAction Action = "update"
	DeleteAction Action = "delete"
)
