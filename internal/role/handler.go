package role

import (
	"github.com/eventsphere/api/internal/database"
	"github.com/eventsphere/api/internal/models"
	"github.com/eventsphere/api/internal/response"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

func CreateRoleHandler(c *fiber.Ctx) error {
	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Permissions []struct {
			Module string `json:"module"`
			Action string `json:"action"`
		} `json:"permissions"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	if body.Name == "" {
		return response.ValidationError(c, map[string]string{
			"name": "role name is required",
		})
	}

	var existing models.Role
	if err := database.DB.Where("name = ?", body.Name).First(&existing).Error; err == nil {
		return response.Conflict(c, "Role with this name already exists")
	}

	perms := make([]models.Permission, 0, len(body.Permissions))
	for _, p := range body.Permissions {
		perms = append(perms, models.Permission{Module: p.Module, Action: p.Action})
	}

	role, err := CreateRole(database.DB, body.Name, body.Description, perms)
	if err != nil {
		return response.InternalError(c, "Failed to create role")
	}

	database.DB.Preload("Permissions").First(role, role.ID)

	return response.Created(c, role, "Role created successfully")
}

func ListRolesHandler(c *fiber.Ctx) error {
	var roles []models.Role
	if err := database.DB.Preload("Permissions").Find(&roles).Error; err != nil {
		return response.InternalError(c, "Failed to fetch roles")
	}

	return response.Success(c, roles, "Roles retrieved successfully")
}

func GetRoleHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid role ID", nil)
	}

	var role models.Role
	if err := database.DB.Preload("Permissions").First(&role, id).Error; err != nil {
		return response.NotFound(c, "Role")
	}

	return response.Success(c, role, "Role retrieved successfully")
}

func UpdateRoleHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid role ID", nil)
	}

	var body struct {
		Name        string `json:"name"`
		Description string `json:"description"`
		Permissions []struct {
			Module string `json:"module"`
			Action string `json:"action"`
		} `json:"permissions"`
	}

	if err := c.BodyParser(&body); err != nil {
		return response.BadRequest(c, "Invalid request body", err.Error())
	}

	var role models.Role
	if err := database.DB.First(&role, id).Error; err != nil {
		return response.NotFound(c, "Role")
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if body.Name != "" {
			role.Name = body.Name
		}
		if body.Description != "" {
			role.Description = body.Description
		}
		if err := tx.Save(&role).Error; err != nil {
			return err
		}

		if body.Permissions != nil {
			perms := make([]models.Permission, 0, len(body.Permissions))
			for _, p := range body.Permissions {
				perms = append(perms, models.Permission{Module: p.Module, Action: p.Action})
			}
			if err := ReplacePermissions(tx, role.ID, perms); err != nil {
				return err
			}
		}

		return nil
	})

	if err != nil {
		return response.InternalError(c, "Failed to update role")
	}

	database.DB.Preload("Permissions").First(&role, role.ID)

	return response.Success(c, role, "Role updated successfully")
}

func DeleteRoleHandler(c *fiber.Ctx) error {
	id, err := c.ParamsInt("id")
	if err != nil {
		return response.BadRequest(c, "Invalid role ID", nil)
	}

	var role models.Role
	if err := database.DB.First(&role, id).Error; err != nil {
		return response.NotFound(c, "Role")
	}

	var userCount int64
	database.DB.Model(&models.User{}).Where("role_id = ?", role.ID).Count(&userCount)
	if userCount > 0 {
		return response.Conflict(c, "Role is still assigned to users")
	}

	if err := database.DB.Delete(&role).Error; err != nil {
		return response.InternalError(c, "Failed to delete role")
	}

	return response.NoContent(c)
}
