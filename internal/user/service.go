package user

import (
	"github.com/eventsphere/api/internal/database"
	"github.com/eventsphere/api/internal/models"
	"github.com/eventsphere/api/internal/utils"
	"gorm.io/gorm"
)

func CreateUser(db *gorm.DB, u *models.User) (*models.User, error) {
	hash, err := utils.HashPassword(u.Password)
	if err != nil {
		return nil, err
	}
	u.Password = hash
	if err := db.Create(u).Error; err != nil {
		return nil, err
	}
	return u, nil
}

func AssignRole(db *gorm.DB, userID uint, roleID uint) error {
	var u models.User
	if err := db.First(&u, userID).Error; err != nil {
		return err
	}
	u.RoleID = roleID
	return db.Save(&u).Error
}

func HasPermission(db *gorm.DB, userID uint, module string, action string) (bool, error) {
	var u models.User
	if err := db.Preload("Role.Permissions").First(&u, userID).Error; err != nil {
		return false, err
	}
	if u.Role == nil {
		return false, nil
	}
	for _, perm := range u.Role.Permissions {
		if perm.Module == module && perm.Action == action {
			return true, nil
		}
	}
	return false, nil
}

func ListUsers() ([]models.User, error) {
	var users []models.User
	if err := database.DB.Preload("Role").Find(&users).Error; err != nil {
		return nil, err
	}
	return users, nil
}
