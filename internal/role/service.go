package role

import (
	"github.com/eventsphere/api/internal/models"
	"gorm.io/gorm"
)

// CreateRole creates a role together with its permission set in one
// transaction.
func CreateRole(db *gorm.DB, name, description string, perms []models.Permission) (*models.Role, error) {
	role := models.Role{Name: name, Description: description}
	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&role).Error; err != nil {
			return err
		}
		return ReplacePermissions(tx, role.ID, perms)
	})
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// ReplacePermissions swaps a role's permission set for the given one. Callers
// pass their transaction handle so the swap stays atomic with the rest of the
// role update.
func ReplacePermissions(tx *gorm.DB, roleID uint, perms []models.Permission) error {
	if err := tx.Where("role_id = ?", roleID).Delete(&models.Permission{}).Error; err != nil {
		return err
	}
	for _, p := range perms {
		p.RoleID = roleID
		if err := tx.Create(&p).Error; err != nil {
			return err
		}
	}
	return nil
}
