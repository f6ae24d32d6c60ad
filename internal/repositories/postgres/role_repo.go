package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/khadmahq/khadma/internal/models"
)

type RoleRepository interface {
	HasRole(ctx context.Context, userID string, role models.AppRole) (bool, error)
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) HasRole(ctx context.Context, userID string, role models.AppRole) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.UserRole{}).
		Where("user_id = ? AND role = ?", userID, role).
		Count(&count).Error
	return count > 0, err
}
