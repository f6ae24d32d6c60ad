package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/utils"
)

type BadgeRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.UserBadge, error)
	GetUserBadge(ctx context.Context, userID, badgeID string) (*models.UserBadge, error)
	InsertUserBadge(ctx context.Context, ub *models.UserBadge) error
}

type badgeRepo struct {
	db *gorm.DB
}

func NewBadgeRepo(db *gorm.DB) BadgeRepository {
	return &badgeRepo{db: db}
}

func (r *badgeRepo) ListByUser(ctx context.Context, userID string) ([]models.UserBadge, error) {
	var out []models.UserBadge
	err := r.db.WithContext(ctx).
		Preload("Badge").
		Where("user_id = ?", userID).
		Order("earned_at DESC").
		Find(&out).Error
	return out, err
}

func (r *badgeRepo) GetUserBadge(ctx context.Context, userID, badgeID string) (*models.UserBadge, error) {
	var ub models.UserBadge
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND badge_id = ?", userID, badgeID).
		Take(&ub).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &ub, err
}

func (r *badgeRepo) InsertUserBadge(ctx context.Context, ub *models.UserBadge) error {
	return r.db.WithContext(ctx).Create(ub).Error
}
