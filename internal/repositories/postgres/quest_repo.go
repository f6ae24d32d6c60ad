package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/utils"
)

type QuestRepository interface {
	ListActive(ctx context.Context) ([]models.Quest, error)
	ListByUser(ctx context.Context, userID string) ([]models.UserQuest, error)
	GetUserQuest(ctx context.Context, userID, questID string) (*models.UserQuest, error)
	InsertUserQuest(ctx context.Context, uq *models.UserQuest) error
	UpdateUserQuest(ctx context.Context, uq *models.UserQuest) error
	GetUserQuestByID(ctx context.Context, id string) (*models.UserQuest, error)
}

type questRepo struct {
	db *gorm.DB
}

func NewQuestRepo(db *gorm.DB) QuestRepository {
	return &questRepo{db: db}
}

func (r *questRepo) ListActive(ctx context.Context) ([]models.Quest, error) {
	var out []models.Quest
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *questRepo) ListByUser(ctx context.Context, userID string) ([]models.UserQuest, error) {
	var out []models.UserQuest
	err := r.db.WithContext(ctx).
		Preload("Quest").
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}

func (r *questRepo) GetUserQuest(ctx context.Context, userID, questID string) (*models.UserQuest, error) {
	var uq models.UserQuest
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND quest_id = ?", userID, questID).
		Take(&uq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &uq, err
}

func (r *questRepo) GetUserQuestByID(ctx context.Context, id string) (*models.UserQuest, error) {
	var uq models.UserQuest
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		Take(&uq).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &uq, err
}

func (r *questRepo) InsertUserQuest(ctx context.Context, uq *models.UserQuest) error {
	return r.db.WithContext(ctx).Create(uq).Error
}

func (r *questRepo) UpdateUserQuest(ctx context.Context, uq *models.UserQuest) error {
	return r.db.WithContext(ctx).
		Model(&models.UserQuest{}).
		Where("id = ?", uq.ID).
		Updates(map[string]any{
			"status":       uq.Status,
			"progress":     uq.Progress,
			"completed_at": uq.CompletedAt,
			"updated_at":   uq.UpdatedAt,
		}).Error
}
