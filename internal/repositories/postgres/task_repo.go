package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/utils"
)

type TaskRepository interface {
	ListActive(ctx context.Context) ([]models.Task, error)
	ListApplicationsByUser(ctx context.Context, userID string) ([]models.TaskApplication, error)
	GetApplication(ctx context.Context, userID, taskID string) (*models.TaskApplication, error)
	InsertApplication(ctx context.Context, a *models.TaskApplication) error
}

type taskRepo struct {
	db *gorm.DB
}

func NewTaskRepo(db *gorm.DB) TaskRepository {
	return &taskRepo{db: db}
}

func (r *taskRepo) ListActive(ctx context.Context) ([]models.Task, error) {
	var out []models.Task
	err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("posted_date DESC").
		Find(&out).Error
	return out, err
}

func (r *taskRepo) ListApplicationsByUser(ctx context.Context, userID string) ([]models.TaskApplication, error) {
	var out []models.TaskApplication
	err := r.db.WithContext(ctx).
		Preload("Task").
		Where("applicant_id = ?", userID).
		Order("applied_at DESC").
		Find(&out).Error
	return out, err
}

func (r *taskRepo) GetApplication(ctx context.Context, userID, taskID string) (*models.TaskApplication, error) {
	var a models.TaskApplication
	err := r.db.WithContext(ctx).
		Where("applicant_id = ? AND task_id = ?", userID, taskID).
		Take(&a).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &a, err
}

func (r *taskRepo) InsertApplication(ctx context.Context, a *models.TaskApplication) error {
	return r.db.WithContext(ctx).Create(a).Error
}
