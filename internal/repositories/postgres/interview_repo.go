package postgres

import (
	"context"

	"gorm.io/gorm"

	"github.com/khadmahq/khadma/internal/models"
)

type InterviewRepository interface {
	Insert(ctx context.Context, sim *models.InterviewSimulation) error
	ListByUser(ctx context.Context, userID string) ([]models.InterviewSimulation, error)
}

type interviewRepo struct {
	db *gorm.DB
}

func NewInterviewRepo(db *gorm.DB) InterviewRepository {
	return &interviewRepo{db: db}
}

func (r *interviewRepo) Insert(ctx context.Context, sim *models.InterviewSimulation) error {
	return r.db.WithContext(ctx).Create(sim).Error
}

func (r *interviewRepo) ListByUser(ctx context.Context, userID string) ([]models.InterviewSimulation, error) {
	var out []models.InterviewSimulation
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&out).Error
	return out, err
}
