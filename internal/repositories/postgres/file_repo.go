package postgres

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/utils"
)

type FileRepository interface {
	Insert(ctx context.Context, f *models.ProfileFile) error
	LatestByUser(ctx context.Context, userID string, kind models.FileKind) (*models.ProfileFile, error)
}

type fileRepo struct {
	db *gorm.DB
}

func NewFileRepo(db *gorm.DB) FileRepository {
	return &fileRepo{db: db}
}

func (r *fileRepo) Insert(ctx context.Context, f *models.ProfileFile) error {
	return r.db.WithContext(ctx).Create(f).Error
}

func (r *fileRepo) LatestByUser(ctx context.Context, userID string, kind models.FileKind) (*models.ProfileFile, error) {
	var f models.ProfileFile
	err := r.db.WithContext(ctx).
		Where("user_id = ? AND kind = ?", userID, kind).
		Order("upload_at DESC").
		Take(&f).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, utils.ErrNotFound
	}
	return &f, err
}
