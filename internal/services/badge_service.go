package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/khadmahq/khadma/internal/models"
	pgrepo "github.com/khadmahq/khadma/internal/repositories/postgres"
	"github.com/khadmahq/khadma/internal/utils"
)

type BadgeService interface {
	ListByUser(ctx context.Context, userID string) ([]models.UserBadge, error)
	Award(ctx context.Context, userID, badgeID string) (*models.UserBadge, error)
}

type badgeService struct {
	badges pgrepo.BadgeRepository
}

func NewBadgeService(badges pgrepo.BadgeRepository) BadgeService {
	return &badgeService{badges: badges}
}

func (s *badgeService) ListByUser(ctx context.Context, userID string) ([]models.UserBadge, error) {
	const op = "BadgeService.ListByUser"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	out, err := s.badges.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list badges", err)
	}
	return out, nil
}

// Award is idempotent: a badge the user already holds is returned as is.
func (s *badgeService) Award(ctx context.Context, userID, badgeID string) (*models.UserBadge, error) {
	const op = "BadgeService.Award"

	if userID == "" || badgeID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and badge_id are required", nil)
	}

	existing, err := s.badges.GetUserBadge(ctx, userID, badgeID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to check existing badge", err)
	}

	ub := &models.UserBadge{
		ID:       uuid.NewString(),
		UserID:   userID,
		BadgeID:  badgeID,
		EarnedAt: time.Now().UTC(),
	}
	if err := s.badges.InsertUserBadge(ctx, ub); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to award badge", err)
	}
	return ub, nil
}
