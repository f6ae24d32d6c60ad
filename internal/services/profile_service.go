package services

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/khadmahq/khadma/internal/models"
	pgrepo "github.com/khadmahq/khadma/internal/repositories/postgres"
	"github.com/khadmahq/khadma/internal/utils"
)

// ProfileService is the profile store accessor: row fetch/upsert keyed by
// user id plus the admin-role check against the roles table.
type ProfileService interface {
	// Fetch returns (nil, nil) when no profile row exists yet; absence
	// is a result, not an error.
	Fetch(ctx context.Context, userID string) (*models.Profile, error)
	Update(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error)
	// CheckAdminRole fails closed: zero matching rows and lookup errors
	// both report false. Errors are logged, never propagated.
	CheckAdminRole(ctx context.Context, userID string) bool
}

type profileService struct {
	profiles pgrepo.ProfileRepository
	roles    pgrepo.RoleRepository
	log      *logrus.Logger
}

func NewProfileService(profiles pgrepo.ProfileRepository, roles pgrepo.RoleRepository, log *logrus.Logger) ProfileService {
	if log == nil {
		log = logrus.New()
	}
	return &profileService{profiles: profiles, roles: roles, log: log}
}

func (s *profileService) Fetch(ctx context.Context, userID string) (*models.Profile, error) {
	const op = "ProfileService.Fetch"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	p, err := s.profiles.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, nil
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to fetch profile", err)
	}
	return p, nil
}

func (s *profileService) Update(ctx context.Context, userID string, patch models.ProfilePatch) (*models.Profile, error) {
	const op = "ProfileService.Update"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	existing, err := s.Fetch(ctx, userID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		existing = &models.Profile{ID: userID}
	}

	patch.Apply(existing)
	if existing.UpdatedAt.IsZero() {
		existing.UpdatedAt = time.Now().UTC()
	}

	if err := s.profiles.Upsert(ctx, existing); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update profile", err)
	}
	return existing, nil
}

func (s *profileService) CheckAdminRole(ctx context.Context, userID string) bool {
	if userID == "" {
		return false
	}

	ok, err := s.roles.HasRole(ctx, userID, models.RoleAdmin)
	if err != nil {
		s.log.WithError(err).WithField("user_id", userID).Warn("admin role check failed")
		return false
	}
	return ok
}
