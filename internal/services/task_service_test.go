package services

import (
	"context"
	"testing"

	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/utils"
)

type fakeTaskRepo struct {
	active   []models.Task
	apps     map[string]*models.TaskApplication // userID+"/"+taskID
	inserted int
}

func (f *fakeTaskRepo) ListActive(ctx context.Context) ([]models.Task, error) {
	return f.active, nil
}

func (f *fakeTaskRepo) ListApplicationsByUser(ctx context.Context, userID string) ([]models.TaskApplication, error) {
	var out []models.TaskApplication
	for _, a := range f.apps {
		if a.ApplicantID == userID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (f *fakeTaskRepo) GetApplication(ctx context.Context, userID, taskID string) (*models.TaskApplication, error) {
	a, ok := f.apps[userID+"/"+taskID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *a
	return &cp, nil
}

func (f *fakeTaskRepo) InsertApplication(ctx context.Context, a *models.TaskApplication) error {
	if f.apps == nil {
		f.apps = map[string]*models.TaskApplication{}
	}
	cp := *a
	f.apps[a.ApplicantID+"/"+a.TaskID] = &cp
	f.inserted++
	return nil
}

func TestApplyIsIdempotent(t *testing.T) {
	repo := &fakeTaskRepo{}
	svc := NewTaskService(repo, nil)

	first, err := svc.Apply(context.Background(), "u1", "t1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Apply(context.Background(), "u1", "t1")
	if err != nil {
		t.Fatal(err)
	}

	if repo.inserted != 1 {
		t.Fatalf("expected one insert, got %d", repo.inserted)
	}
	if first.ID != second.ID {
		t.Error("re-applying should return the existing application")
	}
	if first.Status != models.ApplicationApplied {
		t.Errorf("new application status = %q", first.Status)
	}
}

func TestApplyValidation(t *testing.T) {
	svc := NewTaskService(&fakeTaskRepo{}, nil)
	if _, err := svc.Apply(context.Background(), "", "t1"); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("missing user should fail, got %v", err)
	}
	if _, err := svc.Apply(context.Background(), "u1", ""); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("missing task should fail, got %v", err)
	}
}

type fakeBadgeRepo struct {
	held     map[string]*models.UserBadge // userID+"/"+badgeID
	inserted int
}

func (f *fakeBadgeRepo) ListByUser(ctx context.Context, userID string) ([]models.UserBadge, error) {
	var out []models.UserBadge
	for _, b := range f.held {
		if b.UserID == userID {
			out = append(out, *b)
		}
	}
	return out, nil
}

func (f *fakeBadgeRepo) GetUserBadge(ctx context.Context, userID, badgeID string) (*models.UserBadge, error) {
	b, ok := f.held[userID+"/"+badgeID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *b
	return &cp, nil
}

func (f *fakeBadgeRepo) InsertUserBadge(ctx context.Context, ub *models.UserBadge) error {
	if f.held == nil {
		f.held = map[string]*models.UserBadge{}
	}
	cp := *ub
	f.held[ub.UserID+"/"+ub.BadgeID] = &cp
	f.inserted++
	return nil
}

func TestAwardIsIdempotent(t *testing.T) {
	repo := &fakeBadgeRepo{}
	svc := NewBadgeService(repo)

	first, err := svc.Award(context.Background(), "u1", "b1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.Award(context.Background(), "u1", "b1")
	if err != nil {
		t.Fatal(err)
	}

	if repo.inserted != 1 {
		t.Fatalf("expected one insert, got %d", repo.inserted)
	}
	if first.ID != second.ID {
		t.Error("regranting should return the existing badge")
	}
}
