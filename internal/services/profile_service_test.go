package services

import (
	"context"
	"errors"
	"testing"

	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/utils"
)

type fakeProfileRepo struct {
	rows      map[string]*models.Profile
	getErr    error
	upsertErr error
}

func (f *fakeProfileRepo) GetByID(ctx context.Context, userID string) (*models.Profile, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	p, ok := f.rows[userID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (f *fakeProfileRepo) Upsert(ctx context.Context, p *models.Profile) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	if f.rows == nil {
		f.rows = map[string]*models.Profile{}
	}
	cp := *p
	f.rows[p.ID] = &cp
	return nil
}

type fakeRoleRepo struct {
	roles map[string][]models.AppRole
	err   error
}

func (f *fakeRoleRepo) HasRole(ctx context.Context, userID string, role models.AppRole) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	for _, r := range f.roles[userID] {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}

func TestFetchMissingProfileIsNotAnError(t *testing.T) {
	svc := NewProfileService(&fakeProfileRepo{}, &fakeRoleRepo{}, nil)

	p, err := svc.Fetch(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("missing row must not error, got %v", err)
	}
	if p != nil {
		t.Fatalf("expected nil profile, got %+v", p)
	}
}

func TestUpdateCreatesRowWhenAbsent(t *testing.T) {
	repo := &fakeProfileRepo{}
	svc := NewProfileService(repo, &fakeRoleRepo{}, nil)

	bio := "hello"
	p, err := svc.Update(context.Background(), "u1", models.ProfilePatch{Bio: &bio})
	if err != nil {
		t.Fatal(err)
	}
	if p.ID != "u1" || p.Bio != "hello" {
		t.Fatalf("unexpected profile %+v", p)
	}
	if repo.rows["u1"] == nil {
		t.Fatal("row was not persisted")
	}
}

func TestUpdateMergesOnlyPatchedFields(t *testing.T) {
	repo := &fakeProfileRepo{rows: map[string]*models.Profile{
		"u1": {ID: "u1", FullName: "User One", Bio: "old bio"},
	}}
	svc := NewProfileService(repo, &fakeRoleRepo{}, nil)

	bio := "new bio"
	p, err := svc.Update(context.Background(), "u1", models.ProfilePatch{Bio: &bio})
	if err != nil {
		t.Fatal(err)
	}
	if p.Bio != "new bio" || p.FullName != "User One" {
		t.Fatalf("merge broke untouched fields: %+v", p)
	}
}

func TestUpdateRejectedWriteChangesNothing(t *testing.T) {
	repo := &fakeProfileRepo{
		rows:      map[string]*models.Profile{"u1": {ID: "u1", Bio: "original"}},
		upsertErr: errors.New("constraint violation"),
	}
	svc := NewProfileService(repo, &fakeRoleRepo{}, nil)

	bio := "new"
	if _, err := svc.Update(context.Background(), "u1", models.ProfilePatch{Bio: &bio}); err == nil {
		t.Fatal("expected the rejection to propagate")
	}
	if repo.rows["u1"].Bio != "original" {
		t.Fatal("stored row must stay unchanged after a rejected write")
	}
}

func TestCheckAdminRoleFailsClosed(t *testing.T) {
	t.Run("zero rows", func(t *testing.T) {
		svc := NewProfileService(&fakeProfileRepo{}, &fakeRoleRepo{}, nil)
		if svc.CheckAdminRole(context.Background(), "u1") {
			t.Error("no role rows must report non-admin")
		}
	})

	t.Run("lookup error", func(t *testing.T) {
		svc := NewProfileService(&fakeProfileRepo{}, &fakeRoleRepo{err: errors.New("db down")}, nil)
		if svc.CheckAdminRole(context.Background(), "u1") {
			t.Error("lookup errors must report non-admin")
		}
	})

	t.Run("empty user id", func(t *testing.T) {
		svc := NewProfileService(&fakeProfileRepo{}, &fakeRoleRepo{}, nil)
		if svc.CheckAdminRole(context.Background(), "") {
			t.Error("empty user id must report non-admin")
		}
	})

	t.Run("admin row present", func(t *testing.T) {
		roles := &fakeRoleRepo{roles: map[string][]models.AppRole{"u1": {models.RoleAdmin}}}
		svc := NewProfileService(&fakeProfileRepo{}, roles, nil)
		if !svc.CheckAdminRole(context.Background(), "u1") {
			t.Error("admin row should report admin")
		}
	})
}
