package services

import (
	"context"
	"testing"

	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/utils"
)

type fakeQuestRepo struct {
	active     []models.Quest
	userQuests map[string]*models.UserQuest // keyed by userID+"/"+questID
	byID       map[string]*models.UserQuest
	inserted   int
}

func (f *fakeQuestRepo) ListActive(ctx context.Context) ([]models.Quest, error) {
	return f.active, nil
}

func (f *fakeQuestRepo) ListByUser(ctx context.Context, userID string) ([]models.UserQuest, error) {
	var out []models.UserQuest
	for _, uq := range f.userQuests {
		if uq.UserID == userID {
			out = append(out, *uq)
		}
	}
	return out, nil
}

func (f *fakeQuestRepo) GetUserQuest(ctx context.Context, userID, questID string) (*models.UserQuest, error) {
	uq, ok := f.userQuests[userID+"/"+questID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *uq
	return &cp, nil
}

func (f *fakeQuestRepo) InsertUserQuest(ctx context.Context, uq *models.UserQuest) error {
	if f.userQuests == nil {
		f.userQuests = map[string]*models.UserQuest{}
	}
	if f.byID == nil {
		f.byID = map[string]*models.UserQuest{}
	}
	cp := *uq
	f.userQuests[uq.UserID+"/"+uq.QuestID] = &cp
	f.byID[uq.ID] = &cp
	f.inserted++
	return nil
}

func (f *fakeQuestRepo) UpdateUserQuest(ctx context.Context, uq *models.UserQuest) error {
	cp := *uq
	f.byID[uq.ID] = &cp
	f.userQuests[uq.UserID+"/"+uq.QuestID] = &cp
	return nil
}

func (f *fakeQuestRepo) GetUserQuestByID(ctx context.Context, id string) (*models.UserQuest, error) {
	uq, ok := f.byID[id]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *uq
	return &cp, nil
}

func TestStartQuestIsIdempotent(t *testing.T) {
	repo := &fakeQuestRepo{}
	svc := NewQuestService(repo, nil)

	first, err := svc.StartQuest(context.Background(), "u1", "q1")
	if err != nil {
		t.Fatal(err)
	}
	second, err := svc.StartQuest(context.Background(), "u1", "q1")
	if err != nil {
		t.Fatal(err)
	}

	if repo.inserted != 1 {
		t.Fatalf("expected a single insert, got %d", repo.inserted)
	}
	if first.ID != second.ID {
		t.Error("second start should return the existing row")
	}
	if first.Status != models.QuestStarted || first.Progress != 0 {
		t.Errorf("new row has wrong defaults: %+v", first)
	}
}

func TestUpdateProgressValidation(t *testing.T) {
	svc := NewQuestService(&fakeQuestRepo{}, nil)

	if _, err := svc.UpdateProgress(context.Background(), "id", 140, models.QuestInProgress); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("progress out of range should fail, got %v", err)
	}
	if _, err := svc.UpdateProgress(context.Background(), "id", 50, models.QuestStatus("paused")); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("unknown status should fail, got %v", err)
	}
	if _, err := svc.UpdateProgress(context.Background(), "id", 50, models.QuestAvailable); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("available is derived only and must not be stored, got %v", err)
	}
	if _, err := svc.UpdateProgress(context.Background(), "missing", 50, models.QuestInProgress); !utils.IsCode(err, utils.CodeNotFound) {
		t.Errorf("missing row should report not found, got %v", err)
	}
}

func TestUpdateProgressCompletionStampsTime(t *testing.T) {
	repo := &fakeQuestRepo{}
	svc := NewQuestService(repo, nil)

	uq, err := svc.StartQuest(context.Background(), "u1", "q1")
	if err != nil {
		t.Fatal(err)
	}

	done, err := svc.UpdateProgress(context.Background(), uq.ID, 100, models.QuestCompleted)
	if err != nil {
		t.Fatal(err)
	}
	if done.CompletedAt == nil {
		t.Error("completion must stamp CompletedAt")
	}
	if done.Progress != 100 || done.Status != models.QuestCompleted {
		t.Errorf("unexpected row after completion: %+v", done)
	}
}

func TestDeriveQuestStatus(t *testing.T) {
	q := models.Quest{ID: "q1"}
	if got := DeriveQuestStatus(q, nil); got != models.QuestAvailable {
		t.Errorf("no row should derive available, got %q", got)
	}

	uqs := []models.UserQuest{{QuestID: "q1", Status: models.QuestInProgress}}
	if got := DeriveQuestStatus(q, uqs); got != models.QuestInProgress {
		t.Errorf("expected in_progress, got %q", got)
	}
}

func TestFilterQuests(t *testing.T) {
	quests := []models.Quest{
		{ID: "q1", Title: "Build a REST API", Description: "Go backend", Category: "backend", Difficulty: "medium"},
		{ID: "q2", Title: "Design a landing page", Description: "CSS layout", Category: "frontend", Difficulty: "easy"},
		{ID: "q3", Title: "API versioning", Description: "compatibility", Category: "backend", Difficulty: "hard"},
	}
	userQuests := []models.UserQuest{
		{QuestID: "q1", Status: models.QuestCompleted},
		{QuestID: "q3", Status: models.QuestStarted},
	}

	svc := NewQuestService(&fakeQuestRepo{}, nil)

	t.Run("search matches title and description", func(t *testing.T) {
		got := svc.FilterQuests(quests, userQuests, QuestFilter{Search: "api"})
		if len(got) != 2 {
			t.Fatalf("expected q1 and q3, got %d", len(got))
		}
	})

	t.Run("category all passes everything", func(t *testing.T) {
		if got := svc.FilterQuests(quests, userQuests, QuestFilter{Category: "all"}); len(got) != 3 {
			t.Fatalf("expected all quests, got %d", len(got))
		}
	})

	t.Run("difficulty narrows", func(t *testing.T) {
		got := svc.FilterQuests(quests, userQuests, QuestFilter{Difficulty: "easy"})
		if len(got) != 1 || got[0].ID != "q2" {
			t.Fatalf("expected only q2, got %+v", got)
		}
	})

	t.Run("status in_progress covers started rows", func(t *testing.T) {
		got := svc.FilterQuests(quests, userQuests, QuestFilter{Status: "in_progress"})
		if len(got) != 1 || got[0].ID != "q3" {
			t.Fatalf("expected q3, got %+v", got)
		}
	})

	t.Run("status available means no row", func(t *testing.T) {
		got := svc.FilterQuests(quests, userQuests, QuestFilter{Status: "available"})
		if len(got) != 1 || got[0].ID != "q2" {
			t.Fatalf("expected q2, got %+v", got)
		}
	})
}
