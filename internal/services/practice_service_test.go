package services

import (
	"context"
	"testing"
	"time"

	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/utils"
)

type fakePracticeRepo struct {
	sessions map[string]*models.PracticeSession
	turns    []models.PracticeTurn
}

func (f *fakePracticeRepo) CreateSession(ctx context.Context, s *models.PracticeSession) error {
	if f.sessions == nil {
		f.sessions = map[string]*models.PracticeSession{}
	}
	cp := *s
	f.sessions[s.PracticeID] = &cp
	return nil
}

func (f *fakePracticeRepo) GetSession(ctx context.Context, practiceID string) (*models.PracticeSession, error) {
	s, ok := f.sessions[practiceID]
	if !ok {
		return nil, utils.ErrNotFound
	}
	cp := *s
	return &cp, nil
}

func (f *fakePracticeRepo) EndSession(ctx context.Context, practiceID string, endedAt time.Time) error {
	s, ok := f.sessions[practiceID]
	if !ok {
		return utils.ErrNotFound
	}
	s.Status = "ended"
	s.EndedAt = &endedAt
	return nil
}

func (f *fakePracticeRepo) InsertTurn(ctx context.Context, t *models.PracticeTurn) error {
	f.turns = append(f.turns, *t)
	return nil
}

func (f *fakePracticeRepo) UpdateTurnCoach(ctx context.Context, practiceID string, turnIndex int64, response, status string, processingMS int64) error {
	for i := range f.turns {
		if f.turns[i].PracticeID == practiceID && f.turns[i].TurnIndex == turnIndex {
			f.turns[i].CoachResponse = response
			f.turns[i].CoachStatus = status
			f.turns[i].ProcessingTimeMS = processingMS
			return nil
		}
	}
	return utils.ErrNotFound
}

func (f *fakePracticeRepo) ListTurns(ctx context.Context, practiceID string, limit int64) ([]models.PracticeTurn, error) {
	var out []models.PracticeTurn
	for _, t := range f.turns {
		if t.PracticeID == practiceID {
			out = append(out, t)
		}
	}
	return out, nil
}

func TestPracticeLifecycle(t *testing.T) {
	repo := &fakePracticeRepo{}
	svc := NewPracticeService(repo, time.Hour)

	ps, err := svc.Start(context.Background(), "u1", "backend engineer")
	if err != nil {
		t.Fatal(err)
	}
	if ps.PracticeID == "" || ps.Status != "active" {
		t.Fatalf("unexpected session %+v", ps)
	}

	got, err := svc.Get(context.Background(), ps.PracticeID)
	if err != nil || got.UserID != "u1" {
		t.Fatalf("get failed: %v %+v", err, got)
	}

	ended, err := svc.End(context.Background(), ps.PracticeID)
	if err != nil {
		t.Fatal(err)
	}
	if ended.Status != "ended" || ended.EndedAt == nil {
		t.Fatalf("session not ended: %+v", ended)
	}
}

func TestPracticeGetUnknownIsNotFound(t *testing.T) {
	svc := NewPracticeService(&fakePracticeRepo{}, time.Hour)
	if _, err := svc.Get(context.Background(), "missing"); !utils.IsCode(err, utils.CodeNotFound) {
		t.Fatalf("expected NOT_FOUND, got %v", err)
	}
}

func TestInsertTurnStampsTTLAndDefaults(t *testing.T) {
	repo := &fakePracticeRepo{}
	svc := NewPracticeService(repo, 2*time.Hour)

	before := time.Now().UTC()
	turn, err := svc.InsertTurn(context.Background(), "p1", 1, "q", "a")
	if err != nil {
		t.Fatal(err)
	}
	if turn.CoachStatus != "pending" {
		t.Errorf("new turn should be pending, got %q", turn.CoachStatus)
	}
	if turn.ExpiresAt.Before(before.Add(2*time.Hour - time.Minute)) {
		t.Errorf("TTL not applied: %v", turn.ExpiresAt)
	}
}

func TestInsertTurnValidation(t *testing.T) {
	svc := NewPracticeService(&fakePracticeRepo{}, time.Hour)

	if _, err := svc.InsertTurn(context.Background(), "p1", 0, "q", "a"); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("turn_index 0 should fail, got %v", err)
	}
	if _, err := svc.InsertTurn(context.Background(), "p1", 1, "", "a"); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("missing question should fail, got %v", err)
	}
}

func TestMarkCoachUpdatesTurn(t *testing.T) {
	repo := &fakePracticeRepo{}
	svc := NewPracticeService(repo, time.Hour)

	if _, err := svc.InsertTurn(context.Background(), "p1", 1, "q", "a"); err != nil {
		t.Fatal(err)
	}
	if err := svc.MarkCoach(context.Background(), "p1", 1, "nice answer", "done", 1200); err != nil {
		t.Fatal(err)
	}

	turns, err := svc.ListTurns(context.Background(), "p1", 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(turns) != 1 || turns[0].CoachStatus != "done" || turns[0].CoachResponse != "nice answer" {
		t.Fatalf("coach fields not applied: %+v", turns)
	}
}
