package services

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/utils"
)

type fakeInterviewRepo struct {
	rows      []models.InterviewSimulation
	insertErr error
}

func (f *fakeInterviewRepo) Insert(ctx context.Context, sim *models.InterviewSimulation) error {
	if f.insertErr != nil {
		return f.insertErr
	}
	f.rows = append(f.rows, *sim)
	return nil
}

func (f *fakeInterviewRepo) ListByUser(ctx context.Context, userID string) ([]models.InterviewSimulation, error) {
	var out []models.InterviewSimulation
	for _, r := range f.rows {
		if r.UserID == userID {
			out = append(out, r)
		}
	}
	return out, nil
}

type fakeFeedbackProvider struct {
	fb  *models.Feedback
	err error
}

func (f *fakeFeedbackProvider) Review(ctx context.Context, question, answer string) (*models.Feedback, error) {
	if f.err != nil {
		return nil, f.err
	}
	cp := *f.fb
	return &cp, nil
}

func (f *fakeFeedbackProvider) StreamCoach(ctx context.Context, question, answer string) (<-chan string, <-chan error) {
	ch := make(chan string)
	errs := make(chan error, 1)
	close(ch)
	return ch, errs
}

func (f *fakeFeedbackProvider) Close() error { return nil }

func TestReviewPersistsSimulationWithFeedback(t *testing.T) {
	repo := &fakeInterviewRepo{}
	ai := &fakeFeedbackProvider{fb: &models.Feedback{
		Score:           7,
		Strengths:       []string{"clear structure"},
		AreasToImprove:  []string{"add metrics"},
		Suggestions:     "quantify the impact",
		OverallFeedback: "solid answer",
	}}
	svc := NewInterviewService(repo, ai)

	sim, fb, err := svc.Review(context.Background(), "u1", "Tell me about a challenge", "I migrated a service")
	if err != nil {
		t.Fatal(err)
	}
	if fb.Score != 7 {
		t.Errorf("score = %d", fb.Score)
	}
	if len(repo.rows) != 1 {
		t.Fatalf("expected one persisted simulation, got %d", len(repo.rows))
	}

	var stored models.Feedback
	if err := json.Unmarshal(sim.Feedback, &stored); err != nil {
		t.Fatalf("persisted feedback is not valid json: %v", err)
	}
	if stored.OverallFeedback != "solid answer" {
		t.Errorf("stored feedback mismatch: %+v", stored)
	}
}

func TestReviewValidatesInput(t *testing.T) {
	svc := NewInterviewService(&fakeInterviewRepo{}, &fakeFeedbackProvider{fb: &models.Feedback{Score: 5}})

	if _, _, err := svc.Review(context.Background(), "", "q", "a"); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("missing user should fail, got %v", err)
	}
	if _, _, err := svc.Review(context.Background(), "u1", "", "a"); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("missing question should fail, got %v", err)
	}
	if _, _, err := svc.Review(context.Background(), "u1", "q", ""); !utils.IsCode(err, utils.CodeInvalidArgument) {
		t.Errorf("missing answer should fail, got %v", err)
	}
}

func TestReviewProviderFailureIsUnavailable(t *testing.T) {
	svc := NewInterviewService(&fakeInterviewRepo{}, &fakeFeedbackProvider{err: errors.New("model overloaded")})

	_, _, err := svc.Review(context.Background(), "u1", "q", "a")
	if !utils.IsCode(err, utils.CodeUnavailable) {
		t.Fatalf("expected UNAVAILABLE, got %v", err)
	}
}

func TestReviewClampsFeedbackContract(t *testing.T) {
	ai := &fakeFeedbackProvider{fb: &models.Feedback{
		Score:          42,
		Strengths:      []string{"a", "b", "c", "d", "e"},
		AreasToImprove: []string{"x", "y", "z", "w"},
	}}
	svc := NewInterviewService(&fakeInterviewRepo{}, ai)

	_, fb, err := svc.Review(context.Background(), "u1", "q", "a")
	if err != nil {
		t.Fatal(err)
	}
	if fb.Score != 10 {
		t.Errorf("score should clamp to 10, got %d", fb.Score)
	}
	if len(fb.Strengths) != 3 || len(fb.AreasToImprove) != 3 {
		t.Errorf("lists should clamp to 3: %d / %d", len(fb.Strengths), len(fb.AreasToImprove))
	}

	ai.fb.Score = -2
	_, fb, err = svc.Review(context.Background(), "u1", "q", "a")
	if err != nil {
		t.Fatal(err)
	}
	if fb.Score != 1 {
		t.Errorf("score should clamp to 1, got %d", fb.Score)
	}
}
