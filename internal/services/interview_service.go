package services

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/khadmahq/khadma/internal/models"
	"github.com/khadmahq/khadma/internal/providers/feedback"
	pgrepo "github.com/khadmahq/khadma/internal/repositories/postgres"
	"github.com/khadmahq/khadma/internal/utils"
)

type InterviewService interface {
	// Review scores one answer through the feedback provider and
	// persists the simulation.
	Review(ctx context.Context, userID, question, answer string) (*models.InterviewSimulation, *models.Feedback, error)
	History(ctx context.Context, userID string) ([]models.InterviewSimulation, error)
}

type interviewService struct {
	sims pgrepo.InterviewRepository
	ai   feedback.Provider
}

func NewInterviewService(sims pgrepo.InterviewRepository, ai feedback.Provider) InterviewService {
	return &interviewService{sims: sims, ai: ai}
}

func (s *interviewService) Review(ctx context.Context, userID, question, answer string) (*models.InterviewSimulation, *models.Feedback, error) {
	const op = "InterviewService.Review"

	if userID == "" {
		return nil, nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	if question == "" || answer == "" {
		return nil, nil, utils.E(utils.CodeInvalidArgument, op, "question and answer are required", nil)
	}

	fb, err := s.ai.Review(ctx, question, answer)
	if err != nil {
		return nil, nil, utils.E(utils.CodeUnavailable, op, "feedback service failed", err)
	}
	clampFeedback(fb)

	raw, err := json.Marshal(fb)
	if err != nil {
		return nil, nil, utils.E(utils.CodeInternal, op, "encode feedback", err)
	}

	sim := &models.InterviewSimulation{
		ID:        uuid.NewString(),
		UserID:    userID,
		Question:  question,
		Answer:    answer,
		Feedback:  raw,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.sims.Insert(ctx, sim); err != nil {
		return nil, nil, utils.E(utils.CodeInternal, op, "failed to save simulation", err)
	}
	return sim, fb, nil
}

func (s *interviewService) History(ctx context.Context, userID string) ([]models.InterviewSimulation, error) {
	const op = "InterviewService.History"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	out, err := s.sims.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list simulations", err)
	}
	return out, nil
}

// clampFeedback enforces the feedback contract: score in 1..10 and at
// most three entries per list.
func clampFeedback(fb *models.Feedback) {
	if fb.Score < 1 {
		fb.Score = 1
	}
	if fb.Score > 10 {
		fb.Score = 10
	}
	if len(fb.Strengths) > 3 {
		fb.Strengths = fb.Strengths[:3]
	}
	if len(fb.AreasToImprove) > 3 {
		fb.AreasToImprove = fb.AreasToImprove[:3]
	}
}
