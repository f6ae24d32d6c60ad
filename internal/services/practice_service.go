package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/khadmahq/khadma/internal/models"
	mongorepo "github.com/khadmahq/khadma/internal/repositories/mongo"
	"github.com/khadmahq/khadma/internal/utils"
)

type PracticeService interface {
	Start(ctx context.Context, userID, position string) (*models.PracticeSession, error)
	Get(ctx context.Context, practiceID string) (*models.PracticeSession, error)
	End(ctx context.Context, practiceID string) (*models.PracticeSession, error)
	InsertTurn(ctx context.Context, practiceID string, turnIndex int64, question, answer string) (*models.PracticeTurn, error)
	MarkCoach(ctx context.Context, practiceID string, turnIndex int64, response, status string, processingMS int64) error
	ListTurns(ctx context.Context, practiceID string, limit int64) ([]models.PracticeTurn, error)
}

type practiceService struct {
	practices mongorepo.PracticeRepository
	turnTTL   time.Duration
}

func NewPracticeService(practices mongorepo.PracticeRepository, turnTTL time.Duration) PracticeService {
	if turnTTL <= 0 {
		turnTTL = 24 * time.Hour
	}
	return &practiceService{practices: practices, turnTTL: turnTTL}
}

func (s *practiceService) Start(ctx context.Context, userID, position string) (*models.PracticeSession, error) {
	const op = "PracticeService.Start"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}

	ps := &models.PracticeSession{
		PracticeID: uuid.NewString(),
		UserID:     userID,
		Position:   position,
		Status:     "active",
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.practices.CreateSession(ctx, ps); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to create practice session", err)
	}
	return ps, nil
}

func (s *practiceService) Get(ctx context.Context, practiceID string) (*models.PracticeSession, error) {
	const op = "PracticeService.Get"

	if practiceID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "practice_id is required", nil)
	}
	ps, err := s.practices.GetSession(ctx, practiceID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "practice session not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to get practice session", err)
	}
	return ps, nil
}

func (s *practiceService) End(ctx context.Context, practiceID string) (*models.PracticeSession, error) {
	const op = "PracticeService.End"

	ps, err := s.Get(ctx, practiceID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if err := s.practices.EndSession(ctx, practiceID, now); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to end practice session", err)
	}
	ps.Status = "ended"
	ps.EndedAt = &now
	return ps, nil
}

func (s *practiceService) InsertTurn(ctx context.Context, practiceID string, turnIndex int64, question, answer string) (*models.PracticeTurn, error) {
	const op = "PracticeService.InsertTurn"

	if practiceID == "" || turnIndex <= 0 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "practice_id is required and turn_index must be > 0", nil)
	}
	if question == "" || answer == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "question and answer are required", nil)
	}

	now := time.Now().UTC()
	t := &models.PracticeTurn{
		PracticeID:  practiceID,
		TurnIndex:   turnIndex,
		Question:    question,
		Answer:      answer,
		CoachStatus: "pending",
		Timestamp:   now,
		ExpiresAt:   now.Add(s.turnTTL),
	}
	if err := s.practices.InsertTurn(ctx, t); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to insert practice turn", err)
	}
	return t, nil
}

func (s *practiceService) MarkCoach(ctx context.Context, practiceID string, turnIndex int64, response, status string, processingMS int64) error {
	const op = "PracticeService.MarkCoach"

	if practiceID == "" || turnIndex <= 0 || status == "" {
		return utils.E(utils.CodeInvalidArgument, op, "practice_id, turn_index (>0), and status are required", nil)
	}
	if err := s.practices.UpdateTurnCoach(ctx, practiceID, turnIndex, response, status, processingMS); err != nil {
		return utils.E(utils.CodeInternal, op, "failed to update coach fields", err)
	}
	return nil
}

func (s *practiceService) ListTurns(ctx context.Context, practiceID string, limit int64) ([]models.PracticeTurn, error) {
	const op = "PracticeService.ListTurns"

	if practiceID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "practice_id is required", nil)
	}
	out, err := s.practices.ListTurns(ctx, practiceID, limit)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list practice turns", err)
	}
	return out, nil
}
