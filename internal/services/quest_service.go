package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/khadmahq/khadma/internal/cache"
	"github.com/khadmahq/khadma/internal/models"
	pgrepo "github.com/khadmahq/khadma/internal/repositories/postgres"
	"github.com/khadmahq/khadma/internal/utils"
)

const questListCacheKey = "quests:active"

// QuestFilter narrows the quest catalogue the way the quest list page
// does: free-text search plus category, difficulty, and derived status.
type QuestFilter struct {
	Search     string
	Category   string // empty or "all" = no filter
	Difficulty string
	Status     string // "completed" | "in_progress" | "available"
}

type QuestService interface {
	ListQuests(ctx context.Context) ([]models.Quest, error)
	ListUserQuests(ctx context.Context, userID string) ([]models.UserQuest, error)
	StartQuest(ctx context.Context, userID, questID string) (*models.UserQuest, error)
	UpdateProgress(ctx context.Context, userQuestID string, progress int, status models.QuestStatus) (*models.UserQuest, error)
	FilterQuests(quests []models.Quest, userQuests []models.UserQuest, f QuestFilter) []models.Quest
}

type questService struct {
	quests pgrepo.QuestRepository
	cache  cache.Cache
	ttl    time.Duration
}

func NewQuestService(quests pgrepo.QuestRepository, c cache.Cache) QuestService {
	return &questService{quests: quests, cache: c, ttl: 5 * time.Minute}
}

func (s *questService) ListQuests(ctx context.Context) ([]models.Quest, error) {
	const op = "QuestService.ListQuests"

	if s.cache != nil {
		var cached []models.Quest
		if hit, err := s.cache.GetJSON(ctx, questListCacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	out, err := s.quests.ListActive(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list quests", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, questListCacheKey, out, s.ttl)
	}
	return out, nil
}

func (s *questService) ListUserQuests(ctx context.Context, userID string) ([]models.UserQuest, error) {
	const op = "QuestService.ListUserQuests"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	out, err := s.quests.ListByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list user quests", err)
	}
	return out, nil
}

// StartQuest is idempotent: starting a quest the user already holds
// returns the existing row unchanged.
func (s *questService) StartQuest(ctx context.Context, userID, questID string) (*models.UserQuest, error) {
	const op = "QuestService.StartQuest"

	if userID == "" || questID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and quest_id are required", nil)
	}

	existing, err := s.quests.GetUserQuest(ctx, userID, questID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to check existing quest", err)
	}

	now := time.Now().UTC()
	uq := &models.UserQuest{
		ID:        uuid.NewString(),
		UserID:    userID,
		QuestID:   questID,
		Status:    models.QuestStarted,
		Progress:  0,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.quests.InsertUserQuest(ctx, uq); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to start quest", err)
	}
	return uq, nil
}

func (s *questService) UpdateProgress(ctx context.Context, userQuestID string, progress int, status models.QuestStatus) (*models.UserQuest, error) {
	const op = "QuestService.UpdateProgress"

	if userQuestID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_quest_id is required", nil)
	}
	if progress < 0 || progress > 100 {
		return nil, utils.E(utils.CodeInvalidArgument, op, "progress must be between 0 and 100", nil)
	}
	switch status {
	case models.QuestStarted, models.QuestInProgress, models.QuestCompleted:
	default:
		return nil, utils.E(utils.CodeInvalidArgument, op, "invalid status", nil)
	}

	uq, err := s.quests.GetUserQuestByID(ctx, userQuestID)
	if err != nil {
		if errors.Is(err, utils.ErrNotFound) {
			return nil, utils.E(utils.CodeNotFound, op, "user quest not found", err)
		}
		return nil, utils.E(utils.CodeInternal, op, "failed to load user quest", err)
	}

	now := time.Now().UTC()
	uq.Progress = progress
	uq.Status = status
	uq.UpdatedAt = now
	if status == models.QuestCompleted {
		uq.CompletedAt = &now
	}

	if err := s.quests.UpdateUserQuest(ctx, uq); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to update quest progress", err)
	}
	return uq, nil
}

// DeriveQuestStatus maps a user's quest rows onto one catalogue quest.
// No row means the quest is still available.
func DeriveQuestStatus(quest models.Quest, userQuests []models.UserQuest) models.QuestStatus {
	for _, uq := range userQuests {
		if uq.QuestID == quest.ID {
			return uq.Status
		}
	}
	return models.QuestAvailable
}

func (s *questService) FilterQuests(quests []models.Quest, userQuests []models.UserQuest, f QuestFilter) []models.Quest {
	search := strings.ToLower(strings.TrimSpace(f.Search))

	matchesAll := func(v string) bool { return v == "" || v == "all" }

	out := make([]models.Quest, 0, len(quests))
	for _, q := range quests {
		if search != "" &&
			!strings.Contains(strings.ToLower(q.Title), search) &&
			!strings.Contains(strings.ToLower(q.Description), search) {
			continue
		}
		if !matchesAll(f.Category) && q.Category != f.Category {
			continue
		}
		if !matchesAll(f.Difficulty) && q.Difficulty != f.Difficulty {
			continue
		}
		if !matchesAll(f.Status) {
			status := DeriveQuestStatus(q, userQuests)
			switch f.Status {
			case "completed":
				if status != models.QuestCompleted {
					continue
				}
			case "in_progress":
				if status != models.QuestStarted && status != models.QuestInProgress {
					continue
				}
			case "available":
				if status != models.QuestAvailable {
					continue
				}
			}
		}
		out = append(out, q)
	}
	return out
}
