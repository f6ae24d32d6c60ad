package services

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/khadmahq/khadma/internal/cache"
	"github.com/khadmahq/khadma/internal/models"
	pgrepo "github.com/khadmahq/khadma/internal/repositories/postgres"
	"github.com/khadmahq/khadma/internal/utils"
)

const taskListCacheKey = "tasks:active"

type TaskService interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	ListApplications(ctx context.Context, userID string) ([]models.TaskApplication, error)
	Apply(ctx context.Context, userID, taskID string) (*models.TaskApplication, error)
}

type taskService struct {
	tasks pgrepo.TaskRepository
	cache cache.Cache
	ttl   time.Duration
}

func NewTaskService(tasks pgrepo.TaskRepository, c cache.Cache) TaskService {
	return &taskService{tasks: tasks, cache: c, ttl: 5 * time.Minute}
}

func (s *taskService) ListTasks(ctx context.Context) ([]models.Task, error) {
	const op = "TaskService.ListTasks"

	if s.cache != nil {
		var cached []models.Task
		if hit, err := s.cache.GetJSON(ctx, taskListCacheKey, &cached); err == nil && hit {
			return cached, nil
		}
	}

	out, err := s.tasks.ListActive(ctx)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list tasks", err)
	}

	if s.cache != nil {
		_ = s.cache.SetJSON(ctx, taskListCacheKey, out, s.ttl)
	}
	return out, nil
}

func (s *taskService) ListApplications(ctx context.Context, userID string) ([]models.TaskApplication, error) {
	const op = "TaskService.ListApplications"

	if userID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id is required", nil)
	}
	out, err := s.tasks.ListApplicationsByUser(ctx, userID)
	if err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to list applications", err)
	}
	return out, nil
}

// Apply is idempotent: re-applying returns the existing application.
func (s *taskService) Apply(ctx context.Context, userID, taskID string) (*models.TaskApplication, error) {
	const op = "TaskService.Apply"

	if userID == "" || taskID == "" {
		return nil, utils.E(utils.CodeInvalidArgument, op, "user_id and task_id are required", nil)
	}

	existing, err := s.tasks.GetApplication(ctx, userID, taskID)
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, utils.ErrNotFound) {
		return nil, utils.E(utils.CodeInternal, op, "failed to check existing application", err)
	}

	now := time.Now().UTC()
	a := &models.TaskApplication{
		ID:          uuid.NewString(),
		TaskID:      taskID,
		ApplicantID: userID,
		Status:      models.ApplicationApplied,
		AppliedAt:   &now,
		UpdatedAt:   &now,
	}
	if err := s.tasks.InsertApplication(ctx, a); err != nil {
		return nil, utils.E(utils.CodeInternal, op, "failed to apply for task", err)
	}
	return a, nil
}
