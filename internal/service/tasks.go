package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"bountyhunter/internal/model"
	"bountyhunter/internal/repository"
	"bountyhunter/pkg/logger"

	"go.uber.org/zap"
)

type TaskService struct {
	repo      TaskRepository
	social    SocialRepository
	referrals ReferralServiceI
	verifier  TelegramVerifier
	events    EventPublisher
}

func NewTaskService(
	repo TaskRepository,
	social SocialRepository,
	referrals ReferralServiceI,
	verifier TelegramVerifier,
	events EventPublisher,
) *TaskService {
	return &TaskService{
		repo:      repo,
		social:    social,
		referrals: referrals,
		verifier:  verifier,
		events:    events,
	}
}

// ListTasks joins the fixed catalog with the caller's progress rows. A task
// without a row has not been started.
func (s *TaskService) ListTasks(ctx context.Context, userID int64) ([]*model.UserTaskView, error) {
	userTasks, err := s.repo.GetUserTasks(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user tasks: %w", err)
	}

	catalog := model.Catalog()
	views := make([]*model.UserTaskView, len(catalog))
	for i, task := range catalog {
		view := &model.UserTaskView{
			Task:   task,
			Status: model.TaskNotStarted,
		}
		if ut, ok := userTasks[task.ID]; ok {
			view.Status = ut.Status
			view.StartedAt = ut.StartedAt
			view.ClaimedAt = ut.ClaimedAt
			view.CompletedAt = ut.CompletedAt
		}
		views[i] = view
	}

	return views, nil
}

func (s *TaskService) StartTask(ctx context.Context, userID int64, taskID string) (*model.UserTaskView, error) {
	task, ok := model.TaskByID(taskID)
	if !ok {
		return nil, ErrTaskNotFound
	}

	err := s.repo.StartTask(ctx, userID, taskID, time.Now().UTC())
	if err != nil {
		return nil, fmt.Errorf("failed to start task: %w", err)
	}

	return s.view(ctx, userID, task)
}

// ClaimTask drives in_progress -> verifying -> completed depending on the
// task's verification kind. For timed tasks a pending result is not an
// error: the returned view carries the verifying status.
func (s *TaskService) ClaimTask(ctx context.Context, userID int64, taskID string) (*model.UserTaskView, error) {
	task, ok := model.TaskByID(taskID)
	if !ok {
		return nil, ErrTaskNotFound
	}

	userTask, err := s.repo.GetUserTask(ctx, userID, taskID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrTaskNotStarted
		}
		return nil, fmt.Errorf("failed to get user task: %w", err)
	}

	if userTask.Status == model.TaskCompleted {
		return nil, ErrTaskAlreadyCompleted
	}

	switch task.Verification {
	case model.VerifyAuto:
		return s.complete(ctx, userID, task)

	case model.VerifySocial:
		if _, err := s.social.GetActiveConnection(ctx, userID, task.Platform); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return nil, ErrConnectionRequired
			}
			return nil, fmt.Errorf("failed to check connection: %w", err)
		}
		return s.complete(ctx, userID, task)

	case model.VerifyTelegramMember:
		return s.claimTelegramMember(ctx, userID, task)

	case model.VerifyTimed:
		return s.claimTimed(ctx, userID, task, userTask)

	default:
		return nil, fmt.Errorf("unknown verification kind %q", task.Verification)
	}
}

func (s *TaskService) claimTelegramMember(ctx context.Context, userID int64, task model.BountyTask) (*model.UserTaskView, error) {
	conn, err := s.social.GetActiveConnection(ctx, userID, model.PlatformTelegram)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrConnectionRequired
		}
		return nil, fmt.Errorf("failed to get telegram connection: %w", err)
	}

	chatID, err := strconv.ParseInt(task.Target, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid chat id on task %s: %w", task.ID, err)
	}
	telegramID, err := strconv.ParseInt(conn.PlatformUserID, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid telegram user id: %w", err)
	}

	member, err := s.verifier.IsChatMember(ctx, chatID, telegramID)
	if err != nil {
		return nil, fmt.Errorf("failed to verify chat membership: %w", err)
	}
	if !member {
		return nil, ErrVerificationFailed
	}

	return s.complete(ctx, userID, task)
}

func (s *TaskService) claimTimed(ctx context.Context, userID int64, task model.BountyTask, userTask *model.UserTask) (*model.UserTaskView, error) {
	now := time.Now().UTC()

	if userTask.Status == model.TaskInProgress {
		err := s.repo.MarkTaskVerifying(ctx, userID, task.ID, now)
		if err != nil && !errors.Is(err, repository.ErrTaskNotStarted) {
			return nil, fmt.Errorf("failed to mark task verifying: %w", err)
		}
		return s.view(ctx, userID, task)
	}

	if userTask.ClaimedAt == nil || now.Before(userTask.ClaimedAt.Add(XVerificationWindow)) {
		return s.view(ctx, userID, task)
	}

	return s.complete(ctx, userID, task)
}

func (s *TaskService) complete(ctx context.Context, userID int64, task model.BountyTask) (*model.UserTaskView, error) {
	completedAt := time.Now().UTC()

	completedTotal, err := s.repo.CompleteTask(ctx, userID, task.ID, task.Points, completedAt)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrTaskAlreadyCompleted):
			return nil, ErrTaskAlreadyCompleted
		case errors.Is(err, repository.ErrTaskNotStarted), errors.Is(err, repository.ErrNotFound):
			return nil, ErrTaskNotStarted
		default:
			return nil, fmt.Errorf("failed to complete task: %w", err)
		}
	}

	s.events.Publish(userID, model.Event{
		Type: model.EventTaskCompleted,
		Payload: map[string]any{
			"task_id":         task.ID,
			"points":          task.Points,
			"completed_total": completedTotal,
		},
		At: completedAt,
	})

	// Every completion tries to flip the user's pending referral edge. The
	// flip is idempotent, so this also covers a code applied after the user
	// already completed tasks.
	if err := s.referrals.CompleteForUser(ctx, userID); err != nil {
		// the task itself is done; the flip retries on the next completion
		logger.Logger().Error("failed to complete referral after task",
			zap.Int64("user_id", userID),
			zap.Error(err))
	}

	return s.view(ctx, userID, task)
}

func (s *TaskService) view(ctx context.Context, userID int64, task model.BountyTask) (*model.UserTaskView, error) {
	userTask, err := s.repo.GetUserTask(ctx, userID, task.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return &model.UserTaskView{Task: task, Status: model.TaskNotStarted}, nil
		}
		return nil, fmt.Errorf("failed to get user task: %w", err)
	}

	return &model.UserTaskView{
		Task:        task,
		Status:      userTask.Status,
		StartedAt:   userTask.StartedAt,
		ClaimedAt:   userTask.ClaimedAt,
		CompletedAt: userTask.CompletedAt,
	}, nil
}

// AutoComplete finishes a task on the user's behalf (connect tasks when a
// social account is linked). Already completed tasks are left alone.
func (s *TaskService) AutoComplete(ctx context.Context, userID int64, taskID string) error {
	task, ok := model.TaskByID(taskID)
	if !ok {
		return ErrTaskNotFound
	}

	if err := s.repo.StartTask(ctx, userID, taskID, time.Now().UTC()); err != nil {
		return fmt.Errorf("failed to start task: %w", err)
	}

	_, err := s.complete(ctx, userID, task)
	if errors.Is(err, ErrTaskAlreadyCompleted) {
		return nil
	}
	return err
}
