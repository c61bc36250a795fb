package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"bountyhunter/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

type userTask struct {
	UserID      int64      `db:"user_id"`
	TaskID      string     `db:"task_id"`
	Status      string     `db:"status"`
	StartedAt   *time.Time `db:"started_at"`
	ClaimedAt   *time.Time `db:"claimed_at"`
	CompletedAt *time.Time `db:"completed_at"`
}

func (t *userTask) toModel() *model.UserTask {
	return &model.UserTask{
		UserID:      t.UserID,
		TaskID:      t.TaskID,
		Status:      model.TaskStatus(t.Status),
		StartedAt:   t.StartedAt,
		ClaimedAt:   t.ClaimedAt,
		CompletedAt: t.CompletedAt,
	}
}

// GetUserTasks returns the user's progress rows keyed by task id. Tasks with
// no row have never been started.
func (r *Repository) GetUserTasks(ctx context.Context, userID int64) (map[string]*model.UserTask, error) {
	query, args, err := squirrel.
		Select("*").
		From("user_tasks").
		Where(squirrel.Eq{"user_id": userID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var rows []*userTask
	err = r.db.SelectContext(ctx, &rows, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get user tasks: %w", err)
	}

	tasks := make(map[string]*model.UserTask, len(rows))
	for _, row := range rows {
		tasks[row.TaskID] = row.toModel()
	}

	return tasks, nil
}

func (r *Repository) GetUserTask(ctx context.Context, userID int64, taskID string) (*model.UserTask, error) {
	query, args, err := squirrel.
		Select("*").
		From("user_tasks").
		Where(squirrel.Eq{
			"user_id": userID,
			"task_id": taskID,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row userTask
	err = r.db.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return row.toModel(), nil
}

// StartTask inserts the in_progress row. Starting an already started task is
// a no-op.
func (r *Repository) StartTask(ctx context.Context, userID int64, taskID string, startedAt time.Time) error {
	query, args, err := squirrel.
		Insert("user_tasks").
		SetMap(map[string]interface{}{
			"user_id":    userID,
			"task_id":    taskID,
			"status":     model.TaskInProgress,
			"started_at": startedAt,
		}).
		Suffix("ON CONFLICT (user_id, task_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return fmt.Errorf("failed to build task insert query: %w", err)
	}

	_, err = r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("failed to start task: %w", err)
	}

	return nil
}

// MarkTaskVerifying moves in_progress -> verifying and stamps the claim time
// the timed verifier measures from.
func (r *Repository) MarkTaskVerifying(ctx context.Context, userID int64, taskID string, claimedAt time.Time) error {
	query, args, err := squirrel.
		Update("user_tasks").
		Set("status", model.TaskVerifying).
		Set("claimed_at", claimedAt).
		Where(squirrel.Eq{
			"user_id": userID,
			"task_id": taskID,
			"status":  model.TaskInProgress,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return err
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrTaskNotStarted
	}

	return nil
}

// CompleteTask finishes the task and awards its points (with referrer
// kickback) in one transaction. The status guard makes the award idempotent.
// Returns the user's total completed count, reported on the completion event.
func (r *Repository) CompleteTask(ctx context.Context, userID int64, taskID string, points int, completedAt time.Time) (int, error) {
	var completedTotal int

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Update("user_tasks").
			Set("status", model.TaskCompleted).
			Set("completed_at", completedAt).
			Where(squirrel.Eq{
				"user_id": userID,
				"task_id": taskID,
			}).
			Where(squirrel.NotEq{"status": model.TaskCompleted}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		res, err := tx.ExecContext(ctx, query, args...)
		if err != nil {
			return fmt.Errorf("failed to complete task: %w", err)
		}
		affected, err := res.RowsAffected()
		if err != nil {
			return err
		}
		if affected == 0 {
			existing, err := r.getUserTaskTx(ctx, tx, userID, taskID)
			if err != nil {
				return err
			}
			if existing.Status == model.TaskCompleted {
				return ErrTaskAlreadyCompleted
			}
			return ErrTaskNotStarted
		}

		if err := r.updateUserPointsTx(ctx, tx, userID, points); err != nil {
			return err
		}

		countQuery, countArgs, err := squirrel.
			Select("count(*)").
			From("user_tasks").
			Where(squirrel.Eq{
				"user_id": userID,
				"status":  model.TaskCompleted,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		return tx.GetContext(ctx, &completedTotal, countQuery, countArgs...)
	})
	if err != nil {
		return 0, err
	}

	return completedTotal, nil
}

func (r *Repository) getUserTaskTx(ctx context.Context, tx *sqlx.Tx, userID int64, taskID string) (*model.UserTask, error) {
	query, args, err := squirrel.
		Select("*").
		From("user_tasks").
		Where(squirrel.Eq{
			"user_id": userID,
			"task_id": taskID,
		}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	var row userTask
	err = tx.GetContext(ctx, &row, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return row.toModel(), nil
}
