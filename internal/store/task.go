package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/Marcel-mosha/task-manager/types"
)

// TaskRepository handles persistence for tasks. Every read and mutation
// is scoped to the owning user; a task that exists but belongs to someone
// else is indistinguishable from a missing one.
type TaskRepository struct {
	db *sql.DB
}

func NewTaskRepository(db *sql.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// ListByOwner returns the user's tasks in insertion order. A non-nil
// completed filter restricts to that completion state.
func (r *TaskRepository) ListByOwner(ctx context.Context, userID int, completed *bool) ([]types.Task, error) {
	query := `
		SELECT id, user_id, title, description, completed, created_at
		FROM tasks
		WHERE user_id = $1`
	args := []any{userID}
	if completed != nil {
		query += ` AND completed = $2`
		args = append(args, *completed)
	}
	query += ` ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := make([]types.Task, 0)
	for rows.Next() {
		var task types.Task
		if err := rows.Scan(
			&task.ID,
			&task.UserID,
			&task.Title,
			&task.Description,
			&task.Completed,
			&task.CreatedAt,
		); err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return tasks, nil
}

func (r *TaskRepository) GetByID(ctx context.Context, userID, id int) (types.Task, error) {
	const query = `
		SELECT id, user_id, title, description, completed, created_at
		FROM tasks
		WHERE id = $1 AND user_id = $2`
	var task types.Task
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Task{}, ErrNotFound
		}
		return types.Task{}, err
	}
	return task, nil
}

func (r *TaskRepository) Create(ctx context.Context, task types.Task) (types.Task, error) {
	task.CreatedAt = time.Now()
	task.Completed = false

	const query = `
		INSERT INTO tasks (user_id, title, description, completed, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		task.UserID,
		task.Title,
		task.Description,
		task.Completed,
		task.CreatedAt,
	).Scan(&task.ID); err != nil {
		return types.Task{}, err
	}
	return task, nil
}

// Update rewrites the mutable columns. ID, owner, and created_at never
// change.
func (r *TaskRepository) Update(ctx context.Context, task types.Task) (types.Task, error) {
	const query = `
		UPDATE tasks
		SET title = $1,
			description = $2,
			completed = $3
		WHERE id = $4 AND user_id = $5`
	result, err := r.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		task.Completed,
		task.ID,
		task.UserID,
	)
	if err != nil {
		return types.Task{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Task{}, err
	}
	if affected == 0 {
		return types.Task{}, ErrNotFound
	}
	return task, nil
}

// Toggle flips the completion flag in a single statement so that
// concurrent toggles serialize on the row instead of losing updates.
func (r *TaskRepository) Toggle(ctx context.Context, userID, id int) (types.Task, error) {
	const query = `
		UPDATE tasks
		SET completed = NOT completed
		WHERE id = $1 AND user_id = $2
		RETURNING id, user_id, title, description, completed, created_at`
	var task types.Task
	err := r.db.QueryRowContext(ctx, query, id, userID).Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Completed,
		&task.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Task{}, ErrNotFound
		}
		return types.Task{}, err
	}
	return task, nil
}

func (r *TaskRepository) Delete(ctx context.Context, userID, id int) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	result, err := r.db.ExecContext(ctx, query, id, userID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}
