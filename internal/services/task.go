package services

import (
	"context"
	"strings"

	"github.com/Marcel-mosha/task-manager/types"
)

// TaskRepository defines persistence operations for tasks. All operations
// are scoped to the owning user.
type TaskRepository interface {
	ListByOwner(ctx context.Context, userID int, completed *bool) ([]types.Task, error)
	GetByID(ctx context.Context, userID, id int) (types.Task, error)
	Create(ctx context.Context, task types.Task) (types.Task, error)
	Update(ctx context.Context, task types.Task) (types.Task, error)
	Toggle(ctx context.Context, userID, id int) (types.Task, error)
	Delete(ctx context.Context, userID, id int) error
}

// TaskEvents receives task lifecycle notifications. Implementations must
// not block the request path; failures are the publisher's problem.
type TaskEvents interface {
	TaskCreated(ctx context.Context, task types.Task)
	TaskUpdated(ctx context.Context, task types.Task)
	TaskDeleted(ctx context.Context, userID, taskID int)
}

// TaskUpdate carries a partial update. Nil fields keep their current
// values. ID, owner, and created_at are immutable and have no fields here.
type TaskUpdate struct {
	Title       *string
	Description *string
	Completed   *bool
}

// TaskService encapsulates ownership-scoped task use-cases.
type TaskService struct {
	repo   TaskRepository
	events TaskEvents
}

// NewTaskService constructs a TaskService. events may be nil, in which
// case no lifecycle notifications are emitted.
func NewTaskService(repo TaskRepository, events TaskEvents) *TaskService {
	return &TaskService{repo: repo, events: events}
}

// List returns the caller's tasks, optionally filtered by completion
// state.
func (s *TaskService) List(ctx context.Context, user types.User, completed *bool) ([]types.Task, error) {
	return s.repo.ListByOwner(ctx, user.ID, completed)
}

// Get returns the task with the given id if the caller owns it. A task
// owned by someone else is reported as not found, never as forbidden.
func (s *TaskService) Get(ctx context.Context, user types.User, taskID int) (types.Task, error) {
	return s.repo.GetByID(ctx, user.ID, taskID)
}

// Create stores a new task owned by the caller. Any owner supplied with
// the input is ignored.
func (s *TaskService) Create(ctx context.Context, user types.User, title, description string) (types.Task, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return types.Task{}, invalidInput("title is required")
	}

	task, err := s.repo.Create(ctx, types.Task{
		UserID:      user.ID,
		Title:       title,
		Description: description,
	})
	if err != nil {
		return types.Task{}, err
	}
	if s.events != nil {
		s.events.TaskCreated(ctx, task)
	}
	return task, nil
}

// Update applies a partial update to an owned task.
func (s *TaskService) Update(ctx context.Context, user types.User, taskID int, update TaskUpdate) (types.Task, error) {
	task, err := s.repo.GetByID(ctx, user.ID, taskID)
	if err != nil {
		return types.Task{}, err
	}

	if update.Title != nil {
		title := strings.TrimSpace(*update.Title)
		if title == "" {
			return types.Task{}, invalidInput("title is required")
		}
		task.Title = title
	}
	if update.Description != nil {
		task.Description = *update.Description
	}
	if update.Completed != nil {
		task.Completed = *update.Completed
	}

	updated, err := s.repo.Update(ctx, task)
	if err != nil {
		return types.Task{}, err
	}
	if s.events != nil {
		s.events.TaskUpdated(ctx, updated)
	}
	return updated, nil
}

// Toggle flips the completion state of an owned task.
func (s *TaskService) Toggle(ctx context.Context, user types.User, taskID int) (types.Task, error) {
	task, err := s.repo.Toggle(ctx, user.ID, taskID)
	if err != nil {
		return types.Task{}, err
	}
	if s.events != nil {
		s.events.TaskUpdated(ctx, task)
	}
	return task, nil
}

// Delete permanently removes an owned task.
func (s *TaskService) Delete(ctx context.Context, user types.User, taskID int) error {
	if err := s.repo.Delete(ctx, user.ID, taskID); err != nil {
		return err
	}
	if s.events != nil {
		s.events.TaskDeleted(ctx, user.ID, taskID)
	}
	return nil
}
