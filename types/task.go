package types

import "time"

// Task represents a single to-do item owned by exactly one user.
// Ownership is set at creation and never reassigned.
type Task struct {
	// ID is the unique identifier of the task.
	ID int `json:"id" db:"id"`

	// UserID references the owning user.
	UserID int `json:"-" db:"user_id"`

	// Title is the short, non-empty summary of the task.
	Title string `json:"title" db:"title"`

	// Description is an optional longer body. Empty when unset.
	Description string `json:"description" db:"description"`

	// Completed reports whether the task is done. Defaults to false.
	Completed bool `json:"completed" db:"completed"`

	// CreatedAt is the timestamp when the task was created, assigned by
	// the store and immutable thereafter.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}
