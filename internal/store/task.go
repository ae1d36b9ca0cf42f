package store

import (
	"context"

	"github.com/google/uuid"
	"github.com/taskbrief/taskbrief/internal/domain"
)

// TaskFilter narrows a task listing. Nil fields match every task.
type TaskFilter struct {
	Status   *domain.TaskStatus
	Priority *domain.TaskPriority
}

// TaskStore defines the interface for task data persistence.
type TaskStore interface {
	// Create saves a new task to the store.
	// It handles domain validation internally.
	// Returns validation errors from the domain Task if data is invalid.
	Create(ctx context.Context, task *domain.Task) error

	// GetByID retrieves a task by its unique ID.
	// Returns ErrTaskNotFound if the task does not exist.
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// Update saves changes to an existing task.
	// Returns ErrTaskNotFound if the task does not exist.
	// Returns validation errors if the task data is invalid.
	Update(ctx context.Context, task *domain.Task) error

	// Delete removes a task by its unique ID. Deletion is final.
	// Returns ErrTaskNotFound if the task does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// List retrieves tasks matching the filter, ordered by creation time
	// most-recent-first, along with the total number of matching tasks
	// before offset/limit are applied. Returns an empty slice when nothing
	// matches.
	List(ctx context.Context, filter TaskFilter, offset, limit int) ([]*domain.Task, int, error)
}
