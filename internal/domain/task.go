package domain

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// TaskStatus represents the lifecycle state of a task
type TaskStatus string

// Possible task status values
const (
	TaskStatusPending    TaskStatus = "pending"
	TaskStatusInProgress TaskStatus = "in_progress"
	TaskStatusCompleted  TaskStatus = "completed"
	TaskStatusCancelled  TaskStatus = "cancelled"
)

// TaskPriority represents the priority level of a task
type TaskPriority string

// Possible task priority values
const (
	TaskPriorityLow      TaskPriority = "low"
	TaskPriorityMedium   TaskPriority = "medium"
	TaskPriorityHigh     TaskPriority = "high"
	TaskPriorityCritical TaskPriority = "critical"
)

// Field length bounds, applied after trimming surrounding whitespace.
const (
	TitleMinLength       = 1
	TitleMaxLength       = 200
	DescriptionMinLength = 10
	DescriptionMaxLength = 5000
)

// Task represents a work item with an optional machine-generated summary.
// The summary is advisory enrichment: it is either absent or non-empty,
// and its presence never affects the validity of the task itself.
type Task struct {
	ID          uuid.UUID    `json:"id"`
	Title       string       `json:"title"`
	Description string       `json:"description"`
	Summary     *string      `json:"summary,omitempty"`
	Status      TaskStatus   `json:"status"`
	Priority    TaskPriority `json:"priority"`
	DueDate     *time.Time   `json:"due_date,omitempty"`
	CreatedAt   time.Time    `json:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at"`
}

// NewTask creates a new Task with the given title, description, priority and
// optional due date. It trims surrounding whitespace, generates a new UUID,
// sets the status to pending and stamps creation/update times with the same
// instant. Returns a ValidationError if any field violates its domain.
func NewTask(title, description string, priority TaskPriority, dueDate *time.Time) (*Task, error) {
	if priority == "" {
		priority = TaskPriorityMedium
	}

	now := time.Now().UTC()
	task := &Task{
		ID:          uuid.New(),
		Title:       strings.TrimSpace(title),
		Description: strings.TrimSpace(description),
		Status:      TaskStatusPending,
		Priority:    priority,
		DueDate:     dueDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := task.Validate(); err != nil {
		return nil, err
	}

	return task, nil
}

// Validate checks that every field of the Task belongs to its declared domain.
// Returns a ValidationError naming the offending field on the first violation.
func (t *Task) Validate() error {
	if t.ID == uuid.Nil {
		return NewValidationError("id", "cannot be empty", ErrValidation)
	}

	if err := ValidateTitle(t.Title); err != nil {
		return err
	}

	if err := ValidateDescription(t.Description); err != nil {
		return err
	}

	if t.Summary != nil && *t.Summary == "" {
		return NewValidationError("summary", "cannot be empty when present", ErrValidation)
	}

	if !t.Status.IsValid() {
		return NewValidationError("status", "must be one of pending, in_progress, completed, cancelled", ErrValidation)
	}

	if !t.Priority.IsValid() {
		return NewValidationError("priority", "must be one of low, medium, high, critical", ErrValidation)
	}

	if t.UpdatedAt.Before(t.CreatedAt) {
		return NewValidationError("updated_at", "cannot precede created_at", ErrValidation)
	}

	return nil
}

// SetSummary records a successfully generated summary on the task.
// An empty summary is rejected; a task without a summary carries nil.
func (t *Task) SetSummary(summary string) error {
	if summary == "" {
		return NewValidationError("summary", "cannot be empty when present", ErrValidation)
	}
	t.Summary = &summary
	return nil
}

// Touch refreshes the UpdatedAt timestamp. Called after every successful
// mutation so that UpdatedAt >= CreatedAt always holds.
func (t *Task) Touch() {
	t.UpdatedAt = time.Now().UTC()
}

// ValidateTitle checks the title length bounds on the already-trimmed value.
// Bounds count characters, not bytes, so multibyte titles are measured the
// same way the request validator measures them.
func ValidateTitle(title string) error {
	length := utf8.RuneCountInString(title)
	if length < TitleMinLength {
		return NewValidationError("title", "cannot be empty or whitespace only", ErrValidation)
	}
	if length > TitleMaxLength {
		return NewValidationError("title", "must be at most 200 characters", ErrValidation)
	}
	return nil
}

// ValidateDescription checks the description length bounds on the
// already-trimmed value. Bounds count characters, not bytes.
func ValidateDescription(description string) error {
	length := utf8.RuneCountInString(description)
	if length < DescriptionMinLength {
		return NewValidationError("description", "must be at least 10 characters", ErrValidation)
	}
	if length > DescriptionMaxLength {
		return NewValidationError("description", "must be at most 5000 characters", ErrValidation)
	}
	return nil
}

// IsValid checks if the given status is a known TaskStatus.
func (s TaskStatus) IsValid() bool {
	switch s {
	case TaskStatusPending, TaskStatusInProgress, TaskStatusCompleted, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// IsValid checks if the given priority is a known TaskPriority.
func (p TaskPriority) IsValid() bool {
	switch p {
	case TaskPriorityLow, TaskPriorityMedium, TaskPriorityHigh, TaskPriorityCritical:
		return true
	default:
		return false
	}
}

// TaskUpdate carries a partial update to a task. Nil fields are not part of
// the update; this keeps "field not supplied" distinct from "field set to its
// zero value".
type TaskUpdate struct {
	Title       *string
	Description *string
	Status      *TaskStatus
	Priority    *TaskPriority
	DueDate     *time.Time
}

// Apply copies the supplied fields of the update onto the task, trimming and
// re-validating each one against the same domain constraints as creation.
// The task is modified in place, with a refreshed UpdatedAt, only if every
// supplied field is valid.
func (u TaskUpdate) Apply(t *Task) error {
	updated := *t

	if u.Title != nil {
		updated.Title = strings.TrimSpace(*u.Title)
	}
	if u.Description != nil {
		updated.Description = strings.TrimSpace(*u.Description)
	}
	if u.Status != nil {
		updated.Status = *u.Status
	}
	if u.Priority != nil {
		updated.Priority = *u.Priority
	}
	if u.DueDate != nil {
		updated.DueDate = u.DueDate
	}

	if err := updated.Validate(); err != nil {
		return err
	}

	updated.Touch()
	*t = updated
	return nil
}
