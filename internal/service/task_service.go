package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/taskbrief/taskbrief/internal/domain"
	"github.com/taskbrief/taskbrief/internal/platform/logger"
	"github.com/taskbrief/taskbrief/internal/store"
	"github.com/taskbrief/taskbrief/internal/summarizer"
)

// defaultMaxPageSize caps page_size when the service is constructed
// without an explicit limit.
const defaultMaxPageSize = 100

// CreateTaskInput carries the caller-supplied fields for a new task.
// Priority defaults to medium when nil.
type CreateTaskInput struct {
	Title       string
	Description string
	Priority    *domain.TaskPriority
	DueDate     *time.Time
}

// SummaryResult reports the outcome of a summary generation attempt.
// A failed attempt never fails the surrounding task operation, so callers
// inspect this value to learn whether a summary was produced.
type SummaryResult struct {
	// Attempted is true when summary generation was requested.
	Attempted bool
	// Generated is true when the summarizer produced a summary that was
	// attached to the task.
	Generated bool
	// Error holds a short description of the failure when Generated is false.
	Error string
}

// TaskPage is one page of a task listing plus the total match count
// before pagination.
type TaskPage struct {
	Tasks    []*domain.Task
	Total    int
	Page     int
	PageSize int
}

// TotalPages returns the number of pages needed for all matches.
func (p TaskPage) TotalPages() int {
	if p.Total == 0 {
		return 0
	}
	return (p.Total + p.PageSize - 1) / p.PageSize
}

// TaskService provides task-related operations.
type TaskService interface {
	// CreateTask validates and persists a new task. When generateSummary is
	// true it also asks the summarizer for an AI summary; summarizer failures
	// are reported in the SummaryResult and never fail the create.
	CreateTask(
		ctx context.Context,
		input CreateTaskInput,
		generateSummary bool,
	) (*domain.Task, SummaryResult, error)

	// GetTask retrieves a task by its ID.
	GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error)

	// ListTasks returns one page of tasks matching the filter, newest first.
	ListTasks(ctx context.Context, filter store.TaskFilter, page, pageSize int) (*TaskPage, error)

	// UpdateTask applies a partial update to an existing task. When
	// regenerateSummary is true it regenerates the summary from the updated
	// fields; on failure the previous summary is retained.
	UpdateTask(
		ctx context.Context,
		id uuid.UUID,
		update domain.TaskUpdate,
		regenerateSummary bool,
	) (*domain.Task, SummaryResult, error)

	// DeleteTask removes a task permanently.
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

// TaskServiceError wraps errors from the task service with context.
type TaskServiceError struct {
	// Operation is the operation that failed (e.g., "create_task", "list_tasks")
	Operation string
	// Message is a human-readable description of the error
	Message string
	// Err is the underlying error that caused the failure
	Err error
}

// Error implements the error interface for TaskServiceError.
func (e *TaskServiceError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("task service %s failed: %s: %v", e.Operation, e.Message, e.Err)
	}
	return fmt.Sprintf("task service %s failed: %s", e.Operation, e.Message)
}

// Unwrap returns the wrapped error to support errors.Is/errors.As.
func (e *TaskServiceError) Unwrap() error {
	return e.Err
}

// NewTaskServiceError creates a new TaskServiceError.
// It returns known sentinel errors directly without wrapping so the API
// layer can classify them, and passes validation errors through unchanged.
func NewTaskServiceError(operation, message string, err error) error {
	if err == nil {
		return nil
	}

	if errors.Is(err, ErrTaskNotFound) || errors.Is(err, ErrInvalidPagination) {
		return err
	}

	// Map store-level not-found to the service-level sentinel
	if store.IsNotFoundError(err) {
		return ErrTaskNotFound
	}

	// Validation failures carry field context the API layer needs intact
	if errors.Is(err, domain.ErrValidation) {
		return err
	}

	return &TaskServiceError{
		Operation: operation,
		Message:   message,
		Err:       err,
	}
}

// taskServiceImpl implements the TaskService interface.
type taskServiceImpl struct {
	taskStore   store.TaskStore
	summarizer  summarizer.Summarizer
	maxPageSize int
	logger      *slog.Logger
}

// NewTaskService creates a new TaskService.
// The summarizer may be nil, in which case summary generation requests are
// reported as failed without calling any provider. It returns an error if
// taskStore is nil.
func NewTaskService(
	taskStore store.TaskStore,
	sum summarizer.Summarizer,
	maxPageSize int,
	logger *slog.Logger,
) (TaskService, error) {
	if taskStore == nil {
		return nil, &TaskServiceError{
			Operation: "create_service",
			Message:   "taskStore cannot be nil",
			Err:       nil,
		}
	}

	if maxPageSize <= 0 {
		maxPageSize = defaultMaxPageSize
	}

	// Use provided logger or create default
	if logger == nil {
		logger = slog.Default()
	}

	return &taskServiceImpl{
		taskStore:   taskStore,
		summarizer:  sum,
		maxPageSize: maxPageSize,
		logger:      logger.With("component", "task_service"),
	}, nil
}

// CreateTask implements TaskService.CreateTask.
func (s *taskServiceImpl) CreateTask(
	ctx context.Context,
	input CreateTaskInput,
	generateSummary bool,
) (*domain.Task, SummaryResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	priority := domain.TaskPriorityMedium
	if input.Priority != nil {
		priority = *input.Priority
	}

	task, err := domain.NewTask(input.Title, input.Description, priority, input.DueDate)
	if err != nil {
		log.Warn("failed to create task object", "error", err)
		return nil, SummaryResult{}, NewTaskServiceError(
			"create_task", "failed to create task object", err)
	}

	result := SummaryResult{}
	if generateSummary {
		result = s.generateSummary(ctx, task)
	}

	if err := s.taskStore.Create(ctx, task); err != nil {
		log.Error("failed to save task",
			"error", err,
			"task_id", task.ID)
		return nil, SummaryResult{}, NewTaskServiceError(
			"create_task", "failed to save task", err)
	}

	log.Info("task created",
		"task_id", task.ID,
		"priority", task.Priority,
		"summary_generated", result.Generated)
	return task, result, nil
}

// GetTask implements TaskService.GetTask.
func (s *taskServiceImpl) GetTask(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, NewTaskServiceError("get_task", "failed to retrieve task", err)
	}
	return task, nil
}

// ListTasks implements TaskService.ListTasks.
func (s *taskServiceImpl) ListTasks(
	ctx context.Context,
	filter store.TaskFilter,
	page, pageSize int,
) (*TaskPage, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if page < 1 {
		return nil, fmt.Errorf("%w: page must be at least 1, got %d",
			ErrInvalidPagination, page)
	}
	if pageSize < 1 || pageSize > s.maxPageSize {
		return nil, fmt.Errorf("%w: page_size must be between 1 and %d, got %d",
			ErrInvalidPagination, s.maxPageSize, pageSize)
	}

	offset := (page - 1) * pageSize
	tasks, total, err := s.taskStore.List(ctx, filter, offset, pageSize)
	if err != nil {
		log.Error("failed to list tasks", "error", err, "page", page)
		return nil, NewTaskServiceError("list_tasks", "failed to list tasks", err)
	}

	return &TaskPage{
		Tasks:    tasks,
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// UpdateTask implements TaskService.UpdateTask.
func (s *taskServiceImpl) UpdateTask(
	ctx context.Context,
	id uuid.UUID,
	update domain.TaskUpdate,
	regenerateSummary bool,
) (*domain.Task, SummaryResult, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	task, err := s.taskStore.GetByID(ctx, id)
	if err != nil {
		return nil, SummaryResult{}, NewTaskServiceError(
			"update_task", "failed to retrieve task", err)
	}

	if err := update.Apply(task); err != nil {
		log.Warn("rejected task update",
			"error", err,
			"task_id", id)
		return nil, SummaryResult{}, NewTaskServiceError(
			"update_task", "invalid task update", err)
	}

	// On regeneration failure the task keeps the summary it already had.
	result := SummaryResult{}
	if regenerateSummary {
		result = s.generateSummary(ctx, task)
	}

	if err := s.taskStore.Update(ctx, task); err != nil {
		log.Error("failed to save updated task",
			"error", err,
			"task_id", id)
		return nil, SummaryResult{}, NewTaskServiceError(
			"update_task", "failed to save task", err)
	}

	log.Info("task updated",
		"task_id", id,
		"status", task.Status,
		"summary_regenerated", result.Generated)
	return task, result, nil
}

// DeleteTask implements TaskService.DeleteTask.
func (s *taskServiceImpl) DeleteTask(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := s.taskStore.Delete(ctx, id); err != nil {
		return NewTaskServiceError("delete_task", "failed to delete task", err)
	}

	log.Info("task deleted", "task_id", id)
	return nil
}

// generateSummary asks the summarizer for a summary of the task and attaches
// it on success. Failures are absorbed into the returned SummaryResult so
// that summarizer outages never block task writes.
func (s *taskServiceImpl) generateSummary(ctx context.Context, task *domain.Task) SummaryResult {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if s.summarizer == nil {
		return SummaryResult{
			Attempted: true,
			Error:     "summary generation is not configured",
		}
	}

	text, err := s.summarizer.Summarize(ctx, task.Title, task.Description)
	if err != nil {
		log.Warn("summary generation failed",
			"error", err,
			"task_id", task.ID,
			"permanent", summarizer.IsPermanent(err))
		return SummaryResult{
			Attempted: true,
			Error:     summaryFailureMessage(err),
		}
	}

	if err := task.SetSummary(text); err != nil {
		log.Warn("summarizer returned unusable summary",
			"error", err,
			"task_id", task.ID)
		return SummaryResult{
			Attempted: true,
			Error:     "summarizer returned an unusable summary",
		}
	}

	return SummaryResult{Attempted: true, Generated: true}
}

// summaryFailureMessage converts a summarizer error into a short message
// safe to return to API clients.
func summaryFailureMessage(err error) string {
	switch {
	case errors.Is(err, summarizer.ErrUnauthorized):
		return "summarizer rejected the configured credentials"
	case errors.Is(err, summarizer.ErrRequestRejected):
		return "summarizer rejected the request"
	case errors.Is(err, summarizer.ErrInvalidResponse):
		return "summarizer returned an invalid response"
	case errors.Is(err, summarizer.ErrInvalidConfig):
		return "summarizer is misconfigured"
	default:
		return "summarizer unavailable after retries"
	}
}
