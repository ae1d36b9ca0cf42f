package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/taskbrief/taskbrief/internal/domain"
	"github.com/taskbrief/taskbrief/internal/platform/logger"
	"github.com/taskbrief/taskbrief/internal/store"
)

// PostgresTaskStore implements the store.TaskStore interface
// using a PostgreSQL database as the storage backend.
type PostgresTaskStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresTaskStore creates a new PostgreSQL implementation of the
// TaskStore interface. It accepts a database connection or transaction that
// should be initialized and managed by the caller. If logger is nil, a
// default logger will be used.
func NewPostgresTaskStore(db store.DBTX, logger *slog.Logger) *PostgresTaskStore {
	if db == nil {
		panic("db cannot be nil")
	}

	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresTaskStore{
		db:     db,
		logger: logger.With(slog.String("component", "task_store")),
	}
}

// Ensure PostgresTaskStore implements store.TaskStore interface
var _ store.TaskStore = (*PostgresTaskStore)(nil)

// Create implements store.TaskStore.Create
// It saves a new task to the database, handling domain validation.
func (s *PostgresTaskStore) Create(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during create",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		INSERT INTO tasks (id, title, description, summary, status, priority, due_date, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		task.ID,
		task.Title,
		task.Description,
		nullString(task.Summary),
		task.Status,
		task.Priority,
		nullTime(task.DueDate),
		task.CreatedAt,
		task.UpdatedAt,
	)

	if err != nil {
		log.Error("failed to create task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError("create", err)
	}

	log.Info("task created successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)),
		slog.String("priority", string(task.Priority)))
	return nil
}

// GetByID implements store.TaskStore.GetByID
// Returns store.ErrTaskNotFound if the task does not exist.
func (s *PostgresTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	log.Debug("retrieving task by ID", slog.String("task_id", id.String()))

	query := `
		SELECT id, title, description, summary, status, priority, due_date, created_at, updated_at
		FROM tasks
		WHERE id = $1
	`

	task, err := s.scanTask(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Debug("task not found", slog.String("task_id", id.String()))
			return nil, store.ErrTaskNotFound
		}
		log.Error("failed to get task by ID",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return nil, MapError("get", err)
	}

	return task, nil
}

// Update implements store.TaskStore.Update
// Returns store.ErrTaskNotFound if the task does not exist.
// Returns validation errors if the task data is invalid.
func (s *PostgresTaskStore) Update(ctx context.Context, task *domain.Task) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := task.Validate(); err != nil {
		log.Warn("task validation failed during update",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return err
	}

	query := `
		UPDATE tasks
		SET title = $1, description = $2, summary = $3, status = $4, priority = $5, due_date = $6, updated_at = $7
		WHERE id = $8
	`

	result, err := s.db.ExecContext(
		ctx,
		query,
		task.Title,
		task.Description,
		nullString(task.Summary),
		task.Status,
		task.Priority,
		nullTime(task.DueDate),
		task.UpdatedAt,
		task.ID,
	)

	if err != nil {
		log.Error("failed to update task",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError("update", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", task.ID.String()))
		return MapError("update", err)
	}

	// If no rows were affected, the task didn't exist
	if rowsAffected == 0 {
		log.Debug("task not found for update",
			slog.String("task_id", task.ID.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task updated successfully",
		slog.String("task_id", task.ID.String()),
		slog.String("status", string(task.Status)))
	return nil
}

// Delete implements store.TaskStore.Delete
// Returns store.ErrTaskNotFound if the task does not exist. A repeated
// delete on the same ID therefore reports not found, never success.
func (s *PostgresTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `DELETE FROM tasks WHERE id = $1`

	result, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		log.Error("failed to delete task",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError("delete", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		log.Error("failed to get rows affected",
			slog.String("error", err.Error()),
			slog.String("task_id", id.String()))
		return MapError("delete", err)
	}

	if rowsAffected == 0 {
		log.Debug("task not found for delete", slog.String("task_id", id.String()))
		return store.ErrTaskNotFound
	}

	log.Info("task deleted successfully", slog.String("task_id", id.String()))
	return nil
}

// List implements store.TaskStore.List
// It retrieves tasks matching the filter ordered by creation time descending,
// plus the total number of matches before pagination.
func (s *PostgresTaskStore) List(
	ctx context.Context,
	filter store.TaskFilter,
	offset, limit int,
) ([]*domain.Task, int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if limit <= 0 {
		limit = 10 // Default limit
	}
	if offset < 0 {
		offset = 0
	}

	where, args := buildTaskFilter(filter)

	log.Debug("listing tasks",
		slog.Int("limit", limit),
		slog.Int("offset", offset),
		slog.Int("filter_args", len(args)))

	countQuery := `SELECT COUNT(*) FROM tasks` + where
	var total int
	if err := s.db.QueryRowContext(ctx, countQuery, args...).Scan(&total); err != nil {
		log.Error("failed to count tasks", slog.String("error", err.Error()))
		return nil, 0, MapError("count", err)
	}

	query := fmt.Sprintf(`
		SELECT id, title, description, summary, status, priority, due_date, created_at, updated_at
		FROM tasks%s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, where, len(args)+1, len(args)+2)
	args = append(args, limit, offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		log.Error("failed to query tasks", slog.String("error", err.Error()))
		return nil, 0, MapError("list", err)
	}
	defer func() {
		if cerr := rows.Close(); cerr != nil {
			log.Error("failed to close rows", slog.String("error", cerr.Error()))
		}
	}()

	var tasks []*domain.Task
	for rows.Next() {
		task, err := s.scanTask(rows)
		if err != nil {
			log.Error("failed to scan task row", slog.String("error", err.Error()))
			return nil, 0, MapError("list", err)
		}
		tasks = append(tasks, task)
	}

	if err := rows.Err(); err != nil {
		log.Error("error after scanning rows", slog.String("error", err.Error()))
		return nil, 0, MapError("list", err)
	}

	// Return empty slice instead of nil if no tasks found
	if tasks == nil {
		tasks = []*domain.Task{}
	}

	log.Debug("listed tasks",
		slog.Int("count", len(tasks)),
		slog.Int("total", total))
	return tasks, total, nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanTask.
type scanner interface {
	Scan(dest ...any) error
}

// scanTask reads one task row into a domain.Task.
func (s *PostgresTaskStore) scanTask(row scanner) (*domain.Task, error) {
	var task domain.Task
	var status, priority string
	var summary sql.NullString
	var dueDate sql.NullTime

	err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&summary,
		&status,
		&priority,
		&dueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	task.Status = domain.TaskStatus(status)
	task.Priority = domain.TaskPriority(priority)
	if summary.Valid {
		task.Summary = &summary.String
	}
	if dueDate.Valid {
		due := dueDate.Time.UTC()
		task.DueDate = &due
	}
	task.CreatedAt = task.CreatedAt.UTC()
	task.UpdatedAt = task.UpdatedAt.UTC()

	return &task, nil
}

// buildTaskFilter renders the WHERE clause and positional args for a filter.
func buildTaskFilter(filter store.TaskFilter) (string, []any) {
	var clauses []string
	var args []any

	if filter.Status != nil {
		args = append(args, string(*filter.Status))
		clauses = append(clauses, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Priority != nil {
		args = append(args, string(*filter.Priority))
		clauses = append(clauses, fmt.Sprintf("priority = $%d", len(args)))
	}

	if len(clauses) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(clauses, " AND "), args
}

// nullString converts an optional string to its SQL representation.
func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// nullTime converts an optional timestamp to its SQL representation.
func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *t, Valid: true}
}
