package api

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/taskbrief/taskbrief/internal/api/shared"
	"github.com/taskbrief/taskbrief/internal/domain"
	"github.com/taskbrief/taskbrief/internal/service"
	"github.com/taskbrief/taskbrief/internal/store"
)

// Pagination defaults for task listings
const (
	defaultPage     = 1
	defaultPageSize = 10
)

// CreateTaskRequest represents the request body for creating a new task
type CreateTaskRequest struct {
	Title           string     `json:"title"            validate:"required,min=1,max=200"`
	Description     string     `json:"description"      validate:"required,min=10,max=5000"`
	Priority        *string    `json:"priority"         validate:"omitempty,oneof=low medium high critical"`
	DueDate         *time.Time `json:"due_date"`
	GenerateSummary *bool      `json:"generate_summary"`
}

// UpdateTaskRequest represents the request body for a partial task update.
// All fields are optional; absent fields are left unchanged.
type UpdateTaskRequest struct {
	Title             *string    `json:"title"              validate:"omitempty,min=1,max=200"`
	Description       *string    `json:"description"        validate:"omitempty,min=10,max=5000"`
	Status            *string    `json:"status"             validate:"omitempty,oneof=pending in_progress completed cancelled"`
	Priority          *string    `json:"priority"           validate:"omitempty,oneof=low medium high critical"`
	DueDate           *time.Time `json:"due_date"`
	RegenerateSummary bool       `json:"regenerate_summary"`
}

// TaskResponse represents the response data for a task
type TaskResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Summary     *string    `json:"summary,omitempty"`
	Status      string     `json:"status"`
	Priority    string     `json:"priority"`
	DueDate     *time.Time `json:"due_date,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

// SummaryGenerationStatus reports the outcome of a summary generation
// attempt alongside the task it belongs to. A failed attempt is reported
// here rather than failing the whole request.
type SummaryGenerationStatus struct {
	Generated bool   `json:"generated"`
	Error     string `json:"error,omitempty"`
}

// TaskMutationResponse is returned from create and update operations.
// SummaryGeneration is present only when generation was requested.
type TaskMutationResponse struct {
	TaskResponse
	SummaryGeneration *SummaryGenerationStatus `json:"summary_generation,omitempty"`
}

// ListTasksResponse represents one page of tasks
type ListTasksResponse struct {
	Tasks      []TaskResponse `json:"tasks"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	PageSize   int            `json:"page_size"`
	TotalPages int            `json:"total_pages"`
}

// DeleteTaskResponse confirms a successful deletion
type DeleteTaskResponse struct {
	Message   string `json:"message"`
	DeletedID string `json:"deleted_id"`
}

// TaskHandler handles task-related HTTP requests
type TaskHandler struct {
	taskService service.TaskService
	logger      *slog.Logger
}

// NewTaskHandler creates a new TaskHandler
func NewTaskHandler(taskService service.TaskService, logger *slog.Logger) *TaskHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &TaskHandler{
		taskService: taskService,
		logger:      logger.With(slog.String("component", "task_handler")),
	}
}

// RegisterRoutes mounts the task endpoints on the given router.
func (h *TaskHandler) RegisterRoutes(r chi.Router) {
	r.Post("/tasks", h.CreateTask)
	r.Get("/tasks", h.ListTasks)
	r.Get("/tasks/{id}", h.GetTask)
	r.Put("/tasks/{id}", h.UpdateTask)
	r.Delete("/tasks/{id}", h.DeleteTask)
}

// CreateTask handles POST /api/v1/tasks requests
func (h *TaskHandler) CreateTask(w http.ResponseWriter, r *http.Request) {
	var req CreateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	input := service.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		input.Priority = &priority
	}

	// Summary generation defaults to on
	generateSummary := true
	if req.GenerateSummary != nil {
		generateSummary = *req.GenerateSummary
	}

	task, summaryResult, err := h.taskService.CreateTask(r.Context(), input, generateSummary)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusCreated, taskToMutationResponse(task, summaryResult))
}

// GetTask handles GET /api/v1/tasks/{id} requests
func (h *TaskHandler) GetTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseTaskID(w, r)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(r.Context(), id)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToResponse(task))
}

// ListTasks handles GET /api/v1/tasks requests.
// Supported query parameters: status, priority, page, page_size.
func (h *TaskHandler) ListTasks(w http.ResponseWriter, r *http.Request) {
	filter, ok := h.parseTaskFilter(w, r)
	if !ok {
		return
	}

	page, ok := h.parsePositiveIntParam(w, r, "page", defaultPage)
	if !ok {
		return
	}
	pageSize, ok := h.parsePositiveIntParam(w, r, "page_size", defaultPageSize)
	if !ok {
		return
	}

	result, err := h.taskService.ListTasks(r.Context(), filter, page, pageSize)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	tasks := make([]TaskResponse, 0, len(result.Tasks))
	for _, task := range result.Tasks {
		tasks = append(tasks, taskToResponse(task))
	}

	shared.RespondWithJSON(w, r, http.StatusOK, ListTasksResponse{
		Tasks:      tasks,
		Total:      result.Total,
		Page:       result.Page,
		PageSize:   result.PageSize,
		TotalPages: result.TotalPages(),
	})
}

// UpdateTask handles PUT /api/v1/tasks/{id} requests
func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseTaskID(w, r)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := shared.DecodeJSON(r, &req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid request format")
		return
	}

	if err := shared.ValidateRequest(req); err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, SanitizeValidationError(err))
		return
	}

	update := domain.TaskUpdate{
		Title:       req.Title,
		Description: req.Description,
		DueDate:     req.DueDate,
	}
	if req.Status != nil {
		status := domain.TaskStatus(*req.Status)
		update.Status = &status
	}
	if req.Priority != nil {
		priority := domain.TaskPriority(*req.Priority)
		update.Priority = &priority
	}

	task, summaryResult, err := h.taskService.UpdateTask(r.Context(), id, update, req.RegenerateSummary)
	if err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, taskToMutationResponse(task, summaryResult))
}

// DeleteTask handles DELETE /api/v1/tasks/{id} requests
func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := h.parseTaskID(w, r)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r,
			MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	shared.RespondWithJSON(w, r, http.StatusOK, DeleteTaskResponse{
		Message:   "Task deleted successfully",
		DeletedID: id.String(),
	})
}

// parseTaskID extracts and validates the task ID from the URL. Malformed
// IDs surface domain.ErrInvalidID and answer through the shared error
// mapping. On failure it writes the response and returns ok=false.
func (h *TaskHandler) parseTaskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	idParam := chi.URLParam(r, "id")
	id, err := uuid.Parse(idParam)
	if err != nil {
		err = fmt.Errorf("%w: %v", domain.ErrInvalidID, err)
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return uuid.Nil, false
	}
	return id, true
}

// parseTaskFilter builds a store filter from status and priority query
// parameters. Unknown values are rejected with a 400 response.
func (h *TaskHandler) parseTaskFilter(w http.ResponseWriter, r *http.Request) (store.TaskFilter, bool) {
	var filter store.TaskFilter

	if raw := r.URL.Query().Get("status"); raw != "" {
		status := domain.TaskStatus(raw)
		if !status.IsValid() {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid status filter")
			return store.TaskFilter{}, false
		}
		filter.Status = &status
	}

	if raw := r.URL.Query().Get("priority"); raw != "" {
		priority := domain.TaskPriority(raw)
		if !priority.IsValid() {
			shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid priority filter")
			return store.TaskFilter{}, false
		}
		filter.Priority = &priority
	}

	return filter, true
}

// parsePositiveIntParam reads an integer query parameter, falling back to
// def when absent. Non-numeric values are rejected with a 400 response;
// out-of-range values are left for the service to validate.
func (h *TaskHandler) parsePositiveIntParam(
	w http.ResponseWriter,
	r *http.Request,
	name string,
	def int,
) (int, bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}

	value, err := strconv.Atoi(raw)
	if err != nil {
		shared.RespondWithError(w, r, http.StatusBadRequest, "Invalid "+name+" parameter")
		return 0, false
	}
	return value, true
}

// taskToResponse converts a domain.Task to a TaskResponse
func taskToResponse(task *domain.Task) TaskResponse {
	return TaskResponse{
		ID:          task.ID.String(),
		Title:       task.Title,
		Description: task.Description,
		Summary:     task.Summary,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		DueDate:     task.DueDate,
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
	}
}

// taskToMutationResponse attaches the summary generation outcome to the
// task payload when generation was attempted.
func taskToMutationResponse(task *domain.Task, result service.SummaryResult) TaskMutationResponse {
	response := TaskMutationResponse{TaskResponse: taskToResponse(task)}
	if result.Attempted {
		response.SummaryGeneration = &SummaryGenerationStatus{
			Generated: result.Generated,
			Error:     result.Error,
		}
	}
	return response
}
