package service

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/taskbrief/taskbrief/internal/domain"
	"github.com/taskbrief/taskbrief/internal/store"
	"github.com/taskbrief/taskbrief/internal/summarizer"
)

// MockTaskStore is a mock implementation of store.TaskStore
type MockTaskStore struct {
	mock.Mock
}

func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	args := m.Called(ctx, id)
	task, _ := args.Get(0).(*domain.Task)
	return task, args.Error(1)
}

func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	args := m.Called(ctx, task)
	return args.Error(0)
}

func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskStore) List(
	ctx context.Context,
	filter store.TaskFilter,
	offset, limit int,
) ([]*domain.Task, int, error) {
	args := m.Called(ctx, filter, offset, limit)
	tasks, _ := args.Get(0).([]*domain.Task)
	return tasks, args.Int(1), args.Error(2)
}

// MockSummarizer is a mock implementation of summarizer.Summarizer
type MockSummarizer struct {
	mock.Mock
}

func (m *MockSummarizer) Summarize(ctx context.Context, title, description string) (string, error) {
	args := m.Called(ctx, title, description)
	return args.String(0), args.Error(1)
}

func newTestService(t *testing.T, ts store.TaskStore, sum summarizer.Summarizer) TaskService {
	t.Helper()
	svc, err := NewTaskService(ts, sum, 100, slog.Default())
	require.NoError(t, err)
	return svc
}

func TestNewTaskServiceRequiresStore(t *testing.T) {
	t.Parallel()

	svc, err := NewTaskService(nil, nil, 100, nil)
	assert.Nil(t, svc)
	require.Error(t, err)

	var svcErr *TaskServiceError
	assert.ErrorAs(t, err, &svcErr)
}

func TestCreateTaskWithSummary(t *testing.T) {
	t.Parallel()

	taskStore := new(MockTaskStore)
	sum := new(MockSummarizer)

	sum.On("Summarize", mock.Anything, "Ship v2", mock.Anything).
		Return("Release the second major version.", nil)
	taskStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)

	svc := newTestService(t, taskStore, sum)

	task, result, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:       "Ship v2",
		Description: "Finalize and release the second major version of the product.",
	}, true)

	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Equal(t, domain.TaskStatusPending, task.Status)
	assert.Equal(t, domain.TaskPriorityMedium, task.Priority)
	require.NotNil(t, task.Summary)
	assert.Equal(t, "Release the second major version.", *task.Summary)

	assert.True(t, result.Attempted)
	assert.True(t, result.Generated)
	assert.Empty(t, result.Error)

	taskStore.AssertExpectations(t)
	sum.AssertExpectations(t)
}

func TestCreateTaskWithoutSummary(t *testing.T) {
	t.Parallel()

	taskStore := new(MockTaskStore)
	sum := new(MockSummarizer)
	taskStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)

	svc := newTestService(t, taskStore, sum)

	task, result, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:       "Water the plants",
		Description: "All of the plants on the balcony need watering.",
	}, false)

	require.NoError(t, err)
	assert.Nil(t, task.Summary)
	assert.False(t, result.Attempted)
	assert.False(t, result.Generated)

	// The summarizer must not be called at all
	sum.AssertNotCalled(t, "Summarize", mock.Anything, mock.Anything, mock.Anything)
}

func TestCreateTaskSummarizerFailureStillCreates(t *testing.T) {
	t.Parallel()

	taskStore := new(MockTaskStore)
	sum := new(MockSummarizer)

	sum.On("Summarize", mock.Anything, mock.Anything, mock.Anything).
		Return("", summarizer.ErrTransientFailure)
	taskStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)

	svc := newTestService(t, taskStore, sum)

	task, result, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:       "Ship v2",
		Description: "Finalize and release the second major version of the product.",
	}, true)

	require.NoError(t, err)
	require.NotNil(t, task)
	assert.Nil(t, task.Summary)

	assert.True(t, result.Attempted)
	assert.False(t, result.Generated)
	assert.Equal(t, "summarizer unavailable after retries", result.Error)

	taskStore.AssertExpectations(t)
}

func TestCreateTaskNilSummarizer(t *testing.T) {
	t.Parallel()

	taskStore := new(MockTaskStore)
	taskStore.On("Create", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)

	svc := newTestService(t, taskStore, nil)

	task, result, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:       "Ship v2",
		Description: "Finalize and release the second major version of the product.",
	}, true)

	require.NoError(t, err)
	assert.Nil(t, task.Summary)
	assert.True(t, result.Attempted)
	assert.False(t, result.Generated)
	assert.Equal(t, "summary generation is not configured", result.Error)
}

func TestCreateTaskValidationFailure(t *testing.T) {
	t.Parallel()

	taskStore := new(MockTaskStore)
	svc := newTestService(t, taskStore, nil)

	task, _, err := svc.CreateTask(context.Background(), CreateTaskInput{
		Title:       "",
		Description: "A description that is certainly long enough.",
	}, false)

	assert.Nil(t, task)
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrValidation)

	taskStore.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestGetTaskNotFound(t *testing.T) {
	t.Parallel()

	taskStore := new(MockTaskStore)
	id := uuid.New()
	taskStore.On("GetByID", mock.Anything, id).Return(nil, store.ErrTaskNotFound)

	svc := newTestService(t, taskStore, nil)

	task, err := svc.GetTask(context.Background(), id)
	assert.Nil(t, task)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestListTasksPagination(t *testing.T) {
	t.Parallel()

	taskStore := new(MockTaskStore)
	tasks := []*domain.Task{mustNewTask(t, "Ship v2")}
	taskStore.On("List", mock.Anything, store.TaskFilter{}, 20, 10).
		Return(tasks, 21, nil)

	svc := newTestService(t, taskStore, nil)

	page, err := svc.ListTasks(context.Background(), store.TaskFilter{}, 3, 10)
	require.NoError(t, err)
	assert.Equal(t, tasks, page.Tasks)
	assert.Equal(t, 21, page.Total)
	assert.Equal(t, 3, page.Page)
	assert.Equal(t, 10, page.PageSize)
	assert.Equal(t, 3, page.TotalPages())

	taskStore.AssertExpectations(t)
}

func TestListTasksInvalidPagination(t *testing.T) {
	t.Parallel()

	taskStore := new(MockTaskStore)
	svc := newTestService(t, taskStore, nil)

	tests := []struct {
		name     string
		page     int
		pageSize int
	}{
		{"zero page", 0, 10},
		{"negative page", -1, 10},
		{"zero page size", 1, 0},
		{"page size above limit", 1, 101},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			page, err := svc.ListTasks(context.Background(), store.TaskFilter{}, tc.page, tc.pageSize)
			assert.Nil(t, page)
			assert.ErrorIs(t, err, ErrInvalidPagination)
		})
	}

	taskStore.AssertNotCalled(t, "List", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUpdateTaskRegeneratesSummary(t *testing.T) {
	t.Parallel()

	existing := mustNewTask(t, "Ship v2")
	taskStore := new(MockTaskStore)
	sum := new(MockSummarizer)

	taskStore.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)
	sum.On("Summarize", mock.Anything, "Ship v3", mock.Anything).
		Return("Plan the third major version.", nil)
	taskStore.On("Update", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)

	svc := newTestService(t, taskStore, sum)

	newTitle := "Ship v3"
	task, result, err := svc.UpdateTask(context.Background(), existing.ID, domain.TaskUpdate{
		Title: &newTitle,
	}, true)

	require.NoError(t, err)
	assert.Equal(t, "Ship v3", task.Title)
	require.NotNil(t, task.Summary)
	assert.Equal(t, "Plan the third major version.", *task.Summary)
	assert.True(t, result.Generated)

	taskStore.AssertExpectations(t)
	sum.AssertExpectations(t)
}

func TestUpdateTaskFailedRegenerationKeepsPriorSummary(t *testing.T) {
	t.Parallel()

	existing := mustNewTask(t, "Ship v2")
	require.NoError(t, existing.SetSummary("The original summary."))

	taskStore := new(MockTaskStore)
	sum := new(MockSummarizer)

	taskStore.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)
	sum.On("Summarize", mock.Anything, mock.Anything, mock.Anything).
		Return("", summarizer.ErrTransientFailure)
	taskStore.On("Update", mock.Anything, mock.AnythingOfType("*domain.Task")).Return(nil)

	svc := newTestService(t, taskStore, sum)

	status := domain.TaskStatusInProgress
	task, result, err := svc.UpdateTask(context.Background(), existing.ID, domain.TaskUpdate{
		Status: &status,
	}, true)

	require.NoError(t, err)
	assert.Equal(t, domain.TaskStatusInProgress, task.Status)
	require.NotNil(t, task.Summary)
	assert.Equal(t, "The original summary.", *task.Summary)
	assert.True(t, result.Attempted)
	assert.False(t, result.Generated)
	assert.NotEmpty(t, result.Error)
}

func TestUpdateTaskNotFound(t *testing.T) {
	t.Parallel()

	taskStore := new(MockTaskStore)
	id := uuid.New()
	taskStore.On("GetByID", mock.Anything, id).Return(nil, store.ErrTaskNotFound)

	svc := newTestService(t, taskStore, nil)

	newTitle := "anything"
	task, _, err := svc.UpdateTask(context.Background(), id, domain.TaskUpdate{Title: &newTitle}, false)
	assert.Nil(t, task)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestUpdateTaskInvalidUpdateLeavesTaskAlone(t *testing.T) {
	t.Parallel()

	existing := mustNewTask(t, "Ship v2")
	taskStore := new(MockTaskStore)
	taskStore.On("GetByID", mock.Anything, existing.ID).Return(existing, nil)

	svc := newTestService(t, taskStore, nil)

	badTitle := ""
	task, _, err := svc.UpdateTask(context.Background(), existing.ID, domain.TaskUpdate{
		Title: &badTitle,
	}, false)

	assert.Nil(t, task)
	assert.ErrorIs(t, err, domain.ErrValidation)
	assert.Equal(t, "Ship v2", existing.Title)

	taskStore.AssertNotCalled(t, "Update", mock.Anything, mock.Anything)
}

func TestDeleteTask(t *testing.T) {
	t.Parallel()

	taskStore := new(MockTaskStore)
	id := uuid.New()
	taskStore.On("Delete", mock.Anything, id).Return(nil).Once()

	svc := newTestService(t, taskStore, nil)
	require.NoError(t, svc.DeleteTask(context.Background(), id))
	taskStore.AssertExpectations(t)
}

func TestDeleteTaskTwiceReturnsNotFound(t *testing.T) {
	t.Parallel()

	taskStore := new(MockTaskStore)
	id := uuid.New()
	taskStore.On("Delete", mock.Anything, id).Return(nil).Once()
	taskStore.On("Delete", mock.Anything, id).Return(store.ErrTaskNotFound).Once()

	svc := newTestService(t, taskStore, nil)

	require.NoError(t, svc.DeleteTask(context.Background(), id))
	err := svc.DeleteTask(context.Background(), id)
	assert.ErrorIs(t, err, ErrTaskNotFound)
}

func TestSummaryFailureMessages(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"unauthorized", summarizer.ErrUnauthorized, "summarizer rejected the configured credentials"},
		{"rejected", summarizer.ErrRequestRejected, "summarizer rejected the request"},
		{"invalid response", summarizer.ErrInvalidResponse, "summarizer returned an invalid response"},
		{"misconfigured", summarizer.ErrInvalidConfig, "summarizer is misconfigured"},
		{"transient", summarizer.ErrTransientFailure, "summarizer unavailable after retries"},
		{"unknown", errors.New("boom"), "summarizer unavailable after retries"},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, summaryFailureMessage(tc.err))
		})
	}
}

func mustNewTask(t *testing.T, title string) *domain.Task {
	t.Helper()
	due := time.Now().UTC().Add(48 * time.Hour)
	task, err := domain.NewTask(
		title,
		"A sufficiently long description for validation purposes.",
		domain.TaskPriorityMedium,
		&due,
	)
	require.NoError(t, err)
	return task
}
