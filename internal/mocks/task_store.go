package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/taskbrief/taskbrief/internal/domain"
	"github.com/taskbrief/taskbrief/internal/store"
)

// MockTaskStore implements store.TaskStore with an in-memory map.
// It is safe for concurrent use and suitable for wiring a full router
// in tests without a database.
type MockTaskStore struct {
	// Function fields override the default in-memory behavior when set
	CreateFn  func(ctx context.Context, task *domain.Task) error
	GetByIDFn func(ctx context.Context, id uuid.UUID) (*domain.Task, error)
	UpdateFn  func(ctx context.Context, task *domain.Task) error
	DeleteFn  func(ctx context.Context, id uuid.UUID) error
	ListFn    func(ctx context.Context, filter store.TaskFilter, offset, limit int) ([]*domain.Task, int, error)

	mu    sync.Mutex
	tasks map[uuid.UUID]*domain.Task
}

// Ensure MockTaskStore implements the interface
var _ store.TaskStore = (*MockTaskStore)(nil)

// NewMockTaskStore creates an empty in-memory task store
func NewMockTaskStore() *MockTaskStore {
	return &MockTaskStore{tasks: make(map[uuid.UUID]*domain.Task)}
}

// Create implements store.TaskStore
func (m *MockTaskStore) Create(ctx context.Context, task *domain.Task) error {
	if m.CreateFn != nil {
		return m.CreateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

// GetByID implements store.TaskStore
func (m *MockTaskStore) GetByID(ctx context.Context, id uuid.UUID) (*domain.Task, error) {
	if m.GetByIDFn != nil {
		return m.GetByIDFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	task, ok := m.tasks[id]
	if !ok {
		return nil, store.ErrTaskNotFound
	}
	copied := *task
	return &copied, nil
}

// Update implements store.TaskStore
func (m *MockTaskStore) Update(ctx context.Context, task *domain.Task) error {
	if m.UpdateFn != nil {
		return m.UpdateFn(ctx, task)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[task.ID]; !ok {
		return store.ErrTaskNotFound
	}
	copied := *task
	m.tasks[task.ID] = &copied
	return nil
}

// Delete implements store.TaskStore
func (m *MockTaskStore) Delete(ctx context.Context, id uuid.UUID) error {
	if m.DeleteFn != nil {
		return m.DeleteFn(ctx, id)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return store.ErrTaskNotFound
	}
	delete(m.tasks, id)
	return nil
}

// List implements store.TaskStore. Results are ordered newest first to
// mirror the real store.
func (m *MockTaskStore) List(
	ctx context.Context,
	filter store.TaskFilter,
	offset, limit int,
) ([]*domain.Task, int, error) {
	if m.ListFn != nil {
		return m.ListFn(ctx, filter, offset, limit)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	var matched []*domain.Task
	for _, task := range m.tasks {
		if filter.Status != nil && task.Status != *filter.Status {
			continue
		}
		if filter.Priority != nil && task.Priority != *filter.Priority {
			continue
		}
		copied := *task
		matched = append(matched, &copied)
	}

	sort.Slice(matched, func(i, j int) bool {
		if !matched[i].CreatedAt.Equal(matched[j].CreatedAt) {
			return matched[i].CreatedAt.After(matched[j].CreatedAt)
		}
		return matched[i].ID.String() < matched[j].ID.String()
	})

	total := len(matched)
	if offset >= total {
		return []*domain.Task{}, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return matched[offset:end], total, nil
}
