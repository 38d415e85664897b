package taskstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/wyoiwyget/ai-services/internal/domain"
)

// Memory is a thread-safe in-memory task store. Reads return copies so a
// polled snapshot never races with the owning worker's writes.
type Memory struct {
	tasks map[string]*domain.Task
	mutex sync.RWMutex
}

// NewMemory creates a new in-memory task store
func NewMemory() *Memory {
	return &Memory{
		tasks: make(map[string]*domain.Task),
	}
}

// Create stores a new task record
func (m *Memory) Create(ctx context.Context, task *domain.Task) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

// Get retrieves a snapshot of a task
func (m *Memory) Get(ctx context.Context, id string) (*domain.Task, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	task, exists := m.tasks[id]
	if !exists {
		return nil, domain.ErrTaskNotFound
	}

	cp := *task
	return &cp, nil
}

// Update replaces a task record
func (m *Memory) Update(ctx context.Context, task *domain.Task) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.tasks[task.ID]; !exists {
		return domain.ErrTaskNotFound
	}

	cp := *task
	m.tasks[task.ID] = &cp
	return nil
}

// Delete removes a task record
func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, exists := m.tasks[id]; !exists {
		return domain.ErrTaskNotFound
	}

	delete(m.tasks, id)
	return nil
}

// ListByUser returns snapshots of all tasks owned by a user, newest first.
func (m *Memory) ListByUser(ctx context.Context, userID string) ([]*domain.Task, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	var tasks []*domain.Task
	for _, task := range m.tasks {
		if task.UserID == userID {
			cp := *task
			tasks = append(tasks, &cp)
		}
	}

	sort.Slice(tasks, func(i, j int) bool {
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

// Cleanup removes tasks older than maxAge and returns how many were dropped.
func (m *Memory) Cleanup(maxAge time.Duration) int {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	cutoff := time.Now().Add(-maxAge)
	removed := 0
	for id, task := range m.tasks {
		if task.CreatedAt.Before(cutoff) {
			delete(m.tasks, id)
			removed++
		}
	}
	return removed
}

// Size returns the current number of tracked tasks (for debugging/monitoring)
func (m *Memory) Size() int {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	return len(m.tasks)
}
