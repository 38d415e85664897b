package usecase

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/wyoiwyget/ai-services/internal/domain"
)

// Runner schedules background task functions. Satisfied by worker.Pool;
// tests substitute a synchronous implementation.
type Runner interface {
	Submit(id string, fn func(ctx context.Context) error, onDone func(err error))
	Cancel(id string)
}

// TaskFunc is the body of a background task. It receives its task id for
// progress reporting and returns the task's result payload on success.
type TaskFunc func(ctx context.Context, taskID string) (map[string]any, error)

// TaskTracker owns the lifecycle of asynchronous, user-owned tasks:
// create -> processing (progress 0-100) -> completed | failed. Terminal
// transitions happen exactly once; background failures are captured into
// the task record instead of surfacing to the submitting caller.
type TaskTracker struct {
	store  domain.TaskStore
	runner Runner
}

// NewTaskTracker creates a tracker over the given store and runner.
func NewTaskTracker(store domain.TaskStore, runner Runner) *TaskTracker {
	return &TaskTracker{store: store, runner: runner}
}

// Start creates a task in the processing state and schedules fn on the
// runner. It returns the task id immediately; work proceeds independently.
func (t *TaskTracker) Start(ctx context.Context, userID string, kind domain.TaskKind, payload map[string]any, fn TaskFunc) (string, error) {
	if userID == "" {
		return "", domain.ErrInvalidRequest
	}

	now := time.Now().UTC()
	task := &domain.Task{
		ID:        uuid.NewString(),
		UserID:    userID,
		Kind:      kind,
		Status:    domain.TaskProcessing,
		Progress:  0,
		Payload:   payload,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := t.store.Create(ctx, task); err != nil {
		return "", err
	}

	log.Printf("[TASK] %s started: task_id=%s user_id=%s", kind, task.ID, userID)
	started := now

	t.runner.Submit(task.ID, func(runCtx context.Context) error {
		result, err := fn(runCtx, task.ID)
		if err != nil {
			return err
		}
		return t.Complete(context.Background(), task.ID, result)
	}, func(err error) {
		if err == nil {
			log.Printf("[TASK] %s completed: task_id=%s duration=%s", kind, task.ID, time.Since(started))
			return
		}
		log.Printf("[TASK] %s failed: task_id=%s error=%v", kind, task.ID, err)
		// The task context may already be dead; record the failure anyway.
		if failErr := t.Fail(context.Background(), task.ID, err.Error()); failErr != nil && !errors.Is(failErr, domain.ErrTaskTerminal) {
			log.Printf("[TASK] Could not record failure for task %s: %v", task.ID, failErr)
		}
	})

	return task.ID, nil
}

// UpdateProgress sets a processing task's progress and status message.
// Progress monotonicity is the caller's contract; the tracker only refuses
// updates once the task is terminal.
func (t *TaskTracker) UpdateProgress(ctx context.Context, id string, progress int, message string) error {
	task, err := t.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if task.Status.Terminal() {
		return domain.ErrTaskTerminal
	}

	task.Progress = progress
	task.Message = message
	task.UpdatedAt = time.Now().UTC()
	log.Printf("[TASK] Progress: task_id=%s progress=%d message=%q", id, progress, message)
	return t.store.Update(ctx, task)
}

// Complete transitions a task to completed with progress 100 and attaches
// the result payload. Terminal; a second transition is rejected.
func (t *TaskTracker) Complete(ctx context.Context, id string, result map[string]any) error {
	task, err := t.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if task.Status.Terminal() {
		return domain.ErrTaskTerminal
	}

	task.Status = domain.TaskCompleted
	task.Progress = 100
	task.Result = result
	task.UpdatedAt = time.Now().UTC()
	return t.store.Update(ctx, task)
}

// Fail transitions a task to failed with a human-readable error. Terminal.
func (t *TaskTracker) Fail(ctx context.Context, id string, errMsg string) error {
	task, err := t.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if task.Status.Terminal() {
		return domain.ErrTaskTerminal
	}

	task.Status = domain.TaskFailed
	task.Error = errMsg
	task.UpdatedAt = time.Now().UTC()
	return t.store.Update(ctx, task)
}

// GetStatus returns a snapshot of the task for its owner. Reads by any
// other user fail with ErrNotAuthorized.
func (t *TaskTracker) GetStatus(ctx context.Context, id, userID string) (*domain.Task, error) {
	task, err := t.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, domain.ErrNotAuthorized
	}
	return task, nil
}

// Delete removes an owned task and cancels its worker if still running.
func (t *TaskTracker) Delete(ctx context.Context, id, userID string) error {
	task, err := t.store.Get(ctx, id)
	if err != nil {
		return err
	}
	if task.UserID != userID {
		return domain.ErrNotAuthorized
	}

	t.runner.Cancel(id)
	return t.store.Delete(ctx, id)
}

// ListByUser returns all tasks owned by a user, newest first.
func (t *TaskTracker) ListByUser(ctx context.Context, userID string) ([]*domain.Task, error) {
	return t.store.ListByUser(ctx, userID)
}
