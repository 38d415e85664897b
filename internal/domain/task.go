package domain

import "time"

// TaskStatus is the lifecycle state of an asynchronous task.
// Tasks start processing and transition exactly once to completed or failed.
type TaskStatus string

const (
	TaskProcessing TaskStatus = "processing"
	TaskCompleted  TaskStatus = "completed"
	TaskFailed     TaskStatus = "failed"
)

// Terminal reports whether the status admits no further transitions.
func (s TaskStatus) Terminal() bool {
	return s == TaskCompleted || s == TaskFailed
}

// TaskKind names the unit of work a task tracks.
type TaskKind string

const (
	TaskAvatarGeneration TaskKind = "avatar_generation"
	TaskVirtualTryOn     TaskKind = "virtual_tryon"
	TaskProductMatching  TaskKind = "product_matching"
)

// Task is a unit of asynchronous, user-owned work. Each task is mutated
// only by the background worker that owns it; status polls read snapshots.
type Task struct {
	ID        string         `json:"task_id"`
	UserID    string         `json:"user_id"`
	Kind      TaskKind       `json:"kind"`
	Status    TaskStatus     `json:"status"`
	Progress  int            `json:"progress"`
	Message   string         `json:"message,omitempty"`
	Payload   map[string]any `json:"payload,omitempty"`
	Result    map[string]any `json:"result,omitempty"`
	Error     string         `json:"error,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
