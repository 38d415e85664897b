package taskstore

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/wyoiwyget/ai-services/internal/domain"
)

// Task records survive a restart for this long; polling clients are not
// expected to care about tasks older than a day.
const redisTaskTTL = 24 * time.Hour

// Redis is a task store backed by Redis, for deployments where task state
// must survive a process restart.
type Redis struct {
	client *redis.Client
}

// NewRedis creates a task store on an existing Redis client.
func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func taskKey(id string) string {
	return "task:" + id
}

func userTasksKey(userID string) string {
	return "user_tasks:" + userID
}

// Create stores a new task record
func (r *Redis) Create(ctx context.Context, task *domain.Task) error {
	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, taskKey(task.ID), data, redisTaskTTL)
	pipe.LPush(ctx, userTasksKey(task.UserID), task.ID)
	pipe.Expire(ctx, userTasksKey(task.UserID), redisTaskTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("store task: %w", err)
	}
	return nil
}

// Get retrieves a task snapshot
func (r *Redis) Get(ctx context.Context, id string) (*domain.Task, error) {
	data, err := r.client.Get(ctx, taskKey(id)).Bytes()
	if err == redis.Nil {
		return nil, domain.ErrTaskNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("fetch task: %w", err)
	}

	var task domain.Task
	if err := json.Unmarshal(data, &task); err != nil {
		return nil, fmt.Errorf("decode task: %w", err)
	}
	return &task, nil
}

// Update replaces a task record
func (r *Redis) Update(ctx context.Context, task *domain.Task) error {
	exists, err := r.client.Exists(ctx, taskKey(task.ID)).Result()
	if err != nil {
		return fmt.Errorf("check task: %w", err)
	}
	if exists == 0 {
		return domain.ErrTaskNotFound
	}

	data, err := json.Marshal(task)
	if err != nil {
		return fmt.Errorf("marshal task: %w", err)
	}
	if err := r.client.Set(ctx, taskKey(task.ID), data, redis.KeepTTL).Err(); err != nil {
		return fmt.Errorf("store task: %w", err)
	}
	return nil
}

// Delete removes a task record and its entry in the owner's task index.
func (r *Redis) Delete(ctx context.Context, id string) error {
	task, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	del := pipe.Del(ctx, taskKey(id))
	pipe.LRem(ctx, userTasksKey(task.UserID), 0, id)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	if del.Val() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

// ListByUser returns the user's tasks, newest first.
func (r *Redis) ListByUser(ctx context.Context, userID string) ([]*domain.Task, error) {
	ids, err := r.client.LRange(ctx, userTasksKey(userID), 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}

	var tasks []*domain.Task
	for _, id := range ids {
		task, err := r.Get(ctx, id)
		if err == domain.ErrTaskNotFound {
			continue // expired
		}
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, task)
	}
	return tasks, nil
}
