package memcached

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tasktrail/tasktrail-api/internal"
)

// Task decorates an existing TaskStore with cache-aside reads, keyed by task
// id. Listing queries always hit the original store because any mutation can
// change their results.
type Task struct {
	client     Client
	orig       TaskStore
	expiration time.Duration
	logger     *zap.Logger
}

// TaskStore defines the datastore being decorated.
type TaskStore interface {
	Create(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error)
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, id int64) (internal.Task, error)
	List(ctx context.Context, args internal.TaskFilters) ([]internal.Task, error)
	Update(ctx context.Context, id int64, params internal.UpdateTaskParams) (internal.Task, error)
}

// NewTask instantiates the decorated Task repository.
func NewTask(client Client, orig TaskStore, logger *zap.Logger) *Task {
	return &Task{
		client:     client,
		orig:       orig,
		expiration: 15 * time.Minute,
		logger:     logger,
	}
}

func taskKey(id int64) string {
	return fmt.Sprintf("task:%d", id)
}

// Create delegates and caches the created task.
func (t *Task) Create(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Create").End()

	task, err := t.orig.Create(ctx, params)
	if err != nil {
		return internal.Task{}, err
	}

	setValue(ctx, t.client, taskKey(task.ID), &task, t.expiration)

	return task, nil
}

// Delete delegates and invalidates the cached task.
func (t *Task) Delete(ctx context.Context, id int64) error {
	defer newOTELSpan(ctx, "Task.Delete").End()

	if err := t.orig.Delete(ctx, id); err != nil {
		return err
	}

	deleteKey(ctx, t.client, taskKey(id))

	return nil
}

// Find returns the cached task when present, otherwise reads through and
// caches the result.
func (t *Task) Find(ctx context.Context, id int64) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Find").End()

	var res internal.Task

	if err := getValue(ctx, t.client, taskKey(id), &res); err == nil {
		return res, nil
	}

	t.logger.Debug("Find: not cached yet", zap.Int64("id", id))

	res, err := t.orig.Find(ctx, id)
	if err != nil {
		return internal.Task{}, err
	}

	setValue(ctx, t.client, taskKey(res.ID), &res, t.expiration)

	return res, nil
}

// List always delegates.
func (t *Task) List(ctx context.Context, args internal.TaskFilters) ([]internal.Task, error) {
	defer newOTELSpan(ctx, "Task.List").End()

	return t.orig.List(ctx, args)
}

// Update delegates and refreshes the cached task.
func (t *Task) Update(ctx context.Context, id int64, params internal.UpdateTaskParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Update").End()

	task, err := t.orig.Update(ctx, id, params)
	if err != nil {
		return internal.Task{}, err
	}

	setValue(ctx, t.client, taskKey(task.ID), &task, t.expiration)

	return task, nil
}
