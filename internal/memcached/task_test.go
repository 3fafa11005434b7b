package memcached_test

import (
	"context"
	"testing"

	"github.com/bradfitz/gomemcache/memcache"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tasktrail/tasktrail-api/internal"
	"github.com/tasktrail/tasktrail-api/internal/memcached"
)

type clientFake struct {
	items map[string][]byte
}

func newClientFake() *clientFake {
	return &clientFake{items: map[string][]byte{}}
}

func (c *clientFake) Get(key string) (*memcache.Item, error) {
	value, ok := c.items[key]
	if !ok {
		return nil, memcache.ErrCacheMiss
	}

	return &memcache.Item{Key: key, Value: value}, nil
}

func (c *clientFake) Set(item *memcache.Item) error {
	c.items[item.Key] = item.Value

	return nil
}

func (c *clientFake) Delete(key string) error {
	if _, ok := c.items[key]; !ok {
		return memcache.ErrCacheMiss
	}

	delete(c.items, key)

	return nil
}

type taskStoreFake struct {
	task  internal.Task
	err   error
	finds int
}

func (s *taskStoreFake) Create(_ context.Context, _ internal.CreateTaskParams) (internal.Task, error) {
	return s.task, s.err
}

func (s *taskStoreFake) Delete(_ context.Context, _ int64) error {
	return s.err
}

func (s *taskStoreFake) Find(_ context.Context, _ int64) (internal.Task, error) {
	s.finds++

	return s.task, s.err
}

func (s *taskStoreFake) List(_ context.Context, _ internal.TaskFilters) ([]internal.Task, error) {
	return []internal.Task{s.task}, s.err
}

func (s *taskStoreFake) Update(_ context.Context, _ int64, _ internal.UpdateTaskParams) (internal.Task, error) {
	return s.task, s.err
}

func TestTask_Find(t *testing.T) {
	t.Parallel()

	t.Run("OK: second read served from cache", func(t *testing.T) {
		t.Parallel()

		store := &taskStoreFake{task: internal.Task{ID: 1, Title: "write report"}}
		repo := memcached.NewTask(newClientFake(), store, zap.NewNop())

		first, err := repo.Find(context.Background(), 1)
		require.NoError(t, err)

		second, err := repo.Find(context.Background(), 1)
		require.NoError(t, err)

		require.Equal(t, first, second)
		require.Equal(t, 1, store.finds)
	})

	t.Run("OK: delete invalidates the cached task", func(t *testing.T) {
		t.Parallel()

		store := &taskStoreFake{task: internal.Task{ID: 1, Title: "write report"}}
		repo := memcached.NewTask(newClientFake(), store, zap.NewNop())

		_, err := repo.Find(context.Background(), 1)
		require.NoError(t, err)

		require.NoError(t, repo.Delete(context.Background(), 1))

		_, err = repo.Find(context.Background(), 1)
		require.NoError(t, err)
		require.Equal(t, 2, store.finds)
	})
}
