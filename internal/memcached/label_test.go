package memcached_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tasktrail/tasktrail-api/internal"
	"github.com/tasktrail/tasktrail-api/internal/memcached"
)

type labelStoreFake struct {
	label internal.Label
	err   error
}

func (s *labelStoreFake) Create(_ context.Context, _ internal.CreateLabelParams) (internal.Label, error) {
	return s.label, s.err
}

func (s *labelStoreFake) Delete(_ context.Context, _ int64) error {
	return s.err
}

func (s *labelStoreFake) Find(_ context.Context, _ int64) (internal.Label, error) {
	return s.label, s.err
}

func (s *labelStoreFake) List(_ context.Context) ([]internal.Label, error) {
	return []internal.Label{s.label}, s.err
}

func (s *labelStoreFake) Update(_ context.Context, _ int64, _ internal.UpdateLabelParams) (internal.Label, error) {
	return s.label, s.err
}

type labelTasksFake struct {
	tasks []internal.Task
	err   error
}

func (s *labelTasksFake) ByLabel(_ context.Context, _ int64) ([]internal.Task, error) {
	return s.tasks, s.err
}

func TestLabel_Delete(t *testing.T) {
	t.Parallel()

	t.Run("OK: invalidates cached tasks carrying the label", func(t *testing.T) {
		t.Parallel()

		client := newClientFake()

		carried := internal.Task{ID: 1, Title: "write report", Labels: []internal.Label{{ID: 7, Name: "Work", Color: "#0A84FF"}}}

		taskStore := &taskStoreFake{task: carried}
		taskRepo := memcached.NewTask(client, taskStore, zap.NewNop())

		_, err := taskRepo.Find(context.Background(), 1)
		require.NoError(t, err)
		require.Equal(t, 1, taskStore.finds)

		labelRepo := memcached.NewLabel(client, &labelStoreFake{}, &labelTasksFake{tasks: []internal.Task{carried}}, zap.NewNop())

		require.NoError(t, labelRepo.Delete(context.Background(), 7))

		// The cached copy is gone, the next read goes back to the store.
		_, err = taskRepo.Find(context.Background(), 1)
		require.NoError(t, err)
		require.Equal(t, 2, taskStore.finds)
	})

	t.Run("OK: unrelated cached tasks survive", func(t *testing.T) {
		t.Parallel()

		client := newClientFake()

		unrelated := internal.Task{ID: 2, Title: "groceries"}

		taskStore := &taskStoreFake{task: unrelated}
		taskRepo := memcached.NewTask(client, taskStore, zap.NewNop())

		_, err := taskRepo.Find(context.Background(), 2)
		require.NoError(t, err)

		labelRepo := memcached.NewLabel(client, &labelStoreFake{}, &labelTasksFake{}, zap.NewNop())

		require.NoError(t, labelRepo.Delete(context.Background(), 7))

		_, err = taskRepo.Find(context.Background(), 2)
		require.NoError(t, err)
		require.Equal(t, 1, taskStore.finds)
	})

	t.Run("ERR: store failure leaves the cache untouched", func(t *testing.T) {
		t.Parallel()

		client := newClientFake()

		carried := internal.Task{ID: 1, Title: "write report"}

		taskStore := &taskStoreFake{task: carried}
		taskRepo := memcached.NewTask(client, taskStore, zap.NewNop())

		_, err := taskRepo.Find(context.Background(), 1)
		require.NoError(t, err)

		labelStore := &labelStoreFake{err: internal.NewErrorf(internal.ErrorCodeNotFound, "label not found")}
		labelRepo := memcached.NewLabel(client, labelStore, &labelTasksFake{tasks: []internal.Task{carried}}, zap.NewNop())

		require.Error(t, labelRepo.Delete(context.Background(), 7))

		_, err = taskRepo.Find(context.Background(), 1)
		require.NoError(t, err)
		require.Equal(t, 1, taskStore.finds)
	})
}

func TestLabel_Update(t *testing.T) {
	t.Parallel()

	t.Run("OK: rename invalidates cached tasks carrying the label", func(t *testing.T) {
		t.Parallel()

		client := newClientFake()

		carried := internal.Task{ID: 1, Title: "write report", Labels: []internal.Label{{ID: 7, Name: "Work", Color: "#0A84FF"}}}

		taskStore := &taskStoreFake{task: carried}
		taskRepo := memcached.NewTask(client, taskStore, zap.NewNop())

		_, err := taskRepo.Find(context.Background(), 1)
		require.NoError(t, err)

		name := "Deep Work"
		labelStore := &labelStoreFake{label: internal.Label{ID: 7, Name: name, Color: "#0A84FF"}}
		labelRepo := memcached.NewLabel(client, labelStore, &labelTasksFake{tasks: []internal.Task{carried}}, zap.NewNop())

		_, err = labelRepo.Update(context.Background(), 7, internal.UpdateLabelParams{Name: &name})
		require.NoError(t, err)

		_, err = taskRepo.Find(context.Background(), 1)
		require.NoError(t, err)
		require.Equal(t, 2, taskStore.finds)
	})
}
