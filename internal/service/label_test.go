package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tasktrail/tasktrail-api/internal"
	"github.com/tasktrail/tasktrail-api/internal/service"
)

type labelRepoStub struct {
	label internal.Label
	list  []internal.Label
	err   error
}

func (s *labelRepoStub) Create(_ context.Context, _ internal.CreateLabelParams) (internal.Label, error) {
	return s.label, s.err
}

func (s *labelRepoStub) Delete(_ context.Context, _ int64) error {
	return s.err
}

func (s *labelRepoStub) Find(_ context.Context, _ int64) (internal.Label, error) {
	return s.label, s.err
}

func (s *labelRepoStub) List(_ context.Context) ([]internal.Label, error) {
	return s.list, s.err
}

func (s *labelRepoStub) Update(_ context.Context, _ int64, _ internal.UpdateLabelParams) (internal.Label, error) {
	return s.label, s.err
}

type tasksByLabelSpy struct {
	tasks  []internal.Task
	err    error
	called bool
}

func (s *tasksByLabelSpy) ByLabel(_ context.Context, _ int64) ([]internal.Task, error) {
	s.called = true

	return s.tasks, s.err
}

func TestLabel_Create(t *testing.T) {
	t.Parallel()

	t.Run("OK", func(t *testing.T) {
		t.Parallel()

		repo := &labelRepoStub{label: internal.Label{ID: 1, Name: "Work", Color: "#0A84FF"}}
		svc := service.NewLabel(zap.NewNop(), repo, &tasksByLabelSpy{})

		label, err := svc.Create(context.Background(), internal.CreateLabelParams{Name: "Work", Color: "#0A84FF"})

		require.NoError(t, err)
		require.Equal(t, int64(1), label.ID)
	})

	t.Run("ERR: invalid color", func(t *testing.T) {
		t.Parallel()

		svc := service.NewLabel(zap.NewNop(), &labelRepoStub{}, &tasksByLabelSpy{})

		_, err := svc.Create(context.Background(), internal.CreateLabelParams{Name: "Work", Color: "blue"})

		requireErrorCode(t, err, internal.ErrorCodeInvalidArgument)
	})

	t.Run("ERR: duplicate name propagates", func(t *testing.T) {
		t.Parallel()

		repo := &labelRepoStub{err: internal.NewErrorf(internal.ErrorCodeAlreadyExists, "label exists")}
		svc := service.NewLabel(zap.NewNop(), repo, &tasksByLabelSpy{})

		_, err := svc.Create(context.Background(), internal.CreateLabelParams{Name: "Work", Color: "#0A84FF"})

		requireErrorCode(t, err, internal.ErrorCodeAlreadyExists)
	})
}

func TestLabel_Update(t *testing.T) {
	t.Parallel()

	t.Run("ERR: nothing to update", func(t *testing.T) {
		t.Parallel()

		svc := service.NewLabel(zap.NewNop(), &labelRepoStub{}, &tasksByLabelSpy{})

		_, err := svc.Update(context.Background(), 1, internal.UpdateLabelParams{})

		requireErrorCode(t, err, internal.ErrorCodeInvalidArgument)
	})
}

func TestLabel_Tasks(t *testing.T) {
	t.Parallel()

	t.Run("OK", func(t *testing.T) {
		t.Parallel()

		tasks := &tasksByLabelSpy{tasks: []internal.Task{{ID: 4}}}
		svc := service.NewLabel(zap.NewNop(), &labelRepoStub{}, tasks)

		res, err := svc.Tasks(context.Background(), 1)

		require.NoError(t, err)
		require.Len(t, res, 1)
	})

	t.Run("ERR: unknown label short-circuits", func(t *testing.T) {
		t.Parallel()

		repo := &labelRepoStub{err: internal.NewErrorf(internal.ErrorCodeNotFound, "label not found")}
		tasks := &tasksByLabelSpy{}
		svc := service.NewLabel(zap.NewNop(), repo, tasks)

		_, err := svc.Tasks(context.Background(), 404)

		requireErrorCode(t, err, internal.ErrorCodeNotFound)
		require.False(t, tasks.called)
	})
}
