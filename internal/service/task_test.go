package service_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tasktrail/tasktrail-api/internal"
	"github.com/tasktrail/tasktrail-api/internal/service"
)

type taskRepoStub struct {
	task internal.Task
	list []internal.Task
	err  error
}

func (s *taskRepoStub) Create(_ context.Context, _ internal.CreateTaskParams) (internal.Task, error) {
	return s.task, s.err
}

func (s *taskRepoStub) Delete(_ context.Context, _ int64) error {
	return s.err
}

func (s *taskRepoStub) Find(_ context.Context, _ int64) (internal.Task, error) {
	return s.task, s.err
}

func (s *taskRepoStub) List(_ context.Context, _ internal.TaskFilters) ([]internal.Task, error) {
	return s.list, s.err
}

func (s *taskRepoStub) Update(_ context.Context, _ int64, _ internal.UpdateTaskParams) (internal.Task, error) {
	return s.task, s.err
}

type searchRepoStub struct {
	res internal.SearchResults
	err error
}

func (s *searchRepoStub) Search(_ context.Context, _ internal.SearchParams) (internal.SearchResults, error) {
	return s.res, s.err
}

type brokerSpy struct {
	created []internal.Task
	updated []internal.Task
	deleted []int64
	err     error
}

func (s *brokerSpy) Created(_ context.Context, task internal.Task) error {
	s.created = append(s.created, task)

	return s.err
}

func (s *brokerSpy) Deleted(_ context.Context, id int64) error {
	s.deleted = append(s.deleted, id)

	return s.err
}

func (s *brokerSpy) Updated(_ context.Context, task internal.Task) error {
	s.updated = append(s.updated, task)

	return s.err
}

func newTaskService(repo *taskRepoStub, search *searchRepoStub, broker *brokerSpy) *service.Task {
	return service.NewTask(zap.NewNop(), repo, search, broker)
}

func TestTask_Create(t *testing.T) {
	t.Parallel()

	t.Run("OK: publishes created event", func(t *testing.T) {
		t.Parallel()

		repo := &taskRepoStub{task: internal.Task{ID: 1, Title: "write report"}}
		broker := &brokerSpy{}
		svc := newTaskService(repo, &searchRepoStub{}, broker)

		task, err := svc.Create(context.Background(), internal.CreateTaskParams{Title: "write report"})

		require.NoError(t, err)
		require.Equal(t, int64(1), task.ID)
		require.Len(t, broker.created, 1)
		require.Equal(t, task, broker.created[0])
	})

	t.Run("OK: broker failure does not fail the request", func(t *testing.T) {
		t.Parallel()

		repo := &taskRepoStub{task: internal.Task{ID: 1, Title: "write report"}}
		broker := &brokerSpy{err: internal.NewErrorf(internal.ErrorCodeUnknown, "broker down")}
		svc := newTaskService(repo, &searchRepoStub{}, broker)

		_, err := svc.Create(context.Background(), internal.CreateTaskParams{Title: "write report"})

		require.NoError(t, err)
	})

	t.Run("ERR: invalid params never reach the repository", func(t *testing.T) {
		t.Parallel()

		broker := &brokerSpy{}
		svc := newTaskService(&taskRepoStub{}, &searchRepoStub{}, broker)

		_, err := svc.Create(context.Background(), internal.CreateTaskParams{})

		requireErrorCode(t, err, internal.ErrorCodeInvalidArgument)
		require.Empty(t, broker.created)
	})

	t.Run("ERR: repository failure propagates", func(t *testing.T) {
		t.Parallel()

		repo := &taskRepoStub{err: internal.NewErrorf(internal.ErrorCodeUnknown, "boom")}
		broker := &brokerSpy{}
		svc := newTaskService(repo, &searchRepoStub{}, broker)

		_, err := svc.Create(context.Background(), internal.CreateTaskParams{Title: "write report"})

		require.Error(t, err)
		require.Empty(t, broker.created)
	})
}

func TestTask_Task(t *testing.T) {
	t.Parallel()

	t.Run("ERR: not found propagates", func(t *testing.T) {
		t.Parallel()

		repo := &taskRepoStub{err: internal.NewErrorf(internal.ErrorCodeNotFound, "task not found")}
		svc := newTaskService(repo, &searchRepoStub{}, &brokerSpy{})

		_, err := svc.Task(context.Background(), 404)

		requireErrorCode(t, err, internal.ErrorCodeNotFound)
	})
}

func TestTask_List(t *testing.T) {
	t.Parallel()

	t.Run("OK", func(t *testing.T) {
		t.Parallel()

		repo := &taskRepoStub{list: []internal.Task{{ID: 1}, {ID: 2}}}
		svc := newTaskService(repo, &searchRepoStub{}, &brokerSpy{})

		res, err := svc.List(context.Background(), internal.TaskFilters{})

		require.NoError(t, err)
		require.Len(t, res, 2)
	})

	t.Run("ERR: invalid filters", func(t *testing.T) {
		t.Parallel()

		svc := newTaskService(&taskRepoStub{}, &searchRepoStub{}, &brokerSpy{})

		_, err := svc.List(context.Background(), internal.TaskFilters{Order: "sideways"})

		requireErrorCode(t, err, internal.ErrorCodeInvalidArgument)
	})
}

func TestTask_Update(t *testing.T) {
	t.Parallel()

	t.Run("OK: publishes updated event", func(t *testing.T) {
		t.Parallel()

		repo := &taskRepoStub{task: internal.Task{ID: 1, Title: "renamed"}}
		broker := &brokerSpy{}
		svc := newTaskService(repo, &searchRepoStub{}, broker)

		title := "renamed"

		task, err := svc.Update(context.Background(), 1, internal.UpdateTaskParams{Title: &title})

		require.NoError(t, err)
		require.Len(t, broker.updated, 1)
		require.Equal(t, task, broker.updated[0])
	})

	t.Run("ERR: invalid params never reach the repository", func(t *testing.T) {
		t.Parallel()

		broker := &brokerSpy{}
		svc := newTaskService(&taskRepoStub{}, &searchRepoStub{}, broker)

		empty := ""

		_, err := svc.Update(context.Background(), 1, internal.UpdateTaskParams{Title: &empty})

		requireErrorCode(t, err, internal.ErrorCodeInvalidArgument)
		require.Empty(t, broker.updated)
	})
}

func TestTask_Delete(t *testing.T) {
	t.Parallel()

	t.Run("OK: publishes deleted event", func(t *testing.T) {
		t.Parallel()

		broker := &brokerSpy{}
		svc := newTaskService(&taskRepoStub{}, &searchRepoStub{}, broker)

		require.NoError(t, svc.Delete(context.Background(), 9))
		require.Equal(t, []int64{9}, broker.deleted)
	})

	t.Run("ERR: not found skips publishing", func(t *testing.T) {
		t.Parallel()

		repo := &taskRepoStub{err: internal.NewErrorf(internal.ErrorCodeNotFound, "task not found")}
		broker := &brokerSpy{}
		svc := newTaskService(repo, &searchRepoStub{}, broker)

		err := svc.Delete(context.Background(), 404)

		requireErrorCode(t, err, internal.ErrorCodeNotFound)
		require.Empty(t, broker.deleted)
	})
}

func TestTask_By(t *testing.T) {
	t.Parallel()

	t.Run("OK", func(t *testing.T) {
		t.Parallel()

		search := &searchRepoStub{res: internal.SearchResults{Total: 3}}
		svc := newTaskService(&taskRepoStub{}, search, &brokerSpy{})

		res, err := svc.By(context.Background(), internal.SearchParams{})

		require.NoError(t, err)
		require.Equal(t, int64(3), res.Total)
	})
}

func requireErrorCode(t *testing.T, err error, code internal.ErrorCode) {
	t.Helper()

	var ierr *internal.Error

	require.ErrorAs(t, err, &ierr)
	require.Equal(t, code, ierr.Code())
}
