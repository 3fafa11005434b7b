package rest_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/tasktrail/tasktrail-api/internal"
	"github.com/tasktrail/tasktrail-api/internal/rest"
)

type labelServiceStub struct {
	label internal.Label
	list  []internal.Label
	tasks []internal.Task
	err   error

	gotCreate internal.CreateLabelParams
	gotUpdate internal.UpdateLabelParams
	gotID     int64
}

func (s *labelServiceStub) Create(_ context.Context, params internal.CreateLabelParams) (internal.Label, error) {
	s.gotCreate = params

	return s.label, s.err
}

func (s *labelServiceStub) Delete(_ context.Context, id int64) error {
	s.gotID = id

	return s.err
}

func (s *labelServiceStub) Label(_ context.Context, id int64) (internal.Label, error) {
	s.gotID = id

	return s.label, s.err
}

func (s *labelServiceStub) List(_ context.Context) ([]internal.Label, error) {
	return s.list, s.err
}

func (s *labelServiceStub) Tasks(_ context.Context, id int64) ([]internal.Task, error) {
	s.gotID = id

	return s.tasks, s.err
}

func (s *labelServiceStub) Update(_ context.Context, id int64, params internal.UpdateLabelParams) (internal.Label, error) {
	s.gotID = id
	s.gotUpdate = params

	return s.label, s.err
}

func newLabelRouter(svc rest.LabelService) *chi.Mux {
	router := chi.NewRouter()
	rest.NewLabelHandler(svc).Register(router)

	return router
}

func TestLabelHandler_Create(t *testing.T) {
	t.Parallel()

	t.Run("OK: 201", func(t *testing.T) {
		t.Parallel()

		svc := &labelServiceStub{label: internal.Label{ID: 1, Name: "Work", Color: "#0A84FF"}}
		router := newLabelRouter(svc)

		rec := doRequest(t, router, http.MethodPost, "/labels", map[string]interface{}{
			"name":  "Work",
			"color": "#0A84FF",
		})

		require.Equal(t, http.StatusCreated, rec.Code)
		require.Equal(t, internal.CreateLabelParams{Name: "Work", Color: "#0A84FF"}, svc.gotCreate)

		var got rest.Label

		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Equal(t, int64(1), got.ID)
	})

	t.Run("ERR: 409 on duplicate name", func(t *testing.T) {
		t.Parallel()

		svc := &labelServiceStub{err: internal.NewErrorf(internal.ErrorCodeAlreadyExists, "label exists")}
		router := newLabelRouter(svc)

		rec := doRequest(t, router, http.MethodPost, "/labels", map[string]interface{}{
			"name":  "Work",
			"color": "#0A84FF",
		})

		require.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("ERR: 400 on invalid color", func(t *testing.T) {
		t.Parallel()

		svc := &labelServiceStub{err: internal.NewErrorf(internal.ErrorCodeInvalidArgument, "color must be a hex code")}
		router := newLabelRouter(svc)

		rec := doRequest(t, router, http.MethodPost, "/labels", map[string]interface{}{
			"name":  "Work",
			"color": "blue",
		})

		require.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestLabelHandler_List(t *testing.T) {
	t.Parallel()

	t.Run("OK: empty result renders an empty array", func(t *testing.T) {
		t.Parallel()

		router := newLabelRouter(&labelServiceStub{})

		rec := doRequest(t, router, http.MethodGet, "/labels", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		require.JSONEq(t, "[]", rec.Body.String())
	})
}

func TestLabelHandler_Update(t *testing.T) {
	t.Parallel()

	t.Run("OK: only supplied fields forwarded", func(t *testing.T) {
		t.Parallel()

		svc := &labelServiceStub{label: internal.Label{ID: 2, Name: "Deep Work", Color: "#0A84FF"}}
		router := newLabelRouter(svc)

		rec := doRequest(t, router, http.MethodPut, "/labels/2", map[string]interface{}{
			"name": "Deep Work",
		})

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, int64(2), svc.gotID)
		require.NotNil(t, svc.gotUpdate.Name)
		require.Equal(t, "Deep Work", *svc.gotUpdate.Name)
		require.Nil(t, svc.gotUpdate.Color)
	})

	t.Run("ERR: 404 when missing", func(t *testing.T) {
		t.Parallel()

		svc := &labelServiceStub{err: internal.NewErrorf(internal.ErrorCodeNotFound, "label not found")}
		router := newLabelRouter(svc)

		rec := doRequest(t, router, http.MethodPut, "/labels/404", map[string]interface{}{
			"name": "Deep Work",
		})

		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}

func TestLabelHandler_Delete(t *testing.T) {
	t.Parallel()

	t.Run("OK: 204 without a body", func(t *testing.T) {
		t.Parallel()

		svc := &labelServiceStub{}
		router := newLabelRouter(svc)

		rec := doRequest(t, router, http.MethodDelete, "/labels/7", nil)

		require.Equal(t, http.StatusNoContent, rec.Code)
		require.Empty(t, rec.Body.String())
		require.Equal(t, int64(7), svc.gotID)
	})
}

func TestLabelHandler_Tasks(t *testing.T) {
	t.Parallel()

	t.Run("OK: tasks include resolved labels", func(t *testing.T) {
		t.Parallel()

		svc := &labelServiceStub{tasks: []internal.Task{
			{ID: 1, Title: "write report", Labels: []internal.Label{{ID: 7, Name: "Work", Color: "#0A84FF"}}},
		}}
		router := newLabelRouter(svc)

		rec := doRequest(t, router, http.MethodGet, "/labels/7/tasks", nil)

		require.Equal(t, http.StatusOK, rec.Code)
		require.Equal(t, int64(7), svc.gotID)

		var got []rest.Task

		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		require.Len(t, got, 1)
		require.Len(t, got[0].Labels, 1)
		require.Equal(t, "Work", got[0].Labels[0].Name)
	})

	t.Run("ERR: 404 for unknown label", func(t *testing.T) {
		t.Parallel()

		svc := &labelServiceStub{err: internal.NewErrorf(internal.ErrorCodeNotFound, "label not found")}
		router := newLabelRouter(svc)

		rec := doRequest(t, router, http.MethodGet, "/labels/404/tasks", nil)

		require.Equal(t, http.StatusNotFound, rec.Code)
	})
}
