package rest

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tasktrail/tasktrail-api/internal"
)

// LabelService ...
type LabelService interface {
	Create(ctx context.Context, params internal.CreateLabelParams) (internal.Label, error)
	Delete(ctx context.Context, id int64) error
	Label(ctx context.Context, id int64) (internal.Label, error)
	List(ctx context.Context) ([]internal.Label, error)
	Tasks(ctx context.Context, id int64) ([]internal.Task, error)
	Update(ctx context.Context, id int64, params internal.UpdateLabelParams) (internal.Label, error)
}

// LabelHandler ...
type LabelHandler struct {
	svc LabelService
}

// NewLabelHandler ...
func NewLabelHandler(svc LabelService) *LabelHandler {
	return &LabelHandler{
		svc: svc,
	}
}

// Register connects the handlers to the router.
func (h *LabelHandler) Register(r chi.Router) {
	r.Get("/labels", h.list)
	r.Post("/labels", h.create)
	r.Get("/labels/{id}", h.label)
	r.Put("/labels/{id}", h.update)
	r.Delete("/labels/{id}", h.delete)
	r.Get("/labels/{id}/tasks", h.tasks)
}

// Label is a named, colored tag attachable to many tasks.
type Label struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Color string `json:"color"`
}

func newLabel(label internal.Label) Label {
	return Label{
		ID:    label.ID,
		Name:  label.Name,
		Color: label.Color,
	}
}

func newLabels(labels []internal.Label) []Label {
	res := make([]Label, 0, len(labels))

	for _, label := range labels {
		res = append(res, newLabel(label))
	}

	return res
}

// CreateLabelsRequest defines the request used for creating labels.
type CreateLabelsRequest struct {
	Name  string `json:"name"`
	Color string `json:"color"`
}

// UpdateLabelsRequest defines the request used for updating labels, absent
// fields retain their previous value.
type UpdateLabelsRequest struct {
	Name  *string `json:"name"`
	Color *string `json:"color"`
}

func (h *LabelHandler) list(w http.ResponseWriter, r *http.Request) {
	labels, err := h.svc.List(r.Context())
	if err != nil {
		renderErrorResponse(r.Context(), w, "list failed", err)
		return
	}

	renderResponse(w, newLabels(labels), http.StatusOK)
}

func (h *LabelHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateLabelsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, "invalid request",
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	label, err := h.svc.Create(r.Context(), internal.CreateLabelParams{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		renderErrorResponse(r.Context(), w, "create failed", err)
		return
	}

	renderResponse(w, newLabel(label), http.StatusCreated)
}

func (h *LabelHandler) label(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	label, err := h.svc.Label(r.Context(), id)
	if err != nil {
		renderErrorResponse(r.Context(), w, "find failed", err)
		return
	}

	renderResponse(w, newLabel(label), http.StatusOK)
}

func (h *LabelHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	var req UpdateLabelsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, "invalid request",
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	label, err := h.svc.Update(r.Context(), id, internal.UpdateLabelParams{
		Name:  req.Name,
		Color: req.Color,
	})
	if err != nil {
		renderErrorResponse(r.Context(), w, "update failed", err)
		return
	}

	renderResponse(w, newLabel(label), http.StatusOK)
}

func (h *LabelHandler) delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		renderErrorResponse(r.Context(), w, "delete failed", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *LabelHandler) tasks(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	tasks, err := h.svc.Tasks(r.Context(), id)
	if err != nil {
		renderErrorResponse(r.Context(), w, "list failed", err)
		return
	}

	renderResponse(w, newTasks(tasks), http.StatusOK)
}
