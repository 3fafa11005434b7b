package rest

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tasktrail/tasktrail-api/internal"
)

const dateLayout = "2006-01-02"

// TaskService ...
type TaskService interface {
	By(ctx context.Context, args internal.SearchParams) (internal.SearchResults, error)
	Create(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error)
	Delete(ctx context.Context, id int64) error
	List(ctx context.Context, args internal.TaskFilters) ([]internal.Task, error)
	Task(ctx context.Context, id int64) (internal.Task, error)
	Update(ctx context.Context, id int64, params internal.UpdateTaskParams) (internal.Task, error)
}

// TaskHandler ...
type TaskHandler struct {
	svc TaskService
}

// NewTaskHandler ...
func NewTaskHandler(svc TaskService) *TaskHandler {
	return &TaskHandler{
		svc: svc,
	}
}

// Register connects the handlers to the router.
func (h *TaskHandler) Register(r chi.Router) {
	r.Get("/tasks", h.list)
	r.Post("/tasks", h.create)
	r.Post("/tasks/search", h.search)
	r.Get("/tasks/{id}", h.task)
	r.Put("/tasks/{id}", h.update)
	r.Delete("/tasks/{id}", h.delete)
}

// Task is a unit of work with status, priority and an optional due date.
type Task struct {
	ID          int64     `json:"id"`
	Title       string    `json:"title"`
	Description string    `json:"description"`
	Status      string    `json:"status"`
	Priority    string    `json:"priority"`
	DueDate     *string   `json:"due_date"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
	Labels      []Label   `json:"labels"`
}

func newTask(task internal.Task) Task {
	res := Task{
		ID:          task.ID,
		Title:       task.Title,
		Description: task.Description,
		Status:      string(task.Status),
		Priority:    string(task.Priority),
		CreatedAt:   task.CreatedAt,
		UpdatedAt:   task.UpdatedAt,
		Labels:      newLabels(task.Labels),
	}

	if task.DueDate != nil {
		due := task.DueDate.Format(dateLayout)
		res.DueDate = &due
	}

	return res
}

func newTasks(tasks []internal.Task) []Task {
	res := make([]Task, 0, len(tasks))

	for _, task := range tasks {
		res = append(res, newTask(task))
	}

	return res
}

// CreateTasksRequest defines the request used for creating tasks.
type CreateTasksRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Status      string  `json:"status"`
	Priority    string  `json:"priority"`
	DueDate     *string `json:"due_date"`
	Labels      []int64 `json:"labels"`
}

// UpdateTasksRequest defines the request used for updating tasks, absent
// fields retain their previous value. An absent labels field leaves the
// associations untouched, an empty list clears them.
type UpdateTasksRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	Priority    *string  `json:"priority"`
	DueDate     *string  `json:"due_date"`
	Labels      *[]int64 `json:"labels"`
}

// SearchTasksRequest defines the request used for searching tasks in the
// index.
type SearchTasksRequest struct {
	Title    *string `json:"title"`
	Status   *string `json:"status"`
	Priority *string `json:"priority"`
	From     int64   `json:"from"`
	Size     int64   `json:"size"`
}

// SearchTasksResponse defines the response returned back after searching the
// index.
type SearchTasksResponse struct {
	Tasks []Task `json:"tasks"`
	Total int64  `json:"total"`
}

func (h *TaskHandler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	var args internal.TaskFilters

	if v := q.Get("status"); v != "" {
		status := internal.Status(v)
		args.Status = &status
	}

	if v := q.Get("priority"); v != "" {
		priority := internal.Priority(v)
		args.Priority = &priority
	}

	if v := q.Get("label"); v != "" {
		labelID, err := parseInt(v)
		if err != nil {
			renderErrorResponse(r.Context(), w, "invalid label", err)
			return
		}

		args.LabelID = &labelID
	}

	if v := q.Get("search"); v != "" {
		args.Search = &v
	}

	args.Sort = q.Get("sort")
	args.Order = q.Get("order")

	tasks, err := h.svc.List(r.Context(), args)
	if err != nil {
		renderErrorResponse(r.Context(), w, "list failed", err)
		return
	}

	renderResponse(w, newTasks(tasks), http.StatusOK)
}

func (h *TaskHandler) create(w http.ResponseWriter, r *http.Request) {
	var req CreateTasksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, "invalid request",
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid due_date", err)
		return
	}

	task, err := h.svc.Create(r.Context(), internal.CreateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      internal.Status(req.Status),
		Priority:    internal.Priority(req.Priority),
		DueDate:     dueDate,
		LabelIDs:    req.Labels,
	})
	if err != nil {
		renderErrorResponse(r.Context(), w, "create failed", err)
		return
	}

	renderResponse(w, newTask(task), http.StatusCreated)
}

func (h *TaskHandler) task(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	task, err := h.svc.Task(r.Context(), id)
	if err != nil {
		renderErrorResponse(r.Context(), w, "find failed", err)
		return
	}

	renderResponse(w, newTask(task), http.StatusOK)
}

func (h *TaskHandler) update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid id", err)
		return
	}

	var req UpdateTasksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, "invalid request",
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		renderErrorResponse(r.Context(), w, "invalid due_date", err)
		return
	}

	task, err := h.svc.Update(r.Context(), id, internal.UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		Status:      (*internal.Status)(req.Status),
		Priority:    (*internal.Priority)(req.Priority),
		DueDate:     dueDate,
		LabelIDs:    req.Labels,
	})
	if err != nil {
		renderErrorResponse(r.Context(), w, "update failed", err)
		return
	}

	renderResponse(w, newTask(task), http.StatusOK)
}

func (h *TaskHandler) delete(w http.ResponseWriter, r *http.Request) {
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

func (h *TaskHandler) search(w http.ResponseWriter, r *http.Request) {
	var req SearchTasksRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderErrorResponse(r.Context(), w, "invalid request",
			internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "json decoder"))
		return
	}
	defer r.Body.Close()

	if req.Size == 0 {
		req.Size = 10
	}

	res, err := h.svc.By(r.Context(), internal.SearchParams{
		Title:    req.Title,
		Status:   (*internal.Status)(req.Status),
		Priority: (*internal.Priority)(req.Priority),
		From:     req.From,
		Size:     req.Size,
	})
	if err != nil {
		renderErrorResponse(r.Context(), w, "search failed", err)
		return
	}

	renderResponse(w, &SearchTasksResponse{
		Tasks: newTasks(res.Tasks),
		Total: res.Total,
	}, http.StatusOK)
}

func parseDate(v *string) (*time.Time, error) {
	if v == nil {
		return nil, nil
	}

	t, err := time.Parse(dateLayout, *v)
	if err != nil {
		return nil, internal.WrapErrorf(err, internal.ErrorCodeInvalidArgument, "due_date must be YYYY-MM-DD")
	}

	return &t, nil
}
