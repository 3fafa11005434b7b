package internal

import (
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

// Status indicates where a Task sits in its lifecycle. Transitions are
// unconstrained: any status may follow any other.
type Status string

const (
	// StatusPending is the initial status of newly created tasks.
	StatusPending Status = "pending"
	// StatusInProgress indicates work on the task has started.
	StatusInProgress Status = "in-progress"
	// StatusCompleted indicates the task is done.
	StatusCompleted Status = "completed"
)

// Validate ...
func (s Status) Validate() error {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted:
		return nil
	}

	return NewErrorf(ErrorCodeInvalidArgument, "unknown status: %q", s)
}

// Priority indicates how urgent a Task is.
type Priority string

const (
	// PriorityLow ...
	PriorityLow Priority = "low"
	// PriorityMedium is the default priority of newly created tasks.
	PriorityMedium Priority = "medium"
	// PriorityHigh ...
	PriorityHigh Priority = "high"
)

// Validate ...
func (p Priority) Validate() error {
	switch p {
	case PriorityLow, PriorityMedium, PriorityHigh:
		return nil
	}

	return NewErrorf(ErrorCodeInvalidArgument, "unknown priority: %q", p)
}

// Task is a unit of work with status, priority and an optional due date,
// carrying the labels currently associated to it.
type Task struct {
	ID          int64
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	Labels      []Label
}

// CreateTaskParams defines the fields used for creating tasks. Status and
// Priority default to "pending" and "medium" when unset.
type CreateTaskParams struct {
	Title       string
	Description string
	Status      Status
	Priority    Priority
	DueDate     *time.Time
	LabelIDs    []int64
}

// Validate indicates whether the fields are valid for persisting a new task.
func (p CreateTaskParams) Validate() error {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required),
		validation.Field(&p.Status, validation.In(StatusPending, StatusInProgress, StatusCompleted)),
		validation.Field(&p.Priority, validation.In(PriorityLow, PriorityMedium, PriorityHigh)),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "validation.ValidateStruct")
	}

	return nil
}

// UpdateTaskParams defines the fields used for updating a task. Nil fields
// retain their previous value; a nil LabelIDs leaves the association set
// untouched while an empty non-nil one clears it.
type UpdateTaskParams struct {
	Title       *string
	Description *string
	Status      *Status
	Priority    *Priority
	DueDate     *time.Time
	LabelIDs    *[]int64
}

// Validate indicates whether the supplied fields are valid.
func (p UpdateTaskParams) Validate() error {
	if p.Title != nil && *p.Title == "" {
		return NewErrorf(ErrorCodeInvalidArgument, "title must not be empty")
	}

	if p.Status != nil {
		if err := p.Status.Validate(); err != nil {
			return err
		}
	}

	if p.Priority != nil {
		if err := p.Priority.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// Sortable task columns. Client-supplied sort fields are rejected unless they
// match one of these.
const (
	SortCreatedAt = "created_at"
	SortUpdatedAt = "updated_at"
	SortTitle     = "title"
	SortPriority  = "priority"
	SortStatus    = "status"
	SortDueDate   = "due_date"
)

// TaskFilters defines the optional conditions used for listing tasks, combined
// conjunctively. Sort defaults to created_at, Order to desc.
type TaskFilters struct {
	Status   *Status
	Priority *Priority
	LabelID  *int64
	Search   *string
	Sort     string
	Order    string
}

// Validate indicates whether the filter combination is usable.
func (f TaskFilters) Validate() error {
	if err := validation.ValidateStruct(&f,
		validation.Field(&f.Status, validation.In(StatusPending, StatusInProgress, StatusCompleted)),
		validation.Field(&f.Priority, validation.In(PriorityLow, PriorityMedium, PriorityHigh)),
		validation.Field(&f.Sort, validation.In(SortCreatedAt, SortUpdatedAt, SortTitle, SortPriority, SortStatus, SortDueDate)),
		validation.Field(&f.Order, validation.In("asc", "desc")),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "validation.ValidateStruct")
	}

	return nil
}

// SearchParams defines the fields used for searching tasks in the index.
type SearchParams struct {
	Title    *string
	Status   *Status
	Priority *Priority
	From     int64
	Size     int64
}

// IsZero determines whether the search arguments are empty.
func (p SearchParams) IsZero() bool {
	return p.Title == nil && p.Status == nil && p.Priority == nil
}

// SearchResults defines the collection of tasks matching a search.
type SearchResults struct {
	Tasks []Task
	Total int64
}
