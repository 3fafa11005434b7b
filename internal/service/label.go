package service

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/tasktrail/tasktrail-api/internal"
)

const otelName = "github.com/tasktrail/tasktrail-api/internal/service"

// LabelRepository defines the datastore handling persisting Label records.
type LabelRepository interface {
	Create(ctx context.Context, params internal.CreateLabelParams) (internal.Label, error)
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, id int64) (internal.Label, error)
	List(ctx context.Context) ([]internal.Label, error)
	Update(ctx context.Context, id int64, params internal.UpdateLabelParams) (internal.Label, error)
}

// TaskByLabelRepository defines the datastore handling listing the Tasks
// carrying a Label.
type TaskByLabelRepository interface {
	ByLabel(ctx context.Context, labelID int64) ([]internal.Task, error)
}

// Label defines the application service in charge of interacting with Labels.
type Label struct {
	logger *zap.Logger
	repo   LabelRepository
	tasks  TaskByLabelRepository
}

// NewLabel ...
func NewLabel(logger *zap.Logger, repo LabelRepository, tasks TaskByLabelRepository) *Label {
	return &Label{
		logger: logger,
		repo:   repo,
		tasks:  tasks,
	}
}

// Create stores a new record.
func (l *Label) Create(ctx context.Context, params internal.CreateLabelParams) (internal.Label, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Label.Create")
	defer span.End()

	if err := params.Validate(); err != nil {
		return internal.Label{}, fmt.Errorf("params: %w", err)
	}

	label, err := l.repo.Create(ctx, params)
	if err != nil {
		return internal.Label{}, fmt.Errorf("repo create: %w", err)
	}

	return label, nil
}

// Label gets an existing Label from the datastore.
func (l *Label) Label(ctx context.Context, id int64) (internal.Label, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Label.Label")
	defer span.End()

	label, err := l.repo.Find(ctx, id)
	if err != nil {
		return internal.Label{}, fmt.Errorf("repo find: %w", err)
	}

	return label, nil
}

// List returns all Labels sorted by name.
func (l *Label) List(ctx context.Context) ([]internal.Label, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Label.List")
	defer span.End()

	res, err := l.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("repo list: %w", err)
	}

	return res, nil
}

// Update modifies an existing Label in the datastore.
func (l *Label) Update(ctx context.Context, id int64, params internal.UpdateLabelParams) (internal.Label, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Label.Update")
	defer span.End()

	if err := params.Validate(); err != nil {
		return internal.Label{}, fmt.Errorf("params: %w", err)
	}

	label, err := l.repo.Update(ctx, id, params)
	if err != nil {
		return internal.Label{}, fmt.Errorf("repo update: %w", err)
	}

	return label, nil
}

// Delete removes an existing Label from the datastore, cascading its
// associations.
func (l *Label) Delete(ctx context.Context, id int64) error {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Label.Delete")
	defer span.End()

	if err := l.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("repo delete: %w", err)
	}

	return nil
}

// Tasks returns the Tasks carrying the Label, newest first.
func (l *Label) Tasks(ctx context.Context, id int64) ([]internal.Task, error) {
	ctx, span := trace.SpanFromContext(ctx).TracerProvider().Tracer(otelName).Start(ctx, "Label.Tasks")
	defer span.End()

	if _, err := l.repo.Find(ctx, id); err != nil {
		return nil, fmt.Errorf("repo find: %w", err)
	}

	res, err := l.tasks.ByLabel(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("tasks by label: %w", err)
	}

	return res, nil
}
