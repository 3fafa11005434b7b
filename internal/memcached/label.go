package memcached

import (
	"context"

	"go.uber.org/zap"

	"github.com/tasktrail/tasktrail-api/internal"
)

// Label decorates an existing LabelStore so that label mutations invalidate
// the cached entries of every task carrying the label. Cached tasks embed
// their resolved labels, so a rename or delete would otherwise keep serving
// the old label list until expiry.
type Label struct {
	client Client
	orig   LabelStore
	tasks  LabelTaskStore
	logger *zap.Logger
}

// LabelStore defines the datastore being decorated.
type LabelStore interface {
	Create(ctx context.Context, params internal.CreateLabelParams) (internal.Label, error)
	Delete(ctx context.Context, id int64) error
	Find(ctx context.Context, id int64) (internal.Label, error)
	List(ctx context.Context) ([]internal.Label, error)
	Update(ctx context.Context, id int64, params internal.UpdateLabelParams) (internal.Label, error)
}

// LabelTaskStore defines the datastore resolving which tasks carry a label.
type LabelTaskStore interface {
	ByLabel(ctx context.Context, labelID int64) ([]internal.Task, error)
}

// NewLabel instantiates the decorated Label repository.
func NewLabel(client Client, orig LabelStore, tasks LabelTaskStore, logger *zap.Logger) *Label {
	return &Label{
		client: client,
		orig:   orig,
		tasks:  tasks,
		logger: logger,
	}
}

// Create delegates, a new label cannot be attached to any task yet.
func (l *Label) Create(ctx context.Context, params internal.CreateLabelParams) (internal.Label, error) {
	defer newOTELSpan(ctx, "Label.Create").End()

	return l.orig.Create(ctx, params)
}

// Delete delegates and invalidates the cached tasks that carried the label.
// The carrying tasks are resolved before the delete, the cascade removes their
// association rows.
func (l *Label) Delete(ctx context.Context, id int64) error {
	defer newOTELSpan(ctx, "Label.Delete").End()

	tasks, err := l.tasks.ByLabel(ctx, id)
	if err != nil {
		return err
	}

	if err := l.orig.Delete(ctx, id); err != nil {
		return err
	}

	l.invalidate(ctx, tasks)

	return nil
}

// Find delegates.
func (l *Label) Find(ctx context.Context, id int64) (internal.Label, error) {
	defer newOTELSpan(ctx, "Label.Find").End()

	return l.orig.Find(ctx, id)
}

// List delegates.
func (l *Label) List(ctx context.Context) ([]internal.Label, error) {
	defer newOTELSpan(ctx, "Label.List").End()

	return l.orig.List(ctx)
}

// Update delegates and invalidates the cached tasks carrying the label, so a
// rename or recolor is visible on the next task read.
func (l *Label) Update(ctx context.Context, id int64, params internal.UpdateLabelParams) (internal.Label, error) {
	defer newOTELSpan(ctx, "Label.Update").End()

	label, err := l.orig.Update(ctx, id, params)
	if err != nil {
		return internal.Label{}, err
	}

	tasks, err := l.tasks.ByLabel(ctx, id)
	if err != nil {
		l.logger.Warn("ByLabel failed, cached tasks may serve a stale label until expiry",
			zap.Int64("label_id", id), zap.Error(err))

		return label, nil
	}

	l.invalidate(ctx, tasks)

	return label, nil
}

func (l *Label) invalidate(ctx context.Context, tasks []internal.Task) {
	for _, task := range tasks {
		deleteKey(ctx, l.client, taskKey(task.ID))
	}
}
