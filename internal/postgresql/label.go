package postgresql

import (
	"context"

	"github.com/tasktrail/tasktrail-api/internal"
)

// Label represents the repository used for interacting with Label records.
type Label struct {
	pool DB
}

// NewLabel instantiates the Label repository.
func NewLabel(pool DB) *Label {
	return &Label{
		pool: pool,
	}
}

// Create inserts a new label record. A duplicate name surfaces as an
// already-exists error before any row is written.
func (l *Label) Create(ctx context.Context, params internal.CreateLabelParams) (internal.Label, error) {
	defer newOTELSpan(ctx, "Label.Create").End()

	var res internal.Label

	if err := l.pool.QueryRow(ctx, `
		INSERT INTO labels (name, color)
		VALUES ($1, $2)
		RETURNING id, name, color`,
		params.Name, params.Color).Scan(&res.ID, &res.Name, &res.Color); err != nil {
		return internal.Label{}, convertErr(err, "insert label")
	}

	return res, nil
}

// Find returns the requested label.
func (l *Label) Find(ctx context.Context, id int64) (internal.Label, error) {
	defer newOTELSpan(ctx, "Label.Find").End()

	var res internal.Label

	if err := l.pool.QueryRow(ctx,
		`SELECT id, name, color FROM labels WHERE id = $1`,
		id).Scan(&res.ID, &res.Name, &res.Color); err != nil {
		return internal.Label{}, convertErr(err, "find label")
	}

	return res, nil
}

// List returns all labels sorted by name.
func (l *Label) List(ctx context.Context) ([]internal.Label, error) {
	defer newOTELSpan(ctx, "Label.List").End()

	rows, err := l.pool.Query(ctx, `SELECT id, name, color FROM labels ORDER BY name`)
	if err != nil {
		return nil, convertErr(err, "list labels")
	}
	defer rows.Close()

	res := []internal.Label{}

	for rows.Next() {
		var label internal.Label

		if err := rows.Scan(&label.ID, &label.Name, &label.Color); err != nil {
			return nil, convertErr(err, "scan label")
		}

		res = append(res, label)
	}

	if err := rows.Err(); err != nil {
		return nil, convertErr(err, "rows")
	}

	return res, nil
}

// Update modifies the supplied fields of an existing label, unset fields keep
// their previous value. Renaming to another label's name surfaces as an
// already-exists error and writes nothing.
func (l *Label) Update(ctx context.Context, id int64, params internal.UpdateLabelParams) (internal.Label, error) {
	defer newOTELSpan(ctx, "Label.Update").End()

	var res internal.Label

	if err := l.pool.QueryRow(ctx, `
		UPDATE labels
		SET name = COALESCE($2, name),
			color = COALESCE($3, color)
		WHERE id = $1
		RETURNING id, name, color`,
		id, params.Name, params.Color).Scan(&res.ID, &res.Name, &res.Color); err != nil {
		return internal.Label{}, convertErr(err, "update label")
	}

	return res, nil
}

// Delete removes a label; the FK cascade removes its associations within the
// same statement.
func (l *Label) Delete(ctx context.Context, id int64) error {
	defer newOTELSpan(ctx, "Label.Delete").End()

	res, err := l.pool.Exec(ctx, `DELETE FROM labels WHERE id = $1`, id)
	if err != nil {
		return convertErr(err, "delete label")
	}

	if res.RowsAffected() == 0 {
		return internal.NewErrorf(internal.ErrorCodeNotFound, "label not found: %d", id)
	}

	return nil
}
