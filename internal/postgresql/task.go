package postgresql

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"

	"github.com/tasktrail/tasktrail-api/internal"
)

const taskFields = `t.id, t.title, t.description, t.status, t.priority, t.due_date, t.created_at, t.updated_at`

// Aggregated label columns, positionally aligned because all three aggregate
// in label id order. Native arrays, so names and colors may contain anything.
const labelAggFields = `
	COALESCE(ARRAY_AGG(l.id ORDER BY l.id) FILTER (WHERE l.id IS NOT NULL), '{}'),
	COALESCE(ARRAY_AGG(l.name ORDER BY l.id) FILTER (WHERE l.id IS NOT NULL), '{}'),
	COALESCE(ARRAY_AGG(l.color ORDER BY l.id) FILTER (WHERE l.id IS NOT NULL), '{}')`

const taskJoin = `
	FROM tasks t
	LEFT JOIN task_labels tl ON tl.task_id = t.id
	LEFT JOIN labels l ON l.id = tl.label_id`

// sortColumns is the allow-list of client-facing sort fields. Anything else
// never reaches the query text.
var sortColumns = map[string]string{
	internal.SortCreatedAt: "t.created_at",
	internal.SortUpdatedAt: "t.updated_at",
	internal.SortTitle:     "t.title",
	internal.SortPriority:  "t.priority",
	internal.SortStatus:    "t.status",
	internal.SortDueDate:   "t.due_date",
}

// Task represents the repository used for interacting with Task records.
type Task struct {
	pool DB
}

// NewTask instantiates the Task repository.
func NewTask(pool DB) *Task {
	return &Task{
		pool: pool,
	}
}

// Create inserts a new task record together with its label associations, as
// one transaction.
func (t *Task) Create(ctx context.Context, params internal.CreateTaskParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Create").End()

	status := params.Status
	if status == "" {
		status = internal.StatusPending
	}

	priority := params.Priority
	if priority == "" {
		priority = internal.PriorityMedium
	}

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Begin")
	}
	defer tx.Rollback(ctx) //nolint: errcheck

	var id int64

	if err := tx.QueryRow(ctx, `
		INSERT INTO tasks (title, description, status, priority, due_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`,
		params.Title,
		params.Description,
		string(status),
		string(priority),
		params.DueDate).Scan(&id); err != nil {
		return internal.Task{}, convertErr(err, "insert task")
	}

	if err := setLabels(ctx, tx, id, params.LabelIDs); err != nil {
		return internal.Task{}, err
	}

	if err := tx.Commit(ctx); err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tx.Commit")
	}

	return t.Find(ctx, id)
}

// Find returns the requested task with its resolved labels.
func (t *Task) Find(ctx context.Context, id int64) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Find").End()

	row := t.pool.QueryRow(ctx,
		`SELECT `+taskFields+`,`+labelAggFields+taskJoin+`
		WHERE t.id = $1
		GROUP BY t.id`,
		id)

	task, err := scanTask(row)
	if err != nil {
		return internal.Task{}, convertErr(err, "find task")
	}

	return task, nil
}

// List returns the tasks matching all supplied filters, read-only.
func (t *Task) List(ctx context.Context, args internal.TaskFilters) ([]internal.Task, error) {
	defer newOTELSpan(ctx, "Task.List").End()

	query, params := buildListQuery(args)

	rows, err := t.pool.Query(ctx, query, params...)
	if err != nil {
		return nil, convertErr(err, "list tasks")
	}
	defer rows.Close()

	res := []internal.Task{}

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, convertErr(err, "scan task")
		}

		res = append(res, task)
	}

	if err := rows.Err(); err != nil {
		return nil, convertErr(err, "rows")
	}

	return res, nil
}

// ByLabel returns the tasks carrying the label, newest first.
func (t *Task) ByLabel(ctx context.Context, labelID int64) ([]internal.Task, error) {
	defer newOTELSpan(ctx, "Task.ByLabel").End()

	rows, err := t.pool.Query(ctx,
		`SELECT `+taskFields+`,`+labelAggFields+taskJoin+`
		WHERE t.id IN (SELECT task_id FROM task_labels WHERE label_id = $1)
		GROUP BY t.id
		ORDER BY t.created_at DESC`,
		labelID)
	if err != nil {
		return nil, convertErr(err, "list tasks by label")
	}
	defer rows.Close()

	res := []internal.Task{}

	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, convertErr(err, "scan task")
		}

		res = append(res, task)
	}

	if err := rows.Err(); err != nil {
		return nil, convertErr(err, "rows")
	}

	return res, nil
}

// Update modifies the supplied fields of an existing task, unset fields keep
// their previous value. The scalar update and the label replacement commit or
// roll back together.
func (t *Task) Update(ctx context.Context, id int64, params internal.UpdateTaskParams) (internal.Task, error) {
	defer newOTELSpan(ctx, "Task.Update").End()

	tx, err := t.pool.Begin(ctx)
	if err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "pool.Begin")
	}
	defer tx.Rollback(ctx) //nolint: errcheck

	var found int64

	if err := tx.QueryRow(ctx, `
		UPDATE tasks
		SET title = COALESCE($2, title),
			description = COALESCE($3, description),
			status = COALESCE($4, status),
			priority = COALESCE($5, priority),
			due_date = COALESCE($6, due_date),
			updated_at = NOW()
		WHERE id = $1
		RETURNING id`,
		id,
		params.Title,
		params.Description,
		stringPtr(params.Status),
		stringPtr(params.Priority),
		params.DueDate).Scan(&found); err != nil {
		return internal.Task{}, convertErr(err, "update task")
	}

	if params.LabelIDs != nil {
		if err := setLabels(ctx, tx, id, *params.LabelIDs); err != nil {
			return internal.Task{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return internal.Task{}, internal.WrapErrorf(err, internal.ErrorCodeUnknown, "tx.Commit")
	}

	return t.Find(ctx, id)
}

// Delete removes a task; the FK cascade removes its associations within the
// same statement.
func (t *Task) Delete(ctx context.Context, id int64) error {
	defer newOTELSpan(ctx, "Task.Delete").End()

	res, err := t.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return convertErr(err, "delete task")
	}

	if res.RowsAffected() == 0 {
		return internal.NewErrorf(internal.ErrorCodeNotFound, "task not found: %d", id)
	}

	return nil
}

// setLabels replaces the task's whole association set inside the caller's
// transaction. Duplicate ids collapse before insert; an unknown label id fails
// the transaction via the FK constraint.
func setLabels(ctx context.Context, tx pgx.Tx, taskID int64, labelIDs []int64) error {
	if _, err := tx.Exec(ctx, `DELETE FROM task_labels WHERE task_id = $1`, taskID); err != nil {
		return convertErr(err, "delete task_labels")
	}

	ids := dedupe(labelIDs)
	if len(ids) == 0 {
		return nil
	}

	if _, err := tx.Exec(ctx, `
		INSERT INTO task_labels (task_id, label_id)
		SELECT $1, UNNEST($2::BIGINT[])`,
		taskID, ids); err != nil {
		return convertErr(err, "insert task_labels")
	}

	return nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]struct{}, len(ids))
	res := make([]int64, 0, len(ids))

	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}

		seen[id] = struct{}{}
		res = append(res, id)
	}

	return res
}

// buildListQuery assembles the listing query. Every filter becomes an AND-ed
// parameterized condition; the sort column comes from the allow-list, never
// from raw client input.
func buildListQuery(args internal.TaskFilters) (string, []interface{}) {
	var conds []string

	var params []interface{}

	add := func(cond string, v interface{}) {
		params = append(params, v)
		conds = append(conds, fmt.Sprintf(cond, len(params)))
	}

	if args.Status != nil {
		add("t.status = $%d", string(*args.Status))
	}

	if args.Priority != nil {
		add("t.priority = $%d", string(*args.Priority))
	}

	if args.LabelID != nil {
		// Membership subquery instead of a condition on the joined label row,
		// which would truncate the aggregated label arrays.
		add("t.id IN (SELECT task_id FROM task_labels WHERE label_id = $%d)", *args.LabelID)
	}

	if args.Search != nil {
		n := len(params) + 1
		params = append(params, "%"+*args.Search+"%")
		conds = append(conds, fmt.Sprintf("(t.title ILIKE $%d OR t.description ILIKE $%d)", n, n))
	}

	var sb strings.Builder

	sb.WriteString(`SELECT ` + taskFields + `,` + labelAggFields + taskJoin)

	if len(conds) > 0 {
		sb.WriteString("\n\tWHERE " + strings.Join(conds, " AND "))
	}

	sb.WriteString("\n\tGROUP BY t.id")

	col, ok := sortColumns[args.Sort]
	if !ok {
		col = sortColumns[internal.SortCreatedAt]
	}

	order := "DESC"
	if args.Order == "asc" {
		order = "ASC"
	}

	sb.WriteString("\n\tORDER BY " + col + " " + order)

	return sb.String(), params
}

// scanTask flattens one grouped row into a task with its labels zipped from
// the three parallel aggregated columns.
func scanTask(row pgx.Row) (internal.Task, error) {
	var (
		task             internal.Task
		status, priority string
		labelIDs         []int64
		names, colors    []string
	)

	if err := row.Scan(
		&task.ID,
		&task.Title,
		&task.Description,
		&status,
		&priority,
		&task.DueDate,
		&task.CreatedAt,
		&task.UpdatedAt,
		&labelIDs,
		&names,
		&colors); err != nil {
		return internal.Task{}, err
	}

	task.Status = internal.Status(status)
	task.Priority = internal.Priority(priority)
	task.Labels = zipLabels(labelIDs, names, colors)

	return task, nil
}

func zipLabels(ids []int64, names, colors []string) []internal.Label {
	labels := make([]internal.Label, 0, len(ids))

	for i, id := range ids {
		if i >= len(names) || i >= len(colors) {
			break
		}

		labels = append(labels, internal.Label{
			ID:    id,
			Name:  names[i],
			Color: colors[i],
		})
	}

	return labels
}
