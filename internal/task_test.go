package internal_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tasktrail/tasktrail-api/internal"
)

func TestCreateTaskParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   internal.CreateTaskParams
		withErr bool
	}{
		{
			name: "OK: full",
			input: internal.CreateTaskParams{
				Title:       "write report",
				Description: "quarterly numbers",
				Status:      internal.StatusInProgress,
				Priority:    internal.PriorityHigh,
			},
		},
		{
			name: "OK: title only, enums defaulted later",
			input: internal.CreateTaskParams{
				Title: "write report",
			},
		},
		{
			name:    "ERR: missing title",
			input:   internal.CreateTaskParams{},
			withErr: true,
		},
		{
			name: "ERR: unknown status",
			input: internal.CreateTaskParams{
				Title:  "write report",
				Status: internal.Status("done"),
			},
			withErr: true,
		},
		{
			name: "ERR: unknown priority",
			input: internal.CreateTaskParams{
				Title:    "write report",
				Priority: internal.Priority("urgent"),
			},
			withErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.input.Validate()
			if !tt.withErr {
				require.NoError(t, err)

				return
			}

			requireErrorCode(t, err, internal.ErrorCodeInvalidArgument)
		})
	}
}

func TestUpdateTaskParams_Validate(t *testing.T) {
	t.Parallel()

	title := "new title"
	empty := ""
	status := internal.StatusCompleted
	badStatus := internal.Status("archived")
	badPriority := internal.Priority("maximum")

	tests := []struct {
		name    string
		input   internal.UpdateTaskParams
		withErr bool
	}{
		{
			name:  "OK: empty update",
			input: internal.UpdateTaskParams{},
		},
		{
			name: "OK: title and status",
			input: internal.UpdateTaskParams{
				Title:  &title,
				Status: &status,
			},
		},
		{
			name: "OK: clearing labels",
			input: internal.UpdateTaskParams{
				LabelIDs: &[]int64{},
			},
		},
		{
			name: "ERR: empty title",
			input: internal.UpdateTaskParams{
				Title: &empty,
			},
			withErr: true,
		},
		{
			name: "ERR: unknown status",
			input: internal.UpdateTaskParams{
				Status: &badStatus,
			},
			withErr: true,
		},
		{
			name: "ERR: unknown priority",
			input: internal.UpdateTaskParams{
				Priority: &badPriority,
			},
			withErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.input.Validate()
			if !tt.withErr {
				require.NoError(t, err)

				return
			}

			requireErrorCode(t, err, internal.ErrorCodeInvalidArgument)
		})
	}
}

func TestTaskFilters_Validate(t *testing.T) {
	t.Parallel()

	status := internal.StatusPending
	badStatus := internal.Status("someday")

	tests := []struct {
		name    string
		input   internal.TaskFilters
		withErr bool
	}{
		{
			name:  "OK: zero filters",
			input: internal.TaskFilters{},
		},
		{
			name: "OK: status, sort and order",
			input: internal.TaskFilters{
				Status: &status,
				Sort:   internal.SortDueDate,
				Order:  "asc",
			},
		},
		{
			name: "ERR: unknown status",
			input: internal.TaskFilters{
				Status: &badStatus,
			},
			withErr: true,
		},
		{
			name: "ERR: sort field not allowed",
			input: internal.TaskFilters{
				Sort: "id; DROP TABLE tasks",
			},
			withErr: true,
		},
		{
			name: "ERR: unknown order",
			input: internal.TaskFilters{
				Order: "sideways",
			},
			withErr: true,
		},
	}

	for _, tt := range tests {
		tt := tt

		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.input.Validate()
			if !tt.withErr {
				require.NoError(t, err)

				return
			}

			requireErrorCode(t, err, internal.ErrorCodeInvalidArgument)
		})
	}
}

func TestSearchParams_IsZero(t *testing.T) {
	t.Parallel()

	title := "report"

	require.True(t, internal.SearchParams{From: 10, Size: 20}.IsZero())
	require.False(t, internal.SearchParams{Title: &title}.IsZero())
}

func requireErrorCode(t *testing.T, err error, code internal.ErrorCode) {
	t.Helper()

	var ierr *internal.Error

	require.ErrorAs(t, err, &ierr)
	require.Equal(t, code, ierr.Code())
}
