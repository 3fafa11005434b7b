package internal_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/tasktrail/tasktrail-api/internal"
)

func TestCreateLabelParams_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		input   internal.CreateLabelParams
		withErr bool
	}{
		{
			name: "OK",
			input: internal.CreateLabelParams{
				Name:  "Work",
				Color: "#0A84FF",
			},
		},
		{
			name: "ERR: missing name",
			input: internal.CreateLabelParams{
				Color: "#0A84FF",
			},
			withErr: true,
		},
		{
			name: "ERR: missing color",
			input: internal.CreateLabelParams{
				Name: "Work",
			},
			withErr: true,
		},
		{
			name: "ERR: malformed color",
			input: internal.CreateLabelParams{
				Name:  "Work",
				Color: "blue",
			},
			withErr: true,
		},
		{
			name: "ERR: short hex color",
			input: internal.CreateLabelParams{
				Name:  "Work",
				Color: "#0AF",
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

func TestUpdateLabelParams_Validate(t *testing.T) {
	t.Parallel()

	name := "Deep Work"
	empty := ""
	color := "#30D158"
	badColor := "green"

	tests := []struct {
		name    string
		input   internal.UpdateLabelParams
		withErr bool
	}{
		{
			name: "OK: name only",
			input: internal.UpdateLabelParams{
				Name: &name,
			},
		},
		{
			name: "OK: color only",
			input: internal.UpdateLabelParams{
				Color: &color,
			},
		},
		{
			name:    "ERR: nothing set",
			input:   internal.UpdateLabelParams{},
			withErr: true,
		},
		{
			name: "ERR: empty name",
			input: internal.UpdateLabelParams{
				Name: &empty,
			},
			withErr: true,
		},
		{
			name: "ERR: malformed color",
			input: internal.UpdateLabelParams{
				Color: &badColor,
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
