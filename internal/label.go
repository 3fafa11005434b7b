package internal

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var colorRE = regexp.MustCompile(`^#[0-9a-fA-F]{6}$`)

// Label is a named, colored tag attachable to many tasks. Names are unique
// across all labels, case-sensitively.
type Label struct {
	ID    int64
	Name  string
	Color string
}

// CreateLabelParams defines the fields used for creating labels.
type CreateLabelParams struct {
	Name  string
	Color string
}

// Validate indicates whether the fields are valid for persisting a new label.
func (p CreateLabelParams) Validate() error {
	if err := validation.ValidateStruct(&p,
		validation.Field(&p.Name, validation.Required),
		validation.Field(&p.Color, validation.Required, validation.Match(colorRE)),
	); err != nil {
		return WrapErrorf(err, ErrorCodeInvalidArgument, "validation.ValidateStruct")
	}

	return nil
}

// UpdateLabelParams defines the fields used for updating a label, nil fields
// retain their previous value. At least one field must be set.
type UpdateLabelParams struct {
	Name  *string
	Color *string
}

// Validate indicates whether the supplied fields are valid.
func (p UpdateLabelParams) Validate() error {
	if p.Name == nil && p.Color == nil {
		return NewErrorf(ErrorCodeInvalidArgument, "at least one of name or color is required")
	}

	if p.Name != nil && *p.Name == "" {
		return NewErrorf(ErrorCodeInvalidArgument, "name must not be empty")
	}

	if p.Color != nil && !colorRE.MatchString(*p.Color) {
		return NewErrorf(ErrorCodeInvalidArgument, "color must be a hex code like #0A84FF")
	}

	return nil
}
