package proj

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	MaxNameLength        = 120
	MaxDescriptionLength = 2000
)

type Reason string

const (
	ReasonRequired Reason = "required"
	ReasonTooLong  Reason = "too_long"
)

// ValidationError describes the first field of an input that failed
// validation. Lengths are counted in runes.
type ValidationError struct {
	Field  string
	Reason Reason
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("proj: invalid %v: %v", e.Field, e.Reason)
}

// Message returns a human readable description of the error, suitable for
// showing next to a form.
func (e *ValidationError) Message() string {
	field := e.Field
	if field != "" {
		field = strings.ToUpper(field[:1]) + field[1:]
	}

	switch e.Reason {
	case ReasonRequired:
		return field + " is required"
	case ReasonTooLong:
		return field + " is too long"
	default:
		return field + " is invalid"
	}
}

// Validate trims input and checks it against the project field rules. The
// name is checked before the description.
func Validate(input CreateInput) (CreateInput, error) {
	name, err := validateName(input.Name)
	if err != nil {
		return CreateInput{}, err
	}

	description, err := validateDescription(input.Description)
	if err != nil {
		return CreateInput{}, err
	}

	return CreateInput{Name: name, Description: description}, nil
}

// ValidatePatch applies the Validate rules to the fields set in patch and
// returns a patch holding the trimmed values.
func ValidatePatch(patch Patch) (Patch, error) {
	var normalized Patch

	if patch.Name != nil {
		name, err := validateName(*patch.Name)
		if err != nil {
			return Patch{}, err
		}
		normalized.Name = &name
	}

	if patch.Description != nil {
		description, err := validateDescription(*patch.Description)
		if err != nil {
			return Patch{}, err
		}
		normalized.Description = &description
	}

	return normalized, nil
}

func validateName(s string) (string, error) {
	name := strings.TrimSpace(s)

	if name == "" {
		return "", &ValidationError{Field: "name", Reason: ReasonRequired}
	}

	if utf8.RuneCountInString(name) > MaxNameLength {
		return "", &ValidationError{Field: "name", Reason: ReasonTooLong}
	}

	return name, nil
}

func validateDescription(s string) (string, error) {
	description := strings.TrimSpace(s)

	if utf8.RuneCountInString(description) > MaxDescriptionLength {
		return "", &ValidationError{Field: "description", Reason: ReasonTooLong}
	}

	return description, nil
}
