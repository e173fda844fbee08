package wizard

import (
	"errors"
	"fmt"
	"strings"
)

// AlertMessage is shown to the user when a step fails validation.
const AlertMessage = "Please complete all required fields in this section."

var (
	// ErrInvalidStep is returned for navigation targets outside 1..N or more
	// than one step ahead.
	ErrInvalidStep = errors.New("wizard: invalid step")
	// ErrNotFinalStep is returned by Submit before the last step is active.
	ErrNotFinalStep = errors.New("wizard: submit is only allowed on the final step")
	// ErrSubmitted is returned by every operation after a successful Submit.
	ErrSubmitted = errors.New("wizard: already submitted")
)

// FieldError describes one field that failed validation.
type FieldError struct {
	Field   string `json:"field"`
	Label   string `json:"label"`
	Message string `json:"message"`
}

// ValidationError lists the fields of a step that blocked a transition.
type ValidationError struct {
	Step   int          `json:"step"`
	Fields []FieldError `json:"fields"`
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		names = append(names, f.Field)
	}
	return fmt.Sprintf("wizard: step %d failed validation: %s", e.Step, strings.Join(names, ", "))
}

// Alert is the user-facing message for the failure.
func (e *ValidationError) Alert() string {
	return AlertMessage
}

// Has reports whether field is among the failures.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// IsValidation reports whether err carries a *ValidationError.
func IsValidation(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}
