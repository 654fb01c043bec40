package schema

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// InputError reports a request body that cannot be validated at all.
type InputError struct {
	Message string
}

func (e *InputError) Error() string {
	return e.Message
}

var (
	// ErrNoInput is returned for an absent body or a JSON value that carries no data.
	ErrNoInput = &InputError{Message: "No input data"}
	// ErrInvalidJSON is returned when the body is not well-formed JSON.
	ErrInvalidJSON = &InputError{Message: "Invalid JSON body"}
)

// SchemaField is the key used for violations that concern the whole document.
const SchemaField = "_schema"

// ValidationError maps field names to every rule they violate.
type ValidationError struct {
	Messages map[string][]string
}

func newValidationError() *ValidationError {
	return &ValidationError{Messages: make(map[string][]string)}
}

func (e *ValidationError) add(field, message string) {
	e.Messages[field] = append(e.Messages[field], message)
}

// Fields returns the names of the failing fields in sorted order.
func (e *ValidationError) Fields() []string {
	fields := make([]string, 0, len(e.Messages))
	for f := range e.Messages {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	return fields
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed: %s", strings.Join(e.Fields(), ", "))
}

// MarshalJSON renders the bare field-to-messages mapping.
func (e *ValidationError) MarshalJSON() ([]byte, error) {
	return json.Marshal(e.Messages)
}
