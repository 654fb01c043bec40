package schema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/doodlesbykumbi/incidentd/pkg/model"
)

const (
	msgMissing     = "Missing data for required field."
	msgNull        = "Field may not be null."
	msgNotString   = "Not a valid string."
	msgUnknown     = "Unknown field."
	msgInvalidType = "Invalid input type."
)

// Input holds the client-settable fields of a validated incident.
type Input struct {
	Title       string
	Description string
	Severity    model.Severity
}

// Record builds a new, not yet persisted, incident from the input.
func (in Input) Record() *model.Incident {
	return &model.Incident{
		Title:       in.Title,
		Description: in.Description,
		Severity:    in.Severity,
	}
}

type fieldRule struct {
	name string
	tag  string
}

var fieldRules = []fieldRule{
	{name: "title", tag: "min=1"},
	{name: "description", tag: "min=1"},
	{name: "severity", tag: "oneof=" + strings.Join(model.SeverityStrings(), " ")},
}

// Server-assigned fields that clients may echo back; they are dropped.
var ignoredFields = map[string]bool{
	"id":          true,
	"reported_at": true,
}

var validate = validator.New()

// Load parses and validates a request body.
//
// It returns ErrNoInput for an empty body or a JSON value without data
// (null, false, 0, "", [] or {}), ErrInvalidJSON for malformed JSON and a
// *ValidationError listing every violation otherwise.
func Load(body []byte) (Input, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return Input{}, ErrNoInput
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil || dec.More() {
		return Input{}, ErrInvalidJSON
	}

	if isEmpty(raw) {
		return Input{}, ErrNoInput
	}

	obj, ok := raw.(map[string]interface{})
	if !ok {
		verr := newValidationError()
		verr.add(SchemaField, msgInvalidType)
		return Input{}, verr
	}

	return LoadObject(obj)
}

// LoadObject validates an already decoded JSON object.
func LoadObject(obj map[string]interface{}) (Input, error) {
	verr := newValidationError()
	values := make(map[string]string, len(fieldRules))

	for _, rule := range fieldRules {
		value, ok := stringField(obj, rule.name, verr)
		if !ok {
			continue
		}
		if err := validate.Var(value, rule.tag); err != nil {
			addRuleErrors(verr, rule.name, err)
			continue
		}
		values[rule.name] = value
	}

	known := make(map[string]bool, len(fieldRules))
	for _, rule := range fieldRules {
		known[rule.name] = true
	}
	for key := range obj {
		if !known[key] && !ignoredFields[key] {
			verr.add(key, msgUnknown)
		}
	}

	if len(verr.Messages) > 0 {
		return Input{}, verr
	}

	// oneof already pinned the exact spelling
	severity, err := model.SeverityString(values["severity"])
	if err != nil {
		return Input{}, fmt.Errorf("severity %q: %w", values["severity"], err)
	}

	return Input{
		Title:       values["title"],
		Description: values["description"],
		Severity:    severity,
	}, nil
}

func stringField(obj map[string]interface{}, name string, verr *ValidationError) (string, bool) {
	raw, present := obj[name]
	if !present {
		verr.add(name, msgMissing)
		return "", false
	}
	if raw == nil {
		verr.add(name, msgNull)
		return "", false
	}
	s, ok := raw.(string)
	if !ok {
		verr.add(name, msgNotString)
		return "", false
	}
	return s, true
}

func addRuleErrors(verr *ValidationError, field string, err error) {
	fieldErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		verr.add(field, err.Error())
		return
	}
	for _, fe := range fieldErrs {
		verr.add(field, ruleMessage(fe))
	}
}

func ruleMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "min":
		return fmt.Sprintf("Shorter than minimum length %s.", fe.Param())
	case "oneof":
		return fmt.Sprintf("Must be one of: %s.", strings.Join(strings.Fields(fe.Param()), ", "))
	default:
		return "Invalid value."
	}
}

func isEmpty(v interface{}) bool {
	switch t := v.(type) {
	case nil:
		return true
	case bool:
		return !t
	case string:
		return t == ""
	case json.Number:
		f, err := t.Float64()
		return err == nil && f == 0
	case []interface{}:
		return len(t) == 0
	case map[string]interface{}:
		return len(t) == 0
	}
	return false
}
