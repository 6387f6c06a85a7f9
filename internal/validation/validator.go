// Package validation checks request documents against JSON schemas and turns
// failures into per-field user messages.
package validation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"slices"
	"strconv"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

const rootField = "(root)"

// Error lists every validation failure of one document.
type Error struct {
	Messages []string
}

func (e *Error) Error() string {
	return fmt.Sprintf("Error: (%s)", strings.Join(e.Messages, ","))
}

// StatusCode reports validation failures as bad requests.
func (e *Error) StatusCode() int {
	return http.StatusBadRequest
}

// Validator validates documents against one compiled schema. Messages maps a
// property name to the message reported whenever that property fails, in
// place of the generic schema description.
type Validator struct {
	schema   *gojsonschema.Schema
	messages map[string]string
}

// New compiles schema, given as a Go value that marshals to JSON Schema.
func New(schema any, messages map[string]string) (*Validator, error) {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewGoLoader(schema))
	if err != nil {
		return nil, fmt.Errorf("compile schema: %w", err)
	}
	return &Validator{schema: compiled, messages: messages}, nil
}

// MustNew is New for package-level schemas; it panics on a malformed schema.
func MustNew(schema any, messages map[string]string) *Validator {
	v, err := New(schema, messages)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks doc and returns *Error when it does not conform.
func (v *Validator) Validate(doc any) error {
	return v.validate(gojsonschema.NewGoLoader(doc))
}

// Decode validates the JSON in data and, when it conforms, unmarshals it
// into dst. Properties the schema does not know are dropped by the typed
// destination. An empty body is validated as an empty object.
func (v *Validator) Decode(data []byte, dst any) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 {
		data = []byte("{}")
	}
	if !json.Valid(data) {
		return &Error{Messages: []string{"request body must be valid JSON"}}
	}
	if err := v.validate(gojsonschema.NewBytesLoader(data)); err != nil {
		return err
	}
	if err := json.Unmarshal(data, dst); err != nil {
		return &Error{Messages: []string{err.Error()}}
	}
	return nil
}

func (v *Validator) validate(doc gojsonschema.JSONLoader) error {
	result, err := v.schema.Validate(doc)
	if err != nil {
		return fmt.Errorf("validate document: %w", err)
	}
	if result.Valid() {
		return nil
	}

	failures := result.Errors()
	slices.SortStableFunc(failures, func(a, b gojsonschema.ResultError) int {
		return comparePaths(location(a), location(b))
	})

	var messages []string
	for _, failure := range failures {
		msg := v.message(failure)
		if !slices.Contains(messages, msg) {
			messages = append(messages, msg)
		}
	}
	return &Error{Messages: messages}
}

func (v *Validator) message(failure gojsonschema.ResultError) string {
	path := location(failure)

	key, index := "", ""
	for _, segment := range path {
		if _, err := strconv.Atoi(segment); err == nil {
			index = segment
			continue
		}
		key = segment
	}

	msg, ok := v.messages[key]
	if !ok {
		msg = failure.Description()
		if len(path) > 0 {
			msg = strings.Join(path, ".") + ": " + msg
		}
	}
	if index != "" {
		msg += " at index " + index
	}
	return msg
}

// location returns the property path of a failure. Required-property
// failures are reported on the parent object, so the missing property is
// appended.
func location(failure gojsonschema.ResultError) []string {
	var path []string
	if field := failure.Field(); field != "" && field != rootField {
		path = strings.Split(field, ".")
	}
	if failure.Type() == "required" {
		if property, ok := failure.Details()["property"].(string); ok {
			path = append(path, property)
		}
	}
	return path
}

func comparePaths(a, b []string) int {
	for i := 0; i < len(a) && i < len(b); i++ {
		if a[i] == b[i] {
			continue
		}
		ai, aErr := strconv.Atoi(a[i])
		bi, bErr := strconv.Atoi(b[i])
		if aErr == nil && bErr == nil {
			return ai - bi
		}
		return strings.Compare(a[i], b[i])
	}
	return len(a) - len(b)
}
