package tools

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate *validator.Validate

func init() {
	validate = validator.New()

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
}

// FieldError describes one rejected input field. Field is empty when the
// arguments as a whole could not be parsed.
type FieldError struct {
	Field   string      `json:"field"`
	Value   interface{} `json:"value,omitempty"`
	Tag     string      `json:"tag"`
	Message string      `json:"message"`
}

// ValidationError is returned when tool arguments are rejected. The tool
// handler never runs for a call that fails validation.
type ValidationError struct {
	Tool   string
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return fmt.Sprintf("invalid arguments for %s: %s", e.Tool, strings.Join(msgs, "; "))
}

// Has reports whether field failed validation.
func (e *ValidationError) Has(field string) bool {
	for _, f := range e.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

// Decode parses raw JSON arguments over a copy of defaults and validates the
// result. Missing or null arguments are treated as an empty object.
func Decode[T any](tool string, raw json.RawMessage, defaults T) (T, error) {
	req := defaults

	data := bytes.TrimSpace(raw)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		data = []byte("{}")
	}

	if data[0] != '{' {
		return req, &ValidationError{Tool: tool, Fields: []FieldError{{
			Tag:     "json",
			Message: "arguments must be a JSON object",
		}}}
	}

	if err := json.Unmarshal(data, &req); err != nil {
		return req, &ValidationError{Tool: tool, Fields: []FieldError{decodeFieldError(err)}}
	}

	if err := validate.Struct(req); err != nil {
		fields := FormatValidationErrors(err)
		if len(fields) == 0 {
			return req, fmt.Errorf("validating %s arguments: %w", tool, err)
		}
		return req, &ValidationError{Tool: tool, Fields: fields}
	}

	return req, nil
}

func decodeFieldError(err error) FieldError {
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) {
		return FieldError{
			Field:   typeErr.Field,
			Value:   typeErr.Value,
			Tag:     "type",
			Message: fmt.Sprintf("%s must be of type %s", typeErr.Field, jsonTypeName(typeErr.Type)),
		}
	}
	return FieldError{
		Tag:     "json",
		Message: fmt.Sprintf("malformed arguments: %v", err),
	}
}

func jsonTypeName(t reflect.Type) string {
	if t == nil {
		return "unknown"
	}
	switch t.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "integer"
	case reflect.Float32, reflect.Float64:
		return "number"
	case reflect.Bool:
		return "boolean"
	case reflect.String:
		return "string"
	case reflect.Slice, reflect.Array:
		return "array"
	default:
		return "object"
	}
}

func FormatValidationErrors(err error) []FieldError {
	var fieldErrors []FieldError

	var validatorErrs validator.ValidationErrors
	if errors.As(err, &validatorErrs) {
		for _, fe := range validatorErrs {
			fieldErrors = append(fieldErrors, FieldError{
				Field:   fe.Field(),
				Value:   fe.Value(),
				Tag:     fe.Tag(),
				Message: getErrorMessage(fe),
			})
		}
	}

	return fieldErrors
}

func getErrorMessage(err validator.FieldError) string {
	numeric := err.Kind() != reflect.String
	switch err.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", err.Field())
	case "min":
		if numeric {
			return fmt.Sprintf("%s must be at least %s", err.Field(), err.Param())
		}
		return fmt.Sprintf("%s must be at least %s characters long", err.Field(), err.Param())
	case "max":
		if numeric {
			return fmt.Sprintf("%s must be at most %s", err.Field(), err.Param())
		}
		return fmt.Sprintf("%s must be at most %s characters long", err.Field(), err.Param())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", err.Field(), err.Param())
	default:
		return fmt.Sprintf("%s is invalid", err.Field())
	}
}
