package tools

import (
	"encoding/json"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/google/jsonschema-go/jsonschema"
)

// SchemaFor derives the input schema of a request type. Types and
// descriptions come from jsonschema.For; required, minimum, maximum and
// minLength/maxLength are read from the same validate tags Decode enforces;
// defaults are taken from the non-zero fields of defaults.
func SchemaFor[T any](defaults T) (*jsonschema.Schema, error) {
	schema, err := jsonschema.For[T](nil)
	if err != nil {
		return nil, err
	}

	// Decode ignores unknown fields, so the schema must not forbid them.
	schema.AdditionalProperties = nil
	schema.Required = nil

	v := reflect.ValueOf(defaults)
	t := v.Type()
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("request type %s is not a struct", t)
	}

	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if !field.IsExported() {
			continue
		}

		name := strings.SplitN(field.Tag.Get("json"), ",", 2)[0]
		if name == "" || name == "-" {
			continue
		}
		prop, ok := schema.Properties[name]
		if !ok || prop == nil {
			continue
		}

		if err := applyRules(schema, prop, name, field.Tag.Get("validate")); err != nil {
			return nil, fmt.Errorf("field %s: %w", name, err)
		}

		if fv := v.Field(i); !fv.IsZero() {
			raw, err := json.Marshal(fv.Interface())
			if err != nil {
				return nil, fmt.Errorf("field %s default: %w", name, err)
			}
			prop.Default = raw
		}
	}

	if schema.Properties == nil {
		schema.Properties = map[string]*jsonschema.Schema{}
	}

	return schema, nil
}

func applyRules(parent, prop *jsonschema.Schema, name, tag string) error {
	if tag == "" {
		return nil
	}

	for _, rule := range strings.Split(tag, ",") {
		key, param, _ := strings.Cut(rule, "=")
		switch key {
		case "required":
			parent.Required = append(parent.Required, name)
			if prop.Type == "string" {
				prop.MinLength = intPtr(1)
			}
		case "min", "max":
			n, err := strconv.ParseFloat(param, 64)
			if err != nil {
				return fmt.Errorf("bad %s parameter %q", key, param)
			}
			setBound(prop, key, n)
		case "omitempty":
		default:
			return fmt.Errorf("validate rule %q has no schema equivalent", key)
		}
	}
	return nil
}

func setBound(prop *jsonschema.Schema, key string, n float64) {
	switch prop.Type {
	case "string":
		if key == "min" {
			prop.MinLength = intPtr(int(n))
		} else {
			prop.MaxLength = intPtr(int(n))
		}
	default:
		if key == "min" {
			prop.Minimum = &n
		} else {
			prop.Maximum = &n
		}
	}
}

func intPtr(n int) *int {
	return &n
}
