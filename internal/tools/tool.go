package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/jsonschema-go/jsonschema"
)

// Tool is a named callable with a derived input schema.
type Tool struct {
	name        string
	description string
	schema      *jsonschema.Schema
	listed      bool

	decode func(args json.RawMessage) (any, error)
	invoke func(ctx context.Context, req any) (any, error)
}

// NewTool binds a typed handler to its request type. defaults is both the
// starting value arguments are decoded over and the source of schema
// defaults.
func NewTool[Req, Resp any](name, description string, defaults Req, fn func(context.Context, Req) (Resp, error)) (*Tool, error) {
	schema, err := SchemaFor(defaults)
	if err != nil {
		return nil, fmt.Errorf("tool %s: %w", name, err)
	}

	return &Tool{
		name:        name,
		description: description,
		schema:      schema,
		listed:      true,
		decode: func(args json.RawMessage) (any, error) {
			return Decode(name, args, defaults)
		},
		invoke: func(ctx context.Context, req any) (any, error) {
			return fn(ctx, req.(Req))
		},
	}, nil
}

// Unlisted keeps the tool callable but out of the exported definitions.
func (t *Tool) Unlisted() *Tool {
	t.listed = false
	return t
}

func (t *Tool) Name() string {
	return t.name
}

func (t *Tool) Description() string {
	return t.description
}

func (t *Tool) Schema() *jsonschema.Schema {
	return t.schema
}

func (t *Tool) Listed() bool {
	return t.listed
}

// Required returns the names of the fields the tool's validator requires.
func (t *Tool) Required() []string {
	return append([]string(nil), t.schema.Required...)
}

func (t *Tool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        t.name,
		Description: t.description,
		Parameters:  t.schema,
	}
}
