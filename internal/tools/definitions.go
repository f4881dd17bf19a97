package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// DefinitionsHandler serves the listed definitions of kit as a tool.
func DefinitionsHandler(kit *Toolkit) func(context.Context, DefinitionsRequest) (*DefinitionsResponse, error) {
	return func(_ context.Context, _ DefinitionsRequest) (*DefinitionsResponse, error) {
		defs := kit.Definitions()
		return &defs, nil
	}
}

// WriteDefinitions encodes defs as two-space indented JSON without HTML
// escaping.
func WriteDefinitions(w io.Writer, defs DefinitionsResponse) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(defs)
}

// WriteDefinitionsFile writes defs to path, replacing any existing file.
func WriteDefinitionsFile(path string, defs DefinitionsResponse) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}

	if err := WriteDefinitions(f, defs); err != nil {
		f.Close()
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return f.Close()
}
