package keymap

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "https://github.com/Alia5/keylayer/keymap.schema.json"

//go:embed schema/keymap.schema.json
var schemaJSON []byte

// ErrSchema wraps structural problems found by the document schema.
var ErrSchema = errors.New("keymap document does not match schema")

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func documentSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		compiler.Draft = jsonschema.Draft7
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaJSON)); err != nil {
			schemaErr = fmt.Errorf("add keymap schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// SchemaJSON returns the embedded JSON Schema for keymap documents.
func SchemaJSON() []byte {
	return append([]byte(nil), schemaJSON...)
}

// ValidateSchema checks a decoded JSON value (maps, slices, float64/json
// numbers) against the document schema.
func ValidateSchema(v any) error {
	s, err := documentSchema()
	if err != nil {
		return err
	}
	if err := s.Validate(v); err != nil {
		return fmt.Errorf("%w: %v", ErrSchema, err)
	}
	return nil
}
