package canvas

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// OptionsValidator validates data-model options against the renderer's
// declared schema.
type OptionsValidator interface {
	Validate(meta ManifestRenderer, options map[string]any) error
}

// JSONSchemaValidator compiles renderer option schemas and validates
// data-model option maps.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate ensures the provided options satisfy the renderer schema.
func (v *JSONSchemaValidator) Validate(meta ManifestRenderer, options map[string]any) error {
	if len(meta.OptionsSchema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(meta)
	if err != nil {
		return err
	}
	var payload map[string]any
	if options == nil {
		payload = map[string]any{}
	} else {
		data, err := json.Marshal(options)
		if err != nil {
			return fmt.Errorf("canvas: marshal options for %s: %w", meta.Type, err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("canvas: normalize options for %s: %w", meta.Type, err)
		}
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("canvas: options for %s failed validation: %w", meta.Type, err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(meta ManifestRenderer) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[meta.Type]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(meta.OptionsSchema)
	if err != nil {
		return nil, fmt.Errorf("canvas: marshal schema %s: %w", meta.Type, err)
	}
	compiler := jsonschema.NewCompiler()
	name := meta.Type + ".json"
	if err := compiler.AddResource(name, bytes.NewReader(data)); err != nil {
		return nil, fmt.Errorf("canvas: load schema %s: %w", meta.Type, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("canvas: compile schema %s: %w", meta.Type, err)
	}
	v.mu.Lock()
	v.compiled[meta.Type] = compiled
	v.mu.Unlock()
	return compiled, nil
}
