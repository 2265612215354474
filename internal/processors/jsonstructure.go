package processors

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/schema"
	"github.com/goliatone/go-fieldkit/internal/validation"
)

const TypeJSONStructure = "jsonstructure"

// JSONStructure holds a recursively editable JSON value validated against
// Config.Schema. Stored values are JSON strings.
type JSONStructure struct{}

func (JSONStructure) Name() string { return TypeJSONStructure }

// ProcessData decodes defensively: malformed JSON presents as nil. Values
// that fail the schema are presented anyway and logged.
func (JSONStructure) ProcessData(_ context.Context, env *Env, field schema.FieldDefinition, stored any) (Patch, error) {
	value := stored
	if raw, ok := stored.(string); ok {
		value = document.DecodeJSON(raw)
	}
	if value == nil {
		return SetPatch(field.Key, nil), nil
	}
	if err := structures(env).ValidatePayload(field.Config.Schema, value); err != nil {
		env.logger().Warn("stored structure does not match schema", "field", field.Key, "error", err)
	}
	return SetPatch(field.Key, document.CloneValue(value)), nil
}

// ProcessDataPreSave validates and encodes. String input must be valid JSON.
func (JSONStructure) ProcessDataPreSave(_ context.Context, env *Env, field schema.FieldDefinition, present any) (Patch, error) {
	value := present
	if raw, ok := present.(string); ok {
		if strings.TrimSpace(raw) == "" {
			return SetPatch(field.Key, ""), nil
		}
		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
			return Patch{}, fmt.Errorf("field %q: malformed json: %w", field.Key, err)
		}
		value = decoded
	}
	if value == nil {
		return SetPatch(field.Key, ""), nil
	}
	if err := structures(env).ValidatePayload(field.Config.Schema, value); err != nil {
		return Patch{}, fmt.Errorf("field %q: %w", field.Key, err)
	}
	encoded, err := json.Marshal(value)
	if err != nil {
		return Patch{}, fmt.Errorf("field %q: encode: %w", field.Key, err)
	}
	return SetPatch(field.Key, string(encoded)), nil
}

var sharedStructures validation.Compiler

func structures(env *Env) *validation.Compiler {
	if env != nil && env.Structures != nil {
		return env.Structures
	}
	return &sharedStructures
}
