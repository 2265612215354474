package logging

import (
	"context"
	"maps"
)

type contextKey string

const contextFieldsKey contextKey = "fieldkit.logging.fields"

// ContextWithFields stores structured fields on ctx. Loggers that honour
// WithContext merge them into every entry. Fields already on ctx are kept
// unless overridden.
func ContextWithFields(ctx context.Context, fields map[string]any) context.Context {
	if ctx == nil || len(fields) == 0 {
		return ctx
	}
	existing := ContextFields(ctx)
	merged := make(map[string]any, len(existing)+len(fields))
	maps.Copy(merged, existing)
	maps.Copy(merged, fields)
	return context.WithValue(ctx, contextFieldsKey, merged)
}

// ContextFields returns a copy of the fields stored on ctx.
func ContextFields(ctx context.Context) map[string]any {
	if ctx == nil {
		return nil
	}
	fields, ok := ctx.Value(contextFieldsKey).(map[string]any)
	if !ok || len(fields) == 0 {
		return nil
	}
	copied := make(map[string]any, len(fields))
	maps.Copy(copied, fields)
	return copied
}
