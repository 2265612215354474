package processors

import (
	"context"
	"fmt"
	"strings"

	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/schema"
)

// maintainBackrefs appends the parent uuid to Config.Backref on each
// referenced document that does not list it yet.
func maintainBackrefs(ctx context.Context, env *Env, field schema.FieldDefinition, stored any, parent document.Document) error {
	backref := strings.TrimSpace(field.Config.Backref)
	if backref == "" || !env.Settings.Backrefs {
		return nil
	}
	parentID := parent.UUID()
	if parentID == "" {
		return nil
	}
	for _, ref := range document.ParseReferences(stored, field.Config.CType) {
		target, err := env.Resolver.Find(ctx, ref.CType, ref.UUID)
		if err != nil {
			return &ResolutionError{CType: ref.CType, UUID: ref.UUID, Err: err}
		}
		if target == nil {
			env.logger().Warn("backref target missing", "ctype", ref.CType, "uuid", ref.UUID, "field", field.Key)
			continue
		}
		existing, _ := document.AsSlice(target[backref])
		if containsString(existing, parentID) {
			continue
		}
		target[backref] = append(append([]any(nil), existing...), parentID)
		if _, err := env.Resolver.Save(ctx, ref.CType, target); err != nil {
			return fmt.Errorf("backref %s on %s/%s: %w", backref, ref.CType, ref.UUID, err)
		}
	}
	return nil
}

func containsString(values []any, want string) bool {
	for _, value := range values {
		if document.String(value) == want {
			return true
		}
	}
	return false
}
