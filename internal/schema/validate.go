package schema

import (
	"fmt"
	"regexp"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
)

var fieldKeyPattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_\-]*$`)

// Validate checks the structural soundness of a content type schema: a name,
// unique well formed keys, a type per field, compilable rules and a supported
// structure schema where one is configured.
func (s ContentTypeSchema) Validate() error {
	if err := validation.ValidateStruct(&s,
		validation.Field(&s.Name, validation.Required),
	); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidField, err)
	}
	if len(s.Fields) == 0 {
		return fmt.Errorf("%w: %s has no fields", ErrInvalidField, s.Name)
	}
	seen := make(map[string]struct{}, len(s.Fields))
	for idx, field := range s.Fields {
		if err := field.Validate(); err != nil {
			return fmt.Errorf("%s.fields[%d]: %w", s.Name, idx, err)
		}
		if _, ok := seen[field.Key]; ok {
			return fmt.Errorf("%s: %w: %s", s.Name, ErrDuplicateField, field.Key)
		}
		seen[field.Key] = struct{}{}
	}
	return nil
}

// Validate checks a single field definition.
func (f FieldDefinition) Validate() error {
	errs := validation.Errors{}
	if err := validation.Validate(f.Key, validation.Required, validation.Match(fieldKeyPattern)); err != nil {
		errs["key"] = err
	}
	if strings.TrimSpace(f.Type) == "" {
		errs["type"] = validation.NewError("validation_required", "cannot be blank")
	}
	if (f.TypeName() == "relation" || f.TypeName() == "include" || f.TypeName() == "list") && strings.TrimSpace(f.Config.CType) == "" {
		errs["config.ctype"] = validation.NewError("validation_required", "relation fields need a target content type")
	}
	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidField, errs)
	}
	if _, err := CompileRules(f); err != nil {
		return err
	}
	if len(f.Config.Schema) > 0 {
		if err := ValidateStructureSubset(f.Config.Schema); err != nil {
			return fmt.Errorf("field %q: %w", f.Key, err)
		}
	}
	return nil
}
