package document

import (
	"regexp"
	"strings"

	"github.com/goliatone/go-fieldkit/internal/domain"
)

var uuidV4Pattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-4[0-9a-fA-F]{3}-[89abAB][0-9a-fA-F]{3}-[0-9a-fA-F]{12}$`)

// IsUUIDv4 reports whether value matches the canonical UUID v4 layout.
func IsUUIDv4(value string) bool {
	return uuidV4Pattern.MatchString(strings.TrimSpace(value))
}

// Reference is a weak pointer to another document. It never implies
// ownership; the target is fetched on demand.
type Reference struct {
	UUID  string `json:"uuid"`
	CType string `json:"ctype,omitempty"`
}

// Valid reports whether the reference carries an identifier.
func (r Reference) Valid() bool {
	return strings.TrimSpace(r.UUID) != ""
}

// Map renders the reference in stored form.
func (r Reference) Map() map[string]any {
	out := map[string]any{domain.KeyUUID: r.UUID}
	if r.CType != "" {
		out[domain.KeyCType] = r.CType
	}
	return out
}

// ParseReference reads a single reference from a UUID string, a map with
// uuid/ctype keys, or a JSON string encoding either. defaultCType fills a
// missing ctype.
func ParseReference(value any, defaultCType string) (Reference, bool) {
	switch v := value.(type) {
	case string:
		trimmed := strings.TrimSpace(v)
		if trimmed == "" {
			return Reference{}, false
		}
		if LooksLikeJSON(trimmed) {
			decoded := DecodeJSON(trimmed)
			if decoded == nil {
				return Reference{}, false
			}
			return ParseReference(decoded, defaultCType)
		}
		return Reference{UUID: trimmed, CType: defaultCType}, true
	case Reference:
		if v.CType == "" {
			v.CType = defaultCType
		}
		return v, v.Valid()
	default:
		m, ok := AsMap(value)
		if !ok {
			return Reference{}, false
		}
		ref := Reference{UUID: strings.TrimSpace(String(m[domain.KeyUUID])), CType: strings.TrimSpace(String(m[domain.KeyCType]))}
		if ref.CType == "" {
			ref.CType = defaultCType
		}
		return ref, ref.Valid()
	}
}

// ParseReferences reads zero or more references. A list yields one entry per
// valid item; anything else is treated as a single reference.
func ParseReferences(value any, defaultCType string) []Reference {
	if raw, ok := value.(string); ok && LooksLikeJSON(raw) {
		value = DecodeJSON(raw)
	}
	items, ok := AsSlice(value)
	if !ok {
		if ref, ok := ParseReference(value, defaultCType); ok {
			return []Reference{ref}
		}
		return nil
	}
	out := make([]Reference, 0, len(items))
	for _, item := range items {
		if ref, ok := ParseReference(item, defaultCType); ok {
			out = append(out, ref)
		}
	}
	return out
}
