package document

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-fieldkit/internal/domain"
)

// Document maps field keys to values. The same type carries both the stored
// and the presented form; which one a value is depends on the pass that
// produced it.
type Document map[string]any

// UUID returns the document identifier or "".
func (d Document) UUID() string {
	return String(d[domain.KeyUUID])
}

// CType returns the content type tag or "".
func (d Document) CType() string {
	return String(d[domain.KeyCType])
}

// Title returns the systitle value or "".
func (d Document) Title() string {
	return String(d[domain.KeyTitle])
}

// Clone deep copies maps and slices so callers can mutate the result freely.
func (d Document) Clone() Document {
	if d == nil {
		return nil
	}
	return Document(CloneMap(d))
}

// CloneMap deep copies a generic map.
func CloneMap(src map[string]any) map[string]any {
	if src == nil {
		return nil
	}
	out := make(map[string]any, len(src))
	for key, value := range src {
		out[key] = CloneValue(value)
	}
	return out
}

// CloneValue deep copies maps and slices inside value.
func CloneValue(value any) any {
	switch typed := value.(type) {
	case Document:
		return typed.Clone()
	case map[string]any:
		return CloneMap(typed)
	case []any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = CloneValue(item)
		}
		return out
	case []map[string]any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = CloneMap(item)
		}
		return out
	case []string:
		return append([]string(nil), typed...)
	default:
		return value
	}
}

// AsMap returns value as a generic map when it is one.
func AsMap(value any) (map[string]any, bool) {
	switch typed := value.(type) {
	case map[string]any:
		return typed, true
	case Document:
		return map[string]any(typed), true
	default:
		return nil, false
	}
}

// AsSlice returns value as a []any, wrapping typed slices.
func AsSlice(value any) ([]any, bool) {
	switch typed := value.(type) {
	case []any:
		return typed, true
	case []string:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out, true
	case []map[string]any:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = item
		}
		return out, true
	case []Document:
		out := make([]any, len(typed))
		for i, item := range typed {
			out[i] = map[string]any(item)
		}
		return out, true
	default:
		return nil, false
	}
}

// String renders scalars as strings. nil becomes "".
func String(value any) string {
	switch v := value.(type) {
	case nil:
		return ""
	case string:
		return v
	case json.Number:
		return v.String()
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(v)
	case fmt.Stringer:
		return v.String()
	default:
		return fmt.Sprint(v)
	}
}

// IsEmpty reports whether value carries no data.
func IsEmpty(value any) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	case Document:
		return len(v) == 0
	default:
		return false
	}
}

// DecodeJSON decodes raw defensively: malformed input yields nil.
func DecodeJSON(raw string) any {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil
	}
	var out any
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

// LooksLikeJSON reports whether raw starts like a JSON object or array. It
// does not check that raw is well formed, so truncated input still counts.
func LooksLikeJSON(raw string) bool {
	raw = strings.TrimSpace(raw)
	return raw != "" && (raw[0] == '{' || raw[0] == '[')
}
