package document

import (
	"sort"
	"strconv"
	"strings"
)

// Lookup reads a dotted path such as "i18n.en.title".
func Lookup(doc map[string]any, path string) (any, bool) {
	if doc == nil {
		return nil, false
	}
	if value, ok := doc[path]; ok {
		return value, true
	}
	parts := strings.Split(path, ".")
	var current any = doc
	for _, part := range parts {
		m, ok := AsMap(current)
		if !ok {
			return nil, false
		}
		current, ok = m[part]
		if !ok {
			return nil, false
		}
	}
	return current, true
}

// Matches reports whether doc satisfies every filter entry. A list filter
// value matches when any element equals the document value; scalars compare
// by their string form so stored "2" matches a filter of 2.
func Matches(doc map[string]any, filter map[string]any) bool {
	for key, want := range filter {
		got, ok := Lookup(doc, key)
		if !ok {
			if want == nil {
				continue
			}
			return false
		}
		if !matchValue(got, want) {
			return false
		}
	}
	return true
}

func matchValue(got, want any) bool {
	if options, ok := AsSlice(want); ok {
		for _, option := range options {
			if matchValue(got, option) {
				return true
			}
		}
		return false
	}
	if values, ok := AsSlice(got); ok {
		for _, value := range values {
			if matchValue(value, want) {
				return true
			}
		}
		return false
	}
	return String(got) == String(want)
}

// SortKey is one ordering criterion.
type SortKey struct {
	Key        string
	Descending bool
}

// ParseSort reads "key", "-key", "key desc" and "key asc" entries.
func ParseSort(entries []string) []SortKey {
	out := make([]SortKey, 0, len(entries))
	for _, entry := range entries {
		fields := strings.Fields(entry)
		if len(fields) == 0 {
			continue
		}
		key := fields[0]
		desc := false
		if strings.HasPrefix(key, "-") {
			key = strings.TrimPrefix(key, "-")
			desc = true
		}
		if len(fields) > 1 && strings.EqualFold(fields[1], "desc") {
			desc = true
		}
		if key == "" {
			continue
		}
		out = append(out, SortKey{Key: key, Descending: desc})
	}
	return out
}

// Sort orders docs in place. Numeric values compare numerically, everything
// else by string form. Missing values sort first.
func Sort(docs []map[string]any, keys []SortKey) {
	if len(keys) == 0 {
		return
	}
	sort.SliceStable(docs, func(i, j int) bool {
		for _, key := range keys {
			a, _ := Lookup(docs[i], key.Key)
			b, _ := Lookup(docs[j], key.Key)
			cmp := compareValues(a, b)
			if cmp == 0 {
				continue
			}
			if key.Descending {
				return cmp > 0
			}
			return cmp < 0
		}
		return false
	})
}

func compareValues(a, b any) int {
	if a == nil || b == nil {
		switch {
		case a == nil && b == nil:
			return 0
		case a == nil:
			return -1
		default:
			return 1
		}
	}
	as, bs := String(a), String(b)
	af, errA := strconv.ParseFloat(as, 64)
	bf, errB := strconv.ParseFloat(bs, 64)
	if errA == nil && errB == nil {
		switch {
		case af < bf:
			return -1
		case af > bf:
			return 1
		default:
			return 0
		}
	}
	return strings.Compare(as, bs)
}

// Project keeps the identity keys plus columns. An empty column list keeps
// the whole document.
func Project(doc map[string]any, columns []string) map[string]any {
	if len(columns) == 0 || doc == nil {
		return CloneMap(doc)
	}
	out := make(map[string]any, len(columns)+2)
	for _, key := range []string{"uuid", "ctype"} {
		if value, ok := doc[key]; ok {
			out[key] = CloneValue(value)
		}
	}
	for _, column := range columns {
		if value, ok := Lookup(doc, column); ok {
			out[column] = CloneValue(value)
		}
	}
	return out
}

// Window applies offset and limit. A limit <= 0 keeps everything after offset.
func Window(docs []map[string]any, offset, limit int) []map[string]any {
	if offset > 0 {
		if offset >= len(docs) {
			return []map[string]any{}
		}
		docs = docs[offset:]
	}
	if limit > 0 && limit < len(docs) {
		docs = docs[:limit]
	}
	return docs
}
