package schema

import (
	"fmt"
	"sort"
	"strings"
)

type keywordKind int

const (
	keywordLeaf keywordKind = iota
	keywordSchema
	keywordSchemaMap
	keywordSchemaList
	keywordOpaque
)

// structureKeywords lists the JSON schema keywords accepted in structured
// JSON field configs, with how their values are walked.
var structureKeywords = map[string]keywordKind{
	"$schema":              keywordLeaf,
	"$id":                  keywordLeaf,
	"$ref":                 keywordLeaf,
	"$anchor":              keywordLeaf,
	"$defs":                keywordSchemaMap,
	"type":                 keywordLeaf,
	"title":                keywordLeaf,
	"description":          keywordLeaf,
	"default":              keywordLeaf,
	"const":                keywordLeaf,
	"enum":                 keywordLeaf,
	"format":               keywordLeaf,
	"required":             keywordLeaf,
	"minLength":            keywordLeaf,
	"maxLength":            keywordLeaf,
	"pattern":              keywordLeaf,
	"minimum":              keywordLeaf,
	"maximum":              keywordLeaf,
	"minItems":             keywordLeaf,
	"maxItems":             keywordLeaf,
	"properties":           keywordSchemaMap,
	"items":                keywordSchema,
	"additionalProperties": keywordLeaf,
	"oneOf":                keywordSchemaList,
	"anyOf":                keywordSchemaList,
	"allOf":                keywordSchemaList,
	"widget":               keywordOpaque,
	"ui":                   keywordOpaque,
}

// ValidateStructureSubset ensures a structured JSON schema only uses the
// keywords the structure editor understands. Keys prefixed with "x-" are
// ignored.
func ValidateStructureSubset(schema map[string]any) error {
	return validateStructureNode(schema, "#")
}

func validateStructureNode(node map[string]any, path string) error {
	if node == nil {
		return nil
	}
	keys := make([]string, 0, len(node))
	for key := range node {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if strings.HasPrefix(key, "x-") {
			continue
		}
		kind, ok := structureKeywords[key]
		if !ok {
			return fmt.Errorf("%w: %s at %s", ErrUnsupportedKeyword, key, path)
		}
		value := node[key]
		switch kind {
		case keywordSchema:
			child, ok := value.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: %s must be an object at %s", ErrUnsupportedKeyword, key, path)
			}
			if err := validateStructureNode(child, path+"/"+key); err != nil {
				return err
			}
		case keywordSchemaMap:
			children, ok := value.(map[string]any)
			if !ok {
				return fmt.Errorf("%w: %s must be an object at %s", ErrUnsupportedKeyword, key, path)
			}
			names := make([]string, 0, len(children))
			for name := range children {
				names = append(names, name)
			}
			sort.Strings(names)
			for _, name := range names {
				child, ok := children[name].(map[string]any)
				if !ok {
					return fmt.Errorf("%w: %s/%s at %s", ErrUnsupportedKeyword, key, name, path)
				}
				if err := validateStructureNode(child, path+"/"+key+"/"+name); err != nil {
					return err
				}
			}
		case keywordSchemaList:
			items, ok := value.([]any)
			if !ok {
				return fmt.Errorf("%w: %s must be a list at %s", ErrUnsupportedKeyword, key, path)
			}
			for idx, item := range items {
				child, ok := item.(map[string]any)
				if !ok {
					return fmt.Errorf("%w: %s/%d at %s", ErrUnsupportedKeyword, key, idx, path)
				}
				if err := validateStructureNode(child, fmt.Sprintf("%s/%s/%d", path, key, idx)); err != nil {
					return err
				}
			}
		}
	}
	return nil
}
