package document

import (
	"github.com/goliatone/go-fieldkit/internal/domain"
)

// I18nBucket returns doc["i18n"][language], creating the nested maps when
// create is true. It returns nil when the bucket is missing and create is false.
func I18nBucket(doc Document, language string, create bool) map[string]any {
	root, ok := AsMap(doc[domain.KeyI18n])
	if !ok {
		if !create {
			return nil
		}
		root = map[string]any{}
		doc[domain.KeyI18n] = root
	}
	bucket, ok := AsMap(root[language])
	if !ok {
		if !create {
			return nil
		}
		bucket = map[string]any{}
		root[language] = bucket
	}
	return bucket
}

// TranslatableField is the slice of a field definition PrepareI18nStructure needs.
type TranslatableField struct {
	Key     string
	Default any
}

// PrepareI18nStructure makes sure doc["i18n"][l][key] exists for every
// language and translatable field. A flat doc[key] value seeds the default
// language; every other gap is filled with the field default (or "").
// doc is modified in place and returned.
func PrepareI18nStructure(doc Document, languages []string, defaultLanguage string, fields []TranslatableField) Document {
	if doc == nil {
		doc = Document{}
	}
	if len(fields) == 0 {
		return doc
	}
	for _, language := range languages {
		bucket := I18nBucket(doc, language, true)
		for _, field := range fields {
			if _, ok := bucket[field.Key]; ok {
				continue
			}
			if language == defaultLanguage {
				if flat, ok := doc[field.Key]; ok {
					bucket[field.Key] = CloneValue(flat)
					continue
				}
			}
			bucket[field.Key] = defaultValue(field.Default)
		}
	}
	for _, field := range fields {
		delete(doc, field.Key)
	}
	return doc
}

func defaultValue(value any) any {
	if value == nil {
		return ""
	}
	return CloneValue(value)
}
