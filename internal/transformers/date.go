package transformers

import (
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-fieldkit/internal/document"
	"github.com/goliatone/go-fieldkit/internal/schema"
)

const (
	NameDate     = "date"
	NameDatetime = "datetime"
)

var dateLayouts = []string{
	"02.01.2006",
	"2.1.2006",
	"2006-01-02",
	"01/02/2006",
	time.RFC3339,
}

var datetimeLayouts = []string{
	"02.01.2006 15:04:05",
	"02.01.2006 15:04",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	time.RFC3339,
	"02.01.2006",
	"2006-01-02",
}

type dateTransformer struct {
	name     string
	layouts  []string
	format   string
	location *time.Location
}

func newDate(field schema.FieldDefinition, settings Settings) (Transformer, error) {
	format := settings.dateFormat()
	if field.Config.Format != "" {
		format = field.Config.Format
	}
	return &dateTransformer{
		name:     NameDate,
		layouts:  withLayout(format, dateLayouts),
		format:   format,
		location: settings.location(),
	}, nil
}

func newDatetime(field schema.FieldDefinition, settings Settings) (Transformer, error) {
	layouts := datetimeLayouts
	if field.Config.Format != "" {
		layouts = withLayout(field.Config.Format, datetimeLayouts)
	}
	return &datetimeTransformer{parser: dateTransformer{
		name:     NameDatetime,
		layouts:  layouts,
		location: settings.location(),
	}}, nil
}

func withLayout(first string, rest []string) []string {
	out := make([]string, 0, len(rest)+1)
	out = append(out, first)
	for _, layout := range rest {
		if layout != first {
			out = append(out, layout)
		}
	}
	return out
}

func (d *dateTransformer) Name() string { return d.name }

// BeforeSave turns a human date into epoch seconds. Values that already are
// epoch seconds and values no layout accepts are kept as given.
func (d *dateTransformer) BeforeSave(value any) (any, error) {
	raw := strings.TrimSpace(document.String(value))
	if raw == "" {
		return "", nil
	}
	if _, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return raw, nil
	}
	for _, layout := range d.layouts {
		parsed, err := time.ParseInLocation(layout, raw, d.location)
		if err == nil {
			return strconv.FormatInt(parsed.Unix(), 10), nil
		}
	}
	return value, nil
}

// AfterFind renders epoch seconds with the display format.
func (d *dateTransformer) AfterFind(value any) (any, error) {
	raw := strings.TrimSpace(document.String(value))
	if raw == "" {
		return "", nil
	}
	seconds, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return value, nil
	}
	return time.Unix(seconds, 0).In(d.location).Format(d.format), nil
}

// datetimeTransformer only converts on save; stored epochs are presented as is.
type datetimeTransformer struct {
	parser dateTransformer
}

func (d *datetimeTransformer) Name() string { return NameDatetime }

func (d *datetimeTransformer) BeforeSave(value any) (any, error) {
	return d.parser.BeforeSave(value)
}
