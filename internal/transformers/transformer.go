package transformers

import (
	"errors"
	"fmt"
	"time"

	"github.com/goliatone/go-fieldkit/internal/domain"
	"github.com/goliatone/go-fieldkit/internal/schema"
)

// ErrStrictTransform marks structurally invalid input handed to a strict
// transformer such as json.
var ErrStrictTransform = errors.New("transformers: invalid input")

// Transformer is the marker every scalar converter implements. The direction
// capabilities below are optional; a missing capability is the identity.
type Transformer interface {
	Name() string
}

// BeforeSaver converts an edited value into its stored form.
type BeforeSaver interface {
	BeforeSave(value any) (any, error)
}

// AfterFinder converts a stored value into its presented form.
type AfterFinder interface {
	AfterFind(value any) (any, error)
}

// BeforeFinder converts a lookup value into the form stored values are
// compared against.
type BeforeFinder interface {
	BeforeFind(value any) (any, error)
}

// Presenter applies display only conversion in view mode.
type Presenter interface {
	Transform(value any) (any, error)
}

// Settings carries the ambient options a transformer may read.
type Settings struct {
	DateFormat string
	Location   *time.Location
	HashCost   int
	TokenBytes int
}

// DefaultSettings mirrors the runtime defaults.
func DefaultSettings() Settings {
	return Settings{
		DateFormat: "02.01.2006",
		Location:   time.UTC,
		HashCost:   10,
		TokenBytes: 32,
	}
}

func (s Settings) location() *time.Location {
	if s.Location == nil {
		return time.UTC
	}
	return s.Location
}

func (s Settings) dateFormat() string {
	if s.DateFormat == "" {
		return "02.01.2006"
	}
	return s.DateFormat
}

// Factory builds a transformer bound to one field.
type Factory func(field schema.FieldDefinition, settings Settings) (Transformer, error)

// Error reports a strict transform failure for a single field.
type Error struct {
	Transformer string
	Direction   domain.Direction
	Err         error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transformer %s (%s): %v", e.Transformer, e.Direction, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Apply runs the capability of t matching direction. Transformers without
// that capability return value untouched. present applies AfterFind and, in
// view mode, Transform.
func Apply(t Transformer, direction domain.Direction, mode domain.Mode, value any) (any, error) {
	if t == nil {
		return value, nil
	}
	var (
		out = value
		err error
	)
	switch direction {
	case domain.DirectionStore:
		if saver, ok := t.(BeforeSaver); ok {
			out, err = saver.BeforeSave(value)
		}
	case domain.DirectionFind:
		if finder, ok := t.(BeforeFinder); ok {
			out, err = finder.BeforeFind(value)
		}
	case domain.DirectionPresent:
		if finder, ok := t.(AfterFinder); ok {
			out, err = finder.AfterFind(value)
		}
		if err == nil && mode == domain.ModeView {
			if presenter, ok := t.(Presenter); ok {
				out, err = presenter.Transform(out)
			}
		}
	}
	if err != nil {
		return value, &Error{Transformer: t.Name(), Direction: direction, Err: err}
	}
	return out, nil
}
