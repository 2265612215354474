package transformers

import (
	"github.com/goliatone/go-fieldkit/internal/domain"
	"github.com/goliatone/go-fieldkit/internal/schema"
)

const NameState = "state"

type stateTransformer struct{}

func newState(schema.FieldDefinition, Settings) (Transformer, error) {
	return stateTransformer{}, nil
}

func (stateTransformer) Name() string { return NameState }

// AfterFind maps the state enum to its label. Out of range values read as
// Offline.
func (stateTransformer) AfterFind(value any) (any, error) {
	state, _ := domain.ParseState(value)
	return state.Label(), nil
}
