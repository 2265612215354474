package domain

import (
	"encoding/json"
	"strconv"
	"strings"
)

// State is the lifecycle state stored on every content document.
type State int

const (
	// StateOffline hides the document everywhere.
	StateOffline State = 0
	// StateDraft marks content still under preparation.
	StateDraft State = 1
	// StateOnline marks published content.
	StateOnline State = 2
	// StateArchived keeps the document for history only.
	StateArchived State = 3
)

// StatePublished is the state lightweight documents are created with.
const StatePublished = StateOnline

var stateLabels = map[State]string{
	StateOffline:  "Offline",
	StateDraft:    "Draft",
	StateOnline:   "Online",
	StateArchived: "Archived",
}

// Label returns the display label; unknown states read as Offline.
func (s State) Label() string {
	if label, ok := stateLabels[s]; ok {
		return label
	}
	return stateLabels[StateOffline]
}

func (s State) Valid() bool {
	_, ok := stateLabels[s]
	return ok
}

// ParseState coerces a stored value into a State. The boolean is false when
// value is not an integer in the closed state domain.
func ParseState(value any) (State, bool) {
	var n int64
	switch v := value.(type) {
	case State:
		return v, v.Valid()
	case int:
		n = int64(v)
	case int32:
		n = int64(v)
	case int64:
		n = v
	case float64:
		if v != float64(int64(v)) {
			return StateOffline, false
		}
		n = int64(v)
	case json.Number:
		parsed, err := v.Int64()
		if err != nil {
			return StateOffline, false
		}
		n = parsed
	case string:
		parsed, err := strconv.ParseInt(strings.TrimSpace(v), 10, 64)
		if err != nil {
			return StateOffline, false
		}
		n = parsed
	default:
		return StateOffline, false
	}
	state := State(n)
	if !state.Valid() {
		return StateOffline, false
	}
	return state, true
}
