package abilities

import (
	"fmt"
	"strings"
)

// State is an ability's lifecycle stage. Content code drives every
// transition; the manager only counts time spent in a state.
type State uint8

const (
	Inactive State = iota
	Starting
	Active
	Ending
)

var stateNames = [...]string{"inactive", "starting", "active", "ending"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// ParseState accepts the lowercase names returned by String.
func ParseState(s string) (State, error) {
	for i, name := range stateNames {
		if strings.EqualFold(s, name) {
			return State(i), nil
		}
	}
	return Inactive, fmt.Errorf("unknown ability state %q", s)
}

// InUse reports whether the state is anything other than Inactive.
func (s State) InUse() bool {
	return s != Inactive
}

// Tag is a save tree: string keys mapping to primitives or nested Tags.
type Tag = map[string]any
