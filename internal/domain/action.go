package domain

// Action trade direction verdict produced by a proposal source.
type Action string

const (
	ActionLong  Action = "LONG"
	ActionShort Action = "SHORT"
	ActionWait  Action = "WAIT"
)

// Valid reports whether the action is one of the known verdicts.
func (a Action) Valid() bool {
	switch a {
	case ActionLong, ActionShort, ActionWait:
		return true
	}
	return false
}

// Directional reports whether the action opens a position.
func (a Action) Directional() bool {
	return a == ActionLong || a == ActionShort
}

// String returns the wire representation.
func (a Action) String() string {
	return string(a)
}
