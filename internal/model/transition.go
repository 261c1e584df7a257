package model

// Gate names who may trigger a status transition.
type Gate int

const (
	// GateUser transitions are open to any actor allowed to call the operation.
	GateUser Gate = iota + 1
	// GateAdmin transitions require the admin role.
	GateAdmin
	// GateSystem transitions happen only as a side effect of another operation
	// (period close and delete cascades) and are never requested directly.
	GateSystem
)

// TransitionTable lists every allowed from -> to move for one entity kind.
type TransitionTable[S ~string] map[S]map[S]Gate

func (t TransitionTable[S]) Lookup(from, to S) (Gate, bool) {
	targets, ok := t[from]
	if !ok {
		return 0, false
	}
	gate, ok := targets[to]
	return gate, ok
}

// Allows reports whether the actor may move from -> to directly.
func (t TransitionTable[S]) Allows(from, to S, admin bool) bool {
	gate, ok := t.Lookup(from, to)
	if !ok {
		return false
	}
	switch gate {
	case GateUser:
		return true
	case GateAdmin:
		return admin
	default:
		return false
	}
}
