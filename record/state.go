package record

// State is the lifecycle state of a record.
type State int

const (
	// StateNew is a record constructed without staged hydration data; its
	// identifier may be incomplete.
	StateNew State = iota + 1
	// StateManaged is a record with a full identifier, tracked by its manager.
	StateManaged
	// StateDetached is a record whose identity remains but is no longer
	// tracked by its manager.
	StateDetached
	// StateDeleted is a record scheduled for or having undergone removal.
	StateDeleted
	// StateLocked marks a record currently being traversed by a cascading
	// save or delete walk. It is cooperative, not an exclusion lock: the
	// manager sets it to break cycles and restores the prior state after.
	StateLocked
)

// String returns a human-readable name for the state.
func (s State) String() string {
	switch s {
	case StateNew:
		return "new"
	case StateManaged:
		return "managed"
	case StateDetached:
		return "detached"
	case StateDeleted:
		return "deleted"
	case StateLocked:
		return "locked"
	}
	return "invalid"
}

// valid reports whether s is one of the five recognized states.
func (s State) valid() bool {
	return s >= StateNew && s <= StateLocked
}
