package report

// State is the lifecycle state of a report. Remote processing statuses are
// stored verbatim so they round-trip with the gateway.
type State string

const (
	StateDraft              State = "draft"
	StateSubmitted          State = "_SUBMITTED_"
	StateInProgress         State = "_IN_PROGRESS_"
	StateCancelled          State = "_CANCELLED_"
	StateDone               State = "_DONE_"
	StateDoneNoData         State = "_DONE_NO_DATA_"
	StateProcessed          State = "processed"
	StatePartiallyProcessed State = "partially_processed"
	// StateImported and StateClosed are accepted from storage for unshipped
	// order reports but never produced here.
	StateImported State = "imported"
	StateClosed   State = "closed"
)

// IsValid checks if the state is known
func (s State) IsValid() bool {
	switch s {
	case StateDraft, StateSubmitted, StateInProgress, StateCancelled, StateDone, StateDoneNoData,
		StateProcessed, StatePartiallyProcessed, StateImported, StateClosed:
		return true
	}
	return false
}

// String returns the string representation of State
func (s State) String() string {
	return string(s)
}

// IsRemoteStatus reports whether the state is one the gateway can report
func (s State) IsRemoteStatus() bool {
	switch s {
	case StateSubmitted, StateInProgress, StateCancelled, StateDone, StateDoneNoData:
		return true
	}
	return false
}

// IsPolling reports whether the remote job is still running
func (s State) IsPolling() bool {
	return s == StateSubmitted || s == StateInProgress
}

// IsTerminal reports whether no further transition can happen
func (s State) IsTerminal() bool {
	switch s {
	case StateCancelled, StateDoneNoData, StateImported, StateClosed:
		return true
	}
	return false
}

// IsProcessed reports whether reconciliation has completed at least once
func (s State) IsProcessed() bool {
	return s == StateProcessed || s == StatePartiallyProcessed
}

// CanReconcile reports whether a reconciliation pass may run from this state.
// The open remote states qualify once a report has been generated for them.
func (s State) CanReconcile() bool {
	return s == StateDone || s.IsPolling() || s.IsProcessed()
}

// CanTransitionTo checks if the state can transition to the target state
func (s State) CanTransitionTo(target State) bool {
	switch s {
	case StateDraft:
		return target == StateSubmitted || target.IsRemoteStatus()
	case StateSubmitted, StateInProgress:
		return target.IsRemoteStatus() || target.IsProcessed()
	case StateDone:
		return target == StateDone || target.IsProcessed()
	case StatePartiallyProcessed:
		return target.IsProcessed()
	case StateProcessed:
		return target == StateProcessed
	}
	return false
}
