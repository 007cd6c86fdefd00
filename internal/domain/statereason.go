package domain

import "strings"

// StateReason explains why an issue or pull request is in its current state.
type StateReason string

const (
	// StateReasonCompleted indicates the issue was closed as done.
	StateReasonCompleted StateReason = "completed"

	// StateReasonReopened indicates the issue was reopened after being closed.
	StateReasonReopened StateReason = "reopened"

	// StateReasonNotPlanned indicates the issue was closed without being worked on.
	StateReasonNotPlanned StateReason = "not_planned"

	// StateReasonDuplicate indicates the issue was closed as a duplicate.
	StateReasonDuplicate StateReason = "duplicate"

	// StateReasonNone indicates no reason was supplied.
	StateReasonNone StateReason = "none"

	// StateReasonAny matches any reason, including ones this package does
	// not know about yet. Unrecognized wire values parse to this rather
	// than failing, so new GitHub reasons do not break consumers.
	StateReasonAny StateReason = "any"
)

// ParseStateReason maps a raw state_reason value to a StateReason.
// An empty string (the field was absent or JSON null) yields StateReasonNone;
// any unrecognized value yields StateReasonAny. It never fails.
func ParseStateReason(raw string) StateReason {
	if raw == "" {
		return StateReasonNone
	}

	switch strings.ToLower(raw) {
	case "completed":
		return StateReasonCompleted
	case "reopened":
		return StateReasonReopened
	case "not_planned":
		return StateReasonNotPlanned
	case "duplicate":
		return StateReasonDuplicate
	default:
		return StateReasonAny
	}
}
