package trace

import "errors"

// Sentinel errors for the trace package.
var (
	// ErrMissingActionID is returned when a trace has no action ID.
	ErrMissingActionID = errors.New("trace: actionId is required")

	// ErrBadDecision is returned when a trace carries an unknown decision.
	ErrBadDecision = errors.New("trace: finalDecision must be allow, deny, or review")
)
