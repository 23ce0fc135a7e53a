// Package trace defines the canonical record for one evaluated agent action.
// Every downstream engine (inference, drift, federation, futures,
// counterfactual, autopilot) consumes traces read-only; a trace is never
// mutated after it is written.
package trace

import "time"

// Decision is the outcome of a policy evaluation.
type Decision string

const (
	DecisionAllow  Decision = "allow"
	DecisionDeny   Decision = "deny"
	DecisionReview Decision = "review"
)

// Valid reports whether d is one of the three known decisions.
func (d Decision) Valid() bool {
	switch d {
	case DecisionAllow, DecisionDeny, DecisionReview:
		return true
	}
	return false
}

// Action type constants for the agent operations the evaluator covers.
const (
	ActionRunCommand   = "run-command"
	ActionWriteFile    = "write-file"
	ActionStartSession = "start-session"
)

// EvaluatedRule records one rule the evaluator checked for an action.
type EvaluatedRule struct {
	RuleID      string   `json:"ruleId"`
	Matched     bool     `json:"matched"`
	MatchReason string   `json:"matchReason,omitempty"`
	Priority    int      `json:"priority"`
	Effect      Decision `json:"effect"`
}

// OverrideContext records a human or session override of the evaluated outcome.
type OverrideContext struct {
	Triggered       bool     `json:"triggered"`
	OverrideRuleIDs []string `json:"overrideRuleIds,omitempty"`
	Reason          string   `json:"reason,omitempty"`
}

// PolicyTrace is the immutable record of one evaluated agent action.
type PolicyTrace struct {
	// ActionID uniquely identifies the evaluated action.
	ActionID string `json:"actionId"`

	// ActionType is one of run-command, write-file, start-session.
	ActionType string `json:"actionType"`

	// Timestamp is when the action was evaluated.
	Timestamp time.Time `json:"timestamp"`

	// EvaluatedRules lists every rule the evaluator checked, matched or not.
	EvaluatedRules []EvaluatedRule `json:"evaluatedRules,omitempty"`

	// OverrideContext is set when the evaluated outcome was overridden.
	OverrideContext *OverrideContext `json:"overrideContext,omitempty"`

	// FinalDecision is the decision that took effect.
	FinalDecision Decision `json:"finalDecision"`

	// FinalRuleID is the rule that produced FinalDecision, when one did.
	FinalRuleID string `json:"finalRuleId,omitempty"`

	// Summary is the human-readable description of the action
	// (e.g. "write file src/main.go" or "run command: rm -rf build").
	Summary string `json:"summary,omitempty"`

	// MachineSummary is the machine-readable counterpart, typically
	// "<actionType>:<target>".
	MachineSummary string `json:"machineSummary,omitempty"`
}

// Validate checks the fields every consumer relies on.
func (t *PolicyTrace) Validate() error {
	if t.ActionID == "" {
		return ErrMissingActionID
	}
	if !t.FinalDecision.Valid() {
		return ErrBadDecision
	}
	return nil
}

// MatchedDenyRule returns the first matched rule with deny effect, if any.
func (t *PolicyTrace) MatchedDenyRule() (EvaluatedRule, bool) {
	for _, r := range t.EvaluatedRules {
		if r.Matched && r.Effect == DecisionDeny {
			return r, true
		}
	}
	return EvaluatedRule{}, false
}

// Overridden reports whether the trace carries a triggered override.
func (t *PolicyTrace) Overridden() bool {
	return t.OverrideContext != nil && t.OverrideContext.Triggered
}

// Window is a half-open time window [From, To) in which traces are considered.
type Window struct {
	From time.Time `json:"from"`
	To   time.Time `json:"to"`
}

// Hours returns the window length in hours, never below a minute's worth to
// keep per-hour rates finite.
func (w Window) Hours() float64 {
	h := w.To.Sub(w.From).Hours()
	if h < 1.0/60 {
		return 1.0 / 60
	}
	return h
}

// Contains reports whether ts falls inside the window.
func (w Window) Contains(ts time.Time) bool {
	return !ts.Before(w.From) && ts.Before(w.To)
}

// Filter returns the traces whose timestamps fall inside the window,
// preserving order. The input slice is not modified.
func Filter(traces []PolicyTrace, w Window) []PolicyTrace {
	var out []PolicyTrace
	for _, t := range traces {
		if w.Contains(t.Timestamp) {
			out = append(out, t)
		}
	}
	return out
}

// CountDecisions tallies traces by final decision.
func CountDecisions(traces []PolicyTrace) map[Decision]int {
	counts := make(map[Decision]int)
	for _, t := range traces {
		counts[t.FinalDecision]++
	}
	return counts
}
