// Package inference mines an accumulated trace set for recurring patterns and
// proposes policy rule additions, modifications, and removals. Each heuristic
// is threshold-gated and independent; the engine is a pure function over its
// input.
package inference

import (
	"github.com/policyops/pgov/internal/policy"
	"github.com/policyops/pgov/internal/trace"
)

// Recommendation types.
const (
	TypeAddRule    = "add-rule"
	TypeModifyRule = "modify-rule"
	TypeRemoveRule = "remove-rule"
)

// Recommendation proposes one policy change backed by observed traces.
type Recommendation struct {
	ID string `json:"id"`

	// Type is add-rule, modify-rule, or remove-rule.
	Type string `json:"type"`

	// Reason explains the observed pattern behind the proposal.
	Reason string `json:"reason"`

	// AffectedActions lists the action types the proposal covers.
	AffectedActions []string `json:"affectedActions,omitempty"`

	// TraceIDs lists the action IDs of the traces that motivated the
	// proposal.
	TraceIDs []string `json:"traceIds,omitempty"`

	// ProposedRule is the policy fragment to add or the modified/removed
	// rule, depending on Type.
	ProposedRule policy.Rule `json:"proposedRule"`

	// Confidence is min(1, ln(count+1)/ln(total+10)) for the pattern's
	// occurrence count over the total trace count.
	Confidence float64 `json:"confidence"`
}

// Input is everything the engine consumes.
type Input struct {
	Traces []trace.PolicyTrace `json:"traces"`

	// Metadata carries optional caller context (project ID, window label).
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Result is the engine's output artifact.
type Result struct {
	Recommendations []Recommendation `json:"recommendations"`

	// Insights are human-readable observations that did not clear a
	// recommendation threshold.
	Insights []string `json:"insights,omitempty"`

	// AISummary is a one-paragraph digest of the analysis.
	AISummary string `json:"aiSummary"`
}
