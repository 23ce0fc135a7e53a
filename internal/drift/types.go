// Package drift scores policy behavior instability over a time window. Each
// detector inspects traces, recommendations, and review verdicts
// independently and emits zero or more signals; aggregation folds the
// signals into one drift score and a stability classification.
package drift

import (
	"github.com/policyops/pgov/internal/inference"
	"github.com/policyops/pgov/internal/review"
	"github.com/policyops/pgov/internal/trace"
)

// SignalType names one kind of drift evidence.
type SignalType string

const (
	TypeRuleChurn            SignalType = "rule-churn"
	TypeOverrideEscalation   SignalType = "override-escalation"
	TypePermissionCreep      SignalType = "permission-creep"
	TypeRestrictionCreep     SignalType = "restriction-creep"
	TypeFlipFlop             SignalType = "flip-flop"
	TypeProjectInconsistency SignalType = "inconsistency-across-projects"
	TypeTemporalAnomaly      SignalType = "temporal-anomaly"
	TypeReviewerDisagreement SignalType = "reviewer-disagreement"
)

// Severity levels and their aggregation weights.
type Severity string

const (
	SeverityLow      Severity = "low"
	SeverityMedium   Severity = "medium"
	SeverityHigh     Severity = "high"
	SeverityCritical Severity = "critical"
)

// Weight returns the aggregation weight of a severity.
func (s Severity) Weight() float64 {
	switch s {
	case SeverityLow:
		return 0.2
	case SeverityMedium:
		return 0.5
	case SeverityHigh:
		return 0.8
	case SeverityCritical:
		return 1.0
	}
	return 0
}

// Signal is one piece of drift evidence.
type Signal struct {
	ID          string     `json:"id"`
	Type        SignalType `json:"type"`
	Severity    Severity   `json:"severity"`
	Confidence  float64    `json:"confidence"`
	Explanation string     `json:"explanation"`
}

// Stability classifications, ordered from calm to alarming.
const (
	ClassStable   = "stable"
	ClassWatch    = "watch"
	ClassVolatile = "volatile"
	ClassCritical = "critical"
)

// Input is everything the drift engine consumes for one analysis.
type Input struct {
	Traces          []trace.PolicyTrace        `json:"traces"`
	Recommendations []inference.Recommendation `json:"recommendations"`
	Verdicts        []review.Verdict           `json:"verdicts"`
	Window          trace.Window               `json:"window"`
}

// Analysis is the drift engine's output artifact. Created once per
// invocation and never mutated.
type Analysis struct {
	Signals []Signal `json:"signals"`

	// OverallDriftScore is the weighted aggregate of all signals in [0,1].
	OverallDriftScore float64 `json:"overallDriftScore"`

	// StabilityIndex is 1 - OverallDriftScore.
	StabilityIndex float64 `json:"stabilityIndex"`

	// Classification is stable, watch, volatile, or critical.
	Classification string `json:"classification"`

	Narrative string       `json:"narrative"`
	Window    trace.Window `json:"window"`
}
