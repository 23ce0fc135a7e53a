// Package runbook turns an autopilot verdict plus its supporting signals into
// an ordered, severity-tagged remediation plan for a human operator.
package runbook

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/policyops/pgov/internal/autopilot"
	"github.com/policyops/pgov/internal/drift"
	"github.com/policyops/pgov/internal/federate"
	"github.com/policyops/pgov/internal/futures"
	"github.com/policyops/pgov/internal/review"
	"github.com/policyops/pgov/internal/trace"
)

// ErrNoAssessment is returned when there is no autopilot output to plan from.
var ErrNoAssessment = errors.New("runbook: an autopilot assessment is required")

// Severity levels for the runbook and its steps.
const (
	SeverityLow      = "low"
	SeverityMedium   = "medium"
	SeverityHigh     = "high"
	SeverityCritical = "critical"
)

// Input gathers the assessment and every signal that can contribute steps.
type Input struct {
	ProjectID string    `json:"projectId"`
	Timestamp time.Time `json:"timestamp"`

	Assessment *autopilot.Output `json:"assessment"`

	Drift     *drift.Analysis     `json:"drift,omitempty"`
	Futures   *futures.Result     `json:"futures,omitempty"`
	Federated *federate.Health    `json:"federated,omitempty"`
	Traces    []trace.PolicyTrace `json:"traces,omitempty"`
	Verdicts  []review.Verdict    `json:"verdicts,omitempty"`
}

// Step is one remediation action.
type Step struct {
	Severity  string `json:"severity"`
	Action    string `json:"action"`
	Rationale string `json:"rationale"`
}

// Output is the runbook artifact.
type Output struct {
	ProjectID string    `json:"projectId"`
	Timestamp time.Time `json:"timestamp"`
	CycleID   string    `json:"cycleId,omitempty"`

	// Severity mirrors the autopilot verdict: stable maps to low,
	// elevated to medium, volatile to high, critical stays critical.
	Severity  string `json:"severity"`
	Steps     []Step `json:"steps"`
	Narrative string `json:"narrative"`
}

// severityRank orders severities for step sorting, most severe first.
func severityRank(s string) int {
	switch s {
	case SeverityMedium:
		return 1
	case SeverityHigh:
		return 2
	case SeverityCritical:
		return 3
	}
	return 0
}

// fromGlobalRisk maps the autopilot risk vocabulary onto runbook severity.
func fromGlobalRisk(risk string) string {
	switch risk {
	case autopilot.RiskElevated:
		return SeverityMedium
	case autopilot.RiskVolatile:
		return SeverityHigh
	case autopilot.RiskCritical:
		return SeverityCritical
	}
	return SeverityLow
}

// Plan builds the remediation runbook.
func Plan(in Input) (*Output, error) {
	if in.Assessment == nil {
		return nil, ErrNoAssessment
	}

	out := &Output{
		ProjectID: in.ProjectID,
		Timestamp: in.Timestamp,
		CycleID:   in.Assessment.CycleID,
		Severity:  fromGlobalRisk(in.Assessment.Risk.GlobalRisk),
		Steps:     []Step{},
	}

	// Autopilot's own recommendations come first, carrying the runbook
	// severity.
	for i, action := range in.Assessment.RecommendedActions {
		rationale := "Recommended by the autopilot assessment."
		if i < len(in.Assessment.Risk.Reasons) {
			rationale = in.Assessment.Risk.Reasons[i]
		}
		out.Steps = append(out.Steps, Step{
			Severity:  out.Severity,
			Action:    action,
			Rationale: rationale,
		})
	}

	out.Steps = append(out.Steps, driftSteps(in.Drift)...)
	out.Steps = append(out.Steps, futuresSteps(in.Futures)...)
	out.Steps = append(out.Steps, federatedSteps(in.Federated)...)
	out.Steps = append(out.Steps, reviewSteps(in.Verdicts)...)
	out.Steps = append(out.Steps, baselineSteps(in.Traces, out.Severity)...)

	sort.SliceStable(out.Steps, func(i, j int) bool {
		return severityRank(out.Steps[i].Severity) > severityRank(out.Steps[j].Severity)
	})

	out.Narrative = narrative(out)
	return out, nil
}

func driftSteps(a *drift.Analysis) []Step {
	if a == nil {
		return nil
	}
	var steps []Step
	for _, sig := range a.Signals {
		if sig.Severity != drift.SeverityHigh && sig.Severity != drift.SeverityCritical {
			continue
		}
		steps = append(steps, Step{
			Severity:  string(sig.Severity),
			Action:    fmt.Sprintf("Investigate the %s signal.", sig.Type),
			Rationale: sig.Explanation,
		})
	}
	return steps
}

func futuresSteps(f *futures.Result) []Step {
	if f == nil || (f.RiskLevel != futures.RiskVolatile && f.RiskLevel != futures.RiskCritical) {
		return nil
	}
	sev := SeverityHigh
	if f.RiskLevel == futures.RiskCritical {
		sev = SeverityCritical
	}
	return []Step{{
		Severity:  sev,
		Action:    fmt.Sprintf("Schedule a policy review within the next %dh forecast window.", f.WindowHours),
		Rationale: f.Worst,
	}}
}

func federatedSteps(h *federate.Health) []Step {
	if h == nil || len(h.Outliers) == 0 {
		return nil
	}
	return []Step{{
		Severity: SeverityMedium,
		Action: fmt.Sprintf("Reconcile outlier project(s) %s against the federation baseline.",
			strings.Join(h.Outliers, ", ")),
		Rationale: fmt.Sprintf("System stability %.2f with %d outlier(s).", h.SystemStabilityScore, len(h.Outliers)),
	}}
}

func reviewSteps(verdicts []review.Verdict) []Step {
	if len(verdicts) == 0 {
		return nil
	}
	_, reject, revise := review.Ratios(verdicts)
	if reject+revise <= 0.5 {
		return nil
	}
	return []Step{{
		Severity: SeverityMedium,
		Action:   "Audit the inference heuristics against recent review outcomes.",
		Rationale: fmt.Sprintf("Reviewers rejected %.0f%% and sent back %.0f%% of recent recommendations.",
			reject*100, revise*100),
	}}
}

// baselineSteps always closes the runbook with a verification step so even a
// low-severity plan has something actionable.
func baselineSteps(traces []trace.PolicyTrace, severity string) []Step {
	counts := trace.CountDecisions(traces)
	return []Step{{
		Severity: SeverityLow,
		Action:   "Re-run detect-drift after remediation and confirm the classification returns to stable.",
		Rationale: fmt.Sprintf("Current window: %d allow, %d deny, %d review trace(s); overall severity %s.",
			counts[trace.DecisionAllow], counts[trace.DecisionDeny], counts[trace.DecisionReview], severity),
	}}
}

func narrative(out *Output) string {
	return fmt.Sprintf("Runbook for %s (cycle %s): severity %s, %d step(s).",
		out.ProjectID, out.CycleID, out.Severity, len(out.Steps))
}
