package runbook

import (
	"errors"
	"testing"
	"time"

	"github.com/policyops/pgov/internal/autopilot"
	"github.com/policyops/pgov/internal/drift"
	"github.com/policyops/pgov/internal/futures"
	"github.com/policyops/pgov/internal/review"
)

var now = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func assessment(risk string, actions ...string) *autopilot.Output {
	return &autopilot.Output{
		CycleID:            "cycle-test",
		ProjectID:          "p",
		Risk:               autopilot.Risk{GlobalRisk: risk, Reasons: []string{}, Metrics: map[string]float64{}},
		RecommendedActions: actions,
	}
}

func TestPlanRequiresAssessment(t *testing.T) {
	if _, err := Plan(Input{ProjectID: "p"}); !errors.Is(err, ErrNoAssessment) {
		t.Errorf("expected ErrNoAssessment, got %v", err)
	}
}

func TestSeverityMapping(t *testing.T) {
	cases := []struct {
		risk string
		want string
	}{
		{autopilot.RiskStable, SeverityLow},
		{autopilot.RiskElevated, SeverityMedium},
		{autopilot.RiskVolatile, SeverityHigh},
		{autopilot.RiskCritical, SeverityCritical},
	}
	for _, c := range cases {
		out, err := Plan(Input{ProjectID: "p", Timestamp: now, Assessment: assessment(c.risk)})
		if err != nil {
			t.Fatalf("Plan(%s): %v", c.risk, err)
		}
		if out.Severity != c.want {
			t.Errorf("risk %s maps to %s, want %s", c.risk, out.Severity, c.want)
		}
	}
}

func TestStableCycleStillHasAStep(t *testing.T) {
	out, err := Plan(Input{ProjectID: "p", Timestamp: now, Assessment: assessment(autopilot.RiskStable)})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	if len(out.Steps) == 0 {
		t.Fatal("even a calm runbook must carry a verification step")
	}
	if out.Steps[len(out.Steps)-1].Severity != SeverityLow {
		t.Errorf("verification step must be low severity, got %s", out.Steps[len(out.Steps)-1].Severity)
	}
}

func TestStepsSortedMostSevereFirst(t *testing.T) {
	out, err := Plan(Input{
		ProjectID:  "p",
		Timestamp:  now,
		Assessment: assessment(autopilot.RiskVolatile, "Freeze automated rule changes."),
		Drift: &drift.Analysis{
			Classification: drift.ClassVolatile,
			Signals: []drift.Signal{
				{Type: drift.TypeRuleChurn, Severity: drift.SeverityHigh, Explanation: "rule churn at 1.5/h"},
				{Type: drift.TypeOverrideEscalation, Severity: drift.SeverityLow, Explanation: "minor overrides"},
				{Type: drift.TypeFlipFlop, Severity: drift.SeverityCritical, Explanation: "add/remove oscillation"},
			},
		},
		Futures: &futures.Result{RiskLevel: futures.RiskVolatile, WindowHours: 4, Worst: "worst case"},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}

	for i := 1; i < len(out.Steps); i++ {
		if severityRank(out.Steps[i].Severity) > severityRank(out.Steps[i-1].Severity) {
			t.Fatalf("steps out of order at %d: %s after %s", i, out.Steps[i].Severity, out.Steps[i-1].Severity)
		}
	}
	if out.Steps[0].Severity != SeverityCritical {
		t.Errorf("the flip-flop signal must rank first, got %s", out.Steps[0].Severity)
	}

	// The low drift signal contributes no step.
	for _, s := range out.Steps {
		if s.Rationale == "minor overrides" {
			t.Error("low-severity drift signals must not produce steps")
		}
	}
}

func TestReviewPushbackStep(t *testing.T) {
	out, err := Plan(Input{
		ProjectID:  "p",
		Timestamp:  now,
		Assessment: assessment(autopilot.RiskElevated),
		Verdicts: []review.Verdict{
			{RecommendationID: "r1", Verdict: review.VerdictReject},
			{RecommendationID: "r2", Verdict: review.VerdictRevise},
			{RecommendationID: "r3", Verdict: review.VerdictApprove},
		},
	})
	if err != nil {
		t.Fatalf("Plan: %v", err)
	}
	found := false
	for _, s := range out.Steps {
		if s.Action == "Audit the inference heuristics against recent review outcomes." {
			found = true
			if s.Severity != SeverityMedium {
				t.Errorf("review step severity: got %s", s.Severity)
			}
		}
	}
	if !found {
		t.Error("heavy review pushback must produce an audit step")
	}
}
