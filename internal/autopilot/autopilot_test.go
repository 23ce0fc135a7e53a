package autopilot

import (
	"errors"
	"testing"
	"time"

	"github.com/policyops/pgov/internal/drift"
	"github.com/policyops/pgov/internal/federate"
	"github.com/policyops/pgov/internal/futures"
	"github.com/policyops/pgov/internal/review"
)

var now = time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)

func calmDrift() *drift.Analysis {
	return &drift.Analysis{OverallDriftScore: 0.05, StabilityIndex: 0.95, Classification: drift.ClassStable}
}

func calmFutures() *futures.Result {
	return &futures.Result{VolatilityIndex: 0.1, RiskLevel: futures.RiskStable, WindowHours: 4}
}

func calmFederated() *federate.Health {
	return &federate.Health{SystemStabilityScore: 0.95}
}

func TestRunNoSignals(t *testing.T) {
	if _, err := Run(Input{ProjectID: "p", Timestamp: now}); !errors.Is(err, ErrNoSignals) {
		t.Errorf("expected ErrNoSignals, got %v", err)
	}
}

func TestCalmCycleIsStable(t *testing.T) {
	out, err := Run(Input{
		ProjectID: "p",
		Timestamp: now,
		Drift:     calmDrift(),
		Futures:   calmFutures(),
		Federated: calmFederated(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Risk.GlobalRisk != RiskStable {
		t.Errorf("calm inputs must fuse to stable, got %s", out.Risk.GlobalRisk)
	}
	if len(out.Risk.Reasons) != 0 {
		t.Errorf("no thresholds tripped, got reasons %v", out.Risk.Reasons)
	}
	if out.CycleID == "" {
		t.Error("cycle ID must be set")
	}
	if out.Risk.Metrics["driftScore"] != 0.05 {
		t.Errorf("drift score metric missing, got %v", out.Risk.Metrics)
	}
}

func TestMostSevereSignalWins(t *testing.T) {
	out, err := Run(Input{
		ProjectID: "p",
		Timestamp: now,
		Drift:     calmDrift(),
		Futures:   &futures.Result{VolatilityIndex: 0.7, RiskLevel: futures.RiskVolatile, WindowHours: 4},
		Federated: calmFederated(),
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Risk.GlobalRisk != RiskVolatile {
		t.Errorf("a volatile forecast must carry the verdict, got %s", out.Risk.GlobalRisk)
	}
	if len(out.Risk.Reasons) != 1 {
		t.Fatalf("volatility above 0.6 must produce one reason, got %v", out.Risk.Reasons)
	}
	if len(out.RecommendedActions) != 1 {
		t.Errorf("tripped threshold must recommend an action, got %v", out.RecommendedActions)
	}
}

func TestCriticalDriftEscalates(t *testing.T) {
	out, err := Run(Input{
		ProjectID: "p",
		Timestamp: now,
		Drift:     &drift.Analysis{OverallDriftScore: 0.9, Classification: drift.ClassCritical},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Risk.GlobalRisk != RiskCritical {
		t.Errorf("critical drift must fuse to critical, got %s", out.Risk.GlobalRisk)
	}
}

func TestFederatedStabilityMapping(t *testing.T) {
	cases := []struct {
		stability float64
		want      string
	}{
		{0.95, RiskStable},
		{0.6, RiskElevated},
		{0.3, RiskVolatile},
		{0.1, RiskCritical},
	}
	for _, c := range cases {
		if got := federatedRisk(c.stability); got != c.want {
			t.Errorf("federatedRisk(%f) = %s, want %s", c.stability, got, c.want)
		}
	}
}

func TestReviewPushbackRaisesElevated(t *testing.T) {
	verdicts := []review.Verdict{
		{RecommendationID: "r1", Verdict: review.VerdictReject},
		{RecommendationID: "r2", Verdict: review.VerdictReject},
		{RecommendationID: "r3", Verdict: review.VerdictApprove},
	}
	out, err := Run(Input{
		ProjectID: "p",
		Timestamp: now,
		Drift:     calmDrift(),
		Verdicts:  verdicts,
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if out.Risk.GlobalRisk != RiskElevated {
		t.Errorf("heavy rejection must raise elevated, got %s", out.Risk.GlobalRisk)
	}
	if out.Risk.Metrics["rejectionRatio"] == 0 {
		t.Error("rejection ratio metric missing")
	}
}

func TestZeroThresholdsGetDefaults(t *testing.T) {
	out, err := Run(Input{
		ProjectID: "p",
		Timestamp: now,
		Drift:     &drift.Analysis{OverallDriftScore: 0.55, Classification: drift.ClassVolatile},
	})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	// With the default drift threshold 0.5, a 0.55 score trips a reason.
	if len(out.Risk.Reasons) != 1 {
		t.Errorf("default thresholds must apply, got reasons %v", out.Risk.Reasons)
	}
}
