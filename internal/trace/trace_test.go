package trace

import (
	"errors"
	"testing"
	"time"
)

func baseTime() time.Time {
	return time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
}

func makeTrace(id string, decision Decision, ts time.Time) PolicyTrace {
	return PolicyTrace{
		ActionID:      id,
		ActionType:    ActionRunCommand,
		Timestamp:     ts,
		FinalDecision: decision,
	}
}

func TestValidate(t *testing.T) {
	tr := makeTrace("a1", DecisionAllow, baseTime())
	if err := tr.Validate(); err != nil {
		t.Fatalf("valid trace rejected: %v", err)
	}

	tr.ActionID = ""
	if err := tr.Validate(); !errors.Is(err, ErrMissingActionID) {
		t.Errorf("expected ErrMissingActionID, got %v", err)
	}

	tr.ActionID = "a1"
	tr.FinalDecision = "maybe"
	if err := tr.Validate(); !errors.Is(err, ErrBadDecision) {
		t.Errorf("expected ErrBadDecision, got %v", err)
	}
}

func TestMatchedDenyRule(t *testing.T) {
	tr := makeTrace("a1", DecisionDeny, baseTime())
	tr.EvaluatedRules = []EvaluatedRule{
		{RuleID: "r1", Matched: false, Effect: DecisionDeny},
		{RuleID: "r2", Matched: true, Effect: DecisionAllow},
		{RuleID: "r3", Matched: true, Effect: DecisionDeny, MatchReason: "sandbox escape"},
	}

	rule, ok := tr.MatchedDenyRule()
	if !ok {
		t.Fatal("expected a matched deny rule")
	}
	if rule.RuleID != "r3" {
		t.Errorf("expected r3, got %s", rule.RuleID)
	}

	tr.EvaluatedRules = tr.EvaluatedRules[:2]
	if _, ok := tr.MatchedDenyRule(); ok {
		t.Error("expected no matched deny rule")
	}
}

func TestOverridden(t *testing.T) {
	tr := makeTrace("a1", DecisionAllow, baseTime())
	if tr.Overridden() {
		t.Error("trace without override context reported overridden")
	}
	tr.OverrideContext = &OverrideContext{Triggered: false}
	if tr.Overridden() {
		t.Error("untriggered override reported overridden")
	}
	tr.OverrideContext.Triggered = true
	if !tr.Overridden() {
		t.Error("triggered override not reported")
	}
}

func TestWindowFilter(t *testing.T) {
	base := baseTime()
	w := Window{From: base, To: base.Add(2 * time.Hour)}

	traces := []PolicyTrace{
		makeTrace("before", DecisionAllow, base.Add(-time.Minute)),
		makeTrace("start", DecisionAllow, base),
		makeTrace("inside", DecisionDeny, base.Add(time.Hour)),
		makeTrace("end", DecisionAllow, base.Add(2*time.Hour)),
	}

	got := Filter(traces, w)
	if len(got) != 2 {
		t.Fatalf("expected 2 traces in window, got %d", len(got))
	}
	if got[0].ActionID != "start" || got[1].ActionID != "inside" {
		t.Errorf("wrong traces selected: %s, %s", got[0].ActionID, got[1].ActionID)
	}
}

func TestWindowHoursFloor(t *testing.T) {
	base := baseTime()
	w := Window{From: base, To: base}
	if h := w.Hours(); h <= 0 {
		t.Errorf("zero-length window must still have positive hours, got %f", h)
	}
}

func TestCountDecisions(t *testing.T) {
	base := baseTime()
	traces := []PolicyTrace{
		makeTrace("a1", DecisionAllow, base),
		makeTrace("a2", DecisionDeny, base),
		makeTrace("a3", DecisionDeny, base),
		makeTrace("a4", DecisionReview, base),
	}
	counts := CountDecisions(traces)
	if counts[DecisionAllow] != 1 || counts[DecisionDeny] != 2 || counts[DecisionReview] != 1 {
		t.Errorf("unexpected counts: %v", counts)
	}
}
