package drift

import (
	"testing"
	"time"

	"github.com/policyops/pgov/internal/inference"
	"github.com/policyops/pgov/internal/policy"
	"github.com/policyops/pgov/internal/review"
	"github.com/policyops/pgov/internal/trace"
)

func window24h() trace.Window {
	from := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	return trace.Window{From: from, To: from.Add(24 * time.Hour)}
}

func plainTrace(id string, ts time.Time) trace.PolicyTrace {
	return trace.PolicyTrace{
		ActionID:      id,
		ActionType:    trace.ActionRunCommand,
		Timestamp:     ts,
		FinalDecision: trace.DecisionAllow,
	}
}

func modifyRec(ruleID string) inference.Recommendation {
	return inference.Recommendation{
		ID:           "rec-" + ruleID,
		Type:         inference.TypeModifyRule,
		ProposedRule: policy.Rule{ID: ruleID, Effect: trace.DecisionAllow},
	}
}

func TestAnalyzeEmptyWindow(t *testing.T) {
	a := Analyze(Input{Window: window24h()})
	if a.Classification != ClassStable {
		t.Errorf("zero traces must classify stable, got %s", a.Classification)
	}
	if a.OverallDriftScore != 0 {
		t.Errorf("zero traces must score 0, got %f", a.OverallDriftScore)
	}
	if a.StabilityIndex != 1 {
		t.Errorf("stability must be 1, got %f", a.StabilityIndex)
	}
	if a.Narrative == "" {
		t.Error("expected an explanatory narrative")
	}
}

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		score float64
		want  string
	}{
		{0, ClassStable},
		{0.199999, ClassStable},
		{0.2, ClassWatch},
		{0.499999, ClassWatch},
		{0.5, ClassVolatile},
		{0.7999, ClassVolatile},
		{0.8, ClassCritical},
		{1.0, ClassCritical},
	}
	for _, c := range cases {
		if got := Classify(c.score); got != c.want {
			t.Errorf("Classify(%f) = %s, want %s", c.score, got, c.want)
		}
	}
}

func TestChurnBelowThreshold(t *testing.T) {
	// 2 recommendations for rule X over 24h is ~0.083/h: no signal.
	signals := detectRuleChurn([]inference.Recommendation{
		modifyRec("X"), modifyRec("X"),
	}, window24h())
	if len(signals) != 0 {
		t.Errorf("expected no churn signal at 0.083/h, got %+v", signals)
	}
}

func TestChurnRates(t *testing.T) {
	from := time.Date(2026, 3, 7, 0, 0, 0, 0, time.UTC)
	w2h := trace.Window{From: from, To: from.Add(2 * time.Hour)}

	// 1 rec in 2h = 0.5/h: medium.
	signals := detectRuleChurn([]inference.Recommendation{modifyRec("X")}, w2h)
	if len(signals) != 1 || signals[0].Severity != SeverityMedium {
		t.Fatalf("expected one medium churn signal, got %+v", signals)
	}

	// 3 recs in 2h = 1.5/h: high, confidence capped at 1.
	signals = detectRuleChurn([]inference.Recommendation{
		modifyRec("X"), modifyRec("X"), modifyRec("X"),
	}, w2h)
	if len(signals) != 1 || signals[0].Severity != SeverityHigh {
		t.Fatalf("expected one high churn signal, got %+v", signals)
	}
	if signals[0].Confidence != 1 {
		t.Errorf("confidence must cap at 1, got %f", signals[0].Confidence)
	}
}

func TestOverrideEscalation(t *testing.T) {
	base := window24h().From
	mk := func(id string, overridden bool) trace.PolicyTrace {
		tr := plainTrace(id, base.Add(time.Hour))
		if overridden {
			tr.OverrideContext = &trace.OverrideContext{Triggered: true}
		}
		return tr
	}

	// 1 of 10 (10%): no signal.
	traces := []trace.PolicyTrace{mk("a", true)}
	for i := 0; i < 9; i++ {
		traces = append(traces, mk("b", false))
	}
	if s := detectOverrideEscalation(traces); len(s) != 0 {
		t.Errorf("10%% density must not signal, got %+v", s)
	}

	// 2 of 10 (20%): medium.
	traces[1].OverrideContext = &trace.OverrideContext{Triggered: true}
	s := detectOverrideEscalation(traces)
	if len(s) != 1 || s[0].Severity != SeverityMedium {
		t.Errorf("20%% density must signal medium, got %+v", s)
	}

	// 4 of 10 (40%): high.
	traces[2].OverrideContext = &trace.OverrideContext{Triggered: true}
	traces[3].OverrideContext = &trace.OverrideContext{Triggered: true}
	s = detectOverrideEscalation(traces)
	if len(s) != 1 || s[0].Severity != SeverityHigh {
		t.Errorf("40%% density must signal high, got %+v", s)
	}
}

func TestPermissionCreep(t *testing.T) {
	allowAdd := func(id string) inference.Recommendation {
		return inference.Recommendation{
			Type:         inference.TypeAddRule,
			ProposedRule: policy.Rule{ID: id, Effect: trace.DecisionAllow},
		}
	}

	if s := detectPermissionCreep([]inference.Recommendation{allowAdd("r1")}); len(s) != 0 {
		t.Errorf("1 allow-add must not signal, got %+v", s)
	}

	s := detectPermissionCreep([]inference.Recommendation{allowAdd("r1"), allowAdd("r2")})
	if len(s) != 1 || s[0].Severity != SeverityMedium {
		t.Errorf("2 allow-adds must signal medium, got %+v", s)
	}

	recs := []inference.Recommendation{}
	for i := 0; i < 5; i++ {
		recs = append(recs, allowAdd("r"))
	}
	s = detectPermissionCreep(recs)
	if len(s) != 1 || s[0].Severity != SeverityHigh {
		t.Errorf("5 allow-adds must signal high, got %+v", s)
	}
}

func TestRestrictionCreep(t *testing.T) {
	remove := inference.Recommendation{Type: inference.TypeRemoveRule, ProposedRule: policy.Rule{ID: "r"}}

	s := detectRestrictionCreep([]inference.Recommendation{remove})
	if len(s) != 1 || s[0].Severity != SeverityMedium {
		t.Errorf("1 removal must signal medium, got %+v", s)
	}

	s = detectRestrictionCreep([]inference.Recommendation{remove, remove, remove})
	if len(s) != 1 || s[0].Severity != SeverityHigh {
		t.Errorf("3 removals must signal high, got %+v", s)
	}

	denyModify := inference.Recommendation{
		Type:         inference.TypeModifyRule,
		Reason:       "tighten: restrict writes",
		ProposedRule: policy.Rule{ID: "r", Effect: trace.DecisionAllow},
	}
	if s := detectRestrictionCreep([]inference.Recommendation{denyModify}); len(s) != 1 {
		t.Errorf("restrict-flavored modify must count, got %+v", s)
	}
}

func TestFlipFlop(t *testing.T) {
	add := inference.Recommendation{Type: inference.TypeAddRule, ProposedRule: policy.Rule{ID: "r"}}
	remove := inference.Recommendation{Type: inference.TypeRemoveRule, ProposedRule: policy.Rule{ID: "r"}}

	s := detectFlipFlop([]inference.Recommendation{add, remove})
	if len(s) != 1 || s[0].Severity != SeverityHigh {
		t.Fatalf("add+remove for one rule must signal high, got %+v", s)
	}
	if s[0].Confidence < 0.9 {
		t.Errorf("add+remove confidence floor is 0.9, got %f", s[0].Confidence)
	}

	if s := detectFlipFlop([]inference.Recommendation{add, add}); len(s) != 0 {
		t.Errorf("repeated same-type recommendations are churn, not flip-flop: %+v", s)
	}
}

func TestReviewerDisagreement(t *testing.T) {
	// Even mix: variance 0, no signal.
	even := []review.Verdict{
		{Verdict: review.VerdictApprove},
		{Verdict: review.VerdictReject},
		{Verdict: review.VerdictRevise},
	}
	if s := detectReviewerDisagreement(even); len(s) != 0 {
		t.Errorf("even verdict mix must not signal, got %+v", s)
	}

	// Fully skewed: variance 0.222, medium signal with confidence 2*variance.
	skewed := []review.Verdict{
		{Verdict: review.VerdictReject},
		{Verdict: review.VerdictReject},
		{Verdict: review.VerdictReject},
	}
	s := detectReviewerDisagreement(skewed)
	if len(s) != 1 || s[0].Severity != SeverityMedium {
		t.Fatalf("skewed verdicts must signal medium, got %+v", s)
	}
	if s[0].Confidence < 0.4 || s[0].Confidence > 0.5 {
		t.Errorf("confidence must be 2*variance (~0.44), got %f", s[0].Confidence)
	}
}

func TestTemporalAnomaly(t *testing.T) {
	w := window24h()
	var traces []trace.PolicyTrace
	traces = append(traces, plainTrace("early", w.From.Add(time.Hour)))
	for i := 0; i < 6; i++ {
		traces = append(traces, plainTrace("late", w.From.Add(20*time.Hour)))
	}
	if s := detectTemporalAnomaly(traces, w); len(s) != 1 {
		t.Errorf("6x late burst must signal, got %+v", s)
	}

	if s := detectTemporalAnomaly(traces[:3], w); len(s) != 0 {
		t.Errorf("tiny samples must not signal, got %+v", s)
	}
}

func TestScoreMonotonicWithHighSignals(t *testing.T) {
	mk := func(n int) []Signal {
		var signals []Signal
		for i := 0; i < n; i++ {
			signals = append(signals, Signal{Type: TypeRuleChurn, Severity: SeverityHigh, Confidence: 0.7})
		}
		return signals
	}

	prev := 0.0
	for n := 1; n <= 10; n++ {
		score := Score(mk(n), 50, 10)
		if score < prev {
			t.Fatalf("score decreased from %f to %f at %d signals", prev, score, n)
		}
		prev = score
	}
}

func TestScoreCapped(t *testing.T) {
	var signals []Signal
	for i := 0; i < 100; i++ {
		signals = append(signals, Signal{Severity: SeverityCritical, Confidence: 1})
	}
	if score := Score(signals, 1, 0); score > 1 {
		t.Errorf("score must cap at 1, got %f", score)
	}
}

func TestAnalyzeEndToEnd(t *testing.T) {
	w := window24h()
	var traces []trace.PolicyTrace
	for i := 0; i < 10; i++ {
		tr := plainTrace("t", w.From.Add(time.Hour))
		tr.OverrideContext = &trace.OverrideContext{Triggered: true, Reason: "needed"}
		traces = append(traces, tr)
	}

	a := Analyze(Input{Traces: traces, Window: w})
	if len(a.Signals) == 0 {
		t.Fatal("100% override density must produce signals")
	}
	if a.OverallDriftScore <= 0 {
		t.Error("expected positive drift score")
	}
	if a.StabilityIndex != 1-a.OverallDriftScore {
		t.Errorf("stability index must be 1-score: %f vs %f", a.StabilityIndex, a.OverallDriftScore)
	}
	if a.Classification == "" || a.Narrative == "" {
		t.Error("classification and narrative must be set")
	}
}
