package inference

import (
	"fmt"
	"math"

	"github.com/policyops/pgov/internal/trace"
)

// Heuristic thresholds. A pattern below its threshold is at most an insight.
const (
	minDenyOccurrences     = 3
	minOverrideOccurrences = 2
	minReviewOccurrences   = 3
	minPathOccurrences     = 3
	minCommandOccurrences  = 3
	unusedRuleShare        = 0.01
)

// Infer runs every heuristic over the trace set. An empty trace set is not an
// error: it yields an empty result.
func Infer(in Input) (*Result, error) {
	res := &Result{Recommendations: []Recommendation{}}
	if len(in.Traces) == 0 {
		res.AISummary = "No traces to analyze; the policy has seen no evaluated actions."
		return res, nil
	}

	total := len(in.Traces)
	res.Recommendations = append(res.Recommendations, frequentDenyPatterns(in.Traces, total)...)
	res.Recommendations = append(res.Recommendations, frequentOverrides(in.Traces, total)...)
	res.Recommendations = append(res.Recommendations, reviewLoops(in.Traces, total)...)
	res.Recommendations = append(res.Recommendations, unusedRules(in.Traces, total)...)
	res.Recommendations = append(res.Recommendations, writePathTemplates(in.Traces, total)...)
	res.Recommendations = append(res.Recommendations, commandTemplates(in.Traces, total)...)

	res.Insights = buildInsights(in.Traces)
	res.AISummary = buildSummary(in.Traces, res.Recommendations)
	return res, nil
}

// Confidence maps a pattern's occurrence count over the total trace count
// into [0,1]: min(1, ln(count+1)/ln(total+10)).
func Confidence(count, total int) float64 {
	if count < 0 {
		count = 0
	}
	if total < 0 {
		total = 0
	}
	c := math.Log(float64(count)+1) / math.Log(float64(total)+10)
	if c > 1 {
		return 1
	}
	if c < 0 {
		return 0
	}
	return c
}

// actionIDs collects the action IDs of a trace group.
func actionIDs(traces []trace.PolicyTrace) []string {
	ids := make([]string, 0, len(traces))
	for _, t := range traces {
		ids = append(ids, t.ActionID)
	}
	return ids
}

// actionTypes collects the distinct action types of a trace group, in first
// occurrence order.
func actionTypes(traces []trace.PolicyTrace) []string {
	seen := make(map[string]bool)
	var types []string
	for _, t := range traces {
		if !seen[t.ActionType] {
			seen[t.ActionType] = true
			types = append(types, t.ActionType)
		}
	}
	return types
}

// majorityDecision returns the most common final decision in a group; ties
// break toward the more restrictive decision.
func majorityDecision(traces []trace.PolicyTrace) trace.Decision {
	counts := trace.CountDecisions(traces)
	best := trace.DecisionAllow
	bestCount := 0
	for _, d := range []trace.Decision{trace.DecisionAllow, trace.DecisionReview, trace.DecisionDeny} {
		if counts[d] > 0 && counts[d] >= bestCount {
			best = d
			bestCount = counts[d]
		}
	}
	return best
}

func buildInsights(traces []trace.PolicyTrace) []string {
	counts := trace.CountDecisions(traces)
	overrides := 0
	for _, t := range traces {
		if t.Overridden() {
			overrides++
		}
	}

	insights := []string{
		fmt.Sprintf("%d traces analyzed: %d allowed, %d denied, %d sent to review",
			len(traces), counts[trace.DecisionAllow], counts[trace.DecisionDeny], counts[trace.DecisionReview]),
	}
	if overrides > 0 {
		insights = append(insights, fmt.Sprintf("%d traces carried a triggered override", overrides))
	}
	return insights
}

func buildSummary(traces []trace.PolicyTrace, recs []Recommendation) string {
	byType := map[string]int{}
	for _, r := range recs {
		byType[r.Type]++
	}
	return fmt.Sprintf(
		"Analyzed %d policy traces and produced %d recommendations (%d add-rule, %d modify-rule, %d remove-rule).",
		len(traces), len(recs), byType[TypeAddRule], byType[TypeModifyRule], byType[TypeRemoveRule])
}
