package inference

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/policyops/pgov/internal/policy"
	"github.com/policyops/pgov/internal/trace"
)

// frequentOverrides groups traces whose outcome was overridden by the same
// stated reason and proposes modifying the overridden rule so the override
// stops being necessary.
func frequentOverrides(traces []trace.PolicyTrace, total int) []Recommendation {
	groups := make(map[string][]trace.PolicyTrace)
	for _, t := range traces {
		if !t.Overridden() {
			continue
		}
		reason := t.OverrideContext.Reason
		if reason == "" {
			reason = "(no reason recorded)"
		}
		groups[reason] = append(groups[reason], t)
	}

	var recs []Recommendation
	for _, reason := range sortedKeys(groups) {
		group := groups[reason]
		if len(group) < minOverrideOccurrences {
			continue
		}

		ruleID := overriddenRuleID(group)
		recs = append(recs, Recommendation{
			ID:   xid.New().String(),
			Type: TypeModifyRule,
			Reason: fmt.Sprintf("%d actions overrode the policy for the same reason (%s); the rule likely needs adjusting",
				len(group), reason),
			AffectedActions: actionTypes(group),
			TraceIDs:        actionIDs(group),
			ProposedRule: policy.Rule{
				ID:      ruleID,
				Effect:  trace.DecisionAllow,
				Actions: actionTypes(group),
				Reason:  "modify so overrides for \"" + reason + "\" are unnecessary",
			},
			Confidence: Confidence(len(group), total),
		})
	}
	return recs
}

// overriddenRuleID picks the rule the overrides most often named.
func overriddenRuleID(group []trace.PolicyTrace) string {
	counts := make(map[string]int)
	for _, t := range group {
		for _, id := range t.OverrideContext.OverrideRuleIDs {
			counts[id]++
		}
	}
	best := ""
	bestCount := 0
	for _, id := range sortedKeys(counts) {
		if counts[id] > bestCount {
			best = id
			bestCount = counts[id]
		}
	}
	if best == "" {
		return "unknown-rule"
	}
	return best
}
