package inference

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/policyops/pgov/internal/policy"
	"github.com/policyops/pgov/internal/trace"
)

// unusedRules finds rules the evaluator keeps checking but that almost never
// match (under 1% of traces) and proposes removing them. Dead rules are
// policy noise that slows review and hides intent.
func unusedRules(traces []trace.PolicyTrace, total int) []Recommendation {
	if total == 0 {
		return nil
	}

	evaluated := make(map[string]bool)
	matched := make(map[string]int)
	for _, t := range traces {
		for _, r := range t.EvaluatedRules {
			evaluated[r.RuleID] = true
			if r.Matched {
				matched[r.RuleID]++
			}
		}
	}

	var recs []Recommendation
	for _, ruleID := range sortedKeys(evaluated) {
		share := float64(matched[ruleID]) / float64(total)
		if share >= unusedRuleShare {
			continue
		}
		recs = append(recs, Recommendation{
			ID:   xid.New().String(),
			Type: TypeRemoveRule,
			Reason: fmt.Sprintf("rule %s matched %d of %d traces (%.1f%%); it appears unused",
				ruleID, matched[ruleID], total, share*100),
			ProposedRule: policy.Rule{
				ID:     ruleID,
				Reason: "remove: rule effectively never matches",
			},
			Confidence: Confidence(total-matched[ruleID], total),
		})
	}
	return recs
}
