package inference

import (
	"fmt"
	"sort"

	"github.com/rs/xid"

	"github.com/policyops/pgov/internal/policy"
	"github.com/policyops/pgov/internal/trace"
)

// frequentDenyPatterns groups denied traces by the matching deny rule's
// match reason (falling back to the rule ID) and proposes an allow rule for
// any group with enough occurrences. Repeated denies of the same shape mean
// the agent keeps needing something the policy forbids.
func frequentDenyPatterns(traces []trace.PolicyTrace, total int) []Recommendation {
	groups := make(map[string][]trace.PolicyTrace)
	for _, t := range traces {
		if t.FinalDecision != trace.DecisionDeny {
			continue
		}
		key := t.FinalRuleID
		if rule, ok := t.MatchedDenyRule(); ok {
			if rule.MatchReason != "" {
				key = rule.MatchReason
			} else {
				key = rule.RuleID
			}
		}
		if key == "" {
			key = "(unattributed deny)"
		}
		groups[key] = append(groups[key], t)
	}

	var recs []Recommendation
	for _, key := range sortedKeys(groups) {
		group := groups[key]
		if len(group) < minDenyOccurrences {
			continue
		}
		types := actionTypes(group)
		recs = append(recs, Recommendation{
			ID:   xid.New().String(),
			Type: TypeAddRule,
			Reason: fmt.Sprintf("%d actions denied for the same reason (%s); consider an explicit allow for this pattern",
				len(group), key),
			AffectedActions: types,
			TraceIDs:        actionIDs(group),
			ProposedRule: policy.Rule{
				ID:      "allow-" + xid.New().String(),
				Effect:  trace.DecisionAllow,
				Actions: types,
				Reason:  "proposed from recurring denies: " + key,
			},
			Confidence: Confidence(len(group), total),
		})
	}
	return recs
}

// sortedKeys returns map keys in lexical order so recommendation output is
// stable across runs.
func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
