package drift

import (
	"fmt"
	"sort"

	"github.com/rs/xid"

	"github.com/policyops/pgov/internal/inference"
	"github.com/policyops/pgov/internal/trace"
)

// Churn rate thresholds in recommendations per hour for one rule.
const (
	churnHighRate   = 1.0
	churnMediumRate = 0.5
)

// detectRuleChurn measures how often the same rule keeps attracting
// recommendations within the window. A rule recommended about once an hour
// is being fought over, not converged on.
func detectRuleChurn(recs []inference.Recommendation, window trace.Window) []Signal {
	perRule := make(map[string]int)
	for _, r := range recs {
		if r.ProposedRule.ID == "" {
			continue
		}
		perRule[r.ProposedRule.ID]++
	}

	hours := window.Hours()
	var signals []Signal
	for _, ruleID := range sortedKeys(perRule) {
		rate := float64(perRule[ruleID]) / hours

		var severity Severity
		switch {
		case rate >= churnHighRate:
			severity = SeverityHigh
		case rate >= churnMediumRate:
			severity = SeverityMedium
		default:
			continue
		}

		confidence := rate
		if confidence > 1 {
			confidence = 1
		}
		signals = append(signals, Signal{
			ID:         xid.New().String(),
			Type:       TypeRuleChurn,
			Severity:   severity,
			Confidence: confidence,
			Explanation: fmt.Sprintf("rule %s attracted %d recommendations in %.1fh (%.2f/h)",
				ruleID, perRule[ruleID], hours, rate),
		})
	}
	return signals
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// overrideCount tallies triggered overrides in a trace set.
func overrideCount(traces []trace.PolicyTrace) int {
	n := 0
	for _, t := range traces {
		if t.Overridden() {
			n++
		}
	}
	return n
}
