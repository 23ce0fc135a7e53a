package drift

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/policyops/pgov/internal/inference"
)

// flipFlopTransitions is the number of adjacent type changes for one rule
// that counts as oscillation on its own.
const flipFlopTransitions = 2

// detectFlipFlop looks for per-rule recommendation sequences that oscillate:
// a rule both added and removed in the window, or whose recommendation type
// keeps changing. Oscillation means the policy is cycling, not converging.
func detectFlipFlop(recs []inference.Recommendation) []Signal {
	sequences := make(map[string][]string)
	for _, r := range recs {
		if r.ProposedRule.ID == "" {
			continue
		}
		sequences[r.ProposedRule.ID] = append(sequences[r.ProposedRule.ID], r.Type)
	}

	var signals []Signal
	for _, ruleID := range sortedKeys(sequences) {
		seq := sequences[ruleID]
		hasAdd, hasRemove := false, false
		transitions := 0
		for i, typ := range seq {
			switch typ {
			case inference.TypeAddRule:
				hasAdd = true
			case inference.TypeRemoveRule:
				hasRemove = true
			}
			if i > 0 && seq[i-1] != typ {
				transitions++
			}
		}

		if !(hasAdd && hasRemove) && transitions < flipFlopTransitions {
			continue
		}

		confidence := float64(transitions) / flipFlopTransitions
		if hasAdd && hasRemove && confidence < 0.9 {
			confidence = 0.9
		}
		if confidence > 1 {
			confidence = 1
		}
		signals = append(signals, Signal{
			ID:         xid.New().String(),
			Type:       TypeFlipFlop,
			Severity:   SeverityHigh,
			Confidence: confidence,
			Explanation: fmt.Sprintf("rule %s oscillated across %d recommendations (%d type transitions)",
				ruleID, len(seq), transitions),
		})
	}
	return signals
}
