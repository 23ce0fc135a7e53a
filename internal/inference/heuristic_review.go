package inference

import (
	"fmt"

	"github.com/rs/xid"

	"github.com/policyops/pgov/internal/policy"
	"github.com/policyops/pgov/internal/trace"
)

// reviewLoops groups review-decision traces by their human summary and
// proposes formalizing any recurring review as an explicit rule, so the same
// question stops going to a human. The proposed effect is allow unless the
// evaluated rules show deny evidence for the group.
func reviewLoops(traces []trace.PolicyTrace, total int) []Recommendation {
	groups := make(map[string][]trace.PolicyTrace)
	for _, t := range traces {
		if t.FinalDecision != trace.DecisionReview {
			continue
		}
		key := t.Summary
		if key == "" {
			key = t.MachineSummary
		}
		if key == "" {
			continue
		}
		groups[key] = append(groups[key], t)
	}

	var recs []Recommendation
	for _, summary := range sortedKeys(groups) {
		group := groups[summary]
		if len(group) < minReviewOccurrences {
			continue
		}

		effect := trace.DecisionAllow
		if denyEvidence(group) {
			effect = trace.DecisionDeny
		}
		recs = append(recs, Recommendation{
			ID:   xid.New().String(),
			Type: TypeAddRule,
			Reason: fmt.Sprintf("%d actions looped through human review for %q; formalize as an explicit %s rule",
				len(group), summary, effect),
			AffectedActions: actionTypes(group),
			TraceIDs:        actionIDs(group),
			ProposedRule: policy.Rule{
				ID:      string(effect) + "-" + xid.New().String(),
				Effect:  effect,
				Actions: actionTypes(group),
				Reason:  "formalized recurring review: " + summary,
			},
			Confidence: Confidence(len(group), total),
		})
	}
	return recs
}

// denyEvidence reports whether the group's evaluated rules lean deny: more
// matched deny-effect rules than matched allow-effect ones.
func denyEvidence(group []trace.PolicyTrace) bool {
	denies, allows := 0, 0
	for _, t := range group {
		for _, r := range t.EvaluatedRules {
			if !r.Matched {
				continue
			}
			switch r.Effect {
			case trace.DecisionDeny:
				denies++
			case trace.DecisionAllow:
				allows++
			}
		}
	}
	return denies > allows
}
