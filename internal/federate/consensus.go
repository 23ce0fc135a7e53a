package federate

import (
	"sort"

	"github.com/policyops/pgov/internal/policy"
)

// buildConsensus derives the three consensus rule sets. Rules are identified
// by ID; the first occurrence of a rule provides its definition.
func buildConsensus(snapshots []ProjectSnapshot, m [][]float64) Consensus {
	definitions := make(map[string]policy.Rule)
	holders := make(map[string][]int)
	for i, s := range snapshots {
		if s.Policy == nil {
			continue
		}
		for _, r := range s.Policy.Rules {
			if _, seen := definitions[r.ID]; !seen {
				definitions[r.ID] = r
			}
			holders[r.ID] = append(holders[r.ID], i)
		}
	}

	n := len(snapshots)

	// Baseline: strict majority by project count.
	baseline := selectRules(definitions, holders, func(holding []int) bool {
		return float64(len(holding)) > float64(n)/2
	})

	// Similarity-weighted: a project's vote counts as its mean similarity
	// to the rest of the federation.
	simWeight := make([]float64, n)
	simTotal := 0.0
	for i := range snapshots {
		simWeight[i] = meanSimilarity(m, i)
		simTotal += simWeight[i]
	}
	simRules := selectRules(definitions, holders, func(holding []int) bool {
		w := 0.0
		for _, i := range holding {
			w += simWeight[i]
		}
		return w > simTotal/2
	})

	// Drift-weighted: a project's vote counts as (1 - driftScore), so calm
	// projects pull harder than churning ones.
	driftWeight := make([]float64, n)
	driftTotal := 0.0
	for i, s := range snapshots {
		driftWeight[i] = clamp01(1 - s.DriftScore)
		driftTotal += driftWeight[i]
	}
	driftRules := selectRules(definitions, holders, func(holding []int) bool {
		w := 0.0
		for _, i := range holding {
			w += driftWeight[i]
		}
		return w > driftTotal/2
	})

	return Consensus{
		BaselineRules:           baseline,
		SimilarityWeightedRules: simRules,
		DriftWeightedRules:      driftRules,
	}
}

// selectRules filters rule IDs by the inclusion predicate and returns their
// definitions in ID order.
func selectRules(definitions map[string]policy.Rule, holders map[string][]int, include func([]int) bool) []policy.Rule {
	var ids []string
	for id, holding := range holders {
		if include(holding) {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)

	rules := make([]policy.Rule, 0, len(ids))
	for _, id := range ids {
		rules = append(rules, definitions[id])
	}
	return rules
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
