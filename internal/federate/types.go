// Package federate compares policy snapshots across projects: pairwise
// similarity, clustering, outlier detection, consensus rule sets, and an
// influence graph, folded into one system stability score.
package federate

import (
	"github.com/policyops/pgov/internal/inference"
	"github.com/policyops/pgov/internal/policy"
	"github.com/policyops/pgov/internal/review"
)

// ProjectSnapshot is one project's contribution to a federation pass.
type ProjectSnapshot struct {
	ProjectID string `json:"projectId"`

	// Policy is the project's current rule document.
	Policy *policy.Document `json:"policy"`

	// DriftScore is the project's latest overall drift score in [0,1].
	// Lower drift means the project's policy is more trustworthy as a
	// consensus source.
	DriftScore float64 `json:"driftScore"`

	ReviewHistory    []review.Verdict           `json:"reviewHistory,omitempty"`
	InferenceHistory []inference.Recommendation `json:"inferenceHistory,omitempty"`
}

// Cluster is one group of similar projects. Clusters partition the input:
// every project belongs to exactly one.
type Cluster struct {
	ClusterID string   `json:"clusterId"`
	Projects  []string `json:"projects"`
}

// Edge is one directed influence edge: how strongly From's policy should
// pull on To's.
type Edge struct {
	From   string  `json:"from"`
	To     string  `json:"to"`
	Weight float64 `json:"weight"`
}

// Consensus holds the three consensus rule sets.
type Consensus struct {
	// BaselineRules are present in a strict majority of project policies.
	BaselineRules []policy.Rule `json:"baselineRules"`

	// SimilarityWeightedRules weight each project by its mean similarity
	// to the rest of the federation.
	SimilarityWeightedRules []policy.Rule `json:"similarityWeightedRules"`

	// DriftWeightedRules weight each project by (1 - driftScore).
	DriftWeightedRules []policy.Rule `json:"driftWeightedRules"`
}

// Health is the federation engine's output artifact.
type Health struct {
	// ProjectIDs fixes the row/column order of SimilarityMatrix.
	ProjectIDs []string `json:"projectIds"`

	// SimilarityMatrix holds pairwise policy similarity in [0,1].
	SimilarityMatrix [][]float64 `json:"similarityMatrix"`

	Clusters []Cluster `json:"clusters"`
	Outliers []string  `json:"outliers"`

	Consensus      Consensus `json:"consensus"`
	InfluenceGraph []Edge    `json:"influenceGraph"`

	// SystemStabilityScore summarizes federation health in [0,1].
	SystemStabilityScore float64 `json:"systemStabilityScore"`

	Narrative string `json:"narrative"`
}

// Options are the federation thresholds.
type Options struct {
	// ClusterThreshold stops merging when the best remaining average
	// inter-cluster similarity falls below it.
	ClusterThreshold float64 `json:"clusterThreshold"`

	// OutlierThreshold marks projects whose mean similarity to all others
	// falls below it.
	OutlierThreshold float64 `json:"outlierThreshold"`
}

// DefaultOptions returns the standard thresholds.
func DefaultOptions() Options {
	return Options{ClusterThreshold: 0.5, OutlierThreshold: 0.3}
}
