package federate

import (
	"errors"
	"fmt"
)

// ErrNoSnapshots is returned when Analyze receives an empty snapshot set.
var ErrNoSnapshots = errors.New("federate: at least one project snapshot is required")

// influenceFloor drops influence edges at or below this weight.
const influenceFloor = 0.1

// Stability penalties per extra cluster and per outlier.
const (
	clusterPenalty = 0.2
	outlierPenalty = 0.15
)

// Analyze runs one federation pass over the snapshots.
func Analyze(snapshots []ProjectSnapshot, opts Options) (*Health, error) {
	if len(snapshots) == 0 {
		return nil, ErrNoSnapshots
	}
	if opts.ClusterThreshold == 0 && opts.OutlierThreshold == 0 {
		opts = DefaultOptions()
	}

	ids := make([]string, len(snapshots))
	for i, s := range snapshots {
		ids[i] = s.ProjectID
	}

	m := matrix(snapshots)
	clusters := buildClusters(agglomerate(m, opts.ClusterThreshold), ids)
	outliers := findOutliers(m, ids, opts.OutlierThreshold)

	health := &Health{
		ProjectIDs:       ids,
		SimilarityMatrix: m,
		Clusters:         clusters,
		Outliers:         outliers,
		Consensus:        buildConsensus(snapshots, m),
		InfluenceGraph:   influenceGraph(snapshots, m),
	}
	health.SystemStabilityScore = stability(m, len(clusters), len(outliers))
	health.Narrative = narrative(health)
	return health, nil
}

// findOutliers marks projects whose mean similarity to all others is below
// the threshold. A single-project federation has no others to be an outlier
// against.
func findOutliers(m [][]float64, ids []string, threshold float64) []string {
	if len(ids) < 2 {
		return []string{}
	}
	outliers := []string{}
	for i := range ids {
		if meanSimilarity(m, i) < threshold {
			outliers = append(outliers, ids[i])
		}
	}
	return outliers
}

// influenceGraph emits a directed edge i->j weighted by how similar the
// policies are and how trustworthy the source is, dropping negligible edges.
func influenceGraph(snapshots []ProjectSnapshot, m [][]float64) []Edge {
	edges := []Edge{}
	for i := range snapshots {
		trust := clamp01(1 - snapshots[i].DriftScore)
		for j := range snapshots {
			if i == j {
				continue
			}
			w := m[i][j] * trust
			if w > influenceFloor {
				edges = append(edges, Edge{
					From:   snapshots[i].ProjectID,
					To:     snapshots[j].ProjectID,
					Weight: w,
				})
			}
		}
	}
	return edges
}

// stability starts at 1.0, pays for fragmentation and outliers, then scales
// by how similar the federation actually is.
func stability(m [][]float64, clusters, outliers int) float64 {
	score := 1.0
	score -= clusterPenalty * float64(clusters-1)
	score -= outlierPenalty * float64(outliers)
	if score < 0 {
		score = 0
	}
	return clamp01(score * meanPairwise(m))
}

func narrative(h *Health) string {
	return fmt.Sprintf(
		"Federation of %d projects: %d cluster(s), %d outlier(s), %d baseline consensus rule(s), %d influence edge(s). System stability %.2f.",
		len(h.ProjectIDs), len(h.Clusters), len(h.Outliers), len(h.Consensus.BaselineRules), len(h.InfluenceGraph), h.SystemStabilityScore)
}
