package federate

import "fmt"

// agglomerate runs average-linkage agglomerative clustering over the
// similarity matrix. Each project starts alone; at every step the two
// clusters with the highest average inter-member similarity merge, until the
// best remaining merge falls below the threshold. The result is a strict
// partition of the input indexes.
func agglomerate(m [][]float64, threshold float64) [][]int {
	clusters := make([][]int, len(m))
	for i := range clusters {
		clusters[i] = []int{i}
	}

	for len(clusters) > 1 {
		bestA, bestB := -1, -1
		bestSim := -1.0
		for a := 0; a < len(clusters); a++ {
			for b := a + 1; b < len(clusters); b++ {
				sim := averageLinkage(m, clusters[a], clusters[b])
				if sim > bestSim {
					bestSim, bestA, bestB = sim, a, b
				}
			}
		}
		if bestSim < threshold {
			break
		}

		merged := append(append([]int{}, clusters[bestA]...), clusters[bestB]...)
		next := make([][]int, 0, len(clusters)-1)
		for i, c := range clusters {
			if i != bestA && i != bestB {
				next = append(next, c)
			}
		}
		clusters = append(next, merged)
	}

	return clusters
}

// averageLinkage is the mean similarity between every cross-pair of the two
// clusters.
func averageLinkage(m [][]float64, a, b []int) float64 {
	sum := 0.0
	for _, i := range a {
		for _, j := range b {
			sum += m[i][j]
		}
	}
	return sum / float64(len(a)*len(b))
}

// buildClusters converts index clusters to the output form, ordered by each
// cluster's smallest member index so the result is stable.
func buildClusters(indexClusters [][]int, projectIDs []string) []Cluster {
	type ordered struct {
		min     int
		members []int
	}
	var ord []ordered
	for _, c := range indexClusters {
		min := c[0]
		for _, i := range c {
			if i < min {
				min = i
			}
		}
		ord = append(ord, ordered{min: min, members: c})
	}
	for i := 0; i < len(ord); i++ {
		for j := i + 1; j < len(ord); j++ {
			if ord[j].min < ord[i].min {
				ord[i], ord[j] = ord[j], ord[i]
			}
		}
	}

	clusters := make([]Cluster, 0, len(ord))
	for n, o := range ord {
		cluster := Cluster{ClusterID: fmt.Sprintf("cluster-%d", n+1)}
		// Members in input order.
		for i := 0; i < len(projectIDs); i++ {
			for _, idx := range o.members {
				if idx == i {
					cluster.Projects = append(cluster.Projects, projectIDs[i])
				}
			}
		}
		clusters = append(clusters, cluster)
	}
	return clusters
}
