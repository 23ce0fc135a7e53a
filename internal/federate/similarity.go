package federate

import (
	"encoding/json"
	"hash/fnv"
	"math"

	"github.com/policyops/pgov/internal/policy"
)

// vectorDim is the fixed length of a policy vector.
const vectorDim = 128

// Vectorize maps a policy document to a fixed-length vector: the document is
// serialized canonically, split into identifier tokens, and each token
// hashed into one of the buckets. The vector is a structural proxy, not a
// semantic one, but it is deterministic, and identical documents always map
// to identical vectors.
func Vectorize(doc *policy.Document) [vectorDim]float64 {
	var vec [vectorDim]float64
	if doc == nil {
		return vec
	}

	// encoding/json writes struct fields in declaration order, so the
	// serialization is canonical for equal documents.
	data, err := json.Marshal(doc)
	if err != nil {
		return vec
	}

	for _, token := range tokenize(data) {
		h := fnv.New32a()
		_, _ = h.Write(token)
		vec[h.Sum32()%vectorDim]++
	}
	return vec
}

// tokenize splits serialized policy into alphanumeric runs.
func tokenize(data []byte) [][]byte {
	var tokens [][]byte
	start := -1
	for i, b := range data {
		alnum := b == '_' || b == '-' || b == '/' ||
			(b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || (b >= '0' && b <= '9')
		if alnum {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			tokens = append(tokens, data[start:i])
			start = -1
		}
	}
	if start >= 0 {
		tokens = append(tokens, data[start:])
	}
	return tokens
}

// Similarity compares two policies via cosine similarity of their vectors,
// mapped from [-1,1] into [0,1]. The function is symmetric and identical
// policies score exactly 1.
func Similarity(a, b *policy.Document) float64 {
	return cosineMapped(Vectorize(a), Vectorize(b))
}

func cosineMapped(va, vb [vectorDim]float64) float64 {
	var dot, na, nb float64
	for i := 0; i < vectorDim; i++ {
		dot += va[i] * vb[i]
		na += va[i] * va[i]
		nb += vb[i] * vb[i]
	}

	// Two empty documents are identical; one empty document is simply
	// unrelated (raw cosine 0).
	if na == 0 && nb == 0 {
		return 1
	}
	if na == 0 || nb == 0 {
		return 0.5
	}

	cos := dot / (math.Sqrt(na) * math.Sqrt(nb))
	if cos > 1 {
		cos = 1
	}
	if cos < -1 {
		cos = -1
	}
	return (cos + 1) / 2
}

// matrix builds the full pairwise similarity matrix for the snapshots.
func matrix(snapshots []ProjectSnapshot) [][]float64 {
	n := len(snapshots)
	vecs := make([][vectorDim]float64, n)
	for i, s := range snapshots {
		vecs[i] = Vectorize(s.Policy)
	}

	m := make([][]float64, n)
	for i := range m {
		m[i] = make([]float64, n)
		for j := range m[i] {
			if i == j {
				m[i][j] = 1
				continue
			}
			if j < i {
				m[i][j] = m[j][i]
				continue
			}
			m[i][j] = cosineMapped(vecs[i], vecs[j])
		}
	}
	return m
}

// meanSimilarity returns project i's average similarity to every other
// project. Undefined (returned as 1) when there are no others.
func meanSimilarity(m [][]float64, i int) float64 {
	n := len(m)
	if n < 2 {
		return 1
	}
	sum := 0.0
	for j := 0; j < n; j++ {
		if j != i {
			sum += m[i][j]
		}
	}
	return sum / float64(n-1)
}

// meanPairwise returns the mean over all distinct pairs, 1 when fewer than
// two projects exist.
func meanPairwise(m [][]float64) float64 {
	n := len(m)
	if n < 2 {
		return 1
	}
	sum, pairs := 0.0, 0
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sum += m[i][j]
			pairs++
		}
	}
	return sum / float64(pairs)
}
