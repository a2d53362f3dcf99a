// Package fitness provides the embedding-space and structural scoring
// functions that drive the prototype search. All fitness values are
// higher-is-better.
package fitness

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Metric identifies a vector distance function.
type Metric string

const (
	Cosine    Metric = "cosine"
	Euclidean Metric = "euclidean"
	Manhattan Metric = "manhattan"
)

// Distance computes the chosen metric between two equal-length vectors.
func Distance(metric Metric, a, b []float64) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vector length mismatch: %d vs %d", len(a), len(b))
	}
	if len(a) == 0 {
		return 0, fmt.Errorf("empty vectors")
	}

	switch metric {
	case Euclidean:
		return floats.Distance(a, b, 2), nil
	case Manhattan:
		return floats.Distance(a, b, 1), nil
	case Cosine, "":
		normA := floats.Norm(a, 2)
		normB := floats.Norm(b, 2)
		if normA == 0 || normB == 0 {
			return 0, fmt.Errorf("cosine distance undefined for zero vector")
		}
		similarity := floats.Dot(a, b) / (normA * normB)
		// Clamp against floating point drift outside [-1, 1].
		similarity = math.Max(-1, math.Min(1, similarity))
		return 1 - similarity, nil
	default:
		return 0, fmt.Errorf("unsupported metric: %s", metric)
	}
}
