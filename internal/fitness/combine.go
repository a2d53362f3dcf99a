package fitness

import (
	"context"
	"fmt"

	"archetypon/internal/evo"
	"archetypon/internal/model"
)

// WeightedFunc pairs a fitness function with its contribution weight.
type WeightedFunc struct {
	Fitness evo.FitnessFunc
	Weight  float64
}

// Combine builds a fitness that evaluates each part on the same batch and
// returns the weighted sum per candidate.
func Combine(parts ...WeightedFunc) (evo.FitnessFunc, error) {
	if len(parts) == 0 {
		return nil, fmt.Errorf("at least one fitness part is required")
	}
	for i, part := range parts {
		if part.Fitness == nil {
			return nil, fmt.Errorf("fitness is nil at index %d", i)
		}
	}

	return func(ctx context.Context, batch []model.Element) ([]float64, error) {
		out := make([]float64, len(batch))
		for _, part := range parts {
			values, err := part.Fitness(ctx, batch)
			if err != nil {
				return nil, err
			}
			if len(values) != len(batch) {
				return nil, fmt.Errorf("fitness batch mismatch: got=%d want=%d", len(values), len(batch))
			}
			for i, value := range values {
				out[i] += part.Weight * value
			}
		}
		return out, nil
	}, nil
}
