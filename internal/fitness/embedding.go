package fitness

import (
	"context"
	"fmt"
	"math"

	"archetypon/internal/evo"
	"archetypon/internal/model"
)

// ViolationPenalty is subtracted from the fitness of a candidate whose
// nearest-anchor distance exceeds the violation radius. It must dominate any
// achievable size bonus so out-of-radius candidates never win.
const ViolationPenalty = 1000.0

// Embedder maps candidate graphs into the latent space of one explanation
// channel. Implementations wrap the external trained model.
type Embedder interface {
	EmbedGraphs(ctx context.Context, graphs []model.Graph, channel int) ([][]float64, error)
}

// EmbeddingConfig parameterizes the embedding-distance fitness.
type EmbeddingConfig struct {
	Embedder Embedder
	Channel  int
	// Anchors are the latent-space targets, usually the single cluster
	// centroid, optionally a set of exemplar embeddings.
	Anchors [][]float64
	// ViolationRadius bounds how far a candidate may drift from its nearest
	// anchor before the penalty applies. Zero disables the penalty.
	ViolationRadius float64
	Metric          Metric
	// NodeCost is subtracted per node so smaller graphs win among candidates
	// of equal embedding distance.
	NodeCost float64
}

// EmbeddingDistance builds a batch fitness that embeds the candidates and
// scores them by negated mean squared distance to the anchor set, with the
// violation penalty applied outside the allowed radius.
func EmbeddingDistance(cfg EmbeddingConfig) (evo.FitnessFunc, error) {
	if cfg.Embedder == nil {
		return nil, fmt.Errorf("embedder is required")
	}
	if len(cfg.Anchors) == 0 {
		return nil, fmt.Errorf("at least one anchor is required")
	}
	if cfg.ViolationRadius < 0 {
		return nil, fmt.Errorf("violation radius must be >= 0")
	}
	if cfg.NodeCost < 0 {
		return nil, fmt.Errorf("node cost must be >= 0")
	}

	return func(ctx context.Context, batch []model.Element) ([]float64, error) {
		if len(batch) == 0 {
			return nil, fmt.Errorf("empty candidate batch")
		}
		graphs := make([]model.Graph, len(batch))
		for i, element := range batch {
			graphs[i] = element.Graph
		}
		embeddings, err := cfg.Embedder.EmbedGraphs(ctx, graphs, cfg.Channel)
		if err != nil {
			return nil, fmt.Errorf("embed batch: %w", err)
		}
		if len(embeddings) != len(batch) {
			return nil, fmt.Errorf("embedding batch mismatch: got=%d want=%d", len(embeddings), len(batch))
		}

		out := make([]float64, len(batch))
		for i, embedding := range embeddings {
			sumSquared := 0.0
			nearest := math.Inf(1)
			for _, anchor := range cfg.Anchors {
				distance, err := Distance(cfg.Metric, embedding, anchor)
				if err != nil {
					return nil, fmt.Errorf("candidate %d: %w", i, err)
				}
				sumSquared += distance * distance
				if distance < nearest {
					nearest = distance
				}
			}
			score := -sumSquared / float64(len(cfg.Anchors))
			score -= cfg.NodeCost * float64(batch[i].Graph.NodeCount())
			if cfg.ViolationRadius > 0 && nearest > cfg.ViolationRadius {
				score -= ViolationPenalty
			}
			out[i] = score
		}
		return out, nil
	}, nil
}
