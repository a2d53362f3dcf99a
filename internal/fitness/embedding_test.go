package fitness

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archetypon/internal/model"
)

// sizeEmbedder maps each graph to the 2-d point (node count, 0).
type sizeEmbedder struct{}

func (sizeEmbedder) EmbedGraphs(_ context.Context, graphs []model.Graph, _ int) ([][]float64, error) {
	out := make([][]float64, len(graphs))
	for i, graph := range graphs {
		out[i] = []float64{float64(graph.NodeCount()), 0}
	}
	return out, nil
}

type failingEmbedder struct{}

func (failingEmbedder) EmbedGraphs(_ context.Context, _ []model.Graph, _ int) ([][]float64, error) {
	return nil, fmt.Errorf("model unavailable")
}

func elementWithNodes(n int) model.Element {
	graph := model.Graph{}
	for i := 0; i < n; i++ {
		graph.Nodes = append(graph.Nodes, model.Node{Label: "C"})
	}
	return model.Element{Graph: graph}
}

func TestEmbeddingDistanceScoresByAnchorProximity(t *testing.T) {
	fitnessFunc, err := EmbeddingDistance(EmbeddingConfig{
		Embedder: sizeEmbedder{},
		Anchors:  [][]float64{{3, 0}},
		Metric:   Euclidean,
	})
	require.NoError(t, err)

	batch := []model.Element{elementWithNodes(3), elementWithNodes(5), elementWithNodes(4)}
	scores, err := fitnessFunc(context.Background(), batch)
	require.NoError(t, err)
	require.Len(t, scores, 3)

	assert.InDelta(t, 0.0, scores[0], 1e-12, "exact anchor match")
	assert.InDelta(t, -4.0, scores[1], 1e-12, "squared distance 2^2")
	assert.Greater(t, scores[0], scores[2])
	assert.Greater(t, scores[2], scores[1])
}

func TestEmbeddingDistanceAppliesViolationPenalty(t *testing.T) {
	fitnessFunc, err := EmbeddingDistance(EmbeddingConfig{
		Embedder:        sizeEmbedder{},
		Anchors:         [][]float64{{3, 0}},
		Metric:          Euclidean,
		ViolationRadius: 1.5,
	})
	require.NoError(t, err)

	scores, err := fitnessFunc(context.Background(), []model.Element{
		elementWithNodes(4), // distance 1, inside radius
		elementWithNodes(6), // distance 3, outside radius
	})
	require.NoError(t, err)

	assert.InDelta(t, -1.0, scores[0], 1e-12)
	assert.Less(t, scores[1], -ViolationPenalty+1)
}

func TestEmbeddingDistanceAppliesNodeCost(t *testing.T) {
	fitnessFunc, err := EmbeddingDistance(EmbeddingConfig{
		Embedder: sizeEmbedder{},
		Anchors:  [][]float64{{3, 0}},
		Metric:   Euclidean,
		NodeCost: 0.1,
	})
	require.NoError(t, err)

	scores, err := fitnessFunc(context.Background(), []model.Element{elementWithNodes(3)})
	require.NoError(t, err)
	assert.InDelta(t, -0.3, scores[0], 1e-12)
}

func TestEmbeddingDistanceConfigAndBatchErrors(t *testing.T) {
	_, err := EmbeddingDistance(EmbeddingConfig{Anchors: [][]float64{{1}}})
	assert.Error(t, err, "missing embedder")

	_, err = EmbeddingDistance(EmbeddingConfig{Embedder: sizeEmbedder{}})
	assert.Error(t, err, "missing anchors")

	fitnessFunc, err := EmbeddingDistance(EmbeddingConfig{
		Embedder: failingEmbedder{},
		Anchors:  [][]float64{{1, 0}},
	})
	require.NoError(t, err)
	_, err = fitnessFunc(context.Background(), []model.Element{elementWithNodes(1)})
	assert.Error(t, err)

	_, err = fitnessFunc(context.Background(), nil)
	assert.Error(t, err, "empty batch")
}

func TestCombineWeightsParts(t *testing.T) {
	constant := func(value float64) func(context.Context, []model.Element) ([]float64, error) {
		return func(_ context.Context, batch []model.Element) ([]float64, error) {
			out := make([]float64, len(batch))
			for i := range out {
				out[i] = value
			}
			return out, nil
		}
	}

	combined, err := Combine(
		WeightedFunc{Fitness: constant(1), Weight: 2},
		WeightedFunc{Fitness: constant(3), Weight: 0.5},
	)
	require.NoError(t, err)

	scores, err := combined(context.Background(), []model.Element{elementWithNodes(1), elementWithNodes(2)})
	require.NoError(t, err)
	assert.InDelta(t, 3.5, scores[0], 1e-12)
	assert.InDelta(t, 3.5, scores[1], 1e-12)

	_, err = Combine()
	assert.Error(t, err)
}
