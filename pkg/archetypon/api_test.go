package archetypon

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archetypon/internal/fitness"
	"archetypon/internal/model"
	"archetypon/internal/report"
)

// sizeEmbedder maps each graph to the 2-d point (node count, 1).
type sizeEmbedder struct{}

func (sizeEmbedder) EmbedGraphs(_ context.Context, graphs []model.Graph, _ int) ([][]float64, error) {
	out := make([][]float64, len(graphs))
	for i, graph := range graphs {
		out[i] = []float64{float64(graph.NodeCount()), 1}
	}
	return out, nil
}

func chainElement(n int) model.Element {
	graph := model.Graph{}
	for i := 0; i < n; i++ {
		graph.Nodes = append(graph.Nodes, model.Node{Label: "C"})
		if i > 0 {
			graph.Edges = append(graph.Edges, model.Edge{From: i - 1, To: i})
		}
	}
	return model.Element{Graph: graph}
}

// conceptFixture builds a cluster of chain graphs whose centroid sits at the
// embedding of the 3-node chain.
func conceptFixture(index int) model.Concept {
	concept := model.Concept{
		Index:        index,
		ChannelIndex: index % 2,
		ChannelName:  "positive",
		Centroid:     []float64{3, 1},
	}
	for _, size := range []int{3, 4, 5, 6} {
		concept.Members = append(concept.Members, model.Member{
			Index:   size,
			Element: chainElement(size),
		})
		concept.Embeddings = append(concept.Embeddings, []float64{float64(size), 1})
	}
	return concept
}

func newTestClient(t *testing.T) *Client {
	t.Helper()
	client, err := New(context.Background(), Options{
		StoreKind:  "memory",
		ReportsDir: filepath.Join(t.TempDir(), "reports"),
		Logger:     zerolog.Nop(),
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestGeneratePrototypesEndToEnd(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	request := GenerateRequest{
		Embedder:        sizeEmbedder{},
		Metric:          fitness.Euclidean,
		ViolationRadius: 100,
		PopulationSize:  40,
		Epochs:          10,
		EliteCount:      4,
		Workers:         2,
		Seed:            11,
	}

	conceptList := []model.Concept{conceptFixture(0), conceptFixture(1)}
	updated, err := client.GeneratePrototypes(ctx, conceptList, request)
	require.NoError(t, err)
	require.Len(t, updated, 2)

	for _, concept := range updated {
		require.Len(t, concept.Prototypes, 1)
		prototype := concept.Prototypes[0]
		assert.Equal(t, 3, prototype.Element.Graph.NodeCount(), "centroid sits at the 3-node chain")
		assert.Equal(t, []float64{3, 1}, prototype.Embedding)
	}

	stored, err := client.Concepts(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 2)
	assert.Len(t, stored[0].Prototypes, 1)

	runs, err := client.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	for _, run := range runs {
		// Best score is -NodeCost*3 with the default node cost.
		assert.InDelta(t, -0.03, run.BestFitness, 1e-9)
		assert.Equal(t, 40*10, run.Evaluations)

		history, err := client.FitnessHistory(ctx, run.RunID)
		require.NoError(t, err)
		assert.Len(t, history, 10)

		diagnostics, err := client.Diagnostics(ctx, run.RunID)
		require.NoError(t, err)
		assert.Len(t, diagnostics, 10)
	}
}

func TestGenerateRequestDefaults(t *testing.T) {
	var req GenerateRequest
	req.applyDefaults()
	assert.Equal(t, StrategyCentroid, req.InitialStrategy)
	assert.Equal(t, 500, req.PopulationSize)
	assert.Equal(t, 25, req.Epochs)
	assert.InDelta(t, 0.2, req.ViolationRadius, 1e-12)

	disabled := GenerateRequest{ViolationRadius: -1}
	disabled.applyDefaults()
	assert.Zero(t, disabled.ViolationRadius, "negative radius disables the penalty")

	custom := GenerateRequest{ViolationRadius: 0.5}
	custom.applyDefaults()
	assert.InDelta(t, 0.5, custom.ViolationRadius, 1e-12)
}

func TestGeneratePrototypesNegativeRadiusDisablesPenalty(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	// Every member embedding sits at least 0.5 from this centroid, outside
	// any enabled radius.
	concept := conceptFixture(0)
	concept.Centroid = []float64{4.5, 1}

	updated, err := client.GeneratePrototypes(ctx, []model.Concept{concept}, GenerateRequest{
		Embedder:        sizeEmbedder{},
		Metric:          fitness.Euclidean,
		ViolationRadius: -1,
		PopulationSize:  20,
		Epochs:          3,
		EliteCount:      2,
		Seed:            9,
	})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	require.Len(t, updated[0].Prototypes, 1)

	runs, err := client.Runs(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	// Every candidate drifts beyond any enabled radius, so a fitness above
	// the penalty floor proves the penalty never applied.
	assert.Greater(t, runs[0].BestFitness, -fitness.ViolationPenalty)
	assert.Less(t, runs[0].BestFitness, 0.0)
}

func TestGeneratePrototypesStructuralFallback(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	updated, err := client.GeneratePrototypes(ctx, []model.Concept{conceptFixture(0)}, GenerateRequest{
		InitialStrategy: StrategyRandom,
		PopulationSize:  30,
		Epochs:          5,
		EliteCount:      3,
		Seed:            4,
	})
	require.NoError(t, err)
	require.Len(t, updated, 1)
	require.Len(t, updated[0].Prototypes, 1)
	assert.Nil(t, updated[0].Prototypes[0].Embedding, "no embedder, no embedding")
	assert.Positive(t, updated[0].Prototypes[0].Element.Graph.NodeCount())
}

func TestGeneratePrototypesValidation(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	_, err := client.GeneratePrototypes(ctx, nil, GenerateRequest{})
	assert.Error(t, err, "empty concept list")

	_, err = client.GeneratePrototypes(ctx, []model.Concept{{Index: 0}}, GenerateRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no members")

	noCentroid := conceptFixture(0)
	noCentroid.Centroid = nil
	_, err = client.GeneratePrototypes(ctx, []model.Concept{noCentroid}, GenerateRequest{
		Embedder:        sizeEmbedder{},
		InitialStrategy: StrategyRandom,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "centroid")

	_, err = client.GeneratePrototypes(ctx, []model.Concept{conceptFixture(0)}, GenerateRequest{
		InitialStrategy: InitialStrategy("greedy"),
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported initial strategy")
}

type fakeProvider struct {
	failIndex int
}

func (p fakeProvider) Hypothesize(_ context.Context, concept model.Concept, task TaskInfo) (string, error) {
	if concept.Index == p.failIndex {
		return "", fmt.Errorf("provider unavailable")
	}
	return fmt.Sprintf("%s motif %d", task.Name, concept.Index), nil
}

func TestAttachHypotheses(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	withPrototype := conceptFixture(0)
	withPrototype.Prototypes = []model.Prototype{{Element: chainElement(3)}}
	failing := conceptFixture(1)
	failing.Prototypes = []model.Prototype{{Element: chainElement(4)}}
	bare := conceptFixture(2)

	updated, err := client.AttachHypotheses(ctx,
		[]model.Concept{withPrototype, failing, bare},
		fakeProvider{failIndex: 1},
		TaskInfo{Name: "solubility"},
	)
	require.NoError(t, err)
	require.Len(t, updated, 3)

	assert.Equal(t, "solubility motif 0", updated[0].Hypothesis)
	assert.Empty(t, updated[1].Hypothesis, "provider failures skip the concept")
	assert.Empty(t, updated[2].Hypothesis, "no prototype, no hypothesis")

	stored, err := client.Concepts(ctx)
	require.NoError(t, err)
	require.Len(t, stored, 1, "only hypothesized concepts are persisted")
	assert.Equal(t, "solubility motif 0", stored[0].Hypothesis)
}

func TestImportExportAndReport(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	dir := filepath.Join(t.TempDir(), "concepts")
	require.NoError(t, client.ExportConcepts([]model.Concept{conceptFixture(0), conceptFixture(1)}, dir))

	imported, err := client.ImportConcepts(ctx, dir, true)
	require.NoError(t, err)
	require.Len(t, imported, 2)

	stored, err := client.Concepts(ctx)
	require.NoError(t, err)
	assert.Len(t, stored, 2)

	reportsDir, err := client.WriteReport(imported, report.Options{Metric: fitness.Euclidean})
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(reportsDir, "report.html"))
	assert.FileExists(t, filepath.Join(reportsDir, "report.json"))
}

func TestQueriesNotFound(t *testing.T) {
	ctx := context.Background()
	client := newTestClient(t)

	_, err := client.FitnessHistory(ctx, "missing")
	assert.Error(t, err)

	_, err = client.Diagnostics(ctx, "missing")
	assert.Error(t, err)
}
