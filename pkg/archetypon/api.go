// Package archetypon is the public facade over the concept store, the
// genetic prototype search and the report generator.
package archetypon

import (
	"context"
	"fmt"
	"math/rand"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/sourcegraph/conc/pool"

	"archetypon/internal/concepts"
	"archetypon/internal/evo"
	"archetypon/internal/fitness"
	"archetypon/internal/model"
	"archetypon/internal/mutate"
)

const defaultDBPath = "archetypon.db"

// Options configures a Client.
type Options struct {
	StoreKind  string
	DBPath     string
	ReportsDir string
	Logger     zerolog.Logger
}

// Client ties the store, the optimizer pipeline and report rendering
// together.
type Client struct {
	store      concepts.Store
	logger     zerolog.Logger
	reportsDir string
}

func New(ctx context.Context, opts Options) (*Client, error) {
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	store, err := concepts.NewStore(opts.StoreKind, dbPath)
	if err != nil {
		return nil, err
	}
	if err := store.Init(ctx); err != nil {
		return nil, fmt.Errorf("init store: %w", err)
	}

	reportsDir := opts.ReportsDir
	if reportsDir == "" {
		reportsDir = "reports"
	}

	return &Client{
		store:      store,
		logger:     opts.Logger,
		reportsDir: reportsDir,
	}, nil
}

func (c *Client) Close() error {
	return concepts.CloseIfSupported(c.store)
}

// InitialStrategy selects how the sample pool is seeded from a cluster.
type InitialStrategy string

const (
	// StrategyRandom draws initial candidates uniformly from the members.
	StrategyRandom InitialStrategy = "random"
	// StrategyCentroid draws the members closest to the cluster centroid.
	StrategyCentroid InitialStrategy = "centroid"
)

// GenerateRequest parameterizes prototype generation for a concept set.
type GenerateRequest struct {
	// Embedder maps candidate graphs into the model latent space. When nil,
	// the pipeline falls back to structural subgraph-containment fitness
	// against the sample pool.
	Embedder fitness.Embedder
	// Mutations used by the optimizer; mutate.Defaults() when empty.
	Mutations []evo.MutationFunc

	InitialStrategy       InitialStrategy
	InitialPopulationSize int
	// ViolationRadius bounds latent drift from the centroid. Zero means the
	// 0.2 default; a negative value disables the penalty.
	ViolationRadius float64
	Metric          fitness.Metric
	NodeCost        float64

	PopulationSize  int
	Epochs          int
	EliteCount      int
	RefreshFraction float64
	TournamentSize  int
	Workers         int
	Seed            int64
}

func (r *GenerateRequest) applyDefaults() {
	if r.InitialStrategy == "" {
		r.InitialStrategy = StrategyCentroid
	}
	if r.InitialPopulationSize <= 0 {
		r.InitialPopulationSize = 10
	}
	if r.ViolationRadius == 0 {
		r.ViolationRadius = 0.2
	} else if r.ViolationRadius < 0 {
		r.ViolationRadius = 0
	}
	if r.NodeCost <= 0 {
		r.NodeCost = 0.01
	}
	if r.PopulationSize <= 0 {
		r.PopulationSize = 500
	}
	if r.Epochs <= 0 {
		r.Epochs = 25
	}
	if r.EliteCount <= 0 {
		r.EliteCount = 10
	}
	if r.RefreshFraction <= 0 {
		r.RefreshFraction = 0.1
	}
	if r.TournamentSize <= 0 {
		r.TournamentSize = 3
	}
	if r.Workers <= 0 {
		r.Workers = 1
	}
	if len(r.Mutations) == 0 {
		r.Mutations = mutate.Defaults()
	}
}

// GeneratePrototypes runs the genetic prototype search for every concept and
// returns the concepts with their prototypes appended. Concepts are
// processed concurrently with a bounded worker pool; run records, fitness
// histories and diagnostics are persisted to the store.
func (c *Client) GeneratePrototypes(ctx context.Context, conceptList []model.Concept, req GenerateRequest) ([]model.Concept, error) {
	if len(conceptList) == 0 {
		return nil, fmt.Errorf("at least one concept is required")
	}
	req.applyDefaults()

	out := make([]model.Concept, len(conceptList))
	copy(out, conceptList)

	workers := pool.New().WithMaxGoroutines(req.Workers).WithErrors().WithContext(ctx)
	for i := range out {
		i := i
		workers.Go(func(ctx context.Context) error {
			updated, err := c.generateForConcept(ctx, out[i], req)
			if err != nil {
				return fmt.Errorf("concept %d: %w", out[i].Index, err)
			}
			out[i] = updated
			return nil
		})
	}
	if err := workers.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) generateForConcept(ctx context.Context, concept model.Concept, req GenerateRequest) (model.Concept, error) {
	if len(concept.Members) == 0 {
		return model.Concept{}, fmt.Errorf("concept has no members")
	}

	logger := c.logger.With().Int("concept", concept.Index).Logger()

	seed := req.Seed + int64(concept.Index)
	rng := rand.New(rand.NewSource(seed))
	initial, err := initialPool(rng, concept, req)
	if err != nil {
		return model.Concept{}, err
	}
	logger.Info().
		Int("initial", len(initial)).
		Str("strategy", string(req.InitialStrategy)).
		Msg("seeded initial pool")

	fitnessFunc, err := c.buildFitness(concept, initial, req)
	if err != nil {
		return model.Concept{}, err
	}

	optimizer, err := evo.New(evo.Config{
		Fitness:   fitnessFunc,
		Mutations: req.Mutations,
		Sample: func(rng *rand.Rand) model.Element {
			return initial[rng.Intn(len(initial))].Clone()
		},
		Selector:        evo.TournamentSelector{TournamentSize: req.TournamentSize},
		PopulationSize:  req.PopulationSize,
		Epochs:          req.Epochs,
		EliteCount:      req.EliteCount,
		RefreshFraction: req.RefreshFraction,
		Seed:            seed,
		Logger:          logger,
	})
	if err != nil {
		return model.Concept{}, err
	}

	started := time.Now()
	result, err := optimizer.Run(ctx)
	if err != nil {
		return model.Concept{}, err
	}

	prototype := model.Prototype{Element: result.Best}
	if req.Embedder != nil {
		embeddings, err := req.Embedder.EmbedGraphs(ctx, []model.Graph{result.Best.Graph}, concept.ChannelIndex)
		if err != nil {
			return model.Concept{}, fmt.Errorf("embed prototype: %w", err)
		}
		if len(embeddings) == 1 {
			prototype.Embedding = embeddings[0]
		}
	}
	concept.Prototypes = append(concept.Prototypes, prototype)

	record := model.RunRecord{
		VersionedRecord: concepts.Stamp(),
		RunID:           uuid.NewString(),
		ConceptIndex:    concept.Index,
		CreatedAtUTC:    started.UTC().Format(time.RFC3339Nano),
		PopulationSize:  req.PopulationSize,
		Epochs:          req.Epochs,
		Seed:            seed,
		Evaluations:     result.Evaluations,
		BestFitness:     result.BestFitness,
		DurationMS:      time.Since(started).Milliseconds(),
	}
	if err := c.store.SaveRunRecord(ctx, record); err != nil {
		return model.Concept{}, fmt.Errorf("save run record: %w", err)
	}
	if err := c.store.SaveFitnessHistory(ctx, record.RunID, result.BestByEpoch); err != nil {
		return model.Concept{}, fmt.Errorf("save fitness history: %w", err)
	}
	if err := c.store.SaveDiagnostics(ctx, record.RunID, result.Diagnostics); err != nil {
		return model.Concept{}, fmt.Errorf("save diagnostics: %w", err)
	}
	if err := c.store.SaveConcept(ctx, concept); err != nil {
		return model.Concept{}, fmt.Errorf("save concept: %w", err)
	}

	logger.Info().
		Str("run_id", record.RunID).
		Float64("best_fitness", result.BestFitness).
		Int("prototype_nodes", result.Best.Graph.NodeCount()).
		Msg("prototype generated")
	return concept, nil
}

func (c *Client) buildFitness(concept model.Concept, initial []model.Element, req GenerateRequest) (evo.FitnessFunc, error) {
	if req.Embedder != nil {
		if len(concept.Centroid) == 0 {
			return nil, fmt.Errorf("concept has no centroid")
		}
		return fitness.EmbeddingDistance(fitness.EmbeddingConfig{
			Embedder:        req.Embedder,
			Channel:         concept.ChannelIndex,
			Anchors:         [][]float64{concept.Centroid},
			ViolationRadius: req.ViolationRadius,
			Metric:          req.Metric,
			NodeCost:        req.NodeCost,
		})
	}

	anchors := make([]model.Graph, len(initial))
	for i, element := range initial {
		anchors[i] = element.Graph
	}
	return fitness.SubgraphContainment(fitness.StructuralConfig{
		Anchors:  anchors,
		NodeCost: req.NodeCost,
	})
}

// initialPool selects the sample pool from the cluster members: uniformly
// for the random strategy, by centroid proximity for the centroid strategy.
// The pool is capped at the member count for small clusters.
func initialPool(rng *rand.Rand, concept model.Concept, req GenerateRequest) ([]model.Element, error) {
	size := req.InitialPopulationSize
	if size > len(concept.Members) {
		size = len(concept.Members)
	}

	switch req.InitialStrategy {
	case StrategyRandom:
		perm := rng.Perm(len(concept.Members))
		out := make([]model.Element, 0, size)
		for _, i := range perm[:size] {
			out = append(out, concept.Members[i].Element.Clone())
		}
		return out, nil

	case StrategyCentroid:
		if len(concept.Embeddings) != len(concept.Members) {
			return nil, fmt.Errorf("embeddings mismatch: got=%d members=%d", len(concept.Embeddings), len(concept.Members))
		}
		type scored struct {
			index    int
			distance float64
		}
		ranked := make([]scored, 0, len(concept.Members))
		for i, embedding := range concept.Embeddings {
			distance, err := fitness.Distance(fitness.Cosine, concept.Centroid, embedding)
			if err != nil {
				return nil, fmt.Errorf("member %d: %w", i, err)
			}
			ranked = append(ranked, scored{index: i, distance: distance})
		}
		sort.Slice(ranked, func(i, j int) bool { return ranked[i].distance < ranked[j].distance })
		out := make([]model.Element, 0, size)
		for _, item := range ranked[:size] {
			out = append(out, concept.Members[item.index].Element.Clone())
		}
		return out, nil

	default:
		return nil, fmt.Errorf("unsupported initial strategy: %s", req.InitialStrategy)
	}
}
