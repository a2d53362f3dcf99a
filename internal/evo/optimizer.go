package evo

import (
	"context"
	"fmt"
	"math"
	"math/rand"
	"sort"

	"github.com/rs/zerolog"

	"archetypon/internal/model"
)

// FitnessFunc scores a batch of candidates. Higher is better. The returned
// slice must align 1:1 with the input batch.
type FitnessFunc func(ctx context.Context, batch []model.Element) ([]float64, error)

// MutationFunc perturbs a single candidate and returns the mutated copy.
type MutationFunc func(rng *rand.Rand, element model.Element) (model.Element, error)

// SampleFunc produces a fresh candidate for the initial population and for
// refreshment during the run.
type SampleFunc func(rng *rand.Rand) model.Element

// ScoredElement pairs a candidate with its evaluated fitness.
type ScoredElement struct {
	Element model.Element
	Fitness float64
}

// Config parameterizes the generational genetic search.
type Config struct {
	Fitness   FitnessFunc
	Mutations []MutationFunc
	Sample    SampleFunc
	Selector  Selector

	PopulationSize  int
	Epochs          int
	EliteCount      int
	RefreshFraction float64
	Seed            int64

	Logger zerolog.Logger
}

// RunResult carries the global best candidate and run metadata.
type RunResult struct {
	Best            model.Element
	BestFitness     float64
	BestByEpoch     []float64
	Diagnostics     []model.EpochDiagnostics
	FinalPopulation []ScoredElement
	Evaluations     int
}

// Optimizer runs the select → mutate → evaluate → elitism/refresh loop.
type Optimizer struct {
	cfg Config
	rng *rand.Rand
}

func New(cfg Config) (*Optimizer, error) {
	if cfg.Fitness == nil {
		return nil, fmt.Errorf("fitness function is required")
	}
	if len(cfg.Mutations) == 0 {
		return nil, fmt.Errorf("at least one mutation function is required")
	}
	for i, mutation := range cfg.Mutations {
		if mutation == nil {
			return nil, fmt.Errorf("mutation function is nil at index %d", i)
		}
	}
	if cfg.Sample == nil {
		return nil, fmt.Errorf("sample function is required")
	}
	if cfg.PopulationSize <= 0 {
		return nil, fmt.Errorf("population size must be > 0")
	}
	if cfg.Epochs <= 0 {
		return nil, fmt.Errorf("epochs must be > 0")
	}
	if cfg.EliteCount <= 0 || cfg.EliteCount > cfg.PopulationSize {
		return nil, fmt.Errorf("elite count must be in [1, population size]")
	}
	if cfg.RefreshFraction < 0 || cfg.RefreshFraction >= 1 {
		return nil, fmt.Errorf("refresh fraction must be in [0, 1)")
	}
	if cfg.EliteCount+int(cfg.RefreshFraction*float64(cfg.PopulationSize)) > cfg.PopulationSize {
		return nil, fmt.Errorf("elite count plus refresh share exceeds population size")
	}
	if cfg.Selector == nil {
		cfg.Selector = TournamentSelector{}
	}

	return &Optimizer{
		cfg: cfg,
		rng: rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Run executes the configured number of epochs and returns the best candidate
// seen across the whole run, not just the final generation.
func (o *Optimizer) Run(ctx context.Context) (RunResult, error) {
	population := make([]model.Element, 0, o.cfg.PopulationSize)
	for i := 0; i < o.cfg.PopulationSize; i++ {
		population = append(population, o.cfg.Sample(o.rng))
	}

	result := RunResult{
		BestFitness: math.Inf(-1),
		BestByEpoch: make([]float64, 0, o.cfg.Epochs),
		Diagnostics: make([]model.EpochDiagnostics, 0, o.cfg.Epochs),
	}

	var scored []ScoredElement
	for epoch := 0; epoch < o.cfg.Epochs; epoch++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}

		var err error
		scored, err = o.evaluate(ctx, population)
		if err != nil {
			return RunResult{}, fmt.Errorf("epoch %d: %w", epoch, err)
		}
		result.Evaluations += len(scored)

		sort.SliceStable(scored, func(i, j int) bool {
			return scored[i].Fitness > scored[j].Fitness
		})

		if scored[0].Fitness > result.BestFitness {
			result.BestFitness = scored[0].Fitness
			result.Best = scored[0].Element.Clone()
		}
		result.BestByEpoch = append(result.BestByEpoch, scored[0].Fitness)

		diag := summarizeEpoch(scored, epoch)
		result.Diagnostics = append(result.Diagnostics, diag)
		o.cfg.Logger.Debug().
			Int("epoch", epoch).
			Float64("best", diag.BestFitness).
			Float64("mean", diag.MeanFitness).
			Int("nodes", scored[0].Element.Graph.NodeCount()).
			Msg("epoch evaluated")

		if epoch == o.cfg.Epochs-1 {
			break
		}
		population, err = o.nextGeneration(ctx, scored)
		if err != nil {
			return RunResult{}, err
		}
	}

	result.FinalPopulation = scored
	o.cfg.Logger.Info().
		Float64("best_fitness", result.BestFitness).
		Int("evaluations", result.Evaluations).
		Int("best_nodes", result.Best.Graph.NodeCount()).
		Msg("optimization finished")
	return result, nil
}

func (o *Optimizer) evaluate(ctx context.Context, population []model.Element) ([]ScoredElement, error) {
	fitness, err := o.cfg.Fitness(ctx, population)
	if err != nil {
		return nil, err
	}
	if len(fitness) != len(population) {
		return nil, fmt.Errorf("fitness batch mismatch: got=%d want=%d", len(fitness), len(population))
	}
	scored := make([]ScoredElement, len(population))
	for i := range population {
		if math.IsNaN(fitness[i]) {
			return nil, fmt.Errorf("fitness is NaN at index %d", i)
		}
		scored[i] = ScoredElement{Element: population[i], Fitness: fitness[i]}
	}
	return scored, nil
}

// nextGeneration keeps the top elites unmutated, draws a refreshment share of
// fresh samples, and fills the remainder with mutated offspring of
// tournament-selected parents.
func (o *Optimizer) nextGeneration(ctx context.Context, ranked []ScoredElement) ([]model.Element, error) {
	next := make([]model.Element, 0, o.cfg.PopulationSize)

	for i := 0; i < o.cfg.EliteCount; i++ {
		next = append(next, ranked[i].Element.Clone())
	}

	refreshCount := int(o.cfg.RefreshFraction * float64(o.cfg.PopulationSize))
	for i := 0; i < refreshCount; i++ {
		next = append(next, o.cfg.Sample(o.rng))
	}

	for len(next) < o.cfg.PopulationSize {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parent, err := o.cfg.Selector.PickParent(o.rng, ranked, o.cfg.EliteCount)
		if err != nil {
			return nil, err
		}
		mutation := o.cfg.Mutations[o.rng.Intn(len(o.cfg.Mutations))]
		child, err := mutation(o.rng, parent.Clone())
		if err != nil {
			// Mutation can be impossible for degenerate candidates, e.g.
			// removing a node from a single-node graph. Carry the parent.
			child = parent.Clone()
		}
		next = append(next, child)
	}
	return next, nil
}
