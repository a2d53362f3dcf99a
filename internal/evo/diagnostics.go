package evo

import (
	"gonum.org/v1/gonum/stat"

	"archetypon/internal/model"
)

func summarizeEpoch(ranked []ScoredElement, epoch int) model.EpochDiagnostics {
	if len(ranked) == 0 {
		return model.EpochDiagnostics{Epoch: epoch}
	}

	values := make([]float64, len(ranked))
	minFitness := ranked[0].Fitness
	for i, item := range ranked {
		values[i] = item.Fitness
		if item.Fitness < minFitness {
			minFitness = item.Fitness
		}
	}

	std := 0.0
	if len(values) > 1 {
		std = stat.StdDev(values, nil)
	}
	return model.EpochDiagnostics{
		Epoch:       epoch,
		BestFitness: ranked[0].Fitness,
		MeanFitness: stat.Mean(values, nil),
		MinFitness:  minFitness,
		StdFitness:  std,
	}
}
