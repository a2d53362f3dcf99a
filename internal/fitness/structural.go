package fitness

import (
	"context"
	"fmt"

	"archetypon/internal/evo"
	"archetypon/internal/model"
)

// StructuralConfig parameterizes the subgraph-containment fitness.
type StructuralConfig struct {
	// Anchors are exemplar member graphs of the concept cluster. A good
	// prototype embeds into as many of them as possible.
	Anchors []model.Graph
	// NodeCost is subtracted per node so the smallest contained graph wins.
	NodeCost float64
}

// SubgraphContainment scores each candidate by the fraction of anchor graphs
// that contain it as a label-preserving subgraph, minus a per-node cost.
func SubgraphContainment(cfg StructuralConfig) (evo.FitnessFunc, error) {
	if len(cfg.Anchors) == 0 {
		return nil, fmt.Errorf("at least one anchor graph is required")
	}
	if cfg.NodeCost < 0 {
		return nil, fmt.Errorf("node cost must be >= 0")
	}

	return func(ctx context.Context, batch []model.Element) ([]float64, error) {
		if len(batch) == 0 {
			return nil, fmt.Errorf("empty candidate batch")
		}
		out := make([]float64, len(batch))
		for i, element := range batch {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
			contained := 0
			for _, anchor := range cfg.Anchors {
				if Contains(anchor, element.Graph) {
					contained++
				}
			}
			score := float64(contained) / float64(len(cfg.Anchors))
			score -= cfg.NodeCost * float64(element.Graph.NodeCount())
			out[i] = score
		}
		return out, nil
	}, nil
}

// Contains reports whether pattern embeds into host as a label-preserving
// subgraph: an injective node mapping with matching labels under which every
// pattern edge maps to a host edge. Backtracking search; candidates in this
// pipeline are small deletion products of real dataset graphs.
func Contains(host, pattern model.Graph) bool {
	if pattern.NodeCount() == 0 {
		return true
	}
	if pattern.NodeCount() > host.NodeCount() || pattern.EdgeCount() > host.EdgeCount() {
		return false
	}

	mapping := make([]int, pattern.NodeCount())
	for i := range mapping {
		mapping[i] = -1
	}
	used := make([]bool, host.NodeCount())
	return assign(host, pattern, 0, mapping, used)
}

func assign(host, pattern model.Graph, index int, mapping []int, used []bool) bool {
	if index == pattern.NodeCount() {
		return true
	}
	for candidate := 0; candidate < host.NodeCount(); candidate++ {
		if used[candidate] {
			continue
		}
		if host.Nodes[candidate].Label != pattern.Nodes[index].Label {
			continue
		}
		if host.Degree(candidate) < pattern.Degree(index) {
			continue
		}
		if !edgesConsistent(host, pattern, index, candidate, mapping) {
			continue
		}
		mapping[index] = candidate
		used[candidate] = true
		if assign(host, pattern, index+1, mapping, used) {
			return true
		}
		mapping[index] = -1
		used[candidate] = false
	}
	return false
}

// edgesConsistent checks that every pattern edge between the node being
// placed and an already-mapped node exists in the host.
func edgesConsistent(host, pattern model.Graph, index, candidate int, mapping []int) bool {
	for _, edge := range pattern.Edges {
		var other int
		switch {
		case edge.From == index:
			other = edge.To
		case edge.To == index:
			other = edge.From
		default:
			continue
		}
		if other >= len(mapping) || mapping[other] == -1 {
			continue
		}
		if !host.HasEdge(candidate, mapping[other]) {
			return false
		}
	}
	return true
}
