// Package mutate provides deletion-based graph mutations for the prototype
// search. The goal of the search is a minimal graph that still carries the
// concept pattern, so the core mutations shrink candidates; attribute
// perturbation exists for continuous-attribute datasets.
package mutate

import (
	"errors"
	"fmt"
	"math/rand"

	"archetypon/internal/evo"
	"archetypon/internal/model"
)

var (
	ErrNoNodes = errors.New("graph has no removable node")
	ErrNoEdges = errors.New("graph has no edges")
)

// RemoveRandomNode deletes one random node together with its incident edges
// and reindexes the remaining edges. Single-node graphs are left alone.
func RemoveRandomNode(rng *rand.Rand, element model.Element) (model.Element, error) {
	graph := element.Graph
	if graph.NodeCount() <= 1 {
		return model.Element{}, ErrNoNodes
	}
	victim := rng.Intn(graph.NodeCount())

	mutated := model.Graph{
		Nodes: make([]model.Node, 0, graph.NodeCount()-1),
		Edges: make([]model.Edge, 0, graph.EdgeCount()),
	}
	for i, node := range graph.Nodes {
		if i == victim {
			continue
		}
		mutated.Nodes = append(mutated.Nodes, node)
	}
	for _, edge := range graph.Edges {
		if edge.From == victim || edge.To == victim {
			continue
		}
		reindexed := edge
		if reindexed.From > victim {
			reindexed.From--
		}
		if reindexed.To > victim {
			reindexed.To--
		}
		mutated.Edges = append(mutated.Edges, reindexed)
	}
	return model.Element{Value: element.Value, Graph: mutated}, nil
}

// RemoveRandomEdge deletes one random edge, keeping all nodes.
func RemoveRandomEdge(rng *rand.Rand, element model.Element) (model.Element, error) {
	graph := element.Graph
	if graph.EdgeCount() == 0 {
		return model.Element{}, ErrNoEdges
	}
	victim := rng.Intn(graph.EdgeCount())

	mutated := graph.Clone()
	mutated.Edges = append(mutated.Edges[:victim], mutated.Edges[victim+1:]...)
	return model.Element{Value: element.Value, Graph: mutated}, nil
}

// PerturbNodeAttributes returns a mutation that adds uniform noise in
// [-scale, scale] to every attribute of one random node.
func PerturbNodeAttributes(scale float64) evo.MutationFunc {
	return func(rng *rand.Rand, element model.Element) (model.Element, error) {
		graph := element.Graph
		if graph.NodeCount() == 0 {
			return model.Element{}, ErrNoNodes
		}
		target := rng.Intn(graph.NodeCount())
		if len(graph.Nodes[target].Attributes) == 0 {
			return model.Element{}, fmt.Errorf("node %d has no attributes", target)
		}

		mutated := graph.Clone()
		attrs := mutated.Nodes[target].Attributes
		for i := range attrs {
			attrs[i] += (rng.Float64()*2 - 1) * scale
		}
		return model.Element{Value: element.Value, Graph: mutated}, nil
	}
}

// Weighted pairs a mutation with a selection weight.
type Weighted struct {
	Mutation evo.MutationFunc
	Weight   float64
}

// Choose builds a single mutation that picks among the weighted candidates on
// every application.
func Choose(items []Weighted) (evo.MutationFunc, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("at least one weighted mutation is required")
	}
	total := 0.0
	for i, item := range items {
		if item.Mutation == nil {
			return nil, fmt.Errorf("mutation is nil at index %d", i)
		}
		if item.Weight < 0 {
			return nil, fmt.Errorf("weight must be >= 0 at index %d", i)
		}
		total += item.Weight
	}
	if total <= 0 {
		return nil, fmt.Errorf("at least one positive weight is required")
	}

	return func(rng *rand.Rand, element model.Element) (model.Element, error) {
		pick := rng.Float64() * total
		acc := 0.0
		for _, item := range items {
			acc += item.Weight
			if pick <= acc {
				return item.Mutation(rng, element)
			}
		}
		return items[len(items)-1].Mutation(rng, element)
	}, nil
}

// Defaults is the deletion-biased mutation set used by the prototype
// pipeline when the caller supplies none.
func Defaults() []evo.MutationFunc {
	return []evo.MutationFunc{RemoveRandomNode, RemoveRandomEdge}
}
