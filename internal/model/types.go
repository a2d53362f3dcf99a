package model

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Node is a single graph node with an optional categorical label and a
// numeric attribute vector as produced by the upstream dataset processing.
type Node struct {
	Label      string    `json:"label,omitempty"`
	Attributes []float64 `json:"attributes,omitempty"`
}

// Edge connects two nodes by index. Edges are treated as undirected.
type Edge struct {
	From       int       `json:"from"`
	To         int       `json:"to"`
	Attributes []float64 `json:"attributes,omitempty"`
}

// Graph is the candidate representation that the genetic search operates on.
type Graph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

func (g Graph) NodeCount() int { return len(g.Nodes) }

func (g Graph) EdgeCount() int { return len(g.Edges) }

// Clone returns a deep copy so mutations never alias the parent graph.
func (g Graph) Clone() Graph {
	cloned := Graph{
		Nodes: make([]Node, len(g.Nodes)),
		Edges: make([]Edge, len(g.Edges)),
	}
	for i, node := range g.Nodes {
		cloned.Nodes[i] = Node{
			Label:      node.Label,
			Attributes: append([]float64(nil), node.Attributes...),
		}
	}
	for i, edge := range g.Edges {
		cloned.Edges[i] = Edge{
			From:       edge.From,
			To:         edge.To,
			Attributes: append([]float64(nil), edge.Attributes...),
		}
	}
	return cloned
}

// Degree counts edges incident to the node at the given index.
func (g Graph) Degree(index int) int {
	count := 0
	for _, edge := range g.Edges {
		if edge.From == index || edge.To == index {
			count++
		}
	}
	return count
}

// HasEdge reports whether an undirected edge exists between a and b.
func (g Graph) HasEdge(a, b int) bool {
	for _, edge := range g.Edges {
		if (edge.From == a && edge.To == b) || (edge.From == b && edge.To == a) {
			return true
		}
	}
	return false
}

// Neighbors returns the node indices adjacent to the node at the given index.
func (g Graph) Neighbors(index int) []int {
	var out []int
	for _, edge := range g.Edges {
		if edge.From == index {
			out = append(out, edge.To)
		} else if edge.To == index {
			out = append(out, edge.From)
		}
	}
	return out
}

// Element is one candidate of the genetic search: an opaque domain string
// representation (e.g. SMILES, color-graph notation) plus its graph. The
// module never interprets Value; re-deriving it after structural mutations is
// the responsibility of the upstream processing integration.
type Element struct {
	Value string `json:"value"`
	Graph Graph  `json:"graph"`
}

// Clone returns a deep copy of the element.
func (e Element) Clone() Element {
	return Element{Value: e.Value, Graph: e.Graph.Clone()}
}

// Member references one cluster member together with its visualization.
type Member struct {
	Index     int     `json:"index"`
	ImagePath string  `json:"image_path,omitempty"`
	Element   Element `json:"element"`
}

// Prototype is an optimized representative graph for a concept.
type Prototype struct {
	Element   Element   `json:"element"`
	Embedding []float64 `json:"embedding,omitempty"`
	ImagePath string    `json:"image_path,omitempty"`
}

// Concept is one explanation cluster extracted from the model latent space.
// Members, embeddings and centroid arrive pre-computed from the external
// clustering step; prototypes and the hypothesis are filled in by this
// module's pipeline.
type Concept struct {
	VersionedRecord
	Index        int         `json:"index"`
	ChannelIndex int         `json:"channel_index"`
	ChannelName  string      `json:"channel_name,omitempty"`
	ChannelColor string      `json:"channel_color,omitempty"`
	Members      []Member    `json:"members"`
	Embeddings   [][]float64 `json:"embeddings,omitempty"`
	Centroid     []float64   `json:"centroid"`
	Contribution float64     `json:"contribution"`
	Prototypes   []Prototype `json:"prototypes,omitempty"`
	Hypothesis   string      `json:"hypothesis,omitempty"`
}

// EpochDiagnostics summarizes fitness across one optimizer epoch.
type EpochDiagnostics struct {
	Epoch       int     `json:"epoch"`
	BestFitness float64 `json:"best_fitness"`
	MeanFitness float64 `json:"mean_fitness"`
	MinFitness  float64 `json:"min_fitness"`
	StdFitness  float64 `json:"std_fitness"`
}

// RunRecord is the persisted metadata of one prototype optimization run.
type RunRecord struct {
	VersionedRecord
	RunID          string  `json:"run_id"`
	ConceptIndex   int     `json:"concept_index"`
	CreatedAtUTC   string  `json:"created_at_utc"`
	PopulationSize int     `json:"population_size"`
	Epochs         int     `json:"epochs"`
	Seed           int64   `json:"seed"`
	Evaluations    int     `json:"evaluations"`
	BestFitness    float64 `json:"best_fitness"`
	DurationMS     int64   `json:"duration_ms"`
}
