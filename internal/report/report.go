// Package report builds per-cluster report data from a concept set and
// renders it as an HTML document plus JSON artifacts. Converting the HTML to
// PDF is left to external tooling.
package report

import (
	"fmt"
	"time"

	"gonum.org/v1/gonum/stat"

	"archetypon/internal/fitness"
	"archetypon/internal/model"
)

// DistanceStats summarizes member distances to the cluster centroid.
type DistanceStats struct {
	Mean float64 `json:"mean"`
	Std  float64 `json:"std"`
	Min  float64 `json:"min"`
	Max  float64 `json:"max"`
}

// Example references one member visualization shown in the report.
type Example struct {
	Index     int    `json:"index"`
	ImagePath string `json:"image_path"`
}

// PrototypeSection is the optional optimized prototype of one cluster.
type PrototypeSection struct {
	Value     string `json:"value"`
	NodeCount int    `json:"node_count"`
	EdgeCount int    `json:"edge_count"`
	ImagePath string `json:"image_path,omitempty"`
}

// ClusterSection is one rendered cluster of the report.
type ClusterSection struct {
	Index            int                `json:"index"`
	ChannelIndex     int                `json:"channel_index"`
	ChannelName      string             `json:"channel_name"`
	ChannelColor     string             `json:"channel_color"`
	Size             int                `json:"size"`
	Contribution     float64            `json:"contribution"`
	CentroidDistance DistanceStats      `json:"centroid_distance"`
	Examples         []Example          `json:"examples"`
	Prototypes       []PrototypeSection `json:"prototypes,omitempty"`
	Hypothesis       string             `json:"hypothesis,omitempty"`
}

// Report is the complete document model.
type Report struct {
	Title        string           `json:"title"`
	GeneratedAt  string           `json:"generated_at_utc"`
	NumClusters  int              `json:"num_clusters"`
	TotalMembers int              `json:"total_members"`
	Clusters     []ClusterSection `json:"clusters"`
}

// Options configures report building.
type Options struct {
	Title string
	// MaxExamples caps the member visualizations per cluster. Zero means 8.
	MaxExamples int
	Metric      fitness.Metric
}

// Build assembles the report data for a concept set.
func Build(conceptList []model.Concept, opts Options) (Report, error) {
	title := opts.Title
	if title == "" {
		title = "Concept Cluster Report"
	}
	maxExamples := opts.MaxExamples
	if maxExamples <= 0 {
		maxExamples = 8
	}

	report := Report{
		Title:       title,
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		NumClusters: len(conceptList),
		Clusters:    make([]ClusterSection, 0, len(conceptList)),
	}

	for _, concept := range conceptList {
		section := ClusterSection{
			Index:        concept.Index,
			ChannelIndex: concept.ChannelIndex,
			ChannelName:  concept.ChannelName,
			ChannelColor: concept.ChannelColor,
			Size:         len(concept.Members),
			Contribution: concept.Contribution,
			Hypothesis:   concept.Hypothesis,
		}
		if section.ChannelColor == "" {
			section.ChannelColor = "#666666"
		}

		stats, err := centroidDistanceStats(concept, opts.Metric)
		if err != nil {
			return Report{}, fmt.Errorf("cluster %d: %w", concept.Index, err)
		}
		section.CentroidDistance = stats

		for _, member := range concept.Members {
			if len(section.Examples) >= maxExamples {
				break
			}
			if member.ImagePath == "" {
				continue
			}
			section.Examples = append(section.Examples, Example{
				Index:     member.Index,
				ImagePath: member.ImagePath,
			})
		}

		for _, prototype := range concept.Prototypes {
			section.Prototypes = append(section.Prototypes, PrototypeSection{
				Value:     prototype.Element.Value,
				NodeCount: prototype.Element.Graph.NodeCount(),
				EdgeCount: prototype.Element.Graph.EdgeCount(),
				ImagePath: prototype.ImagePath,
			})
		}

		report.TotalMembers += section.Size
		report.Clusters = append(report.Clusters, section)
	}
	return report, nil
}

func centroidDistanceStats(concept model.Concept, metric fitness.Metric) (DistanceStats, error) {
	if len(concept.Embeddings) == 0 || len(concept.Centroid) == 0 {
		return DistanceStats{}, nil
	}

	distances := make([]float64, 0, len(concept.Embeddings))
	for i, embedding := range concept.Embeddings {
		distance, err := fitness.Distance(metric, embedding, concept.Centroid)
		if err != nil {
			return DistanceStats{}, fmt.Errorf("member %d: %w", i, err)
		}
		distances = append(distances, distance)
	}

	out := DistanceStats{
		Mean: stat.Mean(distances, nil),
		Min:  distances[0],
		Max:  distances[0],
	}
	if len(distances) > 1 {
		out.Std = stat.StdDev(distances, nil)
	}
	for _, distance := range distances[1:] {
		if distance < out.Min {
			out.Min = distance
		}
		if distance > out.Max {
			out.Max = distance
		}
	}
	return out, nil
}
