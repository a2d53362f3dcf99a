package report

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"archetypon/internal/fitness"
	"archetypon/internal/model"
)

func reportFixture() []model.Concept {
	return []model.Concept{
		{
			Index:        0,
			ChannelIndex: 0,
			ChannelName:  "positive",
			ChannelColor: "#1f77b4",
			Contribution: 0.8,
			Centroid:     []float64{0, 0},
			Embeddings:   [][]float64{{3, 0}, {0, 4}},
			Members: []model.Member{
				{Index: 10, ImagePath: "m10.png"},
				{Index: 11},
				{Index: 12, ImagePath: "m12.png"},
			},
			Prototypes: []model.Prototype{
				{
					Element: model.Element{
						Value: "RG",
						Graph: model.Graph{
							Nodes: []model.Node{{Label: "R"}, {Label: "G"}},
							Edges: []model.Edge{{From: 0, To: 1}},
						},
					},
					ImagePath: "proto.png",
				},
			},
			Hypothesis: "two-ring motif",
		},
		{
			Index:        1,
			ChannelIndex: 1,
			ChannelName:  "negative",
			Members:      []model.Member{{Index: 20, ImagePath: "m20.png"}},
		},
	}
}

func TestBuildAssemblesClusterSections(t *testing.T) {
	built, err := Build(reportFixture(), Options{
		Title:  "Test Report",
		Metric: fitness.Euclidean,
	})
	require.NoError(t, err)

	assert.Equal(t, "Test Report", built.Title)
	assert.Equal(t, 2, built.NumClusters)
	assert.Equal(t, 4, built.TotalMembers)
	require.Len(t, built.Clusters, 2)

	first := built.Clusters[0]
	assert.Equal(t, 3, first.Size)
	assert.Equal(t, "#1f77b4", first.ChannelColor)
	assert.InDelta(t, 3.5, first.CentroidDistance.Mean, 1e-12)
	assert.InDelta(t, 3.0, first.CentroidDistance.Min, 1e-12)
	assert.InDelta(t, 4.0, first.CentroidDistance.Max, 1e-12)
	assert.Positive(t, first.CentroidDistance.Std)

	require.Len(t, first.Examples, 2, "members without images are skipped")
	assert.Equal(t, 10, first.Examples[0].Index)
	assert.Equal(t, 12, first.Examples[1].Index)

	require.Len(t, first.Prototypes, 1)
	assert.Equal(t, 2, first.Prototypes[0].NodeCount)
	assert.Equal(t, 1, first.Prototypes[0].EdgeCount)

	second := built.Clusters[1]
	assert.Equal(t, "#666666", second.ChannelColor, "missing colors get a default")
	assert.Zero(t, second.CentroidDistance, "no embeddings means no stats")
}

func TestBuildDefaultsAndExampleCap(t *testing.T) {
	conceptList := reportFixture()
	built, err := Build(conceptList, Options{MaxExamples: 1})
	require.NoError(t, err)

	assert.Equal(t, "Concept Cluster Report", built.Title)
	assert.Len(t, built.Clusters[0].Examples, 1)
	assert.NotEmpty(t, built.GeneratedAt)
}

func TestBuildPropagatesDistanceErrors(t *testing.T) {
	conceptList := reportFixture()
	conceptList[0].Embeddings = [][]float64{{1}}

	_, err := Build(conceptList, Options{Metric: fitness.Euclidean})
	assert.Error(t, err)
}

func TestRenderHTML(t *testing.T) {
	built, err := Build(reportFixture(), Options{Title: "Render Test", Metric: fitness.Euclidean})
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, RenderHTML(&buf, built))

	html := buf.String()
	assert.Contains(t, html, "<!DOCTYPE html>")
	assert.Contains(t, html, "Render Test")
	assert.Contains(t, html, "positive")
	assert.Contains(t, html, "two-ring motif")
	assert.Contains(t, html, "m10.png")
	assert.Contains(t, html, "#1f77b4")
}

func TestWriteArtifacts(t *testing.T) {
	built, err := Build(reportFixture(), Options{Metric: fitness.Euclidean})
	require.NoError(t, err)

	dir := filepath.Join(t.TempDir(), "out")
	require.NoError(t, WriteArtifacts(dir, built))

	assert.FileExists(t, filepath.Join(dir, "report.html"))
	assert.FileExists(t, filepath.Join(dir, "cluster_0.json"))
	assert.FileExists(t, filepath.Join(dir, "cluster_1.json"))

	payload, err := os.ReadFile(filepath.Join(dir, "report.json"))
	require.NoError(t, err)
	var decoded Report
	require.NoError(t, json.Unmarshal(payload, &decoded))
	assert.Equal(t, built.NumClusters, decoded.NumClusters)
	assert.Equal(t, built.TotalMembers, decoded.TotalMembers)

	assert.Error(t, WriteArtifacts("", built))
}
