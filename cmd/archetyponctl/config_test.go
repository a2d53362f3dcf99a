package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeProfile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestLoadProfile(t *testing.T) {
	path := writeProfile(t, `
store:
  kind: sqlite
  path: concepts.db
optimize:
  initial_strategy: centroid
  initial_population_size: 10
  violation_radius: 0.2
  metric: cosine
  population_size: 500
  epochs: 25
  refresh_fraction: 0.1
  workers: 4
  seed: 42
  sort_similarity: true
report:
  title: Aggregates
  max_examples: 6
  metric: euclidean
`)

	profile, err := loadProfile(path)
	require.NoError(t, err)

	assert.Equal(t, "sqlite", profile.Store.Kind)
	assert.Equal(t, "concepts.db", profile.Store.Path)
	assert.Equal(t, "centroid", profile.Optimize.InitialStrategy)
	assert.Equal(t, 500, profile.Optimize.PopulationSize)
	assert.Equal(t, int64(42), profile.Optimize.Seed)
	assert.True(t, profile.Optimize.SortSimilarity)
	assert.Equal(t, "Aggregates", profile.Report.Title)
	assert.Equal(t, 6, profile.Report.MaxExamples)
}

func TestLoadProfileEmptyPath(t *testing.T) {
	profile, err := loadProfile("")
	require.NoError(t, err)
	assert.Equal(t, Profile{}, profile)
}

func TestLoadProfileRejectsInvalidValues(t *testing.T) {
	_, err := loadProfile(writeProfile(t, "optimize:\n  metric: chebyshev\n"))
	assert.Error(t, err)

	_, err = loadProfile(writeProfile(t, "store:\n  kind: postgres\n"))
	assert.Error(t, err)

	_, err = loadProfile(writeProfile(t, "optimize:\n  refresh_fraction: 1.0\n"))
	assert.Error(t, err)

	_, err = loadProfile(writeProfile(t, "not yaml: ["))
	assert.Error(t, err)

	_, err = loadProfile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
