package archetypon

import (
	"context"
	"fmt"

	"archetypon/internal/concepts"
	"archetypon/internal/fitness"
	"archetypon/internal/model"
	"archetypon/internal/report"
)

// Concepts returns every stored concept ordered by index.
func (c *Client) Concepts(ctx context.Context) ([]model.Concept, error) {
	return c.store.ListConcepts(ctx)
}

// Runs returns every stored run record ordered by creation time.
func (c *Client) Runs(ctx context.Context) ([]model.RunRecord, error) {
	return c.store.ListRunRecords(ctx)
}

// FitnessHistory returns the best-by-epoch series of one run.
func (c *Client) FitnessHistory(ctx context.Context, runID string) ([]float64, error) {
	history, ok, err := c.store.GetFitnessHistory(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("fitness history not found for run: %s", runID)
	}
	return history, nil
}

// Diagnostics returns the per-epoch diagnostics of one run.
func (c *Client) Diagnostics(ctx context.Context, runID string) ([]model.EpochDiagnostics, error) {
	diagnostics, ok, err := c.store.GetDiagnostics(ctx, runID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("diagnostics not found for run: %s", runID)
	}
	return diagnostics, nil
}

// ImportConcepts loads a concept directory, optionally reorders it by
// centroid similarity, and persists every concept to the store.
func (c *Client) ImportConcepts(ctx context.Context, dir string, sortSimilarity bool) ([]model.Concept, error) {
	conceptList, err := concepts.Reader{Path: dir}.Read()
	if err != nil {
		return nil, fmt.Errorf("read concept directory: %w", err)
	}
	if sortSimilarity {
		conceptList, err = concepts.SortBySimilarity(conceptList, fitness.Manhattan)
		if err != nil {
			return nil, fmt.Errorf("sort concepts: %w", err)
		}
	}
	for _, concept := range conceptList {
		if err := c.store.SaveConcept(ctx, concept); err != nil {
			return nil, err
		}
	}
	c.logger.Info().Int("concepts", len(conceptList)).Str("dir", dir).Msg("concepts imported")
	return conceptList, nil
}

// ExportConcepts writes the given concepts as a directory tree.
func (c *Client) ExportConcepts(conceptList []model.Concept, dir string) error {
	return concepts.Writer{Path: dir}.Write(conceptList)
}

// WriteReport builds the cluster report for the given concepts and writes
// HTML + JSON artifacts into the configured reports directory.
func (c *Client) WriteReport(conceptList []model.Concept, opts report.Options) (string, error) {
	built, err := report.Build(conceptList, opts)
	if err != nil {
		return "", err
	}
	if err := report.WriteArtifacts(c.reportsDir, built); err != nil {
		return "", err
	}
	c.logger.Info().Str("dir", c.reportsDir).Int("clusters", built.NumClusters).Msg("report written")
	return c.reportsDir, nil
}
