package report

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

const (
	reportJSONFile = "report.json"
	reportHTMLFile = "report.html"
)

// WriteArtifacts writes the report as report.html, report.json and one JSON
// file per cluster into the given directory.
func WriteArtifacts(dir string, report Report) error {
	if dir == "" {
		return fmt.Errorf("artifact directory is required")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	if err := writeJSON(filepath.Join(dir, reportJSONFile), report); err != nil {
		return err
	}
	for _, cluster := range report.Clusters {
		name := fmt.Sprintf("cluster_%d.json", cluster.Index)
		if err := writeJSON(filepath.Join(dir, name), cluster); err != nil {
			return fmt.Errorf("write cluster %d: %w", cluster.Index, err)
		}
	}

	htmlFile, err := os.Create(filepath.Join(dir, reportHTMLFile))
	if err != nil {
		return err
	}
	defer htmlFile.Close()
	return RenderHTML(htmlFile, report)
}

func writeJSON(path string, value any) error {
	payload, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, payload, 0o644)
}
