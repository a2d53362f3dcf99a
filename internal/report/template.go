package report

import (
	"embed"
	"fmt"
	"html/template"
	"io"

	"github.com/dustin/go-humanize"
)

//go:embed template.html
var templateFS embed.FS

var reportTemplate = template.Must(
	template.New("template.html").Funcs(template.FuncMap{
		"comma": func(n int) string { return humanize.Comma(int64(n)) },
		"f3":    func(v float64) string { return fmt.Sprintf("%.3f", v) },
	}).ParseFS(templateFS, "template.html"),
)

// RenderHTML writes the report as a standalone HTML document.
func RenderHTML(w io.Writer, report Report) error {
	if err := reportTemplate.Execute(w, report); err != nil {
		return fmt.Errorf("render report: %w", err)
	}
	return nil
}
