package ui

import (
	"fmt"
	"strings"

	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"craftcheck/domain/classifier"
	"craftcheck/domain/crafting"
	"craftcheck/models"
)

// StatusReport renders the manager status and ledger summary as Markdown
func StatusReport(initialized bool, status map[crafting.Discipline]classifier.Status, summary []*models.DisciplineSummary) string {
	var b strings.Builder
	b.WriteString("# Classifier status\n\n")
	if !initialized {
		b.WriteString("**Manager not initialized.**\n\n")
	}

	b.WriteString("| Discipline | Enabled | Loaded | Healthy | Warmed | Threshold | Backend | Model | Last error |\n")
	b.WriteString("|---|---|---|---|---|---|---|---|---|\n")
	for _, d := range crafting.AllDisciplines() {
		s, ok := status[d]
		if !ok {
			continue
		}
		fmt.Fprintf(&b, "| %s | %s | %s | %s | %s | %.2f | %s | `%s` | %s |\n",
			d, yesNo(s.Enabled), yesNo(s.Loaded), yesNo(s.BackendHealthy), yesNo(s.Warmed),
			s.Threshold, s.BackendKind, s.ModelPath, escapeCell(s.LastError))
	}

	if len(summary) > 0 {
		b.WriteString("\n## Recorded validations\n\n")
		b.WriteString("| Discipline | Total | Valid | Errors | Mean confidence | Mean latency (ms) |\n")
		b.WriteString("|---|---|---|---|---|---|\n")
		for _, s := range summary {
			fmt.Fprintf(&b, "| %s | %d | %d | %d | %.3f | %.2f |\n",
				s.Discipline, s.Total, s.ValidCount, s.ErrorCount, s.MeanConfidence, s.MeanLatencyMs)
		}
	}
	return b.String()
}

// RenderHTML converts Markdown to HTML
func RenderHTML(md string) []byte {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := html.NewRenderer(html.RendererOptions{Flags: html.CommonFlags | html.HrefTargetBlank})
	return markdown.ToHTML([]byte(md), p, r)
}

func yesNo(v bool) string {
	if v {
		return "yes"
	}
	return "no"
}

func escapeCell(s string) string {
	if s == "" {
		return "-"
	}
	return strings.NewReplacer("|", "\\|", "\n", " ").Replace(s)
}
