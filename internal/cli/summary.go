package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/crosscheck/internal/report"
	"github.com/charmbracelet/lipgloss"
)

// RenderSummary renders a run summary: one line per stage result and the
// totals.
func RenderSummary(summary *report.RunSummary) string {
	var b strings.Builder

	for _, r := range summary.Results {
		b.WriteString(renderResult(r))
		b.WriteString("\n")
	}

	counts := summary.Counts()
	if len(summary.Results) > 0 {
		b.WriteString("\n")
	}
	b.WriteString(fmt.Sprintf("%s  %s  %s  %s",
		SuccessStyle.Render(fmt.Sprintf("%d written", counts[report.StatusSuccess])),
		WarningStyle.Render(fmt.Sprintf("%d skipped", counts[report.StatusSkipped])),
		ErrorStyle.Render(fmt.Sprintf("%d failed", counts[report.StatusFailed])),
		SubtleStyle.Render(summary.Duration().Round(time.Millisecond).String()),
	))

	title := "Report complete"
	if counts[report.StatusFailed] > 0 {
		title = "Report finished with failures"
	}
	return RenderBox(title, b.String())
}

func renderResult(r report.PartitionResult) string {
	stage := TableCellStyle.Render(SubtleStyle.Render(fmt.Sprintf("%-9s", r.Stage)))
	key := r.Key
	if key == "" {
		key = "-"
	}

	var line string
	switch r.Status {
	case report.StatusSuccess:
		line = FormatSuccess(fmt.Sprintf("%s (%d rows)", key, r.Rows))
	case report.StatusSkipped:
		line = WarningStyle.Render(SkipIcon+" "+key) + SubtleStyle.Render(": "+r.Reason)
	default:
		line = FormatError(key) + SubtleStyle.Render(": "+r.Reason)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, stage, line)
}
