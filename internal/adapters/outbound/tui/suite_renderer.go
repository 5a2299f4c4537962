package tui

import (
	"fmt"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/stackaudit/stackaudit/internal/domain"
)

// RenderSuite renders the aggregate summary table for one full-suite run.
func RenderSuite(suite *domain.SuiteReport) string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("  " + titleStyle.Render("Suite summary") + "\n\n")

	t := table.NewWriter()
	t.SetStyle(table.StyleRounded)
	t.AppendHeader(table.Row{"Category", "Status", "Score"})
	for _, c := range suite.Categories {
		t.AppendRow(table.Row{c.Category, statusCell(c), scoreCell(c)})
	}
	t.AppendFooter(table.Row{"global", globalStatus(suite), fmt.Sprintf("%.1f%%", suite.GlobalScore)})
	b.WriteString(t.Render())
	b.WriteString("\n\n")

	if suite.Passed {
		b.WriteString("  " + passStyle.Render("All categories passed.") + "\n")
	} else {
		b.WriteString("  " + failStyle.Render("One or more categories failed.") + "\n")
	}

	if suite.CommitHash != "" {
		hash := suite.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		b.WriteString("  " + faintStyle.Render("commit "+hash) + "\n")
	}

	return b.String()
}

func statusCell(c domain.CategoryOutcome) string {
	if c.Err != "" {
		return text.FgRed.Sprint("✗ " + c.Err)
	}
	switch c.Tier {
	case domain.TierHealthy:
		return text.FgGreen.Sprint("✓ " + string(c.Tier))
	case domain.TierDegraded:
		return text.FgYellow.Sprint("~ " + string(c.Tier))
	default:
		return text.FgRed.Sprint("✗ " + string(c.Tier))
	}
}

func scoreCell(c domain.CategoryOutcome) string {
	if c.Err != "" {
		return "—"
	}
	return fmt.Sprintf("%.1f%%", c.Score)
}

func globalStatus(suite *domain.SuiteReport) string {
	if suite.Passed {
		return text.FgGreen.Sprint("✓ pass")
	}
	return text.FgRed.Sprint("✗ fail")
}
