package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/stackaudit/stackaudit/internal/domain"
	"github.com/stackaudit/stackaudit/internal/domain/policy"
)

// ── warm terminal palette ──
var (
	accent  = lipgloss.Color("#D97706") // amber
	fg      = lipgloss.Color("#E8E6E3") // warm light gray
	dim     = lipgloss.Color("#6B7280") // muted gray
	faint   = lipgloss.Color("#3F3F46") // very dim
	success = lipgloss.Color("#22C55E") // green
	danger  = lipgloss.Color("#EF4444") // red
	warning = lipgloss.Color("#F59E0B") // amber-yellow
)

var (
	headerStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(accent).
			Align(lipgloss.Center)

	boxStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(accent).
			Padding(1, 4).
			Align(lipgloss.Center).
			Width(68)

	dimStyle      = lipgloss.NewStyle().Foreground(dim)
	faintStyle    = lipgloss.NewStyle().Foreground(faint)
	passStyle     = lipgloss.NewStyle().Foreground(success)
	failStyle     = lipgloss.NewStyle().Foreground(danger)
	warnStyle     = lipgloss.NewStyle().Foreground(warning)
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(fg)
	targetStyle   = lipgloss.NewStyle().Bold(true).Foreground(fg)
	separatorLine = faintStyle.Render(strings.Repeat("─", 64))

	tierColors = map[domain.Tier]lipgloss.Color{
		domain.TierHealthy:  success,
		domain.TierDegraded: warning,
		domain.TierCritical: danger,
	}
)

// RenderCategory renders one category report: header box with the score and
// tier, per-check lines grouped by target, and the tier-derived
// recommendations block.
func RenderCategory(report *domain.CategoryReport) string {
	var b strings.Builder

	tierStyled := lipgloss.NewStyle().Bold(true).Foreground(tierColor(report.Tier)).
		Render(strings.ToUpper(string(report.Tier)))
	scoreStyled := lipgloss.NewStyle().Bold(true).Foreground(tierColor(report.Tier)).
		Render(fmt.Sprintf("%.1f%%", report.Score))

	title := headerStyle.Render("stackaudit")
	subtitle := dimStyle.Render(report.Category + " audit")
	b.WriteString(boxStyle.Render(title + "\n" + subtitle + "\n\n" + scoreStyled + "  " + tierStyled))
	b.WriteString("\n\n")

	b.WriteString(fmt.Sprintf("  %s %s  %s\n\n",
		coloredBar(report.Score, 24),
		scoreStyled,
		dimStyle.Render(fmt.Sprintf("%d passed · %d failed · %d skipped", report.Passed, report.Failed, report.Skipped)),
	))

	var lastTarget string
	for _, result := range report.Results {
		if result.Target.Name != lastTarget {
			lastTarget = result.Target.Name
			b.WriteString(fmt.Sprintf("  %s %s\n",
				targetStyle.Render(result.Target.Name),
				faintStyle.Render("("+string(result.Target.Kind)+")"),
			))
		}
		renderResult(&b, result)
	}

	b.WriteString("\n  " + separatorLine + "\n\n")

	b.WriteString("  " + titleStyle.Render("Recommendations") + "\n")
	for _, rec := range policy.Recommendations(report.Tier) {
		b.WriteString("    " + dimStyle.Render("· "+rec) + "\n")
	}

	if report.CommitHash != "" {
		hash := report.CommitHash
		if len(hash) > 7 {
			hash = hash[:7]
		}
		b.WriteString("\n  " + faintStyle.Render("commit "+hash) + "\n")
	}

	b.WriteString("\n")
	return b.String()
}

func renderResult(b *strings.Builder, result domain.CheckResult) {
	var icon string
	switch {
	case result.Outcome == domain.OutcomePass && result.Credit >= 1 && result.Reason == "":
		icon = passStyle.Render("✓")
	case result.Outcome == domain.OutcomePass:
		icon = warnStyle.Render("~")
	case result.Outcome == domain.OutcomeSkip:
		icon = dimStyle.Render("○")
	default:
		icon = failStyle.Render("✗")
	}

	name := padRight(result.RuleName, 52)
	if result.Reason != "" {
		fmt.Fprintf(b, "    %s %s\n", icon, name)
		fmt.Fprintf(b, "        %s\n", dimStyle.Render(result.Reason))
	} else {
		fmt.Fprintf(b, "    %s %s\n", icon, name)
	}
}

func tierColor(tier domain.Tier) lipgloss.Color {
	if c, ok := tierColors[tier]; ok {
		return c
	}
	return fg
}

func coloredBar(score float64, width int) string {
	filled := int(score) * width / 100
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}
	empty := width - filled

	var color lipgloss.Color
	switch {
	case score >= 70:
		color = success
	case score >= 60:
		color = warning
	default:
		color = danger
	}
	filledStr := lipgloss.NewStyle().Foreground(color).Render(strings.Repeat("█", filled))
	emptyStr := lipgloss.NewStyle().Foreground(faint).Render(strings.Repeat("░", empty))
	return filledStr + emptyStr
}

func padRight(s string, width int) string {
	if len(s) >= width {
		return s
	}
	return s + strings.Repeat(" ", width-len(s))
}
