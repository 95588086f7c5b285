// Package style renders doplug's terminal output: per-plugin result lines,
// run summaries and the plugin listing table.
package style

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"

	"github.com/arthur-debert/doplug/pkg/orchestrator"
	"github.com/arthur-debert/doplug/pkg/types"
)

// VerdictStyle returns the pterm style for a reconciliation verdict.
func VerdictStyle(v types.Verdict) *pterm.Style {
	switch v {
	case types.VerdictInstalled:
		return pterm.NewStyle(pterm.FgGreen)
	case types.VerdictUpdated:
		return pterm.NewStyle(pterm.FgCyan)
	case types.VerdictSkipped:
		return pterm.NewStyle(pterm.FgGray)
	case types.VerdictFailed:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	default:
		return pterm.NewStyle(pterm.FgDefault)
	}
}

// StateStyle returns the pterm style for an on-disk plugin state.
func StateStyle(s types.PluginState) *pterm.Style {
	switch s {
	case types.StateCorrect:
		return pterm.NewStyle(pterm.FgGreen)
	case types.StateWrongRevision:
		return pterm.NewStyle(pterm.FgYellow)
	case types.StateCorrupt:
		return pterm.NewStyle(pterm.FgRed, pterm.Bold)
	default:
		return pterm.NewStyle(pterm.FgGray)
	}
}

// headerStyle renders table headers in the listing views.
var headerStyle = lipgloss.NewStyle().Bold(true).Underline(true)

// RenderOutcome renders one per-plugin result line, e.g.
//
//	installed  plenary    cloned at 4f71c0c
func RenderOutcome(o types.Outcome, colored bool) string {
	verdict := fmt.Sprintf("%-9s", string(o.Verdict))
	if colored {
		verdict = VerdictStyle(o.Verdict).Sprint(verdict)
	}
	return fmt.Sprintf("  %s  %-20s %s", verdict, o.Spec.Name, o.Detail)
}

// RenderSummary renders the run-level counts, failed last so the number the
// user cares about sits next to the exit status.
func RenderSummary(s types.Summary) string {
	return fmt.Sprintf("%d installed, %d updated, %d skipped, %d failed",
		s.Installed, s.Updated, s.Skipped, s.Failed)
}

// RenderPlannedAction renders one dry-run line.
func RenderPlannedAction(a orchestrator.PlannedAction, colored bool) string {
	action := fmt.Sprintf("%-8s", a.Action)
	if colored {
		action = StateStyle(a.State).Sprint(action)
	}
	return fmt.Sprintf("  %s %-20s %s -> %s",
		action, a.Spec.Name, a.State, shortRev(a.Spec.Revision))
}

// ListRow is one line of the plugin listing.
type ListRow struct {
	Name      string
	Revision  string
	State     string
	Installed bool
}

// RenderList renders the declared set with installed state as a small
// fixed-width table.
func RenderList(rows []ListRow, colored bool) string {
	var b strings.Builder

	header := fmt.Sprintf("%-22s %-10s %s", "NAME", "REVISION", "STATE")
	if colored {
		header = headerStyle.Render(header)
	}
	b.WriteString(header + "\n")

	for _, row := range rows {
		b.WriteString(fmt.Sprintf("%-22s %-10s %s\n",
			row.Name, shortRev(row.Revision), row.State))
	}
	return strings.TrimRight(b.String(), "\n")
}

func shortRev(rev string) string {
	if len(rev) > 7 {
		return rev[:7]
	}
	return rev
}
