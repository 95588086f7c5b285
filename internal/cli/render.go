package cli

import (
	"fmt"

	"github.com/arthur-debert/doplug/pkg/orchestrator"
	"github.com/arthur-debert/doplug/pkg/style"
	"github.com/arthur-debert/doplug/pkg/types"
	"github.com/arthur-debert/doplug/pkg/ui"
)

// renderOutcomes prints the per-plugin result lines and the run summary.
func renderOutcomes(outcomes []types.Outcome, summary types.Summary, format ui.Format) {
	if format == ui.FormatJSON {
		_ = printJSON(struct {
			Outcomes []types.Outcome `json:"outcomes"`
			Summary  types.Summary   `json:"summary"`
		}{outcomes, summary})
		return
	}

	colored := format == ui.FormatTerminal
	for _, o := range outcomes {
		fmt.Println(style.RenderOutcome(o, colored))
	}
	fmt.Println()
	fmt.Println(style.RenderSummary(summary))
}

// renderPlan prints a dry run's planned actions.
func renderPlan(planned []orchestrator.PlannedAction, format ui.Format) {
	if format == ui.FormatJSON {
		_ = printJSON(struct {
			Planned []orchestrator.PlannedAction `json:"planned"`
		}{planned})
		return
	}

	colored := format == ui.FormatTerminal
	for _, a := range planned {
		fmt.Println(style.RenderPlannedAction(a, colored))
	}
}
