package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sceneforge/internal/service"
	"sceneforge/internal/types"
	"sceneforge/pkg/util"
)

func generateCmd() *cobra.Command {
	var (
		skipExisting bool
		dryRun       bool
		estimateOnly bool
		maxUnits     int
	)

	cmd := &cobra.Command{
		Use:   "generate <task-id>",
		Short: "Generate clips for an analyzed task",
		Long: `Generate one clip per manifest unit through the remote video API.
Units are processed sequentially; a unit that fails does not stop its
siblings. Use --dry-run to see the cost without calling the API.`,
		Example: `  sceneforge generate footage_ab12 --dry-run
  sceneforge generate footage_ab12 --max-units 3
  sceneforge generate footage_ab12 --skip-existing`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]
			svc := service.NewService()

			summary, err := svc.GenerateClips(cmd.Context(), taskID, service.GenerateOptions{
				SkipExisting: skipExisting,
				DryRun:       dryRun || estimateOnly,
				MaxUnits:     maxUnits,
			})
			if err != nil {
				return err
			}
			// A dry run must not clobber the summary of a real run.
			if !dryRun && !estimateOnly {
				if err := svc.WriteRunSummary(taskID, summary); err != nil {
					return err
				}
			}

			printSummary(summary)
			return failedUnitsErr(summary)
		},
	}

	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "skip units whose clip file already exists")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "estimate cost without calling the generation API")
	cmd.Flags().BoolVar(&estimateOnly, "estimate-only", false, "alias for --dry-run")
	cmd.Flags().IntVar(&maxUnits, "max-units", 0, "generate at most N units (0 = all)")
	return cmd
}

// failedUnitsErr makes the exit status reflect per-unit failures after the
// summary has been printed.
func failedUnitsErr(summary *types.RunSummary) error {
	if summary.AnyFailed() {
		return fmt.Errorf("%d of %d units failed",
			summary.Failed, summary.Completed+summary.Skipped+summary.Failed)
	}
	return nil
}

func printSummary(summary *types.RunSummary) {
	fmt.Printf("Completed: %d  Skipped: %d  Failed: %d\n",
		summary.Completed, summary.Skipped, summary.Failed)
	fmt.Printf("Total cost: %s\n", util.FormatCost(summary.TotalCost))
	for _, r := range summary.Results {
		if r.Status == types.UnitFailed {
			fmt.Printf("  FAILED %s: %s\n", r.UnitID, r.FailReason)
		}
	}
}
