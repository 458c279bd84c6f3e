package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sceneforge/internal/service"
)

func stitchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stitch <task-id>",
		Short: "Assemble generated clips into the final video",
		Long: `Assemble the clips of a generated task: combined-group clips are split
back into per-scene segments, chunked-scene clips are crossfaded together,
and everything is concatenated in timeline order.

Requires a prior 'generate' run for the task.`,
		Example: `  sceneforge stitch footage_ab12`,
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			taskID := args[0]

			summary, err := service.LoadRunSummary(taskID)
			if err != nil {
				return fmt.Errorf("no run summary for task %s, run 'generate' first: %w", taskID, err)
			}

			svc := service.NewService()
			outPath, err := svc.AssembleOutputs(cmd.Context(), taskID, summary)
			if err != nil {
				return err
			}
			if outPath == "" {
				return fmt.Errorf("no scene clips were available to assemble")
			}

			// Assembly may have demoted scenes whose clips were unusable.
			if err := svc.WriteRunSummary(taskID, summary); err != nil {
				return err
			}

			fmt.Printf("Final video: %s\n", outPath)
			return nil
		},
	}
	return cmd
}
