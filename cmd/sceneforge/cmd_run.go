package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sceneforge/internal/service"
	"sceneforge/pkg/util"
)

func runCmd() *cobra.Command {
	var (
		taskID       string
		skipExisting bool
		dryRun       bool
		maxUnits     int
	)

	cmd := &cobra.Command{
		Use:     "run <source>",
		Aliases: []string{"workflow"},
		Short:   "Run the full pipeline: analyze, generate and stitch",
		Example: `  sceneforge run footage.mp4
  sceneforge run footage.mp4 --dry-run
  sceneforge run https://example.com/watch?v=abc123 --max-units 5`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			source := args[0]
			if taskID == "" {
				taskID = service.NewTaskID(source)
			}

			svc := service.NewService()
			ctx := cmd.Context()

			videoPath, err := svc.ResolveSource(ctx, taskID, source)
			if err != nil {
				return err
			}

			analysis, err := svc.AnalyzeVideo(ctx, taskID, videoPath)
			if err != nil {
				return err
			}
			fmt.Printf("Task %s: %d scenes, %d units, estimated %s\n",
				analysis.TaskId, analysis.SceneCount, analysis.UnitCount,
				util.FormatCost(analysis.EstimatedCost))

			summary, err := svc.GenerateClips(ctx, taskID, service.GenerateOptions{
				SkipExisting: skipExisting,
				DryRun:       dryRun,
				MaxUnits:     maxUnits,
			})
			if err != nil {
				return err
			}

			if !dryRun {
				outPath, err := svc.AssembleOutputs(ctx, taskID, summary)
				if err != nil {
					return err
				}
				if outPath != "" {
					fmt.Printf("Final video: %s\n", outPath)
				}
			}

			if !dryRun {
				if err := svc.WriteRunSummary(taskID, summary); err != nil {
					return err
				}
			}
			printSummary(summary)
			return failedUnitsErr(summary)
		},
	}

	cmd.Flags().StringVar(&taskID, "task", "", "task id to use (default: derived from the source name)")
	cmd.Flags().BoolVar(&skipExisting, "skip-existing", false, "skip units whose clip file already exists")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "estimate cost without calling the generation API")
	cmd.Flags().IntVar(&maxUnits, "max-units", 0, "generate at most N units (0 = all)")
	return cmd
}
