package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"sceneforge/internal/service"
	"sceneforge/pkg/util"
)

func analyzeCmd() *cobra.Command {
	var taskID string

	cmd := &cobra.Command{
		Use:   "analyze <source>",
		Short: "Segment a video and build the unit manifest",
		Long: `Analyze a video without spending on generation: detect scene boundaries,
split over-long scenes into overlapping chunks, align dialogue, pack short
scenes into combined groups, and write the resulting unit manifest.

The source can be a local file or a URL (fetched with yt-dlp).`,
		Example: `  sceneforge analyze footage.mp4
  sceneforge analyze https://example.com/watch?v=abc123
  sceneforge analyze footage.mp4 --task my_run_01`,
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

			data, err := svc.AnalyzeVideo(ctx, taskID, videoPath)
			if err != nil {
				return err
			}

			fmt.Printf("Task:           %s\n", data.TaskId)
			fmt.Printf("Scenes:         %d\n", data.SceneCount)
			fmt.Printf("Units:          %d\n", data.UnitCount)
			fmt.Printf("Estimated cost: %s\n", util.FormatCost(data.EstimatedCost))
			fmt.Printf("Manifest:       %s\n", data.ManifestPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&taskID, "task", "", "task id to use (default: derived from the source name)")
	return cmd
}
