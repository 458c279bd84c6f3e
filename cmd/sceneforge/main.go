// Command sceneforge drives the clip pipeline from the terminal: analyze a
// source into a unit manifest, generate clips for it, and stitch the results
// into the final video. Each stage can run on its own so spend stays
// inspectable before generation starts.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"sceneforge/config"
	"sceneforge/internal/deps"
	"sceneforge/log"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	// Load .env if present so API keys do not have to live in the config file.
	_ = godotenv.Load()

	log.InitLogger()
	defer log.GetLogger().Sync()

	ctx, cancel := signal.NotifyContext(context.Background(),
		syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := &cobra.Command{
		Use:     "sceneforge",
		Short:   "Rebuild a video as AI-generated clips, scene by scene",
		Version: fmt.Sprintf("%s (commit: %s)", version, commit),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
		SilenceErrors: true,
		SilenceUsage:  true,
	}

	rootCmd.AddCommand(analyzeCmd())
	rootCmd.AddCommand(generateCmd())
	rootCmd.AddCommand(stitchCmd())
	rootCmd.AddCommand(runCmd())

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup loads configuration and verifies external binaries before any
// subcommand runs.
func setup() error {
	if !config.LoadConfig() {
		return fmt.Errorf("failed to load configuration")
	}
	if err := config.CheckConfig(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if err := deps.CheckDependency(); err != nil {
		log.GetLogger().Warn("dependency check", zap.Error(err))
		return err
	}
	return nil
}
