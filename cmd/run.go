package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/Norgate-AV/cementci/internal/cache"
	"github.com/Norgate-AV/cementci/internal/config"
	"github.com/Norgate-AV/cementci/internal/pipeline"
	"github.com/Norgate-AV/cementci/internal/tool"
)

var runCmd = &cobra.Command{
	Use:          "run",
	Short:        "Run the job named by the CI environment",
	Long:         `Resolves the job name from the CI environment (GITHUB_JOB) and runs that stage.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(cmd, "")
	},
}

// runJob wires one pipeline invocation and runs the named job. An empty job
// name means "take it from the environment".
func runJob(cmd *cobra.Command, job string) error {
	opts, err := config.NewLoader().LoadForJob(cmd)
	if err != nil {
		return err
	}

	setupLogging(opts.Verbose)

	ctx, err := pipeline.ContextFromEnv(opts.ModuleRoot)
	if err != nil {
		return err
	}

	if job == "" {
		job = ctx.Job
	}

	store, err := cache.Open(opts.CacheDir)
	if err != nil {
		return fmt.Errorf("failed to open artifact store: %w", err)
	}
	defer store.Close()

	p := pipeline.New(ctx, opts, tool.NewRunner(), store)

	slog.Info("pipeline job starting",
		"job", job,
		"run_id", ctx.RunID,
		"ref", ctx.RefName,
		"revision", ctx.Revision)

	return p.Run(job)
}

func setupLogging(verbose bool) {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}

	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})))
}
