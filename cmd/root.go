package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/Norgate-AV/cementci/internal/version"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:           "cementci",
	Short:         "CI pipeline for cement modules",
	Long:          `Runs the build, test and publish jobs of a cement module pipeline.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute is the single failure boundary of the process: every error from
// every stage surfaces here as one report and a non-zero exit.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		slog.Error("pipeline failed", "error", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (%s) %s", version.Version, version.Commit, version.BuildTime)
	rootCmd.PersistentFlags().StringP("references", "r", "", "Dependency reference strategy (cement, or nuget to rewrite to registry packages)")
	rootCmd.PersistentFlags().StringP("framework", "f", "", "Target framework moniker passed to the test tool")
	rootCmd.PersistentFlags().StringP("key", "k", "", "Credential for pushing packages to the registry")
	rootCmd.PersistentFlags().String("registry", "", "Package registry source URL")
	rootCmd.PersistentFlags().String("module-root", "", "Root folder of the module under build")
	rootCmd.PersistentFlags().String("cache-dir", "", "Artifact store location shared between jobs")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")
	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(testCmd)
	rootCmd.AddCommand(publishCmd)
}
