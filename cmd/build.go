package cmd

import (
	"github.com/spf13/cobra"

	"github.com/Norgate-AV/cementci/internal/pipeline"
)

var buildCmd = &cobra.Command{
	Use:          "build",
	Short:        "Build the module and save artifacts",
	Long:         `Installs the toolchain, builds the module in release configuration and saves the artifacts for later jobs.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(cmd, pipeline.JobBuild)
	},
}

var testCmd = &cobra.Command{
	Use:          "test",
	Short:        "Restore build artifacts and run tests",
	Long:         `Restores the saved build artifacts and runs the test tool against the configured target framework.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(cmd, pipeline.JobTest)
	},
}

var publishCmd = &cobra.Command{
	Use:          "publish",
	Short:        "Pack and push packages to the registry",
	Long:         `Restores the publish artifacts, packs release packages and pushes each of them to the package registry.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJob(cmd, pipeline.JobPublish)
	},
}
