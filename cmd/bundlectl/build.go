package main

import (
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/bundlectl/bundlectl/internal/builder"
	"github.com/bundlectl/bundlectl/internal/metrics"
	"github.com/bundlectl/bundlectl/internal/progress"
	"github.com/bundlectl/bundlectl/internal/report"
)

func buildCommand(params *rootParams) *cobra.Command {
	return &cobra.Command{
		Use:   "build",
		Short: "Run one build pass and report the result",
		Long: `Run one build pass and report the result.

The command is expected to run from the directory of the project being built:
entry and output paths in the build file resolve against the working
directory. The build either succeeds completely, printing a per-asset
summary, or fails with the engine's diagnostics and a non-zero exit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := params.load()
			if err != nil {
				return err
			}

			log := params.logger()
			bar := progress.New(!params.noProgress, "building")
			startTime := time.Now()

			result, err := builder.New().
				WithConfig(root.Build).
				WithLogger(log).
				WithProgress(bar).
				Build(cmd.Context())
			bar.Finish()

			if err != nil {
				metrics.BuildFailure(root.Build.Name, builder.ErrorKind(err))
				return err
			}

			metrics.BuildSucceeded(root.Build.Name, startTime)
			return report.Summary(os.Stdout, result)
		},
	}
}
