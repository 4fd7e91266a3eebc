package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/bundlectl/bundlectl/internal/progress"
	"github.com/bundlectl/bundlectl/internal/watch"
)

func watchCommand(params *rootParams) *cobra.Command {
	return &cobra.Command{
		Use:   "watch",
		Short: "Rebuild whenever source files change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := params.load()
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			return watch.New(root.Build, root.Watch).
				WithLogger(params.logger()).
				WithProgress(progress.New(!params.noProgress, "watching")).
				Run(ctx)
		},
	}
}
