package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/bundlectl/bundlectl/internal/progress"
	"github.com/bundlectl/bundlectl/internal/server"
	"github.com/bundlectl/bundlectl/internal/watch"
)

func serveCommand(params *rootParams) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the output directory and rebuild on change",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			root, err := params.load()
			if err != nil {
				return err
			}

			if addr == "" {
				addr = root.Server.ListenAddr()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := params.logger()
			group, ctx := errgroup.WithContext(ctx)

			group.Go(func() error {
				return watch.New(root.Build, root.Watch).
					WithLogger(log).
					WithProgress(progress.New(!params.noProgress, "watching")).
					Run(ctx)
			})
			group.Go(func() error {
				return server.New(addr, root.Build.Output.Dir).
					WithLogger(log).
					Run(ctx)
			})

			return group.Wait()
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides the build file)")
	return cmd
}
