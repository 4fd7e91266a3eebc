// Command bundlectl runs the build tooling shipped with this module against
// the project in the current working directory.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bundlectl/bundlectl/internal/config"
	"github.com/bundlectl/bundlectl/internal/logging"
)

var version = "dev"

type rootParams struct {
	configFiles []string
	logLevel    string
	noProgress  bool
}

func (p *rootParams) logger() *logging.Logger {
	level := logging.LogLevelInfo
	switch p.logLevel {
	case "debug":
		level = logging.LogLevelDebug
	case "warn":
		level = logging.LogLevelWarn
	case "error":
		level = logging.LogLevelError
	}
	return logging.NewLogger(logging.Config{Level: level})
}

// load builds the effective configuration: merged files (or defaults), with
// project paths anchored in the current working directory.
func (p *rootParams) load() (*config.Root, error) {
	root, err := config.Load(p.configFiles)
	if err != nil {
		return nil, err
	}

	workdir, err := os.Getwd()
	if err != nil {
		return nil, err
	}
	if err := root.Build.ResolvePaths(workdir); err != nil {
		return nil, err
	}
	return root, nil
}

func main() {
	var params rootParams

	root := &cobra.Command{
		Use:           "bundlectl",
		Short:         "Front-end build tooling packaged as a versioned module",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringSliceVarP(&params.configFiles, "config", "c", nil, "build file(s) to merge, later files win")
	root.PersistentFlags().StringVar(&params.logLevel, "log-level", "info", "log level (debug, info, warn, error)")
	root.PersistentFlags().BoolVar(&params.noProgress, "no-progress", false, "disable the progress indicator")

	root.AddCommand(
		buildCommand(&params),
		watchCommand(&params),
		serveCommand(&params),
		configCommand(&params),
		versionCommand(),
	)

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
