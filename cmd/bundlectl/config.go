package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	ext_config "github.com/bundlectl/bundlectl/config"
	"github.com/bundlectl/bundlectl/internal/config"
)

func configCommand(params *rootParams) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect and validate the build file",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "validate",
		Short: "Validate the build file against the schema",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			if _, err := params.load(); err != nil {
				return err
			}
			fmt.Println("configuration OK")
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the merged effective configuration",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			bs, err := config.Merge(params.configFiles, false)
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(bs)
			return err
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "schema",
		Short: "Print the JSON schema for build files",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			_, err := os.Stdout.Write(ext_config.Schema())
			return err
		},
	})

	return cmd
}
