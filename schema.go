package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/phobologic/archcheck/internal/checker"
	"github.com/phobologic/archcheck/internal/config"
	"github.com/phobologic/archcheck/internal/plugins"
	"github.com/phobologic/archcheck/internal/report"
)

func newSchemaCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the JSON Schema of the architecture file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := config.Schema()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(stdout, string(data))
			return err
		},
	}
}

func newCodesCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "codes",
		Short: "List diagnostic codes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			chk, err := checker.New(plugins.Builtins())
			if err != nil {
				return err
			}
			return report.WriteCodes(stdout, chk.Plugins())
		},
	}
}
