package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newConfigCommand(opts *cliOptions) *cobra.Command {
	var validate bool
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration (secrets masked)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(nil)
			if err != nil {
				return err
			}
			data, err := cfg.YAML()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if cfg.Source != "" {
				fmt.Fprintln(out, gray("# source: "+cfg.Source))
			}
			fmt.Fprint(out, string(data))
			if validate {
				if err := cfg.Validate(); err != nil {
					return fmt.Errorf("invalid configuration:\n%w", err)
				}
				fmt.Fprintln(out, green("configuration is valid"))
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&validate, "validate", false, "Also validate the configuration")
	return cmd
}
