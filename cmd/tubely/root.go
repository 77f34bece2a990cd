package main

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"tubely/internal/config"
)

var (
	green = color.New(color.FgGreen).SprintFunc()
	red   = color.New(color.FgRed).SprintFunc()
	cyan  = color.New(color.FgCyan).SprintFunc()
	gray  = color.New(color.FgHiBlack).SprintFunc()
	bold  = color.New(color.Bold).SprintFunc()
)

func errorLine(msg string) string {
	return red("error: " + msg)
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// cliOptions holds the persistent flags shared by every subcommand.
type cliOptions struct {
	configPath string
}

func (o *cliOptions) load(overrides map[string]any) (config.Config, error) {
	opts := []config.Option{config.WithConfigPath(o.configPath)}
	if len(overrides) > 0 {
		opts = append(opts, config.WithOverrides(overrides))
	}
	return config.Load(opts...)
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	opts := &cliOptions{}
	rootCmd := &cobra.Command{
		Use:   "tubely",
		Short: "Video metadata and asset upload service",
		Long: fmt.Sprintf(`%s

Stores video records and accepts thumbnail and video uploads for them.

%s
  tubely serve --config tubely.yaml
  tubely token --user 4f1c2d --ttl 24h
  tubely config`, bold("tubely"), bold("EXAMPLES:")),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "Path to a YAML config file")

	rootCmd.AddCommand(newServeCommand(opts))
	rootCmd.AddCommand(newTokenCommand(opts))
	rootCmd.AddCommand(newConfigCommand(opts))
	return rootCmd
}
