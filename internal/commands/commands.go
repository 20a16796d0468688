// Package commands is the pagedoc command line.
package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"pagedoc/internal/config"
)

// New returns the root command.
func New() *cobra.Command {
	var configFile string
	var cfg config.Config

	cmd := &cobra.Command{
		Use:           "pagedoc",
		Short:         "Paginated block document editor core.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			c, err := config.Load(configFile)
			if err != nil {
				return err
			}
			cfg = c
			return nil
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file (default $PAGEDOC_CONFIG or ~/.config/pagedoc/config.toml)")

	// Subcommands read the config through a pointer: it is loaded after flags
	// are parsed.
	addMCP(cmd, &cfg)
	addPaginate(cmd, &cfg)
	addConvert(cmd)
	addWatch(cmd, &cfg)
	return cmd
}

// readInput reads a named file, or stdin for "-".
func readInput(cmd *cobra.Command, name string) ([]byte, error) {
	if name == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	data, err := os.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	return data, nil
}
