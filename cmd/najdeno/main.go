package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/erazemk/najdeno/internal/config"
)

func main() {
	if err := newRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}

// rootOptions holds flags shared by every command.
type rootOptions struct {
	configPath string
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "najdeno",
		Short:         "Campus lost-and-found service",
		SilenceUsage:  true,
	}

	cmd.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "YAML config file")
	config.RegisterFlags(cmd.PersistentFlags())

	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newInitCommand(opts))
	cmd.AddCommand(newSeedCommand(opts))
	cmd.AddCommand(newAdminCommand(opts))

	return cmd
}

// loadConfig resolves the configuration for cmd from file and flags.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (config.Config, error) {
	return config.Load(o.configPath, cmd.Flags())
}
