// Package cli wires configuration, storage, views and the HTTP server into
// the flatblog command tree.
package cli

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/yourusername/flatblog/internal/config"
	"github.com/yourusername/flatblog/internal/logging"
)

// RootOptions holds global flags and the state PersistentPreRunE prepares
// for subcommands.
type RootOptions struct {
	ConfigPath string
	Verbose    bool

	Config *config.Config
	Logger *slog.Logger
}

// NewRootCommand creates the root command for the flatblog CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "flatblog",
		Short: "A small blog backed by a JSON file",
		Long: `flatblog serves a server-rendered blog whose posts live in a single
JSON file, and offers commands to manage those posts from the shell.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return opts.setup(cmd)
		},
	}

	cmd.PersistentFlags().StringVarP(&opts.ConfigPath, "config", "c", "config.yaml", "path to configuration file")
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")

	cmd.AddCommand(NewServeCommand(opts))
	cmd.AddCommand(NewPostsCommand(opts))

	return cmd
}

func (o *RootOptions) setup(cmd *cobra.Command) error {
	cfg, err := config.Load(o.ConfigPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Logging.Level
	if o.Verbose {
		level = "debug"
	}
	logger, err := logging.New(level, cfg.Logging.Format, cmd.ErrOrStderr())
	if err != nil {
		return err
	}
	slog.SetDefault(logger)

	o.Config = cfg
	o.Logger = logger
	return nil
}
