package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/keshon/fzmusic/internal/config"
	"github.com/keshon/fzmusic/internal/discord"
	"github.com/keshon/fzmusic/internal/logging"
	"github.com/keshon/fzmusic/internal/version"
	"github.com/spf13/cobra"
)

type rootOptions struct {
	envFiles []string
	logLevel string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "fzmusic",
		Short:         "Discord music bot with per-guild playback queues",
		SilenceUsage:  true,
		SilenceErrors: false,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runBot(cmd.Context(), opts)
		},
	}
	rootCmd.Flags().StringSliceVar(&opts.envFiles, "env-file", nil, "dotenv file(s) to load before reading the environment (default .env)")
	rootCmd.Flags().StringVar(&opts.logLevel, "log-level", "", "override LOG_LEVEL (debug, info, warn, error)")

	rootCmd.AddCommand(newVersionCmd())
	return rootCmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		RunE: func(cmd *cobra.Command, _ []string) error {
			_, err := fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", version.AppName, version.Version)
			return err
		},
	}
}

func runBot(parent context.Context, opts *rootOptions) error {
	cfg, err := config.Load(opts.envFiles...)
	if err != nil {
		return err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}

	logger, closer, err := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile})
	if err != nil {
		return err
	}
	defer closer.Close()

	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger.Info().Str("version", version.Version).Msgf("Starting %s bot...", version.AppName)
	if err := discord.New(cfg, logger).Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Discord bot error")
		return err
	}
	logger.Info().Msg("Discord bot exited cleanly")
	return nil
}
