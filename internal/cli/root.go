// Package cli provides the command-line interface for runq.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/runq/internal/catalog"
	"github.com/leapstack-labs/runq/internal/cli/config"
	"github.com/leapstack-labs/runq/internal/jargon"
	"github.com/leapstack-labs/runq/internal/remote"
	"github.com/leapstack-labs/runq/internal/runner"
	"github.com/leapstack-labs/runq/internal/shell"
	"github.com/leapstack-labs/runq/internal/store"
)

var (
	cfgFile string
	cfg     *config.Config
	logger  *slog.Logger
)

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "runq",
		Short: "runq - run code snippets in any language",
		Long: `runq is an interactive shell for running code snippets in any language
supported by a remote execution service.

It keeps a local catalog of supported languages, lets you define short
aliases for them, and can wrap your snippets in per-language boilerplate
("jargon") before they are sent off to run.`,
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var err error
			cfg, err = config.LoadConfig(cfgFile, cmd.Root().PersistentFlags())
			if err != nil {
				return err
			}

			level := slog.LevelWarn
			if cfg.Verbose {
				level = slog.LevelDebug
			}
			logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			if cfg.Verbose {
				if configFile := config.GetConfigFileUsed(); configFile != "" {
					fmt.Fprintf(os.Stderr, "Using config file: %s\n", configFile)
				}
			}
			return nil
		},
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runShell(cmd.Context())
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./runq.yaml)")
	rootCmd.PersistentFlags().String("db", "", "path to the catalog database")
	rootCmd.PersistentFlags().String("endpoint", "", "base URL of the execution service")
	rootCmd.PersistentFlags().Int("timeout", 0, "remote call timeout in seconds")
	rootCmd.PersistentFlags().Bool("loop", false, "keep the session open after each command")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "verbose output")

	rootCmd.AddCommand(newVersionCommand())

	return rootCmd
}

// runShell opens the store, synchronizes the catalog, and runs the
// interactive session: one command by default, a full loop with --loop.
func runShell(ctx context.Context) error {
	st := store.NewSQLiteStore(logger)
	if err := st.Open(cfg.DBPath); err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	if err := st.Migrate(); err != nil {
		return err
	}

	defaults, err := jargon.Defaults()
	if err != nil {
		return err
	}
	if err := st.SeedDefaults(jargon.DefaultAliases, defaults); err != nil {
		return err
	}

	client := remote.NewClient(remote.Config{
		BaseURL: cfg.Endpoint,
		Timeout: cfg.Timeout(),
		Logger:  logger,
	})

	cat := catalog.New(catalog.Config{Store: st, Remote: client, Logger: logger})
	if err := cat.Load(ctx); err != nil {
		return err
	}

	eng := jargon.NewEngine(st, logger)
	run := runner.New(runner.Config{
		Catalog: cat,
		Jargon:  eng,
		Remote:  client,
		Store:   st,
		Logger:  logger,
	})

	session, err := shell.New(shell.Options{
		Catalog:     cat,
		Jargon:      eng,
		Runner:      run,
		Store:       st,
		HistoryFile: cfg.HistoryFile,
		Logger:      logger,
	})
	if err != nil {
		return err
	}
	defer func() { _ = session.Close() }()

	if cfg.Loop {
		return session.RunLoop(ctx)
	}
	_, err = session.RunOnce(ctx)
	return err
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "runq %s\n", Version)
			fmt.Fprintf(cmd.OutOrStdout(), "  build date: %s\n", BuildDate)
			fmt.Fprintf(cmd.OutOrStdout(), "  git commit: %s\n", GitCommit)
		},
	}
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
