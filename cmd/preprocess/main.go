// Command preprocess extracts the AIHub evaluation archives and writes the
// source sentences they contain.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/jamesainslie/go-layertune/internal/config"
	"github.com/jamesainslie/go-layertune/internal/preprocess"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var (
		configPath string
		verbose    bool
		strict     bool
	)

	cmd := &cobra.Command{
		Use:          "preprocess",
		Short:        "Extract AIHub archives and collect source sentences",
		Version:      fmt.Sprintf("%s (%s, %s)", version, commit, date),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configPath)
			if err != nil {
				return err
			}

			level, _ := config.ParseLevel(cfg.LogLevel)
			if verbose {
				level = slog.LevelDebug
			}
			logger := slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level}))

			reports, err := preprocess.Run(cmd.Context(), cfg, logger)
			errs := []error{err}
			for _, rep := range reports {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: %d documents, %d sentences\n", rep.Split, rep.Documents, rep.Sentences)
				if strict {
					errs = append(errs, rep.Err())
				}
			}
			return errors.Join(errs...)
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "YAML config file")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	cmd.Flags().BoolVar(&strict, "strict", false, "exit non-zero when any archive or json file fails")
	return cmd
}
