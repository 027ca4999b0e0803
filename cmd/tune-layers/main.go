// Command tune-layers finds, for each embedding model, the hidden layer
// whose similarity scores best correlate with human judgements.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/jamesainslie/go-layertune/inference"
	"github.com/jamesainslie/go-layertune/internal/config"
	"github.com/jamesainslie/go-layertune/internal/dataset"
	"github.com/jamesainslie/go-layertune/internal/tune"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var defaultPairs = []string{"cs-en", "de-en", "fi-en", "ro-en", "ru-en", "tr-en"}

type options struct {
	data        string
	models      []string
	logFile     string
	idf         bool
	batchSize   int
	pairs       []string
	aihubData   string
	aihubSplits []string
	modelsDir   string
	poolSize    int
	ortLib      string
	tableDir    string
	verbose     bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := options{}

	cmd := &cobra.Command{
		Use:          "tune-layers",
		Short:        "Pick the best embedding layer per model by correlation with human scores",
		Version:      fmt.Sprintf("%s (%s, %s)", version, commit, date),
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return run(cmd.Context(), opts)
		},
	}

	registerFlags(cmd.Flags(), &opts)
	_ = cmd.MarkFlagRequired("model")

	return cmd
}

func registerFlags(f *pflag.FlagSet, opts *options) {
	f.StringVarP(&opts.data, "data", "d", "wmt16", "path to wmt16 data")
	f.StringSliceVarP(&opts.models, "model", "m", nil, "models to tune (directories under --models_dir)")
	f.StringVarP(&opts.logFile, "log_file", "l", "best_layers_log.txt", "log file path")
	f.BoolVar(&opts.idf, "idf", false, "weight tokens by idf")
	f.IntVarP(&opts.batchSize, "batch_size", "b", 64, "sentences per batch")
	f.StringSliceVar(&opts.pairs, "lang_pairs", defaultPairs, "language pairs used for tuning")
	f.StringVar(&opts.aihubData, "aihub_data", "../data", "path to AIHub data")
	f.StringSliceVar(&opts.aihubSplits, "aihub_splits", []string{config.SplitValidation}, "AIHub splits to read")
	f.StringVar(&opts.modelsDir, "models_dir", ".", "directory holding one subdirectory per model")
	f.IntVar(&opts.poolSize, "pool_size", runtime.NumCPU(), "concurrent ONNX sessions per model")
	f.StringVar(&opts.ortLib, "onnxruntime_lib", os.Getenv("ONNXRUNTIME_LIB"), "path to the onnxruntime shared library")
	f.StringVar(&opts.tableDir, "table_dir", "", "write the full correlation table per model to this directory")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "debug logging")
}

func run(ctx context.Context, opts options) error {
	level := slog.LevelInfo
	if opts.verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	if err := config.ValidateSplits(opts.aihubSplits); err != nil {
		return err
	}
	if opts.batchSize <= 0 {
		return fmt.Errorf("batch_size must be positive, got %d", opts.batchSize)
	}
	if opts.ortLib != "" {
		inference.SetLibraryPath(opts.ortLib)
	}

	s := &tune.Sweeper{
		Factory: modelFactory(opts.modelsDir, opts.poolSize, logger),
		Loader: dataset.Loader{
			DataRoot:    opts.data,
			AIHubRoot:   opts.aihubData,
			AIHubSplits: opts.aihubSplits,
		},
		Pairs:     opts.pairs,
		BatchSize: opts.batchSize,
		IDF:       opts.idf,
		Logger:    logger,
		Reporter:  tune.ReporterFor(opts.logFile),
		TableDir:  opts.tableDir,
	}

	results, err := s.RunAll(ctx, opts.models)
	for _, res := range results {
		fmt.Println(s.Reporter.Line(res))
	}
	return err
}
