// Command cdfgen regenerates wav1c's default MSAC probability tables from
// dav1d's cdf.c.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/rafaelcaricio/wav1c/internal/config"
	"github.com/rafaelcaricio/wav1c/internal/pipeline"
	"github.com/rafaelcaricio/wav1c/internal/watch"
)

var (
	// Global flags
	verbose    bool
	configPath string

	// Generate flags
	outputPath  string
	outputPkg   string
	watchSource bool

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "cdfgen",
	Short: "cdfgen - CDF probability table extractor for wav1c",
	Long: `cdfgen extracts the default CDF probability tables from dav1d's cdf.c
and generates the Go constant tables consumed by wav1c's MSAC entropy coder.

Every CDF<N>(...) macro in the selected regions is decoded with the
32768 - x transform, reshaped into its declared dimensions, and validated
against known counts and probe values before a single byte is written.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// generateCmd runs the full pipeline and writes the generated file
var generateCmd = &cobra.Command{
	Use:   "generate [cdf.c]",
	Short: "Extract, validate, and write the generated table file",
	Long: `Runs the full extraction pipeline:
  1. Extract:  locate default_cdf and the qctx=3 slice of default_coef_cdf
  2. Decode:   parse every CDF<N>(...) macro, applying 32768 - x
  3. Reshape:  nest the flat entry stream into each table's dimensions
  4. Validate: assert entry counts and hand-verified probe values
  5. Emit:     write the deterministic generated Go source

The cdf.c path may be given as an argument, in cdfgen.yaml, or via the
WAV1C_CDF_SOURCE environment variable.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runGenerate,
}

// checkCmd validates without writing anything
var checkCmd = &cobra.Command{
	Use:   "check [cdf.c]",
	Short: "Run extraction and validation without writing output",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runCheck,
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "cdfgen.yaml", "Config file path")

	// Generate flags
	generateCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Generated file path (default from config)")
	generateCmd.Flags().StringVar(&outputPkg, "package", "", "Package name of the generated file (default from config)")
	generateCmd.Flags().BoolVar(&watchSource, "watch", false, "Keep running and regenerate when cdf.c changes")

	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(checkCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// loadConfig resolves the effective config from file, environment, flags,
// and the optional positional source path, in ascending precedence.
func loadConfig(args []string) (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if outputPath != "" {
		cfg.Output = outputPath
	}
	if outputPkg != "" {
		cfg.Package = outputPkg
	}
	if len(args) > 0 {
		cfg.Source = args[0]
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// runGenerate executes one generation pass, then optionally keeps watching.
func runGenerate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	logger.Info("Generating CDF tables",
		zap.String("source", cfg.Source),
		zap.String("output", cfg.Output))

	result, err := pipeline.Run(cfg, logger)
	if err != nil {
		return err
	}
	fmt.Printf("Generated %s (%d tables, %d entries)\n", result.OutputPath, result.Tables, result.Entries)

	if !watchSource {
		return nil
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	watcher, err := watch.New(cfg.Source, cfg.GetDebounce(), func() error {
		result, err := pipeline.Run(cfg, logger)
		if err != nil {
			return err
		}
		fmt.Printf("Regenerated %s (%d tables)\n", result.OutputPath, result.Tables)
		return nil
	}, logger)
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	if err := watcher.Start(ctx); err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Printf("Watching %s. Press Ctrl+C to stop\n", cfg.Source)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	return nil
}

// runCheck validates the source without touching the output file.
func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(args)
	if err != nil {
		return err
	}

	if err := pipeline.Check(cfg, logger); err != nil {
		return err
	}
	fmt.Printf("Validation passed for %s\n", cfg.Source)
	return nil
}
