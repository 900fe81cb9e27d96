package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Yates-Labs/anar/internal/arabic"
	"github.com/Yates-Labs/anar/internal/config"
	"github.com/Yates-Labs/anar/internal/logging"
	"github.com/Yates-Labs/anar/internal/narrative"
	"github.com/Yates-Labs/anar/internal/orchestrator"
	"github.com/Yates-Labs/anar/internal/rules"
	"github.com/Yates-Labs/anar/internal/store/sqlite"
)

var configFile string

// app holds the state built once per invocation by the root command.
var app struct {
	cfg    *config.Config
	logger *zap.Logger
	rules  *rules.Set
}

var rootCmd = &cobra.Command{
	Use:   "anar",
	Short: "Anar - Arabic frame-story analysis tool",
	Long: `Anar analyzes classical Arabic narrative texts and recovers their frame-story
structure: who narrates to whom, at what nesting depth.

It also annotates culturally significant expressions such as honorifics,
religious invocations, greetings and social customs, with context-aware
metadata and confidence scores.`,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if app.logger != nil {
			_ = app.logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Config file (default $ANAR_CONFIG or ./anar.yaml)")
}

// Execute runs the root command
func Execute() {
	// Load .env file if it exists
	_ = godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func setup(cmd *cobra.Command, args []string) error {
	var err error
	if configFile != "" {
		app.cfg, err = config.LoadFile(configFile)
	} else {
		app.cfg, err = config.Load()
	}
	if err != nil {
		return err
	}

	app.logger, err = logging.New(app.cfg.Log)
	if err != nil {
		return err
	}

	app.rules, err = rules.Load(app.cfg.Rules.ContextPath, app.cfg.Rules.ValidationPath)
	if err != nil {
		return fmt.Errorf("load rules: %w", err)
	}

	app.logger.Debug("configuration loaded",
		zap.String("command", cmd.Name()),
		zap.Int("max_depth", app.cfg.Analysis.MaxDepth),
		zap.Int("workers", app.cfg.Batch.Workers),
	)
	return nil
}

func newPipeline(narrator string) *orchestrator.Pipeline {
	if narrator == "" {
		narrator = app.cfg.Analysis.DefaultNarrator
	}
	analyzer := narrative.NewAnalyzer(app.rules,
		narrative.WithLogger(app.logger),
		narrative.WithMaxDepth(app.cfg.Analysis.MaxDepth),
		narrative.WithDefaultNarrator(narrator),
	)
	return orchestrator.NewPipeline(arabic.NewProcessor(), analyzer, app.logger)
}

func openStore(path string) (*sqlite.Store, error) {
	if path == "" {
		path = app.cfg.Store.Path
	}
	store, err := sqlite.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open document store: %w", err)
	}
	return store, nil
}
