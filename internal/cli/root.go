// Package cli provides the command-line interface for courtwatch.
package cli

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nikhilbhat/courtwatch/internal/captcha"
	"github.com/nikhilbhat/courtwatch/internal/config"
	"github.com/nikhilbhat/courtwatch/internal/pipeline"
	"github.com/nikhilbhat/courtwatch/internal/portal"
	"github.com/nikhilbhat/courtwatch/internal/store"
)

var (
	// Version is set at build time.
	Version = "0.1.0"

	// Global flags
	verbose bool

	// Built by PersistentPreRunE, shared by all commands.
	cfg          config.Config
	logger       *slog.Logger
	caseStore    store.Store
	surreal      *store.Surreal
	portalClient *portal.Client
	pl           *pipeline.Pipeline
	logCleanup   func() error
)

// rootCmd represents the base command when called without any subcommands.
var rootCmd = &cobra.Command{
	Use:   "courtwatch",
	Short: "Automated high-court case record acquisition",
	Long: `Courtwatch acquires case records from the eCourts high-court portal:
it solves the portal's captcha gate, runs searches by record number, case
number, diary number or party name, parses the result pages into
structured records and tracks what changed since the last look.`,
	Version: Version,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd.Name() == "version" || cmd.Name() == "help" || cmd.Name() == "courts" {
			return nil
		}

		cfg = config.Load()

		level := cfg.LogLevel
		if verbose {
			level = slog.LevelDebug
		}
		var cleanup func() error
		logger, cleanup = config.SetupLogger(cfg.LogFile, level)
		logCleanup = cleanup

		ctx := context.Background()
		if cfg.SurrealDBURL != "" {
			var err error
			surreal, err = store.NewSurreal(ctx, cfg.Surreal(), logger)
			if err != nil {
				return fmt.Errorf("connect to store: %w", err)
			}
			caseStore = surreal
		} else {
			caseStore = store.NewMemory()
		}

		engine, err := buildEngine()
		if err != nil {
			return fmt.Errorf("init captcha engine: %w", err)
		}
		recognizer := captcha.New(engine, logger)

		defaultCourt, err := cfg.DefaultCourt()
		if err != nil {
			return fmt.Errorf("resolve default court: %w", err)
		}

		portalClient = portal.NewClient(cfg.Portal(), logger)
		pl = pipeline.NewWithPortal(portalClient, recognizer, caseStore, cfg.RetryPolicy(), pipeline.Config{
			MaxCaptchaAttempts: cfg.MaxCaptchaAttempts,
			RunTimeout:         cfg.RunTimeout,
			DefaultCourt:       defaultCourt,
			PayloadDir:         cfg.PayloadDir,
		}, logger)

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if surreal != nil {
			if err := surreal.Close(context.Background()); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", err)
			}
		}
		if logCleanup != nil {
			if err := logCleanup(); err != nil {
				fmt.Fprintf(os.Stderr, "Warning: failed to close log file: %v\n", err)
			}
		}
	},
}

func buildEngine() (captcha.Engine, error) {
	switch cfg.CaptchaEngine {
	case "tesseract":
		return captcha.NewTesseractEngine(cfg.TesseractBinary)
	case "llm":
		return captcha.NewLLMEngine(cfg.LLMModel)
	default:
		return nil, fmt.Errorf("unknown captcha engine %q (want tesseract or llm)", cfg.CaptchaEngine)
	}
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(searchCmd)
	rootCmd.AddCommand(refreshCmd)
	rootCmd.AddCommand(refreshAllCmd)
	rootCmd.AddCommand(courtsCmd)
	rootCmd.AddCommand(caseTypesCmd)
	rootCmd.AddCommand(actTypesCmd)
	rootCmd.AddCommand(ordersCmd)
}
