package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/iamgilwell/hemat/internal/ai"
	"github.com/iamgilwell/hemat/internal/config"
	"github.com/iamgilwell/hemat/internal/notification"
	"github.com/iamgilwell/hemat/internal/power"
)

// Version is stamped at build time.
var Version = "dev"

var (
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "hemat",
	Short: "Hemat - household electricity calculator and energy advisor",
	Long: `Hemat estimates the monthly electricity consumption and cost of
household devices, asks Anthropic Claude for energy saving and
environmental tips, and manages the articles of the energy blog.

Run 'hemat interactive' for the terminal calculator, 'hemat calc' for a
one-shot calculation, or 'hemat serve' to start the HTTP API.`,
	SilenceUsage: true,
}

// Execute runs the root command. Commands see a context that is cancelled
// on SIGINT or SIGTERM.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "enable verbose output")

	rootCmd.AddCommand(calcCmd)
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(interactiveCmd)
	rootCmd.AddCommand(articlesCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(logsCmd)
}

func initConfig() {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading config: %v\n", err)
		os.Exit(1)
	}
	if verbose {
		cfg.Notifications.Verbose = true
	}
	config.Global = cfg
}

func newNotifier(cfg *config.Config, console io.Writer) (*notification.Notifier, error) {
	return notification.NewNotifier(notification.Options{
		LogFile:      cfg.Notifications.LogFile,
		ColorEnabled: cfg.Notifications.ColorEnabled,
		Verbose:      cfg.Notifications.Verbose,
		Console:      console,
	})
}

func newCalculator(cfg *config.Config, strict bool) *power.Calculator {
	return power.NewCalculator(power.Options{
		StrictHours: strict || cfg.Calculator.StrictHoursValidation,
		Palette:     cfg.Calculator.Palette,
	})
}

// newEngine returns nil when no API key is configured or AI is disabled.
func newEngine(cfg *config.Config, notifier *notification.Notifier) *ai.Engine {
	if !cfg.AIAvailable() {
		return nil
	}
	cache := ai.NewCache(cfg.AI.CacheSize, cfg.AI.CacheTTL)
	return ai.NewEngine(
		ai.NewClaude(cfg.Anthropic.APIKey, cfg.Anthropic.Model),
		cache,
		ai.Options{
			MaxTokens:        cfg.AI.MaxTokens,
			ArticleMaxTokens: cfg.AI.ArticleMaxTokens,
			Timeout:          cfg.AI.Timeout,
			HistorySize:      cfg.AI.HistorySize,
		},
		notifier.Logger(),
	)
}

func loadDeviceFile(path string) (*power.DeviceList, error) {
	if path == "" || path == "-" {
		return power.LoadDevices(os.Stdin, power.FormatYAML)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening device file: %w", err)
	}
	defer f.Close()
	return power.LoadDevices(f, power.FormatFromPath(path))
}
