package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/iamgilwell/hemat/internal/config"
	"github.com/iamgilwell/hemat/internal/power"
	"github.com/iamgilwell/hemat/internal/ui"
)

var interactiveFile string

var interactiveCmd = &cobra.Command{
	Use:   "interactive",
	Short: "Launch the terminal calculator",
	Long:  `Launches the interactive calculator with a device table, results dashboard, consumption chart and AI tips panel.`,
	RunE:  runInteractive,
}

func init() {
	interactiveCmd.Flags().StringVarP(&interactiveFile, "file", "f", "", "preload devices from a file")
}

func runInteractive(cmd *cobra.Command, args []string) error {
	cfg := config.Global

	// The TUI owns the terminal, so console output is dropped and only the log file is written.
	notifier, err := newNotifier(cfg, io.Discard)
	if err != nil {
		return err
	}
	defer notifier.Close()

	var devices []power.Device
	rate := cfg.Calculator.DefaultRate
	if interactiveFile != "" {
		list, err := loadDeviceFile(interactiveFile)
		if err != nil {
			return err
		}
		devices = list.Devices
		rate = cfg.ClampRate(list.Rate)
	}

	session, err := ui.LoadSession(devices, rate, cfg.Calculator.MinRate)
	if err != nil {
		return err
	}
	app := ui.NewApp(cfg, session, newCalculator(cfg, false), power.NewMetrics(), newEngine(cfg, notifier), notifier)
	return app.Run()
}
