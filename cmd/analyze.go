package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/iamgilwell/hemat/internal/ai"
	"github.com/iamgilwell/hemat/internal/config"
	"github.com/iamgilwell/hemat/internal/power"
)

var (
	analyzeFile   string
	analyzeRate   float64
	analyzeFormat string
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Calculate a device file and ask for saving tips",
	Long: `Runs the same calculation as 'hemat calc' and asks Claude for energy
saving and environmental tips. Without an API key, or when the model
answers with something unusable, built-in tips are shown instead.`,
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVarP(&analyzeFile, "file", "f", "", "device file (yaml, json or csv; - for stdin)")
	analyzeCmd.Flags().Float64Var(&analyzeRate, "rate", 0, "tariff in IDR per kWh")
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", "table", "output format: table or json")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg := config.Global

	notifier, err := newNotifier(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer notifier.Close()

	calc, err := calculateFile(cfg, analyzeFile, analyzeRate, false)
	if err != nil {
		return err
	}

	engine := newEngine(cfg, notifier)
	if engine == nil {
		notifier.Warn("AI not configured, using built-in tips")
		engine = ai.NewEngine(ai.Offline{}, nil, ai.Options{}, notifier.Logger())
	}

	analysis, err := engine.Analyze(cmd.Context(), ai.AnalysisRequest{
		Devices:         calc.report.Result.Devices,
		MonthlyTotalKWh: calc.report.Result.MonthlyTotalKWh,
		Rate:            calc.rate,
	})
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if analyzeFormat == "json" {
		return printJSON(struct {
			calcOutput
			Analysis *ai.Analysis `json:"analysis"`
		}{calc.output(), analysis})
	}

	printCalculation(calc)
	fmt.Println()
	fmt.Printf("Biaya bulanan: %s\n", power.FormatRupiah(analysis.MonthlyCost))
	if analysis.Fallback {
		fmt.Println("(tips bawaan, AI tidak tersedia)")
	}
	fmt.Println()
	fmt.Println("Tips hemat energi:")
	for i, tip := range analysis.EnergySavingTips {
		fmt.Printf("  %d. %s\n", i+1, tip)
	}
	fmt.Println()
	fmt.Println("Tips lingkungan:")
	for i, tip := range analysis.EnvironmentalTips {
		fmt.Printf("  %d. %s\n", i+1, tip)
	}
	return nil
}
