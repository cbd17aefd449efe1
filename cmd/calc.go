package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/iamgilwell/hemat/internal/config"
	"github.com/iamgilwell/hemat/internal/power"
)

var (
	calcFile   string
	calcRate   float64
	calcFormat string
	calcStrict bool
)

var calcCmd = &cobra.Command{
	Use:   "calc",
	Short: "Calculate consumption and cost for a device file",
	Long: `Reads devices from a YAML, JSON or CSV file (or YAML from stdin) and
prints per-device daily and monthly kWh, the monthly total and the
estimated cost at the given tariff.`,
	RunE: runCalc,
}

func init() {
	calcCmd.Flags().StringVarP(&calcFile, "file", "f", "", "device file (yaml, json or csv; - for stdin)")
	calcCmd.Flags().Float64Var(&calcRate, "rate", 0, "tariff in IDR per kWh (default from file or config)")
	calcCmd.Flags().StringVar(&calcFormat, "format", "table", "output format: table or json")
	calcCmd.Flags().BoolVar(&calcStrict, "strict", false, "reject usage hours outside 0-24 and quantities below 1")
}

// calcOutput is the JSON shape printed by calc and analyze.
type calcOutput struct {
	power.Result
	Rate                 float64            `json:"rate"`
	MonthlyCost          float64            `json:"monthlyCost"`
	MonthlyCostFormatted string             `json:"monthlyCostFormatted"`
	Chart                []power.ChartSlice `json:"chart"`
	Excluded             []power.Warning    `json:"excluded"`
}

type calculation struct {
	report *power.Report
	rate   float64
	cost   float64
}

func runCalc(cmd *cobra.Command, args []string) error {
	cfg := config.Global
	if calcFormat != "table" && calcFormat != "json" {
		return fmt.Errorf("unknown format %q", calcFormat)
	}

	notifier, err := newNotifier(cfg, os.Stderr)
	if err != nil {
		return err
	}
	defer notifier.Close()

	calc, err := calculateFile(cfg, calcFile, calcRate, calcStrict)
	if err != nil {
		return err
	}
	if calcFormat == "json" {
		return printJSON(calc.output())
	}

	notifier.Excluded(calc.report.Excluded)
	printCalculation(calc)
	notifier.Calculation("cli", calc.report.Result, calc.cost)
	return nil
}

func calculateFile(cfg *config.Config, path string, rate float64, strict bool) (*calculation, error) {
	list, err := loadDeviceFile(path)
	if err != nil {
		return nil, err
	}

	if err := power.ValidateDevices(list.Devices); err != nil {
		return nil, err
	}

	if rate == 0 {
		rate = list.Rate
	}
	rate = cfg.ClampRate(rate)

	report, err := newCalculator(cfg, strict).Run(list.Devices)
	if err != nil {
		return nil, err
	}

	return &calculation{
		report: report,
		rate:   rate,
		cost:   power.EstimateMonthlyCost(report.Result.MonthlyTotalKWh, rate),
	}, nil
}

func (c *calculation) output() calcOutput {
	return calcOutput{
		Result:               c.report.Result,
		Rate:                 c.rate,
		MonthlyCost:          c.cost,
		MonthlyCostFormatted: power.FormatRupiah(c.cost),
		Chart:                c.report.Chart,
		Excluded:             c.report.Excluded,
	}
}

func printCalculation(c *calculation) {
	result := c.report.Result

	fmt.Printf("%-24s %8s %8s %6s %12s %12s  %s\n", "PERANGKAT", "WATT", "JAM", "UNIT", "kWh/HARI", "kWh/BULAN", "KATEGORI")
	fmt.Println(strings.Repeat("─", 90))
	for _, d := range result.Devices {
		fmt.Printf("%-24s %8g %8g %6d %12.2f %12.2f  %s\n",
			truncateName(d.Name, 24), d.PowerWatts, d.DailyUsageHours, d.Quantity,
			d.DailyKWh, d.MonthlyKWh, power.Classify(d.Name))
	}
	fmt.Println(strings.Repeat("─", 90))
	fmt.Printf("Total harian:   %s\n", power.FormatKWh(result.DailyTotalKWh))
	fmt.Printf("Total bulanan:  %s\n", power.FormatKWh(result.MonthlyTotalKWh))
	fmt.Printf("Tarif:          %s/kWh\n", power.FormatRupiah(c.rate))
	fmt.Printf("Estimasi biaya: %s/bulan\n", power.FormatRupiah(c.cost))
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncateName(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
