package power

// DaysPerMonth is the billing month length used for monthly projections.
const DaysPerMonth = 30

// DefaultPalette is the chart palette used by the public site.
var DefaultPalette = []string{
	"#1e6626",
	"#1a4d6e",
	"#136e8c",
	"#0f7f9e",
	"#0084d1",
}

// Device describes one household appliance entered by a visitor.
type Device struct {
	ID              string  `json:"id" yaml:"id"`
	Name            string  `json:"name" yaml:"name"`
	PowerWatts      float64 `json:"power" yaml:"power"`
	DailyUsageHours float64 `json:"dailyUsage" yaml:"daily_usage"`
	Quantity        int     `json:"quantity" yaml:"quantity"`
}

// Complete reports whether the device takes part in a calculation.
func (d Device) Complete() bool {
	return d.Name != "" && d.PowerWatts > 0
}

// CalculatedDevice is a device together with its derived consumption.
type CalculatedDevice struct {
	Device
	DailyKWh   float64 `json:"dailyKwh"`
	MonthlyKWh float64 `json:"monthlyKwh"`
}

// Result holds the totals and per-device breakdown of one calculation.
type Result struct {
	DailyTotalKWh   float64            `json:"dailyConsumption"`
	MonthlyTotalKWh float64            `json:"monthlyConsumption"`
	Devices         []CalculatedDevice `json:"devices"`
}

// ChartSlice is one entry of a pie or bar chart.
type ChartSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
	Color string  `json:"color"`
}

// Calculate converts devices into daily and monthly kWh figures.
// Incomplete devices (empty name or no power) are skipped; the order of
// the remaining devices is preserved. Inputs are not validated here.
func Calculate(devices []Device) Result {
	calculated := make([]CalculatedDevice, 0, len(devices))
	for _, d := range devices {
		if !d.Complete() {
			continue
		}
		daily := (d.PowerWatts * d.DailyUsageHours * float64(d.Quantity)) / 1000
		calculated = append(calculated, CalculatedDevice{
			Device:     d,
			DailyKWh:   daily,
			MonthlyKWh: daily * DaysPerMonth,
		})
	}

	var totalDaily, totalMonthly float64
	for _, d := range calculated {
		totalDaily += d.DailyKWh
		totalMonthly += d.MonthlyKWh
	}

	return Result{
		DailyTotalKWh:   totalDaily,
		MonthlyTotalKWh: totalMonthly,
		Devices:         calculated,
	}
}

// EstimateMonthlyCost returns the monthly bill at the given rate per kWh.
func EstimateMonthlyCost(monthlyTotalKWh, ratePerKWh float64) float64 {
	return monthlyTotalKWh * ratePerKWh
}

// ToChartSeries maps a result onto chart slices using DefaultPalette.
func ToChartSeries(result Result) []ChartSlice {
	return ChartSeries(result, DefaultPalette)
}

// ChartSeries maps a result onto chart slices, cycling through palette by
// position. An empty palette falls back to DefaultPalette.
func ChartSeries(result Result, palette []string) []ChartSlice {
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	slices := make([]ChartSlice, 0, len(result.Devices))
	for i, d := range result.Devices {
		slices = append(slices, ChartSlice{
			Name:  d.Name,
			Value: d.MonthlyKWh,
			Color: palette[i%len(palette)],
		})
	}
	return slices
}

// Options configures a Calculator.
type Options struct {
	// StrictHours rejects devices whose usage is outside 0-24 hours or whose
	// quantity is below one.
	StrictHours bool
	Palette     []string
}

// Calculator runs calculations with a fixed set of options.
type Calculator struct {
	strictHours bool
	palette     []string
}

// NewCalculator creates a calculator with the given options.
func NewCalculator(opts Options) *Calculator {
	palette := opts.Palette
	if len(palette) == 0 {
		palette = DefaultPalette
	}
	return &Calculator{
		strictHours: opts.StrictHours,
		palette:     append([]string(nil), palette...),
	}
}

// Report is the outcome of Calculator.Run.
type Report struct {
	Result   Result       `json:"result"`
	Chart    []ChartSlice `json:"chart"`
	Excluded []Warning    `json:"excluded"`
}

// Run calculates consumption and reports which devices were left out.
// In strict mode an invalid participating device yields *InvalidDeviceError.
func (c *Calculator) Run(devices []Device) (*Report, error) {
	if c.strictHours {
		if err := validateStrict(devices); err != nil {
			return nil, err
		}
	}

	result := Calculate(devices)
	return &Report{
		Result:   result,
		Chart:    ChartSeries(result, c.palette),
		Excluded: Excluded(devices),
	}, nil
}

// Palette returns a copy of the calculator's palette.
func (c *Calculator) Palette() []string {
	return append([]string(nil), c.palette...)
}

// StrictHours reports whether strict validation is enabled.
func (c *Calculator) StrictHours() bool {
	return c.strictHours
}
