package power

import (
	"errors"
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const eps = 1e-9

func TestCalculateSingleDevice(t *testing.T) {
	result := Calculate([]Device{{ID: "1", Name: "TV", PowerWatts: 100, DailyUsageHours: 8, Quantity: 2}})

	require.Len(t, result.Devices, 1)
	assert.InDelta(t, 1.6, result.Devices[0].DailyKWh, eps)
	assert.InDelta(t, 48.0, result.Devices[0].MonthlyKWh, eps)
	assert.Equal(t, "TV", result.Devices[0].Name)
}

func TestCalculateAggregation(t *testing.T) {
	result := Calculate([]Device{
		{ID: "a", Name: "A", PowerWatts: 100, DailyUsageHours: 8, Quantity: 1},
		{ID: "b", Name: "B", PowerWatts: 50, DailyUsageHours: 10, Quantity: 2},
	})

	assert.InDelta(t, 1.8, result.DailyTotalKWh, eps)
	assert.InDelta(t, 54.0, result.MonthlyTotalKWh, eps)
	assert.InDelta(t, 81000.0, EstimateMonthlyCost(result.MonthlyTotalKWh, 1500), 1e-6)
}

func TestCalculateFiltering(t *testing.T) {
	devices := []Device{
		{ID: "1", Name: "", PowerWatts: 100, DailyUsageHours: 1, Quantity: 1},
		{ID: "2", Name: "Kipas", PowerWatts: 0, DailyUsageHours: 5, Quantity: 1},
		{ID: "3", Name: "Pompa", PowerWatts: -10, DailyUsageHours: 5, Quantity: 1},
		{ID: "4", Name: " ", PowerWatts: 5, DailyUsageHours: 2, Quantity: 1},
	}

	result := Calculate(devices)

	require.Len(t, result.Devices, 1)
	// whitespace is not trimmed, so " " still counts as a name
	assert.Equal(t, "4", result.Devices[0].ID)
	for _, d := range result.Devices {
		assert.NotEmpty(t, d.Name)
		assert.Greater(t, d.PowerWatts, 0.0)
	}
}

func TestCalculatePreservesOrder(t *testing.T) {
	result := Calculate([]Device{
		{ID: "x", Name: "X", PowerWatts: 10, DailyUsageHours: 1, Quantity: 1},
		{ID: "y", Name: "Y", PowerWatts: 0, DailyUsageHours: 1, Quantity: 1},
		{ID: "z", Name: "Z", PowerWatts: 5, DailyUsageHours: 1, Quantity: 1},
	})

	require.Len(t, result.Devices, 2)
	assert.Equal(t, "x", result.Devices[0].ID)
	assert.Equal(t, "z", result.Devices[1].ID)
}

func TestCalculateEmpty(t *testing.T) {
	result := Calculate(nil)

	assert.Zero(t, result.DailyTotalKWh)
	assert.Zero(t, result.MonthlyTotalKWh)
	assert.NotNil(t, result.Devices)
	assert.Empty(t, result.Devices)

	series := ToChartSeries(result)
	assert.NotNil(t, series)
	assert.Empty(t, series)
}

func TestCalculateIdempotent(t *testing.T) {
	devices := []Device{
		{ID: "1", Name: "AC", PowerWatts: 750, DailyUsageHours: 6, Quantity: 1},
		{ID: "2", Name: "Setrika", PowerWatts: 350, DailyUsageHours: 0.5, Quantity: 1},
	}
	snapshot := append([]Device(nil), devices...)

	first := Calculate(devices)
	second := Calculate(devices)

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, devices, "inputs must not be mutated")
}

func TestCalculateEndToEnd(t *testing.T) {
	result := Calculate([]Device{
		{ID: "1", Name: "AC", PowerWatts: 750, DailyUsageHours: 6, Quantity: 1},
		{ID: "2", Name: "Lampu LED", PowerWatts: 10, DailyUsageHours: 10, Quantity: 5},
		{ID: "3", Name: "Kulkas", PowerWatts: 150, DailyUsageHours: 24, Quantity: 1},
	})

	require.Len(t, result.Devices, 3)
	wantDaily := []float64{4.5, 0.5, 3.6}
	wantMonthly := []float64{135.0, 15.0, 108.0}
	for i, d := range result.Devices {
		assert.InDelta(t, wantDaily[i], d.DailyKWh, eps, d.Name)
		assert.InDelta(t, wantMonthly[i], d.MonthlyKWh, eps, d.Name)
	}
	assert.InDelta(t, 258.0, result.MonthlyTotalKWh, eps)
	assert.InDelta(t, 387000.0, EstimateMonthlyCost(result.MonthlyTotalKWh, 1500), 1e-6)
}

func TestCalculateNaNPropagates(t *testing.T) {
	result := Calculate([]Device{
		{Name: "A", PowerWatts: 100, DailyUsageHours: math.NaN(), Quantity: 1},
		{Name: "B", PowerWatts: 100, DailyUsageHours: 1, Quantity: 1},
	})

	require.Len(t, result.Devices, 2)
	assert.True(t, math.IsNaN(result.DailyTotalKWh))
	assert.True(t, math.IsNaN(result.MonthlyTotalKWh))
}

func TestCalculateNegativeHoursNotRejected(t *testing.T) {
	result := Calculate([]Device{{Name: "A", PowerWatts: 100, DailyUsageHours: -2, Quantity: 1}})

	require.Len(t, result.Devices, 1)
	assert.InDelta(t, -0.2, result.DailyTotalKWh, eps)
}

func TestEstimateMonthlyCost(t *testing.T) {
	assert.Equal(t, 81000.0, EstimateMonthlyCost(54.0, 1500))
	assert.Zero(t, EstimateMonthlyCost(0, 1500))
	assert.InDelta(t, 0.1, EstimateMonthlyCost(1, 0.1), eps)
}

func TestToChartSeriesColorsCycle(t *testing.T) {
	var devices []Device
	for i := 0; i < 12; i++ {
		devices = append(devices, Device{Name: "D", PowerWatts: float64(i + 1), DailyUsageHours: 1, Quantity: 1})
	}
	result := Calculate(devices)

	series := ToChartSeries(result)

	require.Len(t, series, 12)
	for i, s := range series {
		assert.Equal(t, DefaultPalette[i%len(DefaultPalette)], s.Color)
		assert.Equal(t, result.Devices[i].MonthlyKWh, s.Value)
		assert.Equal(t, "D", s.Name)
	}
}

func TestChartSeriesCustomPalette(t *testing.T) {
	result := Calculate([]Device{
		{Name: "A", PowerWatts: 1, DailyUsageHours: 1, Quantity: 1},
		{Name: "B", PowerWatts: 1, DailyUsageHours: 1, Quantity: 1},
		{Name: "C", PowerWatts: 1, DailyUsageHours: 1, Quantity: 1},
	})

	series := ChartSeries(result, []string{"red", "blue"})

	assert.Equal(t, []string{"red", "blue", "red"}, []string{series[0].Color, series[1].Color, series[2].Color})
	assert.Equal(t, DefaultPalette[0], ChartSeries(result, nil)[0].Color)
}

func TestCalculatorRunReportsExcluded(t *testing.T) {
	calc := NewCalculator(Options{})

	report, err := calc.Run([]Device{
		{ID: "1", Name: "", PowerWatts: 10, DailyUsageHours: 1, Quantity: 1},
		{ID: "2", Name: "TV", PowerWatts: 100, DailyUsageHours: 30, Quantity: 1},
		{ID: "3", Name: "Radio", PowerWatts: 0, DailyUsageHours: 1, Quantity: 1},
	})

	require.NoError(t, err)
	require.Len(t, report.Result.Devices, 1)
	assert.InDelta(t, 3.0, report.Result.DailyTotalKWh, eps, "hours above 24 are accepted by default")
	require.Len(t, report.Chart, 1)
	assert.Equal(t, []Warning{
		{Index: 0, ID: "1", Reason: ReasonMissingName},
		{Index: 2, ID: "3", Name: "Radio", Reason: ReasonNoPower},
	}, report.Excluded)
}

func TestCalculatorStrictHours(t *testing.T) {
	calc := NewCalculator(Options{StrictHours: true})

	tests := []struct {
		name   string
		device Device
		field  string
	}{
		{"hours above 24", Device{ID: "a", Name: "AC", PowerWatts: 100, DailyUsageHours: 25, Quantity: 1}, "dailyUsage"},
		{"negative hours", Device{ID: "b", Name: "AC", PowerWatts: 100, DailyUsageHours: -1, Quantity: 1}, "dailyUsage"},
		{"zero quantity", Device{ID: "c", Name: "AC", PowerWatts: 100, DailyUsageHours: 1, Quantity: 0}, "quantity"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := calc.Run([]Device{tt.device})

			var invalid *InvalidDeviceError
			require.True(t, errors.As(err, &invalid), "got %v", err)
			assert.Equal(t, tt.field, invalid.Field)
			assert.Equal(t, tt.device.ID, invalid.ID)
			assert.Equal(t, 0, invalid.Index)
		})
	}

	t.Run("excluded devices are not validated", func(t *testing.T) {
		report, err := calc.Run([]Device{{Name: "", PowerWatts: 100, DailyUsageHours: 99, Quantity: 0}})
		require.NoError(t, err)
		assert.Empty(t, report.Result.Devices)
	})

	t.Run("24 hours is allowed", func(t *testing.T) {
		report, err := calc.Run([]Device{{Name: "Kulkas", PowerWatts: 150, DailyUsageHours: 24, Quantity: 1}})
		require.NoError(t, err)
		assert.InDelta(t, 3.6, report.Result.DailyTotalKWh, eps)
	})
}

func TestValidateInput(t *testing.T) {
	assert.NoError(t, ValidateInput(Device{Name: "TV", PowerWatts: 0, DailyUsageHours: 30, Quantity: 1}))
	assert.Error(t, ValidateInput(Device{Name: "TV", PowerWatts: -1, Quantity: 1}))
	assert.Error(t, ValidateInput(Device{Name: "TV", PowerWatts: 1, DailyUsageHours: -0.5, Quantity: 1}))
	assert.Error(t, ValidateInput(Device{Name: "TV", PowerWatts: 1, Quantity: 0}))
}

func TestCalculateConcurrent(t *testing.T) {
	devices := []Device{
		{Name: "AC", PowerWatts: 750, DailyUsageHours: 6, Quantity: 1},
		{Name: "Kulkas", PowerWatts: 150, DailyUsageHours: 24, Quantity: 1},
	}
	want := Calculate(devices)

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.Equal(t, want, Calculate(devices))
		}()
	}
	wg.Wait()
}
