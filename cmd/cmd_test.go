package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iamgilwell/hemat/internal/access"
	"github.com/iamgilwell/hemat/internal/config"
	"github.com/iamgilwell/hemat/internal/content"
	"github.com/iamgilwell/hemat/internal/power"
)

func testConfig() *config.Config {
	return &config.Config{
		Calculator: config.CalculatorConfig{DefaultRate: 1500, MinRate: 100},
		Content:    config.ContentConfig{PageSize: 10, MaxPageSize: 50},
	}
}

func writeDevices(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestCalculateFile(t *testing.T) {
	path := writeDevices(t, "devices.yaml", `
rate: 1000
devices:
  - name: AC
    power: 750
    daily_usage: 6
    quantity: 1
  - name: ""
    power: 10
    daily_usage: 1
    quantity: 1
`)

	calc, err := calculateFile(testConfig(), path, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 1000.0, calc.rate, "file rate applies when no flag is given")
	assert.InDelta(t, 135.0, calc.report.Result.MonthlyTotalKWh, 1e-9)
	assert.InDelta(t, 135000.0, calc.cost, 1e-6)
	require.Len(t, calc.report.Excluded, 1)
	assert.Equal(t, power.ReasonMissingName, calc.report.Excluded[0].Reason)

	calc, err = calculateFile(testConfig(), path, 50, false)
	require.NoError(t, err)
	assert.Equal(t, 100.0, calc.rate, "rates below the minimum are raised")

	out := calc.output()
	assert.Equal(t, "Rp 13.500", out.MonthlyCostFormatted)
	assert.Len(t, out.Chart, 1)
}

func TestCalculateFileDefaultRate(t *testing.T) {
	path := writeDevices(t, "devices.csv", "name,power,hours,quantity\nKulkas,150,24,1\n")

	calc, err := calculateFile(testConfig(), path, 0, false)
	require.NoError(t, err)
	assert.Equal(t, 1500.0, calc.rate)
	assert.InDelta(t, 162000.0, calc.cost, 1e-6)
}

func TestCalculateFileStrict(t *testing.T) {
	path := writeDevices(t, "devices.json", `[{"name":"TV","power":100,"dailyUsage":30,"quantity":1}]`)

	_, err := calculateFile(testConfig(), path, 0, false)
	require.NoError(t, err)

	_, err = calculateFile(testConfig(), path, 0, true)
	var invalid *power.InvalidDeviceError
	assert.ErrorAs(t, err, &invalid)
}

func TestCalculateFileMissing(t *testing.T) {
	_, err := calculateFile(testConfig(), filepath.Join(t.TempDir(), "nope.yaml"), 0, false)
	assert.Error(t, err)
}

func TestCalculateFileDefaultsQuantity(t *testing.T) {
	path := writeDevices(t, "devices.yaml", "devices:\n  - name: AC\n    power: 750\n    daily_usage: 6\n")

	calc, err := calculateFile(testConfig(), path, 0, false)
	require.NoError(t, err)
	assert.InDelta(t, 135.0, calc.report.Result.MonthlyTotalKWh, 1e-9)
}

func TestCalculateFileRejectsInvalidDevices(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{"zero quantity", "- name: AC\n  power: 750\n  daily_usage: 6\n  quantity: 0\n", "quantity"},
		{"negative hours", "- name: AC\n  power: 750\n  daily_usage: -2\n", "dailyUsage"},
		{"negative power", "- name: AC\n  power: -1\n  daily_usage: 2\n", "power"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeDevices(t, "devices.yaml", tt.doc)
			_, err := calculateFile(testConfig(), path, 0, false)

			var invalid *power.InvalidDeviceError
			require.ErrorAs(t, err, &invalid)
			assert.Equal(t, tt.field, invalid.Field)
		})
	}
}

func TestReloadAccessMode(t *testing.T) {
	saved := cfgFile
	t.Cleanup(func() { cfgFile = saved })

	cfgFile = writeDevices(t, "config.yaml", "access:\n  read_only: true\n")
	mgr := access.NewManager([]string{"secret"}, false)

	require.NoError(t, reloadAccessMode(mgr, false))
	assert.Equal(t, access.ModeReadOnly, mgr.Mode())

	cfgFile = writeDevices(t, "config.yaml", "access:\n  read_only: false\n")
	require.NoError(t, reloadAccessMode(mgr, false))
	assert.Equal(t, access.ModeReadWrite, mgr.Mode())

	require.NoError(t, reloadAccessMode(mgr, true))
	assert.Equal(t, access.ModeReadOnly, mgr.Mode(), "--read-only wins over the file")

	cfgFile = writeDevices(t, "config.yaml", "calculator: [broken\n")
	assert.Error(t, reloadAccessMode(mgr, false))
	assert.Equal(t, access.ModeReadOnly, mgr.Mode(), "a failed reload keeps the mode")
}

func TestApplyArticleFlags(t *testing.T) {
	saved := articleFlags
	t.Cleanup(func() { articleFlags = saved })

	articleFlags.title = "  Hemat AC  "
	articleFlags.body = "Isi"
	articleFlags.summary = "Ringkas"
	articleFlags.category = "lingkungan"
	articleFlags.tags = "ac, hemat,,"
	articleFlags.publish = true

	a := &content.Article{}
	require.NoError(t, applyArticleFlags(a, nil))
	assert.Equal(t, "Hemat AC", a.Title)
	assert.Equal(t, content.CategoryEnvironment, a.Category)
	assert.Equal(t, []string{"ac", "hemat"}, a.Tags)
	assert.True(t, a.IsPublished)

	t.Run("only changed flags", func(t *testing.T) {
		articleFlags.title = "Baru"
		articleFlags.publish = false
		changed := func(name string) bool { return name == "title" }

		require.NoError(t, applyArticleFlags(a, changed))
		assert.Equal(t, "Baru", a.Title)
		assert.True(t, a.IsPublished)
		assert.Equal(t, "Isi", a.Content)
	})

	t.Run("invalid category", func(t *testing.T) {
		articleFlags.category = "olahraga"
		err := applyArticleFlags(&content.Article{}, nil)
		assert.ErrorIs(t, err, content.ErrInvalidCategory)
	})
}

func TestTruncateName(t *testing.T) {
	assert.Equal(t, "Kulkas", truncateName("Kulkas", 10))
	assert.Equal(t, "Mesin…", truncateName("Mesin Cuci", 6))
}
