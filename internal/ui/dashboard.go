package ui

import (
	"fmt"

	"github.com/rivo/tview"

	"github.com/iamgilwell/hemat/internal/power"
)

// Dashboard is the results bar.
type Dashboard struct {
	app  *App
	view *tview.TextView
}

// NewDashboard creates the dashboard widget.
func NewDashboard(app *App) *Dashboard {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetTextAlign(tview.AlignLeft)
	tv.SetBorder(true).
		SetTitle(" Hasil Perhitungan ").
		SetBorderPadding(0, 0, 1, 1)

	return &Dashboard{app: app, view: tv}
}

// Update refreshes the dashboard display.
func (d *Dashboard) Update() {
	aiStatus := "[red]OFF"
	if d.app.aiEngine != nil {
		aiStatus = "[green]ON"
	}

	report, cost := d.app.session.Last()
	if report == nil {
		d.view.SetText(fmt.Sprintf(
			" [yellow]Tarif:[white] %s/kWh | [yellow]AI:[white] %s[white] | Tekan [yellow]c[white] untuk menghitung",
			power.FormatRupiah(d.app.session.Rate()), aiStatus))
		return
	}

	d.view.SetText(fmt.Sprintf(
		" [yellow]Harian:[white] %s | [yellow]Bulanan:[white] %s | [yellow]Biaya:[green] %s[white]/bulan | "+
			"[yellow]Tarif:[white] %s/kWh | [yellow]Perangkat:[white] %d (dilewati %d) | [yellow]AI:[white] %s",
		power.FormatKWh(report.Result.DailyTotalKWh),
		power.FormatKWh(report.Result.MonthlyTotalKWh),
		power.FormatRupiah(cost),
		power.FormatRupiah(d.app.session.Rate()),
		len(report.Result.Devices), len(report.Excluded),
		aiStatus,
	))
}
