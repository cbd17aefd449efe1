package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/iamgilwell/hemat/internal/ai"
	"github.com/iamgilwell/hemat/internal/notification"
	"github.com/iamgilwell/hemat/internal/power"
)

const barWidth = 30

// TipsPanel shows the chart, AI tips, metrics and messages.
type TipsPanel struct {
	app  *App
	view *tview.TextView
}

// NewTipsPanel creates the tips panel.
func NewTipsPanel(app *App) *TipsPanel {
	tv := tview.NewTextView().
		SetDynamicColors(true).
		SetScrollable(true).
		SetWordWrap(true)

	tv.SetBorder(true).
		SetTitle(" Grafik & Tips ").
		SetBorderPadding(0, 0, 1, 1)

	return &TipsPanel{app: app, view: tv}
}

// ShowWelcome displays usage hints.
func (tp *TipsPanel) ShowWelcome() {
	tp.view.SetText("[gray]Tambahkan perangkat dengan [yellow]a[gray], lalu tekan [yellow]c[gray] untuk menghitung konsumsi listrik bulanan.")
}

// Message replaces the panel content with a single line.
func (tp *TipsPanel) Message(color, text string) {
	tp.view.SetText(fmt.Sprintf("[%s]%s", color, tview.Escape(text)))
}

// ShowReport draws the chart bars and the excluded devices.
func (tp *TipsPanel) ShowReport(report *power.Report) {
	var sb strings.Builder
	sb.WriteString("[yellow]Konsumsi per Perangkat (kWh/bulan)[white]\n")

	lines := renderBars(report.Chart, barWidth)
	if len(lines) == 0 {
		sb.WriteString("[gray]Belum ada perangkat dengan nama dan daya.[white]\n")
	}
	for _, l := range lines {
		sb.WriteString(l + "\n")
	}

	if len(report.Excluded) > 0 {
		sb.WriteString("\n[yellow]Dilewati:[white]\n")
		for _, w := range report.Excluded {
			label := w.Name
			if label == "" {
				label = "baris " + fmt.Sprint(w.Index+1)
			}
			sb.WriteString(fmt.Sprintf("  [gray]%s (%s)[white]\n", tview.Escape(label), w.Reason))
		}
	}

	tp.view.SetText(sb.String())
	tp.view.ScrollToBeginning()
}

// ShowAnalysis lists the advisor's tips.
func (tp *TipsPanel) ShowAnalysis(a *ai.Analysis) {
	var sb strings.Builder

	source := ""
	switch {
	case a.Fallback:
		source = " [gray](tips bawaan)"
	case a.FromCache:
		source = " [gray](cached)"
	}
	sb.WriteString(fmt.Sprintf("[yellow]Estimasi biaya:[green] %s[white]/bulan%s[white]\n\n",
		power.FormatRupiah(a.MonthlyCost), source))

	sb.WriteString("[yellow]Tips Hemat Energi[white]\n")
	for i, t := range a.EnergySavingTips {
		sb.WriteString(fmt.Sprintf(" %d. %s\n", i+1, tview.Escape(t)))
	}
	sb.WriteString("\n[yellow]Tips Ramah Lingkungan[white]\n")
	for i, t := range a.EnvironmentalTips {
		sb.WriteString(fmt.Sprintf(" %d. %s\n", i+1, tview.Escape(t)))
	}

	tp.view.SetText(sb.String())
	tp.view.ScrollToBeginning()
}

// ShowMetrics displays calculation statistics for this session.
func (tp *TipsPanel) ShowMetrics() {
	pm := tp.app.metrics

	text := fmt.Sprintf(
		"[yellow]Statistik Perhitungan[white]\n"+
			"─────────────────────────────────────\n"+
			"Perhitungan:        %d\n"+
			"Total Bulanan:      [green]%s[white]\n"+
			"Durasi Sesi:        %s\n\n",
		pm.Served(),
		power.FormatKWh(pm.TotalMonthlyKWh()),
		pm.Uptime().Truncate(1e9),
	)

	recent := pm.Recent(5)
	if len(recent) > 0 {
		text += "[yellow]Terakhir:[white]\n"
		for _, e := range recent {
			text += fmt.Sprintf("  %s  %-4s %2d perangkat  %s  [green]%s[white]\n",
				notification.FormatTimestamp(e.Timestamp),
				e.Source, e.Devices, power.FormatKWh(e.MonthlyTotalKWh), power.FormatRupiah(e.MonthlyCost))
		}
	}

	if tp.app.aiEngine != nil {
		text += fmt.Sprintf("\nAnalisis AI:        %d\n", len(tp.app.aiEngine.History()))
	}

	tp.view.SetText(text)
}
