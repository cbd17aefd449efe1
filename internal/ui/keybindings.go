package ui

import (
	"errors"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"go.uber.org/zap"

	"github.com/iamgilwell/hemat/internal/ai"
)

func setupKeybindings(app *App) {
	app.tapp.SetInputCapture(func(event *tcell.EventKey) *tcell.EventKey {
		if app.formOpen() {
			return event
		}

		switch event.Key() {
		case tcell.KeyF3:
			app.tipsPanel.ShowMetrics()
			return nil

		case tcell.KeyF5:
			calculate(app)
			return nil

		case tcell.KeyF10:
			app.stop()
			return nil

		case tcell.KeyRune:
			switch event.Rune() {
			case 'q', 'Q':
				app.stop()
				return nil
			case 'a', 'A':
				showDeviceForm(app, -1)
				return nil
			case 'e', 'E':
				if i := app.deviceTable.SelectedIndex(); i >= 0 {
					showDeviceForm(app, i)
				}
				return nil
			case 'd', 'D':
				removeSelected(app)
				return nil
			case 'c', 'C':
				calculate(app)
				return nil
			case 't', 'T':
				requestTips(app)
				return nil
			case '+', '=':
				adjustRate(app, RateStep)
				return nil
			case '-', '_':
				adjustRate(app, -RateStep)
				return nil
			}
		}

		return event
	})
}

func calculate(app *App) {
	report, cost, err := app.session.Calculate(app.calc)
	if err != nil {
		app.tipsPanel.Message("red", fmt.Sprintf("Perhitungan gagal: %v", err))
		return
	}

	app.metrics.Record("tui", report.Result, cost)
	app.notifier.Calculation("tui", report.Result, cost)
	app.deviceTable.Update(app.session.Devices())
	app.dashboard.Update()
	app.tipsPanel.ShowReport(report)
}

func removeSelected(app *App) {
	i := app.deviceTable.SelectedIndex()
	if i < 0 {
		return
	}
	if err := app.session.Remove(i); err != nil {
		if errors.Is(err, ErrLastDevice) {
			app.tipsPanel.Message("yellow", "Perangkat terakhir tidak dapat dihapus.")
			return
		}
		app.tipsPanel.Message("red", err.Error())
		return
	}
	app.deviceTable.Update(app.session.Devices())
}

func adjustRate(app *App, delta float64) {
	app.session.AdjustRate(delta)
	app.dashboard.Update()
}

func requestTips(app *App) {
	if app.aiEngine == nil {
		app.tipsPanel.Message("yellow", "AI belum dikonfigurasi. Set ANTHROPIC_API_KEY untuk mengaktifkan tips.")
		return
	}

	report, _ := app.session.Last()
	if report == nil || len(report.Result.Devices) == 0 {
		app.tipsPanel.Message("yellow", "Hitung konsumsi dulu (tekan c) sebelum meminta tips.")
		return
	}

	req := ai.AnalysisRequest{
		Devices:         report.Result.Devices,
		MonthlyTotalKWh: report.Result.MonthlyTotalKWh,
		Rate:            app.session.Rate(),
	}
	app.tipsPanel.Message("gray", "Menganalisis konsumsi listrik...")

	go func() {
		analysis, err := app.aiEngine.Analyze(app.ctx, req)
		app.tapp.QueueUpdateDraw(func() {
			if err != nil {
				app.notifier.Warn("analysis failed", zap.Error(err))
				app.tipsPanel.Message("red", fmt.Sprintf("Analisis gagal: %v", err))
				return
			}
			app.tipsPanel.ShowAnalysis(analysis)
		})
	}()
}
