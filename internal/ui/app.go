package ui

import (
	"context"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/iamgilwell/hemat/internal/ai"
	"github.com/iamgilwell/hemat/internal/config"
	"github.com/iamgilwell/hemat/internal/notification"
	"github.com/iamgilwell/hemat/internal/power"
)

const (
	pageMain = "main"
	pageForm = "form"
)

// App is the interactive calculator.
type App struct {
	tapp     *tview.Application
	pages    *tview.Pages
	cfg      *config.Config
	session  *Session
	calc     *power.Calculator
	metrics  *power.Metrics
	aiEngine *ai.Engine
	notifier *notification.Notifier

	dashboard   *Dashboard
	deviceTable *DeviceTable
	tipsPanel   *TipsPanel

	ctx    context.Context
	cancel context.CancelFunc
}

// NewApp creates the TUI application. aiEngine may be nil.
func NewApp(
	cfg *config.Config,
	session *Session,
	calc *power.Calculator,
	metrics *power.Metrics,
	aiEngine *ai.Engine,
	notifier *notification.Notifier,
) *App {
	app := &App{
		tapp:     tview.NewApplication(),
		pages:    tview.NewPages(),
		cfg:      cfg,
		session:  session,
		calc:     calc,
		metrics:  metrics,
		aiEngine: aiEngine,
		notifier: notifier,
	}

	app.ctx, app.cancel = context.WithCancel(context.Background())

	app.dashboard = NewDashboard(app)
	app.deviceTable = NewDeviceTable(app)
	app.tipsPanel = NewTipsPanel(app)

	return app
}

// Run starts the TUI and blocks until it exits.
func (a *App) Run() error {
	// Layout: devices + results + tips/chart + footer
	mainFlex := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(a.deviceTable.table, 0, 2, true).
		AddItem(a.dashboard.view, 3, 0, false).
		AddItem(a.tipsPanel.view, 0, 2, false).
		AddItem(a.createFooter(), 1, 0, false)

	a.pages.AddPage(pageMain, mainFlex, true, true)
	a.tapp.SetRoot(a.pages, true)
	setupKeybindings(a)

	a.deviceTable.Update(a.session.Devices())
	a.dashboard.Update()
	a.tipsPanel.ShowWelcome()

	return a.tapp.Run()
}

func (a *App) createFooter() *tview.TextView {
	footer := tview.NewTextView().
		SetDynamicColors(true).
		SetText(" [yellow]a[white]:Tambah [yellow]e[white]:Ubah [yellow]d[white]:Hapus [yellow]c/F5[white]:Hitung [yellow]t[white]:Tips AI [yellow]+/-[white]:Tarif [yellow]F3[white]:Statistik [yellow]q/F10[white]:Keluar")
	footer.SetBackgroundColor(tcell.ColorDarkSlateGray)
	return footer
}

func (a *App) formOpen() bool {
	name, _ := a.pages.GetFrontPage()
	return name == pageForm
}

func (a *App) stop() {
	a.cancel()
	a.tapp.Stop()
}
