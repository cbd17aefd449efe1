package ui

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/iamgilwell/hemat/internal/power"
)

// DeviceTable lists the devices being calculated.
type DeviceTable struct {
	app   *App
	table *tview.Table
}

// NewDeviceTable creates the device table.
func NewDeviceTable(app *App) *DeviceTable {
	table := tview.NewTable().
		SetSelectable(true, false).
		SetFixed(1, 0).
		SetSeparator(tview.Borders.Vertical)

	table.SetBorder(true).
		SetTitle(" Kalkulator Penggunaan Listrik Rumah ").
		SetBorderPadding(0, 0, 0, 0)

	dt := &DeviceTable{app: app, table: table}
	dt.setHeaders()
	return dt
}

func (dt *DeviceTable) setHeaders() {
	headers := []string{"#", "PERANGKAT", "DAYA (W)", "JAM/HARI", "JUMLAH", "KATEGORI", "kWh/BULAN"}
	for i, h := range headers {
		cell := tview.NewTableCell(h).
			SetTextColor(tcell.ColorYellow).
			SetAttributes(tcell.AttrBold).
			SetSelectable(false).
			SetExpansion(1)
		dt.table.SetCell(0, i, cell)
	}
}

// Update redraws the rows. Monthly kWh comes from the last report, matched
// by device id; excluded devices show a dash.
func (dt *DeviceTable) Update(devices []power.Device) {
	monthly := map[string]float64{}
	if report, _ := dt.app.session.Last(); report != nil {
		for _, d := range report.Result.Devices {
			monthly[d.ID] = d.MonthlyKWh
		}
	}

	for r := dt.table.GetRowCount() - 1; r >= 1; r-- {
		dt.table.RemoveRow(r)
	}

	for i, d := range devices {
		row := i + 1

		nameColor := tcell.ColorWhite
		name := d.Name
		if !d.Complete() {
			nameColor = tcell.ColorGray
			if name == "" {
				name = "(belum diisi)"
			}
		}

		hoursColor := tcell.ColorWhite
		if d.DailyUsageHours > power.MaxDailyHours {
			hoursColor = tcell.ColorRed
		}

		kwh := "-"
		if v, ok := monthly[d.ID]; ok {
			kwh = fmt.Sprintf("%.2f", v)
		}

		dt.table.SetCell(row, 0, tview.NewTableCell(fmt.Sprintf("%d", row)).SetTextColor(tcell.ColorGray))
		dt.table.SetCell(row, 1, tview.NewTableCell(truncate(name, 30)).SetTextColor(nameColor))
		dt.table.SetCell(row, 2, tview.NewTableCell(fmt.Sprintf("%g", d.PowerWatts)).SetTextColor(tcell.ColorWhite))
		dt.table.SetCell(row, 3, tview.NewTableCell(fmt.Sprintf("%g", d.DailyUsageHours)).SetTextColor(hoursColor))
		dt.table.SetCell(row, 4, tview.NewTableCell(fmt.Sprintf("%d", d.Quantity)).SetTextColor(tcell.ColorWhite))
		dt.table.SetCell(row, 5, tview.NewTableCell(power.Classify(d.Name).String()).SetTextColor(tcell.ColorTeal))
		dt.table.SetCell(row, 6, tview.NewTableCell(kwh).SetTextColor(tcell.ColorGreen))
	}
}

// SelectedIndex returns the index of the selected device, or -1.
func (dt *DeviceTable) SelectedIndex() int {
	row, _ := dt.table.GetSelection()
	if row < 1 {
		return -1
	}
	return row - 1
}
