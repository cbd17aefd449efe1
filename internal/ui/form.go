package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/rivo/tview"

	"github.com/iamgilwell/hemat/internal/power"
)

// parseDeviceFields converts form text into a Device and checks the
// boundary rules.
func parseDeviceFields(name, watts, hours, quantity string) (power.Device, error) {
	d := power.Device{Name: strings.TrimSpace(name), Quantity: 1}

	var err error
	if d.PowerWatts, err = parseNumber(watts); err != nil {
		return power.Device{}, fmt.Errorf("daya: %w", err)
	}
	if d.DailyUsageHours, err = parseNumber(hours); err != nil {
		return power.Device{}, fmt.Errorf("jam/hari: %w", err)
	}
	if q := strings.TrimSpace(quantity); q != "" {
		if d.Quantity, err = strconv.Atoi(q); err != nil {
			return power.Device{}, fmt.Errorf("jumlah: bukan bilangan bulat %q", q)
		}
	}

	if err := power.ValidateInput(d); err != nil {
		return power.Device{}, err
	}
	return d, nil
}

// parseNumber accepts a comma as the decimal separator.
func parseNumber(s string) (float64, error) {
	s = strings.TrimSpace(strings.ReplaceAll(s, ",", "."))
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("bukan angka %q", s)
	}
	return v, nil
}

// showDeviceForm opens a modal form. index < 0 adds a new device.
func showDeviceForm(app *App, index int) {
	current := power.Device{Quantity: 1}
	title := " Tambah Perangkat "
	if index >= 0 {
		d, ok := app.session.Device(index)
		if !ok {
			return
		}
		current = d
		title = " Ubah Perangkat "
	}

	form := tview.NewForm()
	form.AddInputField("Nama", current.Name, 30, nil, nil).
		AddInputField("Daya (W)", formatField(current.PowerWatts), 10, nil, nil).
		AddInputField("Jam/hari", formatField(current.DailyUsageHours), 10, nil, nil).
		AddInputField("Jumlah", strconv.Itoa(current.Quantity), 10, tview.InputFieldInteger, nil)

	status := tview.NewTextView().SetDynamicColors(true)

	closeForm := func() {
		app.pages.RemovePage(pageForm)
		app.tapp.SetFocus(app.deviceTable.table)
	}

	form.AddButton("Simpan", func() {
		d, err := parseDeviceFields(
			form.GetFormItem(0).(*tview.InputField).GetText(),
			form.GetFormItem(1).(*tview.InputField).GetText(),
			form.GetFormItem(2).(*tview.InputField).GetText(),
			form.GetFormItem(3).(*tview.InputField).GetText(),
		)
		if err == nil {
			if index >= 0 {
				err = app.session.Update(index, d)
			} else {
				err = app.session.Add(d)
			}
		}
		if err != nil {
			status.SetText("[red]" + tview.Escape(err.Error()))
			return
		}

		closeForm()
		app.deviceTable.Update(app.session.Devices())
		app.tipsPanel.Message("green", fmt.Sprintf("Perangkat %q disimpan. Tekan c untuk menghitung ulang.", d.Name))
	})
	form.AddButton("Batal", closeForm)
	form.SetCancelFunc(closeForm)

	form.SetBorder(true).SetTitle(title)

	layout := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(form, 0, 1, true).
		AddItem(status, 1, 0, false)

	modal := tview.NewFlex().
		AddItem(nil, 0, 1, false).
		AddItem(tview.NewFlex().SetDirection(tview.FlexRow).
			AddItem(nil, 0, 1, false).
			AddItem(layout, 14, 0, true).
			AddItem(nil, 0, 1, false), 50, 0, true).
		AddItem(nil, 0, 1, false)

	app.pages.AddPage(pageForm, modal, true, true)
	app.tapp.SetFocus(form)
}

func formatField(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
