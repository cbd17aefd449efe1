package ui

import (
	"fmt"
	"strings"

	"github.com/rivo/tview"

	"github.com/iamgilwell/hemat/internal/power"
)

// renderBars draws the chart series as horizontal bars, one line per slice,
// using tview color tags. width is the bar length for the largest slice.
func renderBars(chart []power.ChartSlice, width int) []string {
	if len(chart) == 0 || width <= 0 {
		return nil
	}

	var total, max float64
	nameWidth := 0
	for _, c := range chart {
		total += c.Value
		if c.Value > max {
			max = c.Value
		}
		if n := len([]rune(c.Name)); n > nameWidth {
			nameWidth = n
		}
	}
	if nameWidth > 20 {
		nameWidth = 20
	}

	lines := make([]string, 0, len(chart))
	for _, c := range chart {
		// Negative or NaN values draw no bar.
		n := 0
		if max > 0 && c.Value > 0 {
			n = int(c.Value / max * float64(width))
			if n < 1 {
				n = 1
			}
		}
		pct := 0.0
		if total > 0 {
			pct = c.Value / total * 100
		}
		name := fmt.Sprintf("%-*s", nameWidth, truncate(c.Name, nameWidth))
		lines = append(lines, fmt.Sprintf("%s [%s]%s[white] %5.1f%% %s",
			tview.Escape(name), c.Color, strings.Repeat("█", n), pct, power.FormatKWh(c.Value)))
	}
	return lines
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}
