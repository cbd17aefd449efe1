package power

import (
	"math"
	"math/big"
	"strings"

	"github.com/dustin/go-humanize"
)

// humanize.FormatFloat goes through int64; beyond this magnitude the
// integer part is grouped from a big.Int instead.
const maxFormatFloat = 1e15

// FormatRupiah renders an amount the way id-ID locales show money,
// rounded to whole rupiah: 387000 -> "Rp 387.000".
func FormatRupiah(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return "Rp -"
	}
	v = math.Round(v)
	if math.Abs(v) < maxFormatFloat {
		return "Rp " + humanize.FormatFloat("#.###,", v)
	}
	return "Rp " + strings.ReplaceAll(bigGrouped(v), ",", ".")
}

// FormatKWh renders energy with two decimals, e.g. "258.00 kWh".
func FormatKWh(v float64) string {
	if math.IsNaN(v) || math.IsInf(v, 0) || math.Abs(v) < maxFormatFloat {
		return humanize.FormatFloat("#,###.##", v) + " kWh"
	}
	return bigGrouped(v) + ".00 kWh"
}

func bigGrouped(v float64) string {
	i, _ := big.NewFloat(v).Int(nil)
	return humanize.BigComma(i)
}
