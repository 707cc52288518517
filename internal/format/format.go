// Package format renders dashboard values the way the Brazilian client reads
// them: R$ 1.234,56, 1.235, 12,34%.
package format

import (
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/analytics"
)

var printer = message.NewPrinter(language.BrazilianPortuguese)

var shortMonths = [...]string{"jan.", "fev.", "mar.", "abr.", "mai.", "jun.", "jul.", "ago.", "set.", "out.", "nov.", "dez."}

// Currency formats reais with two decimals.
func Currency(v float64) string {
	return "R$ " + printer.Sprintf("%.2f", finite(v))
}

// Number rounds to an integer with thousands separators.
func Number(v float64) string {
	return printer.Sprintf("%d", int64(math.Round(finite(v))))
}

// Int formats a count with thousands separators.
func Int(v int64) string {
	return printer.Sprintf("%d", v)
}

// Percent formats a percentage with two decimals and no grouping.
func Percent(v float64) string {
	return strings.Replace(strconv.FormatFloat(finite(v), 'f', 2, 64), ".", ",", 1) + "%"
}

// Multiple formats a ratio such as ROAS.
func Multiple(v float64) string {
	return strconv.FormatFloat(finite(v), 'f', 2, 64) + "x"
}

// Date formats YYYY-MM-DD as dd/mm. Unparseable input is returned unchanged.
func Date(s string) string {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return s
	}
	return t.Format("02/01")
}

// DateFull formats YYYY-MM-DD as "20 de jan. de 2026".
func DateFull(s string) string {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return s
	}
	return t.Format("02") + " de " + shortMonths[t.Month()-1] + " de " + strconv.Itoa(t.Year())
}

// Card renders a KPI card value; absent cards are a dash.
func Card(c analytics.Card) string {
	if c.Absent {
		return "—"
	}
	switch c.Format {
	case analytics.FormatCurrency:
		return Currency(c.Value)
	case analytics.FormatPercent:
		return Percent(c.Value)
	case analytics.FormatMultiple:
		return Multiple(c.Value)
	default:
		return Number(c.Value)
	}
}

// Cost renders a cost per conversion, a dash when there were no conversions.
func Cost(v float64) string {
	if v <= 0 {
		return "—"
	}
	return Currency(v)
}

func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}
