package format

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/analytics"
)

func TestCurrency(t *testing.T) {
	assert.Equal(t, "R$ 1.234,56", Currency(1234.56))
	assert.Equal(t, "R$ 0,00", Currency(0))
	assert.Equal(t, "R$ 0,00", Currency(math.NaN()))
	assert.Equal(t, "R$ 1.000.000,00", Currency(1e6))
}

func TestNumber(t *testing.T) {
	assert.Equal(t, "1.235", Number(1234.6))
	assert.Equal(t, "12", Number(12))
	assert.Equal(t, "1.500.000", Int(1_500_000))
}

func TestPercentAndMultiple(t *testing.T) {
	assert.Equal(t, "12,35%", Percent(12.345678))
	assert.Equal(t, "0,00%", Percent(math.Inf(1)))
	assert.Equal(t, "1234,50%", Percent(1234.5))
	assert.Equal(t, "4.00x", Multiple(4))
}

func TestDates(t *testing.T) {
	assert.Equal(t, "03/02", Date("2026-02-03"))
	assert.Equal(t, "20 de jan. de 2026", DateFull("2026-01-20"))
	assert.Equal(t, "01 de dez. de 2025", DateFull("2025-12-01"))
	assert.Equal(t, "bad", Date("bad"))
}

func TestCard(t *testing.T) {
	assert.Equal(t, "—", Card(analytics.Card{Absent: true, Format: analytics.FormatCurrency}))
	assert.Equal(t, "R$ 50,00", Card(analytics.Card{Value: 50, Format: analytics.FormatCurrency}))
	assert.Equal(t, "25,00%", Card(analytics.Card{Value: 25, Format: analytics.FormatPercent}))
	assert.Equal(t, "3.50x", Card(analytics.Card{Value: 3.5, Format: analytics.FormatMultiple}))
	assert.Equal(t, "20", Card(analytics.Card{Value: 20, Format: analytics.FormatNumber}))
	assert.Equal(t, "—", Cost(0))
}
