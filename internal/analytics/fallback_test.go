package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/models"
)

func TestFallbackFromCreatives(t *testing.T) {
	rows := []models.AdCreative{
		{Date: "2026-02-02T12:00:00", AdID: "1", Spend: 20, Impressions: 2000, LinkClicks: 20, Leads: 4, SheetLeadsUTM: 2, SheetMqls: 1},
		{Date: "2026-02-01", AdID: "1", Spend: 10, Impressions: 1000, LinkClicks: 10, Leads: 2, Purchases: 1, SheetMqls: 1},
		{Date: "2026-02-02", AdID: "2", Spend: 5, Impressions: 1000, LinkClicks: 5},
		{Date: "", AdID: "3", Spend: 999},
	}

	m := FallbackFromCreatives("upgrade-persona", rows)
	require.NotNil(t, m)
	require.Len(t, m.DailyData, 2)

	d1, d2 := m.DailyData[0], m.DailyData[1]
	assert.Equal(t, "2026-02-01", d1.Date)
	assert.Equal(t, "upgrade-persona", d1.ProductName)
	assert.Equal(t, 10.0, d1.TotalSpend)
	assert.InDelta(t, 5.0, d1.CPL, 1e-9)
	assert.InDelta(t, 50.0, d1.MqlRate, 1e-9)
	assert.InDelta(t, 10.0, d1.CPM, 1e-9)

	assert.Equal(t, "2026-02-02", d2.Date)
	assert.Equal(t, 25.0, d2.TotalSpend)
	assert.Equal(t, int64(3000), d2.TotalImpressions)
	// sheet leads from UTM win for the daily MQL rate
	assert.InDelta(t, 50.0, d2.MqlRate, 1e-9)
	assert.Zero(t, d2.TotalPageViews)
	assert.Zero(t, d2.SheetSales)

	assert.Equal(t, 35.0, m.Spend)
	assert.Equal(t, int64(6), m.Leads)
	assert.Equal(t, int64(1), m.Purchases)
	assert.Equal(t, int64(2), m.SheetMqls)
	assert.InDelta(t, 35.0/6, m.CPL, 1e-9)
	assert.InDelta(t, 1.0, m.CPC, 1e-9)
	assert.InDelta(t, 35.0/4000*1000, m.CPM, 1e-9)
	assert.InDelta(t, 2.0/6*100, m.MqlRate, 1e-9)
	assert.Zero(t, m.CPA)
	assert.Zero(t, m.ROAS)
	assert.Zero(t, m.LoadRate)
	assert.Zero(t, m.ConversionRate)
	assert.Zero(t, m.ConversionRateClicks)
	assert.Equal(t, 2, m.Days)
}

func TestFallbackFromCreativesNoDates(t *testing.T) {
	assert.Nil(t, FallbackFromCreatives("x", nil))
	assert.Nil(t, FallbackFromCreatives("x", []models.AdCreative{{Spend: 10}}))
}
