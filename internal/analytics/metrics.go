package analytics

import (
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/models"
)

// Totals are the summed counters of a set of daily rows.
type Totals struct {
	Spend        float64 `json:"spend"`
	Impressions  int64   `json:"impressions"`
	LinkClicks   int64   `json:"link_clicks"`
	PageViews    int64   `json:"page_views"`
	Leads        int64   `json:"leads"`
	Purchases    int64   `json:"purchases"`
	Revenue      float64 `json:"revenue"`
	SheetSales   int64   `json:"sheet_sales"`
	SheetRevenue float64 `json:"sheet_revenue"`
	SheetLeads   int64   `json:"sheet_leads"`
	SheetMqls    int64   `json:"sheet_mqls"`
}

// RealLeads is the lead count KPIs are computed from: sheet leads when the
// sheet has any, Meta leads otherwise.
func (t Totals) RealLeads() int64 {
	return prefer(t.SheetLeads, t.Leads)
}

// AggregatedMetrics is the dashboard's headline numbers for a range.
type AggregatedMetrics struct {
	Totals

	CPM                  float64 `json:"cpm"`
	CTR                  float64 `json:"ctr"` // percent
	CPL                  float64 `json:"cpl"`
	CPC                  float64 `json:"cpc"`
	CPA                  float64 `json:"cpa"`
	ROAS                 float64 `json:"roas"`
	LoadRate             float64 `json:"load_rate"`              // percent of clicks that loaded the page
	ConversionRate       float64 `json:"conversion_rate"`        // percent of page views
	ConversionRateClicks float64 `json:"conversion_rate_clicks"` // percent of clicks
	MqlRate              float64 `json:"mql_rate"`               // percent of leads

	Days      int                   `json:"days"`
	DailyData []models.DailySummary `json:"daily_data"`
}

type totalsAcc struct {
	spend, revenue, sheetRevenue money
	impressions, linkClicks      int64
	pageViews, leads, purchases  int64
	sheetSales, sheetLeads       int64
	sheetMqls                    int64
}

func (a *totalsAcc) addDay(d models.DailySummary) {
	a.spend.add(d.TotalSpend)
	a.revenue.add(d.TotalRevenue)
	a.sheetRevenue.add(d.SheetRevenue)
	a.impressions += d.TotalImpressions
	a.linkClicks += d.TotalLinkClicks
	a.pageViews += d.TotalPageViews
	a.leads += d.TotalLeads
	a.purchases += d.TotalPurchases
	a.sheetSales += d.SheetSales
	a.sheetLeads += d.SheetLeads
	a.sheetMqls += d.SheetMqls
}

func (a *totalsAcc) totals() Totals {
	return Totals{
		Spend:        a.spend.float(),
		Impressions:  a.impressions,
		LinkClicks:   a.linkClicks,
		PageViews:    a.pageViews,
		Leads:        a.leads,
		Purchases:    a.purchases,
		Revenue:      a.revenue.float(),
		SheetSales:   a.sheetSales,
		SheetRevenue: a.sheetRevenue.float(),
		SheetLeads:   a.sheetLeads,
		SheetMqls:    a.sheetMqls,
	}
}

// AggregateMetrics sums daily summary rows and derives the KPIs from the
// sums. It returns nil when there are no rows.
func AggregateMetrics(days []models.DailySummary) *AggregatedMetrics {
	if len(days) == 0 {
		return nil
	}

	var acc totalsAcc
	for _, d := range days {
		acc.addDay(d)
	}
	t := acc.totals()

	spend := t.Spend
	imps := float64(t.Impressions)
	clicks := float64(t.LinkClicks)
	views := float64(t.PageViews)
	realLeads := float64(t.RealLeads())

	return &AggregatedMetrics{
		Totals:               t,
		CPM:                  ratio(spend, imps) * 1000,
		CTR:                  ratio(clicks, imps) * 100,
		CPL:                  ratio(spend, realLeads),
		CPC:                  ratio(spend, clicks),
		CPA:                  ratio(spend, float64(t.SheetSales)),
		ROAS:                 ratio(t.SheetRevenue, spend),
		LoadRate:             ratio(views, clicks) * 100,
		ConversionRate:       ratio(realLeads, views) * 100,
		ConversionRateClicks: ratio(realLeads, clicks) * 100,
		MqlRate:              ratio(float64(t.SheetMqls), realLeads) * 100,
		Days:                 len(days),
		DailyData:            days,
	}
}
