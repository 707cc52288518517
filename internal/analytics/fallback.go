package analytics

import (
	"sort"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/models"
)

type fallbackDay struct {
	spend         money
	impressions   int64
	linkClicks    int64
	leads         int64
	purchases     int64
	sheetLeadsUTM int64
	sheetMqls     int64
}

// FallbackFromCreatives rebuilds daily rows from creative rows for ranges the
// daily_summary job has not written yet. Only Meta counts and sheet MQLs
// survive the rebuild, so page views, revenue, sales and every ratio that
// depends on them are zero. It returns nil when no row carries a date.
func FallbackFromCreatives(product string, rows []models.AdCreative) *AggregatedMetrics {
	byDate := make(map[string]*fallbackDay)
	for _, r := range rows {
		d := models.DayOf(r.Date)
		if d == "" {
			continue
		}
		cur, ok := byDate[d]
		if !ok {
			cur = &fallbackDay{}
			byDate[d] = cur
		}
		cur.spend.add(r.Spend)
		cur.impressions += r.Impressions
		cur.linkClicks += r.LinkClicks
		cur.leads += r.Leads
		cur.purchases += r.Purchases
		cur.sheetLeadsUTM += r.SheetLeadsUTM
		cur.sheetMqls += r.SheetMqls
	}
	if len(byDate) == 0 {
		return nil
	}

	dates := make([]string, 0, len(byDate))
	for d := range byDate {
		dates = append(dates, d)
	}
	sort.Strings(dates)

	daily := make([]models.DailySummary, 0, len(dates))
	var total money
	for _, date := range dates {
		d := byDate[date]
		total = total.plus(d.spend)
		spend := d.spend.float()
		imps := float64(d.impressions)

		daily = append(daily, models.DailySummary{
			Date:             date,
			ProductName:      product,
			TotalSpend:       spend,
			TotalImpressions: d.impressions,
			TotalLinkClicks:  d.linkClicks,
			TotalLeads:       d.leads,
			TotalPurchases:   d.purchases,
			SheetMqls:        d.sheetMqls,
			CPM:              ratio(spend, imps) * 1000,
			CTR:              ratio(float64(d.linkClicks), imps) * 100,
			CPL:              ratio(spend, float64(d.leads)),
			MqlRate:          ratio(float64(d.sheetMqls), float64(prefer(d.sheetLeadsUTM, d.leads))) * 100,
		})
	}

	var acc totalsAcc
	for _, d := range daily {
		acc.addDay(d)
	}
	t := acc.totals()
	// exact sum of the per-day decimals, not of their float projections
	t.Spend = total.float()

	spend := t.Spend
	imps := float64(t.Impressions)
	clicks := float64(t.LinkClicks)
	leads := float64(t.Leads)

	return &AggregatedMetrics{
		Totals:    t,
		CPM:       ratio(spend, imps) * 1000,
		CTR:       ratio(clicks, imps) * 100,
		CPL:       ratio(spend, leads),
		CPC:       ratio(spend, clicks),
		MqlRate:   ratio(float64(t.SheetMqls), leads) * 100,
		Days:      len(daily),
		DailyData: daily,
	}
}
