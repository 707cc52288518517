package models

import "strings"

// ===========================================
// DAILY SUMMARY
// ===========================================

// DailySummary is one pre-aggregated row of the daily_summary table: the
// totals of a product on a calendar day, Meta counts next to the counts
// recorded in the sales/leads sheet.
type DailySummary struct {
	ID          int64  `json:"id"`
	Date        string `json:"date"` // YYYY-MM-DD
	AccountID   string `json:"account_id"`
	ProductName string `json:"product_name"`

	// Ad platform (Meta) counts
	TotalSpend       float64 `json:"total_spend"`
	TotalImpressions int64   `json:"total_impressions"`
	TotalLinkClicks  int64   `json:"total_link_clicks"`
	TotalPageViews   int64   `json:"total_page_views"`
	TotalLeads       int64   `json:"total_leads"`
	TotalPurchases   int64   `json:"total_purchases"`
	TotalRevenue     float64 `json:"total_revenue"`

	// Sheet (ground truth) counts
	SheetSales   int64   `json:"sheet_sales"`
	SheetRevenue float64 `json:"sheet_revenue"`
	SheetLeads   int64   `json:"sheet_leads"`
	SheetMqls    int64   `json:"sheet_mqls"`

	// Ratios as stored by the sync job
	CPM            float64 `json:"cpm"`
	CTR            float64 `json:"ctr"`
	CPL            float64 `json:"cpl"`
	CPA            float64 `json:"cpa"`
	ROAS           float64 `json:"roas"`
	LoadRate       float64 `json:"load_rate"`
	ConversionRate float64 `json:"conversion_rate"`
	MqlRate        float64 `json:"mql_rate"`
}

// Day returns the calendar date part of Date, tolerating timestamps.
func (d DailySummary) Day() string {
	return DayOf(d.Date)
}

// DayOf trims a date or timestamp string down to YYYY-MM-DD.
func DayOf(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > 10 {
		return s[:10]
	}
	return s
}
