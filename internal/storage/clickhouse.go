package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/models"
)

// ClickHouseStore reads the reporting replica of the tables. db is opened
// with clickhouse.OpenDB.
type ClickHouseStore struct {
	db *sql.DB
}

func NewClickHouseStore(db *sql.DB) *ClickHouseStore {
	return &ClickHouseStore{db: db}
}

func (s *ClickHouseStore) DailySummaries(ctx context.Context, product, start, end string) ([]models.DailySummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			toInt64(id), toString(date), account_id, product_name,
			toFloat64(total_spend), toInt64(total_impressions), toInt64(total_link_clicks),
			toInt64(total_page_views), toInt64(total_leads), toInt64(total_purchases),
			toFloat64(total_revenue),
			toInt64(sheet_sales), toFloat64(sheet_revenue), toInt64(sheet_leads), toInt64(sheet_mqls),
			toFloat64(cpm), toFloat64(ctr), toFloat64(cpl), toFloat64(cpa), toFloat64(roas),
			toFloat64(load_rate), toFloat64(conversion_rate), toFloat64(mql_rate)
		FROM daily_summary FINAL
		WHERE product_name = ? AND date BETWEEN toDate(?) AND toDate(?)
		ORDER BY date ASC`, product, start, end)
	if err != nil {
		return nil, fmt.Errorf("query daily summary: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	out := []models.DailySummary{}
	for rows.Next() {
		var d models.DailySummary
		if err := rows.Scan(
			&d.ID, &d.Date, &d.AccountID, &d.ProductName,
			&d.TotalSpend, &d.TotalImpressions, &d.TotalLinkClicks,
			&d.TotalPageViews, &d.TotalLeads, &d.TotalPurchases,
			&d.TotalRevenue,
			&d.SheetSales, &d.SheetRevenue, &d.SheetLeads, &d.SheetMqls,
			&d.CPM, &d.CTR, &d.CPL, &d.CPA, &d.ROAS,
			&d.LoadRate, &d.ConversionRate, &d.MqlRate,
		); err != nil {
			return nil, fmt.Errorf("scan daily summary: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *ClickHouseStore) LatestDailySummaryDate(ctx context.Context, product string) (string, error) {
	var date string
	err := s.db.QueryRowContext(ctx, `
		SELECT toString(max(date)) FROM daily_summary
		WHERE product_name = ?
		HAVING count() > 0`, product).Scan(&date)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("query latest daily summary date: %w", err)
	}
	return date, nil
}

func (s *ClickHouseStore) AdCreatives(ctx context.Context, product, start, end string) ([]models.AdCreative, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT
			toInt64(id), toString(date), account_id, campaign_name, product_name, ad_name, ad_id,
			toFloat64(spend), toInt64(impressions), toInt64(link_clicks),
			toInt64(leads), toInt64(purchases),
			toInt64(sheet_purchases), toInt64(sheet_leads_utm), toInt64(sheet_mqls),
			toFloat64(cpl), toFloat64(cpa), toFloat64(ctr), instagram_permalink
		FROM ad_creatives FINAL
		WHERE product_name = ? AND date BETWEEN toDate(?) AND toDate(?)
		ORDER BY spend DESC, id ASC`, product, start, end)
	if err != nil {
		return nil, fmt.Errorf("query ad creatives: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	out := []models.AdCreative{}
	for rows.Next() {
		var c models.AdCreative
		if err := rows.Scan(
			&c.ID, &c.Date, &c.AccountID, &c.CampaignName, &c.ProductName, &c.AdName, &c.AdID,
			&c.Spend, &c.Impressions, &c.LinkClicks,
			&c.Leads, &c.Purchases,
			&c.SheetPurchases, &c.SheetLeadsUTM, &c.SheetMqls,
			&c.CPL, &c.CPA, &c.CTR, &c.InstagramPermalink,
		); err != nil {
			return nil, fmt.Errorf("scan ad creative: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *ClickHouseStore) UnattributedLeads(ctx context.Context, product, start, end string) ([]models.UnattributedLead, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT toString(date), lead_name, phone, form_name, reason
		FROM unattributed_mql_leads
		WHERE product_name = ? AND date BETWEEN toDate(?) AND toDate(?)
		ORDER BY date DESC`, product, start, end)
	if err != nil {
		return nil, fmt.Errorf("query unattributed leads: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	out := []models.UnattributedLead{}
	for rows.Next() {
		var l models.UnattributedLead
		if err := rows.Scan(&l.Date, &l.Name, &l.Phone, &l.Form, &l.Reason); err != nil {
			return nil, fmt.Errorf("scan unattributed lead: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
