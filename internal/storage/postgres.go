package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/models"
)

// PostgresStore reads the tables straight from the Supabase Postgres
// database (or any replica with the same schema).
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const dailySummaryColumns = `
	id, date::text, COALESCE(account_id, ''), product_name,
	COALESCE(total_spend, 0)::float8, COALESCE(total_impressions, 0)::bigint,
	COALESCE(total_link_clicks, 0)::bigint, COALESCE(total_page_views, 0)::bigint,
	COALESCE(total_leads, 0)::bigint, COALESCE(total_purchases, 0)::bigint,
	COALESCE(total_revenue, 0)::float8,
	COALESCE(sheet_sales, 0)::bigint, COALESCE(sheet_revenue, 0)::float8,
	COALESCE(sheet_leads, 0)::bigint, COALESCE(sheet_mqls, 0)::bigint,
	COALESCE(cpm, 0)::float8, COALESCE(ctr, 0)::float8, COALESCE(cpl, 0)::float8,
	COALESCE(cpa, 0)::float8, COALESCE(roas, 0)::float8, COALESCE(load_rate, 0)::float8,
	COALESCE(conversion_rate, 0)::float8, COALESCE(mql_rate, 0)::float8`

func (s *PostgresStore) DailySummaries(ctx context.Context, product, start, end string) ([]models.DailySummary, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT `+dailySummaryColumns+`
		FROM daily_summary
		WHERE product_name = $1 AND date BETWEEN $2::text::date AND $3::text::date
		ORDER BY date ASC
	`, product, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query daily summary: %w", err)
	}
	defer rows.Close()

	out := []models.DailySummary{}
	for rows.Next() {
		var d models.DailySummary
		if err := rows.Scan(
			&d.ID, &d.Date, &d.AccountID, &d.ProductName,
			&d.TotalSpend, &d.TotalImpressions, &d.TotalLinkClicks, &d.TotalPageViews,
			&d.TotalLeads, &d.TotalPurchases, &d.TotalRevenue,
			&d.SheetSales, &d.SheetRevenue, &d.SheetLeads, &d.SheetMqls,
			&d.CPM, &d.CTR, &d.CPL, &d.CPA, &d.ROAS, &d.LoadRate, &d.ConversionRate, &d.MqlRate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan daily summary: %w", err)
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

func (s *PostgresStore) LatestDailySummaryDate(ctx context.Context, product string) (string, error) {
	var date string
	err := s.pool.QueryRow(ctx, `
		SELECT date::text FROM daily_summary
		WHERE product_name = $1
		ORDER BY date DESC LIMIT 1
	`, product).Scan(&date)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get latest daily summary date: %w", err)
	}
	return date, nil
}

func (s *PostgresStore) AdCreatives(ctx context.Context, product, start, end string) ([]models.AdCreative, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, date::text, COALESCE(account_id, ''), COALESCE(campaign_name, ''), product_name,
			COALESCE(ad_name, ''), COALESCE(ad_id, ''),
			COALESCE(spend, 0)::float8, COALESCE(impressions, 0)::bigint,
			COALESCE(link_clicks, 0)::bigint, COALESCE(leads, 0)::bigint, COALESCE(purchases, 0)::bigint,
			COALESCE(sheet_purchases, 0)::bigint, COALESCE(sheet_leads_utm, 0)::bigint,
			COALESCE(sheet_mqls, 0)::bigint,
			COALESCE(cpl, 0)::float8, COALESCE(cpa, 0)::float8, COALESCE(ctr, 0)::float8,
			COALESCE(instagram_permalink, '')
		FROM ad_creatives
		WHERE product_name = $1 AND date BETWEEN $2::text::date AND $3::text::date
		ORDER BY spend DESC NULLS LAST, id ASC
	`, product, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query ad creatives: %w", err)
	}
	defer rows.Close()

	out := []models.AdCreative{}
	for rows.Next() {
		var c models.AdCreative
		if err := rows.Scan(
			&c.ID, &c.Date, &c.AccountID, &c.CampaignName, &c.ProductName,
			&c.AdName, &c.AdID,
			&c.Spend, &c.Impressions, &c.LinkClicks, &c.Leads, &c.Purchases,
			&c.SheetPurchases, &c.SheetLeadsUTM, &c.SheetMqls,
			&c.CPL, &c.CPA, &c.CTR, &c.InstagramPermalink,
		); err != nil {
			return nil, fmt.Errorf("failed to scan ad creative: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (s *PostgresStore) UnattributedLeads(ctx context.Context, product, start, end string) ([]models.UnattributedLead, error) {
	// the sheet sync owns this table's columns, so rows are read as JSON
	rows, err := s.pool.Query(ctx, `
		SELECT to_jsonb(t) FROM unattributed_mql_leads t
		WHERE product_name = $1 AND date BETWEEN $2::text::date AND $3::text::date
		ORDER BY date DESC
	`, product, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query unattributed leads: %w", err)
	}
	defer rows.Close()

	out := []models.UnattributedLead{}
	for rows.Next() {
		var row map[string]any
		if err := rows.Scan(&row); err != nil {
			return nil, fmt.Errorf("failed to scan unattributed lead: %w", err)
		}
		out = append(out, LeadFromRow(row))
	}
	return out, rows.Err()
}
