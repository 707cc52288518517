package models

// ===========================================
// AD CREATIVE
// ===========================================

// AdCreative is one raw per-day, per-ad row of the ad_creatives table.
type AdCreative struct {
	ID           int64  `json:"id"`
	Date         string `json:"date"`
	AccountID    string `json:"account_id"`
	CampaignName string `json:"campaign_name"`
	ProductName  string `json:"product_name"`
	AdName       string `json:"ad_name"`
	AdID         string `json:"ad_id"`

	Spend       float64 `json:"spend"`
	Impressions int64   `json:"impressions"`
	LinkClicks  int64   `json:"link_clicks"`
	Leads       int64   `json:"leads"`
	Purchases   int64   `json:"purchases"`

	// Sheet conversions attributed to this ad through UTM / phone match
	SheetPurchases int64 `json:"sheet_purchases"`
	SheetLeadsUTM  int64 `json:"sheet_leads_utm"`
	SheetMqls      int64 `json:"sheet_mqls"`

	CPL float64 `json:"cpl"`
	CPA float64 `json:"cpa"`
	CTR float64 `json:"ctr"`

	InstagramPermalink string `json:"instagram_permalink"`
}

// Key returns the identity a creative is aggregated under: the ad id, or
// the ad name for rows the sync wrote without one.
func (c AdCreative) Key() string {
	if c.AdID != "" {
		return c.AdID
	}
	return c.AdName
}

// AggregatedCreative is a creative summed over every day of a range with
// its ratios recomputed from the sums.
type AggregatedCreative struct {
	Key          string  `json:"key"`
	AdName       string  `json:"ad_name"`
	AdID         string  `json:"ad_id"`
	CampaignName string  `json:"campaign_name"`
	Spend        float64 `json:"spend"`
	Impressions  int64   `json:"impressions"`
	LinkClicks   int64   `json:"link_clicks"`
	Leads        int64   `json:"leads"`
	Purchases    int64   `json:"purchases"`

	SheetPurchases int64 `json:"sheet_purchases"`
	SheetLeadsUTM  int64 `json:"sheet_leads_utm"`
	SheetMqls      int64 `json:"sheet_mqls"`

	CPL float64 `json:"cpl"`
	CPA float64 `json:"cpa"`
	CTR float64 `json:"ctr"`

	InstagramPermalink string `json:"instagram_permalink"`
}

// RealPurchases prefers the sheet count over the Meta count when positive.
func (c AggregatedCreative) RealPurchases() int64 {
	if c.SheetPurchases > 0 {
		return c.SheetPurchases
	}
	return c.Purchases
}

// RealLeads prefers the UTM-attributed sheet leads when positive.
func (c AggregatedCreative) RealLeads() int64 {
	if c.SheetLeadsUTM > 0 {
		return c.SheetLeadsUTM
	}
	return c.Leads
}
