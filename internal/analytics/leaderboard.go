package analytics

import (
	"sort"
	"strings"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/catalog"
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/models"
)

// SortKey is a leaderboard ordering.
type SortKey string

const (
	SortConversions SortKey = "conversions"
	SortSpend       SortKey = "spend"
	SortClicks      SortKey = "clicks"
	SortCPC         SortKey = "cpc"
	SortCostPer     SortKey = "cost_per"
	SortCTR         SortKey = "ctr"
)

// ParseSortKey maps a query value to a sort key; ok is false for anything else.
func ParseSortKey(s string) (SortKey, bool) {
	switch k := SortKey(s); k {
	case SortConversions, SortSpend, SortClicks, SortCPC, SortCostPer, SortCTR:
		return k, true
	}
	return "", false
}

// ascending reports whether lower is better for the key. Cost keys put
// zero (no conversions) last.
func (k SortKey) ascending() bool {
	return k == SortCPC || k == SortCostPer
}

// DefaultLeaderboardTop is how many creatives a leaderboard lists.
const DefaultLeaderboardTop = 10

// CostBand grades a cost per conversion.
type CostBand string

const (
	BandGood CostBand = "good"
	BandWarn CostBand = "warn"
	BandBad  CostBand = "bad"
	BandNone CostBand = ""
)

// BandFor grades cost: under 500 is good, over 1000 is bad. A zero cost
// has no band.
func BandFor(cost float64) CostBand {
	switch {
	case cost <= 0:
		return BandNone
	case cost < 500:
		return BandGood
	case cost > 1000:
		return BandBad
	default:
		return BandWarn
	}
}

// LeaderboardRow is one ranked creative.
type LeaderboardRow struct {
	Rank         int    `json:"rank"`
	Key          string `json:"key"`
	AdID         string `json:"ad_id"`
	Name         string `json:"name"`
	CampaignName string `json:"campaign_name"`
	Link         string `json:"link,omitempty"`

	Spend      float64 `json:"spend"`
	LinkClicks int64   `json:"link_clicks"`
	CPC        float64 `json:"cpc"`
	CTR        float64 `json:"ctr"`

	RealPurchases int64 `json:"real_purchases"`
	RealLeads     int64 `json:"real_leads"`
	RealMqls      int64 `json:"real_mqls"`

	Conversions       int64    `json:"conversions"`
	CostPerConversion float64  `json:"cost_per_conversion"`
	CostBand          CostBand `json:"cost_band"`
	CostPerMql        float64  `json:"cost_per_mql"`
	CostPerMqlBand    CostBand `json:"cost_per_mql_band"`
	// CPLContext is shown under the cost of MQL-view rows.
	CPLContext float64 `json:"cpl_context"`
}

// UnattributedRow closes the table with conversions no ad could claim.
type UnattributedRow struct {
	Label       string `json:"label"`
	Conversions int64  `json:"conversions"`
}

// Leaderboard is the ranked creatives table.
type Leaderboard struct {
	View       LeadsView        `json:"view,omitempty"`
	Sort       SortKey          `json:"sort"`
	ShowMqls   bool             `json:"show_mqls"`
	Total      int              `json:"total"`
	Rows       []LeaderboardRow `json:"rows"`
	Unassigned *UnattributedRow `json:"unattributed,omitempty"`
	Attribution
}

// LeaderboardOptions parameterize BuildLeaderboard. Zero values pick the
// product's defaults.
type LeaderboardOptions struct {
	View      LeadsView
	Sort      SortKey
	Top       int
	Overrides catalog.Overrides
}

// BuildLeaderboard ranks aggregated creatives for a product and appends the
// unattributed row when the sheet has conversions no ad was matched to.
func BuildLeaderboard(p catalog.Product, totals Totals, creatives []models.AggregatedCreative, opts LeaderboardOptions) Leaderboard {
	isSales := p.IsSales()

	view := opts.View
	if isSales {
		view = ""
	} else if view == "" {
		view = DefaultView(p.MQLPrimary, totals.SheetMqls)
	}
	key := opts.Sort
	if key == "" {
		key = SortConversions
	}
	top := opts.Top
	if top <= 0 {
		top = DefaultLeaderboardTop
	}

	rows := make([]LeaderboardRow, 0, len(creatives))
	for _, c := range creatives {
		rows = append(rows, newRow(c, isSales, view, opts.Overrides))
	}

	sort.SliceStable(rows, func(i, j int) bool {
		vi, vj := sortValue(rows[i], key), sortValue(rows[j], key)
		if vi != vj {
			if key.ascending() {
				if vi == 0 {
					return false
				}
				if vj == 0 {
					return true
				}
				return vi < vj
			}
			return vi > vj
		}
		return rows[i].Key < rows[j].Key
	})

	if len(rows) > top {
		rows = rows[:top]
	}
	for i := range rows {
		rows[i].Rank = i + 1
	}

	lb := Leaderboard{
		View:        view,
		Sort:        key,
		ShowMqls:    isSales && p.ShowMQLInSales,
		Total:       len(creatives),
		Rows:        rows,
		Attribution: Unattributed(isSales, view, totals, creatives),
	}
	if n := lb.Attribution.Display(); n > 0 {
		lb.Unassigned = &UnattributedRow{Label: unattributedLabel(isSales, view), Conversions: n}
	}
	return lb
}

func newRow(c models.AggregatedCreative, isSales bool, view LeadsView, ov catalog.Overrides) LeaderboardRow {
	r := LeaderboardRow{
		Key:           c.Key,
		AdID:          c.AdID,
		Name:          c.AdName,
		CampaignName:  c.CampaignName,
		Spend:         c.Spend,
		LinkClicks:    c.LinkClicks,
		CPC:           ratio(c.Spend, float64(c.LinkClicks)),
		CTR:           c.CTR,
		RealPurchases: c.RealPurchases(),
		RealLeads:     c.RealLeads(),
		RealMqls:      c.SheetMqls,
	}
	if name := ov.NameByAdID[c.AdID]; name != "" {
		r.Name = name
	}
	r.Link = c.InstagramPermalink
	if r.Link == "" {
		r.Link = ov.LinkByAdID[c.AdID]
	}
	if r.Link == "" {
		r.Link = ov.LinkByName[strings.TrimSpace(r.Name)]
	}

	switch {
	case isSales:
		r.Conversions = r.RealPurchases
		r.CostPerConversion = c.CPA
	case view == ViewMQL:
		r.Conversions = r.RealMqls
		r.CostPerConversion = ratio(c.Spend, float64(r.RealMqls))
	default:
		r.Conversions = r.RealLeads
		r.CostPerConversion = c.CPL
	}
	r.CostBand = BandFor(r.CostPerConversion)
	r.CostPerMql = ratio(c.Spend, float64(r.RealMqls))
	r.CostPerMqlBand = BandFor(r.CostPerMql)
	r.CPLContext = ratio(c.Spend, float64(r.RealLeads))
	return r
}

func sortValue(r LeaderboardRow, key SortKey) float64 {
	switch key {
	case SortConversions:
		return float64(r.Conversions)
	case SortSpend:
		return r.Spend
	case SortClicks:
		return float64(r.LinkClicks)
	case SortCPC:
		return r.CPC
	case SortCostPer:
		return r.CostPerConversion
	case SortCTR:
		return r.CTR
	}
	return 0
}

func unattributedLabel(isSales bool, view LeadsView) string {
	switch {
	case isSales:
		return "Sem atribuição (UTM ausente)"
	case view == ViewMQL:
		return "Sem atribuição (MQL sem match)"
	default:
		return "Sem atribuição (Lead sem match)"
	}
}
