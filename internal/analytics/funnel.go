package analytics

import (
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/catalog"
)

// FunnelStep is one bar of the conversion funnel. Rate is the percentage
// of the previous step and is nil for the first step or a zero previous step.
type FunnelStep struct {
	Label string   `json:"label"`
	Value int64    `json:"value"`
	Rate  *float64 `json:"rate,omitempty"`
}

// Funnel lays out impressions through the product's headline conversion.
func Funnel(p catalog.Product, m *AggregatedMetrics) []FunnelStep {
	if m == nil {
		return nil
	}

	steps := []FunnelStep{
		{Label: "Impressões", Value: m.Impressions},
		{Label: "Cliques", Value: m.LinkClicks},
	}
	if !p.NativeForm {
		steps = append(steps, FunnelStep{Label: "Page Views", Value: m.PageViews})
	}

	mqlPrimary := !p.IsSales() && p.MQLPrimary
	if mqlPrimary {
		steps = append(steps, FunnelStep{Label: "Leads", Value: m.RealLeads()})
	}

	switch {
	case p.IsSales():
		steps = append(steps, FunnelStep{Label: "Vendas", Value: m.SheetSales})
	case mqlPrimary:
		steps = append(steps, FunnelStep{Label: "MQLs", Value: m.SheetMqls})
	default:
		steps = append(steps, FunnelStep{Label: "Leads", Value: m.RealLeads()})
	}

	for i := 1; i < len(steps); i++ {
		if prev := steps[i-1].Value; prev > 0 {
			r := float64(steps[i].Value) / float64(prev) * 100
			steps[i].Rate = &r
		}
	}
	return steps
}

// CardFormat tells a renderer how to print a card value.
type CardFormat string

const (
	FormatCurrency CardFormat = "currency"
	FormatPercent  CardFormat = "percent"
	FormatNumber   CardFormat = "number"
	FormatMultiple CardFormat = "multiple"
)

// Card is one headline KPI. Absent cards render as a dash.
type Card struct {
	Label  string     `json:"label"`
	Value  float64    `json:"value"`
	Format CardFormat `json:"format"`
	Absent bool       `json:"absent,omitempty"`
}

// Cards picks the KPI cards shown next to the funnel.
func Cards(p catalog.Product, m *AggregatedMetrics) []Card {
	if m == nil {
		return nil
	}

	cards := []Card{
		{Label: "Investimento", Value: m.Spend, Format: FormatCurrency},
		{Label: "CPM", Value: m.CPM, Format: FormatCurrency},
		{Label: "CTR", Value: m.CTR, Format: FormatPercent},
	}
	if p.NativeForm {
		cards = append(cards, Card{Label: "CPC", Value: m.CPC, Format: FormatCurrency})
	} else {
		cards = append(cards, Card{Label: "Taxa Carreg.", Value: m.LoadRate, Format: FormatPercent})
	}

	costPerMql := Card{
		Label:  "Custo/MQL",
		Value:  ratio(m.Spend, float64(m.SheetMqls)),
		Format: FormatCurrency,
		Absent: m.SheetMqls == 0,
	}
	mqlRate := Card{Label: "Taxa MQL", Value: m.MqlRate, Format: FormatPercent}

	switch {
	case p.IsSales():
		cards = append(cards,
			Card{Label: "CPA", Value: m.CPA, Format: FormatCurrency},
			Card{Label: "ROAS", Value: m.ROAS, Format: FormatMultiple},
		)
	case p.MQLPrimary:
		cards = append(cards,
			Card{Label: "MQLs", Value: float64(m.SheetMqls), Format: FormatNumber},
			costPerMql,
			mqlRate,
		)
	default:
		cards = append(cards, costPerMql, mqlRate)
	}
	return cards
}

// SheetPanel is the side panel of sheet (ground truth) numbers.
type SheetPanel struct {
	Sales   int64   `json:"sales"`
	Revenue float64 `json:"revenue"`
	Leads   int64   `json:"leads"`
	Mqls    int64   `json:"mqls"`
	MqlRate float64 `json:"mql_rate"`
	CPA     float64 `json:"cpa"`
	ROAS    float64 `json:"roas"`
	Spend   float64 `json:"spend"`
}

// NewSheetPanel extracts the panel from aggregated metrics.
func NewSheetPanel(m *AggregatedMetrics) *SheetPanel {
	if m == nil {
		return nil
	}
	return &SheetPanel{
		Sales:   m.SheetSales,
		Revenue: m.SheetRevenue,
		Leads:   m.RealLeads(),
		Mqls:    m.SheetMqls,
		MqlRate: m.MqlRate,
		CPA:     m.CPA,
		ROAS:    m.ROAS,
		Spend:   m.Spend,
	}
}
