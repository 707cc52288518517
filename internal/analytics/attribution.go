package analytics

import (
	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/models"
)

// LeadsView chooses which conversion a lead product is ranked by.
type LeadsView string

const (
	ViewLeads LeadsView = "leads"
	ViewMQL   LeadsView = "mql"
)

// ParseLeadsView maps a query value to a view; ok is false for anything else.
func ParseLeadsView(s string) (LeadsView, bool) {
	switch LeadsView(s) {
	case ViewLeads, ViewMQL:
		return LeadsView(s), true
	}
	return "", false
}

// DefaultView is MQL for MQL-primary products and for any range with sheet
// MQLs, leads otherwise.
func DefaultView(mqlPrimary bool, totalSheetMqls int64) LeadsView {
	if mqlPrimary || totalSheetMqls > 0 {
		return ViewMQL
	}
	return ViewLeads
}

// Attribution compares sheet totals with the part of them matched to an ad.
// Unattributed values are raw differences and may be negative when the
// per-ad sheet columns were synced later than the daily totals.
type Attribution struct {
	AttributedSales int64 `json:"attributed_sales"`
	AttributedLeads int64 `json:"attributed_leads"`
	AttributedMqls  int64 `json:"attributed_mqls"`

	UnattributedSales int64 `json:"unattributed_sales"`
	UnattributedLeads int64 `json:"unattributed_leads"`
	UnattributedMqls  int64 `json:"unattributed_mqls"`

	// Selected is the unattributed count of the conversion the table shows.
	Selected int64 `json:"selected"`
}

// Display is Selected floored at zero.
func (a Attribution) Display() int64 {
	if a.Selected < 0 {
		return 0
	}
	return a.Selected
}

// Unattributed computes attribution for a product. Sales products compare
// sales; lead products compare leads and MQLs and select one by view.
func Unattributed(isSales bool, view LeadsView, totals Totals, creatives []models.AggregatedCreative) Attribution {
	var a Attribution
	for _, c := range creatives {
		a.AttributedSales += c.SheetPurchases
		a.AttributedLeads += c.SheetLeadsUTM
		a.AttributedMqls += c.SheetMqls
	}

	if isSales {
		a.UnattributedSales = totals.SheetSales - a.AttributedSales
		a.Selected = a.UnattributedSales
		return a
	}

	a.UnattributedLeads = totals.SheetLeads - a.AttributedLeads
	a.UnattributedMqls = totals.SheetMqls - a.AttributedMqls
	if view == ViewMQL {
		a.Selected = a.UnattributedMqls
	} else {
		a.Selected = a.UnattributedLeads
	}
	return a
}
