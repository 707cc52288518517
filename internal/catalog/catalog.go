// Package catalog lists the funnels (products) the dashboard reports on and
// the per-product switches that decide which conversion is the headline one.
package catalog

import (
	"errors"
	"fmt"
)

// Kind is what a product's funnel ends in.
type Kind string

const (
	KindSales Kind = "sales"
	KindLeads Kind = "leads"
)

// ErrUnknownProduct is returned by Lookup for ids not in the catalog.
var ErrUnknownProduct = errors.New("unknown product")

// Product is one funnel of the account.
type Product struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Kind Kind   `json:"type"`

	// MQLPrimary products report MQLs as the headline conversion.
	MQLPrimary bool `json:"mql_primary"`
	// NativeForm products capture leads in a platform form, so there is no
	// landing page and page views are meaningless.
	NativeForm bool `json:"native_form"`
	// ShowMQLInSales adds MQL columns to the creatives table of a sales product.
	ShowMQLInSales bool `json:"show_mql_in_sales"`

	// LaunchDate and EndDate bound the "all time" preset. Empty EndDate means today.
	LaunchDate string `json:"launch_date,omitempty"`
	EndDate    string `json:"end_date,omitempty"`
	// OpeningStart, when set, replaces "all time" as the range the dashboard
	// opens with; the range then runs to today.
	OpeningStart string `json:"opening_start,omitempty"`
}

// IsSales reports whether conversions of the product are sales.
func (p Product) IsSales() bool { return p.Kind == KindSales }

// DefaultProductID is used when a request names no product.
const DefaultProductID = "webinarflix"

// DefaultLaunchDate bounds "all time" for products with no launch date.
const DefaultLaunchDate = "2026-01-20"

var products = []Product{
	{ID: "webinarflix", Name: "WebinarFlix", Kind: KindSales, LaunchDate: "2026-01-20"},
	{ID: "upgrade-persona", Name: "Upgrade de Persona", Kind: KindLeads, MQLPrimary: true, LaunchDate: "2026-01-23", EndDate: "2026-02-04"},
	{ID: "fib-live", Name: "FIB Live", Kind: KindSales, ShowMQLInSales: true, LaunchDate: "2026-01-01"},
	{ID: "formulario-aplicacao", Name: "Formulário de Aplicação", Kind: KindLeads, MQLPrimary: true, NativeForm: true, OpeningStart: "2026-01-01"},
}

// All returns the catalog in display order.
func All() []Product {
	out := make([]Product, len(products))
	copy(out, products)
	return out
}

// Lookup finds a product by id. An empty id selects DefaultProductID.
func Lookup(id string) (Product, error) {
	if id == "" {
		id = DefaultProductID
	}
	for _, p := range products {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, fmt.Errorf("%w: %q", ErrUnknownProduct, id)
}

// LaunchDates maps product id to the first day of its "all time" range.
func LaunchDates() map[string]string {
	m := make(map[string]string)
	for _, p := range products {
		if p.LaunchDate != "" {
			m[p.ID] = p.LaunchDate
		}
	}
	return m
}

// EndDates maps product id to the last day of its "all time" range.
func EndDates() map[string]string {
	m := make(map[string]string)
	for _, p := range products {
		if p.EndDate != "" {
			m[p.ID] = p.EndDate
		}
	}
	return m
}

// OpeningStarts maps product id to a fixed opening start date.
func OpeningStarts() map[string]string {
	m := make(map[string]string)
	for _, p := range products {
		if p.OpeningStart != "" {
			m[p.ID] = p.OpeningStart
		}
	}
	return m
}

// Overrides patches creative names and links the sync gets wrong.
type Overrides struct {
	NameByAdID map[string]string
	LinkByAdID map[string]string
	LinkByName map[string]string
}

// DefaultOverrides returns the overrides known for the account.
func DefaultOverrides() Overrides {
	return Overrides{
		NameByAdID: map[string]string{
			"120240232224840245": "ADS005_VENDA_IMAGEM_FEEDeSTORIES",
		},
		LinkByAdID: map[string]string{
			"120240232224840245": "https://www.instagram.com/p/DUB6KFLAInA/#advertiser",
		},
		LinkByName: map[string]string{
			"ADS005_VENDA_IMAGEM_FEEDeSTORIES": "https://www.instagram.com/p/DUB6KFLAInA/#advertiser",
		},
	}
}
