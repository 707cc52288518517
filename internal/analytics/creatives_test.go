package analytics

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/models"
)

func TestAggregateCreativesGroupsByAdID(t *testing.T) {
	rows := []models.AdCreative{
		{Date: "2026-02-01", AdID: "1", AdName: "A", CampaignName: "C1", Spend: 10, Impressions: 1000, LinkClicks: 10, Leads: 2},
		{Date: "2026-02-02", AdID: "1", AdName: "A renamed", CampaignName: "C1", Spend: 30, Impressions: 1000, LinkClicks: 30, Leads: 2, InstagramPermalink: "https://ig/a"},
		{Date: "2026-02-01", AdID: "2", AdName: "B", Spend: 50, Impressions: 500, Purchases: 1, SheetPurchases: 2},
		{Date: "2026-02-01", AdName: "no-id", Spend: 5},
		{Date: "2026-02-02", AdName: "no-id", Spend: 5},
	}

	got := AggregateCreatives(rows)
	require.Len(t, got, 3)

	assert.Equal(t, "2", got[0].Key)
	assert.Equal(t, 50.0, got[0].Spend)
	assert.Equal(t, int64(2), got[0].RealPurchases())
	assert.InDelta(t, 25.0, got[0].CPA, 1e-9)

	a := got[1]
	assert.Equal(t, "1", a.Key)
	assert.Equal(t, "A", a.AdName)
	assert.Equal(t, "C1", a.CampaignName)
	assert.Equal(t, 40.0, a.Spend)
	assert.Equal(t, int64(4), a.Leads)
	assert.InDelta(t, 10.0, a.CPL, 1e-9)
	assert.InDelta(t, 2.0, a.CTR, 1e-9)
	assert.Equal(t, "https://ig/a", a.InstagramPermalink)

	assert.Equal(t, "no-id", got[2].Key)
	assert.Equal(t, "", got[2].AdID)
	assert.Equal(t, 10.0, got[2].Spend)
}

func TestAggregateCreativesEmpty(t *testing.T) {
	got := AggregateCreatives(nil)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestAggregateCreativesSheetLeadsPreferred(t *testing.T) {
	got := AggregateCreatives([]models.AdCreative{
		{AdID: "x", Spend: 100, Leads: 50, SheetLeadsUTM: 4, Purchases: 10},
	})
	require.Len(t, got, 1)
	assert.InDelta(t, 25.0, got[0].CPL, 1e-9)
	assert.InDelta(t, 10.0, got[0].CPA, 1e-9)
}

func TestAggregateCreativesLatestPermalinkWins(t *testing.T) {
	rows := []models.AdCreative{
		{Date: "2026-02-03", AdID: "1", InstagramPermalink: "new"},
		{Date: "2026-02-01", AdID: "1", InstagramPermalink: "old"},
		{Date: "2026-02-04", AdID: "1"},
	}
	got := AggregateCreatives(rows)
	require.Len(t, got, 1)
	assert.Equal(t, "new", got[0].InstagramPermalink)
}

func genCreative(t *rapid.T) models.AdCreative {
	id := rapid.SampledFrom([]string{"", "1", "2", "3"}).Draw(t, "ad_id")
	return models.AdCreative{
		Date:               rapid.SampledFrom([]string{"", "2026-02-01", "2026-02-02", "2026-02-03T10:00:00"}).Draw(t, "date"),
		AdID:               id,
		AdName:             rapid.SampledFrom([]string{"A", "B", "C"}).Draw(t, "ad_name"),
		CampaignName:       rapid.SampledFrom([]string{"X", "Y"}).Draw(t, "campaign"),
		Spend:              float64(rapid.Int64Range(0, 1_000_000).Draw(t, "spend")) / 100,
		Impressions:        rapid.Int64Range(0, 100_000).Draw(t, "imps"),
		LinkClicks:         rapid.Int64Range(0, 1_000).Draw(t, "clicks"),
		Leads:              rapid.Int64Range(0, 100).Draw(t, "leads"),
		Purchases:          rapid.Int64Range(0, 10).Draw(t, "purchases"),
		SheetPurchases:     rapid.Int64Range(0, 10).Draw(t, "sheet_purchases"),
		SheetLeadsUTM:      rapid.Int64Range(0, 100).Draw(t, "sheet_leads"),
		SheetMqls:          rapid.Int64Range(0, 50).Draw(t, "mqls"),
		InstagramPermalink: rapid.SampledFrom([]string{"", "p1", "p2"}).Draw(t, "permalink"),
	}
}

func TestAggregateCreativesCommutative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := rapid.SliceOfN(rapid.Custom(genCreative), 0, 30).Draw(t, "rows")
		perm := rapid.Permutation(rows).Draw(t, "perm")

		a, b := AggregateCreatives(rows), AggregateCreatives(perm)
		if len(a) != len(b) {
			t.Fatalf("group count %d vs %d", len(a), len(b))
		}
		for i := range a {
			if a[i] != b[i] {
				t.Fatalf("group %d differs:\n%+v\n%+v", i, a[i], b[i])
			}
		}
	})
}

func TestAggregateCreativesAssociative(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		rows := rapid.SliceOfN(rapid.Custom(genCreative), 0, 30).Draw(t, "rows")
		split := rapid.IntRange(0, len(rows)).Draw(t, "split")

		// aggregating the halves and re-aggregating their totals matches one pass
		whole := AggregateCreatives(rows)
		var spendCents int64
		for _, r := range rows {
			spendCents += int64(math.Round(r.Spend * 100))
		}
		var gotCents int64
		for _, h := range [][]models.AdCreative{rows[:split], rows[split:]} {
			for _, c := range AggregateCreatives(h) {
				gotCents += int64(math.Round(c.Spend * 100))
			}
		}
		var wholeCents int64
		for _, c := range whole {
			wholeCents += int64(math.Round(c.Spend * 100))
		}
		if gotCents != spendCents || wholeCents != spendCents {
			t.Fatalf("spend cents: halves %d, whole %d, rows %d", gotCents, wholeCents, spendCents)
		}
	})
}

func TestAggregateCreativesSheetPreference(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		c := genCreative(t)
		c.AdID = "k"
		got := AggregateCreatives([]models.AdCreative{c})[0]

		leads := c.Leads
		if c.SheetLeadsUTM > 0 {
			leads = c.SheetLeadsUTM
		}
		purchases := c.Purchases
		if c.SheetPurchases > 0 {
			purchases = c.SheetPurchases
		}
		if got.RealLeads() != leads || got.RealPurchases() != purchases {
			t.Fatalf("real counts %d/%d, want %d/%d", got.RealLeads(), got.RealPurchases(), leads, purchases)
		}
		if leads == 0 && got.CPL != 0 {
			t.Fatalf("cpl %v without leads", got.CPL)
		}
		if purchases == 0 && got.CPA != 0 {
			t.Fatalf("cpa %v without purchases", got.CPA)
		}
	})
}
