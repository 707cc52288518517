package analytics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"pgregory.net/rapid"

	"github.com/Priscila-Moraes/dashboard-bryan-blandy/internal/models"
)

func TestDefaultView(t *testing.T) {
	assert.Equal(t, ViewMQL, DefaultView(true, 0))
	assert.Equal(t, ViewMQL, DefaultView(false, 3))
	assert.Equal(t, ViewLeads, DefaultView(false, 0))
}

func TestParseLeadsView(t *testing.T) {
	v, ok := ParseLeadsView("mql")
	assert.True(t, ok)
	assert.Equal(t, ViewMQL, v)

	_, ok = ParseLeadsView("sales")
	assert.False(t, ok)
}

func TestUnattributedSales(t *testing.T) {
	creatives := []models.AggregatedCreative{
		{SheetPurchases: 3, SheetLeadsUTM: 10, SheetMqls: 2},
		{SheetPurchases: 1},
	}
	a := Unattributed(true, ViewMQL, Totals{SheetSales: 6, SheetLeads: 40, SheetMqls: 9}, creatives)

	assert.Equal(t, int64(4), a.AttributedSales)
	assert.Equal(t, int64(2), a.UnattributedSales)
	assert.Equal(t, int64(2), a.Selected)
	// lead differences are not computed for sales products
	assert.Zero(t, a.UnattributedLeads)
	assert.Zero(t, a.UnattributedMqls)
}

func TestUnattributedLeadsByView(t *testing.T) {
	creatives := []models.AggregatedCreative{{SheetLeadsUTM: 10, SheetMqls: 5}}
	totals := Totals{SheetLeads: 12, SheetMqls: 4}

	a := Unattributed(false, ViewLeads, totals, creatives)
	assert.Equal(t, int64(2), a.Selected)
	assert.Equal(t, int64(2), a.Display())

	a = Unattributed(false, ViewMQL, totals, creatives)
	assert.Equal(t, int64(-1), a.Selected)
	assert.Equal(t, int64(0), a.Display())
}

func TestUnattributedIsTotalMinusAttributed(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		n := rapid.IntRange(0, 10).Draw(t, "n")
		creatives := make([]models.AggregatedCreative, n)
		var mqls int64
		for i := range creatives {
			creatives[i].SheetMqls = rapid.Int64Range(0, 50).Draw(t, "mqls")
			mqls += creatives[i].SheetMqls
		}
		total := rapid.Int64Range(0, 500).Draw(t, "total")

		a := Unattributed(false, ViewMQL, Totals{SheetMqls: total}, creatives)
		if a.Selected != total-mqls {
			t.Fatalf("selected %d, want %d", a.Selected, total-mqls)
		}
		want := total - mqls
		if want < 0 {
			want = 0
		}
		if a.Display() != want {
			t.Fatalf("display %d, want %d", a.Display(), want)
		}
	})
}
