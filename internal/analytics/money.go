package analytics

import (
	"math"

	"github.com/shopspring/decimal"
)

// money accumulates currency amounts exactly, so a total does not depend on
// the order rows arrive in.
type money struct {
	d decimal.Decimal
}

func (m *money) add(v float64) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return
	}
	m.d = m.d.Add(decimal.NewFromFloat(v))
}

func (m money) plus(o money) money {
	return money{d: m.d.Add(o.d)}
}

func (m money) float() float64 {
	return m.d.InexactFloat64()
}

// ratio divides num by den, returning 0 instead of NaN or Inf.
func ratio(num, den float64) float64 {
	if den == 0 || math.IsNaN(den) || math.IsInf(den, 0) {
		return 0
	}
	r := num / den
	if math.IsNaN(r) || math.IsInf(r, 0) {
		return 0
	}
	return r
}

// prefer returns primary when it is positive, else fallback. Sheet counts
// are ground truth but are zero for days the sheet was not filled.
func prefer(primary, fallback int64) int64 {
	if primary > 0 {
		return primary
	}
	return fallback
}
