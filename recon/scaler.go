/*
scaler.go - Raw geometry area to integer split area (SFL)

PURPOSE:
  The digitized geometry of a parcel rarely matches its legally
  registered area exactly. The improvement factor
      k = official_area / parcel_geometry_area
  corrects for that: every fragment's raw area is scaled by k and
  rounded half-up to an integer SFL. Rounding is half-UP, not banker's
  rounding; all inputs are non-negative, so floor(x + 0.5) is exact.

DETERMINISM:
  Scaling runs on decimal.Decimal so the same input always produces
  the same SFL regardless of platform float behavior.

SEE ALSO:
  - reconciler.go: Absorbs the rounding error scaling leaves behind
  - yield.go: Derives EMZ from the scaled SFL
*/
package recon

import "github.com/shopspring/decimal"

var (
	decimalHalf    = decimal.New(5, -1)
	decimalHundred = decimal.NewFromInt(100)
)

// ImprovementFactor computes official/geomArea for one parcel. When
// the parcel geometry area is zero or negative there is nothing to
// scale against; the factor falls back to 1 and ok is false so the
// caller can record the anomaly.
func ImprovementFactor(officialArea int64, geomArea float64) (k decimal.Decimal, ok bool) {
	if geomArea <= 0 {
		return decimal.NewFromInt(1), false
	}
	return decimal.NewFromInt(officialArea).Div(decimal.NewFromFloat(geomArea)), true
}

// AreaScaler converts raw fragment areas into integer split areas.
type AreaScaler struct{}

// SFL returns floor(geomArea * k + 0.5).
func (AreaScaler) SFL(geomArea float64, k decimal.Decimal) int64 {
	return decimal.NewFromFloat(geomArea).Mul(k).Add(decimalHalf).Floor().IntPart()
}

// Scale sets the SFL of every fragment in the group from its current
// geometry area and the group's improvement factor.
func (s AreaScaler) Scale(g *ParentGroup) {
	for _, f := range g.Fragments {
		f.SFL = s.SFL(f.GeomArea, g.Improvement)
	}
}
