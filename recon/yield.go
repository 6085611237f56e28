/*
yield.go - Soil-productivity score (EMZ)

The soil-assessment layer carries a yield number (Ackerzahl) per
fragment. The score is
    emz = round(sfl / 100 * yield_number)
rounded half away from zero. It is recomputed whenever SFL changes:
after scaling, after every merge, and after delta correction.
*/
package recon

import "github.com/shopspring/decimal"

// YieldCalculator derives EMZ from SFL and a yield number.
type YieldCalculator struct{}

// EMZ returns round(sfl/100 * yieldNumber), half away from zero.
func (YieldCalculator) EMZ(sfl int64, yieldNumber float64) int64 {
	return decimal.NewFromInt(sfl).
		Div(decimalHundred).
		Mul(decimal.NewFromFloat(yieldNumber)).
		Round(0).
		IntPart()
}

// Apply recomputes the fragment's EMZ from its current SFL. Fragments
// without a yield number are left untouched.
func (y YieldCalculator) Apply(f *Fragment) {
	if f.YieldNumber == nil {
		return
	}
	emz := y.EMZ(f.SFL, *f.YieldNumber)
	f.EMZ = &emz
}
