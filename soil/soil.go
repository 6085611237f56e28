/*
Package soil provides the soil-assessment (Bodenschätzung) layer rules
for the reconciliation engine.

PURPOSE:
  Soil-assessment fragments carry a yield number (Ackerzahl) grading
  how productive the soil is. The engine derives the yield score

    emz = round(sfl / 100 * yield_number)

  for every rated fragment and keeps it current through merges and
  delta corrections. This package maps the raw classification
  attributes onto the engine's fragment model:

  - The yield number attribute is parsed into Fragment.YieldNumber.
  - Valuation annexes (remark key 9999) are areas inside an assessed
    parcel that are not themselves productive soil. They keep their
    SFL but are scored with yield number 0, so their EMZ is 0.

SEE ALSO:
  - landuse/: The land-use layer rules
  - recon/yield.go: The EMZ formula
*/
package soil

import (
	"strconv"

	"github.com/alkis/sfl-engine/recon"
)

// Layer is the profile name this package's rules are registered under.
const Layer = "soil"

// Classification attribute keys carried on Fragment.Attrs.
const (
	// FieldYieldNumber holds the Ackerzahl soil grading.
	FieldYieldNumber = "ackerzahl"

	// FieldRemark holds the assessment remark key.
	FieldRemark = "sonstige_angaben_id"

	// ValuationAnnexKey marks a fragment as a valuation annex: part of
	// an assessed parcel without productive soil of its own.
	ValuationAnnexKey = "9999"
)

// DefaultThresholds returns the soil layer defaults.
func DefaultThresholds() recon.Thresholds {
	return recon.Thresholds{
		ShredArea:       5,
		MergeArea:       2,
		FormIndex:       10,
		Correction:      5,
		SearchTolerance: 0.2,
	}
}

// DefaultConfig returns an engine config with the layer defaults.
func DefaultConfig() recon.Config {
	return recon.Config{Thresholds: DefaultThresholds()}
}

// Prepare applies the layer rules to raw fragments before a run:
// yield numbers are parsed from the classification attributes, and
// valuation annexes are pinned to yield 0.
func Prepare(fragments []*recon.Fragment) {
	for _, f := range fragments {
		if f.Attrs[FieldRemark] == ValuationAnnexKey {
			zero := 0.0
			f.YieldNumber = &zero
			continue
		}
		raw, ok := f.Attrs[FieldYieldNumber]
		if !ok {
			continue
		}
		v, err := strconv.ParseFloat(raw, 64)
		if err != nil || v < 0 {
			// Unparseable gradings leave the fragment unrated rather
			// than poisoning the run.
			continue
		}
		f.YieldNumber = &v
	}
}
