/*
Package landuse provides the land-use (Nutzung) layer rules for the
reconciliation engine.

PURPOSE:
  The engine core is layer-agnostic: it scales, classifies, merges and
  reconciles fragments without knowing what kind of coverage produced
  them. This package supplies what the land-use layer adds on top:

  - Overlap marking: a parcel can carry a secondary use (key 1000)
    painted OVER its primary use. Those fragments double-count area,
    so they are exempted from the official-area balance and carry a
    truncated geometry area instead of a scaled one.
  - The layer's default thresholds.

KEY DIFFERENCES FROM THE SOIL LAYER:
  1. No yield numbers: land-use fragments never carry an EMZ.
  2. Overlap exemption exists only here; soil coverages tile the
     parcel without secondary uses.

SEE ALSO:
  - soil/: The soil-assessment layer rules
  - recon/: The layer-agnostic pipeline
  - factory/: JSON profiles binding a layer to its thresholds
*/
package landuse

import "github.com/alkis/sfl-engine/recon"

// Layer is the profile name this package's rules are registered under.
const Layer = "landuse"

// Classification attribute keys carried on Fragment.Attrs.
const (
	// FieldSecondaryUse holds the secondary-use classification key.
	FieldSecondaryUse = "weitere_nutzung_id"

	// OverlapKey marks a fragment as a secondary use painted over the
	// primary coverage. Such fragments are exempt from reconciliation.
	OverlapKey = "1000"
)

// DefaultThresholds returns the land-use layer defaults.
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
// fragments classified as secondary uses are flagged overlap-exempt.
func Prepare(fragments []*recon.Fragment) {
	for _, f := range fragments {
		if f.Attrs[FieldSecondaryUse] == OverlapKey {
			f.IsOverlap = true
		}
	}
}
