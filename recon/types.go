/*
Package recon provides the area reconciliation and sliver consolidation engine.

PURPOSE:
  Given polygon fragments produced by overlaying a classification layer
  (land use, soil assessment) onto cadastral parcels, the engine:
  1. Scales each fragment's raw geometric area into an integer split
     area (SFL) consistent with the parcel's registered area
  2. Detects sliver fragments and merges them into neighboring
     fragments of the same parcel, or deletes them
  3. Distributes residual rounding error so fragment areas of a parcel
     sum exactly to the legally registered area
  4. Derives the soil-yield score (EMZ) where the layer carries a
     yield number

KEY CONCEPTS IN THIS FILE (types.go):
  - Fragment: One overlay polygon with its derived values
  - Parcel / ParentGroup: The cadastral unit and its fragment set;
    reconciliation never crosses a parent key
  - Thresholds: The tuning knobs (shred, merge, form index, delete
    floor, correction cutoff, search tolerance)
  - Anomaly: Non-fatal data-quality findings collected per run

DESIGN PRINCIPLES:
  1. Determinism: decimal arithmetic for scaling and yield rounding,
     stable iteration orders everywhere
  2. Isolation: geometry failures and bad parcels never abort a run
  3. Honesty: output is all-or-annotated - a group that cannot be
     balanced is reported, never silently wrong

SEE ALSO:
  - scaler.go: SFL scaling
  - classifier.go: Sliver classification
  - merger.go: Neighbor merging
  - reconciler.go: Exact-sum delta distribution
  - engine.go: Run orchestration
*/
package recon

import (
	"github.com/shopspring/decimal"

	"github.com/alkis/sfl-engine/geom"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

// FragmentID identifies one overlay fragment within a run.
type FragmentID int64

// ParentKey is the cadastral parcel identifier (Flurstückskennzeichen)
// that groups fragments.
type ParentKey string

// =============================================================================
// FRAGMENT - One overlay polygon
// =============================================================================

// Fragment is a polygon produced by overlaying a classification layer
// onto parcel boundaries. The merger mutates Geom, GeomArea, SFL and
// EMZ in place; everything else is pass-through.
type Fragment struct {
	ID     FragmentID
	Parent ParentKey

	// Geom is an opaque handle owned by the run's geometry provider.
	Geom geom.Geometry

	// GeomArea is the raw geometric area in square meters.
	GeomArea float64

	// SFL is the derived integer split area in square meters.
	SFL int64

	// IsOverlap marks fragments of a secondary use overlaying the same
	// ground. They keep a truncated area and are exempt from the
	// exact-sum reconciliation.
	IsOverlap bool

	// YieldNumber (Ackerzahl) is present only on soil-assessment
	// layers. nil means the fragment carries no yield.
	YieldNumber *float64

	// EMZ is the derived soil-productivity score. nil until computed.
	EMZ *int64

	// Attrs carries opaque classification attributes through the run.
	Attrs map[string]string
}

// =============================================================================
// PARCEL / PARENT GROUP - The reconciliation target
// =============================================================================

// Parcel is one cadastral unit from the parcel layer.
type Parcel struct {
	Key ParentKey

	// OfficialArea is the legally registered area in square meters.
	OfficialArea int64

	// GeomArea is the digitized parcel geometry area. The improvement
	// factor is OfficialArea / GeomArea, computed once per parcel.
	GeomArea float64
}

// ParentGroup is a parcel together with the fragments sharing its key.
// Merge and reconciliation scope is strictly confined to one group.
type ParentGroup struct {
	Key          ParentKey
	OfficialArea int64
	GeomArea     float64

	// Improvement scales raw fragment area to official area.
	// Falls back to 1 when the parcel geometry area is degenerate;
	// FactorValid is false in that case.
	Improvement decimal.Decimal
	FactorValid bool

	// HasParcel is false for groups synthesized around orphan
	// fragments; such groups are never reconciled.
	HasParcel bool

	Fragments []*Fragment
}

// =============================================================================
// THRESHOLDS - Tuning knobs
// =============================================================================

// Thresholds controls sliver detection, merging, and delta correction.
// All areas are in square meters.
type Thresholds struct {
	// ShredArea: fragments with SFL at or below this value are minis.
	ShredArea int64

	// MergeArea: minis with SFL at or above this value and a compact
	// shape are kept standalone.
	MergeArea int64

	// FormIndex: perimeter/sqrt(area) compactness cutoff. Values at or
	// above it mark a thin sliver.
	FormIndex float64

	// DeleteArea: optional geometry-area floor. Minis below it are
	// deleted outright instead of polluting a neighbor. nil disables.
	DeleteArea *float64

	// Correction: deltas with absolute value at or above this cutoff
	// are left uncorrected and reported.
	Correction int64

	// SearchTolerance bounds the distance and buffer fallback
	// strategies of the merger, in meters.
	SearchTolerance float64
}

// =============================================================================
// ANOMALY - Non-fatal data-quality findings
// =============================================================================

type AnomalyKind string

const (
	// AnomalyUnmergeableSliver: a merge candidate had no geometric
	// neighbor in its parent group.
	AnomalyUnmergeableSliver AnomalyKind = "unmergeable_sliver"

	// AnomalyUncorrectedDelta: a parent group's fragment sum differs
	// from the official area and was not corrected.
	AnomalyUncorrectedDelta AnomalyKind = "uncorrected_delta"

	// AnomalyInvalidParent: missing parcel record, missing official
	// area, or degenerate parcel geometry.
	AnomalyInvalidParent AnomalyKind = "invalid_parent"
)

// Anomaly is one recorded finding. Anomalies are collected, never
// raised.
type Anomaly struct {
	Parent ParentKey
	Kind   AnomalyKind
	Detail string
}

// =============================================================================
// DISPOSITION - Terminal state per fragment
// =============================================================================

// Disposition records how a fragment left the run. Every fragment ends
// in exactly one of these states.
type Disposition string

const (
	DispositionKept    Disposition = "kept"
	DispositionMerged  Disposition = "merged"
	DispositionDeleted Disposition = "deleted"
)
