/*
reconciler.go - Exact-sum delta distribution

PURPOSE:
  After scaling and merging, the integer SFL values of a parcel's
  fragments rarely sum exactly to the registered area; round-half-up
  leaves a residual of a few square meters. This file distributes that
  residual so the sum becomes EXACT:

    delta = official_area - sum(sfl over non-overlap fragments)

  Small deltas (|delta| < correction cutoff) are spread over the
  eligible fragments (sfl >= shred threshold), proportionally by size:
  every eligible fragment except the largest receives
      floor(|delta| * sfl / total_eligible_sfl)
  and the largest receives whatever remains. Assigning the remainder to
  the largest fragment is what guarantees the post-correction sum is
  exact - no iterative fixup needed.

  Large deltas indicate genuine data problems (missing fragments, bad
  registered area) and are deliberately left alone: masking them with a
  big correction would hide the defect. They are reported as
  uncorrected_delta anomalies instead.

IDEMPOTENCE:
  A balanced group yields delta == 0 and the reconciler is a no-op, so
  running it twice changes nothing.

SEE ALSO:
  - scaler.go: Where the rounding error comes from
  - yield.go: EMZ recomputation for corrected fragments
*/
package recon

import (
	"fmt"
	"sort"
)

// DeltaReconciler balances a parent group's SFL sum against the
// registered area.
type DeltaReconciler struct {
	Thresholds Thresholds
	Yield      YieldCalculator
}

// Reconcile distributes the group's residual delta. It mutates
// fragment SFL/EMZ in place and returns any anomalies. Overlap-exempt
// fragments never participate.
func (r *DeltaReconciler) Reconcile(g *ParentGroup) []Anomaly {
	reconcilable := make([]*Fragment, 0, len(g.Fragments))
	var sum int64
	for _, f := range g.Fragments {
		if f.IsOverlap {
			continue
		}
		reconcilable = append(reconcilable, f)
		sum += f.SFL
	}
	if len(reconcilable) == 0 {
		return nil
	}

	delta := g.OfficialArea - sum
	if delta == 0 {
		return nil
	}
	absDelta := delta
	if absDelta < 0 {
		absDelta = -absDelta
	}

	if absDelta >= r.Thresholds.Correction {
		return []Anomaly{{
			Parent: g.Key,
			Kind:   AnomalyUncorrectedDelta,
			Detail: fmt.Sprintf("delta %d m² at or above correction cutoff %d m², left uncorrected", delta, r.Thresholds.Correction),
		}}
	}

	// Eligible fragments carry the correction: big enough to absorb a
	// square meter without becoming slivers themselves. Descending by
	// SFL, ties in stable input order.
	eligible := make([]*Fragment, 0, len(reconcilable))
	for _, f := range reconcilable {
		if f.SFL >= r.Thresholds.ShredArea {
			eligible = append(eligible, f)
		}
	}
	sort.SliceStable(eligible, func(i, j int) bool { return eligible[i].SFL > eligible[j].SFL })

	var total int64
	for _, f := range eligible {
		total += f.SFL
	}
	if len(eligible) == 0 || total <= 0 {
		return []Anomaly{{
			Parent: g.Key,
			Kind:   AnomalyUncorrectedDelta,
			Detail: fmt.Sprintf("delta %d m² unaccounted: no fragment eligible to absorb it", delta),
		}}
	}

	sign := int64(1)
	if delta < 0 {
		sign = -1
	}

	// Proportional floor shares for everyone but the largest; the
	// largest takes the remainder, making the corrected sum exact.
	var distributed int64
	for _, f := range eligible[1:] {
		share := absDelta * f.SFL / total
		if share == 0 {
			continue
		}
		f.SFL += sign * share
		r.Yield.Apply(f)
		distributed += share
	}
	remainder := absDelta - distributed
	if remainder != 0 {
		largest := eligible[0]
		largest.SFL += sign * remainder
		r.Yield.Apply(largest)
	}
	return nil
}
