/*
merger.go - Sliver merging into neighboring fragments

PURPOSE:
  Folds merge-candidate minis into a main fragment of the SAME parcel.
  The candidate's geometry is unioned into the chosen main, whose area,
  SFL, and EMZ are then recomputed from the unioned geometry - never by
  summing the old integer values, which would compound rounding error.

MATCH STRATEGIES (in order, per candidate):
  1. First main whose geometry touches or intersects the candidate
  2. Main with minimum boundary distance, if below the search tolerance
  3. Buffer the candidate by the tolerance and take the LARGEST main
     intersecting the buffer
  4. No match: the candidate is unmergeable - recorded as an anomaly

  First-touch wins: a candidate attaches to the first adjacent main in
  stable order, and a main may absorb several candidates sequentially
  within one run. This is not globally optimal; it is the documented
  behavior.

ERROR ISOLATION:
  Every geometry call is attempted per pairing. A failing call skips
  that pairing (or that strategy) and the search continues; a candidate
  whose every pairing fails ends up unmergeable, never fatal.

COST:
  Worst case O(n_mini * n_main) per group. Groups are small in
  practice; this is a scalability note, not a correctness concern.
*/
package recon

import (
	"fmt"
	"sort"

	"github.com/alkis/sfl-engine/geom"
)

// SliverMerger merges merge-candidate fragments into mains.
type SliverMerger struct {
	Geom       geom.Provider
	Thresholds Thresholds
	Scaler     AreaScaler
	Yield      YieldCalculator
}

// MergeOutcome reports what happened to each candidate of one group.
type MergeOutcome struct {
	// MergedInto maps candidate id -> absorbing main id.
	MergedInto map[FragmentID]FragmentID

	// Unmerged lists candidates with no geometric neighbor.
	Unmerged []*Fragment

	// Anomalies carries one unmergeable_sliver entry per unmerged
	// candidate.
	Anomalies []Anomaly
}

// MergeGroup merges candidates into mains within one parent group.
// mains (including kept minis) are mutated in place; candidates are
// iterated in ascending id order for determinism.
func (m *SliverMerger) MergeGroup(g *ParentGroup, mains, candidates []*Fragment) MergeOutcome {
	out := MergeOutcome{MergedInto: make(map[FragmentID]FragmentID, len(candidates))}

	sorted := make([]*Fragment, len(candidates))
	copy(sorted, candidates)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID < sorted[j].ID })

	for _, mini := range sorted {
		target := m.findTarget(mini, mains)
		if target == nil {
			out.Unmerged = append(out.Unmerged, mini)
			out.Anomalies = append(out.Anomalies, Anomaly{
				Parent: g.Key,
				Kind:   AnomalyUnmergeableSliver,
				Detail: fmt.Sprintf("fragment %d (sfl %d m²) has no adjacent fragment in its parcel", mini.ID, mini.SFL),
			})
			continue
		}

		if err := m.absorb(target, mini, g); err != nil {
			// Union itself failed; the candidate stays unmerged.
			out.Unmerged = append(out.Unmerged, mini)
			out.Anomalies = append(out.Anomalies, Anomaly{
				Parent: g.Key,
				Kind:   AnomalyUnmergeableSliver,
				Detail: err.Error(),
			})
			continue
		}
		out.MergedInto[mini.ID] = target.ID
	}
	return out
}

// findTarget walks the three match strategies.
func (m *SliverMerger) findTarget(mini *Fragment, mains []*Fragment) *Fragment {
	// Strategy 1: direct touches/intersects, first match wins.
	for _, main := range mains {
		if touches, err := m.Geom.Touches(main.Geom, mini.Geom); err == nil && touches {
			return main
		}
		if intersects, err := m.Geom.Intersects(main.Geom, mini.Geom); err == nil && intersects {
			return main
		}
	}

	// Strategy 2: nearest boundary within the search tolerance.
	var nearest *Fragment
	nearestDist := m.Thresholds.SearchTolerance
	for _, main := range mains {
		d, err := m.Geom.Distance(main.Geom, mini.Geom)
		if err != nil {
			continue
		}
		if d < nearestDist {
			nearest = main
			nearestDist = d
		}
	}
	if nearest != nil {
		return nearest
	}

	// Strategy 3: buffer probe, largest intersecting main wins.
	buffered, err := m.Geom.Buffer(mini.Geom, m.Thresholds.SearchTolerance)
	if err != nil {
		return nil
	}
	var largest *Fragment
	for _, main := range mains {
		intersects, err := m.Geom.Intersects(main.Geom, buffered)
		if err != nil || !intersects {
			continue
		}
		if largest == nil || main.GeomArea > largest.GeomArea {
			largest = main
		}
	}
	return largest
}

// absorb unions the candidate into the main fragment and recomputes
// the main's derived values from the unioned geometry.
func (m *SliverMerger) absorb(main, mini *Fragment, g *ParentGroup) error {
	union, err := m.Geom.Union(main.Geom, mini.Geom)
	if err != nil {
		return &GeometryOperationError{Op: "union", Fragment: mini.ID, Other: main.ID, Err: err}
	}
	area, err := m.Geom.Area(union)
	if err != nil {
		return &GeometryOperationError{Op: "area", Fragment: mini.ID, Other: main.ID, Err: err}
	}

	main.Geom = union
	main.GeomArea = area
	main.SFL = m.Scaler.SFL(area, g.Improvement)
	m.Yield.Apply(main)
	return nil
}
