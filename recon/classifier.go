/*
classifier.go - Sliver classification

PURPOSE:
  Partitions a parent group's fragments into four classes:

  main:   SFL above the shred threshold. Merge target.
  keep:   Mini, but worth keeping standalone - either the parcel
          itself is tiny (nothing meaningful to merge into), or the
          fragment is large enough AND compact enough to be a real
          feature rather than a digitization artifact.
  merge:  Mini that should be folded into a neighboring main fragment.
  delete: Optionally, degenerate minis below a geometry-area floor are
          discarded without a merge attempt so they do not pollute a
          neighbor.

FORM INDEX:
  perimeter / sqrt(area). A compact square scores ~4; a long thin
  sliver scores high. Minis are kept only below the configured cutoff.

ORDER:
  The delete floor is applied to the mini set first, then the keep
  rule; everything remaining is a merge candidate.
*/
package recon

import (
	"math"

	"github.com/alkis/sfl-engine/geom"
)

// Class is the classifier verdict for one fragment.
type Class int

const (
	ClassMain Class = iota
	ClassKeep
	ClassMerge
	ClassDelete
)

func (c Class) String() string {
	switch c {
	case ClassMain:
		return "main"
	case ClassKeep:
		return "keep"
	case ClassMerge:
		return "merge"
	case ClassDelete:
		return "delete"
	}
	return "unknown"
}

// SliverClassifier partitions fragments by size and shape.
type SliverClassifier struct {
	Geom       geom.Provider
	Thresholds Thresholds
}

// Classify returns the class of f within its parent group.
func (c *SliverClassifier) Classify(f *Fragment, g *ParentGroup) Class {
	t := c.Thresholds

	if f.SFL > t.ShredArea {
		return ClassMain
	}

	// Delete floor first: degenerate slivers of a real parcel are
	// discarded before the keep rule can see them.
	if t.DeleteArea != nil &&
		f.GeomArea < *t.DeleteArea &&
		f.SFL <= t.MergeArea &&
		g.OfficialArea > t.MergeArea {
		return ClassDelete
	}

	// Tiny parcels have nothing meaningful to merge into.
	if g.OfficialArea <= t.ShredArea {
		return ClassKeep
	}

	if f.SFL >= t.MergeArea && c.formIndex(f) < t.FormIndex {
		return ClassKeep
	}

	return ClassMerge
}

// formIndex computes perimeter/sqrt(area). A failing length call or a
// degenerate area cannot prove compactness, so it reports +Inf and the
// fragment stays a merge candidate.
func (c *SliverClassifier) formIndex(f *Fragment) float64 {
	if f.GeomArea <= 0 {
		return math.Inf(1)
	}
	perimeter, err := c.Geom.Length(f.Geom)
	if err != nil {
		return math.Inf(1)
	}
	return perimeter / math.Sqrt(f.GeomArea)
}
