package recon_test

import (
	"testing"

	"github.com/alkis/sfl-engine/geom"
	"github.com/alkis/sfl-engine/recon"
)

func newClassifier(t recon.Thresholds) *recon.SliverClassifier {
	return &recon.SliverClassifier{Geom: geom.NewMemory(), Thresholds: t}
}

func TestClassify_AboveShredThreshold_Main(t *testing.T) {
	c := newClassifier(defaultThresholds())
	g := groupWithSFLs(1000)
	f := &recon.Fragment{ID: 1, SFL: 6, GeomArea: 6, Geom: rect(0, 0, 3, 2)}

	if got := c.Classify(f, g); got != recon.ClassMain {
		t.Errorf("got %s, want main", got)
	}
}

func TestClassify_ElongatedMini_MergeCandidate(t *testing.T) {
	// GIVEN: A mini fragment with form index 16.25 (long thin strip)
	// WHEN: Classifying against a form cutoff of 10
	// THEN: It is a merge candidate, not a keeper

	c := newClassifier(defaultThresholds())
	g := groupWithSFLs(1000)
	f := &recon.Fragment{ID: 1, SFL: 3, GeomArea: 1, Geom: rect(0, 0, 8, 0.125)}

	if got := c.Classify(f, g); got != recon.ClassMerge {
		t.Errorf("got %s, want merge", got)
	}
}

func TestClassify_CompactMini_Kept(t *testing.T) {
	// A unit square scores form index 4: compact enough to stand alone.
	c := newClassifier(defaultThresholds())
	g := groupWithSFLs(1000)
	f := &recon.Fragment{ID: 1, SFL: 4, GeomArea: 1, Geom: rect(0, 0, 1, 1)}

	if got := c.Classify(f, g); got != recon.ClassKeep {
		t.Errorf("got %s, want keep", got)
	}
}

func TestClassify_TinyParcel_AlwaysKept(t *testing.T) {
	// The whole parcel is below the shred threshold: nothing to merge
	// into, so even a degenerate mini stays.
	c := newClassifier(defaultThresholds())
	g := groupWithSFLs(4)
	f := &recon.Fragment{ID: 1, SFL: 1, GeomArea: 0.8, Geom: rect(0, 0, 4, 0.2)}

	if got := c.Classify(f, g); got != recon.ClassKeep {
		t.Errorf("got %s, want keep", got)
	}
}

func TestClassify_DeleteFloor_BeatsKeepRule(t *testing.T) {
	// GIVEN: A compact mini under the geometry-area delete floor
	// WHEN: Classifying with the floor enabled
	// THEN: The delete floor is applied before the keep rule can save it

	th := defaultThresholds()
	floor := 0.5
	th.DeleteArea = &floor

	c := newClassifier(th)
	g := groupWithSFLs(1000)
	f := &recon.Fragment{ID: 1, SFL: 2, GeomArea: 0.2, Geom: rect(0, 0, 0.447, 0.447)}

	if got := c.Classify(f, g); got != recon.ClassDelete {
		t.Errorf("got %s, want delete", got)
	}
}

func TestClassify_DegenerateArea_NeverCompact(t *testing.T) {
	// Zero geometry area cannot prove compactness; the fragment stays a
	// merge candidate.
	c := newClassifier(defaultThresholds())
	g := groupWithSFLs(1000)
	f := &recon.Fragment{ID: 1, SFL: 3, GeomArea: 0, Geom: rect(0, 0, 1, 1)}

	if got := c.Classify(f, g); got != recon.ClassMerge {
		t.Errorf("got %s, want merge", got)
	}
}
