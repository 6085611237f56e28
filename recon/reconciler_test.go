package recon_test

import (
	"strings"
	"testing"

	"github.com/alkis/sfl-engine/recon"
)

func defaultThresholds() recon.Thresholds {
	return recon.Thresholds{
		ShredArea:       5,
		MergeArea:       2,
		FormIndex:       10,
		Correction:      5,
		SearchTolerance: 0.2,
	}
}

func groupWithSFLs(official int64, sfls ...int64) *recon.ParentGroup {
	g := &recon.ParentGroup{
		Key:          "05-1234-0007",
		OfficialArea: official,
		Improvement:  factorOne(),
		FactorValid:  true,
		HasParcel:    true,
	}
	for i, sfl := range sfls {
		g.Fragments = append(g.Fragments, &recon.Fragment{
			ID:     recon.FragmentID(i + 1),
			Parent: g.Key,
			SFL:    sfl,
		})
	}
	return g
}

// =============================================================================
// DELTA DISTRIBUTION
// =============================================================================

func TestReconcile_NegativeDelta_ProportionalShares(t *testing.T) {
	// GIVEN: Registered area 1147 against scaled areas 500+400+250=1150
	// WHEN: Reconciling the 3 m² overshoot
	// THEN: The largest fragment absorbs the remainder after the
	//       proportional floor shares, and the sum is exact

	g := groupWithSFLs(1147, 500, 400, 250)
	r := recon.DeltaReconciler{Thresholds: defaultThresholds()}

	anomalies := r.Reconcile(g)

	if len(anomalies) != 0 {
		t.Fatalf("unexpected anomalies: %v", anomalies)
	}
	want := []int64{498, 399, 250}
	for i, f := range g.Fragments {
		if f.SFL != want[i] {
			t.Errorf("fragment %d: got sfl %d, want %d", f.ID, f.SFL, want[i])
		}
	}
}

func TestReconcile_PositiveDelta_SumMatchesOfficial(t *testing.T) {
	g := groupWithSFLs(1004, 600, 300, 100)
	r := recon.DeltaReconciler{Thresholds: defaultThresholds()}

	if anomalies := r.Reconcile(g); len(anomalies) != 0 {
		t.Fatalf("unexpected anomalies: %v", anomalies)
	}

	var sum int64
	for _, f := range g.Fragments {
		sum += f.SFL
	}
	if sum != g.OfficialArea {
		t.Errorf("corrected sum %d, want official %d", sum, g.OfficialArea)
	}
}

func TestReconcile_BalancedGroup_NoOp(t *testing.T) {
	g := groupWithSFLs(900, 500, 400)
	r := recon.DeltaReconciler{Thresholds: defaultThresholds()}

	if anomalies := r.Reconcile(g); len(anomalies) != 0 {
		t.Fatalf("unexpected anomalies: %v", anomalies)
	}
	if g.Fragments[0].SFL != 500 || g.Fragments[1].SFL != 400 {
		t.Errorf("balanced group was modified: %d, %d", g.Fragments[0].SFL, g.Fragments[1].SFL)
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	// A corrected group is balanced; a second pass must not move
	// anything.
	g := groupWithSFLs(1147, 500, 400, 250)
	r := recon.DeltaReconciler{Thresholds: defaultThresholds()}

	r.Reconcile(g)
	first := []int64{g.Fragments[0].SFL, g.Fragments[1].SFL, g.Fragments[2].SFL}
	r.Reconcile(g)

	for i, f := range g.Fragments {
		if f.SFL != first[i] {
			t.Errorf("fragment %d drifted on second pass: %d -> %d", f.ID, first[i], f.SFL)
		}
	}
}

// =============================================================================
// ANOMALIES AND EXEMPTIONS
// =============================================================================

func TestReconcile_LargeDelta_ReportedNotCorrected(t *testing.T) {
	// GIVEN: A 50 m² discrepancy with a correction cutoff of 5
	// WHEN: Reconciling
	// THEN: Fragments stay untouched and the delta is reported

	g := groupWithSFLs(1050, 600, 400)
	r := recon.DeltaReconciler{Thresholds: defaultThresholds()}

	anomalies := r.Reconcile(g)

	if len(anomalies) != 1 || anomalies[0].Kind != recon.AnomalyUncorrectedDelta {
		t.Fatalf("expected one uncorrected_delta anomaly, got %v", anomalies)
	}
	if g.Fragments[0].SFL != 600 || g.Fragments[1].SFL != 400 {
		t.Errorf("large delta must not be distributed: %d, %d", g.Fragments[0].SFL, g.Fragments[1].SFL)
	}
}

func TestReconcile_OverlapFragmentsExempt(t *testing.T) {
	// Overlap fragments carry truncated geometry area and never
	// participate in the official-area balance.
	g := groupWithSFLs(1000, 600, 400)
	g.Fragments = append(g.Fragments, &recon.Fragment{
		ID: 99, Parent: g.Key, SFL: 123, IsOverlap: true,
	})
	r := recon.DeltaReconciler{Thresholds: defaultThresholds()}

	if anomalies := r.Reconcile(g); len(anomalies) != 0 {
		t.Fatalf("unexpected anomalies: %v", anomalies)
	}
	if g.Fragments[2].SFL != 123 {
		t.Errorf("overlap fragment was corrected: got %d", g.Fragments[2].SFL)
	}
}

func TestReconcile_NoEligibleFragment_Anomaly(t *testing.T) {
	// All fragments below the shred threshold: there is nowhere to put
	// the delta.
	g := groupWithSFLs(10, 3, 4)
	r := recon.DeltaReconciler{Thresholds: defaultThresholds()}

	anomalies := r.Reconcile(g)

	if len(anomalies) != 1 || anomalies[0].Kind != recon.AnomalyUncorrectedDelta {
		t.Fatalf("expected one uncorrected_delta anomaly, got %v", anomalies)
	}
	if !strings.Contains(anomalies[0].Detail, "unaccounted") {
		t.Errorf("unexpected detail: %q", anomalies[0].Detail)
	}
}
