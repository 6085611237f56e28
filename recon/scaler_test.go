package recon_test

import (
	"testing"

	"github.com/alkis/sfl-engine/recon"
)

// =============================================================================
// IMPROVEMENT FACTOR
// =============================================================================

func TestImprovementFactor_DegenerateParcelGeometry_FallsBackToOne(t *testing.T) {
	// GIVEN: A parcel with zero geometry area
	// WHEN: Computing its improvement factor
	// THEN: The factor is 1 and the caller is told it is not valid

	k, ok := recon.ImprovementFactor(500, 0)

	if ok {
		t.Error("expected factor to be flagged invalid")
	}
	if !k.Equal(one()) {
		t.Errorf("expected fallback factor 1, got %v", k)
	}
}

// =============================================================================
// SFL SCALING
// =============================================================================

func TestAreaScaler_SFL_RoundHalfUp(t *testing.T) {
	// Acceptance values: sfl = floor(geom_area * k + 0.5) with
	// k = official / parcel_geom_area.
	cases := []struct {
		geomArea float64
		official int64
		want     int64
	}{
		{geomArea: 1000.0, official: 1050, want: 1050},
		{geomArea: 5000.0, official: 5000, want: 5000},
		{geomArea: 2000.5, official: 2001, want: 2001},
		{geomArea: 3333.333, official: 3333, want: 3333},
	}

	var scaler recon.AreaScaler
	for _, tc := range cases {
		k, ok := recon.ImprovementFactor(tc.official, tc.geomArea)
		if !ok {
			t.Fatalf("factor unexpectedly invalid for geomArea=%g", tc.geomArea)
		}
		got := scaler.SFL(tc.geomArea, k)
		if got != tc.want {
			t.Errorf("SFL(%g, %v) = %d, want %d", tc.geomArea, k, got, tc.want)
		}
	}
}

func TestAreaScaler_Scale_SetsEveryFragment(t *testing.T) {
	// GIVEN: A group with factor 1.05 and two fragments
	// WHEN: Scaling the group
	// THEN: Each fragment gets floor(area * 1.05 + 0.5)

	k, _ := recon.ImprovementFactor(105, 100)
	g := &recon.ParentGroup{
		Key:          "p1",
		OfficialArea: 105,
		GeomArea:     100,
		Improvement:  k,
		FactorValid:  true,
		HasParcel:    true,
		Fragments: []*recon.Fragment{
			{ID: 1, Parent: "p1", GeomArea: 60},
			{ID: 2, Parent: "p1", GeomArea: 40},
		},
	}

	recon.AreaScaler{}.Scale(g)

	if g.Fragments[0].SFL != 63 {
		t.Errorf("fragment 1: got sfl %d, want 63", g.Fragments[0].SFL)
	}
	if g.Fragments[1].SFL != 42 {
		t.Errorf("fragment 2: got sfl %d, want 42", g.Fragments[1].SFL)
	}
}
