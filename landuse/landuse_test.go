package landuse_test

import (
	"context"
	"testing"

	"github.com/alkis/sfl-engine/geom"
	"github.com/alkis/sfl-engine/landuse"
	"github.com/alkis/sfl-engine/recon"
)

func TestPrepare_FlagsSecondaryUses(t *testing.T) {
	fragments := []*recon.Fragment{
		{ID: 1, Attrs: map[string]string{landuse.FieldSecondaryUse: "2100"}},
		{ID: 2, Attrs: map[string]string{landuse.FieldSecondaryUse: landuse.OverlapKey}},
		{ID: 3}, // no attributes at all
	}

	landuse.Prepare(fragments)

	if fragments[0].IsOverlap {
		t.Error("primary use wrongly flagged as overlap")
	}
	if !fragments[1].IsOverlap {
		t.Error("secondary use not flagged as overlap")
	}
	if fragments[2].IsOverlap {
		t.Error("attribute-less fragment wrongly flagged")
	}
}

func TestLandUseRun_SecondaryUseExemptFromBalance(t *testing.T) {
	// GIVEN: A balanced parcel plus a 7.8 m² secondary-use fragment
	//        painted over it
	// WHEN: Preparing and running with the layer defaults
	// THEN: The secondary use carries trunc(7.8) = 7 and the primary
	//       coverage alone sums to the official area

	fragments := []*recon.Fragment{
		{ID: 1, Parent: "p1", Geom: geom.NewRect(0, 0, 10, 4), GeomArea: 40},
		{ID: 2, Parent: "p1", Geom: geom.NewRect(0, 0, 2.6, 3), GeomArea: 7.8,
			Attrs: map[string]string{landuse.FieldSecondaryUse: landuse.OverlapKey}},
	}
	landuse.Prepare(fragments)

	engine := recon.NewEngine(geom.NewMemory(), landuse.DefaultConfig())
	result, err := engine.Run(context.Background(), recon.RunInput{
		Parcels:   []recon.Parcel{{Key: "p1", OfficialArea: 40, GeomArea: 40}},
		Fragments: fragments,
	})
	if err != nil {
		t.Fatal(err)
	}

	if len(result.Anomalies) != 0 {
		t.Fatalf("unexpected anomalies: %v", result.Anomalies)
	}
	if result.Fragments[0].SFL != 40 {
		t.Errorf("primary use sfl %d, want 40", result.Fragments[0].SFL)
	}
	if result.Fragments[1].SFL != 7 {
		t.Errorf("secondary use sfl %d, want truncated 7", result.Fragments[1].SFL)
	}
}
