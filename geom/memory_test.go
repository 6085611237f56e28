package geom_test

import (
	"math"
	"testing"

	"github.com/alkis/sfl-engine/geom"
)

func TestMemory_AdjacencyPredicates(t *testing.T) {
	m := geom.NewMemory()

	a := geom.NewRect(0, 0, 10, 10)
	edge := geom.NewRect(10, 0, 12, 10)   // shares the x=10 edge with a
	overlap := geom.NewRect(5, 5, 15, 15) // interiors intersect a
	apart := geom.NewRect(20, 0, 22, 10)

	if touches, err := m.Touches(a, edge); err != nil || !touches {
		t.Errorf("edge-sharing rects: touches=%v err=%v, want true", touches, err)
	}
	if touches, err := m.Touches(a, overlap); err != nil || touches {
		t.Errorf("overlapping rects: touches=%v err=%v, want false (interiors meet)", touches, err)
	}
	if intersects, err := m.Intersects(a, overlap); err != nil || !intersects {
		t.Errorf("overlapping rects: intersects=%v err=%v, want true", intersects, err)
	}
	if intersects, err := m.Intersects(a, apart); err != nil || intersects {
		t.Errorf("distant rects: intersects=%v err=%v, want false", intersects, err)
	}
}

func TestMemory_DistanceAndBuffer(t *testing.T) {
	m := geom.NewMemory()

	a := geom.NewRect(0, 0, 10, 10)
	b := geom.NewRect(13, 14, 20, 20)

	d, err := m.Distance(a, b)
	if err != nil {
		t.Fatal(err)
	}
	if want := math.Hypot(3, 4); d != want {
		t.Errorf("distance %g, want %g", d, want)
	}

	buffered, err := m.Buffer(a, 1)
	if err != nil {
		t.Fatal(err)
	}
	area, err := m.Area(buffered)
	if err != nil {
		t.Fatal(err)
	}
	if area != 144 {
		t.Errorf("buffered area %g, want 144", area)
	}
}

func TestMemory_UnionAccumulatesArea(t *testing.T) {
	m := geom.NewMemory()

	u, err := m.Union(geom.NewRect(0, 0, 10, 4), geom.NewRect(10, 0, 11, 2))
	if err != nil {
		t.Fatal(err)
	}
	area, err := m.Area(u)
	if err != nil {
		t.Fatal(err)
	}
	if area != 42 {
		t.Errorf("union area %g, want 42", area)
	}
}

func TestMemory_WKTRoundTrip(t *testing.T) {
	m := geom.NewMemory()

	g, err := m.DecodeWKT("POLYGON ((1 2, 5 2, 5 8, 1 8, 1 2))")
	if err != nil {
		t.Fatal(err)
	}
	area, err := m.Area(g)
	if err != nil {
		t.Fatal(err)
	}
	if area != 24 {
		t.Errorf("decoded area %g, want 24", area)
	}

	wkt, err := m.EncodeWKT(g)
	if err != nil {
		t.Fatal(err)
	}
	back, err := m.DecodeWKT(wkt)
	if err != nil {
		t.Fatalf("re-decode of %q failed: %v", wkt, err)
	}
	area2, _ := m.Area(back)
	if area2 != area {
		t.Errorf("round trip changed area: %g -> %g", area, area2)
	}
}

func TestMemory_DecodeWKT_Rejections(t *testing.T) {
	m := geom.NewMemory()
	for _, wkt := range []string{
		"LINESTRING (0 0, 1 1)",
		"POLYGON",
		"POLYGON ((garbage))",
	} {
		if _, err := m.DecodeWKT(wkt); err == nil {
			t.Errorf("DecodeWKT(%q) accepted malformed input", wkt)
		}
	}
}
