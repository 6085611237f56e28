package geom

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// =============================================================================
// MEMORY PROVIDER - Axis-aligned rectangle regions (for testing/dev)
// =============================================================================

// Memory implements Provider and Codec over regions built from
// axis-aligned rectangles. Good enough to exercise every adjacency and
// merge path deterministically without a geometry backend.
type Memory struct{}

// NewMemory returns a rectangle-region provider.
func NewMemory() *Memory {
	return &Memory{}
}

var _ ProviderCodec = (*Memory)(nil)

// Rect is a single axis-aligned rectangle.
type Rect struct {
	MinX, MinY, MaxX, MaxY float64
}

// Region is the Geometry representation used by Memory: a list of
// rectangles assumed pairwise non-overlapping.
type Region struct {
	Rects []Rect
}

// NewRect builds a single-rectangle region.
func NewRect(minX, minY, maxX, maxY float64) *Region {
	return &Region{Rects: []Rect{{MinX: minX, MinY: minY, MaxX: maxX, MaxY: maxY}}}
}

var errNotRegion = errors.New("geometry is not a memory region")

func asRegion(g Geometry) (*Region, error) {
	r, ok := g.(*Region)
	if !ok || r == nil || len(r.Rects) == 0 {
		return nil, errNotRegion
	}
	return r, nil
}

func (m *Memory) Area(g Geometry) (float64, error) {
	r, err := asRegion(g)
	if err != nil {
		return 0, err
	}
	var area float64
	for _, rc := range r.Rects {
		area += (rc.MaxX - rc.MinX) * (rc.MaxY - rc.MinY)
	}
	return area, nil
}

func (m *Memory) Length(g Geometry) (float64, error) {
	r, err := asRegion(g)
	if err != nil {
		return 0, err
	}
	// Sum of rectangle perimeters. Shared edges inside a region are not
	// subtracted; regions used in tests are built with that in mind.
	var length float64
	for _, rc := range r.Rects {
		length += 2 * ((rc.MaxX - rc.MinX) + (rc.MaxY - rc.MinY))
	}
	return length, nil
}

func (m *Memory) Touches(a, b Geometry) (bool, error) {
	ra, err := asRegion(a)
	if err != nil {
		return false, err
	}
	rb, err := asRegion(b)
	if err != nil {
		return false, err
	}
	touches := false
	for _, x := range ra.Rects {
		for _, y := range rb.Rects {
			if rectsOverlap(x, y) {
				return false, nil // interiors intersect
			}
			if rectsTouch(x, y) {
				touches = true
			}
		}
	}
	return touches, nil
}

func (m *Memory) Intersects(a, b Geometry) (bool, error) {
	ra, err := asRegion(a)
	if err != nil {
		return false, err
	}
	rb, err := asRegion(b)
	if err != nil {
		return false, err
	}
	for _, x := range ra.Rects {
		for _, y := range rb.Rects {
			if rectsOverlap(x, y) || rectsTouch(x, y) {
				return true, nil
			}
		}
	}
	return false, nil
}

func (m *Memory) Distance(a, b Geometry) (float64, error) {
	ra, err := asRegion(a)
	if err != nil {
		return 0, err
	}
	rb, err := asRegion(b)
	if err != nil {
		return 0, err
	}
	min := math.Inf(1)
	for _, x := range ra.Rects {
		for _, y := range rb.Rects {
			if d := rectDistance(x, y); d < min {
				min = d
			}
		}
	}
	return min, nil
}

func (m *Memory) Union(a, b Geometry) (Geometry, error) {
	ra, err := asRegion(a)
	if err != nil {
		return nil, err
	}
	rb, err := asRegion(b)
	if err != nil {
		return nil, err
	}
	out := &Region{Rects: make([]Rect, 0, len(ra.Rects)+len(rb.Rects))}
	out.Rects = append(out.Rects, ra.Rects...)
	out.Rects = append(out.Rects, rb.Rects...)
	return out, nil
}

func (m *Memory) Buffer(g Geometry, dist float64) (Geometry, error) {
	r, err := asRegion(g)
	if err != nil {
		return nil, err
	}
	out := &Region{Rects: make([]Rect, 0, len(r.Rects))}
	for _, rc := range r.Rects {
		out.Rects = append(out.Rects, Rect{
			MinX: rc.MinX - dist,
			MinY: rc.MinY - dist,
			MaxX: rc.MaxX + dist,
			MaxY: rc.MaxY + dist,
		})
	}
	return out, nil
}

// DecodeWKT accepts POLYGON WKT and keeps the envelope of the outer
// ring. Envelope semantics are sufficient for the adjacency decisions
// this provider is used to exercise.
func (m *Memory) DecodeWKT(wkt string) (Geometry, error) {
	s := strings.TrimSpace(wkt)
	upper := strings.ToUpper(s)
	if !strings.HasPrefix(upper, "POLYGON") {
		return nil, fmt.Errorf("memory codec: unsupported WKT type in %q", truncateWKT(s))
	}
	open := strings.Index(s, "((")
	end := strings.Index(s, ")")
	if open < 0 || end < open {
		return nil, fmt.Errorf("memory codec: malformed WKT %q", truncateWKT(s))
	}
	coords := s[open+2 : end]
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, pair := range strings.Split(coords, ",") {
		fields := strings.Fields(strings.TrimSpace(pair))
		if len(fields) < 2 {
			return nil, fmt.Errorf("memory codec: malformed coordinate %q", pair)
		}
		x, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("memory codec: %w", err)
		}
		y, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("memory codec: %w", err)
		}
		minX, minY = math.Min(minX, x), math.Min(minY, y)
		maxX, maxY = math.Max(maxX, x), math.Max(maxY, y)
	}
	if minX > maxX {
		return nil, fmt.Errorf("memory codec: empty ring in %q", truncateWKT(s))
	}
	return NewRect(minX, minY, maxX, maxY), nil
}

// EncodeWKT writes the envelope of the whole region as POLYGON WKT.
func (m *Memory) EncodeWKT(g Geometry) (string, error) {
	r, err := asRegion(g)
	if err != nil {
		return "", err
	}
	minX, minY := math.Inf(1), math.Inf(1)
	maxX, maxY := math.Inf(-1), math.Inf(-1)
	for _, rc := range r.Rects {
		minX, minY = math.Min(minX, rc.MinX), math.Min(minY, rc.MinY)
		maxX, maxY = math.Max(maxX, rc.MaxX), math.Max(maxY, rc.MaxY)
	}
	return fmt.Sprintf("POLYGON ((%g %g, %g %g, %g %g, %g %g, %g %g))",
		minX, minY, maxX, minY, maxX, maxY, minX, maxY, minX, minY), nil
}

func truncateWKT(s string) string {
	if len(s) > 40 {
		return s[:40] + "..."
	}
	return s
}

func rectsOverlap(a, b Rect) bool {
	return a.MinX < b.MaxX && b.MinX < a.MaxX && a.MinY < b.MaxY && b.MinY < a.MaxY
}

func rectsTouch(a, b Rect) bool {
	xOverlap := a.MinX <= b.MaxX && b.MinX <= a.MaxX
	yOverlap := a.MinY <= b.MaxY && b.MinY <= a.MaxY
	if !xOverlap || !yOverlap {
		return false
	}
	edgeX := a.MinX == b.MaxX || a.MaxX == b.MinX
	edgeY := a.MinY == b.MaxY || a.MaxY == b.MinY
	return edgeX || edgeY
}

func rectDistance(a, b Rect) float64 {
	dx := math.Max(0, math.Max(a.MinX-b.MaxX, b.MinX-a.MaxX))
	dy := math.Max(0, math.Max(a.MinY-b.MaxY, b.MinY-a.MaxY))
	return math.Hypot(dx, dy)
}
