/*
Package geom defines the geometry capability interface consumed by the
reconciliation engine.

PURPOSE:
  The engine never computes polygon geometry itself. It treats every
  geometry as an opaque handle and calls into a Provider for the small
  capability set it needs: area, perimeter length, adjacency predicates,
  boundary distance, union, and buffering.

KEY CONCEPTS:
  Geometry: An opaque handle. Only the Provider that produced a handle
            may interpret it. The engine stores handles on fragments and
            passes them back unmodified.
  Provider: The capability set. Every call can fail (invalid geometry,
            backend error); the engine isolates failures per call.
  Codec:    WKT encode/decode for transport and storage. Kept separate
            from Provider because the core engine never serializes.

IMPLEMENTATIONS:
  - geos.Provider (geom/geos): production backend on GEOS.
  - Memory: axis-aligned rectangle regions for tests.

SEE ALSO:
  - memory.go: Test implementation
  - geos/geos.go: Production implementation
*/
package geom

// Geometry is an opaque handle owned by the Provider that created it.
type Geometry any

// Provider exposes the geometric operations the engine consumes.
// Implementations must tolerate being called from multiple goroutines
// as long as no single Geometry handle is shared across goroutines.
type Provider interface {
	// Area returns the surface area of g in square meters.
	Area(g Geometry) (float64, error)

	// Length returns the boundary length (perimeter) of g in meters.
	Length(g Geometry) (float64, error)

	// Touches reports whether a and b share boundary points but no
	// interior points.
	Touches(a, b Geometry) (bool, error)

	// Intersects reports whether a and b share any point.
	Intersects(a, b Geometry) (bool, error)

	// Distance returns the minimum distance between a and b in meters.
	Distance(a, b Geometry) (float64, error)

	// Union returns a new geometry covering both a and b. The inputs
	// remain valid.
	Union(a, b Geometry) (Geometry, error)

	// Buffer returns a new geometry expanded outward by dist meters.
	Buffer(g Geometry, dist float64) (Geometry, error)
}

// Codec converts geometries to and from WKT. Implemented by providers
// that back a transport or storage surface.
type Codec interface {
	DecodeWKT(wkt string) (Geometry, error)
	EncodeWKT(g Geometry) (string, error)
}

// ProviderCodec is a Provider that can also serialize its handles.
// The HTTP layer and the run store require this combination.
type ProviderCodec interface {
	Provider
	Codec
}
