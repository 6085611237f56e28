/*
Package geos provides the production geometry backend on GEOS.

PURPOSE:
  Implements geom.Provider and geom.Codec using github.com/twpayne/go-geos.
  Geometry handles are *geos.Geom values created through this provider's
  context; handles from other providers are rejected.

ERROR HANDLING:
  go-geos reports backend failures by panicking. Every operation here
  recovers the panic into an ordinary error so the engine can treat a
  failing pairing as "try the next strategy" instead of losing the run.

SEE ALSO:
  - geom/geom.go: Interface definitions
  - geom/memory.go: Test implementation
*/
package geos

import (
	"errors"
	"fmt"

	geosbase "github.com/twpayne/go-geos"

	"github.com/alkis/sfl-engine/geom"
)

// Provider implements geom.ProviderCodec on a dedicated GEOS context.
type Provider struct {
	ctx *geosbase.Context
}

// NewProvider creates a provider with its own GEOS context.
func NewProvider() *Provider {
	return &Provider{ctx: geosbase.NewContext()}
}

var _ geom.ProviderCodec = (*Provider)(nil)

var errForeignHandle = errors.New("geos: geometry handle not created by this provider")

func asGeom(g geom.Geometry) (*geosbase.Geom, error) {
	gg, ok := g.(*geosbase.Geom)
	if !ok || gg == nil {
		return nil, errForeignHandle
	}
	return gg, nil
}

// recoverOp converts a go-geos panic into an error.
func recoverOp(op string, err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("geos: %s: %v", op, r)
	}
}

func (p *Provider) Area(g geom.Geometry) (area float64, err error) {
	gg, err := asGeom(g)
	if err != nil {
		return 0, err
	}
	defer recoverOp("area", &err)
	return gg.Area(), nil
}

func (p *Provider) Length(g geom.Geometry) (length float64, err error) {
	gg, err := asGeom(g)
	if err != nil {
		return 0, err
	}
	defer recoverOp("length", &err)
	return gg.Length(), nil
}

func (p *Provider) Touches(a, b geom.Geometry) (touches bool, err error) {
	ga, err := asGeom(a)
	if err != nil {
		return false, err
	}
	gb, err := asGeom(b)
	if err != nil {
		return false, err
	}
	defer recoverOp("touches", &err)
	return ga.Touches(gb), nil
}

func (p *Provider) Intersects(a, b geom.Geometry) (intersects bool, err error) {
	ga, err := asGeom(a)
	if err != nil {
		return false, err
	}
	gb, err := asGeom(b)
	if err != nil {
		return false, err
	}
	defer recoverOp("intersects", &err)
	return ga.Intersects(gb), nil
}

func (p *Provider) Distance(a, b geom.Geometry) (dist float64, err error) {
	ga, err := asGeom(a)
	if err != nil {
		return 0, err
	}
	gb, err := asGeom(b)
	if err != nil {
		return 0, err
	}
	defer recoverOp("distance", &err)
	return ga.Distance(gb), nil
}

func (p *Provider) Union(a, b geom.Geometry) (out geom.Geometry, err error) {
	ga, err := asGeom(a)
	if err != nil {
		return nil, err
	}
	gb, err := asGeom(b)
	if err != nil {
		return nil, err
	}
	defer recoverOp("union", &err)
	return ga.Union(gb), nil
}

func (p *Provider) Buffer(g geom.Geometry, dist float64) (out geom.Geometry, err error) {
	gg, err := asGeom(g)
	if err != nil {
		return nil, err
	}
	defer recoverOp("buffer", &err)
	return gg.Buffer(dist, 8), nil
}

func (p *Provider) DecodeWKT(wkt string) (out geom.Geometry, err error) {
	defer recoverOp("decode wkt", &err)
	return p.ctx.NewGeomFromWKT(wkt)
}

func (p *Provider) EncodeWKT(g geom.Geometry) (wkt string, err error) {
	gg, err := asGeom(g)
	if err != nil {
		return "", err
	}
	defer recoverOp("encode wkt", &err)
	return gg.ToWKT(), nil
}
