package recon_test

import (
	"github.com/shopspring/decimal"

	"github.com/alkis/sfl-engine/geom"
	"github.com/alkis/sfl-engine/recon"
)

func one() decimal.Decimal { return decimal.NewFromInt(1) }

func factorOne() decimal.Decimal { return one() }

// rect builds an axis-aligned rectangle region for the in-memory provider.
func rect(minX, minY, maxX, maxY float64) geom.Geometry {
	return geom.NewRect(minX, minY, maxX, maxY)
}

func fragmentIDs(fs []*recon.Fragment) []int64 {
	out := make([]int64, 0, len(fs))
	for _, f := range fs {
		out = append(out, int64(f.ID))
	}
	return out
}
