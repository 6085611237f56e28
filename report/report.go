/*
Package report summarizes a reconciliation run for plausibility
checking.

PURPOSE:
  A run that finishes without errors can still be wrong in bulk: a
  skewed SFL distribution or a pile of unbalanced parcels points at
  bad thresholds or broken input geometry. This package condenses a
  run result into the figures a reviewer actually looks at:

  - Disposition counts (kept / merged / deleted)
  - Anomaly counts by kind
  - SFL and EMZ distribution (total, mean, standard deviation, range)
  - Residual check: per parcel, official area minus the final
    reconcilable SFL sum. Balanced parcels show 0; anything else
    corresponds to an uncorrected-delta anomaly.
*/
package report

import (
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/alkis/sfl-engine/recon"
)

// Distribution describes one numeric column of the run result.
type Distribution struct {
	Count  int     `json:"count"`
	Total  int64   `json:"total"`
	Mean   float64 `json:"mean"`
	StdDev float64 `json:"std_dev"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Summary is the condensed view of one run.
type Summary struct {
	Fragments    int                       `json:"fragments"`
	Deleted      int                       `json:"deleted"`
	Dispositions map[recon.Disposition]int `json:"dispositions"`
	Anomalies    map[recon.AnomalyKind]int `json:"anomalies"`
	SFL          Distribution              `json:"sfl"`
	EMZ          Distribution              `json:"emz"`
	Balanced     int                       `json:"balanced_parcels"`
	Unbalanced   int                       `json:"unbalanced_parcels"`
	MaxResidual  int64                     `json:"max_residual"`
}

// Summarize condenses a run result against its input parcels.
func Summarize(parcels []recon.Parcel, result *recon.RunResult) Summary {
	s := Summary{
		Fragments:    len(result.Fragments),
		Deleted:      len(result.DeletedIDs),
		Dispositions: make(map[recon.Disposition]int),
		Anomalies:    make(map[recon.AnomalyKind]int),
	}
	for _, d := range result.Dispositions {
		s.Dispositions[d]++
	}
	for _, a := range result.Anomalies {
		s.Anomalies[a.Kind]++
	}

	var sfls, emzs []float64
	sums := make(map[recon.ParentKey]int64, len(parcels))
	for _, f := range result.Fragments {
		sfls = append(sfls, float64(f.SFL))
		s.SFL.Total += f.SFL
		if f.EMZ != nil {
			emzs = append(emzs, float64(*f.EMZ))
			s.EMZ.Total += *f.EMZ
		}
		if !f.IsOverlap {
			sums[f.Parent] += f.SFL
		}
	}
	s.SFL = describe(sfls, s.SFL.Total)
	s.EMZ = describe(emzs, s.EMZ.Total)

	for _, p := range parcels {
		residual := p.OfficialArea - sums[p.Key]
		if residual == 0 {
			s.Balanced++
			continue
		}
		s.Unbalanced++
		if abs := absInt64(residual); abs > s.MaxResidual {
			s.MaxResidual = abs
		}
	}
	return s
}

func describe(values []float64, total int64) Distribution {
	d := Distribution{Count: len(values), Total: total}
	if len(values) == 0 {
		return d
	}
	d.Mean = stat.Mean(values, nil)
	d.Min = floats.Min(values)
	d.Max = floats.Max(values)
	if len(values) > 1 {
		if sd := stat.StdDev(values, nil); !math.IsNaN(sd) {
			d.StdDev = sd
		}
	}
	return d
}

func absInt64(v int64) int64 {
	if v < 0 {
		return -v
	}
	return v
}
