/*
engine.go - Run orchestration

PURPOSE:
  Sequences one reconciliation run:

    1. Group fragments by parent key, compute improvement factors
    2. AreaScaler over all fragments (plus initial EMZ)
    3. SliverClassifier: main / keep / merge / delete
    4. SliverMerger per group (targets are mains plus kept minis)
    5. Overlap-exempt fragments get a truncated area
    6. DeltaReconciler per group
    7. Emit final fragments, deleted ids, anomaly report

CONCURRENCY:
  Merge and reconciliation never cross a parent key, so groups are
  processed concurrently with a bounded errgroup. No mutable state is
  shared across groups; per-group findings are collected into
  preallocated slots and stitched together in deterministic order.

FAILURE MODEL:
  Bad parcels and failing geometry calls degrade into anomalies. The
  only hard errors are engine misuse: nil provider, duplicate ids.

SEE ALSO:
  - types.go: Fragment, ParentGroup, Anomaly
  - classifier.go, merger.go, reconciler.go: The per-step contracts
*/
package recon

import (
	"context"
	"fmt"
	"runtime"
	"sort"

	"golang.org/x/sync/errgroup"

	"github.com/alkis/sfl-engine/geom"
)

// =============================================================================
// CONFIG
// =============================================================================

// Config controls one engine instance.
type Config struct {
	Thresholds Thresholds

	// KeepUnmerged retains unmergeable slivers standalone instead of
	// deleting them. The anomaly is recorded either way.
	KeepUnmerged bool

	// Workers bounds concurrent group processing. <= 0 means
	// GOMAXPROCS.
	Workers int
}

// Engine runs the reconciliation pipeline.
type Engine struct {
	Geom   geom.Provider
	Config Config
}

// NewEngine wires an engine with the given provider and config.
func NewEngine(provider geom.Provider, cfg Config) *Engine {
	return &Engine{Geom: provider, Config: cfg}
}

// =============================================================================
// RUN INPUT / RESULT
// =============================================================================

// RunInput is the fragment and parcel set for one layer run.
type RunInput struct {
	Parcels   []Parcel
	Fragments []*Fragment
}

// RunResult is the engine's output, handed to the persistence layer.
type RunResult struct {
	// Fragments is the surviving set, in input order, with updated
	// geometry, areas, SFL and EMZ.
	Fragments []*Fragment

	// DeletedIDs lists fragments removed from the live set: merged
	// away or deleted outright.
	DeletedIDs []FragmentID

	// Anomalies is the run's data-quality report.
	Anomalies []Anomaly

	// Dispositions records the terminal state of every input fragment.
	Dispositions map[FragmentID]Disposition
}

// =============================================================================
// RUN
// =============================================================================

// Run executes the pipeline over the input. Input fragments are
// mutated in place; the result references them.
func (e *Engine) Run(ctx context.Context, in RunInput) (*RunResult, error) {
	if e.Geom == nil {
		return nil, ErrNoProvider
	}

	groups, globalAnomalies, err := e.buildGroups(in)
	if err != nil {
		return nil, err
	}

	// Deterministic group order for anomaly stitching.
	keys := make([]ParentKey, 0, len(groups))
	for k := range groups {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })

	scaler := AreaScaler{}
	yield := YieldCalculator{}
	classifier := &SliverClassifier{Geom: e.Geom, Thresholds: e.Config.Thresholds}
	merger := &SliverMerger{Geom: e.Geom, Thresholds: e.Config.Thresholds, Scaler: scaler, Yield: yield}
	reconciler := &DeltaReconciler{Thresholds: e.Config.Thresholds, Yield: yield}

	outcomes := make([]groupOutcome, len(keys))

	workers := e.Config.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	eg, _ := errgroup.WithContext(ctx)
	eg.SetLimit(workers)

	for i, key := range keys {
		i := i // per-iteration copy; required while go.mod declares go < 1.22
		g := groups[key]
		eg.Go(func() error {
			outcomes[i] = e.processGroup(g, scaler, yield, classifier, merger, reconciler)
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Stitch results in deterministic order.
	result := &RunResult{
		Anomalies:    globalAnomalies,
		Dispositions: make(map[FragmentID]Disposition, len(in.Fragments)),
	}
	for i := range keys {
		result.Anomalies = append(result.Anomalies, outcomes[i].anomalies...)
		for id, d := range outcomes[i].dispositions {
			result.Dispositions[id] = d
		}
	}
	for _, f := range in.Fragments {
		switch result.Dispositions[f.ID] {
		case DispositionKept:
			result.Fragments = append(result.Fragments, f)
		case DispositionMerged, DispositionDeleted:
			result.DeletedIDs = append(result.DeletedIDs, f.ID)
		}
	}
	return result, nil
}

// buildGroups indexes fragments by parent key and attaches parcel
// data. Parcels without usable geometry and fragments without a parcel
// record become anomalies, not errors.
func (e *Engine) buildGroups(in RunInput) (map[ParentKey]*ParentGroup, []Anomaly, error) {
	groups := make(map[ParentKey]*ParentGroup, len(in.Parcels))
	var anomalies []Anomaly

	for _, p := range in.Parcels {
		if _, exists := groups[p.Key]; exists {
			return nil, nil, fmt.Errorf("%w: %s", ErrDuplicateParcel, p.Key)
		}
		k, ok := ImprovementFactor(p.OfficialArea, p.GeomArea)
		if !ok {
			anomalies = append(anomalies, Anomaly{
				Parent: p.Key,
				Kind:   AnomalyInvalidParent,
				Detail: fmt.Sprintf("parcel geometry area %g is unusable, improvement factor falls back to 1", p.GeomArea),
			})
		}
		groups[p.Key] = &ParentGroup{
			Key:          p.Key,
			OfficialArea: p.OfficialArea,
			GeomArea:     p.GeomArea,
			Improvement:  k,
			FactorValid:  ok,
			HasParcel:    true,
		}
	}

	seen := make(map[FragmentID]bool, len(in.Fragments))
	for _, f := range in.Fragments {
		if seen[f.ID] {
			return nil, nil, fmt.Errorf("%w: %d", ErrDuplicateFragmentID, f.ID)
		}
		seen[f.ID] = true

		g, ok := groups[f.Parent]
		if !ok {
			// Orphan fragments are carried through unscaled rather
			// than reconciled against an unknown target.
			kOne, _ := ImprovementFactor(0, 0)
			g = &ParentGroup{Key: f.Parent, Improvement: kOne}
			groups[f.Parent] = g
			anomalies = append(anomalies, Anomaly{
				Parent: f.Parent,
				Kind:   AnomalyInvalidParent,
				Detail: "no parcel record for this parent key",
			})
		}
		g.Fragments = append(g.Fragments, f)
	}
	return groups, anomalies, nil
}

// groupOutcome is the result of processing one parent group.
type groupOutcome struct {
	anomalies    []Anomaly
	dispositions map[FragmentID]Disposition
}

// processGroup runs scale, classify, merge, overlap marking and
// reconciliation for one parent group. It touches only this group's
// fragments.
func (e *Engine) processGroup(
	g *ParentGroup,
	scaler AreaScaler,
	yield YieldCalculator,
	classifier *SliverClassifier,
	merger *SliverMerger,
	reconciler *DeltaReconciler,
) (out groupOutcome) {
	out.dispositions = make(map[FragmentID]Disposition, len(g.Fragments))

	scaler.Scale(g)
	for _, f := range g.Fragments {
		yield.Apply(f)
	}

	var mains, candidates []*Fragment
	for _, f := range g.Fragments {
		switch classifier.Classify(f, g) {
		case ClassMain, ClassKeep:
			mains = append(mains, f)
			out.dispositions[f.ID] = DispositionKept
		case ClassMerge:
			candidates = append(candidates, f)
		case ClassDelete:
			out.dispositions[f.ID] = DispositionDeleted
		}
	}

	merge := merger.MergeGroup(g, mains, candidates)
	out.anomalies = append(out.anomalies, merge.Anomalies...)
	for id := range merge.MergedInto {
		out.dispositions[id] = DispositionMerged
	}
	live := mains
	for _, f := range merge.Unmerged {
		if e.Config.KeepUnmerged {
			live = append(live, f)
			out.dispositions[f.ID] = DispositionKept
		} else {
			out.dispositions[f.ID] = DispositionDeleted
		}
	}

	// Overlap-exempt fragments keep a truncated area; they never
	// participate in the exact-sum distribution.
	for _, f := range live {
		if f.IsOverlap {
			f.SFL = int64(f.GeomArea)
			yield.Apply(f)
		}
	}

	g.Fragments = live
	if g.HasParcel {
		out.anomalies = append(out.anomalies, reconciler.Reconcile(g)...)
	}
	return out
}
