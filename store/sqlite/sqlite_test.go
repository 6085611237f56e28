package sqlite_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alkis/sfl-engine/recon"
	"github.com/alkis/sfl-engine/report"
	"github.com/alkis/sfl-engine/store"
	"github.com/alkis/sfl-engine/store/sqlite"
)

func newTestStore(t *testing.T) *sqlite.Store {
	st, err := sqlite.New(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })
	return st
}

func sampleRun(id string) (store.Run, []store.FragmentRecord, []recon.FragmentID, []recon.Anomaly) {
	yield := 52.0
	emz := int64(312)
	run := store.Run{
		ID:        id,
		Layer:     "soil",
		Profile:   "soil",
		CreatedAt: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		Summary:   report.Summary{Fragments: 2, Deleted: 1},
	}
	fragments := []store.FragmentRecord{
		{ID: 1, Parent: "p1", WKT: "POLYGON ((0 0, 10 0, 10 6, 0 6, 0 0))",
			GeomArea: 60, SFL: 600, Disposition: recon.DispositionKept},
		{ID: 2, Parent: "p1", WKT: "POLYGON ((0 6, 10 6, 10 10, 0 10, 0 6))",
			GeomArea: 40, SFL: 400, YieldNumber: &yield, EMZ: &emz,
			Disposition: recon.DispositionKept},
	}
	deleted := []recon.FragmentID{7}
	anomalies := []recon.Anomaly{
		{Parent: "p2", Kind: recon.AnomalyUnmergeableSliver, Detail: "fragment 7 has no adjacent fragment"},
	}
	return run, fragments, deleted, anomalies
}

func TestSaveRun_RoundTrip(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id := uuid.NewString()
	run, fragments, deleted, anomalies := sampleRun(id)
	require.NoError(t, st.SaveRun(ctx, run, fragments, deleted, anomalies))

	got, err := st.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "soil", got.Layer)
	assert.Equal(t, run.CreatedAt, got.CreatedAt.UTC())
	assert.Equal(t, 2, got.Summary.Fragments)

	gotFragments, err := st.RunFragments(ctx, id)
	require.NoError(t, err)
	require.Len(t, gotFragments, 2)
	assert.Equal(t, fragments[0].WKT, gotFragments[0].WKT)
	assert.Nil(t, gotFragments[0].YieldNumber)
	require.NotNil(t, gotFragments[1].EMZ)
	assert.EqualValues(t, 312, *gotFragments[1].EMZ)
	assert.Equal(t, recon.DispositionKept, gotFragments[1].Disposition)

	gotDeleted, err := st.RunDeleted(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, deleted, gotDeleted)

	gotAnomalies, err := st.RunAnomalies(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, anomalies, gotAnomalies)
}

func TestSaveRun_WriteOnce(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	id := uuid.NewString()
	run, fragments, deleted, anomalies := sampleRun(id)
	require.NoError(t, st.SaveRun(ctx, run, fragments, deleted, anomalies))

	err := st.SaveRun(ctx, run, nil, nil, nil)
	assert.ErrorIs(t, err, store.ErrRunExists)

	// The failed save must not have clobbered the stored fragments.
	gotFragments, err := st.RunFragments(ctx, id)
	require.NoError(t, err)
	assert.Len(t, gotFragments, 2)
}

func TestListRuns_NewestFirst(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	old, _, _, _ := sampleRun("run-old")
	old.CreatedAt = time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	recent, _, _, _ := sampleRun("run-new")
	recent.CreatedAt = time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)

	require.NoError(t, st.SaveRun(ctx, old, nil, nil, nil))
	require.NoError(t, st.SaveRun(ctx, recent, nil, nil, nil))

	runs, err := st.ListRuns(ctx)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, "run-new", runs[0].ID)
	assert.Equal(t, "run-old", runs[1].ID)
}

func TestReads_UnknownRun(t *testing.T) {
	st := newTestStore(t)
	ctx := context.Background()

	_, err := st.GetRun(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrRunNotFound)

	_, err = st.RunFragments(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrRunNotFound)

	_, err = st.RunDeleted(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrRunNotFound)

	_, err = st.RunAnomalies(ctx, "missing")
	assert.ErrorIs(t, err, store.ErrRunNotFound)
}

func TestRunWithEmptyResult(t *testing.T) {
	// A run over empty input is still a valid, storable statement.
	st := newTestStore(t)
	ctx := context.Background()

	run := store.Run{ID: "empty", Layer: "landuse", Profile: "landuse"}
	require.NoError(t, st.SaveRun(ctx, run, nil, nil, nil))

	fragments, err := st.RunFragments(ctx, "empty")
	require.NoError(t, err)
	assert.Empty(t, fragments)

	got, err := st.GetRun(ctx, "empty")
	require.NoError(t, err)
	assert.False(t, got.CreatedAt.IsZero(), "zero CreatedAt should be defaulted at save time")
}
