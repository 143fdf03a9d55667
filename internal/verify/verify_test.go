package verify

import (
	"bytes"
	"context"
	"encoding/csv"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/JustinWhittecar/bvcore/internal/bvcalc"
	"github.com/JustinWhittecar/bvcore/internal/catalog"
	"github.com/JustinWhittecar/bvcore/internal/db"
	"github.com/JustinWhittecar/bvcore/internal/equipment"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

const mtfDir = "../ingestion/testdata"

func newRunner(t *testing.T, index Index) *Runner {
	t.Helper()
	tables, err := equipment.DefaultAliasTables()
	require.NoError(t, err)
	cache := catalog.NewCache(catalog.EmbeddedSource())
	require.NoError(t, cache.Load(context.Background()))
	return &Runner{
		Calc:    bvcalc.NewCalculator(equipment.NewResolver(cache, tables)),
		Index:   index,
		Workers: 4,
	}
}

func TestBuildIndexAndFind(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "3039u")
	require.NoError(t, os.MkdirAll(sub, 0o755))
	for _, name := range []string{"Hunchback HBK-4G.mtf", "Ostscout OTT-7J.MTF", "notes.txt"} {
		require.NoError(t, os.WriteFile(filepath.Join(sub, name), nil, 0o644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Hunchback HBK-4G.mtf"), nil, 0o644))

	ix, err := BuildIndex(dir)
	require.NoError(t, err)
	assert.Len(t, ix, 2)
	// lexical walk order reaches 3039u/ before the top-level copy
	assert.Equal(t, filepath.Join(sub, "Hunchback HBK-4G.mtf"), ix.Find("Hunchback", "HBK-4G"))
	assert.NotEmpty(t, ix.Find("OSTSCOUT", "ott-7j"))
	assert.Empty(t, ix.Find("Atlas", "AS7-D"))
}

func TestFindWithoutApostrophes(t *testing.T) {
	ix := Index{"kingcrab kgc-000": "/x/King Crab.mtf"}
	assert.Equal(t, "/x/King Crab.mtf", ix.Find("King'Crab", "KGC-000"))
}

func TestBuildIndexMissingRoot(t *testing.T) {
	_, err := BuildIndex(filepath.Join(t.TempDir(), "nope"))
	require.Error(t, err)
}

func TestRun(t *testing.T) {
	ix, err := BuildIndex(mtfDir)
	require.NoError(t, err)
	r := newRunner(t, ix)

	units := []db.PublishedUnit{
		{ID: 1, Chassis: "Hunchback", ModelCode: "HBK-4G", BattleValue: 1041},
		{ID: 2, Chassis: "Atlas", ModelCode: "AS7-D", BattleValue: 1897},
		{ID: 3, Chassis: "Hunchback", ModelCode: "HBK-4G", BattleValue: 1000},
	}
	results, missing, err := r.Run(context.Background(), units)
	require.NoError(t, err)
	require.Len(t, results, 2)
	require.Len(t, missing, 1)
	assert.Equal(t, "Atlas", missing[0].Chassis)

	assert.Equal(t, 1, results[0].Unit.ID)
	assert.Equal(t, 1041, results[0].Calculated)
	assert.Zero(t, results[0].Diff())
	assert.Equal(t, 41, results[1].Diff())
	assert.InDelta(t, 4.1, results[1].PctDiff(), 1e-9)

	s := Summarize(results)
	assert.Equal(t, Summary{
		Total: 2, Exact: 1, Within1: 1, Within5: 1, Within10: 1, Within50: 2,
		Within1Pct: 1, Within5Pct: 2, Within10Pct: 2,
	}, s)

	var buf bytes.Buffer
	s.WriteText(&buf)
	assert.Contains(t, buf.String(), "Exact match:   1 (50.0%)")
}

func TestRunCancelled(t *testing.T) {
	ix, err := BuildIndex(mtfDir)
	require.NoError(t, err)
	r := newRunner(t, ix)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = r.Run(ctx, []db.PublishedUnit{{Chassis: "Hunchback", ModelCode: "HBK-4G", BattleValue: 1}})
	require.ErrorIs(t, err, context.Canceled)
}

func TestWriteCSVSorted(t *testing.T) {
	results := []Result{
		{Unit: db.PublishedUnit{Chassis: "A", ModelCode: "1", BattleValue: 100}, Calculated: 101},
		{Unit: db.PublishedUnit{Chassis: "B", ModelCode: "2", BattleValue: 100}, Calculated: 80, Unresolved: []string{"x", "y"}},
	}
	SortByDiff(results)

	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, results))
	rows, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, []string{"B", "2", "100", "80", "-20", "20", "20.0", "0.0", "0.0", "", "x; y", ""}, rows[1])
	assert.Equal(t, "A", rows[2][0])
}

func TestCalculatedRows(t *testing.T) {
	rows := Calculated([]Result{{Unit: db.PublishedUnit{ID: 7}, Calculated: 900, DefensiveBV: 412.345, OffensiveBV: 500.06}})
	assert.Equal(t, []db.Calculated{{VariantID: 7, BattleValue: 900, DefensiveBV: 412.3, OffensiveBV: 500.1}}, rows)
}
