package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/JustinWhittecar/bvcore/internal/config"
	"github.com/JustinWhittecar/bvcore/internal/db"
	"github.com/JustinWhittecar/bvcore/internal/formulas"
)

const hunchback = "../../internal/ingestion/testdata/Hunchback HBK-4G.mtf"

func testCmd(t *testing.T) (*cobra.Command, *bytes.Buffer) {
	t.Helper()
	logger = zap.NewNop()
	cfg = config.DefaultConfig()
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)
	cmd.SetContext(context.Background())
	return cmd, &out
}

func TestResolveCmd(t *testing.T) {
	cmd, out := testCmd(t)
	require.NoError(t, runResolve(cmd, []string{"ISERMediumLaser", "Flux Capacitor"}))

	lines := strings.Split(strings.TrimSpace(out.String()), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], "er-medium-laser")
	assert.Contains(t, lines[1], "62")
	assert.Contains(t, lines[2], "flux-capacitor")
	assert.Contains(t, lines[2], "-")
}

func TestCalcCmdJSON(t *testing.T) {
	cmd, out := testCmd(t)
	calcJSON = true
	defer func() { calcJSON = false }()

	require.NoError(t, runCalc(cmd, []string{hunchback}))
	var got []calcResult
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	require.Len(t, got, 1)
	assert.Equal(t, "Hunchback HBK-4G", got[0].Unit)
	assert.Equal(t, 1041, got[0].Breakdown.TotalBV)
}

func TestCalcCmdTable(t *testing.T) {
	cmd, out := testCmd(t)
	err := runCalc(cmd, []string{hunchback, "missing.mtf"})
	require.Error(t, err)
	assert.Contains(t, out.String(), "Hunchback HBK-4G")
	assert.Contains(t, out.String(), "1041")
}

func TestCalcRecordNeedsPostgres(t *testing.T) {
	cmd, _ := testCmd(t)
	calcRecord = true
	defer func() { calcRecord = false }()
	require.ErrorContains(t, runCalc(cmd, []string{hunchback}), "postgres")
}

func TestFormulaCmd(t *testing.T) {
	cmd, out := testCmd(t)
	formulaParams.tonnage = 100
	formulaParams.tech = "Clan"
	defer func() { formulaParams.tonnage, formulaParams.tech = 0, "IS" }()

	require.NoError(t, runFormula(cmd, []string{"masc"}))
	var got formulas.Result
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, 4.0, got.Weight)
	assert.Equal(t, 100000.0, got.Cost)
}

func TestSeedSQLiteCmd(t *testing.T) {
	cmd, out := testCmd(t)
	seedSQLite = filepath.Join(t.TempDir(), "bv.db")
	defer func() { seedSQLite = "" }()

	require.NoError(t, runSeed(cmd, nil))
	assert.Contains(t, out.String(), "Seeded")

	// the seeded file now serves as the catalog
	cfg.Catalog.Source = config.SourceSQLite
	cfg.Catalog.SQLitePath = seedSQLite
	out.Reset()
	require.NoError(t, runResolve(cmd, []string{"ISMediumLaser"}))
	assert.Contains(t, out.String(), "medium-laser")
}

func TestSeedNeedsDSN(t *testing.T) {
	cmd, _ := testCmd(t)
	require.ErrorContains(t, runSeed(cmd, nil), "DSN")
}

func TestVerifyCmd(t *testing.T) {
	cmd, out := testCmd(t)
	dir := t.TempDir()

	unitsPath := filepath.Join(dir, "units.db")
	unitsDB, err := db.OpenSQLite(unitsPath)
	require.NoError(t, err)
	for _, stmt := range []string{
		`CREATE TABLE chassis (id INTEGER PRIMARY KEY, name TEXT, tech_base TEXT, tonnage INTEGER)`,
		`CREATE TABLE variants (id INTEGER PRIMARY KEY, chassis_id INTEGER, model_code TEXT, name TEXT, battle_value INTEGER)`,
		`CREATE TABLE variant_stats (variant_id INTEGER PRIMARY KEY)`,
		`INSERT INTO chassis VALUES (1, 'Hunchback', 'Inner Sphere', 50), (2, 'Atlas', 'Inner Sphere', 100)`,
		`INSERT INTO variants VALUES (10, 1, 'HBK-4G', 'Hunchback HBK-4G', 1041), (20, 2, 'AS7-D', 'Atlas AS7-D', 1897)`,
		`INSERT INTO variant_stats VALUES (10), (20)`,
	} {
		_, err := unitsDB.Exec(stmt)
		require.NoError(t, err, stmt)
	}
	require.NoError(t, unitsDB.Close())

	verifyFlags.dbPath = unitsPath
	verifyFlags.mtfRoot = filepath.Dir(hunchback)
	verifyFlags.csvPath = filepath.Join(dir, "report.csv")
	verifyFlags.workers = 2
	verifyFlags.update = true
	verifyFlags.outliers = 5
	defer func() { verifyFlags.update = false }()

	require.NoError(t, runVerify(cmd, nil))
	s := out.String()
	assert.Contains(t, s, "MTF matched: 1")
	assert.Contains(t, s, "No MTF found: 1")
	assert.Contains(t, s, "Updated 1 variant_stats rows")

	report, err := os.ReadFile(verifyFlags.csvPath)
	require.NoError(t, err)
	assert.Contains(t, string(report), "Hunchback,HBK-4G,1041,1041,0,0")
}

func TestExportNeedsDSN(t *testing.T) {
	cmd, _ := testCmd(t)
	require.ErrorContains(t, runExport(cmd, []string{filepath.Join(t.TempDir(), "out.db")}), "DSN")
}

func TestAliasPairsSorted(t *testing.T) {
	got := aliasPairs(map[string]string{"b": "x", "a": "y"})
	assert.Equal(t, [][2]string{{"a", "y"}, {"b", "x"}}, got)
}
