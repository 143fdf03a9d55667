package db

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JustinWhittecar/bvcore/internal/catalog"
	"github.com/JustinWhittecar/bvcore/internal/equipment"
)

func seededDB(t *testing.T) (*EquipmentSource, []catalog.Entry, int) {
	t.Helper()
	ctx := context.Background()

	db, err := OpenSQLite(filepath.Join(t.TempDir(), "bv.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	entries, err := catalog.EmbeddedSource().Load(ctx)
	require.NoError(t, err)
	tables, err := equipment.DefaultAliasTables()
	require.NoError(t, err)

	linked, err := SeedSQLite(ctx, db, entries, tables.Pairs())
	require.NoError(t, err)
	return &EquipmentSource{DB: db}, entries, linked
}

func TestSeedAndLoadSQLite(t *testing.T) {
	src, want, linked := seededDB(t)
	got, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.ElementsMatch(t, want, got)
	assert.Positive(t, linked)

	aliases, err := src.Aliases(context.Background())
	require.NoError(t, err)
	assert.Len(t, aliases, linked)
	for name, key := range aliases {
		assert.NotEmpty(t, name)
		assert.NotEmpty(t, key)
	}
}

func TestSeedIsRepeatable(t *testing.T) {
	src, want, _ := seededDB(t)
	_, err := SeedSQLite(context.Background(), src.DB, want[:3], nil)
	require.NoError(t, err)

	got, err := src.Load(context.Background())
	require.NoError(t, err)
	assert.Len(t, got, 3)

	// lookups cascade with their equipment rows
	aliases, err := src.Aliases(context.Background())
	require.NoError(t, err)
	assert.Empty(t, aliases)
}

func TestSeedSkipsUnknownTargets(t *testing.T) {
	src, want, _ := seededDB(t)
	linked, err := SeedSQLite(context.Background(), src.DB, want[:1], [][2]string{
		{"Alias", want[0].ID},
		{"Orphan", "no-such-item"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, linked)
}

func TestEquipmentSourceFeedsCache(t *testing.T) {
	src, want, _ := seededDB(t)
	cache := catalog.NewCache(src)
	require.NoError(t, cache.Load(context.Background()))
	assert.Equal(t, len(want), cache.Len())

	e, ok := cache.Lookup(want[0].ID)
	require.True(t, ok)
	assert.Equal(t, want[0], e)
}

func TestConnectSQLiteExisting(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ro.db")
	rw, err := OpenSQLite(path)
	require.NoError(t, err)
	require.NoError(t, rw.Close())

	ro, err := ConnectSQLite(path)
	require.NoError(t, err)
	defer ro.Close()
	entries, err := EquipmentSource{DB: ro}.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPublishedUnitsAndSaveCalculated(t *testing.T) {
	ctx := context.Background()
	db, err := OpenSQLite(filepath.Join(t.TempDir(), "units.db"))
	require.NoError(t, err)
	defer db.Close()

	for _, stmt := range []string{
		`CREATE TABLE chassis (id INTEGER PRIMARY KEY, name TEXT, tech_base TEXT, tonnage INTEGER)`,
		`CREATE TABLE variants (id INTEGER PRIMARY KEY, chassis_id INTEGER, model_code TEXT, name TEXT, battle_value INTEGER)`,
		`CREATE TABLE variant_stats (variant_id INTEGER PRIMARY KEY)`,
		`INSERT INTO chassis VALUES (1, 'Hunchback', 'Inner Sphere', 50)`,
		`INSERT INTO variants VALUES (10, 1, 'HBK-4G', 'Hunchback HBK-4G', 1041)`,
		`INSERT INTO variants VALUES (11, 1, 'HBK-4P', 'Hunchback HBK-4P', 0)`,
		`INSERT INTO variant_stats VALUES (10)`,
	} {
		_, err := db.Exec(stmt)
		require.NoError(t, err, stmt)
	}

	units, err := PublishedUnits(ctx, db)
	require.NoError(t, err)
	require.Len(t, units, 1)
	assert.Equal(t, PublishedUnit{
		ID: 10, Chassis: "Hunchback", ModelCode: "HBK-4G", Name: "Hunchback HBK-4G",
		BattleValue: 1041, TechBase: "Inner Sphere", Tonnage: 50,
	}, units[0])
	assert.Equal(t, "Hunchback HBK-4G", units[0].FileStem())

	n, err := SaveCalculated(ctx, db, []Calculated{{VariantID: 10, BattleValue: 1040, DefensiveBV: 400.5, OffensiveBV: 640}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	// second run finds the columns already present
	n, err = SaveCalculated(ctx, db, []Calculated{{VariantID: 99, BattleValue: 1}})
	require.NoError(t, err)
	assert.Zero(t, n)

	var bv int
	require.NoError(t, db.QueryRow(`SELECT calculated_bv FROM variant_stats WHERE variant_id = 10`).Scan(&bv))
	assert.Equal(t, 1040, bv)
}

func TestPostgresStore(t *testing.T) {
	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		t.Skip("DATABASE_URL not set")
	}
	ctx := context.Background()
	store, err := Connect(ctx, dsn)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Migrate(ctx))

	entries, err := catalog.EmbeddedSource().Load(ctx)
	require.NoError(t, err)
	_, err = store.SeedEquipment(ctx, entries, [][2]string{{"TestAlias", entries[0].ID}})
	require.NoError(t, err)

	got, err := store.LoadEquipment(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, entries, got)

	aliases, err := store.LoadAliases(ctx)
	require.NoError(t, err)
	assert.Equal(t, entries[0].ID, aliases["TestAlias"])

	v := &Valuation{Unit: "Test Unit TST-1", TotalBV: 100, DefensiveBV: 40, OffensiveBV: 60, Unresolved: []string{"widget"}}
	require.NoError(t, store.SaveValuation(ctx, v))
	assert.False(t, v.CreatedAt.IsZero())

	recent, err := store.RecentValuations(ctx, v.Unit, 1)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	assert.Equal(t, v.ID, recent[0].ID)
	assert.Equal(t, []string{"widget"}, recent[0].Unresolved)
}
