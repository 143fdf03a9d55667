package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JustinWhittecar/bvcore/internal/catalog"
	"github.com/JustinWhittecar/bvcore/internal/db"
	"github.com/JustinWhittecar/bvcore/internal/equipment"
)

var (
	seedDSN     string
	seedSQLite  string
	seedCatalog string
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load the equipment catalog and lookup names into a database",
	Long: `Replaces the equipment and equipment_lookup tables with the built-in
catalog (or --catalog FILE) and the alias tables. Writes to Postgres by
default (--dsn, DATABASE_URL) or to a SQLite file with --sqlite.`,
	Args: cobra.NoArgs,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().StringVar(&seedDSN, "dsn", "", "Postgres connection string (default: DATABASE_URL)")
	seedCmd.Flags().StringVar(&seedSQLite, "sqlite", "", "seed this SQLite file instead of Postgres")
	seedCmd.Flags().StringVar(&seedCatalog, "catalog", "", "catalog YAML file (default: built-in)")
}

func runSeed(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	src := catalog.EmbeddedSource()
	if seedCatalog != "" {
		src = catalog.FileSource(seedCatalog)
	}
	entries, err := src.Load(ctx)
	if err != nil {
		return err
	}
	tables, err := equipment.DefaultAliasTables()
	if err != nil {
		return err
	}
	pairs := tables.Pairs()

	var linked int
	if seedSQLite != "" {
		sqlDB, err := db.OpenSQLite(seedSQLite)
		if err != nil {
			return err
		}
		defer sqlDB.Close()
		if linked, err = db.SeedSQLite(ctx, sqlDB, entries, pairs); err != nil {
			return err
		}
	} else {
		dsn := seedDSN
		if dsn == "" {
			dsn = cfg.Catalog.PostgresDSN
		}
		if dsn == "" {
			return fmt.Errorf("no Postgres DSN: pass --dsn, set DATABASE_URL or use --sqlite")
		}
		store, err := db.Connect(ctx, dsn)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		if linked, err = store.SeedEquipment(ctx, entries, pairs); err != nil {
			return err
		}
	}

	logger.Info("catalog seeded",
		zap.Int("equipment", len(entries)),
		zap.Int("lookups", linked),
		zap.Int("aliases", len(pairs)))
	fmt.Fprintf(cmd.OutOrStdout(), "Seeded %d equipment rows and %d lookup names\n", len(entries), linked)
	return nil
}
