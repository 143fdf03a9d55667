package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/JustinWhittecar/bvcore/internal/db"
)

var (
	exportDSN     string
	exportReplace bool
)

var exportCmd = &cobra.Command{
	Use:   "export <out.db>",
	Short: "Copy the Postgres equipment catalog into a SQLite file",
	Long: `Reads equipment and lookup names from Postgres and writes them to a
SQLite file the server can serve read-only (catalog.source: sqlite).
--replace removes an existing file first.`,
	Args: cobra.ExactArgs(1),
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportDSN, "dsn", "", "Postgres connection string (default: DATABASE_URL)")
	exportCmd.Flags().BoolVar(&exportReplace, "replace", false, "delete the output file first")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	dsn := exportDSN
	if dsn == "" {
		dsn = cfg.Catalog.PostgresDSN
	}
	if dsn == "" {
		return fmt.Errorf("no Postgres DSN: pass --dsn or set DATABASE_URL")
	}

	store, err := db.Connect(ctx, dsn)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.LoadEquipment(ctx)
	if err != nil {
		return err
	}
	aliases, err := store.LoadAliases(ctx)
	if err != nil {
		return err
	}

	if exportReplace {
		if err := os.Remove(args[0]); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	out, err := db.OpenSQLite(args[0])
	if err != nil {
		return err
	}
	defer out.Close()

	linked, err := db.SeedSQLite(ctx, out, entries, aliasPairs(aliases))
	if err != nil {
		return err
	}
	logger.Info("catalog exported", zap.String("path", args[0]), zap.Int("equipment", len(entries)), zap.Int("lookups", linked))
	fmt.Fprintf(cmd.OutOrStdout(), "Exported %d equipment rows and %d lookup names to %s\n", len(entries), linked, args[0])
	return nil
}

func aliasPairs(m map[string]string) [][2]string {
	pairs := make([][2]string, 0, len(m))
	for k, v := range m {
		pairs = append(pairs, [2]string{k, v})
	}
	sort.Slice(pairs, func(i, j int) bool { return pairs[i][0] < pairs[j][0] })
	return pairs
}
