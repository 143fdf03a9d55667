package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/JustinWhittecar/bvcore/internal/db"
	"github.com/JustinWhittecar/bvcore/internal/verify"
)

var verifyFlags struct {
	dbPath   string
	mtfRoot  string
	csvPath  string
	workers  int
	update   bool
	record   bool
	outliers int
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare calculated BV against published values",
	Long: `Reads every variant with a published BV from a SQLite unit database,
finds its .mtf file under --mtf, values it and reports how close the
calculation lands. Writes a CSV sorted by absolute difference.

--update stores the calculated values on variant_stats. --record saves
each result to the Postgres valuations table.`,
	Args: cobra.NoArgs,
	RunE: runVerify,
}

func init() {
	f := verifyCmd.Flags()
	f.StringVar(&verifyFlags.dbPath, "db", "", "SQLite unit database (default: catalog.sqlite_path)")
	f.StringVar(&verifyFlags.mtfRoot, "mtf", "data/megamek-data/data/mekfiles/meks", "root directory of .mtf files")
	f.StringVar(&verifyFlags.csvPath, "csv", "bv-verification.csv", "CSV report path (empty to skip)")
	f.IntVar(&verifyFlags.workers, "workers", runtime.NumCPU(), "parallel valuations")
	f.BoolVar(&verifyFlags.update, "update", false, "write calculated values back to variant_stats")
	f.BoolVar(&verifyFlags.record, "record", false, "save results to Postgres (needs DATABASE_URL)")
	f.IntVar(&verifyFlags.outliers, "outliers", 20, "number of outliers to print")
}

func runVerify(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := cmd.OutOrStdout()

	dbPath := verifyFlags.dbPath
	if dbPath == "" {
		dbPath = cfg.Catalog.SQLitePath
	}
	unitsDB, err := db.OpenSQLite(dbPath)
	if err != nil {
		return err
	}
	defer unitsDB.Close()

	units, err := db.PublishedUnits(ctx, unitsDB)
	if err != nil {
		return err
	}
	index, err := verify.BuildIndex(verifyFlags.mtfRoot)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Loaded %d variants, indexed %d MTF files\n", len(units), len(index))

	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()

	runner := &verify.Runner{Calc: env.Calc, Index: index, Workers: verifyFlags.workers, Logger: logger}
	results, missing, err := runner.Run(ctx, units)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "\n=== BV Verification Results ===\n")
	fmt.Fprintf(out, "Total variants: %d\nMTF matched: %d\nNo MTF found: %d\n\n", len(units), len(results), len(missing))
	verify.Summarize(results).WriteText(out)

	verify.SortByDiff(results)
	if verifyFlags.csvPath != "" {
		f, err := os.Create(verifyFlags.csvPath)
		if err != nil {
			return fmt.Errorf("create csv: %w", err)
		}
		err = verify.WriteCSV(f, results)
		if cerr := f.Close(); err == nil {
			err = cerr
		}
		if err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		fmt.Fprintf(out, "\nCSV written to %s\n", verifyFlags.csvPath)
	}

	fmt.Fprintf(out, "\n=== Top %d Outliers (by absolute diff) ===\n", verifyFlags.outliers)
	for i, r := range results {
		if i >= verifyFlags.outliers {
			break
		}
		fmt.Fprintf(out, "%-30s %-10s pub=%4d calc=%4d diff=%+5d (%.1f%%) def=%.0f off=%.0f\n",
			r.Unit.Chassis, r.Unit.ModelCode, r.Unit.BattleValue, r.Calculated, r.Diff(), r.PctDiff(), r.DefensiveBV, r.OffensiveBV)
	}

	if verifyFlags.update {
		n, err := db.SaveCalculated(ctx, unitsDB, verify.Calculated(results))
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nUpdated %d variant_stats rows\n", n)
	}

	if verifyFlags.record {
		if cfg.Catalog.PostgresDSN == "" {
			return fmt.Errorf("--record needs DATABASE_URL")
		}
		store, err := db.Connect(ctx, cfg.Catalog.PostgresDSN)
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.Migrate(ctx); err != nil {
			return err
		}
		var errs error
		for _, r := range results {
			errs = multierr.Append(errs, store.SaveValuation(ctx, &db.Valuation{
				Unit:        r.Unit.Name,
				Source:      r.Path,
				PublishedBV: r.Unit.BattleValue,
				TotalBV:     r.Calculated,
				DefensiveBV: r.DefensiveBV,
				OffensiveBV: r.OffensiveBV,
				Unresolved:  r.Unresolved,
			}))
		}
		if errs != nil {
			return errs
		}
		logger.Info("valuations recorded", zap.Int("count", len(results)))
	}
	return nil
}
