package main

import (
	"encoding/json"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"go.uber.org/multierr"
	"go.uber.org/zap"

	"github.com/JustinWhittecar/bvcore/internal/bvcalc"
	"github.com/JustinWhittecar/bvcore/internal/db"
	"github.com/JustinWhittecar/bvcore/internal/ingestion"
)

var (
	calcJSON   bool
	calcRecord bool
)

var calcCmd = &cobra.Command{
	Use:   "calc <file.mtf>...",
	Short: "Compute Battle Value for MegaMek unit files",
	Long: `Parses each .mtf file, converts it to a valuation input and prints the
total with its defensive and offensive ratings. --json prints the full
breakdown. --record stores each result in the Postgres valuations table
(requires the postgres catalog source).`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCalc,
}

func init() {
	calcCmd.Flags().BoolVar(&calcJSON, "json", false, "print full breakdowns as JSON")
	calcCmd.Flags().BoolVar(&calcRecord, "record", false, "save results to Postgres")
}

type calcResult struct {
	Unit      string           `json:"unit"`
	Path      string           `json:"path"`
	Breakdown bvcalc.Breakdown `json:"breakdown"`
	Warnings  []string         `json:"warnings,omitempty"`
}

func runCalc(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	env, err := openEnv(ctx)
	if err != nil {
		return err
	}
	defer env.Close()
	if calcRecord && env.Store == nil {
		return fmt.Errorf("--record needs the postgres catalog source")
	}

	var (
		results []calcResult
		errs    error
	)
	for _, path := range args {
		m, err := ingestion.ParseMTF(path)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		in, convErr := env.Calc.InputFromMTF(m)
		r := calcResult{Unit: m.FullName(), Path: path, Breakdown: env.Calc.GetBVBreakdown(in)}
		for _, e := range multierr.Errors(convErr) {
			r.Warnings = append(r.Warnings, e.Error())
		}
		results = append(results, r)

		if calcRecord {
			v := &db.Valuation{
				Unit:        r.Unit,
				Source:      path,
				TotalBV:     r.Breakdown.TotalBV,
				DefensiveBV: r.Breakdown.DefensiveBV,
				OffensiveBV: r.Breakdown.OffensiveBV,
				Unresolved:  r.Breakdown.Unresolved,
			}
			if err := env.Store.SaveValuation(ctx, v); err != nil {
				errs = multierr.Append(errs, fmt.Errorf("record %s: %w", r.Unit, err))
			} else {
				logger.Debug("valuation recorded", zap.String("unit", r.Unit), zap.Stringer("id", v.ID))
			}
		}
	}

	out := cmd.OutOrStdout()
	if calcJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if err := enc.Encode(results); err != nil {
			return err
		}
		return errs
	}

	w := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "UNIT\tBV\tDEFENSIVE\tOFFENSIVE\tUNRESOLVED")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%d\t%.1f\t%.1f\t%s\n", r.Unit, r.Breakdown.TotalBV,
			r.Breakdown.DefensiveBV, r.Breakdown.OffensiveBV, strings.Join(r.Breakdown.Unresolved, ", "))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	for _, r := range results {
		for _, warn := range r.Warnings {
			logger.Warn("conversion", zap.String("unit", r.Unit), zap.String("warning", warn))
		}
	}
	return errs
}
