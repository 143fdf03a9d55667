// Package verify compares calculated Battle Values against published ones
// for a library of MegaMek unit files.
package verify

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"io/fs"
	"math"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/JustinWhittecar/bvcore/internal/bvcalc"
	"github.com/JustinWhittecar/bvcore/internal/db"
	"github.com/JustinWhittecar/bvcore/internal/ingestion"
)

// Index maps lower-cased file stems to .mtf paths.
type Index map[string]string

// BuildIndex walks root for .mtf files. The first file seen for a stem wins.
func BuildIndex(root string) (Index, error) {
	index := Index{}
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.EqualFold(filepath.Ext(path), ".mtf") {
			return nil
		}
		key := strings.ToLower(strings.TrimSuffix(filepath.Base(path), filepath.Ext(path)))
		if _, exists := index[key]; !exists {
			index[key] = path
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("index %s: %w", root, err)
	}
	return index, nil
}

// Find returns the file for "Chassis Model", also trying without
// apostrophes.
func (ix Index) Find(chassis, model string) string {
	key := strings.ToLower(strings.TrimSpace(chassis + " " + model))
	if path, ok := ix[key]; ok {
		return path
	}
	if path, ok := ix[strings.ReplaceAll(key, "'", "")]; ok {
		return path
	}
	return ""
}

type Result struct {
	Unit        db.PublishedUnit
	Path        string
	Calculated  int
	DefensiveBV float64
	OffensiveBV float64
	Unresolved  []string
	Warnings    []string
}

func (r Result) Diff() int { return r.Calculated - r.Unit.BattleValue }

func (r Result) AbsDiff() int {
	d := r.Diff()
	if d < 0 {
		return -d
	}
	return d
}

func (r Result) PctDiff() float64 {
	if r.Unit.BattleValue == 0 {
		return 0
	}
	return float64(r.AbsDiff()) / float64(r.Unit.BattleValue) * 100
}

// Runner values units in parallel.
type Runner struct {
	Calc    *bvcalc.Calculator
	Index   Index
	Workers int
	Logger  *zap.Logger
}

// Run values every unit that has a matching file. Units without a file
// are returned as missing. Results keep the order of units.
func (r *Runner) Run(ctx context.Context, units []db.PublishedUnit) (results []Result, missing []db.PublishedUnit, err error) {
	logger := r.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	type job struct {
		unit db.PublishedUnit
		path string
	}
	var jobs []job
	for _, u := range units {
		path := r.Index.Find(u.Chassis, u.ModelCode)
		if path == "" {
			missing = append(missing, u)
			continue
		}
		jobs = append(jobs, job{u, path})
	}

	out := make([]*Result, len(jobs))
	g, gctx := errgroup.WithContext(ctx)
	if r.Workers > 0 {
		g.SetLimit(r.Workers)
	}
	for i, j := range jobs {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			res, err := r.value(j.unit, j.path)
			if err != nil {
				logger.Debug("skipping unparseable file", zap.String("path", j.path), zap.Error(err))
				return nil
			}
			out[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, missing, err
	}

	for _, res := range out {
		if res != nil {
			results = append(results, *res)
		}
	}
	return results, missing, nil
}

func (r *Runner) value(u db.PublishedUnit, path string) (*Result, error) {
	m, err := ingestion.ParseMTF(path)
	if err != nil {
		return nil, err
	}
	in, convErr := r.Calc.InputFromMTF(m)
	b := r.Calc.GetBVBreakdown(in)

	res := &Result{
		Unit:        u,
		Path:        path,
		Calculated:  b.TotalBV,
		DefensiveBV: b.DefensiveBV,
		OffensiveBV: b.OffensiveBV,
		Unresolved:  b.Unresolved,
	}
	for _, e := range multierr.Errors(convErr) {
		res.Warnings = append(res.Warnings, e.Error())
	}
	return res, nil
}

// Summary buckets results by how far they land from the published value.
type Summary struct {
	Total                                       int
	Exact, Within1, Within5, Within10, Within50 int
	Over50                                      int
	Within1Pct, Within5Pct, Within10Pct         int
}

func Summarize(results []Result) Summary {
	s := Summary{Total: len(results)}
	for _, r := range results {
		d := r.AbsDiff()
		if d == 0 {
			s.Exact++
		}
		if d <= 1 {
			s.Within1++
		}
		if d <= 5 {
			s.Within5++
		}
		if d <= 10 {
			s.Within10++
		}
		if d <= 50 {
			s.Within50++
		} else {
			s.Over50++
		}
		p := r.PctDiff()
		if p <= 1 {
			s.Within1Pct++
		}
		if p <= 5 {
			s.Within5Pct++
		}
		if p <= 10 {
			s.Within10Pct++
		}
	}
	return s
}

func pct(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

// WriteText prints the bucket table.
func (s Summary) WriteText(w io.Writer) {
	rows := []struct {
		label string
		n     int
	}{
		{"Exact match:", s.Exact},
		{"Within ±1:", s.Within1},
		{"Within ±5:", s.Within5},
		{"Within ±10:", s.Within10},
		{"Within ±50:", s.Within50},
		{"Over ±50:", s.Over50},
		{"Within 1%:", s.Within1Pct},
		{"Within 5%:", s.Within5Pct},
		{"Within 10%:", s.Within10Pct},
	}
	for _, r := range rows {
		fmt.Fprintf(w, "%-14s %d (%.1f%%)\n", r.label, r.n, pct(r.n, s.Total))
	}
}

// SortByDiff orders results with the largest absolute difference first.
func SortByDiff(results []Result) {
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].AbsDiff() > results[j].AbsDiff()
	})
}

// WriteCSV writes one row per result.
func WriteCSV(w io.Writer, results []Result) error {
	cw := csv.NewWriter(w)
	cw.Write([]string{"Name", "Model", "Published BV", "Calculated BV", "Diff", "Abs Diff", "Pct Diff",
		"Defensive BV", "Offensive BV", "MTF Path", "Unresolved", "Warnings"})
	for _, r := range results {
		cw.Write([]string{
			r.Unit.Chassis,
			r.Unit.ModelCode,
			strconv.Itoa(r.Unit.BattleValue),
			strconv.Itoa(r.Calculated),
			strconv.Itoa(r.Diff()),
			strconv.Itoa(r.AbsDiff()),
			strconv.FormatFloat(r.PctDiff(), 'f', 1, 64),
			strconv.FormatFloat(r.DefensiveBV, 'f', 1, 64),
			strconv.FormatFloat(r.OffensiveBV, 'f', 1, 64),
			r.Path,
			strings.Join(r.Unresolved, "; "),
			strings.Join(r.Warnings, "; "),
		})
	}
	cw.Flush()
	return cw.Error()
}

// Calculated converts results into rows for db.SaveCalculated.
func Calculated(results []Result) []db.Calculated {
	out := make([]db.Calculated, len(results))
	for i, r := range results {
		out[i] = db.Calculated{
			VariantID:   r.Unit.ID,
			BattleValue: r.Calculated,
			DefensiveBV: round1(r.DefensiveBV),
			OffensiveBV: round1(r.OffensiveBV),
		}
	}
	return out
}

func round1(f float64) float64 { return math.Round(f*10) / 10 }
