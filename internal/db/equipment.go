package db

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"go.uber.org/multierr"

	"github.com/JustinWhittecar/bvcore/internal/catalog"
)

const equipmentColumns = `equipment_key, name, type, bv, heat, tonnage, slots, tech_base, explosive, ammo_for, direct_fire, defensive_bv`

// rowScanner is satisfied by *sql.Rows and pgx.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanEntry(row rowScanner) (catalog.Entry, error) {
	var (
		e                         catalog.Entry
		category, tech, explosive string
	)
	if err := row.Scan(&e.ID, &e.Name, &category, &e.BattleValue, &e.Heat, &e.Weight,
		&e.CriticalSlots, &tech, &explosive, &e.AmmoFor, &e.DirectFire, &e.DefensiveBV); err != nil {
		return e, err
	}
	if err := e.TechBase.UnmarshalText([]byte(tech)); err != nil {
		return e, fmt.Errorf("equipment %s: %w", e.ID, err)
	}
	e.Category = catalog.Category(category)
	e.Explosive = catalog.Explosive(explosive)
	return e, nil
}

func entryArgs(e catalog.Entry) []any {
	return []any{e.ID, e.Name, string(e.Category), e.BattleValue, e.Heat, e.Weight,
		e.CriticalSlots, e.TechBase.String(), string(e.Explosive), e.AmmoFor, e.DirectFire, e.DefensiveBV}
}

// EquipmentSource serves the catalog from the equipment table of a SQLite
// database. It satisfies catalog.Source.
type EquipmentSource struct {
	DB *sql.DB
}

func (s EquipmentSource) Load(ctx context.Context) ([]catalog.Entry, error) {
	rows, err := s.DB.QueryContext(ctx, `SELECT `+equipmentColumns+` FROM equipment ORDER BY equipment_key`)
	if err != nil {
		return nil, fmt.Errorf("query equipment: %w", err)
	}
	defer rows.Close()

	var (
		entries []catalog.Entry
		errs    error
	)
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			errs = multierr.Append(errs, err)
			continue
		}
		entries = append(entries, e)
	}
	errs = multierr.Append(errs, rows.Err())
	if errs != nil {
		return nil, errs
	}
	return entries, nil
}

// Aliases returns the lookup_name -> equipment_key map.
func (s EquipmentSource) Aliases(ctx context.Context) (map[string]string, error) {
	rows, err := s.DB.QueryContext(ctx, `
		SELECT l.lookup_name, e.equipment_key
		FROM equipment_lookup l
		JOIN equipment e ON l.equipment_id = e.id`)
	if err != nil {
		return nil, fmt.Errorf("query equipment_lookup: %w", err)
	}
	defer rows.Close()

	out := map[string]string{}
	for rows.Next() {
		var name, key string
		if err := rows.Scan(&name, &key); err != nil {
			return nil, err
		}
		out[name] = key
	}
	return out, rows.Err()
}

// SeedSQLite replaces the equipment and lookup tables with entries and the
// given (alias, target) pairs. Pairs whose target is not among entries are
// skipped; the count of inserted lookups is returned.
func SeedSQLite(ctx context.Context, db *sql.DB, entries []catalog.Entry, pairs [][2]string) (int, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM equipment`); err != nil {
		return 0, fmt.Errorf("clear equipment: %w", err)
	}

	ids := make(map[string]int64, len(entries))
	insert := `INSERT INTO equipment (` + equipmentColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, e := range entries {
		res, err := tx.ExecContext(ctx, insert, entryArgs(e)...)
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", e.ID, err)
		}
		if ids[e.ID], err = res.LastInsertId(); err != nil {
			return 0, err
		}
	}

	linked := 0
	for _, p := range pairs {
		id, ok := ids[p[1]]
		if !ok {
			continue
		}
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO equipment_lookup (equipment_id, lookup_name) VALUES (?, ?) ON CONFLICT DO NOTHING`,
			id, p[0]); err != nil {
			return 0, fmt.Errorf("insert lookup %s: %w", p[0], err)
		}
		linked++
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return linked, nil
}

// PublishedUnit is a variant row with a published battle value.
type PublishedUnit struct {
	ID          int
	Chassis     string
	ModelCode   string
	Name        string
	BattleValue int
	TechBase    string
	Tonnage     int
}

// FileStem is the MTF base name the variant is usually stored under.
func (u PublishedUnit) FileStem() string {
	return strings.TrimSpace(u.Chassis + " " + u.ModelCode)
}

// PublishedUnits lists every variant with a published BV.
func PublishedUnits(ctx context.Context, db *sql.DB) ([]PublishedUnit, error) {
	rows, err := db.QueryContext(ctx, `
		SELECT v.id, c.name, v.model_code, v.name, COALESCE(v.battle_value,0), c.tech_base, c.tonnage
		FROM variants v
		JOIN chassis c ON v.chassis_id = c.id
		WHERE v.battle_value > 0
		ORDER BY v.id`)
	if err != nil {
		return nil, fmt.Errorf("query variants: %w", err)
	}
	defer rows.Close()

	var units []PublishedUnit
	for rows.Next() {
		var u PublishedUnit
		if err := rows.Scan(&u.ID, &u.Chassis, &u.ModelCode, &u.Name, &u.BattleValue, &u.TechBase, &u.Tonnage); err != nil {
			return nil, fmt.Errorf("scan variant: %w", err)
		}
		units = append(units, u)
	}
	return units, rows.Err()
}

// Calculated is one computed valuation to write back.
type Calculated struct {
	VariantID   int
	BattleValue int
	DefensiveBV float64
	OffensiveBV float64
}

// SaveCalculated stores computed values on variant_stats, adding the
// columns on first use. It returns the number of rows updated.
func SaveCalculated(ctx context.Context, db *sql.DB, results []Calculated) (int, error) {
	for _, col := range []string{"calculated_bv INTEGER", "defensive_br REAL", "offensive_br REAL"} {
		if _, err := db.ExecContext(ctx, `ALTER TABLE variant_stats ADD COLUMN `+col); err != nil &&
			!strings.Contains(err.Error(), "duplicate column") {
			return 0, fmt.Errorf("add column %s: %w", col, err)
		}
	}

	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `UPDATE variant_stats SET calculated_bv=?, defensive_br=?, offensive_br=? WHERE variant_id=?`)
	if err != nil {
		return 0, fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	updated := 0
	for _, r := range results {
		res, err := stmt.ExecContext(ctx, r.BattleValue, r.DefensiveBV, r.OffensiveBV, r.VariantID)
		if err != nil {
			return updated, fmt.Errorf("update variant %d: %w", r.VariantID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			updated++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return updated, nil
}
