package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/JustinWhittecar/bvcore/internal/catalog"
)

// Store is the Postgres-backed catalog and valuation history.
type Store struct {
	Pool *pgxpool.Pool
}

func NewStore(pool *pgxpool.Pool) *Store {
	return &Store{Pool: pool}
}

// Connect opens a pool and checks it.
func Connect(ctx context.Context, dsn string) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return NewStore(pool), nil
}

func (s *Store) Close() { s.Pool.Close() }

// Migrate creates the equipment, lookup and valuation tables.
func (s *Store) Migrate(ctx context.Context) error {
	for _, ddl := range []string{
		`CREATE TABLE IF NOT EXISTS equipment (
			id SERIAL PRIMARY KEY,
			equipment_key TEXT UNIQUE NOT NULL,
			name TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'misc',
			bv INTEGER NOT NULL DEFAULT 0,
			heat INTEGER NOT NULL DEFAULT 0,
			tonnage DOUBLE PRECISION NOT NULL DEFAULT 0,
			slots INTEGER NOT NULL DEFAULT 0,
			tech_base TEXT NOT NULL DEFAULT 'IS',
			explosive TEXT NOT NULL DEFAULT '',
			ammo_for TEXT NOT NULL DEFAULT '',
			direct_fire BOOLEAN NOT NULL DEFAULT FALSE,
			defensive_bv INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE TABLE IF NOT EXISTS equipment_lookup (
			equipment_id INTEGER NOT NULL REFERENCES equipment(id) ON DELETE CASCADE,
			lookup_name TEXT PRIMARY KEY
		)`,
		`CREATE TABLE IF NOT EXISTS valuations (
			id UUID PRIMARY KEY,
			unit TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT '',
			published_bv INTEGER,
			total_bv INTEGER NOT NULL,
			defensive_bv DOUBLE PRECISION NOT NULL,
			offensive_bv DOUBLE PRECISION NOT NULL,
			unresolved TEXT[] NOT NULL DEFAULT '{}',
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)`,
	} {
		if _, err := s.Pool.Exec(ctx, ddl); err != nil {
			return fmt.Errorf("create table: %w", err)
		}
	}
	return nil
}

// LoadEquipment reads the whole equipment table. Use it as a catalog
// source with catalog.SourceFunc(store.LoadEquipment).
func (s *Store) LoadEquipment(ctx context.Context) ([]catalog.Entry, error) {
	rows, err := s.Pool.Query(ctx, `SELECT `+equipmentColumns+` FROM equipment ORDER BY equipment_key`)
	if err != nil {
		return nil, fmt.Errorf("query equipment: %w", err)
	}
	defer rows.Close()

	var entries []catalog.Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// LoadAliases returns the lookup_name -> equipment_key map.
func (s *Store) LoadAliases(ctx context.Context) (map[string]string, error) {
	rows, err := s.Pool.Query(ctx, `
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

// SeedEquipment replaces the equipment catalog and its lookup names in one
// transaction. It returns the number of lookup names linked.
func (s *Store) SeedEquipment(ctx context.Context, entries []catalog.Entry, pairs [][2]string) (int, error) {
	tx, err := s.Pool.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, `DELETE FROM equipment`); err != nil {
		return 0, fmt.Errorf("clear equipment: %w", err)
	}

	ids := make(map[string]int, len(entries))
	for _, e := range entries {
		var id int
		err := tx.QueryRow(ctx,
			`INSERT INTO equipment (`+equipmentColumns+`)
			 VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
			 RETURNING id`, entryArgs(e)...).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("insert %s: %w", e.ID, err)
		}
		ids[e.ID] = id
	}

	batch := &pgx.Batch{}
	for _, p := range pairs {
		id, ok := ids[p[1]]
		if !ok {
			continue
		}
		batch.Queue(`INSERT INTO equipment_lookup (equipment_id, lookup_name) VALUES ($1, $2) ON CONFLICT DO NOTHING`, id, p[0])
	}
	linked := batch.Len()
	if linked > 0 {
		if err := tx.SendBatch(ctx, batch).Close(); err != nil {
			return 0, fmt.Errorf("insert lookups: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return linked, nil
}

// Valuation is one recorded BV computation.
type Valuation struct {
	ID          uuid.UUID
	Unit        string
	Source      string
	PublishedBV int
	TotalBV     int
	DefensiveBV float64
	OffensiveBV float64
	Unresolved  []string
	CreatedAt   time.Time
}

// SaveValuation inserts v, assigning an id when it has none. A zero
// PublishedBV is stored as NULL.
func (s *Store) SaveValuation(ctx context.Context, v *Valuation) error {
	if v.ID == uuid.Nil {
		v.ID = uuid.New()
	}
	var published *int
	if v.PublishedBV > 0 {
		published = &v.PublishedBV
	}
	unresolved := v.Unresolved
	if unresolved == nil {
		unresolved = []string{}
	}
	return s.Pool.QueryRow(ctx,
		`INSERT INTO valuations (id, unit, source, published_bv, total_bv, defensive_bv, offensive_bv, unresolved)
		 VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
		 RETURNING created_at`,
		v.ID, v.Unit, v.Source, published, v.TotalBV, v.DefensiveBV, v.OffensiveBV, unresolved,
	).Scan(&v.CreatedAt)
}

// RecentValuations returns the latest valuations for unit, newest first.
func (s *Store) RecentValuations(ctx context.Context, unit string, limit int) ([]Valuation, error) {
	rows, err := s.Pool.Query(ctx,
		`SELECT id, unit, source, COALESCE(published_bv, 0), total_bv, defensive_bv, offensive_bv, unresolved, created_at
		 FROM valuations WHERE unit = $1
		 ORDER BY created_at DESC LIMIT $2`, unit, limit)
	if err != nil {
		return nil, fmt.Errorf("query valuations: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Valuation, error) {
		var v Valuation
		err := row.Scan(&v.ID, &v.Unit, &v.Source, &v.PublishedBV, &v.TotalBV,
			&v.DefensiveBV, &v.OffensiveBV, &v.Unresolved, &v.CreatedAt)
		return v, err
	})
}
