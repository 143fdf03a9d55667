// Package setup assembles the catalog, resolver and calculator from a
// configuration.
package setup

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/JustinWhittecar/bvcore/internal/bvcalc"
	"github.com/JustinWhittecar/bvcore/internal/catalog"
	"github.com/JustinWhittecar/bvcore/internal/config"
	"github.com/JustinWhittecar/bvcore/internal/db"
	"github.com/JustinWhittecar/bvcore/internal/equipment"
)

// Env is a ready valuation stack. Close releases the catalog's database.
type Env struct {
	Cache    *catalog.Cache
	Resolver *equipment.Resolver
	Calc     *bvcalc.Calculator
	Store    *db.Store // set for the postgres source

	closers []func()
}

func (e *Env) Close() {
	for i := len(e.closers) - 1; i >= 0; i-- {
		e.closers[i]()
	}
}

// Open selects the catalog source named in cfg, merges any lookup names
// stored with it into the alias tables and loads the catalog. A failed
// first load is logged; the cache retries on the next lookup.
func Open(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Env, error) {
	env := &Env{}
	var (
		src     catalog.Source
		aliases map[string]string
		err     error
	)

	switch cfg.Catalog.Source {
	case config.SourceSQLite:
		sqlDB, err := db.ConnectSQLite(cfg.Catalog.SQLitePath)
		if err != nil {
			return nil, err
		}
		env.closers = append(env.closers, func() { sqlDB.Close() })
		es := db.EquipmentSource{DB: sqlDB}
		src = es
		if aliases, err = es.Aliases(ctx); err != nil {
			logger.Warn("equipment_lookup unavailable", zap.Error(err))
		}

	case config.SourcePostgres:
		store, err := db.Connect(ctx, cfg.Catalog.PostgresDSN)
		if err != nil {
			return nil, err
		}
		env.Store = store
		env.closers = append(env.closers, store.Close)
		src = catalog.SourceFunc(store.LoadEquipment)
		if aliases, err = store.LoadAliases(ctx); err != nil {
			logger.Warn("equipment_lookup unavailable", zap.Error(err))
		}

	default:
		src = catalog.EmbeddedSource()
	}

	tables, err := equipment.DefaultAliasTables()
	if err != nil {
		env.Close()
		return nil, fmt.Errorf("alias tables: %w", err)
	}
	if len(aliases) > 0 {
		if tables, err = tables.Extend(aliases); err != nil {
			env.Close()
			return nil, fmt.Errorf("extend alias tables: %w", err)
		}
	}

	env.Cache = catalog.NewCache(src,
		catalog.WithLogger(logger.Named("catalog")),
		catalog.WithLoadTimeout(cfg.GetLoadTimeout()))
	if err := env.Cache.Load(ctx); err != nil {
		logger.Warn("catalog not loaded", zap.String("source", cfg.Catalog.Source), zap.Error(err))
	}

	env.Resolver = equipment.NewResolver(env.Cache, tables, equipment.WithLogger(logger.Named("resolver")))
	env.Calc = bvcalc.NewCalculator(env.Resolver, bvcalc.WithLogger(logger.Named("bv")))
	return env, nil
}
