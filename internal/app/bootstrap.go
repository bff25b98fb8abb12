package app

import (
	"context"
	"errors"
	"fmt"

	"femwork/internal/checkin"
	"femwork/internal/config"
	"femwork/internal/cycle"
	"femwork/internal/database"
	"femwork/internal/importer"
	"femwork/internal/insight"
	"femwork/internal/llm"
	"femwork/internal/metrics"
	"femwork/internal/task"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Runtime is a wired App plus the resources behind it.
type Runtime struct {
	*App
	DB      *database.DB
	Metrics *metrics.Store
	textGen llm.TextGenerator
}

// FromConfig opens the database, loads scoring tables, picks a model
// provider and wires the App.
func FromConfig(ctx context.Context, cfg *config.Config, logger *zap.Logger) (*Runtime, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	loc, err := cfg.Location()
	if err != nil {
		return nil, err
	}

	eng, err := config.LoadEngine(afero.NewOsFs(), cfg.ScoringTablesPath)
	if err != nil {
		return nil, err
	}

	db, err := database.NewDB(cfg.DatabasePath, logger)
	if err != nil {
		return nil, err
	}

	textGen, err := llm.NewFromConfig(ctx, cfg)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create text generator: %w", err)
	}
	if textGen == nil {
		logger.Info("no model provider configured, using built-in insights")
	}

	store := metrics.NewStore(db.SQL)
	a := NewApp(Deps{
		Engine:   eng,
		Cycles:   cycle.NewRepository(db.SQL),
		CheckIns: checkin.NewRepository(db.SQL),
		Tasks:    task.NewRepository(db.SQL),
		Insights: insight.NewService(textGen, logger),
		Importer: importer.NewImporter(textGen, logger),
		Metrics:  store,
		Logger:   logger,
		Location: loc,
	})
	return &Runtime{App: a, DB: db, Metrics: store, textGen: textGen}, nil
}

// Close releases the model client and the database.
func (r *Runtime) Close() error {
	return errors.Join(llm.Close(r.textGen), r.DB.Close())
}
