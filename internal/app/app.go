package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jgoulah/vehicalc/internal/auth"
	"github.com/jgoulah/vehicalc/internal/config"
	"github.com/jgoulah/vehicalc/internal/database"
	"github.com/jgoulah/vehicalc/internal/emission"
	"github.com/jgoulah/vehicalc/internal/ledger"
	"github.com/jgoulah/vehicalc/internal/logging"
	"github.com/jgoulah/vehicalc/pkg/models"
)

// App bundles the stores and services behind the CLI
type App struct {
	DB     *database.DB
	Ledger *ledger.Ledger
	Auth   *auth.Service
	log    zerolog.Logger
	now    func() time.Time
}

// Open opens the database and builds the ledger on the configured backend
func Open(cfg *config.Config, log zerolog.Logger) (*App, error) {
	path := cfg.GetDatabasePath()

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := database.New(path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	var store ledger.Store
	switch cfg.GetLedgerBackend() {
	case config.BackendCSV:
		store = ledger.NewCSVStore(cfg.GetCSVPath())
	default:
		store = db
	}

	log.Debug().
		Str("database", path).
		Str("ledger_backend", cfg.GetLedgerBackend()).
		Msg("stores opened")

	return &App{
		DB:     db,
		Ledger: ledger.New(store, log),
		Auth:   auth.NewService(db, auth.NewBcryptHasher(0), log),
		log:    logging.Component(log, "app"),
		now:    time.Now,
	}, nil
}

// Close releases the database
func (a *App) Close() error {
	return a.DB.Close()
}

// Record validates raw input, computes its emission, merges it into the
// ledger and appends it to the event log
func (a *App) Record(ctx context.Context, raw emission.RawInput, urban bool) (models.EmissionEvent, error) {
	rec, err := emission.NewInputRecord(raw)
	if err != nil {
		return models.EmissionEvent{}, err
	}

	res, err := emission.Calculate(rec, urban)
	if err != nil {
		return models.EmissionEvent{}, fmt.Errorf("calculating emission: %w", err)
	}

	if err := a.Ledger.RecordEmission(ctx, rec.Username, rec.Month, res.KgCO2); err != nil {
		return models.EmissionEvent{}, err
	}

	ev := models.EmissionEvent{
		ID:             uuid.NewString(),
		Username:       rec.Username,
		Vehicle:        rec.Vehicle.String(),
		Fuel:           rec.Fuel.String(),
		FuelEfficiency: rec.FuelEfficiency,
		Distance:       rec.Distance,
		Month:          rec.Month,
		Strategy:       res.Strategy.String(),
		KgCO2:          res.KgCO2,
		CreatedAt:      a.now().UTC(),
	}

	// The ledger is the source of truth; a failed log write is reported
	// but does not undo the recorded total
	if err := a.DB.InsertEvent(ctx, &ev); err != nil {
		a.log.Warn().Err(err).Str("event_id", ev.ID).Msg("event log write failed")
		return ev, fmt.Errorf("emission recorded but event log failed: %w", err)
	}

	a.log.Debug().
		Str("event_id", ev.ID).
		Str("strategy", ev.Strategy).
		Float64("kg_co2", ev.KgCO2).
		Msg("event stored")
	return ev, nil
}
