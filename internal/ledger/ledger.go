package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jgoulah/vehicalc/internal/logging"
	"github.com/jgoulah/vehicalc/pkg/models"
)

// ErrUserNotFound is returned by History when the user has no entry
var ErrUserNotFound = errors.New("ledger: user not found")

// ErrInvalidValue is returned when a negative or non-finite value is recorded
var ErrInvalidValue = errors.New("ledger: value must be a finite non-negative number")

// ErrEmptyUsername is returned when a ledger key is blank
var ErrEmptyUsername = errors.New("ledger: username must not be empty")

// Store is the whole-table persistence contract. SaveLedger replaces the
// stored table atomically
type Store interface {
	LoadLedger(ctx context.Context) (models.Ledger, error)
	SaveLedger(ctx context.Context, l models.Ledger) error
}

// StorageError wraps a failure of the backing store
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("ledger storage: %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// MonthTotal is one row of a user's history
type MonthTotal struct {
	Month models.Month
	KgCO2 float64
	// Recorded is false when the total is exactly zero. A month reported
	// with a zero emission cannot be told apart from one never reported
	Recorded bool
}

// History is a user's twelve months in calendar order
type History []MonthTotal

// Total returns the sum of all months
func (h History) Total() float64 {
	var total float64
	for _, m := range h {
		total += m.KgCO2
	}
	return total
}

// Get returns the total for a month
func (h History) Get(m models.Month) float64 {
	for _, row := range h {
		if row.Month == m {
			return row.KgCO2
		}
	}
	return 0
}

// Ledger merges emission values into per-user monthly totals. Every
// mutation is a full read-modify-write against the store
type Ledger struct {
	mu    sync.Mutex
	store Store
	log   zerolog.Logger
}

// New creates a ledger backed by store
func New(store Store, log zerolog.Logger) *Ledger {
	return &Ledger{
		store: store,
		log:   logging.Component(log, "ledger"),
	}
}

// RecordEmission adds value to the user's total for month, creating the
// entry with twelve zero months on first use. Repeated calls accumulate
func (l *Ledger) RecordEmission(ctx context.Context, username string, month models.Month, value float64) error {
	if strings.TrimSpace(username) == "" {
		return fmt.Errorf("recording emission: %w", ErrEmptyUsername)
	}
	if !month.Valid() {
		return fmt.Errorf("recording emission: invalid month %d", int(month))
	}
	if !validValue(value) {
		return fmt.Errorf("recording emission of %v: %w", value, ErrInvalidValue)
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	table, err := l.store.LoadLedger(ctx)
	if err != nil {
		return &StorageError{Op: "load", Err: err}
	}
	if table == nil {
		table = models.Ledger{}
	}

	totals, ok := table[username]
	if !ok {
		l.log.Debug().Str("username", username).Msg("creating ledger entry")
	}
	totals[month] += value
	table[username] = totals

	if err := l.store.SaveLedger(ctx, table); err != nil {
		return &StorageError{Op: "save", Err: err}
	}

	l.log.Info().
		Str("username", username).
		Stringer("month", month).
		Float64("kg_co2", value).
		Float64("month_total", totals[month]).
		Msg("emission recorded")
	return nil
}

// History returns the user's totals for Jan through Dec
func (l *Ledger) History(ctx context.Context, username string) (History, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	table, err := l.store.LoadLedger(ctx)
	if err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}

	totals, ok := table[username]
	if !ok {
		return nil, ErrUserNotFound
	}

	history := make(History, 0, models.MonthCount)
	for _, m := range models.Months() {
		history = append(history, MonthTotal{
			Month:    m,
			KgCO2:    totals[m],
			Recorded: totals[m] != 0,
		})
	}
	return history, nil
}

// Users returns the usernames that have a ledger entry, sorted
func (l *Ledger) Users(ctx context.Context) ([]string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	table, err := l.store.LoadLedger(ctx)
	if err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}
	return table.Usernames(), nil
}

// Snapshot returns a copy of the full table
func (l *Ledger) Snapshot(ctx context.Context) (models.Ledger, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	table, err := l.store.LoadLedger(ctx)
	if err != nil {
		return nil, &StorageError{Op: "load", Err: err}
	}
	return table.Clone(), nil
}

// Import merges table into the stored ledger, adding month by month. With
// replace set the stored ledger is overwritten instead
func (l *Ledger) Import(ctx context.Context, table models.Ledger, replace bool) error {
	for username, totals := range table {
		if strings.TrimSpace(username) == "" {
			return fmt.Errorf("importing: %w", ErrEmptyUsername)
		}
		for m, v := range totals {
			if !validValue(v) {
				return fmt.Errorf("importing %s %s: %w", username, models.Month(m), ErrInvalidValue)
			}
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	merged := table.Clone()
	if !replace {
		current, err := l.store.LoadLedger(ctx)
		if err != nil {
			return &StorageError{Op: "load", Err: err}
		}
		merged = current.Clone()
		for username, totals := range table {
			existing := merged[username]
			for m, v := range totals {
				existing[m] += v
			}
			merged[username] = existing
		}
	}

	if err := l.store.SaveLedger(ctx, merged); err != nil {
		return &StorageError{Op: "save", Err: err}
	}
	l.log.Info().Int("users", len(table)).Bool("replace", replace).Msg("ledger imported")
	return nil
}

func validValue(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v >= 0
}
