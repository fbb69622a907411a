package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jgoulah/vehicalc/pkg/models"
	_ "modernc.org/sqlite"
)

// ErrUserExists is returned by CreateUser for a taken username
var ErrUserExists = errors.New("user already exists")

// ErrUserNotFound is returned by GetPasswordHash for an unknown username
var ErrUserNotFound = errors.New("user not found")

const timeLayout = "2006-01-02 15:04:05"

// DB wraps the database connection
type DB struct {
	conn *sql.DB
}

// New creates a new database connection and initializes the schema
func New(dbPath string) (*DB, error) {
	conn, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single connection keeps the whole-table rewrite serialised
	conn.SetMaxOpenConns(1)

	db := &DB{conn: conn}
	if err := db.initSchema(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return db, nil
}

// Close closes the database connection
func (db *DB) Close() error {
	return db.conn.Close()
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	schema := fmt.Sprintf(`
	CREATE TABLE IF NOT EXISTS users (
		username TEXT PRIMARY KEY,
		password_hash TEXT NOT NULL,
		created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS monthly_ledger (
		username TEXT PRIMARY KEY,
		%s
	);
	CREATE TABLE IF NOT EXISTS emission_events (
		id TEXT PRIMARY KEY,
		username TEXT NOT NULL,
		vehicle TEXT NOT NULL,
		fuel TEXT,
		fuel_efficiency REAL,
		distance REAL NOT NULL,
		month TEXT NOT NULL,
		strategy TEXT NOT NULL,
		kg_co2 REAL NOT NULL,
		created_at TEXT NOT NULL,
		published INTEGER DEFAULT 0
	);
	CREATE INDEX IF NOT EXISTS idx_events_username ON emission_events(username);
	CREATE INDEX IF NOT EXISTS idx_events_published ON emission_events(published);
	`, monthColumnDefs())

	_, err := db.conn.Exec(schema)
	return err
}

func monthColumnDefs() string {
	defs := make([]string, 0, models.MonthCount)
	for _, code := range models.MonthCodes() {
		defs = append(defs, code+" REAL NOT NULL DEFAULT 0")
	}
	return strings.Join(defs, ",\n\t\t")
}

// LoadLedger reads the full monthly_ledger table
func (db *DB) LoadLedger(ctx context.Context) (models.Ledger, error) {
	query := fmt.Sprintf(`SELECT username, %s FROM monthly_ledger`, strings.Join(models.MonthCodes(), ", "))

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying ledger: %w", err)
	}
	defer rows.Close()

	ledger := models.Ledger{}
	for rows.Next() {
		var username string
		var totals models.MonthlyTotals
		dest := make([]any, 0, models.MonthCount+1)
		dest = append(dest, &username)
		for i := range totals {
			dest = append(dest, &totals[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scanning ledger row: %w", err)
		}
		ledger[username] = totals
	}

	return ledger, rows.Err()
}

// SaveLedger replaces the monthly_ledger table in a single transaction
func (db *DB) SaveLedger(ctx context.Context, ledger models.Ledger) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM monthly_ledger`); err != nil {
		return fmt.Errorf("clearing ledger: %w", err)
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", models.MonthCount+1), ", ")
	query := fmt.Sprintf(`INSERT INTO monthly_ledger (username, %s) VALUES (%s)`,
		strings.Join(models.MonthCodes(), ", "), placeholders)

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return fmt.Errorf("preparing ledger insert: %w", err)
	}
	defer stmt.Close()

	for _, username := range ledger.Usernames() {
		totals := ledger[username]
		args := make([]any, 0, models.MonthCount+1)
		args = append(args, username)
		for _, v := range totals {
			args = append(args, v)
		}
		if _, err := stmt.ExecContext(ctx, args...); err != nil {
			return fmt.Errorf("inserting ledger row for %s: %w", username, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing ledger: %w", err)
	}
	return nil
}

// CreateUser stores a new user with an already hashed password
func (db *DB) CreateUser(ctx context.Context, username, passwordHash string) error {
	query := `
	INSERT INTO users (username, password_hash, created_at)
	VALUES (?, ?, ?)
	ON CONFLICT(username) DO NOTHING
	`

	createdAt := time.Now().UTC().Format(time.RFC3339)
	res, err := db.conn.ExecContext(ctx, query, username, passwordHash, createdAt)
	if err != nil {
		return fmt.Errorf("inserting user: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking inserted user: %w", err)
	}
	if n == 0 {
		return ErrUserExists
	}
	return nil
}

// GetPasswordHash returns the stored hash for username
func (db *DB) GetPasswordHash(ctx context.Context, username string) (string, error) {
	var hash string
	err := db.conn.QueryRowContext(ctx, `SELECT password_hash FROM users WHERE username = ?`, username).Scan(&hash)
	if err == sql.ErrNoRows {
		return "", ErrUserNotFound
	}
	if err != nil {
		return "", fmt.Errorf("querying user: %w", err)
	}
	return hash, nil
}

// InsertEvent appends an emission event to the event log
func (db *DB) InsertEvent(ctx context.Context, ev *models.EmissionEvent) error {
	query := `
	INSERT INTO emission_events (id, username, vehicle, fuel, fuel_efficiency, distance, month, strategy, kg_co2, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	var fuel sql.NullString
	var efficiency sql.NullFloat64
	if ev.Fuel != "" {
		fuel = sql.NullString{String: ev.Fuel, Valid: true}
		efficiency = sql.NullFloat64{Float64: ev.FuelEfficiency, Valid: true}
	}

	createdAt := ev.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := db.conn.ExecContext(ctx, query,
		ev.ID, ev.Username, ev.Vehicle, fuel, efficiency, ev.Distance,
		ev.Month.String(), ev.Strategy, ev.KgCO2, createdAt.UTC().Format(timeLayout))
	if err != nil {
		return fmt.Errorf("inserting emission event: %w", err)
	}

	return nil
}

// ListEvents retrieves all events for a user, newest first
func (db *DB) ListEvents(ctx context.Context, username string) ([]models.EmissionEvent, error) {
	query := `
	SELECT id, username, vehicle, fuel, fuel_efficiency, distance, month, strategy, kg_co2, created_at, published
	FROM emission_events
	WHERE username = ?
	ORDER BY created_at DESC, rowid DESC
	`

	rows, err := db.conn.QueryContext(ctx, query, username)
	if err != nil {
		return nil, fmt.Errorf("querying emission events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// ListUnpublishedEvents retrieves events not yet published, oldest first
func (db *DB) ListUnpublishedEvents(ctx context.Context) ([]models.EmissionEvent, error) {
	query := `
	SELECT id, username, vehicle, fuel, fuel_efficiency, distance, month, strategy, kg_co2, created_at, published
	FROM emission_events
	WHERE published = 0
	ORDER BY created_at ASC, rowid ASC
	`

	rows, err := db.conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying unpublished emission events: %w", err)
	}
	defer rows.Close()

	return scanEvents(rows)
}

// MarkPublished marks an event as published
func (db *DB) MarkPublished(ctx context.Context, id string) error {
	query := `UPDATE emission_events SET published = 1 WHERE id = ?`
	_, err := db.conn.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("marking event as published: %w", err)
	}
	return nil
}

func scanEvents(rows *sql.Rows) ([]models.EmissionEvent, error) {
	var results []models.EmissionEvent
	for rows.Next() {
		var ev models.EmissionEvent
		var fuel sql.NullString
		var efficiency sql.NullFloat64
		var month, createdAt string
		var published int

		if err := rows.Scan(&ev.ID, &ev.Username, &ev.Vehicle, &fuel, &efficiency, &ev.Distance,
			&month, &ev.Strategy, &ev.KgCO2, &createdAt, &published); err != nil {
			return nil, fmt.Errorf("scanning row: %w", err)
		}

		ev.Fuel = fuel.String
		ev.FuelEfficiency = efficiency.Float64
		ev.Published = published != 0

		var err error
		ev.Month, err = models.ParseMonth(month)
		if err != nil {
			return nil, fmt.Errorf("parsing month: %w", err)
		}

		ev.CreatedAt, err = time.Parse(timeLayout, createdAt)
		if err != nil {
			return nil, fmt.Errorf("parsing created_at: %w", err)
		}

		results = append(results, ev)
	}

	return results, rows.Err()
}
