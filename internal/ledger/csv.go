package ledger

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/jgoulah/vehicalc/pkg/models"
)

// CSVStore keeps the ledger as a flat table with the header
// username,Jan,...,Dec and one row per user
type CSVStore struct {
	path string
}

// NewCSVStore returns a store for the file at path. The file is created on
// first save
func NewCSVStore(path string) *CSVStore {
	return &CSVStore{path: path}
}

// LoadLedger reads the whole file. A missing file is an empty ledger
func (s *CSVStore) LoadLedger(ctx context.Context) (models.Ledger, error) {
	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return models.Ledger{}, nil
		}
		return nil, fmt.Errorf("opening ledger file: %w", err)
	}
	defer f.Close()

	return ReadCSV(f)
}

// SaveLedger writes the table to a temporary file and renames it over the
// target so readers never see a partial file
func (s *CSVStore) SaveLedger(ctx context.Context, l models.Ledger) error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating ledger directory: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".ledger-*.csv")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if err := WriteCSV(tmp, l); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("replacing ledger file: %w", err)
	}
	return nil
}

// ReadCSV parses the canonical ledger table
func ReadCSV(r io.Reader) (models.Ledger, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = models.MonthCount + 1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading ledger csv: %w", err)
	}

	l := models.Ledger{}
	if len(rows) == 0 {
		return l, nil
	}
	if err := checkHeader(rows[0]); err != nil {
		return nil, err
	}

	for i, row := range rows[1:] {
		username := row[0]
		if strings.TrimSpace(username) == "" {
			return nil, fmt.Errorf("ledger csv row %d: empty username", i+2)
		}
		var totals models.MonthlyTotals
		for m := range totals {
			v, err := strconv.ParseFloat(row[m+1], 64)
			if err != nil {
				return nil, fmt.Errorf("ledger csv row %d, %s: %w", i+2, models.Month(m), err)
			}
			if !validValue(v) {
				return nil, fmt.Errorf("ledger csv row %d, %s: %w", i+2, models.Month(m), ErrInvalidValue)
			}
			totals[m] = v
		}
		// A duplicated username keeps its last row
		l[username] = totals
	}
	return l, nil
}

// WriteCSV writes the canonical ledger table sorted by username
func WriteCSV(w io.Writer, l models.Ledger) error {
	writer := csv.NewWriter(w)
	if err := writer.Write(header()); err != nil {
		return fmt.Errorf("writing ledger header: %w", err)
	}

	for _, username := range l.Usernames() {
		totals := l[username]
		row := make([]string, 0, models.MonthCount+1)
		row = append(row, username)
		for _, v := range totals {
			row = append(row, strconv.FormatFloat(v, 'f', -1, 64))
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("writing ledger row for %s: %w", username, err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return fmt.Errorf("flushing ledger csv: %w", err)
	}
	return nil
}

func header() []string {
	return append([]string{"username"}, models.MonthCodes()...)
}

func checkHeader(row []string) error {
	want := header()
	for i := range want {
		if row[i] != want[i] {
			return fmt.Errorf("ledger csv header: column %d is %q, want %q", i+1, row[i], want[i])
		}
	}
	return nil
}
