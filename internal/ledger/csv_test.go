package ledger

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jgoulah/vehicalc/pkg/models"
)

func TestWriteCSVFormat(t *testing.T) {
	var buf bytes.Buffer
	l := models.Ledger{
		"bob":   {models.Feb: 7},
		"alice": {models.Jan: 15, models.Dec: 0.25},
	}
	require.NoError(t, WriteCSV(&buf, l))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "username,Jan,Feb,Mar,Apr,May,Jun,Jul,Aug,Sep,Oct,Nov,Dec", lines[0])
	assert.Equal(t, "alice,15,0,0,0,0,0,0,0,0,0,0,0.25", lines[1])
	assert.Equal(t, "bob,0,7,0,0,0,0,0,0,0,0,0,0", lines[2])
}

func TestReadCSV(t *testing.T) {
	in := "username,Jan,Feb,Mar,Apr,May,Jun,Jul,Aug,Sep,Oct,Nov,Dec\n" +
		"alice,23.1,0,0,0,0,0,0,0,0,0,0,0\n" +
		"bob,0.0,10.5,0,0,0,0,0,0,0,0,0,12.6\n"

	l, err := ReadCSV(strings.NewReader(in))
	require.NoError(t, err)
	require.Len(t, l, 2)
	assert.InDelta(t, 23.1, l["alice"][models.Jan], 1e-9)
	assert.InDelta(t, 10.5, l["bob"][models.Feb], 1e-9)
	assert.InDelta(t, 12.6, l["bob"][models.Dec], 1e-9)
}

func TestReadCSVErrors(t *testing.T) {
	tests := map[string]string{
		"bad header":     "user,Jan,Feb,Mar,Apr,May,Jun,Jul,Aug,Sep,Oct,Nov,Dec\n",
		"short row":      "username,Jan,Feb,Mar,Apr,May,Jun,Jul,Aug,Sep,Oct,Nov,Dec\nalice,1\n",
		"non-numeric":    "username,Jan,Feb,Mar,Apr,May,Jun,Jul,Aug,Sep,Oct,Nov,Dec\nalice,x,0,0,0,0,0,0,0,0,0,0,0\n",
		"empty username": "username,Jan,Feb,Mar,Apr,May,Jun,Jul,Aug,Sep,Oct,Nov,Dec\n,1,0,0,0,0,0,0,0,0,0,0,0\n",
		"negative":       "username,Jan,Feb,Mar,Apr,May,Jun,Jul,Aug,Sep,Oct,Nov,Dec\nalice,-1,0,0,0,0,0,0,0,0,0,0,0\n",
		"nan":            "username,Jan,Feb,Mar,Apr,May,Jun,Jul,Aug,Sep,Oct,Nov,Dec\nalice,NaN,0,0,0,0,0,0,0,0,0,0,0\n",
		"inf":            "username,Jan,Feb,Mar,Apr,May,Jun,Jul,Aug,Sep,Oct,Nov,Dec\nalice,0,+Inf,0,0,0,0,0,0,0,0,0,0\n",
	}
	for name, in := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCSV(strings.NewReader(in))
			assert.Error(t, err)
		})
	}
}

func TestCSVStoreMissingFileIsEmpty(t *testing.T) {
	store := NewCSVStore(filepath.Join(t.TempDir(), "emission_history.csv"))
	l, err := store.LoadLedger(context.Background())
	require.NoError(t, err)
	assert.Empty(t, l)
}

func TestCSVStoreWithLedger(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "nested", "emission_history.csv")
	store := NewCSVStore(path)
	l := New(store, zerolog.Nop())

	require.NoError(t, l.RecordEmission(ctx, "alice", models.Jan, 10))
	require.NoError(t, l.RecordEmission(ctx, "alice", models.Jan, 5))
	require.NoError(t, l.RecordEmission(ctx, "bob", models.Feb, 7))

	// A fresh store over the same file sees the accumulated totals.
	reopened := New(NewCSVStore(path), zerolog.Nop())
	h, err := reopened.History(ctx, "alice")
	require.NoError(t, err)
	assert.InDelta(t, 15.0, h.Get(models.Jan), 1e-9)

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "no temp files left behind")
}

func TestCSVStoreStaysReadableAfterEmptyUsername(t *testing.T) {
	ctx := context.Background()
	l := New(NewCSVStore(filepath.Join(t.TempDir(), "emission_history.csv")), zerolog.Nop())

	require.NoError(t, l.RecordEmission(ctx, "alice", models.Jan, 1))
	assert.ErrorIs(t, l.RecordEmission(ctx, "", models.Jan, 1), ErrEmptyUsername)

	require.NoError(t, l.RecordEmission(ctx, "alice", models.Feb, 1))
	h, err := l.History(ctx, "alice")
	require.NoError(t, err)
	assert.InDelta(t, 2.0, h.Total(), 1e-9)
}

func TestReadCSVRejectsInvalidValues(t *testing.T) {
	in := "username,Jan,Feb,Mar,Apr,May,Jun,Jul,Aug,Sep,Oct,Nov,Dec\nalice,-2.5,0,0,0,0,0,0,0,0,0,0,0\n"
	_, err := ReadCSV(strings.NewReader(in))
	assert.ErrorIs(t, err, ErrInvalidValue)
}
