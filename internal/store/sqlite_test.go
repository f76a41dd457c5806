package store

import (
	"context"
	"io"
	"log/slog"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanbight/buoy-telemetry-etl/internal/domain"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	s, err := New(filepath.Join(t.TempDir(), "telemetry.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func testResult(rows int) *domain.Result {
	res := &domain.Result{
		Instrument: "metbk",
		NumRows:    rows,
		LoadedAt:   time.Now(),
		Columns: []domain.TypedColumn{
			{Name: "timestamp", Type: domain.TypeDatetime},
			{Name: "buoy_id", Type: domain.TypeString},
			{Name: "serial", Type: domain.TypeInt},
			{Name: "air_temperature", Type: domain.TypeFloat},
		},
	}
	base := time.Date(2019, 5, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < rows; i++ {
		res.Columns[0].Times = append(res.Columns[0].Times, base.Add(time.Duration(i)*time.Minute))
		res.Columns[1].Strings = append(res.Columns[1].Strings, "buoyID")
		res.Columns[2].Ints = append(res.Columns[2].Ints, int64(5781))
		res.Columns[3].Floats = append(res.Columns[3].Floats, 15.0+float64(i))
	}
	return res
}

func TestStoreJournalMode(t *testing.T) {
	s := newTestStore(t)

	var mode string
	require.NoError(t, s.Conn().QueryRowContext(context.Background(),
		`PRAGMA journal_mode`).Scan(&mode))
	assert.Equal(t, "wal", mode)
}

func TestStoreRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	res := testResult(3)
	require.NoError(t, s.Store(ctx, res))

	var count int
	require.NoError(t, s.Conn().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM telemetry_metbk`).Scan(&count))
	assert.Equal(t, 3, count)

	var ts, buoy string
	var serial int64
	var temp float64
	require.NoError(t, s.Conn().QueryRowContext(ctx,
		`SELECT timestamp, buoy_id, serial, air_temperature
		 FROM telemetry_metbk ORDER BY timestamp LIMIT 1`).
		Scan(&ts, &buoy, &serial, &temp))
	assert.Equal(t, "2019-05-01T00:00:00Z", ts)
	assert.Equal(t, "buoyID", buoy)
	assert.Equal(t, int64(5781), serial)
	assert.Equal(t, 15.0, temp)
}

func TestStoreAppendsAcrossBatches(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Store(ctx, testResult(2)))
	require.NoError(t, s.Store(ctx, testResult(2)))

	var count int
	require.NoError(t, s.Conn().QueryRowContext(ctx,
		`SELECT COUNT(*) FROM telemetry_metbk`).Scan(&count))
	assert.Equal(t, 4, count)
}

func TestStoreNaNBecomesNull(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	res := testResult(1)
	res.Columns[3].Floats[0] = math.NaN()
	require.NoError(t, s.Store(ctx, res))

	var temp *float64
	require.NoError(t, s.Conn().QueryRowContext(ctx,
		`SELECT air_temperature FROM telemetry_metbk`).Scan(&temp))
	assert.Nil(t, temp, "sentinel floats must land as NULL")
}

func TestStoreCreatesParentDirectory(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	path := filepath.Join(t.TempDir(), "nested", "dir", "telemetry.db")

	s, err := New(path, logger)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Store(context.Background(), testResult(1)))
}

func TestTableName(t *testing.T) {
	assert.Equal(t, "telemetry_wavss", TableName("wavss"))
}
