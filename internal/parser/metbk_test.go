package parser

import (
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oceanbight/buoy-telemetry-etl/internal/observability"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func writeTestFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestMetbkClassify(t *testing.T) {
	p := NewMetbk(testLogger(), observability.NewMetricsForTesting(), false)

	t.Run("full measurement line", func(t *testing.T) {
		line := "2019/05/01 00:00:00.000 1013.2 85.3 15.1 350.2 0.0 14.8 35.1 420.5 2.1 -1.3 12.4"
		cls := p.Classify(line)

		assert.Equal(t, LineData, cls.Kind)
		assert.Equal(t, "2019/05/01 00:00:00.000", cls.Timestamp)
		require.Len(t, cls.Fields, metbkFieldCount)
		assert.Equal(t, "1013.2", cls.Fields[0])
		assert.Equal(t, "-1.3", cls.Fields[9], "battery reading must not be captured")
	})

	t.Run("missing-value sentinel rewritten", func(t *testing.T) {
		line := "2019/05/01 00:01:00.000 1013.2 85.3 Na 350.2 0.0 14.8 35.1 420.5 2.1 -1.3 12.4"
		cls := p.Classify(line)

		require.Equal(t, LineData, cls.Kind)
		assert.Equal(t, "NaN", cls.Fields[2])
		assert.Equal(t, "350.2", cls.Fields[3])
	})

	t.Run("timestamp-only fragment is recoverable", func(t *testing.T) {
		cls := p.Classify("2019/05/01 00:02:00.000 <ERR instrument timeout 9>")
		assert.Equal(t, LineRecoverable, cls.Kind)
		assert.Equal(t, "2019/05/01 00:02:00.000", cls.Timestamp)
		assert.Empty(t, cls.Fields)
	})

	t.Run("truncated numeric payload is noise", func(t *testing.T) {
		// The trailing token parses as a float, so the recovery fallback does
		// not apply; too few fields means the line carries no usable sample.
		cls := p.Classify("2019/05/01 00:03:00.000 1013.2 85.3 15.1")
		assert.Equal(t, LineNoise, cls.Kind)
	})

	t.Run("numeric payload without timestamp is noise", func(t *testing.T) {
		cls := p.Classify("1013.2 85.3 15.1 350.2 0.0 14.8 35.1 420.5 2.1 -1.3 12.4")
		assert.Equal(t, LineNoise, cls.Kind)
	})

	t.Run("sign runs pass the lexical field shape", func(t *testing.T) {
		line := "2019/05/01 00:04:00.000 1013.2 85.3 15.1 350.2 0.0 14.8 35.1 420.5 2.1 --1.3 12.4"
		cls := p.Classify(line)

		require.Equal(t, LineData, cls.Kind)
		assert.Equal(t, "--1.3", cls.Fields[9], "shape check tolerates repeated signs; the cast decides validity")
	})

	t.Run("garbage is noise", func(t *testing.T) {
		for _, line := range []string{
			"",
			"### heartbeat ###",
			"[metbk:DLOGP3]:instrument started",
			"no timestamp here 1.0 2.0 3.0",
		} {
			assert.Equal(t, LineNoise, p.Classify(line).Kind, "line: %q", line)
		}
	})
}

func TestMetbkLoad(t *testing.T) {
	content := "[metbk:DLOGP3]:instrument started\n" +
		"2019/05/01 00:00:00.000 1013.2 85.3 15.1 350.2 0.0 14.8 35.1 420.5 2.1 -1.3 12.4\n" +
		"2019/05/01 00:01:00.000 <ERR instrument timeout 9>\n" +
		"2019/05/01 00:02:00.000 1012.8 86.0 Na 351.0 0.1 14.9 35.2 421.0 2.0 -1.1 12.3\n" +
		"2019/05/01 00:03:00.000 1013.0 85.5 15.2\n" + // truncated numeric payload, dropped
		"### heartbeat ###\n"

	t.Run("lenient mode sentinel-fills recoverable lines", func(t *testing.T) {
		p := NewMetbk(testLogger(), observability.NewMetricsForTesting(), false)
		path := writeTestFile(t, "20190501.metbk.log", content)

		res, err := p.Load([]string{path})
		require.NoError(t, err)
		assert.Equal(t, InstrumentMetbk, res.Instrument)
		assert.Equal(t, 3, res.NumRows, "the truncated numeric line must not become a sentinel row")

		pressure, ok := res.Column("barometric_pressure")
		require.True(t, ok)
		assert.Equal(t, 1013.2, pressure.Floats[0])
		assert.True(t, math.IsNaN(pressure.Floats[1]), "sentinel row reads NaN in every sensor column")
		assert.Equal(t, 1012.8, pressure.Floats[2])

		airTemp, ok := res.Column("air_temperature")
		require.True(t, ok)
		assert.Equal(t, 15.1, airTemp.Floats[0])
		assert.True(t, math.IsNaN(airTemp.Floats[2]), "dropped channel reads NaN")
	})

	t.Run("strict mode drops recoverable lines", func(t *testing.T) {
		p := NewMetbk(testLogger(), observability.NewMetricsForTesting(), true)
		path := writeTestFile(t, "20190501.metbk.log", content)

		res, err := p.Load([]string{path})
		require.NoError(t, err)
		assert.Equal(t, 2, res.NumRows)
	})

	t.Run("non-log paths skipped without touching the filesystem", func(t *testing.T) {
		p := NewMetbk(testLogger(), observability.NewMetricsForTesting(), false)
		path := writeTestFile(t, "20190501.metbk.log", content)

		res, err := p.Load([]string{"does-not-exist.dat", path})
		require.NoError(t, err)
		assert.Equal(t, 3, res.NumRows)
	})

	t.Run("table rebuilt on every call", func(t *testing.T) {
		p := NewMetbk(testLogger(), observability.NewMetricsForTesting(), false)
		path := writeTestFile(t, "20190501.metbk.log", content)

		first, err := p.Load([]string{path})
		require.NoError(t, err)
		second, err := p.Load([]string{path})
		require.NoError(t, err)
		assert.Equal(t, first.NumRows, second.NumRows)
	})

	t.Run("nil file list rejected", func(t *testing.T) {
		p := NewMetbk(testLogger(), observability.NewMetricsForTesting(), false)
		_, err := p.Load(nil)
		assert.ErrorIs(t, err, ErrNilFileList)
	})

	t.Run("empty file yields empty result", func(t *testing.T) {
		p := NewMetbk(testLogger(), observability.NewMetricsForTesting(), false)
		path := writeTestFile(t, "empty.metbk.log", "")

		res, err := p.Load([]string{path})
		require.NoError(t, err)
		assert.Equal(t, 0, res.NumRows)
	})

	t.Run("unreadable file aborts the load", func(t *testing.T) {
		p := NewMetbk(testLogger(), observability.NewMetricsForTesting(), false)
		_, err := p.Load([]string{filepath.Join(t.TempDir(), "missing.metbk.log")})
		assert.Error(t, err)
	})
}

func TestLineKindString(t *testing.T) {
	assert.Equal(t, "data", LineData.String())
	assert.Equal(t, "recoverable", LineRecoverable.String())
	assert.Equal(t, "noise", LineNoise.String())
}
