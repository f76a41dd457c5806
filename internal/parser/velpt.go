package parser

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/oceanbight/buoy-telemetry-etl/internal/domain"
	"github.com/oceanbight/buoy-telemetry-etl/internal/observability"
)

// velptDateColumns is the count of leading date/time columns in a .dat row
// (month day year hour minute second), reassembled into one timestamp token.
const velptDateColumns = 6

var velptSchema = domain.MustSchema(
	domain.Column{Name: "timestamp", Type: domain.TypeDatetime},
	domain.Column{Name: "error_code", Type: domain.TypeInt},
	domain.Column{Name: "status_code", Type: domain.TypeInt},
	domain.Column{Name: "velocity_east", Type: domain.TypeFloat},
	domain.Column{Name: "velocity_north", Type: domain.TypeFloat},
	domain.Column{Name: "velocity_up", Type: domain.TypeFloat},
	domain.Column{Name: "amplitude_beam1", Type: domain.TypeFloat},
	domain.Column{Name: "amplitude_beam2", Type: domain.TypeFloat},
	domain.Column{Name: "amplitude_beam3", Type: domain.TypeFloat},
	domain.Column{Name: "battery_voltage", Type: domain.TypeFloat},
	domain.Column{Name: "sound_speed", Type: domain.TypeFloat},
	domain.Column{Name: "heading", Type: domain.TypeFloat},
	domain.Column{Name: "pitch", Type: domain.TypeFloat},
	domain.Column{Name: "roll", Type: domain.TypeFloat},
	domain.Column{Name: "pressure", Type: domain.TypeFloat},
	domain.Column{Name: "temperature", Type: domain.TypeFloat},
	domain.Column{Name: "analog_input1", Type: domain.TypeFloat},
	domain.Column{Name: "analog_input2", Type: domain.TypeFloat},
	domain.Column{Name: "speed", Type: domain.TypeFloat},
	domain.Column{Name: "direction", Type: domain.TypeFloat},
)

// velptRawColumns is the fixed column count of a raw .dat row.
var velptRawColumns = velptDateColumns + velptSchema.Arity() - 1

// VelptSchema returns the velocity-profiler family's output schema.
func VelptSchema() *domain.Schema { return velptSchema }

// Velpt loads velocity-profiler .dat files: a straightforward fixed-column
// whitespace-delimited read with a date reassembly step. There is no line
// recovery; a malformed row aborts the file.
//
// Unlike the log families, Velpt owns a persisted table and appends to it
// across Load calls, so a deployment's files can arrive in several batches.
type Velpt struct {
	logger  *slog.Logger
	metrics *observability.Metrics
	table   *domain.Table
}

// NewVelpt creates a velocity-profiler loader with an empty owned table.
func NewVelpt(logger *slog.Logger, metrics *observability.Metrics) *Velpt {
	return &Velpt{logger: logger, metrics: metrics, table: domain.NewTable(velptSchema)}
}

// Schema returns the loader's output schema.
func (p *Velpt) Schema() *domain.Schema { return velptSchema }

// Reset discards the accumulated table, starting the next Load fresh.
func (p *Velpt) Reset() {
	p.table = domain.NewTable(velptSchema)
}

// Load parses the given .dat files, appends their rows to the owned table,
// and returns the cast of everything accumulated so far.
func (p *Velpt) Load(files []string) (*domain.Result, error) {
	if files == nil {
		return nil, ErrNilFileList
	}

	appended := 0
	for _, file := range files {
		p.logger.Info("parsing file", "instrument", InstrumentVelpt, "file", filepath.Base(file))
		n, err := p.parseFile(file)
		if err != nil {
			return nil, err
		}
		appended += n
		p.metrics.FilesParsed.WithLabelValues(InstrumentVelpt).Inc()
	}

	res, err := p.table.Cast(InstrumentVelpt)
	if err != nil {
		return nil, err
	}
	p.metrics.RecordsParsed.WithLabelValues(InstrumentVelpt).Add(float64(appended))
	return res, nil
}

func (p *Velpt) parseFile(file string) (int, error) {
	lines, err := readLines(file)
	if err != nil {
		return 0, err
	}

	appended := 0
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) != velptRawColumns {
			return 0, fmt.Errorf("%s line %d: expected %d columns, got %d",
				file, i+1, velptRawColumns, len(fields))
		}
		ts, err := assembleTimestamp(fields[:velptDateColumns])
		if err != nil {
			return 0, fmt.Errorf("%s line %d: %w", file, i+1, err)
		}
		rec := append(domain.Record{ts}, fields[velptDateColumns:]...)
		if err := p.table.Append(rec); err != nil {
			return 0, err
		}
		appended++
	}
	return appended, nil
}

// assembleTimestamp joins the six leading date columns (month day year hour
// minute second) into the canonical DCL timestamp token.
func assembleTimestamp(fields []string) (string, error) {
	vals := make([]int, velptDateColumns)
	for i, f := range fields {
		v, err := strconv.Atoi(f)
		if err != nil {
			return "", fmt.Errorf("date column %d: %w", i+1, err)
		}
		vals[i] = v
	}
	t := time.Date(vals[2], time.Month(vals[0]), vals[1], vals[3], vals[4], vals[5], 0, time.UTC)
	return t.Format(domain.TimestampLayout), nil
}
