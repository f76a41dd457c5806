package parser

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/oceanbight/buoy-telemetry-etl/internal/domain"
	"github.com/oceanbight/buoy-telemetry-etl/internal/observability"
)

// metbkFieldCount is the number of sensor fields per meteorological record,
// excluding the prepended timestamp. The trailing battery reading on each
// line is deliberately not captured.
const metbkFieldCount = 10

// missingToken is the instrument's marker for a dropped sensor channel.
const missingToken = "Na "

var (
	// timestampRe matches the DCL prefix: date yyyy/mm/dd + time HH:MM:SS.fff.
	timestampRe = regexp.MustCompile(`\d{4}/\d{2}/\d{2}\s*\d{2}:\d{2}:\d{2}\.\d+`)

	// metbkFieldsRe captures the ten ordered sensor fields in one combined
	// pattern. Each field is a decimal with any run of leading minus signs,
	// or the NaN sentinel; tokens are checked for lexical shape only, never
	// physical plausibility.
	metbkFieldsRe = regexp.MustCompile(
		`(-*\d+\.\d+|NaN)` + strings.Repeat(`\s*(-*\d+\.\d+|NaN)`, metbkFieldCount-1))
)

var metbkSchema = domain.MustSchema(
	domain.Column{Name: "timestamp", Type: domain.TypeDatetime},
	domain.Column{Name: "barometric_pressure", Type: domain.TypeFloat},
	domain.Column{Name: "relative_humidity", Type: domain.TypeFloat},
	domain.Column{Name: "air_temperature", Type: domain.TypeFloat},
	domain.Column{Name: "longwave_irradiance", Type: domain.TypeFloat},
	domain.Column{Name: "precipitation", Type: domain.TypeFloat},
	domain.Column{Name: "sea_surface_temperature", Type: domain.TypeFloat},
	domain.Column{Name: "sea_surface_conductivity", Type: domain.TypeFloat},
	domain.Column{Name: "shortwave_irradiance", Type: domain.TypeFloat},
	domain.Column{Name: "wind_eastward", Type: domain.TypeFloat},
	domain.Column{Name: "wind_northward", Type: domain.TypeFloat},
)

// MetbkSchema returns the meteorological family's output schema.
func MetbkSchema() *domain.Schema { return metbkSchema }

// Metbk loads meteorological buoy .log dumps.
//
// In lenient mode (the default) a line that fails the trailing-number gate
// but still carries a timestamp becomes a sentinel-filled record, preserving
// that sample's time slot. Strict mode drops such lines instead.
type Metbk struct {
	logger  *slog.Logger
	metrics *observability.Metrics
	strict  bool
}

// NewMetbk creates a meteorological loader.
func NewMetbk(logger *slog.Logger, metrics *observability.Metrics, strict bool) *Metbk {
	return &Metbk{logger: logger, metrics: metrics, strict: strict}
}

// Schema returns the loader's output schema.
func (p *Metbk) Schema() *domain.Schema { return metbkSchema }

// Classify decides what a single raw line is worth.
//
// A line is a candidate measurement when its last whitespace token parses as
// a float. The strict path then rewrites the missing-value sentinel, extracts
// and removes the timestamp (so it cannot be mis-captured as a field), and
// matches the ten-field pattern; a candidate that fails the timestamp or
// field match is noise. Only a line that fails the trailing-float gate can be
// recoverable, and only when a timestamp is found in it.
func (p *Metbk) Classify(line string) ClassifiedLine {
	tokens := strings.Fields(line)
	if len(tokens) == 0 {
		return ClassifiedLine{Kind: LineNoise}
	}

	if _, err := strconv.ParseFloat(tokens[len(tokens)-1], 64); err == nil {
		clean := strings.ReplaceAll(line, missingToken, "NaN")
		if ts := timestampRe.FindString(clean); ts != "" {
			payload := strings.Replace(clean, ts, "", 1)
			if m := metbkFieldsRe.FindStringSubmatch(payload); m != nil {
				return ClassifiedLine{Kind: LineData, Timestamp: ts, Fields: m[1:]}
			}
		}
		return ClassifiedLine{Kind: LineNoise}
	}

	if ts := timestampRe.FindString(line); ts != "" {
		return ClassifiedLine{Kind: LineRecoverable, Timestamp: ts}
	}
	return ClassifiedLine{Kind: LineNoise}
}

// Load parses the given .log files into one typed table. Paths without the
// .log extension are skipped silently; unreadable files abort the whole call.
// The table is rebuilt on every call.
func (p *Metbk) Load(files []string) (*domain.Result, error) {
	if files == nil {
		return nil, ErrNilFileList
	}

	table := domain.NewTable(metbkSchema)
	for _, file := range files {
		if !strings.HasSuffix(file, ".log") {
			p.metrics.FilesSkipped.WithLabelValues(InstrumentMetbk).Inc()
			continue
		}
		p.logger.Info("parsing file", "instrument", InstrumentMetbk, "file", filepath.Base(file))

		lines, err := readLines(file)
		if err != nil {
			return nil, err
		}
		if err := p.appendLines(table, lines); err != nil {
			return nil, err
		}
		p.metrics.FilesParsed.WithLabelValues(InstrumentMetbk).Inc()
	}

	res, err := table.Cast(InstrumentMetbk)
	if err != nil {
		return nil, err
	}
	p.metrics.RecordsParsed.WithLabelValues(InstrumentMetbk).Add(float64(res.NumRows))
	return res, nil
}

func (p *Metbk) appendLines(table *domain.Table, lines []string) error {
	for _, line := range lines {
		cls := p.Classify(line)
		p.metrics.LinesClassified.WithLabelValues(InstrumentMetbk, cls.Kind.String()).Inc()

		var rec domain.Record
		switch cls.Kind {
		case LineData:
			rec = append(domain.Record{cls.Timestamp}, cls.Fields...)
		case LineRecoverable:
			if p.strict {
				continue
			}
			rec = sentinelRecord(cls.Timestamp)
		case LineNoise:
			continue
		}
		if err := table.Append(rec); err != nil {
			return err
		}
	}
	return nil
}

// sentinelRecord fabricates a full record for a timestamp-only line: the
// time slot is kept, all ten sensor fields read as NaN after the cast.
func sentinelRecord(timestamp string) domain.Record {
	rec := make(domain.Record, 1, metbkFieldCount+1)
	rec[0] = timestamp
	for i := 0; i < metbkFieldCount; i++ {
		rec = append(rec, "NaN")
	}
	return rec
}

// ParseTimestamp parses a DCL timestamp token. Exposed for the offline tools.
func ParseTimestamp(tok string) (time.Time, error) {
	return time.Parse(domain.TimestampLayout, tok)
}
