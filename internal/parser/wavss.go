package parser

import (
	"log/slog"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/oceanbight/buoy-telemetry-etl/internal/domain"
	"github.com/oceanbight/buoy-telemetry-etl/internal/observability"
)

// wavssMarker tags a wave-statistics sentence; every other line is noise.
const wavssMarker = "$TSPWA"

// wavssSplitRe splits the payload on a comma or a " $" sentence boundary.
// Splitting on " $" strips the marker's dollar sign, so the record_type
// column reads "TSPWA".
var wavssSplitRe = regexp.MustCompile(` \$|,`)

var wavssSchema = domain.MustSchema(
	domain.Column{Name: "timestamp", Type: domain.TypeDatetime},
	domain.Column{Name: "record_type", Type: domain.TypeString},
	domain.Column{Name: "instrument_date", Type: domain.TypeInt},
	domain.Column{Name: "instrument_time", Type: domain.TypeInt},
	domain.Column{Name: "instrument_serial", Type: domain.TypeInt},
	domain.Column{Name: "buoy_id", Type: domain.TypeString},
	// Latitude and longitude are passed through uncast: the instrument can
	// emit hemisphere-suffixed or empty tokens, and a position glitch must
	// not abort a whole load.
	domain.Column{Name: "latitude", Type: domain.TypeString},
	domain.Column{Name: "longitude", Type: domain.TypeString},
	domain.Column{Name: "n_zero_crossings", Type: domain.TypeInt},
	domain.Column{Name: "average_wave_height", Type: domain.TypeFloat},
	domain.Column{Name: "mean_spectral_period", Type: domain.TypeFloat},
	domain.Column{Name: "maximum_wave_height", Type: domain.TypeFloat},
	domain.Column{Name: "significant_wave_height", Type: domain.TypeFloat},
	domain.Column{Name: "significant_period", Type: domain.TypeFloat},
	domain.Column{Name: "average_tenth_highest_height", Type: domain.TypeFloat},
	domain.Column{Name: "average_tenth_highest_period", Type: domain.TypeFloat},
	domain.Column{Name: "mean_wave_period", Type: domain.TypeFloat},
	domain.Column{Name: "peak_period", Type: domain.TypeFloat},
	domain.Column{Name: "tp5", Type: domain.TypeFloat},
	domain.Column{Name: "hmo", Type: domain.TypeFloat},
	domain.Column{Name: "mean_direction", Type: domain.TypeFloat},
	domain.Column{Name: "mean_spread", Type: domain.TypeFloat},
)

// WavssSchema returns the wave-statistics family's output schema.
func WavssSchema() *domain.Schema { return wavssSchema }

// Wavss loads wave-statistics .log dumps. The family has no recoverable
// state: a sentence either splits into exactly the schema arity or it is
// indistinguishable from a truncation and gets dropped.
type Wavss struct {
	logger  *slog.Logger
	metrics *observability.Metrics
}

// NewWavss creates a wave-statistics loader.
func NewWavss(logger *slog.Logger, metrics *observability.Metrics) *Wavss {
	return &Wavss{logger: logger, metrics: metrics}
}

// Schema returns the loader's output schema.
func (p *Wavss) Schema() *domain.Schema { return wavssSchema }

// Classify gates a line on the record-type marker, truncates everything from
// the checksum delimiter onward, splits the payload, and requires the exact
// schema arity. Any other field count is noise, not an error.
func (p *Wavss) Classify(line string) ClassifiedLine {
	if !strings.Contains(line, wavssMarker) {
		return ClassifiedLine{Kind: LineNoise}
	}
	if i := strings.IndexByte(line, '*'); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimRight(line, "\r\n ")

	fields := wavssSplitRe.Split(line, -1)
	if len(fields) != wavssSchema.Arity() {
		return ClassifiedLine{Kind: LineNoise}
	}
	return ClassifiedLine{Kind: LineData, Timestamp: fields[0], Fields: fields[1:]}
}

// Load parses the given .log files into one typed table. Non-.log paths are
// skipped silently; the table is rebuilt on every call.
func (p *Wavss) Load(files []string) (*domain.Result, error) {
	if files == nil {
		return nil, ErrNilFileList
	}

	table := domain.NewTable(wavssSchema)
	for _, file := range files {
		if !strings.HasSuffix(file, ".log") {
			p.metrics.FilesSkipped.WithLabelValues(InstrumentWavss).Inc()
			continue
		}
		p.logger.Info("parsing file", "instrument", InstrumentWavss, "file", filepath.Base(file))

		lines, err := readLines(file)
		if err != nil {
			return nil, err
		}
		for _, line := range lines {
			cls := p.Classify(line)
			p.metrics.LinesClassified.WithLabelValues(InstrumentWavss, cls.Kind.String()).Inc()
			if cls.Kind != LineData {
				continue
			}
			rec := append(domain.Record{cls.Timestamp}, cls.Fields...)
			if err := table.Append(rec); err != nil {
				return nil, err
			}
		}
		p.metrics.FilesParsed.WithLabelValues(InstrumentWavss).Inc()
	}

	res, err := table.Cast(InstrumentWavss)
	if err != nil {
		return nil, err
	}
	p.metrics.RecordsParsed.WithLabelValues(InstrumentWavss).Add(float64(res.NumRows))
	return res, nil
}
