package parser

import (
	"bufio"
	"errors"
	"fmt"
	"os"
)

// Instrument family names, used for metric labels, sink routing, and table names.
const (
	InstrumentMetbk = "metbk"
	InstrumentWavss = "wavss"
	InstrumentVelpt = "velpt"
)

// ErrNilFileList is returned when a loader is handed a nil file list.
// The check runs before any I/O so a miswired caller fails immediately.
var ErrNilFileList = errors.New("files must be a non-nil list of file paths")

// LineKind classifies a single raw line.
type LineKind int

const (
	// LineNoise carries nothing of value and is dropped.
	LineNoise LineKind = iota
	// LineData carries a full measurement.
	LineData
	// LineRecoverable carries a parseable timestamp but no usable payload.
	LineRecoverable
)

// String returns the metric label for the kind.
func (k LineKind) String() string {
	switch k {
	case LineData:
		return "data"
	case LineRecoverable:
		return "recoverable"
	case LineNoise:
		return "noise"
	default:
		return fmt.Sprintf("LineKind(%d)", int(k))
	}
}

// ClassifiedLine is the tagged outcome of classifying one raw line.
// Timestamp is set for LineData and LineRecoverable; Fields only for LineData.
type ClassifiedLine struct {
	Kind      LineKind
	Timestamp string
	Fields    []string
}

// readLines reads a whole file into memory as a slice of lines. The handle is
// released before the caller sees any line, on every exit path.
func readLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return lines, nil
}
