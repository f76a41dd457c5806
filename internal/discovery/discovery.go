// Package discovery supplies the pipeline with ordered batches of dump-file
// paths: an initial scan of the per-instrument subdirectories, then single
// file batches as the logger uplink drops new files into place.
package discovery

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"github.com/fsnotify/fsnotify"

	"github.com/oceanbight/buoy-telemetry-etl/internal/parser"
)

// Instruments lists the instrument subdirectories watched under the data dir.
var Instruments = []string{parser.InstrumentMetbk, parser.InstrumentWavss, parser.InstrumentVelpt}

// Batch is an ordered list of file paths for one instrument family.
type Batch struct {
	Instrument string
	Paths      []string
}

// Scan lists the files already present under dataDir, one batch per
// instrument, paths sorted so day files load in chronological order.
// Missing instrument subdirectories are not an error.
func Scan(dataDir string) ([]Batch, error) {
	var batches []Batch
	for _, inst := range Instruments {
		dir := filepath.Join(dataDir, inst)
		entries, err := os.ReadDir(dir)
		if errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", dir, err)
		}

		var paths []string
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
		if len(paths) == 0 {
			continue
		}
		sort.Strings(paths)
		batches = append(batches, Batch{Instrument: inst, Paths: paths})
	}
	return batches, nil
}

// Watcher feeds the pipeline file batches: the initial scan results first,
// then one batch per file created under a watched instrument directory.
// Files are expected to be moved into place atomically by the uplink, so
// only create events are acted on.
type Watcher struct {
	fsw     *fsnotify.Watcher
	logger  *slog.Logger
	pending []Batch
}

// NewWatcher scans dataDir and starts watching its instrument subdirectories.
func NewWatcher(dataDir string, logger *slog.Logger) (*Watcher, error) {
	pending, err := Scan(dataDir)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}
	for _, inst := range Instruments {
		dir := filepath.Join(dataDir, inst)
		if _, err := os.Stat(dir); err != nil {
			logger.Warn("instrument directory not watched", "dir", dir, "error", err)
			continue
		}
		if err := fsw.Add(dir); err != nil {
			fsw.Close()
			return nil, fmt.Errorf("watch %s: %w", dir, err)
		}
	}

	return &Watcher{fsw: fsw, logger: logger, pending: pending}, nil
}

// Next returns the next file batch, blocking until one arrives or the
// context is cancelled.
func (w *Watcher) Next(ctx context.Context) (Batch, error) {
	if len(w.pending) > 0 {
		b := w.pending[0]
		w.pending = w.pending[1:]
		return b, nil
	}

	for {
		select {
		case <-ctx.Done():
			return Batch{}, ctx.Err()
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return Batch{}, errors.New("watcher closed")
			}
			if !ev.Op.Has(fsnotify.Create) {
				continue
			}
			inst := instrumentForPath(ev.Name)
			if inst == "" {
				continue
			}
			w.logger.Debug("new file discovered", "instrument", inst, "file", ev.Name)
			return Batch{Instrument: inst, Paths: []string{ev.Name}}, nil
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return Batch{}, errors.New("watcher closed")
			}
			w.logger.Warn("watcher error", "error", err)
		}
	}
}

// Close stops the underlying filesystem watcher.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// instrumentForPath maps a created file to its instrument family by parent
// directory name; unknown directories yield "".
func instrumentForPath(path string) string {
	parent := filepath.Base(filepath.Dir(path))
	for _, inst := range Instruments {
		if parent == inst {
			return inst
		}
	}
	return ""
}
