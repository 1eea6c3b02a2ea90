package csvparser

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/ginjaninja78/pos-sales-report/internal/config"
	"github.com/ginjaninja78/pos-sales-report/internal/fieldmap"
	"github.com/ginjaninja78/pos-sales-report/internal/logging"
	"github.com/ginjaninja78/pos-sales-report/internal/types"
)

// =============================================================================
// LOAD ERRORS
// =============================================================================

// LoadErrorKind classifies a LoadError.
type LoadErrorKind string

const (
	DirectoryNotFound LoadErrorKind = "directory not found"
	NoMatchingFiles   LoadErrorKind = "no matching files"
	ParseFailure      LoadErrorKind = "parse failure"
)

// LoadError is returned when the source directory cannot produce a row set.
// Any LoadError aborts the whole query; no partial row set is returned.
type LoadError struct {
	Kind LoadErrorKind
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("load %s: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("load %s: %s", e.Path, e.Kind)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// =============================================================================
// LOADER
// =============================================================================

// Options configures Load.
type Options struct {
	Settings config.SourceSettings

	// MinFields is the layout width every row must reach. Zero disables the
	// check.
	MinFields int

	// MaxConcurrency bounds the number of files decoded at once.
	MaxConcurrency int

	Logger logging.Logger
}

// Load discovers every export file under dir and returns their rows as one
// row set: files in discovery order, rows in file order.
//
// RETURNS:
//   - The unioned row set.
//   - A *LoadError when dir is missing, nothing matches or any file fails to
//     decode, or a *fieldmap.FieldLayoutError when a row is too short.
func Load(ctx context.Context, dir string, opts Options) (types.RowSet, error) {
	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	files, err := Discover(dir, opts.Settings)
	if err != nil {
		return nil, err
	}
	logger.Debug("discovered export files", "dir", dir, "files", len(files))

	perFile, err := parseAll(ctx, files, opts, logger)
	if err != nil {
		return nil, err
	}

	var rows types.RowSet
	for _, fileRows := range perFile {
		rows = append(rows, fileRows...)
	}

	if opts.MinFields > 0 {
		for _, row := range rows {
			if err := fieldmap.CheckRow(row, opts.MinFields); err != nil {
				return nil, err
			}
		}
	}

	logger.Info("loaded export files", "files", len(files), "rows", len(rows))
	return rows, nil
}

// parseAll decodes files concurrently. Each file writes to its own slot so
// the result keeps discovery order; the first failure cancels the rest.
func parseAll(ctx context.Context, files []string, opts Options, logger logging.Logger) ([][]types.Row, error) {
	limit := opts.MaxConcurrency
	if limit < 1 {
		limit = 1
	}

	results := make([][]types.Row, len(files))
	var done atomic.Int64
	progress := rate.Sometimes{First: 1, Interval: 2 * time.Second}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	for i, path := range files {
		i, path := i, path
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			rows, err := Parse(path, opts.Settings)
			if err != nil {
				return &LoadError{Kind: ParseFailure, Path: path, Err: err}
			}
			results[i] = rows

			n := done.Add(1)
			progress.Do(func() {
				logger.Debug("decoding export files", "done", n, "total", len(files))
			})
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Discover walks dir recursively and returns the export files it contains in
// lexical walk order.
func Discover(dir string, settings config.SourceSettings) ([]string, error) {
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, &LoadError{Kind: DirectoryNotFound, Path: dir}
		}
		return nil, &LoadError{Kind: DirectoryNotFound, Path: dir, Err: err}
	}
	if !info.IsDir() {
		return nil, &LoadError{Kind: DirectoryNotFound, Path: dir, Err: errors.New("not a directory")}
	}

	var files []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && Matches(d.Name(), settings) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &LoadError{Kind: ParseFailure, Path: dir, Err: err}
	}

	if len(files) == 0 {
		return nil, &LoadError{Kind: NoMatchingFiles, Path: dir}
	}
	return files, nil
}

// Matches reports whether a file name follows the export naming convention:
// it contains the include marker, lacks the exclude marker and has an
// accepted extension. All comparisons ignore case.
func Matches(name string, settings config.SourceSettings) bool {
	lower := strings.ToLower(name)

	if !strings.Contains(lower, strings.ToLower(settings.IncludeMarker)) {
		return false
	}
	if settings.ExcludeMarker != "" && strings.Contains(lower, strings.ToLower(settings.ExcludeMarker)) {
		return false
	}

	ext := strings.ToLower(filepath.Ext(name))
	for _, want := range settings.Extensions {
		if ext == strings.ToLower(want) {
			return true
		}
	}
	return false
}
