// =============================================================================
// POS Sales Report - Engine
// =============================================================================
//
// The engine exposes the three core operations (Load, Filter, Aggregate) and
// Run, which executes one query end to end and hands back a Session.
//
// QUERY PIPELINE:
//   1. Load every export file under the input directory
//   2. Keep the rows inside the requested date range
//   3. Classify and aggregate them into one Result
//
// The engine holds no query state. The Session returned by Run is the only
// record of a query; callers keep it for as long as they display it.
//
// =============================================================================

package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/pos-sales-report/internal/aggregator"
	"github.com/ginjaninja78/pos-sales-report/internal/config"
	"github.com/ginjaninja78/pos-sales-report/internal/csvparser"
	"github.com/ginjaninja78/pos-sales-report/internal/datefilter"
	"github.com/ginjaninja78/pos-sales-report/internal/fieldmap"
	"github.com/ginjaninja78/pos-sales-report/internal/logging"
	"github.com/ginjaninja78/pos-sales-report/internal/types"
	"github.com/ginjaninja78/pos-sales-report/internal/validation"
)

// =============================================================================
// ENGINE STRUCTURE
// =============================================================================

// Engine runs queries against a directory of terminal exports.
type Engine struct {
	cfg    *config.MainConfig
	fields fieldmap.FieldMap
	logger logging.Logger
}

// New creates an Engine.
//
// PARAMETERS:
//   - cfg: The validated main configuration.
//   - logger: Destination for progress logs. Nil discards them.
func New(cfg *config.MainConfig, logger logging.Logger) *Engine {
	if logger == nil {
		logger = logging.Discard()
	}
	return &Engine{
		cfg:    cfg,
		fields: cfg.Fields.FieldMap(),
		logger: logger,
	}
}

// FieldMap returns the layout the engine reads rows with.
func (e *Engine) FieldMap() fieldmap.FieldMap {
	return e.fields
}

// =============================================================================
// CORE OPERATIONS
// =============================================================================

// Load reads every export file under dir into one row set.
func (e *Engine) Load(ctx context.Context, dir string) (types.RowSet, error) {
	return csvparser.Load(ctx, dir, csvparser.Options{
		Settings:       e.cfg.Source,
		MinFields:      e.fields.Width(),
		MaxConcurrency: e.cfg.MaxConcurrency,
		Logger:         e.logger,
	})
}

// Filter keeps the rows whose dateField lies in [start, end].
func (e *Engine) Filter(rows types.RowSet, start, end datefilter.DateCode, dateField fieldmap.Field) types.RowSet {
	return datefilter.Filter(rows, start, end, e.fields.Index(dateField))
}

// Aggregate classifies and sums rows.
func (e *Engine) Aggregate(rows types.RowSet) (*aggregator.Result, error) {
	return aggregator.Aggregate(rows, e.fields, e.cfg.AggregatorOptions())
}

// Audit loads dir without enforcing the field layout and reports every data
// issue found. Narrow rows show up as issues instead of aborting the load.
func (e *Engine) Audit(ctx context.Context, dir string, opts validation.Options) (*validation.Result, error) {
	if dir == "" {
		dir = e.cfg.InputDir
	}
	rows, err := csvparser.Load(ctx, dir, csvparser.Options{
		Settings:       e.cfg.Source,
		MaxConcurrency: e.cfg.MaxConcurrency,
		Logger:         e.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to load exports: %w", err)
	}

	result := validation.NewValidatorWithOptions(e.fields, opts).Validate(rows)
	e.logger.Info("audit complete", "rows", result.RowsAudited, "errors", result.ErrorCount, "warnings", result.WarningCount)
	return result, nil
}

// =============================================================================
// QUERY
// =============================================================================

// Query describes one aggregation request.
type Query struct {
	// Dir is the directory to load. Empty uses the configured input_dir.
	Dir   string
	Range datefilter.Range
}

// Run executes q and returns its Session.
//
// RETURNS:
//   - The Session. A range with no matching rows still succeeds; check
//     Session.Result.HadNoMatches.
//   - A load, layout or classification error. No Session is returned then.
func (e *Engine) Run(ctx context.Context, q Query) (*Session, error) {
	startTime := time.Now()
	if q.Dir == "" {
		q.Dir = e.cfg.InputDir
	}

	id := uuid.New()
	logger := e.logger
	logger.Debug("query started", "session", id, "dir", q.Dir, "range", q.Range.String())

	// =========================================================================
	// STEP 1: LOAD EXPORT FILES
	// =========================================================================

	rows, err := e.Load(ctx, q.Dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load exports: %w", err)
	}

	// =========================================================================
	// STEP 2: FILTER BY DATE RANGE
	// =========================================================================

	matched := e.Filter(rows, q.Range.Start, q.Range.End, fieldmap.TransactionDate)
	logger.Debug("filtered rows", "loaded", len(rows), "matched", len(matched))

	// =========================================================================
	// STEP 3: CLASSIFY AND AGGREGATE
	// =========================================================================

	result, err := e.Aggregate(matched)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate: %w", err)
	}

	if result.UnclassifiedRows > 0 {
		logger.Warn("rows with unknown amount sign were excluded", "rows", result.UnclassifiedRows)
	}
	if result.HadNoMatches {
		logger.Info("no transactions in range", "range", q.Range.String())
	}

	session := &Session{
		ID:          id,
		Query:       q,
		Result:      result,
		RowsLoaded:  len(rows),
		RowsMatched: len(matched),
		Files:       sourceFiles(rows),
		Elapsed:     time.Since(startTime),
	}

	logger.Info("query complete",
		"session", id,
		"rows", session.RowsMatched,
		"total_amount", result.TotalAmount,
		"elapsed", session.Elapsed.Round(time.Millisecond),
	)

	return session, nil
}

// sourceFiles lists the distinct files behind rows in first-seen order.
func sourceFiles(rows types.RowSet) []string {
	seen := make(map[string]bool)
	var files []string
	for _, row := range rows {
		if !seen[row.Source] {
			seen[row.Source] = true
			files = append(files, row.Source)
		}
	}
	return files
}
