package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/ginjaninja78/pos-sales-report/internal/aggregator"
)

// Session is the outcome of one query. It is never modified after Run
// returns; a new query produces a new Session.
type Session struct {
	ID    uuid.UUID
	Query Query

	Result *aggregator.Result

	RowsLoaded  int
	RowsMatched int
	// Files lists the export files that contributed rows.
	Files   []string
	Elapsed time.Duration
}

// Detail returns the per-product rows of one category. Switching categories
// reads the stored Result; nothing is reloaded.
func (s *Session) Detail(c aggregator.Category) []aggregator.AggregateRow {
	return s.Result.Detail(c)
}

// Empty reports whether the query matched no rows.
func (s *Session) Empty() bool {
	return s.Result.HadNoMatches
}
