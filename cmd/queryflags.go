package cmd

import (
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/ginjaninja78/pos-sales-report/internal/datefilter"
	"github.com/ginjaninja78/pos-sales-report/internal/engine"
)

// queryFlags are the query selection flags shared by summary, export and view.
type queryFlags struct {
	dir       string
	from      string
	to        string
	today     bool
	thisMonth bool
	thisYear  bool
}

func (f *queryFlags) register(cmd *cobra.Command) {
	flags := cmd.Flags()
	flags.StringVar(&f.dir, "dir", "", "Directory of export files (default: input_dir)")
	flags.StringVar(&f.from, "from", "", "First date of the range (YYMMDD, YYYY-MM-DD or YYYY/MM/DD)")
	flags.StringVar(&f.to, "to", "", "Last date of the range (default: --from)")
	flags.BoolVar(&f.today, "today", false, "Today only (当日)")
	flags.BoolVar(&f.thisMonth, "this-month", false, "From the first of this month to today (今月)")
	flags.BoolVar(&f.thisYear, "this-year", false, "From January 1st to today (年間)")
	cmd.MarkFlagsMutuallyExclusive("today", "this-month", "this-year")
}

// resolve turns the flags into a date range. With no flags the range is today.
func (f *queryFlags) resolve(now time.Time) (datefilter.Range, error) {
	explicit := f.from != "" || f.to != ""
	preset := f.today || f.thisMonth || f.thisYear
	if explicit && preset {
		return datefilter.Range{}, errors.New("--from/--to cannot be combined with a preset range")
	}

	switch {
	case f.thisMonth:
		return datefilter.ThisMonth(now), nil
	case f.thisYear:
		return datefilter.ThisYear(now), nil
	case !explicit:
		return datefilter.Today(now), nil
	}

	from, to := f.from, f.to
	if from == "" {
		from = to
	}
	if to == "" {
		to = from
	}
	return datefilter.NewRange(from, to)
}

// query builds the engine query described by the flags.
func (f *queryFlags) query(now time.Time) (engine.Query, error) {
	rng, err := f.resolve(now)
	if err != nil {
		return engine.Query{}, err
	}
	return engine.Query{Dir: f.dir, Range: rng}, nil
}
