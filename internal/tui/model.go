// Package tui is the interactive terminal view of a sales query.
//
// The view runs one query in the background, then lets the operator browse
// the product summary, the group summary and the per-category detail of the
// resulting Session. Switching tabs, categories or sort order never re-runs
// the query; only an explicit reload does.
package tui

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ginjaninja78/pos-sales-report/internal/aggregator"
	"github.com/ginjaninja78/pos-sales-report/internal/engine"
	"github.com/ginjaninja78/pos-sales-report/internal/report"
)

// Runner executes a query. *engine.Engine satisfies it.
type Runner interface {
	Run(ctx context.Context, q engine.Query) (*engine.Session, error)
}

type tab int

const (
	productTab tab = iota
	groupTab
	detailTab
)

var tabLabels = []string{"商品別", "グループ別", "伝票別"}

// noSort keeps the first-seen order of the aggregation.
const noSort = -1

// Model is the bubbletea model of the view.
type Model struct {
	ctx    context.Context
	runner Runner
	query  engine.Query

	table   table.Model
	spinner spinner.Model
	help    help.Model
	keys    keyMap

	session *engine.Session
	err     error
	loading bool

	tab      tab
	category aggregator.Category
	sortCol  int
	sortDesc bool

	width    int
	height   int
	showHelp bool
}

type sessionMsg struct {
	session *engine.Session
	err     error
}

// New creates the view for query q.
func New(ctx context.Context, runner Runner, q engine.Query) Model {
	t := table.New(
		table.WithColumns(columnsFor(productTab)),
		table.WithFocused(true),
		table.WithHeight(15),
	)
	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(primaryColor).
		BorderBottom(true).
		Bold(true).
		Foreground(primaryColor)
	s.Selected = s.Selected.
		Foreground(bgDark).
		Background(secondaryColor).
		Bold(false)
	t.SetStyles(s)

	sp := spinner.New()
	sp.Spinner = spinner.Points
	sp.Style = lipgloss.NewStyle().Foreground(primaryColor)

	return Model{
		ctx:      ctx,
		runner:   runner,
		query:    q,
		table:    t,
		spinner:  sp,
		help:     help.New(),
		keys:     keys,
		loading:  true,
		category: aggregator.Cash,
		sortCol:  noSort,
	}
}

// Run starts the view and blocks until the operator quits.
func Run(ctx context.Context, runner Runner, q engine.Query) error {
	p := tea.NewProgram(New(ctx, runner, q), tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

// Session returns the last successful query, or nil.
func (m Model) Session() *engine.Session {
	return m.session
}

// Err returns the error of the last query, if any.
func (m Model) Err() error {
	return m.err
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.runQuery())
}

func (m Model) runQuery() tea.Cmd {
	ctx, runner, q := m.ctx, m.runner, m.query
	return func() tea.Msg {
		s, err := runner.Run(ctx, q)
		return sessionMsg{session: s, err: err}
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.table.SetHeight(max(msg.Height-14, 3))
		return m, nil

	case sessionMsg:
		m.loading = false
		m.err = msg.err
		if msg.err == nil {
			m.session = msg.session
		}
		m.refreshTable()
		return m, nil

	case spinner.TickMsg:
		if m.loading {
			var cmd tea.Cmd
			m.spinner, cmd = m.spinner.Update(msg)
			return m, cmd
		}
		return m, nil

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Help):
			m.showHelp = !m.showHelp
			return m, nil
		}

		if m.loading {
			return m, nil
		}

		switch {
		case key.Matches(msg, m.keys.Reload):
			m.loading = true
			return m, tea.Batch(m.spinner.Tick, m.runQuery())

		case key.Matches(msg, m.keys.NextTab):
			m.setTab((m.tab + 1) % tab(len(tabLabels)))
			return m, nil

		case key.Matches(msg, m.keys.PrevTab):
			m.setTab((m.tab + tab(len(tabLabels)) - 1) % tab(len(tabLabels)))
			return m, nil

		case key.Matches(msg, m.keys.Category):
			m.category = nextCategory(m.category)
			m.setTab(detailTab)
			return m, nil

		case key.Matches(msg, m.keys.Sort):
			m.sortCol++
			if m.sortCol >= len(columnsFor(m.tab)) {
				m.sortCol = noSort
			}
			m.refreshTable()
			return m, nil

		case key.Matches(msg, m.keys.Reverse):
			m.sortDesc = !m.sortDesc
			m.refreshTable()
			return m, nil
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) setTab(t tab) {
	m.tab = t
	m.refreshTable()
}

func nextCategory(c aggregator.Category) aggregator.Category {
	i := slices.Index(aggregator.Categories, c)
	return aggregator.Categories[(i+1)%len(aggregator.Categories)]
}

// =============================================================================
// TABLE CONTENT
// =============================================================================

func columnsFor(t tab) []table.Column {
	code, name := "商品コード", "商品名"
	if t == groupTab {
		code, name = "グループ番号", "グループ名"
	}
	return []table.Column{
		{Title: code, Width: 12},
		{Title: name, Width: 32},
		{Title: "枚数", Width: 10},
		{Title: "金額", Width: 14},
	}
}

// currentRows returns the aggregate rows of the active tab.
func (m Model) currentRows() []aggregator.AggregateRow {
	if m.session == nil {
		return nil
	}
	switch m.tab {
	case groupTab:
		return slices.Clone(m.session.Result.GroupSummary)
	case detailTab:
		return m.session.Detail(m.category)
	default:
		return slices.Clone(m.session.Result.ProductSummary)
	}
}

func sortRows(rows []aggregator.AggregateRow, col int, desc bool) {
	if col == noSort {
		if desc {
			slices.Reverse(rows)
		}
		return
	}
	slices.SortStableFunc(rows, func(a, b aggregator.AggregateRow) int {
		var c int
		switch col {
		case 0:
			c = cmp.Compare(a.Code, b.Code)
		case 1:
			c = cmp.Compare(a.Name, b.Name)
		case 2:
			c = cmp.Compare(a.Quantity, b.Quantity)
		default:
			c = cmp.Compare(a.Amount, b.Amount)
		}
		if desc {
			return -c
		}
		return c
	})
}

// figure renders a number; reversal figures are shown negated as "(n)".
func figure(n int64, reversal bool) string {
	if reversal && n != 0 {
		return "(" + report.FormatNumber(n) + ")"
	}
	return report.FormatNumber(n)
}

func (m *Model) refreshTable() {
	rows := m.currentRows()
	sortRows(rows, m.sortCol, m.sortDesc)

	reversal := m.tab == detailTab && m.category == aggregator.Reversal

	out := make([]table.Row, len(rows))
	for i, r := range rows {
		out[i] = table.Row{r.Code, r.Name, figure(r.Quantity, reversal), figure(r.Amount, reversal)}
	}

	columns := columnsFor(m.tab)
	if m.sortCol != noSort {
		arrow := " ▲"
		if m.sortDesc {
			arrow = " ▼"
		}
		columns[m.sortCol].Title += arrow
	}

	// Rows must be cleared before the columns shrink or grow.
	m.table.SetRows(nil)
	m.table.SetColumns(columns)
	m.table.SetRows(out)
	m.table.GotoTop()
}

// =============================================================================
// VIEW
// =============================================================================

func (m Model) View() string {
	sections := []string{m.renderHeader(), m.renderTabs()}

	switch {
	case m.loading:
		sections = append(sections, m.renderLoading())
	case m.err != nil:
		sections = append(sections, errorStyle.Render("⚠ "+m.err.Error()))
	case m.session != nil && m.session.Empty():
		sections = append(sections, noticeStyle.Render("該当するデータがありません ("+m.query.Range.String()+")"))
	case m.session != nil:
		if m.tab == detailTab {
			sections = append(sections, m.renderCategory())
		}
		sections = append(sections, m.table.View(), m.renderTotals())
	}

	sections = append(sections, m.renderStatusBar())
	if m.showHelp {
		sections = append(sections, m.help.FullHelpView(m.keys.FullHelp()))
	} else {
		sections = append(sections, m.help.ShortHelpView(m.keys.ShortHelp()))
	}

	return appStyle.Render(strings.Join(sections, "\n"))
}

func (m Model) renderHeader() string {
	title := report.Title(m.query.Range)
	return lipgloss.JoinHorizontal(lipgloss.Left,
		titleStyle.Render(title),
		rangeStyle.Render("集計日: "+m.query.Range.String()),
	)
}

func (m Model) renderTabs() string {
	rendered := make([]string, len(tabLabels))
	for i, label := range tabLabels {
		if tab(i) == m.tab {
			rendered[i] = activeTabStyle.Render(label)
		} else {
			rendered[i] = tabStyle.Render(label)
		}
	}
	return "\n" + lipgloss.JoinHorizontal(lipgloss.Top, rendered...) + "\n"
}

func (m Model) renderLoading() string {
	return lipgloss.NewStyle().
		Foreground(primaryColor).
		Padding(1, 0).
		Render(m.spinner.View() + " 集計中...")
}

func (m Model) renderCategory() string {
	parts := make([]string, len(aggregator.Categories))
	for i, c := range aggregator.Categories {
		switch {
		case c != m.category:
			parts[i] = mutedStyle.Render(c.Label())
		case c == aggregator.Reversal:
			parts[i] = reversalStyle.Render("[" + c.Label() + "]")
		default:
			parts[i] = categoryStyle.Render("[" + c.Label() + "]")
		}
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderTotals() string {
	res := m.session.Result
	line := fmt.Sprintf("合計枚数 %s   合計金額 %s   キャッシュレス %s枚 / %s円",
		report.FormatNumber(res.TotalQuantity),
		report.FormatNumber(res.TotalAmount),
		report.FormatNumber(res.CashlessQuantity),
		report.FormatNumber(res.CashlessAmount),
	)

	if m.tab == detailTab {
		total := res.Total(m.category)
		reversal := m.category == aggregator.Reversal
		detail := fmt.Sprintf("%s 計  %s枚 / %s円", m.category.Label(),
			figure(total.Quantity, reversal), figure(total.Amount, reversal))
		if reversal {
			detail = reversalStyle.Render(detail)
		}
		line += "\n" + detail
	}

	return totalsStyle.Render(line)
}

func (m Model) renderStatusBar() string {
	var status string
	switch {
	case m.loading:
		status = "● loading"
	case m.err != nil:
		status = lipgloss.NewStyle().Foreground(errorColor).Render("● error")
	case m.session != nil:
		status = lipgloss.NewStyle().Foreground(accentColor).Render("● ready") +
			mutedStyle.Render(fmt.Sprintf(" | %d rows from %d file(s) | %v",
				m.session.RowsMatched, len(m.session.Files), m.session.Elapsed.Round(time.Millisecond)))
	}

	width := m.width - 4
	if width < 0 {
		width = 0
	}
	return statusBarStyle.Width(width).Render(status)
}
