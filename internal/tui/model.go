package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ecoimpact/carbonsim/internal/engine"
	"github.com/ecoimpact/carbonsim/internal/round"
)

// ViewState is the screen the viewer is showing.
type ViewState int

const (
	ViewStateList ViewState = iota
	ViewStateDetail
	ViewStateQuitting
)

// Key bindings.
const (
	keyQuit  = "q"
	keyCtrlC = "ctrl+c"
	keyEnter = "enter"
	keyEsc   = "esc"
	keyTab   = "tab"
)

const (
	defaultWidth  = 100
	defaultHeight = 24
	// chromeHeight is the room taken by the summary box and help line.
	chromeHeight = 16
	minTableRows = 3
)

// ProjectionModel is the Bubble Tea viewer for one or more simulations.
// Tab cycles between results; enter opens the selected year.
//
//nolint:recvcheck // Bubble Tea requires value receivers for Init/Update/View.
type ProjectionModel struct {
	results []*engine.Result
	current int

	table    table.Model
	state    ViewState
	selected int

	width  int
	height int
}

// NewProjectionModel builds a viewer over results. It panics on an empty slice.
func NewProjectionModel(results ...*engine.Result) ProjectionModel {
	if len(results) == 0 {
		panic("tui: NewProjectionModel needs at least one result")
	}
	m := ProjectionModel{
		results: results,
		width:   defaultWidth,
		height:  defaultHeight,
	}
	m.table = m.buildTable()
	return m
}

// NewProjectionTable builds the table of projected years.
func NewProjectionTable(res *engine.Result, height int) table.Model {
	columns := []table.Column{
		{Title: "Year", Width: 6},           //nolint:mnd // Column width.
		{Title: "Revenue", Width: 16},       //nolint:mnd // Column width.
		{Title: "Cumulative", Width: 16},    //nolint:mnd // Column width.
		{Title: "CO2 Reduced", Width: 12},   //nolint:mnd // Column width.
		{Title: "CO2 To Date", Width: 12},   //nolint:mnd // Column width.
		{Title: "Risk %", Width: 7},         //nolint:mnd // Column width.
		{Title: "Category", Width: 10},      //nolint:mnd // Column width.
		{Title: "Risk-Adjusted", Width: 16}, //nolint:mnd // Column width.
	}

	rows := make([]table.Row, len(res.Projections))
	for i, e := range res.Projections {
		revenue := engine.FormatMillions(e.Revenue)
		if e.RevenueFallback {
			revenue += "*"
		}
		rows[i] = table.Row{
			fmt.Sprint(e.Year),
			revenue,
			engine.FormatMillions(e.CumulativeRevenue),
			round.String(e.CO2Reduced, round.Mass),
			round.String(e.CO2ReducedCumulative, round.Cumulative),
			round.String(e.AbolishmentRisk, round.Percent),
			e.RiskCategory.String(),
			engine.FormatMillions(e.RiskAdjustedValue),
		}
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(height),
	)

	s := table.DefaultStyles()
	s.Header = TableHeaderStyle
	s.Selected = TableSelectedStyle
	t.SetStyles(s)

	return t
}

func (m ProjectionModel) buildTable() table.Model {
	return NewProjectionTable(m.results[m.current], max(m.height-chromeHeight, minTableRows))
}

// Current returns the result being shown.
func (m ProjectionModel) Current() *engine.Result { return m.results[m.current] }

// State returns the active screen.
func (m ProjectionModel) State() ViewState { return m.state }

// Init implements tea.Model.
func (m ProjectionModel) Init() tea.Cmd { return nil }

// Update implements tea.Model.
func (m ProjectionModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		cursor := m.table.Cursor()
		m.table = m.buildTable()
		m.table.SetCursor(cursor)
		return m, nil
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m ProjectionModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case keyCtrlC, keyQuit:
		m.state = ViewStateQuitting
		return m, tea.Quit
	}

	if m.state == ViewStateDetail {
		if msg.String() == keyEsc {
			m.state = ViewStateList
		}
		return m, nil
	}

	switch msg.String() {
	case keyEnter:
		if c := m.table.Cursor(); c >= 0 && c < len(m.Current().Projections) {
			m.selected = c
			m.state = ViewStateDetail
		}
		return m, nil
	case keyTab:
		if len(m.results) > 1 {
			m.current = (m.current + 1) % len(m.results)
			m.table = m.buildTable()
		}
		return m, nil
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m ProjectionModel) View() string {
	switch m.state {
	case ViewStateQuitting:
		return ""
	case ViewStateDetail:
		res := m.Current()
		return RenderDetailView(res, res.Projections[m.selected], m.width) + "\n" +
			HelpStyle.Render("esc back | q quit")
	}

	var b strings.Builder
	b.WriteString(RenderSummary(m.Current(), m.width))
	b.WriteString("\n")
	b.WriteString(m.table.View())
	b.WriteString("\n")
	help := "up/down move | enter year detail | q quit"
	if len(m.results) > 1 {
		help = fmt.Sprintf("[%d/%d] tab next result | %s", m.current+1, len(m.results), help)
	}
	b.WriteString(HelpStyle.Render(help))
	return b.String()
}

// Run starts the viewer on the terminal and blocks until it exits.
func Run(results ...*engine.Result) error {
	if _, err := tea.NewProgram(NewProjectionModel(results...), tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("failed to run interactive TUI: %w", err)
	}
	return nil
}
