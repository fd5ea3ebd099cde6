// Package tui provides an interactive terminal browser over saved
// underwriting runs.
package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/stonemark/underwrite/internal/cli"
	"github.com/stonemark/underwrite/internal/common"
	"github.com/stonemark/underwrite/internal/service"
)

// BrowserModel lists saved runs in a navigable table. Enter selects a run
// for display; q or esc exits without a selection.
type BrowserModel struct {
	runs     []service.RunSummary
	table    table.Model
	selected *int64
	width    int
	height   int
}

// NewBrowser creates a browser over the given run summaries.
func NewBrowser(runs []service.RunSummary) BrowserModel {
	columns := []table.Column{
		{Title: "ID", Width: 6},
		{Title: "Date", Width: 12},
		{Title: "Property", Width: 28},
		{Title: "Units", Width: 6},
		{Title: "EGI", Width: 14},
		{Title: "NOI", Width: 14},
		{Title: "Exp %", Width: 7},
	}

	rows := make([]table.Row, 0, len(runs))
	for _, run := range runs {
		rows = append(rows, table.Row{
			fmt.Sprintf("%d", run.ID),
			run.CreatedAt.Format("2006-01-02"),
			run.PropertyName,
			fmt.Sprintf("%d", run.UnitCount),
			common.FormatMoney(run.EGI),
			common.FormatMoney(run.NOI),
			common.FormatPercent(run.ExpenseRatio),
		})
	}

	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(true),
		table.WithHeight(20),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("#333")).
		BorderBottom(true).
		Bold(false)
	s.Selected = s.Selected.
		Foreground(lipgloss.Color("#000000")).
		Background(cli.PrimaryColor).
		Bold(true)
	t.SetStyles(s)

	return BrowserModel{
		runs:  runs,
		table: t,
	}
}

// Selected returns the id of the run chosen with Enter, or nil if the
// browser was dismissed.
func (m BrowserModel) Selected() *int64 {
	return m.selected
}

// Init implements tea.Model.
func (m BrowserModel) Init() tea.Cmd {
	return nil
}

// Update handles messages.
func (m BrowserModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.table.SetHeight(msg.Height - 4)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return m, tea.Quit
		case "enter":
			cursor := m.table.Cursor()
			if cursor >= 0 && cursor < len(m.runs) {
				id := m.runs[cursor].ID
				m.selected = &id
			}
			return m, tea.Quit
		}
	}

	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the browser.
func (m BrowserModel) View() string {
	if len(m.runs) == 0 {
		return cli.SubtleStyle.Render("No saved runs. Run `underwrite analyze` first.") + "\n"
	}
	help := cli.SubtleStyle.Render("↑/↓ move · enter view · q quit")
	return cli.TitleStyle.Render("Saved Runs") + "\n" + m.table.View() + "\n" + help + "\n"
}

// Browse runs the interactive browser and returns the selected run id, or
// nil if none was chosen.
func Browse(runs []service.RunSummary) (*int64, error) {
	program := tea.NewProgram(NewBrowser(runs), tea.WithAltScreen())
	final, err := program.Run()
	if err != nil {
		return nil, fmt.Errorf("browser failed: %w", err)
	}
	model, ok := final.(BrowserModel)
	if !ok {
		return nil, fmt.Errorf("unexpected model type %T", final)
	}
	return model.Selected(), nil
}
