package tui

import (
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stonemark/underwrite/internal/service"
)

func sampleRuns() []service.RunSummary {
	return []service.RunSummary{
		{ID: 2, CreatedAt: time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), PropertyName: "Beta Gardens", UnitCount: 120, EGI: 1_400_000, NOI: 820_000, ExpenseRatio: 0.41},
		{ID: 1, CreatedAt: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC), PropertyName: "Alpha Flats", UnitCount: 86, EGI: 1_100_000, NOI: 640_000, ExpenseRatio: 0.42},
	}
}

func TestBrowserEnterSelectsRun(t *testing.T) {
	m := NewBrowser(sampleRuns())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model, ok := updated.(BrowserModel)
	require.True(t, ok)
	require.NotNil(t, cmd, "enter quits the program")

	require.NotNil(t, model.Selected())
	assert.Equal(t, int64(2), *model.Selected(), "top row is the newest run")
}

func TestBrowserNavigateThenSelect(t *testing.T) {
	m := NewBrowser(sampleRuns())

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyDown})
	model := updated.(BrowserModel)
	updated, _ = model.Update(tea.KeyMsg{Type: tea.KeyEnter})
	model = updated.(BrowserModel)

	require.NotNil(t, model.Selected())
	assert.Equal(t, int64(1), *model.Selected())
}

func TestBrowserQuitWithoutSelection(t *testing.T) {
	m := NewBrowser(sampleRuns())

	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	model := updated.(BrowserModel)
	require.NotNil(t, cmd)
	assert.Nil(t, model.Selected())
}

func TestBrowserViewEmpty(t *testing.T) {
	m := NewBrowser(nil)
	assert.Contains(t, m.View(), "No saved runs")
}

func TestBrowserViewListsProperties(t *testing.T) {
	m := NewBrowser(sampleRuns())
	view := m.View()
	assert.Contains(t, view, "Beta Gardens")
	assert.Contains(t, view, "Alpha Flats")
}
