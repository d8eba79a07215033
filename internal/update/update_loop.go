package update

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/habitd/internal/views"
)

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch typed := msg.(type) {
	case tea.KeyMsg:
		if m.Palette.Active {
			if typed.String() == m.Keys.Help {
				m.HelpVisible = !m.HelpVisible
				return m, nil
			}
			next, cmd := m.handlePaletteKey(typed)
			return next, cmd
		}

		if m.cadenceEditor.Active {
			next := m.handleCadenceEditorKey(typed)
			return next, nil
		}

		switch typed.String() {
		case "/":
			m.Palette.Active = true
			m.Palette.Input = ""
			focusCmd := m.commandInput.Focus()
			m.commandInput.SetValue("")
			m.Status = StatusBar{Text: "command palette active", IsError: false}
			return m, focusCmd
		case m.Keys.Due:
			m.Filter = FilterDue
			m.Cursor = 0
			m.refreshEntries()
			return m, nil
		case m.Keys.All:
			m.Filter = FilterAll
			m.Cursor = 0
			m.refreshEntries()
			return m, nil
		case m.Keys.Done:
			m.Filter = FilterDone
			m.Cursor = 0
			m.refreshEntries()
			return m, nil
		case m.Keys.Stats:
			m.Filter = FilterStats
			m.Cursor = 0
			m.refreshEntries()
			return m, nil
		case "r":
			next := m.runReload()
			return next, nil
		case m.Keys.Help:
			m.HelpVisible = !m.HelpVisible
			if m.HelpVisible {
				m.Status = StatusBar{Text: "help shown", IsError: false}
			} else {
				m.Status = StatusBar{Text: "help hidden", IsError: false}
			}
			return m, nil
		case "ctrl+c", m.Keys.Quit:
			m.Quitting = true
			return m, tea.Quit
		}
		return m.handleChecklistKey(typed), nil
	case SetStatusMsg:
		m.Status = StatusBar{Text: typed.Text, IsError: typed.IsError}
		return m, nil
	case ClearStatusMsg:
		m.Status = StatusBar{}
		return m, nil
	case AppErrorMsg:
		m.LastError = typed.Err
		if typed.Err != nil {
			m.Status = StatusBar{Text: typed.Err.Error(), IsError: true}
		}
		return m, nil
	case SetFilterMsg:
		if isKnownFilter(typed.Filter) {
			m.Filter = typed.Filter
			m.Cursor = 0
			m.refreshEntries()
		}
		return m, nil
	case ChecklistRefreshMsg:
		m.refreshEntries()
		return m, nil
	}

	return m, nil
}

func (m Model) runReload() Model {
	if m.reload == nil || m.svc == nil {
		m.Status = StatusBar{Text: "reload not configured", IsError: true}
		return m
	}
	snapshot, related, err := m.reload(context.Background())
	if err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: fmt.Sprintf("reload failed: %v", err), IsError: true}
		return m
	}
	if err := m.svc.LoadSnapshot(snapshot, related); err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: fmt.Sprintf("reload failed: %v", err), IsError: true}
		return m
	}
	m.Status = StatusBar{Text: "snapshot reloaded", IsError: false}
	m.refreshEntries()
	return m
}

func (m Model) View() string {
	status := ""
	if m.Status.Text != "" {
		if m.Status.IsError {
			status = fmt.Sprintf("status: error: %s", m.Status.Text)
		} else {
			status = fmt.Sprintf("status: %s", m.Status.Text)
		}
	}

	leftPane := ""
	rightPane := ""
	if m.Filter == FilterStats {
		leftPane = m.renderStatsView()
		rightPane = m.renderCommandPalette() + m.renderHelpIfVisible()
	} else {
		leftPane = m.renderChecklistView()
		rightPane = m.renderDetailPane() + m.renderCadenceEditorIfVisible() + "\n" + m.renderCommandPalette() + m.renderHelpIfVisible()
	}

	date := ""
	if m.svc != nil {
		if rec := m.svc.Record(); rec != nil {
			date = rec.Date.String()
		}
	}

	return views.RenderApp(views.AppData{
		Header:     fmt.Sprintf("habitd | %s | filter: %s", date, m.Filter),
		LeftPane:   leftPane,
		RightPane:  rightPane,
		StatusLine: status,
		Footer: fmt.Sprintf("keys: %s due | %s all | %s done | %s stats | / cmd | %s help | %s quit",
			m.Keys.Due, m.Keys.All, m.Keys.Done, m.Keys.Stats, m.Keys.Help, m.Keys.Quit),
	})
}
