package update

import (
	"context"
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	domainmodel "github.com/sandeepkv93/habitd/internal/model"
	"github.com/sandeepkv93/habitd/internal/routine"
)

func (m *Model) refreshEntries() {
	if m.svc == nil {
		m.all = nil
		m.Entries = nil
		m.Cursor = 0
		return
	}
	views, err := m.svc.EvaluateAll(context.Background())
	if err != nil {
		if !errors.Is(err, routine.ErrNoRoutine) {
			m.LastError = err
			m.Status = StatusBar{Text: err.Error(), IsError: true}
		}
		m.all = nil
		m.Entries = nil
		m.Cursor = 0
		return
	}
	m.all = views
	m.Entries = filterEntries(views, m.Filter)
	if m.Cursor >= len(m.Entries) {
		m.Cursor = len(m.Entries) - 1
	}
	if m.Cursor < 0 {
		m.Cursor = 0
	}
}

func filterEntries(views []routine.ItemView, filter Filter) []ChecklistEntry {
	out := make([]ChecklistEntry, 0, len(views))
	for _, v := range views {
		switch filter {
		case FilterDue:
			if !v.Evaluation.ShouldShow || v.Evaluation.State == domainmodel.ItemCompletedToday {
				continue
			}
		case FilterDone:
			if v.Evaluation.State != domainmodel.ItemCompletedToday && v.Evaluation.State != domainmodel.ItemQuotaFulfilled {
				continue
			}
		case FilterStats:
			continue
		}
		out = append(out, ChecklistEntry{Section: v.Section, Item: v.Item, Evaluation: v.Evaluation})
	}
	return out
}

func (m Model) handleChecklistKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "up", "k":
		if m.Cursor > 0 {
			m.Cursor--
		}
	case "down", "j":
		if m.Cursor < len(m.Entries)-1 {
			m.Cursor++
		}
	case " ", "enter":
		m = m.toggleSelected()
	case "c":
		m = m.openCadenceEditor()
	}
	return m
}

func (m Model) toggleSelected() Model {
	entry, ok := m.currentEntry()
	if !ok {
		m.Status = StatusBar{Text: "no item selected", IsError: true}
		return m
	}
	if err := m.svc.ToggleCompletion(context.Background(), entry.Item, entry.Section); err != nil {
		m.LastError = err
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.refreshEntries()
		return m
	}
	m.Status = StatusBar{Text: fmt.Sprintf("toggled %s/%s", entry.Section, entry.Item), IsError: false}
	m.refreshEntries()
	return m
}

func (m Model) currentEntry() (ChecklistEntry, bool) {
	if m.svc == nil || len(m.Entries) == 0 {
		return ChecklistEntry{}, false
	}
	if m.Cursor < 0 || m.Cursor >= len(m.Entries) {
		return ChecklistEntry{}, false
	}
	return m.Entries[m.Cursor], true
}
