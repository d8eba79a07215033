package update

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	domainmodel "github.com/sandeepkv93/habitd/internal/model"
	"github.com/sandeepkv93/habitd/internal/routine"
)

func (m Model) openCadenceEditor() Model {
	entry, ok := m.currentEntry()
	if !ok {
		m.Status = StatusBar{Text: "no item selected", IsError: true}
		return m
	}
	m.cadenceEditor.Active = true
	m.cadenceEditor.Section = entry.Section
	m.cadenceEditor.Item = entry.Item
	m.cadenceEditor.Err = ""

	cfg := domainmodel.DefaultConfig(time.Now())
	if rec := m.svc.Record(); rec != nil {
		if existing, ok := rec.Config(entry.Section, entry.Item); ok {
			cfg = existing
		}
	}
	m.cadenceEditor.Cadence = strings.ToLower(string(cfg.Cadence))
	m.cadenceEditor.CountText = strconv.Itoa(cfg.RequiredCount)
	return m
}

func (m Model) handleCadenceEditorKey(msg tea.KeyMsg) Model {
	switch msg.String() {
	case "esc":
		m.cadenceEditor.Active = false
		return m
	case "tab":
		switch m.cadenceEditor.Cadence {
		case "daily":
			m.cadenceEditor.Cadence = "weekly"
		case "weekly":
			m.cadenceEditor.Cadence = "monthly"
		case "monthly":
			m.cadenceEditor.Cadence = "custom"
		default:
			m.cadenceEditor.Cadence = "daily"
		}
	case "enter":
		m = m.applyCadenceEdit()
	case "backspace":
		if len(m.cadenceEditor.CountText) > 0 {
			m.cadenceEditor.CountText = m.cadenceEditor.CountText[:len(m.cadenceEditor.CountText)-1]
		}
	default:
		if msg.Type == tea.KeyRunes {
			m.cadenceEditor.CountText += string(msg.Runes)
		}
	}
	return m
}

func (m Model) applyCadenceEdit() Model {
	count, err := strconv.Atoi(strings.TrimSpace(m.cadenceEditor.CountText))
	if err != nil || count < 1 {
		m.cadenceEditor.Err = fmt.Sprintf("invalid count: %s", m.cadenceEditor.CountText)
		return m
	}
	cadence, ok := cadenceFromLabel(m.cadenceEditor.Cadence)
	if !ok {
		m.cadenceEditor.Err = fmt.Sprintf("unknown cadence: %s", m.cadenceEditor.Cadence)
		return m
	}

	patch := domainmodel.ConfigPatch{
		Cadence:       &cadence,
		RequiredCount: &count,
	}
	res, err := m.svc.UpdateRecurrenceConfig(context.Background(), m.cadenceEditor.Section, m.cadenceEditor.Item, patch, routine.UpdateOptions{
		PersistLocally:  true,
		PersistGlobally: true,
	})
	if err != nil {
		if res.Updated {
			// Applied locally, kept as a pending edit; remote save failed.
			m.Status = StatusBar{Text: fmt.Sprintf("saved locally, remote save failed: %v", err), IsError: true}
			m.cadenceEditor.Active = false
			m.refreshEntries()
			return m
		}
		m.cadenceEditor.Err = err.Error()
		return m
	}
	m.Status = StatusBar{
		Text:    fmt.Sprintf("cadence updated: %s/%s %s x%d", m.cadenceEditor.Section, m.cadenceEditor.Item, m.cadenceEditor.Cadence, count),
		IsError: false,
	}
	m.cadenceEditor.Active = false
	m.cadenceEditor.Err = ""
	m.refreshEntries()
	return m
}

func cadenceFromLabel(label string) (domainmodel.CadenceType, bool) {
	switch strings.ToLower(strings.TrimSpace(label)) {
	case "daily":
		return domainmodel.CadenceDaily, true
	case "weekly":
		return domainmodel.CadenceWeekly, true
	case "monthly":
		return domainmodel.CadenceMonthly, true
	case "custom":
		return domainmodel.CadenceCustom, true
	default:
		return "", false
	}
}
