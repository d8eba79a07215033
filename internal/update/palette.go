package update

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/sandeepkv93/habitd/internal/commands"
	domainmodel "github.com/sandeepkv93/habitd/internal/model"
	"github.com/sandeepkv93/habitd/internal/routine"
)

func (m Model) handlePaletteKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		m.commandInput.Blur()
		m.Status = StatusBar{Text: "command palette closed", IsError: false}
	case "enter":
		m.Palette.Input = m.commandInput.Value()
		m = m.executePaletteCommand()
	default:
		if msg.Type == tea.KeyRunes {
			m.commandInput.SetValue(m.commandInput.Value() + string(msg.Runes))
			m.Palette.Input = m.commandInput.Value()
			return m, nil
		}
		var cmd tea.Cmd
		m.commandInput, cmd = m.commandInput.Update(msg)
		m.Palette.Input = m.commandInput.Value()
		return m, cmd
	}
	return m, nil
}

func (m Model) executePaletteCommand() Model {
	raw := strings.TrimSpace(m.Palette.Input)
	cmd, err := commands.Parse(raw)
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
		m.Palette.Active = false
		m.Palette.Input = ""
		m.commandInput.SetValue("")
		return m
	}

	res, err := commands.Execute(cmd, commands.Handlers{
		Toggle: func(a commands.ToggleArgs) (commands.Result, error) {
			if m.svc == nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeHandlerMissing, Message: "no routine loaded"}
			}
			if err := m.svc.ToggleCompletion(context.Background(), a.Item, a.Section); err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			return commands.Result{Message: fmt.Sprintf("toggled %s/%s", a.Section, a.Item)}, nil
		},
		Cadence: func(a commands.CadenceArgs) (commands.Result, error) {
			if m.svc == nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeHandlerMissing, Message: "no routine loaded"}
			}
			cadence, ok := cadenceFromLabel(a.Cadence)
			if !ok {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("unknown cadence: %s", a.Cadence)}
			}
			patch := domainmodel.ConfigPatch{Cadence: &cadence}
			if a.Count > 0 {
				count := a.Count
				patch.RequiredCount = &count
			}
			result, err := m.svc.UpdateRecurrenceConfig(context.Background(), a.Section, a.Item, patch, routine.UpdateOptions{
				PersistLocally:  true,
				PersistGlobally: true,
			})
			if err != nil {
				if result.Updated {
					return commands.Result{Message: fmt.Sprintf("cadence saved locally, remote save failed: %v", err)}, nil
				}
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: err.Error()}
			}
			return commands.Result{Message: fmt.Sprintf("cadence updated: %s/%s %s", a.Section, a.Item, a.Cadence)}, nil
		},
		Show: func(a commands.ShowArgs) (commands.Result, error) {
			m.Filter = filterOrDefault(a.Subject)
			m.Cursor = 0
			return commands.Result{Message: fmt.Sprintf("showing %s", a.Subject)}, nil
		},
		Reload: func() (commands.Result, error) {
			if m.reload == nil || m.svc == nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeHandlerMissing, Message: "reload not configured"}
			}
			snapshot, related, err := m.reload(context.Background())
			if err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("reload failed: %v", err)}
			}
			if err := m.svc.LoadSnapshot(snapshot, related); err != nil {
				return commands.Result{}, &commands.CommandError{Code: commands.ErrCodeInvalidArgument, Message: fmt.Sprintf("reload failed: %v", err)}
			}
			return commands.Result{Message: "snapshot reloaded"}, nil
		},
	})
	if err != nil {
		m.Status = StatusBar{Text: err.Error(), IsError: true}
	} else {
		m.Status = StatusBar{Text: res.Message, IsError: false}
	}
	m.refreshEntries()

	m.Palette.Active = false
	m.Palette.Input = ""
	m.commandInput.SetValue("")
	return m
}
