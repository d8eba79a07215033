package update

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	domainmodel "github.com/sandeepkv93/habitd/internal/model"
	"github.com/sandeepkv93/habitd/internal/routine"
)

type stubRemote struct {
	stateErr  error
	configErr error
}

func (r *stubRemote) SaveItemState(ctx context.Context, routineID, sectionID, itemID string, completed bool) error {
	return r.stateErr
}

func (r *stubRemote) SaveItemConfig(ctx context.Context, sectionID, itemID string, cfg domainmodel.RecurrenceConfig) error {
	return r.configErr
}

func testSnapshot(now time.Time) *domainmodel.RoutineRecord {
	day := domainmodel.DayOf(now, time.UTC)
	return &domainmodel.RoutineRecord{
		ID:       "routine-1",
		Date:     day,
		Timezone: "UTC",
		Sections: map[string]map[string]bool{
			"morning": {"gym": false, "stretch": false},
		},
		Configs: map[string]map[string]domainmodel.RecurrenceConfig{
			"morning": {
				"gym":     {Cadence: domainmodel.CadenceDaily, RequiredCount: 1, Every: 1, Active: true, CreatedAt: now.AddDate(0, -1, 0)},
				"stretch": {Cadence: domainmodel.CadenceWeekly, RequiredCount: 3, Every: 1, Active: true, CreatedAt: now.AddDate(0, -1, 0)},
			},
		},
	}
}

func newTestModel(t *testing.T, remote routine.RemotePersister) (Model, *routine.Service) {
	t.Helper()
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	svc := routine.New(routine.Options{
		Remote: remote,
		Now:    func() time.Time { return now },
	})
	if err := svc.LoadSnapshot(testSnapshot(now), nil); err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	return NewModelWithService(svc, DefaultRuntimeConfig()), svc
}

func TestNewModelDefaults(t *testing.T) {
	m := NewModel()
	if m.Filter != FilterDue {
		t.Fatalf("expected default filter %q, got %q", FilterDue, m.Filter)
	}
	if m.Keys.Quit != "q" {
		t.Fatalf("expected quit key q, got %q", m.Keys.Quit)
	}
	if len(m.Entries) != 0 {
		t.Fatalf("expected no entries without a service, got %d", len(m.Entries))
	}
}

func TestUpdateKeySwitchesFilter(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'2'}})
	next := updated.(Model)
	if next.Filter != FilterAll {
		t.Fatalf("expected all filter, got %q", next.Filter)
	}

	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'4'}})
	next = updated.(Model)
	if next.Filter != FilterStats {
		t.Fatalf("expected stats filter, got %q", next.Filter)
	}
	if len(next.Entries) != 0 {
		t.Fatalf("expected empty checklist under stats filter, got %d entries", len(next.Entries))
	}
}

func TestUpdateSetFilterMsg(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})
	updated, _ := m.Update(SetFilterMsg{Filter: FilterDone})
	next := updated.(Model)
	if next.Filter != FilterDone {
		t.Fatalf("expected done filter, got %q", next.Filter)
	}

	updated, _ = next.Update(SetFilterMsg{Filter: Filter("Unknown")})
	next = updated.(Model)
	if next.Filter != FilterDone {
		t.Fatalf("expected filter unchanged for unknown filter, got %q", next.Filter)
	}
}

func TestUpdateStatusAndError(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})
	updated, _ := m.Update(SetStatusMsg{Text: "ready", IsError: false})
	next := updated.(Model)
	if next.Status.Text != "ready" || next.Status.IsError {
		t.Fatalf("unexpected status: %+v", next.Status)
	}

	errMsg := errors.New("boom")
	updated, _ = next.Update(AppErrorMsg{Err: errMsg})
	next = updated.(Model)
	if next.LastError == nil || next.LastError.Error() != "boom" {
		t.Fatalf("expected last error boom, got: %v", next.LastError)
	}
	if !next.Status.IsError || next.Status.Text != "boom" {
		t.Fatalf("unexpected error status: %+v", next.Status)
	}

	updated, _ = next.Update(ClearStatusMsg{})
	next = updated.(Model)
	if next.Status.Text != "" || next.Status.IsError {
		t.Fatalf("expected cleared status, got: %+v", next.Status)
	}
}

func TestUpdateQuitKey(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'q'}})
	next := updated.(Model)
	if !next.Quitting {
		t.Fatal("expected quitting flag true")
	}
	if cmd == nil {
		t.Fatal("expected quit command")
	}
}

func TestToggleKeyMarksItemCompleted(t *testing.T) {
	m, svc := newTestModel(t, &stubRemote{})
	if len(m.Entries) != 2 {
		t.Fatalf("expected 2 due entries, got %d", len(m.Entries))
	}
	if m.Entries[0].Item != "gym" {
		t.Fatalf("expected gym first, got %q", m.Entries[0].Item)
	}

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	next := updated.(Model)
	if next.Status.IsError {
		t.Fatalf("unexpected error status: %+v", next.Status)
	}
	if !svc.Record().LiveCompleted("morning", "gym") {
		t.Fatal("expected gym marked completed")
	}
	for _, entry := range next.Entries {
		if entry.Item == "gym" {
			t.Fatal("expected completed gym filtered out of due list")
		}
	}
}

func TestToggleRemoteFailureSurfacesError(t *testing.T) {
	m, svc := newTestModel(t, &stubRemote{stateErr: errors.New("connection refused")})
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeySpace})
	next := updated.(Model)
	if !next.Status.IsError {
		t.Fatalf("expected error status, got: %+v", next.Status)
	}
	if svc.Record().LiveCompleted("morning", "gym") {
		t.Fatal("expected rolled back completion after remote failure")
	}
}

func TestCadenceEditorApply(t *testing.T) {
	m, svc := newTestModel(t, &stubRemote{})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	next := updated.(Model)
	if !next.cadenceEditor.Active {
		t.Fatal("expected cadence editor active")
	}
	if next.cadenceEditor.Cadence != "daily" || next.cadenceEditor.CountText != "1" {
		t.Fatalf("expected editor prefilled from config, got: %+v", next.cadenceEditor)
	}

	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyTab})
	next = updated.(Model)
	if next.cadenceEditor.Cadence != "weekly" {
		t.Fatalf("expected weekly after tab, got %q", next.cadenceEditor.Cadence)
	}

	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	next = updated.(Model)
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'3'}})
	next = updated.(Model)
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next = updated.(Model)

	if next.cadenceEditor.Active {
		t.Fatalf("expected editor closed after apply, err: %q", next.cadenceEditor.Err)
	}
	cfg, ok := svc.Record().Config("morning", "gym")
	if !ok {
		t.Fatal("expected gym config present")
	}
	if cfg.Cadence != domainmodel.CadenceWeekly || cfg.RequiredCount != 3 {
		t.Fatalf("expected weekly x3, got: %+v", cfg)
	}
}

func TestCadenceEditorRejectsBadCount(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'c'}})
	next := updated.(Model)

	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyBackspace})
	next = updated.(Model)
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next = updated.(Model)

	if !next.cadenceEditor.Active {
		t.Fatal("expected editor still open after invalid count")
	}
	if next.cadenceEditor.Err == "" {
		t.Fatal("expected editor error for empty count")
	}
}

func TestPaletteToggleCommand(t *testing.T) {
	m, svc := newTestModel(t, &stubRemote{})
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	next := updated.(Model)
	if !next.Palette.Active {
		t.Fatal("expected palette active")
	}

	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("toggle morning stretch")})
	next = updated.(Model)
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next = updated.(Model)

	if next.Palette.Active {
		t.Fatal("expected palette closed after execute")
	}
	if next.Status.IsError {
		t.Fatalf("unexpected error status: %+v", next.Status)
	}
	if !svc.Record().LiveCompleted("morning", "stretch") {
		t.Fatal("expected stretch toggled via palette")
	}
}

func TestPaletteForwardsInputCommands(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})
	updated, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	next := updated.(Model)
	if cmd == nil {
		t.Fatal("expected cursor blink command when the palette opens")
	}

	// Non-rune keys flow through the text input; its commands must reach the
	// runtime rather than being dropped.
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyLeft})
	next = updated.(Model)
	if !next.Palette.Active {
		t.Fatal("expected palette still active after cursor key")
	}
}

func TestPaletteShowCommandSwitchesFilter(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	next := updated.(Model)
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("show done")})
	next = updated.(Model)
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next = updated.(Model)

	if next.Filter != FilterDone {
		t.Fatalf("expected done filter via palette, got %q", next.Filter)
	}
}

func TestPaletteUnknownCommandSetsErrorStatus(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'/'}})
	next := updated.(Model)
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("frobnicate now")})
	next = updated.(Model)
	updated, _ = next.Update(tea.KeyMsg{Type: tea.KeyEnter})
	next = updated.(Model)

	if !next.Status.IsError {
		t.Fatalf("expected error status for unknown command, got: %+v", next.Status)
	}
}

func TestReloadKeyInstallsFreshSnapshot(t *testing.T) {
	m, svc := newTestModel(t, &stubRemote{})
	now := time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)
	fresh := testSnapshot(now)
	fresh.Sections["morning"]["gym"] = true
	m.SetReloadFunc(func(context.Context) (*domainmodel.RoutineRecord, []*domainmodel.RoutineRecord, error) {
		return fresh, nil, nil
	})

	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	next := updated.(Model)
	if next.Status.IsError || next.Status.Text != "snapshot reloaded" {
		t.Fatalf("unexpected reload status: %+v", next.Status)
	}
	if !svc.Record().LiveCompleted("morning", "gym") {
		t.Fatal("expected fresh snapshot installed")
	}
}

func TestReloadWithoutFuncFails(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'r'}})
	next := updated.(Model)
	if !next.Status.IsError {
		t.Fatalf("expected error status without reload func, got: %+v", next.Status)
	}
}

func TestViewContainsChecklist(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})
	out := m.View()
	if !strings.Contains(out, "habitd") {
		t.Fatalf("expected header in view, got: %s", out)
	}
	if !strings.Contains(out, "gym") {
		t.Fatalf("expected gym item in view, got: %s", out)
	}
}

func TestViewStatsFilter(t *testing.T) {
	m, _ := newTestModel(t, &stubRemote{})
	updated, _ := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{'4'}})
	next := updated.(Model)
	out := next.View()
	if !strings.Contains(out, "stats:") {
		t.Fatalf("expected stats pane, got: %s", out)
	}
}
