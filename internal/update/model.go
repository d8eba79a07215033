package update

import (
	"context"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/textinput"
	domainmodel "github.com/sandeepkv93/habitd/internal/model"
	"github.com/sandeepkv93/habitd/internal/routine"
)

type Filter string

const (
	FilterDue   Filter = "Due"
	FilterAll   Filter = "All"
	FilterDone  Filter = "Done"
	FilterStats Filter = "Stats"
)

type StatusBar struct {
	Text    string
	IsError bool
}

type GlobalKeyMap struct {
	Due   string
	All   string
	Done  string
	Stats string
	Help  string
	Quit  string
}

type ChecklistEntry struct {
	Section    string
	Item       string
	Evaluation domainmodel.ItemEvaluation
}

type CommandPaletteState struct {
	Active bool
	Input  string
}

type CadenceEditorState struct {
	Active    bool
	Section   string
	Item      string
	Cadence   string
	CountText string
	Err       string
}

type Model struct {
	Filter      Filter
	Entries     []ChecklistEntry
	Cursor      int
	Palette     CommandPaletteState
	HelpVisible bool
	Status      StatusBar
	Keys        GlobalKeyMap
	Quitting    bool
	LastError   error

	svc    *routine.Service
	reload func(context.Context) (*domainmodel.RoutineRecord, []*domainmodel.RoutineRecord, error)
	all    []routine.ItemView

	// Bubble components used for rich TUI controls
	commandInput  textinput.Model
	quotaProgress progress.Model
	helpModel     help.Model

	cadenceEditor CadenceEditorState
	quotaBarWidth int
}

type SetStatusMsg struct {
	Text    string
	IsError bool
}

type ClearStatusMsg struct{}

type AppErrorMsg struct {
	Err error
}

type SetFilterMsg struct {
	Filter Filter
}

type ChecklistRefreshMsg struct{}

func NewModel() Model {
	return NewModelWithService(nil, DefaultRuntimeConfig())
}

func NewModelWithService(svc *routine.Service, cfg RuntimeConfig) Model {
	m := Model{
		Filter: filterOrDefault(cfg.InitialFilter),
		Keys: GlobalKeyMap{
			Due:   "1",
			All:   "2",
			Done:  "3",
			Stats: "4",
			Help:  "?",
			Quit:  "q",
		},
		svc:           svc,
		quotaBarWidth: cfg.QuotaBarWidth,
		cadenceEditor: CadenceEditorState{
			Cadence:   "daily",
			CountText: "1",
		},
	}
	m.commandInput = textinput.New()
	m.commandInput.Placeholder = "toggle <section> <item>"
	m.commandInput.CharLimit = cfg.PaletteCharLimit
	m.quotaProgress = progress.New(progress.WithDefaultGradient(), progress.WithWidth(m.quotaBarWidth), progress.WithoutPercentage())
	m.helpModel = help.New()
	m.refreshEntries()
	return m
}

// SetReloadFunc installs the callback /reload uses to fetch a fresh server
// snapshot. The returned records pass through Service.LoadSnapshot, so pending
// local edits survive the refresh.
func (m *Model) SetReloadFunc(fn func(context.Context) (*domainmodel.RoutineRecord, []*domainmodel.RoutineRecord, error)) {
	m.reload = fn
}

func filterOrDefault(raw string) Filter {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "all":
		return FilterAll
	case "done":
		return FilterDone
	case "stats":
		return FilterStats
	default:
		return FilterDue
	}
}

func isKnownFilter(f Filter) bool {
	switch f {
	case FilterDue, FilterAll, FilterDone, FilterStats:
		return true
	default:
		return false
	}
}
