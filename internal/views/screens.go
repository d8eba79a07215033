package views

import (
	"fmt"
	"strings"
)

type ChecklistItemData struct {
	Section     string
	Item        string
	State       string
	Reason      string
	Completed   int
	Required    int
	Percentage  int
	ShouldShow  bool
	Highlighted bool
}

type ChecklistPanelData struct {
	Date   string
	Filter string
	Items  []ChecklistItemData
}

type ItemDetailData struct {
	Section      string
	Item         string
	State        string
	Reason       string
	Cadence      string
	Required     int
	Every        int
	WindowStart  string
	WindowEnd    string
	WindowLabel  string
	ProgressView string
	Percentage   int
}

type CadenceEditorData struct {
	Active    bool
	Section   string
	Item      string
	Cadence   string
	CountText string
	ErrorText string
}

type StatsPanelData struct {
	CacheHits          uint64
	CacheMisses        uint64
	CacheInvalidations uint64
	PendingItems       int
	ItemsShown         int
	ItemsTotal         int
}

type HelpPanelData struct {
	Filter   string
	Bindings []string
	HelpView string
}

func RenderChecklistPanel(data ChecklistPanelData) string {
	var b strings.Builder
	b.WriteString(fmt.Sprintf("checklist %s [%s]:\n", data.Date, data.Filter))
	b.WriteString("actions: [j/k]move [space]toggle [c]cadence [/]command\n")
	if len(data.Items) == 0 {
		b.WriteString("(nothing to show)")
		return strings.TrimSpace(b.String())
	}

	section := ""
	for _, item := range data.Items {
		if item.Section != section {
			section = item.Section
			b.WriteString(fmt.Sprintf("\n%s:\n", section))
		}
		cursor := " "
		if item.Highlighted {
			cursor = ">"
		}
		b.WriteString(fmt.Sprintf("%s %s %s", cursor, stateBadge(item.State), item.Item))
		if item.Required > 1 {
			b.WriteString(fmt.Sprintf(" (%d/%d %d%%)", item.Completed, item.Required, item.Percentage))
		}
		if !item.ShouldShow {
			b.WriteString(" [hidden]")
		}
		b.WriteString("\n")
	}
	return strings.TrimSpace(b.String())
}

func RenderItemDetail(data ItemDetailData) string {
	if strings.TrimSpace(data.Item) == "" {
		return "detail:\n(no selection)"
	}
	var b strings.Builder
	b.WriteString("detail:\n")
	b.WriteString(fmt.Sprintf("item: %s/%s\n", data.Section, data.Item))
	b.WriteString(fmt.Sprintf("state: %s\n", data.State))
	b.WriteString(fmt.Sprintf("reason: %s\n", data.Reason))
	b.WriteString(fmt.Sprintf("cadence: %s x%d", data.Cadence, data.Required))
	if data.Every > 1 {
		b.WriteString(fmt.Sprintf(" every %d", data.Every))
	}
	b.WriteString("\n")
	if data.WindowStart != "" {
		b.WriteString(fmt.Sprintf("window: %s .. %s (%s)\n", data.WindowStart, data.WindowEnd, data.WindowLabel))
	}
	b.WriteString(fmt.Sprintf("progress: %s %d%%", data.ProgressView, data.Percentage))
	return strings.TrimSpace(b.String())
}

func RenderCadenceEditor(data CadenceEditorData) string {
	if !data.Active {
		return ""
	}
	var b strings.Builder
	b.WriteString("\ncadence-editor:\n")
	b.WriteString("keys: [tab] cadence [0-9] count [enter] apply [esc] close\n")
	b.WriteString(fmt.Sprintf("item: %s/%s\n", data.Section, data.Item))
	b.WriteString(fmt.Sprintf("cadence: %s\n", data.Cadence))
	b.WriteString(fmt.Sprintf("count: %s\n", data.CountText))
	if data.ErrorText != "" {
		b.WriteString("error: " + data.ErrorText + "\n")
	}
	return strings.TrimSuffix(b.String(), "\n")
}

func RenderStatsPanel(data StatsPanelData) string {
	var b strings.Builder
	b.WriteString("stats:\n")
	b.WriteString(fmt.Sprintf("cache: %d hits / %d misses / %d invalidations\n", data.CacheHits, data.CacheMisses, data.CacheInvalidations))
	b.WriteString(fmt.Sprintf("pending local edits: %d\n", data.PendingItems))
	b.WriteString(fmt.Sprintf("items: %d shown of %d", data.ItemsShown, data.ItemsTotal))
	return b.String()
}

func RenderCommandPalette(active bool, input string) string {
	if !active {
		return ""
	}
	return fmt.Sprintf("command: /%s", input)
}

func RenderHelpPanel(data HelpPanelData) string {
	return fmt.Sprintf("help:\nfilter: %s\n%s\n%s",
		strings.ToLower(data.Filter),
		RenderMarkdown(strings.Join(data.Bindings, "\n")),
		data.HelpView,
	)
}

func stateBadge(state string) string {
	switch state {
	case "CompletedToday":
		return "[x]"
	case "QuotaFulfilled":
		return "[=]"
	case "Inactive":
		return "[-]"
	default:
		return "[ ]"
	}
}
