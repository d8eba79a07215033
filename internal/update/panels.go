package update

import (
	"github.com/sandeepkv93/habitd/internal/views"
)

func (m Model) renderChecklistView() string {
	date := ""
	if m.svc != nil {
		if rec := m.svc.Record(); rec != nil {
			date = rec.Date.String()
		}
	}
	items := make([]views.ChecklistItemData, 0, len(m.Entries))
	for i, entry := range m.Entries {
		items = append(items, views.ChecklistItemData{
			Section:     entry.Section,
			Item:        entry.Item,
			State:       string(entry.Evaluation.State),
			Reason:      entry.Evaluation.Reason,
			Completed:   entry.Evaluation.Progress.Completed,
			Required:    entry.Evaluation.Progress.Required,
			Percentage:  entry.Evaluation.Progress.Percentage,
			ShouldShow:  entry.Evaluation.ShouldShow,
			Highlighted: i == m.Cursor,
		})
	}
	return views.RenderChecklistPanel(views.ChecklistPanelData{
		Date:   date,
		Filter: string(m.Filter),
		Items:  items,
	})
}

func (m Model) renderDetailPane() string {
	entry, ok := m.currentEntry()
	if !ok {
		return views.RenderItemDetail(views.ItemDetailData{})
	}
	data := views.ItemDetailData{
		Section:      entry.Section,
		Item:         entry.Item,
		State:        string(entry.Evaluation.State),
		Reason:       entry.Evaluation.Reason,
		Percentage:   entry.Evaluation.Progress.Percentage,
		ProgressView: m.quotaProgress.ViewAs(float64(entry.Evaluation.Progress.Percentage) / 100),
	}
	rec := m.svc.Record()
	if rec != nil {
		if cfg, ok := rec.Config(entry.Section, entry.Item); ok {
			data.Cadence = string(cfg.Cadence)
			data.Required = cfg.RequiredCount
			data.Every = cfg.Every
		}
		if counter, ok := m.svc.Counter(rec.ID, entry.Section, entry.Item); ok {
			data.WindowStart = counter.Window.Start.String()
			data.WindowEnd = counter.Window.End.String()
			data.WindowLabel = counter.Window.Label
		}
	}
	return views.RenderItemDetail(data)
}

func (m Model) renderStatsView() string {
	data := views.StatsPanelData{
		ItemsShown: len(m.Entries),
		ItemsTotal: len(m.all),
	}
	if m.svc != nil {
		stats := m.svc.CacheStats()
		data.CacheHits = stats.Hits
		data.CacheMisses = stats.Misses
		data.CacheInvalidations = stats.Invalidations
		data.PendingItems = m.svc.PendingCount()
	}
	return views.RenderStatsPanel(data)
}

func (m Model) renderCommandPalette() string {
	return views.RenderCommandPalette(m.Palette.Active, m.Palette.Input)
}

func (m Model) renderCadenceEditorIfVisible() string {
	return views.RenderCadenceEditor(views.CadenceEditorData{
		Active:    m.cadenceEditor.Active,
		Section:   m.cadenceEditor.Section,
		Item:      m.cadenceEditor.Item,
		Cadence:   m.cadenceEditor.Cadence,
		CountText: m.cadenceEditor.CountText,
		ErrorText: m.cadenceEditor.Err,
	})
}
