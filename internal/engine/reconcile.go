package engine

import (
	"github.com/sandeepkv93/habitd/internal/model"
	"github.com/sandeepkv93/habitd/internal/period"
)

// CounterKey identifies one reconciled progress counter: an item of one
// routine record.
type CounterKey struct {
	RecordID string
	Section  string
	Item     string
}

// Counter is a canonical progress value recomputed from the full record set,
// stored with the window it was computed against so a later lookup can
// cheaply test whether it is still inside its period.
type Counter struct {
	Completed int
	Required  int
	Window    model.PeriodWindow
}

// InWindow reports whether the counter still covers the given day.
func (c Counter) InWindow(day model.Day) bool {
	return c.Window.Contains(day)
}

// ProgressSet holds the reconciled counters for a batch of loaded records.
type ProgressSet struct {
	counters map[CounterKey]Counter
}

func (s *ProgressSet) Counter(recordID, section, item string) (Counter, bool) {
	if s == nil {
		return Counter{}, false
	}
	c, ok := s.counters[CounterKey{RecordID: recordID, Section: section, Item: item}]
	return c, ok
}

func (s *ProgressSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.counters)
}

// ReconcileProgress recomputes every item's canonical progress counter from
// the full record set instead of trusting stored values. Each counter is
// anchored to its own record's date: a historical record's period is relative
// to when it occurred, not to the current moment. Completions are gathered
// across all records (live flags dated by their record, plus history) and
// deduplicated per calendar day before counting.
func ReconcileProgress(records []*model.RoutineRecord) *ProgressSet {
	byItem := gatherCompletionDays(records)

	out := &ProgressSet{counters: make(map[CounterKey]Counter)}
	for _, rec := range records {
		if rec == nil || rec.Date.IsZero() {
			continue
		}
		for section, items := range rec.Configs {
			for item, cfg := range items {
				if cfg.Validate() != nil {
					continue
				}
				win, err := period.WindowAt(cfg, rec.Date)
				if err != nil {
					continue
				}
				completed := 0
				for day := range byItem[[2]string{section, item}] {
					if win.Contains(day) {
						completed++
					}
				}
				if completed > cfg.RequiredCount {
					completed = cfg.RequiredCount
				}
				out.counters[CounterKey{RecordID: rec.ID, Section: section, Item: item}] = Counter{
					Completed: completed,
					Required:  cfg.RequiredCount,
					Window:    win,
				}
			}
		}
	}
	return out
}

// gatherCompletionDays builds the global per-item set of completed days. A
// record's live flag contributes its own date; historical maps contribute
// their keyed days. Duplicate reports of the same day collapse.
func gatherCompletionDays(records []*model.RoutineRecord) map[[2]string]map[model.Day]struct{} {
	out := make(map[[2]string]map[model.Day]struct{})
	add := func(section, item string, day model.Day) {
		key := [2]string{section, item}
		if out[key] == nil {
			out[key] = make(map[model.Day]struct{})
		}
		out[key][day] = struct{}{}
	}
	for _, rec := range records {
		if rec == nil || rec.Date.IsZero() {
			continue
		}
		for section, items := range rec.Sections {
			for item, completed := range items {
				if completed {
					add(section, item, rec.Date)
				}
			}
		}
		for section, items := range rec.History {
			for item, days := range items {
				for day, completed := range days {
					if completed {
						add(section, item, day)
					}
				}
			}
		}
	}
	return out
}
