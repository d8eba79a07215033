package engine

import (
	"math"

	"github.com/sandeepkv93/habitd/internal/model"
)

// CompletionDays merges the live completed-today flag with historical per-day
// records into a deduplicated set of completion days inside the window. The
// live flag only counts when the reference day is today; a day counts once no
// matter how many sources report it.
func CompletionDays(win model.PeriodWindow, ref, today model.Day, live bool, history map[model.Day]bool) map[model.Day]struct{} {
	days := make(map[model.Day]struct{})
	if live && ref == today && win.Contains(ref) {
		days[ref] = struct{}{}
	}
	for day, completed := range history {
		if completed && win.Contains(day) {
			days[day] = struct{}{}
		}
	}
	return days
}

// Progress reduces a completion-day count to quota progress. Percentage is
// rounded and clamped to [0, 100].
func Progress(completed, required int) model.Progress {
	if required < 1 {
		required = 1
	}
	pct := int(math.Round(100 * float64(completed) / float64(required)))
	if pct < 0 {
		pct = 0
	}
	if pct > 100 {
		pct = 100
	}
	return model.Progress{
		Completed:      completed,
		Required:       required,
		Percentage:     pct,
		QuotaFulfilled: completed >= required,
	}
}
