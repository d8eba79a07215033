package engine

import (
	"fmt"
	"time"

	"github.com/sandeepkv93/habitd/internal/model"
	"github.com/sandeepkv93/habitd/internal/period"
)

const (
	reasonInactive  = "inactive"
	reasonNoConfig  = "no recurrence config"
	reasonEvalError = "evaluation error"
)

// Evaluator decides whether an item is pending, satisfied for its period or
// inactive. It is a constructed instance so tests can pin the clock.
type Evaluator struct {
	now func() time.Time
}

func NewEvaluator(now func() time.Time) *Evaluator {
	if now == nil {
		now = time.Now
	}
	return &Evaluator{now: now}
}

// Request is one evaluation ask: an item of a routine record, judged at a
// reference instant. A zero Reference means "now".
type Request struct {
	Section   string
	Item      string
	Record    *model.RoutineRecord
	Reference time.Time
}

// Evaluate runs the cadence state machine. It never panics and never returns
// an error: validation failures yield Inactive, unexpected computation
// failures fail open to a visible Pending item so a bug can not silently hide
// actionable work.
func (e *Evaluator) Evaluate(req Request) (out model.ItemEvaluation) {
	defer func() {
		if r := recover(); r != nil {
			out = failOpen()
		}
	}()

	if req.Record == nil || req.Section == "" || req.Item == "" {
		return inactive(reasonNoConfig)
	}
	cfg, ok := req.Record.Config(req.Section, req.Item)
	if !ok {
		return inactive(reasonNoConfig)
	}
	if err := cfg.Validate(); err != nil {
		return failOpen()
	}
	if !cfg.Active {
		return inactive(reasonInactive)
	}

	loc := req.Record.Location()
	ref := req.Reference
	if ref.IsZero() {
		ref = e.now()
	}
	refDay := model.DayOf(ref, loc)
	today := model.DayOf(e.now(), loc)
	live := req.Record.LiveCompleted(req.Section, req.Item)

	win, err := period.Window(cfg, ref, loc)
	if err != nil {
		return failOpen()
	}
	days := CompletionDays(win, refDay, today, live, req.Record.HistoryFor(req.Section, req.Item))
	progress := Progress(len(days), cfg.RequiredCount)

	// Completed-today outranks everything but inactive: the user must always
	// be able to un-toggle.
	if live && refDay == today {
		return model.ItemEvaluation{
			ShouldShow: true,
			State:      model.ItemCompletedToday,
			Progress:   progress,
			Reason:     "completed today",
		}
	}

	if cfg.Cadence == model.CadenceDaily {
		// A daily quota never hides the item early in the day; only
		// completing it does.
		return model.ItemEvaluation{
			ShouldShow: true,
			State:      model.ItemPending,
			Progress:   progress,
			Reason:     fmt.Sprintf("pending (%d/%d)", progress.Completed, progress.Required),
		}
	}

	if progress.QuotaFulfilled {
		return model.ItemEvaluation{
			ShouldShow: false,
			State:      model.ItemQuotaFulfilled,
			Progress:   progress,
			Reason:     fmt.Sprintf("quota fulfilled (%d/%d)", progress.Completed, progress.Required),
		}
	}

	reason := fmt.Sprintf("pending (%d/%d)", progress.Completed, progress.Required)
	if !period.InActiveCycle(cfg, model.DayOf(cfg.CreatedAt, loc), refDay) {
		reason = fmt.Sprintf("pending (%d/%d), off-cycle", progress.Completed, progress.Required)
	}
	return model.ItemEvaluation{
		ShouldShow: true,
		State:      model.ItemPending,
		Progress:   progress,
		Reason:     reason,
	}
}

func inactive(reason string) model.ItemEvaluation {
	return model.ItemEvaluation{
		ShouldShow: false,
		State:      model.ItemInactive,
		Reason:     reason,
	}
}

func failOpen() model.ItemEvaluation {
	return model.ItemEvaluation{
		ShouldShow: true,
		State:      model.ItemPending,
		Reason:     reasonEvalError,
	}
}
