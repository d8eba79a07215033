package model

type ItemState string

const (
	ItemPending        ItemState = "Pending"
	ItemCompletedToday ItemState = "CompletedToday"
	ItemQuotaFulfilled ItemState = "QuotaFulfilled"
	ItemInactive       ItemState = "Inactive"
)

func (s ItemState) IsValid() bool {
	switch s {
	case ItemPending, ItemCompletedToday, ItemQuotaFulfilled, ItemInactive:
		return true
	default:
		return false
	}
}

// PeriodWindow is one cadence period containing a reference day, inclusive on
// both ends.
type PeriodWindow struct {
	Start Day
	End   Day
	Label string
}

func (w PeriodWindow) Contains(d Day) bool {
	return !d.Before(w.Start) && !d.After(w.End)
}

type Progress struct {
	Completed      int
	Required       int
	Percentage     int
	QuotaFulfilled bool
}

// ItemEvaluation is the ephemeral verdict for one item: whether the UI should
// show it, which state it is in and how far along its quota is. Reason is a
// short human-readable explanation for the status line.
type ItemEvaluation struct {
	ShouldShow bool
	State      ItemState
	Progress   Progress
	Reason     string
}
