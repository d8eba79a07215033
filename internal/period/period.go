package period

import (
	"errors"
	"fmt"
	"time"

	"github.com/sandeepkv93/habitd/internal/model"
)

var ErrUnknownUnit = errors.New("period: unknown period unit")

// Window computes the single cadence period containing ref, resolved in loc.
// The window always spans exactly one base unit; a Custom cadence's Every
// multiplier is deliberately not folded into the bounds (see CycleIndex).
func Window(cfg model.RecurrenceConfig, ref time.Time, loc *time.Location) (model.PeriodWindow, error) {
	if loc == nil {
		loc = time.UTC
	}
	day := model.DayOf(ref, loc)
	return windowFor(cfg.BaseUnit(), day)
}

// WindowAt is Window anchored to an already-resolved calendar day. The
// progress reconciler uses it to anchor historical counters to the record's
// own date instead of the current moment.
func WindowAt(cfg model.RecurrenceConfig, day model.Day) (model.PeriodWindow, error) {
	return windowFor(cfg.BaseUnit(), day)
}

func windowFor(unit model.PeriodUnit, day model.Day) (model.PeriodWindow, error) {
	switch unit {
	case model.UnitDay:
		return model.PeriodWindow{Start: day, End: day, Label: day.String()}, nil
	case model.UnitWeek:
		start := weekStart(day)
		end := start.AddDays(6)
		return model.PeriodWindow{Start: start, End: end, Label: "week of " + start.String()}, nil
	case model.UnitMonth:
		start := model.Day{Year: day.Year, Month: day.Month, Day: 1}
		end := start.AddDays(daysInMonth(day.Year, day.Month) - 1)
		label := fmt.Sprintf("%04d-%02d", day.Year, int(day.Month))
		return model.PeriodWindow{Start: start, End: end, Label: label}, nil
	default:
		return model.PeriodWindow{}, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
}

// weekStart walks back to the Monday of the week containing day.
func weekStart(day model.Day) model.Day {
	offset := int(day.Weekday()-time.Monday+7) % 7
	return day.AddDays(-offset)
}

func daysInMonth(year int, month time.Month) int {
	first := time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
	return first.AddDate(0, 1, -1).Day()
}

// CycleIndex numbers base-unit periods from the one containing anchor: the
// anchor's own period is cycle 0, the next is 1, and so on (negative before
// the anchor). "Every N units" semantics layer on top of the base-unit
// window by testing index % N.
func CycleIndex(anchor, ref model.Day, unit model.PeriodUnit) (int, error) {
	switch unit {
	case model.UnitDay:
		return model.DaysBetween(anchor, ref), nil
	case model.UnitWeek:
		return floorDiv(model.DaysBetween(weekStart(anchor), ref), 7), nil
	case model.UnitMonth:
		return (ref.Year-anchor.Year)*12 + int(ref.Month) - int(anchor.Month), nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownUnit, unit)
	}
}

// InActiveCycle reports whether ref falls in an "on" cycle of an every-N
// cadence anchored at the item's creation day.
func InActiveCycle(cfg model.RecurrenceConfig, anchor, ref model.Day) bool {
	if cfg.Every <= 1 {
		return true
	}
	idx, err := CycleIndex(anchor, ref, cfg.BaseUnit())
	if err != nil {
		return true
	}
	if idx < 0 {
		idx = -idx
	}
	return idx%cfg.Every == 0
}

func floorDiv(a, b int) int {
	q := a / b
	if a%b != 0 && (a < 0) != (b < 0) {
		q--
	}
	return q
}
