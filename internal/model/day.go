package model

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidDay = errors.New("model: invalid calendar day")

const dayLayout = "2006-01-02"

// Day is a civil calendar day, already resolved in some timezone. It is
// comparable, so it can key maps and sets; all period math compares days,
// never raw timestamps, which keeps DST transitions out of the picture.
type Day struct {
	Year  int
	Month time.Month
	Day   int
}

func DayOf(t time.Time, loc *time.Location) Day {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return Day{Year: y, Month: m, Day: d}
}

func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return Day{}, fmt.Errorf("%w: %q", ErrInvalidDay, s)
	}
	y, m, d := t.Date()
	return Day{Year: y, Month: m, Day: d}, nil
}

func (d Day) IsZero() bool {
	return d == Day{}
}

// Time returns midnight of the day in the given location.
func (d Day) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

func (d Day) String() string {
	return d.Time(time.UTC).Format(dayLayout)
}

func (d Day) Weekday() time.Weekday {
	return d.Time(time.UTC).Weekday()
}

func (d Day) AddDays(n int) Day {
	return DayOf(d.Time(time.UTC).AddDate(0, 0, n), time.UTC)
}

func (d Day) Before(other Day) bool {
	if d.Year != other.Year {
		return d.Year < other.Year
	}
	if d.Month != other.Month {
		return d.Month < other.Month
	}
	return d.Day < other.Day
}

func (d Day) After(other Day) bool {
	return other.Before(d)
}

// DaysBetween returns the number of whole days from a to b, negative when b
// precedes a.
func DaysBetween(a, b Day) int {
	return int(b.Time(time.UTC).Sub(a.Time(time.UTC)) / (24 * time.Hour))
}
