package storage

import "time"

type Routine struct {
	ID        string
	Date      string
	Timezone  string
	CreatedAt time.Time
}

type ItemState struct {
	RoutineID string
	SectionID string
	ItemID    string
	Completed bool
	UpdatedAt time.Time
}

type ItemConfig struct {
	SectionID     string
	ItemID        string
	Cadence       string
	RequiredCount int
	PeriodUnit    string
	Every         int
	Active        bool
	CreatedAt     time.Time
}

type Completion struct {
	SectionID string
	ItemID    string
	Day       string
	Completed bool
	Source    string
	CreatedAt time.Time
}

type RoutineListFilter struct {
	FromDate string
	ToDate   string
	Limit    int
	Offset   int
}

type CompletionListFilter struct {
	SectionID string
	ItemID    string
	FromDay   string
	ToDay     string
	Limit     int
}
