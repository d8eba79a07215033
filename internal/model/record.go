package model

import (
	"errors"
	"strings"
	"time"
)

var ErrMissingItem = errors.New("model: section and item id are required")

type CompletionSource string

const (
	SourceLive       CompletionSource = "live"
	SourceHistorical CompletionSource = "historical"
)

// CompletionRecord is one logical "item was completed on that day" fact. At
// most one record exists per (item, day); duplicate reports collapse.
type CompletionRecord struct {
	ItemID    string
	SectionID string
	Day       Day
	Completed bool
	Source    CompletionSource
}

// RoutineRecord is the read contract supplied by the persistence collaborator:
// one routine document with live per-item flags, per-item recurrence configs
// and an optional per-day completion history.
type RoutineRecord struct {
	ID       string
	Date     Day
	Timezone string

	// Sections maps sectionID -> itemID -> live completed flag.
	Sections map[string]map[string]bool

	// Configs maps sectionID -> itemID -> recurrence config.
	Configs map[string]map[string]RecurrenceConfig

	// History maps sectionID -> itemID -> day -> completed.
	History map[string]map[string]map[Day]bool
}

func (r *RoutineRecord) Validate() error {
	if r == nil {
		return errors.New("model: nil routine record")
	}
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("model: routine record id is required")
	}
	if r.Date.IsZero() {
		return errors.New("model: routine record date is required")
	}
	return nil
}

// Location resolves the record's IANA timezone, falling back to UTC when the
// zone is absent or unknown.
func (r *RoutineRecord) Location() *time.Location {
	if r == nil || strings.TrimSpace(r.Timezone) == "" {
		return time.UTC
	}
	loc, err := time.LoadLocation(r.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

func (r *RoutineRecord) LiveCompleted(section, item string) bool {
	if r == nil {
		return false
	}
	return r.Sections[section][item]
}

// Config returns the recurrence config for an item, reporting whether one
// exists.
func (r *RoutineRecord) Config(section, item string) (RecurrenceConfig, bool) {
	if r == nil {
		return RecurrenceConfig{}, false
	}
	cfg, ok := r.Configs[section][item]
	return cfg, ok
}

// SetLiveCompleted flips the live flag, allocating nested maps as needed.
func (r *RoutineRecord) SetLiveCompleted(section, item string, completed bool) {
	if r.Sections == nil {
		r.Sections = make(map[string]map[string]bool)
	}
	if r.Sections[section] == nil {
		r.Sections[section] = make(map[string]bool)
	}
	r.Sections[section][item] = completed
}

// SetConfig stores the config for an item, allocating nested maps as needed.
func (r *RoutineRecord) SetConfig(section, item string, cfg RecurrenceConfig) {
	if r.Configs == nil {
		r.Configs = make(map[string]map[string]RecurrenceConfig)
	}
	if r.Configs[section] == nil {
		r.Configs[section] = make(map[string]RecurrenceConfig)
	}
	r.Configs[section][item] = cfg
}

// HistoryFor returns the per-day completion history for an item; the returned
// map is the record's own and must not be mutated.
func (r *RoutineRecord) HistoryFor(section, item string) map[Day]bool {
	if r == nil {
		return nil
	}
	return r.History[section][item]
}

// Clone deep-copies the record structurally. Merging layers clone before
// overlaying so the incoming snapshot is never mutated.
func (r *RoutineRecord) Clone() *RoutineRecord {
	if r == nil {
		return nil
	}
	out := &RoutineRecord{
		ID:       r.ID,
		Date:     r.Date,
		Timezone: r.Timezone,
	}
	if r.Sections != nil {
		out.Sections = make(map[string]map[string]bool, len(r.Sections))
		for sec, items := range r.Sections {
			inner := make(map[string]bool, len(items))
			for id, v := range items {
				inner[id] = v
			}
			out.Sections[sec] = inner
		}
	}
	if r.Configs != nil {
		out.Configs = make(map[string]map[string]RecurrenceConfig, len(r.Configs))
		for sec, items := range r.Configs {
			inner := make(map[string]RecurrenceConfig, len(items))
			for id, v := range items {
				inner[id] = v
			}
			out.Configs[sec] = inner
		}
	}
	if r.History != nil {
		out.History = make(map[string]map[string]map[Day]bool, len(r.History))
		for sec, items := range r.History {
			innerItems := make(map[string]map[Day]bool, len(items))
			for id, days := range items {
				innerDays := make(map[Day]bool, len(days))
				for day, v := range days {
					innerDays[day] = v
				}
				innerItems[id] = innerDays
			}
			out.History[sec] = innerItems
		}
	}
	return out
}

// EachItem visits every item that has either a live flag or a config,
// deduplicated, in no particular order.
func (r *RoutineRecord) EachItem(fn func(section, item string)) {
	if r == nil {
		return
	}
	seen := make(map[[2]string]bool)
	for sec, items := range r.Sections {
		for id := range items {
			key := [2]string{sec, id}
			if !seen[key] {
				seen[key] = true
				fn(sec, id)
			}
		}
	}
	for sec, items := range r.Configs {
		for id := range items {
			key := [2]string{sec, id}
			if !seen[key] {
				seen[key] = true
				fn(sec, id)
			}
		}
	}
}
