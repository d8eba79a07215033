package model

import (
	"errors"
	"fmt"
	"time"
)

var (
	ErrInvalidCadence       = errors.New("model: invalid cadence type")
	ErrInvalidPeriodUnit    = errors.New("model: invalid period unit")
	ErrInvalidRequiredCount = errors.New("model: required count must be at least 1")
	ErrInvalidEvery         = errors.New("model: every must be at least 1")
)

type CadenceType string

const (
	CadenceDaily   CadenceType = "Daily"
	CadenceWeekly  CadenceType = "Weekly"
	CadenceMonthly CadenceType = "Monthly"
	CadenceCustom  CadenceType = "Custom"
)

func (c CadenceType) IsValid() bool {
	switch c {
	case CadenceDaily, CadenceWeekly, CadenceMonthly, CadenceCustom:
		return true
	default:
		return false
	}
}

type PeriodUnit string

const (
	UnitDay   PeriodUnit = "day"
	UnitWeek  PeriodUnit = "week"
	UnitMonth PeriodUnit = "month"
)

func (u PeriodUnit) IsValid() bool {
	switch u {
	case UnitDay, UnitWeek, UnitMonth:
		return true
	default:
		return false
	}
}

// RecurrenceConfig describes how often an item must be completed. Every is a
// cycle multiplier for Custom cadences ("every 2 weeks"); it never widens the
// counting window, which always spans exactly one base unit.
type RecurrenceConfig struct {
	Cadence       CadenceType
	RequiredCount int
	PeriodUnit    PeriodUnit
	Every         int
	Active        bool
	CreatedAt     time.Time
}

// DefaultConfig is what an item gets the first time it is configured.
func DefaultConfig(now time.Time) RecurrenceConfig {
	return RecurrenceConfig{
		Cadence:       CadenceDaily,
		RequiredCount: 1,
		Every:         1,
		Active:        true,
		CreatedAt:     now,
	}
}

func (c RecurrenceConfig) Validate() error {
	if !c.Cadence.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCadence, c.Cadence)
	}
	if c.RequiredCount < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidRequiredCount, c.RequiredCount)
	}
	if c.Every < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidEvery, c.Every)
	}
	if c.Cadence == CadenceCustom && c.PeriodUnit != "" && !c.PeriodUnit.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPeriodUnit, c.PeriodUnit)
	}
	return nil
}

// BaseUnit resolves the unit the counting window spans. Custom falls back to
// day when no unit was configured.
func (c RecurrenceConfig) BaseUnit() PeriodUnit {
	switch c.Cadence {
	case CadenceDaily:
		return UnitDay
	case CadenceWeekly:
		return UnitWeek
	case CadenceMonthly:
		return UnitMonth
	default:
		if c.PeriodUnit.IsValid() {
			return c.PeriodUnit
		}
		return UnitDay
	}
}

// ConfigPatch is the whitelisted subset of RecurrenceConfig a pending local
// change may carry. Nil fields are left untouched on apply.
type ConfigPatch struct {
	Cadence       *CadenceType `json:"cadence,omitempty"`
	RequiredCount *int         `json:"required_count,omitempty"`
	PeriodUnit    *PeriodUnit  `json:"period_unit,omitempty"`
	Every         *int         `json:"every,omitempty"`
}

func (p ConfigPatch) IsZero() bool {
	return p.Cadence == nil && p.RequiredCount == nil && p.PeriodUnit == nil && p.Every == nil
}

// Apply overlays the patch on a config. Fields outside the whitelist always
// come from the base config.
func (p ConfigPatch) Apply(base RecurrenceConfig) RecurrenceConfig {
	out := base
	if p.Cadence != nil {
		out.Cadence = *p.Cadence
	}
	if p.RequiredCount != nil {
		out.RequiredCount = *p.RequiredCount
	}
	if p.PeriodUnit != nil {
		out.PeriodUnit = *p.PeriodUnit
	}
	if p.Every != nil {
		out.Every = *p.Every
	}
	return out
}

// Merge overlays another patch on this one: fields the overlay sets win,
// fields it leaves nil are carried from the receiver. Successive partial
// edits to the same item accumulate instead of replacing each other.
func (p ConfigPatch) Merge(overlay ConfigPatch) ConfigPatch {
	out := p
	if overlay.Cadence != nil {
		out.Cadence = overlay.Cadence
	}
	if overlay.RequiredCount != nil {
		out.RequiredCount = overlay.RequiredCount
	}
	if overlay.PeriodUnit != nil {
		out.PeriodUnit = overlay.PeriodUnit
	}
	if overlay.Every != nil {
		out.Every = overlay.Every
	}
	return out
}

func (p ConfigPatch) Validate() error {
	if p.Cadence != nil && !p.Cadence.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidCadence, *p.Cadence)
	}
	if p.RequiredCount != nil && *p.RequiredCount < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidRequiredCount, *p.RequiredCount)
	}
	if p.PeriodUnit != nil && !p.PeriodUnit.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidPeriodUnit, *p.PeriodUnit)
	}
	if p.Every != nil && *p.Every < 1 {
		return fmt.Errorf("%w: %d", ErrInvalidEvery, *p.Every)
	}
	return nil
}

// PendingLocalChange is a user edit registered locally but not yet confirmed
// persisted remotely.
type PendingLocalChange struct {
	SectionID    string      `json:"section_id"`
	ItemID       string      `json:"item_id"`
	Fields       ConfigPatch `json:"fields"`
	RegisteredAt time.Time   `json:"registered_at"`
}
