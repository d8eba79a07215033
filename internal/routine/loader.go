package routine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sandeepkv93/habitd/internal/model"
	"github.com/sandeepkv93/habitd/internal/storage"
)

// EnsureRoutine returns the stored routine for a calendar day, creating it
// when the day has no record yet.
func EnsureRoutine(ctx context.Context, repo storage.Repository, day model.Day, timezone string, now time.Time) (storage.Routine, error) {
	existing, err := repo.GetRoutineByDate(ctx, day.String())
	if err == nil {
		return existing, nil
	}
	if !errors.Is(err, storage.ErrNotFound) {
		return storage.Routine{}, fmt.Errorf("routine: lookup routine: %w", err)
	}
	created := storage.Routine{
		ID:        uuid.NewString(),
		Date:      day.String(),
		Timezone:  timezone,
		CreatedAt: now,
	}
	if err := repo.CreateRoutine(ctx, created); err != nil {
		return storage.Routine{}, fmt.Errorf("routine: create routine: %w", err)
	}
	return created, nil
}

// BuildRecord assembles the engine's read contract for one stored routine:
// live item flags, the global config set and the full per-day completion
// history.
func BuildRecord(ctx context.Context, repo storage.Repository, routine storage.Routine) (*model.RoutineRecord, error) {
	date, err := model.ParseDay(routine.Date)
	if err != nil {
		return nil, fmt.Errorf("routine: routine %s: %w", routine.ID, err)
	}
	rec := &model.RoutineRecord{
		ID:       routine.ID,
		Date:     date,
		Timezone: routine.Timezone,
	}

	states, err := repo.ListItemStates(ctx, routine.ID)
	if err != nil {
		return nil, fmt.Errorf("routine: list item states: %w", err)
	}
	for _, st := range states {
		rec.SetLiveCompleted(st.SectionID, st.ItemID, st.Completed)
	}

	configs, err := repo.ListItemConfigs(ctx)
	if err != nil {
		return nil, fmt.Errorf("routine: list item configs: %w", err)
	}
	for _, cfg := range configs {
		rec.SetConfig(cfg.SectionID, cfg.ItemID, configFromEntity(cfg))
	}

	completions, err := repo.ListCompletions(ctx, storage.CompletionListFilter{})
	if err != nil {
		return nil, fmt.Errorf("routine: list completions: %w", err)
	}
	for _, c := range completions {
		day, parseErr := model.ParseDay(c.Day)
		if parseErr != nil {
			continue
		}
		if rec.History == nil {
			rec.History = make(map[string]map[string]map[model.Day]bool)
		}
		if rec.History[c.SectionID] == nil {
			rec.History[c.SectionID] = make(map[string]map[model.Day]bool)
		}
		if rec.History[c.SectionID][c.ItemID] == nil {
			rec.History[c.SectionID][c.ItemID] = make(map[model.Day]bool)
		}
		rec.History[c.SectionID][c.ItemID][day] = c.Completed
	}
	return rec, nil
}

// LoadRange builds records for every stored routine in a day range,
// newest first, for progress reconciliation across history.
func LoadRange(ctx context.Context, repo storage.Repository, from, to model.Day) ([]*model.RoutineRecord, error) {
	routines, err := repo.ListRoutines(ctx, storage.RoutineListFilter{
		FromDate: from.String(),
		ToDate:   to.String(),
	})
	if err != nil {
		return nil, fmt.Errorf("routine: list routines: %w", err)
	}
	out := make([]*model.RoutineRecord, 0, len(routines))
	for _, rt := range routines {
		rec, buildErr := BuildRecord(ctx, repo, rt)
		if buildErr != nil {
			return nil, buildErr
		}
		out = append(out, rec)
	}
	return out, nil
}

// StorePersister adapts the storage repository to the RemotePersister
// contract. A toggled state also writes the item's completion row for the
// routine's own day so history survives the live flag.
type StorePersister struct {
	repo storage.Repository
	now  func() time.Time
}

func NewStorePersister(repo storage.Repository, now func() time.Time) *StorePersister {
	if now == nil {
		now = time.Now
	}
	return &StorePersister{repo: repo, now: now}
}

func (p *StorePersister) SaveItemState(ctx context.Context, routineID, sectionID, itemID string, completed bool) error {
	routine, err := p.repo.GetRoutine(ctx, routineID)
	if err != nil {
		return err
	}
	if err := p.repo.UpsertItemState(ctx, storage.ItemState{
		RoutineID: routineID,
		SectionID: sectionID,
		ItemID:    itemID,
		Completed: completed,
		UpdatedAt: p.now(),
	}); err != nil {
		return err
	}
	return p.repo.UpsertCompletion(ctx, storage.Completion{
		SectionID: sectionID,
		ItemID:    itemID,
		Day:       routine.Date,
		Completed: completed,
		Source:    string(model.SourceLive),
		CreatedAt: p.now(),
	})
}

func (p *StorePersister) SaveItemConfig(ctx context.Context, sectionID, itemID string, cfg model.RecurrenceConfig) error {
	return p.repo.UpsertItemConfig(ctx, configToEntity(sectionID, itemID, cfg))
}

func configFromEntity(in storage.ItemConfig) model.RecurrenceConfig {
	every := in.Every
	if every < 1 {
		every = 1
	}
	return model.RecurrenceConfig{
		Cadence:       model.CadenceType(in.Cadence),
		RequiredCount: in.RequiredCount,
		PeriodUnit:    model.PeriodUnit(in.PeriodUnit),
		Every:         every,
		Active:        in.Active,
		CreatedAt:     in.CreatedAt,
	}
}

func configToEntity(sectionID, itemID string, cfg model.RecurrenceConfig) storage.ItemConfig {
	return storage.ItemConfig{
		SectionID:     sectionID,
		ItemID:        itemID,
		Cadence:       string(cfg.Cadence),
		RequiredCount: cfg.RequiredCount,
		PeriodUnit:    string(cfg.PeriodUnit),
		Every:         cfg.Every,
		Active:        cfg.Active,
		CreatedAt:     cfg.CreatedAt,
	}
}
