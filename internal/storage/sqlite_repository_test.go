package storage

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupRepo(t *testing.T) *SQLiteRepository {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "habitd-test.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := MigrateUp(db); err != nil {
		t.Fatalf("migrate up: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}
	return repo
}

func TestRoutineCreateGetAndListByDateRange(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	created := time.Date(2024, 1, 5, 7, 0, 0, 0, time.UTC)

	for _, date := range []string{"2024-01-03", "2024-01-04", "2024-01-05"} {
		if err := repo.CreateRoutine(ctx, Routine{
			ID:        "routine-" + date,
			Date:      date,
			Timezone:  "UTC",
			CreatedAt: created,
		}); err != nil {
			t.Fatalf("create routine %s: %v", date, err)
		}
	}

	got, err := repo.GetRoutineByDate(ctx, "2024-01-04")
	if err != nil {
		t.Fatalf("get by date: %v", err)
	}
	if got.ID != "routine-2024-01-04" || got.Timezone != "UTC" {
		t.Fatalf("unexpected routine: %#v", got)
	}

	listed, err := repo.ListRoutines(ctx, RoutineListFilter{FromDate: "2024-01-04", ToDate: "2024-01-05"})
	if err != nil {
		t.Fatalf("list routines: %v", err)
	}
	if len(listed) != 2 || listed[0].Date != "2024-01-05" {
		t.Fatalf("unexpected list: %#v", listed)
	}

	if _, err := repo.GetRoutine(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestItemStateUpsertIsIdempotentPerItem(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 5, 8, 0, 0, 0, time.UTC)

	if err := repo.CreateRoutine(ctx, Routine{ID: "r1", Date: "2024-01-05", Timezone: "UTC", CreatedAt: now}); err != nil {
		t.Fatalf("create routine: %v", err)
	}

	state := ItemState{RoutineID: "r1", SectionID: "fitness", ItemID: "gym", Completed: true, UpdatedAt: now}
	if err := repo.UpsertItemState(ctx, state); err != nil {
		t.Fatalf("first upsert: %v", err)
	}
	state.Completed = false
	state.UpdatedAt = now.Add(time.Minute)
	if err := repo.UpsertItemState(ctx, state); err != nil {
		t.Fatalf("second upsert: %v", err)
	}

	states, err := repo.ListItemStates(ctx, "r1")
	if err != nil {
		t.Fatalf("list states: %v", err)
	}
	if len(states) != 1 {
		t.Fatalf("upsert must not duplicate rows: %#v", states)
	}
	if states[0].Completed {
		t.Fatalf("second upsert must win: %#v", states[0])
	}
}

func TestItemConfigUpsertAndGet(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	created := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	cfg := ItemConfig{
		SectionID:     "fitness",
		ItemID:        "gym",
		Cadence:       "Weekly",
		RequiredCount: 3,
		Every:         1,
		Active:        true,
		CreatedAt:     created,
	}
	if err := repo.UpsertItemConfig(ctx, cfg); err != nil {
		t.Fatalf("upsert config: %v", err)
	}

	cfg.RequiredCount = 4
	if err := repo.UpsertItemConfig(ctx, cfg); err != nil {
		t.Fatalf("re-upsert config: %v", err)
	}

	got, err := repo.GetItemConfig(ctx, "fitness", "gym")
	if err != nil {
		t.Fatalf("get config: %v", err)
	}
	if got.RequiredCount != 4 || got.Cadence != "Weekly" || !got.Active {
		t.Fatalf("unexpected config: %#v", got)
	}
	if !got.CreatedAt.Equal(created) {
		t.Fatalf("upsert must preserve created_at: %v", got.CreatedAt)
	}

	if _, err := repo.GetItemConfig(ctx, "fitness", "absent"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	all, err := repo.ListItemConfigs(ctx)
	if err != nil {
		t.Fatalf("list configs: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("unexpected config list: %#v", all)
	}
}

func TestCompletionUpsertDeduplicatesPerDay(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 5, 9, 0, 0, 0, time.UTC)

	first := Completion{SectionID: "fitness", ItemID: "gym", Day: "2024-01-05", Completed: true, Source: "live", CreatedAt: now}
	if err := repo.UpsertCompletion(ctx, first); err != nil {
		t.Fatalf("first completion: %v", err)
	}
	dup := first
	dup.Source = "historical"
	if err := repo.UpsertCompletion(ctx, dup); err != nil {
		t.Fatalf("duplicate-day completion: %v", err)
	}

	listed, err := repo.ListCompletions(ctx, CompletionListFilter{SectionID: "fitness", ItemID: "gym"})
	if err != nil {
		t.Fatalf("list completions: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("one logical record per (item, day) expected: %#v", listed)
	}
	if listed[0].Source != "historical" {
		t.Fatalf("last writer must win on conflict: %#v", listed[0])
	}
}

func TestCompletionDayRangeFilter(t *testing.T) {
	repo := setupRepo(t)
	ctx := context.Background()
	now := time.Date(2024, 1, 10, 0, 0, 0, 0, time.UTC)

	for _, day := range []string{"2024-01-01", "2024-01-03", "2024-01-08"} {
		if err := repo.UpsertCompletion(ctx, Completion{
			SectionID: "fitness", ItemID: "gym", Day: day, Completed: true, Source: "historical", CreatedAt: now,
		}); err != nil {
			t.Fatalf("seed completion %s: %v", day, err)
		}
	}

	listed, err := repo.ListCompletions(ctx, CompletionListFilter{
		SectionID: "fitness", ItemID: "gym", FromDay: "2024-01-01", ToDay: "2024-01-07",
	})
	if err != nil {
		t.Fatalf("list completions: %v", err)
	}
	if len(listed) != 2 || listed[0].Day != "2024-01-01" || listed[1].Day != "2024-01-03" {
		t.Fatalf("unexpected range result: %#v", listed)
	}
}

func TestMigrateRoundTripCompatibility(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "migrate-roundtrip.db")
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	defer db.Close()

	if err := MigrateUp(db); err != nil {
		t.Fatalf("first migrate up failed: %v", err)
	}
	if err := MigrateDown(db); err != nil {
		t.Fatalf("migrate down failed: %v", err)
	}
	if err := MigrateUp(db); err != nil {
		t.Fatalf("second migrate up failed: %v", err)
	}

	repo, err := NewSQLiteRepository(db)
	if err != nil {
		t.Fatalf("new repo: %v", err)
	}

	now := time.Date(2024, 1, 5, 12, 0, 0, 0, time.UTC)
	if err := repo.CreateRoutine(t.Context(), Routine{ID: "rt-1", Date: "2024-01-05", Timezone: "UTC", CreatedAt: now}); err != nil {
		t.Fatalf("insert after roundtrip failed: %v", err)
	}
	got, err := repo.GetRoutine(t.Context(), "rt-1")
	if err != nil {
		t.Fatalf("get after roundtrip failed: %v", err)
	}
	if got.Date != "2024-01-05" {
		t.Fatalf("unexpected date after roundtrip: %q", got.Date)
	}
}
