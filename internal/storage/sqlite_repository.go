package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const sqliteTimeLayout = time.RFC3339Nano

type SQLiteRepository struct {
	db *sql.DB
}

func NewSQLiteRepository(db *sql.DB) (*SQLiteRepository, error) {
	if db == nil {
		return nil, errors.New("storage: nil db")
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	return &SQLiteRepository{db: db}, nil
}

func OpenSQLite(path string) (*SQLiteRepository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	repo, err := NewSQLiteRepository(db)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

func (r *SQLiteRepository) Close() error {
	return r.db.Close()
}

func (r *SQLiteRepository) DB() *sql.DB {
	return r.db
}

func (r *SQLiteRepository) CreateRoutine(ctx context.Context, in Routine) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO routines (id, date, timezone, created_at)
		VALUES (?, ?, ?, ?)`,
		in.ID, in.Date, in.Timezone, mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetRoutine(ctx context.Context, id string) (Routine, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, timezone, created_at FROM routines WHERE id = ?`, id)
	out, err := scanRoutine(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Routine{}, ErrNotFound
		}
		return Routine{}, err
	}
	return out, nil
}

func (r *SQLiteRepository) GetRoutineByDate(ctx context.Context, date string) (Routine, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT id, date, timezone, created_at FROM routines WHERE date = ?`, date)
	out, err := scanRoutine(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Routine{}, ErrNotFound
		}
		return Routine{}, err
	}
	return out, nil
}

func (r *SQLiteRepository) ListRoutines(ctx context.Context, filter RoutineListFilter) ([]Routine, error) {
	query := `SELECT id, date, timezone, created_at FROM routines`
	args := make([]any, 0, 4)
	clauses := make([]string, 0, 2)
	if filter.FromDate != "" {
		clauses = append(clauses, `date >= ?`)
		args = append(args, filter.FromDate)
	}
	if filter.ToDate != "" {
		clauses = append(clauses, `date <= ?`)
		args = append(args, filter.ToDate)
	}
	query += whereClause(clauses)
	query += ` ORDER BY date DESC`
	query += applyPagination(&args, filter.Limit, filter.Offset)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Routine, 0)
	for rows.Next() {
		item, scanErr := scanRoutine(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertItemState(ctx context.Context, in ItemState) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO item_states (routine_id, section_id, item_id, completed, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (routine_id, section_id, item_id)
		DO UPDATE SET completed = excluded.completed, updated_at = excluded.updated_at`,
		in.RoutineID, in.SectionID, in.ItemID, boolInt(in.Completed), mustTime(in.UpdatedAt),
	)
	return err
}

func (r *SQLiteRepository) ListItemStates(ctx context.Context, routineID string) ([]ItemState, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT routine_id, section_id, item_id, completed, updated_at
		FROM item_states WHERE routine_id = ?
		ORDER BY section_id, item_id`, routineID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ItemState, 0)
	for rows.Next() {
		item, scanErr := scanItemState(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertItemConfig(ctx context.Context, in ItemConfig) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO item_configs (section_id, item_id, cadence, required_count, period_unit, every, active, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (section_id, item_id)
		DO UPDATE SET cadence = excluded.cadence, required_count = excluded.required_count,
			period_unit = excluded.period_unit, every = excluded.every, active = excluded.active`,
		in.SectionID, in.ItemID, in.Cadence, in.RequiredCount, in.PeriodUnit, in.Every,
		boolInt(in.Active), mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) GetItemConfig(ctx context.Context, sectionID, itemID string) (ItemConfig, error) {
	row := r.db.QueryRowContext(ctx, `
		SELECT section_id, item_id, cadence, required_count, period_unit, every, active, created_at
		FROM item_configs WHERE section_id = ? AND item_id = ?`, sectionID, itemID)
	out, err := scanItemConfig(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ItemConfig{}, ErrNotFound
		}
		return ItemConfig{}, err
	}
	return out, nil
}

func (r *SQLiteRepository) ListItemConfigs(ctx context.Context) ([]ItemConfig, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT section_id, item_id, cadence, required_count, period_unit, every, active, created_at
		FROM item_configs ORDER BY section_id, item_id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]ItemConfig, 0)
	for rows.Next() {
		item, scanErr := scanItemConfig(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

func (r *SQLiteRepository) UpsertCompletion(ctx context.Context, in Completion) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO completions (section_id, item_id, day, completed, source, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (section_id, item_id, day)
		DO UPDATE SET completed = excluded.completed, source = excluded.source`,
		in.SectionID, in.ItemID, in.Day, boolInt(in.Completed), in.Source, mustTime(in.CreatedAt),
	)
	return err
}

func (r *SQLiteRepository) ListCompletions(ctx context.Context, filter CompletionListFilter) ([]Completion, error) {
	query := `SELECT section_id, item_id, day, completed, source, created_at FROM completions`
	args := make([]any, 0, 5)
	clauses := make([]string, 0, 4)
	if filter.SectionID != "" {
		clauses = append(clauses, `section_id = ?`)
		args = append(args, filter.SectionID)
	}
	if filter.ItemID != "" {
		clauses = append(clauses, `item_id = ?`)
		args = append(args, filter.ItemID)
	}
	if filter.FromDay != "" {
		clauses = append(clauses, `day >= ?`)
		args = append(args, filter.FromDay)
	}
	if filter.ToDay != "" {
		clauses = append(clauses, `day <= ?`)
		args = append(args, filter.ToDay)
	}
	query += whereClause(clauses)
	query += ` ORDER BY day ASC`
	query += applyPagination(&args, filter.Limit, 0)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Completion, 0)
	for rows.Next() {
		item, scanErr := scanCompletion(rows)
		if scanErr != nil {
			return nil, scanErr
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRoutine(s scanner) (Routine, error) {
	var out Routine
	var created string
	if err := s.Scan(&out.ID, &out.Date, &out.Timezone, &created); err != nil {
		return Routine{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Routine{}, err
	}
	out.CreatedAt = createdAt
	return out, nil
}

func scanItemState(s scanner) (ItemState, error) {
	var out ItemState
	var completed int
	var updated string
	if err := s.Scan(&out.RoutineID, &out.SectionID, &out.ItemID, &completed, &updated); err != nil {
		return ItemState{}, err
	}
	updatedAt, err := parseRequiredTime(updated)
	if err != nil {
		return ItemState{}, err
	}
	out.Completed = completed == 1
	out.UpdatedAt = updatedAt
	return out, nil
}

func scanItemConfig(s scanner) (ItemConfig, error) {
	var out ItemConfig
	var active int
	var created string
	if err := s.Scan(&out.SectionID, &out.ItemID, &out.Cadence, &out.RequiredCount, &out.PeriodUnit, &out.Every, &active, &created); err != nil {
		return ItemConfig{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return ItemConfig{}, err
	}
	out.Active = active == 1
	out.CreatedAt = createdAt
	return out, nil
}

func scanCompletion(s scanner) (Completion, error) {
	var out Completion
	var completed int
	var created string
	if err := s.Scan(&out.SectionID, &out.ItemID, &out.Day, &completed, &out.Source, &created); err != nil {
		return Completion{}, err
	}
	createdAt, err := parseRequiredTime(created)
	if err != nil {
		return Completion{}, err
	}
	out.Completed = completed == 1
	out.CreatedAt = createdAt
	return out, nil
}

func mustTime(v time.Time) string {
	return v.UTC().Format(sqliteTimeLayout)
}

func parseRequiredTime(v string) (time.Time, error) {
	return time.Parse(sqliteTimeLayout, v)
}

func boolInt(v bool) int {
	if v {
		return 1
	}
	return 0
}

func whereClause(clauses []string) string {
	if len(clauses) == 0 {
		return ""
	}
	out := ` WHERE ` + clauses[0]
	for _, c := range clauses[1:] {
		out += ` AND ` + c
	}
	return out
}

func applyPagination(args *[]any, limit, offset int) string {
	sql := ""
	if limit > 0 {
		sql += " LIMIT ?"
		*args = append(*args, limit)
	}
	if offset > 0 {
		sql += " OFFSET ?"
		*args = append(*args, offset)
	}
	return sql
}
