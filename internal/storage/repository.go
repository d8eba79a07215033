package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: not found")

type Repository interface {
	CreateRoutine(ctx context.Context, in Routine) error
	GetRoutine(ctx context.Context, id string) (Routine, error)
	GetRoutineByDate(ctx context.Context, date string) (Routine, error)
	ListRoutines(ctx context.Context, filter RoutineListFilter) ([]Routine, error)

	UpsertItemState(ctx context.Context, in ItemState) error
	ListItemStates(ctx context.Context, routineID string) ([]ItemState, error)

	UpsertItemConfig(ctx context.Context, in ItemConfig) error
	GetItemConfig(ctx context.Context, sectionID, itemID string) (ItemConfig, error)
	ListItemConfigs(ctx context.Context) ([]ItemConfig, error)

	UpsertCompletion(ctx context.Context, in Completion) error
	ListCompletions(ctx context.Context, filter CompletionListFilter) ([]Completion, error)
}
