package routine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sandeepkv93/habitd/internal/cache"
	"github.com/sandeepkv93/habitd/internal/engine"
	"github.com/sandeepkv93/habitd/internal/model"
	"github.com/sandeepkv93/habitd/internal/pending"
)

var ErrNoRoutine = errors.New("routine: no routine loaded")

// RemotePersister is the persistence collaborator behind mutations. The
// engine never retries a failed save; the optimistic discipline around each
// mutation decides what happens to local state.
type RemotePersister interface {
	SaveItemState(ctx context.Context, routineID, sectionID, itemID string, completed bool) error
	SaveItemConfig(ctx context.Context, sectionID, itemID string, cfg model.RecurrenceConfig) error
}

type Options struct {
	Cache   *cache.ResultCache
	Pending *pending.Layer
	Remote  RemotePersister
	Logger  *slog.Logger
	Now     func() time.Time
}

// Service owns the in-memory routine view and exposes evaluation and the two
// mutation entrypoints. One instance exists per process, constructed by the
// application root and injected into consumers.
type Service struct {
	mu       sync.Mutex
	record   *model.RoutineRecord
	related  []*model.RoutineRecord
	counters *engine.ProgressSet

	evaluator *engine.Evaluator
	cache     *cache.ResultCache
	pending   *pending.Layer
	remote    RemotePersister
	logger    *slog.Logger
	now       func() time.Time
}

func New(opts Options) *Service {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	c := opts.Cache
	if c == nil {
		c = cache.New(cache.DefaultTTL, 0)
	}
	p := opts.Pending
	if p == nil {
		p = pending.NewLayer(pending.NewStore(""), pending.DefaultDebounce, logger)
	}
	return &Service{
		evaluator: engine.NewEvaluator(now),
		cache:     c,
		pending:   p,
		remote:    opts.Remote,
		logger:    logger,
		now:       now,
	}
}

// LoadSnapshot installs an incoming authoritative snapshot: pending local
// edits are overlaid first so a refresh never discards a registered change,
// then progress counters are reconciled across the snapshot plus any related
// records. The whole cache is flushed because everything may have changed.
func (s *Service) LoadSnapshot(snapshot *model.RoutineRecord, related []*model.RoutineRecord) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	merged := s.pending.Apply(snapshot)
	all := make([]*model.RoutineRecord, 0, len(related)+1)
	all = append(all, merged)
	all = append(all, related...)
	counters := engine.ReconcileProgress(all)

	s.mu.Lock()
	s.record = merged
	s.related = related
	s.counters = counters
	s.mu.Unlock()

	s.cache.InvalidateAll()
	return nil
}

// Record returns a copy of the current view state.
func (s *Service) Record() *model.RoutineRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.record.Clone()
}

// Counter exposes the reconciled canonical progress for one item of the
// loaded record set.
func (s *Service) Counter(recordID, section, item string) (engine.Counter, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.counters.Counter(recordID, section, item)
}

func (s *Service) CacheStats() cache.Stats {
	return s.cache.Stats()
}

// PendingCount reports how many items carry unsaved local config edits.
func (s *Service) PendingCount() int {
	return s.pending.Len()
}

// Evaluate returns the cadence verdict for one item of the loaded routine.
// Computation failures never surface: the evaluator converts them into a
// well-formed fail-open result. The error return carries only request-level
// problems.
func (s *Service) Evaluate(ctx context.Context, section, item string) (model.ItemEvaluation, error) {
	if err := ctx.Err(); err != nil {
		return model.ItemEvaluation{}, err
	}
	s.mu.Lock()
	rec := s.record
	s.mu.Unlock()
	if rec == nil {
		return model.ItemEvaluation{}, ErrNoRoutine
	}

	loc := rec.Location()
	key := cache.Key{
		Section: section,
		Item:    item,
		Day:     model.DayOf(s.now(), loc),
		Live:    rec.LiveCompleted(section, item),
	}
	if cached, ok := s.cache.Get(key); ok {
		return cached, nil
	}

	out := s.evaluator.Evaluate(engine.Request{Section: section, Item: item, Record: rec})
	s.cache.Put(key, out)
	return out, nil
}

// ItemView pairs an item with its evaluation for list rendering.
type ItemView struct {
	Section    string
	Item       string
	Evaluation model.ItemEvaluation
}

// EvaluateAll evaluates every known item of the loaded routine, sorted by
// section then item for stable rendering.
func (s *Service) EvaluateAll(ctx context.Context) ([]ItemView, error) {
	s.mu.Lock()
	rec := s.record
	s.mu.Unlock()
	if rec == nil {
		return nil, ErrNoRoutine
	}

	views := make([]ItemView, 0)
	var evalErr error
	rec.EachItem(func(section, item string) {
		if evalErr != nil {
			return
		}
		ev, err := s.Evaluate(ctx, section, item)
		if err != nil {
			evalErr = err
			return
		}
		views = append(views, ItemView{Section: section, Item: item, Evaluation: ev})
	})
	if evalErr != nil {
		return nil, evalErr
	}
	sort.Slice(views, func(i, j int) bool {
		if views[i].Section != views[j].Section {
			return views[i].Section < views[j].Section
		}
		return views[i].Item < views[j].Item
	})
	return views, nil
}

// ToggleCompletion flips the live completed flag optimistically, invalidates
// the item's cached results and persists remotely. On a remote failure the
// flag is rolled back to its pre-mutation value and the error surfaces to the
// caller for user-visible feedback.
func (s *Service) ToggleCompletion(ctx context.Context, itemID, sectionID string) error {
	if sectionID == "" || itemID == "" {
		return model.ErrMissingItem
	}

	s.mu.Lock()
	rec := s.record
	if rec == nil {
		s.mu.Unlock()
		return ErrNoRoutine
	}
	prev := rec.LiveCompleted(sectionID, itemID)
	next := !prev
	rec.SetLiveCompleted(sectionID, itemID, next)

	_, hadConfig := rec.Config(sectionID, itemID)
	var createdConfig model.RecurrenceConfig
	if !hadConfig {
		createdConfig = model.DefaultConfig(s.now())
		rec.SetConfig(sectionID, itemID, createdConfig)
	}
	recordID := rec.ID
	s.mu.Unlock()

	s.cache.InvalidateItem(sectionID, itemID)

	if s.remote != nil {
		if err := s.remote.SaveItemState(ctx, recordID, sectionID, itemID, next); err != nil {
			s.rollbackToggle(sectionID, itemID, prev, hadConfig)
			return fmt.Errorf("routine: persist item state: %w", err)
		}
		if !hadConfig {
			if err := s.remote.SaveItemConfig(ctx, sectionID, itemID, createdConfig); err != nil {
				// The toggle itself persisted; losing the default config is
				// recoverable on the next edit.
				s.logger.Warn("persist default config failed", "section", sectionID, "item", itemID, "error", err)
			}
		}
	}

	s.reconcileCurrent()
	return nil
}

func (s *Service) rollbackToggle(sectionID, itemID string, prev bool, hadConfig bool) {
	s.mu.Lock()
	if s.record != nil {
		s.record.SetLiveCompleted(sectionID, itemID, prev)
		if !hadConfig {
			delete(s.record.Configs[sectionID], itemID)
		}
	}
	s.mu.Unlock()
	s.cache.InvalidateItem(sectionID, itemID)
}

type UpdateOptions struct {
	PersistLocally  bool
	PersistGlobally bool
}

type UpdateResult struct {
	Updated bool
	Config  model.RecurrenceConfig
}

// UpdateRecurrenceConfig applies a whitelisted partial edit to an item's
// config. The local view updates synchronously; PersistLocally registers the
// edit with the preservation layer, PersistGlobally saves it remotely. On a
// remote failure the optimistic state and the pending entry are retained for
// a user-triggered retry and the error is returned for feedback.
func (s *Service) UpdateRecurrenceConfig(ctx context.Context, sectionID, itemID string, patch model.ConfigPatch, opts UpdateOptions) (UpdateResult, error) {
	if sectionID == "" || itemID == "" {
		return UpdateResult{}, model.ErrMissingItem
	}
	if err := patch.Validate(); err != nil {
		return UpdateResult{}, err
	}

	s.mu.Lock()
	rec := s.record
	if rec == nil {
		s.mu.Unlock()
		return UpdateResult{}, ErrNoRoutine
	}
	base, ok := rec.Config(sectionID, itemID)
	if !ok {
		base = model.DefaultConfig(s.now())
	}
	updated := patch.Apply(base)
	rec.SetConfig(sectionID, itemID, updated)
	s.mu.Unlock()

	if opts.PersistLocally {
		if err := s.pending.Register(sectionID, itemID, patch); err != nil {
			return UpdateResult{}, err
		}
	}

	s.cache.InvalidateAll()

	if opts.PersistGlobally && s.remote != nil {
		if err := s.remote.SaveItemConfig(ctx, sectionID, itemID, updated); err != nil {
			return UpdateResult{Updated: true, Config: updated},
				fmt.Errorf("routine: persist config: %w", err)
		}
		s.pending.Clear(sectionID, itemID)
	}

	s.reconcileCurrent()
	return UpdateResult{Updated: true, Config: updated}, nil
}

// reconcileCurrent recomputes the canonical counters after a mutation, over
// the live record plus the related records installed with it so their
// counters and the cross-record day dedup survive.
func (s *Service) reconcileCurrent() {
	s.mu.Lock()
	rec := s.record
	related := s.related
	s.mu.Unlock()
	if rec == nil {
		return
	}
	all := make([]*model.RoutineRecord, 0, len(related)+1)
	all = append(all, rec)
	all = append(all, related...)
	counters := engine.ReconcileProgress(all)
	s.mu.Lock()
	s.counters = counters
	s.mu.Unlock()
}
