package pending

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/sandeepkv93/habitd/internal/model"
)

// DefaultDebounce batches durable writes of the pending map.
const DefaultDebounce = 500 * time.Millisecond

type entryKey struct {
	Section string
	Item    string
}

// Layer tracks in-flight user edits and merges them over incoming
// authoritative snapshots so a refresh never silently discards an
// unsaved-but-registered change. One instance exists per process, owned by
// the application root.
type Layer struct {
	mu      sync.Mutex
	entries map[entryKey]model.PendingLocalChange
	timer   *time.Timer

	store    *Store
	debounce time.Duration
	logger   *slog.Logger
	now      func() time.Time
}

// NewLayer builds the layer and loads the durable mirror exactly once;
// mid-session the in-memory map is authoritative regardless of storage
// health. A load failure is logged and the session starts empty.
func NewLayer(store *Store, debounce time.Duration, logger *slog.Logger) *Layer {
	if debounce <= 0 {
		debounce = DefaultDebounce
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	l := &Layer{
		entries:  make(map[entryKey]model.PendingLocalChange),
		store:    store,
		debounce: debounce,
		logger:   logger,
		now:      time.Now,
	}
	changes, err := store.Load()
	if err != nil {
		logger.Warn("pending store load failed, starting empty", "error", err)
		return l
	}
	for _, ch := range changes {
		if ch.SectionID == "" || ch.ItemID == "" || ch.Fields.IsZero() {
			continue
		}
		l.entries[entryKey{Section: ch.SectionID, Item: ch.ItemID}] = ch
	}
	return l
}

// Register records a whitelisted edit for an item and schedules a debounced
// durable write. A later partial edit merges over an earlier unconfirmed one
// instead of replacing it, so fields registered by the first edit survive
// until a confirmed save clears the entry.
func (l *Layer) Register(section, item string, fields model.ConfigPatch) error {
	if section == "" || item == "" {
		return model.ErrMissingItem
	}
	if err := fields.Validate(); err != nil {
		return err
	}
	if fields.IsZero() {
		return nil
	}
	l.mu.Lock()
	key := entryKey{Section: section, Item: item}
	merged := fields
	if existing, ok := l.entries[key]; ok {
		merged = existing.Fields.Merge(fields)
	}
	l.entries[key] = model.PendingLocalChange{
		SectionID:    section,
		ItemID:       item,
		Fields:       merged,
		RegisteredAt: l.now(),
	}
	l.scheduleWriteLocked()
	l.mu.Unlock()
	return nil
}

// Pending returns the entry for an item, if one is registered.
func (l *Layer) Pending(section, item string) (model.PendingLocalChange, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	ch, ok := l.entries[entryKey{Section: section, Item: item}]
	return ch, ok
}

func (l *Layer) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Apply overlays every pending entry on a copy of the incoming authoritative
// snapshot: only the whitelisted fields of items with a pending entry are
// overwritten, everything else comes from the snapshot unmodified. The input
// is never mutated.
func (l *Layer) Apply(snapshot *model.RoutineRecord) *model.RoutineRecord {
	if snapshot == nil {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.entries) == 0 {
		return snapshot.Clone()
	}
	out := snapshot.Clone()
	for key, ch := range l.entries {
		base, ok := out.Config(key.Section, key.Item)
		if !ok {
			// The snapshot does not know the item yet; the pending edit
			// still applies on top of defaults so the intent survives.
			base = model.DefaultConfig(ch.RegisteredAt)
		}
		out.SetConfig(key.Section, key.Item, ch.Fields.Apply(base))
	}
	return out
}

// Clear removes the entry for one item once its remote persistence is
// confirmed, and updates the durable mirror.
func (l *Layer) Clear(section, item string) {
	l.mu.Lock()
	delete(l.entries, entryKey{Section: section, Item: item})
	l.scheduleWriteLocked()
	l.mu.Unlock()
}

// ClearAll empties the map and the durable mirror.
func (l *Layer) ClearAll() {
	l.mu.Lock()
	l.entries = make(map[entryKey]model.PendingLocalChange)
	l.scheduleWriteLocked()
	l.mu.Unlock()
}

// Flush cancels any scheduled write and persists immediately. Callers use it
// on shutdown.
func (l *Layer) Flush() {
	l.mu.Lock()
	if l.timer != nil {
		l.timer.Stop()
		l.timer = nil
	}
	changes := l.snapshotLocked()
	l.mu.Unlock()
	l.write(changes)
}

func (l *Layer) scheduleWriteLocked() {
	if l.store == nil {
		return
	}
	if l.timer != nil {
		l.timer.Stop()
	}
	l.timer = time.AfterFunc(l.debounce, func() {
		l.mu.Lock()
		l.timer = nil
		changes := l.snapshotLocked()
		l.mu.Unlock()
		l.write(changes)
	})
}

func (l *Layer) snapshotLocked() []model.PendingLocalChange {
	changes := make([]model.PendingLocalChange, 0, len(l.entries))
	for _, ch := range l.entries {
		changes = append(changes, ch)
	}
	sort.Slice(changes, func(i, j int) bool {
		if changes[i].SectionID != changes[j].SectionID {
			return changes[i].SectionID < changes[j].SectionID
		}
		return changes[i].ItemID < changes[j].ItemID
	})
	return changes
}

// write failures are logged and swallowed: in-memory state stays
// authoritative for the running session.
func (l *Layer) write(changes []model.PendingLocalChange) {
	if err := l.store.Save(changes); err != nil {
		l.logger.Warn("pending store write failed", "error", err)
	}
}
