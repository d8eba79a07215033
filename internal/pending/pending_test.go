package pending

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/sandeepkv93/habitd/internal/model"
)

func intPtr(v int) *int { return &v }

func snapshotWithGym(t *testing.T, required int) *model.RoutineRecord {
	t.Helper()
	day, err := model.ParseDay("2024-01-05")
	if err != nil {
		t.Fatalf("parse day: %v", err)
	}
	rec := &model.RoutineRecord{ID: "rec-1", Date: day, Timezone: "UTC"}
	rec.SetConfig("fitness", "gym", model.RecurrenceConfig{
		Cadence:       model.CadenceWeekly,
		RequiredCount: required,
		Every:         1,
		Active:        true,
		CreatedAt:     time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	return rec
}

func TestApplyPreservesPendingFieldsOverSnapshot(t *testing.T) {
	layer := NewLayer(NewStore(""), time.Millisecond, nil)
	if err := layer.Register("fitness", "gym", model.ConfigPatch{RequiredCount: intPtr(3)}); err != nil {
		t.Fatalf("register: %v", err)
	}

	// Incoming authoritative snapshot says requiredCount=1.
	snapshot := snapshotWithGym(t, 1)
	merged := layer.Apply(snapshot)

	cfg, ok := merged.Config("fitness", "gym")
	if !ok {
		t.Fatal("merged snapshot lost the item")
	}
	if cfg.RequiredCount != 3 {
		t.Fatalf("pending edit lost: requiredCount=%d", cfg.RequiredCount)
	}
	// Every untouched field comes from the snapshot.
	if cfg.Cadence != model.CadenceWeekly || !cfg.Active {
		t.Fatalf("non-pending fields must come from the snapshot: %#v", cfg)
	}
	// The input snapshot itself is untouched.
	orig, _ := snapshot.Config("fitness", "gym")
	if orig.RequiredCount != 1 {
		t.Fatalf("apply mutated the incoming snapshot: %#v", orig)
	}
}

func TestApplyDefaultsWhenSnapshotLacksItem(t *testing.T) {
	layer := NewLayer(NewStore(""), time.Millisecond, nil)
	cadence := model.CadenceWeekly
	if err := layer.Register("evening", "journal", model.ConfigPatch{Cadence: &cadence}); err != nil {
		t.Fatalf("register: %v", err)
	}

	merged := layer.Apply(snapshotWithGym(t, 1))
	cfg, ok := merged.Config("evening", "journal")
	if !ok {
		t.Fatal("pending edit for unknown item must survive the merge")
	}
	if cfg.Cadence != model.CadenceWeekly || cfg.RequiredCount != 1 || !cfg.Active {
		t.Fatalf("expected pending edit over defaults: %#v", cfg)
	}
}

func TestRegisterMergesSuccessivePartialEdits(t *testing.T) {
	layer := NewLayer(NewStore(""), time.Millisecond, nil)
	if err := layer.Register("fitness", "gym", model.ConfigPatch{RequiredCount: intPtr(5)}); err != nil {
		t.Fatalf("register count: %v", err)
	}
	cadence := model.CadenceMonthly
	if err := layer.Register("fitness", "gym", model.ConfigPatch{Cadence: &cadence}); err != nil {
		t.Fatalf("register cadence: %v", err)
	}

	merged := layer.Apply(snapshotWithGym(t, 1))
	cfg, ok := merged.Config("fitness", "gym")
	if !ok {
		t.Fatal("merged snapshot lost the item")
	}
	// Both edits are unconfirmed; the later cadence edit must not discard the
	// earlier count edit.
	if cfg.RequiredCount != 5 {
		t.Fatalf("earlier count edit lost: requiredCount=%d", cfg.RequiredCount)
	}
	if cfg.Cadence != model.CadenceMonthly {
		t.Fatalf("later cadence edit lost: cadence=%q", cfg.Cadence)
	}
}

func TestRegisterLaterEditWinsPerField(t *testing.T) {
	layer := NewLayer(NewStore(""), time.Millisecond, nil)
	if err := layer.Register("fitness", "gym", model.ConfigPatch{RequiredCount: intPtr(5)}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := layer.Register("fitness", "gym", model.ConfigPatch{RequiredCount: intPtr(2)}); err != nil {
		t.Fatalf("register: %v", err)
	}

	ch, ok := layer.Pending("fitness", "gym")
	if !ok {
		t.Fatal("expected pending entry")
	}
	if ch.Fields.RequiredCount == nil || *ch.Fields.RequiredCount != 2 {
		t.Fatalf("expected the later edit of the same field to win: %#v", ch.Fields)
	}
}

func TestRegisterRejectsInvalidInput(t *testing.T) {
	layer := NewLayer(NewStore(""), time.Millisecond, nil)

	if err := layer.Register("", "gym", model.ConfigPatch{RequiredCount: intPtr(2)}); err == nil {
		t.Fatal("missing section must be rejected")
	}
	if err := layer.Register("fitness", "gym", model.ConfigPatch{RequiredCount: intPtr(0)}); err == nil {
		t.Fatal("requiredCount 0 must be rejected")
	}
	if err := layer.Register("fitness", "gym", model.ConfigPatch{}); err != nil {
		t.Fatalf("empty patch is a no-op, not an error: %v", err)
	}
	if layer.Len() != 0 {
		t.Fatalf("rejected registrations must not be stored, have %d", layer.Len())
	}
}

func TestClearRemovesEntries(t *testing.T) {
	layer := NewLayer(NewStore(""), time.Millisecond, nil)
	_ = layer.Register("fitness", "gym", model.ConfigPatch{RequiredCount: intPtr(2)})
	_ = layer.Register("evening", "journal", model.ConfigPatch{RequiredCount: intPtr(4)})

	layer.Clear("fitness", "gym")
	if _, ok := layer.Pending("fitness", "gym"); ok {
		t.Fatal("cleared entry still present")
	}
	if _, ok := layer.Pending("evening", "journal"); !ok {
		t.Fatal("unrelated entry must survive a targeted clear")
	}

	layer.ClearAll()
	if layer.Len() != 0 {
		t.Fatalf("clear all left %d entries", layer.Len())
	}
}

func TestDurableMirrorRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.json")

	layer := NewLayer(NewStore(path), 5*time.Millisecond, nil)
	_ = layer.Register("fitness", "gym", model.ConfigPatch{RequiredCount: intPtr(3)})
	layer.Flush()

	// A new layer (fresh process) recovers the unconfirmed edit.
	revived := NewLayer(NewStore(path), 5*time.Millisecond, nil)
	ch, ok := revived.Pending("fitness", "gym")
	if !ok {
		t.Fatal("pending edit not recovered from durable store")
	}
	if ch.Fields.RequiredCount == nil || *ch.Fields.RequiredCount != 3 {
		t.Fatalf("recovered entry malformed: %#v", ch)
	}
}

func TestDebouncedWriteLandsWithoutFlush(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.json")
	layer := NewLayer(NewStore(path), 10*time.Millisecond, nil)
	_ = layer.Register("fitness", "gym", model.ConfigPatch{RequiredCount: intPtr(2)})

	if _, err := os.Stat(path); err == nil {
		t.Fatal("write must not happen before the debounce interval")
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		if _, err := os.Stat(path); err == nil {
			break
		}
		if time.Now().After(deadline) {
			t.Fatal("debounced write never landed")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestCorruptDurableStoreStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pending.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("seed corrupt file: %v", err)
	}

	layer := NewLayer(NewStore(path), time.Millisecond, nil)
	if layer.Len() != 0 {
		t.Fatalf("corrupt store must yield an empty session, got %d entries", layer.Len())
	}
}
