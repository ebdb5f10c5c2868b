package streak

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"codeblue-sim/internal/logging"
)

// Tracker reads and rewrites the persisted record through a Store.
type Tracker struct {
	mu    sync.Mutex
	store Store
	key   string
	tiers Table
}

// NewTracker returns a tracker using DefaultTiers. A nil tiers table also means DefaultTiers.
func NewTracker(store Store, tiers Table) *Tracker {
	if len(tiers) == 0 {
		tiers = DefaultTiers
	}
	return &Tracker{store: store, key: RecordKey, tiers: tiers.Sorted()}
}

// Tiers returns the tracker's tier table.
func (t *Tracker) Tiers() Table { return t.tiers }

// Load returns the stored record. Missing or malformed data yields a zero record.
func (t *Tracker) Load(ctx context.Context) Record {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.loadLocked(ctx)
}

func (t *Tracker) loadLocked(ctx context.Context) Record {
	log := logging.FromContext(ctx)
	raw, err := t.store.Get(ctx, t.key)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			log.Warn("streak record unreadable, starting from zero", "key", t.key, "err", err)
		}
		return Record{}
	}
	var rec Record
	if err := json.Unmarshal(raw, &rec); err != nil {
		log.Warn("streak record malformed, starting from zero", "key", t.key, "err", err)
		return Record{}
	}
	if rec.CurrentStreak < 0 || rec.BestStreak < 0 {
		log.Warn("streak record negative, starting from zero", "key", t.key, "record", rec)
		return Record{}
	}
	return rec
}

// Record applies an outcome and persists the whole record.
func (t *Tracker) Record(ctx context.Context, won bool) (Record, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec := RecordOutcome(t.loadLocked(ctx), won)
	raw, err := json.Marshal(rec)
	if err != nil {
		return rec, fmt.Errorf("encode streak record: %w", err)
	}
	if err := t.store.Set(ctx, t.key, raw); err != nil {
		return rec, fmt.Errorf("persist streak record: %w", err)
	}
	logging.FromContext(ctx).Info("streak updated", "won", won, "current", rec.CurrentStreak, "best", rec.BestStreak)
	return rec, nil
}

// Tier returns the tier for the stored current streak.
func (t *Tracker) Tier(ctx context.Context) (Tier, bool) {
	return t.tiers.Lookup(t.Load(ctx).CurrentStreak)
}
