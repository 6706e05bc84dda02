/*
inventory.go - Inventory ledger: quantity projection access

PURPOSE:
  The Ledger wraps an InventoryStore with per-(base, asset) write
  serialization. Concurrent Purchase/Transfer/Expend commands targeting
  the same pair must not lose updates, so every adjustment holds the
  pair's mutex for the duration of the write.

INVARIANTS:
  1. At most one entry per (base, asset) pair
  2. quantity == signed replay of the transaction log for that pair
  3. No lower bound: over-withdrawal is recorded, not blocked

SEE ALSO:
  - gateway.go: acquires the same key locks around its atomic units
  - Replay: the derivation the projection must always agree with
*/
package ledger

import (
	"context"
	"sort"
	"sync"
)

// =============================================================================
// KEY LOCKS - Per (base, asset) write serialization
// =============================================================================

// StockKey identifies one inventory entry.
type StockKey struct {
	Base  BaseID
	Asset AssetID
}

type keyLocks struct {
	mu    sync.Mutex
	locks map[StockKey]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: make(map[StockKey]*sync.Mutex)}
}

// acquire locks every key and returns a release func. Keys are locked in
// a stable order so a transfer touching two pairs cannot deadlock against
// the reverse transfer.
func (k *keyLocks) acquire(keys ...StockKey) func() {
	sorted := make([]StockKey, len(keys))
	copy(sorted, keys)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].Base != sorted[j].Base {
			return sorted[i].Base < sorted[j].Base
		}
		return sorted[i].Asset < sorted[j].Asset
	})

	held := make([]*sync.Mutex, 0, len(sorted))
	var prev *StockKey
	for i := range sorted {
		if prev != nil && *prev == sorted[i] {
			continue // same key twice, lock once
		}
		mu := k.lockFor(sorted[i])
		mu.Lock()
		held = append(held, mu)
		prev = &sorted[i]
	}

	return func() {
		for i := len(held) - 1; i >= 0; i-- {
			held[i].Unlock()
		}
	}
}

func (k *keyLocks) lockFor(key StockKey) *sync.Mutex {
	k.mu.Lock()
	defer k.mu.Unlock()
	mu, ok := k.locks[key]
	if !ok {
		mu = &sync.Mutex{}
		k.locks[key] = mu
	}
	return mu
}

// =============================================================================
// LEDGER - Serialized projection access
// =============================================================================

// Ledger is the mutable state the whole system protects. All quantity
// adjustments go through here so writes to the same pair are serialized.
type Ledger struct {
	store InventoryStore
	locks *keyLocks
}

func NewLedger(store InventoryStore) *Ledger {
	return &Ledger{store: store, locks: newKeyLocks()}
}

// GetQuantity returns current stock for the pair, 0 if no entry exists.
func (l *Ledger) GetQuantity(ctx context.Context, base BaseID, asset AssetID) (int64, error) {
	return l.store.Quantity(ctx, base, asset)
}

// AdjustQuantity applies delta to the pair and returns the new quantity,
// creating the entry lazily. Serialized per key.
func (l *Ledger) AdjustQuantity(ctx context.Context, base BaseID, asset AssetID, delta int64) (int64, error) {
	release := l.locks.acquire(StockKey{Base: base, Asset: asset})
	defer release()
	return l.store.Adjust(ctx, base, asset, delta)
}

// SumQuantities aggregates per-asset totals under the filter.
func (l *Ledger) SumQuantities(ctx context.Context, filter StockFilter) (map[AssetID]int64, error) {
	return l.store.Sum(ctx, filter)
}

// Guard locks the given keys and returns a release func. The gateway uses
// this to hold key locks across its read-check-adjust-append unit.
func (l *Ledger) Guard(keys ...StockKey) func() {
	return l.locks.acquire(keys...)
}

// =============================================================================
// REPLAY - The derivation the projection caches
// =============================================================================

// Replay computes the quantity for a (base, asset) pair from scratch by
// summing the signed effect of every transaction. The projection must
// always equal this value.
func Replay(txs []Transaction, base BaseID, asset AssetID) int64 {
	var total int64
	for _, tx := range txs {
		if tx.AssetID != asset {
			continue
		}
		total += tx.Effect(base)
	}
	return total
}
