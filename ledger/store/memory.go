// Package store provides ledger.Store implementations.
package store

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/manojmanoj143/assigment/ledger"
)

// =============================================================================
// MEMORY STORE - In-memory implementation (for testing/dev)
// =============================================================================

type Memory struct {
	mu        sync.RWMutex
	inventory map[ledger.StockKey]int64
	log       []ledger.Transaction
	bases     map[ledger.BaseID]ledger.Base
	assets    map[ledger.AssetID]ledger.Asset
	users     map[string]ledger.User
}

func NewMemory() *Memory {
	return &Memory{
		inventory: make(map[ledger.StockKey]int64),
		bases:     make(map[ledger.BaseID]ledger.Base),
		assets:    make(map[ledger.AssetID]ledger.Asset),
		users:     make(map[string]ledger.User),
	}
}

// =============================================================================
// PROVISIONING - Catalog setup for tests and dev servers
// =============================================================================

func (m *Memory) AddBase(b ledger.Base) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.bases[b.ID] = b
}

func (m *Memory) AddAsset(a ledger.Asset) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assets[a.ID] = a
}

func (m *Memory) AddUser(u ledger.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.Username] = u
}

// =============================================================================
// INVENTORY STORE
// =============================================================================

func (m *Memory) Quantity(_ context.Context, base ledger.BaseID, asset ledger.AssetID) (int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.inventory[ledger.StockKey{Base: base, Asset: asset}], nil
}

func (m *Memory) Adjust(_ context.Context, base ledger.BaseID, asset ledger.AssetID, delta int64) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := ledger.StockKey{Base: base, Asset: asset}
	m.inventory[key] += delta
	return m.inventory[key], nil
}

func (m *Memory) Sum(_ context.Context, filter ledger.StockFilter) (map[ledger.AssetID]int64, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	totals := make(map[ledger.AssetID]int64)
	for key, qty := range m.inventory {
		if filter.BaseID != nil && key.Base != *filter.BaseID {
			continue
		}
		if filter.Category != nil && m.assets[key.Asset].Category != *filter.Category {
			continue
		}
		totals[key.Asset] += qty
	}
	return totals, nil
}

func (m *Memory) Levels(_ context.Context, filter ledger.StockFilter) ([]ledger.StockLevel, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var levels []ledger.StockLevel
	for key, qty := range m.inventory {
		if filter.BaseID != nil && key.Base != *filter.BaseID {
			continue
		}
		if filter.Category != nil && m.assets[key.Asset].Category != *filter.Category {
			continue
		}
		levels = append(levels, ledger.StockLevel{BaseID: key.Base, AssetID: key.Asset, Quantity: qty})
	}
	return levels, nil
}

// =============================================================================
// TRANSACTION LOG
// =============================================================================

func (m *Memory) Append(_ context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.appendLocked(tx), nil
}

func (m *Memory) appendLocked(tx ledger.Transaction) ledger.Transaction {
	if tx.ID == "" {
		tx.ID = ledger.TransactionID(uuid.NewString())
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now().UTC()
	}
	if tx.Status == "" {
		tx.Status = ledger.StatusCompleted
	}
	m.log = append(m.log, tx)
	return tx
}

func (m *Memory) Query(_ context.Context, filter ledger.LogFilter) ([]ledger.Transaction, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	// Insertion order is chronological; walk backwards for newest first.
	var result []ledger.Transaction
	for i := len(m.log) - 1; i >= 0; i-- {
		tx := m.log[i]
		if filter.Kind != nil && tx.Kind != *filter.Kind {
			continue
		}
		if filter.Category != nil && m.assets[tx.AssetID].Category != *filter.Category {
			continue
		}
		if filter.BaseID != nil && !touchesBase(tx, *filter.BaseID) {
			continue
		}
		result = append(result, tx)
	}
	return result, nil
}

func touchesBase(tx ledger.Transaction, base ledger.BaseID) bool {
	if tx.SourceBaseID != nil && *tx.SourceBaseID == base {
		return true
	}
	if tx.DestBaseID != nil && *tx.DestBaseID == base {
		return true
	}
	return false
}

// =============================================================================
// CATALOG STORE
// =============================================================================

func (m *Memory) ListBases(_ context.Context) ([]ledger.Base, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	bases := make([]ledger.Base, 0, len(m.bases))
	for _, b := range m.bases {
		bases = append(bases, b)
	}
	return bases, nil
}

func (m *Memory) ListAssets(_ context.Context) ([]ledger.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	assets := make([]ledger.Asset, 0, len(m.assets))
	for _, a := range m.assets {
		assets = append(assets, a)
	}
	return assets, nil
}

func (m *Memory) GetBase(_ context.Context, id ledger.BaseID) (*ledger.Base, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	b, ok := m.bases[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (m *Memory) GetAsset(_ context.Context, id ledger.AssetID) (*ledger.Asset, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	a, ok := m.assets[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (m *Memory) GetUserByUsername(_ context.Context, username string) (*ledger.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}

// =============================================================================
// TRANSACTIONAL MEMORY STORE
// =============================================================================

// TxMemory wraps Memory with transaction support, simulated with a
// snapshot + rollback on error.
type TxMemory struct {
	*Memory
}

func NewTxMemory() *TxMemory {
	return &TxMemory{Memory: NewMemory()}
}

func (tm *TxMemory) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	tm.mu.Lock()
	defer tm.mu.Unlock()

	snapshot := tm.snapshot()
	if err := fn(&txMemoryView{parent: tm}); err != nil {
		tm.restore(snapshot)
		return err
	}
	return nil
}

type memorySnapshot struct {
	inventory map[ledger.StockKey]int64
	logLen    int
}

func (tm *TxMemory) snapshot() memorySnapshot {
	inv := make(map[ledger.StockKey]int64, len(tm.inventory))
	for k, v := range tm.inventory {
		inv[k] = v
	}
	return memorySnapshot{inventory: inv, logLen: len(tm.log)}
}

func (tm *TxMemory) restore(s memorySnapshot) {
	tm.inventory = s.inventory
	tm.log = tm.log[:s.logLen]
}

// txMemoryView bypasses the parent's locks, which are already held for
// the duration of WithTx.
type txMemoryView struct {
	parent *TxMemory
}

func (tv *txMemoryView) Quantity(_ context.Context, base ledger.BaseID, asset ledger.AssetID) (int64, error) {
	return tv.parent.inventory[ledger.StockKey{Base: base, Asset: asset}], nil
}

func (tv *txMemoryView) Adjust(_ context.Context, base ledger.BaseID, asset ledger.AssetID, delta int64) (int64, error) {
	key := ledger.StockKey{Base: base, Asset: asset}
	tv.parent.inventory[key] += delta
	return tv.parent.inventory[key], nil
}

func (tv *txMemoryView) Sum(_ context.Context, filter ledger.StockFilter) (map[ledger.AssetID]int64, error) {
	totals := make(map[ledger.AssetID]int64)
	for key, qty := range tv.parent.inventory {
		if filter.BaseID != nil && key.Base != *filter.BaseID {
			continue
		}
		if filter.Category != nil && tv.parent.assets[key.Asset].Category != *filter.Category {
			continue
		}
		totals[key.Asset] += qty
	}
	return totals, nil
}

func (tv *txMemoryView) Levels(_ context.Context, filter ledger.StockFilter) ([]ledger.StockLevel, error) {
	var levels []ledger.StockLevel
	for key, qty := range tv.parent.inventory {
		if filter.BaseID != nil && key.Base != *filter.BaseID {
			continue
		}
		if filter.Category != nil && tv.parent.assets[key.Asset].Category != *filter.Category {
			continue
		}
		levels = append(levels, ledger.StockLevel{BaseID: key.Base, AssetID: key.Asset, Quantity: qty})
	}
	return levels, nil
}

func (tv *txMemoryView) Append(_ context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	return tv.parent.appendLocked(tx), nil
}

func (tv *txMemoryView) Query(_ context.Context, filter ledger.LogFilter) ([]ledger.Transaction, error) {
	var result []ledger.Transaction
	for i := len(tv.parent.log) - 1; i >= 0; i-- {
		tx := tv.parent.log[i]
		if filter.Kind != nil && tx.Kind != *filter.Kind {
			continue
		}
		if filter.Category != nil && tv.parent.assets[tx.AssetID].Category != *filter.Category {
			continue
		}
		if filter.BaseID != nil && !touchesBase(tx, *filter.BaseID) {
			continue
		}
		result = append(result, tx)
	}
	return result, nil
}

func (tv *txMemoryView) ListBases(_ context.Context) ([]ledger.Base, error) {
	bases := make([]ledger.Base, 0, len(tv.parent.bases))
	for _, b := range tv.parent.bases {
		bases = append(bases, b)
	}
	return bases, nil
}

func (tv *txMemoryView) ListAssets(_ context.Context) ([]ledger.Asset, error) {
	assets := make([]ledger.Asset, 0, len(tv.parent.assets))
	for _, a := range tv.parent.assets {
		assets = append(assets, a)
	}
	return assets, nil
}

func (tv *txMemoryView) GetBase(_ context.Context, id ledger.BaseID) (*ledger.Base, error) {
	b, ok := tv.parent.bases[id]
	if !ok {
		return nil, nil
	}
	return &b, nil
}

func (tv *txMemoryView) GetAsset(_ context.Context, id ledger.AssetID) (*ledger.Asset, error) {
	a, ok := tv.parent.assets[id]
	if !ok {
		return nil, nil
	}
	return &a, nil
}

func (tv *txMemoryView) GetUserByUsername(_ context.Context, username string) (*ledger.User, error) {
	u, ok := tv.parent.users[username]
	if !ok {
		return nil, nil
	}
	return &u, nil
}
