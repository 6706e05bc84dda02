/*
store.go - Persistence interfaces for inventory, log, and catalog

PURPOSE:
  Defines the interface between the engine and the database. Different
  implementations can use SQLite or in-memory storage; the engine never
  touches SQL directly and every component receives its store as an
  explicit dependency.

APPEND-ONLY CONTRACT:
  TransactionLog has no Update or Delete. Ever. The inventory projection
  is the only mutable state, and it only moves through Adjust.

ATOMICITY:
  TxStore.WithTx gives the gateway all-or-nothing semantics across the
  inventory update and the log append. If fn returns an error nothing
  is visible.

IMPLEMENTATIONS:
  - store/sqlite/sqlite.go: production SQLite
  - ledger/store/memory.go: in-memory for testing

SEE ALSO:
  - gateway.go: the only writer
  - movement.go: consistent-snapshot reader
*/
package ledger

import "context"

// =============================================================================
// INVENTORY STORE - The (base, asset) -> quantity projection
// =============================================================================

// InventoryStore holds current quantities, one entry per (base, asset) pair.
// Absence of an entry means zero stock, not an error.
type InventoryStore interface {
	// Quantity returns the current stock for the pair, 0 if no entry exists.
	Quantity(ctx context.Context, base BaseID, asset AssetID) (int64, error)

	// Adjust adds delta to the pair's quantity, creating the entry with
	// quantity=delta if absent, and returns the new quantity. Quantities
	// may go negative; the store never enforces a floor.
	Adjust(ctx context.Context, base BaseID, asset AssetID, delta int64) (int64, error)

	// Sum aggregates quantities per asset under the filter. Aggregates
	// across all bases when the filter names none.
	Sum(ctx context.Context, filter StockFilter) (map[AssetID]int64, error)

	// Levels returns the raw projection rows under the filter.
	Levels(ctx context.Context, filter StockFilter) ([]StockLevel, error)
}

// =============================================================================
// TRANSACTION LOG - Append-only history
// =============================================================================

// TransactionLog records every stock-affecting event. Append-only:
// no update or delete operation exists in this contract.
type TransactionLog interface {
	// Append persists a transaction, assigning its id and timestamp when
	// unset, and returns the persisted record.
	Append(ctx context.Context, tx Transaction) (Transaction, error)

	// Query returns transactions matching the filter, newest first.
	Query(ctx context.Context, filter LogFilter) ([]Transaction, error)
}

// =============================================================================
// CATALOG STORE - Static reference data
// =============================================================================

// CatalogStore serves bases, asset definitions, and operator accounts.
// Read-only from the engine's perspective.
type CatalogStore interface {
	ListBases(ctx context.Context) ([]Base, error)
	ListAssets(ctx context.Context) ([]Asset, error)

	// GetBase and GetAsset return nil (not an error) when the id is unknown.
	GetBase(ctx context.Context, id BaseID) (*Base, error)
	GetAsset(ctx context.Context, id AssetID) (*Asset, error)

	// GetUserByUsername returns nil when no such user exists.
	GetUserByUsername(ctx context.Context, username string) (*User, error)
}

// =============================================================================
// COMPOSITE AND TRANSACTIONAL STORES
// =============================================================================

// Store is everything the engine needs from persistence.
type Store interface {
	InventoryStore
	TransactionLog
	CatalogStore
}

// TxStore wraps Store with transaction support. The gateway uses WithTx
// for every mutating command so the projection and the log move together;
// the movement engine uses it so a dashboard read sees one snapshot.
type TxStore interface {
	Store

	// WithTx executes fn within a transaction. If fn returns an error the
	// transaction is rolled back and no partial mutation is visible.
	WithTx(ctx context.Context, fn func(Store) error) error
}
