/*
Package ledger provides the core inventory ledger and balance engine.

PURPOSE:
  This package contains the domain types and algorithms for tracking
  military asset stock across bases. Current quantities live in an
  inventory projection keyed by (base, asset); every stock-affecting
  event is also recorded in an append-only transaction log, so the
  projection is always re-derivable by replay.

KEY CONCEPTS IN THIS FILE (types.go):
  - Base/Asset/User: static catalog records (provisioned, never mutated
    by transactional flows)
  - Transaction: an immutable log entry recording a stock event
  - Kind: PURCHASE, TRANSFER, ASSIGN, EXPEND
  - Role: admin, commander, logistics

DESIGN PRINCIPLES:
  1. Immutability: transactions are never modified or deleted
  2. Replay: InventoryEntry.quantity == signed sum of the log for that pair
  3. Negative stock is allowed: the system records over-commitment as-is
     rather than blocking it (configurable, see gateway.go)

SEE ALSO:
  - store.go: persistence interfaces
  - inventory.go: quantity projection and per-key serialization
  - movement.go: dashboard aggregation
  - gateway.go: the four mutating operations
*/
package ledger

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type BaseID int64
type AssetID int64
type UserID int64
type TransactionID string

// =============================================================================
// CATALOG TYPES
// =============================================================================

// Category classifies an asset definition.
type Category string

const (
	CategoryWeapon  Category = "Weapon"
	CategoryVehicle Category = "Vehicle"
	CategoryAmmo    Category = "Ammo"
)

// Base is a physical logistics site holding inventory.
type Base struct {
	ID       BaseID
	Name     string
	Location string
}

// Asset is a catalog item type tracked by quantity, not by serial unit.
type Asset struct {
	ID          AssetID
	Name        string
	Category    Category
	Description string
	UnitCost    decimal.Decimal
}

// Role determines which operations a caller may perform.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleCommander Role = "commander"
	RoleLogistics Role = "logistics"
)

// User is an operator account. Commanders and logistics officers are
// attached to a home base; admins are not.
type User struct {
	ID           UserID
	Username     string
	PasswordHash string
	Role         Role
	BaseID       *BaseID
}

// =============================================================================
// TRANSACTION - Immutable stock event
// =============================================================================

type Kind string

const (
	KindPurchase Kind = "PURCHASE" // Stock procured into a destination base
	KindTransfer Kind = "TRANSFER" // Stock moved between two distinct bases
	KindAssign   Kind = "ASSIGN"   // Stock assigned to personnel (logged only)
	KindExpend   Kind = "EXPEND"   // Stock consumed at a base
)

// StatusCompleted is the only status the gateway writes. The column exists
// so a future approval workflow can introduce pending states without a
// schema change.
const StatusCompleted = "COMPLETED"

// Transaction is one entry in the append-only log.
//
// Field usage by kind:
//   PURCHASE: DestBaseID set, SourceBaseID nil
//   TRANSFER: both set, must differ
//   ASSIGN:   SourceBaseID set (base assigned from), no quantity effect
//   EXPEND:   SourceBaseID set, quantity removed there
type Transaction struct {
	ID           TransactionID
	Kind         Kind
	AssetID      AssetID
	SourceBaseID *BaseID
	DestBaseID   *BaseID
	Quantity     int64
	UserID       UserID
	Status       string
	CreatedAt    time.Time
}

// Effect returns the signed quantity change this transaction applies to
// the given base: positive for stock arriving, negative for stock leaving,
// zero when the base is not involved or the kind has no quantity effect.
func (t Transaction) Effect(base BaseID) int64 {
	switch t.Kind {
	case KindPurchase:
		if t.DestBaseID != nil && *t.DestBaseID == base {
			return t.Quantity
		}
	case KindTransfer:
		if t.DestBaseID != nil && *t.DestBaseID == base {
			return t.Quantity
		}
		if t.SourceBaseID != nil && *t.SourceBaseID == base {
			return -t.Quantity
		}
	case KindExpend:
		if t.SourceBaseID != nil && *t.SourceBaseID == base {
			return -t.Quantity
		}
	case KindAssign:
		// Logged only, never changes stock.
	}
	return 0
}

// =============================================================================
// FILTERS
// =============================================================================

// StockFilter scopes inventory aggregation. Nil fields mean "all".
type StockFilter struct {
	BaseID   *BaseID
	Category *Category
}

// LogFilter scopes transaction log queries. A BaseID matches transactions
// where the base appears as either source or destination.
type LogFilter struct {
	BaseID   *BaseID
	Category *Category
	Kind     *Kind
}

// StockLevel is one (base, asset) row of the inventory projection.
type StockLevel struct {
	BaseID   BaseID
	AssetID  AssetID
	Quantity int64
}
