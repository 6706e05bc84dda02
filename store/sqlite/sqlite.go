/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements ledger.TxStore using SQLite. In production the same patterns
  apply to PostgreSQL - only minor SQL dialect differences.

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on the transactions table
  - No DELETE statements on the transactions table
  The inventory table is the only mutable state and only moves through
  the upsert in Adjust.

KEY TABLES:
  bases:        Physical sites holding stock
  users:        Operator accounts (bcrypt password hashes)
  assets:       Catalog item definitions
  inventory:    Current quantity per (base, asset), UNIQUE pair
  transactions: Immutable log of every stock event

CONCURRENCY:
  Uses sync.RWMutex for thread-safety, same as the single-writer model
  SQLite itself imposes. WAL mode keeps readers from blocking.

USAGE:
  st, err := sqlite.New("./data/assets.db")
  if err != nil {
      log.Fatal(err)
  }
  defer st.Close()

SEE ALSO:
  - ledger/store.go: interface definitions
  - ledger/store/memory.go: in-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"golang.org/x/crypto/bcrypt"

	"github.com/manojmanoj143/assigment/ledger"
)

// Store implements ledger.TxStore using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// One connection keeps ":memory:" databases coherent across the pool.
	db.SetMaxOpenConns(1)

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Bases (static reference data)
	CREATE TABLE IF NOT EXISTS bases (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		location TEXT
	);

	-- Users
	CREATE TABLE IF NOT EXISTS users (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT UNIQUE NOT NULL,
		password_hash TEXT NOT NULL,
		role TEXT NOT NULL,
		base_id INTEGER,
		FOREIGN KEY (base_id) REFERENCES bases (id)
	);

	-- Assets (definitions)
	CREATE TABLE IF NOT EXISTS assets (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT NOT NULL,
		type TEXT NOT NULL,
		description TEXT,
		unit_cost TEXT NOT NULL DEFAULT '0'
	);

	-- Inventory (current stock projection, one row per pair)
	CREATE TABLE IF NOT EXISTS inventory (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		base_id INTEGER NOT NULL,
		asset_id INTEGER NOT NULL,
		quantity INTEGER NOT NULL DEFAULT 0,
		UNIQUE(base_id, asset_id),
		FOREIGN KEY (base_id) REFERENCES bases (id),
		FOREIGN KEY (asset_id) REFERENCES assets (id)
	);

	CREATE INDEX IF NOT EXISTS idx_inventory_base ON inventory(base_id);
	CREATE INDEX IF NOT EXISTS idx_inventory_asset ON inventory(asset_id);

	-- Transactions (append-only log)
	CREATE TABLE IF NOT EXISTS transactions (
		id TEXT PRIMARY KEY,
		kind TEXT NOT NULL,
		asset_id INTEGER NOT NULL,
		source_base_id INTEGER,
		dest_base_id INTEGER,
		quantity INTEGER NOT NULL,
		user_id INTEGER,
		status TEXT NOT NULL DEFAULT 'COMPLETED',
		created_at TEXT NOT NULL,
		FOREIGN KEY (asset_id) REFERENCES assets (id)
	);

	CREATE INDEX IF NOT EXISTS idx_transactions_source_base
		ON transactions(source_base_id) WHERE source_base_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_transactions_dest_base
		ON transactions(dest_base_id) WHERE dest_base_id IS NOT NULL;
	CREATE INDEX IF NOT EXISTS idx_transactions_kind ON transactions(kind);
	CREATE INDEX IF NOT EXISTS idx_transactions_created_at
		ON transactions(created_at DESC);
	`

	_, err := s.db.Exec(schema)
	return err
}

// timeLayout is RFC3339 with a fixed-width 9-digit fraction. created_at
// is compared as text by ORDER BY, and variable-width fractions break
// lexicographic ordering: "...00.5Z" sorts after "...00.51Z" because
// 'Z' > '1'. Fixed width keeps text order equal to time order.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// dbtx is satisfied by both *sql.DB and *sql.Tx.
type dbtx interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// =============================================================================
// INVENTORY STORE (ledger.InventoryStore interface)
// =============================================================================

// Quantity returns current stock for the pair, 0 when no row exists.
func (s *Store) Quantity(ctx context.Context, base ledger.BaseID, asset ledger.AssetID) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return quantity(ctx, s.db, base, asset)
}

func quantity(ctx context.Context, db dbtx, base ledger.BaseID, asset ledger.AssetID) (int64, error) {
	var qty int64
	err := db.QueryRowContext(ctx,
		"SELECT quantity FROM inventory WHERE base_id = ? AND asset_id = ?",
		base, asset,
	).Scan(&qty)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read quantity: %w", err)
	}
	return qty, nil
}

// Adjust applies delta to the pair, creating the row lazily, and returns
// the new quantity. The upsert is a single statement so an interrupted
// write can never leave a half-applied delta.
func (s *Store) Adjust(ctx context.Context, base ledger.BaseID, asset ledger.AssetID, delta int64) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return adjust(ctx, s.db, base, asset, delta)
}

func adjust(ctx context.Context, db dbtx, base ledger.BaseID, asset ledger.AssetID, delta int64) (int64, error) {
	_, err := db.ExecContext(ctx, `
		INSERT INTO inventory (base_id, asset_id, quantity) VALUES (?, ?, ?)
		ON CONFLICT(base_id, asset_id) DO UPDATE SET quantity = quantity + excluded.quantity
	`, base, asset, delta)
	if err != nil {
		return 0, fmt.Errorf("failed to adjust inventory: %w", err)
	}
	return quantity(ctx, db, base, asset)
}

// Sum aggregates per-asset totals under the filter.
func (s *Store) Sum(ctx context.Context, filter ledger.StockFilter) (map[ledger.AssetID]int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return sumStock(ctx, s.db, filter)
}

func sumStock(ctx context.Context, db dbtx, filter ledger.StockFilter) (map[ledger.AssetID]int64, error) {
	query := `
		SELECT i.asset_id, SUM(i.quantity)
		FROM inventory i
		JOIN assets a ON i.asset_id = a.id
		WHERE 1=1
	`
	var args []any
	if filter.BaseID != nil {
		query += " AND i.base_id = ?"
		args = append(args, *filter.BaseID)
	}
	if filter.Category != nil {
		query += " AND a.type = ?"
		args = append(args, string(*filter.Category))
	}
	query += " GROUP BY i.asset_id"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to sum inventory: %w", err)
	}
	defer rows.Close()

	totals := make(map[ledger.AssetID]int64)
	for rows.Next() {
		var asset ledger.AssetID
		var total int64
		if err := rows.Scan(&asset, &total); err != nil {
			return nil, err
		}
		totals[asset] = total
	}
	return totals, rows.Err()
}

// Levels returns the raw projection rows under the filter.
func (s *Store) Levels(ctx context.Context, filter ledger.StockFilter) ([]ledger.StockLevel, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return stockLevels(ctx, s.db, filter)
}

func stockLevels(ctx context.Context, db dbtx, filter ledger.StockFilter) ([]ledger.StockLevel, error) {
	query := `
		SELECT i.base_id, i.asset_id, i.quantity
		FROM inventory i
		JOIN assets a ON i.asset_id = a.id
		WHERE 1=1
	`
	var args []any
	if filter.BaseID != nil {
		query += " AND i.base_id = ?"
		args = append(args, *filter.BaseID)
	}
	if filter.Category != nil {
		query += " AND a.type = ?"
		args = append(args, string(*filter.Category))
	}
	query += " ORDER BY i.base_id, i.asset_id"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer rows.Close()

	var result []ledger.StockLevel
	for rows.Next() {
		var lv ledger.StockLevel
		if err := rows.Scan(&lv.BaseID, &lv.AssetID, &lv.Quantity); err != nil {
			return nil, err
		}
		result = append(result, lv)
	}
	return result, rows.Err()
}

// =============================================================================
// TRANSACTION LOG (ledger.TransactionLog interface)
// =============================================================================

// Append persists a transaction, assigning id and timestamp when unset.
func (s *Store) Append(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return appendTx(ctx, s.db, tx)
}

func appendTx(ctx context.Context, db dbtx, tx ledger.Transaction) (ledger.Transaction, error) {
	if tx.ID == "" {
		tx.ID = ledger.TransactionID(uuid.NewString())
	}
	if tx.CreatedAt.IsZero() {
		tx.CreatedAt = time.Now()
	}
	// Stored as UTC so the fixed-width layout always renders a "Z" suffix.
	tx.CreatedAt = tx.CreatedAt.UTC()
	if tx.Status == "" {
		tx.Status = ledger.StatusCompleted
	}

	_, err := db.ExecContext(ctx, `
		INSERT INTO transactions (id, kind, asset_id, source_base_id, dest_base_id, quantity, user_id, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		string(tx.ID),
		string(tx.Kind),
		tx.AssetID,
		nullBaseID(tx.SourceBaseID),
		nullBaseID(tx.DestBaseID),
		tx.Quantity,
		tx.UserID,
		tx.Status,
		tx.CreatedAt.Format(timeLayout),
	)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("failed to append transaction: %w", err)
	}
	return tx, nil
}

// Query returns transactions matching the filter, newest first.
func (s *Store) Query(ctx context.Context, filter ledger.LogFilter) ([]ledger.Transaction, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return queryLog(ctx, s.db, filter)
}

func queryLog(ctx context.Context, db dbtx, filter ledger.LogFilter) ([]ledger.Transaction, error) {
	query := `
		SELECT t.id, t.kind, t.asset_id, t.source_base_id, t.dest_base_id, t.quantity, t.user_id, t.status, t.created_at
		FROM transactions t
		JOIN assets a ON t.asset_id = a.id
		WHERE 1=1
	`
	var args []any
	if filter.BaseID != nil {
		query += " AND (t.source_base_id = ? OR t.dest_base_id = ?)"
		args = append(args, *filter.BaseID, *filter.BaseID)
	}
	if filter.Category != nil {
		query += " AND a.type = ?"
		args = append(args, string(*filter.Category))
	}
	if filter.Kind != nil {
		query += " AND t.kind = ?"
		args = append(args, string(*filter.Kind))
	}
	query += " ORDER BY t.created_at DESC, t.rowid DESC"

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query transactions: %w", err)
	}
	defer rows.Close()

	var result []ledger.Transaction
	for rows.Next() {
		tx, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, tx)
	}
	return result, rows.Err()
}

func scanTransaction(rows *sql.Rows) (ledger.Transaction, error) {
	var (
		tx        ledger.Transaction
		kind      string
		source    sql.NullInt64
		dest      sql.NullInt64
		userID    sql.NullInt64
		createdAt string
	)

	err := rows.Scan(&tx.ID, &kind, &tx.AssetID, &source, &dest, &tx.Quantity, &userID, &tx.Status, &createdAt)
	if err != nil {
		return tx, fmt.Errorf("failed to scan transaction: %w", err)
	}

	tx.Kind = ledger.Kind(kind)
	if source.Valid {
		id := ledger.BaseID(source.Int64)
		tx.SourceBaseID = &id
	}
	if dest.Valid {
		id := ledger.BaseID(dest.Int64)
		tx.DestBaseID = &id
	}
	if userID.Valid {
		tx.UserID = ledger.UserID(userID.Int64)
	}
	tx.CreatedAt, _ = time.Parse(timeLayout, createdAt)
	return tx, nil
}

// =============================================================================
// CATALOG STORE (ledger.CatalogStore interface)
// =============================================================================

func (s *Store) ListBases(ctx context.Context) ([]ledger.Base, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listBases(ctx, s.db)
}

func listBases(ctx context.Context, db dbtx) ([]ledger.Base, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, name, location FROM bases ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bases []ledger.Base
	for rows.Next() {
		var b ledger.Base
		var location sql.NullString
		if err := rows.Scan(&b.ID, &b.Name, &location); err != nil {
			return nil, err
		}
		b.Location = location.String
		bases = append(bases, b)
	}
	return bases, rows.Err()
}

func (s *Store) ListAssets(ctx context.Context) ([]ledger.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return listAssets(ctx, s.db)
}

func listAssets(ctx context.Context, db dbtx) ([]ledger.Asset, error) {
	rows, err := db.QueryContext(ctx, "SELECT id, name, type, description, unit_cost FROM assets ORDER BY id")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var assets []ledger.Asset
	for rows.Next() {
		a, err := scanAsset(rows.Scan)
		if err != nil {
			return nil, err
		}
		assets = append(assets, a)
	}
	return assets, rows.Err()
}

func scanAsset(scan func(...any) error) (ledger.Asset, error) {
	var a ledger.Asset
	var category, cost string
	var description sql.NullString
	if err := scan(&a.ID, &a.Name, &category, &description, &cost); err != nil {
		return a, err
	}
	a.Category = ledger.Category(category)
	a.Description = description.String
	a.UnitCost, _ = decimal.NewFromString(cost)
	return a, nil
}

func (s *Store) GetBase(ctx context.Context, id ledger.BaseID) (*ledger.Base, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getBase(ctx, s.db, id)
}

func getBase(ctx context.Context, db dbtx, id ledger.BaseID) (*ledger.Base, error) {
	var b ledger.Base
	var location sql.NullString
	err := db.QueryRowContext(ctx, "SELECT id, name, location FROM bases WHERE id = ?", id).
		Scan(&b.ID, &b.Name, &location)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	b.Location = location.String
	return &b, nil
}

func (s *Store) GetAsset(ctx context.Context, id ledger.AssetID) (*ledger.Asset, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getAsset(ctx, s.db, id)
}

func getAsset(ctx context.Context, db dbtx, id ledger.AssetID) (*ledger.Asset, error) {
	row := db.QueryRowContext(ctx, "SELECT id, name, type, description, unit_cost FROM assets WHERE id = ?", id)
	a, err := scanAsset(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) GetUserByUsername(ctx context.Context, username string) (*ledger.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return getUserByUsername(ctx, s.db, username)
}

func getUserByUsername(ctx context.Context, db dbtx, username string) (*ledger.User, error) {
	var u ledger.User
	var role string
	var baseID sql.NullInt64
	err := db.QueryRowContext(ctx,
		"SELECT id, username, password_hash, role, base_id FROM users WHERE username = ?",
		username,
	).Scan(&u.ID, &u.Username, &u.PasswordHash, &role, &baseID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.Role = ledger.Role(role)
	if baseID.Valid {
		id := ledger.BaseID(baseID.Int64)
		u.BaseID = &id
	}
	return &u, nil
}

// =============================================================================
// PROVISIONING - Catalog writes (never reached by transactional flows)
// =============================================================================

// SaveBase inserts or updates a base and returns its id.
func (s *Store) SaveBase(ctx context.Context, b ledger.Base) (ledger.BaseID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID != 0 {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO bases (id, name, location) VALUES (?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET name = excluded.name, location = excluded.location
		`, b.ID, b.Name, b.Location)
		return b.ID, err
	}
	res, err := s.db.ExecContext(ctx, "INSERT INTO bases (name, location) VALUES (?, ?)", b.Name, b.Location)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return ledger.BaseID(id), err
}

// SaveAsset inserts or updates an asset definition and returns its id.
func (s *Store) SaveAsset(ctx context.Context, a ledger.Asset) (ledger.AssetID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID != 0 {
		_, err := s.db.ExecContext(ctx, `
			INSERT INTO assets (id, name, type, description, unit_cost) VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name, type = excluded.type,
				description = excluded.description, unit_cost = excluded.unit_cost
		`, a.ID, a.Name, string(a.Category), a.Description, a.UnitCost.String())
		return a.ID, err
	}
	res, err := s.db.ExecContext(ctx,
		"INSERT INTO assets (name, type, description, unit_cost) VALUES (?, ?, ?, ?)",
		a.Name, string(a.Category), a.Description, a.UnitCost.String())
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return ledger.AssetID(id), err
}

// SaveUser inserts or updates a user. The password is hashed here so a
// plaintext value never reaches the users table.
func (s *Store) SaveUser(ctx context.Context, u ledger.User, password string) (ledger.UserID, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return 0, fmt.Errorf("failed to hash password: %w", err)
	}

	res, err := s.db.ExecContext(ctx, `
		INSERT INTO users (username, password_hash, role, base_id) VALUES (?, ?, ?, ?)
		ON CONFLICT(username) DO UPDATE SET
			password_hash = excluded.password_hash, role = excluded.role, base_id = excluded.base_id
	`, u.Username, string(hash), string(u.Role), nullBaseID(u.BaseID))
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	return ledger.UserID(id), err
}

// =============================================================================
// HISTORY - Log entries enriched with catalog names
// =============================================================================

// HistoryEntry is a transaction joined with the names a reader wants.
type HistoryEntry struct {
	ledger.Transaction
	AssetName  string
	UserName   string
	SourceBase string
	DestBase   string
}

// History returns enriched transactions, newest first, optionally limited
// to those touching one base.
func (s *Store) History(ctx context.Context, baseID *ledger.BaseID) ([]HistoryEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
		SELECT t.id, t.kind, t.asset_id, t.source_base_id, t.dest_base_id, t.quantity, t.user_id, t.status, t.created_at,
		       a.name, COALESCE(u.username, ''), COALESCE(b1.name, ''), COALESCE(b2.name, '')
		FROM transactions t
		JOIN assets a ON t.asset_id = a.id
		LEFT JOIN users u ON t.user_id = u.id
		LEFT JOIN bases b1 ON t.source_base_id = b1.id
		LEFT JOIN bases b2 ON t.dest_base_id = b2.id
		WHERE 1=1
	`
	var args []any
	if baseID != nil {
		query += " AND (t.source_base_id = ? OR t.dest_base_id = ?)"
		args = append(args, *baseID, *baseID)
	}
	query += " ORDER BY t.created_at DESC, t.rowid DESC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query history: %w", err)
	}
	defer rows.Close()

	var entries []HistoryEntry
	for rows.Next() {
		var (
			e         HistoryEntry
			kind      string
			source    sql.NullInt64
			dest      sql.NullInt64
			userID    sql.NullInt64
			createdAt string
		)
		if err := rows.Scan(&e.ID, &kind, &e.AssetID, &source, &dest, &e.Quantity, &userID, &e.Status, &createdAt,
			&e.AssetName, &e.UserName, &e.SourceBase, &e.DestBase); err != nil {
			return nil, err
		}
		e.Kind = ledger.Kind(kind)
		if source.Valid {
			id := ledger.BaseID(source.Int64)
			e.SourceBaseID = &id
		}
		if dest.Valid {
			id := ledger.BaseID(dest.Int64)
			e.DestBaseID = &id
		}
		if userID.Valid {
			e.UserID = ledger.UserID(userID.Int64)
		}
		e.CreatedAt, _ = time.Parse(timeLayout, createdAt)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// =============================================================================
// TRANSACTIONAL STORE (ledger.TxStore interface)
// =============================================================================

// WithTx executes fn within a database transaction. The store mutex is
// held for the duration so the snapshot fn sees is also stable against
// writes through this store.
func (s *Store) WithTx(ctx context.Context, fn func(ledger.Store) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	sqlTx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer sqlTx.Rollback()

	if err := fn(&txStore{tx: sqlTx}); err != nil {
		return err
	}
	return sqlTx.Commit()
}

type txStore struct {
	tx *sql.Tx
}

func (ts *txStore) Quantity(ctx context.Context, base ledger.BaseID, asset ledger.AssetID) (int64, error) {
	return quantity(ctx, ts.tx, base, asset)
}

func (ts *txStore) Adjust(ctx context.Context, base ledger.BaseID, asset ledger.AssetID, delta int64) (int64, error) {
	return adjust(ctx, ts.tx, base, asset, delta)
}

func (ts *txStore) Sum(ctx context.Context, filter ledger.StockFilter) (map[ledger.AssetID]int64, error) {
	return sumStock(ctx, ts.tx, filter)
}

func (ts *txStore) Levels(ctx context.Context, filter ledger.StockFilter) ([]ledger.StockLevel, error) {
	return stockLevels(ctx, ts.tx, filter)
}

func (ts *txStore) Append(ctx context.Context, tx ledger.Transaction) (ledger.Transaction, error) {
	return appendTx(ctx, ts.tx, tx)
}

func (ts *txStore) Query(ctx context.Context, filter ledger.LogFilter) ([]ledger.Transaction, error) {
	return queryLog(ctx, ts.tx, filter)
}

func (ts *txStore) ListBases(ctx context.Context) ([]ledger.Base, error) {
	return listBases(ctx, ts.tx)
}

func (ts *txStore) ListAssets(ctx context.Context) ([]ledger.Asset, error) {
	return listAssets(ctx, ts.tx)
}

func (ts *txStore) GetBase(ctx context.Context, id ledger.BaseID) (*ledger.Base, error) {
	return getBase(ctx, ts.tx, id)
}

func (ts *txStore) GetAsset(ctx context.Context, id ledger.AssetID) (*ledger.Asset, error) {
	return getAsset(ctx, ts.tx, id)
}

func (ts *txStore) GetUserByUsername(ctx context.Context, username string) (*ledger.User, error) {
	return getUserByUsername(ctx, ts.tx, username)
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"transactions", "inventory", "users", "assets", "bases"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func nullBaseID(id *ledger.BaseID) sql.NullInt64 {
	if id == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*id), Valid: true}
}
