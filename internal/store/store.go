// Package store persists the repository symbol snapshot to SQLite. The
// snapshot is replaced wholesale on every rebuild; there is no incremental
// update path and no durability guarantee beyond what SQLite provides.
package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/jward/vigil/internal/model"
)

// Store is the SQLite data access layer for snapshot persistence.
type Store struct {
	db *sql.DB
}

// NewStore opens a SQLite database at dbPath with WAL mode enabled.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=30000")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for use in tests.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Migrate creates the snapshot tables. Idempotent.
func (s *Store) Migrate() error {
	if _, err := s.db.Exec(schemaDDL); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

const schemaDDL = `
CREATE TABLE IF NOT EXISTS snapshot_meta (
  id            INTEGER PRIMARY KEY CHECK (id = 1),
  root          TEXT NOT NULL,
  built_at      INTEGER NOT NULL,
  max_mod_time  INTEGER NOT NULL,
  symbol_count  INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS symbols (
  id           INTEGER PRIMARY KEY,
  name         TEXT NOT NULL,
  kind         TEXT NOT NULL,
  type         TEXT,
  file_path    TEXT NOT NULL,
  line         INTEGER NOT NULL,
  scope        TEXT NOT NULL DEFAULT '',
  array_size   INTEGER,
  return_type  TEXT,
  is_variadic  BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE TABLE IF NOT EXISTS symbol_params (
  id           INTEGER PRIMARY KEY,
  symbol_id    INTEGER NOT NULL REFERENCES symbols(id) ON DELETE CASCADE,
  ordinal      INTEGER NOT NULL,
  name         TEXT NOT NULL,
  type         TEXT,
  has_default  BOOLEAN NOT NULL DEFAULT FALSE
);

CREATE INDEX IF NOT EXISTS idx_symbols_name ON symbols(name);
CREATE INDEX IF NOT EXISTS idx_symbols_file ON symbols(file_path);
`

// ReplaceSnapshot replaces the persisted snapshot in one transaction:
// delete everything, insert the new table.
func (s *Store) ReplaceSnapshot(root string, builtAt, maxModTime time.Time, symbols []model.Symbol) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM symbol_params"); err != nil {
		return fmt.Errorf("clear params: %w", err)
	}
	if _, err := tx.Exec("DELETE FROM symbols"); err != nil {
		return fmt.Errorf("clear symbols: %w", err)
	}
	if _, err := tx.Exec(
		`INSERT INTO snapshot_meta (id, root, built_at, max_mod_time, symbol_count)
		 VALUES (1, ?, ?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET
		   root = excluded.root, built_at = excluded.built_at,
		   max_mod_time = excluded.max_mod_time, symbol_count = excluded.symbol_count`,
		root, builtAt.UnixNano(), maxModTime.UnixNano(), len(symbols),
	); err != nil {
		return fmt.Errorf("upsert meta: %w", err)
	}

	symStmt, err := tx.Prepare(
		`INSERT INTO symbols (name, kind, type, file_path, line, scope, array_size, return_type, is_variadic)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare symbols: %w", err)
	}
	defer symStmt.Close()

	paramStmt, err := tx.Prepare(
		`INSERT INTO symbol_params (symbol_id, ordinal, name, type, has_default)
		 VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("prepare params: %w", err)
	}
	defer paramStmt.Close()

	for _, sym := range symbols {
		var size sql.NullInt64
		if sym.ArraySize != nil {
			size = sql.NullInt64{Int64: int64(*sym.ArraySize), Valid: true}
		}
		res, err := symStmt.Exec(
			sym.Name, string(sym.Kind), sym.Type, sym.FilePath, sym.Line,
			sym.Scope, size, sym.ReturnType, sym.IsVariadic,
		)
		if err != nil {
			return fmt.Errorf("insert symbol %s: %w", sym.Name, err)
		}
		symID, err := res.LastInsertId()
		if err != nil {
			return fmt.Errorf("symbol id: %w", err)
		}
		for i, p := range sym.Params {
			if _, err := paramStmt.Exec(symID, i, p.Name, p.Type, p.HasDefault); err != nil {
				return fmt.Errorf("insert param %s.%s: %w", sym.Name, p.Name, err)
			}
		}
	}

	return tx.Commit()
}

// SnapshotMeta describes the persisted snapshot.
type SnapshotMeta struct {
	Root        string
	BuiltAt     time.Time
	MaxModTime  time.Time
	SymbolCount int
}

// LoadSnapshot reads the persisted snapshot back. Returns ok=false when no
// snapshot has been stored yet.
func (s *Store) LoadSnapshot() (SnapshotMeta, []model.Symbol, bool, error) {
	var meta SnapshotMeta
	var builtAt, maxMod int64
	err := s.db.QueryRow(
		"SELECT root, built_at, max_mod_time, symbol_count FROM snapshot_meta WHERE id = 1",
	).Scan(&meta.Root, &builtAt, &maxMod, &meta.SymbolCount)
	if err == sql.ErrNoRows {
		return SnapshotMeta{}, nil, false, nil
	}
	if err != nil {
		return SnapshotMeta{}, nil, false, fmt.Errorf("load meta: %w", err)
	}
	meta.BuiltAt = time.Unix(0, builtAt)
	meta.MaxModTime = time.Unix(0, maxMod)

	rows, err := s.db.Query(
		`SELECT id, name, kind, type, file_path, line, scope, array_size, return_type, is_variadic
		 FROM symbols ORDER BY id`)
	if err != nil {
		return SnapshotMeta{}, nil, false, fmt.Errorf("load symbols: %w", err)
	}
	defer rows.Close()

	var symbols []model.Symbol
	var ids []int64
	for rows.Next() {
		var (
			id   int64
			sym  model.Symbol
			kind string
			size sql.NullInt64
		)
		if err := rows.Scan(&id, &sym.Name, &kind, &sym.Type, &sym.FilePath, &sym.Line,
			&sym.Scope, &size, &sym.ReturnType, &sym.IsVariadic); err != nil {
			return SnapshotMeta{}, nil, false, fmt.Errorf("scan symbol: %w", err)
		}
		sym.Kind = model.SymbolKind(kind)
		if size.Valid {
			sym.ArraySize = model.IntPtr(int(size.Int64))
		}
		symbols = append(symbols, sym)
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return SnapshotMeta{}, nil, false, fmt.Errorf("iterate symbols: %w", err)
	}

	byID := make(map[int64]*model.Symbol, len(symbols))
	for i := range symbols {
		byID[ids[i]] = &symbols[i]
	}

	prows, err := s.db.Query(
		"SELECT symbol_id, name, type, has_default FROM symbol_params ORDER BY symbol_id, ordinal")
	if err != nil {
		return SnapshotMeta{}, nil, false, fmt.Errorf("load params: %w", err)
	}
	defer prows.Close()
	for prows.Next() {
		var symID int64
		var p model.Param
		if err := prows.Scan(&symID, &p.Name, &p.Type, &p.HasDefault); err != nil {
			return SnapshotMeta{}, nil, false, fmt.Errorf("scan param: %w", err)
		}
		if sym := byID[symID]; sym != nil {
			sym.Params = append(sym.Params, p)
		}
	}
	if err := prows.Err(); err != nil {
		return SnapshotMeta{}, nil, false, fmt.Errorf("iterate params: %w", err)
	}

	return meta, symbols, true, nil
}
