package persistence

import (
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"sync"

	_ "github.com/mattn/go-sqlite3"
)

// SQLiteStore is a Store backed by a single SQLite table.
type SQLiteStore struct {
	db *sql.DB
	mu sync.Mutex
}

// OpenSQLiteStore opens or creates the database at path.
// Use ":memory:" for an in-memory database.
func OpenSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A single connection keeps ":memory:" databases shared between calls.
	db.SetMaxOpenConns(1)

	_, err = db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA synchronous = FULL;
	`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	_, err := s.db.Exec(`
	CREATE TABLE IF NOT EXISTS kv (
		key TEXT PRIMARY KEY,
		kind INTEGER NOT NULL,
		ival INTEGER NOT NULL DEFAULT 0,
		sval TEXT NOT NULL DEFAULT ''
	);
	`)
	return err
}

// get returns the record for key. Query errors read as a missing record.
func (s *SQLiteStore) get(key string) (value, bool) {
	var (
		kind int
		ival int64
		sval string
	)
	err := s.db.QueryRow(`SELECT kind, ival, sval FROM kv WHERE key = ?`, key).Scan(&kind, &ival, &sval)
	if err != nil {
		return value{}, false
	}

	v := value{Kind: Kind(kind), Int: ival, Str: sval}
	if v.Kind == KindIDs {
		v.Str = ""
		v.IDs = parseIDs(sval)
	}
	return v, true
}

func (s *SQLiteStore) Int64(key string, def int64) int64 {
	v, ok := s.get(key)
	return asInt64(v, ok, def)
}

func (s *SQLiteStore) String(key string, def string) string {
	v, ok := s.get(key)
	return asString(v, ok, def)
}

func (s *SQLiteStore) Bool(key string, def bool) bool {
	v, ok := s.get(key)
	return asBool(v, ok, def)
}

func (s *SQLiteStore) IDs(key string) []int {
	v, ok := s.get(key)
	return asIDs(v, ok)
}

func (s *SQLiteStore) Edit() Editor {
	return newBatch(s.commit)
}

// commit applies the batch in one transaction.
func (s *SQLiteStore) commit(ops []op) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	for _, o := range ops {
		if o.val == nil {
			_, err = tx.Exec(`DELETE FROM kv WHERE key = ?`, o.key)
		} else {
			sval := o.val.Str
			if o.val.Kind == KindIDs {
				sval = formatIDs(o.val.IDs)
			}
			_, err = tx.Exec(`
				INSERT INTO kv (key, kind, ival, sval) VALUES (?, ?, ?, ?)
				ON CONFLICT(key) DO UPDATE SET kind = excluded.kind, ival = excluded.ival, sval = excluded.sval
			`, o.key, int(o.val.Kind), o.val.Int, sval)
		}
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("write %s: %w", o.key, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func formatIDs(ids []int) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = strconv.Itoa(id)
	}
	return strings.Join(parts, ",")
}

// parseIDs skips malformed entries.
func parseIDs(s string) []int {
	if s == "" {
		return nil
	}
	var ids []int
	for _, p := range strings.Split(s, ",") {
		id, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

var _ Store = (*SQLiteStore)(nil)
