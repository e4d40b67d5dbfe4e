package sync

import (
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/jmoiron/sqlx"

	"github.com/bricolab/fabsync/internal/db"
)

const ledgerSchema = `
CREATE TABLE IF NOT EXISTS sync_ledger (
    key TEXT PRIMARY KEY,
    exact_name TEXT NOT NULL,
    folder TEXT NOT NULL DEFAULT '',
    fingerprint TEXT NOT NULL,
    last_synced_at TEXT NOT NULL -- RFC3339 string
);

CREATE INDEX IF NOT EXISTS idx_ledger_exact_name ON sync_ledger(exact_name);
`

// dbTrackedItem mirrors TrackedItem with time stored as TEXT.
type dbTrackedItem struct {
	Key          string `db:"key"`
	ExactName    string `db:"exact_name"`
	Folder       string `db:"folder"`
	Fingerprint  string `db:"fingerprint"`
	LastSyncedAt string `db:"last_synced_at"`
}

func (d *dbTrackedItem) toTrackedItem() (*TrackedItem, error) {
	syncedAt, err := time.Parse(time.RFC3339, d.LastSyncedAt)
	if err != nil {
		return nil, fmt.Errorf("parse last_synced_at for key %s: %w", d.Key, err)
	}
	return &TrackedItem{
		Key:          d.Key,
		ExactName:    d.ExactName,
		Folder:       d.Folder,
		Fingerprint:  d.Fingerprint,
		LastSyncedAt: syncedAt,
	}, nil
}

// Ledger is the persisted mapping of partial key to last-known item state,
// backed by SQLite. One row per key; writes overwrite, never duplicate.
type Ledger struct {
	db     *sqlx.DB
	dbPath string
}

func NewLedger(dbPath string) *Ledger {
	return &Ledger{dbPath: dbPath}
}

func (l *Ledger) Open() error {
	if l.db != nil {
		return fmt.Errorf("ledger already open")
	}

	database, err := db.NewSqliteDB(db.WithPath(l.dbPath), db.WithMaxOpenConns(1))
	if err != nil {
		return fmt.Errorf("open ledger: %w", err)
	}

	if _, err := database.Exec(ledgerSchema); err != nil {
		database.Close()
		return fmt.Errorf("initialize ledger schema: %w", err)
	}

	l.db = database
	return nil
}

func (l *Ledger) Close() error {
	if l.db == nil {
		return fmt.Errorf("ledger not open")
	}
	if err := l.db.Close(); err != nil {
		return err
	}
	l.db = nil
	return nil
}

// Get retrieves the tracked item for a key, or nil when untracked.
func (l *Ledger) Get(key string) (*TrackedItem, error) {
	var row dbTrackedItem
	err := l.db.Get(&row, "SELECT key, exact_name, folder, fingerprint, last_synced_at FROM sync_ledger WHERE key = ?", key)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("query key %s: %w", key, err)
	}
	return row.toTrackedItem()
}

// Set inserts or overwrites the entry for item.Key.
func (l *Ledger) Set(item *TrackedItem) error {
	if item == nil {
		return fmt.Errorf("cannot set nil item")
	}

	row := dbTrackedItem{
		Key:          item.Key,
		ExactName:    item.ExactName,
		Folder:       item.Folder,
		Fingerprint:  item.Fingerprint,
		LastSyncedAt: item.LastSyncedAt.UTC().Format(time.RFC3339),
	}

	query := `INSERT OR REPLACE INTO sync_ledger (key, exact_name, folder, fingerprint, last_synced_at)
	          VALUES (:key, :exact_name, :folder, :fingerprint, :last_synced_at)`
	if _, err := l.db.NamedExec(query, row); err != nil {
		return fmt.Errorf("set ledger entry %s: %w", item.Key, err)
	}
	slog.Debug("ledger set", "key", item.Key, "name", item.ExactName, "fingerprint", item.Fingerprint)
	return nil
}

// State loads the full ledger as a map keyed by partial key.
func (l *Ledger) State() (map[string]*TrackedItem, error) {
	var rows []dbTrackedItem
	if err := l.db.Select(&rows, "SELECT key, exact_name, folder, fingerprint, last_synced_at FROM sync_ledger"); err != nil {
		return nil, fmt.Errorf("query ledger state: %w", err)
	}

	state := make(map[string]*TrackedItem, len(rows))
	for i := range rows {
		item, err := rows[i].toTrackedItem()
		if err != nil {
			slog.Error("skipping corrupt ledger row", "key", rows[i].Key, "error", err)
			continue
		}
		state[item.Key] = item
	}
	return state, nil
}

func (l *Ledger) Count() (int, error) {
	var count int
	if err := l.db.Get(&count, "SELECT COUNT(*) FROM sync_ledger"); err != nil {
		return 0, fmt.Errorf("count ledger entries: %w", err)
	}
	return count, nil
}

// Delete removes the entry for a key.
func (l *Ledger) Delete(key string) error {
	if _, err := l.db.Exec("DELETE FROM sync_ledger WHERE key = ?", key); err != nil {
		return fmt.Errorf("delete ledger entry %s: %w", key, err)
	}
	return nil
}

// Prune removes every entry whose key the remote side no longer serves.
// Returns the number of pruned entries.
func (l *Ledger) Prune(keep mapset.Set[string]) (int, error) {
	state, err := l.State()
	if err != nil {
		return 0, err
	}

	pruned := 0
	for key := range state {
		if keep.Contains(key) {
			continue
		}
		if err := l.Delete(key); err != nil {
			return pruned, err
		}
		slog.Debug("ledger pruned", "key", key)
		pruned++
	}
	return pruned, nil
}
