// Package persistence provides SQLite-based park state storage.
package persistence

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"github.com/talgya/mini-park/internal/engine"
	"github.com/talgya/mini-park/internal/park"
)

// ErrNoSnapshot is returned when a requested snapshot does not exist.
var ErrNoSnapshot = errors.New("no snapshot")

// DB wraps a SQLite connection for park state persistence.
type DB struct {
	conn *sqlx.DB
}

// SnapshotInfo describes a stored snapshot without its state body.
type SnapshotInfo struct {
	ID        string `db:"id" json:"id"`
	Tick      uint64 `db:"tick" json:"tick"`
	Money     int64  `db:"money" json:"money"`
	Rating    int    `db:"rating" json:"rating"`
	CreatedAt int64  `db:"created_at" json:"created_at"` // Unix seconds
}

// Created returns the snapshot creation time.
func (s SnapshotInfo) Created() time.Time {
	return time.Unix(s.CreatedAt, 0)
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		tick INTEGER NOT NULL,
		money INTEGER NOT NULL,
		rating INTEGER NOT NULL,
		created_at INTEGER NOT NULL,
		state_json TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS news (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		tick INTEGER NOT NULL,
		description TEXT NOT NULL,
		category TEXT NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_news_tick ON news(tick);

	CREATE TABLE IF NOT EXISTS daily_history (
		day INTEGER PRIMARY KEY,
		ticks INTEGER NOT NULL,
		income INTEGER NOT NULL,
		expense INTEGER NOT NULL,
		peak_visitors INTEGER NOT NULL,
		breakdowns INTEGER NOT NULL,
		closing_money INTEGER NOT NULL,
		closing_rating INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS world_meta (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_snapshots_tick ON snapshots(tick);
	CREATE INDEX IF NOT EXISTS idx_news_tick ON news(tick);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// SaveSnapshot stores the full state and returns the new snapshot id.
func (db *DB) SaveSnapshot(s *park.State) (string, error) {
	body, err := json.Marshal(s)
	if err != nil {
		return "", fmt.Errorf("encode state: %w", err)
	}

	id := uuid.NewString()
	tx, err := db.conn.Beginx()
	if err != nil {
		return "", err
	}
	defer tx.Rollback()

	_, err = tx.Exec(`INSERT INTO snapshots (id, tick, money, rating, created_at, state_json)
		VALUES (?, ?, ?, ?, ?, ?)`,
		id, s.Tick, s.Money, s.Rating, time.Now().Unix(), string(body),
	)
	if err != nil {
		return "", fmt.Errorf("insert snapshot: %w", err)
	}
	if _, err := tx.Exec("INSERT OR REPLACE INTO world_meta (key, value) VALUES ('last_tick', ?)",
		strconv.FormatUint(s.Tick, 10)); err != nil {
		return "", err
	}

	return id, tx.Commit()
}

// HasSnapshot reports whether any snapshot has been stored.
func (db *DB) HasSnapshot() bool {
	var n int
	if err := db.conn.Get(&n, "SELECT COUNT(*) FROM snapshots"); err != nil {
		return false
	}
	return n > 0
}

// LoadLatest decodes the most recent snapshot, by tick then creation time.
func (db *DB) LoadLatest() (*park.State, error) {
	var body string
	err := db.conn.Get(&body,
		"SELECT state_json FROM snapshots ORDER BY tick DESC, created_at DESC, rowid DESC LIMIT 1")
	return decodeState(body, err)
}

// LoadSnapshot decodes the snapshot with the given id.
func (db *DB) LoadSnapshot(id string) (*park.State, error) {
	var body string
	err := db.conn.Get(&body, "SELECT state_json FROM snapshots WHERE id = ?", id)
	return decodeState(body, err)
}

func decodeState(body string, err error) (*park.State, error) {
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNoSnapshot
	}
	if err != nil {
		return nil, err
	}
	var s park.State
	if err := json.Unmarshal([]byte(body), &s); err != nil {
		return nil, fmt.Errorf("decode state: %w", err)
	}
	return &s, nil
}

// Snapshots lists the newest snapshots first.
func (db *DB) Snapshots(limit int) ([]SnapshotInfo, error) {
	var out []SnapshotInfo
	err := db.conn.Select(&out,
		`SELECT id, tick, money, rating, created_at FROM snapshots
		 ORDER BY tick DESC, created_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	return out, err
}

// PruneSnapshots deletes all but the newest keep snapshots and returns how
// many were removed.
func (db *DB) PruneSnapshots(keep int) (int64, error) {
	res, err := db.conn.Exec(`DELETE FROM snapshots WHERE id NOT IN (
		SELECT id FROM snapshots ORDER BY tick DESC, created_at DESC, rowid DESC LIMIT ?)`,
		keep,
	)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// SaveNews appends entries not yet archived. The in-memory log is bounded and
// ordered by tick, so anything older than the newest stored tick is already
// archived. Entries at that tick are matched by tick, category and
// description, since a command may add news to a tick after it was saved.
func (db *DB) SaveNews(news []park.News) error {
	if len(news) == 0 {
		return nil
	}

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var last sql.NullInt64
	if err := tx.Get(&last, "SELECT MAX(tick) FROM news"); err != nil {
		return err
	}

	// Multiset of entries stored at the newest tick.
	stored := map[park.News]int{}
	if last.Valid {
		var rows []park.News
		err := tx.Select(&rows,
			"SELECT tick, description, category FROM news WHERE tick = ?",
			last.Int64,
		)
		if err != nil {
			return err
		}
		for _, n := range rows {
			stored[n]++
		}
	}

	for _, n := range news {
		if last.Valid {
			if int64(n.Tick) < last.Int64 {
				continue
			}
			if int64(n.Tick) == last.Int64 && stored[n] > 0 {
				stored[n]--
				continue
			}
		}
		_, err := tx.Exec(
			"INSERT INTO news (tick, description, category) VALUES (?, ?, ?)",
			n.Tick, n.Description, n.Category,
		)
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// RecentNews returns the most recent limit entries, newest first.
func (db *DB) RecentNews(limit int) ([]park.News, error) {
	var news []park.News
	err := db.conn.Select(&news,
		"SELECT tick, description, category FROM news ORDER BY id DESC LIMIT ?",
		limit,
	)
	return news, err
}

// RecordDay stores one day's totals, replacing any earlier row for that day.
func (db *DB) RecordDay(d engine.DayStats) error {
	_, err := db.conn.NamedExec(`INSERT OR REPLACE INTO daily_history
		(day, ticks, income, expense, peak_visitors, breakdowns, closing_money, closing_rating)
		VALUES (:day, :ticks, :income, :expense, :peak_visitors, :breakdowns, :closing_money, :closing_rating)`,
		d,
	)
	return err
}

// History returns up to limit most recent days in chronological order.
func (db *DB) History(limit int) ([]engine.DayStats, error) {
	var days []engine.DayStats
	err := db.conn.Select(&days,
		`SELECT * FROM (
			SELECT day, ticks, income, expense, peak_visitors, breakdowns, closing_money, closing_rating
			FROM daily_history ORDER BY day DESC LIMIT ?
		) ORDER BY day ASC`,
		limit,
	)
	return days, err
}

// SaveMeta stores a key-value pair in park metadata.
func (db *DB) SaveMeta(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT OR REPLACE INTO world_meta (key, value) VALUES (?, ?)",
		key, value,
	)
	return err
}

// GetMeta retrieves a metadata value.
func (db *DB) GetMeta(key string) (string, error) {
	var value string
	err := db.conn.Get(&value, "SELECT value FROM world_meta WHERE key = ?", key)
	return value, err
}

// SaveParkState performs a full save: snapshot and news.
func (db *DB) SaveParkState(s *park.State) (string, error) {
	slog.Info("saving park state", "tick", s.Tick, "facilities", len(s.Facilities), "visitors", len(s.Visitors))

	id, err := db.SaveSnapshot(s)
	if err != nil {
		return "", fmt.Errorf("save snapshot: %w", err)
	}
	if err := db.SaveNews(s.News); err != nil {
		return "", fmt.Errorf("save news: %w", err)
	}

	slog.Info("park state saved", "snapshot", id)
	return id, nil
}
