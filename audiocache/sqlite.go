package audiocache

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/mattn/go-sqlite3" // SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS audio_cache (
	message_id  TEXT NOT NULL,
	part        INTEGER NOT NULL,
	total_parts INTEGER NOT NULL,
	data        BLOB NOT NULL,
	created_at  DATETIME DEFAULT CURRENT_TIMESTAMP,
	PRIMARY KEY (message_id, part)
);`

// SQLite is a Cache persisted to a SQLite database, so fetched audio
// survives restarts. Write failures are logged, not surfaced: a cache miss
// on the next read just refetches.
type SQLite struct {
	db *sql.DB
}

// NewSQLite opens (creating if needed) a cache database at path. Use
// ":memory:" for an ephemeral database.
func NewSQLite(path string) (*SQLite, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening audio cache db: %w", err)
	}
	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing audio cache schema: %w", err)
	}
	return &SQLite{db: db}, nil
}

// Close releases the underlying database.
func (c *SQLite) Close() error {
	return c.db.Close()
}

// Get implements Cache.
func (c *SQLite) Get(messageID string, part int) ([]byte, bool) {
	var data []byte
	err := c.db.QueryRow(
		`SELECT data FROM audio_cache WHERE message_id = ? AND part = ?`,
		messageID, part,
	).Scan(&data)
	if err != nil {
		if err != sql.ErrNoRows {
			log.Printf("[AUDIO_CACHE] read failed for %s part %d: %v", messageID, part, err)
		}
		return nil, false
	}
	return data, true
}

// Put implements Cache.
func (c *SQLite) Put(messageID string, part int, data []byte, totalParts int) {
	_, err := c.db.Exec(
		`INSERT OR REPLACE INTO audio_cache (message_id, part, total_parts, data) VALUES (?, ?, ?, ?)`,
		messageID, part, totalParts, data,
	)
	if err != nil {
		log.Printf("[AUDIO_CACHE] write failed for %s part %d: %v", messageID, part, err)
	}
}

// Has implements Cache.
func (c *SQLite) Has(messageID string, part int) bool {
	var one int
	err := c.db.QueryRow(
		`SELECT 1 FROM audio_cache WHERE message_id = ? AND part = ?`,
		messageID, part,
	).Scan(&one)
	return err == nil
}

// PartCount implements Cache.
func (c *SQLite) PartCount(messageID string) int {
	var total int
	err := c.db.QueryRow(
		`SELECT total_parts FROM audio_cache WHERE message_id = ? LIMIT 1`,
		messageID,
	).Scan(&total)
	if err != nil {
		return 0
	}
	return total
}
