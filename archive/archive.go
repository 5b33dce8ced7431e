// Package archive stores method capsules in a SQLite database keyed by
// content hash.
package archive

import (
	"database/sql"
	"encoding/hex"
	"errors"
	"fmt"
	"sync"

	"github.com/tliron/commonlog"
	_ "modernc.org/sqlite"

	"github.com/b-38438-org/JetBrainsRuntime/capsule"
)

// ErrCapsuleNotFound indicates the requested capsule doesn't exist.
var ErrCapsuleNotFound = errors.New("capsule not found")

var log = commonlog.GetLogger("jrt.archive")

// Archive is a SQLite-backed capsule store. Capsules are keyed by their
// content hash, so storing the same method twice is idempotent and a
// fetched capsule can always be verified against its key.
type Archive struct {
	db   *sql.DB
	path string
	mu   sync.Mutex
}

// Entry is one row of a listing: the key plus the member it names.
type Entry struct {
	Hash       [32]byte
	ClassName  string
	Name       string
	Descriptor string
}

func (e Entry) String() string {
	return fmt.Sprintf("%x %s.%s%s", e.Hash[:8], e.ClassName, e.Name, e.Descriptor)
}

// Open opens or creates the archive at path.
func Open(path string) (*Archive, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("archive: opening database: %w", err)
	}

	// Set busy timeout for concurrent access.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: setting busy timeout: %w", err)
	}

	_, err = db.Exec(`CREATE TABLE IF NOT EXISTS capsules (
		hash TEXT PRIMARY KEY,
		class_name TEXT NOT NULL,
		name TEXT NOT NULL,
		descriptor TEXT NOT NULL,
		data BLOB NOT NULL
	)`)
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("archive: creating table: %w", err)
	}

	log.Infof("opened %s", path)
	return &Archive{db: db, path: path}, nil
}

// Close closes the database connection.
func (a *Archive) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// Put stores a capsule under its content hash and returns the hash.
// Storing a capsule that is already present replaces the row.
func (a *Archive) Put(c *capsule.Capsule) ([32]byte, error) {
	hash, err := c.ContentHash()
	if err != nil {
		return [32]byte{}, err
	}
	data, err := capsule.Marshal(c)
	if err != nil {
		return [32]byte{}, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	_, err = a.db.Exec(
		"INSERT OR REPLACE INTO capsules (hash, class_name, name, descriptor, data) VALUES (?, ?, ?, ?, ?)",
		hex.EncodeToString(hash[:]), c.ClassName, c.Name, c.Descriptor, data,
	)
	if err != nil {
		return [32]byte{}, fmt.Errorf("archive: storing capsule: %w", err)
	}

	log.Infof("stored %s.%s%s as %x", c.ClassName, c.Name, c.Descriptor, hash[:8])
	return hash, nil
}

// Get fetches the capsule stored under hash and verifies it against the
// key before returning it.
func (a *Archive) Get(hash [32]byte) (*capsule.Capsule, error) {
	var data []byte
	err := a.db.QueryRow(
		"SELECT data FROM capsules WHERE hash = ?",
		hex.EncodeToString(hash[:]),
	).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCapsuleNotFound
		}
		return nil, fmt.Errorf("archive: querying capsule: %w", err)
	}

	c, err := capsule.Unmarshal(data)
	if err != nil {
		return nil, err
	}
	if err := c.Verify(hash); err != nil {
		return nil, err
	}
	return c, nil
}

// List returns one entry per stored capsule, ordered by class and member
// name.
func (a *Archive) List() ([]Entry, error) {
	rows, err := a.db.Query(
		"SELECT hash, class_name, name, descriptor FROM capsules ORDER BY class_name, name, descriptor")
	if err != nil {
		return nil, fmt.Errorf("archive: listing capsules: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var hexHash string
		var e Entry
		if err := rows.Scan(&hexHash, &e.ClassName, &e.Name, &e.Descriptor); err != nil {
			return nil, fmt.Errorf("archive: scanning row: %w", err)
		}
		raw, err := hex.DecodeString(hexHash)
		if err != nil || len(raw) != 32 {
			return nil, fmt.Errorf("archive: malformed hash key %q", hexHash)
		}
		copy(e.Hash[:], raw)
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("archive: listing capsules: %w", err)
	}
	return entries, nil
}

// Delete removes the capsule stored under hash. Deleting an absent hash
// reports ErrCapsuleNotFound.
func (a *Archive) Delete(hash [32]byte) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	res, err := a.db.Exec(
		"DELETE FROM capsules WHERE hash = ?",
		hex.EncodeToString(hash[:]),
	)
	if err != nil {
		return fmt.Errorf("archive: deleting capsule: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("archive: deleting capsule: %w", err)
	}
	if n == 0 {
		return ErrCapsuleNotFound
	}

	log.Infof("deleted %x", hash[:8])
	return nil
}
