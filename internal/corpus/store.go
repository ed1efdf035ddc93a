package corpus

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	_ "github.com/mattn/go-sqlite3"
)

// ConflictPolicy decides what happens when a re-fetched notice differs
// from its stored copy.
type ConflictPolicy string

const (
	// ConflictReplace stores the new content wholesale. The default;
	// tolerates upstream corrections.
	ConflictReplace ConflictPolicy = "replace"
	// ConflictKeep preserves the first-seen content.
	ConflictKeep ConflictPolicy = "keep"
	// ConflictError fails the upsert so drift is surfaced instead of
	// resolved.
	ConflictError ConflictPolicy = "error"
)

// ErrContentConflict is returned by Upsert under ConflictError when a
// notice id is already stored with different content.
var ErrContentConflict = errors.New("notice content conflicts with stored copy")

// ValidPolicy reports whether p is a recognized conflict policy.
func ValidPolicy(p ConflictPolicy) bool {
	switch p {
	case ConflictReplace, ConflictKeep, ConflictError:
		return true
	}
	return false
}

// Outcome describes what an upsert did.
type Outcome int

const (
	Inserted Outcome = iota
	Skipped
	Replaced
)

func (o Outcome) String() string {
	switch o {
	case Inserted:
		return "inserted"
	case Skipped:
		return "skipped"
	case Replaced:
		return "replaced"
	}
	return "unknown"
}

// Store is the durable notice corpus, backed by SQLite. It is the only
// component with persistent state; id is the primary key, so the corpus
// can never hold two entries for the same notice.
type Store struct {
	db     *sql.DB
	policy ConflictPolicy
}

// Open opens or creates the corpus database at path.
func Open(path string, policy ConflictPolicy) (*Store, error) {
	if !ValidPolicy(policy) {
		return nil, fmt.Errorf("unknown conflict policy %q", policy)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		return nil, fmt.Errorf("enable WAL: %w", err)
	}

	s := &Store{db: db, policy: policy}
	if err := s.initSchema(); err != nil {
		return nil, fmt.Errorf("init schema: %w", err)
	}

	return s, nil
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) initSchema() error {
	schema := `
	CREATE TABLE IF NOT EXISTS notices (
		id TEXT PRIMARY KEY,
		published_at TIMESTAMP,
		title TEXT NOT NULL,
		body_text TEXT NOT NULL,
		metadata TEXT NOT NULL,
		content_hash TEXT NOT NULL,
		fetched_at TIMESTAMP NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_published ON notices(published_at);
	CREATE INDEX IF NOT EXISTS idx_fetched ON notices(fetched_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Upsert writes one notice atomically. The stored content hash decides
// the outcome: absent id inserts, identical content skips, differing
// content follows the store's conflict policy.
func (s *Store) Upsert(n *Notice) (Outcome, error) {
	metadata, err := n.metadataJSON()
	if err != nil {
		return Skipped, err
	}
	hash := n.ContentHash()

	tx, err := s.db.Begin()
	if err != nil {
		return Skipped, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	var existing string
	err = tx.QueryRow("SELECT content_hash FROM notices WHERE id = ?", n.ID).Scan(&existing)
	switch {
	case err == sql.ErrNoRows:
		_, err = tx.Exec(`
			INSERT INTO notices (id, published_at, title, body_text, metadata, content_hash, fetched_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			n.ID, n.PublishedAt, n.Title, n.BodyText, metadata, hash, n.FetchedAt,
		)
		if err != nil {
			return Skipped, fmt.Errorf("insert %s: %w", n.ID, err)
		}
		return Inserted, tx.Commit()
	case err != nil:
		return Skipped, fmt.Errorf("lookup %s: %w", n.ID, err)
	}

	if existing == hash {
		return Skipped, nil
	}

	switch s.policy {
	case ConflictKeep:
		return Skipped, nil
	case ConflictError:
		return Skipped, fmt.Errorf("%s: %w", n.ID, ErrContentConflict)
	}

	_, err = tx.Exec(`
		UPDATE notices
		SET published_at = ?, title = ?, body_text = ?, metadata = ?, content_hash = ?, fetched_at = ?
		WHERE id = ?`,
		n.PublishedAt, n.Title, n.BodyText, metadata, hash, n.FetchedAt, n.ID,
	)
	if err != nil {
		return Skipped, fmt.Errorf("replace %s: %w", n.ID, err)
	}
	return Replaced, tx.Commit()
}

// Get retrieves a notice by id, or nil when absent.
func (s *Store) Get(id string) (*Notice, error) {
	row := s.db.QueryRow(`
		SELECT id, published_at, title, body_text, metadata, fetched_at
		FROM notices WHERE id = ?`, id)

	n, err := scanNotice(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return n, err
}

// List retrieves every notice, most recently published first.
func (s *Store) List() ([]*Notice, error) {
	rows, err := s.db.Query(`
		SELECT id, published_at, title, body_text, metadata, fetched_at
		FROM notices ORDER BY published_at DESC, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var all []*Notice
	for rows.Next() {
		n, err := scanNotice(rows)
		if err != nil {
			return nil, err
		}
		all = append(all, n)
	}
	return all, rows.Err()
}

// Count returns the number of notices in the corpus.
func (s *Store) Count() (int, error) {
	var count int
	err := s.db.QueryRow("SELECT COUNT(*) FROM notices").Scan(&count)
	return count, err
}

type scannable interface {
	Scan(dest ...any) error
}

func scanNotice(row scannable) (*Notice, error) {
	n := &Notice{}
	var metadata string
	var published sql.NullTime

	err := row.Scan(&n.ID, &published, &n.Title, &n.BodyText, &metadata, &n.FetchedAt)
	if err != nil {
		return nil, err
	}

	if published.Valid {
		n.PublishedAt = published.Time
	}
	if err := json.Unmarshal([]byte(metadata), &n.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshal metadata for %s: %w", n.ID, err)
	}
	return n, nil
}
