package artifactstore

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/tursodatabase/libsql-client-go/libsql"
	_ "modernc.org/sqlite"
)

const Schema = `
CREATE TABLE IF NOT EXISTS artifact (
	kind TEXT NOT NULL,
	key TEXT NOT NULL,
	value TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (kind, key)
);
`

// artifact kinds
const (
	KindAssembledScript = "assembled_script"
	KindDictionary      = "dictionary"
)

// Store is a small json key-value cache for extraction artifacts:
// the assembled script per (documentType, language) and the phrase
// dictionary per language. populate-once, read-many; the only
// invalidation policy is deleting the row (or the file).
type Store struct {
	db *sql.DB
}

func NewStore(database *sql.DB) Store {
	return Store{db: database}
}

// Open opens (or creates) a store at path. `:memory:` works.
func Open(path string) (Store, error) {
	database, err := sql.Open("sqlite", path)
	if err != nil {
		return Store{}, err
	}
	_, err = database.Exec(Schema)
	if err != nil {
		database.Close()
		return Store{}, err
	}
	return Store{db: database}, nil
}

func (s Store) Close() error {
	return s.db.Close()
}

func (s Store) Get(ctx context.Context, kind, key string) (string, bool, error) {
	row := s.db.QueryRowContext(
		ctx,
		`SELECT value FROM artifact WHERE kind = ? AND key = ?`,
		kind, key,
	)
	var value string
	err := row.Scan(&value)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (s Store) Put(ctx context.Context, kind, key, value string) error {
	_, err := s.db.ExecContext(
		ctx,
		`INSERT INTO artifact (kind, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (kind, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		kind, key, value, time.Now().Unix(),
	)
	return err
}

func (s Store) Delete(ctx context.Context, kind, key string) error {
	_, err := s.db.ExecContext(
		ctx,
		`DELETE FROM artifact WHERE kind = ? AND key = ?`,
		kind, key,
	)
	return err
}
