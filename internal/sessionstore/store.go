// Package sessionstore persists session snapshots so clients can resume
// after a reconnect or process restart. The default backend is a JSON file;
// setting SESSION_STORE_PG_DSN selects Postgres instead.
package sessionstore

import (
	"database/sql"
	"os"
	"strings"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	_ "github.com/jackc/pgx/v5/stdlib"

	"fridgechef/internal/session"
)

const snapshotCacheSize = 512

type Store struct {
	path string
	db   *sql.DB

	loadOnce sync.Once
	mu       sync.RWMutex
	byID     map[string]session.Snapshot

	schemaOnce sync.Once
	schemaErr  error

	// snapCache fronts the Postgres read path only; the file backend is
	// already memory-resident.
	snapCache *lru.Cache[string, session.Snapshot]
}

func New(path string) *Store {
	return &Store{
		path: path,
		byID: make(map[string]session.Snapshot),
	}
}

func NewPostgres(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", strings.TrimSpace(dsn))
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, err
	}
	cache, err := lru.New[string, session.Snapshot](snapshotCacheSize)
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db, snapCache: cache}, nil
}

// NewFromEnv prefers Postgres when SESSION_STORE_PG_DSN is set and falls
// back to the file backend at path.
func NewFromEnv(path string) *Store {
	dsn := strings.TrimSpace(os.Getenv("SESSION_STORE_PG_DSN"))
	if dsn == "" {
		return New(path)
	}
	s, err := NewPostgres(dsn)
	if err != nil {
		return New(path)
	}
	return s
}

func (s *Store) Get(sessionID string) (session.Snapshot, bool) {
	if s == nil {
		return session.Snapshot{}, false
	}
	if s.db != nil {
		return s.getDB(sessionID)
	}
	return s.getFile(sessionID)
}

func (s *Store) Put(snap session.Snapshot) {
	if s == nil {
		return
	}
	if s.db != nil {
		s.putDB(snap)
		return
	}
	s.putFile(snap)
}

// Save flushes the file backend to disk. The Postgres backend writes
// through on Put, so Save is a no-op there.
func (s *Store) Save() {
	if s == nil || s.db != nil {
		return
	}
	s.saveFile()
}

func (s *Store) Delete(sessionID string) {
	if s == nil {
		return
	}
	if s.db != nil {
		s.deleteDB(sessionID)
		return
	}
	s.deleteFile(sessionID)
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}
