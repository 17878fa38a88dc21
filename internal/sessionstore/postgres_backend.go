package sessionstore

import (
	"encoding/json"
	"strings"

	"fridgechef/internal/session"
)

func (s *Store) ensureSchema() error {
	if s == nil || s.db == nil {
		return nil
	}
	s.schemaOnce.Do(func() {
		_, s.schemaErr = s.db.Exec(`
CREATE TABLE IF NOT EXISTS sessions (
  session_id TEXT PRIMARY KEY,
  phase TEXT NOT NULL DEFAULT 'idle',
  snapshot JSONB NOT NULL,
  updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
);
CREATE INDEX IF NOT EXISTS idx_sessions_updated_at ON sessions (updated_at);
`)
	})
	return s.schemaErr
}

func (s *Store) getDB(sessionID string) (session.Snapshot, bool) {
	if err := s.ensureSchema(); err != nil {
		return session.Snapshot{}, false
	}
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return session.Snapshot{}, false
	}
	if s.snapCache != nil {
		if cached, ok := s.snapCache.Get(id); ok {
			return cached, true
		}
	}

	var raw []byte
	row := s.db.QueryRow(`SELECT snapshot FROM sessions WHERE session_id = $1`, id)
	if err := row.Scan(&raw); err != nil {
		return session.Snapshot{}, false
	}
	var snap session.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		return session.Snapshot{}, false
	}
	snap.ID = id
	if s.snapCache != nil {
		s.snapCache.Add(id, snap)
	}
	return snap, true
}

func (s *Store) putDB(snap session.Snapshot) {
	if err := s.ensureSchema(); err != nil {
		return
	}
	id := strings.TrimSpace(snap.ID)
	if id == "" {
		return
	}
	raw, err := json.Marshal(snap)
	if err != nil {
		return
	}
	_, err = s.db.Exec(`
INSERT INTO sessions (session_id, phase, snapshot, updated_at)
VALUES ($1, $2, $3, NOW())
ON CONFLICT (session_id)
DO UPDATE SET phase=EXCLUDED.phase,
  snapshot=EXCLUDED.snapshot,
  updated_at=NOW()`,
		id, string(snap.Phase), raw)
	if err == nil && s.snapCache != nil {
		s.snapCache.Remove(id)
	}
}

func (s *Store) deleteDB(sessionID string) {
	if err := s.ensureSchema(); err != nil {
		return
	}
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return
	}
	_, _ = s.db.Exec(`DELETE FROM sessions WHERE session_id = $1`, id)
	if s.snapCache != nil {
		s.snapCache.Remove(id)
	}
}
