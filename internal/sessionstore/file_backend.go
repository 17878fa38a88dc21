package sessionstore

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	"fridgechef/internal/session"
)

func (s *Store) ensureLoadedFile() {
	s.loadOnce.Do(func() {
		b, err := os.ReadFile(s.path)
		if err != nil {
			return
		}
		var rows []session.Snapshot
		if err := json.Unmarshal(b, &rows); err != nil {
			return
		}
		s.mu.Lock()
		defer s.mu.Unlock()
		for _, row := range rows {
			id := strings.TrimSpace(row.ID)
			if id == "" {
				continue
			}
			s.byID[id] = row
		}
	})
}

func (s *Store) saveFile() {
	s.ensureLoadedFile()
	s.mu.RLock()
	rows := make([]session.Snapshot, 0, len(s.byID))
	for _, snap := range s.byID {
		rows = append(rows, snap)
	}
	s.mu.RUnlock()

	b, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return
	}
	_ = os.MkdirAll(filepath.Dir(s.path), 0o755)
	_ = os.WriteFile(s.path, b, 0o644)
}

func (s *Store) getFile(sessionID string) (session.Snapshot, bool) {
	s.ensureLoadedFile()
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return session.Snapshot{}, false
	}
	s.mu.RLock()
	snap, ok := s.byID[id]
	s.mu.RUnlock()
	return snap, ok
}

func (s *Store) putFile(snap session.Snapshot) {
	s.ensureLoadedFile()
	id := strings.TrimSpace(snap.ID)
	if id == "" {
		return
	}
	s.mu.Lock()
	s.byID[id] = snap
	s.mu.Unlock()
}

func (s *Store) deleteFile(sessionID string) {
	s.ensureLoadedFile()
	id := strings.TrimSpace(sessionID)
	if id == "" {
		return
	}
	s.mu.Lock()
	delete(s.byID, id)
	s.mu.Unlock()
}
