package app

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"log"
	"time"

	"fridgechef/internal/imagestore"
	"fridgechef/internal/session"
	"fridgechef/internal/sessionstore"
	"fridgechef/internal/types"
)

const imageOpTimeout = 15 * time.Second

// snapshotStore persists session snapshots, offloading raw image bytes to an
// object store so the snapshot store only carries object keys. With no image
// store configured, payloads stay inline in the snapshot.
type snapshotStore struct {
	snaps  *sessionstore.Store
	images imagestore.Store
}

func newSnapshotStore(snaps *sessionstore.Store, images imagestore.Store) *snapshotStore {
	return &snapshotStore{snaps: snaps, images: images}
}

func (s *snapshotStore) Get(id string) (session.Snapshot, bool) {
	snap, ok := s.snaps.Get(id)
	if !ok {
		return session.Snapshot{}, false
	}
	if s.images == nil {
		return snap, true
	}
	ctx, cancel := context.WithTimeout(context.Background(), imageOpTimeout)
	defer cancel()
	for i := range snap.Images {
		img := &snap.Images[i]
		if len(img.Data) > 0 || img.ObjectKey == "" {
			continue
		}
		data, err := s.images.Get(ctx, img.ObjectKey)
		if err != nil {
			log.Printf("snapshot store: load image %s: %v", img.ObjectKey, err)
			continue
		}
		img.Data = data
	}
	return snap, true
}

func (s *snapshotStore) Put(snap session.Snapshot) {
	if s.images != nil {
		ctx, cancel := context.WithTimeout(context.Background(), imageOpTimeout)
		defer cancel()
		for i := range snap.Images {
			img := &snap.Images[i]
			if len(img.Data) == 0 {
				continue
			}
			key := imageObjectKey(snap.ID, *img)
			if img.ObjectKey != key {
				if err := s.images.Put(ctx, key, img.Data, img.MIMEType); err != nil {
					log.Printf("snapshot store: offload image %s: %v", key, err)
					continue
				}
				img.ObjectKey = key
			}
			img.Data = nil
		}
	}
	s.snaps.Put(snap)
}

func (s *snapshotStore) Save() {
	s.snaps.Save()
}

func imageObjectKey(sessionID string, img types.CapturedImage) string {
	sum := sha256.Sum256(img.Data)
	return sessionID + "/" + hex.EncodeToString(sum[:8])
}
