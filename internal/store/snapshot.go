package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mmtigers/questboard/internal/model"
)

const (
	kindSnapshot  = "snapshot"
	kindChronicle = "chronicle"
)

// SnapshotStore keeps the last good server state on disk. The format is
// private to this client; the game server stays the source of truth.
type SnapshotStore struct {
	db *sql.DB
}

func NewSnapshotStore(db *sql.DB) *SnapshotStore {
	return &SnapshotStore{db: db}
}

func (s *SnapshotStore) SaveSnapshot(snap model.Snapshot) error {
	return s.save(kindSnapshot, snap, snap.FetchedAt)
}

func (s *SnapshotStore) LoadSnapshot() (*model.Snapshot, error) {
	var snap model.Snapshot
	ok, err := s.load(kindSnapshot, &snap)
	if err != nil || !ok {
		return nil, err
	}
	return &snap, nil
}

func (s *SnapshotStore) SaveChronicle(c model.Chronicle) error {
	return s.save(kindChronicle, c, c.FetchedAt)
}

func (s *SnapshotStore) LoadChronicle() (*model.Chronicle, error) {
	var c model.Chronicle
	ok, err := s.load(kindChronicle, &c)
	if err != nil || !ok {
		return nil, err
	}
	return &c, nil
}

func (s *SnapshotStore) save(kind string, v any, fetchedAt time.Time) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", kind, err)
	}
	if fetchedAt.IsZero() {
		fetchedAt = time.Now()
	}

	_, err = s.db.Exec(
		`INSERT INTO snapshot_cache (kind, payload, fetched_at, updated_at) VALUES (?, ?, ?, ?)
		 ON CONFLICT(kind) DO UPDATE SET payload = excluded.payload, fetched_at = excluded.fetched_at, updated_at = excluded.updated_at`,
		kind, string(payload), fetchedAt.UTC(), time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("save %s: %w", kind, err)
	}
	return nil
}

func (s *SnapshotStore) load(kind string, v any) (bool, error) {
	var payload string
	err := s.db.QueryRow(`SELECT payload FROM snapshot_cache WHERE kind = ?`, kind).Scan(&payload)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("load %s: %w", kind, err)
	}
	if err := json.Unmarshal([]byte(payload), v); err != nil {
		return false, fmt.Errorf("decode cached %s: %w", kind, err)
	}
	return true, nil
}
