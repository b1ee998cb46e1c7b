package store

import (
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"puja-booking-api/internal/models"
)

// Snapshot is an immutable view of the catalog at one point in time.
type Snapshot struct {
	Records []models.ServiceRecord
	Version uint64
	// Fingerprint hashes the record contents. Equal catalogs share it
	// across processes; Version does not.
	Fingerprint string
	LoadedAt    time.Time
	byID        map[int64]int
}

// Get returns the record with the given id.
func (s *Snapshot) Get(id int64) (models.ServiceRecord, bool) {
	if s == nil {
		return models.ServiceRecord{}, false
	}
	idx, ok := s.byID[id]
	if !ok {
		return models.ServiceRecord{}, false
	}
	return s.Records[idx], true
}

// CatalogStore holds the current catalog snapshot. Replace swaps the whole
// snapshot; readers never observe a partially updated catalog.
type CatalogStore struct {
	mu      sync.RWMutex
	current *Snapshot
	now     func() time.Time
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{now: time.Now}
}

// Replace installs records as the new snapshot and returns its version.
// The store keeps its own copy of the slice.
func (s *CatalogStore) Replace(records []models.ServiceRecord) uint64 {
	owned := make([]models.ServiceRecord, len(records))
	copy(owned, records)

	byID := make(map[int64]int, len(owned))
	for i, r := range owned {
		byID[r.ID] = i
	}
	fp := fingerprint(owned)

	s.mu.Lock()
	defer s.mu.Unlock()

	var version uint64 = 1
	if s.current != nil {
		version = s.current.Version + 1
	}
	s.current = &Snapshot{
		Records:     owned,
		Version:     version,
		Fingerprint: fp,
		LoadedAt:    s.now(),
		byID:        byID,
	}
	return version
}

func fingerprint(records []models.ServiceRecord) string {
	d := xxhash.New()
	enc := json.NewEncoder(d)
	for _, r := range records {
		_ = enc.Encode(r)
	}
	return fmt.Sprintf("%016x", d.Sum64())
}

// Snapshot returns the current snapshot, or nil before the first load.
// Callers must not modify the returned records.
func (s *CatalogStore) Snapshot() *Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current
}

// Loaded reports whether a snapshot has been installed.
func (s *CatalogStore) Loaded() bool {
	return s.Snapshot() != nil
}
