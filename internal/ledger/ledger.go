// Package ledger holds every asset observation across all buildings.
package ledger

import (
	"sync"

	"github.com/google/uuid"

	"github.com/vbonduro/rbaudit/internal/domain"
	"github.com/vbonduro/rbaudit/internal/persist"
)

// buildingLookup is the subset of registry.Registry the ledger requires.
type buildingLookup interface {
	Current() (domain.Building, bool)
	Get(id string) (domain.Building, bool)
}

// catalogueDefaults is the subset of catalogue.Store the ledger requires.
type catalogueDefaults interface {
	Defaults() (area string, item domain.CatalogueItem)
}

// Ledger keeps records newest first. Per-building views are filtered on read.
type Ledger struct {
	mu        sync.RWMutex
	records   []domain.AssetRecord
	buildings buildingLookup
	catalogue catalogueDefaults
	saver     persist.Saver
	newID     func() string
}

type Option func(*Ledger)

// WithIDGenerator replaces the UUID generator, for deterministic tests.
func WithIDGenerator(fn func() string) Option {
	return func(l *Ledger) { l.newID = fn }
}

func New(buildings buildingLookup, catalogue catalogueDefaults, saver persist.Saver, opts ...Option) *Ledger {
	l := &Ledger{
		buildings: buildings,
		catalogue: catalogue,
		saver:     saver,
		newID:     uuid.NewString,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add creates a record for buildingID seeded from the catalogue defaults and
// returns its id. It does nothing and returns false when no building is
// selected or buildingID is not registered.
func (l *Ledger) Add(buildingID string, isExisting bool) (string, bool) {
	if _, ok := l.buildings.Current(); !ok {
		return "", false
	}
	b, ok := l.buildings.Get(buildingID)
	if !ok {
		return "", false
	}
	area, item := l.catalogue.Defaults()

	rec := domain.AssetRecord{
		ID:             l.newID(),
		BuildingID:     b.ID,
		BuildingName:   b.Name,
		FunctionalArea: area,
		Component:      item.Component,
		Group:          item.Group,
		Type:           item.Type,
		Unit:           domain.Units[0],
		IsExisting:     isExisting,
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append([]domain.AssetRecord{rec}, l.records...)
	l.saveLocked()
	return rec.ID, true
}

// Update merges patch into the record with id. Unknown ids are ignored.
func (l *Ledger) Update(id string, patch domain.AssetPatch) (domain.AssetRecord, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.indexLocked(id)
	if idx < 0 {
		return domain.AssetRecord{}, false
	}
	updated := patch.Apply(l.records[idx])
	l.records[idx] = updated
	l.saveLocked()
	return updated, true
}

// Remove deletes the record with id. Unknown ids are ignored.
func (l *Ledger) Remove(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	idx := l.indexLocked(id)
	if idx < 0 {
		return false
	}
	l.records = append(l.records[:idx], l.records[idx+1:]...)
	l.saveLocked()
	return true
}

func (l *Ledger) Get(id string) (domain.AssetRecord, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	if idx := l.indexLocked(id); idx >= 0 {
		return l.records[idx], true
	}
	return domain.AssetRecord{}, false
}

func (l *Ledger) All() []domain.AssetRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.snapshotLocked()
}

func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.records)
}

// Replace swaps every record and persists the result.
func (l *Ledger) Replace(records []domain.AssetRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append([]domain.AssetRecord(nil), records...)
	l.saveLocked()
}

// Restore installs persisted records without saving them again.
func (l *Ledger) Restore(records []domain.AssetRecord) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.records = append([]domain.AssetRecord(nil), records...)
}

// ForBuilding returns the building's records, newest first.
func (l *Ledger) ForBuilding(buildingID string) []domain.AssetRecord {
	return l.filter(func(r domain.AssetRecord) bool { return r.BuildingID == buildingID })
}

func (l *Ledger) ExistingFor(buildingID string) []domain.AssetRecord {
	return l.filter(func(r domain.AssetRecord) bool { return r.BuildingID == buildingID && r.IsExisting })
}

func (l *Ledger) NewFor(buildingID string) []domain.AssetRecord {
	return l.filter(func(r domain.AssetRecord) bool { return r.BuildingID == buildingID && !r.IsExisting })
}

// ProgressForBuilding is the percentage, rounded half up, of the building's
// records with both conditions scored. A building without records is at 0.
func (l *Ledger) ProgressForBuilding(buildingID string) int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	total, rated := 0, 0
	for _, r := range l.records {
		if r.BuildingID != buildingID {
			continue
		}
		total++
		if r.Rated() {
			rated++
		}
	}
	if total == 0 {
		return 0
	}
	return (200*rated + total) / (2 * total)
}

// Partition splits every record by IsExisting, preserving order.
func (l *Ledger) Partition() (existing, created []domain.AssetRecord) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	for _, r := range l.records {
		if r.IsExisting {
			existing = append(existing, r)
		} else {
			created = append(created, r)
		}
	}
	return existing, created
}

func (l *Ledger) filter(keep func(domain.AssetRecord) bool) []domain.AssetRecord {
	l.mu.RLock()
	defer l.mu.RUnlock()
	var out []domain.AssetRecord
	for _, r := range l.records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

func (l *Ledger) indexLocked(id string) int {
	for i, r := range l.records {
		if r.ID == id {
			return i
		}
	}
	return -1
}

// saveLocked queues the current records while the write lock is held, so
// saves reach the mirror in mutation order.
func (l *Ledger) saveLocked() {
	l.saver.Save(persist.KeyAssets, l.snapshotLocked())
}

func (l *Ledger) snapshotLocked() []domain.AssetRecord {
	return append([]domain.AssetRecord(nil), l.records...)
}
