// Package registry holds the buildings under audit and which one is selected.
package registry

import (
	"sync"

	"github.com/vbonduro/rbaudit/internal/domain"
	"github.com/vbonduro/rbaudit/internal/persist"
)

// Registry is the building list plus the current selection. The selection is
// session state and is never persisted.
type Registry struct {
	mu        sync.RWMutex
	buildings []domain.Building
	currentID string
	saver     persist.Saver
}

func New(saver persist.Saver) *Registry {
	return &Registry{saver: saver}
}

func (r *Registry) List() []domain.Building {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]domain.Building(nil), r.buildings...)
}

func (r *Registry) Get(id string) (domain.Building, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.find(id)
}

// Current returns the selected building, or false when nothing is selected or
// the selected id is not registered.
func (r *Registry) Current() (domain.Building, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.currentID == "" {
		return domain.Building{}, false
	}
	return r.find(r.currentID)
}

// CurrentID returns the raw selection, which may not match any building.
func (r *Registry) CurrentID() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.currentID
}

// Select sets the current building without checking that it exists.
func (r *Registry) Select(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.currentID = id
}

// Replace swaps the building list and persists it. The selection is left
// alone.
func (r *Registry) Replace(buildings []domain.Building) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buildings = append([]domain.Building(nil), buildings...)
	r.saver.Save(persist.KeyBuildings, append([]domain.Building(nil), r.buildings...))
}

// Restore installs persisted buildings without saving them again.
func (r *Registry) Restore(buildings []domain.Building) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.buildings = append([]domain.Building(nil), buildings...)
}

func (r *Registry) find(id string) (domain.Building, bool) {
	for _, b := range r.buildings {
		if b.ID == id {
			return b, true
		}
	}
	return domain.Building{}, false
}
