// Package catalogue holds the functional-area list and the asset-type
// catalogue used to seed and classify asset records.
package catalogue

import (
	"sync"

	"github.com/vbonduro/rbaudit/internal/domain"
	"github.com/vbonduro/rbaudit/internal/persist"
)

// DefaultFunctionalAreas is used until a master workbook supplies a list.
var DefaultFunctionalAreas = []string{
	"EXTERNAL FABRIC",
	"MAIN HALL/CLUBROOM",
	"MULTI-PURPOSE AREA",
	"CHILD ACTIVITY AREA",
	"CHANGEROOMS",
	"KITCHENS",
	"OFFICE/MEETING ROOMS",
	"STORE - EXTERNAL",
	"TOILETS - PUBLIC",
	"TOILETS - INTERNAL",
	"PLANT ROOM",
	"INTERNAL - GENERAL",
}

type Store struct {
	mu    sync.RWMutex
	areas []string
	items []domain.CatalogueItem
	saver persist.Saver
}

func New(saver persist.Saver) *Store {
	return &Store{
		areas: append([]string(nil), DefaultFunctionalAreas...),
		saver: saver,
	}
}

func (s *Store) FunctionalAreas() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]string(nil), s.areas...)
}

func (s *Store) Items() []domain.CatalogueItem {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]domain.CatalogueItem(nil), s.items...)
}

// Defaults returns the first functional area and the first catalogue item,
// zero values when the lists are empty.
func (s *Store) Defaults() (area string, item domain.CatalogueItem) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.areas) > 0 {
		area = s.areas[0]
	}
	if len(s.items) > 0 {
		item = s.items[0]
	}
	return area, item
}

// Options returns the distinct "component | group | type" labels in order of
// first appearance.
func (s *Store) Options() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[domain.CatalogueItem]struct{}, len(s.items))
	opts := make([]string, 0, len(s.items))
	for _, it := range s.items {
		if _, dup := seen[it]; dup {
			continue
		}
		seen[it] = struct{}{}
		opts = append(opts, it.Option())
	}
	return opts
}

// ReplaceFunctionalAreas swaps the whole list and persists it.
func (s *Store) ReplaceFunctionalAreas(areas []string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.areas = append([]string(nil), areas...)
	s.saver.Save(persist.KeyFunctionalAreas, append([]string(nil), s.areas...))
}

// ReplaceItems swaps the whole catalogue and persists it.
func (s *Store) ReplaceItems(items []domain.CatalogueItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append([]domain.CatalogueItem(nil), items...)
	s.saver.Save(persist.KeyCatalogue, append([]domain.CatalogueItem(nil), s.items...))
}

// Restore installs previously persisted lists without saving them again. An
// empty area list keeps the defaults.
func (s *Store) Restore(areas []string, items []domain.CatalogueItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(areas) > 0 {
		s.areas = append([]string(nil), areas...)
	}
	if items != nil {
		s.items = append([]domain.CatalogueItem(nil), items...)
	}
}
