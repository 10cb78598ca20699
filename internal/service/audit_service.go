package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"path"
	"strconv"
	"strings"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/vbonduro/rbaudit/internal/codec"
	"github.com/vbonduro/rbaudit/internal/domain"
	"github.com/vbonduro/rbaudit/internal/persist"
	"github.com/vbonduro/rbaudit/internal/photostore"
)

var (
	ErrNoCurrentBuilding = errors.New("no building selected")
	ErrAssetNotFound     = errors.New("asset not found")
	ErrNoPhoto           = errors.New("asset has no photo")
)

// buildingRegistry is the subset of registry.Registry that AuditService requires.
type buildingRegistry interface {
	List() []domain.Building
	Get(id string) (domain.Building, bool)
	Current() (domain.Building, bool)
	Select(id string)
	Replace(buildings []domain.Building)
	Restore(buildings []domain.Building)
}

// catalogueStore is the subset of catalogue.Store that AuditService requires.
type catalogueStore interface {
	FunctionalAreas() []string
	Items() []domain.CatalogueItem
	Options() []string
	ReplaceFunctionalAreas(areas []string)
	ReplaceItems(items []domain.CatalogueItem)
	Restore(areas []string, items []domain.CatalogueItem)
}

// assetLedger is the subset of ledger.Ledger that AuditService requires.
type assetLedger interface {
	Add(buildingID string, isExisting bool) (string, bool)
	Update(id string, patch domain.AssetPatch) (domain.AssetRecord, bool)
	Remove(id string) bool
	Get(id string) (domain.AssetRecord, bool)
	All() []domain.AssetRecord
	ExistingFor(buildingID string) []domain.AssetRecord
	NewFor(buildingID string) []domain.AssetRecord
	ProgressForBuilding(buildingID string) int
	Restore(records []domain.AssetRecord)
}

type flusher interface {
	Flush()
}

type auditMetrics interface {
	Import(kind string, err error)
	ImportedRows(collection string, n int)
	Export()
	PhotoUpload(err error)
}

type AuditService struct {
	buildings buildingRegistry
	catalogue catalogueStore
	assets    assetLedger
	codec     *codec.Codec
	photos    photostore.PhotoStore
	gateway   persist.Gateway
	mirror    flusher
	metrics   auditMetrics
	logger    *zap.Logger
}

func NewAuditService(
	buildings buildingRegistry,
	catalogue catalogueStore,
	assets assetLedger,
	sheets *codec.Codec,
	photos photostore.PhotoStore,
	gateway persist.Gateway,
	mirror flusher,
	metrics auditMetrics,
	logger *zap.Logger,
) *AuditService {
	return &AuditService{
		buildings: buildings,
		catalogue: catalogue,
		assets:    assets,
		codec:     sheets,
		photos:    photos,
		gateway:   gateway,
		mirror:    mirror,
		metrics:   metrics,
		logger:    logger,
	}
}

// Init restores the persisted collections. Keys are loaded concurrently and
// whatever loaded is installed even when another key failed.
func (s *AuditService) Init(ctx context.Context) error {
	var (
		buildings []domain.Building
		records   []domain.AssetRecord
		items     []domain.CatalogueItem
		areas     []string
	)

	var g errgroup.Group
	g.Go(func() error { return s.loadCollection(ctx, persist.KeyBuildings, &buildings) })
	g.Go(func() error { return s.loadCollection(ctx, persist.KeyAssets, &records) })
	g.Go(func() error { return s.loadCollection(ctx, persist.KeyCatalogue, &items) })
	g.Go(func() error { return s.loadCollection(ctx, persist.KeyFunctionalAreas, &areas) })
	err := g.Wait()

	s.buildings.Restore(buildings)
	s.assets.Restore(records)
	s.catalogue.Restore(areas, items)

	s.logger.Info("restored collections",
		zap.Int("buildings", len(buildings)),
		zap.Int("assets", len(records)),
		zap.Int("catalogue", len(items)),
		zap.Int("functional_areas", len(areas)),
	)
	if err != nil {
		return fmt.Errorf("failed to restore collections: %w", err)
	}
	return nil
}

// loadCollection decodes key into dst. A corrupt value is logged and skipped.
func (s *AuditService) loadCollection(ctx context.Context, key string, dst any) error {
	data, ok, err := s.gateway.Load(ctx, key)
	if err != nil {
		return fmt.Errorf("failed to load %s: %w", key, err)
	}
	if !ok {
		return nil
	}
	if err := json.Unmarshal(data, dst); err != nil {
		s.logger.Warn("discarding unreadable collection", zap.String("key", key), zap.Error(err))
	}
	return nil
}

// Flush waits for queued writes to reach storage.
func (s *AuditService) Flush() {
	s.mirror.Flush()
}

// ImportSummary reports what an import replaced. A zero count means the
// collection was left as it was.
type ImportSummary struct {
	Buildings       int      `json:"buildings"`
	FunctionalAreas int      `json:"functionalAreas"`
	Catalogue       int      `json:"catalogue"`
	Skipped         []string `json:"skipped,omitempty"`
}

// ImportBuildingsCSV replaces the building registry from a CSV and selects the
// first building. Malformed input and files without usable rows leave the
// registry untouched.
func (s *AuditService) ImportBuildingsCSV(ctx context.Context, r io.Reader) ImportSummary {
	var summary ImportSummary
	buildings, err := s.codec.ImportBuildingsCSV(r)
	s.metrics.Import("csv", err)
	if err != nil {
		s.logger.Warn("buildings csv rejected", zap.Error(err))
		summary.Skipped = append(summary.Skipped, "buildings: "+err.Error())
		return summary
	}
	if len(buildings) == 0 {
		summary.Skipped = append(summary.Skipped, "buildings: no rows with a BuildingName")
		return summary
	}

	s.buildings.Replace(buildings)
	s.buildings.Select(buildings[0].ID)
	s.metrics.ImportedRows(persist.KeyBuildings, len(buildings))
	summary.Buildings = len(buildings)
	s.logger.Info("imported buildings csv", zap.Int("buildings", len(buildings)))
	return summary
}

// ImportWorkbook applies each sheet of a master workbook independently, in
// the order buildings, functional areas, catalogue. The three replacements
// are not atomic as a group.
func (s *AuditService) ImportWorkbook(ctx context.Context, r io.Reader) ImportSummary {
	var summary ImportSummary
	md, err := s.codec.ImportMasterWorkbook(r)
	s.metrics.Import("workbook", err)
	if err != nil {
		s.logger.Warn("workbook rejected", zap.Error(err))
		summary.Skipped = append(summary.Skipped, "workbook: "+err.Error())
		return summary
	}
	for _, p := range md.Problems {
		s.logger.Warn("workbook sheet skipped", zap.Error(p))
		summary.Skipped = append(summary.Skipped, p.Error())
	}

	if len(md.Buildings) > 0 {
		s.buildings.Replace(md.Buildings)
		s.buildings.Select(md.Buildings[0].ID)
		s.metrics.ImportedRows(persist.KeyBuildings, len(md.Buildings))
		summary.Buildings = len(md.Buildings)
	}
	if len(md.FunctionalAreas) > 0 {
		s.catalogue.ReplaceFunctionalAreas(md.FunctionalAreas)
		s.metrics.ImportedRows(persist.KeyFunctionalAreas, len(md.FunctionalAreas))
		summary.FunctionalAreas = len(md.FunctionalAreas)
	}
	if len(md.Catalogue) > 0 {
		s.catalogue.ReplaceItems(md.Catalogue)
		s.metrics.ImportedRows(persist.KeyCatalogue, len(md.Catalogue))
		summary.Catalogue = len(md.Catalogue)
	}

	s.logger.Info("imported workbook",
		zap.Int("buildings", summary.Buildings),
		zap.Int("functional_areas", summary.FunctionalAreas),
		zap.Int("catalogue", summary.Catalogue),
		zap.Int("skipped", len(summary.Skipped)),
	)
	return summary
}

// Export writes every collection as a workbook. It reads only in-memory
// state, so it works while storage is failing.
func (s *AuditService) Export(ctx context.Context, w io.Writer) error {
	d := codec.Dataset{
		Buildings:       s.buildings.List(),
		Assets:          s.assets.All(),
		FunctionalAreas: s.catalogue.FunctionalAreas(),
		Catalogue:       s.catalogue.Items(),
	}
	if err := s.codec.ExportWorkbook(w, d); err != nil {
		return fmt.Errorf("failed to export workbook: %w", err)
	}
	s.metrics.Export()
	s.logger.Info("exported workbook", zap.Int("buildings", len(d.Buildings)), zap.Int("assets", len(d.Assets)))
	return nil
}

func (s *AuditService) Buildings() []domain.Building {
	return s.buildings.List()
}

func (s *AuditService) FunctionalAreas() []string {
	return s.catalogue.FunctionalAreas()
}

// CatalogueOptions returns the selectable catalogue labels.
func (s *AuditService) CatalogueOptions() []string {
	return s.catalogue.Options()
}

func (s *AuditService) CatalogueItems() []domain.CatalogueItem {
	return s.catalogue.Items()
}

func (s *AuditService) Assets() []domain.AssetRecord {
	return s.assets.All()
}

// SelectBuilding changes the current building. Unknown ids leave no building
// current.
func (s *AuditService) SelectBuilding(id string) BuildingView {
	s.buildings.Select(id)
	return s.CurrentView()
}

// BuildingView is the current building with its records split into the two
// audit sections.
type BuildingView struct {
	Building *domain.Building     `json:"building"`
	Progress int                  `json:"progress"`
	Existing []domain.AssetRecord `json:"existing"`
	New      []domain.AssetRecord `json:"new"`
}

func (s *AuditService) CurrentView() BuildingView {
	b, ok := s.buildings.Current()
	if !ok {
		return BuildingView{Existing: []domain.AssetRecord{}, New: []domain.AssetRecord{}}
	}
	return BuildingView{
		Building: &b,
		Progress: s.assets.ProgressForBuilding(b.ID),
		Existing: nonNil(s.assets.ExistingFor(b.ID)),
		New:      nonNil(s.assets.NewFor(b.ID)),
	}
}

// AddAsset creates a record for the current building.
func (s *AuditService) AddAsset(isExisting bool) (domain.AssetRecord, error) {
	b, ok := s.buildings.Current()
	if !ok {
		return domain.AssetRecord{}, ErrNoCurrentBuilding
	}
	id, ok := s.assets.Add(b.ID, isExisting)
	if !ok {
		return domain.AssetRecord{}, ErrNoCurrentBuilding
	}
	rec, _ := s.assets.Get(id)
	s.logger.Debug("asset added", zap.String("asset_id", id), zap.String("building_id", b.ID), zap.Bool("existing", isExisting))
	return rec, nil
}

func (s *AuditService) UpdateAsset(id string, patch domain.AssetPatch) (domain.AssetRecord, error) {
	rec, ok := s.assets.Update(id, patch)
	if !ok {
		return domain.AssetRecord{}, ErrAssetNotFound
	}
	return rec, nil
}

// RemoveAsset deletes the record and, best effort, its photo. Removing an
// unknown id is a no-op.
func (s *AuditService) RemoveAsset(ctx context.Context, id string) {
	rec, ok := s.assets.Get(id)
	if !ok || !s.assets.Remove(id) {
		return
	}
	if rec.PhotoName == "" {
		return
	}
	if err := s.photos.Delete(ctx, rec.PhotoName); err != nil {
		s.logger.Warn("failed to delete photo of removed asset", zap.String("asset_id", id), zap.String("photo", rec.PhotoName), zap.Error(err))
	}
}

// AttachPhoto stores the photo as <id>_<filename> and records the name on the
// asset. Photos for unknown assets are not stored.
func (s *AuditService) AttachPhoto(ctx context.Context, id, filename, mimeType string, r io.Reader) (domain.AssetRecord, error) {
	if _, ok := s.assets.Get(id); !ok {
		return domain.AssetRecord{}, ErrAssetNotFound
	}
	name := domain.PhotoName(id, baseFilename(filename))

	err := s.photos.Save(ctx, name, mimeType, r)
	s.metrics.PhotoUpload(err)
	if err != nil {
		return domain.AssetRecord{}, fmt.Errorf("failed to store photo: %w", err)
	}

	rec, ok := s.assets.Update(id, domain.AssetPatch{PhotoName: &name})
	if !ok {
		// Removed while the upload was in flight.
		if derr := s.photos.Delete(ctx, name); derr != nil {
			s.logger.Warn("failed to delete orphaned photo", zap.String("photo", name), zap.Error(derr))
		}
		return domain.AssetRecord{}, ErrAssetNotFound
	}
	s.logger.Info("photo attached", zap.String("asset_id", id), zap.String("photo", name))
	return rec, nil
}

// Photo opens the asset's attached photo.
func (s *AuditService) Photo(ctx context.Context, id string) (io.ReadCloser, string, error) {
	rec, ok := s.assets.Get(id)
	if !ok {
		return nil, "", ErrAssetNotFound
	}
	if rec.PhotoName == "" {
		return nil, "", ErrNoPhoto
	}
	rc, mimeType, err := s.photos.Get(ctx, rec.PhotoName)
	if err != nil {
		if errors.Is(err, photostore.ErrNotFound) {
			return nil, "", ErrNoPhoto
		}
		return nil, "", fmt.Errorf("failed to read photo: %w", err)
	}
	return rc, mimeType, nil
}

// RecordLocation stores a captured position on the asset as decimal strings.
func (s *AuditService) RecordLocation(id string, longitude, latitude float64) (domain.AssetRecord, error) {
	x := strconv.FormatFloat(longitude, 'f', -1, 64)
	y := strconv.FormatFloat(latitude, 'f', -1, 64)
	rec, ok := s.assets.Update(id, domain.AssetPatch{GeoX: &x, GeoY: &y})
	if !ok {
		return domain.AssetRecord{}, ErrAssetNotFound
	}
	return rec, nil
}

// baseFilename drops any client-side directory, including Windows paths.
func baseFilename(filename string) string {
	if i := strings.LastIndexAny(filename, `/\`); i >= 0 {
		filename = filename[i+1:]
	}
	filename = path.Clean(strings.TrimSpace(filename))
	if filename == "" || filename == "." || filename == ".." {
		return "photo"
	}
	return filename
}

func nonNil(records []domain.AssetRecord) []domain.AssetRecord {
	if records == nil {
		return []domain.AssetRecord{}
	}
	return records
}
