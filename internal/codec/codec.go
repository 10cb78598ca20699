// Package codec converts between the audit records and the spreadsheet files
// exchanged with the office: a buildings CSV, the master template workbook,
// and the consolidated export workbook.
package codec

import (
	"errors"

	"github.com/google/uuid"

	"github.com/vbonduro/rbaudit/internal/domain"
)

// ErrMalformedInput marks a file that could not be parsed at all.
var ErrMalformedInput = errors.New("malformed input")

// Sheet and column names shared by import and export.
const (
	SheetBuildings          = "Buildings"
	SheetAssetsExisting     = "Assets_Existing"
	SheetAssetsNew          = "Assets_New"
	SheetFunctionalAreas    = "Lists_FunctionalAreas"
	SheetComponentsDetailed = "Lists_Components_Detailed"
	SheetComponents         = "Lists_Components"

	ColBuildingID   = "BuildingID"
	ColBuildingName = "BuildingName"
	ColAddress      = "Address"
	ColSuburb       = "Suburb"
	ColNotes        = "Notes"

	ColComponent = "Building Component"
	ColGroup     = "Asset Group"
	ColType      = "Asset Type"
)

// ContentType is the MIME type of exported workbooks.
const ContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

var buildingHeaders = []string{ColBuildingID, ColBuildingName, ColAddress, ColNotes}

// assetHeaders is consumed positionally by the report generator.
var assetHeaders = []string{
	"BuildingID",
	"BuildingName",
	"FunctionalArea",
	"BuildingComponent",
	"AssetGroup",
	"AssetType",
	"QuantityOrArea",
	"Unit",
	"Condition_Functionality_1to5",
	"Condition_Aesthetics_1to5",
	"Defects_Notes",
	"PhotoFilename",
	"Geo_X",
	"Geo_Y",
	"FunctionalAreaPolygonID",
}

var componentHeaders = []string{ColComponent, ColGroup, ColType}

// AssetHeaders returns the column headers of the asset sheets.
func AssetHeaders() []string {
	return append([]string(nil), assetHeaders...)
}

// Codec parses and writes audit spreadsheets. Buildings without an id get one
// from the id generator.
type Codec struct {
	newID func() string
}

type Option func(*Codec)

// WithIDGenerator replaces the UUID generator, for deterministic tests.
func WithIDGenerator(fn func() string) Option {
	return func(c *Codec) { c.newID = fn }
}

func New(opts ...Option) *Codec {
	c := &Codec{newID: uuid.NewString}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// MasterData is what a master workbook provided. A nil field means the sheet
// was missing, unreadable or empty, and the existing collection should stay.
type MasterData struct {
	Buildings       []domain.Building
	FunctionalAreas []string
	Catalogue       []domain.CatalogueItem
	// Problems lists sheets that were present but could not be read.
	Problems []error
}

// Dataset is everything written to an export workbook.
type Dataset struct {
	Buildings       []domain.Building
	Assets          []domain.AssetRecord
	FunctionalAreas []string
	Catalogue       []domain.CatalogueItem
}
