package domain

import "strings"

type Building struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Address string `json:"address,omitempty"`
	Notes   string `json:"notes,omitempty"`
}

type CatalogueItem struct {
	Component string `json:"component"`
	Group     string `json:"group"`
	Type      string `json:"type"`
}

// catalogueOptionSep joins the triple into a single selectable label.
const catalogueOptionSep = " | "

// Option returns the display label used to pick this item as a unit.
func (c CatalogueItem) Option() string {
	return c.Component + catalogueOptionSep + c.Group + catalogueOptionSep + c.Type
}

// ParseCatalogueOption splits a label produced by Option back into its triple.
// Missing parts are left empty.
func ParseCatalogueOption(s string) CatalogueItem {
	parts := strings.Split(s, catalogueOptionSep)
	var item CatalogueItem
	if len(parts) > 0 {
		item.Component = strings.TrimSpace(parts[0])
	}
	if len(parts) > 1 {
		item.Group = strings.TrimSpace(parts[1])
	}
	if len(parts) > 2 {
		item.Type = strings.TrimSpace(parts[2])
	}
	return item
}

type Unit = string

const (
	UnitNumber      Unit = "No"
	UnitSquareMetre Unit = "m²"
	UnitLinearMetre Unit = "lm"
	UnitCubicMetre  Unit = "m³"
	UnitPair        Unit = "pair"
	UnitSet         Unit = "set"
)

// Units lists the selectable units in display order. The first is the default.
var Units = []Unit{UnitNumber, UnitSquareMetre, UnitLinearMetre, UnitCubicMetre, UnitPair, UnitSet}

// AssetRecord is one condition observation. BuildingName is a snapshot taken
// when the record was created and is not kept in sync with the building.
type AssetRecord struct {
	ID             string    `json:"id"`
	BuildingID     string    `json:"buildingId"`
	BuildingName   string    `json:"buildingName"`
	FunctionalArea string    `json:"functionalArea"`
	Component      string    `json:"component"`
	Group          string    `json:"group"`
	Type           string    `json:"type"`
	Qty            string    `json:"qty"`
	Unit           Unit      `json:"unit"`
	FuncCond       Condition `json:"funcCond"`
	AesthCond      Condition `json:"aesthCond"`
	Defects        string    `json:"defects"`
	PhotoName      string    `json:"photoName"`
	GeoX           string    `json:"geoX"`
	GeoY           string    `json:"geoY"`
	PolygonID      string    `json:"polygonId"`
	IsExisting     bool      `json:"isExisting"`
}

// Rated reports whether both condition scores have been recorded.
func (a AssetRecord) Rated() bool {
	return a.FuncCond.IsSet() && a.AesthCond.IsSet()
}

// AssetPatch carries the editable fields of an AssetRecord. Nil fields are
// left unchanged. Identity, building and IsExisting are not editable.
type AssetPatch struct {
	FunctionalArea *string
	Component      *string
	Group          *string
	Type           *string
	Qty            *string
	Unit           *Unit
	FuncCond       *Condition
	AesthCond      *Condition
	Defects        *string
	PhotoName      *string
	GeoX           *string
	GeoY           *string
	PolygonID      *string
}

// Apply merges the patch into rec and returns the result.
func (p AssetPatch) Apply(rec AssetRecord) AssetRecord {
	setString(&rec.FunctionalArea, p.FunctionalArea)
	setString(&rec.Component, p.Component)
	setString(&rec.Group, p.Group)
	setString(&rec.Type, p.Type)
	setString(&rec.Qty, p.Qty)
	setString(&rec.Unit, p.Unit)
	if p.FuncCond != nil {
		rec.FuncCond = *p.FuncCond
	}
	if p.AesthCond != nil {
		rec.AesthCond = *p.AesthCond
	}
	setString(&rec.Defects, p.Defects)
	setString(&rec.PhotoName, p.PhotoName)
	setString(&rec.GeoX, p.GeoX)
	setString(&rec.GeoY, p.GeoY)
	setString(&rec.PolygonID, p.PolygonID)
	return rec
}

func setString(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}

// PhotoName returns the deterministic attachment name for a record's photo.
func PhotoName(recordID, originalFilename string) string {
	return recordID + "_" + originalFilename
}
