package codec

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"github.com/vbonduro/rbaudit/internal/domain"
)

var assetColWidths = []float64{14, 24, 20, 22, 18, 18, 14, 8, 12, 12, 30, 28, 12, 12, 14}

// ExportWorkbook writes the dataset as a workbook with the sheets Buildings,
// Assets_Existing, Assets_New, Lists_FunctionalAreas and
// Lists_Components_Detailed, in that order. Every sheet except the area list
// gets its header row even when it has no data.
func (c *Codec) ExportWorkbook(w io.Writer, d Dataset) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetBuildings); err != nil {
		return fmt.Errorf("failed to rename default sheet: %w", err)
	}
	for _, name := range []string{SheetAssetsExisting, SheetAssetsNew, SheetFunctionalAreas, SheetComponentsDetailed} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("failed to create sheet %s: %w", name, err)
		}
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 11},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"#D9E1F2"}},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
	})
	if err != nil {
		return fmt.Errorf("failed to create header style: %w", err)
	}
	sw := &sheetWriter{f: f, headerStyle: headerStyle}

	sw.header(SheetBuildings, buildingHeaders)
	for i, b := range d.Buildings {
		sw.row(SheetBuildings, i+2, []any{b.ID, b.Name, b.Address, b.Notes})
	}

	existing, created := partition(d.Assets)
	for _, part := range []struct {
		sheet   string
		records []domain.AssetRecord
	}{
		{SheetAssetsExisting, existing},
		{SheetAssetsNew, created},
	} {
		sw.header(part.sheet, assetHeaders)
		for i, rec := range part.records {
			sw.row(part.sheet, i+2, assetRow(rec))
		}
		sw.widths(part.sheet, assetColWidths)
	}

	for i, area := range d.FunctionalAreas {
		sw.row(SheetFunctionalAreas, i+1, []any{area})
	}

	sw.header(SheetComponentsDetailed, componentHeaders)
	for i, item := range d.Catalogue {
		sw.row(SheetComponentsDetailed, i+2, []any{item.Component, item.Group, item.Type})
	}

	if sw.err != nil {
		return sw.err
	}
	f.SetActiveSheet(0)
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}

// ExportWorkbookBytes is ExportWorkbook into memory.
func (c *Codec) ExportWorkbookBytes(d Dataset) ([]byte, error) {
	var buf bytes.Buffer
	if err := c.ExportWorkbook(&buf, d); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// assetRow follows assetHeaders. Unset conditions are written as empty cells.
func assetRow(rec domain.AssetRecord) []any {
	return []any{
		rec.BuildingID,
		rec.BuildingName,
		rec.FunctionalArea,
		rec.Component,
		rec.Group,
		rec.Type,
		rec.Qty,
		rec.Unit,
		conditionCell(rec.FuncCond),
		conditionCell(rec.AesthCond),
		rec.Defects,
		rec.PhotoName,
		rec.GeoX,
		rec.GeoY,
		rec.PolygonID,
	}
}

func conditionCell(c domain.Condition) any {
	if v, ok := c.Value(); ok {
		return v
	}
	return nil
}

func partition(records []domain.AssetRecord) (existing, created []domain.AssetRecord) {
	for _, r := range records {
		if r.IsExisting {
			existing = append(existing, r)
		} else {
			created = append(created, r)
		}
	}
	return existing, created
}

// sheetWriter keeps the first error so the export reads top to bottom.
type sheetWriter struct {
	f           *excelize.File
	headerStyle int
	err         error
}

func (s *sheetWriter) header(sheet string, headers []string) {
	cells := make([]any, len(headers))
	for i, h := range headers {
		cells[i] = h
	}
	s.row(sheet, 1, cells)
	if s.err != nil {
		return
	}
	last, err := excelize.ColumnNumberToName(len(headers))
	if err != nil {
		s.err = fmt.Errorf("failed to style header of %s: %w", sheet, err)
		return
	}
	if err := s.f.SetCellStyle(sheet, "A1", last+"1", s.headerStyle); err != nil {
		s.err = fmt.Errorf("failed to style header of %s: %w", sheet, err)
	}
}

func (s *sheetWriter) row(sheet string, n int, cells []any) {
	if s.err != nil {
		return
	}
	if err := s.f.SetSheetRow(sheet, fmt.Sprintf("A%d", n), &cells); err != nil {
		s.err = fmt.Errorf("failed to write row %d of %s: %w", n, sheet, err)
	}
}

func (s *sheetWriter) widths(sheet string, widths []float64) {
	if s.err != nil {
		return
	}
	for i, w := range widths {
		col, _ := excelize.ColumnNumberToName(i + 1)
		if err := s.f.SetColWidth(sheet, col, col, w); err != nil {
			s.err = fmt.Errorf("failed to size column %s of %s: %w", col, sheet, err)
			return
		}
	}
}
