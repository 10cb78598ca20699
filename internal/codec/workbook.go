package codec

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/vbonduro/rbaudit/internal/domain"
)

// ImportMasterWorkbook reads the master template. Each of the Buildings,
// Lists_FunctionalAreas and component sheets is independent: one that is
// missing or yields no rows leaves its MasterData field nil. Component rows
// come from Lists_Components_Detailed when present, else Lists_Components.
func (c *Codec) ImportMasterWorkbook(r io.Reader) (*MasterData, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to open workbook: %v", ErrMalformedInput, err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	has := func(name string) bool { return slices.Contains(sheets, name) }
	md := &MasterData{}

	if has(SheetBuildings) {
		rows, err := f.GetRows(SheetBuildings)
		if err != nil {
			md.Problems = append(md.Problems, fmt.Errorf("failed to read sheet %s: %w", SheetBuildings, err))
		} else {
			md.Buildings = c.parseBuildingRows(rows)
		}
	}

	if has(SheetFunctionalAreas) {
		rows, err := f.GetRows(SheetFunctionalAreas)
		if err != nil {
			md.Problems = append(md.Problems, fmt.Errorf("failed to read sheet %s: %w", SheetFunctionalAreas, err))
		} else {
			md.FunctionalAreas = parseAreaRows(rows)
		}
	}

	componentSheet := ""
	switch {
	case has(SheetComponentsDetailed):
		componentSheet = SheetComponentsDetailed
	case has(SheetComponents):
		componentSheet = SheetComponents
	}
	if componentSheet != "" {
		rows, err := f.GetRows(componentSheet)
		if err != nil {
			md.Problems = append(md.Problems, fmt.Errorf("failed to read sheet %s: %w", componentSheet, err))
		} else {
			md.Catalogue = parseComponentRows(rows)
		}
	}

	return md, nil
}

// parseBuildingRows maps rows by header name. Rows with a blank name are kept,
// unlike the CSV path; only fully blank rows are skipped.
func (c *Codec) parseBuildingRows(rows [][]string) []domain.Building {
	if len(rows) < 2 {
		return nil
	}
	cols := headerIndex(rows[0])
	var out []domain.Building
	for _, row := range rows[1:] {
		if blankRow(row) {
			continue
		}
		b := domain.Building{
			ID:      cell(row, cols, ColBuildingID),
			Name:    cell(row, cols, ColBuildingName),
			Address: cell(row, cols, ColAddress),
			Notes:   cell(row, cols, ColNotes),
		}
		if b.ID == "" {
			b.ID = c.newID()
		}
		out = append(out, b)
	}
	return out
}

// parseAreaRows takes the first cell of every row. The sheet has no header.
func parseAreaRows(rows [][]string) []string {
	var out []string
	for _, row := range rows {
		if len(row) == 0 || strings.TrimSpace(row[0]) == "" {
			continue
		}
		out = append(out, row[0])
	}
	return out
}

func parseComponentRows(rows [][]string) []domain.CatalogueItem {
	if len(rows) < 2 {
		return nil
	}
	cols := headerIndex(rows[0])
	var out []domain.CatalogueItem
	for _, row := range rows[1:] {
		item := domain.CatalogueItem{
			Component: strings.TrimSpace(cell(row, cols, ColComponent)),
			Group:     strings.TrimSpace(cell(row, cols, ColGroup)),
			Type:      strings.TrimSpace(cell(row, cols, ColType)),
		}
		if item.Component == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func headerIndex(header []string) map[string]int {
	cols := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := cols[h]; !dup && h != "" {
			cols[h] = i
		}
	}
	return cols
}

func cell(row []string, cols map[string]int, name string) string {
	i, ok := cols[name]
	if !ok || i >= len(row) {
		return ""
	}
	return row[i]
}

func blankRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
