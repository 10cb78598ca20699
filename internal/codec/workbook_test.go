package codec

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vbonduro/rbaudit/internal/domain"
)

type sheetFixture struct {
	name string
	rows [][]any
}

// buildWorkbook writes the sheets in order and returns the file bytes.
func buildWorkbook(t *testing.T, sheets ...sheetFixture) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()

	for i, s := range sheets {
		if i == 0 {
			require.NoError(t, f.SetSheetName("Sheet1", s.name))
		} else {
			_, err := f.NewSheet(s.name)
			require.NoError(t, err)
		}
		for r, row := range s.rows {
			require.NoError(t, f.SetSheetRow(s.name, fmt.Sprintf("A%d", r+1), &row))
		}
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func readSheet(t *testing.T, data []byte, sheet string) [][]string {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(sheet)
	require.NoError(t, err)
	return rows
}

func TestImportMasterWorkbookAllSheets(t *testing.T) {
	data := buildWorkbook(t,
		sheetFixture{name: SheetBuildings, rows: [][]any{
			{"BuildingID", "BuildingName", "Address", "Notes"},
			{"B1", "Coogee Hall", "Coogee", "Alarm code at office"},
			{"B2", "Success Pavilion", "Success", ""},
		}},
		sheetFixture{name: SheetFunctionalAreas, rows: [][]any{
			{"Kitchen"},
			{""},
			{"Toilets"},
		}},
		sheetFixture{name: SheetComponentsDetailed, rows: [][]any{
			{"Building Component", "Asset Group", "Asset Type"},
			{"Roof", "Roofing", "Metal Sheet"},
			{"", "Ignored", "Row"},
			{"Floor", "Finishes", "Vinyl"},
		}},
	)

	md, err := newTestCodec().ImportMasterWorkbook(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []domain.Building{
		{ID: "B1", Name: "Coogee Hall", Address: "Coogee", Notes: "Alarm code at office"},
		{ID: "B2", Name: "Success Pavilion", Address: "Success"},
	}, md.Buildings)
	assert.Equal(t, []string{"Kitchen", "Toilets"}, md.FunctionalAreas)
	assert.Equal(t, []domain.CatalogueItem{
		{Component: "Roof", Group: "Roofing", Type: "Metal Sheet"},
		{Component: "Floor", Group: "Finishes", Type: "Vinyl"},
	}, md.Catalogue)
	assert.Empty(t, md.Problems)
}

func TestImportMasterWorkbookComponentsFallback(t *testing.T) {
	data := buildWorkbook(t,
		sheetFixture{name: SheetComponents, rows: [][]any{
			{"Building Component", "Asset Group", "Asset Type"},
			{"Door", "Joinery", "Timber"},
		}},
	)

	md, err := newTestCodec().ImportMasterWorkbook(bytes.NewReader(data))
	require.NoError(t, err)

	require.NotEmpty(t, md.Catalogue)
	assert.Equal(t, "Door", md.Catalogue[0].Component)
	assert.Nil(t, md.Buildings)
	assert.Nil(t, md.FunctionalAreas)
}

func TestImportMasterWorkbookTrimsComponentFields(t *testing.T) {
	data := buildWorkbook(t,
		sheetFixture{name: SheetComponents, rows: [][]any{
			{"Building Component", "Asset Group", "Asset Type"},
			{"  Roof ", " Cladding  ", " Metal "},
			{"   ", "Orphan", "Group"},
		}},
	)

	md, err := newTestCodec().ImportMasterWorkbook(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []domain.CatalogueItem{{Component: "Roof", Group: "Cladding", Type: "Metal"}}, md.Catalogue)
}

func TestImportMasterWorkbookPrefersDetailedComponents(t *testing.T) {
	data := buildWorkbook(t,
		sheetFixture{name: SheetComponents, rows: [][]any{
			{"Building Component", "Asset Group", "Asset Type"},
			{"Summary", "x", "y"},
		}},
		sheetFixture{name: SheetComponentsDetailed, rows: [][]any{
			{"Building Component", "Asset Group", "Asset Type"},
			{"Detailed", "x", "y"},
		}},
	)

	md, err := newTestCodec().ImportMasterWorkbook(bytes.NewReader(data))
	require.NoError(t, err)

	require.Len(t, md.Catalogue, 1)
	assert.Equal(t, "Detailed", md.Catalogue[0].Component)
}

func TestImportMasterWorkbookEmptyBuildingsSheet(t *testing.T) {
	data := buildWorkbook(t,
		sheetFixture{name: SheetBuildings, rows: [][]any{
			{"BuildingID", "BuildingName", "Address", "Notes"},
		}},
	)

	md, err := newTestCodec().ImportMasterWorkbook(bytes.NewReader(data))
	require.NoError(t, err)
	assert.Nil(t, md.Buildings)
}

func TestImportMasterWorkbookKeepsBlankNamesAndFillsIDs(t *testing.T) {
	data := buildWorkbook(t,
		sheetFixture{name: SheetBuildings, rows: [][]any{
			{"BuildingName", "BuildingID"},
			{"", "B1"},
			{},
			{"Depot", ""},
		}},
	)

	md, err := newTestCodec().ImportMasterWorkbook(bytes.NewReader(data))
	require.NoError(t, err)

	require.Len(t, md.Buildings, 2)
	assert.Equal(t, domain.Building{ID: "B1"}, md.Buildings[0])
	assert.Equal(t, domain.Building{ID: "gen-1", Name: "Depot"}, md.Buildings[1])
}

func TestImportMasterWorkbookWithoutKnownSheets(t *testing.T) {
	data := buildWorkbook(t, sheetFixture{name: "Notes", rows: [][]any{{"hello"}}})

	md, err := newTestCodec().ImportMasterWorkbook(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Nil(t, md.Buildings)
	assert.Nil(t, md.FunctionalAreas)
	assert.Nil(t, md.Catalogue)
}

func TestImportMasterWorkbookRejectsGarbage(t *testing.T) {
	_, err := newTestCodec().ImportMasterWorkbook(strings.NewReader("not a zip file"))
	assert.True(t, errors.Is(err, ErrMalformedInput))
}
