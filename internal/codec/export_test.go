package codec

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/vbonduro/rbaudit/internal/domain"
)

var exportBuildings = []domain.Building{
	{ID: "B1", Name: "Coogee Hall", Address: "Coogee", Notes: "Alarm code at office"},
	{ID: "B2", Name: "Success Pavilion", Address: "Success"},
}

func exportAssets() []domain.AssetRecord {
	return []domain.AssetRecord{
		{
			ID: "a1", BuildingID: "B1", BuildingName: "Coogee Hall",
			FunctionalArea: "Kitchen", Component: "Roof", Group: "Roofing", Type: "Metal Sheet",
			Qty: "12", Unit: domain.UnitSquareMetre,
			FuncCond: domain.MustCondition(4), Defects: "Rust at gutter",
			PhotoName: "a1_roof.jpg", GeoX: "115.76", GeoY: "-32.12", PolygonID: "P7",
			IsExisting: true,
		},
		{
			ID: "a2", BuildingID: "B1", BuildingName: "Coogee Hall",
			FunctionalArea: "Toilets", Component: "Door", Unit: domain.UnitNumber,
			FuncCond: domain.MustCondition(2), AesthCond: domain.MustCondition(3),
		},
		{
			ID: "a3", BuildingID: "B2", BuildingName: "Success Pavilion",
			Component: "Floor", Unit: domain.UnitNumber, IsExisting: true,
		},
	}
}

func TestExportSheetOrder(t *testing.T) {
	data, err := newTestCodec().ExportWorkbookBytes(Dataset{})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	assert.Equal(t, []string{
		SheetBuildings, SheetAssetsExisting, SheetAssetsNew, SheetFunctionalAreas, SheetComponentsDetailed,
	}, f.GetSheetList())
}

func TestExportEmptyDatasetWritesHeaders(t *testing.T) {
	data, err := newTestCodec().ExportWorkbookBytes(Dataset{})
	require.NoError(t, err)

	assert.Equal(t, [][]string{buildingHeaders}, readSheet(t, data, SheetBuildings))
	assert.Equal(t, [][]string{assetHeaders}, readSheet(t, data, SheetAssetsExisting))
	assert.Equal(t, [][]string{assetHeaders}, readSheet(t, data, SheetAssetsNew))
	assert.Empty(t, readSheet(t, data, SheetFunctionalAreas))
	assert.Equal(t, [][]string{componentHeaders}, readSheet(t, data, SheetComponentsDetailed))
}

func TestExportAssetHeadersExact(t *testing.T) {
	assert.Equal(t, []string{
		"BuildingID", "BuildingName", "FunctionalArea", "BuildingComponent", "AssetGroup",
		"AssetType", "QuantityOrArea", "Unit", "Condition_Functionality_1to5",
		"Condition_Aesthetics_1to5", "Defects_Notes", "PhotoFilename", "Geo_X", "Geo_Y",
		"FunctionalAreaPolygonID",
	}, AssetHeaders())
}

func TestExportPartitionsAssets(t *testing.T) {
	data, err := newTestCodec().ExportWorkbookBytes(Dataset{Assets: exportAssets()})
	require.NoError(t, err)

	existing := readSheet(t, data, SheetAssetsExisting)
	created := readSheet(t, data, SheetAssetsNew)

	require.Len(t, existing, 3)
	require.Len(t, created, 2)
	assert.Equal(t, "Roof", existing[1][3])
	assert.Equal(t, "Floor", existing[2][3])
	assert.Equal(t, "Door", created[1][3])
}

func TestExportAssetRowValues(t *testing.T) {
	data, err := newTestCodec().ExportWorkbookBytes(Dataset{Assets: exportAssets()})
	require.NoError(t, err)

	row := readSheet(t, data, SheetAssetsExisting)[1]
	assert.Equal(t, []string{
		"B1", "Coogee Hall", "Kitchen", "Roof", "Roofing", "Metal Sheet", "12", "m²",
		"4", "", "Rust at gutter", "a1_roof.jpg", "115.76", "-32.12", "P7",
	}, row)
}

func TestExportUnsetConditionsAreBlank(t *testing.T) {
	data, err := newTestCodec().ExportWorkbookBytes(Dataset{Assets: exportAssets()})
	require.NoError(t, err)

	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	defer f.Close()

	// a3 is the second existing record; neither condition is scored.
	for _, cell := range []string{"I3", "J3"} {
		v, err := f.GetCellValue(SheetAssetsExisting, cell)
		require.NoError(t, err)
		assert.Empty(t, v, cell)
	}

	v, err := f.GetCellValue(SheetAssetsNew, "J2")
	require.NoError(t, err)
	assert.Equal(t, "3", v)
}

func TestExportListsAndCatalogue(t *testing.T) {
	data, err := newTestCodec().ExportWorkbookBytes(Dataset{
		FunctionalAreas: []string{"Kitchen", "Toilets"},
		Catalogue:       []domain.CatalogueItem{{Component: "Roof", Group: "Roofing", Type: "Metal Sheet"}},
	})
	require.NoError(t, err)

	assert.Equal(t, [][]string{{"Kitchen"}, {"Toilets"}}, readSheet(t, data, SheetFunctionalAreas))
	assert.Equal(t, [][]string{
		componentHeaders,
		{"Roof", "Roofing", "Metal Sheet"},
	}, readSheet(t, data, SheetComponentsDetailed))
}

func TestExportImportRoundTrip(t *testing.T) {
	c := newTestCodec()
	areas := []string{"Kitchen", "Toilets"}
	items := []domain.CatalogueItem{
		{Component: "Roof", Group: "Roofing", Type: "Metal Sheet"},
		{Component: "Door", Group: "Joinery", Type: "Timber"},
	}

	data, err := c.ExportWorkbookBytes(Dataset{
		Buildings:       exportBuildings,
		Assets:          exportAssets(),
		FunctionalAreas: areas,
		Catalogue:       items,
	})
	require.NoError(t, err)

	md, err := c.ImportMasterWorkbook(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, exportBuildings, md.Buildings)
	assert.Equal(t, areas, md.FunctionalAreas)
	assert.Equal(t, items, md.Catalogue)
}
