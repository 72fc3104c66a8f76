package drive

import (
	"bytes"
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type fakeFiles struct {
	folders  map[string][]*File
	contents map[string][]byte
	listErr  map[string]error
}

func (f *fakeFiles) ListFiles(ctx context.Context, folderID string) ([]*File, error) {
	if err := f.listErr[folderID]; err != nil {
		return nil, err
	}
	return f.folders[folderID], nil
}

func (f *fakeFiles) DownloadFile(ctx context.Context, fileID string, w io.Writer) error {
	data, ok := f.contents[fileID]
	if !ok {
		return errors.New("404 not found")
	}
	_, err := w.Write(data)
	return err
}

type fakeSheets struct {
	worksheets map[string][][]interface{}
}

func (f *fakeSheets) ReadWorksheet(ctx context.Context, spreadsheetID, worksheet string) ([][]interface{}, error) {
	values, ok := f.worksheets[worksheet]
	if !ok {
		return nil, errors.New("unable to parse range")
	}
	return values, nil
}

func buildXLSX(t *testing.T, rows [][]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestLoaderLoad(t *testing.T) {
	files := &fakeFiles{
		folders: map[string][]*File{
			"orders": {
				{ID: "o1", Name: "orders_march.csv"},
				{ID: "o2", Name: "orders_april.xlsx"},
				{ID: "o3", Name: "notes.txt"},
				{ID: "missing", Name: "broken.csv"},
			},
			"ads": {{ID: "a1", Name: "ads.csv"}},
		},
		contents: map[string][]byte{
			"o1": []byte("\ufeffหมายเลขคำสั่งซื้อออนไลน์,รูปแบบสินค้า\n1001.0,ABC-red\n"),
			"o2": buildXLSX(t, [][]interface{}{
				{"หมายเลขคำสั่งซื้อออนไลน์", "รูปแบบสินค้า", "จำนวน"},
				{"1002", "XYZ-blue", 2},
			}),
			"o3": []byte("ignored"),
			"a1": []byte("Campaign,Date,Cost\n[ABC] promo,2024-03-01,100\n"),
		},
	}
	sheets := &fakeSheets{worksheets: map[string][][]interface{}{
		"MASTER_ITEM": {{"SKU", "ชื่อสินค้า"}, {"ABC", "Serum"}, {"", ""}},
		"FIXED_COST":  {{"เดือน", "ปี", "Fix_Cost"}, {"มีนาคม", 2024, 1000}},
	}}

	loader := NewLoader(files, sheets, LoaderConfig{
		OrdersFolderID: "orders",
		AdsFolderID:    "ads",
		MasterSheetID:  "sheet",
	})

	src, err := loader.Load(context.Background())
	require.NoError(t, err)

	require.NotNil(t, src.Orders)
	assert.Equal(t, []string{"หมายเลขคำสั่งซื้อออนไลน์", "รูปแบบสินค้า", "จำนวน"}, src.Orders.Header)
	assert.Equal(t, [][]string{
		{"1001.0", "ABC-red", ""},
		{"1002", "XYZ-blue", "2"},
	}, src.Orders.Rows)

	require.NotNil(t, src.Ads)
	assert.Equal(t, 1, src.Ads.Len())

	require.NotNil(t, src.Master)
	assert.Equal(t, 1, src.Master.Len(), "blank rows are dropped")

	require.NotNil(t, src.FixedCost, "falls back to the second fixed cost worksheet")
	assert.Equal(t, []string{"มีนาคม", "2024", "1000"}, src.FixedCost.Rows[0])
}

func TestLoaderOrdersListFailure(t *testing.T) {
	files := &fakeFiles{listErr: map[string]error{"orders": errors.New("forbidden")}}
	loader := NewLoader(files, &fakeSheets{}, LoaderConfig{OrdersFolderID: "orders"})

	_, err := loader.Load(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "forbidden")
}

func TestLoaderAdsAndMasterDegrade(t *testing.T) {
	files := &fakeFiles{
		folders:  map[string][]*File{"orders": {{ID: "o1", Name: "o.csv"}}},
		contents: map[string][]byte{"o1": []byte("a,b\n1,2\n")},
		listErr:  map[string]error{"ads": errors.New("boom")},
	}
	loader := NewLoader(files, &fakeSheets{}, LoaderConfig{
		OrdersFolderID: "orders",
		AdsFolderID:    "ads",
		MasterSheetID:  "sheet",
	})

	src, err := loader.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, src.Orders.Len())
	assert.Nil(t, src.Ads)
	assert.Nil(t, src.Master)
	assert.Nil(t, src.FixedCost)
}
