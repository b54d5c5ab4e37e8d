package drive

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func workbook(t *testing.T, rows [][]interface{}) *bytes.Buffer {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("Sheet1", cell, &row))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf
}

func TestIsDatasetName(t *testing.T) {
	assert.True(t, isDatasetName("sales.csv"))
	assert.True(t, isDatasetName("Sales.XLSX"))
	assert.False(t, isDatasetName("notes.txt"))
	assert.False(t, isDatasetName("folder"))
}

func TestFolderQueryEscapesQuotes(t *testing.T) {
	q := folderQuery("root", "Q1's data")
	assert.Contains(t, q, `name='Q1\'s data'`)
	assert.Contains(t, q, "'root' in parents")
}

func TestConvertXLSXToCSV(t *testing.T) {
	in := workbook(t, [][]interface{}{
		{"Date", "Customer_ID", "Actual_Qty"},
		{"2024-01-01", "C1", 10},
	})

	var out bytes.Buffer
	require.NoError(t, convertXLSXToCSV(in, &out))
	assert.Equal(t, "Date,Customer_ID,Actual_Qty\n2024-01-01,C1,10\n", out.String())
}

func TestWriteLocalConvertsWorkbook(t *testing.T) {
	dir := t.TempDir()
	in := workbook(t, [][]interface{}{{"a", "b"}, {"1", "2"}})

	path, err := writeLocal(DownloadOptions{DownloadDir: dir, ConvertXLSX: true}, "nested/sales.xlsx", in)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sales.csv"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(data))
}

func TestWriteLocalKeepsCSV(t *testing.T) {
	dir := t.TempDir()
	path, err := writeLocal(DownloadOptions{DownloadDir: dir, ConvertXLSX: true}, "sales.csv", bytes.NewBufferString("x\n1\n"))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "sales.csv"), path)
}
