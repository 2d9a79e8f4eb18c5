package frame

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeWorkbook(t *testing.T, sheetName string, rows [][]string) string {
	t.Helper()

	wb := xlsx.NewFile()
	sheet, err := wb.AddSheet(sheetName)
	require.NoError(t, err)

	for _, row := range rows {
		r := sheet.AddRow()
		for _, v := range row {
			r.AddCell().SetString(v)
		}
	}

	path := filepath.Join(t.TempDir(), "test.xlsx")
	require.NoError(t, wb.Save(path))
	return path
}

func TestLoadXLSX(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]string{
		{"id", "name"},
		{"1", "alpha"},
		{"2", "beta"},
	})

	f, err := LoadXLSX(path, XLSXOptions{})
	require.NoError(t, err)

	assert.Equal(t, []string{"id", "name"}, f.Columns())
	assert.Equal(t, 2, f.Len())
	v, err := f.Value("name", 1)
	require.NoError(t, err)
	assert.Equal(t, "beta", v)
}

func TestLoadXLSXByName(t *testing.T) {
	path := writeWorkbook(t, "records", [][]string{{"id"}, {"1"}})

	f, err := LoadXLSX(path, XLSXOptions{SheetName: "records"})
	require.NoError(t, err)
	assert.Equal(t, 1, f.Len())

	_, err = LoadXLSX(path, XLSXOptions{SheetName: "nope"})
	assert.Error(t, err)
}

func TestLoadXLSXSheetIndexOutOfRange(t *testing.T) {
	path := writeWorkbook(t, "Sheet1", [][]string{{"id"}})

	_, err := LoadXLSX(path, XLSXOptions{SheetIndex: 3})
	assert.Error(t, err)
}

func TestLoadDispatchesOnExtension(t *testing.T) {
	dir := t.TempDir()
	csvPath := filepath.Join(dir, "data.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("id,name\n1,alpha\n"), 0o644))

	f, err := Load(context.Background(), csvPath)
	require.NoError(t, err)
	assert.Equal(t, 1, f.Len())

	_, err = Load(context.Background(), filepath.Join(dir, "data.parquet"))
	assert.Error(t, err)
}
