package workbook

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"dealdesk/internal/errors"
)

func writeTestWorkbook(t *testing.T, path string) {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	require.NoError(t, f.SetSheetName("Sheet1", "P&L"))
	rows := [][]interface{}{
		{"Acme Holdings LLC"},
		{"Profit and Loss"},
		{"", "2023", "2024"},
		{"Sales", 100000, 120000},
		{"Cost of Goods Sold", 40000, 45000},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow("P&L", cell, &row))
	}

	_, err := f.NewSheet("Notes")
	require.NoError(t, err)
	require.NoError(t, f.SetCellValue("Notes", "A1", "prepared by accountant"))

	require.NoError(t, f.SaveAs(path))
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "statement.xlsx")
	writeTestWorkbook(t, path)

	sheets, err := Load(path)
	require.NoError(t, err)
	require.Len(t, sheets, 2)

	pnl := sheets[0]
	assert.Equal(t, "P&L", pnl.Name)
	require.GreaterOrEqual(t, len(pnl.Grid), 5)
	assert.Equal(t, "Acme Holdings LLC", pnl.Grid[0][0])
	assert.Equal(t, "2024", pnl.Grid[2][2])
	assert.Equal(t, "120000", pnl.Grid[3][2])

	assert.Equal(t, "Notes", sheets[1].Name)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.xlsx"))
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeStorage))
}

func TestLoad_NotAWorkbook(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bogus.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("not a zip archive"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeStorage))
}
