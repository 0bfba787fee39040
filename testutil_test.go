package ctnsum

import (
	"bytes"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

// fixedClock returns a clock pinned to 2024-03-05 for deterministic dates.
func fixedClock() time.Time {
	return time.Date(2024, time.March, 5, 9, 30, 0, 0, time.UTC)
}

// lineItem builds a 14-column data row using the sheet's fixed positions:
// A reference1, C reference2, D quantity, M warehouse, N note.
func lineItem(ref1, ref2, qty, warehouse, note string) []string {
	row := make([]string, colNote+1)
	row[colReference1] = ref1
	row[1] = "desc"
	row[colReference2] = ref2
	row[colQuantity] = qty
	row[colWarehouse] = warehouse
	row[colNote] = note
	return row
}

// headerRows returns a two-row banner: container number on row 1, column headers on row 2.
func headerRows(container string) [][]string {
	header := make([]string, colNote+1)
	header[colReference1] = "FBA ID"
	header[colReference2] = "Reference ID"
	header[colQuantity] = "CTNS"
	header[colWarehouse] = "Warehouse"
	header[colNote] = "Note"
	return [][]string{{"Container", container}, header}
}

// buildWorkbook writes records and merge ranges (e.g. "M3:M5") to Sheet1 and
// returns the xlsx bytes. Quantity cells holding plain integers are written as numbers.
func buildWorkbook(t *testing.T, records [][]string, merges ...string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"

	for r, rec := range records {
		for c, v := range rec {
			if v == "" {
				continue
			}
			cell := CellRef{Row: r, Col: c}.CellName()
			if n, ok := parseQuantity(v); ok && c == colQuantity && v == strconv.Itoa(n) {
				require.NoError(t, f.SetCellValue(sheet, cell, n))
				continue
			}
			require.NoError(t, f.SetCellValue(sheet, cell, v))
		}
	}
	for _, m := range merges {
		region, err := ParseMergeRegion(m)
		require.NoError(t, err)
		first := CellRef{Row: region.StartRow, Col: region.StartCol}.CellName()
		last := CellRef{Row: region.EndRow, Col: region.EndCol}.CellName()
		require.NoError(t, f.MergeCell(sheet, first, last))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

// openOutput opens rendered xlsx bytes for inspection.
func openOutput(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}
