package ctnsum

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func TestNewGrid_FixedWidth(t *testing.T) {
	g := NewGrid([][]string{
		{"a", "b", "c"},
		{"x"},
		{},
	})
	assert.Equal(t, 3, g.Width)
	require.Len(t, g.Rows, 3)
	for _, row := range g.Rows {
		assert.Len(t, row.Cells, 3)
	}

	assert.Equal(t, Cell{Value: "x", Present: true}, g.Cell(1, 0))
	assert.False(t, g.Cell(1, 2).Present, "cells past a short row are absent")
	assert.False(t, g.Cell(9, 9).Present, "out of range is absent")
	assert.Equal(t, 1, g.Rows[1].Len())
	assert.Equal(t, 0, g.Rows[2].Len())
	assert.True(t, g.Rows[2].IsBlank())
}

func TestRow_IsBlank(t *testing.T) {
	g := NewGrid([][]string{{" ", "\t", ""}, {"", "", "v"}})
	assert.True(t, g.Rows[0].IsBlank())
	assert.False(t, g.Rows[1].IsBlank())
}

func TestGrid_SetGrows(t *testing.T) {
	g := NewGrid([][]string{{"a"}})
	g.Set(3, 4, "z")
	assert.Equal(t, 5, g.Width)
	require.Len(t, g.Rows, 4)
	assert.Equal(t, "z", g.Cell(3, 4).Value)
	assert.Equal(t, "a", g.Cell(0, 0).Value)
	assert.Len(t, g.Rows[0].Cells, 5)

	assert.Equal(t, [][]string{{"a"}, {}, {}, {"", "", "", "", "z"}}, g.Records())
}

func TestReadGrid(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	sheet := "Sheet1"
	require.NoError(t, f.SetCellValue(sheet, "A1", "MSCU1234567"))
	require.NoError(t, f.SetCellValue(sheet, "D2", 12))
	require.NoError(t, f.SetCellValue(sheet, "M2", "YYZ3"))
	require.NoError(t, f.MergeCell(sheet, "M2", "M4"))
	require.NoError(t, f.MergeCell(sheet, "D2", "D3"))

	grid, regions, err := ReadGrid(f, sheet)
	require.NoError(t, err)
	assert.Equal(t, "MSCU1234567", grid.Cell(0, 0).Value)
	assert.Equal(t, "12", grid.Cell(1, 3).Value)
	assert.Equal(t, "YYZ3", grid.Cell(1, 12).Value)
	assert.ElementsMatch(t, []MergeRegion{
		{StartRow: 1, EndRow: 3, StartCol: 12, EndCol: 12},
		{StartRow: 1, EndRow: 2, StartCol: 3, EndCol: 3},
	}, regions)
}

func TestReadGrid_MissingSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	_, _, err := ReadGrid(f, "Nope")
	assert.Error(t, err)
}
