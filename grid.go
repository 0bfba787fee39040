package ctnsum

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// Cell is one grid cell. Present is false for cells the source row never had.
type Cell struct {
	Value   string
	Present bool
}

// Text returns the trimmed cell value.
func (c Cell) Text() string {
	return strings.TrimSpace(c.Value)
}

// IsEmpty reports whether the cell is absent or holds an empty string.
func (c Cell) IsEmpty() bool {
	return !c.Present || c.Value == ""
}

// Row is a fixed-width record of cells.
type Row struct {
	Cells []Cell
}

// Cell returns the cell at col, or an absent cell when col is out of range.
func (r Row) Cell(col int) Cell {
	if col < 0 || col >= len(r.Cells) {
		return Cell{}
	}
	return r.Cells[col]
}

// Len returns the number of cells up to and including the last present one.
func (r Row) Len() int {
	for i := len(r.Cells) - 1; i >= 0; i-- {
		if r.Cells[i].Present {
			return i + 1
		}
	}
	return 0
}

// IsBlank reports whether every cell is absent or whitespace.
func (r Row) IsBlank() bool {
	for _, c := range r.Cells {
		if c.Text() != "" {
			return false
		}
	}
	return true
}

// Grid is a rectangular sheet: every row has exactly Width cells.
type Grid struct {
	Width int
	Rows  []Row
}

// NewGrid builds a Grid from ragged string records, as returned by excelize GetRows.
func NewGrid(records [][]string) *Grid {
	width := 0
	for _, rec := range records {
		width = max(width, len(rec))
	}
	g := &Grid{Width: width, Rows: make([]Row, len(records))}
	for i, rec := range records {
		cells := make([]Cell, width)
		for j, v := range rec {
			cells[j] = Cell{Value: v, Present: true}
		}
		g.Rows[i] = Row{Cells: cells}
	}
	return g
}

// Cell returns the cell at (row, col), or an absent cell when out of range.
func (g *Grid) Cell(row, col int) Cell {
	if row < 0 || row >= len(g.Rows) {
		return Cell{}
	}
	return g.Rows[row].Cell(col)
}

// Set stores a value at (row, col), growing the grid as needed.
func (g *Grid) Set(row, col int, value string) {
	g.grow(row+1, col+1)
	g.Rows[row].Cells[col] = Cell{Value: value, Present: true}
}

// grow extends the grid to at least rows x cols.
func (g *Grid) grow(rows, cols int) {
	if cols > g.Width {
		for i := range g.Rows {
			cells := make([]Cell, cols)
			copy(cells, g.Rows[i].Cells)
			g.Rows[i].Cells = cells
		}
		g.Width = cols
	}
	for len(g.Rows) < rows {
		g.Rows = append(g.Rows, Row{Cells: make([]Cell, g.Width)})
	}
}

// Records converts the grid back to ragged string records, trimming absent trailing cells.
func (g *Grid) Records() [][]string {
	out := make([][]string, len(g.Rows))
	for i, row := range g.Rows {
		n := row.Len()
		rec := make([]string, n)
		for j := 0; j < n; j++ {
			rec[j] = row.Cells[j].Value
		}
		out[i] = rec
	}
	return out
}

// ReadGrid reads a sheet's raw cell values and merge regions.
// Merge regions are returned in the order the sheet metadata lists them.
func ReadGrid(f *excelize.File, sheet string) (*Grid, []MergeRegion, error) {
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, nil, fmt.Errorf("read rows from sheet %q: %w", sheet, err)
	}
	merges, err := f.GetMergeCells(sheet)
	if err != nil {
		return nil, nil, fmt.Errorf("read merged cells from sheet %q: %w", sheet, err)
	}

	regions := make([]MergeRegion, 0, len(merges))
	for _, mc := range merges {
		region, err := ParseMergeRegion(mc.GetStartAxis() + ":" + mc.GetEndAxis())
		if err != nil {
			continue
		}
		regions = append(regions, region)
	}
	return NewGrid(rows), regions, nil
}
