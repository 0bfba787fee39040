package ctnsum

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// CellRef is a 0-based cell position on a sheet.
type CellRef struct {
	Row int
	Col int
}

// ParseCellRef parses a reference like "A1", "$B$5" or "Sheet1!C3".
func ParseCellRef(s string) (CellRef, error) {
	s = strings.TrimSpace(s)
	if idx := strings.LastIndex(s, "!"); idx >= 0 {
		s = s[idx+1:]
	}
	s = strings.ToUpper(strings.ReplaceAll(s, "$", ""))
	if s == "" {
		return CellRef{}, fmt.Errorf("empty cell reference")
	}
	col, row, err := excelize.CellNameToCoordinates(s)
	if err != nil {
		return CellRef{}, fmt.Errorf("invalid cell reference %q: %w", s, err)
	}
	return CellRef{Row: row - 1, Col: col - 1}, nil
}

// CellName formats the reference as "A1". Negative positions yield "".
func (c CellRef) CellName() string {
	name, err := excelize.CoordinatesToCellName(c.Col+1, c.Row+1)
	if err != nil {
		return ""
	}
	return name
}

// columnName returns the letters of a 0-based column index.
func columnName(col int) string {
	name, err := excelize.ColumnNumberToName(col + 1)
	if err != nil {
		return ""
	}
	return name
}

// MergeRegion is a rectangular span of cells that shared one displayed value
// in the source sheet. Bounds are 0-based and inclusive.
type MergeRegion struct {
	StartRow int
	EndRow   int
	StartCol int
	EndCol   int
}

// ParseMergeRegion parses a range like "A2:A5" into a MergeRegion.
func ParseMergeRegion(s string) (MergeRegion, error) {
	parts := strings.SplitN(strings.TrimSpace(s), ":", 2)
	if len(parts) != 2 {
		return MergeRegion{}, fmt.Errorf("invalid merge range (missing ':'): %q", s)
	}
	first, err := ParseCellRef(parts[0])
	if err != nil {
		return MergeRegion{}, fmt.Errorf("invalid merge range %q: %w", s, err)
	}
	last, err := ParseCellRef(parts[1])
	if err != nil {
		return MergeRegion{}, fmt.Errorf("invalid merge range %q: %w", s, err)
	}
	return MergeRegion{
		StartRow: first.Row,
		EndRow:   last.Row,
		StartCol: first.Col,
		EndCol:   last.Col,
	}, nil
}

// String formats the region as "A2:A5".
func (m MergeRegion) String() string {
	first := CellRef{Row: m.StartRow, Col: m.StartCol}
	last := CellRef{Row: m.EndRow, Col: m.EndCol}
	return first.CellName() + ":" + last.CellName()
}

// valid reports whether the region has non-negative, ordered bounds.
func (m MergeRegion) valid() bool {
	return m.StartRow >= 0 && m.StartCol >= 0 && m.EndRow >= m.StartRow && m.EndCol >= m.StartCol
}
