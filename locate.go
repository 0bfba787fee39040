package ctnsum

import (
	"regexp"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	containerScanRows = 5
	containerScanCols = 15
	defaultDataStart  = 2
)

// containerPattern matches an ISO 6346 style container code: owner prefix plus serial digits.
var containerPattern = regexp.MustCompile(`[A-Z]{4}\d{7,}`)

// FindContainerNumber returns the first container code found in the top-left
// corner of the sheet, scanning row by row. It returns "" when none is found.
func FindContainerNumber(grid *Grid) string {
	rows := min(containerScanRows, len(grid.Rows))
	for r := 0; r < rows; r++ {
		cols := min(containerScanCols, grid.Rows[r].Len())
		for c := 0; c < cols; c++ {
			if match := containerPattern.FindString(grid.Cell(r, c).Value); match != "" {
				return match
			}
		}
	}
	return ""
}

// FindDataStartRow returns the row following the first quantity header cell,
// matched against DefaultHeaderTokens. Without a header it assumes two header rows.
func FindDataStartRow(grid *Grid) int {
	return findDataStartRow(grid, DefaultHeaderTokens)
}

func findDataStartRow(grid *Grid, tokens []string) int {
	lower := cases.Lower(language.Und)
	needles := make([]string, 0, len(tokens))
	for _, token := range tokens {
		if token != "" {
			needles = append(needles, lower.String(token))
		}
	}
	for r, row := range grid.Rows {
		for _, cell := range row.Cells {
			if cell.IsEmpty() {
				continue
			}
			text := lower.String(cell.Value)
			for _, needle := range needles {
				if strings.Contains(text, needle) {
					return r + 1
				}
			}
		}
	}
	return defaultDataStart
}
