package ctnsum

// Fixed column positions of the shipment sheet convention.
const (
	colReference1 = 0
	colReference2 = 2
	colQuantity   = 3
	colWarehouse  = 12
	colNote       = 13
)

// Normalize resolves merge regions in place and returns the grid.
//
// A region starting in the quantity column keeps its value only in its first
// row, so a carton count merged across several line items is counted once.
// Any other region replicates its top-left value into every empty covered cell,
// so where two such regions overlap the earlier fill is kept. A quantity region
// clears unconditionally. Malformed regions are skipped.
func Normalize(grid *Grid, regions []MergeRegion) *Grid {
	for _, m := range regions {
		if !m.valid() {
			continue
		}
		grid.grow(m.EndRow+1, m.EndCol+1)

		if m.StartCol == colQuantity {
			for r := m.StartRow + 1; r <= m.EndRow; r++ {
				grid.Set(r, colQuantity, "")
			}
			continue
		}

		source := grid.Cell(m.StartRow, m.StartCol).Value
		for r := m.StartRow; r <= m.EndRow; r++ {
			for c := m.StartCol; c <= m.EndCol; c++ {
				if grid.Cell(r, c).IsEmpty() {
					grid.Set(r, c, source)
				}
			}
		}
	}
	return grid
}
