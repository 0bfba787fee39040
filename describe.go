package ctnsum

import (
	"fmt"
	"strings"
	"text/tabwriter"
)

// Describe returns a human-readable report of a summary, laid out in the
// same order as the rendered workbook. Useful for checking a sheet from the
// command line without opening the output.
func Describe(s *ProcessedSummary) string {
	var b strings.Builder
	container := s.ContainerNumber
	if container == "" {
		container = "<none>"
	}
	fmt.Fprintf(&b, "Container: %s\n", container)
	fmt.Fprintf(&b, "Total: %d\n", s.GrandTotal())
	if s.DroppedRows > 0 {
		fmt.Fprintf(&b, "Dropped rows: %d\n", s.DroppedRows)
	}

	tw := tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "\nWarehouse\tCTN")
	for _, e := range s.WarehouseSummary {
		fmt.Fprintf(tw, "%s\t%d\n", e.Warehouse, e.CTN)
	}
	fmt.Fprintf(tw, "%s\t%d\n", subtotalLabel, s.WarehouseSubtotal())
	tw.Flush()

	if len(s.ReferenceDetails) > 0 {
		tw = tabwriter.NewWriter(&b, 0, 4, 2, ' ', 0)
		fmt.Fprintln(tw, "\nType\tReference1\tReference2\tCTN")
		for _, d := range s.ReferenceDetails {
			fmt.Fprintf(tw, "%s\t%s\t%s\t%d\n", d.Type, d.Reference1, d.Reference2, d.CTN)
		}
		fmt.Fprintf(tw, "%s\t\t\t%d\n", subtotalLabel, s.DetailSubtotal())
		tw.Flush()
	}
	return b.String()
}
