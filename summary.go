package ctnsum

import (
	"slices"
	"strings"
)

// WarehouseEntry is one destination row of the summary.
type WarehouseEntry struct {
	Warehouse string `json:"warehouse"`
	CTN       int    `json:"ctn"`
	Skid      string `json:"skid"`
}

// ReferenceDetail is one category detail row of the summary.
type ReferenceDetail struct {
	Type       string `json:"type"`
	Reference1 string `json:"reference1"`
	Reference2 string `json:"reference2"`
	CTN        int    `json:"ctn"`
}

// ProcessedSummary is the result of one pipeline run. It is not modified after
// it is returned.
type ProcessedSummary struct {
	ContainerNumber  string            `json:"containerNumber"`
	Total            int               `json:"total"`
	WarehouseSummary []WarehouseEntry  `json:"warehouseSummary"`
	ReferenceDetails []ReferenceDetail `json:"referenceDetails"`
	DroppedRows      int               `json:"droppedRows,omitempty"`
}

// WarehouseSubtotal sums the CTN column of the warehouse summary.
func (s *ProcessedSummary) WarehouseSubtotal() int {
	total := 0
	for _, e := range s.WarehouseSummary {
		total += e.CTN
	}
	return total
}

// DetailSubtotal sums the CTN column of the reference details.
func (s *ProcessedSummary) DetailSubtotal() int {
	total := 0
	for _, d := range s.ReferenceDetails {
		total += d.CTN
	}
	return total
}

// GrandTotal is the total written to the summary workbook.
func (s *ProcessedSummary) GrandTotal() int {
	return s.WarehouseSubtotal() + s.DetailSubtotal()
}

// Summary materializes the aggregation into a ProcessedSummary.
// Destinations are sorted by code with UPS last; details keep first-seen order.
func (s *AggregationState) Summary(containerNumber string) *ProcessedSummary {
	out := &ProcessedSummary{
		ContainerNumber:  containerNumber,
		Total:            s.Total,
		WarehouseSummary: make([]WarehouseEntry, 0, s.destinations.len()),
		ReferenceDetails: make([]ReferenceDetail, 0, s.details.len()),
		DroppedRows:      s.Dropped,
	}
	s.destinations.each(func(code string, n int) {
		out.WarehouseSummary = append(out.WarehouseSummary, WarehouseEntry{Warehouse: code, CTN: n})
	})
	s.details.each(func(k detailKey, n int) {
		out.ReferenceDetails = append(out.ReferenceDetails, ReferenceDetail{
			Type:       k.Type,
			Reference1: k.Reference1,
			Reference2: k.Reference2,
			CTN:        n,
		})
	})
	SortWarehouses(out.WarehouseSummary)
	return out
}

// SortWarehouses orders entries by warehouse code, keeping UPS last.
func SortWarehouses(entries []WarehouseEntry) {
	slices.SortStableFunc(entries, func(a, b WarehouseEntry) int {
		aUPS, bUPS := a.Warehouse == UPSDestination, b.Warehouse == UPSDestination
		switch {
		case aUPS && !bUPS:
			return 1
		case bUPS && !aUPS:
			return -1
		}
		return strings.Compare(a.Warehouse, b.Warehouse)
	})
}
