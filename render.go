package ctnsum

import (
	"bytes"
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// Summary sheet layout.
const (
	skidSlots       = 24
	summaryCols     = 3 + skidSlots // Ware House, CTN, Skid, 1..24
	detailCols      = 4             // Type, Reference1, Reference2, CTN
	colWidth        = 15.0
	quantityWidth   = 10.0
	headerFillColor = "#BDD7EE"
	separatorColor  = "#808080"
	subtotalLabel   = "SUB-TOTAL"
)

var (
	summaryHeaders = []string{"Ware House", "CTN", "Skid"}
	detailHeaders  = []string{"Type", "Reference1", "Reference2", "CTN"}
)

// RenderBytes renders a summary workbook with default options.
func RenderBytes(s *ProcessedSummary, opts ...Option) ([]byte, error) {
	return NewProcessor(opts...).RenderBytes(s)
}

// RenderWriter renders a summary workbook with default options and writes it to w.
func RenderWriter(s *ProcessedSummary, w io.Writer, opts ...Option) error {
	return NewProcessor(opts...).RenderWriter(s, w)
}

// RenderBytes renders the summary workbook and returns it as xlsx bytes.
func (p *Processor) RenderBytes(s *ProcessedSummary) ([]byte, error) {
	var buf bytes.Buffer
	if err := p.RenderWriter(s, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderWriter renders the summary workbook and writes it to w.
func (p *Processor) RenderWriter(s *ProcessedSummary, w io.Writer) error {
	if s == nil {
		return newStageError(StageRender, "", fmt.Errorf("nil summary"))
	}
	f := excelize.NewFile()
	defer f.Close()

	sheet := p.opts.sheetName
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return newStageError(StageRender, sheet, fmt.Errorf("name sheet: %w", err))
	}

	r := &summaryRenderer{file: f, sheet: sheet}
	if err := r.render(s, p.opts.clock().Format(p.opts.dateLayout)); err != nil {
		return newStageError(StageRender, sheet, err)
	}
	if err := f.Write(w); err != nil {
		return newStageError(StageRender, sheet, fmt.Errorf("write workbook: %w", err))
	}
	p.opts.logger.Debug("Rendered summary workbook",
		zap.String("sheet", sheet),
		zap.Int("warehouses", len(s.WarehouseSummary)),
		zap.Int("details", len(s.ReferenceDetails)))
	return nil
}

type summaryStyles struct {
	header     int
	border     int
	boldBorder int
	separator  int
}

// summaryRenderer writes the fixed summary layout row by row.
// Rows and columns are 0-based internally.
type summaryRenderer struct {
	file   *excelize.File
	sheet  string
	styles summaryStyles
	row    int
	err    error
}

func (r *summaryRenderer) render(s *ProcessedSummary, date string) error {
	if err := r.newStyles(); err != nil {
		return err
	}
	if err := r.file.SetColWidth(r.sheet, columnName(0), columnName(summaryCols-1), colWidth); err != nil {
		return fmt.Errorf("set column width: %w", err)
	}
	if err := r.file.SetColWidth(r.sheet, columnName(1), columnName(1), quantityWidth); err != nil {
		return fmt.Errorf("set quantity column width: %w", err)
	}

	warehouseSubtotal := s.WarehouseSubtotal()
	detailSubtotal := s.DetailSubtotal()

	// Row 1: total banner.
	r.set(0, "Total")
	r.set(1, warehouseSubtotal+detailSubtotal)
	r.set(2, "Date:")
	r.set(3, date)
	r.merge(3, summaryCols-1)
	r.next()

	// Row 2: summary headers.
	for i, h := range summaryHeaders {
		r.set(i, h)
	}
	for slot := 1; slot <= skidSlots; slot++ {
		r.set(len(summaryHeaders)+slot-1, slot)
	}
	r.style(0, summaryCols-1, r.styles.header)
	r.next()

	for _, e := range s.WarehouseSummary {
		r.set(0, e.Warehouse)
		r.set(1, e.CTN)
		r.set(2, e.Skid)
		r.style(0, summaryCols-1, r.styles.border)
		r.next()
	}

	r.subtotal(1, warehouseSubtotal, summaryCols)

	r.style(0, summaryCols-1, r.styles.separator)
	r.next()

	for i, h := range detailHeaders {
		r.set(i, h)
	}
	r.style(0, detailCols-1, r.styles.boldBorder)
	r.next()

	for _, d := range s.ReferenceDetails {
		r.set(0, d.Type)
		r.set(1, d.Reference1)
		r.set(2, d.Reference2)
		r.set(3, d.CTN)
		r.style(0, detailCols-1, r.styles.border)
		r.next()
	}

	r.subtotal(3, detailSubtotal, detailCols)
	return r.err
}

// subtotal writes a SUB-TOTAL row with the value in column valueCol and borders across width columns.
func (r *summaryRenderer) subtotal(valueCol, value, width int) {
	r.set(0, subtotalLabel)
	r.set(valueCol, value)
	r.style(0, width-1, r.styles.border)
	r.style(0, 0, r.styles.boldBorder)
	r.style(valueCol, valueCol, r.styles.boldBorder)
	r.next()
}

func (r *summaryRenderer) newStyles() error {
	thin := []excelize.Border{
		{Type: "left", Color: "000000", Style: 1},
		{Type: "top", Color: "000000", Style: 1},
		{Type: "right", Color: "000000", Style: 1},
		{Type: "bottom", Color: "000000", Style: 1},
	}
	defs := []struct {
		id    *int
		style *excelize.Style
	}{
		{&r.styles.header, &excelize.Style{
			Fill:      excelize.Fill{Type: "pattern", Color: []string{headerFillColor}, Pattern: 1},
			Font:      &excelize.Font{Bold: true},
			Border:    thin,
			Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
		}},
		{&r.styles.border, &excelize.Style{Border: thin}},
		{&r.styles.boldBorder, &excelize.Style{Font: &excelize.Font{Bold: true}, Border: thin}},
		{&r.styles.separator, &excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{separatorColor}, Pattern: 1},
		}},
	}
	for _, d := range defs {
		id, err := r.file.NewStyle(d.style)
		if err != nil {
			return fmt.Errorf("create style: %w", err)
		}
		*d.id = id
	}
	return nil
}

func (r *summaryRenderer) cell(col int) string {
	return CellRef{Row: r.row, Col: col}.CellName()
}

func (r *summaryRenderer) set(col int, value any) {
	if r.err != nil {
		return
	}
	if err := r.file.SetCellValue(r.sheet, r.cell(col), value); err != nil {
		r.err = fmt.Errorf("set %s: %w", r.cell(col), err)
	}
}

func (r *summaryRenderer) style(fromCol, toCol, styleID int) {
	if r.err != nil {
		return
	}
	if err := r.file.SetCellStyle(r.sheet, r.cell(fromCol), r.cell(toCol), styleID); err != nil {
		r.err = fmt.Errorf("style %s:%s: %w", r.cell(fromCol), r.cell(toCol), err)
	}
}

func (r *summaryRenderer) merge(fromCol, toCol int) {
	if r.err != nil {
		return
	}
	if err := r.file.MergeCell(r.sheet, r.cell(fromCol), r.cell(toCol)); err != nil {
		r.err = fmt.Errorf("merge %s:%s: %w", r.cell(fromCol), r.cell(toCol), err)
	}
}

func (r *summaryRenderer) next() {
	r.row++
}
