// Package ctnsum turns a shipment line-item spreadsheet into a per-destination
// carton (CTN) summary and renders that summary as a formatted workbook.
//
// The pipeline runs synchronously: merged cells are normalized, the container
// number and data region are located, every data row is classified by an
// ordered rule table, and the aggregated result is returned as a
// ProcessedSummary that RenderBytes turns into xlsx bytes.
package ctnsum

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
)

// ProcessBytes runs the pipeline on xlsx bytes.
func ProcessBytes(b []byte, opts ...Option) (*ProcessedSummary, error) {
	return NewProcessor(opts...).ProcessBytes(b)
}

// ProcessReader runs the pipeline on an xlsx stream.
func ProcessReader(r io.Reader, opts ...Option) (*ProcessedSummary, error) {
	return NewProcessor(opts...).ProcessReader(r)
}

// ProcessFile runs the pipeline on an xlsx file.
func ProcessFile(path string, opts ...Option) (*ProcessedSummary, error) {
	return NewProcessor(opts...).ProcessFile(path)
}

// Processor runs the spreadsheet-to-summary pipeline. It holds no per-run
// state and may be shared between goroutines.
type Processor struct {
	opts    *Options
	rules   *ruleSet
	ruleErr error
}

// NewProcessor creates a Processor with the given options. An invalid rule
// table is reported by every subsequent call.
func NewProcessor(opts ...Option) *Processor {
	o := defaultOptions()
	for _, opt := range opts {
		opt(o)
	}
	p := &Processor{opts: o}
	p.rules, p.ruleErr = compileRules(o.rules, o.selfPickupMarker, o.truckMarker)
	return p
}

// Err returns the rule compilation error, if any.
func (p *Processor) Err() error {
	return p.ruleErr
}

// ProcessBytes runs the pipeline on xlsx bytes.
func (p *Processor) ProcessBytes(b []byte) (*ProcessedSummary, error) {
	return p.ProcessReader(bytes.NewReader(b))
}

// ProcessFile runs the pipeline on an xlsx file.
func (p *Processor) ProcessFile(path string) (*ProcessedSummary, error) {
	in, err := os.Open(path)
	if err != nil {
		return nil, newStageError(StageOpen, "", fmt.Errorf("open input %q: %w", path, err))
	}
	defer in.Close()
	return p.ProcessReader(in)
}

// ProcessReader runs the pipeline on an xlsx stream.
func (p *Processor) ProcessReader(r io.Reader) (*ProcessedSummary, error) {
	if p.ruleErr != nil {
		return nil, p.ruleErr
	}
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, newStageError(StageOpen, "", fmt.Errorf("%w: %v", ErrInvalidWorkbook, err))
	}
	defer f.Close()
	return p.process(f)
}

func (p *Processor) process(f *excelize.File) (*ProcessedSummary, error) {
	log := p.opts.logger

	sheet, err := p.pickSheet(f)
	if err != nil {
		return nil, err
	}

	grid, regions, err := ReadGrid(f, sheet)
	if err != nil {
		return nil, newStageError(StageRead, sheet, err)
	}
	log.Debug("Read sheet",
		zap.String("sheet", sheet),
		zap.Int("rows", len(grid.Rows)),
		zap.Int("cols", grid.Width),
		zap.Int("mergeRegions", len(regions)))

	Normalize(grid, regions)

	container := FindContainerNumber(grid)
	start := findDataStartRow(grid, p.opts.headerTokens)
	log.Debug("Located data region", zap.String("container", container), zap.Int("dataStartRow", start+1))

	state, err := p.Aggregate(grid, start)
	if err != nil {
		return nil, err
	}

	summary := state.Summary(container)
	log.Info("Processed shipment sheet",
		zap.String("sheet", sheet),
		zap.String("container", container),
		zap.Int("total", summary.Total),
		zap.Int("rows", state.Rows),
		zap.Int("droppedRows", state.Dropped),
		zap.Int("warehouses", len(summary.WarehouseSummary)),
		zap.Int("details", len(summary.ReferenceDetails)))
	return summary, nil
}

// pickSheet returns the configured sheet, or the first sheet of the workbook.
func (p *Processor) pickSheet(f *excelize.File) (string, error) {
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", newStageError(StageOpen, "", ErrNoSheets)
	}
	if p.opts.sheet == "" {
		return sheets[0], nil
	}
	for _, s := range sheets {
		if s == p.opts.sheet {
			return s, nil
		}
	}
	return "", newStageError(StageOpen, p.opts.sheet, fmt.Errorf("sheet not found in workbook"))
}
