package ctnsum

import (
	"errors"
	"fmt"
)

// ErrInvalidWorkbook indicates the input bytes are not a readable xlsx workbook.
var ErrInvalidWorkbook = errors.New("invalid xlsx workbook")

// ErrNoSheets indicates the workbook has no sheet to process.
var ErrNoSheets = errors.New("workbook has no sheets")

// ErrInvalidRule indicates the classification rule table could not be compiled.
var ErrInvalidRule = errors.New("invalid classification rule")

// Pipeline stages reported by StageError.
const (
	StageOpen     = "open"
	StageRead     = "read"
	StageClassify = "classify"
	StageRender   = "render"
)

// StageError represents a failure in one stage of the pipeline.
// Any StageError aborts the invocation; no partial summary is produced.
type StageError struct {
	Stage string
	Sheet string
	Err   error
}

func (e *StageError) Error() string {
	if e.Sheet != "" {
		return fmt.Sprintf("%s stage failed on sheet %q: %v", e.Stage, e.Sheet, e.Err)
	}
	return fmt.Sprintf("%s stage failed: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

func newStageError(stage, sheet string, err error) *StageError {
	return &StageError{Stage: stage, Sheet: sheet, Err: err}
}
