package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/javajack/ctnsum"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Status values of a FileRecord.
const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

const defaultMaxSize = 10 << 20

var errUnsupportedFile = errors.New("only .xlsx files are supported")

// FileRecord is the status line printed for every input file.
type FileRecord struct {
	ID                string    `json:"id"`
	OriginalFilename  string    `json:"originalFilename"`
	ProcessedFilename string    `json:"processedFilename,omitempty"`
	Status            string    `json:"status"`
	FileSize          int64     `json:"fileSize"`
	TotalRecords      int       `json:"totalRecords"`
	ErrorMessage      string    `json:"errorMessage,omitempty"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}

type processFlags struct {
	outDir  string
	jobs    int
	maxSize int64
}

func newProcessCmd() *cobra.Command {
	var flags processFlags
	cmd := &cobra.Command{
		Use:   "process FILE...",
		Short: "Summarize shipment workbooks and write the summary workbooks",
		Long: `process runs every input workbook through the summary pipeline and writes
the result to the output directory under a generated <uuid>.xlsx name.
One JSON status record per input is printed to stdout, in argument order.
A failing file does not stop the others.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts, err := processorOptions()
			if err != nil {
				return err
			}
			if err := os.MkdirAll(flags.outDir, 0o755); err != nil {
				return fmt.Errorf("failed to create output directory: %w", err)
			}

			records := processFiles(cmd.Context(), ctnsum.NewProcessor(opts...), args, flags)

			enc := json.NewEncoder(cmd.OutOrStdout())
			failed := 0
			for _, rec := range records {
				if rec.Status == StatusFailed {
					failed++
				}
				if err := enc.Encode(rec); err != nil {
					return fmt.Errorf("failed to write status: %w", err)
				}
			}
			if failed > 0 {
				return fmt.Errorf("%d of %d file(s) failed", failed, len(records))
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&flags.outDir, "out", "o", ".", "Output directory for summary workbooks")
	cmd.Flags().IntVarP(&flags.jobs, "jobs", "j", 4, "Number of files processed concurrently")
	cmd.Flags().Int64Var(&flags.maxSize, "max-size", defaultMaxSize, "Maximum input file size in bytes")
	return cmd
}

// processFiles runs every path through p with at most flags.jobs in flight.
// Records come back in the order of paths.
func processFiles(ctx context.Context, p *ctnsum.Processor, paths []string, flags processFlags) []FileRecord {
	if ctx == nil {
		ctx = context.Background()
	}
	records := make([]FileRecord, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(flags.jobs, 1))

	for i, path := range paths {
		i, path := i, path
		now := time.Now().UTC()
		records[i] = FileRecord{
			ID:               uuid.NewString(),
			OriginalFilename: filepath.Base(path),
			Status:           StatusProcessing,
			CreatedAt:        now,
			UpdatedAt:        now,
		}
		g.Go(func() error {
			rec := &records[i]
			if err := gctx.Err(); err != nil {
				rec.fail(err)
				return nil
			}
			processOne(p, path, flags, rec)
			return nil
		})
	}
	_ = g.Wait()
	return records
}

func processOne(p *ctnsum.Processor, path string, flags processFlags, rec *FileRecord) {
	log := logger.With(zap.String("id", rec.ID), zap.String("file", rec.OriginalFilename))

	data, err := readInput(path, flags.maxSize, rec)
	if err != nil {
		log.Warn("Rejected input file", zap.Error(err))
		rec.fail(err)
		return
	}

	summary, err := p.ProcessBytes(data)
	if err != nil {
		log.Error("Processing failed", zap.Error(err))
		rec.fail(err)
		return
	}
	out, err := p.RenderBytes(summary)
	if err != nil {
		log.Error("Rendering failed", zap.Error(err))
		rec.fail(err)
		return
	}

	name := uuid.NewString() + ".xlsx"
	if err := os.WriteFile(filepath.Join(flags.outDir, name), out, 0o644); err != nil {
		log.Error("Writing output failed", zap.Error(err))
		rec.fail(fmt.Errorf("failed to write output: %w", err))
		return
	}

	rec.ProcessedFilename = name
	rec.TotalRecords = summary.Total
	rec.Status = StatusCompleted
	rec.UpdatedAt = time.Now().UTC()
	log.Info("Wrote summary workbook",
		zap.String("output", name),
		zap.String("container", summary.ContainerNumber),
		zap.Int("total", summary.Total))
}

// readInput enforces the extension and size limits before reading the file.
func readInput(path string, maxSize int64, rec *FileRecord) ([]byte, error) {
	if !strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return nil, errUnsupportedFile
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("file not found: %s", path)
	}
	rec.FileSize = info.Size()
	if maxSize > 0 && info.Size() > maxSize {
		return nil, fmt.Errorf("file size %d exceeds limit of %d bytes", info.Size(), maxSize)
	}
	return os.ReadFile(path)
}

func (r *FileRecord) fail(err error) {
	r.Status = StatusFailed
	r.ErrorMessage = err.Error()
	r.UpdatedAt = time.Now().UTC()
}
