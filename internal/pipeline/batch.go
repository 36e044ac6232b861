package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"ocrtool/internal/imaging"
	"ocrtool/internal/logger"
)

// ErrNoImages is returned when a directory contains no supported image
// files. An empty batch is a distinct, reportable condition, not a crash.
var ErrNoImages = errors.New("no supported image files found")

// Batch applies the dispatcher across every supported image in a directory.
// Images are processed sequentially in lexicographic name order so that runs
// are reproducible; a failure on one file is recorded and processing
// continues with the next.
type Batch struct {
	dispatcher *Dispatcher
	log        zerolog.Logger
}

// NewBatch creates a batch orchestrator over the given dispatcher.
func NewBatch(dispatcher *Dispatcher) *Batch {
	return &Batch{
		dispatcher: dispatcher,
		log:        logger.WithComponent("batch"),
	}
}

// Run processes every supported image in dir and returns the aggregate
// report. Context cancellation is honored between images only: a recognition
// call already issued runs to completion.
func (b *Batch) Run(ctx context.Context, dir string, sel Selector) (*BatchReport, error) {
	files, err := b.listImages(dir)
	if err != nil {
		return nil, err
	}

	b.log.Info().
		Str("dir", dir).
		Int("images", len(files)).
		Str("selector", sel.String()).
		Msg("Starting batch")

	start := time.Now()
	records := make([]*ImageRecord, 0, len(files))
	for _, f := range files {
		if ctx.Err() != nil {
			b.log.Warn().
				Int("processed", len(records)).
				Int("total", len(files)).
				Msg("Batch aborted between images")
			break
		}
		records = append(records, b.dispatcher.Dispatch(ctx, f, sel))
	}

	report := NewBatchReport(records, time.Since(start))
	b.log.Info().
		Int("images", report.Summary.TotalImages).
		Int("successful", report.Summary.SuccessfulImages).
		Float64("total_time", report.Summary.TotalTime).
		Msg("Batch finished")
	return report, nil
}

// listImages returns the supported files in dir, sorted by name.
func (b *Batch) listImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() || !imaging.SupportedFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("%w in %s", ErrNoImages, dir)
	}
	return files, nil
}
