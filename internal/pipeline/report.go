package pipeline

import (
	"time"
)

// Summary holds the batch-level totals. Every confidence reported at any
// aggregation level is an arithmetic mean of the non-failed constituents.
type Summary struct {
	// TotalImages is the number of images attempted.
	TotalImages int `json:"total_images"`

	// SuccessfulImages counts images where at least one engine succeeded.
	SuccessfulImages int `json:"successful_images"`

	// EngineSuccesses counts, per engine, how many images it succeeded on.
	EngineSuccesses map[string]int `json:"engine_successes,omitempty"`

	// TotalTime is the wall-clock duration of the whole batch in seconds,
	// independent of the per-result processing times.
	TotalTime float64 `json:"total_time"`
}

// BatchReport is the aggregate over a directory run: the per-image records
// in processing order plus the summary totals.
type BatchReport struct {
	Images  []*ImageRecord `json:"images"`
	Summary Summary        `json:"summary"`
}

// NewBatchReport builds the report and its derived summary fields.
func NewBatchReport(records []*ImageRecord, elapsed time.Duration) *BatchReport {
	return &BatchReport{
		Images:  records,
		Summary: summarize(records, elapsed),
	}
}

func summarize(records []*ImageRecord, elapsed time.Duration) Summary {
	s := Summary{
		TotalImages: len(records),
		TotalTime:   elapsed.Seconds(),
	}
	for _, rec := range records {
		if rec.SuccessCount() > 0 {
			s.SuccessfulImages++
		}
		for _, e := range rec.Entries {
			if e.Result.Success {
				if s.EngineSuccesses == nil {
					s.EngineSuccesses = make(map[string]int)
				}
				s.EngineSuccesses[string(e.ID)]++
			}
		}
	}
	return s
}
