// Package pipeline routes recognition requests to one or all engines,
// applies them across directories, and aggregates the normalized results
// into the externally visible JSON structures.
package pipeline

import (
	"bytes"
	"encoding/json"
	"path/filepath"

	"ocrtool/internal/engine"
)

// EngineEntry pairs an engine identifier with its normalized result.
type EngineEntry struct {
	ID     engine.ID
	Result engine.Result
}

// ImageRecord is one input image's aggregate outcome: one entry per engine
// attempted, in invocation order. With a single-engine selector it holds
// exactly one entry; with "all" it holds one entry per enumerated engine,
// available or not.
type ImageRecord struct {
	Image   string
	Path    string
	Entries []EngineEntry
}

// NewImageRecord creates a record for the image at path. The path is made
// absolute so batch reports are unambiguous wherever they are read.
func NewImageRecord(path string) *ImageRecord {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return &ImageRecord{
		Image: filepath.Base(path),
		Path:  abs,
	}
}

// Add appends an engine's result. Keys stay unique: one attempt per engine
// per dispatch.
func (r *ImageRecord) Add(id engine.ID, res engine.Result) {
	r.Entries = append(r.Entries, EngineEntry{ID: id, Result: res})
}

// Result returns the entry for id, if the engine was attempted.
func (r *ImageRecord) Result(id engine.ID) (engine.Result, bool) {
	for _, e := range r.Entries {
		if e.ID == id {
			return e.Result, true
		}
	}
	return engine.Result{}, false
}

// SuccessCount returns the number of engines that succeeded on this image.
func (r *ImageRecord) SuccessCount() int {
	n := 0
	for _, e := range r.Entries {
		if e.Result.Success {
			n++
		}
	}
	return n
}

// MeanConfidence averages the confidences of the successful entries. Failed
// entries are excluded from the mean, not counted as zero. Returns 0 when
// nothing succeeded.
func (r *ImageRecord) MeanConfidence() float64 {
	var sum float64
	n := 0
	for _, e := range r.Entries {
		if e.Result.Success {
			sum += e.Result.Confidence
			n++
		}
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// MarshalJSON emits the record with the engines object keyed by engine id in
// invocation order. A Go map would marshal its keys sorted, losing the order
// the engines were attempted in, so the object is assembled by hand.
func (r *ImageRecord) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteString(`{"image":`)
	if err := writeJSON(&buf, r.Image); err != nil {
		return nil, err
	}
	buf.WriteString(`,"image_path":`)
	if err := writeJSON(&buf, r.Path); err != nil {
		return nil, err
	}
	buf.WriteString(`,"engines":{`)
	for i, e := range r.Entries {
		if i > 0 {
			buf.WriteByte(',')
		}
		if err := writeJSON(&buf, string(e.ID)); err != nil {
			return nil, err
		}
		buf.WriteByte(':')
		if err := writeJSON(&buf, e.Result); err != nil {
			return nil, err
		}
	}
	buf.WriteString("}}")
	return buf.Bytes(), nil
}

func writeJSON(buf *bytes.Buffer, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	buf.Write(b)
	return nil
}
