package pipeline

import (
	"encoding/json"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ocrtool/internal/engine"
)

func TestImageRecordMarshalPreservesInvocationOrder(t *testing.T) {
	rec := NewImageRecord("/data/scan.png")
	// Deliberately not alphabetical: tesseract before easyocr.
	rec.Add(engine.Tesseract, okResult(engine.Tesseract, "a", 0.9, 1))
	rec.Add(engine.EasyOCR, okResult(engine.EasyOCR, "b", 0.8, 1))

	data, err := json.Marshal(rec)
	require.NoError(t, err)

	s := string(data)
	assert.Less(t, strings.Index(s, `"tesseract"`), strings.Index(s, `"easyocr"`),
		"engines object must keep invocation order, not key order")

	// Still a well-formed object with the expected fields.
	var decoded struct {
		Image   string                    `json:"image"`
		Path    string                    `json:"image_path"`
		Engines map[string]map[string]any `json:"engines"`
	}
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "scan.png", decoded.Image)
	assert.Len(t, decoded.Engines, 2)
	assert.Equal(t, "Tesseract", decoded.Engines["tesseract"]["engine"])
}

func TestResultErrorFieldPresentOnlyOnFailure(t *testing.T) {
	ok, err := json.Marshal(okResult(engine.Paddle, "text", 0.9, 1))
	require.NoError(t, err)
	assert.NotContains(t, string(ok), `"error"`)

	failed, err := json.Marshal(engine.Failure("PaddleOCR", time.Millisecond, errors.New("bad image")))
	require.NoError(t, err)
	assert.Contains(t, string(failed), `"error":"bad image"`)
}

func TestImageRecordMeanConfidenceExcludesFailures(t *testing.T) {
	rec := NewImageRecord("scan.png")
	rec.Add(engine.Paddle, okResult(engine.Paddle, "a", 0.9, 1))
	rec.Add(engine.EasyOCR, engine.Failure("EasyOCR", 0, errors.New("not installed")))
	rec.Add(engine.Surya, okResult(engine.Surya, "b", 0.5, 1))

	// Failed entries contribute nothing; they are excluded, not zero.
	assert.InDelta(t, 0.7, rec.MeanConfidence(), 1e-9)
	assert.Equal(t, 2, rec.SuccessCount())
}

func TestImageRecordMeanConfidenceAllFailed(t *testing.T) {
	rec := NewImageRecord("scan.png")
	rec.Add(engine.Paddle, engine.Failure("PaddleOCR", 0, errors.New("nope")))

	assert.Equal(t, 0.0, rec.MeanConfidence())
	assert.Equal(t, 0, rec.SuccessCount())
}

func TestNewBatchReportSummary(t *testing.T) {
	rec1 := NewImageRecord("a.png")
	rec1.Add(engine.Paddle, okResult(engine.Paddle, "x", 0.9, 1))
	rec1.Add(engine.Tesseract, okResult(engine.Tesseract, "y", 0.8, 1))

	rec2 := NewImageRecord("b.png")
	rec2.Add(engine.Paddle, engine.Failure("PaddleOCR", 0, errors.New("image decode failed")))
	rec2.Add(engine.Tesseract, engine.Failure("Tesseract", 0, errors.New("image decode failed")))

	rec3 := NewImageRecord("c.png")
	rec3.Add(engine.Paddle, okResult(engine.Paddle, "z", 1.0, 1))
	rec3.Add(engine.Tesseract, engine.Failure("Tesseract", 0, errors.New("backend error")))

	report := NewBatchReport([]*ImageRecord{rec1, rec2, rec3}, 1500*time.Millisecond)

	assert.Equal(t, 3, report.Summary.TotalImages)
	assert.Equal(t, 2, report.Summary.SuccessfulImages)
	assert.InDelta(t, 1.5, report.Summary.TotalTime, 1e-9)
	assert.Equal(t, map[string]int{"paddleocr": 2, "tesseract": 1}, report.Summary.EngineSuccesses)
}

func TestNewBatchReportEmpty(t *testing.T) {
	report := NewBatchReport(nil, 0)

	assert.Equal(t, 0, report.Summary.TotalImages)
	assert.Equal(t, 0, report.Summary.SuccessfulImages)
	assert.Nil(t, report.Summary.EngineSuccesses)
}
