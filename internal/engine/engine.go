// Package engine provides the OCR engine registry and the adapters that
// normalize each backend's native output into one comparable result record.
//
// Four backends are supported: PaddleOCR, EasyOCR and Surya run as HTTP
// model servers (sidecars) and return per-line detections; Tesseract runs
// in-process through gosseract and returns plain text with a scalar
// confidence. Regardless of the backend, every recognition attempt yields
// a Result so that callers can compare engines uniformly.
//
// Engine handles are expensive to construct (a sidecar's first request may
// trigger a model download); the Registry constructs each one at most once
// per process and reuses it. A failed construction is not cached, so an
// engine whose sidecar appears later becomes available on a later call.
package engine

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// ID identifies one of the supported OCR backends.
type ID string

const (
	Paddle    ID = "paddleocr"
	EasyOCR   ID = "easyocr"
	Surya     ID = "surya"
	Tesseract ID = "tesseract"
)

// IDs returns the full engine enumeration in dispatch order. The order is
// fixed so that fan-out over "all" engines is deterministic.
func IDs() []ID {
	return []ID{Paddle, EasyOCR, Surya, Tesseract}
}

// Parse converts a user-supplied engine name into an ID.
func Parse(name string) (ID, error) {
	switch ID(strings.ToLower(strings.TrimSpace(name))) {
	case Paddle:
		return Paddle, nil
	case EasyOCR:
		return EasyOCR, nil
	case Surya:
		return Surya, nil
	case Tesseract:
		return Tesseract, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownEngine, name)
}

// DisplayName returns the human-readable engine name used in output records.
func (id ID) DisplayName() string {
	switch id {
	case Paddle:
		return "PaddleOCR"
	case EasyOCR:
		return "EasyOCR"
	case Surya:
		return "Surya"
	case Tesseract:
		return "Tesseract"
	}
	return string(id)
}

// Result is the normalized output of running one engine over one image.
// It is created once per (image, engine) pair and not mutated afterwards.
type Result struct {
	// Engine is the display name of the backend that produced this result.
	Engine string `json:"engine"`

	// Text is the recognized lines joined by line breaks, in detection order.
	Text string `json:"text"`

	// Confidence is the backend's estimate in [0,1]: the mean of per-line
	// confidences when the backend reports them, its own scalar otherwise.
	Confidence float64 `json:"confidence"`

	// Lines is the number of recognized text lines.
	Lines int `json:"lines"`

	// ProcessingTime is the wall-clock duration of the recognition call
	// itself, in seconds.
	ProcessingTime float64 `json:"processing_time"`

	// Success reports whether recognition completed. Empty output is still
	// a success; only backend errors clear this flag.
	Success bool `json:"success"`

	// Error holds the failure message. Present iff Success is false.
	Error string `json:"error,omitempty"`
}

// Engine is an initialized OCR backend able to produce a normalized Result
// from a decoded image on disk. Implementations must not let recoverable
// backend errors escape Recognize; they report them through the Result.
type Engine interface {
	// ID returns the engine identifier.
	ID() ID

	// Name returns the display name used in output records.
	Name() string

	// Recognize runs the backend over the image at path and normalizes its
	// output. It never returns an error: backend failures produce a Result
	// with Success=false and the message in Error.
	Recognize(ctx context.Context, imagePath string) Result

	// Close releases backend resources.
	Close() error
}

// Line is one recognized text fragment with the backend's confidence for it.
// It is the common currency the sidecar adapters normalize from.
type Line struct {
	Text       string
	Confidence float64
}

// resultFromLines normalizes a list of per-line detections. Zero lines is a
// successful empty recognition, not a failure.
func resultFromLines(name string, lines []Line, elapsed time.Duration) Result {
	texts := make([]string, len(lines))
	var sum float64
	for i, l := range lines {
		texts[i] = l.Text
		sum += l.Confidence
	}
	var confidence float64
	if len(lines) > 0 {
		confidence = sum / float64(len(lines))
	}
	return Result{
		Engine:         name,
		Text:           strings.Join(texts, "\n"),
		Confidence:     confidence,
		Lines:          len(lines),
		ProcessingTime: elapsed.Seconds(),
		Success:        true,
	}
}

// Failure builds a failed Result for an engine that could not run or could
// not recognize the image.
func Failure(name string, elapsed time.Duration, err error) Result {
	return Result{
		Engine:         name,
		ProcessingTime: elapsed.Seconds(),
		Success:        false,
		Error:          err.Error(),
	}
}

// countNonEmptyLines counts lines that contain non-whitespace text. Used by
// backends that return one text blob instead of per-line detections.
func countNonEmptyLines(text string) int {
	count := 0
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) != "" {
			count++
		}
	}
	return count
}
