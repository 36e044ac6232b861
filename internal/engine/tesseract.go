package engine

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/otiai10/gosseract/v2"
)

// tesseractEngine runs Tesseract in-process through gosseract. Unlike the
// sidecar backends it returns one text blob per call; the line count is
// derived from the text and the confidence from the word-level boxes.
// Tesseract is CPU-only, so the accelerator flag is ignored.
type tesseractEngine struct {
	lang          string
	clientFactory func() *gosseract.Client
}

// newTesseractEngine verifies the Tesseract installation and the requested
// traineddata before handing out a handle.
func newTesseractEngine(_ context.Context, cfg Config, _ bool) (Engine, error) {
	const op = "newTesseractEngine"

	if gosseract.Version() == "" {
		return nil, NewEngineError(op, Tesseract, ErrEngineUnavailable, "tesseract library not found")
	}

	lang := cfg.TesseractLanguage
	if lang == "" {
		lang = "eng"
	}

	c := gosseract.NewClient()
	defer c.Close()
	if err := c.SetLanguage(lang); err != nil {
		return nil, NewEngineError(op, Tesseract, ErrInitFailed, fmt.Sprintf("language %q: %v", lang, err))
	}

	return &tesseractEngine{
		lang:          lang,
		clientFactory: gosseract.NewClient,
	}, nil
}

func (e *tesseractEngine) ID() ID       { return Tesseract }
func (e *tesseractEngine) Name() string { return Tesseract.DisplayName() }

// Recognize extracts text from the image. A fresh client per call keeps the
// handle safe to share; gosseract clients carry per-image state.
func (e *tesseractEngine) Recognize(_ context.Context, imagePath string) Result {
	name := e.Name()

	c := e.clientFactory()
	defer c.Close()

	if err := c.SetLanguage(e.lang); err != nil {
		return Failure(name, 0, NewEngineError("Recognize", Tesseract, ErrRecognitionFailed, err.Error()))
	}
	if err := c.SetImage(imagePath); err != nil {
		return Failure(name, 0, NewEngineError("Recognize", Tesseract, ErrRecognitionFailed, err.Error()))
	}

	start := time.Now()
	text, err := c.Text()
	elapsed := time.Since(start)
	if err != nil {
		return Failure(name, elapsed, NewEngineError("Recognize", Tesseract, ErrRecognitionFailed, err.Error()))
	}

	text = normalizeText(text)
	return Result{
		Engine:         name,
		Text:           text,
		Confidence:     meanWordConfidence(c),
		Lines:          countNonEmptyLines(text),
		ProcessingTime: elapsed.Seconds(),
		Success:        true,
	}
}

func (e *tesseractEngine) Close() error { return nil }

// meanWordConfidence averages the word-level confidences Tesseract reports.
// Tesseract scores words 0-100; the result is normalized to [0,1]. Missing
// boxes (blank image) yield 0.
func meanWordConfidence(c *gosseract.Client) float64 {
	boxes, err := c.GetBoundingBoxes(gosseract.RIL_WORD)
	if err != nil || len(boxes) == 0 {
		return 0
	}
	var sum float64
	for _, b := range boxes {
		sum += b.Confidence
	}
	return sum / float64(len(boxes)) / 100.0
}

// normalizeText trims the output and unifies line endings.
func normalizeText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	return strings.TrimSpace(text)
}
