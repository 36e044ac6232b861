package engine

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in      string
		want    ID
		wantErr bool
	}{
		{"paddleocr", Paddle, false},
		{"easyocr", EasyOCR, false},
		{"surya", Surya, false},
		{"tesseract", Tesseract, false},
		{"  Tesseract ", Tesseract, false},
		{"all", "", true},
		{"", "", true},
		{"gocr", "", true},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if tt.wantErr {
			require.Error(t, err, "input %q", tt.in)
			assert.ErrorIs(t, err, ErrUnknownEngine)
			continue
		}
		require.NoError(t, err, "input %q", tt.in)
		assert.Equal(t, tt.want, got)
	}
}

func TestIDsOrderIsFixed(t *testing.T) {
	want := []ID{Paddle, EasyOCR, Surya, Tesseract}
	assert.Equal(t, want, IDs())
	// The fan-out order must not vary between calls.
	assert.Equal(t, IDs(), IDs())
}

func TestResultFromLines(t *testing.T) {
	lines := []Line{
		{Text: "HELLO", Confidence: 0.9},
		{Text: "WORLD", Confidence: 0.8},
	}
	res := resultFromLines("EasyOCR", lines, 250*time.Millisecond)

	assert.True(t, res.Success)
	assert.Equal(t, "EasyOCR", res.Engine)
	assert.Equal(t, "HELLO\nWORLD", res.Text)
	assert.InDelta(t, 0.85, res.Confidence, 1e-9)
	assert.Equal(t, 2, res.Lines)
	assert.InDelta(t, 0.25, res.ProcessingTime, 1e-9)
	assert.Empty(t, res.Error)
}

func TestResultFromLinesEmptyRecognitionIsSuccess(t *testing.T) {
	res := resultFromLines("PaddleOCR", nil, time.Millisecond)

	assert.True(t, res.Success)
	assert.Equal(t, "", res.Text)
	assert.Equal(t, 0, res.Lines)
	assert.Equal(t, 0.0, res.Confidence)
}

func TestFailure(t *testing.T) {
	res := Failure("Surya", 10*time.Millisecond, errors.New("boom"))

	assert.False(t, res.Success)
	assert.Equal(t, "Surya", res.Engine)
	assert.Equal(t, "boom", res.Error)
	assert.InDelta(t, 0.01, res.ProcessingTime, 1e-9)
}

func TestCountNonEmptyLines(t *testing.T) {
	tests := []struct {
		text string
		want int
	}{
		{"", 0},
		{"one line", 1},
		{"a\nb\nc", 3},
		{"a\n\nb\n", 2},
		{"  \n\t\n", 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, countNonEmptyLines(tt.text), "text %q", tt.text)
	}
}

func TestDisplayName(t *testing.T) {
	assert.Equal(t, "PaddleOCR", Paddle.DisplayName())
	assert.Equal(t, "EasyOCR", EasyOCR.DisplayName())
	assert.Equal(t, "Surya", Surya.DisplayName())
	assert.Equal(t, "Tesseract", Tesseract.DisplayName())
}

func TestEngineErrorWrapping(t *testing.T) {
	err := NewEngineError("Get", Paddle, ErrEngineUnavailable, "no endpoint configured")

	assert.ErrorIs(t, err, ErrEngineUnavailable)
	assert.Contains(t, err.Error(), "paddleocr")
	assert.Contains(t, err.Error(), "no endpoint configured")
	assert.Equal(t, ErrEngineUnavailable, errors.Unwrap(err))
}
