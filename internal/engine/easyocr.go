package engine

import (
	"context"
	"encoding/json"
	"fmt"
)

// easyOCRResponse is the native output shape of an EasyOCR model server.
// Each detection is a heterogeneous triple [bounding box, text, confidence],
// so the elements are decoded individually.
type easyOCRResponse struct {
	Detections [][]json.RawMessage `json:"detections"`
}

func newEasyOCREngine(ctx context.Context, cfg Config, accel bool) (Engine, error) {
	return newRemoteEngine(ctx, EasyOCR, cfg.EasyOCRURL, cfg, accel, parseEasyOCR)
}

func parseEasyOCR(body []byte) ([]Line, error) {
	var resp easyOCRResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(resp.Detections))
	for i, det := range resp.Detections {
		if len(det) < 3 {
			return nil, fmt.Errorf("detection %d has %d elements, want 3", i, len(det))
		}
		var line Line
		if err := json.Unmarshal(det[1], &line.Text); err != nil {
			return nil, fmt.Errorf("detection %d text: %w", i, err)
		}
		if err := json.Unmarshal(det[2], &line.Confidence); err != nil {
			return nil, fmt.Errorf("detection %d confidence: %w", i, err)
		}
		lines = append(lines, line)
	}
	return lines, nil
}
