package engine

import (
	"context"
	"encoding/json"
)

// suryaResponse is the native output shape of a Surya model server.
type suryaResponse struct {
	TextLines []struct {
		Text       string    `json:"text"`
		Confidence float64   `json:"confidence"`
		BBox       []float64 `json:"bbox"`
	} `json:"text_lines"`
}

func newSuryaEngine(ctx context.Context, cfg Config, accel bool) (Engine, error) {
	return newRemoteEngine(ctx, Surya, cfg.SuryaURL, cfg, accel, parseSurya)
}

func parseSurya(body []byte) ([]Line, error) {
	var resp suryaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(resp.TextLines))
	for _, tl := range resp.TextLines {
		lines = append(lines, Line{Text: tl.Text, Confidence: tl.Confidence})
	}
	return lines, nil
}
