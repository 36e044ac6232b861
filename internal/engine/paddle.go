package engine

import (
	"context"
	"encoding/json"
)

// paddleResponse is the native output shape of a PaddleOCR model server:
// one entry per detected region with its quadrilateral, text and score.
type paddleResponse struct {
	Results []struct {
		Box   [][]float64 `json:"box"`
		Text  string      `json:"text"`
		Score float64     `json:"score"`
	} `json:"results"`
}

// newPaddleEngine constructs the PaddleOCR adapter. The server performs
// angle classification and detection on its side; only text and score are
// consumed here.
func newPaddleEngine(ctx context.Context, cfg Config, accel bool) (Engine, error) {
	return newRemoteEngine(ctx, Paddle, cfg.PaddleURL, cfg, accel, parsePaddle)
}

func parsePaddle(body []byte) ([]Line, error) {
	var resp paddleResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(resp.Results))
	for _, r := range resp.Results {
		lines = append(lines, Line{Text: r.Text, Confidence: r.Score})
	}
	return lines, nil
}
