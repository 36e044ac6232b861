package engine

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"time"
)

// remoteEngine talks to an OCR model server over HTTP. PaddleOCR, EasyOCR
// and Surya all run as sidecar services with the same request shape but
// backend-specific response shapes; each adapter supplies the parser that
// normalizes its backend's native output into lines.
type remoteEngine struct {
	id     ID
	name   string
	base   string
	lang   string
	accel  bool
	client *http.Client
	parse  func(body []byte) ([]Line, error)
}

// recognizeRequest is the payload sent to a model server.
type recognizeRequest struct {
	Image       string `json:"image_base64"`
	Language    string `json:"language,omitempty"`
	Accelerator bool   `json:"accelerator"`
}

// newRemoteEngine probes the model server and returns a handle on success.
// An unset URL or an unreachable server means the engine is unavailable,
// not broken: the caller records the condition and may retry later.
func newRemoteEngine(ctx context.Context, id ID, baseURL string, cfg Config, accel bool, parse func([]byte) ([]Line, error)) (Engine, error) {
	const op = "newRemoteEngine"

	if baseURL == "" {
		return nil, NewEngineError(op, id, ErrEngineUnavailable, "no endpoint configured")
	}
	if _, err := url.Parse(baseURL); err != nil {
		return nil, NewEngineError(op, id, ErrInitFailed, fmt.Sprintf("invalid endpoint %q", baseURL))
	}

	e := &remoteEngine{
		id:    id,
		name:  id.DisplayName(),
		base:  baseURL,
		lang:  cfg.Language,
		accel: accel,
		client: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		parse: parse,
	}

	if err := e.probe(ctx, cfg.ProbeTimeout); err != nil {
		return nil, NewEngineError(op, id, ErrEngineUnavailable, err.Error())
	}
	return e, nil
}

// probe checks that the model server answers its health endpoint.
func (e *remoteEngine) probe(ctx context.Context, timeout time.Duration) error {
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, e.base+"/healthz", nil)
	if err != nil {
		return err
	}
	resp, err := e.client.Do(req)
	if err != nil {
		return fmt.Errorf("model server not reachable: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("model server health check returned %s", resp.Status)
	}
	return nil
}

func (e *remoteEngine) ID() ID       { return e.id }
func (e *remoteEngine) Name() string { return e.name }

// Recognize sends the image to the model server and normalizes its response.
// The reported duration covers the recognition request only, not the image
// read or the request encoding.
func (e *remoteEngine) Recognize(ctx context.Context, imagePath string) Result {
	data, err := os.ReadFile(imagePath)
	if err != nil {
		return Failure(e.name, 0, fmt.Errorf("read image: %w", err))
	}

	payload, err := json.Marshal(recognizeRequest{
		Image:       base64.StdEncoding.EncodeToString(data),
		Language:    e.lang,
		Accelerator: e.accel,
	})
	if err != nil {
		return Failure(e.name, 0, fmt.Errorf("encode request: %w", err))
	}

	start := time.Now()
	body, err := e.post(ctx, payload)
	elapsed := time.Since(start)
	if err != nil {
		return Failure(e.name, elapsed, NewEngineError("Recognize", e.id, ErrRecognitionFailed, err.Error()))
	}

	lines, err := e.parse(body)
	if err != nil {
		return Failure(e.name, elapsed, NewEngineError("Recognize", e.id, ErrRecognitionFailed, fmt.Sprintf("malformed response: %v", err)))
	}
	return resultFromLines(e.name, lines, elapsed)
}

func (e *remoteEngine) post(ctx context.Context, payload []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.base+"/ocr", bytes.NewReader(payload))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("model server returned %s: %s", resp.Status, truncate(body, 200))
	}
	return body, nil
}

func (e *remoteEngine) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

func truncate(b []byte, n int) string {
	if len(b) <= n {
		return string(b)
	}
	return string(b[:n]) + "..."
}
