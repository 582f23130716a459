package narration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"raisingsim/internal/game"
)

const maxResponseBytes = 1 << 20

// WorkerClient posts the narration request to a worker endpoint that answers
// with a card-shaped JSON body.
type WorkerClient struct {
	HTTP *http.Client
}

func NewWorkerClient(timeout time.Duration) *WorkerClient {
	if timeout <= 0 {
		timeout = game.DefaultNarrationTimeout
	}
	return &WorkerClient{HTTP: &http.Client{Timeout: timeout}}
}

func (c *WorkerClient) Narrate(ctx context.Context, in game.NarrationRequest) (game.NarratedCard, error) {
	var out game.NarratedCard
	endpoint := strings.TrimSpace(in.Endpoint)
	if endpoint == "" {
		return out, ErrNoEndpoint
	}
	raw, err := json.Marshal(in)
	if err != nil {
		return out, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(raw))
	if err != nil {
		return out, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return out, err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return out, fmt.Errorf("narration worker status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&out); err != nil {
		return out, fmt.Errorf("decode narration: %w", err)
	}
	return out, nil
}
