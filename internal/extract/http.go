package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"contas/internal/core"
)

// HTTPExtractor calls an external document-extraction service. The
// service receives the raw document body and answers with a JSON Result.
type HTTPExtractor struct {
	URL    string
	Client *http.Client
}

func NewHTTPExtractor(url string) *HTTPExtractor {
	return &HTTPExtractor{
		URL:    url,
		Client: &http.Client{Timeout: 30 * time.Second},
	}
}

func (e *HTTPExtractor) Extract(ctx context.Context, mimeType string, document []byte) (Result, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.URL, bytes.NewReader(document))
	if err != nil {
		return Result{}, fmt.Errorf("build extraction request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)

	resp, err := e.Client.Do(req)
	if err != nil {
		return Result{}, fmt.Errorf("call extraction service: %w: %v", core.ErrUpstreamUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{}, fmt.Errorf("extraction service returned %d: %w", resp.StatusCode, core.ErrUpstreamUnavailable)
	}

	var result Result
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Result{}, fmt.Errorf("decode extraction response: %w: %v", core.ErrUpstreamUnavailable, err)
	}
	return result, nil
}
