package engine

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"

	"github.com/coolprogrammerarpit007/bg-remover/pkg/errors"
)

// Client talks to a rembg-compatible HTTP server (POST /api/remove).
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// NewClient creates a segmentation client for the given base URL.
// No fixed request timeout is set; the Executor owns the budget through
// the request context.
func NewClient(baseURL string) *Client {
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{},
	}
}

// Segment uploads the image as multipart form data and returns the engine's
// output bytes.
func (c *Client) Segment(ctx context.Context, data []byte, opts Options) ([]byte, error) {
	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreateFormFile("file", "image.png")
	if err != nil {
		return nil, errors.Wrap(err, "create form file")
	}
	if _, err := io.Copy(part, bytes.NewReader(data)); err != nil {
		return nil, errors.Wrap(err, "copy image data")
	}
	if err := writer.Close(); err != nil {
		return nil, errors.Wrap(err, "close multipart writer")
	}

	q := url.Values{}
	if opts.Model != "" {
		q.Set("model", opts.Model)
	}
	if opts.AlphaMatting {
		q.Set("a", "true")
		q.Set("af", strconv.Itoa(opts.ForegroundThreshold))
		q.Set("ab", strconv.Itoa(opts.BackgroundThreshold))
	}
	endpoint := c.baseURL + "/api/remove"
	if len(q) > 0 {
		endpoint += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	req.Header.Set("Accept", "image/png")

	slog.Debug("engine_request", "endpoint", endpoint, "payload_bytes", len(data))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "engine request failed")
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.Wrap(err, "read engine response")
	}

	if resp.StatusCode != http.StatusOK {
		snippet := respBody
		if len(snippet) > 256 {
			snippet = snippet[:256]
		}
		return nil, fmt.Errorf("engine returned status %d: %s", resp.StatusCode, snippet)
	}

	return respBody, nil
}
