package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
)

const headerInferenceID = "X-Inference-ID"

// Client talks to a running serving endpoint
type Client struct {
	httpClient *http.Client
	baseURL    string
}

func NewClient(baseURL string, timeout time.Duration) *Client {
	return &Client{
		httpClient: &http.Client{
			Timeout: timeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Response is a decoded endpoint reply
type Response struct {
	StatusCode  int
	InferenceID string
	Body        json.RawMessage
}

// APIError is a non-2xx reply
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("endpoint returned %d: %s", e.StatusCode, e.Message)
}

// Invoke posts a JSON payload to path and returns the raw JSON reply
func (c *Client) Invoke(ctx context.Context, path string, payload any) (*Response, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("encode payload: %w", err)
	}
	return c.do(ctx, http.MethodPost, path, bytes.NewReader(body))
}

// Predict sends {"texts": texts} to /invocations and returns the intents
func (c *Client) Predict(ctx context.Context, texts []string) ([]string, error) {
	resp, err := c.Invoke(ctx, "/invocations", map[string][]string{"texts": texts})
	if err != nil {
		return nil, err
	}
	var out struct {
		Intents []string `json:"intents"`
	}
	if err := json.Unmarshal(resp.Body, &out); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return out.Intents, nil
}

// Get fetches path, used for the probe endpoints
func (c *Client) Get(ctx context.Context, path string) (*Response, error) {
	return c.do(ctx, http.MethodGet, path, nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader) (*Response, error) {
	url := c.baseURL + path

	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	log.WithFields(log.Fields{
		"method": method,
		"url":    url,
	}).Debug("sending request to endpoint")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("endpoint request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var e struct {
			Error string `json:"error"`
		}
		msg := strings.TrimSpace(string(raw))
		if json.Unmarshal(raw, &e) == nil && e.Error != "" {
			msg = e.Error
		}
		return nil, &APIError{StatusCode: resp.StatusCode, Message: msg}
	}

	return &Response{
		StatusCode:  resp.StatusCode,
		InferenceID: resp.Header.Get(headerInferenceID),
		Body:        raw,
	}, nil
}
