// Package chatclient calls the POST /api/chat endpoint.
package chatclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultTimeout = 90 * time.Second

type chatRequest struct {
	Question string `json:"question"`
	Context  string `json:"context"`
}

type chatResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Data    struct {
		Answer string `json:"answer"`
	} `json:"data"`
}

// StatusError is a non-2xx answer from the chat endpoint.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("chatclient: API error: %s", http.StatusText(e.StatusCode))
	}
	return fmt.Sprintf("chatclient: API error %d: %s", e.StatusCode, e.Message)
}

func (e *StatusError) HTTPStatusCode() int {
	return e.StatusCode
}

type Client struct {
	url        string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		if httpClient != nil {
			c.httpClient = httpClient
		}
	}
}

// New returns a client for the service rooted at baseURL, e.g.
// "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if base == "" {
		return nil, errors.New("chatclient: base URL must not be empty")
	}
	c := &Client{
		url:        base + "/api/chat",
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Ask sends one question and its document context and returns the answer.
func (c *Client) Ask(ctx context.Context, question, documentContext string) (string, error) {
	body, err := json.Marshal(chatRequest{Question: question, Context: documentContext})
	if err != nil {
		return "", fmt.Errorf("chatclient: marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("chatclient: create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	res, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("chatclient: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	raw, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("chatclient: read response body: %w", err)
	}

	var payload chatResponse
	decErr := json.Unmarshal(raw, &payload)
	if res.StatusCode < 200 || res.StatusCode >= 300 {
		return "", &StatusError{StatusCode: res.StatusCode, Message: payload.Error}
	}
	if decErr != nil {
		return "", fmt.Errorf("chatclient: decode response: %w", decErr)
	}
	if !payload.Success || payload.Data.Answer == "" {
		msg := payload.Error
		if msg == "" {
			msg = "Invalid response from API"
		}
		return "", fmt.Errorf("chatclient: %s", msg)
	}
	return payload.Data.Answer, nil
}
