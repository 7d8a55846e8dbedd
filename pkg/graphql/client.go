package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const DefaultErrorMessage = "request failed"

var ErrRequest = errors.New("graphql request failed")

type Querier interface {
	Query(ctx context.Context, query string, variables map[string]any, out any) error
}

type Request struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables"`
}

type ErrorEntry struct {
	Message string `json:"message"`
}

type Response struct {
	Data   json.RawMessage `json:"data,omitempty"`
	Errors []ErrorEntry    `json:"errors,omitempty"`
}

// Error is returned for every failed query. Errors holds the server-reported
// entries when the response carried any.
type Error struct {
	Message    string
	Errors     []ErrorEntry
	StatusCode int
	Err        error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{ErrRequest}
	}
	return []error{ErrRequest, e.Err}
}

// MessageOf extracts a user-facing message: the first server error message,
// then the error's own text, then DefaultErrorMessage.
func MessageOf(err error) string {
	if err == nil {
		return ""
	}
	var gqlErr *Error
	if errors.As(err, &gqlErr) {
		if len(gqlErr.Errors) > 0 && gqlErr.Errors[0].Message != "" {
			return gqlErr.Errors[0].Message
		}
		if gqlErr.Err != nil && gqlErr.Err.Error() != "" {
			return gqlErr.Err.Error()
		}
		if gqlErr.Message != "" {
			return gqlErr.Message
		}
		return DefaultErrorMessage
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return DefaultErrorMessage
}

type Client struct {
	endpoint   string
	httpClient *http.Client
	header     http.Header
}

func NewClient(endpoint string) *Client {
	return &Client{
		endpoint: endpoint,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		header: http.Header{"Content-Type": []string{"application/json"}},
	}
}

func NewClientWithHTTP(endpoint string, httpClient *http.Client) *Client {
	c := NewClient(endpoint)
	c.httpClient = httpClient
	return c
}

func (c *Client) Query(ctx context.Context, query string, variables map[string]any, out any) error {
	if variables == nil {
		variables = map[string]any{}
	}
	body, err := json.Marshal(Request{Query: query, Variables: variables})
	if err != nil {
		return newError(0, nil, fmt.Errorf("encode request: %w", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return newError(0, nil, fmt.Errorf("create request: %w", err))
	}
	for k, v := range c.header {
		req.Header[k] = v
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return newError(0, nil, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return newError(resp.StatusCode, nil, fmt.Errorf("read response: %w", err))
	}

	var gqlResp Response
	decodeErr := json.Unmarshal(raw, &gqlResp)

	if len(gqlResp.Errors) > 0 {
		return newError(resp.StatusCode, gqlResp.Errors, nil)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return newError(resp.StatusCode, nil, fmt.Errorf("http status %d", resp.StatusCode))
	}
	if decodeErr != nil {
		return newError(resp.StatusCode, nil, fmt.Errorf("decode response: %w", decodeErr))
	}

	if out == nil || len(gqlResp.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(gqlResp.Data, out); err != nil {
		return newError(resp.StatusCode, nil, fmt.Errorf("decode data: %w", err))
	}
	return nil
}

func newError(status int, entries []ErrorEntry, cause error) *Error {
	e := &Error{Errors: entries, StatusCode: status, Err: cause}
	e.Message = MessageOf(e)
	return e
}
