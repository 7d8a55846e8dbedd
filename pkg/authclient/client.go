package authclient

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

var ErrLoginRejected = errors.New("login rejected")

type Client struct {
	loginURL   string
	httpClient *http.Client
}

func NewClient(loginURL string) *Client {
	return &Client{
		loginURL: loginURL,
		httpClient: &http.Client{
			Timeout: 5 * time.Second,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
	}
}

func NewClientWithHTTP(loginURL string, hc *http.Client) *Client {
	return &Client{loginURL: loginURL, httpClient: hc}
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// StatusError is returned for non-2xx answers. Message holds the server's
// "message" field when it sent one.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("login failed with status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("login failed with status %d", e.StatusCode)
}

func (e *StatusError) Unwrap() error { return ErrLoginRejected }

// Login posts the credentials. Any 2xx answer counts as success and the body
// is ignored.
func (c *Client) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(LoginRequest{Email: email, Password: password})
	if err != nil {
		return fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.loginURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	var payload struct {
		Message string `json:"message"`
	}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if json.Unmarshal(raw, &payload) != nil {
		payload.Message = strings.TrimSpace(string(raw))
	}
	return &StatusError{StatusCode: resp.StatusCode, Message: payload.Message}
}
