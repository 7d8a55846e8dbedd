// Package publisher delivers catalog events to the push service.
package publisher

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
)

// HubPublisher posts events to the push service's /publish endpoint.
type HubPublisher struct {
	url        string
	httpClient *http.Client
}

func NewHubPublisher(baseURL string) *HubPublisher {
	return &HubPublisher{
		url:        strings.TrimRight(baseURL, "/") + "/publish",
		httpClient: &http.Client{Timeout: 5 * time.Second},
	}
}

func (p *HubPublisher) Publish(ctx context.Context, msg models.Message) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("do request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode/100 != 2 {
		return fmt.Errorf("publish failed with status: %d", resp.StatusCode)
	}
	return nil
}
