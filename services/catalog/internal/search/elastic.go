// Package search backs the catalog's searchProducts operation with
// Elasticsearch.
package search

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

const DefaultIndex = "products"

var ErrSearch = errors.New("search error")

type Config struct {
	URL      string
	User     string
	Password string
	Index    string
}

type Elastic struct {
	Client *elasticsearch.Client
	Index  string
}

// NewElastic connects to the cluster and checks it answers before returning.
func NewElastic(ctx context.Context, cfg Config) (*Elastic, error) {
	l := logging.FromContext(ctx).With("component", "search")
	l.Info("es_connecting", "url", cfg.URL)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.URL},
		Username:  cfg.User,
		Password:  cfg.Password,
	})
	if err != nil {
		return nil, fmt.Errorf("create elasticsearch client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("elasticsearch info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		l.Error("es_info_error", "status", res.StatusCode, "body", string(body))
		return nil, fmt.Errorf("%w: elasticsearch info: %s", ErrSearch, res.Status())
	}

	index := cfg.Index
	if index == "" {
		index = DefaultIndex
	}
	l.Info("es_connected", "index", index)
	return &Elastic{Client: client, Index: index}, nil
}

// IndexProducts upserts products by id in one bulk request.
func (e *Elastic) IndexProducts(ctx context.Context, products ...models.Product) error {
	if len(products) == 0 {
		return nil
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	for _, p := range products {
		meta := map[string]any{"index": map[string]any{"_id": strconv.Itoa(p.ID)}}
		if err := enc.Encode(meta); err != nil {
			return fmt.Errorf("encode bulk meta: %w", err)
		}
		if err := enc.Encode(p); err != nil {
			return fmt.Errorf("encode product %d: %w", p.ID, err)
		}
	}

	res, err := e.Client.Bulk(&buf,
		e.Client.Bulk.WithContext(ctx),
		e.Client.Bulk.WithIndex(e.Index),
		e.Client.Bulk.WithRefresh("true"),
	)
	if err != nil {
		return fmt.Errorf("%w: bulk: %v", ErrSearch, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("%w: bulk: %s", ErrSearch, res.Status())
	}

	var r struct {
		Errors bool `json:"errors"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return fmt.Errorf("decode bulk response: %w", err)
	}
	if r.Errors {
		return fmt.Errorf("%w: bulk request had item failures", ErrSearch)
	}
	return nil
}

// SearchProducts runs a fuzzy match over titles and descriptions, titles
// weighted double. A limit of zero leaves the engine's default page size.
func (e *Elastic) SearchProducts(ctx context.Context, query string, offset, limit int) ([]models.Product, error) {
	body := map[string]any{
		"query": map[string]any{
			"multi_match": map[string]any{
				"query":     query,
				"fields":    []string{"title^2", "description"},
				"fuzziness": "AUTO",
			},
		},
		"from": offset,
	}
	if limit > 0 {
		body["size"] = limit
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, fmt.Errorf("encode search: %w", err)
	}

	res, err := e.Client.Search(
		e.Client.Search.WithContext(ctx),
		e.Client.Search.WithIndex(e.Index),
		e.Client.Search.WithBody(&buf),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearch, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("%w: %s", ErrSearch, res.Status())
	}

	var r struct {
		Hits struct {
			Hits []struct {
				Source models.Product `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}

	products := make([]models.Product, len(r.Hits.Hits))
	for i, hit := range r.Hits.Hits {
		products[i] = hit.Source
	}
	return products, nil
}
