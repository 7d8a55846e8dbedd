package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/graphql"
	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/catalog/internal/repo"
)

var (
	ErrValidation = errors.New("validation error")
	ErrNotFound   = repo.ErrNotFound
)

// OperationError carries the message shown to GraphQL clients.
type OperationError struct {
	Msg string
	Err error
}

func (e *OperationError) Error() string { return e.Msg }
func (e *OperationError) Unwrap() error { return e.Err }

func opErr(kind error, format string, args ...any) error {
	return &OperationError{Msg: fmt.Sprintf(format, args...), Err: kind}
}

// Publisher forwards push events to connected clients.
type Publisher interface {
	Publish(ctx context.Context, msg models.Message) error
}

// Searcher runs full-text product searches. The repo's LIKE search is the
// fallback when no search engine is configured.
type Searcher interface {
	SearchProducts(ctx context.Context, query string, offset, limit int) ([]models.Product, error)
}

// Indexer is implemented by searchers that keep their own copy of products.
type Indexer interface {
	IndexProducts(ctx context.Context, products ...models.Product) error
}

type CatalogService struct {
	Repo      *repo.GormRepo
	Searcher  Searcher
	Publisher Publisher
	Now       func() time.Time
}

type variables struct {
	Limit    int    `json:"limit"`
	Offset   int    `json:"offset"`
	ID       *int   `json:"id"`
	Category string `json:"category"`
	Query    string `json:"query"`
}

// Execute runs the named operation of a GraphQL document and returns the
// value for the response's data field. Operations are matched by name only.
func (s *CatalogService) Execute(ctx context.Context, query string, rawVars json.RawMessage) (any, error) {
	if query == "" {
		return nil, opErr(ErrValidation, "graphql request must contain a query field")
	}

	var vars variables
	if len(rawVars) > 0 && string(rawVars) != "null" {
		if err := json.Unmarshal(rawVars, &vars); err != nil {
			return nil, opErr(ErrValidation, "invalid variables: %v", err)
		}
	}

	op := graphql.OperationName(query)
	switch op {
	case graphql.OpGetProducts:
		offset := vars.Offset
		if offset < 0 {
			offset = 0
		}
		products, err := s.Repo.ListProducts(ctx, offset, vars.Limit)
		if err != nil {
			return nil, err
		}
		return map[string]any{"products": products}, nil

	case graphql.OpGetProduct:
		if vars.ID == nil {
			return nil, opErr(ErrValidation, "id is required")
		}
		p, err := s.Repo.GetProduct(ctx, *vars.ID)
		if errors.Is(err, repo.ErrNotFound) {
			return nil, opErr(ErrNotFound, "Product with ID %d not found", *vars.ID)
		}
		if err != nil {
			return nil, err
		}
		return map[string]any{"product": p}, nil

	case graphql.OpGetProductsByCategory:
		products, err := s.Repo.ProductsByCategory(ctx, vars.Category)
		if err != nil {
			return nil, err
		}
		return map[string]any{"productsByCategory": products}, nil

	case graphql.OpSearchProducts:
		if strings.TrimSpace(vars.Query) == "" {
			return nil, opErr(ErrValidation, "query is required")
		}
		offset := vars.Offset
		if offset < 0 {
			offset = 0
		}
		products, err := s.searcher().SearchProducts(ctx, vars.Query, offset, vars.Limit)
		if err != nil {
			return nil, err
		}
		return map[string]any{"searchProducts": products}, nil

	case graphql.OpGetCategories:
		categories, err := s.Repo.Categories(ctx)
		if err != nil {
			return nil, err
		}
		return map[string]any{"categories": categories}, nil

	default:
		return nil, opErr(ErrValidation, "Unknown operation: %s", op)
	}
}

// UpdatePrice stores the new price and announces it as a price_update event.
// A failed announcement is logged and does not fail the update.
func (s *CatalogService) UpdatePrice(ctx context.Context, id int, price float64) (*models.Product, error) {
	l := logging.FromContext(ctx).With("service", "catalog", "product_id", id)
	if price < 0 {
		return nil, opErr(ErrValidation, "price cannot be negative")
	}

	p, old, err := s.Repo.UpdatePrice(ctx, id, price)
	if err != nil {
		return nil, err
	}
	l.Info("price_updated", "old_price", old, "new_price", price)

	if ix, ok := s.Searcher.(Indexer); ok {
		if err := ix.IndexProducts(ctx, *p); err != nil {
			l.Warn("search_index_error", "error", err)
		}
	}

	if s.Publisher != nil {
		now := time.Now
		if s.Now != nil {
			now = s.Now
		}
		msg := models.PriceUpdateMessage{
			Type:      models.MessagePriceUpdate,
			ProductID: id,
			NewPrice:  price,
			Timestamp: now().UTC().Format("2006-01-02T15:04:05.000Z07:00"),
		}
		if err := s.Publisher.Publish(ctx, msg); err != nil {
			l.Warn("price_update_publish_error", "error", err)
		}
	}
	return p, nil
}

func (s *CatalogService) searcher() Searcher {
	if s.Searcher != nil {
		return s.Searcher
	}
	return s.Repo
}
