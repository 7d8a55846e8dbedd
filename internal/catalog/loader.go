// Package catalog loads products through the GraphQL query interface and
// holds the in-memory product list the rest of the client reads.
package catalog

import (
	"context"
	"sync"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/observer"
	"github.com/Skotchmaster/storefront/pkg/graphql"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type FetchOptions struct {
	Limit  *int
	Offset *int
}

type State struct {
	Loading bool
	Error   string
}

type Loader struct {
	client graphql.Querier

	mu       sync.Mutex
	products []models.Product
	inFlight int
	errMsg   string

	listeners observer.Listeners[[]models.Product]
}

func New(client graphql.Querier) *Loader {
	return &Loader{client: client}
}

// FetchProducts replaces the product list on success. On failure the error
// message is recorded and the previous list is kept. Responses are applied
// in completion order.
func (l *Loader) FetchProducts(ctx context.Context, opts FetchOptions) {
	log := logging.FromContext(ctx).With("component", "catalog", "op", "fetch_products")
	l.begin()
	defer l.end()

	variables := map[string]any{}
	if opts.Limit != nil {
		variables["limit"] = *opts.Limit
	}
	if opts.Offset != nil {
		variables["offset"] = *opts.Offset
	}

	var data struct {
		Products []models.Product `json:"products"`
	}
	if err := l.client.Query(ctx, graphql.GetProducts, variables, &data); err != nil {
		l.fail(err)
		log.Error("fetch_products_error", "error", err)
		return
	}

	products := data.Products
	if products == nil {
		products = []models.Product{}
	}

	log.Info("fetch_products_success", "count", len(products))

	l.mu.Lock()
	l.products = products
	l.publish(l.snapshot())
}

// FetchProduct loads a single product without touching the product list.
func (l *Loader) FetchProduct(ctx context.Context, id int) (*models.Product, error) {
	log := logging.FromContext(ctx).With("component", "catalog", "op", "fetch_product", "product_id", id)
	l.begin()
	defer l.end()

	var data struct {
		Product *models.Product `json:"product"`
	}
	if err := l.client.Query(ctx, graphql.GetProduct, map[string]any{"id": id}, &data); err != nil {
		l.fail(err)
		log.Error("fetch_product_error", "error", err)
		return nil, err
	}
	return data.Product, nil
}

func (l *Loader) FetchProductsByCategory(ctx context.Context, category string) ([]models.Product, error) {
	log := logging.FromContext(ctx).With("component", "catalog", "op", "fetch_by_category", "category", category)
	l.begin()
	defer l.end()

	var data struct {
		Products []models.Product `json:"productsByCategory"`
	}
	if err := l.client.Query(ctx, graphql.GetProductsByCategory, map[string]any{"category": category}, &data); err != nil {
		l.fail(err)
		log.Error("fetch_by_category_error", "error", err)
		return nil, err
	}
	return data.Products, nil
}

// SearchProducts asks the backend for products matching query. The loaded
// list is left alone.
func (l *Loader) SearchProducts(ctx context.Context, query string, opts FetchOptions) ([]models.Product, error) {
	log := logging.FromContext(ctx).With("component", "catalog", "op", "search_products")
	l.begin()
	defer l.end()

	variables := map[string]any{"query": query}
	if opts.Limit != nil {
		variables["limit"] = *opts.Limit
	}
	if opts.Offset != nil {
		variables["offset"] = *opts.Offset
	}

	var data struct {
		Products []models.Product `json:"searchProducts"`
	}
	if err := l.client.Query(ctx, graphql.SearchProducts, variables, &data); err != nil {
		l.fail(err)
		log.Error("search_products_error", "error", err)
		return nil, err
	}
	if data.Products == nil {
		data.Products = []models.Product{}
	}
	return data.Products, nil
}

func (l *Loader) FetchCategories(ctx context.Context) ([]string, error) {
	log := logging.FromContext(ctx).With("component", "catalog", "op", "fetch_categories")

	var data struct {
		Categories []string `json:"categories"`
	}
	if err := l.client.Query(ctx, graphql.GetCategories, nil, &data); err != nil {
		log.Error("fetch_categories_error", "error", err)
		return nil, err
	}
	return data.Categories, nil
}

func (l *Loader) Products() []models.Product {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.snapshot()
}

func (l *Loader) Product(id int) (models.Product, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, p := range l.products {
		if p.ID == id {
			return p, true
		}
	}
	return models.Product{}, false
}

func (l *Loader) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	return State{Loading: l.inFlight > 0, Error: l.errMsg}
}

// UpdateProductPrice overwrites the price of a loaded product. It returns the
// updated product and the previous price, or false when the id is unknown.
func (l *Loader) UpdateProductPrice(id int, newPrice float64) (models.Product, float64, bool) {
	l.mu.Lock()
	idx := -1
	for i := range l.products {
		if l.products[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		l.mu.Unlock()
		return models.Product{}, 0, false
	}
	old := l.products[idx].Price
	l.products[idx].Price = newPrice
	updated := l.products[idx]
	l.publish(l.snapshot())
	return updated, old, true
}

// Subscribe registers fn for the product list after each change. Deliveries
// are serialized, so fn must not mutate the loader.
func (l *Loader) Subscribe(fn func([]models.Product)) func() {
	return l.listeners.Subscribe(fn)
}

func (l *Loader) begin() {
	l.mu.Lock()
	l.inFlight++
	l.errMsg = ""
	l.mu.Unlock()
}

func (l *Loader) end() {
	l.mu.Lock()
	l.inFlight--
	l.mu.Unlock()
}

func (l *Loader) fail(err error) {
	msg := graphql.MessageOf(err)
	l.mu.Lock()
	l.errMsg = msg
	l.mu.Unlock()
}

// publish must be called with mu held. It releases mu and delivers snapshot
// in mutation order.
func (l *Loader) publish(snapshot []models.Product) {
	ticket := l.listeners.Ticket()
	l.mu.Unlock()
	l.listeners.Deliver(ticket, snapshot)
}

func (l *Loader) snapshot() []models.Product {
	out := make([]models.Product, len(l.products))
	copy(out, l.products)
	return out
}
