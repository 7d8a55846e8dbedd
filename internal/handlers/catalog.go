package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/util"
	"github.com/Skotchmaster/storefront/pkg/graphql"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CatalogHandler struct {
	Catalog *catalog.Loader
}

// GetProducts returns the loaded list. ?refresh=true refetches it first,
// with either limit/offset or page/size. ?q= and ?category= narrow the
// result and sort it by rating.
func (h *CatalogHandler) GetProducts(c echo.Context) error {
	ctx := c.Request().Context()

	if c.QueryParam("refresh") == "true" {
		h.Catalog.FetchProducts(ctx, fetchOptions(c))
	}

	products := h.Catalog.Products()
	if f, ok := filterOf(c); ok {
		products = f.Apply(products)
	}

	state := h.Catalog.State()
	return c.JSON(http.StatusOK, echo.Map{
		"products": products,
		"loading":  state.Loading,
		"error":    state.Error,
	})
}

// Search runs a backend search for ?q= without touching the loaded list.
func (h *CatalogHandler) Search(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.search")

	q := strings.TrimSpace(c.QueryParam("q"))
	if q == "" {
		l.Warn("search_error", "status", 400, "reason", "empty query")
		return echo.NewHTTPError(http.StatusBadRequest, "q is required")
	}

	products, err := h.Catalog.SearchProducts(ctx, q, fetchOptions(c))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, graphql.MessageOf(err))
	}
	return c.JSON(http.StatusOK, products)
}

func (h *CatalogHandler) GetProduct(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.get_product")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("get_product_error", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	product, err := h.Catalog.FetchProduct(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, graphql.MessageOf(err))
	}
	if product == nil {
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}
	return c.JSON(http.StatusOK, product)
}

func (h *CatalogHandler) GetCategories(c echo.Context) error {
	categories, err := h.Catalog.FetchCategories(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, graphql.MessageOf(err))
	}
	return c.JSON(http.StatusOK, categories)
}

func (h *CatalogHandler) GetProductsByCategory(c echo.Context) error {
	products, err := h.Catalog.FetchProductsByCategory(c.Request().Context(), c.Param("category"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadGateway, graphql.MessageOf(err))
	}
	return c.JSON(http.StatusOK, products)
}

func fetchOptions(c echo.Context) catalog.FetchOptions {
	var opts catalog.FetchOptions
	if page, err := strconv.Atoi(c.QueryParam("page")); err == nil {
		size, _ := strconv.Atoi(c.QueryParam("size"))
		offset, limit := util.Calculate(page, size)
		opts.Offset, opts.Limit = &offset, &limit
		return opts
	}
	if v, err := strconv.Atoi(c.QueryParam("limit")); err == nil {
		opts.Limit = &v
	}
	if v, err := strconv.Atoi(c.QueryParam("offset")); err == nil {
		opts.Offset = &v
	}
	return opts
}

// filterOf reads ?q= and repeated or comma separated ?category= values.
func filterOf(c echo.Context) (catalog.Filter, bool) {
	var categories []string
	for _, v := range c.QueryParams()["category"] {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				categories = append(categories, part)
			}
		}
	}
	q := c.QueryParam("q")
	if q == "" && len(categories) == 0 {
		return catalog.Filter{}, false
	}
	f := catalog.ParseSearch(q)
	f.Categories = categories
	return f, true
}
