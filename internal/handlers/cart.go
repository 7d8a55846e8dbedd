package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/cart"
	"github.com/Skotchmaster/storefront/internal/catalog"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type CartHandler struct {
	Cart    *cart.Store
	Catalog *catalog.Loader
}

type cartView struct {
	Items      []models.CartEntry `json:"items"`
	TotalItems int                `json:"totalItems"`
	TotalPrice float64            `json:"totalPrice"`
}

func (h *CartHandler) view() cartView {
	items := h.Cart.Items()
	return cartView{
		Items:      items,
		TotalItems: cart.TotalItems(items),
		TotalPrice: cart.TotalPrice(items),
	}
}

func (h *CartHandler) GetCart(c echo.Context) error {
	return c.JSON(http.StatusOK, h.view())
}

// AddToCart adds one unit of a product from the loaded catalog.
func (h *CartHandler) AddToCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.add")

	var req struct {
		ProductID int `json:"productId"`
	}
	if err := c.Bind(&req); err != nil {
		l.Warn("add_to_cart_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	product, ok := h.Catalog.Product(req.ProductID)
	if !ok {
		l.Warn("add_to_cart_error", "status", 404, "reason", "product not loaded", "product_id", req.ProductID)
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	}

	h.Cart.AddToCart(ctx, product)
	l.Info("add_to_cart_success", "product_id", product.ID)
	return c.JSON(http.StatusOK, h.view())
}

func (h *CartHandler) RemoveFromCart(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "cart.remove")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("remove_from_cart_error", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	h.Cart.RemoveFromCart(ctx, id)
	return c.JSON(http.StatusOK, h.view())
}

func (h *CartHandler) ClearCart(c echo.Context) error {
	h.Cart.ClearCart(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
