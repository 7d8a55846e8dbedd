package httpserver

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/catalog/internal/service"
	"github.com/Skotchmaster/storefront/services/catalog/internal/transport"
)

type CatalogHTTP struct {
	Svc *service.CatalogService
}

// GraphQL answers every request with status 200; failures go into the
// errors array.
func (h *CatalogHTTP) GraphQL(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.graphql")

	var req transport.GraphQLRequest
	if err := c.Bind(&req); err != nil {
		l.Warn("graphql_error", "reason", "invalid body", "error", err)
		return c.JSON(http.StatusOK, errorResponse("invalid request body"))
	}

	data, err := h.Svc.Execute(ctx, req.Query, req.Variables)
	if err != nil {
		var opErr *service.OperationError
		if errors.As(err, &opErr) {
			l.Warn("graphql_error", "reason", opErr.Msg)
			return c.JSON(http.StatusOK, errorResponse(opErr.Msg))
		}
		l.Error("graphql_error", "reason", "query failed", "error", err)
		return c.JSON(http.StatusOK, errorResponse("request failed"))
	}
	return c.JSON(http.StatusOK, transport.GraphQLResponse{Data: data})
}

func (h *CatalogHTTP) PatchPrice(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "catalog.patch_price")

	id, err := strconv.Atoi(c.Param("id"))
	if err != nil {
		l.Warn("patch_price_error", "status", 400, "reason", "id is not an integer", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}

	var req transport.PatchPriceRequest
	if err := c.Bind(&req); err != nil || req.Price == nil {
		l.Warn("patch_price_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	p, err := h.Svc.UpdatePrice(ctx, id, *req.Price)
	switch {
	case errors.Is(err, service.ErrNotFound):
		l.Warn("patch_price_error", "status", 404, "reason", "product not found")
		return echo.NewHTTPError(http.StatusNotFound, "product not found")
	case errors.Is(err, service.ErrValidation):
		l.Warn("patch_price_error", "status", 400, "reason", err.Error())
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case err != nil:
		l.Error("patch_price_error", "status", 500, "reason", "cannot update price", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot update price")
	}

	l.Info("patch_price_success")
	return c.JSON(http.StatusOK, p)
}

func errorResponse(msg string) transport.GraphQLResponse {
	return transport.GraphQLResponse{Errors: []transport.GraphQLError{{Message: msg}}}
}
