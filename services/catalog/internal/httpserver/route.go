package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
)

type Deps struct {
	CatalogHandler *CatalogHTTP
	JWTSecret      []byte
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.POST("/graphql", d.CatalogHandler.GraphQL)

	authMW := middleware.NewCookieAuth(d.JWTSecret)
	admin := e.Group("/admin", authMW.RequireAuth)
	admin.PATCH("/products/:id/price", d.CatalogHandler.PatchPrice)
}
