package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/handlers"
)

type Deps struct {
	CatalogHandler      *handlers.CatalogHandler
	CartHandler         *handlers.CartHandler
	SessionHandler      *handlers.SessionHandler
	NotificationHandler *handlers.NotificationHandler
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	v1 := e.Group("/api/v1")

	products := v1.Group("/products")
	products.GET("", d.CatalogHandler.GetProducts)
	products.GET("/:id", d.CatalogHandler.GetProduct)
	v1.GET("/search", d.CatalogHandler.Search)
	v1.GET("/categories", d.CatalogHandler.GetCategories)
	v1.GET("/categories/:category/products", d.CatalogHandler.GetProductsByCategory)

	cart := v1.Group("/cart")
	cart.GET("", d.CartHandler.GetCart)
	cart.POST("/items", d.CartHandler.AddToCart)
	cart.DELETE("/items/:id", d.CartHandler.RemoveFromCart)
	cart.DELETE("", d.CartHandler.ClearCart)

	v1.GET("/session", d.SessionHandler.GetUser)
	v1.PATCH("/session", d.SessionHandler.PatchUser)
	v1.POST("/session/login", d.SessionHandler.PostLogin)
	v1.POST("/session/logout", d.SessionHandler.PostLogout)

	notifications := v1.Group("/notifications")
	notifications.GET("", d.NotificationHandler.GetNotifications)
	notifications.DELETE("/:id", d.NotificationHandler.DeleteNotification)
	notifications.DELETE("", d.NotificationHandler.ClearNotifications)
}
