package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"

	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/middleware/csrf"
)

type Deps struct {
	AuthURL    string
	CatalogURL string
	PushURL    string

	CSRFConfig csrf.Config
	JWTSecret  []byte
}

// Register mounts the mock backend behind one origin:
// /graphql and /admin go to the catalog, /auth/* to auth, /ws and /push/* to the push hub.
func Register(e *echo.Echo, d *Deps) error {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	authProxy, err := newProxy(d.AuthURL, "/auth")
	if err != nil {
		return err
	}
	catalogProxy, err := newProxy(d.CatalogURL, "")
	if err != nil {
		return err
	}
	pushProxy, err := newProxy(d.PushURL, "/push")
	if err != nil {
		return err
	}
	wsProxy, err := newProxy(d.PushURL, "")
	if err != nil {
		return err
	}

	e.POST("/graphql", catalogProxy)
	e.Any("/auth/*", authProxy)
	e.GET("/ws", wsProxy)

	authMw := middleware.NewCookieAuth(d.JWTSecret)
	protected := []echo.MiddlewareFunc{csrf.Middleware(d.CSRFConfig), authMw.RequireAuth}
	e.GET("/csrf", func(c echo.Context) error { return c.NoContent(http.StatusNoContent) }, protected...)
	e.Any("/admin/*", catalogProxy, protected...)
	e.POST("/push/publish", pushProxy, protected...)
	e.GET("/push/stats", pushProxy, protected...)

	return nil
}
