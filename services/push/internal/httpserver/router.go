package httpserver

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

type Deps struct {
	PushHandler *PushHTTP
}

func Register(e *echo.Echo, d *Deps) {
	e.GET("/health/live", func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	e.GET("/health/ready", func(c echo.Context) error { return c.NoContent(http.StatusOK) })

	e.GET("/ws", d.PushHandler.Subscribe)
	e.POST("/publish", d.PushHandler.Publish)
	e.GET("/stats", d.PushHandler.Stats)
}
