package httpserver

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	"github.com/Skotchmaster/storefront/services/push/internal/hub"
	"github.com/Skotchmaster/storefront/services/push/internal/service"
)

const maxPublishBody = 64 << 10

type PushHTTP struct {
	Svc      *service.PushService
	Hub      *hub.Hub
	Upgrader websocket.Upgrader
}

func NewPushHTTP(svc *service.PushService, h *hub.Hub) *PushHTTP {
	return &PushHTTP{
		Svc: svc,
		Hub: h,
		Upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     func(*http.Request) bool { return true },
		},
	}
}

func (h *PushHTTP) Subscribe(c echo.Context) error {
	l := logging.FromContext(c.Request().Context()).With("handler", "push_subscribe")

	conn, err := h.Upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		// the upgrader has already written the response
		l.Warn("push_upgrade_error", "error", err)
		return nil
	}
	h.Hub.Serve(c.Request().Context(), conn)
	return nil
}

func (h *PushHTTP) Publish(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "push_publish")

	body, err := io.ReadAll(io.LimitReader(c.Request().Body, maxPublishBody))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "cannot read body")
	}

	n, err := h.Svc.PublishRaw(ctx, body)
	if err != nil {
		if errors.Is(err, service.ErrValidation) {
			l.Warn("publish_error", "status", 400, "error", err)
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		l.Error("publish_error", "status", 500, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "publish failed")
	}

	return c.JSON(http.StatusAccepted, echo.Map{"delivered": n})
}

func (h *PushHTTP) Stats(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"clients": h.Hub.Clients()})
}
