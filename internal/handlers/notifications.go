package handlers

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/feed"
)

type NotificationHandler struct {
	Feed *feed.Feed
}

func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{
		"connected":     h.Feed.Connected(),
		"state":         h.Feed.State().String(),
		"notifications": h.Feed.Notifications(),
	})
}

func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "id is not an integer")
	}
	h.Feed.RemoveNotification(id)
	return c.NoContent(http.StatusNoContent)
}

func (h *NotificationHandler) ClearNotifications(c echo.Context) error {
	h.Feed.ClearNotifications()
	return c.NoContent(http.StatusNoContent)
}
