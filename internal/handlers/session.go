package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/session"
	"github.com/Skotchmaster/storefront/pkg/authclient"
	"github.com/Skotchmaster/storefront/pkg/logging"
)

type LoginFunc func(ctx context.Context, email, password string) error

type SessionHandler struct {
	Session *session.Store
	Login   LoginFunc
}

type userView struct {
	models.User
	FullName string `json:"fullName"`
}

func (h *SessionHandler) GetUser(c echo.Context) error {
	u, name := h.Session.Snapshot()
	return c.JSON(http.StatusOK, userView{User: u, FullName: name})
}

func (h *SessionHandler) PostLogin(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "session.login")

	var req authclient.LoginRequest
	if err := c.Bind(&req); err != nil || req.Email == "" || req.Password == "" {
		l.Warn("login_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "email and password are required")
	}

	if err := h.Login(ctx, req.Email, req.Password); err != nil {
		if errors.Is(err, authclient.ErrLoginRejected) {
			return echo.NewHTTPError(http.StatusUnauthorized, "invalid email or password")
		}
		l.Error("login_error", "status", 502, "reason", "auth endpoint unreachable", "error", err)
		return echo.NewHTTPError(http.StatusBadGateway, "auth service unavailable")
	}
	return h.GetUser(c)
}

// PatchUser merges profile fields into the current session.
func (h *SessionHandler) PatchUser(c echo.Context) error {
	ctx := c.Request().Context()
	if !h.Session.IsAuthenticated() {
		return echo.NewHTTPError(http.StatusUnauthorized, "not logged in")
	}

	var patch models.UserPatch
	if err := c.Bind(&patch); err != nil {
		logging.FromContext(ctx).Warn("patch_user_error", "status", 400, "reason", "invalid body", "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}
	h.Session.Login(ctx, patch)
	return h.GetUser(c)
}

func (h *SessionHandler) PostLogout(c echo.Context) error {
	h.Session.Logout(c.Request().Context())
	return c.NoContent(http.StatusNoContent)
}
