package httpserver

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/storefront/pkg/logging"
	middleware "github.com/Skotchmaster/storefront/pkg/middleware/auth"
	"github.com/Skotchmaster/storefront/pkg/tokens"
	"github.com/Skotchmaster/storefront/services/auth/internal/service"
	"github.com/Skotchmaster/storefront/services/auth/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func (h *AuthHTTP) Register(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_register")

	var req transport.Credentials
	if err := c.Bind(&req); err != nil {
		l.Warn("register_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	user, err := h.Svc.Register(ctx, req)
	switch {
	case errors.Is(err, service.ErrValidation):
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserAlreadyExist):
		return echo.NewHTTPError(http.StatusConflict, "user already exist")
	case err != nil:
		return echo.NewHTTPError(http.StatusInternalServerError, "register failed")
	}

	l.Info("register_successful")
	return c.JSON(http.StatusCreated, user)
}

func (h *AuthHTTP) Login(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth_login")

	var req transport.Credentials
	if err := c.Bind(&req); err != nil {
		l.Warn("login_error", "status", 400, "error", err)
		return echo.NewHTTPError(http.StatusBadRequest, "invalid body")
	}

	res, err := h.Svc.Login(ctx, req.Email, req.Password)
	if err != nil {
		code := http.StatusInternalServerError
		switch {
		case errors.Is(err, service.ErrValidation):
			code = http.StatusBadRequest
		case errors.Is(err, service.ErrInvalidCredentials):
			code = http.StatusUnauthorized
		}
		l.Warn("login_failed", "status", code, "error", err)
		return c.JSON(code, echo.Map{"message": "invalid email or password"})
	}

	c.SetCookie(tokens.CreateCookie(tokens.AccessCookieName, res.AccessToken, "/", res.AccessExp))
	l.Info("login_successful")

	return c.JSON(http.StatusOK, echo.Map{
		"success":   true,
		"email":     res.Email,
		"firstName": res.FirstName,
		"lastName":  res.LastName,
	})
}

func (h *AuthHTTP) LogOut(c echo.Context) error {
	c.SetCookie(tokens.DeleteCookie(tokens.AccessCookieName, "/"))
	logging.FromContext(c.Request().Context()).Info("successful_logout")
	return c.JSON(http.StatusOK, echo.Map{"message": "logged out"})
}

func (h *AuthHTTP) Me(c echo.Context) error {
	ctx := c.Request().Context()
	sub, _ := c.Get(middleware.CtxUserID).(string)
	id, err := uuid.Parse(sub)
	if err != nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "invalid token subject")
	}
	user, err := h.Svc.Repo.GetUserByID(ctx, id)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "user not found")
	}
	return c.JSON(http.StatusOK, user)
}
