package httpserver

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/library/internal/logging"
	authmw "github.com/Skotchmaster/library/internal/middleware/auth"
	"github.com/Skotchmaster/library/internal/models"
	"github.com/Skotchmaster/library/internal/service"
	"github.com/Skotchmaster/library/internal/tokens"
	"github.com/Skotchmaster/library/internal/transport"
)

type AuthHTTP struct {
	Svc *service.AuthService
}

func userResponse(u *models.User) transport.UserResponse {
	return transport.UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, CreatedAt: u.CreatedAt}
}

func sessionResponse(s *service.Session) transport.SignInResponse {
	return transport.SignInResponse{
		TokenType:        "Bearer",
		AccessToken:      s.Access.PlainText,
		RefreshToken:     s.Refresh.PlainText,
		AccessExpiresAt:  s.Access.ExpiresAt,
		RefreshExpiresAt: s.Refresh.ExpiresAt,
		User:             userResponse(s.User),
	}
}

func (h *AuthHTTP) SignUp(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signup")

	var req transport.SignUpRequest
	if err := bindAndValidate(c, l, "signup_error", &req); err != nil {
		return err
	}

	u, err := h.Svc.SignUp(ctx, req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			l.Warn("signup_error", "status", http.StatusUnprocessableEntity, "reason", "email taken")
			return echo.NewHTTPError(http.StatusUnprocessableEntity, echo.Map{
				"message": "The given data was invalid.",
				"errors":  map[string][]string{"email": {"The email has already been taken."}},
			})
		}
		l.Error("signup_error", "status", http.StatusInternalServerError, "reason", "cannot create user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot create user")
	}

	l.Info("signup_success", "user_id", u.ID)
	return c.JSON(http.StatusCreated, echo.Map{"user": userResponse(u)})
}

func (h *AuthHTTP) SignIn(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signin")

	var req transport.SignInRequest
	if err := bindAndValidate(c, l, "signin_error", &req); err != nil {
		return err
	}

	sess, err := h.Svc.SignIn(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			l.Warn("signin_error", "status", http.StatusUnauthorized, "reason", "invalid credentials")
			return echo.NewHTTPError(http.StatusUnauthorized, "Invalid credentials.")
		}
		l.Error("signin_error", "status", http.StatusInternalServerError, "reason", "cannot sign in", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot sign in")
	}

	l.Info("signin_success", "user_id", sess.User.ID)
	return c.JSON(http.StatusOK, sessionResponse(sess))
}

func (h *AuthHTTP) Profile(c echo.Context) error {
	u := authmw.UserFrom(c)
	return c.JSON(http.StatusOK, transport.ProfileResponse{
		Message: "Authenticated user profile.",
		User:    userResponse(u),
	})
}

func (h *AuthHTTP) Refresh(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.refresh")

	sess, err := h.Svc.Refresh(ctx, authmw.UserFrom(c), authmw.TokenFrom(c))
	if err != nil {
		if errors.Is(err, tokens.ErrUnauthorized) {
			l.Warn("refresh_error", "status", http.StatusUnauthorized, "reason", "refresh token already used")
			return echo.NewHTTPError(http.StatusUnauthorized, authmw.MsgUnauthenticated)
		}
		l.Error("refresh_error", "status", http.StatusInternalServerError, "reason", "cannot rotate tokens", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot refresh tokens")
	}

	l.Info("refresh_success", "user_id", sess.User.ID)
	return c.JSON(http.StatusOK, sessionResponse(sess))
}

func (h *AuthHTTP) SignOut(c echo.Context) error {
	ctx := c.Request().Context()
	l := logging.FromContext(ctx).With("handler", "auth.signout")

	if err := h.Svc.SignOut(ctx, authmw.UserFrom(c), authmw.TokenFrom(c)); err != nil {
		l.Error("signout_error", "status", http.StatusInternalServerError, "reason", "cannot revoke token", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError, "cannot sign out")
	}

	l.Info("signout_success")
	return c.JSON(http.StatusOK, echo.Map{"message": "Signed out."})
}
