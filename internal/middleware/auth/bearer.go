// Package auth guards echo routes with opaque bearer tokens.
package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/Skotchmaster/library/internal/logging"
	"github.com/Skotchmaster/library/internal/models"
	"github.com/Skotchmaster/library/internal/repo"
	"github.com/Skotchmaster/library/internal/tokens"
)

const (
	ContextToken = "token"
	ContextUser  = "user"
)

const (
	MsgUnauthenticated = "Unauthenticated."
	MsgInvalidAbility  = "Invalid ability provided."
)

type Verifier interface {
	Verify(ctx context.Context, value, ability string) (*models.PersonalAccessToken, error)
}

type UserLookup interface {
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

type Bearer struct {
	Tokens Verifier
	Users  UserLookup
}

// ExtractToken returns the credential of an "Authorization: Bearer <token>"
// header, or "" when the header is absent or uses another scheme.
func ExtractToken(header string) string {
	scheme, value, ok := strings.Cut(strings.TrimSpace(header), " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(value)
}

// Require rejects the request with 401 unless it carries a live token granting
// ability ("" accepts any live token). On success the token row and its owner
// are stored under ContextToken and ContextUser.
func (b *Bearer) Require(ability string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			l := logging.FromContext(ctx).With("handler", "auth.bearer")

			value := ExtractToken(c.Request().Header.Get(echo.HeaderAuthorization))
			tok, err := b.Tokens.Verify(ctx, value, ability)
			if err != nil {
				if errors.Is(err, tokens.ErrInsufficientAbility) {
					l.Warn("bearer_rejected", "status", http.StatusUnauthorized, "reason", "insufficient_ability", "ability", ability)
					return echo.NewHTTPError(http.StatusUnauthorized, MsgInvalidAbility)
				}
				if errors.Is(err, tokens.ErrUnauthorized) {
					l.Warn("bearer_rejected", "status", http.StatusUnauthorized, "reason", err.Error())
					return echo.NewHTTPError(http.StatusUnauthorized, MsgUnauthenticated)
				}
				l.Error("bearer_error", "status", http.StatusInternalServerError, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
			}

			user, err := b.Users.GetUserByID(ctx, tok.TokenableID)
			if err != nil {
				if errors.Is(err, repo.ErrNotFound) {
					l.Warn("bearer_rejected", "status", http.StatusUnauthorized, "reason", "owner_missing", "token_id", tok.ID)
					return echo.NewHTTPError(http.StatusUnauthorized, MsgUnauthenticated)
				}
				l.Error("bearer_error", "status", http.StatusInternalServerError, "error", err)
				return echo.NewHTTPError(http.StatusInternalServerError, "internal error").SetInternal(err)
			}

			c.Set(ContextToken, tok)
			c.Set(ContextUser, user)
			return next(c)
		}
	}
}

func TokenFrom(c echo.Context) *models.PersonalAccessToken {
	t, _ := c.Get(ContextToken).(*models.PersonalAccessToken)
	return t
}

func UserFrom(c echo.Context) *models.User {
	u, _ := c.Get(ContextUser).(*models.User)
	return u
}
