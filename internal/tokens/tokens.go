// Package tokens issues and verifies opaque bearer tokens backed by a Store.
//
// A token value is random and only its SHA-256 digest is persisted. Expiry is
// lazy: an expired row is removed when a verification finds it, not by a
// background sweep.
package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/library/internal/models"
)

const (
	AbilityAll          = models.WildcardAbility
	AbilityRefresh      = "refresh"
	AbilityCatalogWrite = "catalog:write"
)

const (
	NameAccess  = "access"
	NameRefresh = "refresh"
)

var (
	// ErrNotFound is returned by stores when no row matches.
	ErrNotFound = errors.New("token not found")
	// ErrDuplicateToken is returned by stores when the digest is already taken.
	ErrDuplicateToken = errors.New("duplicate token")

	// ErrUnauthorized is wrapped by every verification rejection.
	ErrUnauthorized        = errors.New("unauthorized")
	ErrMissingToken        = fmt.Errorf("%w: missing token", ErrUnauthorized)
	ErrUnknownToken        = fmt.Errorf("%w: unknown token", ErrUnauthorized)
	ErrTokenExpired        = fmt.Errorf("%w: token expired", ErrUnauthorized)
	ErrInsufficientAbility = fmt.Errorf("%w: insufficient ability", ErrUnauthorized)
)

// Store persists token rows. Implementations must make Create, FindByToken
// and Delete individually atomic.
type Store interface {
	Create(ctx context.Context, t *models.PersonalAccessToken) error
	// FindByToken looks a row up by its stored digest.
	FindByToken(ctx context.Context, digest string) (*models.PersonalAccessToken, error)
	Delete(ctx context.Context, id uint) error
	// DeleteExpired removes rows whose expiry is strictly before the given instant.
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
}

// NewToken is the result of an issuance. PlainText is the only copy of the
// value and is what the client receives.
type NewToken struct {
	PlainText string
	ExpiresAt *time.Time
	Token     *models.PersonalAccessToken
}
