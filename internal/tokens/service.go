package tokens

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Skotchmaster/library/internal/logging"
	"github.com/Skotchmaster/library/internal/metrics"
	"github.com/Skotchmaster/library/internal/models"
)

// Service holds no state of its own; everything lives in Store.
type Service struct {
	Store    Store
	Now      func() time.Time
	Generate func() (string, error)
}

func NewService(store Store) *Service {
	return &Service{
		Store:    store,
		Now:      func() time.Time { return time.Now().UTC() },
		Generate: GenerateValue,
	}
}

func (s *Service) now() time.Time {
	if s.Now == nil {
		return time.Now().UTC()
	}
	return s.Now()
}

// Issue creates a token for ownerID. A non-positive ttl produces a token
// that never expires.
func (s *Service) Issue(ctx context.Context, ownerID uint, name string, abilities []string, ttl time.Duration) (*NewToken, error) {
	l := logging.FromContext(ctx).With("svc", "tokens.issue", "owner_id", ownerID, "name", name)

	generate := s.Generate
	if generate == nil {
		generate = GenerateValue
	}
	value, err := generate()
	if err != nil {
		l.Error("issue_token_error", "reason", "cannot generate value", "error", err)
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := s.now()
	var expiresAt *time.Time
	if ttl > 0 {
		exp := now.Add(ttl)
		expiresAt = &exp
	}

	row := &models.PersonalAccessToken{
		TokenableType: models.TokenableUsers,
		TokenableID:   ownerID,
		Name:          name,
		Token:         HashToken(value),
		Abilities:     append([]string(nil), abilities...),
		ExpiresAt:     expiresAt,
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := s.Store.Create(ctx, row); err != nil {
		l.Error("issue_token_error", "reason", "cannot store token", "error", err)
		return nil, fmt.Errorf("store token: %w", err)
	}

	metrics.TokensIssued.WithLabelValues(name).Inc()
	l.Debug("token_issued", "token_id", row.ID)

	return &NewToken{PlainText: value, ExpiresAt: expiresAt, Token: row}, nil
}

// Verify resolves a presented value to a live token. An empty ability skips
// the ability check. Rejections wrap ErrUnauthorized; any other error comes
// from the store.
func (s *Service) Verify(ctx context.Context, value, ability string) (*models.PersonalAccessToken, error) {
	l := logging.FromContext(ctx).With("svc", "tokens.verify")

	if value == "" {
		metrics.TokenVerifications.WithLabelValues(metrics.ResultMissing).Inc()
		return nil, ErrMissingToken
	}

	row, err := s.Store.FindByToken(ctx, HashToken(value))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			metrics.TokenVerifications.WithLabelValues(metrics.ResultUnknown).Inc()
			return nil, ErrUnknownToken
		}
		metrics.TokenVerifications.WithLabelValues(metrics.ResultError).Inc()
		l.Error("verify_token_error", "reason", "cannot read token", "error", err)
		return nil, fmt.Errorf("find token: %w", err)
	}

	if row.Expired(s.now()) {
		if err := s.Store.Delete(ctx, row.ID); err != nil && !errors.Is(err, ErrNotFound) {
			metrics.TokenVerifications.WithLabelValues(metrics.ResultError).Inc()
			l.Error("verify_token_error", "reason", "cannot purge expired token", "token_id", row.ID, "error", err)
			return nil, fmt.Errorf("delete expired token: %w", err)
		}
		metrics.TokenVerifications.WithLabelValues(metrics.ResultExpired).Inc()
		l.Info("expired_token_purged", "token_id", row.ID)
		return nil, ErrTokenExpired
	}

	if ability != "" && !row.Can(ability) {
		metrics.TokenVerifications.WithLabelValues(metrics.ResultInsufficientAbility).Inc()
		return nil, ErrInsufficientAbility
	}

	metrics.TokenVerifications.WithLabelValues(metrics.ResultOK).Inc()
	return row, nil
}

// Revoke deletes a token. Revoking a row that is already gone is not an error.
func (s *Service) Revoke(ctx context.Context, t *models.PersonalAccessToken) error {
	if err := s.Store.Delete(ctx, t.ID); err != nil && !errors.Is(err, ErrNotFound) {
		return fmt.Errorf("revoke token: %w", err)
	}
	return nil
}

// PruneExpired removes every token already past its expiry.
func (s *Service) PruneExpired(ctx context.Context) (int64, error) {
	n, err := s.Store.DeleteExpired(ctx, s.now())
	if err != nil {
		return 0, fmt.Errorf("prune tokens: %w", err)
	}
	metrics.TokensPruned.Add(float64(n))
	return n, nil
}
