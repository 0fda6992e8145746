package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Skotchmaster/library/internal/events"
	"github.com/Skotchmaster/library/internal/hash"
	"github.com/Skotchmaster/library/internal/logging"
	"github.com/Skotchmaster/library/internal/metrics"
	"github.com/Skotchmaster/library/internal/models"
	"github.com/Skotchmaster/library/internal/repo"
	"github.com/Skotchmaster/library/internal/tokens"
)

const (
	DefaultAccessTTL  = 5 * time.Minute
	DefaultRefreshTTL = 10 * time.Minute
)

type UserRepo interface {
	CreateUser(ctx context.Context, u *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id uint) (*models.User, error)
}

type AuthService struct {
	Users      UserRepo
	Tokens     *tokens.Service
	Events     events.Publisher
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

func NewAuthService(users UserRepo, tok *tokens.Service, pub events.Publisher) *AuthService {
	return &AuthService{
		Users:      users,
		Tokens:     tok,
		Events:     pub,
		AccessTTL:  DefaultAccessTTL,
		RefreshTTL: DefaultRefreshTTL,
	}
}

// Session is a freshly issued access/refresh pair for User.
type Session struct {
	User    *models.User
	Access  *tokens.NewToken
	Refresh *tokens.NewToken
}

type userPayload struct {
	UserID uint   `json:"user_id"`
	Email  string `json:"email"`
}

func userKey(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func (s *AuthService) SignUp(ctx context.Context, name, email, password string) (*models.User, error) {
	log := logging.FromContext(ctx).With("svc", "auth")

	hashed, err := hash.HashPassword(password)
	if err != nil {
		return nil, err
	}

	u := &models.User{
		Name:         strings.TrimSpace(name),
		Email:        strings.TrimSpace(email),
		PasswordHash: hashed,
	}
	if err := s.Users.CreateUser(ctx, u); err != nil {
		if errors.Is(err, repo.ErrConflict) {
			log.Info("signup_rejected", "reason", "email_taken")
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	log.Info("user_registered", "user_id", u.ID)
	publish(ctx, s.Events, events.TopicUsers, userKey(u.ID),
		events.New(events.UserRegistered, userPayload{UserID: u.ID, Email: u.Email}))
	return u, nil
}

// SignIn checks the credentials and issues a new pair. A wrong password and
// an unknown email are indistinguishable to the caller and create no tokens.
func (s *AuthService) SignIn(ctx context.Context, email, password string) (*Session, error) {
	log := logging.FromContext(ctx).With("svc", "auth")

	u, err := s.Users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if !errors.Is(err, repo.ErrNotFound) {
			metrics.SignIns.WithLabelValues("error").Inc()
			return nil, fmt.Errorf("find user: %w", err)
		}
		hash.BurnCompare(password)
		metrics.SignIns.WithLabelValues("invalid").Inc()
		log.Info("signin_rejected", "reason", "invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	if !hash.CheckPassword(u.PasswordHash, password) {
		metrics.SignIns.WithLabelValues("invalid").Inc()
		log.Info("signin_rejected", "reason", "invalid_credentials")
		return nil, ErrInvalidCredentials
	}

	sess, err := s.issuePair(ctx, u)
	if err != nil {
		metrics.SignIns.WithLabelValues("error").Inc()
		return nil, err
	}

	metrics.SignIns.WithLabelValues("ok").Inc()
	log.Info("signin_ok", "user_id", u.ID)
	publish(ctx, s.Events, events.TopicUsers, userKey(u.ID),
		events.New(events.UserSignedIn, userPayload{UserID: u.ID, Email: u.Email}))
	return sess, nil
}

// Refresh consumes the presented refresh token and issues a new pair. The
// token is single use: a second refresh with the same value is rejected.
func (s *AuthService) Refresh(ctx context.Context, u *models.User, current *models.PersonalAccessToken) (*Session, error) {
	if err := s.Tokens.Store.Delete(ctx, current.ID); err != nil {
		if errors.Is(err, tokens.ErrNotFound) {
			return nil, tokens.ErrUnknownToken
		}
		return nil, fmt.Errorf("consume refresh token: %w", err)
	}

	sess, err := s.issuePair(ctx, u)
	if err != nil {
		return nil, err
	}

	logging.FromContext(ctx).With("svc", "auth").Info("token_refreshed", "user_id", u.ID)
	publish(ctx, s.Events, events.TopicUsers, userKey(u.ID),
		events.New(events.TokenRefreshed, userPayload{UserID: u.ID, Email: u.Email}))
	return sess, nil
}

// SignOut revokes the presented token only; other sessions stay valid.
func (s *AuthService) SignOut(ctx context.Context, u *models.User, current *models.PersonalAccessToken) error {
	if err := s.Tokens.Revoke(ctx, current); err != nil {
		return err
	}

	logging.FromContext(ctx).With("svc", "auth").Info("signout_ok", "user_id", u.ID)
	publish(ctx, s.Events, events.TopicUsers, userKey(u.ID),
		events.New(events.UserSignedOut, userPayload{UserID: u.ID, Email: u.Email}))
	return nil
}

func (s *AuthService) issuePair(ctx context.Context, u *models.User) (*Session, error) {
	access, err := s.Tokens.Issue(ctx, u.ID, tokens.NameAccess, []string{tokens.AbilityAll}, s.AccessTTL)
	if err != nil {
		return nil, fmt.Errorf("issue access token: %w", err)
	}

	refresh, err := s.Tokens.Issue(ctx, u.ID, tokens.NameRefresh, []string{tokens.AbilityRefresh}, s.RefreshTTL)
	if err != nil {
		if rerr := s.Tokens.Revoke(ctx, access.Token); rerr != nil {
			logging.FromContext(ctx).Error("access_token_rollback_failed", "user_id", u.ID, "error", rerr)
		}
		return nil, fmt.Errorf("issue refresh token: %w", err)
	}

	return &Session{User: u, Access: access, Refresh: refresh}, nil
}
