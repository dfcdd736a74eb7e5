package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/iliyamo/unit-reservation/internal/apperr"
	"github.com/iliyamo/unit-reservation/internal/auth"
	"github.com/iliyamo/unit-reservation/internal/model"
	"github.com/iliyamo/unit-reservation/internal/repository"
	"github.com/iliyamo/unit-reservation/internal/utils"
)

// TokenPart is one issued token with its expiry.
type TokenPart struct {
	Token   string    `json:"token"`
	Expires time.Time `json:"expires"`
}

// Session is returned by Login and Refresh.  The refresh token is only ever
// sent back raw; the store keeps its hash.
type Session struct {
	User    model.User `json:"user"`
	Access  TokenPart  `json:"access"`
	Refresh TokenPart  `json:"refresh"`
}

type TokenConfig struct {
	Secret         string
	AccessTTLMin   int
	RefreshTTLDays int
}

type AuthService struct {
	store repository.Store
	cfg   TokenConfig
}

func NewAuthService(store repository.Store, cfg TokenConfig) *AuthService {
	return &AuthService{store: store, cfg: cfg}
}

var errBadCredentials = apperr.New(apperr.Unauthorized, "invalid credentials")

// Login verifies email and password and issues a new token pair.
func (s *AuthService) Login(ctx context.Context, email, password string) (Session, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return Session{}, apperr.BadRequestf("email/password required")
	}
	u, err := s.store.Users().GetByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return Session{}, errBadCredentials
	}
	if err != nil {
		return Session{}, internal(err)
	}
	if !utils.VerifyPassword(u.PasswordHash, password) {
		return Session{}, errBadCredentials
	}
	return s.issue(ctx, s.store, u)
}

// Refresh rotates a refresh token: the presented one is revoked and a new
// pair is issued in the same transaction.
func (s *AuthService) Refresh(ctx context.Context, raw string) (Session, error) {
	if raw == "" {
		return Session{}, apperr.BadRequestf("refresh_token required")
	}
	hash := utils.HashRefreshRaw(raw)
	var out Session
	err := s.store.RunInTx(ctx, func(tx repository.Gateway) error {
		uid, err := tx.Tokens().ValidateRefresh(ctx, hash)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.Unauthorized, "invalid refresh token")
		}
		if err != nil {
			return internal(err)
		}
		u, err := tx.Users().Get(ctx, uid)
		if errors.Is(err, repository.ErrNotFound) {
			return apperr.New(apperr.Unauthorized, "invalid refresh token")
		}
		if err != nil {
			return internal(err)
		}
		if err := tx.Tokens().RevokeByHash(ctx, hash); err != nil {
			return internal(err)
		}
		out, err = s.issue(ctx, tx, u)
		return err
	})
	return out, err
}

// Logout revokes the refresh token.  Unknown tokens are ignored.
func (s *AuthService) Logout(ctx context.Context, raw string) error {
	if raw == "" {
		return apperr.BadRequestf("refresh_token required")
	}
	return internal(s.store.Tokens().RevokeByHash(ctx, utils.HashRefreshRaw(raw)))
}

// Me returns the caller's user record.
func (s *AuthService) Me(ctx context.Context, caller *auth.Caller) (model.User, error) {
	if err := auth.Authorize(caller); err != nil {
		return model.User{}, err
	}
	u, err := s.store.Users().Get(ctx, caller.ID)
	if err != nil {
		return model.User{}, lookup(err, "user not found")
	}
	return u, nil
}

func (s *AuthService) issue(ctx context.Context, g repository.Gateway, u model.User) (Session, error) {
	access, err := utils.NewAccessToken(s.cfg.Secret, u.ID, u.Role, s.cfg.AccessTTLMin)
	if err != nil {
		return Session{}, apperr.Internalf(err, "issue access token")
	}
	refresh, err := utils.NewRefreshToken(s.cfg.RefreshTTLDays)
	if err != nil {
		return Session{}, apperr.Internalf(err, "issue refresh token")
	}
	if err := g.Tokens().StoreRefresh(ctx, u.ID, utils.HashRefreshRaw(refresh.Raw), refresh.Exp); err != nil {
		return Session{}, internal(err)
	}
	return Session{
		User:    u,
		Access:  TokenPart{Token: access.Token, Expires: access.Exp},
		Refresh: TokenPart{Token: refresh.Raw, Expires: refresh.Exp},
	}, nil
}
