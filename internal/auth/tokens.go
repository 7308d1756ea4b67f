package auth

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/luzza07/artist-management-backend/internal/apperr"
)

const (
	TokenAccess  = "access"
	TokenRefresh = "refresh"
)

var (
	ErrTokenInvalid = errors.New("token is invalid")
	ErrTokenExpired = errors.New("token has expired")
	ErrEmptySecret  = errors.New("auth: signing secret must not be empty")
	ErrUnknownUser  = errors.New("user not found")
)

type TokenClaims struct {
	UserID    string `json:"uid"`
	TokenType string `json:"typ"`
	jwt.RegisteredClaims
}

type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// IdentityLoader fetches the current state of a user. It returns ErrUnknownUser when the id
// no longer exists.
type IdentityLoader interface {
	LoadIdentity(ctx context.Context, userID string) (Identity, error)
}

type TokenService struct {
	secret     []byte
	accessTTL  time.Duration
	refreshTTL time.Duration
	now        func() time.Time
}

func NewTokenService(secret []byte, accessTTL, refreshTTL time.Duration) (*TokenService, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	if accessTTL <= 0 || refreshTTL <= 0 {
		return nil, fmt.Errorf("auth: token lifetimes must be positive (access=%s refresh=%s)", accessTTL, refreshTTL)
	}
	return &TokenService{
		secret:     secret,
		accessTTL:  accessTTL,
		refreshTTL: refreshTTL,
		now:        time.Now,
	}, nil
}

// Issue signs a fresh access/refresh pair for userID.
func (s *TokenService) Issue(userID string) (Tokens, error) {
	now := s.now()

	access, err := s.sign(userID, TokenAccess, now, s.accessTTL)
	if err != nil {
		return Tokens{}, err
	}
	refresh, err := s.sign(userID, TokenRefresh, now, s.refreshTTL)
	if err != nil {
		return Tokens{}, err
	}
	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *TokenService) sign(userID, typ string, now time.Time, ttl time.Duration) (string, error) {
	claims := &TokenClaims{
		UserID:    userID,
		TokenType: typ,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign %s token: %w", typ, err)
	}
	return signed, nil
}

// Validate checks signature, expiry and token type. It returns ErrTokenExpired for an otherwise
// well-formed token past its expiry and ErrTokenInvalid for everything else.
func (s *TokenService) Validate(raw, typ string) (*TokenClaims, error) {
	claims := &TokenClaims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		return s.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(s.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrTokenInvalid
	}
	if !token.Valid || claims.TokenType != typ || claims.UserID == "" {
		return nil, ErrTokenInvalid
	}
	return claims, nil
}

// Refresh exchanges a refresh token for a new pair. The user is re-read so a deleted or
// unapproved account cannot mint new tokens.
func (s *TokenService) Refresh(ctx context.Context, raw string, users IdentityLoader) (Tokens, error) {
	claims, err := s.Validate(raw, TokenRefresh)
	if err != nil {
		return Tokens{}, &apperr.Error{Kind: apperr.KindAuthentication, Message: "invalid refresh token", Err: err}
	}

	id, err := users.LoadIdentity(ctx, claims.UserID)
	if errors.Is(err, ErrUnknownUser) {
		return Tokens{}, apperr.Authentication("user no longer exists")
	}
	if err != nil {
		return Tokens{}, fmt.Errorf("refresh: load user: %w", err)
	}
	if !id.Approved {
		return Tokens{}, apperr.Authentication("user is not approved")
	}
	return s.Issue(id.UserID)
}
