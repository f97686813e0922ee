package service

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/steph-crown/movie-moments/config"
)

// Identity is the authenticated user attributed to writes. Anything mutating
// room state requires one; reads do not.
type Identity struct {
	UserID      string
	DisplayName string
}

type identityCtxKey struct{}

func WithIdentity(ctx context.Context, id Identity) context.Context {
	return context.WithValue(ctx, identityCtxKey{}, id)
}

// IdentityFrom returns the identity attached to ctx, or ErrNotAuthenticated.
// Write paths call this before touching the network.
func IdentityFrom(ctx context.Context) (Identity, error) {
	id, ok := ctx.Value(identityCtxKey{}).(Identity)
	if !ok || id.UserID == "" {
		return Identity{}, ErrNotAuthenticated
	}
	return id, nil
}

type IdentityService interface {
	IssueToken(userID, displayName string) (string, error)
	Authenticate(tokenStr string) (Identity, error)
}

type identityService struct {
	conf config.JWTConfig
}

func NewIdentityService(conf config.JWTConfig) IdentityService {
	return &identityService{conf: conf}
}

func (s *identityService) IssueToken(userID, displayName string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":  userID,
		"name": displayName,
		"exp":  now.Add(s.conf.Expiry).Unix(),
		"iat":  now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.conf.Secret))
}

func (s *identityService) Authenticate(tokenStr string) (Identity, error) {
	claims := jwt.MapClaims{}
	parsed, err := jwt.ParseWithClaims(tokenStr, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenInvalid
		}
		return []byte(s.conf.Secret), nil
	})
	if err != nil || !parsed.Valid {
		return Identity{}, ErrTokenInvalid
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		return Identity{}, ErrTokenInvalid
	}
	name, _ := claims["name"].(string)

	return Identity{UserID: userID, DisplayName: name}, nil
}
