package auth

import (
	"context"
	"errors"
	"time"

	"github.com/frahmantamala/clinic-access/internal/permission"
	"github.com/golang-jwt/jwt/v5"
)

type ctxKey string

const ContextUserKey ctxKey = "user"

// User is the authenticated identity carried through request context:
// profile, fixed position, and the resolved effective permission set.
type User struct {
	ID          int64                   `json:"id"`
	Email       string                  `json:"email"`
	Name        string                  `json:"name"`
	Position    permission.Position     `json:"position"`
	Permissions []permission.Permission `json:"permissions,omitempty"`
}

// EffectiveSet returns the user's permissions as a guard-checkable set.
func (u *User) EffectiveSet() permission.Set {
	return permission.NewSet(u.Permissions...)
}

func (u *User) Can(p permission.Permission) bool {
	return u.EffectiveSet().Has(p)
}

func (u *User) CanAny(perms ...permission.Permission) bool {
	return u.EffectiveSet().HasAny(perms...)
}

func UserFromContext(ctx context.Context) (*User, bool) {
	u, ok := ctx.Value(ContextUserKey).(*User)
	return u, ok
}

func ContextWithUser(ctx context.Context, u *User) context.Context {
	return context.WithValue(ctx, ContextUserKey, u)
}

// TokenGenerator creates and validates session tokens.
type TokenGenerator interface {
	GenerateAccessToken(userID string, email string) (token string, err error)
	GenerateRefreshToken(userID string, email string) (token string, err error)
	ValidateToken(tokenString string) (*Claims, error)
}

type AuthTokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// Claims represents JWT token claims
type Claims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

type JWTTokenGenerator struct {
	AccessTokenSecret  []byte
	RefreshTokenSecret []byte
	AccessTokenTTL     time.Duration
	RefreshTokenTTL    time.Duration
}

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token expired")
	ErrUserInactive       = errors.New("user is inactive")
)
