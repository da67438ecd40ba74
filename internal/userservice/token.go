package userservice

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid bearer token")
)

// Claims is the payload carried by a signed bearer token. The user id is the
// subject identity every protected operation resolves.
type Claims struct {
	UserID   int    `json:"id"`
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies bearer tokens with a process-wide
// HMAC-SHA256 secret loaded once at startup.
type TokenManager struct {
	secret   []byte
	ttl      time.Duration
	timeFunc func() time.Time
}

func NewTokenManager(secret []byte, ttl time.Duration) (*TokenManager, error) {
	if len(secret) < 32 {
		return nil, errors.New("token secret must be at least 32 bytes")
	}

	return &TokenManager{
		secret:   secret,
		ttl:      ttl,
		timeFunc: time.Now,
	}, nil
}

// New issues a signed token for the given user.
func (tm *TokenManager) New(user *User) (string, error) {
	now := tm.timeFunc()

	claims := Claims{
		UserID:   user.ID,
		Username: user.Username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.Username,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(tm.ttl)),
		},
	}

	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(tm.secret)
}

// Verify validates a bearer token and returns its claims. An absent token
// resolves to ErrMissingToken; any structural or cryptographic failure
// (malformed, expired, bad signature, wrong method, no usable user id) wraps
// ErrInvalidToken with the underlying cause for diagnostics. Verify never
// surfaces a bare library error.
func (tm *TokenManager) Verify(token string) (*Claims, error) {
	if token == "" {
		return nil, ErrMissingToken
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		return tm.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}), jwt.WithTimeFunc(tm.timeFunc))
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidToken, err)
	}

	if claims.UserID < 1 {
		return nil, fmt.Errorf("%w: missing user id claim", ErrInvalidToken)
	}

	return &claims, nil
}
