package jwt

import (
	"errors"
	"fmt"
	"time"

	jwtlib "github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ErrInvalidToken is returned for tokens that fail signature, expiry or shape checks.
var ErrInvalidToken = errors.New("invalid token")

// Claims is the capability token payload.
type Claims struct {
	Mode string `json:"mode"`
	jwtlib.RegisteredClaims
}

// Signer issues and verifies HS256 capability tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
}

// NewSigner returns a signer. An empty secret is replaced by a random one,
// so tokens do not survive a restart.
func NewSigner(secret string, ttl time.Duration) *Signer {
	if secret == "" {
		secret = uuid.NewString() + uuid.NewString()
	}
	return &Signer{secret: []byte(secret), ttl: ttl}
}

// Sign creates a signed token carrying the given access mode.
func (s *Signer) Sign(mode string) (string, error) {
	now := time.Now()
	claims := Claims{
		Mode: mode,
		RegisteredClaims: jwtlib.RegisteredClaims{
			ID:        uuid.NewString(),
			ExpiresAt: jwtlib.NewNumericDate(now.Add(s.ttl)),
			IssuedAt:  jwtlib.NewNumericDate(now),
		},
	}
	token := jwtlib.NewWithClaims(jwtlib.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

// Parse validates a token string and returns the claims.
func (s *Signer) Parse(tokenStr string) (*Claims, error) {
	token, err := jwtlib.ParseWithClaims(tokenStr, &Claims{}, func(t *jwtlib.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwtlib.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Mode == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}
