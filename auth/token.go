package auth

import (
	"fmt"
	"time"
	"wish-wall/errors"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

const issuerName = "wish-wall"

// SessionClaims identifies an anonymous viewer session. Guests, the wall
// and the moderator all hold one; no identity is attached.
type SessionClaims struct {
	SessionID string `json:"session_id"`
	jwt.RegisteredClaims
}

// Issuer signs and checks session tokens with an HMAC secret.
type Issuer struct {
	secret   []byte
	duration time.Duration
	now      func() time.Time
}

func NewIssuer(secret string, duration time.Duration) *Issuer {
	return &Issuer{secret: []byte(secret), duration: duration, now: time.Now}
}

// Issue creates a signed token for a fresh anonymous session.
func (i *Issuer) Issue() (string, string, error) {
	sessionID := uuid.NewString()
	now := i.now()
	claims := &SessionClaims{
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionID,
			ExpiresAt: jwt.NewNumericDate(now.Add(i.duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    issuerName,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(i.secret)
	if err != nil {
		return "", "", fmt.Errorf("%w: %v", errors.ErrTokenGeneration, err)
	}
	return signed, sessionID, nil
}

// Validate parses the token and checks its signature, issuer and expiration.
func (i *Issuer) Validate(tokenString string) (*SessionClaims, error) {
	if tokenString == "" {
		return nil, errors.ErrMissingToken
	}
	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{},
		func(token *jwt.Token) (any, error) { return i.secret, nil },
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(issuerName),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errors.ErrInvalidToken, err)
	}
	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid {
		return nil, errors.ErrInvalidToken
	}
	return claims, nil
}
