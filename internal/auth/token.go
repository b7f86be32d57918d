package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

var ErrInvalidPlayerToken = errors.New("invalid player token")

// PlayerClaims binds a websocket player to one session.
type PlayerClaims struct {
	SessionToken string `json:"session_token"`
	jwt.RegisteredClaims
}

// IssuePlayerToken signs an HS256 token for sessionToken valid for ttl.
func IssuePlayerToken(secret, sessionToken string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := PlayerClaims{
		SessionToken: sessionToken,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   sessionToken,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("sign player token: %w", err)
	}
	return signed, nil
}

// VerifyPlayerToken returns the session token a player token was issued for.
func VerifyPlayerToken(secret, token string) (string, error) {
	var claims PlayerClaims
	parsed, err := jwt.ParseWithClaims(token, &claims, func(t *jwt.Token) (interface{}, error) {
		if t.Method.Alg() != jwt.SigningMethodHS256.Alg() {
			return nil, fmt.Errorf("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil || !parsed.Valid || claims.SessionToken == "" {
		return "", ErrInvalidPlayerToken
	}
	return claims.SessionToken, nil
}
