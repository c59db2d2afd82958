package utils

import (
	"fmt"
	"time"

	"rucja-api/models"

	"github.com/golang-jwt/jwt/v4"
)

// Claims embeds the full user record in the token, hashed password
// included, exactly as the legacy server signed it. Verification is
// entirely self-contained: nothing is re-checked against the store, so a
// deleted or modified user stays valid until the token expires.
type Claims struct {
	models.User
	jwt.RegisteredClaims
}

// GenerateAccessToken signs an HS256 token for the user, expiring after ttl.
func GenerateAccessToken(user models.User, ttl time.Duration, secret []byte) (string, error) {
	now := time.Now()
	claims := Claims{
		User: user,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secret)
}

// ParseAccessToken validates signature and expiry and returns the decoded
// claims. Forged and expired tokens are indistinguishable to the caller;
// both come back as a single invalid-token error.
func ParseAccessToken(tokenStr string, secret []byte) (*Claims, error) {
	parser := jwt.NewParser(jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Name}))
	claims := &Claims{}
	token, err := parser.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return secret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("token is not valid")
	}
	return claims, nil
}
