package auth

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

var ErrInvalidToken = errors.New("invalid token")
var ErrNoToken = errors.New("no bearer token")

// TokenValidator verifies HS256 tokens issued by the identity provider and
// returns the subject, the CMS user uid.
type TokenValidator struct {
	secret []byte
}

func NewTokenValidator(secret string) TokenValidator {
	return TokenValidator{secret: []byte(secret)}
}

// Enabled reports whether a signing secret is configured.
func (v TokenValidator) Enabled() bool {
	return len(v.secret) > 0
}

func (v TokenValidator) Validate(tokenStr string) (string, error) {
	if !v.Enabled() {
		return "", fmt.Errorf("%w: token validation is not configured", ErrInvalidToken)
	}
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil || !token.Valid {
		return "", fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return "", fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	return subject, nil
}

// BearerToken extracts the token of an "Authorization: Bearer <token>" header.
func BearerToken(header string) (string, error) {
	parts := strings.Fields(header)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "bearer") {
		return "", ErrNoToken
	}
	return parts[1], nil
}
