package utils

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt"
)

const RoleAdmin = "admin"

// ErrEmptySecret is returned when no signing secret is configured. An empty
// HMAC key would let anyone mint valid tokens.
var ErrEmptySecret = errors.New("jwt secret is not configured")

// TokenClaims are the identity fields the API reads from a bearer token.
type TokenClaims struct {
	UserID string
	Role   string
}

// GenerateToken signs an HS256 token for subject. Tokens are issued by the
// auth service; this exists for tooling and tests.
func GenerateToken(secret, subject, role string, duration time.Duration) (string, error) {
	if secret == "" {
		return "", ErrEmptySecret
	}
	claims := jwt.MapClaims{
		"sub":  subject,
		"role": role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(duration).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// ValidateToken checks the signature and expiry of tokenString and returns
// its subject and role.
func ValidateToken(secret, tokenString string) (*TokenClaims, error) {
	if secret == "" {
		return nil, ErrEmptySecret
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		// Ensure that the token's signing method is HMAC.
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method")
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, errors.New("invalid token")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, errors.New("token does not contain a valid 'sub' claim")
	}
	role, _ := claims["role"].(string)
	return &TokenClaims{UserID: sub, Role: role}, nil
}
