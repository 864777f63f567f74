// Package auth issues and verifies the JWT bearer tokens used by the API.
package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/snapdb/snapdb/internal/models"
)

// ErrInvalidToken is returned for tokens that are malformed, expired, or
// signed with the wrong key or algorithm.
var ErrInvalidToken = errors.New("invalid token")

// Manager signs and verifies HS256 tokens carrying the account's username
// and permissions.
type Manager struct {
	secret []byte
	expiry time.Duration
}

// NewManager creates a token manager. Tokens expire after expiryHours.
func NewManager(secret []byte, expiryHours int) *Manager {
	return &Manager{
		secret: secret,
		expiry: time.Duration(expiryHours) * time.Hour,
	}
}

type tokenClaims struct {
	Username    string              `json:"username"`
	Permissions []models.Permission `json:"permissions"`
	jwt.RegisteredClaims
}

// Generate returns a signed token for the user.
func (m *Manager) Generate(user *models.User) (string, error) {
	now := time.Now()
	claims := tokenClaims{
		Username:    user.Username,
		Permissions: user.Permissions,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(m.secret)
}

// Parse verifies a token string and returns the claims it carries.
func (m *Manager) Parse(tokenString string) (*models.Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return m.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	claims, ok := token.Claims.(*tokenClaims)
	if !ok {
		return nil, ErrInvalidToken
	}
	return &models.Claims{
		Username:    claims.Username,
		Permissions: claims.Permissions,
	}, nil
}
