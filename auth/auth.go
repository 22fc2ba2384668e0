// Package auth issues and validates the JWT bearer tokens used by the HTTP
// surface. Citizens get plain tokens; municipal operators get tokens with the
// is_admin claim set.
package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Service signs and validates tokens with a shared HS256 secret.
type Service struct {
	secret []byte
	expiry time.Duration
}

// Claims is the validated identity extracted from a token.
type Claims struct {
	UserID  string
	IsAdmin bool
}

// NewService creates a new auth service
func NewService(secret string, expiry time.Duration) *Service {
	return &Service{secret: []byte(secret), expiry: expiry}
}

// GenerateToken issues a signed token for userID.
func (s *Service) GenerateToken(userID string, isAdmin bool) (string, error) {
	now := time.Now()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"user_id":  userID,
		"is_admin": isAdmin,
		"exp":      now.Add(s.expiry).Unix(),
		"iat":      now.Unix(),
	})
	return token.SignedString(s.secret)
}

// ValidateToken parses a token and returns its claims.
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("invalid signing method")
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("invalid token claims")
	}

	userID, ok := claims["user_id"].(string)
	if !ok || userID == "" {
		return nil, errors.New("missing user_id claim")
	}

	isAdmin, _ := claims["is_admin"].(bool)

	return &Claims{UserID: userID, IsAdmin: isAdmin}, nil
}
