package token

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ConnectClaims is the JWT payload clients present when opening a live
// update socket.
type ConnectClaims struct {
	ConnectionID string `json:"connection_id"`
	BookingID    string `json:"booking_id"`
	jwt.RegisteredClaims
}

// Service handles connect-token creation and validation.
type Service struct {
	secret    []byte
	expiresIn time.Duration
}

// NewService returns a configured token service.
func NewService(secret string, expiresIn time.Duration) *Service {
	if expiresIn <= 0 {
		expiresIn = time.Hour
	}
	return &Service{secret: []byte(secret), expiresIn: expiresIn}
}

// Generate issues a connect token for the given socket connection.
func (s *Service) Generate(connectionID, bookingID string) (string, error) {
	if connectionID == "" {
		return "", errors.New("token: connection id is required")
	}

	now := time.Now().UTC()
	claims := ConnectClaims{
		ConnectionID: connectionID,
		BookingID:    bookingID,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.expiresIn)),
		},
	}

	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(s.secret)
}

// Validate verifies and decodes a connect token.
func (s *Service) Validate(tokenString string) (*ConnectClaims, error) {
	tok, err := jwt.ParseWithClaims(tokenString, &ConnectClaims{}, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("token: unexpected signing method")
		}
		return s.secret, nil
	})
	if err != nil {
		return nil, err
	}

	if claims, ok := tok.Claims.(*ConnectClaims); ok && tok.Valid {
		return claims, nil
	}

	return nil, errors.New("token: invalid claims")
}
