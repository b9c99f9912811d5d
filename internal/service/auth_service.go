package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidPIN = errors.New("invalid operator PIN")
)

// AuthService authenticates the terminal operator. The POS runs for a
// single configured operator; login exchanges the PIN for a token that
// the catalog mutation routes require.
type AuthService interface {
	Login(pin string) (token string, err error)
}

type authService struct {
	pinHash     string
	jwtSecret   string
	tokenExpiry time.Duration
}

// NewAuthService creates a new instance of AuthService. pinHash is the
// bcrypt hash of the operator PIN; tokenExpiryMinutes bounds session
// length.
func NewAuthService(pinHash, jwtSecret string, tokenExpiryMinutes int) AuthService {
	return &authService{
		pinHash:     pinHash,
		jwtSecret:   jwtSecret,
		tokenExpiry: time.Duration(tokenExpiryMinutes) * time.Minute,
	}
}

// Login verifies the PIN and issues a signed operator token
func (s *authService) Login(pin string) (string, error) {
	if err := bcrypt.CompareHashAndPassword([]byte(s.pinHash), []byte(pin)); err != nil {
		return "", ErrInvalidPIN
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"role": "operator",
		"iat":  jwt.NewNumericDate(now),
		"exp":  jwt.NewNumericDate(now.Add(s.tokenExpiry)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.jwtSecret))
	if err != nil {
		return "", err
	}

	return signed, nil
}
