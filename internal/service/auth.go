package service

import (
	"crypto/subtle"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/msomdec/user-dashboard/internal/domain"
)

// sessionTTL is how long an operator session token stays valid.
const sessionTTL = 12 * time.Hour

// AuthService guards the dashboard behind a single operator account.
// The password is hashed once at construction and never kept in clear.
type AuthService struct {
	username     string
	passwordHash []byte
	jwtSecret    []byte
	now          func() time.Time
}

// NewAuthService hashes password with the given bcrypt cost and returns a
// service that accepts only that username and password.
func NewAuthService(username, password, jwtSecret string, bcryptCost int) (*AuthService, error) {
	if username == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password are required", domain.ErrInvalidInput)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	return &AuthService{
		username:     username,
		passwordHash: hash,
		jwtSecret:    []byte(jwtSecret),
		now:          time.Now,
	}, nil
}

// Login verifies credentials and returns a signed JWT.
func (s *AuthService) Login(username, password string) (string, error) {
	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	// Always run bcrypt so a wrong username costs the same as a wrong password.
	passErr := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password))
	if !userOK || passErr != nil {
		return "", domain.ErrUnauthorized
	}

	now := s.now()
	claims := jwt.MapClaims{
		"sub": s.username,
		"iat": now.Unix(),
		"exp": now.Add(sessionTTL).Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.jwtSecret)
	if err != nil {
		return "", fmt.Errorf("sign jwt: %w", err)
	}
	return token, nil
}

// ValidateToken parses a session token and returns the operator name it was issued to.
func (s *AuthService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil || !token.Valid {
		return "", domain.ErrUnauthorized
	}

	sub, err := token.Claims.GetSubject()
	if err != nil || sub != s.username {
		return "", domain.ErrUnauthorized
	}
	return sub, nil
}

// SessionTTL returns how long issued tokens are valid.
func (s *AuthService) SessionTTL() time.Duration {
	return sessionTTL
}
