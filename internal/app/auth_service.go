package app

import (
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"

	"gemcanvas/internal/pkg/jwtutil"
)

// OwnerAuthService checks the single owner credential and issues tokens.
type OwnerAuthService struct {
	ownerName     string
	passwordHash  string
	jwtSecret     string
	jwtExpiration time.Duration
}

type LoginInput struct {
	Username string
	Password string
}

type AuthResult struct {
	Token     string    `json:"token"`
	Username  string    `json:"username"`
	ExpiresAt time.Time `json:"expires_at"`
}

func NewOwnerAuthService(ownerName, passwordHash, jwtSecret string, jwtExpiration time.Duration) *OwnerAuthService {
	return &OwnerAuthService{
		ownerName:     ownerName,
		passwordHash:  passwordHash,
		jwtSecret:     jwtSecret,
		jwtExpiration: jwtExpiration,
	}
}

// Enabled reports whether an owner password is configured.
func (s *OwnerAuthService) Enabled() bool {
	return s.passwordHash != ""
}

func (s *OwnerAuthService) Login(input LoginInput) (*AuthResult, error) {
	username := strings.TrimSpace(input.Username)
	password := strings.TrimSpace(input.Password)
	if username == "" || password == "" {
		return nil, ErrInvalidInput
	}
	if !s.Enabled() || username != s.ownerName {
		return nil, ErrInvalidCredential
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.passwordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredential
	}

	token, err := jwtutil.GenerateToken(s.jwtSecret, s.jwtExpiration, username)
	if err != nil {
		return nil, err
	}
	return &AuthResult{Token: token, Username: username, ExpiresAt: time.Now().Add(s.jwtExpiration)}, nil
}

func (s *OwnerAuthService) Verify(token string) (string, error) {
	claims, err := jwtutil.ParseToken(s.jwtSecret, token)
	if err != nil {
		return "", err
	}
	if claims.Username != s.ownerName {
		return "", jwtutil.ErrInvalidToken
	}
	return claims.Username, nil
}
