package service

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AdminAuthService interface {
	Login(email, password string) (string, error)
}

type adminAuthService struct {
	adminEmail        string
	adminPasswordHash string
	jwtSecret         string
}

// NewAdminAuthService checks logins against the configured admin
// credentials and issues short-lived HS256 tokens.
func NewAdminAuthService(adminEmail, adminPasswordHash, jwtSecret string) AdminAuthService {
	return &adminAuthService{
		adminEmail:        adminEmail,
		adminPasswordHash: adminPasswordHash,
		jwtSecret:         jwtSecret,
	}
}

func (s *adminAuthService) Login(email, password string) (string, error) {
	if s.adminEmail == "" || s.adminPasswordHash == "" {
		return "", errors.New("admin credentials not configured")
	}
	if s.jwtSecret == "" {
		return "", errors.New("JWT_SECRET not set")
	}
	if email != s.adminEmail {
		return "", errors.New("invalid credentials")
	}
	if err := bcrypt.CompareHashAndPassword([]byte(s.adminPasswordHash), []byte(password)); err != nil {
		return "", errors.New("invalid credentials")
	}

	claims := jwt.MapClaims{
		"email": email,
		"role":  "admin",
		"exp":   time.Now().Add(time.Hour).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
