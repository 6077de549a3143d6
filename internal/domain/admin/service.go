package admin

import (
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	jwtpkg "songvote/internal/platform/jwt"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrDisabled           = errors.New("admin login is not configured")
)

// Service guards the operator endpoints (advance, reset, reload). With no
// password hash configured the guard is off and those endpoints are open.
type Service struct {
	passwordHash []byte
	jwtMgr       *jwtpkg.Manager
	tokenTTL     time.Duration
}

func NewService(passwordHash string, jwtMgr *jwtpkg.Manager, tokenTTL time.Duration) *Service {
	if tokenTTL <= 0 {
		tokenTTL = 12 * time.Hour
	}
	return &Service{passwordHash: []byte(passwordHash), jwtMgr: jwtMgr, tokenTTL: tokenTTL}
}

func (s *Service) Enabled() bool {
	return s != nil && len(s.passwordHash) > 0 && s.jwtMgr != nil
}

// Login checks password and returns a signed admin token.
func (s *Service) Login(password string) (string, time.Time, error) {
	if !s.Enabled() {
		return "", time.Time{}, ErrDisabled
	}
	if password == "" {
		return "", time.Time{}, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", time.Time{}, ErrInvalidCredentials
	}
	expires := time.Now().Add(s.tokenTTL)
	token, err := s.jwtMgr.Generate("admin", jwtpkg.RoleAdmin, s.tokenTTL)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expires, nil
}

// Authorize accepts any token when the guard is off.
func (s *Service) Authorize(token string) error {
	if !s.Enabled() {
		return nil
	}
	if token == "" {
		return ErrInvalidCredentials
	}
	claims, err := s.jwtMgr.Parse(token)
	if err != nil {
		return errors.Join(ErrInvalidCredentials, err)
	}
	if claims.Role != jwtpkg.RoleAdmin {
		return ErrInvalidCredentials
	}
	return nil
}

// HashPassword returns a bcrypt hash suitable for ADMIN_PASSWORD_HASH.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password required")
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}
