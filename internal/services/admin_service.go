package services

import (
	"errors"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/atrajit-sarkar/Discord-Guardian/internal/models"
)

var (
	ErrAccountNotFound = errors.New("account not found")
	ErrInvalidPassword = errors.New("invalid password")
)

// AdminService holds operator accounts for the admin API and issues their
// session tokens. Accounts are seeded from config at startup.
type AdminService struct {
	mu        sync.RWMutex
	accounts  map[string]*models.AdminAccount // username -> account
	jwtSecret string
	jwtExpiry time.Duration
}

func NewAdminService(jwtSecret string, jwtExpiry time.Duration) *AdminService {
	return &AdminService{
		accounts:  make(map[string]*models.AdminAccount),
		jwtSecret: jwtSecret,
		jwtExpiry: jwtExpiry,
	}
}

// Seed registers an operator account, hashing the password. Empty credentials
// are ignored so an unset config simply leaves the admin API unusable.
func (s *AdminService) Seed(username, password string) error {
	if username == "" || password == "" {
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.accounts[username] = &models.AdminAccount{
		ID:           uuid.New().String(),
		Username:     username,
		PasswordHash: string(hashed),
		CreatedAt:    time.Now().UTC(),
	}
	return nil
}

// Login verifies credentials and returns a signed token.
func (s *AdminService) Login(req *models.LoginRequest) (string, error) {
	s.mu.RLock()
	account, exists := s.accounts[req.Username]
	s.mu.RUnlock()

	if !exists {
		return "", ErrAccountNotFound
	}
	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(req.Password)); err != nil {
		return "", ErrInvalidPassword
	}

	claims := jwt.MapClaims{
		"user_id": account.ID,
		"sub":     account.Username,
		"exp":     time.Now().Add(s.jwtExpiry).Unix(),
		"iat":     time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}
