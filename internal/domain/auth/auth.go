package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/xenking/ghala-dashboard/internal/session"
)

// ErrInvalidCredentials is returned for unknown users and wrong passwords
// alike, so login responses never reveal which half was wrong.
var ErrInvalidCredentials = fmt.Errorf("invalid credentials")

// User is a dashboard account. Merchant accounts carry the merchant they
// operate; admin accounts have an empty MerchantID.
type User struct {
	Username     string
	PasswordHash string
	Name         string
	Email        string
	Role         string
	MerchantID   string
}

// Repository provides user lookup for authentication.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
}

// Service authenticates users and manages their bearer-token sessions.
type Service struct {
	users    Repository
	sessions session.Store
	tokenTTL time.Duration
}

// NewService creates an auth Service. tokenTTL bounds how long an issued
// token stays valid without re-login.
func NewService(users Repository, sessions session.Store, tokenTTL time.Duration) *Service {
	return &Service{
		users:    users,
		sessions: sessions,
		tokenTTL: tokenTTL,
	}
}

// LoginResult carries the issued token and the authenticated identity.
type LoginResult struct {
	Token   string
	Session session.Session
}

// Login verifies the credentials and issues a fresh bearer token.
func (s *Service) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	u, err := s.users.FindByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}

	sess := session.Session{
		Username:   u.Username,
		Name:       u.Name,
		Email:      u.Email,
		Role:       u.Role,
		MerchantID: u.MerchantID,
		IssuedAt:   time.Now().Unix(),
	}
	token := uuid.New().String()
	if err := s.sessions.Save(ctx, token, sess, s.tokenTTL); err != nil {
		return nil, errors.Wrap(err, "save session")
	}

	return &LoginResult{Token: token, Session: sess}, nil
}

// Authenticate resolves a bearer token to its session.
func (s *Service) Authenticate(ctx context.Context, token string) (*session.Session, error) {
	return s.sessions.Lookup(ctx, token)
}

// Logout revokes a bearer token.
func (s *Service) Logout(ctx context.Context, token string) error {
	return s.sessions.Delete(ctx, token)
}

// HashPassword produces the bcrypt hash stored for a user. Used by seeding.
func HashPassword(password string) (string, error) {
	h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", errors.Wrap(err, "hash password")
	}
	return string(h), nil
}
