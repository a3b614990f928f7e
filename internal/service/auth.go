package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mbelyaev/jobtrack/internal/hash"
	"github.com/mbelyaev/jobtrack/internal/logging"
	"github.com/mbelyaev/jobtrack/internal/models"
	"github.com/mbelyaev/jobtrack/internal/repo"
	"github.com/mbelyaev/jobtrack/internal/tokens"
)

type AuthService struct {
	Repo      *repo.GormRepo
	JWTSecret []byte
	TokenTTL  time.Duration
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func (s *AuthService) CreateToken(userID uuid.UUID, email string) (string, error) {
	return tokens.Create(userID, email, s.TokenTTL, s.JWTSecret)
}

func (s *AuthService) Register(ctx context.Context, name, email, password string) (*models.User, string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.register")

	name = strings.TrimSpace(name)
	email = normalizeEmail(email)
	if name == "" || email == "" || password == "" {
		return nil, "", fmt.Errorf("name, email and password are required: %w", ErrValidation)
	}

	pwHash, err := hash.HashPassword(password)
	if err != nil {
		l.Error("register_error", "reason", "cannot hash the password", "error", err)
		return nil, "", err
	}

	user := models.User{
		Name:         name,
		Email:        email,
		PasswordHash: pwHash,
	}
	if err := s.Repo.CreateUserIfNotExists(ctx, &user); err != nil {
		if errors.Is(err, repo.ErrEmailTaken) {
			l.Warn("register_error", "reason", "email already registered")
			return nil, "", fmt.Errorf("%s: %w", email, ErrEmailTaken)
		}
		l.Error("register_error", "error", err)
		return nil, "", err
	}

	token, err := s.CreateToken(user.ID, user.Email)
	if err != nil {
		l.Error("register_error", "reason", "cannot sign token", "error", err)
		return nil, "", err
	}

	return &user, token, nil
}

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, string, error) {
	l := logging.FromContext(ctx).With("svc", "auth.login")

	email = normalizeEmail(email)
	if email == "" || password == "" {
		return nil, "", fmt.Errorf("email and password are required: %w", ErrValidation)
	}

	// Unknown email and wrong password produce the same error so the
	// response never reveals which one failed.
	user, err := s.Repo.UserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			l.Warn("login_failed", "reason", "unknown email")
			return nil, "", ErrInvalidCredentials
		}
		l.Error("login_failed", "error", err)
		return nil, "", err
	}
	if !hash.CheckPassword(user.PasswordHash, password) {
		l.Warn("login_failed", "reason", "password mismatch")
		return nil, "", ErrInvalidCredentials
	}

	token, err := s.CreateToken(user.ID, user.Email)
	if err != nil {
		l.Error("login_failed", "reason", "cannot sign token", "error", err)
		return nil, "", err
	}

	return user, token, nil
}

func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.Repo.UserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("user %s: %w", userID, ErrNotFound)
		}
		return nil, err
	}
	return user, nil
}
