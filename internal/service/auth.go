package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"grabyourtickets/internal/auth"
	"grabyourtickets/internal/database"
	"grabyourtickets/internal/logger"
	"grabyourtickets/internal/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	apperrors "grabyourtickets/internal/errors"
)

var ErrInvalidCredentials = errors.New("invalid email or password")

type AuthService struct {
	users  UserStore
	tokens *auth.TokenManager
	admin  AdminAccount
}

func NewAuthService(users UserStore, tokens *auth.TokenManager, admin AdminAccount) *AuthService {
	return &AuthService{users: users, tokens: tokens, admin: admin}
}

func (s *AuthService) Register(ctx context.Context, req *models.RegisterRequest) (*models.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	if name == "" {
		return nil, apperrors.Validation("name", "is required")
	}
	if email == "" {
		return nil, apperrors.Validation("email", "is required")
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if existing != nil {
		return nil, apperrors.Validation("email", "is already registered")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleUser,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, apperrors.Validation("email", "is already registered")
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	logger.WithContext(ctx).Info("User registered", "user_id", user.ID)
	return s.respond(user)
}

func (s *AuthService) Login(ctx context.Context, req *models.LoginRequest) (*models.AuthResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	if user == nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, ErrInvalidCredentials)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, fmt.Errorf("%w: %w", apperrors.ErrUnauthorized, ErrInvalidCredentials)
	}

	return s.respond(user)
}

// EnsureAdmin creates or refreshes the configured admin account. It does
// nothing when no admin is configured or the stored account already matches.
func (s *AuthService) EnsureAdmin(ctx context.Context) error {
	email := strings.ToLower(strings.TrimSpace(s.admin.Email))
	if email == "" || s.admin.Password == "" {
		logger.WithContext(ctx).Warn("Admin credentials are not configured, skipping admin bootstrap")
		return nil
	}

	existing, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return fmt.Errorf("failed to look up admin: %w", err)
	}
	if existing != nil && existing.Role == models.RoleAdmin &&
		bcrypt.CompareHashAndPassword([]byte(existing.PasswordHash), []byte(s.admin.Password)) == nil {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(s.admin.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	name := s.admin.Name
	if name == "" {
		name = "Administrator"
	}
	admin := &models.User{
		ID:           uuid.New().String(),
		Name:         name,
		Email:        email,
		PasswordHash: string(hash),
		Role:         models.RoleAdmin,
	}
	if err := s.users.UpsertAdmin(ctx, admin); err != nil {
		return fmt.Errorf("failed to upsert admin: %w", err)
	}

	logger.WithContext(ctx).Info("Admin account ensured", "user_id", admin.ID, "email", email)
	return nil
}

func (s *AuthService) respond(user *models.User) (*models.AuthResponse, error) {
	token, err := s.tokens.Issue(auth.Identity{
		ID:    user.ID,
		Email: user.Email,
		Name:  user.Name,
		Role:  user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}
	return &models.AuthResponse{
		ID:    user.ID,
		Name:  user.Name,
		Email: user.Email,
		Role:  user.Role,
		Token: token,
	}, nil
}
