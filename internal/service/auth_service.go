package service

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"gcsepal-backend/internal/model"
	"gcsepal-backend/internal/repository"
	"gcsepal-backend/utilities"
)

var (
	// ErrEmailTaken is returned when registration targets an email that
	// already has an account.
	ErrEmailTaken = errors.New("email already in use")
	// ErrInvalidRegistration is returned for malformed registration input.
	ErrInvalidRegistration = errors.New("email and password are required")
)

// TokenPair carries one issued access/refresh token pair.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type AuthService interface {
	Register(user *model.User) error
	Login(email, password string) (*model.User, *TokenPair, error)
	Refresh(refreshToken string) (*TokenPair, error)
	// LogoutAllDevices bumps the user's token version so every previously
	// issued token fails validation.
	LogoutAllDevices(userID uuid.UUID) error
	// SyncExternalUser upserts a user row on first sign-in from the auth
	// provider.
	SyncExternalUser(externalID, email, name string) (*model.User, error)
}

type authService struct {
	userRepo repository.UserRepository
}

func NewAuthService(userRepo repository.UserRepository) AuthService {
	return &authService{userRepo: userRepo}
}

func (s *authService) Register(user *model.User) error {
	if user.Email == "" || user.Password == "" {
		return ErrInvalidRegistration
	}

	existing, err := s.userRepo.GetUserByEmail(user.Email)
	if err == nil && existing != nil {
		return ErrEmailTaken
	}
	if err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to look up email: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(user.Password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	user.Password = string(hashed)
	if user.Role == "" {
		user.Role = model.RoleStudent
	}

	if err := s.userRepo.CreateUser(user); err != nil {
		return fmt.Errorf("failed to store user: %w", err)
	}
	return nil
}

func (s *authService) Login(email, password string) (*model.User, *TokenPair, error) {
	user, err := s.userRepo.GetUserByEmail(email)
	if err != nil {
		return nil, nil, errors.New("invalid credentials")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, nil, errors.New("invalid credentials")
	}

	access, refresh, err := utilities.GenerateTokens(user)
	if err != nil {
		return nil, nil, errors.New("failed to generate tokens")
	}

	user.Password = ""
	return user, &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) Refresh(refreshToken string) (*TokenPair, error) {
	claims, err := utilities.ValidateToken(refreshToken, true)
	if err != nil {
		return nil, errors.New("invalid or expired refresh token")
	}

	user, err := s.userRepo.GetUserByID(claims.UserID)
	if err != nil {
		return nil, errors.New("user not found")
	}
	if user.TokenVersion != claims.TokenVersion {
		return nil, errors.New("token has been revoked")
	}

	access, refresh, err := utilities.GenerateTokens(user)
	if err != nil {
		return nil, errors.New("failed to generate tokens")
	}
	return &TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func (s *authService) LogoutAllDevices(userID uuid.UUID) error {
	return s.userRepo.BumpTokenVersion(userID)
}

func (s *authService) SyncExternalUser(externalID, email, name string) (*model.User, error) {
	return s.userRepo.SyncExternalUser(externalID, email, name)
}
