package service

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/sift-profiler/internal/auth"
	"github.com/octobees/sift-profiler/internal/dto"
	"github.com/octobees/sift-profiler/internal/entity"
	"github.com/octobees/sift-profiler/internal/repository"
)

const (
	minUsernameLength = 3
	maxUsernameLength = 100
	minPasswordLength = 6
	tokenTypeBearer   = "bearer"
)

// AuthService coordinates registration, credential validation and token issuance.
type AuthService struct {
	users repository.UsersRepository
	jwt   *auth.JWTManager
}

// NewAuthService constructs a new AuthService.
func NewAuthService(users repository.UsersRepository, jwtManager *auth.JWTManager) *AuthService {
	return &AuthService{users: users, jwt: jwtManager}
}

// Register creates an account and logs it in.
func (s *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (*dto.TokenResponse, error) {
	username := strings.TrimSpace(req.Username)
	email := normalizeAccountEmail(req.Email)

	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validateAccountEmail(email); err != nil {
		return nil, err
	}
	if utf8.RuneCountInString(req.Password) < minPasswordLength {
		return nil, validationErrorf("password must be at least %d characters", minPasswordLength)
	}

	if taken, err := s.users.ExistsByEmail(ctx, email, uuid.Nil); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrEmailAlreadyExists
	}
	if taken, err := s.users.ExistsByUsername(ctx, username, uuid.Nil); err != nil {
		return nil, err
	} else if taken {
		return nil, ErrUsernameTaken
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.users.Create(ctx, username, email, string(hashed))
	if err != nil {
		return nil, mapDuplicate(err)
	}
	return s.issue(user)
}

// Login validates credentials and returns a JWT with the account.
func (s *AuthService) Login(ctx context.Context, email, password string) (*dto.TokenResponse, error) {
	email = normalizeAccountEmail(email)
	if email == "" || password == "" {
		return nil, validationErrorf("email and password must not be empty")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(user)
}

func (s *AuthService) issue(user *entity.User) (*dto.TokenResponse, error) {
	token, err := s.jwt.GenerateToken(user.ID.String(), user.Email, user.Username)
	if err != nil {
		return nil, err
	}
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   tokenTypeBearer,
		User:        dto.NewUserResponse(user),
	}, nil
}

func normalizeAccountEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateUsername(username string) error {
	n := utf8.RuneCountInString(username)
	if n < minUsernameLength || n > maxUsernameLength {
		return validationErrorf("username must be between %d and %d characters", minUsernameLength, maxUsernameLength)
	}
	return nil
}

func validateAccountEmail(email string) error {
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return validationErrorf("a valid email is required")
	}
	return nil
}

func mapDuplicate(err error) error {
	switch {
	case errors.Is(err, repository.ErrEmailDuplicate):
		return ErrEmailAlreadyExists
	case errors.Is(err, repository.ErrUsernameDuplicate):
		return ErrUsernameTaken
	}
	return err
}
