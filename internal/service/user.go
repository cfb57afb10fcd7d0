package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/octobees/sift-profiler/internal/dto"
	"github.com/octobees/sift-profiler/internal/repository"
)

// UserService manages the caller's own account.
type UserService struct {
	repo repository.UsersRepository
}

// NewUserService builds a new UserService instance.
func NewUserService(repo repository.UsersRepository) *UserService {
	return &UserService{repo: repo}
}

// GetMe returns the account for id.
func (s *UserService) GetMe(ctx context.Context, id uuid.UUID) (*dto.UserResponse, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.NewUserResponse(user)
	return &resp, nil
}

// UpdateMe applies a partial update. Changing the password requires the
// current password; username and email must stay unique.
func (s *UserService) UpdateMe(ctx context.Context, id uuid.UUID, req dto.UpdateMeRequest) (*dto.UserResponse, error) {
	if req.Username == nil && req.Email == nil && req.NewPassword == nil {
		return nil, ErrNoFieldsToUpdate
	}

	current, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	var usernamePtr *string
	if req.Username != nil {
		username := strings.TrimSpace(*req.Username)
		if err := validateUsername(username); err != nil {
			return nil, err
		}
		if username != current.Username {
			taken, err := s.repo.ExistsByUsername(ctx, username, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrUsernameTaken
			}
		}
		usernamePtr = &username
	}

	var emailPtr *string
	if req.Email != nil {
		email := normalizeAccountEmail(*req.Email)
		if err := validateAccountEmail(email); err != nil {
			return nil, err
		}
		if email != current.Email {
			taken, err := s.repo.ExistsByEmail(ctx, email, id)
			if err != nil {
				return nil, err
			}
			if taken {
				return nil, ErrEmailAlreadyExists
			}
		}
		emailPtr = &email
	}

	var passwordPtr *string
	if req.NewPassword != nil {
		if req.CurrentPassword == nil || *req.CurrentPassword == "" {
			return nil, validationErrorf("current password is required to set a new password")
		}
		if err := bcrypt.CompareHashAndPassword([]byte(current.PasswordHash), []byte(*req.CurrentPassword)); err != nil {
			return nil, validationErrorf("current password is incorrect")
		}
		if utf8.RuneCountInString(*req.NewPassword) < minPasswordLength {
			return nil, validationErrorf("password must be at least %d characters", minPasswordLength)
		}
		hashed, err := bcrypt.GenerateFromPassword([]byte(*req.NewPassword), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		pwd := string(hashed)
		passwordPtr = &pwd
	}

	user, err := s.repo.Update(ctx, id, usernamePtr, emailPtr, passwordPtr)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, repository.ErrUserNotFound
		}
		return nil, mapDuplicate(err)
	}

	resp := dto.NewUserResponse(user)
	return &resp, nil
}
