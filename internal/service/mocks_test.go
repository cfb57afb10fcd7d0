package service

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/octobees/sift-profiler/internal/entity"
)

type mockUsersRepository struct {
	findByEmail      func(ctx context.Context, email string) (*entity.User, error)
	findByID         func(ctx context.Context, id uuid.UUID) (*entity.User, error)
	create           func(ctx context.Context, username, email, passwordHash string) (*entity.User, error)
	update           func(ctx context.Context, id uuid.UUID, username, email, passwordHash *string) (*entity.User, error)
	existsByUsername func(ctx context.Context, username string, excludeID uuid.UUID) (bool, error)
	existsByEmail    func(ctx context.Context, email string, excludeID uuid.UUID) (bool, error)
}

func (m *mockUsersRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.findByEmail != nil {
		return m.findByEmail(ctx, email)
	}
	return nil, errors.New("findByEmail not implemented")
}

func (m *mockUsersRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if m.findByID != nil {
		return m.findByID(ctx, id)
	}
	return nil, errors.New("FindByID not implemented")
}

func (m *mockUsersRepository) Create(ctx context.Context, username, email, passwordHash string) (*entity.User, error) {
	if m.create != nil {
		return m.create(ctx, username, email, passwordHash)
	}
	return nil, errors.New("create not implemented")
}

func (m *mockUsersRepository) Update(ctx context.Context, id uuid.UUID, username, email, passwordHash *string) (*entity.User, error) {
	if m.update != nil {
		return m.update(ctx, id, username, email, passwordHash)
	}
	return nil, errors.New("Update not implemented")
}

func (m *mockUsersRepository) ExistsByUsername(ctx context.Context, username string, excludeID uuid.UUID) (bool, error) {
	if m.existsByUsername != nil {
		return m.existsByUsername(ctx, username, excludeID)
	}
	return false, nil
}

func (m *mockUsersRepository) ExistsByEmail(ctx context.Context, email string, excludeID uuid.UUID) (bool, error) {
	if m.existsByEmail != nil {
		return m.existsByEmail(ctx, email, excludeID)
	}
	return false, nil
}
