package service

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/octobees/sift-profiler/internal/entity"
	"github.com/octobees/sift-profiler/internal/repository"
)

// ProfilesService exposes an owner's stored profiles.
type ProfilesService struct {
	repo repository.ProfilesRepository
}

// NewProfilesService constructs a ProfilesService.
func NewProfilesService(repo repository.ProfilesRepository) *ProfilesService {
	return &ProfilesService{repo: repo}
}

// List returns the owner's profiles, newest first.
func (s *ProfilesService) List(ctx context.Context, ownerID uuid.UUID) ([]entity.ProfileRecord, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Get returns one of the owner's profiles. Malformed ids are reported as not found.
func (s *ProfilesService) Get(ctx context.Context, ownerID uuid.UUID, rawID string) (*entity.ProfileRecord, error) {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return nil, repository.ErrProfileNotFound
	}
	return s.repo.GetByID(ctx, id, ownerID)
}

// Delete removes one of the owner's profiles.
func (s *ProfilesService) Delete(ctx context.Context, ownerID uuid.UUID, rawID string) error {
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		return repository.ErrProfileNotFound
	}
	return s.repo.DeleteByID(ctx, id, ownerID)
}
