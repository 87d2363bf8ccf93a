// File: internal/profile/service.go
package profile

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service defines the interface for profile business logic.
type Service interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	GetByFirebaseUID(ctx context.Context, uid string) (*Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*Profile, error)
}

type service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new profile service.
func NewService(repo Repository, logger *zap.Logger) Service {
	return &service{
		repo:   repo,
		logger: logger,
	}
}

func (s *service) GetByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	return s.repo.FindByID(ctx, id)
}

func (s *service) GetByFirebaseUID(ctx context.Context, uid string) (*Profile, error) {
	return s.repo.FindByFirebaseUID(ctx, uid)
}

func (s *service) UpdateProfile(ctx context.Context, id uuid.UUID, req UpdateProfileRequest) (*Profile, error) {
	p, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FullName != nil {
		p.FullName = req.FullName
	}
	if req.Phone != nil {
		p.Phone = req.Phone
	}

	if err := s.repo.Update(ctx, p); err != nil {
		s.logger.Error("Failed to update profile", zap.String("profile_id", id.String()), zap.Error(err))
		return nil, err
	}
	return p, nil
}
