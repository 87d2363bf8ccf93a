// File: internal/contact/service.go
package contact

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Service stores contact-form submissions.
type Service struct {
	db     *gorm.DB
	logger *zap.Logger
}

// NewService creates a new contact service.
func NewService(db *gorm.DB, logger *zap.Logger) *Service {
	return &Service{
		db:     db,
		logger: logger.Named("contact_service"),
	}
}

// Submit stores a contact message. profileID is attached when the sender is
// signed in; uuid.Nil means anonymous.
func (s *Service) Submit(ctx context.Context, req SubmitRequest, profileID uuid.UUID) (*Message, error) {
	m := &Message{
		Name:  strings.TrimSpace(req.Name),
		Email: strings.ToLower(strings.TrimSpace(req.Email)),
		Body:  req.Body,
	}
	if req.Subject != nil {
		trimmed := strings.TrimSpace(*req.Subject)
		if trimmed != "" {
			m.Subject = &trimmed
		}
	}
	if profileID != uuid.Nil {
		m.ProfileID = &profileID
	}

	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		s.logger.Error("Failed to store contact message", zap.Error(err))
		return nil, err
	}
	return m, nil
}
