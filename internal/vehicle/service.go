// File: internal/vehicle/service.go
package vehicle

import (
	"context"
	"mime/multipart"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"motormate_backend/internal/common"
	"motormate_backend/internal/filestorage"
)

const documentSubDir = "car-documents"

// maxDocumentBytes caps car document uploads at 10 MiB.
const maxDocumentBytes = 10 << 20

// Service defines the interface for car business logic.
type Service interface {
	AddCar(ctx context.Context, ownerID uuid.UUID, req CreateCarRequest) (*Car, error)
	GetMyCars(ctx context.Context, ownerID uuid.UUID) ([]Car, error)
	DeleteCar(ctx context.Context, ownerID, carID uuid.UUID) error
	AttachDocument(ctx context.Context, ownerID, carID uuid.UUID, fileHeader *multipart.FileHeader) (*Car, error)
	ToResponse(car *Car) CarResponse
}

type service struct {
	repo    Repository
	storage filestorage.Service
	logger  *zap.Logger
}

// NewService creates a new vehicle service.
func NewService(repo Repository, storage filestorage.Service, logger *zap.Logger) Service {
	return &service{
		repo:    repo,
		storage: storage,
		logger:  logger.Named("vehicle_service"),
	}
}

func (s *service) AddCar(ctx context.Context, ownerID uuid.UUID, req CreateCarRequest) (*Car, error) {
	car := &Car{
		OwnerID:     ownerID,
		Make:        req.Make,
		Model:       req.Model,
		Year:        req.Year,
		PlateNumber: req.PlateNumber,
		Color:       req.Color,
	}
	if err := s.repo.Create(ctx, car); err != nil {
		return nil, err
	}
	return car, nil
}

func (s *service) GetMyCars(ctx context.Context, ownerID uuid.UUID) ([]Car, error) {
	return s.repo.FindByOwnerID(ctx, ownerID)
}

func (s *service) DeleteCar(ctx context.Context, ownerID, carID uuid.UUID) error {
	car, err := s.repo.FindByID(ctx, carID)
	if err != nil {
		return err
	}
	if car.OwnerID != ownerID {
		return common.ErrForbidden.WithDetails("This car belongs to another customer.")
	}

	if err := s.repo.Delete(ctx, carID); err != nil {
		return err
	}

	if car.DocumentKey != nil {
		if derr := s.storage.DeleteFile(ctx, *car.DocumentKey); derr != nil {
			s.logger.Warn("Failed to delete car document from storage",
				zap.String("car_id", carID.String()), zap.Error(derr))
		}
	}
	return nil
}

// AttachDocument uploads a registration or insurance document for the car
// and replaces any previous one.
func (s *service) AttachDocument(ctx context.Context, ownerID, carID uuid.UUID, fileHeader *multipart.FileHeader) (*Car, error) {
	car, err := s.repo.FindByID(ctx, carID)
	if err != nil {
		return nil, err
	}
	if car.OwnerID != ownerID {
		return nil, common.ErrForbidden.WithDetails("This car belongs to another customer.")
	}
	if fileHeader.Size > maxDocumentBytes {
		return nil, common.ErrBadRequest.WithDetails("Document exceeds the 10MB size limit.")
	}

	key, err := s.storage.SaveUploadedFile(ctx, fileHeader, documentSubDir)
	if err != nil {
		s.logger.Error("Car document upload failed", zap.String("car_id", carID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not store the uploaded document.")
	}

	oldKey := car.DocumentKey
	name := fileHeader.Filename
	car.DocumentKey = &key
	car.DocumentName = &name
	if err := s.repo.Update(ctx, car); err != nil {
		// Roll back the orphaned object.
		if derr := s.storage.DeleteFile(ctx, key); derr != nil {
			s.logger.Warn("Failed to clean up orphaned car document", zap.String("key", key), zap.Error(derr))
		}
		return nil, err
	}

	if oldKey != nil && *oldKey != key {
		if derr := s.storage.DeleteFile(ctx, *oldKey); derr != nil {
			s.logger.Warn("Failed to delete replaced car document", zap.String("key", *oldKey), zap.Error(derr))
		}
	}
	return car, nil
}

// ToResponse converts a Car to its API shape, resolving the stored document
// key to a URL.
func (s *service) ToResponse(car *Car) CarResponse {
	resp := CarResponse{
		ID:          car.ID,
		Make:        car.Make,
		Model:       car.Model,
		Year:        car.Year,
		PlateNumber: car.PlateNumber,
		Color:       car.Color,
		CreatedAt:   car.CreatedAt,
	}
	if car.DocumentKey != nil {
		url := s.storage.PublicURL(*car.DocumentKey)
		resp.DocumentURL = &url
	}
	return resp
}
