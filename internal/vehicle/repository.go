// File: internal/vehicle/repository.go
package vehicle

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"motormate_backend/internal/common"
)

// Repository defines the interface for car data operations.
type Repository interface {
	Create(ctx context.Context, car *Car) error
	FindByID(ctx context.Context, id uuid.UUID) (*Car, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]Car, error)
	Update(ctx context.Context, car *Car) error
	Delete(ctx context.Context, id uuid.UUID) error
	BelongsTo(ctx context.Context, carID, ownerID uuid.UUID) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM car repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, car *Car) error {
	return r.db.WithContext(ctx).Create(car).Error
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Car, error) {
	var car Car
	err := r.db.WithContext(ctx).First(&car, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Car not found.")
		}
		return nil, err
	}
	return &car, nil
}

func (r *gormRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]Car, error) {
	var cars []Car
	err := r.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Order("created_at DESC").
		Find(&cars).Error
	return cars, err
}

func (r *gormRepository) Update(ctx context.Context, car *Car) error {
	return r.db.WithContext(ctx).Save(car).Error
}

func (r *gormRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&Car{BaseModel: common.BaseModel{ID: id}})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Car not found or already deleted.")
	}
	return nil
}

// BelongsTo reports whether the car exists and is owned by ownerID. Booking
// uses this as a precondition check.
func (r *gormRepository) BelongsTo(ctx context.Context, carID, ownerID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&Car{}).
		Where("id = ? AND owner_id = ?", carID, ownerID).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
