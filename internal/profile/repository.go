// File: internal/profile/repository.go
package profile

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"motormate_backend/internal/common"
)

// Repository defines the interface for profile data operations.
type Repository interface {
	Create(ctx context.Context, profile *Profile) error
	FindByID(ctx context.Context, id uuid.UUID) (*Profile, error)
	FindByFirebaseUID(ctx context.Context, uid string) (*Profile, error)
	FindByEmail(ctx context.Context, email string) (*Profile, error)
	Update(ctx context.Context, profile *Profile) error
	SetGarageOwnerFlag(ctx context.Context, id uuid.UUID, isGarageOwner bool) error
	TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
	OwnsAnyGarage(ctx context.Context, profileID uuid.UUID) (bool, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM profile repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) Create(ctx context.Context, profile *Profile) error {
	profile.Email = strings.ToLower(strings.TrimSpace(profile.Email))
	err := r.db.WithContext(ctx).Create(profile).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
			return common.ErrConflict.WithDetails("A profile with this email or Firebase UID already exists.")
		}
		return err
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Profile, error) {
	var p Profile
	err := r.db.WithContext(ctx).First(&p, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Profile not found.")
		}
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) FindByFirebaseUID(ctx context.Context, uid string) (*Profile, error) {
	var p Profile
	err := r.db.WithContext(ctx).First(&p, "firebase_uid = ?", uid).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Profile not found.")
		}
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) FindByEmail(ctx context.Context, email string) (*Profile, error) {
	var p Profile
	normalized := strings.ToLower(strings.TrimSpace(email))
	err := r.db.WithContext(ctx).First(&p, "email = ?", normalized).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Profile not found.")
		}
		return nil, err
	}
	return &p, nil
}

func (r *gormRepository) Update(ctx context.Context, profile *Profile) error {
	return r.db.WithContext(ctx).Save(profile).Error
}

// SetGarageOwnerFlag flips only the is_garage_owner column. The resolver uses
// this for its corrective write so it never clobbers concurrent profile edits.
func (r *gormRepository) SetGarageOwnerFlag(ctx context.Context, id uuid.UUID, isGarageOwner bool) error {
	result := r.db.WithContext(ctx).Model(&Profile{}).
		Where("id = ?", id).
		Update("is_garage_owner", isGarageOwner)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Profile not found.")
	}
	return nil
}

func (r *gormRepository) TouchLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error {
	return r.db.WithContext(ctx).Model(&Profile{}).
		Where("id = ?", id).
		Update("last_login_at", at).Error
}

// OwnsAnyGarage reports whether at least one garage row names this profile as
// owner. Existence only; the resolver does not need the garage itself.
func (r *gormRepository) OwnsAnyGarage(ctx context.Context, profileID uuid.UUID) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Table("garages").
		Where("owner_id = ?", profileID).
		Limit(1).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
