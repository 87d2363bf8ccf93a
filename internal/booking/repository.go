// File: internal/booking/repository.go
package booking

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"motormate_backend/internal/common"
)

// Repository defines the interface for booking data operations.
type Repository interface {
	// CreateBatch inserts all rows of a checkout in a single transaction.
	// Either every booking row lands or none do.
	CreateBatch(ctx context.Context, bookings []Booking) error
	FindByID(ctx context.Context, id uuid.UUID) (*Booking, error)
	FindByCheckoutID(ctx context.Context, checkoutID uuid.UUID) ([]Booking, error)
	FindByCustomerID(ctx context.Context, customerID uuid.UUID, q ListQuery) ([]Booking, int64, error)
	FindByGarageIDs(ctx context.Context, garageIDs []uuid.UUID, q ListQuery) ([]Booking, int64, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error
	FindScheduledBetween(ctx context.Context, from, to time.Time, statuses []Status) ([]Booking, error)
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM booking repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

func (r *gormRepository) CreateBatch(ctx context.Context, bookings []Booking) error {
	if len(bookings) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for i := range bookings {
			if err := tx.Create(&bookings[i]).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID) (*Booking, error) {
	var b Booking
	err := r.db.WithContext(ctx).
		Preload("Garage").
		Preload("Service").
		First(&b, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Booking not found.")
		}
		return nil, err
	}
	return &b, nil
}

func (r *gormRepository) FindByCheckoutID(ctx context.Context, checkoutID uuid.UUID) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Preload("Garage").
		Preload("Service").
		Where("checkout_id = ?", checkoutID).
		Order("created_at ASC").
		Find(&bookings).Error
	return bookings, err
}

func (r *gormRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID, q ListQuery) ([]Booking, int64, error) {
	query := r.db.WithContext(ctx).Model(&Booking{}).Where("customer_id = ?", customerID)
	return r.list(query, q)
}

func (r *gormRepository) FindByGarageIDs(ctx context.Context, garageIDs []uuid.UUID, q ListQuery) ([]Booking, int64, error) {
	if len(garageIDs) == 0 {
		return []Booking{}, 0, nil
	}
	query := r.db.WithContext(ctx).Model(&Booking{}).Where("garage_id IN ?", garageIDs)
	return r.list(query, q)
}

func (r *gormRepository) list(query *gorm.DB, q ListQuery) ([]Booking, int64, error) {
	if q.Status != "" {
		query = query.Where("status = ?", q.Status)
	}
	if q.Upcoming {
		query = query.Where("scheduled_at >= ?", time.Now().UTC())
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pagination := common.PaginationQuery{Page: q.Page, PageSize: q.PageSize}
	var bookings []Booking
	err := query.
		Preload("Garage").
		Preload("Service").
		Order("scheduled_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&bookings).Error
	if err != nil {
		return nil, 0, err
	}
	return bookings, total, nil
}

func (r *gormRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status Status) error {
	result := r.db.WithContext(ctx).Model(&Booking{}).
		Where("id = ?", id).
		Update("status", status)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("Booking not found.")
	}
	return nil
}

// FindScheduledBetween returns bookings in the window with one of the given
// statuses. The reminder job uses this for next-day lookups.
func (r *gormRepository) FindScheduledBetween(ctx context.Context, from, to time.Time, statuses []Status) ([]Booking, error) {
	var bookings []Booking
	err := r.db.WithContext(ctx).
		Preload("Garage").
		Preload("Service").
		Where("scheduled_at >= ? AND scheduled_at < ?", from, to).
		Where("status IN ?", statuses).
		Order("scheduled_at ASC").
		Find(&bookings).Error
	return bookings, err
}
