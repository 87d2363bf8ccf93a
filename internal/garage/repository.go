// File: internal/garage/repository.go
package garage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"motormate_backend/internal/common"
)

// Repository defines the interface for garage and catalog data operations.
type Repository interface {
	// Garage methods
	Create(ctx context.Context, garage *Garage) error
	FindByID(ctx context.Context, id uuid.UUID, preloadOfferings bool) (*Garage, error)
	FindBySlug(ctx context.Context, slugStr string, preloadOfferings bool) (*Garage, error)
	FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]Garage, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Garage, error)
	Search(ctx context.Context, query SearchQuery) ([]Garage, int64, error)
	Update(ctx context.Context, garage *Garage) error
	// FindAllForSync pages through every garage for search index rebuilds.
	FindAllForSync(ctx context.Context, offset, limit int) ([]Garage, error)

	// Catalog methods
	ListCatalog(ctx context.Context) ([]CatalogService, error)
	FindCatalogServiceByID(ctx context.Context, id uuid.UUID) (*CatalogService, error)

	// Offering methods
	ListOfferings(ctx context.Context, garageID uuid.UUID) ([]GarageService, error)
	FindOfferings(ctx context.Context, garageID uuid.UUID, serviceIDs []uuid.UUID) ([]GarageService, error)
	FindOfferingsByService(ctx context.Context, serviceID uuid.UUID) ([]GarageService, error)
	UpsertOffering(ctx context.Context, offering *GarageService) error
	RemoveOffering(ctx context.Context, garageID, serviceID uuid.UUID) error
}

type gormRepository struct {
	db *gorm.DB
}

// NewGORMRepository creates a new GORM garage repository.
func NewGORMRepository(db *gorm.DB) Repository {
	return &gormRepository{db: db}
}

// --- Garage Methods ---

func (r *gormRepository) Create(ctx context.Context, garage *Garage) error {
	if garage.Slug == "" {
		garage.Slug = slug.Make(garage.Name)
	}

	err := r.db.WithContext(ctx).Create(garage).Error
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || strings.Contains(err.Error(), "unique constraint") {
			// Disambiguate the slug and retry once.
			garage.Slug = fmt.Sprintf("%s-%s", garage.Slug, uuid.NewString()[:8])
			if retryErr := r.db.WithContext(ctx).Create(garage).Error; retryErr == nil {
				return nil
			}
			return common.ErrConflict.WithDetails("A garage with this name already exists.")
		}
		return err
	}
	return nil
}

func (r *gormRepository) FindByID(ctx context.Context, id uuid.UUID, preloadOfferings bool) (*Garage, error) {
	var g Garage
	query := r.db.WithContext(ctx)
	if preloadOfferings {
		query = query.Preload("Offerings", "is_available = ?", true).Preload("Offerings.Service")
	}
	err := query.First(&g, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Garage not found.")
		}
		return nil, err
	}
	return &g, nil
}

func (r *gormRepository) FindBySlug(ctx context.Context, slugStr string, preloadOfferings bool) (*Garage, error) {
	var g Garage
	normalized := strings.ToLower(strings.TrimSpace(slugStr))
	query := r.db.WithContext(ctx)
	if preloadOfferings {
		query = query.Preload("Offerings", "is_available = ?", true).Preload("Offerings.Service")
	}
	err := query.First(&g, "slug = ?", normalized).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Garage not found.")
		}
		return nil, err
	}
	return &g, nil
}

func (r *gormRepository) FindByOwnerID(ctx context.Context, ownerID uuid.UUID) ([]Garage, error) {
	var garages []Garage
	err := r.db.WithContext(ctx).
		Preload("Offerings.Service").
		Where("owner_id = ?", ownerID).
		Order("created_at ASC").
		Find(&garages).Error
	return garages, err
}

func (r *gormRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]Garage, error) {
	var garages []Garage
	err := r.db.WithContext(ctx).
		Preload("Offerings", "is_available = ?", true).
		Preload("Offerings.Service").
		Where("id IN ?", ids).
		Find(&garages).Error
	return garages, err
}

// Search applies the SQL-side filters. Distance computation and ordering
// happen in the service layer; the repository orders by rating as the stable
// base ordering.
func (r *gormRepository) Search(ctx context.Context, q SearchQuery) ([]Garage, int64, error) {
	var garages []Garage
	var total int64

	query := r.db.WithContext(ctx).Model(&Garage{})

	if city := strings.TrimSpace(q.City); city != "" {
		query = query.Where("city ILIKE ?", "%"+city+"%")
	}
	if text := strings.TrimSpace(q.Query); text != "" {
		like := "%" + text + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?", like, like)
	}
	if q.MinRating > 0 {
		query = query.Where("rating >= ?", q.MinRating)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	pagination := common.PaginationQuery{Page: q.Page, PageSize: q.PageSize}
	err := query.
		Preload("Offerings", "is_available = ?", true).
		Preload("Offerings.Service").
		Order("rating DESC, created_at ASC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&garages).Error
	if err != nil {
		return nil, 0, err
	}
	return garages, total, nil
}

func (r *gormRepository) Update(ctx context.Context, garage *Garage) error {
	return r.db.WithContext(ctx).Save(garage).Error
}

func (r *gormRepository) FindAllForSync(ctx context.Context, offset, limit int) ([]Garage, error) {
	var garages []Garage
	err := r.db.WithContext(ctx).
		Order("created_at ASC").
		Offset(offset).
		Limit(limit).
		Find(&garages).Error
	return garages, err
}

// --- Catalog Methods ---

func (r *gormRepository) ListCatalog(ctx context.Context) ([]CatalogService, error) {
	var services []CatalogService
	err := r.db.WithContext(ctx).Order("name ASC").Find(&services).Error
	return services, err
}

func (r *gormRepository) FindCatalogServiceByID(ctx context.Context, id uuid.UUID) (*CatalogService, error) {
	var s CatalogService
	err := r.db.WithContext(ctx).First(&s, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, common.ErrNotFound.WithDetails("Service not found.")
		}
		return nil, err
	}
	return &s, nil
}

// --- Offering Methods ---

func (r *gormRepository) ListOfferings(ctx context.Context, garageID uuid.UUID) ([]GarageService, error) {
	var offerings []GarageService
	err := r.db.WithContext(ctx).
		Preload("Service").
		Where("garage_id = ? AND is_available = ?", garageID, true).
		Find(&offerings).Error
	return offerings, err
}

// FindOfferings returns the available garage_services rows for the requested
// service IDs. Booking uses this both to validate that every requested
// service is bookable and to snapshot prices; a shorter result than
// serviceIDs means at least one service is not offered (or currently
// unavailable) at this garage.
func (r *gormRepository) FindOfferings(ctx context.Context, garageID uuid.UUID, serviceIDs []uuid.UUID) ([]GarageService, error) {
	var offerings []GarageService
	err := r.db.WithContext(ctx).
		Preload("Service").
		Where("garage_id = ? AND service_id IN ? AND is_available = ?", garageID, serviceIDs, true).
		Find(&offerings).Error
	return offerings, err
}

// FindOfferingsByService answers the service-first discovery flow: every
// garage currently offering the given catalog service, cheapest first, with
// the garage rows attached.
func (r *gormRepository) FindOfferingsByService(ctx context.Context, serviceID uuid.UUID) ([]GarageService, error) {
	var offerings []GarageService
	err := r.db.WithContext(ctx).
		Where("service_id = ? AND is_available = ?", serviceID, true).
		Order("price ASC").
		Find(&offerings).Error
	if err != nil || len(offerings) == 0 {
		return offerings, err
	}

	ids := make([]uuid.UUID, 0, len(offerings))
	for i := range offerings {
		ids = append(ids, offerings[i].GarageID)
	}
	var garages []Garage
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&garages).Error; err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]Garage, len(garages))
	for i := range garages {
		byID[garages[i].ID] = garages[i]
	}
	for i := range offerings {
		offerings[i].Garage = byID[offerings[i].GarageID]
	}
	return offerings, nil
}

func (r *gormRepository) UpsertOffering(ctx context.Context, offering *GarageService) error {
	var existing GarageService
	err := r.db.WithContext(ctx).
		Where("garage_id = ? AND service_id = ?", offering.GarageID, offering.ServiceID).
		First(&existing).Error
	if err == nil {
		existing.Price = offering.Price
		existing.IsAvailable = offering.IsAvailable
		*offering = existing
		return r.db.WithContext(ctx).Save(&existing).Error
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return r.db.WithContext(ctx).Create(offering).Error
}

func (r *gormRepository) RemoveOffering(ctx context.Context, garageID, serviceID uuid.UUID) error {
	result := r.db.WithContext(ctx).
		Where("garage_id = ? AND service_id = ?", garageID, serviceID).
		Delete(&GarageService{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return common.ErrNotFound.WithDetails("This garage does not offer that service.")
	}
	return nil
}
