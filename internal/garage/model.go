// File: internal/garage/model.go
package garage

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"motormate_backend/internal/common"
)

// Garage represents a registered garage business.
type Garage struct {
	common.BaseModel
	OwnerID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_garages_owner_id"`
	Name        string         `gorm:"type:varchar(255);not null"`
	Slug        string         `gorm:"type:varchar(255);not null;uniqueIndex:idx_garages_slug,unique"`
	Description *string        `gorm:"type:text"`
	City        string         `gorm:"type:varchar(100);not null;index:idx_garages_city"`
	Address     string         `gorm:"type:varchar(255);not null"`
	Phone       *string        `gorm:"type:varchar(50)"`
	Specialties pq.StringArray `gorm:"type:text[]"`
	Rating      float64        `gorm:"type:numeric(3,2);not null;default:0"`
	RatingCount int            `gorm:"not null;default:0"`
	Latitude    *float64       `gorm:"type:double precision"`
	Longitude   *float64       `gorm:"type:double precision"`
	ImageURL    *string        `gorm:"type:text"`

	Offerings []GarageService `gorm:"foreignKey:GarageID;constraint:OnDelete:CASCADE;"`
}

// TableName specifies the table name for the Garage model.
func (Garage) TableName() string {
	return "garages"
}

// CatalogService is a service type in the shared catalog (oil change, brake
// inspection, ...). Garages attach prices to these via GarageService.
type CatalogService struct {
	common.BaseModel
	Name        string  `gorm:"type:varchar(150);not null;uniqueIndex:idx_services_name,unique"`
	Description *string `gorm:"type:text"`
	Category    *string `gorm:"type:varchar(100)"`
}

// TableName specifies the table name for the CatalogService model.
func (CatalogService) TableName() string {
	return "services"
}

// GarageService links a garage to a catalog service with that garage's
// price. Toggling IsAvailable hides the offering from every public read
// without losing the price.
type GarageService struct {
	common.BaseModel
	GarageID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_garage_services_pair,unique"`
	ServiceID   uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_garage_services_pair,unique"`
	Price       float64        `gorm:"type:numeric(10,2);not null"`
	IsAvailable bool           `gorm:"not null"`
	Service     CatalogService `gorm:"foreignKey:ServiceID;references:ID"`
	// Garage is filled in by the repository for service-first lookups. It is
	// not a GORM association; the garages table carries Postgres column types
	// that the sqlite test databases cannot migrate.
	Garage Garage `gorm:"-"`
}

// TableName specifies the table name for the GarageService model.
func (GarageService) TableName() string {
	return "garage_services"
}

// --- DTOs ---

// OfferedServiceResponse is the flattened view of a garage_services row, the
// shape booking screens consume: one object per service with the garage's
// price alongside the catalog fields.
type OfferedServiceResponse struct {
	ServiceID   uuid.UUID `json:"service_id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
	Price       float64   `json:"price"`
	IsAvailable bool      `json:"is_available"`
}

// ServiceGarageResponse is one hit of the service-first discovery flow: a
// garage offering the requested service, with that garage's price.
type ServiceGarageResponse struct {
	GarageResponse
	Price float64 `json:"price"`
}

// GarageResponse defines the structure for garage data sent in API responses.
type GarageResponse struct {
	ID          uuid.UUID                `json:"id"`
	Name        string                   `json:"name"`
	Slug        string                   `json:"slug"`
	Description *string                  `json:"description,omitempty"`
	City        string                   `json:"city"`
	Address     string                   `json:"address"`
	Phone       *string                  `json:"phone,omitempty"`
	Specialties []string                 `json:"specialties"`
	Rating      float64                  `json:"rating"`
	RatingCount int                      `json:"rating_count"`
	Latitude    *float64                 `json:"latitude,omitempty"`
	Longitude   *float64                 `json:"longitude,omitempty"`
	ImageURL    *string                  `json:"image_url,omitempty"`
	DistanceKM  *float64                 `json:"distance_km,omitempty"`
	Services    []OfferedServiceResponse `json:"services,omitempty"`
	CreatedAt   time.Time                `json:"created_at"`
}

// ServiceResponse defines the structure for catalog service data.
type ServiceResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Category    *string   `json:"category,omitempty"`
}

// SearchQuery carries garage search filters from the request.
type SearchQuery struct {
	City      string   `form:"city"`
	Query     string   `form:"q"`
	MinRating float64  `form:"min_rating"`
	Latitude  *float64 `form:"lat"`
	Longitude *float64 `form:"lon"`
	Page      int      `form:"page"`
	PageSize  int      `form:"page_size"`
}

// CreateGarageRequest registers a new garage for the authenticated owner.
type CreateGarageRequest struct {
	Name        string   `json:"name" binding:"required,max=255"`
	Description *string  `json:"description,omitempty"`
	City        string   `json:"city" binding:"required,max=100"`
	Address     string   `json:"address" binding:"required,max=255"`
	Phone       *string  `json:"phone,omitempty" binding:"omitempty,max=50"`
	Specialties []string `json:"specialties,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty" binding:"omitempty,latitude"`
	Longitude   *float64 `json:"longitude,omitempty" binding:"omitempty,longitude"`
	ImageURL    *string  `json:"image_url,omitempty"`
}

// UpdateGarageRequest carries the owner-editable garage fields. Absent
// fields are left unchanged.
type UpdateGarageRequest struct {
	Name        *string   `json:"name,omitempty" binding:"omitempty,max=255"`
	Description *string   `json:"description,omitempty"`
	City        *string   `json:"city,omitempty" binding:"omitempty,max=100"`
	Address     *string   `json:"address,omitempty" binding:"omitempty,max=255"`
	Phone       *string   `json:"phone,omitempty" binding:"omitempty,max=50"`
	Specialties *[]string `json:"specialties,omitempty"`
	Latitude    *float64  `json:"latitude,omitempty" binding:"omitempty,latitude"`
	Longitude   *float64  `json:"longitude,omitempty" binding:"omitempty,longitude"`
}

// SetServiceRequest attaches a catalog service to a garage with a price, or
// updates the price or availability of one already attached. Availability
// defaults to true when omitted.
type SetServiceRequest struct {
	ServiceID   uuid.UUID `json:"service_id" binding:"required"`
	Price       float64   `json:"price" binding:"required,gt=0"`
	IsAvailable *bool     `json:"is_available,omitempty"`
}

// ToOfferedServiceResponse flattens a GarageService with its preloaded
// catalog service.
func ToOfferedServiceResponse(gs *GarageService) OfferedServiceResponse {
	return OfferedServiceResponse{
		ServiceID:   gs.ServiceID,
		Name:        gs.Service.Name,
		Description: gs.Service.Description,
		Category:    gs.Service.Category,
		Price:       gs.Price,
		IsAvailable: gs.IsAvailable,
	}
}

// ToGarageResponse converts a Garage model to a GarageResponse DTO.
func ToGarageResponse(g *Garage) GarageResponse {
	services := make([]OfferedServiceResponse, len(g.Offerings))
	for i := range g.Offerings {
		services[i] = ToOfferedServiceResponse(&g.Offerings[i])
	}
	specialties := g.Specialties
	if specialties == nil {
		specialties = []string{}
	}
	return GarageResponse{
		ID:          g.ID,
		Name:        g.Name,
		Slug:        g.Slug,
		Description: g.Description,
		City:        g.City,
		Address:     g.Address,
		Phone:       g.Phone,
		Specialties: specialties,
		Rating:      g.Rating,
		RatingCount: g.RatingCount,
		Latitude:    g.Latitude,
		Longitude:   g.Longitude,
		ImageURL:    g.ImageURL,
		Services:    services,
		CreatedAt:   g.CreatedAt,
	}
}

// ToServiceResponse converts a CatalogService model to a DTO.
func ToServiceResponse(s *CatalogService) ServiceResponse {
	return ServiceResponse{
		ID:          s.ID,
		Name:        s.Name,
		Description: s.Description,
		Category:    s.Category,
	}
}
