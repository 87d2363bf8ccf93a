// File: internal/garage/service.go
package garage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"sort"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"motormate_backend/internal/common"
	"motormate_backend/internal/filestorage"
	platformES "motormate_backend/internal/platform/elasticsearch"
	"motormate_backend/internal/platform/geo"
)

const imageSubDir = "garage-images"

// maxImageBytes caps garage image uploads at 5 MiB.
const maxImageBytes = 5 << 20

// Service defines the interface for garage business logic.
type Service interface {
	CreateGarage(ctx context.Context, ownerID uuid.UUID, req CreateGarageRequest) (*Garage, error)
	UpdateGarage(ctx context.Context, ownerID, garageID uuid.UUID, req UpdateGarageRequest) (*Garage, error)
	AttachImage(ctx context.Context, ownerID, garageID uuid.UUID, fileHeader *multipart.FileHeader) (*Garage, error)
	GetGarage(ctx context.Context, idOrSlug string) (*Garage, error)
	GetOwnerGarages(ctx context.Context, ownerID uuid.UUID) ([]Garage, error)
	Search(ctx context.Context, query SearchQuery) ([]GarageResponse, int64, error)

	ListCatalog(ctx context.Context) ([]CatalogService, error)
	ListOfferings(ctx context.Context, garageID uuid.UUID) ([]GarageService, error)
	ListGaragesForService(ctx context.Context, serviceID uuid.UUID) ([]ServiceGarageResponse, error)
	SetOffering(ctx context.Context, ownerID, garageID uuid.UUID, req SetServiceRequest) (*GarageService, error)
	RemoveOffering(ctx context.Context, ownerID, garageID, serviceID uuid.UUID) error
}

type service struct {
	repo     Repository
	esClient *platformES.ESClientWrapper
	storage  filestorage.Service
	logger   *zap.Logger
}

// NewService creates a new garage service.
func NewService(repo Repository, esClient *platformES.ESClientWrapper, storage filestorage.Service, logger *zap.Logger) Service {
	return &service{
		repo:     repo,
		esClient: esClient,
		storage:  storage,
		logger:   logger.Named("garage_service"),
	}
}

func (s *service) CreateGarage(ctx context.Context, ownerID uuid.UUID, req CreateGarageRequest) (*Garage, error) {
	if (req.Latitude == nil) != (req.Longitude == nil) {
		return nil, common.ErrBadRequest.WithDetails("Latitude and longitude must be provided together.")
	}

	// One garage per owner. A second registration is a conflict, not a
	// second row.
	existing, err := s.repo.FindByOwnerID(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if len(existing) > 0 {
		return nil, common.ErrConflict.WithDetails("You already have a registered garage.")
	}

	g := &Garage{
		OwnerID:     ownerID,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
		City:        strings.TrimSpace(req.City),
		Address:     strings.TrimSpace(req.Address),
		Phone:       req.Phone,
		Specialties: req.Specialties,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		ImageURL:    req.ImageURL,
	}

	if err := s.repo.Create(ctx, g); err != nil {
		return nil, err
	}

	s.indexGarage(g)
	return g, nil
}

func (s *service) UpdateGarage(ctx context.Context, ownerID, garageID uuid.UUID, req UpdateGarageRequest) (*Garage, error) {
	g, err := s.repo.FindByID(ctx, garageID, true)
	if err != nil {
		return nil, err
	}
	if g.OwnerID != ownerID {
		return nil, common.ErrForbidden.WithDetails("You do not manage this garage.")
	}

	lat, lon := g.Latitude, g.Longitude
	if req.Latitude != nil {
		lat = req.Latitude
	}
	if req.Longitude != nil {
		lon = req.Longitude
	}
	if (lat == nil) != (lon == nil) {
		return nil, common.ErrBadRequest.WithDetails("Latitude and longitude must be provided together.")
	}

	if req.Name != nil {
		g.Name = strings.TrimSpace(*req.Name)
	}
	if req.Description != nil {
		g.Description = req.Description
	}
	if req.City != nil {
		g.City = strings.TrimSpace(*req.City)
	}
	if req.Address != nil {
		g.Address = strings.TrimSpace(*req.Address)
	}
	if req.Phone != nil {
		g.Phone = req.Phone
	}
	if req.Specialties != nil {
		g.Specialties = *req.Specialties
	}
	g.Latitude, g.Longitude = lat, lon

	if err := s.repo.Update(ctx, g); err != nil {
		return nil, err
	}

	s.indexGarage(g)
	return g, nil
}

// AttachImage uploads a garage photo and points the garage at it. The slug
// and id never change, so search results stay valid while the image swaps.
func (s *service) AttachImage(ctx context.Context, ownerID, garageID uuid.UUID, fileHeader *multipart.FileHeader) (*Garage, error) {
	g, err := s.repo.FindByID(ctx, garageID, true)
	if err != nil {
		return nil, err
	}
	if g.OwnerID != ownerID {
		return nil, common.ErrForbidden.WithDetails("You do not manage this garage.")
	}
	if fileHeader.Size > maxImageBytes {
		return nil, common.ErrBadRequest.WithDetails("Image exceeds the 5MB size limit.")
	}

	key, err := s.storage.SaveUploadedFile(ctx, fileHeader, imageSubDir)
	if err != nil {
		s.logger.Error("Garage image upload failed", zap.String("garage_id", garageID.String()), zap.Error(err))
		return nil, common.ErrInternalServer.WithDetails("Could not store the uploaded image.")
	}

	url := s.storage.PublicURL(key)
	g.ImageURL = &url
	if err := s.repo.Update(ctx, g); err != nil {
		// Roll back the orphaned object.
		if derr := s.storage.DeleteFile(ctx, key); derr != nil {
			s.logger.Warn("Failed to clean up orphaned garage image", zap.String("key", key), zap.Error(derr))
		}
		return nil, err
	}

	s.indexGarage(g)
	return g, nil
}

func (s *service) GetGarage(ctx context.Context, idOrSlug string) (*Garage, error) {
	if id, err := uuid.Parse(idOrSlug); err == nil {
		return s.repo.FindByID(ctx, id, true)
	}
	return s.repo.FindBySlug(ctx, idOrSlug, true)
}

func (s *service) GetOwnerGarages(ctx context.Context, ownerID uuid.UUID) ([]Garage, error) {
	return s.repo.FindByOwnerID(ctx, ownerID)
}

// Search filters garages and, when the caller supplied a position, annotates
// each result with its distance and re-orders by it. Garages without
// coordinates keep their base order but always sort after garages with a
// known distance. Text queries go to Elasticsearch when the index is
// configured; SQL answers everything else and any index failure.
func (s *service) Search(ctx context.Context, query SearchQuery) ([]GarageResponse, int64, error) {
	garages, total, err := s.searchRows(ctx, query)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]GarageResponse, len(garages))
	for i := range garages {
		responses[i] = ToGarageResponse(&garages[i])
	}

	if query.Latitude != nil && query.Longitude != nil {
		for i := range responses {
			if responses[i].Latitude != nil && responses[i].Longitude != nil {
				d := geo.DistanceKM(*query.Latitude, *query.Longitude, *responses[i].Latitude, *responses[i].Longitude)
				responses[i].DistanceKM = &d
			}
		}
		sort.SliceStable(responses, func(i, j int) bool {
			di, dj := responses[i].DistanceKM, responses[j].DistanceKM
			if di == nil && dj == nil {
				return false
			}
			if di == nil {
				return false
			}
			if dj == nil {
				return true
			}
			return *di < *dj
		})
	}

	return responses, total, nil
}

func (s *service) searchRows(ctx context.Context, query SearchQuery) ([]Garage, int64, error) {
	if s.esClient.Enabled() && strings.TrimSpace(query.Query) != "" {
		garages, total, err := s.searchES(ctx, query)
		if err == nil {
			return garages, total, nil
		}
		s.logger.Warn("Elasticsearch search failed; serving from SQL", zap.Error(err))
	}
	return s.repo.Search(ctx, query)
}

// searchES runs the text query against the garages index and loads the
// matching rows from the database in relevance order.
func (s *service) searchES(ctx context.Context, q SearchQuery) ([]Garage, int64, error) {
	must := []map[string]interface{}{
		{"multi_match": map[string]interface{}{
			"query":     strings.TrimSpace(q.Query),
			"fields":    []string{"name^2", "description", "address", "specialties"},
			"fuzziness": "AUTO",
		}},
	}
	filter := []map[string]interface{}{}
	if city := strings.TrimSpace(q.City); city != "" {
		filter = append(filter, map[string]interface{}{"term": map[string]interface{}{"city": city}})
	}
	if q.MinRating > 0 {
		filter = append(filter, map[string]interface{}{"range": map[string]interface{}{"rating": map[string]interface{}{"gte": q.MinRating}}})
	}

	pagination := common.PaginationQuery{Page: q.Page, PageSize: q.PageSize}
	body := map[string]interface{}{
		"query":   map[string]interface{}{"bool": map[string]interface{}{"must": must, "filter": filter}},
		"from":    pagination.Offset(),
		"size":    pagination.Limit(),
		"_source": false,
	}
	bodyBytes, err := json.Marshal(body)
	if err != nil {
		return nil, 0, fmt.Errorf("error marshalling garage search query: %w", err)
	}

	req := esapi.SearchRequest{
		Index:          []string{platformES.GaragesIndexName},
		Body:           bytes.NewReader(bodyBytes),
		TrackTotalHits: true,
	}
	res, err := req.Do(ctx, s.esClient.Client)
	if err != nil {
		return nil, 0, err
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, 0, fmt.Errorf("garage search returned status %s", res.Status())
	}

	var parsed struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, 0, fmt.Errorf("error parsing garage search response: %w", err)
	}

	ids := make([]uuid.UUID, 0, len(parsed.Hits.Hits))
	for _, hit := range parsed.Hits.Hits {
		if id, perr := uuid.Parse(hit.ID); perr == nil {
			ids = append(ids, id)
		}
	}
	if len(ids) == 0 {
		return []Garage{}, parsed.Hits.Total.Value, nil
	}

	garages, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, 0, err
	}
	byID := make(map[uuid.UUID]*Garage, len(garages))
	for i := range garages {
		byID[garages[i].ID] = &garages[i]
	}
	ordered := make([]Garage, 0, len(ids))
	for _, id := range ids {
		if g, ok := byID[id]; ok {
			ordered = append(ordered, *g)
		}
	}
	return ordered, parsed.Hits.Total.Value, nil
}

func (s *service) ListCatalog(ctx context.Context) ([]CatalogService, error) {
	return s.repo.ListCatalog(ctx)
}

func (s *service) ListOfferings(ctx context.Context, garageID uuid.UUID) ([]GarageService, error) {
	if _, err := s.repo.FindByID(ctx, garageID, false); err != nil {
		return nil, err
	}
	return s.repo.ListOfferings(ctx, garageID)
}

func (s *service) SetOffering(ctx context.Context, ownerID, garageID uuid.UUID, req SetServiceRequest) (*GarageService, error) {
	g, err := s.repo.FindByID(ctx, garageID, false)
	if err != nil {
		return nil, err
	}
	if g.OwnerID != ownerID {
		return nil, common.ErrForbidden.WithDetails("You do not manage this garage.")
	}

	catalogService, err := s.repo.FindCatalogServiceByID(ctx, req.ServiceID)
	if err != nil {
		return nil, err
	}

	available := true
	if req.IsAvailable != nil {
		available = *req.IsAvailable
	}

	offering := &GarageService{
		GarageID:    garageID,
		ServiceID:   req.ServiceID,
		Price:       req.Price,
		IsAvailable: available,
	}
	if err := s.repo.UpsertOffering(ctx, offering); err != nil {
		return nil, err
	}

	offering.Service = *catalogService
	return offering, nil
}

// ListGaragesForService lists the garages currently offering a catalog
// service, each with its own price. This backs the service-first discovery
// flow where the user picks the work first and the shop second.
func (s *service) ListGaragesForService(ctx context.Context, serviceID uuid.UUID) ([]ServiceGarageResponse, error) {
	if _, err := s.repo.FindCatalogServiceByID(ctx, serviceID); err != nil {
		return nil, err
	}

	offerings, err := s.repo.FindOfferingsByService(ctx, serviceID)
	if err != nil {
		return nil, err
	}

	responses := make([]ServiceGarageResponse, len(offerings))
	for i := range offerings {
		responses[i] = ServiceGarageResponse{
			GarageResponse: ToGarageResponse(&offerings[i].Garage),
			Price:          offerings[i].Price,
		}
	}
	return responses, nil
}

func (s *service) RemoveOffering(ctx context.Context, ownerID, garageID, serviceID uuid.UUID) error {
	g, err := s.repo.FindByID(ctx, garageID, false)
	if err != nil {
		return err
	}
	if g.OwnerID != ownerID {
		return common.ErrForbidden.WithDetails("You do not manage this garage.")
	}
	return s.repo.RemoveOffering(ctx, garageID, serviceID)
}

// indexGarage writes the garage document to Elasticsearch. Best effort; the
// database row is the source of truth and the startup reindex converges the
// index.
func (s *service) indexGarage(g *Garage) {
	if !s.esClient.Enabled() {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		docJSON, err := ToElasticsearchDoc(g)
		if err != nil {
			s.logger.Warn("Failed to build garage ES document", zap.String("garage_id", g.ID.String()), zap.Error(err))
			return
		}

		req := esapi.IndexRequest{
			Index:      platformES.GaragesIndexName,
			DocumentID: g.ID.String(),
			Body:       strings.NewReader(docJSON),
			Refresh:    "false",
		}
		res, err := req.Do(ctx, s.esClient.Client)
		if err != nil {
			s.logger.Warn("Failed to index garage in Elasticsearch", zap.String("garage_id", g.ID.String()), zap.Error(err))
			return
		}
		defer res.Body.Close()
		if res.IsError() {
			s.logger.Warn("Elasticsearch rejected garage document",
				zap.String("garage_id", g.ID.String()), zap.String("status", res.Status()))
		}
	}()
}
