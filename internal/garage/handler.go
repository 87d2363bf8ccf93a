// File: internal/garage/handler.go
package garage

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"motormate_backend/internal/common"
)

// Handler struct holds dependencies for garage handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new garage handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for garage and catalog operations.
// Reads are public; writes require an authenticated garage owner.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, ownerMW gin.HandlerFunc) {
	router.GET("/services", h.listCatalog)
	router.GET("/services/:id/garages", h.garagesForService)

	garageGroup := router.Group("/garages")
	{
		garageGroup.GET("", h.search)
		garageGroup.GET("/:idOrSlug", h.getGarage)
		garageGroup.GET("/:idOrSlug/services", h.listOfferings)

		ownerGroup := garageGroup.Group("")
		ownerGroup.Use(authMW, ownerMW)
		{
			ownerGroup.POST("", h.createGarage)
			ownerGroup.PUT("/:idOrSlug", h.updateGarage)
			ownerGroup.POST("/:idOrSlug/image", h.uploadImage)
			ownerGroup.PUT("/:idOrSlug/services", h.setOffering)
			ownerGroup.DELETE("/:idOrSlug/services/:serviceID", h.removeOffering)
		}
	}

	mineGroup := router.Group("/my-garages")
	mineGroup.Use(authMW, ownerMW)
	{
		mineGroup.GET("", h.getMyGarages)
	}
}

func (h *Handler) search(c *gin.Context) {
	var query SearchQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	if (query.Latitude == nil) != (query.Longitude == nil) {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("lat and lon must be provided together."))
		return
	}
	if query.Page <= 0 {
		query.Page = common.DefaultPage
	}
	if query.PageSize <= 0 {
		query.PageSize = common.DefaultPageSize
	}

	results, total, err := h.service.Search(c.Request.Context(), query)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Garages retrieved successfully.", results,
		common.NewPagination(total, query.Page, query.PageSize))
}

func (h *Handler) getGarage(c *gin.Context) {
	g, err := h.service.GetGarage(c.Request.Context(), c.Param("idOrSlug"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Garage retrieved successfully.", ToGarageResponse(g))
}

func (h *Handler) listOfferings(c *gin.Context) {
	g, err := h.service.GetGarage(c.Request.Context(), c.Param("idOrSlug"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	offerings, err := h.service.ListOfferings(c.Request.Context(), g.ID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	responses := make([]OfferedServiceResponse, len(offerings))
	for i := range offerings {
		responses[i] = ToOfferedServiceResponse(&offerings[i])
	}
	common.RespondOK(c, "Garage services retrieved successfully.", responses)
}

func (h *Handler) listCatalog(c *gin.Context) {
	services, err := h.service.ListCatalog(c.Request.Context())
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	responses := make([]ServiceResponse, len(services))
	for i := range services {
		responses[i] = ToServiceResponse(&services[i])
	}
	common.RespondOK(c, "Service catalog retrieved successfully.", responses)
}

func (h *Handler) garagesForService(c *gin.Context) {
	serviceID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid service ID format."))
		return
	}

	results, err := h.service.ListGaragesForService(c.Request.Context(), serviceID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Garages offering this service retrieved successfully.", results)
}

func (h *Handler) createGarage(c *gin.Context) {
	ownerID := common.GetUserIDFromContext(c)
	if ownerID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	var req CreateGarageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	g, err := h.service.CreateGarage(c.Request.Context(), ownerID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Garage created successfully.", ToGarageResponse(g))
}

func (h *Handler) updateGarage(c *gin.Context) {
	ownerID := common.GetUserIDFromContext(c)
	g, err := h.service.GetGarage(c.Request.Context(), c.Param("idOrSlug"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	var req UpdateGarageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	updated, err := h.service.UpdateGarage(c.Request.Context(), ownerID, g.ID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Garage updated successfully.", ToGarageResponse(updated))
}

func (h *Handler) uploadImage(c *gin.Context) {
	ownerID := common.GetUserIDFromContext(c)
	g, err := h.service.GetGarage(c.Request.Context(), c.Param("idOrSlug"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("An image file is required in the 'image' form field."))
		return
	}

	updated, err := h.service.AttachImage(c.Request.Context(), ownerID, g.ID, fileHeader)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Garage image updated.", ToGarageResponse(updated))
}

func (h *Handler) getMyGarages(c *gin.Context) {
	ownerID := common.GetUserIDFromContext(c)
	if ownerID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	garages, err := h.service.GetOwnerGarages(c.Request.Context(), ownerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	responses := make([]GarageResponse, len(garages))
	for i := range garages {
		responses[i] = ToGarageResponse(&garages[i])
	}
	common.RespondOK(c, "Your garages retrieved successfully.", responses)
}

func (h *Handler) setOffering(c *gin.Context) {
	ownerID := common.GetUserIDFromContext(c)
	g, err := h.service.GetGarage(c.Request.Context(), c.Param("idOrSlug"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	var req SetServiceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	offering, err := h.service.SetOffering(c.Request.Context(), ownerID, g.ID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Garage service saved.", ToOfferedServiceResponse(offering))
}

func (h *Handler) removeOffering(c *gin.Context) {
	ownerID := common.GetUserIDFromContext(c)
	g, err := h.service.GetGarage(c.Request.Context(), c.Param("idOrSlug"))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	serviceID, err := uuid.Parse(c.Param("serviceID"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid service ID format."))
		return
	}

	if err := h.service.RemoveOffering(c.Request.Context(), ownerID, g.ID, serviceID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Garage service removed.", nil)
}
