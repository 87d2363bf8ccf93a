// File: internal/vehicle/handler.go
package vehicle

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"motormate_backend/internal/common"
)

// Handler struct holds dependencies for vehicle handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new vehicle handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for car operations. All routes require
// an authenticated session; role is irrelevant, owners can have cars too.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	carGroup := router.Group("/cars")
	carGroup.Use(authMW)
	{
		carGroup.GET("", h.getMyCars)
		carGroup.POST("", h.addCar)
		carGroup.DELETE("/:id", h.deleteCar)
		carGroup.POST("/:id/document", h.uploadDocument)
	}
}

func (h *Handler) getMyCars(c *gin.Context) {
	ownerID := common.GetUserIDFromContext(c)
	if ownerID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	cars, err := h.service.GetMyCars(c.Request.Context(), ownerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	responses := make([]CarResponse, len(cars))
	for i := range cars {
		responses[i] = h.service.ToResponse(&cars[i])
	}
	common.RespondOK(c, "Cars retrieved successfully.", responses)
}

func (h *Handler) addCar(c *gin.Context) {
	ownerID := common.GetUserIDFromContext(c)
	if ownerID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	var req CreateCarRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	car, err := h.service.AddCar(c.Request.Context(), ownerID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Car added successfully.", h.service.ToResponse(car))
}

func (h *Handler) deleteCar(c *gin.Context) {
	ownerID := common.GetUserIDFromContext(c)
	carID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid car ID format."))
		return
	}
	if err := h.service.DeleteCar(c.Request.Context(), ownerID, carID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Car deleted successfully.", nil)
}

func (h *Handler) uploadDocument(c *gin.Context) {
	ownerID := common.GetUserIDFromContext(c)
	carID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid car ID format."))
		return
	}

	fileHeader, err := c.FormFile("document")
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("A document file is required."))
		return
	}

	car, err := h.service.AttachDocument(c.Request.Context(), ownerID, carID, fileHeader)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Document uploaded successfully.", h.service.ToResponse(car))
}
