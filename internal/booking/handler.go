// File: internal/booking/handler.go
package booking

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"motormate_backend/internal/common"
)

// Handler struct holds dependencies for booking handlers.
type Handler struct {
	service Service
	logger  *zap.Logger
}

// NewHandler creates a new booking handler.
func NewHandler(service Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for booking operations. Creating and
// listing own bookings needs a session of any role; the garage-side list
// needs the garage_owner role.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW, ownerMW gin.HandlerFunc) {
	bookingGroup := router.Group("/bookings")
	bookingGroup.Use(authMW)
	{
		bookingGroup.POST("", h.create)
		bookingGroup.GET("", h.listMine)
		bookingGroup.GET("/:id", h.getByID)
		bookingGroup.PATCH("/:id/status", h.updateStatus)
		bookingGroup.POST("/checkout/:checkoutID/cancel", h.cancelCheckout)
	}

	adminGroup := router.Group("/admin/bookings")
	adminGroup.Use(authMW, ownerMW)
	{
		adminGroup.GET("", h.listGarageBookings)
	}
}

func (h *Handler) create(c *gin.Context) {
	customerID := common.GetUserIDFromContext(c)
	if customerID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.logger.Warn("Booking create: invalid request body", zap.Error(err))
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	bookings, err := h.service.Create(c.Request.Context(), customerID, req)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}

	responses := make([]BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = ToBookingResponse(&bookings[i])
	}
	common.RespondCreated(c, "Bookings created successfully.", gin.H{
		"checkout_id": bookings[0].CheckoutID,
		"bookings":    responses,
	})
}

func (h *Handler) listMine(c *gin.Context) {
	customerID := common.GetUserIDFromContext(c)
	if customerID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	normalizeListQuery(&q)

	bookings, total, err := h.service.ListMyBookings(c.Request.Context(), customerID, q)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	h.respondList(c, bookings, total, q)
}

func (h *Handler) listGarageBookings(c *gin.Context) {
	ownerID := common.GetUserIDFromContext(c)
	if ownerID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}

	var q ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}
	normalizeListQuery(&q)

	bookings, total, err := h.service.ListGarageBookings(c.Request.Context(), ownerID, q)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	h.respondList(c, bookings, total, q)
}

func (h *Handler) getByID(c *gin.Context) {
	callerID := common.GetUserIDFromContext(c)
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid booking ID format."))
		return
	}

	b, err := h.service.GetByID(c.Request.Context(), callerID, bookingID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Booking retrieved successfully.", ToBookingResponse(b))
}

func (h *Handler) updateStatus(c *gin.Context) {
	callerID := common.GetUserIDFromContext(c)
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid booking ID format."))
		return
	}

	var req UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	b, err := h.service.UpdateStatus(c.Request.Context(), callerID, bookingID, req.Status)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Booking status updated.", ToBookingResponse(b))
}

func (h *Handler) cancelCheckout(c *gin.Context) {
	customerID := common.GetUserIDFromContext(c)
	checkoutID, err := uuid.Parse(c.Param("checkoutID"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid checkout ID format."))
		return
	}

	bookings, err := h.service.CancelCheckout(c.Request.Context(), customerID, checkoutID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	responses := make([]BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = ToBookingResponse(&bookings[i])
	}
	common.RespondOK(c, "Checkout cancelled.", responses)
}

func (h *Handler) respondList(c *gin.Context, bookings []Booking, total int64, q ListQuery) {
	responses := make([]BookingResponse, len(bookings))
	for i := range bookings {
		responses[i] = ToBookingResponse(&bookings[i])
	}
	common.RespondPaginated(c, "Bookings retrieved successfully.", responses,
		common.NewPagination(total, q.Page, q.PageSize))
}

func normalizeListQuery(q *ListQuery) {
	if q.Page <= 0 {
		q.Page = common.DefaultPage
	}
	if q.PageSize <= 0 {
		q.PageSize = common.DefaultPageSize
	}
	if q.PageSize > common.MaxPageSize {
		q.PageSize = common.MaxPageSize
	}
}
