// File: internal/calendar/handler.go
package calendar

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"motormate_backend/internal/common"
)

// Handler struct holds dependencies for calendar handlers.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new calendar handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up calendar routes. The link generator requires auth;
// the .ics download is public because calendar apps fetch it with nothing but
// the signed token in the URL.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	router.GET("/bookings/:id/calendar", authMW, h.links)
	router.GET("/calendar/bookings.ics", h.download)
}

func (h *Handler) links(c *gin.Context) {
	customerID := common.GetUserIDFromContext(c)
	if customerID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	bookingID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid booking ID format."))
		return
	}

	links, err := h.service.Links(c.Request.Context(), bookingID, customerID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Calendar links generated successfully.", links)
}

func (h *Handler) download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Missing token query parameter."))
		return
	}

	ics, err := h.service.ICSForToken(c.Request.Context(), token)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="booking.ics"`)
	c.Data(http.StatusOK, "text/calendar; charset=utf-8", []byte(ics))
}
