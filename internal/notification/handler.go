// File: internal/notification/handler.go
package notification

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"motormate_backend/internal/common"
)

// Handler struct holds dependencies for notification handlers.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new notification handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the routes for notification operations.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, authMW gin.HandlerFunc) {
	group := router.Group("/notifications")
	group.Use(authMW)
	{
		group.GET("", h.list)
		group.POST("/:id/read", h.markRead)
		group.POST("/read-all", h.markAllRead)
	}
}

func (h *Handler) list(c *gin.Context) {
	profileID := common.GetUserIDFromContext(c)
	if profileID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	page, pageSize := common.GetPaginationParams(c)

	notifications, pagination, err := h.service.List(c.Request.Context(), profileID, page, pageSize)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondPaginated(c, "Notifications retrieved successfully.", notifications, pagination)
}

func (h *Handler) markRead(c *gin.Context) {
	profileID := common.GetUserIDFromContext(c)
	notificationID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("Invalid notification ID format."))
		return
	}
	if err := h.service.MarkRead(c.Request.Context(), notificationID, profileID); err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "Notification marked as read.", nil)
}

func (h *Handler) markAllRead(c *gin.Context) {
	profileID := common.GetUserIDFromContext(c)
	if profileID == uuid.Nil {
		common.RespondWithError(c, common.ErrUnauthorized)
		return
	}
	count, err := h.service.MarkAllRead(c.Request.Context(), profileID)
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondOK(c, "All notifications marked as read.", gin.H{"marked_read": count})
}
