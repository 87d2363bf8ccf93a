// File: internal/contact/handler.go
package contact

import (
	"errors"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"motormate_backend/internal/common"
)

// Handler struct holds dependencies for contact handlers.
type Handler struct {
	service *Service
	logger  *zap.Logger
}

// NewHandler creates a new contact handler.
func NewHandler(service *Service, logger *zap.Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// RegisterRoutes sets up the contact form route. Submissions are public;
// the optional auth middleware attaches the sender's profile when present.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, optionalAuthMW gin.HandlerFunc) {
	group := router.Group("/contact")
	group.Use(optionalAuthMW)
	{
		group.POST("", h.submit)
	}
}

func (h *Handler) submit(c *gin.Context) {
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			common.RespondWithError(c, common.NewValidationAPIError(common.FormatValidationErrors(ve)))
			return
		}
		common.RespondWithError(c, common.ErrBadRequest.WithDetails(err.Error()))
		return
	}

	m, err := h.service.Submit(c.Request.Context(), req, common.GetUserIDFromContext(c))
	if err != nil {
		common.RespondWithError(c, err)
		return
	}
	common.RespondCreated(c, "Message received. We will get back to you soon.", MessageResponse{
		ID:        m.ID,
		CreatedAt: m.CreatedAt,
	})
}
