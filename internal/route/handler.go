// File: internal/route/handler.go
package route

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"motormate_backend/internal/common"
)

// Handler exposes route decisions over HTTP so clients do not reimplement
// the gating rules.
type Handler struct {
	logger *zap.Logger
}

// NewHandler creates a new route handler.
func NewHandler(logger *zap.Logger) *Handler {
	return &Handler{logger: logger}
}

// RegisterRoutes sets up the route-decision endpoint. The optional auth
// middleware populates identity when a token is present but lets anonymous
// requests through.
func (h *Handler) RegisterRoutes(router *gin.RouterGroup, optionalAuthMW gin.HandlerFunc) {
	routeGroup := router.Group("/route")
	routeGroup.Use(optionalAuthMW)
	{
		routeGroup.GET("/decision", h.decide)
	}
}

func (h *Handler) decide(c *gin.Context) {
	path := c.Query("path")
	if path == "" {
		common.RespondWithError(c, common.ErrBadRequest.WithDetails("The path query parameter is required."))
		return
	}

	role := common.GetUserRoleFromContext(c)
	state := SessionState{
		LoggedIn: common.GetFirebaseUIDFromContext(c) != "",
		Role:     role,
	}

	decision := Decide(state, path)
	h.logger.Debug("Route decision",
		zap.String("path", path),
		zap.Bool("logged_in", state.LoggedIn),
		zap.String("role", state.Role),
		zap.Bool("allow", decision.Allow))

	common.RespondOK(c, "Route decision computed.", gin.H{
		"state":    state,
		"decision": decision,
	})
}
