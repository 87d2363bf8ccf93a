// File: internal/middleware/auth.go
package middleware

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"motormate_backend/internal/common"
	"motormate_backend/internal/firebase"
	"motormate_backend/internal/profile"
)

// Authentication creates a Gin middleware that verifies the Firebase ID token
// and resolves the caller's identity. Resolution never fails outright, so a
// valid token always gets through; a degraded resolution simply carries no
// profile ID and write paths reject it downstream.
func Authentication(fbService *firebase.Service, resolver *profile.Resolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := common.GetTokenFromContext(c)
		if tokenString == "" {
			logger.Debug("Authorization header missing or malformed")
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Authorization header format must be 'Bearer <token>'."))
			return
		}

		token, err := fbService.VerifyIDToken(c.Request.Context(), tokenString)
		if err != nil {
			logger.Warn("Token verification failed", zap.Error(err))
			common.RespondWithError(c, common.ErrUnauthorized.WithDetails("Invalid or expired token."))
			return
		}

		email, _ := token.Claims["email"].(string)
		identity := resolver.Resolve(c.Request.Context(), token.UID, email, token.Claims)

		c.Set(common.UserIDKey, identity.ProfileID)
		c.Set(common.UserEmailKey, identity.Email)
		c.Set(common.UserRoleKey, identity.Role)
		c.Set(common.FirebaseUIDKey, identity.FirebaseUID)
		c.Set(common.ResolvedProfileKey, identity)

		logger.Debug("User authenticated",
			zap.String("firebase_uid", identity.FirebaseUID),
			zap.String("role", identity.Role),
			zap.Bool("from_cache", identity.FromCache),
		)

		c.Next()
	}
}

// OptionalAuthentication resolves the identity when a valid token is present
// and passes anonymous requests through untouched. Routes behind it must treat
// a missing profile ID as "not signed in", never as an error.
func OptionalAuthentication(fbService *firebase.Service, resolver *profile.Resolver, logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := common.GetTokenFromContext(c)
		if tokenString == "" {
			c.Next()
			return
		}

		token, err := fbService.VerifyIDToken(c.Request.Context(), tokenString)
		if err != nil {
			// A bad token on an optional route downgrades to anonymous.
			logger.Debug("Optional auth token invalid; continuing anonymously", zap.Error(err))
			c.Next()
			return
		}

		email, _ := token.Claims["email"].(string)
		identity := resolver.Resolve(c.Request.Context(), token.UID, email, token.Claims)

		c.Set(common.UserIDKey, identity.ProfileID)
		c.Set(common.UserEmailKey, identity.Email)
		c.Set(common.UserRoleKey, identity.Role)
		c.Set(common.FirebaseUIDKey, identity.FirebaseUID)
		c.Set(common.ResolvedProfileKey, identity)

		c.Next()
	}
}

// RequireGarageOwner gates a route to resolved garage owners. Runs after
// Authentication.
func RequireGarageOwner() gin.HandlerFunc {
	return func(c *gin.Context) {
		if common.GetUserRoleFromContext(c) != common.RoleGarageOwner {
			common.RespondWithError(c, common.ErrForbidden.WithDetails("This action requires a garage owner account."))
			return
		}
		c.Next()
	}
}
