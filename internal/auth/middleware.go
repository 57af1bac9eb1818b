package auth

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"rwa-directory/project-portal/project-portal-backend/internal/apperror"
)

const (
	identityKey = "auth.identity"
	tokenCookie = "access_token"
)

// TokenFromRequest reads the bearer token from the Authorization header,
// falling back to the session cookie.
func TokenFromRequest(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		scheme, token, found := strings.Cut(header, " ")
		if found && strings.EqualFold(scheme, "Bearer") {
			return strings.TrimSpace(token)
		}
		return ""
	}
	if cookie, err := c.Cookie(tokenCookie); err == nil {
		return cookie
	}
	return ""
}

// RequireAdmin aborts the request unless the caller is an administrator.
func (g *Gateway) RequireAdmin(logger *zap.Logger) gin.HandlerFunc {
	return g.require(logger, g.Authorize)
}

// RequireUser aborts the request unless the caller is signed in.
func (g *Gateway) RequireUser(logger *zap.Logger) gin.HandlerFunc {
	return g.require(logger, g.Authenticate)
}

func (g *Gateway) require(logger *zap.Logger, check func(context.Context, string) (*Identity, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := check(c.Request.Context(), TokenFromRequest(c))
		if err != nil {
			apperror.Respond(c, logger, err)
			return
		}
		SetIdentity(c, identity)
		c.Next()
	}
}

// SetIdentity attaches an authenticated identity to the request.
func SetIdentity(c *gin.Context, identity *Identity) {
	c.Set(identityKey, identity)
}

// IdentityFrom returns the identity stored by RequireAdmin or RequireUser.
func IdentityFrom(c *gin.Context) (*Identity, bool) {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil, false
	}
	identity, ok := v.(*Identity)
	return identity, ok && identity != nil
}
