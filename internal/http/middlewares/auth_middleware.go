package middlewares

import (
	"net/http"
	"strings"

	"github.com/eduraio/qanda-api/internal/auth"
	"github.com/eduraio/qanda-api/internal/authz"
	"github.com/gin-gonic/gin"
)

// Keep this small interface so tests can fake it easily.
type TokenVerifier interface {
	VerifyAccessToken(token string) (*auth.Claims, error)
}

type AuthMiddleware struct {
	jwt TokenVerifier
}

func NewAuthMiddleware(jwt TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{jwt: jwt}
}

func (m *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing or invalid Authorization header",
				},
			})
			return
		}

		raw := strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer"))
		if raw == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Missing or invalid access token",
				},
			})
			return
		}

		claims, err := m.jwt.VerifyAccessToken(raw)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{
					"code":    "unauthorized",
					"message": "Invalid or expired access token",
				},
			})
			return
		}

		SetPrincipal(c, authz.Principal{
			ID:    claims.UserID,
			Email: claims.Email,
			Role:  claims.Role,
		})

		c.Next()
	}
}

// SetPrincipal stashes the verified identity on the request context.
func SetPrincipal(c *gin.Context, p authz.Principal) {
	c.Set(ctxPrincipalKey, p)
}

// PrincipalFromContext returns the identity stashed by RequireAuth so
// handlers don't need to know the magic key.
func PrincipalFromContext(c *gin.Context) (authz.Principal, bool) {
	v, ok := c.Get(ctxPrincipalKey)
	if !ok {
		return authz.Principal{}, false
	}

	p, ok := v.(authz.Principal)
	return p, ok
}
