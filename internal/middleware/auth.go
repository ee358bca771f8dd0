package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/harentsoaR/clinic-api/internal/models"
	"github.com/harentsoaR/clinic-api/internal/utils"
)

const principalKey = "principal"

// TokenValidator is satisfied by *utils.TokenIssuer.
type TokenValidator interface {
	ValidateJWT(token string) (*utils.Claims, error)
}

// AuthMiddleware resolves the bearer token into a principal. Websocket
// clients that cannot set headers may pass the token as ?token=.
func AuthMiddleware(tokens TokenValidator) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := strings.TrimSpace(strings.TrimPrefix(c.GetHeader("Authorization"), "Bearer "))
		if tokenString == "" {
			tokenString = c.Query("token")
		}
		if tokenString == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			return
		}

		claims, err := tokens.ValidateJWT(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			return
		}

		principal := &models.Principal{
			ID:       claims.UserID,
			Email:    claims.Email,
			Role:     claims.Role,
			TenantID: claims.HospitalID,
		}
		c.Set(principalKey, principal)
		c.Set("userID", claims.UserID)
		c.Set("userRole", claims.Role)
		c.Set("acceptedTAndC", claims.AcceptedTAndC)

		c.Next()
	}
}

// Principal returns the caller set by AuthMiddleware, or nil.
func Principal(c *gin.Context) *models.Principal {
	v, ok := c.Get(principalKey)
	if !ok {
		return nil
	}
	p, _ := v.(*models.Principal)
	return p
}

// RequireRole rejects callers whose role is not listed.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		p := Principal(c)
		if p == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized request"})
			return
		}
		for _, role := range roles {
			if p.Role == role {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized request", "kind": "Unauthorized"})
	}
}

// RequireTerms blocks doctors who have not accepted the terms and
// conditions. Mount it after AuthMiddleware on every route except the
// accept endpoint.
func RequireTerms() gin.HandlerFunc {
	return func(c *gin.Context) {
		p := Principal(c)
		if p != nil && p.IsDoctor() && !c.GetBool("acceptedTAndC") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "Please accept the terms and conditions",
				"kind":  "Unauthorized",
			})
			return
		}
		c.Next()
	}
}
