package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"highwaylink/internal/domain"
)

const identityKey = "identity"

// Claims are the JWT claims issued by the auth collaborator.
type Claims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

// Auth validates the bearer token and attaches the caller's identity to
// the request context. Identity always comes from the token, never from
// request bodies.
func Auth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if !strings.HasPrefix(header, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return []byte(secret), nil
		})
		if err != nil || !token.Valid || claims.Subject == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		role := domain.Role(claims.Role)
		if role != domain.RoleAdmin {
			role = domain.RoleUser
		}

		c.Set(identityKey, domain.Identity{
			UserID: claims.Subject,
			Name:   claims.Name,
			Email:  claims.Email,
			Role:   role,
		})

		c.Next()
	}
}

// RequireAdmin aborts requests whose identity is not an admin. Must run
// after Auth.
func RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if IdentityFrom(c).Role != domain.RoleAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "admin only"})
			return
		}
		c.Next()
	}
}

// GatewayAuth authenticates payment gateway callbacks with a shared
// secret header instead of a user token.
func GatewayAuth(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if secret == "" || c.GetHeader("X-Gateway-Secret") != secret {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid gateway credentials"})
			return
		}
		c.Next()
	}
}

// IdentityFrom returns the identity attached by Auth. Zero value if the
// middleware did not run.
func IdentityFrom(c *gin.Context) domain.Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return domain.Identity{}
	}
	identity, _ := v.(domain.Identity)
	return identity
}
