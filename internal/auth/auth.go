// Package auth materializes a per-request AuthContext from a JWT bearer
// token and defines the role → permission table used by the services.
package auth

import (
	"net/http"
	"strings"
	"time"

	"github.com/dgrijalva/jwt-go"
	"github.com/gin-gonic/gin"
)

const ctxKey = "authContext"

// AuthContext is the caller identity passed explicitly into every service
// operation. CompanyID is 0 for jobseekers and unaffiliated employers.
type AuthContext struct {
	UserID      uint64
	Role        string // jobseeker | employer
	CompanyID   uint64
	CompanyRole string // admin | recruiter | hiring_manager | ""
}

// Claims is the JWT payload. Company affiliation is resolved per request
// from the DB, not baked into the token, so role changes take effect
// immediately.
type Claims struct {
	UserID uint64 `json:"user_id"`
	Role   string `json:"role"`
	jwt.StandardClaims
}

// NewToken signs a token for the given user.
func NewToken(secret string, userID uint64, role string, ttl time.Duration) (string, error) {
	claims := &Claims{
		UserID: userID,
		Role:   role,
		StandardClaims: jwt.StandardClaims{
			ExpiresAt: time.Now().Add(ttl).Unix(),
			IssuedAt:  time.Now().Unix(),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// Resolver loads the caller's current company affiliation. Implemented by
// the account service; kept as an interface so middleware stays free of
// storage imports.
type Resolver interface {
	ResolveAuth(claims *Claims) (AuthContext, error)
}

// Middleware validates the bearer token and stores the resolved
// AuthContext on the gin context.
func Middleware(secret string, resolver Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authorization header required"})
			return
		}
		tokenString := strings.TrimPrefix(header, "Bearer ")

		claims := &Claims{}
		token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
			return []byte(secret), nil
		})
		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}

		authCtx, err := resolver.ResolveAuth(claims)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unknown account"})
			return
		}

		c.Set(ctxKey, authCtx)
		c.Next()
	}
}

// RequireRole gates a route group to one account role.
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if FromGin(c).Role != role {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
			return
		}
		c.Next()
	}
}

// FromGin returns the AuthContext stored by Middleware. Zero value when
// the route is unauthenticated.
func FromGin(c *gin.Context) AuthContext {
	if v, ok := c.Get(ctxKey); ok {
		if authCtx, ok := v.(AuthContext); ok {
			return authCtx
		}
	}
	return AuthContext{}
}
