package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"cineplex/internal/customers"
	"cineplex/internal/shared/config"
	"cineplex/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
)

// Context keys set from the access token claims
const (
	ContextCustomerID = "customer_id"
	ContextEmail      = "customer_email"
	ContextRole       = "customer_role"
)

// JWTAuthWithConfig requires a valid bearer access token issued by the
// identity service. When auth is disabled every request passes untouched.
func JWTAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.JWT.Enabled {
			c.Next()
			return
		}

		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			response.RespondJSON(c, "error", http.StatusUnauthorized, err.Error(), nil, nil)
			c.Abort()
			return
		}

		claims, err := parseAccessToken(tokenString, cfg.JWT.Secret)
		if err != nil {
			response.RespondJSON(c, "error", http.StatusUnauthorized, err.Error(), nil, nil)
			c.Abort()
			return
		}

		setIdentity(c, claims)
		c.Next()
	}
}

// OptionalAuthWithConfig reads identity from a token when one is present and
// valid, and ignores it otherwise.
func OptionalAuthWithConfig(cfg *config.Config) gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString, err := bearerToken(c.GetHeader("Authorization"))
		if err != nil {
			c.Next()
			return
		}

		if claims, err := parseAccessToken(tokenString, cfg.JWT.Secret); err == nil {
			setIdentity(c, claims)
		}
		c.Next()
	}
}

// RequireRoleWithConfig checks the role claim. It is a no-op when auth is
// disabled.
func RequireRoleWithConfig(cfg *config.Config, requiredRoles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !cfg.JWT.Enabled {
			c.Next()
			return
		}

		role, exists := c.Get(ContextRole)
		if !exists {
			response.RespondJSON(c, "error", http.StatusUnauthorized, "role not found in token", nil, nil)
			c.Abort()
			return
		}

		roleStr, _ := role.(string)
		for _, required := range requiredRoles {
			if roleStr == required {
				c.Next()
				return
			}
		}

		response.RespondJSON(c, "error", http.StatusForbidden, "Insufficient permissions", nil, nil)
		c.Abort()
	}
}

// RequireAdminWithConfig gates admin-only routes
func RequireAdminWithConfig(cfg *config.Config) gin.HandlerFunc {
	return RequireRoleWithConfig(cfg, string(customers.RoleAdmin))
}

// CustomerIDFromContext returns the customer id taken from the token, if any.
func CustomerIDFromContext(c *gin.Context) (uint, bool) {
	v, exists := c.Get(ContextCustomerID)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok && id > 0
}

func bearerToken(header string) (string, error) {
	if header == "" {
		return "", fmt.Errorf("authorization header is required")
	}
	parts := strings.SplitN(header, " ", 2)
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", fmt.Errorf("authorization header format must be Bearer {token}")
	}
	return parts[1], nil
}

func parseAccessToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	if tokenType, ok := claims["type"]; !ok || tokenType != "access" {
		return nil, fmt.Errorf("invalid token type")
	}
	return claims, nil
}

func setIdentity(c *gin.Context, claims jwt.MapClaims) {
	if id, ok := customerIDClaim(claims["customer_id"]); ok {
		c.Set(ContextCustomerID, id)
	}
	if email, ok := claims["email"].(string); ok {
		c.Set(ContextEmail, email)
	}
	if role, ok := claims["role"].(string); ok {
		c.Set(ContextRole, role)
	}
}

// customerIDClaim accepts the id as a JSON number or a decimal string
func customerIDClaim(v interface{}) (uint, bool) {
	switch id := v.(type) {
	case float64:
		if id <= 0 || id != float64(uint(id)) {
			return 0, false
		}
		return uint(id), true
	case string:
		n, err := strconv.ParseUint(id, 10, 64)
		if err != nil || n == 0 {
			return 0, false
		}
		return uint(n), true
	}
	return 0, false
}
