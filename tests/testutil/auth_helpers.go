package testutil

import (
	"strings"

	"github.com/Pedroffda/alinhavo-api/middleware"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
)

// MockValidatedClaims creates a mock ValidatedClaims carrying a role and scopes
func MockValidatedClaims(subject, role string, scopes []string) *validator.ValidatedClaims {
	return &validator.ValidatedClaims{
		RegisteredClaims: validator.RegisteredClaims{
			Issuer:  "https://test.alinhavo.local/",
			Subject: subject,
		},
		CustomClaims: &middleware.CustomClaims{
			Scope: strings.Join(scopes, " "),
			Role:  role,
		},
	}
}

// SetMockAuthContext populates c the way EnsureValidToken does for a verified token
func SetMockAuthContext(c *gin.Context, userID, role, accessToken string) {
	claims := MockValidatedClaims(userID, role, nil)
	c.Set(middleware.UserIDKey, userID)
	c.Set(middleware.AccessTokenKey, accessToken)
	c.Set(middleware.ValidatedClaimsKey, claims)
	c.Set(middleware.CustomClaimsKey, claims.CustomClaims)
}

// MockAuthMiddleware stands in for EnsureValidToken in router tests
func MockAuthMiddleware(userID, role, accessToken string) gin.HandlerFunc {
	return func(c *gin.Context) {
		SetMockAuthContext(c, userID, role, accessToken)
		c.Next()
	}
}

// CreateTestContext creates a test Gin context
func CreateTestContext() (*gin.Context, *gin.Engine) {
	gin.SetMode(gin.TestMode)
	c, engine := gin.CreateTestContext(nil)
	return c, engine
}
