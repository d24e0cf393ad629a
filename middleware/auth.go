package middleware

import (
	"context"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Pedroffda/alinhavo-api/config"
	"github.com/Pedroffda/alinhavo-api/logger"
	"github.com/auth0/go-jwt-middleware/v2"
	"github.com/auth0/go-jwt-middleware/v2/jwks"
	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// Context keys set by EnsureValidToken
const (
	UserIDKey          = "user_id"
	AccessTokenKey     = "access_token"
	ValidatedClaimsKey = "validated_claims"
	CustomClaimsKey    = "custom_claims"
)

// CustomClaims contains custom data we want from the token.
type CustomClaims struct {
	Scope string `json:"scope"`
	// Role is added to Auth0 access tokens by a login Action under a
	// namespaced claim.
	Role string `json:"https://alinhavo.app/role"`
}

// Validate does nothing for this example, but we need
// it to satisfy validator.CustomClaims interface.
func (c CustomClaims) Validate(ctx context.Context) error {
	return nil
}

// HasScope checks whether our claims have a specific scope.
func (c CustomClaims) HasScope(expectedScope string) bool {
	for _, scope := range strings.Fields(c.Scope) {
		if scope == expectedScope {
			return true
		}
	}
	return false
}

// EnsureValidToken is a middleware that will check the validity of our JWT.
// Auth0 RS256 tokens are used when AUTH0_DOMAIN is set, otherwise tokens are
// HS256 signed with JWT_SECRET.
func EnsureValidToken(cfg *config.Config) gin.HandlerFunc {
	validateToken := auth0Validator(cfg)
	if cfg.Auth0Domain == "" {
		validateToken = hs256Validator(cfg.JWTSecret)
	}
	return tokenMiddleware(validateToken)
}

func auth0Validator(cfg *config.Config) func(context.Context, string) (interface{}, error) {
	if cfg.Auth0Domain == "" {
		return nil
	}

	issuerURL, err := url.Parse("https://" + cfg.Auth0Domain + "/")
	if err != nil {
		logger.Log.Fatal("failed to parse the issuer url", zap.Error(err))
	}

	provider := jwks.NewCachingProvider(issuerURL, 5*time.Minute)

	jwtValidator, err := validator.New(
		provider.KeyFunc,
		validator.RS256,
		issuerURL.String(),
		[]string{cfg.Auth0Audience},
		validator.WithCustomClaims(
			func() validator.CustomClaims {
				return &CustomClaims{}
			},
		),
		validator.WithAllowedClockSkew(time.Minute),
	)
	if err != nil {
		logger.Log.Fatal("failed to set up the jwt validator", zap.Error(err))
	}

	return jwtValidator.ValidateToken
}

func tokenMiddleware(validateToken func(context.Context, string) (interface{}, error)) gin.HandlerFunc {
	errorHandler := func(w http.ResponseWriter, r *http.Request, err error) {
		logger.Log.Warn("rejected bearer token", zap.String("path", r.URL.Path), zap.Error(err))

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		if _, writeErr := w.Write([]byte(`{"success":false,"error":{"code":"INVALID_TOKEN","message":"Failed to validate JWT."}}`)); writeErr != nil {
			logger.Log.Error("failed to write error response", zap.Error(writeErr))
		}
	}

	middleware := jwtmiddleware.New(
		validateToken,
		jwtmiddleware.WithErrorHandler(errorHandler),
	)

	return func(c *gin.Context) {
		authenticated := false
		var handler http.HandlerFunc = func(w http.ResponseWriter, r *http.Request) {
			authenticated = true
			token := r.Context().Value(jwtmiddleware.ContextKey{}).(*validator.ValidatedClaims)

			c.Set(UserIDKey, token.RegisteredClaims.Subject)
			c.Set(ValidatedClaimsKey, token)
			if custom, ok := token.CustomClaims.(*CustomClaims); ok {
				c.Set(CustomClaimsKey, custom)
			}
			if accessToken, err := jwtmiddleware.AuthHeaderTokenExtractor(r); err == nil {
				c.Set(AccessTokenKey, accessToken)
			}

			c.Request = r
			c.Next()
		}

		// Use the JWT middleware to check the token
		middleware.CheckJWT(handler).ServeHTTP(c.Writer, c.Request)
		if !authenticated {
			c.Abort()
		}
	}
}

// GetUserID extracts the user ID from the Gin context
func GetUserID(c *gin.Context) (string, error) {
	userID, exists := c.Get(UserIDKey)
	if !exists {
		return "", &AuthError{Code: "MISSING_USER_ID", Message: "User ID not found in context"}
	}

	userIDStr, ok := userID.(string)
	if !ok || userIDStr == "" {
		return "", &AuthError{Code: "INVALID_USER_ID", Message: "User ID is not a string"}
	}

	return userIDStr, nil
}

// GetAccessToken returns the raw bearer token of the request
func GetAccessToken(c *gin.Context) (string, error) {
	token, exists := c.Get(AccessTokenKey)
	if !exists {
		return "", &AuthError{Code: "MISSING_ACCESS_TOKEN", Message: "Access token not found in context"}
	}

	tokenStr, ok := token.(string)
	if !ok || tokenStr == "" {
		return "", &AuthError{Code: "INVALID_ACCESS_TOKEN", Message: "Access token is not a string"}
	}

	return tokenStr, nil
}

// GetClaims extracts the validated JWT claims from the Gin context
func GetClaims(c *gin.Context) (*validator.ValidatedClaims, error) {
	claims, exists := c.Get(ValidatedClaimsKey)
	if !exists {
		return nil, &AuthError{Code: "MISSING_CLAIMS", Message: "Claims not found in context"}
	}

	validatedClaims, ok := claims.(*validator.ValidatedClaims)
	if !ok {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Claims are not in the expected format"}
	}

	return validatedClaims, nil
}

// GetCustomClaims returns the scope and role carried by the token
func GetCustomClaims(c *gin.Context) (*CustomClaims, error) {
	if custom, exists := c.Get(CustomClaimsKey); exists {
		if claims, ok := custom.(*CustomClaims); ok {
			return claims, nil
		}
	}

	claims, err := GetClaims(c)
	if err != nil {
		return nil, err
	}
	custom, ok := claims.CustomClaims.(*CustomClaims)
	if !ok || custom == nil {
		return nil, &AuthError{Code: "INVALID_CLAIMS", Message: "Custom claims are not in the expected format"}
	}
	return custom, nil
}

// GetRole returns the marketplace role claimed by the token, or ""
func GetRole(c *gin.Context) string {
	custom, err := GetCustomClaims(c)
	if err != nil {
		return ""
	}
	return custom.Role
}

// RequireScope is a middleware that checks if the token has a specific scope
func RequireScope(scope string) gin.HandlerFunc {
	return func(c *gin.Context) {
		customClaims, err := GetCustomClaims(c)
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, "MISSING_CLAIMS", "Could not retrieve token claims")
			return
		}

		if !customClaims.HasScope(scope) {
			abortWithError(c, http.StatusForbidden, "INSUFFICIENT_SCOPE", "Insufficient permissions to access this resource")
			return
		}

		c.Next()
	}
}

// RequireRole is a middleware that only lets tokens claiming role through
func RequireRole(role string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, err := GetCustomClaims(c); err != nil {
			abortWithError(c, http.StatusUnauthorized, "MISSING_CLAIMS", "Could not retrieve token claims")
			return
		}

		if GetRole(c) != role {
			abortWithError(c, http.StatusForbidden, "INSUFFICIENT_ROLE", "This action requires the "+role+" role")
			return
		}

		c.Next()
	}
}

func abortWithError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// AuthError represents an authentication error
type AuthError struct {
	Code    string
	Message string
}

func (e *AuthError) Error() string {
	return e.Message
}
