package middleware

import (
	"context"
	"errors"
	"time"

	"github.com/auth0/go-jwt-middleware/v2/validator"
	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for tokens that fail HS256 validation
var ErrInvalidToken = errors.New("invalid token")

// TokenClaims is the payload of locally signed HS256 tokens
type TokenClaims struct {
	Scope string `json:"scope,omitempty"`
	Role  string `json:"role,omitempty"`
	jwt.RegisteredClaims
}

// GenerateToken signs an HS256 token for subject, used in development and tests
func GenerateToken(secret, subject, role, scope string, expiration time.Duration) (string, error) {
	now := time.Now()
	claims := TokenClaims{
		Scope: scope,
		Role:  role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(expiration)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(secret))
}

// hs256Validator adapts golang-jwt parsing to the token validator signature
// used by jwtmiddleware, so both token kinds yield *validator.ValidatedClaims.
func hs256Validator(secret string) func(context.Context, string) (interface{}, error) {
	return func(ctx context.Context, tokenString string) (interface{}, error) {
		token, err := jwt.ParseWithClaims(tokenString, &TokenClaims{}, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, ErrInvalidToken
			}
			return []byte(secret), nil
		}, jwt.WithLeeway(time.Minute), jwt.WithExpirationRequired())
		if err != nil {
			return nil, err
		}

		claims, ok := token.Claims.(*TokenClaims)
		if !ok || !token.Valid || claims.Subject == "" {
			return nil, ErrInvalidToken
		}

		registered := validator.RegisteredClaims{
			Issuer:   claims.Issuer,
			Subject:  claims.Subject,
			Audience: claims.Audience,
			ID:       claims.ID,
		}
		if claims.ExpiresAt != nil {
			registered.Expiry = claims.ExpiresAt.Unix()
		}
		if claims.IssuedAt != nil {
			registered.IssuedAt = claims.IssuedAt.Unix()
		}

		return &validator.ValidatedClaims{
			RegisteredClaims: registered,
			CustomClaims:     &CustomClaims{Scope: claims.Scope, Role: claims.Role},
		}, nil
	}
}
