package controllers

import (
	"net/http"

	"github.com/Pedroffda/alinhavo-api/config"
	"github.com/Pedroffda/alinhavo-api/logger"
	"github.com/Pedroffda/alinhavo-api/middleware"
	"github.com/Pedroffda/alinhavo-api/models"
	"github.com/Pedroffda/alinhavo-api/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// UserInfoProviderFactory builds the identity lookup used by CreateUser.
// Tests replace it to avoid calling Auth0.
var UserInfoProviderFactory = func(cfg *config.Config) services.UserInfoProvider {
	return services.NewAuth0Service(cfg)
}

// ProfileRequest represents the request body for creating or updating a profile
type ProfileRequest struct {
	Name            *string `json:"name"`
	Email           *string `json:"email" binding:"omitempty,email"`
	Role            *string `json:"role"`
	Bio             *string `json:"bio"`
	City            *string `json:"city"`
	YearsExperience *int    `json:"years_experience"`
}

func (r ProfileRequest) input() services.ProfileInput {
	return services.ProfileInput{
		Name:            r.Name,
		Email:           r.Email,
		Role:            r.Role,
		Bio:             r.Bio,
		City:            r.City,
		YearsExperience: r.YearsExperience,
	}
}

// CreateUser handles POST /api/v1/users - registers the caller's profile.
// Name and email missing from the body are fetched from Auth0's /userinfo.
func CreateUser(c *gin.Context) {
	auth0ID, ok := currentUser(c)
	if !ok {
		return
	}
	m, ok := marketplace(c)
	if !ok {
		return
	}

	var req ProfileRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respondValidation(c, err)
			return
		}
	}

	if req.Name == nil || req.Email == nil {
		accessToken, err := middleware.GetAccessToken(c)
		if err != nil {
			respondFailure(c, http.StatusUnauthorized, "MISSING_TOKEN", "Access token not found")
			return
		}
		cfg := config.GetConfig()
		if cfg == nil {
			cfg = &config.Config{}
		}
		userInfo, err := UserInfoProviderFactory(cfg).GetUserInfo(c.Request.Context(), accessToken)
		if err != nil {
			logger.Log.Warn("userinfo lookup failed", zap.String("user_id", auth0ID), zap.Error(err))
			respondFailure(c, http.StatusBadGateway, "AUTH0_ERROR", "Failed to fetch user information from Auth0")
			return
		}
		if req.Name == nil && userInfo.Name != "" {
			req.Name = &userInfo.Name
		}
		if req.Email == nil && userInfo.Email != "" {
			req.Email = &userInfo.Email
		}
	}

	// Role from the body, then the token's custom claim, then client
	if req.Role == nil {
		role := models.RoleClient
		if claimed := middleware.GetRole(c); claimed != "" {
			role = claimed
		}
		req.Role = &role
	}

	user, err := m.Profiles.CreateProfile(c.Request.Context(), auth0ID, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, user)
}

// GetMyProfile handles GET /api/v1/users/me
func GetMyProfile(c *gin.Context) {
	auth0ID, ok := currentUser(c)
	if !ok {
		return
	}
	m, ok := marketplace(c)
	if !ok {
		return
	}

	user, err := m.Profiles.GetProfile(c.Request.Context(), auth0ID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}

// UpdateMyProfile handles PUT /api/v1/users/me - only the fields present are changed
func UpdateMyProfile(c *gin.Context) {
	auth0ID, ok := currentUser(c)
	if !ok {
		return
	}
	m, ok := marketplace(c)
	if !ok {
		return
	}

	var req ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	user, err := m.Profiles.UpdateProfile(c.Request.Context(), auth0ID, req.input())
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, user)
}
