package controllers

import (
	"errors"
	"iter"
	"net/http"
	"strconv"

	"github.com/Pedroffda/alinhavo-api/apperrors"
	"github.com/Pedroffda/alinhavo-api/logger"
	"github.com/Pedroffda/alinhavo-api/middleware"
	"github.com/Pedroffda/alinhavo-api/repository"
	"github.com/Pedroffda/alinhavo-api/services"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

func respondFailure(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondError writes a lifecycle error with the status its kind maps to
func respondError(c *gin.Context, err error) {
	var appErr *apperrors.Error
	if !errors.As(err, &appErr) {
		appErr = apperrors.From(err)
	}

	if appErr.Kind == apperrors.Persistence {
		logger.Log.Error("request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", c.GetString("request_id")),
			zap.Error(err),
		)
	}

	c.JSON(appErr.GetHTTPCode(), gin.H{
		"success": false,
		"error": gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
			"kind":    appErr.Kind.String(),
		},
	})
}

func respondValidation(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

// currentUser returns the authenticated subject, answering 401 when absent
func currentUser(c *gin.Context) (string, bool) {
	userID, err := middleware.GetUserID(c)
	if err != nil {
		respondFailure(c, http.StatusUnauthorized, "UNAUTHORIZED", "Could not extract user information")
		return "", false
	}
	return userID, true
}

// idParam parses a positive numeric path parameter, answering 400 otherwise
func idParam(c *gin.Context, name, label string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		respondFailure(c, http.StatusBadRequest, "INVALID_ID", label+" ID must be a positive integer")
		return 0, false
	}
	return uint(id), true
}

// collectOrRespond drains seq, answering with the error when reading fails
func collectOrRespond[T any](c *gin.Context, seq iter.Seq2[T, error]) ([]T, bool) {
	items, err := repository.Collect(seq)
	if err != nil {
		respondError(c, err)
		return nil, false
	}
	return items, true
}

// marketplace returns the process-wide lifecycle services
func marketplace(c *gin.Context) (*services.Marketplace, bool) {
	m := services.GetMarketplace()
	if m == nil {
		respondFailure(c, http.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "Marketplace is not initialized")
		return nil, false
	}
	return m, true
}
