package controllers

import (
	"github.com/Pedroffda/alinhavo-api/middleware"
	"github.com/Pedroffda/alinhavo-api/models"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the marketplace endpoints on v1. authenticate guards
// every route except image downloads, which stay public like presigned S3 URLs.
func RegisterRoutes(v1 *gin.RouterGroup, authenticate gin.HandlerFunc) {
	v1.GET("/uploads/*key", GetUploadedImage)

	protected := v1.Group("", authenticate)
	clientsOnly := middleware.RequireRole(models.RoleClient)
	tailorsOnly := middleware.RequireRole(models.RoleTailor)

	// User profile
	protected.POST("/users", CreateUser)
	protected.GET("/users/me", GetMyProfile)
	protected.PUT("/users/me", UpdateMyProfile)

	// Inspiration uploads
	protected.POST("/uploads", UploadImage)
	protected.DELETE("/uploads/*key", DeleteUploadedImage)

	// Orders
	protected.POST("/orders", clientsOnly, CreateOrder)
	protected.GET("/orders", ListMyOrders)
	protected.GET("/orders/open", ListOpenOrders)
	protected.GET("/orders/:id", GetOrder)
	protected.POST("/orders/:id/cancel", CancelOrder)

	// Proposals
	protected.POST("/orders/:id/proposals", tailorsOnly, SubmitProposal)
	protected.GET("/orders/:id/proposals", ListOrderProposals)
	protected.POST("/orders/:id/proposals/:proposalId/accept", AcceptProposal)
	protected.GET("/proposals/mine", tailorsOnly, ListMyProposals)
	protected.GET("/proposals/:id", GetProposal)
	protected.POST("/proposals/:id/withdraw", WithdrawProposal)
	protected.POST("/proposals/:id/reject", RejectProposal)

	// Progress and conversation of accepted proposals
	protected.PUT("/proposals/:id/progress", UpdateProgress)
	protected.POST("/proposals/:id/messages", SendMessage)
	protected.GET("/proposals/:id/messages", ListMessages)

	// Tailor dashboard
	protected.GET("/tailors/me/summary", tailorsOnly, GetTailorSummary)
}
