package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"
)

// SubmitProposalRequest represents the request body for bidding on an order
type SubmitProposalRequest struct {
	Price           *decimal.Decimal `json:"price" binding:"required"`
	TurnaroundHours int              `json:"turnaround_hours"`
	Description     string           `json:"description"`
}

// UpdateProgressRequest represents the request body for reporting progress
type UpdateProgressRequest struct {
	Progress *int `json:"progress" binding:"required"`
}

// SubmitProposal handles POST /api/v1/orders/:id/proposals (tailors only)
func SubmitProposal(c *gin.Context) {
	tailorID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id", "Order")
	if !ok {
		return
	}
	m, ok := marketplace(c)
	if !ok {
		return
	}

	var req SubmitProposalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	proposal, err := m.Proposals.SubmitProposal(c.Request.Context(), orderID, tailorID, *req.Price, req.TurnaroundHours, req.Description)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusCreated, proposal)
}

// ListOrderProposals handles GET /api/v1/orders/:id/proposals. The order's
// client sees every bid; anyone else sees only their own.
func ListOrderProposals(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id", "Order")
	if !ok {
		return
	}
	m, ok := marketplace(c)
	if !ok {
		return
	}

	seq, err := m.Proposals.ListProposalsVisibleTo(c.Request.Context(), orderID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	proposals, ok := collectOrRespond(c, seq)
	if !ok {
		return
	}
	respondData(c, http.StatusOK, proposals)
}

// AcceptProposal handles POST /api/v1/orders/:id/proposals/:proposalId/accept
func AcceptProposal(c *gin.Context) {
	clientID, ok := currentUser(c)
	if !ok {
		return
	}
	orderID, ok := idParam(c, "id", "Order")
	if !ok {
		return
	}
	proposalID, ok := idParam(c, "proposalId", "Proposal")
	if !ok {
		return
	}
	m, ok := marketplace(c)
	if !ok {
		return
	}

	result, err := m.Acceptance.AcceptProposal(c.Request.Context(), orderID, proposalID, clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, result)
}

// ListMyProposals handles GET /api/v1/proposals/mine - the caller's bids, newest first
func ListMyProposals(c *gin.Context) {
	tailorID, ok := currentUser(c)
	if !ok {
		return
	}
	m, ok := marketplace(c)
	if !ok {
		return
	}

	proposals, ok := collectOrRespond(c, m.Proposals.ListProposalsForTailor(c.Request.Context(), tailorID))
	if !ok {
		return
	}
	respondData(c, http.StatusOK, proposals)
}

// GetProposal handles GET /api/v1/proposals/:id
func GetProposal(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	proposalID, ok := idParam(c, "id", "Proposal")
	if !ok {
		return
	}
	m, ok := marketplace(c)
	if !ok {
		return
	}

	proposal, err := m.Proposals.GetProposal(c.Request.Context(), proposalID, userID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, proposal)
}

// WithdrawProposal handles POST /api/v1/proposals/:id/withdraw
func WithdrawProposal(c *gin.Context) {
	tailorID, ok := currentUser(c)
	if !ok {
		return
	}
	proposalID, ok := idParam(c, "id", "Proposal")
	if !ok {
		return
	}
	m, ok := marketplace(c)
	if !ok {
		return
	}

	proposal, err := m.Proposals.WithdrawProposal(c.Request.Context(), proposalID, tailorID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, proposal)
}

// RejectProposal handles POST /api/v1/proposals/:id/reject
func RejectProposal(c *gin.Context) {
	clientID, ok := currentUser(c)
	if !ok {
		return
	}
	proposalID, ok := idParam(c, "id", "Proposal")
	if !ok {
		return
	}
	m, ok := marketplace(c)
	if !ok {
		return
	}

	proposal, err := m.Proposals.RejectProposal(c.Request.Context(), proposalID, clientID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, proposal)
}

// UpdateProgress handles PUT /api/v1/proposals/:id/progress
func UpdateProgress(c *gin.Context) {
	tailorID, ok := currentUser(c)
	if !ok {
		return
	}
	proposalID, ok := idParam(c, "id", "Proposal")
	if !ok {
		return
	}
	m, ok := marketplace(c)
	if !ok {
		return
	}

	var req UpdateProgressRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	result, err := m.Progress.UpdateProgress(c.Request.Context(), proposalID, tailorID, *req.Progress)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, result)
}

// GetTailorSummary handles GET /api/v1/tailors/me/summary
func GetTailorSummary(c *gin.Context) {
	tailorID, ok := currentUser(c)
	if !ok {
		return
	}
	m, ok := marketplace(c)
	if !ok {
		return
	}

	summary, err := m.Dashboard.TailorSummary(c.Request.Context(), tailorID)
	if err != nil {
		respondError(c, err)
		return
	}
	respondData(c, http.StatusOK, summary)
}
