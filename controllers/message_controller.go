package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// SendMessageRequest represents the request body for sending a message
type SendMessageRequest struct {
	Content string `json:"content"`
}

// SendMessage handles POST /api/v1/proposals/:id/messages - posts to the
// conversation of an accepted proposal. Content is returned with PureJSON so
// markup typed by users is not escaped.
func SendMessage(c *gin.Context) {
	senderID, ok := currentUser(c)
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

	var req SendMessageRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, err)
		return
	}

	message, err := m.Conversations.PostMessage(c.Request.Context(), proposalID, senderID, req.Content)
	if err != nil {
		respondError(c, err)
		return
	}

	c.PureJSON(http.StatusCreated, gin.H{
		"success": true,
		"data":    message,
	})
}

// ListMessages handles GET /api/v1/proposals/:id/messages - the conversation, oldest first
func ListMessages(c *gin.Context) {
	viewerID, ok := currentUser(c)
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

	seq, err := m.Conversations.ListMessagesFor(c.Request.Context(), proposalID, viewerID)
	if err != nil {
		respondError(c, err)
		return
	}
	messages, ok := collectOrRespond(c, seq)
	if !ok {
		return
	}

	c.PureJSON(http.StatusOK, gin.H{
		"success": true,
		"data":    messages,
	})
}
