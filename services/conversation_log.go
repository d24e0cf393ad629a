package services

import (
	"context"
	"fmt"
	"iter"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Pedroffda/alinhavo-api/apperrors"
	"github.com/Pedroffda/alinhavo-api/logger"
	"github.com/Pedroffda/alinhavo-api/models"
	"github.com/Pedroffda/alinhavo-api/repository"
	"go.uber.org/zap"
)

// MaxMessageLength caps a single message, counted in characters
const MaxMessageLength = 2000

// ConversationLog is the message thread between the parties of an accepted proposal
type ConversationLog struct {
	store *repository.Store
	now   func() time.Time
}

// PostMessage appends a message from senderID, who must be the order's
// client or the proposal's tailor. The timestamp is assigned here.
func (c *ConversationLog) PostMessage(ctx context.Context, proposalID uint, senderID, content string) (*models.Message, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, apperrors.NewValidation("EMPTY_MESSAGE", "message content is required")
	}
	if utf8.RuneCountInString(content) > MaxMessageLength {
		return nil, apperrors.NewValidation("MESSAGE_TOO_LONG", fmt.Sprintf("message must be at most %d characters", MaxMessageLength))
	}

	proposal, err := c.authorize(ctx, proposalID, senderID)
	if err != nil {
		return nil, err
	}
	if proposal.Status != models.ProposalAccepted {
		return nil, apperrors.NewInvalidState("PROPOSAL_NOT_ACCEPTED", "Messages can only be sent on an accepted proposal")
	}

	message := &models.Message{
		ProposalID: proposalID,
		SenderID:   senderID,
		Content:    content,
		CreatedAt:  c.now().UTC(),
	}
	if err := c.store.Messages().Create(ctx, message); err != nil {
		logger.Log.Error("failed to store message", zap.Uint("proposal_id", proposalID), zap.Error(err))
		return nil, apperrors.NewPersistence("Failed to send message", err)
	}

	logger.Log.Debug("message posted", zap.Uint("proposal_id", proposalID), zap.Uint("message_id", message.ID))
	return message, nil
}

// ListMessages streams a proposal's conversation oldest first
func (c *ConversationLog) ListMessages(ctx context.Context, proposalID uint) iter.Seq2[models.Message, error] {
	return wrapSeq(c.store.Messages().ListByProposal(ctx, proposalID))
}

// ListMessagesFor is ListMessages restricted to the proposal's two parties
func (c *ConversationLog) ListMessagesFor(ctx context.Context, proposalID uint, viewerID string) (iter.Seq2[models.Message, error], error) {
	if _, err := c.authorize(ctx, proposalID, viewerID); err != nil {
		return nil, err
	}
	return c.ListMessages(ctx, proposalID), nil
}

func (c *ConversationLog) authorize(ctx context.Context, proposalID uint, userID string) (*models.Proposal, error) {
	proposal, err := c.store.Proposals().Get(ctx, proposalID)
	if err != nil {
		return nil, lookupErr(err, "PROPOSAL_NOT_FOUND", "Proposal not found")
	}
	if proposal.TailorID == userID {
		return proposal, nil
	}

	order, err := c.store.Orders().Get(ctx, proposal.OrderID)
	if err != nil {
		return nil, lookupErr(err, "ORDER_NOT_FOUND", "Order not found")
	}
	if order.ClientID != userID {
		return nil, apperrors.NewNotAuthorized("FORBIDDEN", "Only the client and the tailor can use this conversation")
	}
	return proposal, nil
}
