package models

import (
	"time"
)

// Message is one entry in the conversation attached to an accepted proposal.
// Messages are append-only.
type Message struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	ProposalID uint      `gorm:"not null;index:idx_messages_proposal_created,priority:1" json:"proposal_id"`
	Proposal   *Proposal `gorm:"foreignKey:ProposalID" json:"-"`
	SenderID   string    `gorm:"not null;index" json:"sender_id"`
	Content    string    `gorm:"type:text;not null" json:"content"`
	CreatedAt  time.Time `gorm:"index:idx_messages_proposal_created,priority:2" json:"created_at"`
}

// TableName specifies the table name for the Message model
func (Message) TableName() string {
	return "messages"
}
