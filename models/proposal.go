package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProposalStatus is the lifecycle state of a bid
type ProposalStatus string

const (
	ProposalPending   ProposalStatus = "pending"
	ProposalAccepted  ProposalStatus = "accepted"
	ProposalRejected  ProposalStatus = "rejected"
	ProposalCancelled ProposalStatus = "cancelled"
)

// ValidProposalStatus reports whether s is a known proposal status
func ValidProposalStatus(s ProposalStatus) bool {
	switch s {
	case ProposalPending, ProposalAccepted, ProposalRejected, ProposalCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether the proposal has left pending
func (s ProposalStatus) IsTerminal() bool {
	return s != ProposalPending
}

// Proposal is a tailor's bid against one order
type Proposal struct {
	ID              uint            `gorm:"primaryKey" json:"id"`
	OrderID         uint            `gorm:"not null;index" json:"order_id"`
	Order           *Order          `gorm:"foreignKey:OrderID" json:"-"`
	TailorID        string          `gorm:"not null;index" json:"tailor_id"`
	Price           decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	TurnaroundHours int             `gorm:"not null;check:turnaround_hours > 0" json:"turnaround_hours"`
	Description     string          `gorm:"type:text" json:"description"`
	Status          ProposalStatus  `gorm:"type:varchar(20);not null;default:'pending';index" json:"status"`
	Progress        int             `gorm:"not null;default:0;check:progress >= 0 AND progress <= 100" json:"progress"`
	CreatedAt       time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt       time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Proposal model
func (Proposal) TableName() string {
	return "proposals"
}
