package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// OrderStatus is the lifecycle state of an order
type OrderStatus string

const (
	OrderOpen       OrderStatus = "open"
	OrderInProgress OrderStatus = "in_progress"
	OrderCompleted  OrderStatus = "completed"
	OrderCancelled  OrderStatus = "cancelled"
)

// ValidOrderStatus reports whether s is a known order status
func ValidOrderStatus(s OrderStatus) bool {
	switch s {
	case OrderOpen, OrderInProgress, OrderCompleted, OrderCancelled:
		return true
	default:
		return false
	}
}

// IsTerminal reports whether no further transitions are allowed
func (s OrderStatus) IsTerminal() bool {
	return s == OrderCompleted || s == OrderCancelled
}

// HasTailor reports whether an order in this status carries an assigned tailor
func (s OrderStatus) HasTailor() bool {
	return s == OrderInProgress || s == OrderCompleted
}

// StatusFields returns the column updates that move an order to status. The
// assigned tailor is set exactly when the status carries one.
func StatusFields(status OrderStatus, tailorID string) (map[string]interface{}, error) {
	if !ValidOrderStatus(status) {
		return nil, fmt.Errorf("unknown order status %q", status)
	}

	fields := map[string]interface{}{"status": status}
	switch {
	case status.HasTailor() && tailorID == "":
		return nil, fmt.Errorf("order status %s requires an assigned tailor", status)
	case status.HasTailor():
		fields["assigned_tailor_id"] = tailorID
	default:
		fields["assigned_tailor_id"] = nil
	}
	return fields, nil
}

// Order represents a client's custom clothing request
type Order struct {
	ID               uint            `gorm:"primaryKey" json:"id"`
	ClientID         string          `gorm:"not null;index" json:"client_id"` // identity provider subject of the requesting client
	GarmentType      string          `gorm:"not null;index" json:"garment_type"`
	Size             string          `gorm:"not null" json:"size"`
	Color            string          `gorm:"not null" json:"color"`
	Material         string          `gorm:"not null" json:"material"`
	Style            string          `gorm:"not null" json:"style"`
	Details          string          `gorm:"type:text" json:"details"`
	DeliveryDate     time.Time       `gorm:"not null;index" json:"delivery_date"`
	MaxBudget        decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"max_budget"`
	Status           OrderStatus     `gorm:"type:varchar(20);not null;default:'open';index" json:"status"`
	Progress         int             `gorm:"not null;default:0;check:progress >= 0 AND progress <= 100" json:"progress"`
	AssignedTailorID *string         `gorm:"index" json:"assigned_tailor_id"` // nullable, set on acceptance
	Inspirations     []Inspiration   `gorm:"foreignKey:OrderID" json:"inspirations,omitempty"`
	CreatedAt        time.Time       `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// TableName specifies the table name for the Order model
func (Order) TableName() string {
	return "orders"
}

// IsParty reports whether userID is the order's client or its assigned tailor
func (o *Order) IsParty(userID string) bool {
	if o.ClientID == userID {
		return true
	}
	return o.AssignedTailorID != nil && *o.AssignedTailorID == userID
}
