package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleClient = "client"
	RoleTailor = "tailor"
)

// ValidRole reports whether role is one of the marketplace roles
func ValidRole(role string) bool {
	return role == RoleClient || role == RoleTailor
}

// User represents a user in the system (client or tailor)
type User struct {
	ID              uint           `gorm:"primaryKey" json:"id"`
	Auth0ID         string         `gorm:"uniqueIndex;not null" json:"auth0_id"` // identity provider subject ('sub' claim)
	Name            string         `gorm:"not null" json:"name"`
	Email           string         `gorm:"uniqueIndex;not null" json:"email"`
	Role            string         `gorm:"not null;default:'client'" json:"role"` // "client" or "tailor"
	Bio             string         `gorm:"type:text" json:"bio"`
	City            string         `json:"city"`
	YearsExperience int            `gorm:"not null;default:0" json:"years_experience"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsTailor reports whether the user offers tailoring services
func (u *User) IsTailor() bool {
	return u.Role == RoleTailor
}
