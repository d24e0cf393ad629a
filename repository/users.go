package repository

import (
	"context"
	"fmt"

	"github.com/Pedroffda/alinhavo-api/models"
	"gorm.io/gorm"
)

// UserRepository reads and writes user profiles
type UserRepository struct {
	db *gorm.DB
}

// Create inserts a profile. A duplicate Auth0 id or email yields ErrConflict.
func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Create(user).Error; err != nil {
		return fmt.Errorf("failed to create user: %w", classify(err))
	}
	return nil
}

// GetByAuth0ID returns the profile for an identity provider subject
func (r *UserRepository) GetByAuth0ID(ctx context.Context, auth0ID string) (*models.User, error) {
	var user models.User
	if err := r.db.WithContext(ctx).Where("auth0_id = ?", auth0ID).First(&user).Error; err != nil {
		return nil, classify(err)
	}
	return &user, nil
}

// Update applies the given column values and reloads the profile
func (r *UserRepository) Update(ctx context.Context, user *models.User, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Model(user).Updates(fields).Error; err != nil {
		return fmt.Errorf("failed to update user: %w", classify(err))
	}
	if err := r.db.WithContext(ctx).First(user, user.ID).Error; err != nil {
		return classify(err)
	}
	return nil
}
