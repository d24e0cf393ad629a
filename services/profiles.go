package services

import (
	"context"
	"errors"
	"strings"

	"github.com/Pedroffda/alinhavo-api/apperrors"
	"github.com/Pedroffda/alinhavo-api/logger"
	"github.com/Pedroffda/alinhavo-api/models"
	"github.com/Pedroffda/alinhavo-api/repository"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// ProfileInput carries profile fields; nil pointers are left untouched on update
type ProfileInput struct {
	Name            *string
	Email           *string
	Role            *string
	Bio             *string
	City            *string
	YearsExperience *int
}

// ProfileDirectory manages the marketplace profile of each identity
type ProfileDirectory struct {
	store *repository.Store
}

// CreateProfile registers the profile for auth0ID
func (p *ProfileDirectory) CreateProfile(ctx context.Context, auth0ID string, input ProfileInput) (*models.User, error) {
	user := &models.User{Auth0ID: auth0ID, Role: models.RoleClient}
	if input.Role != nil {
		user.Role = strings.TrimSpace(*input.Role)
	}
	if input.Name != nil {
		user.Name = strings.TrimSpace(*input.Name)
	}
	if input.Email != nil {
		user.Email = strings.TrimSpace(*input.Email)
	}
	if input.Bio != nil {
		user.Bio = strings.TrimSpace(*input.Bio)
	}
	if input.City != nil {
		user.City = strings.TrimSpace(*input.City)
	}
	if input.YearsExperience != nil {
		user.YearsExperience = *input.YearsExperience
	}

	if err := validateProfile(user); err != nil {
		return nil, err
	}

	if err := p.store.Users().Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NewInvalidState("USER_EXISTS", "A user with this Auth0 ID or email already exists")
		}
		return nil, apperrors.NewPersistence("Failed to create user", err)
	}

	logger.Log.Info("profile created", zap.Uint("user_id", user.ID), zap.String("role", user.Role))
	return user, nil
}

// GetProfile returns the profile for auth0ID
func (p *ProfileDirectory) GetProfile(ctx context.Context, auth0ID string) (*models.User, error) {
	user, err := p.store.Users().GetByAuth0ID(ctx, auth0ID)
	if err != nil {
		return nil, lookupErr(err, "USER_NOT_FOUND", "User profile not found. Please create a profile first.")
	}
	return user, nil
}

// UpdateProfile applies the non-nil fields of input
func (p *ProfileDirectory) UpdateProfile(ctx context.Context, auth0ID string, input ProfileInput) (*models.User, error) {
	user, err := p.GetProfile(ctx, auth0ID)
	if err != nil {
		return nil, err
	}

	updated := *user
	updates := make(map[string]interface{})
	if input.Name != nil {
		updated.Name = strings.TrimSpace(*input.Name)
		updates["name"] = updated.Name
	}
	if input.Email != nil {
		updated.Email = strings.TrimSpace(*input.Email)
		updates["email"] = updated.Email
	}
	if input.Role != nil {
		updated.Role = strings.TrimSpace(*input.Role)
		updates["role"] = updated.Role
	}
	if input.Bio != nil {
		updated.Bio = strings.TrimSpace(*input.Bio)
		updates["bio"] = updated.Bio
	}
	if input.City != nil {
		updated.City = strings.TrimSpace(*input.City)
		updates["city"] = updated.City
	}
	if input.YearsExperience != nil {
		updated.YearsExperience = *input.YearsExperience
		updates["years_experience"] = updated.YearsExperience
	}

	if err := validateProfile(&updated); err != nil {
		return nil, err
	}

	if err := p.store.Users().Update(ctx, user, updates); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NewInvalidState("EMAIL_EXISTS", "A user with this email already exists")
		}
		return nil, apperrors.NewPersistence("Failed to update user profile", err)
	}
	return user, nil
}

// profileValidate checks fields that arrive outside request binding, such as
// emails filled in from the identity provider
var profileValidate = validator.New()

func validateProfile(user *models.User) error {
	var problems []string
	if user.Name == "" {
		problems = append(problems, "name is required")
	}
	if err := profileValidate.Var(user.Email, "required,email"); err != nil {
		problems = append(problems, "a valid email is required")
	}
	if !models.ValidRole(user.Role) {
		problems = append(problems, "role must be client or tailor")
	}
	if user.YearsExperience < 0 {
		problems = append(problems, "years_experience must not be negative")
	}
	if len(problems) > 0 {
		return apperrors.NewValidation("VALIDATION_ERROR", strings.Join(problems, "; "))
	}
	return nil
}
