package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"findlost/internal/auth"
	"findlost/internal/models"
	"findlost/internal/repository"
)

type UserService struct {
	users repository.UserRepository
	now   func() time.Time
}

type SignInInput struct {
	Username string
	Email    string
	Photo    string
}

type UpdateUserInput struct {
	Username *string
	Photo    *string
}

func NewUserService(users repository.UserRepository) *UserService {
	return &UserService{users: users, now: time.Now}
}

// UpsertOnSignIn records a sign-in. A known email only refreshes lastSignIn;
// an unknown one creates the user. created reports which happened.
func (s *UserService) UpsertOnSignIn(ctx context.Context, in SignInInput) (user *models.User, created bool, err error) {
	email := normalizeEmail(in.Email)
	if email == "" {
		return nil, false, models.NewMissingFieldsError([]string{"email"})
	}
	now := s.now().UTC()

	user, err = s.users.TouchSignIn(ctx, email, now)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, false, models.NewInternalError(err)
	}

	username := strings.TrimSpace(in.Username)
	if username == "" {
		return nil, false, models.NewMissingFieldsError([]string{"username"})
	}

	user = &models.User{
		Username:   username,
		Email:      email,
		Photo:      strings.TrimSpace(in.Photo),
		LastSignIn: now,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if !errors.Is(err, repository.ErrConflict) {
			return nil, false, models.NewInternalError(err)
		}
		// A concurrent first sign-in created the user.
		user, err = s.users.TouchSignIn(ctx, email, now)
		if err != nil {
			return nil, false, mapRepoError(err, "User", email)
		}
		return user, false, nil
	}
	return user, true, nil
}

func (s *UserService) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.List(ctx)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (s *UserService) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	email = normalizeEmail(email)
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, mapRepoError(err, "User", email)
	}
	return user, nil
}

func (s *UserService) GetUserByID(ctx context.Context, id string) (*models.User, error) {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return nil, mapRepoError(err, "User", id)
	}
	return user, nil
}

// GetUser looks a user up by email when emailOrID contains "@", by id otherwise.
func (s *UserService) GetUser(ctx context.Context, emailOrID string) (*models.User, error) {
	if strings.Contains(emailOrID, "@") {
		return s.GetUserByEmail(ctx, emailOrID)
	}
	return s.GetUserByID(ctx, emailOrID)
}

// UpdateUser changes username or photo of the requester's own user.
func (s *UserService) UpdateUser(ctx context.Context, email string, in UpdateUserInput, requester *auth.Identity) (*models.User, error) {
	email = normalizeEmail(email)
	if email == "" {
		return nil, models.NewMissingFieldsError([]string{"email"})
	}
	if requester == nil || requester.Email != email {
		return nil, models.NewForbiddenError("You can only update your own profile")
	}

	var blank requiredFields
	patch := repository.UserPatch{
		Username: trimmedPtr(in.Username, "username", &blank),
	}
	if in.Photo != nil {
		photo := strings.TrimSpace(*in.Photo)
		patch.Photo = &photo
	}
	if len(blank) > 0 {
		return nil, models.NewValidationError("Fields cannot be empty: " + strings.Join(blank, ", "))
	}

	user, err := s.users.Update(ctx, email, patch)
	if err != nil {
		return nil, mapRepoError(err, "User", email)
	}
	return user, nil
}

// DeleteUser removes the requester's own user.
func (s *UserService) DeleteUser(ctx context.Context, id string, requester *auth.Identity) error {
	user, err := s.users.GetByID(ctx, id)
	if err != nil {
		return mapRepoError(err, "User", id)
	}
	if requester == nil || (!requester.Owns(user.ID) && requester.Email != user.Email) {
		return models.NewForbiddenError("You can only delete your own account")
	}
	if err := s.users.Delete(ctx, id); err != nil {
		return mapRepoError(err, "User", id)
	}
	return nil
}
