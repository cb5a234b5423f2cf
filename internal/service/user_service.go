package service

import (
	"context"
	"errors"
	"log/slog"

	"github.com/mmynk/formbuilder/internal/auth"
	"github.com/mmynk/formbuilder/internal/models"
	"github.com/mmynk/formbuilder/internal/storage"
)

// UserService implements admin-only user management.
type UserService struct {
	store         storage.UserStore
	authenticator auth.Authenticator
}

// UserInput carries user fields; nil means "not provided".
type UserInput struct {
	Username *string
	Email    *string
	Password *string
	IsAdmin  *bool
}

// NewUserService creates a new UserService.
func NewUserService(store storage.UserStore, authenticator auth.Authenticator) *UserService {
	return &UserService{store: store, authenticator: authenticator}
}

func requireAdmin(p auth.Principal) error {
	if !p.IsAdmin {
		return forbidden("admin privileges required")
	}
	return nil
}

// ListUsers returns every account.
func (s *UserService) ListUsers(ctx context.Context, p auth.Principal) ([]*models.User, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	return s.store.ListUsers(ctx)
}

// GetUser returns one account.
func (s *UserService) GetUser(ctx context.Context, p auth.Principal, id int64) (*models.User, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, lookupErr("User", err)
	}
	return user, nil
}

// CreateUser creates an account on behalf of an admin.
func (s *UserService) CreateUser(ctx context.Context, p auth.Principal, in UserInput) (*models.User, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if in.Username == nil || *in.Username == "" || in.Password == nil || *in.Password == "" {
		return nil, invalid("Username and password are required")
	}

	var email string
	if in.Email != nil {
		email = *in.Email
	}
	isAdmin := in.IsAdmin != nil && *in.IsAdmin

	user, err := s.authenticator.Register(ctx, *in.Username, email, *in.Password, isAdmin)
	if err != nil {
		return nil, err
	}
	slog.Info("User created by admin", "user_id", user.ID, "admin_id", p.UserID)
	return user, nil
}

// UpdateUser changes username, email and admin flag. Passwords are changed
// through the change-password flow only.
func (s *UserService) UpdateUser(ctx context.Context, p auth.Principal, id int64, in UserInput, partial bool) (*models.User, error) {
	if err := requireAdmin(p); err != nil {
		return nil, err
	}
	if in.Password != nil {
		return nil, invalid("password cannot be set here; use change-password")
	}
	if !partial && (in.Username == nil || in.Email == nil || in.IsAdmin == nil) {
		return nil, invalid("username, email and is_admin are required")
	}

	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, lookupErr("User", err)
	}
	if in.Username != nil {
		if *in.Username == "" {
			return nil, invalid("username must not be empty")
		}
		user.Username = *in.Username
	}
	if in.Email != nil {
		user.Email = *in.Email
	}
	if in.IsAdmin != nil {
		if user.ID == p.UserID && !*in.IsAdmin {
			return nil, invalid("admins cannot revoke their own admin flag")
		}
		user.IsAdmin = *in.IsAdmin
	}

	if err := s.store.UpdateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, conflict(auth.ErrUsernameTaken.Error(), auth.ErrUsernameTaken)
		}
		return nil, err
	}
	slog.Info("User updated by admin", "user_id", user.ID, "admin_id", p.UserID)
	return user, nil
}
