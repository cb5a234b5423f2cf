package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/formbuilder/internal/models"
	"github.com/mmynk/formbuilder/internal/storage"
)

// DefaultMinPasswordLength is used when no minimum is configured.
const DefaultMinPasswordLength = 8

// MaxPasswordBytes is the longest input bcrypt accepts.
const MaxPasswordBytes = 72

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrWeakPassword       = errors.New("password does not meet requirements")
	ErrUsernameTaken      = errors.New("username already registered")
	ErrIncorrectPassword  = errors.New("old password is not correct")
)

// UserStorage defines the interface for user persistence operations.
// This allows the authenticator to be independent of the storage implementation.
type UserStorage interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, id int64) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	UpdatePassword(ctx context.Context, userID int64, passwordHash string) (int64, error)
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage   UserStorage
	minLength int
	cost      int
}

// Option configures a PasswordAuthenticator.
type Option func(*PasswordAuthenticator)

// WithMinLength sets the minimum accepted password length.
func WithMinLength(n int) Option {
	return func(a *PasswordAuthenticator) {
		if n > 0 {
			a.minLength = n
		}
	}
}

// WithCost sets the bcrypt cost. Tests use bcrypt.MinCost.
func WithCost(cost int) Option {
	return func(a *PasswordAuthenticator) {
		a.cost = cost
	}
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage UserStorage, opts ...Option) *PasswordAuthenticator {
	a := &PasswordAuthenticator{
		storage:   storage,
		minLength: DefaultMinPasswordLength,
		cost:      bcrypt.DefaultCost,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < a.minLength {
		return fmt.Errorf("%w: at least %d characters required", ErrWeakPassword, a.minLength)
	}
	if len(credential) > MaxPasswordBytes {
		return fmt.Errorf("%w: at most %d bytes allowed", ErrWeakPassword, MaxPasswordBytes)
	}
	return nil
}

// Register creates a new user account with a hashed password.
func (a *PasswordAuthenticator) Register(ctx context.Context, username, email, credential string, isAdmin bool) (*models.User, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, err
	}

	existing, err := a.storage.GetUserByUsername(ctx, username)
	if err == nil && existing != nil {
		return nil, ErrUsernameTaken
	}
	if err != nil && !errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	hash, err := a.hash(credential)
	if err != nil {
		return nil, err
	}

	user := models.NewUser(username, email, hash, isAdmin)
	if err := a.storage.CreateUser(ctx, user); err != nil {
		// lost a race with a concurrent registration
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrUsernameTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

// Authenticate verifies the username and password, returning the user if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, username, credential string) (*models.User, error) {
	user, err := a.storage.GetUserByUsername(ctx, username)
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return user, nil
}

// ChangePassword replaces the user's password after checking the old one.
// The returned user carries the bumped token version; tokens issued before
// the change no longer validate.
func (a *PasswordAuthenticator) ChangePassword(ctx context.Context, userID int64, oldCredential, newCredential string) (*models.User, error) {
	user, err := a.storage.GetUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldCredential)); err != nil {
		return nil, ErrIncorrectPassword
	}
	if err := a.ValidateCredential(newCredential); err != nil {
		return nil, err
	}

	hash, err := a.hash(newCredential)
	if err != nil {
		return nil, err
	}
	version, err := a.storage.UpdatePassword(ctx, user.ID, hash)
	if err != nil {
		return nil, fmt.Errorf("failed to update password: %w", err)
	}

	user.PasswordHash = hash
	user.TokenVersion = version
	return user, nil
}

func (a *PasswordAuthenticator) hash(credential string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(hashed), nil
}
