package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mmynk/formbuilder/internal/auth"
	"github.com/mmynk/formbuilder/internal/models"
	"github.com/mmynk/formbuilder/internal/storage"
)

// AuthService implements registration, login and the token lifecycle.
type AuthService struct {
	authenticator auth.Authenticator
	jwtManager    *auth.JWTManager
	verifier      *auth.Verifier
	store         AuthStore
}

// AuthStore is the storage the auth flows need.
type AuthStore interface {
	storage.UserStore
	storage.TokenStore
}

// RegisterInput is the payload of a registration request.
type RegisterInput struct {
	Username string
	Email    string
	Password string
	IsAdmin  bool
}

// LoginResult carries the issued tokens and the authenticated user.
type LoginResult struct {
	Tokens auth.TokenPair
	User   *models.User
}

// NewAuthService creates a new authentication service.
func NewAuthService(authenticator auth.Authenticator, jwtManager *auth.JWTManager, verifier *auth.Verifier, store AuthStore) *AuthService {
	return &AuthService{
		authenticator: authenticator,
		jwtManager:    jwtManager,
		verifier:      verifier,
		store:         store,
	}
}

// Register creates a new user account. The admin flag is honoured only when
// the caller is an authenticated admin; caller is nil for anonymous requests.
func (s *AuthService) Register(ctx context.Context, caller *auth.Principal, in RegisterInput) (*models.User, error) {
	slog.Info("Register request", "username", in.Username)

	if in.Username == "" || in.Password == "" {
		return nil, invalid("Username and password are required")
	}

	isAdmin := in.IsAdmin && caller != nil && caller.IsAdmin
	if in.IsAdmin && !isAdmin {
		slog.Warn("Ignoring is_admin on registration by non-admin", "username", in.Username)
	}

	user, err := s.authenticator.Register(ctx, in.Username, in.Email, in.Password, isAdmin)
	if err != nil {
		slog.Warn("Registration failed", "username", in.Username, "error", err)
		return nil, err
	}

	slog.Info("User registered successfully", "user_id", user.ID, "username", user.Username)
	return user, nil
}

// Login authenticates a user and returns an access/refresh token pair.
func (s *AuthService) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	slog.Info("Login request", "username", username)

	if username == "" || password == "" {
		return nil, invalid("Username and password are required")
	}

	user, err := s.authenticator.Authenticate(ctx, username, password)
	if err != nil {
		slog.Warn("Login failed", "username", username, "error", err)
		return nil, auth.ErrInvalidCredentials
	}

	pair, err := s.jwtManager.GeneratePair(user)
	if err != nil {
		slog.Error("Failed to generate tokens", "user_id", user.ID, "error", err)
		return nil, err
	}

	slog.Info("User logged in successfully", "user_id", user.ID, "username", user.Username)
	return &LoginResult{Tokens: pair, User: user}, nil
}

// Refresh exchanges a valid refresh token for a new access token.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if refreshToken == "" {
		return "", invalid("refresh is required")
	}
	_, user, err := s.verifier.Verify(ctx, refreshToken, auth.TokenRefresh)
	if err != nil {
		slog.Warn("Token refresh rejected", "error", err)
		return "", err
	}
	return s.jwtManager.Generate(user, auth.TokenAccess)
}

// Verify checks that token (access or refresh) is currently valid.
func (s *AuthService) Verify(ctx context.Context, token string) error {
	if token == "" {
		return invalid("token is required")
	}
	_, _, err := s.verifier.Verify(ctx, token, "")
	return err
}

// Logout revokes the caller's refresh token.
func (s *AuthService) Logout(ctx context.Context, p auth.Principal, refreshToken string) error {
	if refreshToken == "" {
		return invalid("refresh is required")
	}

	claims, _, err := s.verifier.Verify(ctx, refreshToken, auth.TokenRefresh)
	if errors.Is(err, auth.ErrTokenRevoked) {
		return invalid("Token is blacklisted")
	}
	if err != nil {
		return &Error{Kind: KindValidation, Message: "Token is invalid or expired", Err: err}
	}
	if claims.UserID != p.UserID {
		return forbidden("cannot revoke another user's token")
	}

	err = s.store.RevokeToken(ctx, &models.RevokedToken{
		JTI:       claims.ID,
		UserID:    claims.UserID,
		ExpiresAt: claims.ExpiresAt.Unix(),
	})
	if errors.Is(err, storage.ErrConflict) {
		return conflict("Token is blacklisted", err)
	}
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", err)
	}

	slog.Info("User logged out", "user_id", p.UserID, "jti", claims.ID)
	return nil
}

// ChangePassword replaces the caller's password and returns a fresh token
// pair. Every token issued before the change stops validating.
func (s *AuthService) ChangePassword(ctx context.Context, p auth.Principal, oldPassword, newPassword string) (auth.TokenPair, error) {
	if oldPassword == "" || newPassword == "" {
		return auth.TokenPair{}, invalid("old_password and new_password are required")
	}

	user, err := s.authenticator.ChangePassword(ctx, p.UserID, oldPassword, newPassword)
	if err != nil {
		slog.Warn("Password change failed", "user_id", p.UserID, "error", err)
		return auth.TokenPair{}, err
	}

	slog.Info("Password changed", "user_id", user.ID, "token_version", user.TokenVersion)
	return s.jwtManager.GeneratePair(user)
}

// CurrentUser returns the stored account of the caller.
func (s *AuthService) CurrentUser(ctx context.Context, p auth.Principal) (*models.User, error) {
	user, err := s.store.GetUser(ctx, p.UserID)
	if err != nil {
		return nil, lookupErr("User", err)
	}
	return user, nil
}
