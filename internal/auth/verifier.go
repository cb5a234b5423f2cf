package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/formbuilder/internal/models"
	"github.com/mmynk/formbuilder/internal/storage"
)

// TokenState is the store view the verifier needs.
type TokenState interface {
	GetUser(ctx context.Context, id int64) (*models.User, error)
	IsTokenRevoked(ctx context.Context, jti string) (bool, error)
}

// Verifier checks tokens beyond their signature: the jti must not be
// revoked, the user must still exist and the token version must be current.
type Verifier struct {
	jwt   *JWTManager
	state TokenState
}

// NewVerifier creates a Verifier.
func NewVerifier(jwtManager *JWTManager, state TokenState) *Verifier {
	return &Verifier{jwt: jwtManager, state: state}
}

// Verify validates tokenString as a token of type typ (empty for any) and
// returns its claims and the user it belongs to.
func (v *Verifier) Verify(ctx context.Context, tokenString string, typ TokenType) (*Claims, *models.User, error) {
	if tokenString == "" {
		return nil, nil, ErrMissingToken
	}
	claims, err := v.jwt.Validate(tokenString, typ)
	if err != nil {
		return nil, nil, err
	}

	revoked, err := v.state.IsTokenRevoked(ctx, claims.ID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to check token revocation: %w", err)
	}
	if revoked {
		return nil, nil, ErrTokenRevoked
	}

	user, err := v.state.GetUser(ctx, claims.UserID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil, fmt.Errorf("%w: unknown user", ErrInvalidToken)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load token user: %w", err)
	}
	if user.TokenVersion != claims.Version {
		return nil, nil, ErrTokenRevoked
	}

	return claims, user, nil
}
