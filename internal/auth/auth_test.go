package auth

import (
	"context"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/formbuilder/internal/models"
	"github.com/mmynk/formbuilder/internal/storage/sqlstore"
)

const testSecret = "test-secret-key-with-32-bytes!!!"

func newTestStore(t *testing.T) *sqlstore.Store {
	t.Helper()
	store, err := sqlstore.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "auth.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestJWTManager_GenerateAndValidate(t *testing.T) {
	m := NewJWTManager(testSecret, 5*time.Minute, 24*time.Hour)
	user := &models.User{ID: 42, Username: "alice", TokenVersion: 3}

	pair, err := m.GeneratePair(user)
	require.NoError(t, err)

	t.Run("access token claims", func(t *testing.T) {
		claims, err := m.Validate(pair.Access, TokenAccess)
		require.NoError(t, err)
		assert.Equal(t, int64(42), claims.UserID)
		assert.Equal(t, "alice", claims.Username)
		assert.Equal(t, TokenAccess, claims.TokenType)
		assert.Equal(t, int64(3), claims.Version)
		assert.NotEmpty(t, claims.ID)
		assert.WithinDuration(t, time.Now().Add(5*time.Minute), claims.ExpiresAt.Time, 5*time.Second)
	})

	t.Run("refresh token lives longer", func(t *testing.T) {
		claims, err := m.Validate(pair.Refresh, TokenRefresh)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().Add(24*time.Hour), claims.ExpiresAt.Time, 5*time.Second)
	})

	t.Run("any type when unspecified", func(t *testing.T) {
		_, err := m.Validate(pair.Refresh, "")
		assert.NoError(t, err)
	})

	t.Run("wrong type rejected", func(t *testing.T) {
		_, err := m.Validate(pair.Refresh, TokenAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
		_, err = m.Validate(pair.Access, TokenRefresh)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})

	t.Run("each token has its own id", func(t *testing.T) {
		a, _ := m.Validate(pair.Access, "")
		r, _ := m.Validate(pair.Refresh, "")
		assert.NotEqual(t, a.ID, r.ID)
	})
}

func TestJWTManager_Rejects(t *testing.T) {
	m := NewJWTManager(testSecret, time.Minute, time.Hour)
	user := &models.User{ID: 1, Username: "bob"}
	valid, err := m.Generate(user, TokenAccess)
	require.NoError(t, err)

	expired, err := NewJWTManager(testSecret, -time.Minute, time.Hour).Generate(user, TokenAccess)
	require.NoError(t, err)

	otherKey, err := NewJWTManager("a-completely-different-secret!!!", time.Minute, time.Hour).Generate(user, TokenAccess)
	require.NoError(t, err)

	parts := strings.Split(valid, ".")
	tampered := parts[0] + "." + parts[1] + "x." + parts[2]

	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, &Claims{UserID: 1, TokenType: TokenAccess}).
		SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	tests := map[string]string{
		"expired":     expired,
		"wrong key":   otherKey,
		"tampered":    tampered,
		"garbage":     "not-a-jwt",
		"alg none":    none,
		"empty token": "",
	}
	for name, token := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := m.Validate(token, TokenAccess)
			assert.ErrorIs(t, err, ErrInvalidToken)
		})
	}
}

func TestPasswordAuthenticator(t *testing.T) {
	store := newTestStore(t)
	a := NewPasswordAuthenticator(store, WithCost(bcrypt.MinCost))
	ctx := context.Background()

	t.Run("register and authenticate", func(t *testing.T) {
		user, err := a.Register(ctx, "alice", "alice@example.com", "password123", false)
		require.NoError(t, err)
		assert.NotZero(t, user.ID)
		assert.NotEqual(t, "password123", user.PasswordHash)

		got, err := a.Authenticate(ctx, "alice", "password123")
		require.NoError(t, err)
		assert.Equal(t, user.ID, got.ID)
	})

	t.Run("duplicate username", func(t *testing.T) {
		_, err := a.Register(ctx, "alice", "", "password123", false)
		assert.ErrorIs(t, err, ErrUsernameTaken)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := a.Register(ctx, "short", "", "1234567", false)
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("password too long for bcrypt", func(t *testing.T) {
		_, err := a.Register(ctx, "long", "", strings.Repeat("x", MaxPasswordBytes+8), false)
		assert.ErrorIs(t, err, ErrWeakPassword)
		assert.NoError(t, a.ValidateCredential(strings.Repeat("x", MaxPasswordBytes)))
	})

	t.Run("configurable minimum", func(t *testing.T) {
		strict := NewPasswordAuthenticator(store, WithCost(bcrypt.MinCost), WithMinLength(12))
		assert.ErrorIs(t, strict.ValidateCredential("password123"), ErrWeakPassword)
		assert.NoError(t, strict.ValidateCredential("password1234"))
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := a.Authenticate(ctx, "alice", "wrong-password")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})

	t.Run("unknown user", func(t *testing.T) {
		_, err := a.Authenticate(ctx, "nobody", "password123")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
	})
}

func TestPasswordAuthenticator_ChangePassword(t *testing.T) {
	store := newTestStore(t)
	a := NewPasswordAuthenticator(store, WithCost(bcrypt.MinCost))
	ctx := context.Background()

	user, err := a.Register(ctx, "carol", "", "original-pass", false)
	require.NoError(t, err)

	t.Run("incorrect old password leaves credential unchanged", func(t *testing.T) {
		_, err := a.ChangePassword(ctx, user.ID, "not-the-password", "brand-new-pass")
		assert.ErrorIs(t, err, ErrIncorrectPassword)

		stored, err := store.GetUser(ctx, user.ID)
		require.NoError(t, err)
		assert.Equal(t, user.PasswordHash, stored.PasswordHash)
		assert.Equal(t, int64(0), stored.TokenVersion)

		_, err = a.Authenticate(ctx, "carol", "original-pass")
		assert.NoError(t, err)
	})

	t.Run("weak new password", func(t *testing.T) {
		_, err := a.ChangePassword(ctx, user.ID, "original-pass", "short")
		assert.ErrorIs(t, err, ErrWeakPassword)
	})

	t.Run("success bumps token version", func(t *testing.T) {
		updated, err := a.ChangePassword(ctx, user.ID, "original-pass", "brand-new-pass")
		require.NoError(t, err)
		assert.Equal(t, int64(1), updated.TokenVersion)

		_, err = a.Authenticate(ctx, "carol", "original-pass")
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		_, err = a.Authenticate(ctx, "carol", "brand-new-pass")
		assert.NoError(t, err)
	})
}

func TestVerifier(t *testing.T) {
	store := newTestStore(t)
	a := NewPasswordAuthenticator(store, WithCost(bcrypt.MinCost))
	m := NewJWTManager(testSecret, time.Minute, time.Hour)
	v := NewVerifier(m, store)
	ctx := context.Background()

	user, err := a.Register(ctx, "dave", "", "password123", true)
	require.NoError(t, err)
	pair, err := m.GeneratePair(user)
	require.NoError(t, err)

	t.Run("valid access token", func(t *testing.T) {
		claims, got, err := v.Verify(ctx, pair.Access, TokenAccess)
		require.NoError(t, err)
		assert.Equal(t, user.ID, claims.UserID)
		assert.Equal(t, Principal{UserID: user.ID, Username: "dave", IsAdmin: true}, PrincipalFor(got))
	})

	t.Run("missing token", func(t *testing.T) {
		_, _, err := v.Verify(ctx, "", TokenAccess)
		assert.ErrorIs(t, err, ErrMissingToken)
	})

	t.Run("revoked refresh token", func(t *testing.T) {
		claims, err := m.Validate(pair.Refresh, TokenRefresh)
		require.NoError(t, err)
		require.NoError(t, store.RevokeToken(ctx, &models.RevokedToken{JTI: claims.ID, UserID: user.ID, ExpiresAt: claims.ExpiresAt.Unix()}))

		_, _, err = v.Verify(ctx, pair.Refresh, TokenRefresh)
		assert.ErrorIs(t, err, ErrTokenRevoked)
	})

	t.Run("password change invalidates earlier tokens", func(t *testing.T) {
		updated, err := a.ChangePassword(ctx, user.ID, "password123", "password456")
		require.NoError(t, err)

		_, _, err = v.Verify(ctx, pair.Access, TokenAccess)
		assert.ErrorIs(t, err, ErrTokenRevoked)

		fresh, err := m.Generate(updated, TokenAccess)
		require.NoError(t, err)
		_, _, err = v.Verify(ctx, fresh, TokenAccess)
		assert.NoError(t, err)
	})

	t.Run("unknown user", func(t *testing.T) {
		ghost, err := m.Generate(&models.User{ID: 999, Username: "ghost"}, TokenAccess)
		require.NoError(t, err)
		_, _, err = v.Verify(ctx, ghost, TokenAccess)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

func TestPrincipal_Owns(t *testing.T) {
	assert.True(t, Principal{UserID: 1}.Owns(1))
	assert.False(t, Principal{UserID: 1}.Owns(2))
	assert.True(t, Principal{UserID: 1, IsAdmin: true}.Owns(2))
}
