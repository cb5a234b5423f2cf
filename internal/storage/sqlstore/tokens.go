package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/mmynk/formbuilder/internal/models"
)

// RevokeToken records a refresh token's jti as revoked.
func (s *Store) RevokeToken(ctx context.Context, token *models.RevokedToken) error {
	if token.RevokedAt == 0 {
		token.RevokedAt = time.Now().Unix()
	}
	_, err := s.db.ExecContext(ctx, s.rebind(`
		INSERT INTO revoked_tokens (jti, user_id, expires_at, revoked_at)
		VALUES (?, ?, ?, ?)`),
		token.JTI, token.UserID, token.ExpiresAt, token.RevokedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to revoke token: %w", mapConstraint(err))
	}
	return nil
}

// IsTokenRevoked reports whether the jti has been revoked.
func (s *Store) IsTokenRevoked(ctx context.Context, jti string) (bool, error) {
	var n int
	err := s.db.QueryRowContext(ctx, s.rebind(`SELECT COUNT(*) FROM revoked_tokens WHERE jti = ?`), jti).Scan(&n)
	if err != nil {
		return false, fmt.Errorf("failed to check revoked token: %w", err)
	}
	return n > 0, nil
}

// PruneRevokedTokens deletes revocation rows for tokens that expired before
// the given time. Those tokens fail validation on expiry alone.
func (s *Store) PruneRevokedTokens(ctx context.Context, before int64) (int64, error) {
	res, err := s.db.ExecContext(ctx, s.rebind(`DELETE FROM revoked_tokens WHERE expires_at < ?`), before)
	if err != nil {
		return 0, fmt.Errorf("failed to prune revoked tokens: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to prune revoked tokens: %w", err)
	}
	return n, nil
}
