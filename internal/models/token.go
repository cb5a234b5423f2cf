package models

// RevokedToken records a refresh token that was invalidated by logout.
// Rows can be pruned once ExpiresAt has passed.
type RevokedToken struct {
	// JTI is the token's unique ID claim.
	JTI       string
	UserID    int64
	ExpiresAt int64
	RevokedAt int64
}
