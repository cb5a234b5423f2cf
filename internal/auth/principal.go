package auth

import "github.com/mmynk/formbuilder/internal/models"

// Principal identifies the caller of a request. It is resolved once by the
// auth middleware and handed to handlers and services as an argument.
type Principal struct {
	UserID   int64
	Username string
	IsAdmin  bool
}

// PrincipalFor builds the principal of a stored user.
func PrincipalFor(user *models.User) Principal {
	return Principal{UserID: user.ID, Username: user.Username, IsAdmin: user.IsAdmin}
}

// Owns reports whether the principal may act on a resource owned by ownerID.
// Admins own everything.
func (p Principal) Owns(ownerID int64) bool {
	return p.IsAdmin || p.UserID == ownerID
}
