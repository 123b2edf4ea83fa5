package helpers

import "github.com/golang-jwt/jwt/v5"

// SessionClaims is what a login mints into the access-token cookie.
type SessionClaims struct {
	Username string `json:"username"`
	UserID   string `json:"id"`
	jwt.RegisteredClaims
}

// FederatedClaims is the subset of a provider-issued identity token the
// federated login path cares about.
type FederatedClaims struct {
	Email string `json:"email,omitempty"`
	jwt.RegisteredClaims
}

func (sc *SessionClaims) IsOwner(username string) bool {
	return sc.Username == username
}
