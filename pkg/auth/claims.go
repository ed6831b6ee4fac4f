package auth

import (
	"github.com/golang-jwt/jwt/v5"
)

// OperatorClaims is the typed JWT presented by the back-office client.
// Tokens are minted by the external identity service; this backend only
// verifies them.
type OperatorClaims struct {
	Name string `json:"name,omitempty"`
	jwt.RegisteredClaims
}

// OperatorID returns the subject claim, the identity service's operator id.
func (c *OperatorClaims) OperatorID() string {
	return c.Subject
}
