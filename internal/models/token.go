package models

import "github.com/golang-jwt/jwt/v5"

// TokenPayload is the identity carried by both access and refresh tokens.
type TokenPayload struct {
	UserID    string   `json:"userId"`
	SessionID string   `json:"sessionId"`
	FirstName string   `json:"firstName"`
	LastName  string   `json:"lastName"`
	Role      UserRole `json:"role"`
}

// Claims is the decoded form of a signed token.
type Claims struct {
	TokenPayload
	jwt.RegisteredClaims
}

// JTI returns the token identifier.
func (c *Claims) JTI() string {
	if c == nil {
		return ""
	}
	return c.ID
}
