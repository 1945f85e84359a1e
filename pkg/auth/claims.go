package auth

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/closingdesk/commission-backend/pkg/enums"
)

// AccessTokenPayload captures the data available when minting a JWT.
type AccessTokenPayload struct {
	UserID   uuid.UUID
	Email    string
	FullName string
	Role     enums.UserRole
	JTI      string
}

// UserMetadata mirrors the user_metadata object Supabase embeds in its tokens.
type UserMetadata struct {
	FullName string `json:"full_name,omitempty"`
}

// AppMetadata mirrors the server-controlled app_metadata object.
type AppMetadata struct {
	Role enums.UserRole `json:"role,omitempty"`
}

// AccessTokenClaims represents the Supabase-issued JWT presented by dashboard users.
type AccessTokenClaims struct {
	Email        string       `json:"email,omitempty"`
	UserMetadata UserMetadata `json:"user_metadata"`
	AppMetadata  AppMetadata  `json:"app_metadata"`
	jwt.RegisteredClaims
}

// UserID parses the subject claim.
func (c *AccessTokenClaims) UserID() (uuid.UUID, error) {
	return uuid.Parse(c.Subject)
}

// ActorName is the display name recorded on audit entries.
func (c *AccessTokenClaims) ActorName() string {
	if name := strings.TrimSpace(c.UserMetadata.FullName); name != "" {
		return name
	}
	if email := strings.TrimSpace(c.Email); email != "" {
		return email
	}
	return c.Subject
}

// Role returns the dashboard role, defaulting unknown values to agent.
func (c *AccessTokenClaims) Role() enums.UserRole {
	if c.AppMetadata.Role.IsValid() {
		return c.AppMetadata.Role
	}
	return enums.UserRoleAgent
}
