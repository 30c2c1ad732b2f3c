package model

import "time"

// User is the relational record and the system of record for application
// identity. Password stays empty whenever the account is linked to the
// identity provider; credential material lives only there.
type User struct {
	ID          string
	Email       string
	Nickname    *string
	Password    *string
	IdentityUID *string
	GoogleID    *string
	Avatar      *string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RefreshToken is one issued refresh-token generation. Only the salted hash
// of the signed token is stored, never the raw value.
type RefreshToken struct {
	ID        string
	UserID    string
	TokenHash string
	UserAgent *string
	IPAddress *string
	DeviceID  *string
	ExpiresAt time.Time
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// TokenMetadata carries optional client information recorded with a
// refresh-token generation.
type TokenMetadata struct {
	UserAgent string
	IPAddress string
	DeviceID  string
}

// ExternalIdentity is the normalized result of verifying a third-party
// sign-in assertion. It is never persisted as-is.
type ExternalIdentity struct {
	Subject       string
	Email         string
	EmailVerified bool
	Nickname      string
	Avatar        string
}

// AuthUser is the identity carried by a verified access token.
type AuthUser struct {
	ID    string
	Email string
}

type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Nickname string `json:"nickname,omitempty"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// GoogleAuthRequest carries either a Google ID token (credential) or an
// authorization code to be exchanged server-side.
type GoogleAuthRequest struct {
	Credential string `json:"credential,omitempty"`
	Code       string `json:"code,omitempty"`
}

type RefreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type SendPasswordResetRequest struct {
	Email string `json:"email"`
}

type ChangePasswordRequest struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

type UserResponse struct {
	ID       string `json:"id"`
	Email    string `json:"email"`
	Nickname string `json:"nickname,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
	GoogleID string `json:"googleId,omitempty"`
}

type AuthResponse struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	User         UserResponse `json:"user"`
}

type TokenPairResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

// NewUserResponse flattens the optional profile fields for the wire format.
func NewUserResponse(u *User) UserResponse {
	resp := UserResponse{
		ID:    u.ID,
		Email: u.Email,
	}
	if u.Nickname != nil {
		resp.Nickname = *u.Nickname
	}
	if u.Avatar != nil {
		resp.Avatar = *u.Avatar
	}
	if u.GoogleID != nil {
		resp.GoogleID = *u.GoogleID
	}
	return resp
}
