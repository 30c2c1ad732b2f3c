package service

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/authlink/backend/internal/client"
	"github.com/authlink/backend/internal/db"
	"github.com/authlink/backend/internal/model"
)

var (
	ErrInvalidCredentials   = errors.New("invalid credentials")
	ErrUserAlreadyExists    = errors.New("user already exists")
	ErrUserNotFound         = errors.New("user not found")
	ErrInvalidRefreshToken  = errors.New("invalid refresh token")
	ErrTokenRefreshFailed   = errors.New("token refresh failed")
	ErrExternalAuthFailed   = errors.New("external authentication failed")
	ErrUnauthorized         = errors.New("unauthorized")
	ErrBadRequest           = errors.New("bad request")
	ErrChangePasswordFailed = fmt.Errorf("%w: failed to change password", ErrBadRequest)
)

const logoutMessage = "Logged out successfully"

const (
	resetGenericMessage = "If a user with this email exists, a password reset email has been sent"
	resetGoogleMessage  = "Google users cannot reset their password. Please use Google to sign in."
)

type UserRepo interface {
	CreateUser(ctx context.Context, params db.NewUserParams) (*model.User, error)
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, userID string) (*model.User, error)
	GetUserByEmailOrGoogleID(ctx context.Context, email, googleID string) (*model.User, error)
	SetIdentityUID(ctx context.Context, userID, identityUID string) (*model.User, error)
	LinkGoogleAccount(ctx context.Context, userID, googleID string, avatar *string) (*model.User, error)
}

// IdentityProvider is the external credential vault. Passwords live there and
// only there.
type IdentityProvider interface {
	CreateUser(ctx context.Context, email, password, displayName string) (string, error)
	CreateUserWithoutPassword(ctx context.Context, email, displayName, avatarURL string) (string, error)
	UserExists(ctx context.Context, email string) (bool, error)
	GetUserByEmail(ctx context.Context, email string) (*client.IdentityUser, error)
	DeleteUser(ctx context.Context, uid string) error
	VerifyPassword(ctx context.Context, email, password string) (bool, error)
	VerifyPasswordAndGetUser(ctx context.Context, email, password string) (*client.IdentityUser, error)
	SendPasswordResetEmail(ctx context.Context, email string) error
	UpdatePassword(ctx context.Context, uid, newPassword string) error
}

type CredentialVerifier interface {
	Verify(ctx context.Context, rawIDToken string) (*model.ExternalIdentity, error)
	Exchange(ctx context.Context, code string) (*model.ExternalIdentity, error)
}

// AuthService orchestrates the relational user store, the identity provider
// and the token components. It is the only place allowed to touch more than
// one external system in a single operation.
type AuthService struct {
	users         UserRepo
	identity      IdentityProvider
	verifier      CredentialVerifier
	tokens        *TokenService
	refreshTokens *RefreshTokenService
}

func NewAuthService(
	users UserRepo,
	identity IdentityProvider,
	verifier CredentialVerifier,
	tokens *TokenService,
	refreshTokens *RefreshTokenService,
) *AuthService {
	return &AuthService{
		users:         users,
		identity:      identity,
		verifier:      verifier,
		tokens:        tokens,
		refreshTokens: refreshTokens,
	}
}

// Register provisions the provider account first, then the relational row.
// There is no distributed transaction: when the row insert fails the orphaned
// provider account is deleted best-effort and the original error surfaces.
func (s *AuthService) Register(ctx context.Context, req model.RegisterRequest, metadata *model.TokenMetadata) (*model.AuthResponse, error) {
	_, err := s.users.GetUserByEmail(ctx, req.Email)
	if err == nil {
		return nil, ErrUserAlreadyExists
	}
	if !db.IsNoRows(err) {
		return nil, err
	}

	identityUID, err := s.identity.CreateUser(ctx, req.Email, req.Password, req.Nickname)
	if err != nil {
		return nil, err
	}

	user, err := s.users.CreateUser(ctx, db.NewUserParams{
		Email:       req.Email,
		Nickname:    optional(req.Nickname),
		IdentityUID: &identityUID,
	})
	if err != nil {
		// Compensating action. Its failure is logged, never raised: the
		// caller gets the original error either way.
		if delErr := s.identity.DeleteUser(ctx, identityUID); delErr != nil {
			log.Printf("Failed to clean up orphaned identity account %s: %v", identityUID, delErr)
		}
		return nil, err
	}

	return s.mintAuthResponse(ctx, user, metadata)
}

// Login verifies the password at the provider, never locally. The relational
// row is lazily provisioned on first login and the provider link backfilled
// when missing.
func (s *AuthService) Login(ctx context.Context, req model.LoginRequest, metadata *model.TokenMetadata) (*model.AuthResponse, error) {
	identityUser, err := s.identity.VerifyPasswordAndGetUser(ctx, req.Email, req.Password)
	if err != nil {
		log.Printf("Identity provider rejected login for request: %v", err)
		return nil, ErrInvalidCredentials
	}
	if identityUser == nil {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.GetUserByEmail(ctx, req.Email)
	if err != nil {
		if !db.IsNoRows(err) {
			return nil, err
		}
		user, err = s.users.CreateUser(ctx, db.NewUserParams{
			Email:       req.Email,
			IdentityUID: &identityUser.UID,
		})
		if err != nil {
			return nil, err
		}
	} else if user.IdentityUID == nil {
		user, err = s.users.SetIdentityUID(ctx, user.ID, identityUser.UID)
		if err != nil {
			return nil, err
		}
	}

	return s.mintAuthResponse(ctx, user, metadata)
}

// GoogleSignIn verifies the assertion and links or provisions the account.
// Every failure collapses to the same generic error so no partial state
// leaks to the caller.
func (s *AuthService) GoogleSignIn(ctx context.Context, req model.GoogleAuthRequest, metadata *model.TokenMetadata) (*model.AuthResponse, error) {
	resp, err := s.googleSignIn(ctx, req, metadata)
	if err != nil {
		log.Printf("Google sign-in failed: %v", err)
		return nil, ErrExternalAuthFailed
	}
	return resp, nil
}

func (s *AuthService) googleSignIn(ctx context.Context, req model.GoogleAuthRequest, metadata *model.TokenMetadata) (*model.AuthResponse, error) {
	var identity *model.ExternalIdentity
	var err error
	if req.Credential != "" {
		identity, err = s.verifier.Verify(ctx, req.Credential)
	} else {
		identity, err = s.verifier.Exchange(ctx, req.Code)
	}
	if err != nil {
		return nil, err
	}

	// Either the email or a previously linked subject may match: an account
	// registered with a password merges onto the same row when its owner
	// later signs in with Google.
	user, err := s.users.GetUserByEmailOrGoogleID(ctx, identity.Email, identity.Subject)
	if err != nil && !db.IsNoRows(err) {
		return nil, err
	}

	if user != nil {
		user, err = s.users.LinkGoogleAccount(ctx, user.ID, identity.Subject, optional(identity.Avatar))
		if err != nil {
			return nil, err
		}
	} else {
		user, err = s.provisionGoogleUser(ctx, identity)
		if err != nil {
			return nil, err
		}
	}

	return s.mintAuthResponse(ctx, user, metadata)
}

// provisionGoogleUser creates the relational row for a first-time federated
// sign-in. Provider provisioning is best-effort: sign-in proceeds without a
// provider link rather than failing.
func (s *AuthService) provisionGoogleUser(ctx context.Context, identity *model.ExternalIdentity) (*model.User, error) {
	var identityUID *string

	exists, err := s.identity.UserExists(ctx, identity.Email)
	if err != nil {
		log.Printf("Failed to check identity provider for federated user: %v", err)
	} else if exists {
		identityUser, err := s.identity.GetUserByEmail(ctx, identity.Email)
		if err != nil {
			log.Printf("Failed to load existing identity account: %v", err)
		} else {
			identityUID = &identityUser.UID
		}
	} else {
		uid, err := s.identity.CreateUserWithoutPassword(ctx, identity.Email, identity.Nickname, identity.Avatar)
		if err != nil {
			log.Printf("Failed to provision identity account for federated user: %v", err)
		} else {
			identityUID = &uid
		}
	}

	return s.users.CreateUser(ctx, db.NewUserParams{
		Email:       identity.Email,
		Nickname:    optional(identity.Nickname),
		GoogleID:    &identity.Subject,
		Avatar:      optional(identity.Avatar),
		IdentityUID: identityUID,
	})
}

// Refresh rotates the presented token: the old generation is revoked before
// the replacement exists, so two concurrent refreshes of one token cannot
// both succeed.
func (s *AuthService) Refresh(ctx context.Context, rawToken string, metadata *model.TokenMetadata) (*model.TokenPairResponse, error) {
	validation, err := s.refreshTokens.Validate(ctx, rawToken)
	if err != nil {
		return nil, ErrTokenRefreshFailed
	}
	if !validation.Valid {
		log.Printf("Refresh token rejected: %s", validation.Reason)
		return nil, ErrInvalidRefreshToken
	}

	user, err := s.users.GetUserByID(ctx, validation.UserID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, ErrTokenRefreshFailed
	}

	newRaw, record, err := s.refreshTokens.Rotate(ctx, validation.Token.ID, user.ID, metadata)
	if err != nil {
		return nil, ErrTokenRefreshFailed
	}
	if record == nil {
		// Another rotation won the revoke race.
		return nil, ErrInvalidRefreshToken
	}

	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, ErrTokenRefreshFailed
	}

	return &model.TokenPairResponse{
		AccessToken:  accessToken,
		RefreshToken: newRaw,
	}, nil
}

// Logout revokes the presented token when it is valid and reports success
// either way, so the endpoint reveals nothing about token validity.
func (s *AuthService) Logout(ctx context.Context, rawToken string) *model.MessageResponse {
	validation, err := s.refreshTokens.Validate(ctx, rawToken)
	if err != nil {
		log.Printf("Logout token validation failed: %v", err)
		return &model.MessageResponse{Message: logoutMessage}
	}

	if validation.Valid {
		if _, err := s.refreshTokens.Revoke(ctx, validation.Token.ID); err != nil {
			log.Printf("Failed to revoke refresh token on logout: %v", err)
		}
	}

	return &model.MessageResponse{Message: logoutMessage}
}

// SendPasswordReset answers with the generic message for unknown emails,
// provider failures and successful sends alike, so the response never reveals
// whether an account exists. Only a federated-only account gets a distinct
// instructive message.
func (s *AuthService) SendPasswordReset(ctx context.Context, email string) *model.MessageResponse {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if !db.IsNoRows(err) {
			log.Printf("Failed to look up user for password reset: %v", err)
		}
		return &model.MessageResponse{Message: resetGenericMessage}
	}

	if user.Password == nil && user.GoogleID != nil {
		return &model.MessageResponse{Message: resetGoogleMessage}
	}

	if err := s.identity.SendPasswordResetEmail(ctx, email); err != nil {
		log.Printf("Failed to send password reset email: %v", err)
	}

	return &model.MessageResponse{Message: resetGenericMessage}
}

// ChangePassword verifies the current password at the provider and updates
// it there only. The relational row holds no password for a linked account.
func (s *AuthService) ChangePassword(ctx context.Context, userID string, req model.ChangePasswordRequest) (*model.MessageResponse, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUnauthorized
		}
		return nil, err
	}

	if user.IdentityUID == nil {
		return nil, fmt.Errorf("%w: user not linked to identity provider", ErrBadRequest)
	}

	valid, err := s.identity.VerifyPassword(ctx, user.Email, req.CurrentPassword)
	if err != nil {
		return nil, err
	}
	if !valid {
		return nil, ErrUnauthorized
	}

	if err := s.identity.UpdatePassword(ctx, *user.IdentityUID, req.NewPassword); err != nil {
		log.Printf("Failed to update password at identity provider: %v", err)
		return nil, ErrChangePasswordFailed
	}

	// Existing sessions were minted under the old password; cut them all.
	if _, err := s.refreshTokens.RevokeAll(ctx, user.ID); err != nil {
		log.Printf("Failed to revoke sessions after password change: %v", err)
	}

	return &model.MessageResponse{Message: "Password changed successfully"}, nil
}

// GetUser loads the relational record behind an access token subject.
func (s *AuthService) GetUser(ctx context.Context, userID string) (*model.User, error) {
	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		if db.IsNoRows(err) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

// ParseAccessToken verifies a bearer token and returns the authenticated
// identity for middleware use.
func (s *AuthService) ParseAccessToken(tokenStr string) (*model.AuthUser, error) {
	claims, err := s.tokens.VerifyAccessToken(tokenStr)
	if err != nil {
		return nil, ErrUnauthorized
	}
	return &model.AuthUser{
		ID:    claims.Subject,
		Email: claims.Email,
	}, nil
}

func (s *AuthService) mintAuthResponse(ctx context.Context, user *model.User, metadata *model.TokenMetadata) (*model.AuthResponse, error) {
	accessToken, err := s.tokens.IssueAccessToken(user.ID, user.Email)
	if err != nil {
		return nil, err
	}

	refreshToken, _, err := s.refreshTokens.Create(ctx, user.ID, metadata)
	if err != nil {
		return nil, err
	}

	return &model.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         model.NewUserResponse(user),
	}, nil
}
