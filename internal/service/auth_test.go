package service

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/authlink/backend/internal/client"
	"github.com/authlink/backend/internal/db"
	"github.com/authlink/backend/internal/model"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type fakeUserRepo struct {
	users     map[string]*model.User
	createErr error
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[string]*model.User)}
}

func (f *fakeUserRepo) CreateUser(ctx context.Context, params db.NewUserParams) (*model.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	user := &model.User{
		ID:          uuid.NewString(),
		Email:       params.Email,
		Nickname:    params.Nickname,
		IdentityUID: params.IdentityUID,
		GoogleID:    params.GoogleID,
		Avatar:      params.Avatar,
		IsActive:    true,
	}
	f.users[user.ID] = user
	return user, nil
}

func (f *fakeUserRepo) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	return user, nil
}

func (f *fakeUserRepo) GetUserByEmailOrGoogleID(ctx context.Context, email, googleID string) (*model.User, error) {
	for _, user := range f.users {
		if user.Email == email {
			return user, nil
		}
		if user.GoogleID != nil && *user.GoogleID == googleID {
			return user, nil
		}
	}
	return nil, pgx.ErrNoRows
}

func (f *fakeUserRepo) SetIdentityUID(ctx context.Context, userID, identityUID string) (*model.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user.IdentityUID = &identityUID
	return user, nil
}

func (f *fakeUserRepo) LinkGoogleAccount(ctx context.Context, userID, googleID string, avatar *string) (*model.User, error) {
	user, ok := f.users[userID]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	user.GoogleID = &googleID
	if avatar != nil {
		user.Avatar = avatar
	}
	return user, nil
}

type identityAccount struct {
	email    string
	password string
	name     string
}

type fakeIdentityProvider struct {
	accounts map[string]*identityAccount

	createErr         error
	existsErr         error
	sendResetErr      error
	updatePasswordErr error

	deletedUIDs []string
	resetEmails []string
}

func newFakeIdentityProvider() *fakeIdentityProvider {
	return &fakeIdentityProvider{accounts: make(map[string]*identityAccount)}
}

func (f *fakeIdentityProvider) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	uid := "idp-" + uuid.NewString()
	f.accounts[uid] = &identityAccount{email: email, password: password, name: displayName}
	return uid, nil
}

func (f *fakeIdentityProvider) CreateUserWithoutPassword(ctx context.Context, email, displayName, avatarURL string) (string, error) {
	if f.createErr != nil {
		return "", f.createErr
	}
	uid := "idp-" + uuid.NewString()
	f.accounts[uid] = &identityAccount{email: email, name: displayName}
	return uid, nil
}

func (f *fakeIdentityProvider) UserExists(ctx context.Context, email string) (bool, error) {
	if f.existsErr != nil {
		return false, f.existsErr
	}
	for _, account := range f.accounts {
		if account.email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeIdentityProvider) GetUserByEmail(ctx context.Context, email string) (*client.IdentityUser, error) {
	for uid, account := range f.accounts {
		if account.email == email {
			return &client.IdentityUser{UID: uid, Email: email, DisplayName: account.name}, nil
		}
	}
	return nil, client.ErrIdentityUserNotFound
}

func (f *fakeIdentityProvider) DeleteUser(ctx context.Context, uid string) error {
	f.deletedUIDs = append(f.deletedUIDs, uid)
	delete(f.accounts, uid)
	return nil
}

func (f *fakeIdentityProvider) VerifyPassword(ctx context.Context, email, password string) (bool, error) {
	user, err := f.VerifyPasswordAndGetUser(ctx, email, password)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

func (f *fakeIdentityProvider) VerifyPasswordAndGetUser(ctx context.Context, email, password string) (*client.IdentityUser, error) {
	for uid, account := range f.accounts {
		if account.email == email && account.password == password && password != "" {
			return &client.IdentityUser{UID: uid, Email: email, DisplayName: account.name}, nil
		}
	}
	return nil, nil
}

func (f *fakeIdentityProvider) SendPasswordResetEmail(ctx context.Context, email string) error {
	if f.sendResetErr != nil {
		return f.sendResetErr
	}
	f.resetEmails = append(f.resetEmails, email)
	return nil
}

func (f *fakeIdentityProvider) UpdatePassword(ctx context.Context, uid, newPassword string) error {
	if f.updatePasswordErr != nil {
		return f.updatePasswordErr
	}
	if account, ok := f.accounts[uid]; ok {
		account.password = newPassword
	}
	return nil
}

type fakeVerifier struct {
	identity *model.ExternalIdentity
	err      error
}

func (f *fakeVerifier) Verify(ctx context.Context, rawIDToken string) (*model.ExternalIdentity, error) {
	return f.identity, f.err
}

func (f *fakeVerifier) Exchange(ctx context.Context, code string) (*model.ExternalIdentity, error) {
	return f.identity, f.err
}

type authFixture struct {
	svc      *AuthService
	users    *fakeUserRepo
	identity *fakeIdentityProvider
	verifier *fakeVerifier
}

func newAuthFixture(t *testing.T) *authFixture {
	t.Helper()
	tokens := newTestTokenService(t, "15m", "720h")
	users := newFakeUserRepo()
	identity := newFakeIdentityProvider()
	verifier := &fakeVerifier{}
	refreshTokens := NewRefreshTokenService(newFakeRefreshTokenRepo(), tokens)
	return &authFixture{
		svc:      NewAuthService(users, identity, verifier, tokens, refreshTokens),
		users:    users,
		identity: identity,
		verifier: verifier,
	}
}

func TestRegisterCreatesLinkedUser(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	resp, err := fx.svc.Register(ctx, model.RegisterRequest{
		Email:    "alice@example.com",
		Password: "secret123",
		Nickname: "Alice",
	}, nil)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}
	if resp.AccessToken == "" || resp.RefreshToken == "" {
		t.Fatal("Register() returned an incomplete token pair")
	}
	if resp.User.Email != "alice@example.com" || resp.User.Nickname != "Alice" {
		t.Errorf("user response = %+v", resp.User)
	}

	user, err := fx.users.GetUserByEmail(ctx, "alice@example.com")
	if err != nil {
		t.Fatalf("user row missing: %v", err)
	}
	if user.Password != nil {
		t.Error("local row must not hold a password")
	}
	if user.IdentityUID == nil {
		t.Fatal("user row not linked to the identity provider")
	}
	if _, ok := fx.identity.accounts[*user.IdentityUID]; !ok {
		t.Error("identity provider account missing")
	}

	authUser, err := fx.svc.ParseAccessToken(resp.AccessToken)
	if err != nil {
		t.Fatalf("ParseAccessToken() error = %v", err)
	}
	if authUser.ID != user.ID {
		t.Errorf("token subject = %q, want %q", authUser.ID, user.ID)
	}
}

func TestRegisterRejectsDuplicateEmail(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	req := model.RegisterRequest{Email: "alice@example.com", Password: "secret123"}
	if _, err := fx.svc.Register(ctx, req, nil); err != nil {
		t.Fatalf("first Register() error = %v", err)
	}

	if _, err := fx.svc.Register(ctx, req, nil); !errors.Is(err, ErrUserAlreadyExists) {
		t.Fatalf("second Register() error = %v, want ErrUserAlreadyExists", err)
	}
	if len(fx.identity.accounts) != 1 {
		t.Errorf("provider accounts = %d, want 1", len(fx.identity.accounts))
	}
}

func TestRegisterCleansUpOrphanedProviderAccount(t *testing.T) {
	fx := newAuthFixture(t)
	rowErr := fmt.Errorf("insert failed")
	fx.users.createErr = rowErr

	_, err := fx.svc.Register(context.Background(), model.RegisterRequest{
		Email:    "alice@example.com",
		Password: "secret123",
	}, nil)
	if !errors.Is(err, rowErr) {
		t.Fatalf("Register() error = %v, want the row insert error", err)
	}
	if len(fx.identity.deletedUIDs) != 1 {
		t.Fatalf("deleted provider accounts = %d, want 1", len(fx.identity.deletedUIDs))
	}
	if len(fx.identity.accounts) != 0 {
		t.Error("orphaned provider account survived")
	}
}

func TestLoginRejectsBadCredentialsUniformly(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	if _, err := fx.svc.Register(ctx, model.RegisterRequest{Email: "alice@example.com", Password: "secret123"}, nil); err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	tests := []model.LoginRequest{
		{Email: "alice@example.com", Password: "wrong"},
		{Email: "nobody@example.com", Password: "secret123"},
	}
	for _, req := range tests {
		if _, err := fx.svc.Login(ctx, req, nil); !errors.Is(err, ErrInvalidCredentials) {
			t.Errorf("Login(%s) error = %v, want ErrInvalidCredentials", req.Email, err)
		}
	}
}

func TestLoginProvisionsMissingRow(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	// Account exists only at the provider, as after a partial migration.
	if _, err := fx.identity.CreateUser(ctx, "bob@example.com", "secret123", "Bob"); err != nil {
		t.Fatalf("seed provider account: %v", err)
	}

	resp, err := fx.svc.Login(ctx, model.LoginRequest{Email: "bob@example.com", Password: "secret123"}, nil)
	if err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	user, err := fx.users.GetUserByEmail(ctx, "bob@example.com")
	if err != nil {
		t.Fatalf("row was not provisioned: %v", err)
	}
	if user.IdentityUID == nil {
		t.Error("provisioned row not linked to the provider")
	}
	if resp.User.ID != user.ID {
		t.Errorf("response user id = %q, want %q", resp.User.ID, user.ID)
	}
}

func TestLoginBackfillsProviderLink(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	uid, err := fx.identity.CreateUser(ctx, "bob@example.com", "secret123", "Bob")
	if err != nil {
		t.Fatalf("seed provider account: %v", err)
	}
	seeded, err := fx.users.CreateUser(ctx, db.NewUserParams{Email: "bob@example.com"})
	if err != nil {
		t.Fatalf("seed user row: %v", err)
	}

	if _, err := fx.svc.Login(ctx, model.LoginRequest{Email: "bob@example.com", Password: "secret123"}, nil); err != nil {
		t.Fatalf("Login() error = %v", err)
	}

	user := fx.users.users[seeded.ID]
	if user.IdentityUID == nil || *user.IdentityUID != uid {
		t.Fatalf("identity uid = %v, want %q", user.IdentityUID, uid)
	}
}

func TestGoogleSignInMergesOntoExistingAccount(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	registered, err := fx.svc.Register(ctx, model.RegisterRequest{
		Email:    "alice@example.com",
		Password: "secret123",
		Nickname: "Alice",
	}, nil)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	fx.verifier.identity = &model.ExternalIdentity{
		Subject:       "google-sub-1",
		Email:         "alice@example.com",
		EmailVerified: true,
		Nickname:      "Alice G",
		Avatar:        "https://example.com/alice.png",
	}

	resp, err := fx.svc.GoogleSignIn(ctx, model.GoogleAuthRequest{Credential: "id-token"}, nil)
	if err != nil {
		t.Fatalf("GoogleSignIn() error = %v", err)
	}
	if resp.User.ID != registered.User.ID {
		t.Fatalf("merged onto id %q, want existing %q", resp.User.ID, registered.User.ID)
	}
	if resp.User.GoogleID != "google-sub-1" {
		t.Errorf("google id = %q", resp.User.GoogleID)
	}
	if resp.User.Nickname != "Alice" {
		t.Errorf("nickname = %q, existing nickname must survive the merge", resp.User.Nickname)
	}
	if resp.User.Avatar != "https://example.com/alice.png" {
		t.Errorf("avatar = %q", resp.User.Avatar)
	}
}

func TestGoogleSignInProvisionsNewUser(t *testing.T) {
	fx := newAuthFixture(t)
	fx.verifier.identity = &model.ExternalIdentity{
		Subject:       "google-sub-2",
		Email:         "carol@example.com",
		EmailVerified: true,
		Nickname:      "Carol",
	}

	resp, err := fx.svc.GoogleSignIn(context.Background(), model.GoogleAuthRequest{Credential: "id-token"}, nil)
	if err != nil {
		t.Fatalf("GoogleSignIn() error = %v", err)
	}

	user := fx.users.users[resp.User.ID]
	if user == nil {
		t.Fatal("user row missing")
	}
	if user.GoogleID == nil || *user.GoogleID != "google-sub-2" {
		t.Error("google id not stored")
	}
	if user.IdentityUID == nil {
		t.Error("provider account not provisioned for federated user")
	}
	if user.Password != nil {
		t.Error("federated user must have no local password")
	}
}

func TestGoogleSignInSurvivesProviderOutage(t *testing.T) {
	fx := newAuthFixture(t)
	fx.identity.existsErr = fmt.Errorf("provider down")
	fx.verifier.identity = &model.ExternalIdentity{
		Subject:       "google-sub-3",
		Email:         "dave@example.com",
		EmailVerified: true,
	}

	resp, err := fx.svc.GoogleSignIn(context.Background(), model.GoogleAuthRequest{Credential: "id-token"}, nil)
	if err != nil {
		t.Fatalf("GoogleSignIn() error = %v, provider outage must not block sign-in", err)
	}

	user := fx.users.users[resp.User.ID]
	if user.IdentityUID != nil {
		t.Error("identity uid set despite provider outage")
	}
}

func TestGoogleSignInCollapsesVerifierFailure(t *testing.T) {
	fx := newAuthFixture(t)
	fx.verifier.err = fmt.Errorf("assertion rejected")

	if _, err := fx.svc.GoogleSignIn(context.Background(), model.GoogleAuthRequest{Credential: "bad"}, nil); !errors.Is(err, ErrExternalAuthFailed) {
		t.Fatalf("GoogleSignIn() error = %v, want ErrExternalAuthFailed", err)
	}
	if len(fx.users.users) != 0 {
		t.Error("user row created despite verification failure")
	}
}

func TestRefreshRotatesAndInvalidatesOldToken(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	registered, err := fx.svc.Register(ctx, model.RegisterRequest{Email: "alice@example.com", Password: "secret123"}, nil)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	pair, err := fx.svc.Refresh(ctx, registered.RefreshToken, nil)
	if err != nil {
		t.Fatalf("Refresh() error = %v", err)
	}
	if pair.RefreshToken == registered.RefreshToken {
		t.Fatal("Refresh() returned the same refresh token")
	}

	if _, err := fx.svc.Refresh(ctx, registered.RefreshToken, nil); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("replayed Refresh() error = %v, want ErrInvalidRefreshToken", err)
	}

	if _, err := fx.svc.Refresh(ctx, pair.RefreshToken, nil); err != nil {
		t.Fatalf("Refresh(rotated) error = %v", err)
	}
}

func TestRefreshRejectsGarbage(t *testing.T) {
	fx := newAuthFixture(t)

	if _, err := fx.svc.Refresh(context.Background(), "garbage", nil); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("Refresh(garbage) error = %v, want ErrInvalidRefreshToken", err)
	}
}

func TestLogoutAlwaysReportsSuccess(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	registered, err := fx.svc.Register(ctx, model.RegisterRequest{Email: "alice@example.com", Password: "secret123"}, nil)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	resp := fx.svc.Logout(ctx, registered.RefreshToken)
	if resp.Message != "Logged out successfully" {
		t.Errorf("message = %q", resp.Message)
	}

	// The revoked token no longer refreshes.
	if _, err := fx.svc.Refresh(ctx, registered.RefreshToken, nil); !errors.Is(err, ErrInvalidRefreshToken) {
		t.Fatalf("Refresh(after logout) error = %v, want ErrInvalidRefreshToken", err)
	}

	// Garbage gets the same answer.
	resp = fx.svc.Logout(ctx, "garbage")
	if resp.Message != "Logged out successfully" {
		t.Errorf("message for garbage token = %q", resp.Message)
	}
}

func TestSendPasswordResetMessages(t *testing.T) {
	ctx := context.Background()

	t.Run("unknown email gets generic message", func(t *testing.T) {
		fx := newAuthFixture(t)
		resp := fx.svc.SendPasswordReset(ctx, "nobody@example.com")
		if resp.Message != "If a user with this email exists, a password reset email has been sent" {
			t.Errorf("message = %q", resp.Message)
		}
		if len(fx.identity.resetEmails) != 0 {
			t.Error("reset email sent for unknown account")
		}
	})

	t.Run("google-only account gets instructive message", func(t *testing.T) {
		fx := newAuthFixture(t)
		googleID := "google-sub-1"
		if _, err := fx.users.CreateUser(ctx, db.NewUserParams{Email: "alice@example.com", GoogleID: &googleID}); err != nil {
			t.Fatalf("seed user: %v", err)
		}
		resp := fx.svc.SendPasswordReset(ctx, "alice@example.com")
		if resp.Message != "Google users cannot reset their password. Please use Google to sign in." {
			t.Errorf("message = %q", resp.Message)
		}
	})

	t.Run("password account gets generic message and an email", func(t *testing.T) {
		fx := newAuthFixture(t)
		if _, err := fx.svc.Register(ctx, model.RegisterRequest{Email: "alice@example.com", Password: "secret123"}, nil); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		resp := fx.svc.SendPasswordReset(ctx, "alice@example.com")
		if resp.Message != "If a user with this email exists, a password reset email has been sent" {
			t.Errorf("message = %q", resp.Message)
		}
		if len(fx.identity.resetEmails) != 1 {
			t.Errorf("reset emails sent = %d, want 1", len(fx.identity.resetEmails))
		}
	})

	t.Run("provider failure falls back to generic message", func(t *testing.T) {
		fx := newAuthFixture(t)
		if _, err := fx.svc.Register(ctx, model.RegisterRequest{Email: "alice@example.com", Password: "secret123"}, nil); err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		fx.identity.sendResetErr = fmt.Errorf("provider down")
		resp := fx.svc.SendPasswordReset(ctx, "alice@example.com")
		if resp.Message != "If a user with this email exists, a password reset email has been sent" {
			t.Errorf("message = %q", resp.Message)
		}
	})

	t.Run("response does not reveal account existence", func(t *testing.T) {
		fx := newAuthFixture(t)
		if _, err := fx.svc.Register(ctx, model.RegisterRequest{Email: "alice@example.com", Password: "secret123"}, nil); err != nil {
			t.Fatalf("Register() error = %v", err)
		}

		existing := fx.svc.SendPasswordReset(ctx, "alice@example.com")
		unknown := fx.svc.SendPasswordReset(ctx, "nobody@example.com")
		if existing.Message != unknown.Message {
			t.Fatalf("messages differ by account existence: existing %q, unknown %q", existing.Message, unknown.Message)
		}
	})
}

func TestChangePassword(t *testing.T) {
	ctx := context.Background()

	t.Run("success updates the provider", func(t *testing.T) {
		fx := newAuthFixture(t)
		registered, err := fx.svc.Register(ctx, model.RegisterRequest{Email: "alice@example.com", Password: "secret123"}, nil)
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}

		resp, err := fx.svc.ChangePassword(ctx, registered.User.ID, model.ChangePasswordRequest{
			CurrentPassword: "secret123",
			NewPassword:     "evenmoresecret",
		})
		if err != nil {
			t.Fatalf("ChangePassword() error = %v", err)
		}
		if resp.Message != "Password changed successfully" {
			t.Errorf("message = %q", resp.Message)
		}

		if _, err := fx.svc.Login(ctx, model.LoginRequest{Email: "alice@example.com", Password: "evenmoresecret"}, nil); err != nil {
			t.Fatalf("Login(new password) error = %v", err)
		}
		if _, err := fx.svc.Login(ctx, model.LoginRequest{Email: "alice@example.com", Password: "secret123"}, nil); !errors.Is(err, ErrInvalidCredentials) {
			t.Fatalf("Login(old password) error = %v, want ErrInvalidCredentials", err)
		}

		// Sessions minted before the change are gone.
		if _, err := fx.svc.Refresh(ctx, registered.RefreshToken, nil); !errors.Is(err, ErrInvalidRefreshToken) {
			t.Fatalf("Refresh(pre-change token) error = %v, want ErrInvalidRefreshToken", err)
		}
	})

	t.Run("wrong current password", func(t *testing.T) {
		fx := newAuthFixture(t)
		registered, err := fx.svc.Register(ctx, model.RegisterRequest{Email: "alice@example.com", Password: "secret123"}, nil)
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}

		_, err = fx.svc.ChangePassword(ctx, registered.User.ID, model.ChangePasswordRequest{
			CurrentPassword: "wrong",
			NewPassword:     "evenmoresecret",
		})
		if !errors.Is(err, ErrUnauthorized) {
			t.Fatalf("ChangePassword() error = %v, want ErrUnauthorized", err)
		}
	})

	t.Run("unlinked account", func(t *testing.T) {
		fx := newAuthFixture(t)
		seeded, err := fx.users.CreateUser(ctx, db.NewUserParams{Email: "legacy@example.com"})
		if err != nil {
			t.Fatalf("seed user: %v", err)
		}

		_, err = fx.svc.ChangePassword(ctx, seeded.ID, model.ChangePasswordRequest{
			CurrentPassword: "secret123",
			NewPassword:     "evenmoresecret",
		})
		if !errors.Is(err, ErrBadRequest) {
			t.Fatalf("ChangePassword() error = %v, want ErrBadRequest", err)
		}
	})

	t.Run("provider update failure", func(t *testing.T) {
		fx := newAuthFixture(t)
		registered, err := fx.svc.Register(ctx, model.RegisterRequest{Email: "alice@example.com", Password: "secret123"}, nil)
		if err != nil {
			t.Fatalf("Register() error = %v", err)
		}
		fx.identity.updatePasswordErr = fmt.Errorf("provider down")

		_, err = fx.svc.ChangePassword(ctx, registered.User.ID, model.ChangePasswordRequest{
			CurrentPassword: "secret123",
			NewPassword:     "evenmoresecret",
		})
		if !errors.Is(err, ErrChangePasswordFailed) {
			t.Fatalf("ChangePassword() error = %v, want ErrChangePasswordFailed", err)
		}
	})
}

func TestGetUser(t *testing.T) {
	fx := newAuthFixture(t)
	ctx := context.Background()

	registered, err := fx.svc.Register(ctx, model.RegisterRequest{Email: "alice@example.com", Password: "secret123"}, nil)
	if err != nil {
		t.Fatalf("Register() error = %v", err)
	}

	user, err := fx.svc.GetUser(ctx, registered.User.ID)
	if err != nil {
		t.Fatalf("GetUser() error = %v", err)
	}
	if user.Email != "alice@example.com" {
		t.Errorf("email = %q", user.Email)
	}

	if _, err := fx.svc.GetUser(ctx, "no-such-user"); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("GetUser(missing) error = %v, want ErrUserNotFound", err)
	}
}
