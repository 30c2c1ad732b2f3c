package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/authlink/backend/internal/config"
)

var ErrIdentityUserNotFound = errors.New("identity user not found")

// IdentityClient talks to the Identity Toolkit (Firebase Auth) REST API, the
// external system of record for password credentials. Every call is
// independently failable network I/O; no retries happen here.
type IdentityClient struct {
	apiKey     string
	baseURL    string
	httpClient *http.Client
}

// IdentityUser is the provider's view of an account.
type IdentityUser struct {
	UID           string
	Email         string
	EmailVerified bool
	DisplayName   string
}

type identityError struct {
	Error struct {
		Message string `json:"message"`
	} `json:"error"`
}

func NewIdentityClient(cfg config.IdentityConfig) *IdentityClient {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://identitytoolkit.googleapis.com/v1"
	}

	return &IdentityClient{
		apiKey:  cfg.APIKey,
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// CreateUser provisions a password-bearing account and returns the provider
// uid. The password never touches this backend's own storage.
func (c *IdentityClient) CreateUser(ctx context.Context, email, password, displayName string) (string, error) {
	payload := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": false,
	}
	if displayName != "" {
		payload["displayName"] = displayName
	}

	var resp struct {
		LocalID string `json:"localId"`
	}
	if err := c.post(ctx, "accounts:signUp", payload, &resp); err != nil {
		return "", fmt.Errorf("failed to create identity user: %w", err)
	}
	return resp.LocalID, nil
}

// CreateUserWithoutPassword provisions a federated account that has no
// password credential at the provider.
func (c *IdentityClient) CreateUserWithoutPassword(ctx context.Context, email, displayName, avatarURL string) (string, error) {
	payload := map[string]any{
		"email":             email,
		"emailVerified":     true,
		"returnSecureToken": false,
	}
	if displayName != "" {
		payload["displayName"] = displayName
	}
	if avatarURL != "" {
		payload["photoUrl"] = avatarURL
	}

	var resp struct {
		LocalID string `json:"localId"`
	}
	if err := c.post(ctx, "accounts:signUp", payload, &resp); err != nil {
		return "", fmt.Errorf("failed to create federated identity user: %w", err)
	}
	return resp.LocalID, nil
}

func (c *IdentityClient) UserExists(ctx context.Context, email string) (bool, error) {
	_, err := c.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrIdentityUserNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *IdentityClient) GetUserByEmail(ctx context.Context, email string) (*IdentityUser, error) {
	payload := map[string]any{"email": []string{email}}

	var resp struct {
		Users []struct {
			LocalID       string `json:"localId"`
			Email         string `json:"email"`
			EmailVerified bool   `json:"emailVerified"`
			DisplayName   string `json:"displayName"`
		} `json:"users"`
	}
	if err := c.post(ctx, "accounts:lookup", payload, &resp); err != nil {
		return nil, fmt.Errorf("failed to look up identity user: %w", err)
	}
	if len(resp.Users) == 0 {
		return nil, ErrIdentityUserNotFound
	}

	u := resp.Users[0]
	return &IdentityUser{
		UID:           u.LocalID,
		Email:         u.Email,
		EmailVerified: u.EmailVerified,
		DisplayName:   u.DisplayName,
	}, nil
}

func (c *IdentityClient) DeleteUser(ctx context.Context, uid string) error {
	payload := map[string]any{"localId": uid}
	if err := c.post(ctx, "accounts:delete", payload, &struct{}{}); err != nil {
		return fmt.Errorf("failed to delete identity user: %w", err)
	}
	return nil
}

// VerifyPassword checks credentials at the provider. Wrong password and
// unknown email both come back false so callers cannot tell them apart.
func (c *IdentityClient) VerifyPassword(ctx context.Context, email, password string) (bool, error) {
	user, err := c.VerifyPasswordAndGetUser(ctx, email, password)
	if err != nil {
		return false, err
	}
	return user != nil, nil
}

// VerifyPasswordAndGetUser returns the provider record on success and nil on
// bad credentials. Transport failures surface as errors.
func (c *IdentityClient) VerifyPasswordAndGetUser(ctx context.Context, email, password string) (*IdentityUser, error) {
	payload := map[string]any{
		"email":             email,
		"password":          password,
		"returnSecureToken": true,
	}

	var resp struct {
		LocalID       string `json:"localId"`
		Email         string `json:"email"`
		EmailVerified bool   `json:"emailVerified"`
		DisplayName   string `json:"displayName"`
	}
	err := c.post(ctx, "accounts:signInWithPassword", payload, &resp)
	if err != nil {
		if isCredentialRejection(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to verify password: %w", err)
	}

	return &IdentityUser{
		UID:           resp.LocalID,
		Email:         resp.Email,
		EmailVerified: resp.EmailVerified,
		DisplayName:   resp.DisplayName,
	}, nil
}

func (c *IdentityClient) SendPasswordResetEmail(ctx context.Context, email string) error {
	payload := map[string]any{
		"requestType": "PASSWORD_RESET",
		"email":       email,
	}
	if err := c.post(ctx, "accounts:sendOobCode", payload, &struct{}{}); err != nil {
		return fmt.Errorf("failed to send password reset email: %w", err)
	}
	return nil
}

func (c *IdentityClient) UpdatePassword(ctx context.Context, uid, newPassword string) error {
	payload := map[string]any{
		"localId":  uid,
		"password": newPassword,
	}
	if err := c.post(ctx, "accounts:update", payload, &struct{}{}); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	return nil
}

type apiError struct {
	Message string
	Status  int
}

func (e *apiError) Error() string {
	return fmt.Sprintf("identity provider returned status %d: %s", e.Status, e.Message)
}

func isCredentialRejection(err error) bool {
	var apiErr *apiError
	if !errors.As(err, &apiErr) {
		return false
	}
	switch apiErr.Message {
	case "EMAIL_NOT_FOUND", "INVALID_PASSWORD", "INVALID_LOGIN_CREDENTIALS", "USER_DISABLED":
		return true
	}
	return false
}

func (c *IdentityClient) post(ctx context.Context, action string, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/%s?key=%s", c.baseURL, action, c.apiKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("failed to send request to identity provider: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var errResp identityError
		if err := json.Unmarshal(respBody, &errResp); err == nil && errResp.Error.Message != "" {
			return &apiError{Message: errResp.Error.Message, Status: resp.StatusCode}
		}
		return &apiError{Message: string(respBody), Status: resp.StatusCode}
	}

	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}
