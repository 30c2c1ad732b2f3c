package service

import (
	"context"
	"crypto/sha256"
	"time"

	"github.com/authlink/backend/internal/db"
	"github.com/authlink/backend/internal/model"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

type RefreshTokenRepo interface {
	InsertRefreshToken(ctx context.Context, token *model.RefreshToken) error
	GetRefreshTokenByID(ctx context.Context, tokenID string) (*model.RefreshToken, error)
	RevokeRefreshToken(ctx context.Context, tokenID string) (bool, error)
	RevokeAllRefreshTokens(ctx context.Context, userID string) (int64, error)
	DeleteStaleRefreshTokens(ctx context.Context) (int64, error)
}

// RefreshValidation is the outcome of checking a presented refresh token.
// Reason is for server-side logs only; callers surface a single generic
// failure so the endpoint cannot be used as a token oracle.
type RefreshValidation struct {
	Valid  bool
	Token  *model.RefreshToken
	UserID string
	Reason string
}

// RefreshTokenService owns the persisted refresh-token lifecycle. Raw token
// strings exist only in transit; rows hold a salted hash of the signed token.
type RefreshTokenService struct {
	repo   RefreshTokenRepo
	tokens *TokenService
}

func NewRefreshTokenService(repo RefreshTokenRepo, tokens *TokenService) *RefreshTokenService {
	return &RefreshTokenService{repo: repo, tokens: tokens}
}

// Create mints a signed refresh token embedding a fresh record id and
// persists the matching row. The returned string is the only copy of the raw
// token.
func (s *RefreshTokenService) Create(ctx context.Context, userID string, metadata *model.TokenMetadata) (string, *model.RefreshToken, error) {
	tokenID := uuid.NewString()

	raw, err := s.tokens.IssueRefreshToken(userID, tokenID)
	if err != nil {
		return "", nil, err
	}

	hash, err := hashRefreshToken(raw)
	if err != nil {
		return "", nil, err
	}

	record := &model.RefreshToken{
		ID:        tokenID,
		UserID:    userID,
		TokenHash: hash,
		ExpiresAt: time.Now().Add(s.tokens.RefreshTTL()),
		IsActive:  true,
	}
	if metadata != nil {
		record.UserAgent = optional(metadata.UserAgent)
		record.IPAddress = optional(metadata.IPAddress)
		record.DeviceID = optional(metadata.DeviceID)
	}

	if err := s.repo.InsertRefreshToken(ctx, record); err != nil {
		return "", nil, err
	}

	return raw, record, nil
}

// Validate checks signature and expiry before touching the database, then
// confirms the row is live and that the presented token matches its stored
// hash. A forged token pointing at someone else's record fails the hash check.
func (s *RefreshTokenService) Validate(ctx context.Context, raw string) (*RefreshValidation, error) {
	claims, err := s.tokens.VerifyRefreshToken(raw)
	if err != nil {
		return &RefreshValidation{Reason: "token rejected: " + err.Error()}, nil
	}

	record, err := s.repo.GetRefreshTokenByID(ctx, claims.TokenID)
	if err != nil {
		if db.IsNoRows(err) {
			return &RefreshValidation{Reason: "token record not found"}, nil
		}
		return nil, err
	}

	if !record.IsActive {
		return &RefreshValidation{Token: record, Reason: "token has been revoked"}, nil
	}
	if time.Now().After(record.ExpiresAt) {
		return &RefreshValidation{Token: record, Reason: "token has expired"}, nil
	}
	if record.UserID != claims.Subject {
		return &RefreshValidation{Token: record, Reason: "token subject mismatch"}, nil
	}
	if !compareRefreshToken(record.TokenHash, raw) {
		return &RefreshValidation{Token: record, Reason: "token hash mismatch"}, nil
	}

	return &RefreshValidation{Valid: true, Token: record, UserID: record.UserID}, nil
}

// Revoke deactivates a token record. Revoking an already-inactive record is
// success; only a missing record reports false.
func (s *RefreshTokenService) Revoke(ctx context.Context, tokenID string) (bool, error) {
	changed, err := s.repo.RevokeRefreshToken(ctx, tokenID)
	if err != nil {
		return false, err
	}
	if changed {
		return true, nil
	}

	if _, err := s.repo.GetRefreshTokenByID(ctx, tokenID); err != nil {
		if db.IsNoRows(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Rotate revokes the old generation and mints a new one. The revoke must win
// the conditional update: when another rotation already deactivated the row,
// no replacement is minted and the caller sees a nil token.
func (s *RefreshTokenService) Rotate(ctx context.Context, oldTokenID, userID string, metadata *model.TokenMetadata) (string, *model.RefreshToken, error) {
	changed, err := s.repo.RevokeRefreshToken(ctx, oldTokenID)
	if err != nil {
		return "", nil, err
	}
	if !changed {
		return "", nil, nil
	}

	return s.Create(ctx, userID, metadata)
}

func (s *RefreshTokenService) RevokeAll(ctx context.Context, userID string) (int64, error) {
	return s.repo.RevokeAllRefreshTokens(ctx, userID)
}

func (s *RefreshTokenService) CleanupExpired(ctx context.Context) (int64, error) {
	return s.repo.DeleteStaleRefreshTokens(ctx)
}

// hashRefreshToken digests the signed token before bcrypt so the input fits
// bcrypt's length limit while keeping a per-row salt.
func hashRefreshToken(raw string) (string, error) {
	sum := sha256.Sum256([]byte(raw))
	hash, err := bcrypt.GenerateFromPassword(sum[:], bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

func compareRefreshToken(hash, raw string) bool {
	sum := sha256.Sum256([]byte(raw))
	return bcrypt.CompareHashAndPassword([]byte(hash), sum[:]) == nil
}

func optional(value string) *string {
	if value == "" {
		return nil
	}
	return &value
}
