package db

import (
	"context"

	"github.com/authlink/backend/internal/model"
)

const refreshTokenColumns = `id, user_id, token_hash, user_agent, ip_address, device_id, expires_at, is_active, created_at, updated_at`

func scanRefreshToken(row interface{ Scan(...any) error }) (*model.RefreshToken, error) {
	var token model.RefreshToken
	err := row.Scan(
		&token.ID,
		&token.UserID,
		&token.TokenHash,
		&token.UserAgent,
		&token.IPAddress,
		&token.DeviceID,
		&token.ExpiresAt,
		&token.IsActive,
		&token.CreatedAt,
		&token.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &token, nil
}

// InsertRefreshToken persists a new token generation. The id is chosen by the
// caller because it is embedded in the signed token before the hash exists.
func (db *Postgres) InsertRefreshToken(ctx context.Context, token *model.RefreshToken) error {
	query := `
		INSERT INTO refresh_tokens (id, user_id, token_hash, user_agent, ip_address, device_id, expires_at, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, TRUE, NOW(), NOW())
	`
	_, err := db.Pool.Exec(ctx, query,
		token.ID,
		token.UserID,
		token.TokenHash,
		token.UserAgent,
		token.IPAddress,
		token.DeviceID,
		token.ExpiresAt,
	)
	return err
}

func (db *Postgres) GetRefreshTokenByID(ctx context.Context, tokenID string) (*model.RefreshToken, error) {
	query := `SELECT ` + refreshTokenColumns + ` FROM refresh_tokens WHERE id = $1`
	return scanRefreshToken(db.Pool.QueryRow(ctx, query, tokenID))
}

// RevokeRefreshToken flips the record inactive. The conditional update makes
// the first caller win a rotation race: it reports whether this call changed
// the row.
func (db *Postgres) RevokeRefreshToken(ctx context.Context, tokenID string) (bool, error) {
	query := `
		UPDATE refresh_tokens
		SET is_active = FALSE, updated_at = NOW()
		WHERE id = $1 AND is_active
	`
	tag, err := db.Pool.Exec(ctx, query, tokenID)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}

func (db *Postgres) RevokeAllRefreshTokens(ctx context.Context, userID string) (int64, error) {
	query := `
		UPDATE refresh_tokens
		SET is_active = FALSE, updated_at = NOW()
		WHERE user_id = $1 AND is_active
	`
	tag, err := db.Pool.Exec(ctx, query, userID)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

// DeleteStaleRefreshTokens removes generations no longer usable: expired or
// soft-revoked. Maintenance only, never on the request path.
func (db *Postgres) DeleteStaleRefreshTokens(ctx context.Context) (int64, error) {
	query := `DELETE FROM refresh_tokens WHERE expires_at < NOW() OR NOT is_active`
	tag, err := db.Pool.Exec(ctx, query)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}
