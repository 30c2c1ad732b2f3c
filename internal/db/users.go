package db

import (
	"context"

	"github.com/authlink/backend/internal/model"
	"github.com/google/uuid"
)

const userColumns = `id, email, nickname, password, identity_uid, google_id, avatar, is_active, created_at, updated_at`

func scanUser(row interface{ Scan(...any) error }) (*model.User, error) {
	var user model.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.Nickname,
		&user.Password,
		&user.IdentityUID,
		&user.GoogleID,
		&user.Avatar,
		&user.IsActive,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// NewUserParams holds the optional fields set at row creation. Password is
// deliberately absent: provider-linked accounts never store one locally.
type NewUserParams struct {
	Email       string
	Nickname    *string
	IdentityUID *string
	GoogleID    *string
	Avatar      *string
}

func (db *Postgres) CreateUser(ctx context.Context, params NewUserParams) (*model.User, error) {
	query := `
		INSERT INTO users (id, email, nickname, identity_uid, google_id, avatar, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, NOW(), NOW())
		RETURNING ` + userColumns
	row := db.Pool.QueryRow(ctx, query,
		uuid.NewString(),
		params.Email,
		params.Nickname,
		params.IdentityUID,
		params.GoogleID,
		params.Avatar,
	)
	return scanUser(row)
}

func (db *Postgres) GetUserByEmail(ctx context.Context, email string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, email))
}

func (db *Postgres) GetUserByID(ctx context.Context, userID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return scanUser(db.Pool.QueryRow(ctx, query, userID))
}

// GetUserByEmailOrGoogleID is the account-linking lookup: a federated sign-in
// matches an existing row either by email or by a previously linked subject.
func (db *Postgres) GetUserByEmailOrGoogleID(ctx context.Context, email, googleID string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 OR google_id = $2 LIMIT 1`
	return scanUser(db.Pool.QueryRow(ctx, query, email, googleID))
}

func (db *Postgres) SetIdentityUID(ctx context.Context, userID, identityUID string) (*model.User, error) {
	query := `
		UPDATE users
		SET identity_uid = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(db.Pool.QueryRow(ctx, query, userID, identityUID))
}

// LinkGoogleAccount records the google subject on an existing row and
// refreshes the avatar when one is provided. The nickname is left untouched.
func (db *Postgres) LinkGoogleAccount(ctx context.Context, userID, googleID string, avatar *string) (*model.User, error) {
	query := `
		UPDATE users
		SET google_id = $2, avatar = COALESCE($3, avatar), updated_at = NOW()
		WHERE id = $1
		RETURNING ` + userColumns
	return scanUser(db.Pool.QueryRow(ctx, query, userID, googleID, avatar))
}
