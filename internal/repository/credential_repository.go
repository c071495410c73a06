package repository

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/brandcast/brandcast/internal/models"
)

type CredentialRepository interface {
	Create(ctx context.Context, tx *sql.Tx, cred *models.BrandCredential) (int64, error)
	GetActive(ctx context.Context, brandID int64, platform string) (*models.BrandCredential, error)
	ListByBrandID(ctx context.Context, brandID int64) ([]*models.BrandCredential, error)
	ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.BrandCredential, error)
	SetToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error
	SetPostingEnabled(ctx context.Context, id, brandID int64, enabled bool) error
	Remove(ctx context.Context, id, brandID int64) error
}

type credentialRepository struct {
	db *sql.DB
}

func NewCredentialRepository(db *sql.DB) CredentialRepository {
	return &credentialRepository{db: db}
}

const credentialColumns = `id, brand_id, platform, account_id, account_name, access_token, refresh_token, token_expires_at, active, posting_enabled, created_at, updated_at`

func (r *credentialRepository) Create(ctx context.Context, tx *sql.Tx, cred *models.BrandCredential) (int64, error) {
	query := `
		INSERT INTO brand_credentials (brand_id, platform, account_id, account_name, access_token, refresh_token, token_expires_at, active, posting_enabled)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`

	var id int64
	var err error

	args := []interface{}{
		cred.BrandID,
		cred.Platform,
		cred.AccountID,
		cred.AccountName,
		cred.AccessToken,
		cred.RefreshToken,
		cred.TokenExpiresAt,
		cred.Active,
		cred.PostingEnabled,
	}

	if tx != nil {
		err = tx.QueryRowContext(ctx, query, args...).Scan(&id)
	} else {
		err = r.db.QueryRowContext(ctx, query, args...).Scan(&id)
	}
	if err != nil {
		slog.Info(err.Error())
		return 0, err
	}

	return id, nil
}

func scanCredential(row interface{ Scan(...interface{}) error }) (*models.BrandCredential, error) {
	var c models.BrandCredential
	err := row.Scan(&c.ID, &c.BrandID, &c.Platform, &c.AccountID, &c.AccountName,
		&c.AccessToken, &c.RefreshToken, &c.TokenExpiresAt, &c.Active,
		&c.PostingEnabled, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// GetActive returns the usable credential for a brand/platform pair, or nil
// when none exists. Missing credentials are an expected condition, not an
// error.
func (r *credentialRepository) GetActive(ctx context.Context, brandID int64, platform string) (*models.BrandCredential, error) {
	query := `SELECT ` + credentialColumns + ` FROM brand_credentials
		WHERE brand_id = $1 AND platform = $2 AND active = TRUE AND posting_enabled = TRUE
		ORDER BY updated_at DESC
		LIMIT 1`
	cred, err := scanCredential(r.db.QueryRowContext(ctx, query, brandID, platform))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		slog.Info(err.Error())
		return nil, err
	}
	return cred, nil
}

func (r *credentialRepository) ListByBrandID(ctx context.Context, brandID int64) ([]*models.BrandCredential, error) {
	query := `SELECT ` + credentialColumns + ` FROM brand_credentials WHERE brand_id = $1 ORDER BY platform`
	rows, err := r.db.QueryContext(ctx, query, brandID)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var creds []*models.BrandCredential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		creds = append(creds, cred)
	}
	return creds, rows.Err()
}

func (r *credentialRepository) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.BrandCredential, error) {
	query := `SELECT ` + credentialColumns + ` FROM brand_credentials
		WHERE active = TRUE
		AND ((token_expires_at BETWEEN $1 AND $2) OR token_expires_at < $1)`
	rows, err := r.db.QueryContext(ctx, query, initialTime, finalTime)
	if err != nil {
		slog.Info(err.Error())
		return nil, err
	}
	defer rows.Close()

	var creds []*models.BrandCredential
	for rows.Next() {
		cred, err := scanCredential(rows)
		if err != nil {
			slog.Info(err.Error())
			return nil, err
		}
		creds = append(creds, cred)
	}

	if err := rows.Err(); err != nil {
		slog.Info(err.Error())
		return nil, err
	}

	return creds, nil
}

func (r *credentialRepository) SetToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	query := `
		UPDATE brand_credentials
		SET
			access_token = COALESCE(NULLIF($2, ''), access_token),
			refresh_token = COALESCE(NULLIF($3, ''), refresh_token),
			token_expires_at = $4,
			updated_at = CURRENT_TIMESTAMP
		WHERE id = $1
	`
	result, err := r.db.ExecContext(ctx, query, id, accessToken, refreshToken, expiresAt)
	if err != nil {
		slog.Info(err.Error())
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	if affected != 1 {
		slog.Info("no rows affected; credential may not exist")
		return sql.ErrNoRows
	}
	return nil
}

func (r *credentialRepository) SetPostingEnabled(ctx context.Context, id, brandID int64, enabled bool) error {
	query := `
		UPDATE brand_credentials
		SET posting_enabled = $3, updated_at = CURRENT_TIMESTAMP
		WHERE id = $1 AND brand_id = $2
	`
	_, err := r.db.ExecContext(ctx, query, id, brandID, enabled)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}

func (r *credentialRepository) Remove(ctx context.Context, id, brandID int64) error {
	query := `DELETE FROM brand_credentials WHERE id = $1 AND brand_id = $2`
	_, err := r.db.ExecContext(ctx, query, id, brandID)
	if err != nil {
		slog.Info(err.Error())
		return err
	}
	return nil
}
