package models

import "time"

// BrandCredential is one brand's connection to one platform. Access and
// refresh tokens are stored AES-GCM encrypted (pkg/utils). A platform is a
// usable publish target for a brand only when an active, posting-enabled
// record exists.
type BrandCredential struct {
	ID             int64     `db:"id" json:"id"`
	BrandID        int64     `db:"brand_id" json:"brand_id"`
	Platform       string    `db:"platform" json:"platform"`
	AccountID      string    `db:"account_id" json:"account_id"`
	AccountName    string    `db:"account_name" json:"account_name"`
	AccessToken    string    `db:"access_token" json:"-"`
	RefreshToken   string    `db:"refresh_token" json:"-"`
	TokenExpiresAt time.Time `db:"token_expires_at" json:"token_expires_at"`
	Active         bool      `db:"active" json:"active"`
	PostingEnabled bool      `db:"posting_enabled" json:"posting_enabled"`
	CreatedAt      time.Time `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time `db:"updated_at" json:"updated_at"`
}
