package models

import "time"

type Post struct {
	ID          int64            `db:"id" json:"id"`
	BrandID     int64            `db:"brand_id" json:"brand_id"`
	Platforms   []string         `db:"platforms" json:"platforms"`
	Caption     string           `db:"caption" json:"caption"`
	Hashtags    []string         `db:"hashtags" json:"hashtags"`
	MediaURLs   []string         `db:"media_urls" json:"media_urls"`
	ScheduledAt *time.Time       `db:"scheduled_at" json:"scheduled_at,omitempty"`
	Status      string           `db:"status" json:"status"`
	Results     []PlatformResult `db:"results" json:"results,omitempty"`
	CreatedAt   time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time        `db:"updated_at" json:"updated_at"`
}

// PlatformResult is the recorded outcome of one delivery attempt to one
// platform. Exactly one entry per targeted platform is stored after a
// dispatch, success or not.
type PlatformResult struct {
	Platform       string `json:"platform"`
	Success        bool   `json:"success"`
	PlatformPostID string `json:"platform_post_id,omitempty"`
	ErrorKind      string `json:"error_kind,omitempty"`
	ErrorMessage   string `json:"error_message,omitempty"`
}

const (
	PostStatusDraft      = "draft"
	PostStatusScheduled  = "scheduled"
	PostStatusPublishing = "publishing" // claimed by a dispatch cycle, not yet recorded
	PostStatusPublished  = "published"
	PostStatusFailed     = "failed"
)
