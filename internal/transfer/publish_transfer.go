package transfer

import "github.com/golang-jwt/jwt/v5"

// PublishRequest is what the authoring collaborator sends. ScheduledFor is
// RFC 3339; empty means publish now. Hashtags is a comma or whitespace
// separated list as authored.
type PublishRequest struct {
	Platforms    []string `json:"platforms"`
	Content      string   `json:"content"`
	Hashtags     string   `json:"hashtags"`
	ScheduledFor string   `json:"scheduled_for"`
	MediaURL     string   `json:"media_url"`
}

type PlatformOutcome struct {
	Platform string `json:"platform"`
	Success  bool   `json:"success"`
	PostID   string `json:"post_id,omitempty"`
	Error    string `json:"error,omitempty"`
	Kind     string `json:"kind,omitempty"`
}

type RescheduleRequest struct {
	PostID       int64  `json:"post_id"`
	ScheduledFor string `json:"scheduled_for"`
}

type CustomClaims struct {
	BrandID string `json:"brand_id"`
	jwt.RegisteredClaims
}
