package platform

import (
	"context"
	"strings"
)

// Content is the platform-independent body of a post.
type Content struct {
	Caption   string
	Hashtags  []string
	MediaURLs []string
}

// Credential carries what an adapter needs to call the platform on a
// brand's behalf. AccessToken arrives already decrypted.
type Credential struct {
	AccountID   string
	AccessToken string
}

// Publisher is implemented once per concrete platform. Exactly one outbound
// call sequence per invocation, no local state mutation; the caller owns
// persistence of the result.
type Publisher interface {
	Publish(ctx context.Context, content Content, cred Credential) PublishResult
}

// RenderCaption joins the caption and hashtags the way every adapter sends
// them: body, blank line, "#a #b" in authored order.
func RenderCaption(content Content) string {
	if len(content.Hashtags) == 0 {
		return content.Caption
	}
	tags := make([]string, 0, len(content.Hashtags))
	for _, h := range content.Hashtags {
		h = strings.TrimSpace(strings.TrimPrefix(h, "#"))
		if h == "" {
			continue
		}
		tags = append(tags, "#"+h)
	}
	if len(tags) == 0 {
		return content.Caption
	}
	if content.Caption == "" {
		return strings.Join(tags, " ")
	}
	return content.Caption + "\n\n" + strings.Join(tags, " ")
}
