package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultInstagramGraphURL = "https://graph.instagram.com/v21.0"

// InstagramPublisher implements the two-step Graph flow: create a media
// container, then publish it. Carousels create one container per item plus
// a carousel container.
type InstagramPublisher struct {
	BaseURL string
	Client  *http.Client
}

func NewInstagramPublisher() *InstagramPublisher {
	return &InstagramPublisher{BaseURL: defaultInstagramGraphURL, Client: http.DefaultClient}
}

func (ig *InstagramPublisher) Publish(ctx context.Context, content Content, cred Credential) PublishResult {
	if len(content.MediaURLs) == 0 {
		return Failed(Instagram, FailureRejected, "instagram requires at least one media item")
	}

	var containerID string
	var fail *PublishResult

	if len(content.MediaURLs) == 1 {
		containerID, fail = ig.createContainer(ctx, cred, map[string]interface{}{
			"image_url":    content.MediaURLs[0],
			"caption":      RenderCaption(content),
			"access_token": cred.AccessToken,
		})
	} else {
		children := make([]string, 0, len(content.MediaURLs))
		for _, mediaURL := range content.MediaURLs {
			childID, childFail := ig.createContainer(ctx, cred, map[string]interface{}{
				"image_url":        mediaURL,
				"is_carousel_item": true,
				"access_token":     cred.AccessToken,
			})
			if childFail != nil {
				return *childFail
			}
			children = append(children, childID)
		}
		containerID, fail = ig.createContainer(ctx, cred, map[string]interface{}{
			"media_type":   "CAROUSEL",
			"caption":      RenderCaption(content),
			"children":     children,
			"access_token": cred.AccessToken,
		})
	}
	if fail != nil {
		return *fail
	}

	mediaID, fail := ig.publishContainer(ctx, cred, containerID)
	if fail != nil {
		return *fail
	}
	return Succeeded(Instagram, mediaID)
}

func (ig *InstagramPublisher) createContainer(ctx context.Context, cred Credential, payload map[string]interface{}) (string, *PublishResult) {
	url := fmt.Sprintf("%s/%s/media", ig.BaseURL, cred.AccountID)
	id, fail := ig.post(ctx, url, payload)
	if fail != nil {
		return "", fail
	}
	if id == "" {
		f := Failed(Instagram, FailureRejected, "no media container ID returned from Instagram")
		return "", &f
	}
	return id, nil
}

func (ig *InstagramPublisher) publishContainer(ctx context.Context, cred Credential, containerID string) (string, *PublishResult) {
	url := fmt.Sprintf("%s/%s/media_publish", ig.BaseURL, cred.AccountID)
	id, fail := ig.post(ctx, url, map[string]interface{}{
		"creation_id":  containerID,
		"access_token": cred.AccessToken,
	})
	if fail != nil {
		return "", fail
	}
	if id == "" {
		f := Failed(Instagram, FailureRejected, "no media ID returned from Instagram")
		return "", &f
	}
	return id, nil
}

func (ig *InstagramPublisher) post(ctx context.Context, url string, payload map[string]interface{}) (string, *PublishResult) {
	body, err := json.Marshal(payload)
	if err != nil {
		f := Failed(Instagram, FailureRejected, fmt.Sprintf("error marshalling payload: %v", err))
		return "", &f
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		f := Failed(Instagram, FailureRejected, fmt.Sprintf("error creating request: %v", err))
		return "", &f
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := ig.Client.Do(req)
	if err != nil {
		f := Failed(Instagram, classifyErr(err), fmt.Sprintf("HTTP request error: %v", err))
		return "", &f
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		f := Failed(Instagram, classifyStatus(resp.StatusCode),
			fmt.Sprintf("%s: %d: %s", statusMessage("instagram", resp.StatusCode), resp.StatusCode, respBody))
		return "", &f
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		f := Failed(Instagram, FailureRejected, fmt.Sprintf("error parsing response: %v", err))
		return "", &f
	}
	return result.ID, nil
}
