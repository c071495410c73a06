package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultFacebookGraphURL = "https://graph.facebook.com/v21.0"

type FacebookPublisher struct {
	BaseURL string
	Client  *http.Client
}

func NewFacebookPublisher() *FacebookPublisher {
	return &FacebookPublisher{BaseURL: defaultFacebookGraphURL, Client: http.DefaultClient}
}

func (f *FacebookPublisher) Publish(ctx context.Context, content Content, cred Credential) PublishResult {
	payload := map[string]interface{}{
		"message":      RenderCaption(content),
		"access_token": cred.AccessToken,
	}
	endpoint := "feed"
	if len(content.MediaURLs) > 0 {
		endpoint = "photos"
		payload["url"] = content.MediaURLs[0]
	}

	url := fmt.Sprintf("%s/%s/%s", f.BaseURL, cred.AccountID, endpoint)
	body, err := json.Marshal(payload)
	if err != nil {
		return Failed(Facebook, FailureRejected, fmt.Sprintf("error marshalling payload: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(body))
	if err != nil {
		return Failed(Facebook, FailureRejected, fmt.Sprintf("error creating request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.Client.Do(req)
	if err != nil {
		return Failed(Facebook, classifyErr(err), fmt.Sprintf("HTTP request error: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return Failed(Facebook, classifyStatus(resp.StatusCode),
			fmt.Sprintf("%s: %d: %s", statusMessage("facebook", resp.StatusCode), resp.StatusCode, respBody))
	}

	var result struct {
		ID     string `json:"id"`
		PostID string `json:"post_id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Failed(Facebook, FailureRejected, fmt.Sprintf("error parsing response: %v", err))
	}

	// photos responses carry both ids; post_id is the feed-visible one.
	if result.PostID != "" {
		return Succeeded(Facebook, result.PostID)
	}
	if result.ID == "" {
		return Failed(Facebook, FailureRejected, "no post ID returned from Facebook")
	}
	return Succeeded(Facebook, result.ID)
}
