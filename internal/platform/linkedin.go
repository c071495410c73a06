package platform

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const defaultLinkedInAPIURL = "https://api.linkedin.com"

type LinkedInPublisher struct {
	BaseURL string
	Client  *http.Client
}

func NewLinkedInPublisher() *LinkedInPublisher {
	return &LinkedInPublisher{BaseURL: defaultLinkedInAPIURL, Client: http.DefaultClient}
}

func (li *LinkedInPublisher) Publish(ctx context.Context, content Content, cred Credential) PublishResult {
	shareContent := map[string]interface{}{
		"shareCommentary": map[string]string{
			"text": RenderCaption(content),
		},
		"shareMediaCategory": "NONE",
	}
	if len(content.MediaURLs) > 0 {
		media := make([]map[string]interface{}, 0, len(content.MediaURLs))
		for _, mediaURL := range content.MediaURLs {
			media = append(media, map[string]interface{}{
				"status":      "READY",
				"originalUrl": mediaURL,
			})
		}
		shareContent["shareMediaCategory"] = "ARTICLE"
		shareContent["media"] = media
	}

	payload := map[string]interface{}{
		"author":         fmt.Sprintf("urn:li:organization:%s", cred.AccountID),
		"lifecycleState": "PUBLISHED",
		"specificContent": map[string]interface{}{
			"com.linkedin.ugc.ShareContent": shareContent,
		},
		"visibility": map[string]string{
			"com.linkedin.ugc.MemberNetworkVisibility": "PUBLIC",
		},
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return Failed(LinkedIn, FailureRejected, fmt.Sprintf("error marshalling payload: %v", err))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, li.BaseURL+"/v2/ugcPosts", bytes.NewBuffer(body))
	if err != nil {
		return Failed(LinkedIn, FailureRejected, fmt.Sprintf("error creating request: %v", err))
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+cred.AccessToken)
	req.Header.Set("X-Restli-Protocol-Version", "2.0.0")

	resp, err := li.Client.Do(req)
	if err != nil {
		return Failed(LinkedIn, classifyErr(err), fmt.Sprintf("HTTP request error: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated && resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return Failed(LinkedIn, classifyStatus(resp.StatusCode),
			fmt.Sprintf("%s: %d: %s", statusMessage("linkedin", resp.StatusCode), resp.StatusCode, respBody))
	}

	if id := resp.Header.Get("X-RestLi-Id"); id != "" {
		return Succeeded(LinkedIn, id)
	}

	var result struct {
		ID string `json:"id"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return Failed(LinkedIn, FailureRejected, fmt.Sprintf("error parsing response: %v", err))
	}
	if result.ID == "" {
		return Failed(LinkedIn, FailureRejected, "no share ID returned from LinkedIn")
	}
	return Succeeded(LinkedIn, result.ID)
}
