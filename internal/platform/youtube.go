package platform

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"
	youtube "google.golang.org/api/youtube/v3"
)

// YouTubePublisher uploads the post's first media URL as a public video.
// Extra client options are injectable so tests can point the API client at a
// local server.
type YouTubePublisher struct {
	Client *http.Client
	Opts   []option.ClientOption
}

func NewYouTubePublisher() *YouTubePublisher {
	return &YouTubePublisher{Client: http.DefaultClient}
}

func (yt *YouTubePublisher) Publish(ctx context.Context, content Content, cred Credential) PublishResult {
	if len(content.MediaURLs) == 0 {
		return Failed(YouTube, FailureRejected, "youtube requires a video media item")
	}

	tempFile, err := yt.downloadVideo(ctx, content.MediaURLs[0])
	if err != nil {
		return Failed(YouTube, classifyErr(err), fmt.Sprintf("error fetching video: %v", err))
	}
	defer os.Remove(tempFile)

	file, err := os.Open(tempFile)
	if err != nil {
		return Failed(YouTube, FailureTransient, fmt.Sprintf("error opening video file: %v", err))
	}
	defer file.Close()

	token := &oauth2.Token{AccessToken: cred.AccessToken}
	client := oauth2.NewClient(ctx, oauth2.StaticTokenSource(token))
	opts := append([]option.ClientOption{option.WithHTTPClient(client)}, yt.Opts...)
	service, err := youtube.NewService(ctx, opts...)
	if err != nil {
		return Failed(YouTube, FailureTransient, fmt.Sprintf("error creating YouTube client: %v", err))
	}

	video := &youtube.Video{
		Snippet: &youtube.VideoSnippet{
			Title:       videoTitle(content.Caption),
			Description: RenderCaption(content),
			CategoryId:  "22",
		},
		Status: &youtube.VideoStatus{PrivacyStatus: "public"},
	}

	call := service.Videos.Insert([]string{"snippet", "status"}, video)
	response, err := call.Media(file).Context(ctx).Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) {
			return Failed(YouTube, classifyStatus(apiErr.Code),
				fmt.Sprintf("%s: %d: %s", statusMessage("youtube", apiErr.Code), apiErr.Code, apiErr.Message))
		}
		return Failed(YouTube, classifyErr(err), fmt.Sprintf("error uploading video: %v", err))
	}

	return Succeeded(YouTube, response.Id)
}

func (yt *YouTubePublisher) downloadVideo(ctx context.Context, mediaURL string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, mediaURL, nil)
	if err != nil {
		return "", err
	}

	resp, err := yt.Client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("unexpected response status fetching media: %d", resp.StatusCode)
	}

	tempFile, err := os.CreateTemp("", "video-*.mp4")
	if err != nil {
		return "", fmt.Errorf("error creating temporary file: %w", err)
	}
	defer tempFile.Close()

	if _, err := io.Copy(tempFile, resp.Body); err != nil {
		os.Remove(tempFile.Name())
		return "", fmt.Errorf("error saving video: %w", err)
	}
	return tempFile.Name(), nil
}

func videoTitle(caption string) string {
	title := caption
	if i := strings.IndexByte(title, '\n'); i >= 0 {
		title = title[:i]
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Untitled"
	}
	if len(title) > 100 {
		title = title[:100]
	}
	return title
}
