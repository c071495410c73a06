package job

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	config "github.com/brandcast/brandcast/configs"
	"github.com/brandcast/brandcast/internal/models"
	"github.com/brandcast/brandcast/internal/platform"
	"github.com/brandcast/brandcast/internal/repository"
	"github.com/brandcast/brandcast/pkg/utils"
)

// TokenRefreshJob keeps brand credentials alive: every run it refreshes
// tokens expiring within the lookahead window. Publishing never refreshes
// inline; a revoked token surfaces as a rejected result and is picked up
// here.
type TokenRefreshJob struct {
	cfg              config.Config
	cr               repository.CredentialRepository
	instagramBaseURL string
}

func NewTokenRefreshJob(cfg config.Config, cr repository.CredentialRepository) *TokenRefreshJob {
	return &TokenRefreshJob{
		cfg:              cfg,
		cr:               cr,
		instagramBaseURL: "https://graph.instagram.com",
	}
}

type instagramToken struct {
	AccessToken string `json:"access_token"`
	ExpiresIn   int64  `json:"expires_in"`
}

func fetchInstagramToken(ctx context.Context, url string) (*instagramToken, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("unexpected status code from Instagram: %d", resp.StatusCode)
	}

	var result instagramToken
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, err
	}
	return &result, nil
}

func (j *TokenRefreshJob) RefreshTokens() {
	ctx := context.Background()

	currentTime := time.Now()
	timeIn30Minutes := currentTime.Add(30 * time.Minute)

	credentials, err := j.cr.ListExpiring(ctx, currentTime, timeIn30Minutes)
	if err != nil {
		slog.Info(err.Error())
		return
	}

	var wg sync.WaitGroup

	concurrencyLimit := 10
	semaphore := make(chan struct{}, concurrencyLimit)

	for _, cred := range credentials {
		wg.Add(1)
		semaphore <- struct{}{}

		go func(cred *models.BrandCredential) {
			defer wg.Done()
			defer func() { <-semaphore }()

			switch platform.Platform(cred.Platform) {
			case platform.YouTube:
				if err := j.refreshGoogleToken(ctx, cred); err != nil {
					slog.Info("unable to refresh token", "platform", cred.Platform, "credential_id", cred.ID, "error", err.Error())
				}
			case platform.Instagram:
				if err := j.refreshInstagramToken(ctx, cred); err != nil {
					slog.Info("unable to refresh token", "platform", cred.Platform, "credential_id", cred.ID, "error", err.Error())
				}
			default:
				// Facebook and LinkedIn tokens are long-lived; nothing to do.
			}
		}(cred)
	}

	wg.Wait()
}

func (j *TokenRefreshJob) refreshGoogleToken(ctx context.Context, cred *models.BrandCredential) error {
	conf := &oauth2.Config{
		ClientID:     j.cfg.GoogleClientID,
		ClientSecret: j.cfg.GoogleClientSecret,
		Scopes:       []string{"https://www.googleapis.com/auth/youtube.upload"},
		Endpoint:     google.Endpoint,
	}

	refreshToken, err := utils.Decrypt(cred.RefreshToken, []byte(j.cfg.SecretKey))
	if err != nil {
		return err
	}

	tokenSource := conf.TokenSource(ctx, &oauth2.Token{RefreshToken: refreshToken})
	token, err := tokenSource.Token()
	if err != nil {
		return err
	}

	encryptedAccessToken, err := utils.Encrypt([]byte(token.AccessToken), []byte(j.cfg.SecretKey))
	if err != nil {
		return err
	}

	return j.cr.SetToken(ctx, cred.ID, encryptedAccessToken, "", token.Expiry)
}

func (j *TokenRefreshJob) refreshInstagramToken(ctx context.Context, cred *models.BrandCredential) error {
	refreshToken, err := utils.Decrypt(cred.RefreshToken, []byte(j.cfg.SecretKey))
	if err != nil {
		return err
	}

	refreshURL := fmt.Sprintf(
		"%s/refresh_access_token?grant_type=ig_refresh_token&access_token=%s",
		j.instagramBaseURL, refreshToken,
	)

	result, err := fetchInstagramToken(ctx, refreshURL)
	if err != nil && j.cfg.InstagramClientSecret != "" {
		// Tokens past the refresh window need a full exchange, which
		// requires the app secret.
		exchangeURL := fmt.Sprintf(
			"%s/access_token?grant_type=ig_exchange_token&client_secret=%s&access_token=%s",
			j.instagramBaseURL, j.cfg.InstagramClientSecret, refreshToken,
		)
		result, err = fetchInstagramToken(ctx, exchangeURL)
	}
	if err != nil {
		return err
	}

	expiresAt := time.Now().Add(time.Second * time.Duration(result.ExpiresIn))

	encryptedAccessToken, err := utils.Encrypt([]byte(result.AccessToken), []byte(j.cfg.SecretKey))
	if err != nil {
		return err
	}

	// Instagram long-lived tokens refresh themselves; the new token is both
	// access and refresh token.
	return j.cr.SetToken(ctx, cred.ID, encryptedAccessToken, encryptedAccessToken, expiresAt)
}
