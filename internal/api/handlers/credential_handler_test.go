package handlers

import (
	"context"
	"database/sql"
	"encoding/json"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandcast/brandcast/internal/models"
	"github.com/brandcast/brandcast/pkg/utils"
)

type fakeCredentialRepo struct {
	nextID  int64
	created []*models.BrandCredential
}

func (f *fakeCredentialRepo) Create(ctx context.Context, tx *sql.Tx, cred *models.BrandCredential) (int64, error) {
	f.nextID++
	stored := *cred
	stored.ID = f.nextID
	f.created = append(f.created, &stored)
	return stored.ID, nil
}

func (f *fakeCredentialRepo) GetActive(ctx context.Context, brandID int64, platform string) (*models.BrandCredential, error) {
	return nil, nil
}

func (f *fakeCredentialRepo) ListByBrandID(ctx context.Context, brandID int64) ([]*models.BrandCredential, error) {
	return nil, nil
}

func (f *fakeCredentialRepo) ListExpiring(ctx context.Context, initialTime, finalTime time.Time) ([]*models.BrandCredential, error) {
	return nil, nil
}

func (f *fakeCredentialRepo) SetToken(ctx context.Context, id int64, accessToken, refreshToken string, expiresAt time.Time) error {
	return nil
}

func (f *fakeCredentialRepo) SetPostingEnabled(ctx context.Context, id, brandID int64, enabled bool) error {
	return nil
}

func (f *fakeCredentialRepo) Remove(ctx context.Context, id, brandID int64) error {
	return nil
}

var testSecretKey = []byte("0123456789abcdef0123456789abcdef")

func newCredentialApp(repo *fakeCredentialRepo) *fiber.App {
	app := fiber.New()
	app.Use(func(c *fiber.Ctx) error {
		c.Locals("brand_id", "7")
		return c.Next()
	})
	handler := NewCredentialHandler(repo, testSecretKey)
	app.Post("/api/credentials/connect", handler.ConnectCredential)
	return app
}

func TestConnectCredentialStoresEncryptedTokens(t *testing.T) {
	repo := &fakeCredentialRepo{}
	app := newCredentialApp(repo)

	body := `{"platform":"facebook","account_id":"page-1","account_name":"Acme","access_token":"plain-token"}`
	req := httptest.NewRequest("POST", "/api/credentials/connect", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusCreated, resp.StatusCode)

	var out struct {
		CredentialID int64 `json:"credential_id"`
	}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	assert.Equal(t, int64(1), out.CredentialID)

	require.Len(t, repo.created, 1)
	cred := repo.created[0]
	assert.Equal(t, int64(7), cred.BrandID)
	assert.Equal(t, "facebook", cred.Platform)
	assert.True(t, cred.Active)
	assert.True(t, cred.PostingEnabled)

	// token must not be stored in plaintext and must decrypt back
	assert.NotEqual(t, "plain-token", cred.AccessToken)
	plain, err := utils.Decrypt(cred.AccessToken, testSecretKey)
	require.NoError(t, err)
	assert.Equal(t, "plain-token", plain)
}

func TestConnectCredentialValidation(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"unknown platform", `{"platform":"myspace","account_id":"a","access_token":"t"}`},
		{"missing account", `{"platform":"facebook","access_token":"t"}`},
		{"missing token", `{"platform":"facebook","account_id":"a"}`},
		{"bad expires_at", `{"platform":"facebook","account_id":"a","access_token":"t","expires_at":"tomorrow"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &fakeCredentialRepo{}
			app := newCredentialApp(repo)

			req := httptest.NewRequest("POST", "/api/credentials/connect", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", "application/json")
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, fiber.StatusBadRequest, resp.StatusCode)
			assert.Empty(t, repo.created)
		})
	}
}
